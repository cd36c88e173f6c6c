package pipeline

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ironsheep/dice-tools-mcp/internal/detection"
	"github.com/ironsheep/dice-tools-mcp/internal/logging"
	"github.com/ironsheep/dice-tools-mcp/internal/stabilizer"
)

// EmptyFrameThreshold is the number of consecutive frames without regions
// after which the held total drops to 0.
const EmptyFrameThreshold = 10

// Mode selects how regions are mapped to stabilizers.
type Mode int

const (
	// ModeShared votes every region into one stabilizer.
	ModeShared Mode = iota

	// ModeTracked gives each tracked region its own stabilizer.
	ModeTracked
)

func (m Mode) String() string {
	switch m {
	case ModeShared:
		return "shared"
	case ModeTracked:
		return "tracked"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts "shared" or "tracked" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "shared":
		return ModeShared, nil
	case "tracked":
		return ModeTracked, nil
	default:
		return ModeShared, fmt.Errorf("unknown stabilizer mode %q (want shared or tracked)", s)
	}
}

// ConfigSource provides the recognition parameters for a frame.
type ConfigSource interface {
	Snapshot() detection.RecognitionConfig
}

// StaticConfig is a ConfigSource that never changes.
type StaticConfig detection.RecognitionConfig

// Snapshot implements ConfigSource.
func (c StaticConfig) Snapshot() detection.RecognitionConfig {
	return detection.RecognitionConfig(c)
}

// RegionResult is the recognition outcome for one region.
type RegionResult struct {
	Box    detection.BoundingBox `json:"box"`
	Raw    int                   `json:"raw"`
	Stable stabilizer.Result     `json:"stable"`

	// TrackID is set in ModeTracked.
	TrackID string `json:"track_id,omitempty"`
}

// FrameResult is the recognition outcome for one frame.
type FrameResult struct {
	// Index counts processed frames starting at 1.
	Index   int            `json:"frame"`
	Regions []RegionResult `json:"regions"`

	// Total is the displayed sum of stable values.
	Total int `json:"total"`

	// Held is true when Total was carried over from an earlier frame
	// because this frame had no regions.
	Held bool `json:"held"`

	Threshold detection.ThresholdInfo     `json:"threshold"`
	Contours  int                         `json:"contours"`
	Config    detection.RecognitionConfig `json:"config"`
}

// Recognizer turns frames into stabilized totals. It is safe for concurrent
// use; frames are processed one at a time.
type Recognizer struct {
	mu      sync.Mutex
	config  ConfigSource
	mode    Mode
	logger  *zap.Logger
	shared  *stabilizer.ValueStabilizer
	tracker *stabilizer.Tracker

	newStabilizer func() *stabilizer.ValueStabilizer

	frames      int
	emptyFrames int
	lastTotal   int
}

// Option configures a Recognizer.
type Option func(*Recognizer)

// WithMode sets the stabilizer mode (default ModeShared).
func WithMode(m Mode) Option {
	return func(r *Recognizer) { r.mode = m }
}

// WithLogger sets the logger (default no-op).
func WithLogger(logger *zap.Logger) Option {
	return func(r *Recognizer) { r.logger = logging.OrNop(logger) }
}

// WithStabilizer overrides how stabilizers are built.
func WithStabilizer(factory func() *stabilizer.ValueStabilizer) Option {
	return func(r *Recognizer) { r.newStabilizer = factory }
}

// New creates a Recognizer reading its parameters from config.
func New(config ConfigSource, opts ...Option) *Recognizer {
	r := &Recognizer{
		config:        config,
		logger:        zap.NewNop(),
		newStabilizer: stabilizer.New,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.shared = r.newStabilizer()
	r.tracker = stabilizer.NewTrackerWithStabilizer(r.newStabilizer)
	return r
}

// Mode returns the stabilizer mode.
func (r *Recognizer) Mode() Mode {
	return r.mode
}

// Process recognizes one frame.
func (r *Recognizer) Process(frame image.Image) FrameResult {
	cfg := r.config.Snapshot()
	seg := detection.SegmentDetailed(frame, cfg)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.frames++
	result := FrameResult{
		Index:     r.frames,
		Regions:   make([]RegionResult, 0, len(seg.Regions)),
		Threshold: seg.Threshold,
		Contours:  seg.Contours,
		Config:    cfg,
	}

	if len(seg.Regions) == 0 {
		if r.mode == ModeTracked {
			r.tracker.Update(nil)
		}
		r.emptyFrames++
		if r.emptyFrames >= EmptyFrameThreshold {
			r.lastTotal = 0
		} else {
			result.Held = r.lastTotal != 0
		}
		result.Total = r.lastTotal
		r.logger.Debug("no dice regions",
			zap.Int("frame", r.frames),
			zap.Int("empty_frames", r.emptyFrames),
			zap.Int("total", result.Total))
		return result
	}
	r.emptyFrames = 0

	var tracks []*stabilizer.Track
	if r.mode == ModeTracked {
		obs := make([]stabilizer.Observation, len(seg.Regions))
		for i, region := range seg.Regions {
			obs[i] = stabilizer.Observation{Center: region.Box.Center(), Radius: region.Box.Radius()}
		}
		tracks = r.tracker.Update(obs)
	}

	total := 0
	for i, region := range seg.Regions {
		rr := RegionResult{Box: region.Box, Raw: detection.CountPips(region)}
		if tracks != nil {
			rr.Stable = tracks[i].Stabilizer.Observe(rr.Raw)
			rr.TrackID = tracks[i].ID.String()
		} else {
			rr.Stable = r.shared.Observe(rr.Raw)
		}
		total += rr.Stable.Contribution()
		result.Regions = append(result.Regions, rr)
	}
	result.Total = total
	r.lastTotal = total

	r.logger.Debug("frame recognized",
		zap.Int("frame", r.frames),
		zap.Int("regions", len(result.Regions)),
		zap.Uint8("cutoff", seg.Threshold.Cutoff),
		zap.Int("total", total))
	return result
}

// Reset clears every stabilizer, track and the held total.
func (r *Recognizer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.shared.Reset()
	r.tracker.Reset()
	r.frames = 0
	r.emptyFrames = 0
	r.lastTotal = 0
	r.logger.Info("recognizer reset", zap.Stringer("mode", r.mode))
}

// Stats describes the recognizer state.
type Stats struct {
	Mode        string `json:"mode"`
	Frames      int    `json:"frames"`
	EmptyFrames int    `json:"empty_frames"`
	LastTotal   int    `json:"last_total"`
	Tracks      int    `json:"tracks"`
	SharedState string `json:"shared_state"`
}

// Stats returns a snapshot of the recognizer state.
func (r *Recognizer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Stats{
		Mode:        r.mode.String(),
		Frames:      r.frames,
		EmptyFrames: r.emptyFrames,
		LastTotal:   r.lastTotal,
		Tracks:      len(r.tracker.Tracks()),
		SharedState: r.shared.State().String(),
	}
}
