package stabilizer

import (
	"image"
	"math"
	"sort"

	"github.com/google/uuid"
)

// MaxMissedFrames is the number of consecutive frames a track may go
// unmatched before it is dropped.
const MaxMissedFrames = 10

// Observation is a region seen in the current frame.
type Observation struct {
	Center image.Point
	Radius int
}

// Track follows one region across frames and owns its stabilizer.
type Track struct {
	ID         uuid.UUID
	Center     image.Point
	Radius     int
	Stabilizer *ValueStabilizer

	// Missed counts consecutive frames without a matching observation.
	Missed int

	// Hits counts the frames the track was matched in, including its first.
	Hits int
}

// Tracker assigns observations to tracks by nearest center.
//
// An observation can join a track when the centers are no further apart
// than the larger of the two radii. Closest pairs are assigned first.
type Tracker struct {
	tracks        []*Track
	maxMissed     int
	newStabilizer func() *ValueStabilizer
}

// NewTracker creates a tracker whose tracks use default stabilizers.
func NewTracker() *Tracker {
	return NewTrackerWithStabilizer(New)
}

// NewTrackerWithStabilizer creates a tracker that builds each new track's
// stabilizer with factory.
func NewTrackerWithStabilizer(factory func() *ValueStabilizer) *Tracker {
	return &Tracker{
		maxMissed:     MaxMissedFrames,
		newStabilizer: factory,
	}
}

type candidate struct {
	obs, track int
	dist       float64
}

// Update matches one frame's observations and returns the track for each
// observation, in observation order. Unmatched observations start new tracks.
func (t *Tracker) Update(observations []Observation) []*Track {
	var candidates []candidate
	for i, o := range observations {
		for j, tr := range t.tracks {
			d := distance(o.Center, tr.Center)
			if d <= float64(max(o.Radius, tr.Radius, 1)) {
				candidates = append(candidates, candidate{obs: i, track: j, dist: d})
			}
		}
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].dist < candidates[b].dist
	})

	assigned := make([]*Track, len(observations))
	matched := make([]bool, len(t.tracks))
	for _, c := range candidates {
		if assigned[c.obs] != nil || matched[c.track] {
			continue
		}
		assigned[c.obs] = t.tracks[c.track]
		matched[c.track] = true
	}

	kept := t.tracks[:0]
	for j, tr := range t.tracks {
		if !matched[j] {
			tr.Missed++
			if tr.Missed >= t.maxMissed {
				continue
			}
		}
		kept = append(kept, tr)
	}
	t.tracks = kept

	for i, o := range observations {
		tr := assigned[i]
		if tr == nil {
			tr = &Track{ID: uuid.New(), Stabilizer: t.newStabilizer()}
			t.tracks = append(t.tracks, tr)
		}
		tr.Center = o.Center
		tr.Radius = o.Radius
		tr.Missed = 0
		tr.Hits++
		assigned[i] = tr
	}
	return assigned
}

// Tracks returns the live tracks, oldest first.
func (t *Tracker) Tracks() []*Track {
	out := make([]*Track, len(t.tracks))
	copy(out, t.tracks)
	return out
}

// Reset drops every track.
func (t *Tracker) Reset() {
	t.tracks = nil
}

func distance(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}
