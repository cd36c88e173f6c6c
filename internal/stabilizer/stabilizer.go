package stabilizer

import (
	"fmt"
	"strconv"
)

const (
	// DefaultCapacity is the number of observations a stabilizer votes over.
	DefaultCapacity = 25

	// DefaultVoteThreshold is the share of the window the mode must reach.
	DefaultVoteThreshold = 0.9

	// MaxRawValue bounds the raw counts tracked by the frequency table.
	// Larger observations are counted as MaxRawValue, negative ones as 0.
	MaxRawValue = 63
)

// Result is the outcome of one observation: a die value or unknown.
type Result struct {
	Value int  `json:"value"`
	Known bool `json:"known"`
}

// Unknown is the result reported while no value meets the vote threshold.
var Unknown = Result{}

// Contribution returns the value to add to a frame total (0 when unknown).
func (r Result) Contribution() int {
	if !r.Known {
		return 0
	}
	return r.Value
}

func (r Result) String() string {
	if !r.Known {
		return "unknown"
	}
	return strconv.Itoa(r.Value)
}

// State describes whether a stabilizer currently reports a value.
type State int

const (
	Accumulating State = iota
	Stable
)

func (s State) String() string {
	switch s {
	case Accumulating:
		return "accumulating"
	case Stable:
		return "stable"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ValueStabilizer votes over a sliding window of raw pip counts.
type ValueStabilizer struct {
	window    *VoteWindow
	counts    [MaxRawValue + 1]int
	threshold float64
	last      Result
}

// New creates a stabilizer with DefaultCapacity and DefaultVoteThreshold.
func New() *ValueStabilizer {
	return NewWithOptions(DefaultCapacity, DefaultVoteThreshold)
}

// NewWithOptions creates a stabilizer with a custom window size and vote
// threshold. Out-of-range arguments fall back to the defaults.
func NewWithOptions(capacity int, voteThreshold float64) *ValueStabilizer {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	if !(voteThreshold > 0 && voteThreshold <= 1) {
		voteThreshold = DefaultVoteThreshold
	}
	return &ValueStabilizer{
		window:    NewVoteWindow(capacity),
		threshold: voteThreshold,
	}
}

// Observe records a raw count and returns the current vote.
//
// The mode of the window is the most frequent raw value, ties going to the
// smallest. When the mode holds at least the vote threshold share of the
// window the result is mode+1, otherwise Unknown.
func (s *ValueStabilizer) Observe(raw int) Result {
	raw = clampRaw(raw)
	if old, ok := s.window.Push(raw); ok {
		s.counts[old]--
	}
	s.counts[raw]++

	s.last = s.vote()
	return s.last
}

func (s *ValueStabilizer) vote() Result {
	n := s.window.Len()
	if n == 0 {
		return Unknown
	}
	mode := 0
	for v, c := range s.counts {
		if c > s.counts[mode] {
			mode = v
		}
	}
	if float64(s.counts[mode])/float64(n) >= s.threshold {
		return Result{Value: mode + 1, Known: true}
	}
	return Unknown
}

// Last returns the result of the most recent observation.
func (s *ValueStabilizer) Last() Result {
	return s.last
}

// State reports whether the last observation produced a value.
func (s *ValueStabilizer) State() State {
	if s.last.Known {
		return Stable
	}
	return Accumulating
}

// Window returns the observations currently held, oldest first.
func (s *ValueStabilizer) Window() []int {
	return s.window.Values()
}

// Len returns the number of observations currently held.
func (s *ValueStabilizer) Len() int {
	return s.window.Len()
}

// Reset empties the window and returns the stabilizer to Accumulating.
func (s *ValueStabilizer) Reset() {
	s.window.Clear()
	s.counts = [MaxRawValue + 1]int{}
	s.last = Unknown
}

func clampRaw(raw int) int {
	if raw < 0 {
		return 0
	}
	if raw > MaxRawValue {
		return MaxRawValue
	}
	return raw
}
