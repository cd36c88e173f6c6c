package stabilizer

import (
	"reflect"
	"testing"
)

func observeAll(s *ValueStabilizer, values ...int) Result {
	var r Result
	for _, v := range values {
		r = s.Observe(v)
	}
	return r
}

func TestObserve(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		want   Result
	}{
		{"unanimous", []int{3, 3, 3, 3, 3}, Result{Value: 4, Known: true}},
		{"split majority", []int{3, 3, 3, 4, 4}, Unknown},
		{"single observation", []int{0}, Result{Value: 1, Known: true}},
		{"exactly ninety percent", []int{2, 2, 2, 2, 2, 2, 2, 2, 2, 5}, Result{Value: 3, Known: true}},
		{"just below ninety percent", []int{2, 2, 2, 2, 2, 2, 2, 2, 5}, Unknown},
		{"tie", []int{1, 4}, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			if got := observeAll(s, tt.values...); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestObserve_TiesGoToSmallestValue(t *testing.T) {
	s := NewWithOptions(DefaultCapacity, 0.5)
	if got := observeAll(s, 4, 1); got != (Result{Value: 2, Known: true}) {
		t.Errorf("got %v, want 2", got)
	}
}

func TestObserve_WindowEviction(t *testing.T) {
	s := New()

	// 25 observations of raw 2 fill the window.
	for i := 0; i < DefaultCapacity; i++ {
		s.Observe(2)
	}
	if s.Len() != DefaultCapacity {
		t.Fatalf("Len: got %d, want %d", s.Len(), DefaultCapacity)
	}

	// Two newer 3s leave 23/25 = 0.92 for the old value.
	observeAll(s, 3, 3)
	if got := s.Last(); got != (Result{Value: 3, Known: true}) {
		t.Errorf("after two evictions: got %v, want 3", got)
	}

	// A third drops it to 22/25 = 0.88.
	if got := s.Observe(3); got != Unknown {
		t.Errorf("after three evictions: got %v, want unknown", got)
	}
	if s.Len() != DefaultCapacity {
		t.Errorf("Len: got %d, want %d", s.Len(), DefaultCapacity)
	}

	// Once the new value fills 90% of the window it becomes stable.
	var got Result
	for i := 0; i < 20; i++ {
		got = s.Observe(3)
	}
	if got != (Result{Value: 4, Known: true}) {
		t.Errorf("after 23 new values: got %v, want 4", got)
	}

	window := s.Window()
	if len(window) != DefaultCapacity || window[len(window)-1] != 3 || window[0] != 2 {
		t.Errorf("window: got %v", window)
	}
}

func TestObserve_StateTransitions(t *testing.T) {
	s := New()
	if s.State() != Accumulating {
		t.Fatalf("initial state: got %v, want accumulating", s.State())
	}

	observeAll(s, 1, 1, 1, 1, 1, 1, 1, 1, 1)
	if s.State() != Stable {
		t.Errorf("after agreement: got %v, want stable", s.State())
	}

	// No latch: 9 of 10 is still stable, 9 of 11 is not.
	s.Observe(4)
	if s.State() != Stable {
		t.Errorf("9 of 10: got %v, want stable", s.State())
	}
	s.Observe(4)
	if s.State() != Accumulating {
		t.Errorf("9 of 11: got %v, want accumulating", s.State())
	}
}

func TestObserve_ClampsRawValues(t *testing.T) {
	s := New()
	if got := observeAll(s, -3, -1); got != (Result{Value: 1, Known: true}) {
		t.Errorf("negative values: got %v, want 1", got)
	}

	s.Reset()
	if got := observeAll(s, 1000, MaxRawValue); got != (Result{Value: MaxRawValue + 1, Known: true}) {
		t.Errorf("large values: got %v, want %d", got, MaxRawValue+1)
	}
}

func TestReset(t *testing.T) {
	s := New()
	observeAll(s, 5, 5, 5)
	s.Reset()

	if s.Len() != 0 || s.State() != Accumulating || s.Last() != Unknown {
		t.Errorf("after Reset: len %d, state %v, last %v", s.Len(), s.State(), s.Last())
	}
	if got := s.Observe(2); got != (Result{Value: 3, Known: true}) {
		t.Errorf("first observation after Reset: got %v, want 3", got)
	}
	if got, want := s.Window(), []int{2}; !reflect.DeepEqual(got, want) {
		t.Errorf("window: got %v, want %v", got, want)
	}
}

func TestNewWithOptions_Defaults(t *testing.T) {
	s := NewWithOptions(0, 1.5)
	if s.window.Cap() != DefaultCapacity {
		t.Errorf("capacity: got %d, want %d", s.window.Cap(), DefaultCapacity)
	}
	if s.threshold != DefaultVoteThreshold {
		t.Errorf("threshold: got %v, want %v", s.threshold, DefaultVoteThreshold)
	}
}

func TestResult(t *testing.T) {
	if got := Unknown.String(); got != "unknown" {
		t.Errorf("String: got %q", got)
	}
	if got := (Result{Value: 6, Known: true}).String(); got != "6" {
		t.Errorf("String: got %q", got)
	}
	if got := Unknown.Contribution(); got != 0 {
		t.Errorf("unknown contribution: got %d", got)
	}
	if got := (Result{Value: 6, Known: true}).Contribution(); got != 6 {
		t.Errorf("contribution: got %d", got)
	}
}
