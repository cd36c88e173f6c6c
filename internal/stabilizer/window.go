package stabilizer

// VoteWindow holds the most recent raw observations, oldest first.
//
// Appending to a full window evicts the oldest entry in O(1).
type VoteWindow struct {
	data []int
	head int
	size int
}

// NewVoteWindow creates an empty window. A capacity below 1 is raised to 1.
func NewVoteWindow(capacity int) *VoteWindow {
	if capacity < 1 {
		capacity = 1
	}
	return &VoteWindow{data: make([]int, capacity)}
}

// Push appends v. When the window was full, the evicted value is returned
// with ok set.
func (w *VoteWindow) Push(v int) (evicted int, ok bool) {
	if w.size == len(w.data) {
		evicted, ok = w.data[w.head], true
	} else {
		w.size++
	}
	w.data[w.head] = v
	w.head = (w.head + 1) % len(w.data)
	return evicted, ok
}

// Len returns the number of observations held.
func (w *VoteWindow) Len() int {
	return w.size
}

// Cap returns the window capacity.
func (w *VoteWindow) Cap() int {
	return len(w.data)
}

// Values returns a copy of the observations in insertion order (oldest first).
func (w *VoteWindow) Values() []int {
	out := make([]int, w.size)
	if w.size < len(w.data) {
		copy(out, w.data[:w.size])
		return out
	}
	n := copy(out, w.data[w.head:])
	copy(out[n:], w.data[:w.head])
	return out
}

// Clear empties the window.
func (w *VoteWindow) Clear() {
	w.head = 0
	w.size = 0
}
