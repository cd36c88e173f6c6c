// Package pipeline runs the per-frame recognition: segmentation, pip
// counting and stabilization, summed into a frame total.
//
// A Recognizer reads one configuration snapshot per frame from its
// ConfigSource, so tuning changes never apply to half a frame.
//
// # Stabilizer modes
//
// ModeShared feeds every region of every frame into a single stabilizer.
// With several different dice in view the shared window rarely agrees and
// the total stays at 0; with one die, or identical dice, it behaves like a
// per-die stabilizer. ModeTracked matches regions across frames by position
// and gives each match its own stabilizer.
//
// # Empty frames
//
// A frame without regions does not reset the total immediately. The
// previous total is held until EmptyFrameThreshold consecutive empty frames
// have been seen, then drops to 0. FrameResult.Held marks a frame whose
// total was carried over. Stabilizers are not fed on empty frames.
package pipeline
