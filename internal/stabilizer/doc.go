// Package stabilizer turns noisy per-frame pip counts into stable die values.
//
// A ValueStabilizer keeps the most recent raw observations in a fixed-size
// VoteWindow and reports a value only when one raw count dominates the
// window:
//
//	s := stabilizer.New()
//	for _, raw := range counts {
//	    if r := s.Observe(raw); r.Known {
//	        fmt.Println("die shows", r.Value)
//	    }
//	}
//
// Raw counts are zero-indexed (the pip counter subtracts the face outline),
// so a stable raw mode m is reported as the die value m+1.
//
// # States
//
// A stabilizer is Accumulating until some value reaches the vote threshold
// and Stable while one does. The state is recomputed on every observation;
// a Stable stabilizer falls back to Accumulating as soon as the majority
// drops below the threshold.
//
// # Tracking
//
// Regions carry no identity from one frame to the next. Tracker assigns
// regions to tracks by nearest center so that each physical die can keep its
// own ValueStabilizer. Tracks that go unmatched for MaxMissedFrames frames
// are dropped.
//
// None of the types in this package are safe for concurrent use.
package stabilizer
