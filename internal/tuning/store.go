// Package tuning holds the live recognition parameters.
//
// A Store is the single writer-side owner of the RecognitionConfig. Frame
// loops read it with Snapshot, once per frame; the MCP tools, command-line
// flags and the YAML file watcher write it with Update or Apply. Every
// accepted update is quantized to the 0.1 aspect step and validated first,
// so readers never see an out-of-range value.
package tuning

import (
	"sync"

	"github.com/ironsheep/dice-tools-mcp/internal/detection"
)

// Store holds the current recognition config.
type Store struct {
	mu      sync.RWMutex
	cfg     detection.RecognitionConfig
	version uint64
	subs    map[chan detection.RecognitionConfig]struct{}
}

// NewStore creates a store holding initial.
func NewStore(initial detection.RecognitionConfig) (*Store, error) {
	initial = initial.Quantized()
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	return &Store{
		cfg:  initial,
		subs: make(map[chan detection.RecognitionConfig]struct{}),
	}, nil
}

// NewDefaultStore creates a store holding detection.DefaultConfig.
func NewDefaultStore() *Store {
	s, _ := NewStore(detection.DefaultConfig())
	return s
}

// Snapshot returns the current config by value.
func (s *Store) Snapshot() detection.RecognitionConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Version counts accepted updates.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Update replaces the config. An invalid config is rejected and the
// previous one kept.
func (s *Store) Update(cfg detection.RecognitionConfig) error {
	return s.Apply(func(c *detection.RecognitionConfig) { *c = cfg })
}

// Apply edits a copy of the current config with fn and stores the result if
// it is valid.
func (s *Store) Apply(fn func(*detection.RecognitionConfig)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cfg
	fn(&next)
	next = next.Quantized()
	if err := next.Validate(); err != nil {
		return err
	}
	if next == s.cfg {
		return nil
	}
	s.cfg = next
	s.version++

	for ch := range s.subs {
		// Keep only the latest value for slow subscribers.
		select {
		case <-ch:
		default:
		}
		ch <- next
	}
	return nil
}

// Subscribe returns a channel receiving each new config. Call cancel to stop.
func (s *Store) Subscribe() (updates <-chan detection.RecognitionConfig, cancel func()) {
	ch := make(chan detection.RecognitionConfig, 1)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			s.mu.Unlock()
		})
	}
}
