package password

import (
	"errors"
	"sync"
	"sync/atomic"
)

// dummyPassword is deliberately non-secret: the dummy hash exists only to
// burn the same argon2 cost as a real verification when no account matches
// the login identifier.
const dummyPassword = "DummyPassword!123"

// minDummyTimeCost is the floor applied to the configured time cost when
// computing the dummy hash.
const minDummyTimeCost uint32 = 2

// ErrDummyNotReady is an exported constant or variable used by the authentication engine.
var ErrDummyNotReady = errors.New("dummy hash not initialized")

type dummyHash struct {
	once  sync.Once
	ready atomic.Bool
	hash  string
	err   error
}

// EnsureDummyHash computes the process-wide dummy hash exactly once, using
// the hasher's cost parameters with a floor on time cost. Concurrent callers
// block on the first computation and all observe the same result.
func (h *Hasher) EnsureDummyHash() (string, error) {
	h.dummy.once.Do(func() {
		cfg := h.config
		if cfg.Time < minDummyTimeCost {
			cfg.Time = minDummyTimeCost
		}
		h.dummy.hash, h.dummy.err = hashWithConfig(dummyPassword, cfg)
		h.dummy.ready.Store(true)
	})
	return h.dummy.hash, h.dummy.err
}

// DummyHash returns the precomputed dummy hash. It fails with
// [ErrDummyNotReady] before [Hasher.EnsureDummyHash] has completed; engine
// construction runs EnsureDummyHash before any request is accepted, so that
// path is not reachable in normal service operation.
func (h *Hasher) DummyHash() (string, error) {
	if !h.dummy.ready.Load() {
		return "", ErrDummyNotReady
	}
	if h.dummy.err != nil {
		return "", h.dummy.err
	}
	return h.dummy.hash, nil
}
