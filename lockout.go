package daho

import (
	"time"

	"github.com/arianakaye38-design/flutter-daho/directory"
)

// Lockout is a two-state machine evaluated per record: Active when
// LockedUntil is unset or in the past, Locked when it is in the future. The
// transition back to Active is implicit and time-based; the stored
// LockedUntil is only physically cleared by the counter reset on the next
// successful login.

// lockedNow reports whether the record is currently in the Locked state.
func lockedNow(rec *directory.UserRecord, now time.Time) bool {
	return rec != nil && !rec.LockedUntil.IsZero() && now.Before(rec.LockedUntil)
}

// lockTriggered reports whether a failure counter value reaches the
// configured maximum, i.e. whether this failed attempt must transition the
// record from Active to Locked.
func lockTriggered(failedAttempts int, cfg LockoutConfig) bool {
	return failedAttempts >= cfg.MaxFailedAttempts
}
