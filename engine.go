package daho

import (
	"context"
	"log"
	"time"

	"github.com/arianakaye38-design/flutter-daho/directory"
	"github.com/arianakaye38-design/flutter-daho/jwt"
	"github.com/arianakaye38-design/flutter-daho/password"
)

// Engine defines a public type used by the daho auth APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	directory    directory.Directory
	passwordHash *password.Hasher
	jwtManager   *jwt.Manager
	audit        *auditDispatcher
	metrics      *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters: map[MetricID]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Login authenticates an identifier/password pair and returns a signed
// session token on success.
//
// The failure taxonomy is deliberately narrow: unknown identifier and wrong
// password both return [ErrInvalidCredentials], and a currently locked
// account returns [ErrAccountLocked] before any verification work. When no
// record matches, verification still runs against the precomputed dummy
// hash so that the response time does not reveal whether the account
// exists.
func (e *Engine) Login(ctx context.Context, identifier, password string) (string, error) {
	if e.passwordHash == nil || e.directory == nil || e.jwtManager == nil {
		return "", ErrEngineNotReady
	}
	if identifier == "" || password == "" {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", ErrMissingFields, func() map[string]string {
			return map[string]string{
				"reason": "missing_fields",
			}
		})
		return "", ErrMissingFields
	}

	user, err := e.directory.FindByIdentifier(ctx, identifier)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", err, nil)
		return "", err
	}

	// Admission check before any verification work. Rejecting a locked
	// account without hashing breaks timing symmetry, but the lock itself
	// was triggered by prior failures, so the account's existence is
	// already known to the attacker.
	if user != nil && lockedNow(user, time.Now()) {
		e.metricInc(MetricLoginLocked)
		e.emitAudit(ctx, auditEventLoginLocked, false, user.ID, ErrAccountLocked, func() map[string]string {
			return map[string]string{
				"identifier": identifier,
			}
		})
		return "", ErrAccountLocked
	}

	// Verification always runs against a real-cost hash: the record's own,
	// or the dummy hash when no record matched. No early return on unknown
	// identifiers.
	hashToCompare := ""
	if user != nil {
		hashToCompare = user.PasswordHash
	} else {
		hashToCompare, err = e.passwordHash.DummyHash()
		if err != nil {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, "", ErrEngineNotReady, nil)
			return "", ErrEngineNotReady
		}
	}

	// The hash runs without holding any directory state; counter updates
	// happen only after it returns. Verification errors count as failures
	// so lockout bookkeeping never gets skipped.
	verified, verifyErr := e.passwordHash.Verify(hashToCompare, password)
	if verifyErr != nil {
		verified = false
	}

	if user == nil || !verified {
		if user != nil {
			if err := e.recordFailure(ctx, user.ID, identifier); err != nil {
				return "", err
			}
		}
		log.Printf("warn: failed login attempt for identifier %q", identifier)
		e.metricInc(MetricLoginFailure)
		userID := ""
		if user != nil {
			userID = user.ID
		}
		e.emitAudit(ctx, auditEventLoginFailure, false, userID, ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"identifier": identifier,
			}
		})
		return "", ErrInvalidCredentials
	}

	// Successful verification: reset the failure counter and clear any
	// stale lock before minting the token.
	if err := e.directory.ResetFailed(ctx, user.ID); err != nil {
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, err, nil)
		return "", err
	}

	token, err := e.jwtManager.Issue(user.ID)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, err, nil)
		return "", err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.ID, nil, nil)

	return token, nil
}

// recordFailure applies the Active→Locked transition: one atomic counter
// increment, and a lock exactly when the new value reaches the configured
// maximum. Returns ErrAccountLocked when this failure triggered the lock.
func (e *Engine) recordFailure(ctx context.Context, userID, identifier string) error {
	failures, err := e.directory.IncrementFailed(ctx, userID)
	if err != nil {
		e.emitAudit(ctx, auditEventLoginFailure, false, userID, err, nil)
		return err
	}

	if !lockTriggered(failures, e.config.Lockout) {
		return nil
	}

	if err := e.directory.Lock(ctx, userID, e.config.Lockout.Duration); err != nil {
		e.emitAudit(ctx, auditEventLoginFailure, false, userID, err, nil)
		return err
	}

	log.Printf("warn: user %s locked after %d failed attempts", userID, failures)
	e.metricInc(MetricLockoutTriggered)
	e.emitAudit(ctx, auditEventLockoutTriggered, false, userID, ErrAccountLocked, func() map[string]string {
		return map[string]string{
			"identifier": identifier,
		}
	})
	return ErrAccountLocked
}
