package daho

import (
	"context"
	"errors"
	"log"

	"github.com/arianakaye38-design/flutter-daho/directory"
)

// Register validates and creates a new user account.
//
// The sequence is fixed: confirmation match and presence checks, then
// password strength, then identity uniqueness, and only then the expensive
// hash and the directory create. Any identity collision — at the uniqueness
// check or at creation time — surfaces as the generic
// [ErrDuplicateIdentity] so the caller cannot probe which accounts exist.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if e.passwordHash == nil || e.directory == nil {
		return nil, ErrEngineNotReady
	}

	if req.Password == "" || req.PasswordConfirm == "" || (req.Email == "" && req.Username == "") {
		e.metricInc(MetricRegistrationFailure)
		e.emitAudit(ctx, auditEventRegistrationFailure, false, "", ErrMissingFields, func() map[string]string {
			return map[string]string{
				"reason": "missing_fields",
			}
		})
		return nil, ErrMissingFields
	}
	if req.Password != req.PasswordConfirm {
		e.metricInc(MetricRegistrationFailure)
		e.emitAudit(ctx, auditEventRegistrationFailure, false, "", ErrPasswordMismatch, func() map[string]string {
			return map[string]string{
				"reason": "confirmation_mismatch",
			}
		})
		return nil, ErrPasswordMismatch
	}

	if err := validatePasswordStrength(req.Password); err != nil {
		e.metricInc(MetricRegistrationFailure)
		e.emitAudit(ctx, auditEventRegistrationFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"reason": "weak_password",
			}
		})
		return nil, err
	}

	// Existence check before hashing so a duplicate costs no argon2 work.
	taken, err := e.identityTaken(ctx, req.Email, req.Username)
	if err != nil {
		e.metricInc(MetricRegistrationFailure)
		e.emitAudit(ctx, auditEventRegistrationFailure, false, "", err, nil)
		return nil, err
	}
	if taken {
		e.metricInc(MetricRegistrationDuplicate)
		e.emitAudit(ctx, auditEventRegistrationDuplicate, false, "", ErrDuplicateIdentity, nil)
		return nil, ErrDuplicateIdentity
	}

	hash, err := e.passwordHash.Hash(req.Password)
	if err != nil {
		log.Printf("warn: registration hashing failed: %v", err)
		e.metricInc(MetricRegistrationFailure)
		e.emitAudit(ctx, auditEventRegistrationFailure, false, "", ErrHashingFailure, nil)
		return nil, ErrHashingFailure
	}

	created, err := e.directory.Create(ctx, directory.CreateInput{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
	})
	if err != nil {
		// Defense in depth: a concurrent registration may have claimed the
		// identity between the uniqueness check and the create.
		if errors.Is(err, directory.ErrDuplicateIdentity) {
			e.metricInc(MetricRegistrationDuplicate)
			e.emitAudit(ctx, auditEventRegistrationDuplicate, false, "", ErrDuplicateIdentity, nil)
			return nil, ErrDuplicateIdentity
		}
		e.metricInc(MetricRegistrationFailure)
		e.emitAudit(ctx, auditEventRegistrationFailure, false, "", err, nil)
		return nil, err
	}

	e.metricInc(MetricRegistrationSuccess)
	e.emitAudit(ctx, auditEventRegistrationSuccess, true, created.ID, nil, nil)

	return &RegisterResult{
		ID:       created.ID,
		Email:    created.Email,
		Username: created.Username,
	}, nil
}

// identityTaken reports whether either normalized identity handle already
// resolves to a record. Which one collided is never reported.
func (e *Engine) identityTaken(ctx context.Context, email, username string) (bool, error) {
	for _, identifier := range []string{email, username} {
		if identifier == "" {
			continue
		}
		rec, err := e.directory.FindByIdentifier(ctx, identifier)
		if err != nil {
			return false, err
		}
		if rec != nil {
			return true, nil
		}
	}
	return false, nil
}
