package daho

import "context"

// ChangePassword replaces a user's password after verifying the current
// one. The new password goes through the same strength policy as
// registration and must differ from the current password. This is an
// authenticated operation keyed by user id; there is no token- or
// email-driven reset flow in this core.
func (e *Engine) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if e.passwordHash == nil || e.directory == nil {
		return ErrEngineNotReady
	}
	if userID == "" || currentPassword == "" || newPassword == "" {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID, ErrMissingFields, func() map[string]string {
			return map[string]string{
				"reason": "missing_fields",
			}
		})
		return ErrMissingFields
	}

	user, err := e.directory.GetByID(ctx, userID)
	if err != nil {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID, err, nil)
		return err
	}
	if user == nil {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID, ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"reason": "user_not_found",
			}
		})
		return ErrInvalidCredentials
	}

	currentOK, err := e.passwordHash.Verify(user.PasswordHash, currentPassword)
	if err != nil || !currentOK {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID, ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"reason": "invalid_current_password",
			}
		})
		return ErrInvalidCredentials
	}

	if err := validatePasswordStrength(newPassword); err != nil {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID, err, func() map[string]string {
			return map[string]string{
				"reason": "weak_password",
			}
		})
		return err
	}

	same, err := e.passwordHash.Verify(user.PasswordHash, newPassword)
	if err == nil && same {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID, ErrPasswordReuse, nil)
		return ErrPasswordReuse
	}

	newHash, err := e.passwordHash.Hash(newPassword)
	if err != nil {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID, ErrHashingFailure, nil)
		return ErrHashingFailure
	}

	if err := e.directory.SetPasswordHash(ctx, userID, newHash); err != nil {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID, err, nil)
		return err
	}

	e.metricInc(MetricPasswordChange)
	e.emitAudit(ctx, auditEventPasswordChangeSuccess, true, userID, nil, nil)

	return nil
}
