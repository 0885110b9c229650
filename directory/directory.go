package directory

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrDuplicateIdentity is returned by Create when a normalized email or
// username is already taken. The message never names the colliding field.
var ErrDuplicateIdentity = errors.New("duplicate identity")

// ErrIdentityRequired is returned by Create when neither email nor username
// is supplied.
var ErrIdentityRequired = errors.New("email or username required")

// UserRecord is one account as owned by a Directory. Directories hand out
// copies; mutating a returned record never changes stored state.
type UserRecord struct {
	ID             string
	Email          string // lower-cased, empty when unset
	Username       string // lower-cased, empty when unset
	PasswordHash   string
	FailedAttempts int
	LockedUntil    time.Time // zero when the record has never been locked
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Clone returns an independent copy of the record.
func (r *UserRecord) Clone() *UserRecord {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}

// CreateInput carries the fields needed to create a new user record.
type CreateInput struct {
	Email        string
	Username     string
	PasswordHash string
}

// Directory is the abstract keyed store of user records. It is the single
// owner of all record state: every mutation is an atomic read-modify-write
// against one record, and reads return copies.
//
// Mutation methods are deliberately forgiving: an unknown id is a no-op, not
// an error, so lockout bookkeeping callers stay simple. Every mutation
// refreshes UpdatedAt.
type Directory interface {
	// Create assigns a fresh id, normalizes identity fields to lower case
	// and initializes counters. It fails with ErrDuplicateIdentity when a
	// normalized email or username collides with an existing record.
	Create(ctx context.Context, in CreateInput) (*UserRecord, error)

	// FindByIdentifier looks a record up by email or username,
	// case-insensitively. Absence is (nil, nil), not an error.
	FindByIdentifier(ctx context.Context, identifier string) (*UserRecord, error)

	// GetByID returns the record with the given id, or (nil, nil).
	GetByID(ctx context.Context, id string) (*UserRecord, error)

	// IncrementFailed atomically adds one to the record's failure counter
	// and returns the new value. Unknown ids return (0, nil).
	IncrementFailed(ctx context.Context, id string) (int, error)

	// ResetFailed zeroes the failure counter and clears LockedUntil.
	ResetFailed(ctx context.Context, id string) error

	// Lock marks the record locked until now + d.
	Lock(ctx context.Context, id string, d time.Duration) error

	// SetPasswordHash replaces the record's password hash.
	SetPasswordHash(ctx context.Context, id, passwordHash string) error
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
