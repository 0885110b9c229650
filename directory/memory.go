package directory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Directory backed by maps. All operations take a
// single mutex, so per-record mutations are atomic with respect to
// concurrent attempts against the same record.
//
// A fresh Memory per test gives full isolation; there is no global store to
// clear.
type Memory struct {
	mu         sync.Mutex
	users      map[string]*UserRecord
	byEmail    map[string]string
	byUsername map[string]string

	now func() time.Time
}

// NewMemory describes the newmemory operation and its observable behavior.
//
// NewMemory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemory() *Memory {
	return &Memory{
		users:      make(map[string]*UserRecord),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
		now:        time.Now,
	}
}

// Create implements [Directory].
func (m *Memory) Create(_ context.Context, in CreateInput) (*UserRecord, error) {
	email := normalize(in.Email)
	username := normalize(in.Username)
	if email == "" && username == "" {
		return nil, ErrIdentityRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[email]; exists && email != "" {
		return nil, ErrDuplicateIdentity
	}
	if _, exists := m.byUsername[username]; exists && username != "" {
		return nil, ErrDuplicateIdentity
	}

	now := m.now()
	rec := &UserRecord{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: in.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	m.users[rec.ID] = rec
	if email != "" {
		m.byEmail[email] = rec.ID
	}
	if username != "" {
		m.byUsername[username] = rec.ID
	}

	return rec.Clone(), nil
}

// FindByIdentifier implements [Directory].
func (m *Memory) FindByIdentifier(_ context.Context, identifier string) (*UserRecord, error) {
	key := normalize(identifier)
	if key == "" {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.byEmail[key]; ok {
		return m.users[id].Clone(), nil
	}
	if id, ok := m.byUsername[key]; ok {
		return m.users[id].Clone(), nil
	}
	return nil, nil
}

// GetByID implements [Directory].
func (m *Memory) GetByID(_ context.Context, id string) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.users[id].Clone(), nil
}

// IncrementFailed implements [Directory].
func (m *Memory) IncrementFailed(_ context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.users[id]
	if !ok {
		return 0, nil
	}
	rec.FailedAttempts++
	rec.UpdatedAt = m.now()
	return rec.FailedAttempts, nil
}

// ResetFailed implements [Directory].
func (m *Memory) ResetFailed(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.users[id]
	if !ok {
		return nil
	}
	rec.FailedAttempts = 0
	rec.LockedUntil = time.Time{}
	rec.UpdatedAt = m.now()
	return nil
}

// Lock implements [Directory].
func (m *Memory) Lock(_ context.Context, id string, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.users[id]
	if !ok {
		return nil
	}
	now := m.now()
	rec.LockedUntil = now.Add(d)
	rec.UpdatedAt = now
	return nil
}

// SetPasswordHash implements [Directory].
func (m *Memory) SetPasswordHash(_ context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.users[id]
	if !ok {
		return nil
	}
	rec.PasswordHash = passwordHash
	rec.UpdatedAt = m.now()
	return nil
}
