package directory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemoryCreateNormalizesIdentity(t *testing.T) {
	dir := NewMemory()
	ctx := context.Background()

	rec, err := dir.Create(ctx, CreateInput{
		Email:        "A@X.Com",
		Username:     "Alice",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if rec.ID == "" {
		t.Fatal("expected a fresh id")
	}
	if rec.Email != "a@x.com" || rec.Username != "alice" {
		t.Fatalf("expected lower-cased identity, got %q %q", rec.Email, rec.Username)
	}
	if rec.FailedAttempts != 0 || !rec.LockedUntil.IsZero() {
		t.Fatal("expected zeroed lockout state on creation")
	}
	if rec.CreatedAt.IsZero() || rec.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps on creation")
	}
}

func TestMemoryCreateRejectsCollisions(t *testing.T) {
	dir := NewMemory()
	ctx := context.Background()

	if _, err := dir.Create(ctx, CreateInput{Email: "a@x.com", Username: "alice", PasswordHash: "h"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	cases := []CreateInput{
		{Email: "A@x.com", PasswordHash: "h"},
		{Username: "ALICE", PasswordHash: "h"},
		{Email: "other@x.com", Username: "alice", PasswordHash: "h"},
	}
	for i, in := range cases {
		if _, err := dir.Create(ctx, in); !errors.Is(err, ErrDuplicateIdentity) {
			t.Fatalf("case %d: expected ErrDuplicateIdentity, got %v", i, err)
		}
	}
}

func TestMemoryCreateRequiresIdentity(t *testing.T) {
	dir := NewMemory()

	if _, err := dir.Create(context.Background(), CreateInput{PasswordHash: "h"}); !errors.Is(err, ErrIdentityRequired) {
		t.Fatalf("expected ErrIdentityRequired, got %v", err)
	}
}

func TestMemoryFindByIdentifier(t *testing.T) {
	dir := NewMemory()
	ctx := context.Background()

	created, err := dir.Create(ctx, CreateInput{Email: "a@x.com", Username: "alice", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	for _, ident := range []string{"a@x.com", "A@X.COM", "alice", "Alice"} {
		rec, err := dir.FindByIdentifier(ctx, ident)
		if err != nil {
			t.Fatalf("FindByIdentifier(%q) error: %v", ident, err)
		}
		if rec == nil || rec.ID != created.ID {
			t.Fatalf("FindByIdentifier(%q): expected record %s", ident, created.ID)
		}
	}

	rec, err := dir.FindByIdentifier(ctx, "nobody")
	if err != nil {
		t.Fatalf("FindByIdentifier error: %v", err)
	}
	if rec != nil {
		t.Fatal("expected nil record for unknown identifier")
	}
}

func TestMemoryReadsAreCopies(t *testing.T) {
	dir := NewMemory()
	ctx := context.Background()

	created, err := dir.Create(ctx, CreateInput{Username: "alice", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	created.FailedAttempts = 99
	created.PasswordHash = "tampered"

	rec, err := dir.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if rec.FailedAttempts != 0 || rec.PasswordHash != "h" {
		t.Fatal("mutating a returned record must not change stored state")
	}
}

func TestMemoryLockoutBookkeeping(t *testing.T) {
	dir := NewMemory()
	ctx := context.Background()

	created, err := dir.Create(ctx, CreateInput{Username: "alice", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	for want := 1; want <= 3; want++ {
		got, err := dir.IncrementFailed(ctx, created.ID)
		if err != nil {
			t.Fatalf("IncrementFailed error: %v", err)
		}
		if got != want {
			t.Fatalf("expected counter %d, got %d", want, got)
		}
	}

	if err := dir.Lock(ctx, created.ID, time.Hour); err != nil {
		t.Fatalf("Lock error: %v", err)
	}
	rec, err := dir.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if !rec.LockedUntil.After(time.Now()) {
		t.Fatal("expected a future LockedUntil after Lock")
	}

	if err := dir.ResetFailed(ctx, created.ID); err != nil {
		t.Fatalf("ResetFailed error: %v", err)
	}
	rec, err = dir.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if rec.FailedAttempts != 0 || !rec.LockedUntil.IsZero() {
		t.Fatal("expected ResetFailed to zero the counter and clear the lock")
	}
}

func TestMemoryMutationsIgnoreUnknownID(t *testing.T) {
	dir := NewMemory()
	ctx := context.Background()

	n, err := dir.IncrementFailed(ctx, "missing")
	if err != nil || n != 0 {
		t.Fatalf("expected (0, nil) for unknown id, got (%d, %v)", n, err)
	}
	if err := dir.ResetFailed(ctx, "missing"); err != nil {
		t.Fatalf("ResetFailed error: %v", err)
	}
	if err := dir.Lock(ctx, "missing", time.Minute); err != nil {
		t.Fatalf("Lock error: %v", err)
	}
	if err := dir.SetPasswordHash(ctx, "missing", "h"); err != nil {
		t.Fatalf("SetPasswordHash error: %v", err)
	}
}

func TestMemoryConcurrentIncrementsNeverUndercount(t *testing.T) {
	dir := NewMemory()
	ctx := context.Background()

	created, err := dir.Create(ctx, CreateInput{Username: "alice", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	const workers = 32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := dir.IncrementFailed(ctx, created.ID); err != nil {
				t.Errorf("IncrementFailed error: %v", err)
			}
		}()
	}
	wg.Wait()

	rec, err := dir.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if rec.FailedAttempts != workers {
		t.Fatalf("expected %d failures recorded, got %d", workers, rec.FailedAttempts)
	}
}

func TestMemorySetPasswordHash(t *testing.T) {
	dir := NewMemory()
	ctx := context.Background()

	created, err := dir.Create(ctx, CreateInput{Username: "alice", PasswordHash: "old"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := dir.SetPasswordHash(ctx, created.ID, "new"); err != nil {
		t.Fatalf("SetPasswordHash error: %v", err)
	}

	rec, err := dir.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if rec.PasswordHash != "new" {
		t.Fatalf("expected replaced hash, got %q", rec.PasswordHash)
	}
	if !rec.UpdatedAt.After(created.UpdatedAt) && !rec.UpdatedAt.Equal(created.UpdatedAt) {
		t.Fatal("expected UpdatedAt refresh")
	}
}
