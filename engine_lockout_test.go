package daho

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLockoutThresholdTriggersLock(t *testing.T) {
	cfg := engineTestConfig()
	engine := newTestEngine(t, cfg)
	ctx := context.Background()

	mustRegister(t, engine, aliceRequest())

	// First N-1 failures return ErrInvalidCredentials.
	for i := 0; i < cfg.Lockout.MaxFailedAttempts-1; i++ {
		if _, err := engine.Login(ctx, "alice", "wrong-password-1!"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	// The Nth failure triggers the lock and reports it immediately.
	if _, err := engine.Login(ctx, "alice", "wrong-password-1!"); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("threshold attempt: expected ErrAccountLocked, got %v", err)
	}
}

func TestLockedAccountRejectsCorrectPassword(t *testing.T) {
	cfg := engineTestConfig()
	engine := newTestEngine(t, cfg)
	ctx := context.Background()

	mustRegister(t, engine, aliceRequest())

	for i := 0; i < cfg.Lockout.MaxFailedAttempts; i++ {
		_, _ = engine.Login(ctx, "alice", "wrong-password-1!")
	}

	// Even the correct password is rejected while the lock holds.
	if _, err := engine.Login(ctx, "alice", "Str0ng!pass"); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked for locked account, got %v", err)
	}
}

func TestLockExpiresByTime(t *testing.T) {
	cfg := engineTestConfig()
	cfg.Lockout.Duration = 50 * time.Millisecond
	engine := newTestEngine(t, cfg)
	ctx := context.Background()

	mustRegister(t, engine, aliceRequest())

	for i := 0; i < cfg.Lockout.MaxFailedAttempts; i++ {
		_, _ = engine.Login(ctx, "alice", "wrong-password-1!")
	}
	if _, err := engine.Login(ctx, "alice", "Str0ng!pass"); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked before expiry, got %v", err)
	}

	time.Sleep(60 * time.Millisecond)

	// The Locked→Active transition is implicit: once LockedUntil passes,
	// the correct password works again and resets all counters.
	token, err := engine.Login(ctx, "alice", "Str0ng!pass")
	if err != nil {
		t.Fatalf("expected login to succeed after lock expiry, got %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token after lock expiry")
	}

	// Counting starts from zero again.
	for i := 0; i < cfg.Lockout.MaxFailedAttempts-1; i++ {
		if _, err := engine.Login(ctx, "alice", "wrong-password-1!"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("post-expiry attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}
}

func TestEndToEndScenario(t *testing.T) {
	cfg := engineTestConfig()
	engine := newTestEngine(t, cfg)
	ctx := context.Background()

	res := mustRegister(t, engine, RegisterRequest{
		Email:           "a@x.com",
		Username:        "alice",
		Password:        "Str0ng!pass",
		PasswordConfirm: "Str0ng!pass",
	})
	if res.ID == "" {
		t.Fatal("expected created user id")
	}

	token, err := engine.Login(ctx, "alice", "Str0ng!pass")
	if err != nil || token == "" {
		t.Fatalf("expected successful login with token, got %q %v", token, err)
	}

	// Three wrong attempts with max=3: the third reports the lock.
	for i := 1; i <= 2; i++ {
		if _, err := engine.Login(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}
	if _, err := engine.Login(ctx, "alice", "wrong"); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("third attempt: expected ErrAccountLocked, got %v", err)
	}

	// A fourth attempt, even with the correct password, stays rejected
	// until the lockout elapses.
	if _, err := engine.Login(ctx, "alice", "Str0ng!pass"); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("fourth attempt: expected ErrAccountLocked, got %v", err)
	}
}
