package daho

import (
	"context"
	"testing"
	"time"

	"github.com/arianakaye38-design/flutter-daho/directory"
)

func engineTestConfig() Config {
	cfg := defaultConfig()
	// Cheap argon2 parameters keep the suite fast; floors still apply.
	cfg.Password.Memory = 8192
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Token.SigningMethod = "hs256"
	cfg.Token.Secret = []byte("test-secret")
	cfg.Lockout.MaxFailedAttempts = 3
	cfg.Lockout.Duration = time.Minute
	return cfg
}

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()

	engine, err := New().
		WithConfig(cfg).
		WithDirectory(directory.NewMemory()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine
}

func mustRegister(t *testing.T, engine *Engine, req RegisterRequest) *RegisterResult {
	t.Helper()

	res, err := engine.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return res
}

func aliceRequest() RegisterRequest {
	return RegisterRequest{
		Email:           "a@x.com",
		Username:        "alice",
		Password:        "Str0ng!pass",
		PasswordConfirm: "Str0ng!pass",
	}
}
