package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"
)

func hs256Config() Config {
	return Config{
		TTL:           time.Hour,
		SigningMethod: MethodHS256,
		Secret:        []byte("test-secret-at-least-32-bytes!!!"),
		Issuer:        "daho",
	}
}

func TestIssueAndParse(t *testing.T) {
	mgr, err := NewManager(hs256Config())
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}

	token, err := mgr.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := mgr.Parse(token)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		t.Fatal("expected future expiry")
	}
}

func TestIssueEmptySubject(t *testing.T) {
	mgr, err := NewManager(hs256Config())
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}

	if _, err := mgr.Issue(""); err == nil {
		t.Fatal("expected empty subject to be rejected")
	}
}

func TestParseExpiredToken(t *testing.T) {
	cfg := hs256Config()
	cfg.TTL = time.Nanosecond
	mgr, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}

	token, err := mgr.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	if _, err := mgr.Parse(token); err == nil {
		t.Fatal("expected expired token to fail parsing")
	}
}

func TestParseWrongSecret(t *testing.T) {
	mgr, err := NewManager(hs256Config())
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}

	token, err := mgr.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	other := hs256Config()
	other.Secret = []byte("a-completely-different-secret!!!")
	otherMgr, err := NewManager(other)
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}

	if _, err := otherMgr.Parse(token); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}

func TestEd25519IssueAndParse(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey error: %v", err)
	}

	mgr, err := NewManager(Config{
		TTL:           time.Hour,
		SigningMethod: MethodEd25519,
		Secret:        priv,
		PublicKey:     pub,
	})
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}

	token, err := mgr.Issue("user-ed")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := mgr.Parse(token)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.Subject != "user-ed" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
}

func TestNewManagerRejectsBadConfig(t *testing.T) {
	cases := []Config{
		{TTL: 0, SigningMethod: MethodHS256, Secret: []byte("x")},
		{TTL: time.Hour, SigningMethod: MethodHS256},
		{TTL: time.Hour, SigningMethod: "rs256", Secret: []byte("x")},
		{TTL: time.Hour, SigningMethod: MethodHS256, Secret: []byte("x"), Leeway: 5 * time.Minute},
	}

	for i, cfg := range cases {
		if _, err := NewManager(cfg); err == nil {
			t.Fatalf("config %d: expected rejection", i)
		}
	}
}
