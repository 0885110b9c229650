package daho

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterSuccess(t *testing.T) {
	engine := newTestEngine(t, engineTestConfig())

	res := mustRegister(t, engine, aliceRequest())

	if res.ID == "" {
		t.Fatal("expected created user id")
	}
	if res.Email != "a@x.com" || res.Username != "alice" {
		t.Fatalf("unexpected identity in result: %+v", res)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	engine := newTestEngine(t, engineTestConfig())
	ctx := context.Background()

	cases := []RegisterRequest{
		{Email: "a@x.com", Username: "alice"},
		{Email: "a@x.com", Password: "Str0ng!pass"},
		{Password: "Str0ng!pass", PasswordConfirm: "Str0ng!pass"},
	}
	for i, req := range cases {
		if _, err := engine.Register(ctx, req); !errors.Is(err, ErrMissingFields) {
			t.Fatalf("case %d: expected ErrMissingFields, got %v", i, err)
		}
	}
}

func TestRegisterConfirmationMismatch(t *testing.T) {
	engine := newTestEngine(t, engineTestConfig())

	req := aliceRequest()
	req.PasswordConfirm = "Str0ng!pass2"

	if _, err := engine.Register(context.Background(), req); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
}

func TestRegisterWeakPassword(t *testing.T) {
	engine := newTestEngine(t, engineTestConfig())
	ctx := context.Background()

	for _, pwd := range []string{"Sh0rt!", "alllettersonly", "1234567890!", "letters4nddigits"} {
		req := aliceRequest()
		req.Password = pwd
		req.PasswordConfirm = pwd

		if _, err := engine.Register(ctx, req); !errors.Is(err, ErrPasswordPolicy) {
			t.Fatalf("password %q: expected ErrPasswordPolicy, got %v", pwd, err)
		}
	}
}

func TestRegisterDuplicateIsGeneric(t *testing.T) {
	engine := newTestEngine(t, engineTestConfig())
	ctx := context.Background()

	mustRegister(t, engine, aliceRequest())

	// Same email, different case, different username.
	dup := aliceRequest()
	dup.Email = "A@X.COM"
	dup.Username = "alice2"
	_, err := engine.Register(ctx, dup)
	if !errors.Is(err, ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity for email collision, got %v", err)
	}

	// Same username, fresh email. The error must be indistinguishable from
	// the email-collision case.
	dup = aliceRequest()
	dup.Email = "b@x.com"
	dup.Username = "ALICE"
	_, err2 := engine.Register(ctx, dup)
	if !errors.Is(err2, ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity for username collision, got %v", err2)
	}
	if err.Error() != err2.Error() {
		t.Fatal("duplicate errors must not disclose which field collided")
	}
}

func TestRegisterUsernameOnly(t *testing.T) {
	engine := newTestEngine(t, engineTestConfig())

	res := mustRegister(t, engine, RegisterRequest{
		Username:        "bob",
		Password:        "Str0ng!pass",
		PasswordConfirm: "Str0ng!pass",
	})

	if res.Email != "" || res.Username != "bob" {
		t.Fatalf("unexpected identity in result: %+v", res)
	}
}
