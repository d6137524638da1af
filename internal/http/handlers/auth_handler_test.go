package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestSignup_CreatesAccount(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/auth/signup", "", SignupRequest{
		Username:        "ada",
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
		Email:           "ada@example.com",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup = %d body=%s", w.Code, w.Body.String())
	}

	var resp AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User == nil || resp.User.Username != "ada" || resp.User.ID == "" {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
	if resp.User.Streak != 0 {
		t.Fatalf("fresh account streak = %d, want 0", resp.User.Streak)
	}
}

func TestSignup_DuplicateUsernameConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ada")

	w := env.do(t, http.MethodPost, "/auth/signup", "", SignupRequest{
		Username:        "ada",
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
	}, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate signup = %d, want 409", w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != ErrCodeConflict {
		t.Fatalf("code = %q, want %q", resp.Code, ErrCodeConflict)
	}
}

func TestSignup_ValidationFailures(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		req  SignupRequest
	}{
		{"mismatch", SignupRequest{Username: "bob", Password: "hunter22", ConfirmPassword: "other22"}},
		{"too short", SignupRequest{Username: "bob", Password: "abc", ConfirmPassword: "abc"}},
		{"blank username", SignupRequest{Username: "   ", Password: "hunter22", ConfirmPassword: "hunter22"}},
	}
	for _, tc := range cases {
		w := env.do(t, http.MethodPost, "/auth/signup", "", tc.req, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: signup = %d, want 400", tc.name, w.Code)
		}
	}
}

func TestLogin_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ada")

	w := env.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Username: "ada", Password: "hunter22"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login = %d body=%s", w.Code, w.Body.String())
	}

	var resp AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User == nil || resp.User.Username != "ada" {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
}

func TestLogin_BadCredentialsUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ada")

	// Wrong password and unknown user look the same to the client.
	for _, req := range []LoginRequest{
		{Username: "ada", Password: "wrong-pass"},
		{Username: "nobody", Password: "hunter22"},
	} {
		w := env.do(t, http.MethodPost, "/auth/login", "", req, nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("login %q = %d, want 401", req.Username, w.Code)
		}
	}
}
