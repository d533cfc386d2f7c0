package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/hpn/hpn-assist/internal/domain"
)

func TestAccountFlow(t *testing.T) {
	t.Log("=== TEST: Register / Login ===")

	env := newTestEnv(t, domain.Success("x"))
	creds := map[string]string{"email": "user@example.com", "password": "hunter2"}

	w := env.postJSON(t, "/api/register", creds)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	reg := decode[map[string]any](t, w)
	if reg["ok"] != true || reg["email"] != "user@example.com" || reg["id"] != float64(1) {
		t.Errorf("Unexpected register body: %v", reg)
	}
	t.Log("✓ Registered")

	w = env.postJSON(t, "/api/register", creds)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for duplicate, got %d", w.Code)
	}

	w = env.postJSON(t, "/api/login", creds)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body := decode[map[string]any](t, w); body["email"] != "user@example.com" {
		t.Errorf("Unexpected login body: %v", body)
	}
	t.Log("✓ Logged in")

	w = env.postJSON(t, "/api/login", map[string]string{"email": "user@example.com", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for wrong password, got %d", w.Code)
	}
	if body := w.Body.String(); strings.Contains(body, "hunter2") || strings.Contains(body, "password_hash") {
		t.Errorf("Response leaks credentials: %s", body)
	}

	w = env.postJSON(t, "/api/login", map[string]string{"email": "nobody@example.com", "password": "x"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for unknown user, got %d", w.Code)
	}
}

func TestAccount_Validation(t *testing.T) {
	env := newTestEnv(t, domain.Success("x"))

	for _, body := range []map[string]string{
		{"email": "not-an-email", "password": "x"},
		{"email": "a@example.com"},
		{},
	} {
		w := env.postJSON(t, "/api/register", body)
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("body %v: expected 422, got %d", body, w.Code)
		}
	}
}
