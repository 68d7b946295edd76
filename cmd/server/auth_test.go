package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmptySessionSecretDisablesAdmin(t *testing.T) {
	auth := newAuthService([]string{testAdminEmail}, testAdminPassword, "")

	if auth.validateCredentials(testAdminEmail, testAdminPassword) {
		t.Fatalf("login must be refused without a session secret")
	}

	// A token anyone can compute with an empty HMAC key.
	forged := auth.createSessionValue(testAdminEmail)
	if _, ok := auth.verifySessionValue(forged); ok {
		t.Fatalf("token signed with an empty key was accepted")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	if isAuthenticated(req, auth) {
		t.Fatalf("request authenticated without a session secret")
	}
}

func TestSessionForNonAdminEmailIsRejected(t *testing.T) {
	auth := newAuthService([]string{testAdminEmail}, testAdminPassword, "test-secret")

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+auth.createSessionValue("customer@example.com"))
	if isAuthenticated(req, auth) {
		t.Fatalf("signed session for a non-admin email was accepted")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+auth.createSessionValue("Admin@Shiftprint.md"))
	if !isAuthenticated(req, auth) {
		t.Fatalf("admin session with different case was rejected")
	}
}

func TestAdminRoutesRefuseWhenSecretMissing(t *testing.T) {
	ts := newTestServer(t)
	ts.srv.auth = newAuthService([]string{testAdminEmail}, testAdminPassword, "")

	rec := ts.doJSON(t, http.MethodPost, "/api/auth/login", "", loginRequest{Email: testAdminEmail, Password: testAdminPassword})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login status = %d, want 401", rec.Code)
	}

	token := ts.srv.auth.createSessionValue(testAdminEmail)
	if code := ts.doJSON(t, http.MethodGet, "/api/orders", token, nil).Code; code != http.StatusUnauthorized {
		t.Fatalf("orders status = %d, want 401", code)
	}
}
