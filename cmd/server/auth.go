package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"
)

const sessionCookieName = "shiftprint_session"

type authService struct {
	adminEmails   []string
	adminPassword string
	sessionSecret []byte
}

func newAuthService(adminEmails []string, adminPassword, sessionSecret string) *authService {
	return &authService{
		adminEmails:   adminEmails,
		adminPassword: adminPassword,
		sessionSecret: []byte(sessionSecret),
	}
}

// validateCredentials compares against every configured admin so the timing
// does not reveal which email matched.
func (a *authService) validateCredentials(email, password string) bool {
	if len(a.sessionSecret) == 0 || a.adminPassword == "" || email == "" {
		return false
	}

	emailOK := 0
	for _, admin := range a.adminEmails {
		emailOK |= subtle.ConstantTimeCompare([]byte(strings.ToLower(admin)), []byte(strings.ToLower(email)))
	}
	passwordOK := subtle.ConstantTimeCompare([]byte(a.adminPassword), []byte(password))
	return emailOK&passwordOK == 1
}

func (a *authService) createSessionValue(email string) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(email))
	mac := hmac.New(sha256.New, a.sessionSecret)
	_, _ = mac.Write([]byte(payload))
	signature := hex.EncodeToString(mac.Sum(nil))
	return payload + "." + signature
}

func (a *authService) verifySessionValue(value string) (string, bool) {
	if len(a.sessionSecret) == 0 {
		return "", false
	}
	parts := strings.Split(value, ".")
	if len(parts) != 2 {
		return "", false
	}

	payload := parts[0]
	signature := parts[1]

	mac := hmac.New(sha256.New, a.sessionSecret)
	_, _ = mac.Write([]byte(payload))
	expected := mac.Sum(nil)

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return "", false
	}
	if !hmac.Equal(provided, expected) {
		return "", false
	}

	decoded, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", false
	}
	if len(decoded) == 0 {
		return "", false
	}

	return string(decoded), true
}

func (a *authService) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *authService) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionToken takes the bearer token first and falls back to the cookie.
func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// isAdmin reports whether email is one of the configured admins.
func (a *authService) isAdmin(email string) bool {
	for _, admin := range a.adminEmails {
		if strings.EqualFold(admin, email) {
			return true
		}
	}
	return false
}

func isAuthenticated(r *http.Request, auth *authService) bool {
	token := sessionToken(r)
	if token == "" {
		return false
	}
	email, ok := auth.verifySessionValue(token)
	return ok && auth.isAdmin(email)
}

func (s *server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isAuthenticated(r, s.auth) {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}
