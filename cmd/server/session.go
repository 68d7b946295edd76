package main

import (
	"net/http"
	"strings"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Email   string `json:"email"`
}

type contactInfoResponse struct {
	Telegram string `json:"telegram"`
	WhatsApp string `json:"whatsapp"`
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.TrimSpace(req.Email)
	if !s.auth.validateCredentials(email, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token := s.auth.createSessionValue(email)
	s.auth.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Token: token, Email: email})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *server) handleContactInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, contactInfoResponse{
		Telegram: "https://t.me/" + s.cfg.TelegramUsername,
		WhatsApp: s.cfg.WhatsAppLink,
	})
}
