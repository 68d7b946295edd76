package main

import (
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const webhookSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

type webhookResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// handleTelegramWebhook answers 200 to authenticated updates so Telegram
// does not redeliver them.
func (s *server) handleTelegramWebhook(w http.ResponseWriter, r *http.Request) {
	if s.operator == nil {
		writeJSON(w, http.StatusOK, webhookResponse{OK: false, Error: "telegram is not configured"})
		return
	}
	if !s.validWebhookSecret(r) {
		writeJSON(w, http.StatusUnauthorized, webhookResponse{OK: false, Error: "invalid webhook secret"})
		return
	}

	var update tgbotapi.Update
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("decode telegram update: %v", err)
		writeJSON(w, http.StatusOK, webhookResponse{OK: false, Error: "invalid update"})
		return
	}

	if err := s.operator.HandleUpdate(r.Context(), update); err != nil {
		log.Printf("handle telegram update %d: %v", update.UpdateID, err)
		writeJSON(w, http.StatusOK, webhookResponse{OK: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, webhookResponse{OK: true})
}

// validWebhookSecret rejects every update while no secret is configured.
func (s *server) validWebhookSecret(r *http.Request) bool {
	want := s.cfg.TelegramWebhookSecret
	if want == "" {
		return false
	}
	got := r.Header.Get(webhookSecretHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
