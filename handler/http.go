package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ServeChat handles POST /api/chat.
func (h *Handler) ServeChat(w http.ResponseWriter, r *http.Request) {
	corrID := correlationID(r.Header.Get(correlationHeader))
	w.Header().Set(correlationHeader, corrID)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "could not read request body"})
		return
	}

	status, payload := h.chat(r.Context(), corrID, body)
	writeJSON(w, status, payload)
}

// ServeChatUI handles GET /chat/{scanHash}/.
func (h *Handler) ServeChatUI(w http.ResponseWriter, r *http.Request) {
	page, err := h.renderPage(chi.URLParam(r, "scanHash"))
	if err != nil {
		h.logger.Error("chat ui: render failed", "err", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "error encoding response", http.StatusInternalServerError)
	}
}
