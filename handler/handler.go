package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"mobsf-sidecar/internal/domain"
	"mobsf-sidecar/internal/metrics"
	"mobsf-sidecar/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"
	maxBodyBytes      = 4 << 20
	outcomeOK         = "ok"
)

type RelayUseCase interface {
	Relay(ctx context.Context, in usecase.RelayInput) (usecase.RelayOutput, error)
}

type chatRequest struct {
	Hash    string        `json:"hash"`
	Message string        `json:"message"`
	History []domain.Turn `json:"history"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the chat API and the chat page over plain HTTP and over
// API Gateway proxy events.
type Handler struct {
	relay   RelayUseCase
	logger  *slog.Logger
	metrics *metrics.RelayMetrics
	page    *template.Template
}

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func WithMetrics(m *metrics.RelayMetrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

func NewHandler(relay RelayUseCase, opts ...Option) (*Handler, error) {
	if relay == nil {
		return nil, errors.New("handler: relay use case must not be nil")
	}
	page, err := parsePage()
	if err != nil {
		return nil, err
	}
	h := &Handler{
		relay:  relay,
		logger: slog.Default(),
		page:   page,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// chat decodes a chat request body, runs the relay and returns the status
// code and JSON payload to send back.
func (h *Handler) chat(ctx context.Context, correlationID string, body []byte) (int, any) {
	start := time.Now()

	var req chatRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		h.logger.Warn("chat: invalid request body", "correlation_id", correlationID, "err", err)
		h.metrics.ObserveRelay(string(usecase.ErrorValidation), time.Since(start).Seconds())
		return http.StatusBadRequest, errorResponse{Error: "invalid JSON body"}
	}

	out, err := h.relay.Relay(ctx, usecase.RelayInput{
		ScanHash: req.Hash,
		Message:  req.Message,
		History:  req.History,
	})
	elapsed := time.Since(start)
	if err != nil {
		status, code, detail := mapError(err)
		h.logger.Warn("chat: relay failed",
			"correlation_id", correlationID,
			"scan_hash", req.Hash,
			"code", code,
			"duration_ms", elapsed.Milliseconds(),
			"err", err,
		)
		h.metrics.ObserveRelay(string(code), elapsed.Seconds())
		return status, errorResponse{Error: detail}
	}

	h.logger.Info("chat: relay completed",
		"correlation_id", correlationID,
		"scan_hash", req.Hash,
		"history_len", len(req.History),
		"duration_ms", elapsed.Milliseconds(),
	)
	h.metrics.ObserveRelay(outcomeOK, elapsed.Seconds())
	return http.StatusOK, chatResponse{Response: out.Reply}
}

func mapError(err error) (int, usecase.ErrorCode, string) {
	var usecaseErr *usecase.Error
	if !errors.As(err, &usecaseErr) {
		return http.StatusInternalServerError, usecase.ErrorInternal, err.Error()
	}
	if usecaseErr.Code == usecase.ErrorValidation {
		return http.StatusBadRequest, usecaseErr.Code, usecaseErr.Detail()
	}
	return http.StatusInternalServerError, usecaseErr.Code, usecaseErr.Detail()
}

func (h *Handler) renderPage(scanHash string) ([]byte, error) {
	var buf bytes.Buffer
	if err := h.page.Execute(&buf, struct{ ScanHash string }{ScanHash: scanHash}); err != nil {
		return nil, fmt.Errorf("handler: render chat page: %w", err)
	}
	return buf.Bytes(), nil
}

func correlationID(value string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return uuid.NewString()
}
