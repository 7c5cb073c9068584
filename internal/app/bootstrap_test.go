package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"mobsf-sidecar/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		MobSFURL:      "http://127.0.0.1:1",
		MobSFTimeout:  100 * time.Millisecond,
		OpenAIAPIKey:  "sk-test",
		OpenAIModel:   "gpt-4o",
		OpenAITimeout: time.Second,
	}
}

func TestLoadSecrets_NoPrefixIsNoop(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, LoadSecrets(context.Background(), cfg))
	require.Equal(t, "sk-test", cfg.OpenAIAPIKey)
}

func TestNewHandler_Wires(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	h, err := NewHandler(testConfig(), logger, prometheus.NewRegistry())
	require.NoError(t, err)

	// MobSF is unreachable, so the relay fails after validation passes.
	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/api/chat",
		Body:       `{"hash":"abc","message":"hi"}`,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Contains(t, resp.Body, "request failed")
}

func TestNewHandler_Errors(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	cfg := testConfig()
	cfg.MobSFURL = ""
	_, err := NewHandler(cfg, logger, prometheus.NewRegistry())
	require.ErrorContains(t, err, "MobSF")

	cfg = testConfig()
	cfg.OpenAIAPIKey = ""
	_, err = NewHandler(cfg, logger, prometheus.NewRegistry())
	require.ErrorContains(t, err, "OpenAI")

	cfg = testConfig()
	cfg.OpenAIModel = ""
	_, err = NewHandler(cfg, logger, prometheus.NewRegistry())
	require.ErrorContains(t, err, "relay")
}
