package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

var chatPagePath = regexp.MustCompile(`^/chat/([^/]+)/?$`)

// Handle serves API Gateway proxy events with the same routes as the HTTP
// server: POST /api/chat and GET /chat/{scanHash}/.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(headerValue(event.Headers, correlationHeader))
	path := strings.TrimRight(event.Path, "/")

	switch {
	case event.HTTPMethod == http.MethodPost && path == "/api/chat":
		body := []byte(event.Body)
		if event.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(event.Body)
			if err != nil {
				return jsonResponse(http.StatusBadRequest, corrID, errorResponse{Error: "invalid JSON body"}), nil
			}
			body = decoded
		}
		status, payload := h.chat(ctx, corrID, body)
		return jsonResponse(status, corrID, payload), nil

	case event.HTTPMethod == http.MethodGet && chatPagePath.MatchString(event.Path):
		scanHash := chatPagePath.FindStringSubmatch(event.Path)[1]
		if v := event.PathParameters["scanHash"]; v != "" {
			scanHash = v
		}
		page, err := h.renderPage(scanHash)
		if err != nil {
			h.logger.Error("chat ui: render failed", "correlation_id", corrID, "err", err)
			return jsonResponse(http.StatusInternalServerError, corrID, errorResponse{Error: "failed to render page"}), nil
		}
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers: map[string]string{
				"Content-Type":    "text/html; charset=utf-8",
				correlationHeader: corrID,
			},
			Body: string(page),
		}, nil
	}

	return jsonResponse(http.StatusNotFound, corrID, errorResponse{Error: "not found"}), nil
}

func jsonResponse(status int, corrID string, payload any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"error encoding response"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: corrID,
		},
		Body: string(body),
	}
}

// headerValue looks a header up case-insensitively; API Gateway forwards
// header names as the client sent them.
func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
