package usecase

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"mobsf-sidecar/internal/domain"
)

// reportBudget caps how many characters of the serialized report are placed
// into the system prompt. The cut is a hard one, not aligned to JSON syntax.
const reportBudget = 50000

// roleAliases maps role tags used by other chat dialects onto the tags the
// chat API accepts.
var roleAliases = map[string]string{
	"model": domain.RoleAssistant,
}

// contentFallbacks are consulted in order when a turn has no content.
var contentFallbacks = []func(domain.Turn) (any, bool){
	firstPart,
}

func buildPromptMessages(reportText, message string, history []domain.Turn) []domain.ChatMessage {
	messages := make([]domain.ChatMessage, 0, len(history)+2)
	messages = append(messages, domain.ChatMessage{
		Role:    domain.RoleSystem,
		Content: buildSystemPrompt(reportText),
	})
	for _, turn := range history {
		messages = append(messages, normalizeTurn(turn))
	}
	messages = append(messages, domain.ChatMessage{
		Role:    domain.RoleUser,
		Content: message,
	})
	return messages
}

func buildSystemPrompt(reportText string) string {
	return strings.Join([]string{
		"You are a security analyst assistant for MobSF.",
		"Report Context:",
		truncateChars(reportText, reportBudget),
		"",
		"Answer the user's question based on this report.",
	}, "\n")
}

// truncateChars keeps the first limit characters (code points) of s.
func truncateChars(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

func normalizeTurn(t domain.Turn) domain.ChatMessage {
	return domain.ChatMessage{
		Role:    normalizeRole(t.Role),
		Content: normalizeContent(t),
	}
}

func normalizeRole(role string) string {
	if role == "" {
		return domain.RoleUser
	}
	if canonical, ok := roleAliases[role]; ok {
		return canonical
	}
	return role
}

func normalizeContent(t domain.Turn) string {
	content := t.Content
	if isBlank(content) {
		for _, fallback := range contentFallbacks {
			if v, ok := fallback(t); ok {
				content = v
				break
			}
		}
	}
	return textOf(content)
}

func firstPart(t domain.Turn) (any, bool) {
	if len(t.Parts) == 0 {
		return nil, false
	}
	return t.Parts[0], true
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}

// textOf coerces a JSON value to prompt text. Objects carrying a string
// "text" field (Gemini parts) yield that field.
func textOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case map[string]any:
		if text, ok := x["text"].(string); ok {
			return text
		}
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(buf)
}
