package usecase

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"mobsf-sidecar/internal/domain"
)

func TestBuildPromptMessages_Order(t *testing.T) {
	msgs := buildPromptMessages(`{"verdict":"safe"}`, "is this app safe?", []domain.Turn{
		{Role: "user", Content: "hi"},
		{Role: "model", Parts: []any{"hello there"}},
	})
	require.Len(t, msgs, 4)
	require.Equal(t, domain.RoleSystem, msgs[0].Role)
	require.Equal(t, domain.ChatMessage{Role: "user", Content: "hi"}, msgs[1])
	require.Equal(t, domain.ChatMessage{Role: "assistant", Content: "hello there"}, msgs[2])
	require.Equal(t, domain.ChatMessage{Role: "user", Content: "is this app safe?"}, msgs[3])

	for _, m := range msgs[1:] {
		require.NotEqual(t, domain.RoleSystem, m.Role)
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	prompt := buildSystemPrompt(`{"score":10}`)
	require.True(t, strings.HasPrefix(prompt, "You are a security analyst assistant for MobSF."))
	require.Contains(t, prompt, "Report Context:\n{\"score\":10}\n")
	require.True(t, strings.HasSuffix(prompt, "Answer the user's question based on this report."))
}

func TestBuildSystemPrompt_BudgetBoundary(t *testing.T) {
	exact := strings.Repeat("a", reportBudget)
	require.Contains(t, buildSystemPrompt(exact), exact)

	over := exact + "TAIL"
	prompt := buildSystemPrompt(over)
	require.Contains(t, prompt, exact)
	require.NotContains(t, prompt, "TAIL")
}

func TestTruncateChars(t *testing.T) {
	require.Equal(t, "abc", truncateChars("abc", 5))
	require.Equal(t, "ab", truncateChars("abc", 2))
	require.Equal(t, "", truncateChars("abc", 0))
	require.Equal(t, "héé", truncateChars("hééllo", 3))
	require.Equal(t, "日本", truncateChars("日本語", 2))
}

func TestNormalizeRole(t *testing.T) {
	cases := map[string]string{
		"model":     "assistant",
		"assistant": "assistant",
		"user":      "user",
		"":          "user",
		"system":    "system",
	}
	for in, want := range cases {
		require.Equal(t, want, normalizeRole(in), "role=%q", in)
	}
}

func TestNormalizeContent(t *testing.T) {
	cases := []struct {
		name string
		turn domain.Turn
		want string
	}{
		{name: "content", turn: domain.Turn{Content: "hi"}, want: "hi"},
		{name: "content wins over parts", turn: domain.Turn{Content: "hi", Parts: []any{"ignored"}}, want: "hi"},
		{name: "first part", turn: domain.Turn{Parts: []any{"first", "second"}}, want: "first"},
		{name: "empty content falls back", turn: domain.Turn{Content: "", Parts: []any{"from parts"}}, want: "from parts"},
		{name: "gemini text part", turn: domain.Turn{Parts: []any{map[string]any{"text": "gemini"}}}, want: "gemini"},
		{name: "numeric part", turn: domain.Turn{Parts: []any{json.Number("42")}}, want: "42"},
		{name: "float part", turn: domain.Turn{Parts: []any{1.5}}, want: "1.5"},
		{name: "bool content", turn: domain.Turn{Content: true}, want: "true"},
		{name: "object content", turn: domain.Turn{Content: map[string]any{"k": "v"}}, want: `{"k":"v"}`},
		{name: "no content no parts", turn: domain.Turn{}, want: ""},
		{name: "empty parts", turn: domain.Turn{Parts: []any{}}, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, normalizeContent(tc.turn))
		})
	}
}
