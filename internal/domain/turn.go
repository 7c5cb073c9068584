package domain

// Turn is one caller-supplied conversation history entry. Callers speak
// several dialects: OpenAI-style {role, content} and Gemini-style
// {role: "model", parts: [...]}, so Content and Parts stay untyped until the
// relay normalizes them.
type Turn struct {
	Role    string `json:"role,omitempty"`
	Content any    `json:"content,omitempty"`
	Parts   []any  `json:"parts,omitempty"`
}
