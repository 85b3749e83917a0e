package source

import "encoding/json"

// RawEntry represents a single JSONL line from any supported usage
// log. The field set is the union of the shapes we ingest: Claude
// session logs nest usage under message.usage, while flat API logs
// put token counts and cost at the top level.
type RawEntry struct {
	// Timestamp may be an ISO-8601 string or a numeric epoch, so it
	// is decoded lazily by the normalizer.
	Timestamp json.RawMessage `json:"timestamp,omitempty"`

	Type  string `json:"type,omitempty"`
	Model string `json:"model,omitempty"`

	RequestID  string `json:"requestId,omitempty"`
	RequestID2 string `json:"request_id,omitempty"`
	MessageID  string `json:"message_id,omitempty"`

	// Top-level token fields (flat log shape).
	InputTokens              int64 `json:"input_tokens,omitempty"`
	OutputTokens             int64 `json:"output_tokens,omitempty"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens,omitempty"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens,omitempty"`

	// Nested shapes.
	Message *RawMessage `json:"message,omitempty"`
	Usage   *RawUsage   `json:"usage,omitempty"`
	Tokens  *RawTokens  `json:"tokens,omitempty"`

	CostUSD float64 `json:"costUSD,omitempty"`
	Cost    float64 `json:"cost,omitempty"`
}

// RawMessage is the assistant message envelope in Claude session logs.
type RawMessage struct {
	ID    string    `json:"id"`
	Role  string    `json:"role"`
	Model string    `json:"model"`
	Usage *RawUsage `json:"usage,omitempty"`
}

// RawUsage holds token counts as reported by the Anthropic API.
type RawUsage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
}

// RawTokens holds token counts in the OpenAI-style shape used by
// flat usage logs.
type RawTokens struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// DiscoveredFile is a JSONL usage file found during directory scanning.
type DiscoveredFile struct {
	Path     string
	Platform string
}
