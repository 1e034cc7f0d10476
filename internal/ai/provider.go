package ai

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is a chat-completion backend. The follow-up filter sends a single
// user-role prompt and reads back one textual reply; no streaming is needed.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}
