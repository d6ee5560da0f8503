// Package llm provides a uniform contract over external text-generation
// backends and the prioritized gateway that selects between them.
package llm

import "context"

// Message is a single turn in the generation request.
type Message struct {
	Role    string // "user", "assistant" or "system"
	Content string
}

// Request carries everything a backend needs to generate a reply.
type Request struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// Provider is the uniform backend contract. Variants correspond to distinct
// backends (cloud hosted, locally hosted); selection happens in the Gateway.
type Provider interface {
	Name() string
	Model() string

	// Available reports whether the backend can be called right now. Cloud
	// backends check credential presence; local backends probe the server.
	Available(ctx context.Context) bool

	// Generate produces the raw model output for one turn.
	Generate(ctx context.Context, req Request) (string, error)
}
