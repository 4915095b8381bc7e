package llm

import "context"

// Request is one chat-style completion request. The same call surface is
// shared by the query formatter, the SQL generator, and the answer formatter,
// each with its own prompt template.
type Request struct {
	System string
	User   string
}

type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}
