package llm

import "context"

// CompletionRequest is one system+user exchange with a chat model.
type CompletionRequest struct {
	Purpose string // log tag: "classify" | "normalize"
	System  string
	User    string
}

// Completer is the only thing the pipeline needs from a generative model: one text completion.
// Implementations own transport retries; callers validate the returned text.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req CompletionRequest) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return f(ctx, req)
}
