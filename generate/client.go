// Package generate asks a chat-completion model to write whiteboard markup
// for a problem description, and to revise earlier markup on request.
package generate

import (
	"context"
	"fmt"
	"time"

	"github.com/ByLCY/whiteboard/logging"
)

// Message represents a conversation message.
type Message struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// RequestOptions configures a single completion request.
type RequestOptions struct {
	MaxTokens   int
	Temperature float64
}

// Response from a completion. Markup holds the tool-call argument when the
// model answered through the markup tool, otherwise the plain message text.
type Response struct {
	Markup       string
	ViaTool      bool
	InputTokens  int
	OutputTokens int
	Duration     time.Duration
	Model        string
	FinishReason string
}

// WasTruncated reports whether the response hit the token limit.
func (r *Response) WasTruncated() bool { return r.FinishReason == "length" }

// Client is the interface for completion providers.
type Client interface {
	Complete(ctx context.Context, messages []Message, opts *RequestOptions) (*Response, error)
}

// CompleteWithRetry attempts completion with exponential backoff between
// failures. Context cancellation is never retried.
func CompleteWithRetry(ctx context.Context, c Client, messages []Message, maxRetries int, opts *RequestOptions) (*Response, error) {
	return completeWithRetry(ctx, c, messages, maxRetries, opts, time.Second)
}

func completeWithRetry(ctx context.Context, c Client, messages []Message, maxRetries int, opts *RequestOptions, base time.Duration) (*Response, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}
	log := logging.For("generate")
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		resp, err := c.Complete(ctx, messages, opts)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if i == maxRetries-1 {
			break
		}
		backoff := base << uint(i)
		log.Warn("completion failed, retrying", "attempt", i+1, "backoff", backoff, "err", err)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}
