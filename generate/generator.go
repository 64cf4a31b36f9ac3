package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/ByLCY/whiteboard/binding"
	"github.com/ByLCY/whiteboard/dsl"
	"github.com/ByLCY/whiteboard/layout"
	"github.com/ByLCY/whiteboard/logging"
	"github.com/ByLCY/whiteboard/palette"
)

// Generator turns problem descriptions into whiteboard markup.
type Generator struct {
	client  Client
	retries int
	opts    *RequestOptions
	system  string
}

// NewGenerator creates a generator backed by client.
func NewGenerator(client Client, retries int) *Generator {
	return &Generator{
		client:  client,
		retries: retries,
		opts:    &RequestOptions{MaxTokens: 4096},
		system:  SystemPrompt(),
	}
}

// SystemPrompt renders the instructions given to the model.
func SystemPrompt() string {
	return binding.Interpolate(systemPrompt, map[string]any{
		"palette":    strings.Join(palette.Names(), ", "),
		"left":       layout.DefaultLeftMargin,
		"top":        50,
		"lineFactor": layout.DefaultLineFactor,
		"gap":        layout.DefaultGap,
	})
}

// Generate asks for fresh markup describing problem.
func (g *Generator) Generate(ctx context.Context, problem string) (string, error) {
	problem = strings.TrimSpace(problem)
	if problem == "" {
		return "", fmt.Errorf("problem description is empty")
	}
	return g.complete(ctx, []Message{
		{Role: "system", Content: g.system},
		{Role: "user", Content: problem},
	})
}

// Tweak asks for a revision of prior markup.
func (g *Generator) Tweak(ctx context.Context, problem, prior, tweak string) (string, error) {
	tweak = strings.TrimSpace(tweak)
	if tweak == "" {
		return "", fmt.Errorf("tweak description is empty")
	}
	user := binding.Interpolate(tweakPrompt, map[string]any{
		"problem": problem,
		"markup":  prior,
		"tweak":   tweak,
	})
	return g.complete(ctx, []Message{
		{Role: "system", Content: g.system},
		{Role: "user", Content: user},
	})
}

func (g *Generator) complete(ctx context.Context, messages []Message) (string, error) {
	resp, err := CompleteWithRetry(ctx, g.client, messages, g.retries, g.opts)
	if err != nil {
		return "", fmt.Errorf("generating markup: %w", err)
	}
	log := logging.For("generate")
	log.Info("markup generated", "model", resp.Model, "tool", resp.ViaTool,
		"input_tokens", resp.InputTokens, "output_tokens", resp.OutputTokens, "duration", resp.Duration)
	if resp.WasTruncated() {
		log.Warn("markup was truncated by the token limit")
	}
	markup := Clean(resp.Markup)
	if markup == "" {
		return "", fmt.Errorf("model returned no markup")
	}
	return markup, nil
}

// Clean keeps only markup records and comments, dropping code fences,
// blank lines and any prose around them. Model output is untrusted: it
// still goes through the regular parser.
func Clean(raw string) string {
	var keep []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, "#") {
			continue
		}
		keep = append(keep, trimmed)
	}
	return strings.TrimSpace(strings.Join(keep, "\n"))
}

// Session keeps the problem and latest markup so successive tweaks build
// on each other. It is not safe for concurrent use.
type Session struct {
	gen     *Generator
	problem string
	markup  string
}

// NewSession starts an empty session.
func NewSession(gen *Generator) *Session { return &Session{gen: gen} }

// Submit treats the first input as the problem and later inputs as tweaks.
// The returned markup has been parsed successfully; on a parse failure the
// session keeps its previous markup.
func (s *Session) Submit(ctx context.Context, input string) (string, *dsl.Document, error) {
	var (
		markup string
		err    error
	)
	if s.markup == "" {
		markup, err = s.gen.Generate(ctx, input)
	} else {
		markup, err = s.gen.Tweak(ctx, s.problem, s.markup, input)
	}
	if err != nil {
		return "", nil, err
	}
	doc, err := dsl.ParseString(markup)
	if err != nil {
		return markup, nil, fmt.Errorf("generated markup is invalid: %w", err)
	}
	if s.markup == "" {
		s.problem = strings.TrimSpace(input)
	}
	s.markup = markup
	return markup, doc, nil
}

// Problem returns the problem description of the session.
func (s *Session) Problem() string { return s.problem }

// Markup returns the latest accepted markup.
func (s *Session) Markup() string { return s.markup }
