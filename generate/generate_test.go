package generate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const sampleMarkup = `[text id=1] content="Problem: Solve $x^2 - 5x + 6 = 0$" at=(50,50) color=darkred size=36
[math id=2] content="$(x-2)(x-3) = 0$" color=blue size=32`

func toolReply(markup string) string {
	args, _ := json.Marshal(map[string]string{toolArg: markup})
	resp := map[string]any{
		"model": "gpt-4o",
		"choices": []any{map[string]any{
			"finish_reason": "stop",
			"message": map[string]any{
				"content": nil,
				"tool_calls": []any{map[string]any{
					"function": map[string]any{"name": toolName, "arguments": string(args)},
				}},
			},
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 20},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestOpenAIClientUsesForcedTool(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(toolReply(sampleMarkup)))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", "").WithBaseURL(srv.URL + "/")
	resp, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "x"}}, nil)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if !resp.ViaTool || resp.Markup != sampleMarkup {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.InputTokens != 10 || resp.OutputTokens != 20 {
		t.Fatalf("usage not parsed: %+v", resp)
	}
	if got.Model != DefaultModel || got.ToolChoice.Function.Name != toolName || len(got.Tools) != 1 {
		t.Fatalf("request did not force the markup tool: %+v", got)
	}
}

func TestOpenAIClientFallsBackToContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"model":"m","choices":[{"finish_reason":"length","message":{"content":"[text id=1] content=\"a\""}}]}`))
	}))
	defer srv.Close()
	resp, err := NewOpenAIClient("k", "m").WithBaseURL(srv.URL).Complete(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if resp.ViaTool || resp.Markup != `[text id=1] content="a"` || !resp.WasTruncated() {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestOpenAIClientReportsAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad key"}}`))
	}))
	defer srv.Close()
	_, err := NewOpenAIClient("k", "").WithBaseURL(srv.URL).Complete(context.Background(), nil, nil)
	if err == nil || !strings.Contains(err.Error(), "bad key") || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected API error, got %v", err)
	}
}

// scripted replays canned results and records what it was asked.
type scripted struct {
	errs    []error
	markups []string
	calls   [][]Message
}

func (s *scripted) Complete(_ context.Context, messages []Message, _ *RequestOptions) (*Response, error) {
	i := len(s.calls)
	s.calls = append(s.calls, messages)
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	return &Response{Markup: s.markups[i]}, nil
}

func TestCompleteWithRetry(t *testing.T) {
	c := &scripted{errs: []error{errors.New("503"), errors.New("503")}, markups: []string{"", "", "ok"}}
	resp, err := completeWithRetry(context.Background(), c, nil, 3, nil, time.Millisecond)
	if err != nil || resp.Markup != "ok" || len(c.calls) != 3 {
		t.Fatalf("expected success on third attempt: %v %+v", err, resp)
	}

	c = &scripted{errs: []error{errors.New("a"), errors.New("b")}}
	_, err = completeWithRetry(context.Background(), c, nil, 2, nil, time.Millisecond)
	if err == nil || !strings.Contains(err.Error(), "after 2 attempts") {
		t.Fatalf("expected exhaustion error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c = &scripted{errs: []error{errors.New("a")}}
	if _, err := completeWithRetry(ctx, c, nil, 5, nil, time.Millisecond); !errors.Is(err, context.Canceled) || len(c.calls) != 1 {
		t.Fatalf("cancellation must not be retried: %v", err)
	}
}

func TestClean(t *testing.T) {
	raw := "```whiteboard\n[text id=1] content=\"a\"  \n```\n"
	if got := Clean(raw); got != `[text id=1] content="a"` {
		t.Fatalf("unexpected clean result %q", got)
	}
	raw = "Sure! Here is the board:\n\n  # step one\n[text id=1] content=\"a\"\n\n[math id=2] content=\"$x$\"\nLet me know if you need changes."
	want := "# step one\n[text id=1] content=\"a\"\n[math id=2] content=\"$x$\""
	if got := Clean(raw); got != want {
		t.Fatalf("prose around markup should be dropped, got %q", got)
	}
	if got := Clean("I cannot draw that."); got != "" {
		t.Fatalf("prose-only reply should clean to empty, got %q", got)
	}
}

func TestSystemPromptIsFilled(t *testing.T) {
	p := SystemPrompt()
	if strings.Contains(p, "${") {
		t.Fatalf("unfilled placeholder in prompt")
	}
	for _, want := range []string{"darkgrey", "(50,50)", "size * 1.5"} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt should mention %q", want)
		}
	}
}

func TestSessionTweaksBuildOnPriorMarkup(t *testing.T) {
	c := &scripted{markups: []string{sampleMarkup, "```\n" + sampleMarkup + "\n[text id=3] content=\"x = 2 or x = 3\" color=green\n```", "not markup"}}
	s := NewSession(NewGenerator(c, 1))

	markup, doc, err := s.Submit(context.Background(), "  Solve x^2 - 5x + 6 = 0 ")
	if err != nil || len(doc.Elements()) != 2 || markup != sampleMarkup {
		t.Fatalf("first submit failed: %v", err)
	}
	if s.Problem() != "Solve x^2 - 5x + 6 = 0" {
		t.Fatalf("problem not recorded: %q", s.Problem())
	}

	_, doc, err = s.Submit(context.Background(), "add the answer")
	if err != nil || len(doc.Elements()) != 3 {
		t.Fatalf("tweak failed: %v", err)
	}
	tweakMsg := c.calls[1][1].Content
	if !strings.Contains(tweakMsg, sampleMarkup) || !strings.Contains(tweakMsg, "add the answer") || !strings.Contains(tweakMsg, s.Problem()) {
		t.Fatalf("tweak prompt should carry problem, prior markup and request:\n%s", tweakMsg)
	}

	before := s.Markup()
	if _, _, err := s.Submit(context.Background(), "break it"); err == nil {
		t.Fatalf("invalid markup should be rejected")
	}
	if s.Markup() != before {
		t.Fatalf("session should keep previous markup after a bad revision")
	}
}
