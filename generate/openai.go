package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o"

	toolName = "generate_whiteboard_syntax"
	toolArg  = "whiteboard_syntax"
)

// OpenAIClient implements Client against the chat completions API, forcing
// the model to answer through a single markup-producing function.
type OpenAIClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIClient creates a new client. An empty model selects DefaultModel.
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// WithBaseURL points the client at a compatible endpoint.
func (c *OpenAIClient) WithBaseURL(url string) *OpenAIClient {
	c.baseURL = strings.TrimRight(url, "/")
	return c
}

type chatRequest struct {
	Model       string     `json:"model"`
	Messages    []Message  `json:"messages"`
	Tools       []toolSpec `json:"tools"`
	ToolChoice  toolChoice `json:"tool_choice"`
	Temperature float64    `json:"temperature"`
	MaxTokens   int        `json:"max_tokens,omitempty"`
}

type toolSpec struct {
	Type     string       `json:"type"`
	Function functionSpec `json:"function"`
}

type functionSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type toolChoice struct {
	Type     string       `json:"type"`
	Function functionSpec `json:"function"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		FinishReason string `json:"finish_reason"`
		Message      struct {
			Content   *string `json:"content"`
			ToolCalls []struct {
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

var markupTool = toolSpec{
	Type: "function",
	Function: functionSpec{
		Name:        toolName,
		Description: "Generates Whiteboard Syntax for a given problem.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				toolArg: map[string]any{
					"type":        "string",
					"description": "The generated Whiteboard Syntax representing the solution to the problem.",
				},
			},
			"required": []string{toolArg},
		},
	},
}

// Complete sends the conversation and returns the markup the model produced.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message, opts *RequestOptions) (*Response, error) {
	start := time.Now()
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Tools:       []toolSpec{markupTool},
		ToolChoice:  toolChoice{Type: "function", Function: functionSpec{Name: toolName}},
		Temperature: 0.2,
	}
	if opts != nil {
		reqBody.MaxTokens = opts.MaxTokens
		if opts.Temperature > 0 {
			reqBody.Temperature = opts.Temperature
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s - %s", resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}

	var apiResp chatResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("response contained no choices")
	}
	choice := apiResp.Choices[0]
	out := &Response{
		InputTokens:  apiResp.Usage.PromptTokens,
		OutputTokens: apiResp.Usage.CompletionTokens,
		Duration:     time.Since(start),
		Model:        apiResp.Model,
		FinishReason: choice.FinishReason,
	}

	if calls := choice.Message.ToolCalls; len(calls) > 0 {
		var args map[string]string
		if err := json.Unmarshal([]byte(calls[0].Function.Arguments), &args); err != nil {
			return nil, fmt.Errorf("invalid JSON in function arguments: %s", calls[0].Function.Arguments)
		}
		markup, ok := args[toolArg]
		if !ok || markup == "" {
			return nil, fmt.Errorf("function arguments did not contain %q", toolArg)
		}
		out.Markup = markup
		out.ViaTool = true
		return out, nil
	}
	if choice.Message.Content != nil {
		out.Markup = *choice.Message.Content
	}
	return out, nil
}
