package llm

import (
	"context"
	"errors"
)

// ErrSchema signals the provider answered 200 but the payload does not match
// the completion contract (no choices, missing message).
var ErrSchema = errors.New("llmclient: response missing expected fields")

// CompletionRequest is one prompt to turn into narrative text. MaxTokens is
// the budget the prompt composer derived for the generated portion.
type CompletionRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float32
}

func (r *CompletionRequest) Validate() error {
	if r.Prompt == "" {
		return errors.New("prompt is required")
	}
	if r.MaxTokens < 0 {
		return errors.New("max tokens must not be negative")
	}
	if r.Temperature < 0 || r.Temperature > 2 {
		return errors.New("temperature must be between 0 and 2")
	}
	return nil
}

// Usage reports provider-side token accounting.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionResponse is the generated text plus accounting.
type CompletionResponse struct {
	Text  string
	Model string
	Usage Usage
}

// Client is the completion-provider contract the orchestrator depends on.
type Client interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}
