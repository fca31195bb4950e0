package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const maxPromptSize = 512 * 1024 // 512KB of prompt text

// Complete sends the composed prompt to the completion provider and returns
// the generated text of the first choice.
func (c *client) Complete(parentCtx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	if req == nil {
		return nil, fmt.Errorf("llmclient: request is nil")
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("llmclient: invalid request: %w", err)
	}
	if len(req.Prompt) > maxPromptSize {
		return nil, fmt.Errorf("llmclient: prompt too large (%d bytes, max %d)",
			len(req.Prompt), maxPromptSize)
	}

	c.logger.Debug("completion request starting",
		zap.String("deployment", c.cfg.Deployment),
		zap.Int("prompt_bytes", len(req.Prompt)),
		zap.Int("max_tokens", req.MaxTokens),
	)

	// Per-request timeout (0 = only use parentCtx)
	var ctx context.Context
	var cancel context.CancelFunc
	if c.cfg.UpstreamTimeout > 0 {
		ctx, cancel = context.WithTimeout(parentCtx, c.cfg.UpstreamTimeout)
	} else {
		ctx, cancel = context.WithCancel(parentCtx)
	}
	defer cancel()

	pReq := providerChatRequest{
		Model: c.cfg.Deployment,
		Messages: []providerChatMessage{
			{Role: "user", Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	bodyBytes, err := json.Marshal(pReq)
	if err != nil {
		return nil, fmt.Errorf("llmclient: marshal request: %w", err)
	}

	url := c.cfg.BaseURL + "/v1/chat/completions"

	// doOnce builds a fresh *http.Request for each attempt
	doOnce := func(ctx context.Context, body []byte) (*http.Response, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("llmclient: build HTTP request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		httpReq.Header.Set("Content-Type", "application/json")
		return c.httpClient.Do(httpReq)
	}

	resp, err := c.doWithRetry(ctx, bodyBytes, doOnce)
	if err != nil {
		c.logger.Error("completion request failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)

		var pErr providerErrorResponse
		if err := json.Unmarshal(body, &pErr); err == nil && pErr.Error.Message != "" {
			c.logger.Error("completion provider error",
				zap.Int("status", resp.StatusCode),
				zap.String("error_type", pErr.Error.Type),
				zap.String("error_message", pErr.Error.Message),
			)
			return nil, fmt.Errorf("llmclient: upstream %d: %s (%s)",
				resp.StatusCode, pErr.Error.Message, pErr.Error.Type)
		}

		c.logger.Error("completion upstream error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(body), 200)),
		)
		return nil, fmt.Errorf("llmclient: upstream %d: %s",
			resp.StatusCode, truncate(string(body), 200))
	}

	var pResp providerChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&pResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	if len(pResp.Choices) == 0 {
		c.logger.Error("completion provider returned no choices",
			zap.String("deployment", c.cfg.Deployment),
		)
		return nil, fmt.Errorf("%w: no choices", ErrSchema)
	}
	if pResp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%w: empty message content", ErrSchema)
	}

	out := &CompletionResponse{
		Text:  pResp.Choices[0].Message.Content,
		Model: pResp.Model,
	}
	if pResp.Usage != nil {
		out.Usage = Usage{
			PromptTokens:     pResp.Usage.PromptTokens,
			CompletionTokens: pResp.Usage.CompletionTokens,
			TotalTokens:      pResp.Usage.TotalTokens,
		}
	}

	c.logger.Info("completion request completed",
		zap.String("model", out.Model),
		zap.Int("prompt_tokens", out.Usage.PromptTokens),
		zap.Int("completion_tokens", out.Usage.CompletionTokens),
		zap.Duration("duration", time.Since(start)),
	)

	return out, nil
}

// truncate limits string length for logging
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
