package llm

// Wire shapes for the upstream chat-completions API (OpenAI-style).

type providerChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type providerChatRequest struct {
	Model       string                `json:"model"`
	Messages    []providerChatMessage `json:"messages"`
	Temperature float32               `json:"temperature,omitempty"`
	MaxTokens   int                   `json:"max_tokens,omitempty"`
}

type providerChatChoice struct {
	Index        int                 `json:"index"`
	Message      providerChatMessage `json:"message"`
	FinishReason string              `json:"finish_reason,omitempty"`
}

type providerUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type providerChatResponse struct {
	ID      string               `json:"id"`
	Object  string               `json:"object"`
	Created int64                `json:"created"`
	Model   string               `json:"model"`
	Choices []providerChatChoice `json:"choices"`
	Usage   *providerUsage       `json:"usage,omitempty"`
}

type providerErrorResponse struct {
	Error struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}
