package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/stellarlinkco/qa-bench/internal/config"
)

// OpenAIClient is a stateless chat-completion client for OpenAI-compatible
// APIs (including OpenRouter via base URL). Safe for concurrent use.
type OpenAIClient struct {
	client *openai.Client
}

func NewOpenAIClient(apiKey string, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if v := strings.TrimSpace(baseURL); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg)}
}

func (c *OpenAIClient) Evaluate(ctx context.Context, spec config.ModelSpec, question, contextText string) (*Result, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("llm: openai: nil client")
	}
	if ctx == nil {
		return nil, errors.New("llm: openai: nil context")
	}

	answer, usage, err := c.chat(ctx, spec.ModelID, qaPrompt(question, contextText))
	if err != nil {
		return nil, err
	}
	u := usage
	return &Result{
		Answer: answer,
		Calls:  1,
		Usage:  &u,
	}, nil
}

// chat issues one completion with temperature 0 and returns the text and
// token usage. Also the sub-call primitive for RecursiveClient.
func (c *OpenAIClient) chat(ctx context.Context, modelID, prompt string) (string, Usage, error) {
	if c == nil || c.client == nil {
		return "", Usage{}, errors.New("llm: openai: nil client")
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: strings.TrimSpace(modelID),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", Usage{}, err
	}
	if len(resp.Choices) == 0 {
		return "", Usage{}, errors.New("llm: openai: empty choices")
	}

	usage := Usage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), usage, nil
}
