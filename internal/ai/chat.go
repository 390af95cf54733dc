package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultTemperature = 0.7
	DefaultTopP        = 0.9
)

// ChatClient talks to any OpenAI-compatible chat completions endpoint; the
// default deployment points it at Zhipu GLM.
type ChatClient struct {
	client      *openai.Client
	provider    string
	model       string
	temperature float32
	topP        float32
}

// NewChatClient builds a client for baseURL (e.g. https://open.bigmodel.cn/api/paas/v4).
// httpClient may be nil.
func NewChatClient(provider, apiKey, baseURL, model string, httpClient *http.Client) *ChatClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &ChatClient{
		client:      openai.NewClientWithConfig(cfg),
		provider:    provider,
		model:       model,
		temperature: DefaultTemperature,
		topP:        DefaultTopP,
	}
}

func (c *ChatClient) Name() string { return c.provider }

func (c *ChatClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: c.temperature,
		TopP:        c.topP,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", c.wrap(err)
	}

	if len(resp.Choices) == 0 {
		return "", &GenerationError{Provider: c.provider, Status: http.StatusOK, Err: errors.New("no choices in response")}
	}
	return resp.Choices[0].Message.Content, nil
}

// wrap keeps the HTTP status and, for unparsed bodies, a short body excerpt.
func (c *ChatClient) wrap(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &GenerationError{Provider: c.provider, Status: apiErr.HTTPStatusCode, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body := strings.TrimSpace(string(reqErr.Body))
		if r := []rune(body); len(r) > 200 {
			body = string(r[:200])
		}
		return &GenerationError{Provider: c.provider, Status: reqErr.HTTPStatusCode, Err: fmt.Errorf("%w: %s", err, body)}
	}

	return &GenerationError{Provider: c.provider, Err: err}
}
