package translator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/zasai/zas-translate/config"
	"github.com/zasai/zas-translate/global"
)

// GroqProvider talks to any OpenAI compatible chat completion endpoint;
// Groq is the default.
type GroqProvider struct {
	client *openai.Client
	model  string
}

func NewGroqProvider(pc config.ProviderConfig) *GroqProvider {
	cfg := openai.DefaultConfig(pc.ApiKey)
	if pc.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(pc.BaseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: providerTimeout(pc)}
	return &GroqProvider{client: openai.NewClientWithConfig(cfg), model: pc.Model}
}

func (p *GroqProvider) Name() string { return "groq" }

func (p *GroqProvider) TranslateBatch(ctx context.Context, req BatchRequest) ([]string, error) {
	prompt, err := userPrompt(req)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		perr := &ProviderError{Provider: p.Name(), Err: err}
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			perr.Status = apiErr.HTTPStatusCode
		}
		return nil, perr
	}
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("no choices in response")}
	}
	out, err := parseTranslations(resp.Choices[0].Message.Content, len(req.Texts))
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: err}
	}
	return out, nil
}

func providerTimeout(pc config.ProviderConfig) time.Duration {
	if pc.TimeoutSeconds > 0 {
		return time.Duration(pc.TimeoutSeconds) * time.Second
	}
	return global.FetchTimeout
}
