package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/zasai/zas-translate/config"
)

// GoogleProvider uses the Gemini API through the generative-ai-go client.
type GoogleProvider struct {
	client *genai.Client
	model  string
	cfg    config.ProviderConfig
}

func NewGoogleProvider(ctx context.Context, pc config.ProviderConfig) (*GoogleProvider, error) {
	opts := []option.ClientOption{option.WithAPIKey(pc.ApiKey)}
	if pc.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(pc.BaseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GoogleProvider{client: client, model: pc.Model, cfg: pc}, nil
}

func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) TranslateBatch(ctx context.Context, req BatchRequest) ([]string, error) {
	prompt, err := userPrompt(req)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, providerTimeout(p.cfg))
	defer cancel()

	model := p.client.GenerativeModel(p.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.2)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: err}
	}

	var content strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if t, ok := part.(genai.Text); ok {
				content.WriteString(string(t))
			}
		}
	}
	if content.Len() == 0 {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("text not found in response")}
	}
	out, err := parseTranslations(content.String(), len(req.Texts))
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: err}
	}
	return out, nil
}

func (p *GoogleProvider) Close() error { return p.client.Close() }
