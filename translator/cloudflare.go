package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/zasai/zas-translate/config"
)

// CloudflareProvider calls Workers AI text generation models.
type CloudflareProvider struct {
	client    *http.Client
	baseURL   string
	accountID string
	apiToken  string
	model     string
}

type cfMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type cfRequest struct {
	Messages  []cfMessage `json:"messages"`
	MaxTokens int         `json:"max_tokens,omitempty"`
}

type cfResponse struct {
	Result struct {
		Response string `json:"response"`
	} `json:"result"`
	Success bool `json:"success"`
	Errors  []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

func NewCloudflareProvider(pc config.ProviderConfig) *CloudflareProvider {
	return &CloudflareProvider{
		client:    &http.Client{Timeout: providerTimeout(pc)},
		baseURL:   strings.TrimRight(pc.BaseURL, "/"),
		accountID: pc.AccountID,
		apiToken:  pc.ApiKey,
		model:     pc.Model,
	}
}

func (p *CloudflareProvider) Name() string { return "cloudflare" }

func (p *CloudflareProvider) TranslateBatch(ctx context.Context, req BatchRequest) ([]string, error) {
	prompt, err := userPrompt(req)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(cfRequest{
		Messages: []cfMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens: 4096,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal cloudflare request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/accounts/%s/ai/run/%s", p.baseURL, p.accountID, p.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create cloudflare request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiToken)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: p.Name(), Status: resp.StatusCode, Err: fmt.Errorf("%s", truncate(string(raw), 200))}
	}

	var decoded cfResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if !decoded.Success {
		msg := "request unsuccessful"
		if len(decoded.Errors) > 0 {
			msg = decoded.Errors[0].Message
		}
		return nil, &ProviderError{Provider: p.Name(), Status: resp.StatusCode, Err: fmt.Errorf("%s", msg)}
	}

	out, err := parseTranslations(decoded.Result.Response, len(req.Texts))
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: err}
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
