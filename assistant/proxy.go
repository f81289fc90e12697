// Package assistant relays a chat conversation, enriched with the user's
// editor content, to a streaming chat completion API.
package assistant

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zasai/zas-translate/config"
	"github.com/zasai/zas-translate/log"
)

var ErrMissingCredential = errors.New("CEREBRAS_API_KEY is not configured")

// UpstreamError is a non-2xx answer of the chat API.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream API error: %d", e.Status)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is what the browser sends.
type Request struct {
	Messages       []Message         `json:"messages"`
	SourceCode     string            `json:"sourceCode,omitempty"`
	TranslatedCode map[string]string `json:"translatedCode,omitempty"`
}

// ChatRequest is the body sent upstream.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Upstream opens a streamed completion. The caller closes the returned body.
type Upstream interface {
	Stream(ctx context.Context, req ChatRequest) (io.ReadCloser, error)
}

type Settings struct {
	ApiKey        string
	BaseURL       string
	Model         string
	Temperature   float64
	MaxTokens     int
	ReplyLanguage string
	Timeout       time.Duration
}

// SettingsFromConfig maps the assistant section of cfg.
func SettingsFromConfig(cfg *config.Config) Settings {
	a := cfg.Assistant
	return Settings{
		ApiKey:        a.ApiKey,
		BaseURL:       a.BaseURL,
		Model:         a.Model,
		Temperature:   a.Temperature,
		MaxTokens:     a.MaxTokens,
		ReplyLanguage: a.ReplyLanguage,
		Timeout:       time.Duration(a.TimeoutSeconds) * time.Second,
	}
}

// HTTPUpstream posts to <base>/chat/completions with bearer auth.
type HTTPUpstream struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewHTTPUpstream bounds the wait for the response headers with s.Timeout.
// The stream itself may run longer; the request context ends it.
func NewHTTPUpstream(s Settings) *HTTPUpstream {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout
	return &HTTPUpstream{
		client:  &http.Client{Transport: transport},
		baseURL: strings.TrimRight(s.BaseURL, "/"),
		apiKey:  s.ApiKey,
	}
}

func (u *HTTPUpstream) Stream(ctx context.Context, req ChatRequest) (io.ReadCloser, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+u.apiKey)

	resp, err := u.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send chat request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(raw)}
	}
	return resp.Body, nil
}

// Proxy builds the upstream request for a conversation. It never retries.
type Proxy struct {
	settings Settings
	upstream Upstream
}

// NewProxy uses an HTTPUpstream built from s when upstream is nil.
func NewProxy(s Settings, upstream Upstream) *Proxy {
	if s.Model == "" {
		s.Model = "llama-3.3-70b"
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = 1000
	}
	if upstream == nil {
		upstream = NewHTTPUpstream(s)
	}
	return &Proxy{settings: s, upstream: upstream}
}

// Configured reports whether the upstream credential is set.
func (p *Proxy) Configured() bool { return p.settings.ApiKey != "" }

// ChatRequest prepends the system prompt to the conversation.
func (p *Proxy) ChatRequest(req Request) ChatRequest {
	messages := make([]Message, 0, len(req.Messages)+1)
	messages = append(messages, Message{
		Role:    "system",
		Content: BuildSystemPrompt(p.settings.ReplyLanguage, req.SourceCode, req.TranslatedCode),
	})
	messages = append(messages, req.Messages...)
	return ChatRequest{
		Model:       p.settings.Model,
		Messages:    messages,
		Stream:      true,
		Temperature: p.settings.Temperature,
		MaxTokens:   p.settings.MaxTokens,
	}
}

// Open starts the upstream stream. Without a credential it fails with
// ErrMissingCredential before any network call.
func (p *Proxy) Open(ctx context.Context, req Request) (io.ReadCloser, error) {
	if !p.Configured() {
		return nil, ErrMissingCredential
	}
	log.L().Debug("calling chat upstream",
		zap.Int("messages", len(req.Messages)),
		zap.Bool("has_source", strings.TrimSpace(req.SourceCode) != ""),
		zap.Int("translations", len(req.TranslatedCode)))

	body, err := p.upstream.Stream(ctx, p.ChatRequest(req))
	if err != nil {
		var upErr *UpstreamError
		if errors.As(err, &upErr) {
			log.L().Error("chat upstream error", zap.Int("status", upErr.Status), zap.String("body", upErr.Body))
		} else {
			log.L().Error("chat upstream request failed", zap.Error(err))
		}
		return nil, err
	}
	return body, nil
}

// Relay copies body to w, flushing after every read so the client sees
// chunks as they arrive. It returns the number of bytes written.
func Relay(w io.Writer, body io.Reader) (int64, error) {
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 4096)
	var written int64
	for {
		n, err := body.Read(buf)
		if n > 0 {
			m, werr := w.Write(buf[:n])
			written += int64(m)
			if werr != nil {
				return written, werr
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if errors.Is(err, io.EOF) {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// ReadDeltas parses an OpenAI style event stream and calls fn with every
// non-empty content delta until [DONE] or the end of body.
func ReadDeltas(body io.Reader, fn func(string) error) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64<<10), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "[DONE]" {
			return nil
		}
		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			log.L().Debug("skipping malformed stream chunk", zap.Error(err))
			continue
		}
		for _, c := range chunk.Choices {
			if c.Delta.Content == "" {
				continue
			}
			if err := fn(c.Delta.Content); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}
