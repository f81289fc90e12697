package translator

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zasai/zas-translate/config"
)

func TestParseTranslations(t *testing.T) {
	out, err := parseTranslations("```json\n[\"Hola\", \"Mundo\"]\n```", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hola", "Mundo"}, out)

	out, err = parseTranslations(`Sure! Here you go: ["Bonjour"] Hope this helps.`, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bonjour"}, out)

	_, err = parseTranslations(`["a","b"]`, 3)
	assert.ErrorContains(t, err, "expected 3 translations, got 2")

	_, err = parseTranslations("I cannot translate this.", 1)
	assert.Error(t, err)
}

func TestUserPrompt(t *testing.T) {
	p, err := userPrompt(BatchRequest{Texts: []string{"Hello"}, SourceLang: "en", TargetLang: "ar"})
	require.NoError(t, err)
	assert.Contains(t, p, "from English (en) to Arabic (ar)")
	assert.Contains(t, p, `["Hello"]`)

	p, err = userPrompt(BatchRequest{Texts: []string{"Hello"}, SourceLang: "auto", TargetLang: "fr"})
	require.NoError(t, err)
	assert.Contains(t, p, "Detect the source language")
}

func TestGroqProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama-test", body["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"[\"Hola\",\"Mundo\"]"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	p := NewGroqProvider(config.ProviderConfig{ApiKey: "gsk-test", BaseURL: srv.URL, Model: "llama-test"})
	out, err := p.TranslateBatch(context.Background(), BatchRequest{Texts: []string{"Hello", "World"}, SourceLang: "en", TargetLang: "es"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hola", "Mundo"}, out)
}

func TestGroqProvider_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"rate limit reached","type":"requests"}}`)
	}))
	defer srv.Close()

	p := NewGroqProvider(config.ProviderConfig{ApiKey: "k", BaseURL: srv.URL, Model: "m"})
	_, err := p.TranslateBatch(context.Background(), BatchRequest{Texts: []string{"Hello"}, TargetLang: "es"})
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "groq", perr.Provider)
	assert.Equal(t, http.StatusTooManyRequests, perr.Status)
}

func TestCloudflareProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/acc-1/ai/run/@cf/meta/test", r.URL.Path)
		assert.Equal(t, "Bearer cf-token", r.Header.Get("Authorization"))

		var req cfRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		_, _ = io.WriteString(w, `{"result":{"response":"[\"Ciao\"]"},"success":true,"errors":[]}`)
	}))
	defer srv.Close()

	p := NewCloudflareProvider(config.ProviderConfig{ApiKey: "cf-token", AccountID: "acc-1", BaseURL: srv.URL, Model: "@cf/meta/test"})
	out, err := p.TranslateBatch(context.Background(), BatchRequest{Texts: []string{"Hello"}, SourceLang: "en", TargetLang: "it"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ciao"}, out)
}

func TestCloudflareProvider_Unsuccessful(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"result":{},"success":false,"errors":[{"code":7000,"message":"model not found"}]}`)
	}))
	defer srv.Close()

	p := NewCloudflareProvider(config.ProviderConfig{ApiKey: "t", AccountID: "a", BaseURL: srv.URL, Model: "x"})
	_, err := p.TranslateBatch(context.Background(), BatchRequest{Texts: []string{"Hello"}, TargetLang: "it"})
	assert.ErrorContains(t, err, "model not found")
}

func TestNewChainFromConfig_SkipsUnconfigured(t *testing.T) {
	cfg := &config.Config{}
	cfg.Translation.Providers = []string{"groq", "google", "cloudflare"}
	cfg.Translation.Groq = config.ProviderConfig{ApiKey: "k", BaseURL: "http://localhost"}
	cfg.Translation.Cloudflare = config.ProviderConfig{ApiKey: "t"} // no account id

	chain, err := NewChainFromConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"groq"}, chain.Names())

	cfg.Translation.Providers = []string{"deepl"}
	_, err = NewChainFromConfig(context.Background(), cfg)
	assert.Error(t, err)
}

func TestTieredCache(t *testing.T) {
	local, err := NewLRUCache(4)
	require.NoError(t, err)
	remote, err := NewLRUCache(4)
	require.NoError(t, err)
	remote.Set(cacheKey("fr", "h1"), "Bonjour")

	c := NewTieredCache(local, remote)
	v, ok := c.Get(cacheKey("fr", "h1"))
	assert.True(t, ok)
	assert.Equal(t, "Bonjour", v)
	assert.Equal(t, 1, local.Len())

	c.Set(cacheKey("de", "h1"), "Hallo")
	_, ok = remote.Get("zas:tr:de:h1")
	assert.True(t, ok)
}
