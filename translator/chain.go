package translator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/zasai/zas-translate/config"
	"github.com/zasai/zas-translate/log"
)

// Chain tries its providers in order and returns the first usable answer.
type Chain struct {
	providers []Provider
}

func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// NewChainFromConfig builds the providers named in cfg.Translation.Providers,
// skipping those without credentials.
func NewChainFromConfig(ctx context.Context, cfg *config.Config) (*Chain, error) {
	tc := cfg.Translation
	var providers []Provider
	for _, name := range tc.Providers {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "groq":
			if tc.Groq.ApiKey == "" {
				log.L().Warn("groq provider skipped: GROQ_API_KEY is not set")
				continue
			}
			providers = append(providers, NewGroqProvider(tc.Groq))
		case "google":
			if tc.Google.ApiKey == "" {
				log.L().Warn("google provider skipped: GOOGLE_AI_API_KEY is not set")
				continue
			}
			p, err := NewGoogleProvider(ctx, tc.Google)
			if err != nil {
				return nil, err
			}
			providers = append(providers, p)
		case "cloudflare":
			if tc.Cloudflare.ApiKey == "" || tc.Cloudflare.AccountID == "" {
				log.L().Warn("cloudflare provider skipped: CLOUDFLARE_API_TOKEN or CLOUDFLARE_ACCOUNT_ID is not set")
				continue
			}
			providers = append(providers, NewCloudflareProvider(tc.Cloudflare))
		default:
			return nil, fmt.Errorf("unknown translation provider %q", name)
		}
	}
	return NewChain(providers...), nil
}

func (c *Chain) Name() string { return "chain" }

// Names lists the configured providers in fallback order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

func (c *Chain) TranslateBatch(ctx context.Context, req BatchRequest) ([]string, error) {
	if len(c.providers) == 0 {
		return nil, ErrNoProviders
	}
	errs := []error{ErrAllProvidersFailed}
	for _, p := range c.providers {
		out, err := p.TranslateBatch(ctx, req)
		if err == nil && len(out) != len(req.Texts) {
			err = &ProviderError{Provider: p.Name(), Err: fmt.Errorf("expected %d translations, got %d", len(req.Texts), len(out))}
		}
		if err == nil {
			for i := range out {
				out[i] = cleanOutput(req.Texts[i], out[i])
			}
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.L().Warn("translation provider failed, trying next",
			zap.String("provider", p.Name()),
			zap.String("target", req.TargetLang),
			zap.Int("segments", len(req.Texts)),
			zap.Error(err))
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

// Close releases providers that hold connections.
func (c *Chain) Close() error {
	var errs []error
	for _, p := range c.providers {
		if closer, ok := p.(io.Closer); ok {
			errs = append(errs, closer.Close())
		}
	}
	return errors.Join(errs...)
}
