// Package translator turns an HTML page into translated copies: visible text is
// extracted, translated in batches through a provider chain with a two level
// cache, and written back into the markup.
package translator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/zasai/zas-translate/global"
	"github.com/zasai/zas-translate/languages"
	"github.com/zasai/zas-translate/log"
	"github.com/zasai/zas-translate/utils"
)

// Result is the translation of one page into one target language.
type Result struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Dir        string `json:"dir"`
	Translated string `json:"translated"`
	Segments   int    `json:"segments"` // unique segments found
	Cached     int    `json:"cached"`   // of which served from cache
}

type Options struct {
	BatchSize     int
	MaxConcurrent int
	Group         *singleflight.Group // defaults to global.FetchGroup
	PageTimeout   time.Duration       // bounds one shared page translation, default 5m
}

type Engine struct {
	provider      Provider
	cache         Cache
	batchSize     int
	maxConcurrent int
	pageTimeout   time.Duration
	group         *singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
}

// flight is a page translation shared by every caller waiting on the same key.
// Its context is detached from the callers and cancelled when the last one leaves.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

func NewEngine(provider Provider, cache Cache, opts Options) *Engine {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 40
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 4
	}
	if opts.Group == nil {
		opts.Group = &global.FetchGroup
	}
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = 5 * time.Minute
	}
	if cache == nil {
		local, _ := NewLRUCache(1024)
		cache = local
	}
	return &Engine{
		provider:      provider,
		cache:         cache,
		batchSize:     opts.BatchSize,
		maxConcurrent: opts.MaxConcurrent,
		pageTimeout:   opts.PageTimeout,
		group:         opts.Group,
		flights:       make(map[string]*flight),
	}
}

// TranslateAll translates src into every target concurrently. Results keep the
// order of targets. The first failing target cancels the others.
func (e *Engine) TranslateAll(ctx context.Context, src, sourceLang string, targets []string) ([]Result, error) {
	results := make([]Result, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrent)
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			res, err := e.TranslatePage(gctx, src, sourceLang, target)
			if err != nil {
				return err
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// TranslatePage translates src into target. Identical concurrent calls share
// one computation; a caller that gives up does not fail the others.
func (e *Engine) TranslatePage(ctx context.Context, src, sourceLang, target string) (*Result, error) {
	source := "auto"
	if s := strings.TrimSpace(sourceLang); s != "" && !strings.EqualFold(s, "auto") {
		source = languages.Normalize(s)
	}
	target = languages.Normalize(target)
	key := target + "|" + source + "|" + utils.HashText(src)

	f := e.join(ctx, key)
	ch := e.group.DoChan(key, func() (interface{}, error) {
		defer e.finish(key, f)
		return e.translate(f.ctx, src, source, target)
	})

	select {
	case <-ctx.Done():
		e.leave(key, f)
		return nil, ctx.Err()
	case r := <-ch:
		e.leave(key, f)
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Shared {
			log.L().Debug("translation shared with in-flight request", zap.String("target", target))
		}
		res := *r.Val.(*Result)
		return &res, nil
	}
}

func (e *Engine) join(ctx context.Context, key string) *flight {
	e.mu.Lock()
	defer e.mu.Unlock()
	f, ok := e.flights[key]
	if !ok {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.pageTimeout)
		f = &flight{ctx: fctx, cancel: cancel}
		e.flights[key] = f
	}
	f.waiters++
	return f
}

// leave drops one waiter. Once nobody waits, work still running on f is
// cancelled and the key forgotten so a later caller starts afresh.
func (e *Engine) leave(key string, f *flight) {
	e.mu.Lock()
	defer e.mu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if e.flights[key] == f {
		delete(e.flights, key)
		e.group.Forget(key)
	}
}

// finish runs when the shared work returns.
func (e *Engine) finish(key string, f *flight) {
	e.mu.Lock()
	if e.flights[key] == f {
		delete(e.flights, key)
	}
	e.mu.Unlock()
	f.cancel()
}

func (e *Engine) translate(ctx context.Context, src, source, target string) (*Result, error) {
	start := time.Now()
	page, err := ParsePage(src)
	if err != nil {
		return nil, err
	}
	segs := page.Segments()
	res := &Result{
		Code:     target,
		Name:     languages.Name(target),
		Dir:      languages.Direction(target),
		Segments: len(segs),
	}

	if source == target {
		res.Translated = src
		if !page.fragment {
			res.Translated = stampLang(src, target)
		}
		return res, nil
	}

	translations := make(map[string]string, len(segs))
	pending := make([]Segment, 0, len(segs))
	for _, s := range segs {
		if v, ok := e.cache.Get(cacheKey(target, s.Hash)); ok {
			translations[s.Hash] = v
			res.Cached++
			continue
		}
		pending = append(pending, s)
	}

	for lo := 0; lo < len(pending); lo += e.batchSize {
		batch := pending[lo:min(lo+e.batchSize, len(pending))]
		texts := make([]string, len(batch))
		for i, s := range batch {
			texts[i] = s.Text
		}
		out, err := e.provider.TranslateBatch(ctx, BatchRequest{Texts: texts, SourceLang: source, TargetLang: target})
		if err != nil {
			return nil, fmt.Errorf("translate to %s: %w", target, err)
		}
		if len(out) != len(batch) {
			return nil, &ProviderError{Provider: e.provider.Name(), Err: fmt.Errorf("expected %d translations, got %d", len(batch), len(out))}
		}
		for i, s := range batch {
			translations[s.Hash] = out[i]
			e.cache.Set(cacheKey(target, s.Hash), out[i])
		}
	}

	page.Apply(translations)
	out, err := page.Render(target)
	if err != nil {
		return nil, err
	}
	res.Translated = out

	log.L().Info("page translated",
		zap.String("source", source),
		zap.String("target", target),
		zap.Int("segments", res.Segments),
		zap.Int("cached", res.Cached),
		zap.Duration("took", time.Since(start)))
	return res, nil
}
