package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/singleflight"
)

type fakeProvider struct {
	name string
	err  error
	wrap string // optional format applied to each output, e.g. "<i>%s</i>"

	mu    sync.Mutex
	calls int
	seen  []string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) TranslateBatch(ctx context.Context, req BatchRequest) ([]string, error) {
	f.mu.Lock()
	f.calls++
	f.seen = append(f.seen, req.Texts...)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]string, len(req.Texts))
	for i, t := range req.Texts {
		out[i] = "[" + req.TargetLang + "]" + t
		if f.wrap != "" {
			out[i] = fmt.Sprintf(f.wrap, out[i])
		}
	}
	return out, nil
}

func (f *fakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestEngine(t *testing.T, p Provider, batch int) *Engine {
	t.Helper()
	cache, err := NewLRUCache(64)
	require.NoError(t, err)
	return NewEngine(p, cache, Options{BatchSize: batch, MaxConcurrent: 2, Group: new(singleflight.Group)})
}

func TestEngine_TranslateAll(t *testing.T) {
	fake := &fakeProvider{name: "fake"}
	engine := newTestEngine(t, NewChain(fake), 40)

	src := `<p>Hello</p><script>alert("Hello script")</script>`
	results, err := engine.TranslateAll(context.Background(), src, "en", []string{"fr", "ar"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "fr", results[0].Code)
	assert.Equal(t, "ltr", results[0].Dir)
	assert.Equal(t, `<p>[fr]Hello</p><script>alert("Hello script")</script>`, results[0].Translated)

	assert.Equal(t, "ar", results[1].Code)
	assert.Equal(t, "rtl", results[1].Dir)
	assert.True(t, strings.HasPrefix(results[1].Translated, `<div dir="rtl" lang="ar">`))

	for _, s := range fake.seen {
		assert.NotContains(t, s, "script")
	}
}

func TestEngine_UsesCache(t *testing.T) {
	fake := &fakeProvider{name: "fake"}
	engine := newTestEngine(t, fake, 40)
	ctx := context.Background()

	first, err := engine.TranslatePage(ctx, "<p>One</p><p>Two</p>", "en", "de")
	require.NoError(t, err)
	assert.Equal(t, 2, first.Segments)
	assert.Equal(t, 0, first.Cached)
	assert.Equal(t, 1, fake.Calls())

	second, err := engine.TranslatePage(ctx, "<p>Two</p><p>One</p>", "en", "de")
	require.NoError(t, err)
	assert.Equal(t, 2, second.Cached)
	assert.Equal(t, 1, fake.Calls())
	assert.Equal(t, "<p>[de]Two</p><p>[de]One</p>", second.Translated)
}

func TestEngine_Batches(t *testing.T) {
	fake := &fakeProvider{name: "fake"}
	engine := newTestEngine(t, fake, 2)

	res, err := engine.TranslatePage(context.Background(), "<p>a1</p><p>b2</p><p>c3</p><p>d4</p><p>e5</p>", "en", "fr")
	require.NoError(t, err)
	assert.Equal(t, 5, res.Segments)
	assert.Equal(t, 3, fake.Calls())
}

func TestEngine_SameLanguagePassthrough(t *testing.T) {
	fake := &fakeProvider{name: "fake"}
	engine := newTestEngine(t, fake, 40)

	res, err := engine.TranslatePage(context.Background(), "<p>Hello</p>", "en", "en")
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello</p>", res.Translated)
	assert.Equal(t, 0, fake.Calls())
}

func TestEngine_SanitizesProviderOutput(t *testing.T) {
	fake := &fakeProvider{name: "fake", wrap: "<script>x()</script><b>%s</b>"}
	engine := newTestEngine(t, NewChain(fake), 40)

	res, err := engine.TranslatePage(context.Background(), "<p>Hi &amp; bye</p>", "en", "es")
	require.NoError(t, err)
	assert.Equal(t, "<p>[es]Hi &amp; bye</p>", res.Translated)
}

func TestEngine_KeepsTagTextShownBySource(t *testing.T) {
	engine := newTestEngine(t, NewChain(&fakeProvider{name: "fake"}), 40)

	res, err := engine.TranslatePage(context.Background(), "<p>Use the &lt;div&gt; element and a &lt; b</p>", "en", "fr")
	require.NoError(t, err)
	assert.Equal(t, "<p>[fr]Use the &lt;div&gt; element and a &lt; b</p>", res.Translated)

	added := &fakeProvider{name: "fake", wrap: "%s <span>extra</span>"}
	engine = newTestEngine(t, NewChain(added), 40)
	res, err = engine.TranslatePage(context.Background(), "<p>Use the &lt;div&gt; element</p>", "en", "fr")
	require.NoError(t, err)
	assert.Equal(t, "<p>[fr]Use the &lt;div&gt; element extra</p>", res.Translated)
}

// blockingProvider holds every batch until release is closed or ctx ends.
type blockingProvider struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	ctxErr  chan error
}

func newBlockingProvider() *blockingProvider {
	return &blockingProvider{
		started: make(chan struct{}),
		release: make(chan struct{}),
		ctxErr:  make(chan error, 1),
	}
}

func (b *blockingProvider) Name() string { return "blocking" }

func (b *blockingProvider) TranslateBatch(ctx context.Context, req BatchRequest) ([]string, error) {
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
	case <-ctx.Done():
		b.ctxErr <- ctx.Err()
		return nil, ctx.Err()
	}
	out := make([]string, len(req.Texts))
	for i, t := range req.Texts {
		out[i] = "[" + req.TargetLang + "]" + t
	}
	return out, nil
}

func (e *Engine) waiting() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, f := range e.flights {
		n += f.waiters
	}
	return n
}

func TestEngine_SharedTranslationSurvivesCancelledCaller(t *testing.T) {
	p := newBlockingProvider()
	engine := newTestEngine(t, p, 40)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := engine.TranslatePage(ctxA, "<p>Hello</p>", "en", "fr")
		errA <- err
	}()
	<-p.started

	type outcome struct {
		res *Result
		err error
	}
	doneB := make(chan outcome, 1)
	go func() {
		res, err := engine.TranslatePage(context.Background(), "<p>Hello</p>", "en", "fr")
		doneB <- outcome{res, err}
	}()
	require.Eventually(t, func() bool { return engine.waiting() == 2 }, time.Second, 5*time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(p.release)
	b := <-doneB
	require.NoError(t, b.err)
	assert.Equal(t, "<p>[fr]Hello</p>", b.res.Translated)
	assert.Zero(t, engine.waiting())
}

func TestEngine_LastCallerLeavingCancelsWork(t *testing.T) {
	p := newBlockingProvider()
	engine := newTestEngine(t, p, 40)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := engine.TranslatePage(ctx, "<p>Bye</p>", "en", "de")
		errc <- err
	}()
	<-p.started
	cancel()

	assert.ErrorIs(t, <-errc, context.Canceled)
	select {
	case err := <-p.ctxErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("provider context was not cancelled")
	}
}

func TestChain_Fallback(t *testing.T) {
	broken := &fakeProvider{name: "groq", err: &ProviderError{Provider: "groq", Status: 503, Err: errors.New("unavailable")}}
	working := &fakeProvider{name: "google"}
	chain := NewChain(broken, working)
	assert.Equal(t, []string{"groq", "google"}, chain.Names())

	out, err := chain.TranslateBatch(context.Background(), BatchRequest{Texts: []string{"Hi"}, TargetLang: "it"})
	require.NoError(t, err)
	assert.Equal(t, []string{"[it]Hi"}, out)
	assert.Equal(t, 1, broken.Calls())
	assert.Equal(t, 1, working.Calls())
}

func TestChain_AllFail(t *testing.T) {
	chain := NewChain(
		&fakeProvider{name: "groq", err: &ProviderError{Provider: "groq", Status: 429, Err: errors.New("rate limited")}},
		&fakeProvider{name: "cloudflare", err: errors.New("boom")},
	)
	_, err := chain.TranslateBatch(context.Background(), BatchRequest{Texts: []string{"Hi"}, TargetLang: "it"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllProvidersFailed)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 429, perr.Status)

	_, err = NewChain().TranslateBatch(context.Background(), BatchRequest{Texts: []string{"Hi"}})
	assert.ErrorIs(t, err, ErrNoProviders)
}

func TestEngine_ProviderFailureFailsTranslation(t *testing.T) {
	engine := newTestEngine(t, NewChain(&fakeProvider{name: "groq", err: errors.New("down")}), 40)
	_, err := engine.TranslateAll(context.Background(), "<p>Hello</p>", "en", []string{"fr", "de"})
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
}

func TestEngine_SameLanguageKeepsSourceBytes(t *testing.T) {
	fake := &fakeProvider{name: "fake"}
	engine := newTestEngine(t, fake, 40)

	res, err := engine.TranslatePage(context.Background(), `<p class=x>Hi<br>there</p>`, "fr", "fr")
	require.NoError(t, err)
	assert.Equal(t, `<p class=x>Hi<br>there</p>`, res.Translated)

	res, err = engine.TranslatePage(context.Background(), `<html><body><p class=x>Hi<br>there</p></body></html>`, "ar", "ar")
	require.NoError(t, err)
	assert.Equal(t, `<html lang="ar" dir="rtl"><body><p class=x>Hi<br>there</p></body></html>`, res.Translated)
	assert.Zero(t, fake.Calls())
}
