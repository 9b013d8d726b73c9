// Package translate routes text through an ordered list of translation
// providers with automatic fallback.
package translate

import (
	"context"
	"errors"
	"strings"
	"time"
)

var errNoProviders = errors.New("no translation providers configured")

// Provider is one remote translation service.
type Provider interface {
	Name() string
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Reserved values for Outcome.Provider alongside the providers' own names.
const (
	ProviderNone  = "none"
	ProviderError = "error"
)

// Outcome is the tagged result of one translation attempt chain.
// Provider is ProviderNone when no remote call was needed, a provider name
// on success, or ProviderError with Err set when every provider failed.
type Outcome struct {
	Text     string
	Provider string
	Err      error
}

type FallbackObserverFunc func(failedProvider string)

type Option func(*Gateway)

// WithFallbackObserver is called with the provider name each time an
// attempt fails and the gateway moves on to the next provider.
func WithFallbackObserver(observer FallbackObserverFunc) Option {
	return func(g *Gateway) {
		g.onFallback = observer
	}
}

// WithAttemptTimeout bounds each provider call. Zero disables the bound.
func WithAttemptTimeout(timeout time.Duration) Option {
	return func(g *Gateway) {
		g.attemptTimeout = timeout
	}
}

// Gateway tries providers in order. Providers are external, rate-limited
// services whose outages can be long-lived, so resilience comes from
// redundancy rather than retrying the same provider.
type Gateway struct {
	providers      []Provider
	attemptTimeout time.Duration
	onFallback     FallbackObserverFunc
}

func NewGateway(providers []Provider, opts ...Option) *Gateway {
	g := &Gateway{providers: providers}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Translate applies the fallback policy. Blank input and same-language
// pairs short-circuit without touching any provider. When every provider
// fails, the FIRST provider's error is carried: the first failure is
// usually the diagnostic one (an unsupported pair, say) while later
// failures are often cascading noise.
func (g *Gateway) Translate(ctx context.Context, text, source, target string) Outcome {
	if strings.TrimSpace(text) == "" {
		return Outcome{Text: text, Provider: ProviderNone}
	}
	if source == target {
		return Outcome{Text: text, Provider: ProviderNone}
	}

	if len(g.providers) == 0 {
		return Outcome{Provider: ProviderError, Err: errNoProviders}
	}

	var firstErr error
	for _, provider := range g.providers {
		translated, err := g.attempt(ctx, provider, text, source, target)
		if err == nil {
			return Outcome{Text: translated, Provider: provider.Name()}
		}
		if firstErr == nil {
			firstErr = err
		}
		if g.onFallback != nil {
			g.onFallback(provider.Name())
		}
	}
	return Outcome{Provider: ProviderError, Err: firstErr}
}

func (g *Gateway) attempt(ctx context.Context, provider Provider, text, source, target string) (string, error) {
	if g.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.attemptTimeout)
		defer cancel()
	}
	return provider.Translate(ctx, text, source, target)
}
