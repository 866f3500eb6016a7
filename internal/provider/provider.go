// Package provider implements twig's typed data sources and the registry
// that routes config sections and template variables to them.
package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/twigprompt/twig/internal/config"
)

// Vars is the set of name/value pairs a single provider contributes.
type Vars map[string]string

// Provider is a stateless typed data source. See Collect below for the
// contract each implementation must honor around validate=false/true.
type Provider interface {
	// Name is the registry key.
	Name() string

	// Sections lists the config sections this provider owns. Each
	// section name also serves as the variable-name prefix used by
	// Registry.DetermineProviders.
	Sections() []string

	// DefaultConfig returns the config this provider would use for each
	// of its sections if the user never wrote one, keyed by section
	// name. Used to materialize implicit sections.
	DefaultConfig() map[string]any

	// Collect gathers this provider's variables. When validate is
	// false, "resource missing" conditions (no battery, not a git repo,
	// git not installed, interface absent) must not be returned as
	// errors; they degrade to a partial or empty Vars. When validate is
	// true, such conditions are returned as errors.
	Collect(ctx context.Context, cfg *config.Config, validate bool) (Vars, error)

	// Cacheable reports whether the daemon may cache this provider's
	// output between invocations.
	Cacheable() bool

	// CacheTTL is the oldest cached entry a client accepts for this
	// provider (widened to daemon.stale_after_seconds when that is
	// larger); only meaningful if Cacheable() is true.
	CacheTTL() time.Duration
}

// CacheReader is the subset of internal/cache.Reader the registry needs.
// Declared here, rather than imported, to avoid a provider<->cache
// import cycle (the cache package imports this package for Vars).
type CacheReader interface {
	Get(providerName string, ttl time.Duration) (Vars, bool)
}

// Registry maps provider and section names to Provider implementations.
type Registry struct {
	providers         map[string]Provider
	sectionToProvider map[string]string
	order             []string // registration order, as returned by Providers
}

// NewRegistry returns an empty registry. Callers register the concrete
// providers they want (cmd/twig and cmd/twigd each build the standard
// set in their buildRegistry).
func NewRegistry() *Registry {
	return &Registry{
		providers:         make(map[string]Provider),
		sectionToProvider: make(map[string]string),
	}
}

// Register adds a provider. Two providers claiming the same section is a
// programming error and fails immediately rather than silently dropping
// one of them.
func (r *Registry) Register(p Provider) error {
	name := p.Name()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %q already registered", name)
	}
	for _, section := range p.Sections() {
		if owner, exists := r.sectionToProvider[section]; exists {
			return fmt.Errorf("section %q already owned by provider %q, cannot register %q", section, owner, name)
		}
	}
	for _, section := range p.Sections() {
		r.sectionToProvider[section] = name
	}
	r.providers[name] = p
	r.order = append(r.order, name)
	return nil
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Providers returns every registered provider name, in registration order.
func (r *Registry) Providers() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// DetermineProviders maps template variable names to the provider names
// that own them, via the prefix-before-first-underscore convention.
// Variable names with no known provider are silently ignored.
func (r *Registry) DetermineProviders(varNames []string) []string {
	needed := make(map[string]bool)
	for _, v := range varNames {
		prefix := v
		if idx := strings.IndexByte(v, '_'); idx >= 0 {
			prefix = v[:idx]
		}
		if name, ok := r.sectionToProvider[prefix]; ok {
			needed[name] = true
		}
	}
	out := make([]string, 0, len(needed))
	for name := range needed {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CollectResult is the merged output of a Collect call plus per-provider
// timing, used by the debug box.
type CollectResult struct {
	Vars    Vars
	Timings []Timing
	// FromCache lists providers whose values came from the cache reader
	// rather than a live Collect call.
	FromCache []string
}

// Timing records how long one provider's Collect call took.
type Timing struct {
	Name     string
	Duration time.Duration
}

// Collect gathers variables from every named provider concurrently. A
// provider panic is recovered rather than crashing the one-shot render;
// the panicking provider contributes no variables and no error, in
// either mode. A provider error in validate mode is surfaced, in
// non-validate mode it is swallowed (matching each Provider's own
// validate contract, this is a second line of defense for programming
// errors a provider forgot to swallow itself).
func (r *Registry) Collect(ctx context.Context, providerNames []string, cfg *config.Config, validate bool, cache CacheReader) (*CollectResult, error) {
	result := &CollectResult{Vars: make(Vars)}

	type outcome struct {
		name      string
		vars      Vars
		err       error
		duration  time.Duration
		fromCache bool
	}

	outcomes := make([]outcome, len(providerNames))
	var wg conc.WaitGroup

	for i, name := range providerNames {
		i, name := i, name
		wg.Go(func() {
			p, ok := r.Get(name)
			if !ok {
				return
			}

			if p.Cacheable() && cache != nil {
				// stale_after is the client-side freshness ceiling and
				// takes priority over a provider's own TTL whenever it
				// is the looser of the two — it governs how old a cache
				// entry this invocation is willing to accept regardless
				// of how often the daemon happens to refresh it.
				staleAfter := time.Duration(cfg.Daemon.StaleAfterSeconds) * time.Second
				if vars, hit := cache.Get(name, max(p.CacheTTL(), staleAfter)); hit {
					outcomes[i] = outcome{name: name, vars: vars, fromCache: true}
					return
				}
			}

			start := time.Now()
			vars, err := p.Collect(ctx, cfg, validate)
			outcomes[i] = outcome{name: name, vars: vars, err: err, duration: time.Since(start)}
		})
	}

	// conc.WaitGroup converts a goroutine panic into a re-panic on Wait;
	// recover it here so one misbehaving provider degrades instead of
	// taking the whole render down (a prompt must always be produced).
	func() {
		defer func() {
			_ = recover()
		}()
		wg.Wait()
	}()

	for _, o := range outcomes {
		if o.name == "" {
			continue
		}
		if o.err != nil {
			if validate {
				return nil, fmt.Errorf("provider %q: %w", o.name, o.err)
			}
			continue
		}
		for k, v := range o.vars {
			result.Vars[k] = v
		}
		if o.fromCache {
			result.FromCache = append(result.FromCache, o.name)
		} else {
			result.Timings = append(result.Timings, Timing{Name: o.name, Duration: o.duration})
		}
	}

	sort.Slice(result.Timings, func(i, j int) bool { return result.Timings[i].Name < result.Timings[j].Name })
	sort.Strings(result.FromCache)

	return result, nil
}
