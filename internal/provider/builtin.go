package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/twigprompt/twig/internal/config"
)

// BuiltinDeps lets tests substitute the clock and working directory
// without touching the real OS, the way statusline.Dependencies lets the
// teacher's statusline substitute command execution. BuiltinProvider
// does not read the Hostname field; HostnameProvider takes its own
// lookup function.
type BuiltinDeps struct {
	Now      func() time.Time
	Hostname func() (string, error)
	Getwd    func() (string, error)
}

// DefaultBuiltinDeps wires BuiltinDeps to the real OS.
func DefaultBuiltinDeps() BuiltinDeps {
	return BuiltinDeps{
		Now:      time.Now,
		Hostname: os.Hostname,
		Getwd:    os.Getwd,
	}
}

// BuiltinProvider owns the time and cwd sections — variable families
// that change every invocation and so are never worth caching.
type BuiltinProvider struct {
	deps BuiltinDeps
}

// NewBuiltinProvider returns a BuiltinProvider using the real OS.
func NewBuiltinProvider() *BuiltinProvider {
	return &BuiltinProvider{deps: DefaultBuiltinDeps()}
}

// NewBuiltinProviderWithDeps is used by tests to inject a fake clock etc.
func NewBuiltinProviderWithDeps(deps BuiltinDeps) *BuiltinProvider {
	return &BuiltinProvider{deps: deps}
}

func (p *BuiltinProvider) Name() string { return "builtin" }

func (p *BuiltinProvider) Sections() []string { return []string{"time", "cwd"} }

func (p *BuiltinProvider) DefaultConfig() map[string]any {
	return map[string]any{
		"time": map[string]any{"format": "%H:%M:%S"},
		"cwd":  map[string]any{},
	}
}

func (p *BuiltinProvider) Collect(_ context.Context, cfg *config.Config, validate bool) (Vars, error) {
	vars := make(Vars)

	timeName := firstNonEmpty(cfg.Time.Name, "time")
	format := cfg.Time.Format
	if format == "" {
		format = "%H:%M:%S"
	}
	formatted := strftime.Format(format, p.deps.Now())
	vars[timeName] = formatted

	cwdName := firstNonEmpty(cfg.Cwd.Name, "cwd")
	wd, err := p.deps.Getwd()
	if err != nil {
		if validate {
			return nil, fmt.Errorf("getwd: %w", err)
		}
		wd = ""
	}
	if cfg.Cwd.Shorten {
		wd = filepath.Base(wd)
	}
	vars[cwdName] = wd

	return vars, nil
}

func (p *BuiltinProvider) Cacheable() bool         { return false }
func (p *BuiltinProvider) CacheTTL() time.Duration { return 0 }

// hostnameCacheTTL is "long" per the spec's hostname contract: a
// machine's hostname essentially never changes, so a client accepts a
// cached hostname up to ten minutes old.
const hostnameCacheTTL = 10 * time.Minute

// HostnameProvider owns the hostname section on its own, separately
// from BuiltinProvider's time/cwd, because it is the one builtin
// variable family stable enough for the daemon to cache.
type HostnameProvider struct {
	hostname func() (string, error)
}

// NewHostnameProvider returns a HostnameProvider using the real OS.
func NewHostnameProvider() *HostnameProvider {
	return &HostnameProvider{hostname: os.Hostname}
}

// NewHostnameProviderWithFunc is used by tests to inject a fake lookup.
func NewHostnameProviderWithFunc(hostname func() (string, error)) *HostnameProvider {
	return &HostnameProvider{hostname: hostname}
}

func (p *HostnameProvider) Name() string { return "hostname" }

func (p *HostnameProvider) Sections() []string { return []string{"hostname"} }

func (p *HostnameProvider) DefaultConfig() map[string]any {
	return map[string]any{"hostname": map[string]any{}}
}

func (p *HostnameProvider) Collect(_ context.Context, cfg *config.Config, validate bool) (Vars, error) {
	vars := make(Vars)

	hostnameName := firstNonEmpty(cfg.Hostname.Name, "hostname")
	host, err := p.hostname()
	if err != nil {
		if validate {
			return nil, fmt.Errorf("hostname: %w", err)
		}
		return vars, nil
	}
	vars[hostnameName] = host
	return vars, nil
}

func (p *HostnameProvider) Cacheable() bool         { return true }
func (p *HostnameProvider) CacheTTL() time.Duration { return hostnameCacheTTL }

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
