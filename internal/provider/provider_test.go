package provider

import (
	"context"
	"testing"
	"time"

	"github.com/twigprompt/twig/internal/config"
)

type fakeProvider struct {
	name     string
	sections []string
	vars     Vars
	err      error
}

func (f *fakeProvider) Name() string                  { return f.name }
func (f *fakeProvider) Sections() []string            { return f.sections }
func (f *fakeProvider) DefaultConfig() map[string]any { return nil }
func (f *fakeProvider) Cacheable() bool               { return false }
func (f *fakeProvider) CacheTTL() time.Duration       { return 0 }
func (f *fakeProvider) Collect(_ context.Context, _ *config.Config, _ bool) (Vars, error) {
	return f.vars, f.err
}

func TestRegistryRegisterDuplicateSection(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&fakeProvider{name: "a", sections: []string{"git"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := r.Register(&fakeProvider{name: "b", sections: []string{"git"}})
	if err == nil {
		t.Error("expected error registering duplicate section")
	}
}

func TestRegistryRegisterDuplicateName(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&fakeProvider{name: "a", sections: []string{"x"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := r.Register(&fakeProvider{name: "a", sections: []string{"y"}})
	if err == nil {
		t.Error("expected error registering duplicate provider name")
	}
}

func TestDetermineProviders(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&fakeProvider{name: "git", sections: []string{"git"}})
	_ = r.Register(&fakeProvider{name: "builtin", sections: []string{"time", "hostname", "cwd"}})

	got := r.DetermineProviders([]string{"git_branch", "time", "unknown_thing"})
	want := []string{"builtin", "git"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestDetermineProvidersSubsetMonotonic(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&fakeProvider{name: "git", sections: []string{"git"}})
	_ = r.Register(&fakeProvider{name: "ip", sections: []string{"ip"}})

	full := r.DetermineProviders([]string{"git_branch", "ip_address"})
	subset := r.DetermineProviders([]string{"git_branch"})

	containsAll := func(super, sub []string) bool {
		set := make(map[string]bool)
		for _, s := range super {
			set[s] = true
		}
		for _, s := range sub {
			if !set[s] {
				return false
			}
		}
		return true
	}
	if !containsAll(full, subset) {
		t.Errorf("full %v does not contain subset %v", full, subset)
	}
}

func TestCollectMergesAndSwallowsErrorsWhenNotValidating(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&fakeProvider{name: "good", sections: []string{"good"}, vars: Vars{"good_x": "1"}})
	_ = r.Register(&fakeProvider{name: "bad", sections: []string{"bad"}, err: context.DeadlineExceeded})

	result, err := r.Collect(context.Background(), []string{"good", "bad"}, &config.Config{}, false, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Vars["good_x"] != "1" {
		t.Errorf("missing expected var, got %v", result.Vars)
	}
}

func TestCollectSurfacesErrorsWhenValidating(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&fakeProvider{name: "bad", sections: []string{"bad"}, err: context.DeadlineExceeded})

	_, err := r.Collect(context.Background(), []string{"bad"}, &config.Config{}, true, nil)
	if err == nil {
		t.Error("expected error in validate mode")
	}
}

type fakeCacheableProvider struct {
	fakeProvider
	ttl time.Duration
}

func (f *fakeCacheableProvider) Cacheable() bool         { return true }
func (f *fakeCacheableProvider) CacheTTL() time.Duration { return f.ttl }

// fakeCache reports a hit whenever the age of its single entry is within
// the ttl it's asked about, so tests can assert on what ttl Collect
// actually passed in.
type fakeCache struct {
	age  time.Duration
	vars Vars
}

func (f *fakeCache) Get(_ string, ttl time.Duration) (Vars, bool) {
	if f.age > ttl {
		return nil, false
	}
	return f.vars, true
}

func TestCollectCombinesStaleAfterWithProviderTTL(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&fakeCacheableProvider{
		fakeProvider: fakeProvider{name: "hostname", sections: []string{"hostname"}},
		ttl:          time.Second,
	})

	cfg := &config.Config{Daemon: config.DaemonConfig{StaleAfterSeconds: 10}}
	cache := &fakeCache{age: 3 * time.Second, vars: Vars{"hostname": "box"}}

	result, err := r.Collect(context.Background(), []string{"hostname"}, cfg, false, cache)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Vars["hostname"] != "box" {
		t.Errorf("expected cache hit using stale_after as the TTL floor, got %v", result.Vars)
	}
	if len(result.FromCache) != 1 || result.FromCache[0] != "hostname" {
		t.Errorf("expected hostname reported from cache, got %v", result.FromCache)
	}
}

func TestProviderKeysDisjoint(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(NewBuiltinProvider())
	_ = r.Register(NewHostnameProvider())
	_ = r.Register(NewGitProvider())
	_ = r.Register(NewIPProvider())
	_ = r.Register(NewBatteryProvider())

	seen := make(map[string]string)
	for _, name := range r.Providers() {
		p, _ := r.Get(name)
		for _, section := range p.Sections() {
			if owner, ok := seen[section]; ok {
				t.Errorf("section %q claimed by both %q and %q", section, owner, name)
			}
			seen[section] = name
		}
	}
}
