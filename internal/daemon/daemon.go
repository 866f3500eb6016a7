// Package daemon implements twigd: a resident process that refreshes
// cacheable provider output on a fixed-rate tick and publishes it as a
// single JSON document clients read without needing to wait on a live
// provider call themselves.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/twigprompt/twig/internal/cache"
	"github.com/twigprompt/twig/internal/config"
	"github.com/twigprompt/twig/internal/provider"
)

const (
	lockFileName    = "daemon.lock"
	pidFileName     = "daemon.pid"
	defaultTickSecs = 1
)

// ErrAlreadyRunning is returned by Run when another twigd instance
// already holds the data directory's lock.
var ErrAlreadyRunning = errors.New("twigd already running")

// Daemon owns the lock/PID-file lifecycle and the tick loop that keeps
// the cache document fresh.
type Daemon struct {
	dataDir  string
	registry *provider.Registry
	cfg      *config.Config
	logger   *StandardLogger

	lock *Lock
	wg   sync.WaitGroup
}

// New returns a Daemon that writes its state under dataDir.
func New(dataDir string, registry *provider.Registry, cfg *config.Config) *Daemon {
	return &Daemon{
		dataDir:  dataDir,
		registry: registry,
		cfg:      cfg,
		logger:   NewStandardLogger(),
	}
}

// Run acquires the lock, installs signal handlers, and blocks running
// the tick loop until ctx is canceled or a shutdown signal arrives.
// Returns an error immediately, without touching the lock file's
// ownership, if another instance already holds it.
func (d *Daemon) Run(ctx context.Context) error {
	if err := os.MkdirAll(d.dataDir, 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	lockPath := filepath.Join(d.dataDir, lockFileName)
	l, ok, err := TryAcquire(lockPath)
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (lock held at %s)", ErrAlreadyRunning, lockPath)
	}
	d.lock = l

	pidPath := filepath.Join(d.dataDir, pidFileName)
	if err := writePIDFile(pidPath); err != nil {
		d.lock.Release()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	go func() {
		sig := <-sigCh
		d.logger.Printf("received %s, shutting down", sig)
		cancel()
	}()

	d.logger.Printf("started, pid=%d, tick=%ds", os.Getpid(), d.tickSeconds())

	d.runLoop(ctx)

	removePIDFile(pidPath)
	if err := d.lock.Release(); err != nil {
		d.logger.Printf("release lock: %v", err)
	}
	d.logger.Println("stopped")

	return nil
}

func (d *Daemon) tickSeconds() int {
	if d.cfg.Daemon.FrequencySeconds > 0 {
		return int(d.cfg.Daemon.FrequencySeconds)
	}
	return defaultTickSecs
}

// runLoop ticks at a fixed rate (accounting for how long each tick's
// work took, rather than sleeping a fixed delay after each one, so a
// slow provider doesn't compound drift across ticks).
func (d *Daemon) runLoop(ctx context.Context) {
	interval := time.Duration(d.tickSeconds()) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	writer := cache.NewWriter(cache.Path(d.dataDir))
	requestPath := filepath.Join(d.dataDir, RequestFileName)

	last := &cache.Document{Entries: make(map[string]cache.Entry)}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tick(ctx, writer, requestPath, last)
		}
	}
}

func (d *Daemon) tick(ctx context.Context, writer *cache.Writer, requestPath string, last *cache.Document) {
	cacheable := d.cacheableProviderNames()
	deferredRequested := drainRequests(requestPath)
	targets := mergeUnique(cacheable, deferredRequested)

	if len(targets) == 0 {
		return
	}

	tickCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := d.registry.Collect(tickCtx, targets, d.cfg, false, nil)
	if err != nil {
		d.logger.Printf("collect: %v", err)
		return
	}

	now := time.Now().UnixMilli()
	for _, name := range targets {
		p, ok := d.registry.Get(name)
		if !ok {
			continue
		}
		providerVars := varsForProvider(p, result.Vars)
		if len(providerVars) == 0 {
			// Failure or empty result: preserve the previous entry
			// rather than overwriting it with nothing.
			continue
		}
		last.Entries[name] = cache.Entry{TimestampMs: now, Vars: providerVars}
	}

	if err := writer.Write(last); err != nil {
		d.logger.Printf("write cache: %v", err)
	}
}

func (d *Daemon) cacheableProviderNames() []string {
	var names []string
	deferred := make(map[string]bool)
	for _, n := range d.cfg.Daemon.Deferred {
		deferred[n] = true
	}
	for _, name := range d.registry.Providers() {
		p, ok := d.registry.Get(name)
		if !ok || !p.Cacheable() || deferred[name] {
			continue
		}
		names = append(names, name)
	}
	return names
}

// varsForProvider filters a merged Vars map down to the keys that
// belong to one provider's sections, since Registry.Collect returns
// everything merged together.
func varsForProvider(p provider.Provider, merged provider.Vars) provider.Vars {
	prefixes := p.Sections()
	out := make(provider.Vars)
	for k, v := range merged {
		for _, prefix := range prefixes {
			if k == prefix || len(k) > len(prefix) && k[:len(prefix)+1] == prefix+"_" {
				out[k] = v
				break
			}
		}
	}
	return out
}

func mergeUnique(a, b []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
