// Package main implements the twig client CLI: a one-shot prompt
// renderer invoked once per shell prompt draw.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/twigprompt/twig/internal/cache"
	"github.com/twigprompt/twig/internal/config"
	"github.com/twigprompt/twig/internal/daemon"
	"github.com/twigprompt/twig/internal/provider"
	"github.com/twigprompt/twig/internal/shellfmt"
	"github.com/twigprompt/twig/internal/template"
	"github.com/twigprompt/twig/internal/termwidth"
	"github.com/twigprompt/twig/internal/twigcolor"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		promptFlag   = flag.Bool("prompt", false, "render with raw ANSI, no shell wrapping")
		modeFlag     = flag.String("mode", "", "render with shell-specific wrapping (bash|zsh|tcsh)")
		configFlag   = flag.String("config", "", "path to an explicit config file")
		validateFlag = flag.Bool("validate", false, "run all providers in validate mode and report errors")
		debugFlag    = flag.Bool("debug", false, "emit debug lines to stderr")
	)
	flag.Parse()

	debug := *debugFlag || os.Getenv("TWIG_DEBUG") == "1"

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "twig: %v\n", err)
		return 1
	}

	reg := buildRegistry()
	varNames := collectVariableNames(cfg)
	providerNames := reg.DetermineProviders(varNames)

	if *validateFlag {
		return runValidate(reg, providerNames, cfg)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	dataDir := config.DataDir()
	cacheReader := cache.New(cache.Path(dataDir))

	// A deferred provider isn't refreshed by the daemon's own loop;
	// wake it up for next time if our cache copy is already stale. We
	// still fall through to a live Collect call below for this render,
	// since a request file entry only helps the *next* invocation.
	requestDeferred(cfg, reg, cacheReader, providerNames, filepath.Join(dataDir, daemon.RequestFileName))

	start := time.Now()
	result, err := reg.Collect(ctx, providerNames, cfg, false, cacheReader)
	elapsed := time.Since(start)
	if err != nil {
		// Collect never returns an error in non-validate mode; this is
		// defensive, since a broken prompt must never block the shell.
		result = &provider.CollectResult{Vars: provider.Vars{}}
	}

	mode, explicitMode := parseMode(*modeFlag)

	switch {
	case *promptFlag:
		out := renderOnce(cfg, result.Vars, shellfmt.New(shellfmt.ModeRaw))
		fmt.Print(out)
	case explicitMode:
		out := renderOnce(cfg, result.Vars, shellfmt.New(mode))
		fmt.Print(out)
	default:
		printDebugBox(cfg, result, elapsed)
	}

	// The default development view also reports timing on stderr.
	if debug || (!*promptFlag && !explicitMode) {
		printDebugStderr(result, elapsed)
	}

	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func buildRegistry() *provider.Registry {
	reg := provider.NewRegistry()
	_ = reg.Register(provider.NewBuiltinProvider())
	_ = reg.Register(provider.NewHostnameProvider())
	_ = reg.Register(provider.NewGitProvider())
	_ = reg.Register(provider.NewIPProvider())
	_ = reg.Register(provider.NewBatteryProvider())
	return reg
}

// collectVariableNames scans every configured format string so the
// registry only wakes the providers this invocation actually needs.
func collectVariableNames(cfg *config.Config) []string {
	seen := make(map[string]bool)
	var names []string
	for _, src := range []string{cfg.Prompt.Format, cfg.Prompt.FormatWide, cfg.Prompt.FormatNarrow} {
		if src == "" {
			continue
		}
		tpl := template.ParseLenient(src)
		for _, n := range tpl.VariableNames() {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	return names
}

// requestDeferred asks the daemon to refresh any provider this render
// needs that is flagged deferred in cfg.Daemon.Deferred and whose cached
// value is already missing or stale. Request-file writes are
// best-effort: a failure here never blocks the render, which falls
// through to a live Collect call regardless.
func requestDeferred(cfg *config.Config, reg *provider.Registry, cacheReader *cache.Reader, providerNames []string, requestPath string) {
	deferred := make(map[string]bool, len(cfg.Daemon.Deferred))
	for _, name := range cfg.Daemon.Deferred {
		deferred[name] = true
	}
	for _, name := range providerNames {
		if !deferred[name] {
			continue
		}
		p, ok := reg.Get(name)
		if !ok {
			continue
		}
		staleAfter := time.Duration(cfg.Daemon.StaleAfterSeconds) * time.Second
		if _, hit := cacheReader.Get(name, max(p.CacheTTL(), staleAfter)); hit {
			continue
		}
		_, _ = daemon.RequestDeferred(requestPath, name)
	}
}

func parseMode(raw string) (shellfmt.Mode, bool) {
	if raw == "" {
		return shellfmt.ModeRaw, false
	}
	m, ok := shellfmt.ParseMode(raw)
	if !ok {
		fmt.Fprintf(os.Stderr, "twig: unknown --mode %q, falling back to raw\n", raw)
		return shellfmt.ModeRaw, true
	}
	return m, true
}

func promptConfig(cfg *config.Config) template.PromptConfig {
	return template.PromptConfig{
		Format:         cfg.Prompt.Format,
		FormatWide:     cfg.Prompt.FormatWide,
		FormatNarrow:   cfg.Prompt.FormatNarrow,
		WidthThreshold: cfg.Prompt.WidthThreshold,
		Padding:        cfg.Prompt.Padding,
	}
}

func renderOnce(cfg *config.Config, vars provider.Vars, f shellfmt.Formatter) string {
	width := terminalWidth()
	out, _, err := template.Select(promptConfig(cfg), width, template.Vars(vars), f)
	if err != nil {
		return ""
	}
	return out
}

func runValidate(reg *provider.Registry, providerNames []string, cfg *config.Config) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := reg.Collect(ctx, providerNames, cfg, true, nil); err != nil {
		fmt.Fprintf(os.Stderr, "twig: validation failed: %v\n", err)
		return 1
	}

	if errs := template.Validate(cfg.Prompt.Format); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "twig: %v\n", e)
		}
		return 1
	}

	fmt.Println("twig: configuration valid")
	return 0
}

func printDebugBox(cfg *config.Config, result *provider.CollectResult, elapsed time.Duration) {
	raw := renderOnce(cfg, result.Vars, shellfmt.New(shellfmt.ModeRaw))
	wrapped := renderOnce(cfg, result.Vars, shellfmt.New(shellfmt.ModeBash))

	fromCache := make(map[string]bool)
	for _, name := range result.FromCache {
		fromCache[name] = true
	}

	var timings []twigcolor.ProviderTiming
	for _, t := range result.Timings {
		timings = append(timings, twigcolor.ProviderTiming{
			Name:     t.Name,
			Duration: float64(t.Duration.Microseconds()) / 1000,
		})
	}
	for _, name := range result.FromCache {
		timings = append(timings, twigcolor.ProviderTiming{Name: name, FromCache: true})
	}

	box := twigcolor.DebugBox(raw, wrapped, "bash", timings, float64(elapsed.Microseconds())/1000)
	fmt.Println(box)
}

func printDebugStderr(result *provider.CollectResult, elapsed time.Duration) {
	fmt.Fprintf(os.Stderr, "twig: collected %d providers in %s\n", len(result.Timings)+len(result.FromCache), elapsed)
	for _, t := range result.Timings {
		fmt.Fprintf(os.Stderr, "twig: %s live in %s\n", t.Name, t.Duration)
	}
	for _, name := range result.FromCache {
		fmt.Fprintf(os.Stderr, "twig: %s from cache\n", name)
	}
}

func terminalWidth() int {
	return termwidth.New().Width()
}
