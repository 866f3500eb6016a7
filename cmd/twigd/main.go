// Package main implements twigd: the resident process that keeps the
// shared prompt cache warm so twig itself never blocks a shell on a
// slow provider.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/twigprompt/twig/internal/config"
	"github.com/twigprompt/twig/internal/daemon"
	"github.com/twigprompt/twig/internal/provider"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		fgFlag     = flag.Bool("fg", false, "run in the foreground (twigd never detaches; this flag only silences the notice)")
		configFlag = flag.String("config", "", "path to an explicit config file")
	)
	flag.Parse()

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "twigd: %v\n", err)
		return 1
	}

	if !*fgFlag {
		// twigd has no privileged ports or parent terminal to detach
		// from; running it under a supervisor (systemd, launchd) is
		// the expected path to true background operation. --fg exists
		// so it can also be run directly in a terminal for debugging.
		fmt.Fprintln(os.Stderr, "twigd: running in foreground (use a supervisor to daemonize)")
	}

	reg := buildRegistry()
	d := daemon.New(config.DataDir(), reg, cfg)

	// Run installs its own signal handlers for a clean shutdown; the
	// background context here only carries cancellation if some future
	// caller wants to stop the daemon programmatically.
	if err := d.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "twigd: %v\n", err)
		if errors.Is(err, daemon.ErrAlreadyRunning) {
			return 2
		}
		return 1
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
