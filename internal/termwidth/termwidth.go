// Package termwidth detects the controlling terminal's column count for
// the responsive prompt selector.
package termwidth

import (
	"os"
	"strconv"

	"golang.org/x/term"
)

// Detector resolves the current terminal width in columns.
type Detector struct{}

// New returns a Detector backed by the real terminal.
func New() *Detector {
	return &Detector{}
}

// Width returns the terminal's column count, or 0 if it cannot be
// determined by any means. Shell prompt substitution commonly redirects
// stdout, so detection falls back from stdout to stderr and finally to
// the controlling tty device before giving up.
func (d *Detector) Width() int {
	if raw := os.Getenv("TWIG_WIDTH"); raw != "" {
		if w, err := strconv.Atoi(raw); err == nil && w > 0 {
			return w
		}
	}

	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}

	if w, _, err := term.GetSize(int(os.Stderr.Fd())); err == nil && w > 0 {
		return w
	}

	if tty, err := os.Open("/dev/tty"); err == nil {
		defer tty.Close()
		if w, _, err := term.GetSize(int(tty.Fd())); err == nil && w > 0 {
			return w
		}
	}

	return 0
}
