// Package twigcolor carries the lipgloss-rendered side of Twig's color
// vocabulary: the debug box printed by `twig` when neither --prompt nor
// --mode is given, and a named palette of the template engine's color
// names. The template engine's actual rendered
// output uses raw ANSI escape sequences (internal/template/style.go),
// since that output is consumed by the shell, not drawn to a dev
// terminal with lipgloss's terminal-capability detection.
package twigcolor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette names the 16 ANSI colors the template engine accepts, mapped
// to a representative true-color swatch (independent of the raw SGR
// codes the rendered prompt uses). DebugBox does not draw with it.
var Palette = map[string]lipgloss.Color{
	"black":          lipgloss.Color("#45475a"),
	"red":            lipgloss.Color("#f38ba8"),
	"green":          lipgloss.Color("#a6e3a1"),
	"yellow":         lipgloss.Color("#f9e2af"),
	"blue":           lipgloss.Color("#89b4fa"),
	"magenta":        lipgloss.Color("#f5c2e7"),
	"cyan":           lipgloss.Color("#94e2d5"),
	"white":          lipgloss.Color("#bac2de"),
	"bright_black":   lipgloss.Color("#585b70"),
	"bright_red":     lipgloss.Color("#eba0ac"),
	"bright_green":   lipgloss.Color("#94e2d5"),
	"bright_yellow":  lipgloss.Color("#fae3b0"),
	"bright_blue":    lipgloss.Color("#b4befe"),
	"bright_magenta": lipgloss.Color("#cba6f7"),
	"bright_cyan":    lipgloss.Color("#89dceb"),
	"bright_white":   lipgloss.Color("#f5e0dc"),
}

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#94e2d5")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// ProviderTiming records how long one provider took, and whether its
// value came from the daemon's cache rather than a live call.
type ProviderTiming struct {
	Name      string
	Duration  float64 // milliseconds
	FromCache bool
}

// DebugBox renders the bordered development view printed by `twig`
// when neither --prompt nor --mode is given: the rendered prompt (raw, then per-mode wrapped),
// which providers fired live vs. from cache, and total render time.
func DebugBox(rawPrompt, wrappedPrompt, mode string, timings []ProviderTiming, totalMs float64) string {
	var body strings.Builder

	fmt.Fprintf(&body, "%s\n%s\n\n", labelStyle.Render("raw"), rawPrompt)
	fmt.Fprintf(&body, "%s (%s)\n%s\n\n", labelStyle.Render("wrapped"), mode, wrappedPrompt)

	fmt.Fprintf(&body, "%s\n", labelStyle.Render("providers"))
	for _, t := range timings {
		source := "live"
		if t.FromCache {
			source = "cache"
		}
		fmt.Fprintf(&body, "  %-10s %6.2fms  %s\n", t.Name, t.Duration, dimStyle.Render(source))
	}

	fmt.Fprintf(&body, "\n%s %.2fms\n", labelStyle.Render("total"), totalMs)

	return boxStyle.Render(strings.TrimRight(body.String(), "\n"))
}
