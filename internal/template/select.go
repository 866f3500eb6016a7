package template

import "github.com/twigprompt/twig/internal/shellfmt"

// PromptConfig is the subset of the prompt section the selector needs.
// Mirrors config.PromptConfig; this package does not import
// internal/config.
type PromptConfig struct {
	Format         string
	FormatWide     string
	FormatNarrow   string
	WidthThreshold *uint16
	Padding        uint16
}

// defaultPadding matches config.setDefaults's prompt.padding default.
const defaultPadding = 5

// Select chooses which prompt format string to render for this
// invocation and renders it. width is the terminal column count, or 0
// if it could not be determined.
//
// Two modes: if WidthThreshold is set, it's a static cutoff — below the
// threshold picks format_narrow (falling back to format), at or above
// picks format_wide (falling back to format). If WidthThreshold is
// unset, the selector is dynamic: it renders format_wide optimistically,
// measures the result, and falls back to format_narrow only if the
// rendered width plus padding would overflow the terminal.
func Select(cfg PromptConfig, width int, vars Vars, f shellfmt.Formatter) (rendered string, chosenSource string, err error) {
	padding := int(cfg.Padding)
	if padding == 0 {
		padding = defaultPadding
	}

	if cfg.WidthThreshold != nil {
		threshold := int(*cfg.WidthThreshold)
		if width > 0 && width < threshold {
			return renderFormat(firstNonEmpty(cfg.FormatNarrow, cfg.Format), "format_narrow", vars, f)
		}
		return renderFormat(firstNonEmpty(cfg.FormatWide, cfg.Format), "format_wide", vars, f)
	}

	wideSrc := firstNonEmpty(cfg.FormatWide, cfg.Format)
	out, _, err := renderFormat(wideSrc, "format_wide", vars, f)
	if err != nil {
		return "", "", err
	}

	if width > 0 && VisibleLength(out)+padding > width && cfg.FormatNarrow != "" {
		return renderFormat(cfg.FormatNarrow, "format_narrow", vars, f)
	}

	return out, "format_wide", nil
}

func renderFormat(src, source string, vars Vars, f shellfmt.Formatter) (string, string, error) {
	tpl := ParseLenient(src)
	return Render(tpl, vars, f), source, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
