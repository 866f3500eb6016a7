package shellfmt

import "strings"

// zshFormatter wraps ANSI codes in %{...%} so zsh's line editor treats
// them as zero-width.
type zshFormatter struct{}

func (zshFormatter) FormatANSI(ansiCode, text, resetCode string) string {
	return "%{" + ansiCode + "%}" + text + "%{" + resetCode + "%}"
}

func (zshFormatter) Finalize(output string) string {
	return strings.ReplaceAll(output, "\n", "\\n")
}
