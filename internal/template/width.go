package template

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// VisibleLength returns the number of display columns rendered would occupy
// once a terminal (or the shell's own line-editor width accounting) has
// discarded every non-printing byte: raw ANSI CSI sequences, and the
// \[...\] / %{...%} wrappers the shell formatters add around them.
func VisibleLength(rendered string) int {
	return runewidth.StringWidth(stripNonPrinting(rendered))
}

// stripNonPrinting removes raw "\x1b[..." CSI sequences and the bash/zsh/tcsh
// non-printing wrappers, leaving only the text a user would actually see.
func stripNonPrinting(text string) string {
	var out strings.Builder
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case r == '\x1b':
			i++
			if i < len(runes) && runes[i] == '[' {
				i++
			}
			for i < len(runes) && (runes[i] < 0x40 || runes[i] > 0x7e) {
				i++
			}
			if i < len(runes) {
				i++ // consume the final byte
			}
		case r == '\\' && i+1 < len(runes) && (runes[i+1] == '[' || runes[i+1] == ']'):
			i += 2
		case r == '%' && i+1 < len(runes) && (runes[i+1] == '{' || runes[i+1] == '}'):
			i += 2
		default:
			out.WriteRune(r)
			i++
		}
	}
	return out.String()
}
