package shellfmt

// bashFormatter wraps ANSI codes in \[...\] so bash's line editor treats
// them as zero-width.
type bashFormatter struct{}

func (bashFormatter) FormatANSI(ansiCode, text, resetCode string) string {
	return "\\[" + ansiCode + "\\]" + text + "\\[" + resetCode + "\\]"
}

func (bashFormatter) Finalize(output string) string {
	return output
}
