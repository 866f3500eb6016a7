package shellfmt

// rawFormatter emits plain ANSI with no shell wrapping.
type rawFormatter struct{}

func (rawFormatter) FormatANSI(ansiCode, text, resetCode string) string {
	return ansiCode + text + resetCode
}

func (rawFormatter) Finalize(output string) string {
	return output
}
