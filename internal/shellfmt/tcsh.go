package shellfmt

import "strings"

// tcshFormatter wraps ANSI codes in %{...%}, identically to zsh, but needs
// extra escaping at finalize time for tcsh's history expansion and prompt
// formatting characters.
type tcshFormatter struct{}

func (tcshFormatter) FormatANSI(ansiCode, text, resetCode string) string {
	return "%{" + ansiCode + "%}" + text + "%{" + resetCode + "%}"
}

func (tcshFormatter) Finalize(output string) string {
	output = strings.ReplaceAll(output, "\n", "\\n")

	// "!" triggers tcsh history expansion.
	output = strings.ReplaceAll(output, "!", "\\!")

	// "%" is special in tcsh prompt strings (%n, %/, ...). Double every
	// literal one, then restore the %{ / %} pairs the doubling clobbered.
	output = strings.ReplaceAll(output, "%", "%%")
	output = strings.ReplaceAll(output, "%%{", "%{")
	output = strings.ReplaceAll(output, "%%}", "%}")

	// tcsh mis-parses \n immediately after a %} close; a space fixes it.
	output = strings.ReplaceAll(output, "%}\\n", "%} \\n")
	return output
}
