package template

import (
	"os"
	"strings"

	"github.com/twigprompt/twig/internal/shellfmt"
)

// Vars is the flat variable map a render pass substitutes against. An
// absent key and a key present with an empty value are both treated as
// "empty" for substitution purposes, but only a present key can satisfy a
// provider lookup elsewhere in the pipeline; Render itself only cares
// about emptiness.
type Vars map[string]string

// Render expands tpl against vars for the given shell formatter.
func Render(tpl *Template, vars Vars, f shellfmt.Formatter) string {
	var out strings.Builder
	spacePending := false

	emit := func(text string, style Style) {
		wantSpace := spacePending
		spacePending = false

		if text == "" {
			return
		}
		if wantSpace {
			out.WriteByte(' ')
		}
		if style.IsZero() {
			out.WriteString(text)
			return
		}
		out.WriteString(f.FormatANSI(style.ANSICode(), text, ResetCode))
	}

	for _, n := range tpl.Nodes {
		switch v := n.(type) {
		case TextNode:
			out.WriteString(v.Text)
		case ConditionalSpaceNode:
			spacePending = true
		case VariableNode:
			emit(vars[v.Name], v.Style)
		case EnvVarNode:
			emit(os.Getenv(v.Name), v.Style)
		case LiteralNode:
			emit(v.Text, v.Style)
		}
	}

	return f.Finalize(out.String())
}
