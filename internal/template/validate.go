package template

import "fmt"

// Validate strictly parses src and reports the first malformed construct,
// if any. `twig --validate` surfaces this alongside provider-level errors.
func Validate(src string) []error {
	if _, err := Parse(src); err != nil {
		return []error{err}
	}
	return nil
}

// validateStyleToken checks a style string on its own, outside any
// template. It is unexported and nothing calls it at present.
func validateStyleToken(tok string) error {
	if _, err := ParseStyle(tok); err != nil {
		return fmt.Errorf("invalid style %q: %w", tok, err)
	}
	return nil
}
