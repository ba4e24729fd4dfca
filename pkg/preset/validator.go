// validator.go — Check options documents and describe the wire format.
package preset

import (
	"fmt"
	"strings"

	"github.com/xob0t/FilmBorders/pkg/border"
	"github.com/xob0t/FilmBorders/pkg/options"
)

// ValidateOptions checks an options document. It returns warnings (never
// fatal errors) for unknown keys, which the decoder ignores, and an error
// only when text is not a JSON object.
func ValidateOptions(text string) ([]string, error) {
	unknown, err := options.UnknownKeys(text)
	if err != nil {
		return nil, err
	}
	var warnings []string
	for _, k := range unknown {
		warnings = append(warnings, fmt.Sprintf("unknown option %q ignored", k))
	}
	return warnings, nil
}

// FormatSchema returns a human-readable description of the options wire
// format and the builtin borders.
func FormatSchema() string {
	var s strings.Builder
	s.WriteString("Options (JSON object):\n\n")
	for _, f := range options.Fields() {
		req := "optional"
		if f.Required {
			req = "required"
		}
		fmt.Fprintf(&s, "  %-20s %-9s %s\n", f.Key, req, f.Doc)
	}

	s.WriteString("\nBuiltin borders:\n\n")
	for _, n := range border.Names() {
		fmt.Fprintf(&s, "  %-12s %s (aliases: %s)\n", n, n.Description(), strings.Join(n.Aliases(), ", "))
	}
	return s.String()
}
