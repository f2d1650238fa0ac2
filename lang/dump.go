package lang

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes the line tree rooted at lines to w, one line per row,
// indented by nesting depth. Blank lines are written as a lone dot.
func Dump(w io.Writer, lines []*Line) error {
	var err error

	walkLines(lines, 0, func(depth int, l *Line) bool {
		text := l.String()
		if len(l.Tokens) == 0 {
			text = "."
		}

		_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), text)

		return err == nil
	})

	return err
}
