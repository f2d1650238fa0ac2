package style

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Attr is the styling state in effect for a span of text.
type Attr struct {
	Fg   string // foreground color, "#rrggbb" or empty
	Bg   string // background color, "#rrggbb" or empty
	Bold bool
}

// IsZero reports whether a carries no styling.
func (a Attr) IsZero() bool { return a == Attr{} }

// Span is a run of text sharing one [Attr].
type Span struct {
	Text string
	Attr Attr
}

// markers lists every recognized escape in match order. Longer markers
// sharing a prefix with shorter ones come first.
var markers = []struct {
	seq   string
	apply func(*Attr, string) string
	arg   bool
}{
	{`\cfg`, func(a *Attr, _ string) string { a.Fg = ""; return "" }, false},
	{`\cbg`, func(a *Attr, _ string) string { a.Bg = ""; return "" }, false},
	{`\cb`, func(a *Attr, _ string) string { a.Bold = false; return "" }, false},
	{`\c`, func(a *Attr, _ string) string { *a = Attr{}; return "" }, false},
	{`\fg`, func(a *Attr, v string) string { a.Fg = v; return "" }, true},
	{`\bg`, func(a *Attr, v string) string { a.Bg = v; return "" }, true},
	{`\b`, func(a *Attr, _ string) string { a.Bold = true; return "" }, false},
	{`\n`, func(*Attr, string) string { return "\n" }, false},
	{`\t`, func(*Attr, string) string { return "\t" }, false},
	{`\\`, func(*Attr, string) string { return `\` }, false},
}

// Parse splits s into styled spans, decoding text escapes and consuming
// style markers. Unrecognized escapes are kept verbatim. A color marker
// without a well-formed "(#rrggbb)" argument is kept verbatim too.
func Parse(s string) []Span {
	var (
		spans []Span
		text  strings.Builder
		attr  Attr
	)

	flush := func() {
		if text.Len() > 0 {
			spans = append(spans, Span{Text: text.String(), Attr: attr})
			text.Reset()
		}
	}

	for i := 0; i < len(s); {
		if s[i] != '\\' {
			text.WriteByte(s[i])
			i++

			continue
		}

		matched := false

		for _, m := range markers {
			if !strings.HasPrefix(s[i:], m.seq) {
				continue
			}

			n := len(m.seq)
			arg := ""

			if m.arg {
				v, size, ok := colorArg(s[i+n:])
				if !ok {
					continue
				}

				arg, n = v, n+size
			}

			next := attr
			if lit := m.apply(&next, arg); lit != "" {
				text.WriteString(lit)
			} else if next != attr {
				flush()
			}

			attr = next
			i += n
			matched = true

			break
		}

		if !matched {
			text.WriteByte(s[i])
			i++
		}
	}

	flush()

	return spans
}

// colorArg reads a "(#rrggbb)" argument at the start of s.
func colorArg(s string) (color string, size int, ok bool) {
	const width = len("(#rrggbb)")

	if len(s) < width || s[0] != '(' || s[1] != '#' || s[width-1] != ')' {
		return "", 0, false
	}

	for _, c := range s[2 : width-1] {
		if !isHex(c) {
			return "", 0, false
		}
	}

	return s[1 : width-1], width, true
}

func isHex(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') ||
		(c >= 'A' && c <= 'F')
}

// Plain returns s with escapes decoded and all style markers removed.
func Plain(s string) string {
	var b strings.Builder

	for _, span := range Parse(s) {
		b.WriteString(span.Text)
	}

	return b.String()
}

// Renderer renders markup as terminal styles for one output.
type Renderer struct {
	r *lipgloss.Renderer
}

// New returns a [Renderer] whose color profile is detected from w. Output
// that is not a terminal receives plain text.
func New(w io.Writer) *Renderer {
	return &Renderer{r: lipgloss.NewRenderer(w)}
}

// Render returns s with style markers converted to terminal escape codes.
func (r *Renderer) Render(s string) string {
	var b strings.Builder

	for _, span := range Parse(s) {
		if span.Attr.IsZero() {
			b.WriteString(span.Text)

			continue
		}

		st := r.style(span.Attr)

		// Styled text is rendered per line so that lipgloss does not pad
		// lines to a common width.
		for i, line := range strings.Split(span.Text, "\n") {
			if i > 0 {
				b.WriteByte('\n')
			}

			if line != "" {
				b.WriteString(st.Render(line))
			}
		}
	}

	return b.String()
}

func (r *Renderer) style(a Attr) lipgloss.Style {
	st := r.r.NewStyle().Inline(true).TabWidth(lipgloss.NoTabConversion)

	if a.Fg != "" {
		st = st.Foreground(lipgloss.Color(a.Fg))
	}

	if a.Bg != "" {
		st = st.Background(lipgloss.Color(a.Bg))
	}

	return st.Bold(a.Bold)
}
