package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/rts/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"builtins", "clear", "edit", "help", "list", "quit", "reset"}

// isWordBoundary reports whether r ends an identifier for completion: any
// rune other than a letter, digit or underscore.
func isWordBoundary(r rune) bool {
	switch {
	case r == '_',
		'a' <= r && r <= 'z',
		'A' <= r && r <= 'Z',
		'0' <= r && r <= '9':
		return false
	}

	return r < utf8.RuneSelf
}

// wordBounds returns the identifier around cursor and its byte offsets in
// input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the dotted link leading up to the word starting at
// wordStart. For "x + server.http.ho" with the word "ho" it is
// "server.http"; for a word that does not follow a dot it is empty.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimSuffix(prefix, ".")

	pos := len(prefix)
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.Trim(prefix[pos:], ".")
}

// candidates returns the completions for a word following parent: the
// builtins and every visible name at the top level, or the members of the
// structure parent links to.
func candidates(in *lang.Interpreter, parent string) []string {
	if parent == "" {
		names := in.Names()
		for _, b := range lang.Builtins() {
			if !slices.Contains(names, b.Name) {
				names = append(names, b.Name)
			}
		}

		return names
	}

	tree, h := in.Tree()

	for i, seg := range strings.Split(parent, ".") {
		if i == 0 {
			h = tree.Lookup(h, seg)
		} else {
			h = tree.Child(h, seg)
		}

		if !h.Valid() {
			return nil
		}
	}

	var names []string
	for _, c := range tree.Children(h) {
		if tree.Flags(c)&(lang.FlagTransient|lang.FlagParam) == 0 {
			names = append(names, tree.Name(c))
		}
	}

	return names
}

// computeMatches returns the ranked fuzzy matches for the word at the
// cursor along with the word's bounds.
//
// An empty word matches nothing at the top level, so the hint line stays
// visible, but after a dot it lists every member.
func (m model) computeMatches() (matches fuzzy.Matches, start, end int) {
	input := m.input.Value()

	word, start, end := wordBounds(input, m.input.Position())

	var names []string

	parent := ""
	if m.mode == modeCtrl {
		names = ctrlCommands
	} else {
		parent = parentPath(input, start)
		names = candidates(m.in, parent)
	}

	if len(names) == 0 {
		return nil, start, end
	}

	if word == "" {
		if parent == "" {
			return nil, start, end
		}

		matches = make(fuzzy.Matches, len(names))
		for i, c := range names {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, start, end
	}

	return fuzzy.Find(word, names), start, end
}

// renderCandidateBar renders matches on one line no wider than width,
// ending with an ellipsis when they do not fit.
func renderCandidateBar(
	matches fuzzy.Matches,
	selected int,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	room := width - lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, i == selected)

		w := lipgloss.Width(rendered)
		if i > 0 {
			w += len(sep)
		}

		if i > 0 && used+w > room {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched characters
// highlighted. Builtins are shown with a "()" suffix.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if _, ok := builtinSignature(match.Str); ok {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}
