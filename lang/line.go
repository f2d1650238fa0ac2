package lang

import "strings"

// Line is one statement: its tokens, the indentation it was written at, and
// the block of more indented lines nested beneath it.
//
// Lines are built by the front end and not modified afterwards, so they are
// shared between structures without locking.
type Line struct {
	Tokens []Token `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	Indent int     `json:"indent"           yaml:"indent"`
	Lines  []*Line `json:"lines,omitempty"  yaml:"lines,omitempty"`
	Parent *Line   `json:"-"                yaml:"-"`
}

// IsSeparator reports whether l is a blank line.
func (l *Line) IsSeparator() bool {
	return len(l.Tokens) == 0 && len(l.Lines) == 0
}

// Head returns the kind of the first token, or KindNone for an empty line.
func (l *Line) Head() Kind {
	if len(l.Tokens) == 0 {
		return KindNone
	}

	return l.Tokens[0].Kind
}

// Walk calls fn for l and every line nested beneath it, depth-first, with
// the nesting depth relative to l. Walk stops when fn returns false.
func (l *Line) Walk(fn func(depth int, l *Line) bool) bool {
	return walkLines([]*Line{l}, 0, fn)
}

func walkLines(lines []*Line, depth int, fn func(int, *Line) bool) bool {
	for _, l := range lines {
		if !fn(depth, l) {
			return false
		}

		if !walkLines(l.Lines, depth+1, fn) {
			return false
		}
	}

	return true
}

// String returns the tokens of l separated by spaces.
func (l *Line) String() string {
	parts := make([]string, len(l.Tokens))
	for i, t := range l.Tokens {
		parts[i] = t.String()
	}

	return strings.Join(parts, " ")
}

// CountLines returns the number of lines in the tree rooted at lines.
func CountLines(lines []*Line) int {
	n := 0

	walkLines(lines, 0, func(int, *Line) bool {
		n++

		return true
	})

	return n
}
