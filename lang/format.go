package lang

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Display returns the text printed for t: Bool as true or false, a list as
// its elements in brackets, a type tag as its name and None as nothing.
func Display(t Token) string {
	switch {
	case t.Tag:
		return t.Kind.String()

	case t.Kind == KindBool:
		if t.Truth() {
			return "true"
		}

		return "false"

	case t.Kind == KindList:
		parts := make([]string, len(t.Tokens))
		for i, e := range t.Tokens {
			parts[i] = Display(e)
		}

		return "[" + strings.Join(parts, ", ") + "]"
	}

	return t.Data
}

// interpolate evaluates each {expr} span of a formatted literal in scope h
// and splices the result into the text. \{ and \} are literal braces.
func (in *Interpreter) interpolate(ctx context.Context, h Handle, t Token) Token {
	s := t.Data

	var sb strings.Builder

	for i := 0; i < len(s); {
		c := s[i]

		switch {
		case c == '\\' && i+1 < len(s) && (s[i+1] == '{' || s[i+1] == '}'):
			sb.WriteByte(s[i+1])
			i += 2

		case c == '{':
			end := closingBrace(s, i)
			if end < 0 {
				sb.WriteString(s[i:])
				i = len(s)

				continue
			}

			sb.WriteString(Display(in.evalSource(ctx, h, s[i+1:end])))
			i = end + 1

		default:
			sb.WriteByte(c)
			i++
		}
	}

	kind := t.Kind.unformatted()
	if kind == KindChar && utf8.RuneCountInString(sb.String()) != 1 {
		kind = KindString
	}

	return Token{Kind: kind, Data: sb.String()}
}

// closingBrace returns the index of the brace closing the one at open, or
// -1 if it is not closed. Braces inside quoted literals do not count.
func closingBrace(s string, open int) int {
	depth := 0

	for i := open; i < len(s); i++ {
		switch s[i] {
		case '"', '\'', '`':
			i = closingQuote(s, i)
			if i < 0 {
				return -1
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

// closingQuote returns the index of the quote closing the one at open, or
// -1 if it is not closed. A backslash escapes the following byte.
func closingQuote(s string, open int) int {
	q := s[open]

	for i := open + 1; i < len(s); i++ {
		switch {
		case s[i] == '\\':
			i++
		case s[i] == q:
			return i
		}
	}

	return -1
}

// evalSource lexes src as a single expression and evaluates it in scope h.
func (in *Interpreter) evalSource(ctx context.Context, h Handle, src string) Token {
	var toks []Token

	for _, l := range Lex([]byte(src)) {
		toks = append(toks, l.Tokens...)
	}

	return in.eval(ctx, h, toks)
}
