package lang

import "slices"

// StripComments removes comment tokens from the line tree rooted at lines,
// depth-first, and returns the cleaned sequence.
//
// A line holding nothing but a comment is deleted along with any block
// nested beneath it. A line with a trailing comment keeps its tokens and its
// block. A blank line is deleted when the line after it has no tokens
// either, so runs of blank lines collapse to one.
func StripComments(lines []*Line) []*Line {
	kept := make([]*Line, 0, len(lines))

	for _, l := range lines {
		if len(l.Lines) > 0 {
			l.Lines = StripComments(l.Lines)
			if len(l.Lines) == 0 {
				l.Lines = nil
			}
		}

		if len(l.Tokens) == 1 && l.Tokens[0].Kind == KindComment {
			continue
		}

		l.Tokens, _ = trimComment(l.Tokens)
		kept = append(kept, l)
	}

	out := kept[:0]

	for i, l := range kept {
		if l.IsSeparator() && i+1 < len(kept) && len(kept[i+1].Tokens) == 0 {
			continue
		}

		out = append(out, l)
	}

	return out
}

// trimComment removes a trailing comment token, which may sit inside an
// unterminated bracket group at the end of the line.
func trimComment(toks []Token) ([]Token, bool) {
	n := len(toks)
	if n == 0 {
		return toks, false
	}

	last := toks[n-1]
	if last.Kind == KindComment {
		return toks[:n-1], true
	}

	if len(last.Tokens) == 0 {
		return toks, false
	}

	inner, ok := trimComment(last.Tokens)
	if !ok {
		return toks, false
	}

	toks = slices.Clone(toks)
	toks[n-1].Tokens = inner

	return toks, true
}
