package lang

// NestBrackets regroups toks so that each begin token holds the tokens up to
// its matching end token, with inner pairs nested first. Tokens already
// nested by an earlier pass for another bracket family are searched too.
//
// An end token without a begin is dropped. A begin token without an end
// keeps everything that follows it.
func NestBrackets(toks []Token, begin, end Kind) []Token {
	type frame struct {
		open Token
		toks []Token
	}

	stack := []frame{{}}

	for _, t := range toks {
		if len(t.Tokens) > 0 {
			t.Tokens = NestBrackets(t.Tokens, begin, end)
		}

		top := &stack[len(stack)-1]

		switch t.Kind {
		case begin:
			stack = append(stack, frame{open: t})

		case end:
			if len(stack) == 1 {
				continue
			}

			stack = stack[:len(stack)-1]
			open := top.open
			open.Tokens = append(open.Tokens, top.toks...)
			parent := &stack[len(stack)-1]
			parent.toks = append(parent.toks, open)

		default:
			top.toks = append(top.toks, t)
		}
	}

	for len(stack) > 1 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		open := top.open
		open.Tokens = append(open.Tokens, top.toks...)
		parent := &stack[len(stack)-1]
		parent.toks = append(parent.toks, open)
	}

	return stack[0].toks
}

// NestLines turns a flat sequence of lines into a tree: every line owns the
// run of strictly more indented lines that follows it, recursively.
func NestLines(lines []*Line) []*Line {
	return nestLines(lines, nil)
}

func nestLines(lines []*Line, parent *Line) []*Line {
	out := make([]*Line, 0, len(lines))

	for i := 0; i < len(lines); {
		l := lines[i]
		l.Parent = parent

		j := i + 1
		for j < len(lines) && lines[j].Indent > l.Indent {
			j++
		}

		if j > i+1 {
			l.Lines = nestLines(lines[i+1:j], l)
		}

		out = append(out, l)
		i = j
	}

	return out
}
