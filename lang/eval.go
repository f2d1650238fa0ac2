package lang

import (
	"context"
	"log/slog"
)

// exec runs the body of the structure at h from its cursor to the end.
// The cursor is rewound afterwards so the body can run again.
func (in *Interpreter) exec(ctx context.Context, h Handle) {
	if in.depth >= in.maxDepth {
		in.fail(ErrMaxDepthExceeded.With(
			slog.String("structure", in.tree.Path(h)),
			slog.Int("depth", in.depth)))

		return
	}

	in.depth++
	defer func() { in.depth-- }()

	body := in.tree.Body(h)

	for {
		cur := in.tree.Cursor(h)
		if cur >= len(body) || in.stopped(ctx) {
			break
		}

		n := in.line(ctx, h, body, cur)
		in.tree.SetCursor(h, cur+n)
	}

	in.tree.SetCursor(h, 0)
}

// stopped reports whether execution must unwind: after exit, when ctx is
// done, or while a scope exit is pending.
func (in *Interpreter) stopped(ctx context.Context) bool {
	if ctx.Err() != nil {
		in.halt.Store(true)
	}

	return in.halt.Load() || in.signal == signalExit
}

func (in *Interpreter) fail(err error) {
	if in.err == nil {
		in.err = err
	}

	in.halt.Store(true)
}

// line executes body[cur] in scope h and returns the number of lines it
// consumed.
func (in *Interpreter) line(
	ctx context.Context, h Handle, body []*Line, cur int,
) int {
	l := body[cur]

	in.logger.TraceContext(ctx, "line",
		slog.String("scope", in.tree.Path(h)),
		slog.Int("index", cur),
		slog.String("tokens", l.String()))

	switch {
	case len(l.Tokens) == 0:
		return 1

	case l.Tokens[0].Kind == KindWord && len(l.Lines) > 0:
		in.declare(ctx, h, l)

		return 1

	case l.Tokens[0].Kind == KindEquals:
		in.ret(ctx, h, l.Tokens[1:])

		return 1

	case l.Tokens[0].Kind == KindQuestion && len(l.Lines) > 0:
		return in.conditional(ctx, h, body, cur)
	}

	in.statement(ctx, h, l.Tokens)

	return 1
}

// declare creates the structure declared by l under scope. A namespace runs
// its body at once; a callable, which has a parameter list or a result
// type, runs when invoked.
func (in *Interpreter) declare(ctx context.Context, scope Handle, l *Line) {
	toks := l.Tokens
	spec := Spec{Name: toks[0].Data, Flags: FlagBlock, Body: l.Lines}

	var params []Spec

	i := 1
	if i < len(toks) && toks[i].Kind == KindCircleBegin {
		params = in.params(ctx, toks[i].Tokens)
		spec.Flags |= FlagCallable
		i++
	}

	if i+1 < len(toks) && toks[i].Kind == KindPointer {
		typ := in.typeOf(ctx, toks[i+1])
		spec.Result = &Token{Kind: typ, Tag: true}
		spec.Flags |= FlagCallable
	}

	h := in.tree.Create(scope, spec)

	for _, p := range params {
		in.tree.Create(h, p)
	}

	in.logger.TraceContext(ctx, "declare",
		slog.String("structure", in.tree.Path(h)),
		slog.Bool("callable", spec.Flags&FlagCallable != 0),
		slog.Int("params", len(params)))

	if spec.Flags&FlagCallable == 0 {
		in.exec(ctx, h)
		in.leave()
	}
}

// params parses a parameter list: comma-separated names, each optionally
// followed by a mutability marker and a type annotation.
func (in *Interpreter) params(ctx context.Context, toks []Token) []Spec {
	var out []Spec

	for _, group := range splitComma(toks) {
		if len(group) == 0 || group[0].Kind != KindWord {
			continue
		}

		p := Spec{Name: group[0].Data, Flags: FlagParam}

		for j := 1; j < len(group); j++ {
			switch group[j].Kind {
			case KindDoubleTilde:
				p.Mut = Constant
			case KindColon:
				if j+1 < len(group) {
					p.Type = in.typeOf(ctx, group[j+1])
					j++
				}
			}
		}

		out = append(out, p)
	}

	return out
}

// typeOf returns the kind named by a type tag token.
func (in *Interpreter) typeOf(ctx context.Context, t Token) Kind {
	if t.Tag {
		return t.Kind
	}

	in.logger.DebugContext(ctx, "unknown type",
		slog.Any("error", ErrUnknownType.With(slog.String("token", t.String()))))

	return KindNone
}

// leave ends the scope a pending scope exit was aimed at.
func (in *Interpreter) leave() {
	if in.signal == signalExit {
		in.signal = signalNone
	}
}

// owner returns the structure whose result slot a return in scope h writes:
// the nearest enclosing structure that is not a conditional block.
func (in *Interpreter) owner(h Handle) Handle {
	for h.Valid() {
		f := in.tree.Flags(h)
		if f&FlagTransient == 0 || f&FlagCallable != 0 {
			return h
		}

		h = in.tree.Parent(h)
	}

	return in.ns
}

// ret evaluates toks and stores the value in the result slot of the owner
// of scope, converting it to the slot's declared type.
func (in *Interpreter) ret(ctx context.Context, scope Handle, toks []Token) {
	v := in.eval(ctx, scope, toks)
	h := in.owner(scope)

	if slot, ok := in.tree.Result(h); ok && slot.Tag {
		v = Coerce(v, slot.Kind)
	} else if ok {
		if typ := in.tree.Type(h); typ != KindNone {
			v = Coerce(v, typ)
		}
	}

	in.tree.SetResult(h, v)
}

// conditional runs the conditional group starting at body[cur] and returns
// the number of lines in the group.
func (in *Interpreter) conditional(
	ctx context.Context, scope Handle, body []*Line, cur int,
) int {
	end := cur + 1
	for end < len(body) && body[end].Head() == KindQuestion {
		end++
	}

	group := body[cur:end]

	for !in.stopped(ctx) {
		ran := false

		for _, l := range group {
			if len(l.Tokens) > 1 {
				cond := in.eval(ctx, scope, l.Tokens[1:])
				if !cond.Truth() {
					continue
				}
			}

			in.block(ctx, scope, l.Lines)

			ran = true

			break
		}

		if !ran || in.signal != signalLoop {
			break
		}

		in.signal = signalNone
	}

	if in.signal == signalLoop {
		in.signal = signalNone
	}

	return len(group)
}

// block runs lines in a disposable scope beneath scope.
func (in *Interpreter) block(ctx context.Context, scope Handle, lines []*Line) {
	h := in.tree.Create(scope, Spec{
		Name:  "?",
		Flags: FlagBlock | FlagTransient,
		Body:  lines,
	})

	in.exec(ctx, h)
	in.tree.Delete(h)
}

// statement executes an expression line: an assignment if it has the shape
// of one, otherwise an expression evaluated for its effects.
func (in *Interpreter) statement(ctx context.Context, scope Handle, toks []Token) {
	if rec, ok := parseRecord(toks); ok {
		in.assign(ctx, scope, rec)

		return
	}

	v := in.eval(ctx, scope, toks)

	in.logger.TraceContext(ctx, "statement",
		slog.String("scope", in.tree.Path(scope)),
		slog.String("value", v.String()))
}

// isExpression reports whether l is a statement whose value is discarded:
// not blank, not a block, not a return and not an assignment.
func isExpression(l *Line) bool {
	if len(l.Tokens) == 0 || len(l.Lines) > 0 {
		return false
	}

	switch l.Head() {
	case KindEquals, KindQuestion:
		return false
	}

	_, rec := parseRecord(l.Tokens)

	return !rec
}
