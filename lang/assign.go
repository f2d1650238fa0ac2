package lang

import (
	"context"
	"log/slog"
)

// record is an assignment statement: a target, optional declaration parts,
// an assignment operator and the expression after it.
type record struct {
	target   Token
	index    []Token
	indexed  bool
	declared bool
	mut      Mutability
	typ      Kind
	op       Kind
	rhs      []Token
}

// parseRecord recognizes name [index] [~|~~] [: Type] op rhs.
func parseRecord(toks []Token) (record, bool) {
	if len(toks) < 2 || !toks[0].Kind.IsName() {
		return record{}, false
	}

	op := -1

	for i := 1; i < len(toks); i++ {
		if toks[i].Kind.IsAssignment() {
			op = i

			break
		}
	}

	if op < 0 {
		return record{}, false
	}

	rec := record{target: toks[0], op: toks[op].Kind, rhs: toks[op+1:]}

	for i := 1; i < op; i++ {
		t := toks[i]

		switch {
		case t.Kind == KindSquareBegin && i == 1:
			rec.index, rec.indexed = t.Tokens, true

		case t.Kind == KindTilde:
			rec.declared, rec.mut = true, Variable

		case t.Kind == KindDoubleTilde:
			rec.declared, rec.mut = true, Constant

		case t.Kind == KindColon && i+1 < op && toks[i+1].Tag:
			rec.declared, rec.typ = true, toks[i+1].Kind
			i++

		default:
			return record{}, false
		}
	}

	return rec, true
}

// assign executes an assignment statement in scope h.
func (in *Interpreter) assign(ctx context.Context, h Handle, rec record) {
	rhs := in.eval(ctx, h, rec.rhs)
	name := rec.target.Data

	var s Handle

	switch {
	case rec.declared && rec.target.Kind == KindWord && !rec.indexed:
		s = in.tree.Child(h, name)
		if !s.Valid() {
			s = in.tree.Create(h, Spec{Name: name, Mut: rec.mut, Type: rec.typ})
			in.tree.SetValue(s, Coerce(rhs, rec.typ))

			return
		}

		if in.constant(ctx, h, s) {
			return
		}

		in.tree.Declare(s, rec.mut, rec.typ)
		in.tree.SetValue(s, Coerce(
			compound(rec.op, in.tree.Value(s), rhs, len(rec.rhs) == 0), rec.typ))

		return

	case rec.target.Kind == KindWord:
		s = in.tree.Lookup(h, name)

	default:
		p, rest := in.path(h, name)
		if len(rest) == 0 {
			s = p
		}
	}

	if !s.Valid() {
		if rec.target.Kind == KindLink || rec.indexed {
			in.degrade(ctx, h, "unresolved assignment target", slog.String("name", name))

			return
		}

		s = in.tree.Create(h, Spec{Name: name})
		in.tree.SetValue(s, rhs)

		return
	}

	if in.constant(ctx, h, s) {
		return
	}

	if rec.indexed {
		in.assignElement(ctx, h, s, rec, rhs)

		return
	}

	v := compound(rec.op, in.tree.Value(s), rhs, len(rec.rhs) == 0)
	if typ := in.tree.Type(s); typ != KindNone {
		v = Coerce(v, typ)
	}

	in.tree.SetValue(s, v)
}

// constant reports, with a diagnostic, whether s is a Constant.
func (in *Interpreter) constant(ctx context.Context, h, s Handle) bool {
	if in.tree.Mutability(s) != Constant {
		return false
	}

	in.logger.DebugContext(ctx, "assignment ignored",
		slog.String("scope", in.tree.Path(h)),
		slog.Any("error", ErrConstantBinding.With(
			slog.String("name", in.tree.Path(s)))))

	return true
}

// assignElement applies an assignment to one element of the list bound to
// s. Assigning one past the last element appends.
func (in *Interpreter) assignElement(
	ctx context.Context, h, s Handle, rec record, rhs Token,
) {
	v := in.tree.Value(s)
	if v.Kind != KindList {
		in.degrade(ctx, h, "element assignment to non-list",
			slog.String("name", rec.target.Data))

		return
	}

	idx := in.eval(ctx, h, rec.index)

	i, ok := position(idx, len(v.Tokens))
	if !ok {
		in.degrade(ctx, h, "index out of range",
			slog.String("index", idx.String()), slog.Int("len", len(v.Tokens)))

		return
	}

	if i == len(v.Tokens) {
		v.Tokens = append(v.Tokens, compound(rec.op, None(), rhs, len(rec.rhs) == 0))
	} else {
		v.Tokens[i] = compound(rec.op, v.Tokens[i], rhs, len(rec.rhs) == 0)
	}

	in.tree.SetValue(s, v)
}

// compound computes the new value of a binding holding old when op is
// applied with the value rhs. empty reports whether the statement had no
// right-hand side.
func compound(op Kind, old, rhs Token, empty bool) Token {
	one := Token{Kind: KindUInt, Data: "1"}

	operand := rhs
	if empty {
		operand = old
	}

	switch op {
	case KindEquals:
		return rhs
	case KindPlusEquals:
		return binary(KindPlus, old, rhs)
	case KindMinusEquals:
		return binary(KindMinus, old, rhs)
	case KindMultiplyEquals:
		return binary(KindMultiply, old, rhs)
	case KindDivideEquals:
		return binary(KindDivide, old, rhs)
	case KindModuloEquals:
		return binary(KindModulo, old, rhs)
	case KindExponentEquals:
		return binary(KindUnaryExponent, old, rhs)
	case KindUnaryPlus:
		if empty {
			return binary(KindPlus, old, one)
		}

		return binary(KindPlus, old, rhs)
	case KindUnaryMinus:
		if empty {
			return binary(KindMinus, old, one)
		}

		return binary(KindMinus, old, rhs)
	case KindUnaryMultiply:
		return binary(KindMultiply, old, operand)
	case KindUnaryDivide:
		return binary(KindDivide, old, operand)
	case KindUnaryModulo:
		return binary(KindModulo, old, operand)
	case KindUnaryExponent:
		return binary(KindUnaryExponent, old, operand)
	}

	return None()
}
