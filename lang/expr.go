package lang

import (
	"context"
	"log/slog"
	"slices"
	"strings"
)

// Operator tiers, reduced in this order after names, calls and groups.
var (
	comparisonTier = []Kind{
		KindInclusion, KindJoint, KindDisjoint,
		KindEquals, KindNotEquals,
		KindGreaterThan, KindLessThan,
		KindGreaterThanOrEquals, KindLessThanOrEquals,
	}
	multiplicativeTier = []Kind{
		KindMultiply, KindDivide, KindModulo, KindUnaryExponent,
	}
)

// eval reduces toks to a single value in scope h.
func (in *Interpreter) eval(ctx context.Context, h Handle, toks []Token) Token {
	switch len(toks) {
	case 0:
		return None()
	case 1:
		return in.single(ctx, h, toks[0])
	}

	seq := in.resolve(ctx, h, toks)
	in.group(ctx, h, seq)
	seq = unary(seq)
	seq = reduce(seq, comparisonTier)
	seq = reduce(seq, multiplicativeTier)
	seq = additive(seq)

	if len(seq) == 1 && (seq[0].Kind.IsLiteral() || seq[0].IsNone()) {
		return seq[0]
	}

	return in.degrade(ctx, h, "expression did not reduce",
		slog.String("tokens", List(seq...).String()))
}

// single resolves one token to a value.
func (in *Interpreter) single(ctx context.Context, h Handle, t Token) Token {
	switch {
	case t.Kind.IsName():
		return in.ref(ctx, h, t)
	case t.Kind.IsFormatted():
		return in.interpolate(ctx, h, t)
	case t.Kind == KindCircleBegin:
		return in.eval(ctx, h, t.Tokens)
	case t.Kind == KindSquareBegin:
		return in.list(ctx, h, t.Tokens)
	case t.Kind.IsLiteral():
		return t
	}

	return None()
}

// resolve replaces names with their values, calls with their results and
// applies any index selectors that follow them.
func (in *Interpreter) resolve(ctx context.Context, h Handle, toks []Token) []Token {
	out := make([]Token, 0, len(toks))

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		call := i+1 < len(toks) && toks[i+1].Kind == KindCircleBegin

		var v Token

		switch {
		case t.Kind.IsName() && call:
			v = in.call(ctx, h, t, toks[i+1].Tokens)
			i++

		case t.Tag && call:
			v = Coerce(in.eval(ctx, h, toks[i+1].Tokens), t.Kind)
			i++

		case t.Kind.IsName():
			v = in.ref(ctx, h, t)

		case t.Kind.IsFormatted():
			v = in.interpolate(ctx, h, t)

		default:
			out = append(out, t)

			continue
		}

		for i+1 < len(toks) && toks[i+1].Kind == KindSquareBegin {
			v = in.index(ctx, h, v, in.eval(ctx, h, toks[i+1].Tokens))
			i++
		}

		out = append(out, v)
	}

	return out
}

// group replaces bracket groups in seq with their values.
func (in *Interpreter) group(ctx context.Context, h Handle, seq []Token) {
	for i, t := range seq {
		switch t.Kind {
		case KindCircleBegin:
			seq[i] = in.eval(ctx, h, t.Tokens)
		case KindSquareBegin:
			seq[i] = in.list(ctx, h, t.Tokens)
		}
	}
}

// list evaluates the comma-separated elements of a list literal.
func (in *Interpreter) list(ctx context.Context, h Handle, toks []Token) Token {
	var elems []Token

	for _, e := range splitComma(toks) {
		if len(e) > 0 {
			elems = append(elems, in.eval(ctx, h, e))
		}
	}

	return List(elems...)
}

// unary applies prefix ! and - to the value that follows them.
func unary(seq []Token) []Token {
	out := make([]Token, 0, len(seq))

	for i := 0; i < len(seq); i++ {
		t := seq[i]
		prefix := len(out) == 0 || !out[len(out)-1].IsValue()

		if prefix && i+1 < len(seq) && seq[i+1].IsValue() {
			switch t.Kind {
			case KindExclusion:
				out = append(out, not(seq[i+1]))
				i++

				continue

			case KindMinus:
				out = append(out, negate(seq[i+1]))
				i++

				continue
			}
		}

		out = append(out, t)
	}

	return out
}

func not(t Token) Token {
	if t.Kind != KindBool {
		return None()
	}

	return Bool(!t.Truth())
}

// reduce combines, left to right, each operator of tier with its operands.
func reduce(seq []Token, tier []Kind) []Token {
	for i := 1; i < len(seq)-1; {
		if op := seq[i].Kind; slices.Contains(tier, op) {
			seq = slices.Replace(seq, i-1, i+2, binary(op, seq[i-1], seq[i+1]))

			continue
		}

		i++
	}

	return seq
}

// additive reduces + and -. A negative number that directly follows a value
// is added to it, so a-1 means a + -1.
func additive(seq []Token) []Token {
	for i := 1; i < len(seq); {
		t := seq[i]

		switch {
		case (t.Kind == KindPlus || t.Kind == KindMinus) && i+1 < len(seq):
			seq = slices.Replace(seq, i-1, i+2, binary(t.Kind, seq[i-1], seq[i+1]))

		case t.IsValue() && t.Kind.IsNumeric() &&
			strings.HasPrefix(t.Data, "-") && seq[i-1].IsValue():
			seq = slices.Replace(seq, i-1, i+1, binary(KindPlus, seq[i-1], t))

		default:
			i++
		}
	}

	return seq
}

// splitComma splits toks at top-level commas.
func splitComma(toks []Token) [][]Token {
	if len(toks) == 0 {
		return nil
	}

	var (
		out   [][]Token
		start int
	)

	for i, t := range toks {
		if t.Kind == KindComma {
			out = append(out, toks[start:i])
			start = i + 1
		}
	}

	return append(out, toks[start:])
}

// ref returns the value bound to a Word or Link.
func (in *Interpreter) ref(ctx context.Context, h Handle, t Token) Token {
	if t.Kind == KindWord {
		s := in.tree.Lookup(h, t.Data)
		if !s.Valid() {
			return in.degrade(ctx, h, "unresolved name", slog.String("name", t.Data))
		}

		return in.tree.Value(s)
	}

	s, rest := in.path(h, t.Data)
	if !s.Valid() {
		return in.degrade(ctx, h, "unresolved path", slog.String("path", t.Data))
	}

	v := in.tree.Value(s)

	for _, p := range rest {
		var idx Token

		if isDigits(p.name) {
			idx = Token{Kind: KindUInt, Data: p.name}
		} else {
			idx = in.ref(ctx, h, Token{Kind: KindWord, Data: p.name})
		}

		v = in.index(ctx, h, v, idx)
	}

	return v
}

type pathPart struct {
	name  string
	index bool
}

// splitPath splits a Link such as a.b[0].1 into its members and indices.
func splitPath(data string) []pathPart {
	var parts []pathPart

	for _, seg := range strings.Split(data, ".") {
		name, rest, _ := strings.Cut(seg, "[")
		if name != "" {
			parts = append(parts, pathPart{
				name:  name,
				index: len(parts) > 0 && isDigits(name),
			})
		}

		for rest != "" {
			idx, after, _ := strings.Cut(rest, "]")
			parts = append(parts, pathPart{name: idx, index: true})
			rest = strings.TrimPrefix(after, "[")
		}
	}

	return parts
}

// path resolves the members of a Link from scope h. It returns the deepest
// structure reached and the index selectors that remain to be applied to
// its value.
func (in *Interpreter) path(h Handle, data string) (Handle, []pathPart) {
	parts := splitPath(data)
	if len(parts) == 0 {
		return Handle{}, nil
	}

	s := in.tree.Lookup(h, parts[0].name)

	i := 1
	for ; i < len(parts) && !parts[i].index && s.Valid(); i++ {
		s = in.tree.Child(s, parts[i].name)
	}

	return s, parts[i:]
}

// index selects element idx of a list, or character idx of a string.
// Negative indices count from the end.
func (in *Interpreter) index(ctx context.Context, h Handle, v, idx Token) Token {
	var elems []Token

	switch {
	case v.Kind == KindList:
		elems = v.Tokens
	case v.Kind == KindString || v.Kind == KindRawString:
		for _, r := range v.Data {
			elems = append(elems, Token{Kind: KindChar, Data: string(r)})
		}
	default:
		return in.degrade(ctx, h, "value is not indexable",
			slog.String("kind", v.Kind.String()))
	}

	i, ok := position(idx, len(elems))
	if !ok || i >= len(elems) {
		return in.degrade(ctx, h, "index out of range",
			slog.String("index", idx.String()), slog.Int("len", len(elems)))
	}

	return elems[i]
}

// position converts an integer index to an offset in a sequence of n
// elements. Offsets up to and including n are accepted.
func position(idx Token, n int) (int, bool) {
	if idx.Kind != KindUInt && idx.Kind != KindInt {
		return 0, false
	}

	i, ok := parseInt(idx.Data)
	if !ok || !i.IsInt64() {
		return 0, false
	}

	p := i.Int64()
	if p < 0 {
		p += int64(n)
	}

	if p < 0 || p > int64(n) {
		return 0, false
	}

	return int(p), true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for i := range len(s) {
		if !isDigit(s[i]) {
			return false
		}
	}

	return true
}

// call invokes a builtin or a user callable with the comma-separated
// arguments in args.
func (in *Interpreter) call(
	ctx context.Context, h Handle, name Token, args []Token,
) Token {
	vals := make([]Token, 0, len(args))
	for _, a := range splitComma(args) {
		if len(a) > 0 {
			vals = append(vals, in.eval(ctx, h, a))
		}
	}

	if name.Kind == KindWord {
		if b, ok := builtins[name.Data]; ok {
			in.logger.TraceContext(ctx, "builtin",
				slog.String("name", name.Data), slog.Int("args", len(vals)))

			return b.call(ctx, in, h, vals)
		}
	}

	var s Handle

	if name.Kind == KindWord {
		s = in.tree.Lookup(h, name.Data)
	} else if p, rest := in.path(h, name.Data); len(rest) == 0 {
		s = p
	}

	if !s.Valid() {
		return in.degrade(ctx, h, "unresolved callable", slog.String("name", name.Data))
	}

	return in.invoke(ctx, s, vals)
}

// invoke runs the callable at s in a new frame with args bound to its
// parameters and returns the frame's result. Structures that are not
// callable yield their value.
func (in *Interpreter) invoke(ctx context.Context, s Handle, args []Token) Token {
	if in.tree.Flags(s)&FlagCallable == 0 {
		return in.tree.Value(s)
	}

	frame := in.tree.Create(s, Spec{
		Name:  in.tree.Name(s),
		Flags: FlagBlock | FlagCallable | FlagTransient,
		Body:  in.tree.Body(s),
	})
	defer in.tree.Delete(frame)

	if slot, ok := in.tree.Result(s); ok {
		in.tree.SetResult(frame, slot)
	}

	for i, p := range in.tree.Params(s) {
		v := None()
		if i < len(args) {
			v = args[i]
		}

		typ := in.tree.Type(p)
		c := in.tree.Create(frame, Spec{
			Name: in.tree.Name(p),
			Mut:  in.tree.Mutability(p),
			Type: typ,
		})
		in.tree.SetValue(c, Coerce(v, typ))
	}

	in.exec(ctx, frame)
	in.leave()

	if in.signal == signalLoop {
		in.signal = signalNone
	}

	res, ok := in.tree.Result(frame)
	if !ok || res.Tag {
		return None()
	}

	return res
}
