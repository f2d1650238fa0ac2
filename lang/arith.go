package lang

import (
	"cmp"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Numeric classes in promotion order.
const (
	classInteger = iota
	classFloat
	classRational
)

// maxExponent bounds integer powers computed exactly.
const maxExponent = 1 << 12

// maxExactBits bounds the size of products and powers computed exactly.
// Larger integer results are computed in floating point instead, and
// larger rational results yield None.
const maxExactBits = 1 << 18

// productBits bounds the bit length of x*y.
func productBits(x, y *big.Int) int64 {
	return int64(x.BitLen()) + int64(y.BitLen())
}

// powerBits bounds the bit length of x to the power n.
func powerBits(x *big.Int, n int64) int64 {
	return int64(x.BitLen()) * n
}

func numClass(k Kind) int {
	switch k {
	case KindUFloat, KindFloat:
		return classFloat
	case KindRational:
		return classRational
	}

	return classInteger
}

// Integer results are UInt when non-negative and Int otherwise.
func intToken(i *big.Int) Token {
	if i.Sign() < 0 {
		return Token{Kind: KindInt, Data: i.String()}
	}

	return Token{Kind: KindUInt, Data: i.String()}
}

// Float results always carry a dot so that the payload lexes back to a
// float. NaN and infinities have no literal form and yield None.
func floatToken(f float64) Token {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return None()
	}

	if f == 0 {
		f = 0 // drop the sign of negative zero
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}

	if f < 0 {
		return Token{Kind: KindFloat, Data: s}
	}

	return Token{Kind: KindUFloat, Data: s}
}

func ratToken(r *big.Rat) Token {
	return Token{
		Kind: KindRational,
		Data: r.Num().String() + "//" + r.Denom().String(),
	}
}

func parseInt(s string) (*big.Int, bool) {
	return new(big.Int).SetString(s, 10)
}

func parseRat(s string) (*big.Rat, bool) {
	r, ok := new(big.Rat).SetString(strings.Replace(s, "//", "/", 1))
	if !ok {
		return nil, false
	}

	return r, true
}

// intOf converts a value to an integer, truncating toward zero.
func intOf(t Token) (*big.Int, bool) {
	switch {
	case t.Kind == KindUInt || t.Kind == KindInt:
		return parseInt(t.Data)

	case t.Kind.IsNumeric():
		r, ok := ratOf(t)
		if !ok {
			return nil, false
		}

		return new(big.Int).Quo(r.Num(), r.Denom()), true

	case t.Kind == KindBool:
		if t.Truth() {
			return big.NewInt(1), true
		}

		return big.NewInt(0), true

	case t.Kind == KindChar:
		r, _ := utf8.DecodeRuneInString(t.Data)

		return big.NewInt(int64(r)), true

	case t.Kind.IsText():
		s := strings.TrimSpace(t.Data)
		if i, ok := parseInt(s); ok {
			return i, true
		}

		if r, ok := parseRat(s); ok {
			return new(big.Int).Quo(r.Num(), r.Denom()), true
		}
	}

	return nil, false
}

func floatOf(t Token) (float64, bool) {
	switch {
	case t.Kind == KindRational:
		r, ok := parseRat(t.Data)
		if !ok {
			return 0, false
		}

		f, _ := r.Float64()

		return f, true

	case t.Kind.IsNumeric():
		f, err := strconv.ParseFloat(t.Data, 64)

		return f, err == nil

	case t.Kind == KindBool:
		if t.Truth() {
			return 1, true
		}

		return 0, true

	case t.Kind == KindChar:
		r, _ := utf8.DecodeRuneInString(t.Data)

		return float64(r), true

	case t.Kind.IsText():
		f, err := strconv.ParseFloat(strings.TrimSpace(t.Data), 64)

		return f, err == nil
	}

	return 0, false
}

func ratOf(t Token) (*big.Rat, bool) {
	switch {
	case t.Kind.IsNumeric():
		return parseRat(t.Data)
	case t.Kind == KindString || t.Kind == KindRawString:
		return parseRat(strings.TrimSpace(t.Data))
	}

	i, ok := intOf(t)
	if !ok {
		return nil, false
	}

	return new(big.Rat).SetInt(i), true
}

// binary applies the binary operator op. Operations undefined for the
// operand kinds yield None.
func binary(op Kind, a, b Token) Token {
	if !a.IsValue() || !b.IsValue() {
		return None()
	}

	switch op {
	case KindEquals:
		return Bool(equal(a, b))

	case KindNotEquals:
		return Bool(!equal(a, b))

	case KindGreaterThan, KindGreaterThanOrEquals,
		KindLessThan, KindLessThanOrEquals:
		c, ok := compare(a, b)
		if !ok {
			return None()
		}

		switch op {
		case KindGreaterThan:
			return Bool(c > 0)
		case KindGreaterThanOrEquals:
			return Bool(c >= 0)
		case KindLessThan:
			return Bool(c < 0)
		default:
			return Bool(c <= 0)
		}

	case KindJoint, KindInclusion, KindDisjoint:
		if a.Kind != KindBool || b.Kind != KindBool {
			return None()
		}

		switch op {
		case KindJoint:
			return Bool(a.Truth() && b.Truth())
		case KindInclusion:
			return Bool(a.Truth() || b.Truth())
		default:
			return Bool(a.Truth() != b.Truth())
		}

	case KindPlus:
		switch {
		case a.Kind == KindList && b.Kind == KindList:
			return List(append(a.Clone().Tokens, b.Clone().Tokens...)...)
		case a.Kind.IsText() || b.Kind.IsText():
			return String(Display(a) + Display(b))
		}
	}

	if !a.Kind.IsNumeric() || !b.Kind.IsNumeric() {
		return None()
	}

	switch max(numClass(a.Kind), numClass(b.Kind)) {
	case classInteger:
		return intArith(op, a, b)
	case classFloat:
		return floatArith(op, a, b)
	default:
		return ratArith(op, a, b)
	}
}

func intArith(op Kind, a, b Token) Token {
	x, okx := parseInt(a.Data)
	y, oky := parseInt(b.Data)

	if !okx || !oky {
		return None()
	}

	z := new(big.Int)

	switch op {
	case KindPlus:
		z.Add(x, y)
	case KindMinus:
		z.Sub(x, y)
	case KindMultiply:
		if productBits(x, y) > maxExactBits {
			return floatArith(op, a, b)
		}

		z.Mul(x, y)
	case KindDivide:
		if y.Sign() == 0 {
			return None()
		}

		z.Quo(x, y)
	case KindModulo:
		if y.Sign() == 0 {
			return None()
		}

		z.Rem(x, y)
	case KindUnaryExponent:
		if y.Sign() < 0 || y.Cmp(big.NewInt(maxExponent)) > 0 ||
			powerBits(x, y.Int64()) > maxExactBits {
			return floatArith(op, a, b)
		}

		z.Exp(x, y, nil)
	default:
		return None()
	}

	return intToken(z)
}

func floatArith(op Kind, a, b Token) Token {
	x, okx := floatOf(a)
	y, oky := floatOf(b)

	if !okx || !oky {
		return None()
	}

	switch op {
	case KindPlus:
		return floatToken(x + y)
	case KindMinus:
		return floatToken(x - y)
	case KindMultiply:
		return floatToken(x * y)
	case KindDivide:
		if y == 0 {
			return None()
		}

		return floatToken(x / y)
	case KindModulo:
		if y == 0 {
			return None()
		}

		return floatToken(math.Mod(x, y))
	case KindUnaryExponent:
		return floatToken(math.Pow(x, y))
	}

	return None()
}

func ratArith(op Kind, a, b Token) Token {
	x, okx := ratOf(a)
	y, oky := ratOf(b)

	if !okx || !oky {
		return None()
	}

	if op != KindUnaryExponent &&
		productBits(x.Num(), x.Denom())+productBits(y.Num(), y.Denom()) > maxExactBits {
		return None()
	}

	z := new(big.Rat)

	switch op {
	case KindPlus:
		z.Add(x, y)
	case KindMinus:
		z.Sub(x, y)
	case KindMultiply:
		z.Mul(x, y)
	case KindDivide:
		if y.Sign() == 0 {
			return None()
		}

		z.Quo(x, y)
	case KindUnaryExponent:
		if !y.IsInt() || y.Num().CmpAbs(big.NewInt(maxExponent)) > 0 {
			return None()
		}

		n := y.Num()
		e := new(big.Int).Abs(n).Int64()
		if powerBits(x.Num(), e) > maxExactBits || powerBits(x.Denom(), e) > maxExactBits {
			return None()
		}

		num := new(big.Int).Exp(x.Num(), new(big.Int).Abs(n), nil)
		den := new(big.Int).Exp(x.Denom(), new(big.Int).Abs(n), nil)

		if n.Sign() < 0 {
			num, den = den, num
		}

		if den.Sign() == 0 {
			return None()
		}

		z.SetFrac(num, den)
	default:
		return None()
	}

	return ratToken(z)
}

// negate returns the arithmetic negation of a numeric value.
func negate(t Token) Token {
	switch numClass(t.Kind) {
	case classInteger:
		if i, ok := parseInt(t.Data); ok && t.Kind.IsNumeric() {
			return intToken(i.Neg(i))
		}
	case classFloat:
		if f, ok := floatOf(t); ok {
			return floatToken(-f)
		}
	default:
		if r, ok := parseRat(t.Data); ok {
			return ratToken(r.Neg(r))
		}
	}

	return None()
}

// equal compares numbers by value, text by content, lists element-wise and
// everything else by kind and payload.
func equal(a, b Token) bool {
	switch {
	case a.Kind.IsNumeric() && b.Kind.IsNumeric():
		c, ok := compare(a, b)

		return ok && c == 0

	case a.Kind.IsText() && b.Kind.IsText():
		return a.Data == b.Data

	case a.Kind == KindList && b.Kind == KindList:
		if len(a.Tokens) != len(b.Tokens) {
			return false
		}

		for i := range a.Tokens {
			if !equal(a.Tokens[i], b.Tokens[i]) {
				return false
			}
		}

		return true
	}

	return a.Kind == b.Kind && a.Data == b.Data
}

// compare orders numbers numerically and text lexicographically.
func compare(a, b Token) (int, bool) {
	switch {
	case a.Kind.IsText() && b.Kind.IsText():
		return strings.Compare(a.Data, b.Data), true

	case !a.Kind.IsNumeric() || !b.Kind.IsNumeric():
		return 0, false
	}

	switch max(numClass(a.Kind), numClass(b.Kind)) {
	case classInteger:
		x, okx := parseInt(a.Data)
		y, oky := parseInt(b.Data)

		if !okx || !oky {
			return 0, false
		}

		return x.Cmp(y), true

	case classFloat:
		x, okx := floatOf(a)
		y, oky := floatOf(b)

		return cmp.Compare(x, y), okx && oky
	}

	x, okx := ratOf(a)
	y, oky := ratOf(b)

	if !okx || !oky {
		return 0, false
	}

	return x.Cmp(y), true
}

// Coerce converts t to kind k. Conversions that cannot represent the value
// yield None; k of KindNone returns t unchanged.
func Coerce(t Token, k Kind) Token {
	if k == KindNone || t.Tag || t.IsNone() || t.Kind == k {
		return t
	}

	switch k {
	case KindUInt, KindInt:
		i, ok := intOf(t)
		if !ok || (k == KindUInt && i.Sign() < 0) {
			return None()
		}

		return Token{Kind: k, Data: i.String()}

	case KindUFloat, KindFloat:
		f, ok := floatOf(t)
		if !ok || (k == KindUFloat && f < 0) {
			return None()
		}

		v := floatToken(f)
		v.Kind = k

		return v

	case KindRational:
		r, ok := ratOf(t)
		if !ok {
			return None()
		}

		return ratToken(r)

	case KindBool:
		switch {
		case t.Kind.IsNumeric():
			c, ok := compare(t, Token{Kind: KindUInt, Data: "0"})

			return Bool(ok && c != 0)
		case t.Kind.IsText():
			switch strings.TrimSpace(t.Data) {
			case "true", dataTrue:
				return Bool(true)
			case "false", dataFalse:
				return Bool(false)
			}
		}

	case KindChar:
		switch {
		case t.Kind.IsNumeric():
			i, ok := intOf(t)
			if !ok || !i.IsInt64() || i.Int64() > utf8.MaxRune ||
				!utf8.ValidRune(rune(i.Int64())) {
				return None()
			}

			return Token{Kind: KindChar, Data: string(rune(i.Int64()))}
		case t.Kind.IsText() && utf8.RuneCountInString(t.Data) == 1:
			return Token{Kind: KindChar, Data: t.Data}
		}

	case KindString, KindRawString:
		return Token{Kind: k, Data: Display(t)}

	case KindList:
		return List(t.Clone())
	}

	return None()
}
