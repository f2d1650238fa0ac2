package lang

import (
	"math/big"
	"strings"
)

// Token is one lexical unit.
//
// Literal tokens carry their value in Data. Bracket-open tokens carry the
// tokens between the bracket and its match in Tokens, and a List literal
// carries its elements there. A Tag token is a bare type name such as Int;
// its Kind is the named type and its Data is empty.
type Token struct {
	Kind   Kind    `json:"kind"             yaml:"kind"`
	Data   string  `json:"data,omitempty"   yaml:"data,omitempty"`
	Tokens []Token `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	Tag    bool    `json:"tag,omitempty"    yaml:"tag,omitempty"`
}

// Bool payloads.
const (
	dataTrue  = "1"
	dataFalse = "0"
)

// None returns the empty value.
func None() Token { return Token{} }

// Bool returns a Bool literal.
func Bool(b bool) Token {
	if b {
		return Token{Kind: KindBool, Data: dataTrue}
	}

	return Token{Kind: KindBool, Data: dataFalse}
}

// String returns a String literal.
func String(s string) Token { return Token{Kind: KindString, Data: s} }

// Int returns an integer literal: UInt when i is non-negative, Int
// otherwise.
func Int(i int64) Token { return intToken(big.NewInt(i)) }

// UInt returns a UInt literal.
func UInt(u uint64) Token { return intToken(new(big.Int).SetUint64(u)) }

// Float returns a float literal: UFloat when f is non-negative, Float
// otherwise. NaN and infinities yield None.
func Float(f float64) Token { return floatToken(f) }

// List returns a List literal holding elems.
func List(elems ...Token) Token {
	return Token{Kind: KindList, Tokens: elems}
}

// Type returns the tag token for type k.
func Type(k Kind) Token { return Token{Kind: k, Tag: true} }

// IsNone reports whether t is the empty value.
func (t Token) IsNone() bool { return t.Kind == KindNone }

// IsValue reports whether t is a literal value rather than an operator,
// name, bracket or type tag.
func (t Token) IsValue() bool { return t.Kind.IsLiteral() && !t.Tag }

// Truth reports whether t is the Bool value true.
func (t Token) Truth() bool { return t.Kind == KindBool && t.Data == dataTrue }

// Clone returns a deep copy of t.
func (t Token) Clone() Token {
	if t.Tokens != nil {
		elems := make([]Token, len(t.Tokens))
		for i, e := range t.Tokens {
			elems[i] = e.Clone()
		}

		t.Tokens = elems
	}

	return t
}

// String returns a compact debugging form of t, such as Word(f) or
// CircleBegin[UInt(1) Comma UInt(2)].
func (t Token) String() string {
	var sb strings.Builder

	t.write(&sb)

	return sb.String()
}

func (t Token) write(sb *strings.Builder) {
	if t.Tag {
		sb.WriteString("Type(")
		sb.WriteString(t.Kind.String())
		sb.WriteByte(')')

		return
	}

	sb.WriteString(t.Kind.String())

	if t.Data != "" {
		sb.WriteByte('(')
		sb.WriteString(t.Data)
		sb.WriteByte(')')
	}

	if len(t.Tokens) > 0 || t.Kind == KindCircleBegin ||
		t.Kind == KindSquareBegin || t.Kind == KindList {
		sb.WriteByte('[')

		for i, c := range t.Tokens {
			if i > 0 {
				sb.WriteByte(' ')
			}

			c.write(sb)
		}

		sb.WriteByte(']')
	}
}
