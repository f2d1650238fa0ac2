package lang

import (
	"testing"
)

func lexLine(t *testing.T, src string) []Token {
	t.Helper()

	lines := Lex([]byte(src))
	if len(lines) == 0 {
		t.Fatalf("Lex(%q) returned no lines", src)
	}

	return lines[0].Tokens
}

func TestLex_Numbers(t *testing.T) {
	tests := []struct {
		src  string
		kind Kind
	}{
		{"42", KindUInt},
		{"-7", KindInt},
		{"3.25", KindUFloat},
		{"-12.5", KindFloat},
		{"1//3", KindRational},
		{"-1//3", KindRational},
		{"0", KindUInt},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			toks := lexLine(t, tt.src)
			if len(toks) != 1 {
				t.Fatalf("got %d tokens %v, want 1", len(toks), toks)
			}

			if toks[0].Kind != tt.kind {
				t.Errorf("kind = %v, want %v", toks[0].Kind, tt.kind)
			}

			if toks[0].Data != tt.src {
				t.Errorf("data = %q, want %q", toks[0].Data, tt.src)
			}
		})
	}
}

func TestLex_NumberStopsAtSecondDot(t *testing.T) {
	toks := lexLine(t, "1.2.3")

	if len(toks) != 3 {
		t.Fatalf("got %v, want UFloat Dot UInt", toks)
	}

	if toks[0].Kind != KindUFloat || toks[0].Data != "1.2" {
		t.Errorf("first token = %v, want UFloat(1.2)", toks[0])
	}

	if toks[1].Kind != KindDot {
		t.Errorf("second token = %v, want Dot", toks[1])
	}
}

func TestLex_Quotes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Token
	}{
		{"string", `"hello"`, Token{Kind: KindString, Data: "hello"}},
		{"escaped quote", `"a\"b"`, Token{Kind: KindString, Data: `a"b`}},
		{"escaped backslash", `"a\\"`, Token{Kind: KindString, Data: `a\\`}},
		{"kept escape", `"a\nb"`, Token{Kind: KindString, Data: `a\nb`}},
		{"raw", "`x y`", Token{Kind: KindRawString, Data: "x y"}},
		{"char", `'x'`, Token{Kind: KindChar, Data: "x"}},
		{"char escape", `'\n'`, Token{Kind: KindChar, Data: "\n"}},
		{"char unicode", `'é'`, Token{Kind: KindChar, Data: "é"}},
		{"char too long", `'ab'`, Token{}},
		{"unterminated", `"abc`, Token{}},
		{"formatted", `f"n={n}"`, Token{Kind: KindFormattedString, Data: "n={n}"}},
		{"formatted raw", "f`{n}`", Token{Kind: KindFormattedRawString, Data: "{n}"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := lexLine(t, tt.src)
			if len(toks) != 1 {
				t.Fatalf("got %d tokens %v, want 1", len(toks), toks)
			}

			if toks[0].Kind != tt.want.Kind || toks[0].Data != tt.want.Data {
				t.Errorf("got %v %q, want %v %q",
					toks[0].Kind, toks[0].Data, tt.want.Kind, tt.want.Data)
			}
		})
	}
}

func TestLex_UnterminatedQuoteKeepsNextLine(t *testing.T) {
	lines := Lex([]byte("x = \"abc\ny = 1\n"))

	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	if got := lines[1].String(); got != "Word(y) Equals UInt(1)" {
		t.Errorf("second line = %q", got)
	}
}

func TestLex_Words(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"name", "Word(name)"},
		{"snake_case1", "Word(snake_case1)"},
		{"true", "Bool(1)"},
		{"false", "Bool(0)"},
		{"Int", "Type(Int)"},
		{"String", "Type(String)"},
		{"a.b", "Link(a.b)"},
		{"a.b[0]", "Link(a.b[0])"},
		{"a.0", "Link(a.0)"},
		{"a[0]", "Word(a) SquareBegin[UInt(0)]"},
		{"a.b[i+1]", "Link(a.b) SquareBegin[Word(i) Plus UInt(1)]"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			l := Lex([]byte(tt.src))[0]
			if got := l.String(); got != tt.want {
				t.Errorf("Lex(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestLex_Operators(t *testing.T) {
	tests := []struct {
		src  string
		want []Kind
	}{
		{"+ ++ +=", []Kind{KindPlus, KindUnaryPlus, KindPlusEquals}},
		{"- -- -= ->", []Kind{KindMinus, KindUnaryMinus, KindMinusEquals, KindPointer}},
		{"* ** *=", []Kind{KindMultiply, KindUnaryMultiply, KindMultiplyEquals}},
		{"/ // /=", []Kind{KindDivide, KindUnaryDivide, KindDivideEquals}},
		{"% %% %=", []Kind{KindModulo, KindUnaryModulo, KindModuloEquals}},
		{"^ ^^ ^=", []Kind{KindDisjoint, KindUnaryExponent, KindExponentEquals}},
		{"> >= < <=", []Kind{
			KindGreaterThan, KindGreaterThanOrEquals, KindLessThan, KindLessThanOrEquals,
		}},
		{"= == != !", []Kind{KindEquals, KindEquals, KindNotEquals, KindExclusion}},
		{"~ ~~ & |", []Kind{KindTilde, KindDoubleTilde, KindJoint, KindInclusion}},
		{": , . ?", []Kind{KindColon, KindComma, KindDot, KindQuestion}},
		{"{ }", []Kind{KindFigureBegin, KindFigureEnd}},
		{"@ $ +", []Kind{KindPlus}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			toks := lexLine(t, tt.src)
			if len(toks) != len(tt.want) {
				t.Fatalf("got %v, want kinds %v", toks, tt.want)
			}

			for i, k := range tt.want {
				if toks[i].Kind != k {
					t.Errorf("token %d = %v, want %v", i, toks[i].Kind, k)
				}
			}
		})
	}
}

func TestLex_LinesAndIndentation(t *testing.T) {
	lines := Lex([]byte("a\n  b; c\n   \n    d # note"))

	want := []struct {
		text   string
		indent int
	}{
		{"Word(a)", 0},
		{"Word(b)", 2},
		{"Word(c)", 2},
		{"", 0},
		{"Word(d) Comment", 4},
	}

	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}

	for i, w := range want {
		if got := lines[i].String(); got != w.text {
			t.Errorf("line %d = %q, want %q", i, got, w.text)
		}

		if lines[i].Indent != w.indent {
			t.Errorf("line %d indent = %d, want %d", i, lines[i].Indent, w.indent)
		}
	}
}

func TestLex_TrailingSemicolon(t *testing.T) {
	lines := Lex([]byte("  a;\n"))

	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
}
