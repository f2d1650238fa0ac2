package lang

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

// FuzzLex tests the lexer with random inputs to find edge cases.
func FuzzLex(f *testing.F) {
	f.Add("x = 1")
	f.Add("x = 1; y = 2\n  z")
	f.Add(`s = "escaped\"quote"`)
	f.Add("c = 'a'")
	f.Add("r = `raw`")
	f.Add(`f"{x + 1}"`)
	f.Add("1//3 + 2.5e-3")
	f.Add("a.b[0] += [1, (2, 3)]")
	f.Add("? x > 1 # comment")
	f.Add("f(a: Int, ~b) -> UInt")
	f.Add("((]])[")
	f.Add("\t  \n\n    ;;")

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		for i, l := range Lex([]byte(input)) {
			if l == nil {
				t.Fatalf("line %d is nil", i)
			}

			if len(l.Tokens) == 0 && l.Indent != 0 {
				t.Errorf("blank line %d has indent %d", i, l.Indent)
			}

			for _, tok := range l.Tokens {
				if tok.Kind >= kindCount {
					t.Errorf("line %d has invalid kind %d", i, tok.Kind)
				}
			}
		}
	})
}

// FuzzParse tests the whole front end: lexing, nesting and comment
// stripping.
func FuzzParse(f *testing.F) {
	f.Add("cfg\n  w = 2\n  h = w * 3\n")
	f.Add("# header\nx\n  # only a comment\n")
	f.Add("f(x)\n  ? x > 0\n    = x\n  ?\n    = 0\n\nprintln(f(1))")
	f.Add("a\n    b\n  c\nd")
	f.Add("[\n  1\n  2\n]")

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		lines := Parse([]byte(input))

		var sb strings.Builder
		if err := Dump(&sb, lines); err != nil {
			t.Fatalf("Dump: %v", err)
		}

		if n := CountLines(lines); n > 0 && sb.Len() == 0 {
			t.Errorf("%d lines dumped as nothing", n)
		}
	})
}

// FuzzRun runs random scripts with a deadline and a small depth limit.
// Malformed scripts must degrade rather than panic.
func FuzzRun(f *testing.F) {
	f.Add("x = 1\nprintln(x + 1)")
	f.Add("f(n)\n  = f(n)\nf(1)")
	f.Add("i = 0\n?\n  i += 1\n  ? i < 10\n    go()")
	f.Add("l = [1, 2]\nl[2] = 3\nprintln(l[-1], len(l))")
	f.Add(`s = "abc"` + "\nprintln(s[1], str(s, 1//2), int(\"7\"))")
	f.Add("x = 99 ^^ 4096 ^^ 4096")
	f.Add("ns\n  a = 1\n  b(x) -> Int\n    = x + a\nprintln(ns.b(2))")
	f.Add("y = randUInt(1, 6)\nexit(y)")
	f.Add(`println(f"{1 + }")`)

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		// Scripts must not start commands on the host.
		if strings.Contains(input, "exec") {
			t.Skip("exec")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		in := New("main",
			WithOutput(io.Discard),
			WithErrOutput(io.Discard),
			WithInput(strings.NewReader("")),
			WithInteractive(false),
			WithMaxDepth(32),
			WithSeed(1),
		)

		_ = in.Run(ctx, input)
	})
}

// FuzzInterpolate tests formatted literals with random spans.
func FuzzInterpolate(f *testing.F) {
	f.Add("x={x}")
	f.Add(`{"}"}`)
	f.Add(`\{x\}`)
	f.Add("{{x}}")
	f.Add("{")
	f.Add("}{")

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) || strings.Contains(input, "exec") {
			t.Skip("unsupported input")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		in := New("main", WithOutput(io.Discard), WithMaxDepth(32))
		in.Define("x", Variable, KindNone, UInt(1))

		_ = in.interpolate(ctx, in.ns, Token{Kind: KindFormattedString, Data: input})
	})
}
