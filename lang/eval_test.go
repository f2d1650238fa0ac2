package lang

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/ardnew/rts/log"
)

func run(t *testing.T, script string, opts ...Option) (string, *Interpreter) {
	t.Helper()

	var out bytes.Buffer

	in := New("main", append([]Option{WithOutput(&out)}, opts...)...)
	if err := in.Run(t.Context(), script); err != nil {
		t.Fatalf("Run: %v", err)
	}

	return out.String(), in
}

func script(lines ...string) string { return strings.Join(lines, "\n") }

func TestRun_Scripts(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{
			name:   "hello",
			script: `println("hello")`,
			want:   "hello\n",
		},
		{
			name: "outer binding mutable from nested namespace",
			script: script(
				"x = 1",
				"ns",
				"  x = 2",
				"  println(x)",
				"println(x)",
			),
			want: "2\n2\n",
		},
		{
			name: "declaration shadows outer binding",
			script: script(
				"x = 1",
				"ns",
				"  x ~ = 5",
				"  println(x)",
				"println(x)",
			),
			want: "5\n1\n",
		},
		{
			name: "namespace members through links",
			script: script(
				"point",
				"  x = 1",
				"  y = 2",
				"println(point.x + point.y)",
			),
			want: "3\n",
		},
		{
			name: "namespace runs at declaration",
			script: script(
				`println("before")`,
				"ns",
				`  println("inside")`,
				`println("after")`,
			),
			want: "before\ninside\nafter\n",
		},
		{
			name: "namespace result",
			script: script(
				"cfg",
				"  = 42",
				"println(cfg)",
			),
			want: "42\n",
		},
		{
			name: "member callable",
			script: script(
				"math",
				"  sq(n) -> Int",
				"    = n * n",
				"println(math.sq(4))",
			),
			want: "16\n",
		},
		{
			name: "recursion",
			script: script(
				"fact(n : Int) -> Int",
				"  ? n <= 1",
				"    = 1",
				"  ?",
				"    = n * fact(n-1)",
				"println(fact(5))",
			),
			want: "120\n",
		},
		{
			name: "procedure without result",
			script: script(
				"greet(who)",
				`  println("hi ", who)`,
				`x = greet("bob")`,
				`println(type(x))`,
			),
			want: "hi bob\nNone\n",
		},
		{
			name: "loop with go",
			script: script(
				"i = 0",
				"? i < 3",
				"  println(i)",
				"  i++",
				"  go()",
				`println("end")`,
			),
			want: "0\n1\n2\nend\n",
		},
		{
			name: "scope exit from namespace",
			script: script(
				"ns",
				`  println("a")`,
				"  ex()",
				`  println("b")`,
				`println("c")`,
			),
			want: "a\nc\n",
		},
		{
			name: "scope exit from conditional inside call",
			script: script(
				"f(n : Int)",
				"  ? n > 0",
				`    println("pos")`,
				"    ex()",
				`  println("after")`,
				"f(1)",
				"f(0)",
			),
			want: "pos\nafter\n",
		},
		{
			name: "constant ignores assignment",
			script: script(
				"k ~~ = 1",
				"k = 2",
				"k ~ = 3",
				"println(k)",
			),
			want: "1\n",
		},
		{
			name: "type annotation converts",
			script: script(
				"x : Float = 1",
				"x += 1",
				"println(x, \" \", type(x))",
			),
			want: "2.0 Float\n",
		},
		{
			name: "compound forms",
			script: script(
				"a = 5",
				"a **",
				"b = 3",
				"b ^= 2",
				"c = 7",
				"c %% 4",
				"d = 9",
				"d -- 4",
				"e = 1",
				"e++",
				"e++ 10",
				`println(a, ",", b, ",", c, ",", d, ",", e)`,
			),
			want: "25,9,3,5,12\n",
		},
		{
			name: "lists",
			script: script(
				"xs = [1, 2, 3]",
				"xs[0] = 10",
				"xs[3] = 4",
				"xs[1] += 5",
				`println(xs, " ", len(xs), " ", xs[-1], " ", xs[1])`,
			),
			want: "[10, 7, 3, 4] 4 4 7\n",
		},
		{
			name: "strings index to chars",
			script: script(
				`s = "héllo"`,
				`println(s[1], " ", type(s[1]), " ", len(s))`,
			),
			want: "é Char 5\n",
		},
		{
			name: "formatted strings",
			script: script(
				`name = "rts"`,
				`println(f"hi {name} {1+2} \{x\}")`,
			),
			want: "hi rts 3 {x}\n",
		},
		{
			name: "formatted strings with quoted braces",
			script: script(
				"println(f\"<{str(\\\"}\\\", 1)}>\")",
				`println(f"{'{'}{'}'}")`,
			),
			want: "<}1>\n{}\n",
		},
		{
			name: "builtins",
			script: script(
				`println(int(3.9), char(65), type(1.5), len("abc"), str(true, 1))`,
				`println(Int("7") + 1)`,
			),
			want: "3AUFloat3true1\n8\n",
		},
		{
			name: "print without newline",
			script: script(
				`print("a")`,
				`print("b")`,
			),
			want: "ab",
		},
		{
			name: "comments and blank lines",
			script: script(
				"# leading comment",
				"",
				"",
				`println("x") # trailing`,
			),
			want: "x\n",
		},
		{
			name:   "semicolons",
			script: `a = 1; b = 2; println(a + b)`,
			want:   "3\n",
		},
		{
			name: "unresolved names degrade",
			script: script(
				"println(nothing)",
				"y = nothing + 1",
				`println(type(y))`,
			),
			want: "\nNone\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := run(t, tt.script); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRun_ConditionalExclusivity(t *testing.T) {
	group := func(n string) string {
		return script(
			"n = "+n,
			"? n = 1",
			`  println("one")`,
			"? n = 2",
			`  println("two")`,
			"?",
			`  println("other")`,
			`println("done")`,
		)
	}

	tests := []struct {
		n    string
		want string
	}{
		{"1", "one\ndone\n"},
		{"2", "two\ndone\n"},
		{"3", "other\ndone\n"},
	}

	for _, tt := range tests {
		t.Run(tt.n, func(t *testing.T) {
			if got, _ := run(t, group(tt.n)); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("no else", func(t *testing.T) {
		got, _ := run(t, script(
			"? false",
			`  println("a")`,
			"? false",
			`  println("b")`,
			`println("done")`,
		))
		if got != "done\n" {
			t.Errorf("output = %q, want %q", got, "done\n")
		}
	})

	t.Run("first true wins", func(t *testing.T) {
		got, _ := run(t, script(
			"? true",
			`  println("a")`,
			"? true",
			`  println("b")`,
		))
		if got != "a\n" {
			t.Errorf("output = %q, want %q", got, "a\n")
		}
	})
}

func TestRun_Reentrancy(t *testing.T) {
	got, _ := run(t, script(
		"counter = 0",
		"inc(n : Int) -> Int",
		"  counter += 1",
		"  local ~ = n",
		"  local *= 2",
		"  = local",
		"println(inc(3))",
		"println(inc(3))",
		"println(counter)",
		"println(type(local))",
	))

	if want := "6\n6\n2\nNone\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRun_MaxDepth(t *testing.T) {
	var out bytes.Buffer

	in := New("main", WithOutput(&out), WithMaxDepth(16))

	err := in.Run(t.Context(), script(
		"f() -> Int",
		"  = f()",
		"x = f()",
		`println("unreachable")`,
	))

	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Fatalf("Run error = %v, want %v", err, ErrMaxDepthExceeded)
	}

	if !in.Halted() {
		t.Errorf("interpreter should be halted")
	}

	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRun_Exit(t *testing.T) {
	got, in := run(t, script(
		`println("a")`,
		"exit(3)",
		`println("b")`,
	))

	if got != "a\n" {
		t.Errorf("output = %q, want %q", got, "a\n")
	}

	if !in.Halted() || in.ExitCode() != 3 {
		t.Errorf("Halted = %v, ExitCode = %d, want true, 3", in.Halted(), in.ExitCode())
	}

	if err := in.Run(t.Context(), `println("again")`); !errors.Is(err, ErrHalted) {
		t.Errorf("Run after exit = %v, want %v", err, ErrHalted)
	}

	in.Resume()

	if err := in.Run(t.Context(), "x = 1"); err != nil {
		t.Errorf("Run after Resume = %v", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	var out bytes.Buffer

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	in := New("main", WithOutput(&out))
	if err := in.Run(ctx, `println("x")`); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if out.Len() != 0 || !in.Halted() {
		t.Errorf("cancelled run printed %q, halted = %v", out.String(), in.Halted())
	}
}

func TestRun_BindingsPersist(t *testing.T) {
	var out bytes.Buffer

	in := New("main", WithOutput(&out))

	for _, s := range []string{"x = 1", "x += 1", "println(x)"} {
		if err := in.Run(t.Context(), s); err != nil {
			t.Fatalf("Run(%q): %v", s, err)
		}
	}

	if out.String() != "2\n" {
		t.Errorf("output = %q, want %q", out.String(), "2\n")
	}

	if !in.Reset("x") {
		t.Fatalf("Reset(x) = false")
	}

	if _, ok := in.Lookup("x"); ok {
		t.Errorf("x still bound after Reset")
	}
}

func TestInterpreter_Args(t *testing.T) {
	got, in := run(t, script(
		`println(argc, " ", argv[1], " ", argv)`,
		"argc = 9",
		"println(argc)",
	), WithArgs("a.rt", "y"))

	if want := "2 y [a.rt, y]\n2\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	if v, ok := in.Lookup(ArgvName); !ok || v.Kind != KindList {
		t.Errorf("argv = %v, %v", v, ok)
	}
}

func TestInterpreter_Define(t *testing.T) {
	var out bytes.Buffer

	in := New("main", WithOutput(&out))
	in.Define("width", Constant, KindUInt, Token{Kind: KindUInt, Data: "80"})
	in.Define("sum", Variable, KindNone,
		Token{Kind: KindUInt, Data: "1"}, Token{Kind: KindPlus}, Token{Kind: KindUInt, Data: "2"})

	if err := in.Run(t.Context(), "width = 1; println(width * 2, \" \", sum)"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if want := "160 3\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}

	names := in.Names()
	for _, want := range []string{"width", "sum", ArgcName, ArgvName} {
		found := false

		for _, n := range names {
			found = found || n == want
		}

		if !found {
			t.Errorf("Names() = %v, missing %q", names, want)
		}
	}
}

func TestBuiltin_Input(t *testing.T) {
	got, _ := run(t, script(
		`name = input("who? ")`,
		`println(f"hi {name}")`,
		`rest = input()`,
		`println(type(rest))`,
	), WithInput(strings.NewReader("bob\n")))

	if want := "who? hi bob\nNone\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestBuiltin_RandUInt(t *testing.T) {
	got, _ := run(t, script(
		"a = randUInt(5, 5)",
		"b = randUInt(10, 1)",
		"? (b >= 1) & (b <= 10)",
		`  println(a, " ok")`,
	), WithSeed(1))

	if got != "5 ok\n" {
		t.Errorf("output = %q, want %q", got, "5 ok\n")
	}
}

func TestBuiltin_Exec(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	dir := t.TempDir()
	probe := filepath.Join(dir, "rtsprobe")

	if err := os.WriteFile(probe, []byte("#!/bin/sh\necho probe $1\nexit 3\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, _ := run(t, script(
		`code = exec("rtsprobe arg")`,
		`println(code)`,
		`missing = exec("rts-no-such-command")`,
		`println(type(missing))`,
	), WithExecPath(dir))

	if want := "probe arg\n3\nNone\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestInterpreter_LogsDegradations(t *testing.T) {
	var buf bytes.Buffer

	logger := log.Make(&buf,
		log.WithLevel(log.LevelTrace),
		log.WithFormat(log.FormatJSON),
		log.WithPretty(false),
	)

	in := New("main", WithLogger(logger), WithOutput(&bytes.Buffer{}))
	if err := in.Run(t.Context(), "x = nothing"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"unresolved name", `"session":"` + in.Session() + `"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestInterpreter_Eval(t *testing.T) {
	var out strings.Builder

	in := New("main", WithOutput(&out))

	tests := []struct {
		expr string
		want string
	}{
		{"x = 4", ""},
		{"x * 2 + 1", "9"},
		{`str("n=", x)`, "n=4"},
		{"[x, 1]", "[4, 1]"},
		{"missing", ""},
	}

	for _, tt := range tests {
		v, err := in.Eval(t.Context(), tt.expr)
		if err != nil {
			t.Fatalf("Eval(%q) error: %v", tt.expr, err)
		}

		if got := Display(v); got != tt.want {
			t.Errorf("Eval(%q) = %q, want %q", tt.expr, got, tt.want)
		}
	}
}
