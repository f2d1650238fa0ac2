package lang

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/peterh/liner"

	"github.com/ardnew/rts/style"
)

// Builtin describes a function provided by the interpreter. Builtins are
// found before user callables of the same name.
type Builtin struct {
	Name      string
	Signature string
	Doc       string

	call func(ctx context.Context, in *Interpreter, h Handle, args []Token) Token
}

var builtins map[string]Builtin

func init() {
	table := []Builtin{
		{"int", "int(x)", "convert x to an integer", builtinInt},
		{"char", "char(x)", "convert a code point or one-character string to Char", builtinChar},
		{"str", "str(x, ...)", "concatenate the printed forms of the arguments", builtinStr},
		{"type", "type(x)", "name of the kind of x", builtinType},
		{"len", "len(x)", "number of list elements or string characters", builtinLen},
		{"input", "input(prompt, ...)", "read a line from standard input", builtinInput},
		{"randUInt", "randUInt(min, max)", "random UInt in [min, max]", builtinRandUInt},
		{"print", "print(x, ...)", "write the arguments", builtinPrint},
		{"println", "println(x, ...)", "write the arguments and a newline", builtinPrintln},
		{"sleep", "sleep(ms)", "pause for ms milliseconds", builtinSleep},
		{"exec", "exec(cmdline)", "run a command and return its exit status", builtinExec},
		{"exit", "exit(code)", "stop the script with an exit code", builtinExit},
		{"ex", "ex()", "leave the current namespace or call", builtinEx},
		{"go", "go()", "repeat the enclosing conditional", builtinGo},
	}

	builtins = make(map[string]Builtin, len(table))
	for _, b := range table {
		builtins[b.Name] = b
	}
}

// Builtins returns the builtin functions sorted by name.
func Builtins() []Builtin {
	out := make([]Builtin, 0, len(builtins))
	for _, b := range builtins {
		out = append(out, b)
	}

	slices.SortFunc(out, func(a, b Builtin) int { return strings.Compare(a.Name, b.Name) })

	return out
}

func arg(args []Token, i int) Token {
	if i < len(args) {
		return args[i]
	}

	return None()
}

func concat(args []Token) string {
	var sb strings.Builder

	for _, a := range args {
		sb.WriteString(Display(a))
	}

	return sb.String()
}

func builtinInt(_ context.Context, _ *Interpreter, _ Handle, args []Token) Token {
	i, ok := intOf(arg(args, 0))
	if !ok {
		return None()
	}

	return intToken(i)
}

func builtinChar(_ context.Context, _ *Interpreter, _ Handle, args []Token) Token {
	return Coerce(arg(args, 0), KindChar)
}

func builtinStr(_ context.Context, _ *Interpreter, _ Handle, args []Token) Token {
	return String(concat(args))
}

func builtinType(_ context.Context, _ *Interpreter, _ Handle, args []Token) Token {
	return String(arg(args, 0).Kind.String())
}

func builtinLen(ctx context.Context, in *Interpreter, h Handle, args []Token) Token {
	v := arg(args, 0)

	switch {
	case v.Kind == KindList:
		return intToken(big.NewInt(int64(len(v.Tokens))))
	case v.Kind.IsText():
		return intToken(big.NewInt(int64(utf8.RuneCountInString(v.Data))))
	}

	return in.degrade(ctx, h, "len of non-sequence", slog.String("kind", v.Kind.String()))
}

func builtinInput(ctx context.Context, in *Interpreter, h Handle, args []Token) Token {
	s, err := in.readLine(concat(args))
	if err != nil {
		in.logger.DebugContext(ctx, "input",
			slog.String("scope", in.tree.Path(h)),
			slog.Any("error", ErrReadInput.Wrap(err)))

		return None()
	}

	return String(s)
}

func (in *Interpreter) readLine(prompt string) (string, error) {
	if in.interactive {
		st := liner.NewLiner()
		defer st.Close()

		st.SetCtrlCAborts(true)

		s, err := st.Prompt(style.Plain(prompt))
		if errors.Is(err, liner.ErrPromptAborted) {
			in.Halt()
		}

		return s, err
	}

	in.print(prompt)

	if in.reader == nil {
		in.reader = bufio.NewReader(in.stdin)
	}

	s, err := in.reader.ReadString('\n')
	if err != nil && (s == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}

	return strings.TrimRight(s, "\r\n"), nil
}

func builtinRandUInt(ctx context.Context, in *Interpreter, h Handle, args []Token) Token {
	lo, okLo := intOf(arg(args, 0))
	hi, okHi := intOf(arg(args, 1))

	if !okLo || !okHi || lo.Sign() < 0 || hi.Sign() < 0 ||
		!lo.IsUint64() || !hi.IsUint64() {
		return in.degrade(ctx, h, "randUInt needs two UInt bounds")
	}

	a, b := lo.Uint64(), hi.Uint64()
	if a > b {
		a, b = b, a
	}

	var n uint64
	if span := b - a + 1; span == 0 {
		n = in.rand.Uint64()
	} else {
		n = a + in.rand.Uint64N(span)
	}

	return intToken(new(big.Int).SetUint64(n))
}

func (in *Interpreter) print(s string) {
	if _, err := fmt.Fprint(in.stdout, in.printer(s)); err != nil {
		in.logger.Debug("print", slog.String("error", err.Error()))
	}
}

func builtinPrint(_ context.Context, in *Interpreter, _ Handle, args []Token) Token {
	in.print(concat(args))

	return None()
}

func builtinPrintln(_ context.Context, in *Interpreter, _ Handle, args []Token) Token {
	in.print(concat(args) + "\n")

	return None()
}

func builtinSleep(ctx context.Context, _ *Interpreter, _ Handle, args []Token) Token {
	ms, ok := intOf(arg(args, 0))
	if !ok || ms.Sign() <= 0 || !ms.IsInt64() {
		return None()
	}

	t := time.NewTimer(time.Duration(ms.Int64()) * time.Millisecond)
	defer t.Stop()

	select {
	case <-t.C:
	case <-ctx.Done():
	}

	return None()
}

func builtinExec(ctx context.Context, in *Interpreter, h Handle, args []Token) Token {
	return in.execute(ctx, h, concat(args))
}

func builtinExit(_ context.Context, in *Interpreter, _ Handle, args []Token) Token {
	if code, ok := intOf(arg(args, 0)); ok && code.IsInt64() {
		in.code.Store(code.Int64())
	}

	in.Halt()

	return None()
}

func builtinEx(_ context.Context, in *Interpreter, _ Handle, _ []Token) Token {
	in.signal = signalExit

	return None()
}

func builtinGo(_ context.Context, in *Interpreter, _ Handle, _ []Token) Token {
	in.signal = signalLoop

	return None()
}
