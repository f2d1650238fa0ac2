package lang

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ardnew/rts/log"
	"github.com/ardnew/rts/style"
)

// DefaultMaxDepth is the default limit on nested blocks and calls.
const DefaultMaxDepth = 256

// Names of the bindings installed in the root structure.
const (
	ArgcName = "argc"
	ArgvName = "argv"
)

type signal uint8

const (
	signalNone signal = iota
	signalExit        // leave the innermost namespace or call
	signalLoop        // repeat the innermost conditional group
)

// Interpreter executes scripts against a structure tree.
//
// The root structure holds argc and argv. Scripts run in a namespace
// created beneath it, so bindings persist from one [Interpreter.Run] to the
// next. An Interpreter runs one script at a time.
type Interpreter struct {
	tree *Tree
	root Handle
	ns   Handle

	logger      log.Logger
	session     string
	args        []string
	stdout      io.Writer
	stderr      io.Writer
	stdin       io.Reader
	reader      *bufio.Reader
	interactive bool
	printer     func(string) string
	rand        *rand.Rand
	execPath    []string
	maxDepth    int

	depth  int
	signal signal
	halt   atomic.Bool
	code   atomic.Int64
	err    error
}

// New returns an interpreter whose scripts run in a namespace named
// namespace.
func New(namespace string, opts ...Option) *Interpreter {
	in := &Interpreter{
		session:  uuid.NewString(),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		stdin:    os.Stdin,
		printer:  style.Plain,
		maxDepth: DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(in)
	}

	if in.rand == nil {
		in.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	in.logger = in.logger.With(slog.String("session", in.session))
	in.tree, in.root = NewTree("")

	argv := make([]Token, len(in.args))
	for i, a := range in.args {
		argv[i] = String(a)
	}

	in.install(in.root, ArgcName, Constant, KindUInt,
		Token{Kind: KindUInt, Data: strconv.Itoa(len(in.args))})
	in.install(in.root, ArgvName, Constant, KindList, List(argv...))

	in.ns = in.tree.Create(in.root, Spec{Name: namespace, Flags: FlagBlock})

	return in
}

func (in *Interpreter) install(
	scope Handle, name string, mut Mutability, typ Kind, v Token,
) Handle {
	h := in.tree.Create(scope, Spec{Name: name, Mut: mut, Type: typ})
	in.tree.SetValue(h, Coerce(v, typ))

	return h
}

// Define binds name in the namespace before a script runs. The tokens are
// evaluated as an expression in the namespace, so a single literal binds
// itself and a List token binds its elements. A typ other than KindNone
// converts the value.
func (in *Interpreter) Define(
	name string, mut Mutability, typ Kind, tokens ...Token,
) Handle {
	v := in.eval(context.Background(), in.ns, tokens)

	return in.install(in.ns, name, mut, typ, v)
}

// Run executes script in the namespace until it completes, calls exit, or
// ctx is done. Bindings made by earlier runs remain visible.
//
// Run returns an error only when the run cannot continue: when the nesting
// depth limit is exceeded, or when the interpreter was already halted by an
// earlier exit.
func (in *Interpreter) Run(ctx context.Context, script string) error {
	return in.RunLines(ctx, Parse([]byte(script)))
}

// RunLines executes a parsed line tree like [Interpreter.Run].
func (in *Interpreter) RunLines(ctx context.Context, lines []*Line) error {
	if in.halt.Load() {
		return ErrHalted
	}

	in.err = nil
	in.signal = signalNone

	in.tree.SetBody(in.ns, lines)
	in.logger.TraceContext(ctx, "run",
		slog.String("namespace", in.tree.Name(in.ns)),
		slog.Int("lines", CountLines(lines)))

	in.exec(ctx, in.ns)
	in.signal = signalNone

	return in.err
}

// Eval evaluates expr as an expression in the namespace and returns its
// value. Text that is not a single expression line, such as an assignment
// or a block, is run like [Interpreter.Run] and yields None.
func (in *Interpreter) Eval(ctx context.Context, expr string) (Token, error) {
	lines := Parse([]byte(expr))
	if len(lines) != 1 || !isExpression(lines[0]) {
		return None(), in.RunLines(ctx, lines)
	}

	if in.halt.Load() {
		return None(), ErrHalted
	}

	in.err = nil
	in.signal = signalNone

	v := in.eval(ctx, in.ns, lines[0].Tokens)
	in.signal = signalNone

	return v, in.err
}

// Halt asks the running script to stop before its next statement.
func (in *Interpreter) Halt() { in.halt.Store(true) }

// Halted reports whether a script called exit or the run was stopped.
func (in *Interpreter) Halted() bool { return in.halt.Load() }

// ExitCode returns the code passed to exit, or zero.
func (in *Interpreter) ExitCode() int { return int(in.code.Load()) }

// Resume clears the halted state so the interpreter can run again.
func (in *Interpreter) Resume() {
	in.halt.Store(false)
	in.code.Store(0)
}

// Reset deletes the binding named name from the namespace. It reports
// whether such a binding existed.
func (in *Interpreter) Reset(name string) bool {
	h := in.tree.Child(in.ns, name)
	if !h.Valid() {
		return false
	}

	in.tree.Delete(h)

	return true
}

// Lookup returns the value bound to name as seen from the namespace.
func (in *Interpreter) Lookup(name string) (Token, bool) {
	h := in.tree.Lookup(in.ns, name)
	if !h.Valid() {
		return None(), false
	}

	return in.tree.Value(h), true
}

// Names returns the names visible from the namespace, innermost first.
func (in *Interpreter) Names() []string {
	var names []string

	seen := map[string]bool{}

	for h := in.ns; h.Valid(); h = in.tree.Parent(h) {
		for _, c := range in.tree.Children(h) {
			if in.tree.Flags(c)&FlagTransient != 0 {
				continue
			}

			if name := in.tree.Name(c); !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	return names
}

// Tree returns the structure tree and the namespace handle.
func (in *Interpreter) Tree() (*Tree, Handle) { return in.tree, in.ns }

// Session returns the identifier attached to the interpreter's log records.
func (in *Interpreter) Session() string { return in.session }
