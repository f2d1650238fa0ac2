package lang

import (
	"io"
	"math/rand/v2"

	"github.com/ardnew/rts/log"
)

// Option configures an [Interpreter].
type Option func(*Interpreter)

// WithLogger sets the logger that receives diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(in *Interpreter) { in.logger = logger }
}

// WithArgs sets the values of argc and argv.
func WithArgs(args ...string) Option {
	return func(in *Interpreter) { in.args = args }
}

// WithOutput sets the writer used by print and println.
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) { in.stdout = w }
}

// WithErrOutput sets the writer receiving the standard error of commands
// run by exec.
func WithErrOutput(w io.Writer) Option {
	return func(in *Interpreter) { in.stderr = w }
}

// WithInput sets the reader used by input.
func WithInput(r io.Reader) Option {
	return func(in *Interpreter) { in.stdin = r }
}

// WithInteractive makes input read with line editing from the terminal
// instead of the configured reader.
func WithInteractive(enable bool) Option {
	return func(in *Interpreter) { in.interactive = enable }
}

// WithPrinter sets the function that renders printed text, including any
// style markup, before it is written.
func WithPrinter(fn func(string) string) Option {
	return func(in *Interpreter) {
		if fn != nil {
			in.printer = fn
		}
	}
}

// WithMaxDepth limits the nesting of blocks and calls.
func WithMaxDepth(depth int) Option {
	return func(in *Interpreter) {
		if depth > 0 {
			in.maxDepth = depth
		}
	}
}

// WithExecPath adds directories searched first by exec.
func WithExecPath(dirs ...string) Option {
	return func(in *Interpreter) { in.execPath = append(in.execPath, dirs...) }
}

// WithSeed makes randUInt deterministic.
func WithSeed(seed uint64) Option {
	return func(in *Interpreter) {
		in.rand = rand.New(rand.NewPCG(seed, seed))
	}
}
