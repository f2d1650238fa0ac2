package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/rts/lang"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// Binding is a host value bound as a constant before any script runs.
type Binding struct {
	Name  string
	Value lang.Token
}

// Setup holds the global settings applied to every interpreter a command
// creates.
type Setup struct {
	// Options are applied before the command's own options.
	Options []lang.Option
	// Defines are bound in the script namespace in order.
	Defines []Binding
	// Sources are script files run before the command's script. The path
	// "-" reads standard input.
	Sources []string
}

type setupKey struct{}

// WithSetup returns a new context.Context containing s.
func WithSetup(ctx context.Context, s Setup) context.Context {
	return context.WithValue(ctx, setupKey{}, s)
}

func setupFrom(ctx context.Context) Setup {
	s, _ := ctx.Value(setupKey{}).(Setup)

	return s
}

// newInterpreter returns an interpreter configured from the setup in ctx
// and opts, with its --define bindings made and its --source preludes run.
func newInterpreter(
	ctx context.Context,
	opts ...lang.Option,
) (*lang.Interpreter, error) {
	s := setupFrom(ctx)

	in := lang.New(Namespace, append(s.Options, opts...)...)

	for _, b := range s.Defines {
		in.Define(b.Name, lang.Constant, lang.KindNone, b.Value)
	}

	for _, src := range readSources(ctx, s.Sources) {
		if err := in.Run(ctx, string(src.data)); err != nil {
			return in, lang.WrapError(err).With(slog.String("source", src.name))
		}
	}

	return in, nil
}

// readStdin reads all of standard input.
func readStdin() ([]byte, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, ErrReadSource.With(slog.String("file", stdinSource)).Wrap(err)
	}

	return data, nil
}
