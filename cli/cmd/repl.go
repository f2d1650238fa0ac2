package cmd

import (
	"context"

	"github.com/ardnew/rts/cli/cmd/repl"
	"github.com/ardnew/rts/lang"
	"github.com/ardnew/rts/log"
)

// Repl starts an interactive session.
type Repl struct {
	NoHistory bool `help:"Do not read or write the session history file" name:"no-history"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var cacheDir string

	if ktx := kongContextFrom(ctx); ktx != nil && !r.NoHistory {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	build := func(opts ...lang.Option) (*lang.Interpreter, error) {
		return newInterpreter(ctx, opts...)
	}

	code, err := repl.Run(ctx, build, cacheDir, log.Default())
	if err != nil {
		return err
	}

	if code != 0 {
		return exitStatus(code)
	}

	return nil
}
