package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-isatty"

	"github.com/ardnew/rts/lang"
	"github.com/ardnew/rts/log"
	"github.com/ardnew/rts/style"
)

// Run executes a script.
type Run struct {
	Script string   `arg:"" help:"Script file (*.rt), '-' for stdin, or inline script text" name:"script"`
	Args   []string `arg:"" help:"Arguments available to the script as argv"                name:"args"   optional:""`

	Debug bool `help:"Trace degradations, dump the line tree and summarize the run" short:"d"`
	Watch bool `help:"Run the script file again whenever it changes"                short:"w"`
}

// Run executes the run command. A nonzero script exit code is reported as
// an [ErrExitStatus] error carrying the code.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := loadScript(r.Script)
	if err != nil {
		return err
	}

	if !r.Watch {
		return r.exec(ctx, src)
	}

	if !src.file {
		return ErrWatch.
			With(slog.String("script", src.name)).
			Wrap(errors.New("only script files can be watched"))
	}

	return r.watch(ctx, src)
}

// exec runs src once in a fresh interpreter.
func (r *Run) exec(ctx context.Context, src source) error {
	opts := []lang.Option{
		lang.WithArgs(r.Args...),
		lang.WithPrinter(printer(os.Stdout)),
		lang.WithInteractive(isTerminal(os.Stdin)),
	}

	if r.Debug {
		opts = append(opts,
			lang.WithLogger(log.Default().Wrap(log.WithLevel(log.LevelTrace))),
		)
	}

	in, err := newInterpreter(ctx, opts...)
	if err != nil {
		return err
	}

	lines := lang.Parse(src.data)

	if r.Debug {
		if err := lang.Dump(os.Stderr, lines); err != nil {
			return err
		}
	}

	start := time.Now()
	err = in.RunLines(ctx, lines)

	if r.Debug {
		summarize(ctx, src, lines, in, time.Since(start))
	}

	if err != nil {
		return lang.WrapError(err).With(slog.String("script", src.name))
	}

	if code := in.ExitCode(); code != 0 {
		return exitStatus(code)
	}

	return nil
}

// watch runs src, then runs it again each time its file is written until
// ctx is done. The directory is watched so that editors replacing the file
// on save are seen.
func (r *Run) watch(ctx context.Context, src source) error {
	path, err := filepath.Abs(src.name)
	if err != nil {
		return ErrWatch.With(slog.String("script", src.name)).Wrap(err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return ErrWatch.With(slog.String("dir", filepath.Dir(path))).Wrap(err)
	}

	report := func(err error) {
		if code, ok := ExitCode(err); ok {
			log.InfoContext(ctx, "script exited", slog.Int("code", code))
		} else if err != nil {
			log.ErrorContext(ctx, "run failed", slog.Any("error", err))
		}
	}

	report(r.exec(ctx, src))

	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			return ErrWatch.With(slog.String("script", src.name)).Wrap(err)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Name != path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}

			log.DebugContext(ctx, "script changed",
				slog.String("script", src.name),
				slog.String("op", ev.Op.String()),
			)

			next, err := loadScript(src.name)
			if err != nil {
				report(err)

				continue
			}

			report(r.exec(ctx, next))
		}
	}
}

// summarize logs the size, duration and result of a debug run.
func summarize(
	ctx context.Context,
	src source,
	lines []*lang.Line,
	in *lang.Interpreter,
	elapsed time.Duration,
) {
	log.InfoContext(ctx, "run summary",
		slog.String("script", src.name),
		slog.String("session", in.Session()),
		slog.String("size", humanize.Bytes(uint64(len(src.data)))),
		slog.String("lines", humanize.Comma(int64(lang.CountLines(lines)))),
		slog.String("names", humanize.Comma(int64(len(in.Names())))),
		slog.Duration("elapsed", elapsed),
		slog.Int("exit", in.ExitCode()),
		slog.Bool("halted", in.Halted()),
	)
}

// Drun executes a script like run --debug.
type Drun struct {
	Script string   `arg:"" help:"Script file (*.rt), '-' for stdin, or inline script text" name:"script"`
	Args   []string `arg:"" help:"Arguments available to the script as argv"                name:"args"   optional:""`
}

// Run executes the drun command.
func (d *Drun) Run(ctx context.Context) error {
	r := Run{Script: d.Script, Args: d.Args, Debug: true}

	return r.Run(ctx)
}

// printer returns the markup renderer for script output written to w:
// styled on a terminal, stripped otherwise.
func printer(w io.Writer) func(string) string {
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		return style.New(w).Render
	}

	return style.Plain
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
