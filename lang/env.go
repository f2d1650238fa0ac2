package lang

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ardnew/mung"
)

// searchPath returns the PATH used to find commands run by exec, with the
// directories configured by [WithExecPath] in front.
func (in *Interpreter) searchPath() string {
	path := os.Getenv("PATH")
	if len(in.execPath) == 0 {
		return path
	}

	return mung.Make(
		mung.WithSubjectItems(path),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(in.execPath...),
	).String()
}

// lookPath finds the executable name in the directories of path.
func lookPath(name, path string) (string, error) {
	if strings.ContainsRune(name, filepath.Separator) {
		return exec.LookPath(name)
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			continue
		}

		if p, err := exec.LookPath(filepath.Join(dir, name)); err == nil {
			return p, nil
		}
	}

	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

// execute runs cmdline, split at whitespace, with its output sent to the
// interpreter's writers. It returns the exit status, or None if the command
// could not be started.
func (in *Interpreter) execute(ctx context.Context, h Handle, cmdline string) Token {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return in.degrade(ctx, h, "exec of empty command")
	}

	path := in.searchPath()

	name, err := lookPath(fields[0], path)
	if err != nil {
		in.logger.DebugContext(ctx, "exec",
			slog.String("command", fields[0]), slog.String("error", err.Error()))

		return None()
	}

	cmd := exec.CommandContext(ctx, name, fields[1:]...)
	cmd.Env = append(os.Environ(), "PATH="+path)
	cmd.Stdout = in.stdout
	cmd.Stderr = in.stderr

	in.logger.TraceContext(ctx, "exec",
		slog.String("path", name), slog.Any("args", fields[1:]))

	var exitErr *exec.ExitError

	switch err := cmd.Run(); {
	case err == nil:
		return intToken(big.NewInt(0))
	case errors.As(err, &exitErr):
		return intToken(big.NewInt(int64(exitErr.ExitCode())))
	default:
		in.logger.DebugContext(ctx, "exec",
			slog.String("command", name), slog.String("error", err.Error()))

		return None()
	}
}
