package repl

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/ardnew/rts/log"
	"github.com/ardnew/rts/pkg"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand]. It opens the user's editor on
// a temporary script holding the current draft and keeps what was saved.
type editCommand struct {
	ctx    context.Context
	draft  string
	saved  string
	logger log.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run writes the draft to a temporary file, waits for the editor to exit
// and reads the file back into c.saved.
func (c *editCommand) Run() error {
	f, err := os.CreateTemp("", pkg.Name+"-repl-*"+pkg.ScriptExt)
	if err != nil {
		return err
	}

	path := f.Name()
	defer os.Remove(path)

	_, err = f.WriteString(c.draft)
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return err
	}

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}

	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(c.ctx, editor, path)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = c.stdin, c.stdout, c.stderr

	if err := cmd.Run(); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c.saved = string(data)

	c.logger.TraceContext(c.ctx, "repl edit",
		slog.String("editor", editor),
		slog.Int("bytes", len(data)),
	)

	return nil
}
