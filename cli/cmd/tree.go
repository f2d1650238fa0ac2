package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/rts/lang"
)

// Tree prints the nested line tree of a script without running it.
type Tree struct {
	Format string `default:"text" enum:"text,yaml,json" help:"Output format (${enum})" short:"f"`
	Indent int    `default:"2"                          help:"Indent width for YAML and JSON output; 0 for compact output" short:"i"`

	Script string `arg:"" help:"Script file (*.rt), '-' for stdin, or inline script text" name:"script"`
}

// Run executes the tree command.
func (t *Tree) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := loadScript(t.Script)
	if err != nil {
		return err
	}

	return writeTree(ctx, os.Stdout, lang.Parse(src.data), t.Format, t.Indent)
}

// writeTree writes lines to w in the named format.
func writeTree(
	ctx context.Context,
	w io.Writer,
	lines []*lang.Line,
	format string,
	indent int,
) error {
	if lines == nil {
		lines = []*lang.Line{}
	}

	switch format {
	case "json":
		var (
			data []byte
			err  error
		)

		if indent > 0 {
			data, err = json.MarshalIndent(lines, "", strings.Repeat(" ", indent))
		} else {
			data, err = json.Marshal(lines)
		}

		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err

	case "yaml":
		var opts []yaml.EncodeOption
		if indent > 0 {
			opts = append(opts, yaml.Indent(indent), yaml.IndentSequence(true))
		} else {
			opts = append(opts, yaml.Flow(true))
		}

		data, err := yaml.MarshalContext(ctx, lines, opts...)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = w.Write(data)

		return err
	}

	if err := lang.Dump(w, lines); err != nil {
		return lang.WrapError(err).With(slog.String("format", format))
	}

	return nil
}
