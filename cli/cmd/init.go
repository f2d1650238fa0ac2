package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/rts/log"
	"github.com/ardnew/rts/pkg"
	"github.com/ardnew/rts/profile"
)

// Init writes a configuration script holding the current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath), slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}
	defer file.Close()

	if err := writeConfig(file, ktx); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// writeConfig writes one binding per global flag with a value, named with
// underscores in place of hyphens.
func writeConfig(w io.Writer, ktx *kong.Context) error {
	skip := []string{"help", profile.Tag, "define", "source"}

	if _, err := fmt.Fprintf(w, "# %s configuration\n", pkg.Name); err != nil {
		return err
	}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(skip, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		lit, ok := literal(ktx.FlagValue(flag))
		if !ok {
			continue
		}

		name := strings.ReplaceAll(flag.Name, "-", "_")
		if _, err := fmt.Fprintf(w, "%s = %s\n", name, lit); err != nil {
			return err
		}
	}

	return nil
}

// literal returns the script literal for a flag value, or false when the
// value is unset or has no literal form.
func literal(val any) (string, bool) {
	switch v := val.(type) {
	case nil:
		return "", false

	case bool:
		return strconv.FormatBool(v), true

	case string:
		if v == "" {
			return "", false
		}

		return quote(v), true

	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v), true

	case float32, float64:
		s := fmt.Sprint(v)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}

		return s, true

	case []string:
		if len(v) == 0 {
			return "", false
		}

		elems := make([]string, len(v))
		for i, s := range v {
			elems[i] = quote(s)
		}

		return "[" + strings.Join(elems, ", ") + "]", true

	case fmt.Stringer:
		return literal(v.String())
	}

	return literal(fmt.Sprint(val))
}

// quote returns s as a string literal with its double quotes escaped.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
