package cli

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/rts/lang"
	"github.com/ardnew/rts/log"
)

// resolve returns a [kong.ConfigurationLoader] for configuration files
// written as scripts.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx), "/path/to/config")
//
// The file runs in a fresh interpreter with no input and discarded output.
// Its top-level bindings become flag values:
//   - Flag names with hyphens (e.g., "log-level") use underscores in the
//     script (e.g., "log_level")
//   - Strings, numbers and other scalars are passed to kong as text
//   - Bools are passed as bools and lists as slices
//   - None values leave the flag unset
//
// Example configuration script:
//
//	log_level = "debug"
//	log_format = "json"
//	log_pretty = true
//	path = ["/opt/tools/bin"]
//
// Command-line flags override configuration values. A script that fails
// to run yields no values.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		in := lang.New("config",
			lang.WithLogger(log.Default()),
			lang.WithInput(strings.NewReader("")),
			lang.WithOutput(io.Discard),
			lang.WithErrOutput(io.Discard),
			lang.WithInteractive(false),
		)

		if err := in.Run(ctx, string(data)); err != nil {
			log.WarnContext(ctx, "ignoring configuration", slog.Any("error", err))

			return config{}, nil
		}

		cfg := make(config)

		for _, name := range in.Names() {
			v, ok := in.Lookup(name)
			if !ok {
				continue
			}

			if val := configValue(v); val != nil {
				cfg[name] = val
			}
		}

		return cfg, nil
	}
}

// config implements [kong.Resolver] for configuration scripts.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	return nil, nil
}

// configValue converts a script value to the form kong decodes flags from.
func configValue(t lang.Token) any {
	switch {
	case t.IsNone():
		return nil

	case t.Kind == lang.KindBool && !t.Tag:
		return t.Truth()

	case t.Kind == lang.KindList && !t.Tag:
		elems := make([]any, 0, len(t.Tokens))

		for _, e := range t.Tokens {
			if v := configValue(e); v != nil {
				elems = append(elems, v)
			}
		}

		return elems
	}

	return lang.Display(t)
}
