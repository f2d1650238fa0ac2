package cli

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"runtime"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/ardnew/rts/cli/cmd"
	"github.com/ardnew/rts/lang"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// defineEnv returns the variables visible to --define expressions: the
// process environment as env, and the target platform as os and arch.
func defineEnv() map[string]any {
	vars := make(map[string]string)

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}

	return map[string]any{
		"env":  vars,
		"os":   runtime.GOOS,
		"arch": runtime.GOARCH,
	}
}

// parseDefines evaluates each name=expression definition in order.
//
// The expression is evaluated on the host with [expr], so -D width=80*2
// binds width to the UInt 160 and -D user=env["USER"] binds a String.
func parseDefines(defs []string) ([]cmd.Binding, error) {
	if len(defs) == 0 {
		return nil, nil
	}

	env := defineEnv()
	out := make([]cmd.Binding, 0, len(defs))

	for _, def := range defs {
		name, src, ok := strings.Cut(def, "=")
		name = strings.TrimSpace(name)

		attr := slog.String("define", def)

		if !ok || !identifier.MatchString(name) {
			return nil, ErrDefine.With(attr).
				Wrap(fmt.Errorf("want name=expression, got %q", def))
		}

		program, err := expr.Compile(src, expr.Env(env))
		if err != nil {
			return nil, ErrDefine.With(attr).Wrap(err)
		}

		val, err := expr.Run(program, env)
		if err != nil {
			return nil, ErrDefine.With(attr).Wrap(err)
		}

		tok, err := tokenOf(val)
		if err != nil {
			return nil, ErrDefine.With(attr).Wrap(err)
		}

		out = append(out, cmd.Binding{Name: name, Value: tok})
	}

	return out, nil
}

// tokenOf converts an expression result to a script value.
func tokenOf(val any) (lang.Token, error) {
	switch v := val.(type) {
	case nil:
		return lang.None(), nil
	case bool:
		return lang.Bool(v), nil
	case string:
		return lang.String(v), nil
	case int:
		return lang.Int(int64(v)), nil
	case int8:
		return lang.Int(int64(v)), nil
	case int16:
		return lang.Int(int64(v)), nil
	case int32:
		return lang.Int(int64(v)), nil
	case int64:
		return lang.Int(v), nil
	case uint:
		return lang.UInt(uint64(v)), nil
	case uint8:
		return lang.UInt(uint64(v)), nil
	case uint16:
		return lang.UInt(uint64(v)), nil
	case uint32:
		return lang.UInt(uint64(v)), nil
	case uint64:
		return lang.UInt(v), nil
	case float32:
		return lang.Float(float64(v)), nil
	case float64:
		return lang.Float(v), nil
	case []any:
		elems := make([]lang.Token, len(v))

		for i, e := range v {
			t, err := tokenOf(e)
			if err != nil {
				return lang.None(), err
			}

			elems[i] = t
		}

		return lang.List(elems...), nil
	}

	return lang.None(), fmt.Errorf("unsupported value type %T", val)
}
