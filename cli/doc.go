// Package cli contains the command line interface for rts.
//
// # Usage
//
//	rts [flags] <command> [args]
//
// A bare script argument runs it, so these are equivalent:
//
//	rts hello.rt a b
//	rts run hello.rt a b
//
// # Global Options
//
//   - -D, --define NAME=EXPR: bind NAME before any script runs to the value
//     of a host expression, e.g. -D width=80*2 or -D user=env["USER"]
//   - -s, --source FILE: run FILE before the command's script
//   - --path DIR: prepend DIR to the PATH searched by exec
//   - --max-depth N: limit the nesting of calls and namespace bodies
//
// # Configuration
//
// Flag defaults are read from a JSON file and from a configuration script
// in the user configuration directory. The script runs before the command
// line is parsed, and each of its top-level bindings sets the flag of the
// same name with underscores for hyphens:
//
//	log_level = "debug"
//	path = ["/opt/tools/bin"]
//
// The init command writes a configuration script from the current flags.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o rts .
//
// Flags:
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/rts/pprof)
package cli
