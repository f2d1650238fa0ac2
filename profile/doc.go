// Package profile provides optional runtime profiling for rts.
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof -o rts .
//
// Without the tag every [Config] starts a no-op profiler and [Modes] is
// empty, so the command line hides the profiling flags.
//
// # Modes
//
// The supported modes are those of [github.com/pkg/profile]:
//
//   - allocs, heap, mem: memory allocation profiles
//   - block, mutex: synchronization profiles
//   - clock, cpu: wall-clock and CPU profiles
//   - goroutine, thread: goroutine and thread creation profiles
//   - trace: execution trace
//
// A profiler is configured with functional options and started with
// [Config.Start]:
//
//	var cfg profile.Config = func() (string, string, bool) { return "", "", false }
//
//	cfg = profile.WithMode("cpu")(cfg)
//	cfg = profile.WithPath("/tmp/rts")(cfg)
//
//	defer cfg.Start().Stop()
//
// Profiles are written as <mode>.pprof in the configured directory and can be
// inspected with go tool pprof:
//
//	go tool pprof -http=: /tmp/rts/cpu.pprof
//
// The tagged build also imports [net/http/pprof], which registers its
// handlers on [net/http.DefaultServeMux] for hosts that serve it.
package profile
