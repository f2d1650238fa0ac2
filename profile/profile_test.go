package profile

import (
	"slices"
	"testing"
)

func TestConfig_Options(t *testing.T) {
	var cfg Config = func() (string, string, bool) { return "", "", false }

	cfg = WithMode("cpu")(cfg)
	cfg = WithPath("/tmp/rts")(cfg)
	cfg = WithQuiet(true)(cfg)

	mode, path, quiet := cfg()
	if mode != "cpu" || path != "/tmp/rts" || !quiet {
		t.Errorf("cfg() = (%q, %q, %v), want (cpu, /tmp/rts, true)",
			mode, path, quiet)
	}
}

func TestConfig_StartUnknownMode(t *testing.T) {
	var cfg Config = func() (string, string, bool) { return "bogus", t.TempDir(), true }

	if _, ok := cfg.Start().(ignore); !ok {
		t.Error("Start() with an unknown mode should return a no-op profiler")
	}

	var zero Config
	zero.Start().Stop()
}

func TestModes_Sorted(t *testing.T) {
	if m := Modes(); !slices.IsSorted(m) {
		t.Errorf("Modes() = %v, want sorted", m)
	}
}
