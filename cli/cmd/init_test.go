package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"

	"github.com/ardnew/rts/lang"
)

type initCLI struct {
	Verbose bool     `help:"Enable verbose output" name:"verbose"`
	Output  string   `help:"Output file"           name:"output"`
	Count   int      `help:"Number of items"       name:"count"`
	Ratio   float64  `help:"Scale factor"          name:"ratio"`
	Tags    []string `help:"Tags"                  name:"tags"`
	Define  []string `help:"Defines"               name:"define"`
}

func parseInit(t *testing.T, vars kong.Vars, args ...string) *kong.Context {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli, vars)
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return ktx
}

// TestInitRun tests the Init.Run command.
func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", force: true, exists: true},
		{name: "fail_without_force", exists: true, wantErr: ErrWriteConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "config.rt")

			if tt.exists {
				if err := os.WriteFile(confPath, []byte("existing = 1\n"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			ktx := parseInit(t, kong.Vars{ConfigIdentifier: confPath}, "--count=5")
			err := (&Init{Force: tt.force}).Run(WithContext(context.Background(), ktx))

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Init.Run() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Init.Run() error = %v", err)
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			if !strings.Contains(string(content), "count = 5\n") {
				t.Errorf("config = %q, missing count", content)
			}
		})
	}
}

// TestInitWithInvalidPath tests init with an invalid file path.
func TestInitWithInvalidPath(t *testing.T) {
	t.Parallel()

	confPath := filepath.Join(t.TempDir(), "missing", "config.rt")
	ktx := parseInit(t, kong.Vars{ConfigIdentifier: confPath})

	err := (&Init{}).Run(WithContext(context.Background(), ktx))
	if !errors.Is(err, ErrWriteConfig) {
		t.Errorf("Init.Run() error = %v, want %v", err, ErrWriteConfig)
	}
}

func TestWriteConfig(t *testing.T) {
	t.Parallel()

	ktx := parseInit(t, nil,
		"--verbose", "--output=out dir/test.txt", "--count=5", "--ratio=2",
		"--tags=a,b", "--define=x=1",
	)

	var sb strings.Builder
	if err := writeConfig(&sb, ktx); err != nil {
		t.Fatal(err)
	}

	want := strings.Join([]string{
		"# rts configuration",
		"verbose = true",
		`output = "out dir/test.txt"`,
		"count = 5",
		"ratio = 2.0",
		`tags = ["a", "b"]`,
	}, "\n") + "\n"

	if sb.String() != want {
		t.Errorf("writeConfig() =\n%s\nwant\n%s", sb.String(), want)
	}

	// The written configuration is itself a runnable script.
	in := lang.New("config")
	if err := in.Run(context.Background(), sb.String()); err != nil {
		t.Fatalf("running config: %v", err)
	}

	for name, want := range map[string]string{
		"verbose": "true",
		"output":  "out dir/test.txt",
		"count":   "5",
		"ratio":   "2.0",
		"tags":    "[a, b]",
	} {
		v, ok := in.Lookup(name)
		if !ok || lang.Display(v) != want {
			t.Errorf("%s = %q (%v), want %q", name, lang.Display(v), ok, want)
		}
	}
}

func TestLiteral(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		val    any
		want   string
		wantOK bool
	}{
		{"nil", nil, "", false},
		{"empty string", "", "", false},
		{"bool", false, "false", true},
		{"string", "a b", `"a b"`, true},
		{"quoted string", `say "hi"`, `"say \"hi\""`, true},
		{"int8", int8(-3), "-3", true},
		{"uint", uint(7), "7", true},
		{"float", 1.5, "1.5", true},
		{"whole float", 3.0, "3.0", true},
		{"empty slice", []string{}, "", false},
		{"slice", []string{"x"}, `["x"]`, true},
		{"stringer", 2 * time.Second, `"2s"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := literal(tt.val)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("literal(%v) = %q, %v; want %q, %v", tt.val, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
