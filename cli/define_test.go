package cli

import (
	"errors"
	"testing"

	"github.com/ardnew/rts/lang"
)

func TestParseDefines(t *testing.T) {
	t.Setenv("RTS_DEFINE_TEST", "hello")

	tests := []struct {
		def      string
		wantName string
		wantKind lang.Kind
		want     string
	}{
		{"width=80*2", "width", lang.KindUInt, "160"},
		{"neg=-3", "neg", lang.KindInt, "-3"},
		{"ratio=1/4", "ratio", lang.KindUFloat, "0.25"},
		{`name="rts"`, "name", lang.KindString, "rts"},
		{"on=true && false", "on", lang.KindBool, "false"},
		{`items=[1, "a"]`, "items", lang.KindList, "[1, a]"},
		{`greeting=env["RTS_DEFINE_TEST"]`, "greeting", lang.KindString, "hello"},
		{" spaced =1", "spaced", lang.KindUInt, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			got, err := parseDefines([]string{tt.def})
			if err != nil {
				t.Fatalf("parseDefines(%q) error = %v", tt.def, err)
			}

			if len(got) != 1 {
				t.Fatalf("parseDefines(%q) = %v, want one binding", tt.def, got)
			}

			b := got[0]
			if b.Name != tt.wantName || b.Value.Kind != tt.wantKind ||
				lang.Display(b.Value) != tt.want {
				t.Errorf("parseDefines(%q) = %s %v %q; want %s %v %q",
					tt.def, b.Name, b.Value.Kind, lang.Display(b.Value),
					tt.wantName, tt.wantKind, tt.want)
			}
		})
	}
}

func TestParseDefinesErrors(t *testing.T) {
	for _, def := range []string{
		"noequals",
		"1x=2",
		"a.b=2",
		"x=)",
		"x=missing_var",
		`m={"a": 1}`,
	} {
		if _, err := parseDefines([]string{def}); !errors.Is(err, ErrDefine) {
			t.Errorf("parseDefines(%q) error = %v, want %v", def, err, ErrDefine)
		}
	}

	if got, err := parseDefines(nil); got != nil || err != nil {
		t.Errorf("parseDefines(nil) = %v, %v", got, err)
	}
}
