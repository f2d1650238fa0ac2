package lang

import (
	"strings"
	"testing"
)

func TestNestBrackets_Call(t *testing.T) {
	toks := lexLine(t, "f(1,(2+3))")

	if len(toks) != 2 {
		t.Fatalf("got %d tokens %v, want 2", len(toks), toks)
	}

	if toks[0].Kind != KindWord || toks[0].Data != "f" {
		t.Errorf("first token = %v, want Word(f)", toks[0])
	}

	want := "CircleBegin[UInt(1) Comma CircleBegin[UInt(2) Plus UInt(3)]]"
	if got := toks[1].String(); got != want {
		t.Errorf("group = %q, want %q", got, want)
	}
}

func TestNestBrackets_Families(t *testing.T) {
	toks := lexLine(t, "g([1, (2)], x)")

	want := "Word(g) CircleBegin[SquareBegin[UInt(1) Comma CircleBegin[UInt(2)]] Comma Word(x)]"
	if got := (&Line{Tokens: toks}).String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNestBrackets_Unbalanced(t *testing.T) {
	tests := []struct {
		name string
		in   []Token
		want string
	}{
		{
			name: "unmatched close dropped",
			in: []Token{
				{Kind: KindWord, Data: "a"},
				{Kind: KindCircleEnd},
				{Kind: KindWord, Data: "b"},
			},
			want: "Word(a) Word(b)",
		},
		{
			name: "unmatched open keeps rest",
			in: []Token{
				{Kind: KindWord, Data: "f"},
				{Kind: KindCircleBegin},
				{Kind: KindUInt, Data: "1"},
				{Kind: KindCircleBegin},
				{Kind: KindUInt, Data: "2"},
				{Kind: KindCircleEnd},
			},
			want: "Word(f) CircleBegin[UInt(1) CircleBegin[UInt(2)]]",
		},
		{
			name: "empty group",
			in: []Token{
				{Kind: KindWord, Data: "f"},
				{Kind: KindCircleBegin},
				{Kind: KindCircleEnd},
			},
			want: "Word(f) CircleBegin[]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NestBrackets(tt.in, KindCircleBegin, KindCircleEnd)
			if s := (&Line{Tokens: got}).String(); s != tt.want {
				t.Errorf("got %q, want %q", s, tt.want)
			}
		})
	}
}

func TestNestLines_Depths(t *testing.T) {
	flat := []*Line{
		{Tokens: []Token{{Kind: KindWord, Data: "l0"}}, Indent: 0},
		{Tokens: []Token{{Kind: KindWord, Data: "l1"}}, Indent: 1},
		{Tokens: []Token{{Kind: KindWord, Data: "l2"}}, Indent: 1},
		{Tokens: []Token{{Kind: KindWord, Data: "l3"}}, Indent: 2},
		{Tokens: []Token{{Kind: KindWord, Data: "l4"}}, Indent: 0},
	}

	tree := NestLines(flat)

	if len(tree) != 2 {
		t.Fatalf("got %d top-level lines, want 2", len(tree))
	}

	l0, l4 := tree[0], tree[1]

	if l4 != flat[4] || l4.Parent != nil {
		t.Errorf("line 4 should be a top-level sibling of line 0")
	}

	if len(l0.Lines) != 2 || l0.Lines[0] != flat[1] || l0.Lines[1] != flat[2] {
		t.Fatalf("line 0 children = %v, want lines 1 and 2", l0.Lines)
	}

	if len(flat[1].Lines) != 0 {
		t.Errorf("line 1 should have no children")
	}

	if len(flat[2].Lines) != 1 || flat[2].Lines[0] != flat[3] {
		t.Errorf("line 2 children = %v, want line 3", flat[2].Lines)
	}

	if flat[3].Parent != flat[2] || flat[2].Parent != l0 {
		t.Errorf("parent links not set")
	}
}

func TestNestLines_BlankLineEndsBlock(t *testing.T) {
	tree := NestLines(Lex([]byte("f\n  a\n\n  b\n")))

	if len(tree) != 2 {
		t.Fatalf("got %d top-level lines, want 2", len(tree))
	}

	if len(tree[0].Lines) != 1 {
		t.Errorf("f has %d children, want 1", len(tree[0].Lines))
	}

	if !(len(tree[1].Tokens) == 0 && len(tree[1].Lines) == 1) {
		t.Errorf("blank line should own the trailing block")
	}
}

func dump(t *testing.T, lines []*Line) string {
	t.Helper()

	var sb strings.Builder
	if err := Dump(&sb, lines); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	return sb.String()
}

func TestStripComments(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "trailing comment",
			src:  "x = 1 # one\n",
			want: "Word(x) Equals UInt(1)\n",
		},
		{
			name: "comment line removed",
			src:  "# header\nx\n",
			want: "Word(x)\n",
		},
		{
			name: "comment line with block removed whole",
			src:  "# old\n  x = 1\ny\n",
			want: "Word(y)\n",
		},
		{
			name: "trailing comment keeps block",
			src:  "ns # members\n  x = 1\n",
			want: "Word(ns)\n  Word(x) Equals UInt(1)\n",
		},
		{
			name: "comment inside block",
			src:  "ns\n  # note\n  x = 1\n",
			want: "Word(ns)\n  Word(x) Equals UInt(1)\n",
		},
		{
			name: "blank runs collapse",
			src:  "a\n\n\n\nb\n",
			want: "Word(a)\n.\nWord(b)\n",
		},
		{
			name: "comment between blanks",
			src:  "a\n\n# c\n\nb\n",
			want: "Word(a)\n.\nWord(b)\n",
		},
		{
			name: "comment in open group",
			src:  "f(1 # x\n",
			want: "Word(f) CircleBegin[UInt(1)]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dump(t, Parse([]byte(tt.src))); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}
