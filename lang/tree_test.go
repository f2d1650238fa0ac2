package lang

import (
	"sync"
	"testing"
)

func TestTree_CreateAndLookup(t *testing.T) {
	tree, root := NewTree("")

	ns := tree.Create(root, Spec{Name: "ns", Flags: FlagBlock})
	x := tree.Create(root, Spec{Name: "x"})
	inner := tree.Create(ns, Spec{Name: "inner", Flags: FlagBlock})

	tree.SetValue(x, Token{Kind: KindUInt, Data: "1"})

	if got := tree.Lookup(inner, "x"); got != x {
		t.Errorf("Lookup from nested scope = %v, want %v", got, x)
	}

	if got := tree.Lookup(inner, "missing"); got.Valid() {
		t.Errorf("Lookup of missing name returned %v", got)
	}

	if got := tree.Path(inner); got != "ns.inner" {
		t.Errorf("Path = %q, want ns.inner", got)
	}

	if got := tree.Len(); got != 4 {
		t.Errorf("Len = %d, want 4", got)
	}
}

func TestTree_Shadowing(t *testing.T) {
	tree, root := NewTree("")

	outer := tree.Create(root, Spec{Name: "x"})
	tree.SetValue(outer, Token{Kind: KindUInt, Data: "1"})

	ns := tree.Create(root, Spec{Name: "ns", Flags: FlagBlock})
	shadow := tree.Create(ns, Spec{Name: "x"})
	tree.SetValue(shadow, Token{Kind: KindUInt, Data: "2"})

	if got := tree.Value(tree.Lookup(ns, "x")); got.Data != "2" {
		t.Errorf("inner x = %v, want 2", got)
	}

	if got := tree.Value(tree.Lookup(root, "x")); got.Data != "1" {
		t.Errorf("outer x = %v, want 1", got)
	}
}

func TestTree_CreateReplacesSibling(t *testing.T) {
	tree, root := NewTree("")

	old := tree.Create(root, Spec{Name: "a", Flags: FlagBlock})
	child := tree.Create(old, Spec{Name: "c"})
	repl := tree.Create(root, Spec{Name: "a"})

	if tree.Exists(old) || tree.Exists(child) {
		t.Errorf("replaced structure and its subtree should be deleted")
	}

	if got := tree.Child(root, "a"); got != repl {
		t.Errorf("Child = %v, want replacement %v", got, repl)
	}

	if n := len(tree.Children(root)); n != 1 {
		t.Errorf("root has %d children, want 1", n)
	}
}

func TestTree_TransientHidden(t *testing.T) {
	tree, root := NewTree("")

	f := tree.Create(root, Spec{Name: "f", Flags: FlagBlock | FlagCallable})
	frame1 := tree.Create(f, Spec{Name: "f", Flags: FlagTransient})
	frame2 := tree.Create(f, Spec{Name: "f", Flags: FlagTransient})

	if !tree.Exists(frame1) || !tree.Exists(frame2) {
		t.Fatalf("transient siblings must not replace each other")
	}

	if got := tree.Lookup(frame2, "f"); got != f {
		t.Errorf("Lookup from frame = %v, want callable %v", got, f)
	}
}

func TestTree_DeleteInvalidatesHandles(t *testing.T) {
	tree, root := NewTree("")

	a := tree.Create(root, Spec{Name: "a"})
	tree.Delete(a)

	if tree.Exists(a) {
		t.Fatalf("deleted handle still exists")
	}

	b := tree.Create(root, Spec{Name: "b"})
	tree.SetValue(b, String("b"))

	if a.index != b.index {
		t.Fatalf("slot not reused: a=%v b=%v", a, b)
	}

	if got := tree.Name(a); got != "" {
		t.Errorf("stale handle resolved to %q", got)
	}

	if got := tree.Value(a); !got.IsNone() {
		t.Errorf("stale handle value = %v", got)
	}

	if tree.Len() != 2 {
		t.Errorf("Len = %d, want 2", tree.Len())
	}
}

func TestTree_Values(t *testing.T) {
	tree, root := NewTree("")
	h := tree.Create(root, Spec{Name: "v"})

	if got := tree.Value(h); !got.IsNone() {
		t.Errorf("unset value = %v, want None", got)
	}

	tree.SetValue(h, List(String("a"), String("b")))

	if got := len(tree.Body(h)); got != 2 {
		t.Errorf("list body has %d lines, want 2", got)
	}

	got := tree.Value(h)
	if got.Kind != KindList || len(got.Tokens) != 2 || got.Tokens[1].Data != "b" {
		t.Errorf("list value = %v", got)
	}

	got.Tokens[0].Data = "changed"
	if tree.Value(h).Tokens[0].Data != "a" {
		t.Errorf("Value must return a copy")
	}

	tree.SetValue(h, List(String("only")))
	if got := tree.Value(h); got.Kind != KindList || len(got.Tokens) != 1 {
		t.Errorf("single-element list = %v", got)
	}
}

func TestTree_ResultAndCursor(t *testing.T) {
	tree, root := NewTree("")
	h := tree.Create(root, Spec{
		Name:   "f",
		Flags:  FlagBlock | FlagCallable,
		Result: &Token{Kind: KindInt, Tag: true},
	})

	if v := tree.Value(h); !v.IsNone() {
		t.Errorf("unassigned result value = %v, want None", v)
	}

	tree.SetResult(h, Token{Kind: KindInt, Data: "-3"})

	if v, ok := tree.Result(h); !ok || v.Data != "-3" {
		t.Errorf("Result = %v %v", v, ok)
	}

	tree.SetCursor(h, 4)
	if tree.Cursor(h) != 4 {
		t.Errorf("Cursor = %d, want 4", tree.Cursor(h))
	}

	tree.SetBody(h, nil)
	if tree.Cursor(h) != 0 {
		t.Errorf("SetBody should rewind the cursor")
	}
}

func TestTree_ConcurrentReaders(t *testing.T) {
	tree, root := NewTree("")
	ns := tree.Create(root, Spec{Name: "ns", Flags: FlagBlock})

	for _, name := range []string{"a", "b", "c"} {
		h := tree.Create(ns, Spec{Name: name})
		tree.SetValue(h, String(name))
	}

	var wg sync.WaitGroup

	for range 8 {
		wg.Go(func() {
			for _, name := range []string{"a", "b", "c"} {
				if v := tree.Value(tree.Lookup(ns, name)); v.Data != name {
					t.Errorf("Lookup(%q) = %v", name, v)
				}
			}
		})
	}

	wg.Wait()
}
