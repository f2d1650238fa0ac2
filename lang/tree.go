package lang

import (
	"slices"
	"strings"
	"sync"
)

// Mutability tags a structure as reassignable or not.
type Mutability uint8

// Mutability tags.
const (
	Variable Mutability = iota
	Constant
)

// String returns the marker used in scripts for m.
func (m Mutability) String() string {
	if m == Constant {
		return "~~"
	}

	return "~"
}

// Handle addresses a structure in a [Tree]. The zero Handle addresses
// nothing, and a handle to a deleted structure never addresses its slot's
// next occupant.
type Handle struct {
	index uint32
	gen   uint32
}

// Valid reports whether h was ever issued by a tree.
func (h Handle) Valid() bool { return h.gen != 0 }

// Flags describe the role of a structure.
type Flags uint8

// Structure flags.
const (
	// FlagBlock marks a namespace or callable whose body is executable.
	FlagBlock Flags = 1 << iota
	// FlagCallable marks a block that runs only when invoked.
	FlagCallable
	// FlagParam marks a declared parameter of a callable.
	FlagParam
	// FlagTransient marks a call frame or conditional block. Transient
	// structures are invisible to name lookup and are deleted after use.
	FlagTransient
	// FlagList marks a leaf whose body holds one element per line.
	FlagList
)

// Spec describes a structure to create.
type Spec struct {
	Name   string
	Mut    Mutability
	Type   Kind // declared type, KindNone if inferred
	Flags  Flags
	Body   []*Line
	Result *Token // result slot, present on callables declaring a type
}

type node struct {
	mu sync.RWMutex

	gen      uint32
	live     bool
	name     string
	mut      Mutability
	typ      Kind
	flags    Flags
	body     []*Line
	result   *Token
	children []Handle
	parent   Handle
	cursor   int
}

// Tree is an arena of structures addressed by [Handle]. Parent links are
// plain handles, so a structure is owned only by the child list of its
// parent.
//
// Every accessor locks a single node, copies out what it needs and unlocks
// before touching another node, so no call path ever holds two node locks.
type Tree struct {
	mu    sync.RWMutex
	nodes []*node
	free  []uint32
	live  int
}

// NewTree returns a tree holding only a root structure with the given name.
func NewTree(root string) (*Tree, Handle) {
	t := &Tree{}
	h := t.alloc(Spec{Name: root, Flags: FlagBlock}, Handle{})

	return t, h
}

func (t *Tree) alloc(spec Spec, parent Handle) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	var idx uint32

	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.nodes))
		t.nodes = append(t.nodes, &node{})
	}

	n := t.nodes[idx]

	n.mu.Lock()
	n.gen++
	n.live = true
	n.name = spec.Name
	n.mut = spec.Mut
	n.typ = spec.Type
	n.flags = spec.Flags
	n.body = spec.Body
	n.result = spec.Result
	n.children = nil
	n.parent = parent
	n.cursor = 0
	h := Handle{index: idx, gen: n.gen}
	n.mu.Unlock()

	t.live++

	return h
}

func (t *Tree) node(h Handle) *node {
	if !h.Valid() {
		return nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if int(h.index) >= len(t.nodes) {
		return nil
	}

	return t.nodes[h.index]
}

// read runs fn with the read lock of the structure at h held. It reports
// false if h does not address a live structure.
func (t *Tree) read(h Handle, fn func(n *node)) bool {
	n := t.node(h)
	if n == nil {
		return false
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	if !n.live || n.gen != h.gen {
		return false
	}

	fn(n)

	return true
}

// write runs fn with the write lock of the structure at h held.
func (t *Tree) write(h Handle, fn func(n *node)) bool {
	n := t.node(h)
	if n == nil {
		return false
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.live || n.gen != h.gen {
		return false
	}

	fn(n)

	return true
}

// Len returns the number of live structures.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.live
}

// Exists reports whether h addresses a live structure.
func (t *Tree) Exists(h Handle) bool {
	return t.read(h, func(*node) {})
}

// Create adds a structure under parent and returns its handle.
//
// A named, non-transient structure replaces any visible sibling with the
// same name, which is deleted with its subtree.
func (t *Tree) Create(parent Handle, spec Spec) Handle {
	if !t.Exists(parent) {
		return Handle{}
	}

	if spec.Flags&FlagTransient == 0 && spec.Name != "" {
		if old := t.Child(parent, spec.Name); old.Valid() {
			t.Delete(old)
		}
	}

	h := t.alloc(spec, parent)

	t.write(parent, func(n *node) { n.children = append(n.children, h) })

	return h
}

// Delete removes the structure at h and its subtree from the tree.
func (t *Tree) Delete(h Handle) {
	var parent Handle

	if !t.read(h, func(n *node) { parent = n.parent }) {
		return
	}

	t.write(parent, func(n *node) {
		if i := slices.Index(n.children, h); i >= 0 {
			n.children = slices.Delete(n.children, i, i+1)
		}
	})

	t.release(h)
}

func (t *Tree) release(h Handle) {
	var children []Handle

	ok := t.write(h, func(n *node) {
		children = n.children
		n.live = false
		n.children = nil
		n.body = nil
		n.result = nil
	})
	if !ok {
		return
	}

	for _, c := range children {
		t.release(c)
	}

	t.mu.Lock()
	t.free = append(t.free, h.index)
	t.live--
	t.mu.Unlock()
}

// Child returns the visible child of h named name.
func (t *Tree) Child(h Handle, name string) Handle {
	var found Handle

	for _, c := range t.Children(h) {
		t.read(c, func(n *node) {
			if n.name == name && n.flags&FlagTransient == 0 {
				found = c
			}
		})

		if found.Valid() {
			break
		}
	}

	return found
}

// Lookup resolves name from scope h: the children of h are searched, then
// those of each ancestor up to the root.
func (t *Tree) Lookup(h Handle, name string) Handle {
	for h.Valid() {
		if c := t.Child(h, name); c.Valid() {
			return c
		}

		h = t.Parent(h)
	}

	return Handle{}
}

// Children returns a copy of the child handles of h in creation order.
func (t *Tree) Children(h Handle) []Handle {
	var out []Handle

	t.read(h, func(n *node) { out = slices.Clone(n.children) })

	return out
}

// Params returns the parameters declared by the callable at h, in order.
func (t *Tree) Params(h Handle) []Handle {
	var out []Handle

	for _, c := range t.Children(h) {
		if t.Flags(c)&FlagParam != 0 {
			out = append(out, c)
		}
	}

	return out
}

// Parent returns the enclosing structure of h.
func (t *Tree) Parent(h Handle) Handle {
	var p Handle

	t.read(h, func(n *node) { p = n.parent })

	return p
}

// Name returns the name of h.
func (t *Tree) Name(h Handle) string {
	var s string

	t.read(h, func(n *node) { s = n.name })

	return s
}

// Mutability returns the mutability tag of h.
func (t *Tree) Mutability(h Handle) Mutability {
	var m Mutability

	t.read(h, func(n *node) { m = n.mut })

	return m
}

// Type returns the declared type of h.
func (t *Tree) Type(h Handle) Kind {
	var k Kind

	t.read(h, func(n *node) { k = n.typ })

	return k
}

// Flags returns the flags of h.
func (t *Tree) Flags(h Handle) Flags {
	var f Flags

	t.read(h, func(n *node) { f = n.flags })

	return f
}

// Declare updates the mutability and declared type of h.
func (t *Tree) Declare(h Handle, mut Mutability, typ Kind) {
	t.write(h, func(n *node) {
		n.mut = mut
		n.typ = typ
	})
}

// Body returns the body lines of h.
func (t *Tree) Body(h Handle) []*Line {
	var body []*Line

	t.read(h, func(n *node) { body = n.body })

	return body
}

// SetBody replaces the body of h and rewinds its cursor.
func (t *Tree) SetBody(h Handle, body []*Line) {
	t.write(h, func(n *node) {
		n.body = body
		n.cursor = 0
	})
}

// Value returns the value bound to the leaf at h. A list leaf yields a List
// token of its elements and a block yields its result slot, if assigned.
func (t *Tree) Value(h Handle) Token {
	var v Token

	t.read(h, func(n *node) {
		switch {
		case n.flags&FlagBlock != 0:
			if n.result != nil && !n.result.Tag {
				v = n.result.Clone()
			}

		case n.flags&FlagList != 0:
			elems := make([]Token, 0, len(n.body))
			for _, l := range n.body {
				if len(l.Tokens) > 0 {
					elems = append(elems, l.Tokens[0].Clone())
				}
			}

			v = List(elems...)

		case len(n.body) > 0 && len(n.body[0].Tokens) > 0:
			v = n.body[0].Tokens[0].Clone()
		}
	})

	return v
}

// SetValue binds v to h, turning h into a leaf. A List value is stored as
// one body line per element.
func (t *Tree) SetValue(h Handle, v Token) {
	var body []*Line

	if v.Kind == KindList && !v.Tag {
		body = make([]*Line, len(v.Tokens))
		for i, e := range v.Tokens {
			body[i] = &Line{Tokens: []Token{e.Clone()}}
		}
	} else {
		body = []*Line{{Tokens: []Token{v.Clone()}}}
	}

	t.write(h, func(n *node) {
		n.flags &^= FlagBlock | FlagCallable | FlagList
		if v.Kind == KindList && !v.Tag {
			n.flags |= FlagList
		}

		n.body = body
		n.result = nil
		n.cursor = 0
	})
}

// Result returns the result slot of h. The slot holds a type tag until a
// value is assigned to it.
func (t *Tree) Result(h Handle) (Token, bool) {
	var (
		v  Token
		ok bool
	)

	t.read(h, func(n *node) {
		if n.result != nil {
			v, ok = n.result.Clone(), true
		}
	})

	return v, ok
}

// SetResult stores v in the result slot of h, creating the slot if absent.
func (t *Tree) SetResult(h Handle, v Token) {
	v = v.Clone()

	t.write(h, func(n *node) { n.result = &v })
}

// Cursor returns the index of the next body line h executes.
func (t *Tree) Cursor(h Handle) int {
	var c int

	t.read(h, func(n *node) { c = n.cursor })

	return c
}

// SetCursor moves the execution cursor of h.
func (t *Tree) SetCursor(h Handle, c int) {
	t.write(h, func(n *node) { n.cursor = c })
}

// Path returns the dotted names from the root to h, excluding the root.
func (t *Tree) Path(h Handle) string {
	var names []string

	for h.Valid() {
		var (
			name   string
			parent Handle
		)

		t.read(h, func(n *node) { name, parent = n.name, n.parent })

		if parent.Valid() {
			names = append(names, name)
		}

		h = parent
	}

	slices.Reverse(names)

	return strings.Join(names, ".")
}
