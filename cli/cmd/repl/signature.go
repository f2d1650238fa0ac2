package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/rts/lang"
)

// Signature hint styles.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall describes the call whose argument list holds the cursor.
type functionCall struct {
	name     string // callee, possibly a link such as "a.f"
	argIndex int    // 0-based index of the argument at the cursor
	inCall   bool
}

// detectFunctionCall finds the innermost unclosed call before cursor.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	open, depth := -1, 0

	for i := cursor - 1; i >= 0 && open < 0; i-- {
		switch input[i] {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i
			}

			depth--
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if r != '.' && isWordBoundary(r) {
			break
		}

		start -= size
	}

	name := input[start:open]
	if name == "" {
		return functionCall{}
	}

	arg := 0
	depth = 0

	for i := open + 1; i < cursor; i++ {
		switch input[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				arg++
			}
		}
	}

	return functionCall{name: name, argIndex: arg, inCall: true}
}

// builtinSignature returns the signature of the builtin named name.
func builtinSignature(name string) (string, bool) {
	for _, b := range lang.Builtins() {
		if b.Name == name {
			return b.Signature, true
		}
	}

	return "", false
}

// signature returns the signature of the builtin or user callable named by
// name, and its parameter names. A trailing "..." parameter of a builtin
// is folded into the one before it.
func signature(in *lang.Interpreter, name string) (string, []string) {
	if sig, ok := builtinSignature(name); ok {
		open, end := strings.IndexByte(sig, '('), strings.LastIndexByte(sig, ')')
		if open < 0 || end <= open+1 {
			return sig, nil
		}

		params := strings.Split(sig[open+1:end], ", ")
		if n := len(params); n > 1 && params[n-1] == "..." {
			params = params[:n-1]
			params[n-2] = "..." + params[n-2]
		}

		return sig, params
	}

	tree, h := in.Tree()

	for i, seg := range strings.Split(name, ".") {
		if i == 0 {
			h = tree.Lookup(h, seg)
		} else {
			h = tree.Child(h, seg)
		}

		if !h.Valid() {
			return "", nil
		}
	}

	if tree.Flags(h)&lang.FlagCallable == 0 {
		return "", nil
	}

	var params []string
	for _, p := range tree.Params(h) {
		param := tree.Name(p)
		if typ := tree.Type(p); typ != lang.KindNone {
			param += ": " + typ.String()
		}

		params = append(params, param)
	}

	sig := name + "(" + strings.Join(params, ", ") + ")"
	if r, ok := tree.Result(h); ok && r.Tag {
		sig += " -> " + r.Kind.String()
	}

	return sig, params
}

// renderSignatureHint renders sig with the parameter at arg highlighted.
// A variadic parameter stays highlighted for every argument past it.
func renderSignatureHint(sig string, params []string, arg int) string {
	open := strings.IndexByte(sig, '(')
	if open < 0 || len(params) == 0 {
		return signatureStyle.Render(sig)
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(sig[:open]))
	b.WriteString(signatureStyle.Render("("))

	for i, p := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		variadic := strings.HasPrefix(p, "...")
		if arg == i || (variadic && arg > i) {
			b.WriteString(currentParamStyle.Render(p))
		} else {
			b.WriteString(signatureStyle.Render(p))
		}
	}

	b.WriteString(signatureStyle.Render(sig[strings.LastIndexByte(sig, ')'):]))

	return b.String()
}
