package repl

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/rts/lang"
	"github.com/ardnew/rts/log"
)

const (
	evalPrompt = "➜ "
	contPrompt = "· "
	ctrlPrompt = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help        Print this cruft
  list        List visible bindings and their values
  builtins    List builtin functions
  reset NAME  Delete a binding
  edit        Edit the current block in $EDITOR and run it
  clear       Clear screen
  quit        Exit REPL

Usage:
  Type a statement to run it; the value of an expression is printed
  A declaration or conditional line opens a block: type its indented
  body and finish with an empty line
  Completions appear as you type; Tab / Shift-Tab cycle through them
  Up/Down browse history; Ctrl+C interrupts a running script
  Press Ctrl+C on an empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// evalMsg carries the outcome of running input in the background.
type evalMsg struct {
	value  lang.Token
	output string
	err    error
}

// editMsg is sent when the editor exits.
type editMsg struct {
	source string
	err    error
}

// Builder returns an interpreter configured with opts.
type Builder func(opts ...lang.Option) (*lang.Interpreter, error)

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	in           *lang.Interpreter
	out          *bytes.Buffer
	input        textinput.Model
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches
	wordStart    int
	wordEnd      int
	suggIdx      int
	tabActive    bool
	preTabText   string
	preTabCursor int
	block        []string // lines of an unfinished block
	width        int
	running      bool
	interrupted  bool
	quitting     bool
	code         int
	mode         inputMode
	evalText     string
	ctrlText     string
}

// Run starts an interactive session. It returns the code passed to exit
// by the session's script, or zero.
func Run(
	ctx context.Context,
	build Builder,
	cacheDir string,
	logger log.Logger,
) (code int, err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var out bytes.Buffer

	in, err := build(
		lang.WithOutput(&out),
		lang.WithErrOutput(&out),
		lang.WithInput(strings.NewReader("")),
		lang.WithInteractive(false),
	)
	if err != nil {
		return 0, err
	}

	history := NewHistory("")
	if cacheDir != "" {
		history = NewHistory(filepath.Join(cacheDir, baseHistory))
	}

	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("session", in.Session()),
		slog.Int("history", history.Len()),
	)

	m := newModel(ctx, in, &out, history, logger)

	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if fm, ok := final.(model); ok {
		code = fm.code
	}

	return code, err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	in *lang.Interpreter,
	out *bytes.Buffer,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		in:         in,
		out:        out,
		input:      ti,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case evalMsg:
		return m.finish(msg)

	case editMsg:
		if msg.err != nil {
			return m, tea.Println(errorStyle.Render("edit: " + msg.err.Error()))
		}

		m.block = nil
		m.setPrompt()

		if strings.TrimSpace(msg.source) == "" {
			return m, tea.Println(hintStyle.Render("edit cancelled"))
		}

		return m.evaluate(msg.source)
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()
	call := detectFunctionCall(input, m.input.Position())

	switch {
	case m.running:
		b.WriteString(hintStyle.Render("running (ctrl+c to interrupt)"))

	case m.historyIdx < m.history.Len():
		b.WriteString(hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())))

	case len(m.block) > 0 && strings.TrimSpace(input) == "":
		b.WriteString(hintStyle.Render("empty line runs the block"))

	case strings.TrimSpace(input) == "":
		if m.mode == modeEval {
			b.WriteString(hintStyle.Render("Type a statement or press Esc for commands"))
		} else {
			b.WriteString(hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ")))
		}

	case call.inCall && m.mode == modeEval && !m.tabActive:
		if sig, params := signature(m.in, call.name); sig != "" {
			b.WriteString(renderSignatureHint(sig, params, call.argIndex))
		} else {
			b.WriteString(renderCandidateBar(m.matches, m.selected(), m.width))
		}

	default:
		b.WriteString(renderCandidateBar(m.matches, m.selected(), m.width))
	}

	b.WriteString("\n")

	return b.String()
}

// selected returns the index of the highlighted candidate, or -1.
func (m model) selected() int {
	if !m.tabActive {
		return -1
	}

	return m.suggIdx
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.running {
		if msg.Type == tea.KeyCtrlC {
			m.interrupted = true
			m.in.Halt()
		}

		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" && len(m.block) == 0 {
			m.quitting = true

			return m, tea.Quit
		}

		m.block = nil
		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		m.setPrompt()
		m.refreshMatches(false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabActive && len(m.matches) > 0 {
			m.tabActive = false
			m.refreshMatches(true)

			return m, nil
		}

		return m.executeInput()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.browse(-1), nil

	case tea.KeyDown:
		return m.browse(1), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			m.refreshMatches(false)

			return m, nil
		}

		return m.toggleMode(), nil
	}

	if msg.Type == tea.KeyRunes && m.tabActive && msg.String() == " " {
		m.tabActive = false
	} else if msg.Type != tea.KeyRunes {
		m.tabActive = false
	}

	var cmd tea.Cmd

	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refreshMatches(msg.Type == tea.KeyRunes)

	return m, cmd
}

// cycle moves the highlighted candidate by step and writes it into the
// input. A sole candidate is completed at once.
func (m model) cycle(step int) model {
	if len(m.matches) == 0 {
		return m
	}

	if len(m.matches) == 1 {
		m.replaceWord(m.matches[0].Str)
		m.tabActive = false
		m.matches = nil

		return m
	}

	if !m.tabActive {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = -1
		if step < 0 {
			m.suggIdx = 0
		}
	}

	m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	m.replaceWord(m.matches[m.suggIdx].Str)

	return m
}

// replaceWord replaces the word being completed with s.
func (m *model) replaceWord(s string) {
	input := m.input.Value()

	m.input.SetValue(input[:m.wordStart] + s + input[m.wordEnd:])
	m.input.SetCursor(m.wordStart + len(s))
	m.wordEnd = m.wordStart + len(s)
}

// refreshMatches recomputes the candidates. With confirm set, a word that
// already equals its sole candidate is accepted.
func (m *model) refreshMatches(confirm bool) {
	if m.tabActive {
		return
	}

	m.matches, m.wordStart, m.wordEnd = m.computeMatches()
	m.suggIdx = -1

	if confirm && len(m.matches) == 1 &&
		m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.matches = nil
	}
}

// browse steps through history by step, switching to the entry's mode.
func (m model) browse(step int) model {
	i := m.historyIdx + step
	if i < 0 {
		return m
	}

	m.historyIdx = min(i, m.history.Len())

	entry, err := m.history.Entry(m.historyIdx)
	if err != nil {
		m.input.SetValue("")
		m.refreshMatches(false)

		return m
	}

	if entry.Mode != m.mode {
		m = m.toggleMode()
	}

	m.input.SetValue(entry.Line)
	m.input.SetCursor(len(entry.Line))
	m.refreshMatches(false)

	return m
}

func (m model) executeInput() (model, tea.Cmd) {
	raw := strings.TrimRight(m.input.Value(), " \t")
	m.input.SetValue("")
	m.matches = nil

	if m.mode == modeCtrl {
		line := strings.TrimSpace(raw)
		if line == "" {
			return m, nil
		}

		m.addHistory(line, modeCtrl)

		return m.executeCommand(line)
	}

	if len(m.block) > 0 {
		if strings.TrimSpace(raw) == "" {
			src := strings.Join(m.block, "\n")
			m.block = nil
			m.setPrompt()

			return m.evaluate(src)
		}

		m.block = append(m.block, raw)
		m.addHistory(raw, modeEval)
		m.input.SetValue(indentOf(raw))
		m.input.SetCursor(len(m.input.Value()))

		return m, tea.Println(formatLine(contPrompt, promptStyle, raw))
	}

	if strings.TrimSpace(raw) == "" {
		return m, nil
	}

	m.addHistory(raw, modeEval)

	echo := tea.Println(formatLine(evalPrompt, promptStyle, raw))

	if m.opensBlock(raw) {
		m.block = []string{raw}
		m.setPrompt()
		m.input.SetValue(indentOf(raw) + "  ")
		m.input.SetCursor(len(m.input.Value()))

		return m, echo
	}

	m, run := m.evaluate(raw)

	return m, tea.Sequence(echo, run)
}

func (m *model) addHistory(line string, mode inputMode) {
	if err := m.history.Add(line, mode); err != nil {
		m.logger.DebugContext(m.ctxFunc(), "history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()
}

// opensBlock reports whether line starts a block that needs an indented
// body: a conditional, a declaration with a result type, or a new name
// optionally followed by a parameter list.
func (m model) opensBlock(line string) bool {
	lines := lang.Lex([]byte(line))
	if len(lines) != 1 || len(lines[0].Tokens) == 0 {
		return false
	}

	toks := lines[0].Tokens

	switch toks[0].Kind {
	case lang.KindQuestion:
		return true
	case lang.KindWord:
	default:
		return false
	}

	for _, t := range toks[1:] {
		if t.Kind == lang.KindPointer {
			return true
		}

		if t.Kind != lang.KindCircleBegin {
			return false
		}
	}

	name := toks[0].Data
	if _, ok := builtinSignature(name); ok {
		return false
	}

	_, bound := m.in.Lookup(name)

	return !bound
}

// evaluate runs src in the background.
func (m model) evaluate(src string) (model, tea.Cmd) {
	m.running = true

	ctx, in, out, logger := m.ctxFunc(), m.in, m.out, m.logger

	return m, func() tea.Msg {
		logger.TraceContext(ctx, "repl eval", slog.String("input", src))

		v, err := in.Eval(ctx, src)
		msg := evalMsg{value: v, output: out.String(), err: err}
		out.Reset()

		return msg
	}
}

// finish prints the outcome of a background run.
func (m model) finish(msg evalMsg) (model, tea.Cmd) {
	m.running = false

	var cmds []tea.Cmd

	if s := strings.TrimRight(msg.output, "\n"); s != "" {
		cmds = append(cmds, tea.Println(s))
	}

	switch {
	case m.interrupted:
		m.interrupted = false
		m.in.Resume()
		cmds = append(cmds, tea.Println(hintStyle.Render("interrupted")))

	case m.in.Halted():
		m.code = m.in.ExitCode()
		m.quitting = true
		cmds = append(cmds,
			tea.Println(hintStyle.Render("exit "+strconv.Itoa(m.code))),
			tea.Quit,
		)

	case msg.err != nil:
		cmds = append(cmds, tea.Println(errorStyle.Render("error: "+msg.err.Error())))

	case !msg.value.IsNone():
		cmds = append(cmds, tea.Println(resultStyle.Render(lang.Display(msg.value))))
	}

	return m, tea.Sequence(cmds...)
}

func (m model) executeCommand(line string) (model, tea.Cmd) {
	parts := strings.Fields(line)
	name, args := parts[0], parts[1:]

	echo := tea.Println(formatLine(ctrlPrompt, ctrlPromptStyle, line))

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", name),
		slog.Any("args", args),
	)

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(m.listBindings()))

	case "b", "builtins":
		return m, tea.Sequence(echo, tea.Println(listBuiltins()))

	case "r", "reset":
		var out []string

		for _, a := range args {
			if m.in.Reset(a) {
				out = append(out, resultStyle.Render("deleted "+a))
			} else {
				out = append(out, errorStyle.Render("no binding "+a))
			}
		}

		return m, tea.Sequence(echo, tea.Println(strings.Join(out, "\n")))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		cmd := &editCommand{
			ctx:    m.ctxFunc(),
			draft:  strings.Join(m.block, "\n"),
			logger: m.logger,
		}

		return m, tea.Sequence(echo, tea.Exec(cmd, func(err error) tea.Msg {
			return editMsg{source: cmd.saved, err: err}
		}))
	}

	return m, tea.Println(errorStyle.Render("Unknown command: " + name + " (try 'help')"))
}

func (m model) listBindings() string {
	var b strings.Builder

	for _, name := range m.in.Names() {
		v, _ := m.in.Lookup(name)
		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(preview(v)))
	}

	return b.String()
}

func listBuiltins() string {
	var b strings.Builder

	for _, bi := range lang.Builtins() {
		fmt.Fprintf(&b, "  %-20s %s\n", bi.Signature, hintStyle.Render(bi.Doc))
	}

	return b.String()
}

// preview returns the printed form of v shortened to one line.
func preview(v lang.Token) string {
	const limit = 40

	s := lang.Display(v)
	if v.Kind.IsText() {
		s = strconv.Quote(s)
	}

	if len(s) > limit {
		s = s[:limit-3] + "..."
	}

	return s
}

// toggleMode switches between eval and control modes, keeping the text of
// each.
func (m model) toggleMode() model {
	if m.mode == modeEval {
		m.evalText = m.input.Value()
		m.mode = modeCtrl
		m.input.SetValue(m.ctrlText)
	} else {
		m.ctrlText = m.input.Value()
		m.mode = modeEval
		m.input.SetValue(m.evalText)
	}

	m.input.SetCursor(len(m.input.Value()))
	m.setPrompt()
	m.refreshMatches(false)

	return m
}

func (m *model) setPrompt() {
	switch {
	case m.mode == modeCtrl:
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
	case len(m.block) > 0:
		m.input.Prompt = promptStyle.Render(contPrompt)
	default:
		m.input.Prompt = promptStyle.Render(evalPrompt)
	}
}

// formatLine formats an echoed input line.
func formatLine(prompt string, style lipgloss.Style, line string) string {
	return style.Render(prompt) + inputStyle.Render(line)
}

// indentOf returns the leading spaces of line.
func indentOf(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " "))]
}
