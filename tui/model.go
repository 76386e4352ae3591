// Package tui is the interactive terminal front end: type instructions, see
// the executed statement and the resulting table, and export when done.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/spektr-org/wrangle/executor"
	"github.com/spektr-org/wrangle/recipe"
	"github.com/spektr-org/wrangle/session"
	"github.com/spektr-org/wrangle/table"
)

const (
	defaultPreviewRows = 10
	headerHeight       = 2
	footerHeight       = 5
)

// Config holds TUI configuration.
type Config struct {
	Orchestrator *session.Orchestrator
	File         string // loaded before the first prompt when set
	PreviewRows  int
}

// Model is the Bubbletea model for an interactive session.
type Model struct {
	width   int
	height  int
	loading bool

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	orch        *session.Orchestrator
	file        string
	previewRows int
	entries     []entry
	status      string
}

// New creates the model. cfg.Orchestrator must be set.
func New(cfg Config) Model {
	ti := textinput.New()
	ti.Placeholder = "Describe a change, e.g. remove rows where age is missing (/help for commands)"
	ti.CharLimit = 2000
	ti.Width = 76
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	rows := cfg.PreviewRows
	if rows <= 0 {
		rows = defaultPreviewRows
	}

	// Letters belong to the input line; the transcript only scrolls by page.
	vp := viewport.New(80, 20)
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
	}

	m := Model{
		input:       ti,
		viewport:    vp,
		spinner:     sp,
		orch:        cfg.Orchestrator,
		file:        cfg.File,
		previewRows: rows,
	}
	if cfg.File == "" {
		m.push(entryInfo, session.HowItWorks)
		m.push(entryInfo, session.MsgNoDataset+" Use /load <path>.")
	}
	return m
}

// Init loads the configured file, if any.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.file != "" {
		cmds = append(cmds, m.loadFile(m.file))
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			return m.submit(text)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 3)
		m.input.Width = max(msg.Width-6, 10)
		m.refresh()

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case applyDoneMsg:
		m.loading = false
		m.showApply(msg.outcome, msg.err)

	case loadDoneMsg:
		m.loading = false
		m.showLoad(msg)
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// ============================================================================
// INPUT
// ============================================================================

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	if text == "" {
		m.push(entryWarning, session.MsgEmpty)
		return m, nil
	}
	m.push(entryUser, "> "+text)

	if !strings.HasPrefix(text, "/") {
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.applyInstruction(text))
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(name) {
	case "quit", "exit", "q":
		return m, tea.Quit
	case "help":
		m.push(entryInfo, session.HowItWorks+"\n\n"+commandHelp)
	case "load":
		if arg == "" {
			m.push(entryWarning, "usage: /load <path>")
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.loadFile(arg))
	case "code":
		if arg == "" {
			m.push(entryWarning, "usage: /code <statement>")
			return m, nil
		}
		out, err := m.orch.ApplyCode("", arg)
		m.showApply(out, err)
	case "reset":
		msg, err := m.orch.Reset()
		if err != nil {
			m.showError(err)
			return m, nil
		}
		m.push(entrySuccess, msg)
		m.showWorking()
	case "log":
		log, err := m.orch.Log()
		if err != nil {
			m.showError(err)
			return m, nil
		}
		m.push(entryTable, RenderLog(log))
	case "summary":
		sum, err := m.orch.Summary()
		if err != nil {
			m.showError(err)
			return m, nil
		}
		m.push(entryTable, RenderSummary(sum))
	case "preview":
		m.showPreview(arg)
	case "export":
		m.export(arg)
	case "recipe":
		m.saveRecipe(arg)
	default:
		m.push(entryWarning, fmt.Sprintf("unknown command /%s (try /help)", name))
	}
	return m, nil
}

const commandHelp = `Commands:
  /load <path>           load a CSV, TSV or XLSX file
  /code <statement>      apply a statement directly
  /preview [original]    show the working (or original) table
  /log                   show the transformation log
  /summary               show session metrics
  /reset                 restore the original data
  /export [path]         write the working table (default transformed_data.csv)
  /recipe <path>         save the applied steps as a YAML recipe
  /quit                  leave`

func (m Model) applyInstruction(text string) tea.Cmd {
	orch := m.orch
	return func() tea.Msg {
		out, err := orch.ApplyCommand(context.Background(), text)
		return applyDoneMsg{outcome: out, err: err}
	}
}

func (m Model) loadFile(path string) tea.Cmd {
	orch := m.orch
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return loadDoneMsg{name: path, err: err}
		}
		name := filepath.Base(path)
		reinit, err := orch.Load(name, data)
		return loadDoneMsg{name: name, reinit: reinit, err: err}
	}
}

// ============================================================================
// TRANSCRIPT
// ============================================================================

func (m *Model) showApply(out *session.Outcome, err error) {
	if err != nil {
		m.showError(err)
		var execErr *executor.ExecutionError
		if errors.As(err, &execErr) {
			m.push(entryCode, execErr.Code)
		}
		return
	}
	m.push(entrySuccess, fmt.Sprintf("%s (%d -> %d rows)", session.MsgApplied, out.RowsBefore, out.RowsAfter))
	m.push(entryCode, out.Code)
	m.showWorking()
}

func (m *Model) showLoad(msg loadDoneMsg) {
	if msg.err != nil {
		m.showError(msg.err)
		return
	}
	if msg.reinit {
		m.push(entrySuccess, "Loaded "+msg.name+".")
	} else {
		m.push(entryInfo, msg.name+" is already loaded.")
	}
	m.showWorking()
}

func (m *Model) showWorking() {
	m.showPreview("")
}

func (m *Model) showPreview(which string) {
	get := m.orch.Working
	if strings.EqualFold(which, "original") {
		get = m.orch.Original
	}
	t, err := get()
	if err != nil {
		m.showError(err)
		return
	}
	m.push(entryTable, RenderPreview(table.BuildPreview(t, m.previewRows)))
}

func (m *Model) showError(err error) {
	if session.IsWarning(err) {
		m.push(entryWarning, session.Message(err))
		return
	}
	m.push(entryError, session.Message(err))
}

func (m *Model) export(path string) {
	t, err := m.orch.Working()
	if err != nil {
		m.showError(err)
		return
	}
	if path == "" {
		path = table.DownloadName(table.FormatCSV)
	}
	if err := table.WriteFile(path, t, ""); err != nil {
		m.showError(err)
		return
	}
	m.push(entrySuccess, fmt.Sprintf("Wrote %d rows to %s.", t.RowCount(), path))
}

func (m *Model) saveRecipe(path string) {
	if path == "" {
		m.push(entryWarning, "usage: /recipe <path>")
		return
	}
	sum, err := m.orch.Summary()
	if err != nil {
		m.showError(err)
		return
	}
	if err := recipe.Save(path, recipe.FromLog(sum.FileIdentity, sum.Log, time.Now())); err != nil {
		m.showError(err)
		return
	}
	m.push(entrySuccess, fmt.Sprintf("Saved %d steps to %s.", len(sum.Log), path))
}

func (m *Model) push(kind entryKind, text string) {
	m.entries = append(m.entries, entry{kind: kind, text: strings.TrimRight(text, "\n")})
	m.refresh()
	if !m.loading {
		m.status = m.statusLine()
	}
}

// statusLine reads the session, so it must not run while an apply holds
// the orchestrator.
func (m Model) statusLine() string {
	sum, err := m.orch.Summary()
	if err != nil {
		return "no file loaded"
	}
	return fmt.Sprintf("%s | %d steps | %d/%d rows",
		sum.FileIdentity, sum.TransformationCount, sum.WorkingRowCount, sum.OriginalRowCount)
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
}

func (m Model) transcript() string {
	blocks := make([]string, len(m.entries))
	for i, e := range m.entries {
		blocks[i] = renderEntry(e)
	}
	return strings.Join(blocks, "\n\n")
}

func renderEntry(e entry) string {
	switch e.kind {
	case entryUser:
		return userStyle.Render(e.text)
	case entrySuccess:
		return successStyle.Render(e.text)
	case entryWarning:
		return warningStyle.Render(e.text)
	case entryError:
		return errorStyle.Render(e.text)
	case entryCode:
		return codeStyle.Render(e.text)
	case entryTable:
		return e.text
	}
	return infoStyle.Render(e.text)
}

// ============================================================================
// VIEW
// ============================================================================

// View renders the transcript, the input line and the status bar.
func (m Model) View() string {
	header := logoStyle.Render(logo) + "  " + subHeaderStyle.Render("plain-English data cleaning")

	status := m.status
	if m.loading {
		status = m.spinner.View() + " working... | " + status
	}

	hints := strings.Join([]string{
		renderKeyHint("Enter", "apply"),
		renderKeyHint("/help", "commands"),
		renderKeyHint("PgUp/PgDn", "scroll"),
		renderKeyHint("Esc", "quit"),
	}, "  ")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		inputStyle.Render(m.input.View()),
		statusBarStyle.Render(status),
		hints,
	)
}

// Run starts the TUI and blocks until the user quits.
func Run(cfg Config) error {
	if cfg.Orchestrator == nil {
		return errors.New("tui: orchestrator is required")
	}
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
