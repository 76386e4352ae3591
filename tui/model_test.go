package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/spektr-org/wrangle/logging"
	"github.com/spektr-org/wrangle/session"
	"github.com/spektr-org/wrangle/table"
	"github.com/spektr-org/wrangle/translator"
)

func newLoadedModel(t *testing.T) Model {
	t.Helper()
	tr := translator.Func(func(_ context.Context, instruction, _ string) (string, error) {
		if instruction == "drop minors" {
			return `df.Filter("age >= 18")`, nil
		}
		return "", &translator.TranslationError{Provider: "stub", Err: errors.New("offline")}
	})
	o := session.NewOrchestrator(tr, session.WithLogger(logging.Discard()))
	if _, err := o.Load("ages.csv", []byte("name,age\nAnn,17\nBo,20\nCy,35\n")); err != nil {
		t.Fatal(err)
	}
	return New(Config{Orchestrator: o, PreviewRows: 5})
}

func hasEntry(m Model, kind entryKind, substr string) bool {
	for _, e := range m.entries {
		if e.kind == kind && strings.Contains(e.text, substr) {
			return true
		}
	}
	return false
}

func enter(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(text)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func TestNewWithoutFileShowsHelp(t *testing.T) {
	o := session.NewOrchestrator(nil)
	m := New(Config{Orchestrator: o})
	if !hasEntry(m, entryInfo, "1. Upload") {
		t.Error("help text missing from transcript")
	}
	if m.status != "no file loaded" {
		t.Errorf("status = %q", m.status)
	}
}

func TestEnterEmptyWarns(t *testing.T) {
	m, cmd := enter(t, newLoadedModel(t), "   ")
	if cmd != nil {
		t.Error("empty input should not start work")
	}
	if !hasEntry(m, entryWarning, session.MsgEmpty) {
		t.Error("empty-input warning missing")
	}
}

func TestInstructionRoundTrip(t *testing.T) {
	m, cmd := enter(t, newLoadedModel(t), "drop minors")
	if !m.loading || cmd == nil {
		t.Fatalf("loading = %v, cmd = %v", m.loading, cmd)
	}
	if !hasEntry(m, entryUser, "> drop minors") {
		t.Error("instruction not echoed")
	}

	// A second Enter while the first is running is ignored.
	if _, again := enter(t, m, "drop minors"); again != nil {
		t.Error("enter while loading should be ignored")
	}

	msg := m.applyInstruction("drop minors")()
	next, _ := m.Update(msg)
	m = next.(Model)
	if m.loading {
		t.Error("still loading after apply finished")
	}
	if !hasEntry(m, entrySuccess, session.MsgApplied) || !hasEntry(m, entryCode, `df.Filter("age >= 18")`) {
		t.Errorf("transcript = %+v", m.entries)
	}
	if !strings.Contains(m.status, "1 steps | 2/3 rows") {
		t.Errorf("status = %q", m.status)
	}
}

func TestTranslatorFailureIsWarning(t *testing.T) {
	m := newLoadedModel(t)
	next, _ := m.Update(m.applyInstruction("something else")())
	m = next.(Model)
	if !hasEntry(m, entryWarning, session.MsgNoCommand) {
		t.Errorf("transcript = %+v", m.entries)
	}
}

func TestCodeCommandFailureShowsStatement(t *testing.T) {
	m, _ := enter(t, newLoadedModel(t), `/code df.Drop("salary")`)
	if !hasEntry(m, entryError, "Oops! An error occurred: ") {
		t.Errorf("error missing: %+v", m.entries)
	}
	if !hasEntry(m, entryCode, `df.Drop("salary")`) {
		t.Error("failing statement not shown")
	}
}

func TestResetLogAndSummary(t *testing.T) {
	m, _ := enter(t, newLoadedModel(t), `/code df.Head(1)`)
	m, _ = enter(t, m, "/log")
	if !hasEntry(m, entryTable, "Rows Affected") {
		t.Error("log table missing")
	}
	m, _ = enter(t, m, "/reset")
	if !hasEntry(m, entrySuccess, session.MsgReset) {
		t.Error("reset message missing")
	}
	m, _ = enter(t, m, "/summary")
	if !hasEntry(m, entryTable, "Transformations: 0") {
		t.Errorf("summary missing: %+v", m.entries)
	}
}

func TestExportAndRecipe(t *testing.T) {
	dir := t.TempDir()
	m, _ := enter(t, newLoadedModel(t), `/code df.Filter("age >= 18")`)

	out := filepath.Join(dir, "out.csv")
	m, _ = enter(t, m, "/export "+out)
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("export not written: %v", err)
	}
	if string(data) != "name,age\nBo,20\nCy,35\n" {
		t.Errorf("export = %q", data)
	}

	rec := filepath.Join(dir, "steps.yaml")
	m, _ = enter(t, m, "/recipe "+rec)
	if !hasEntry(m, entrySuccess, "Saved 1 steps") {
		t.Errorf("transcript = %+v", m.entries)
	}
	if _, err := os.Stat(rec); err != nil {
		t.Errorf("recipe not written: %v", err)
	}
}

func TestLoadCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.csv")
	if err := os.WriteFile(path, []byte("x\n1\n2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	m, cmd := enter(t, newLoadedModel(t), "/load "+path)
	if cmd == nil || !m.loading {
		t.Fatal("load should run asynchronously")
	}
	next, _ := m.Update(m.loadFile(path)())
	m = next.(Model)
	if !hasEntry(m, entrySuccess, "Loaded other.csv.") || !hasEntry(m, entryTable, "x (number)") {
		t.Errorf("transcript = %+v", m.entries)
	}
}

func TestQuitAndUnknownCommand(t *testing.T) {
	m, cmd := enter(t, newLoadedModel(t), "/nope")
	if cmd != nil || !hasEntry(m, entryWarning, "unknown command /nope") {
		t.Errorf("unknown command handling: cmd = %v, entries = %+v", cmd, m.entries)
	}
	_, cmd = enter(t, m, "/quit")
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit did not produce tea.QuitMsg")
	}
}

func TestRenderHelpers(t *testing.T) {
	if got := RenderLog(nil); !strings.Contains(got, session.MsgNoLog) {
		t.Errorf("RenderLog(nil) = %q", got)
	}

	log := []session.LogEntry{{Step: 1, Description: "drop minors", RowsAffected: -1}}
	got := RenderLog(log)
	for _, want := range []string{"Step #", "Description", "Rows Affected", "drop minors", "-1"} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderLog missing %q:\n%s", want, got)
		}
	}

	tbl, err := table.ParseCSV("ages.csv", []byte("name,age\nAnn,17\nBo,\nCy,35\n"), 0)
	if err != nil {
		t.Fatal(err)
	}
	p := table.BuildPreview(tbl, 1)
	got = RenderPreview(p)
	for _, want := range []string{"ages.csv: 3 rows, 2 columns", "age (number)", "Ann", "showing 1 of 3 rows"} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderPreview missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Cy") {
		t.Error("preview should be truncated to one row")
	}

	got = RenderKinds(p)
	if !strings.Contains(got, "Missing") || !strings.Contains(got, "number") {
		t.Errorf("RenderKinds = %s", got)
	}
}
