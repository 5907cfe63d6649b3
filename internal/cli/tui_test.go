package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/codegraph/pkg/pipeline"
	"github.com/matzehuels/codegraph/pkg/render"
	"github.com/matzehuels/codegraph/pkg/sample"
	"github.com/matzehuels/codegraph/pkg/workspace"
)

// loadedModel returns a browse model over the rebuilt sample workspace.
func loadedModel(t *testing.T) BrowseModel {
	t.Helper()
	ws, err := workspace.New(workspace.Options{})
	if err != nil {
		t.Fatalf("workspace.New: %v", err)
	}
	m := NewBrowseModel(context.Background(), ws, workspace.Request{Source: pipeline.SourceSample})
	t.Cleanup(m.close)

	next, _ := m.Update(m.rebuild()())
	m = next.(BrowseModel)
	if len(m.Rows) == 0 {
		t.Fatalf("no rows after rebuild, status %q", m.Status)
	}
	return m
}

func press(t *testing.T, m BrowseModel, key string) (BrowseModel, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(BrowseModel), cmd
}

func TestFlattenTree(t *testing.T) {
	rows := flattenTree(sample.Tree(sample.Files()))

	if len(rows) != 12 {
		t.Fatalf("flattened %d rows, want 12", len(rows))
	}
	if rows[0].Path != sample.RootName || rows[0].Depth != 0 || !rows[0].Folder {
		t.Errorf("first row = %+v, want the root folder", rows[0])
	}
	if rows[1].Path != "sample/App.tsx" || rows[1].Depth != 1 {
		t.Errorf("second row = %+v, want sample/App.tsx at depth 1", rows[1])
	}
}

func TestBrowseNavigation(t *testing.T) {
	m := loadedModel(t)

	m, _ = press(t, m, "up")
	if m.Cursor != 0 {
		t.Errorf("cursor moved above the first row: %d", m.Cursor)
	}
	m, _ = press(t, m, "j")
	m, _ = press(t, m, "down")
	if m.Cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.Cursor)
	}
	m, _ = press(t, m, "k")
	if m.Cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.Cursor)
	}

	m.Height = 3
	for range len(m.Rows) + 5 {
		m, _ = press(t, m, "down")
	}
	if m.Cursor != len(m.Rows)-1 {
		t.Errorf("cursor = %d, want last row %d", m.Cursor, len(m.Rows)-1)
	}
	if m.Offset != m.Cursor-m.Height+1 {
		t.Errorf("offset = %d, want the cursor kept in view", m.Offset)
	}
}

func TestBrowseSelectSyncsWorkspace(t *testing.T) {
	m := loadedModel(t)

	m, _ = press(t, m, "down") // sample/App.tsx
	m, cmd := press(t, m, "enter")
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	next, _ := m.Update(cmd())
	m = next.(BrowseModel)

	if m.Selected == nil || m.Selected.ID != "App.tsx" {
		t.Fatalf("Selected = %+v, want App.tsx", m.Selected)
	}
	if m.Selected.Level != 1 {
		t.Errorf("App.tsx level = %d, want 1 below main.tsx", m.Selected.Level)
	}
	if got := m.ws.Snapshot().Selected; got != "App.tsx" {
		t.Errorf("workspace selection = %q, want App.tsx", got)
	}
	if view := m.View(); !strings.Contains(view, "In / Out") {
		t.Error("view lacks the node details table")
	}

	m, _ = press(t, m, "esc")
	if m.Selected != nil || m.ws.Snapshot().Selected != "" {
		t.Error("esc did not clear the selection")
	}
}

func TestBrowseSelectFolderWithoutNode(t *testing.T) {
	m := loadedModel(t)

	// Row 3 is the "pages" folder, which the sample graph has no node for.
	for range 3 {
		m, _ = press(t, m, "down")
	}
	m, cmd := press(t, m, "enter")
	next, _ := m.Update(cmd())
	m = next.(BrowseModel)

	if m.Selected != nil {
		t.Errorf("Selected = %+v, want none", m.Selected)
	}
	if m.Status == "" {
		t.Error("missing node should be reported in the status line")
	}
}

func TestBrowseSearch(t *testing.T) {
	m := loadedModel(t)

	m, _ = press(t, m, "/")
	if !m.Editing {
		t.Fatal("/ should start editing the query")
	}
	m, _ = press(t, m, "u")
	m, _ = press(t, m, "t")
	m, _ = press(t, m, "i")
	m, _ = press(t, m, "enter")

	if m.Editing || m.Query != "uti" {
		t.Fatalf("Editing = %v, Query = %q", m.Editing, m.Query)
	}
	// sample, lib, utils.ts
	if len(m.Rows) != 3 {
		t.Errorf("filtered to %d rows, want 3", len(m.Rows))
	}

	m, _ = press(t, m, "/")
	m, _ = press(t, m, "esc")
	if m.Query != "" || len(m.Rows) != 12 {
		t.Errorf("esc while editing should reset the filter, got %q with %d rows", m.Query, len(m.Rows))
	}
}

func TestBrowseCycleScheme(t *testing.T) {
	m := loadedModel(t)

	m, cmd := press(t, m, "c")
	next, _ := m.Update(cmd())
	m = next.(BrowseModel)

	want := nextScheme(render.SchemeDefault)
	if got := m.ws.Settings().ColorScheme; got != want {
		t.Errorf("scheme = %q, want %q", got, want)
	}
	if !strings.Contains(m.Status, want) {
		t.Errorf("status %q does not name the scheme", m.Status)
	}
}

func TestBrowseExport(t *testing.T) {
	m := loadedModel(t)
	m.ExportPath = filepath.Join(t.TempDir(), "edges.csv")

	m, cmd := press(t, m, "e")
	next, _ := m.Update(cmd())
	m = next.(BrowseModel)

	if !strings.Contains(m.Status, "exported 3 edges") {
		t.Errorf("status = %q, want the export summary", m.Status)
	}
}

func TestBrowseNotices(t *testing.T) {
	m := loadedModel(t)

	next, _ := m.Update(m.waitNotice()())
	m = next.(BrowseModel)
	if m.Notice == nil || m.Notice.Level != workspace.LevelInfo {
		t.Fatalf("Notice = %+v, want the rebuild info notice", m.Notice)
	}

	// An invalid settings patch publishes an error notice.
	zigzag := "zigzag"
	_, _ = m.ws.ApplySettings(context.Background(), render.Patch{EdgeStyle: &zigzag})

	next, cmd := m.Update(m.waitNotice()())
	m = next.(BrowseModel)
	if m.Notice == nil || m.Notice.Level != workspace.LevelError {
		t.Fatalf("Notice = %+v, want an error notice", m.Notice)
	}
	if cmd == nil {
		t.Error("the model should keep listening for notices")
	}
	if !strings.Contains(m.View(), m.Notice.Message) {
		t.Error("view does not show the notice")
	}
}

func TestNextSchemeWraps(t *testing.T) {
	schemes := render.Schemes()
	if got := nextScheme(schemes[len(schemes)-1]); got != schemes[0] {
		t.Errorf("nextScheme(last) = %q, want %q", got, schemes[0])
	}
	if got := nextScheme("unknown"); got != schemes[0] {
		t.Errorf("nextScheme(unknown) = %q, want %q", got, schemes[0])
	}
}

func TestBrowseQuit(t *testing.T) {
	m := loadedModel(t)
	_, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatal("q produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
