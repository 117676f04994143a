package ui

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nconklindev/saidan/internal/config"
	"github.com/nconklindev/saidan/internal/engine"
	"github.com/nconklindev/saidan/internal/settings"
	"github.com/nconklindev/saidan/internal/types"
)

func newTestModel(t *testing.T) (Model, *bytes.Buffer) {
	t.Helper()
	bell := &bytes.Buffer{}
	cfg := &config.Config{
		Export:  config.ExportConfig{Dir: t.TempDir(), Format: "csv"},
		Preview: config.PreviewConfig{Rows: 5, Columns: 4},
		Load:    config.LoadConfig{Timeout: time.Minute},
	}
	m := New(Options{
		Config:         cfg,
		Logger:         zaptest.NewLogger(t),
		Bell:           bell,
		DarkBackground: func() bool { return true },
		Now:            func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) },
	})
	return m, bell
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		m, cmd = update(t, m, keyMsg(k))
	}
	return m, cmd
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// sheet returns a header row plus rows data rows of width cols.
func sheet(name string, rows, cols int) *types.SourceFile {
	data := make([][]string, 0, rows+1)
	header := make([]string, cols)
	for c := range cols {
		header[c] = fmt.Sprintf("h%d", c)
	}
	data = append(data, header)
	for r := range rows {
		row := make([]string, cols)
		for c := range cols {
			row[c] = fmt.Sprintf("r%dc%d", r, c)
		}
		data = append(data, row)
	}
	return &types.SourceFile{Name: name, Data: types.NewDataset(data)}
}

func loaded(t *testing.T, files ...*types.SourceFile) (Model, *bytes.Buffer) {
	t.Helper()
	m, bell := newTestModel(t)
	m, _ = update(t, m, filesLoadedMsg{files: files})
	require.Equal(t, statePreview, m.state)
	return m, bell
}

func TestLoadEntersPreview(t *testing.T) {
	m, _ := loaded(t, sheet("data.csv", 6, 3))

	assert.Equal(t, 7, m.cutter.Current().RowCount())
	assert.Contains(t, m.View(), "data.csv")
	assert.Contains(t, m.View(), "7 rows × 3 columns")
}

func TestLoadFailureShowsErrorAndGoesBack(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = update(t, m, filesLoadedMsg{err: &engine.ParseError{File: "bad.csv", Msg: "bare \" in non-quoted field"}})
	require.Equal(t, stateError, m.state)
	assert.Contains(t, m.View(), "bad.csv: bare \" in non-quoted field")

	m, _ = press(t, m, "enter")
	assert.Equal(t, stateFilePicker, m.state)
	assert.False(t, m.cutter.Loaded())
}

func TestMismatchedBatchIsRejected(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = update(t, m, filesLoadedMsg{files: []*types.SourceFile{sheet("a.csv", 2, 3), sheet("b.csv", 2, 4)}})
	require.Equal(t, stateError, m.state)
	assert.True(t, errors.Is(m.Err(), engine.ErrColumnCountMismatch))
	assert.False(t, m.cutter.Loaded())
}

func TestColumnCutRingsBell(t *testing.T) {
	m, bell := loaded(t, sheet("data.csv", 4, 5))

	m, _ = press(t, m, "right", " ")
	require.True(t, m.cutter.Selection().IsColumnLineSelected(1))
	assert.Contains(t, m.View(), "┃")

	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	assert.Equal(t, "\a", bell.String())

	assert.Equal(t, 2, m.cutter.Current().ColumnCount())
	assert.False(t, m.cutter.Selection().HasPending())
}

func TestInvertedColumnCut(t *testing.T) {
	m, _ := loaded(t, sheet("data.csv", 2, 4))

	m, _ = press(t, m, " ", "i", "enter")
	assert.Equal(t, 3, m.cutter.Current().ColumnCount())
	assert.Equal(t, "h1", m.cutter.Current().Rows[0][0])
}

func TestRowCut(t *testing.T) {
	m, _ := loaded(t, sheet("data.csv", 6, 2))

	m, _ = press(t, m, "down", "down", " ", "enter")
	assert.Equal(t, 4, m.cutter.Current().RowCount())
	assert.Equal(t, 3, m.cutter.RowCutCount())
}

func TestCommitWithoutMarksIsANoop(t *testing.T) {
	m, bell := loaded(t, sheet("data.csv", 3, 3))

	m, cmd := press(t, m, "enter")
	assert.Nil(t, cmd)
	assert.Empty(t, bell.String())
	assert.Equal(t, "mark a cut line first", m.notice)
}

func TestSoundOffSkipsBell(t *testing.T) {
	m, _ := loaded(t, sheet("data.csv", 3, 3))

	m, _ = press(t, m, "s")
	require.False(t, m.prefs.SoundEnabled())

	_, cmd := press(t, m, " ", "enter")
	assert.Nil(t, cmd)
}

func TestSplitForm(t *testing.T) {
	m, _ := loaded(t, sheet("data.csv", 24, 3))

	m, _ = press(t, m, "x")
	require.Equal(t, stateSplit, m.state)
	assert.Equal(t, "25", m.splitInput.Value())

	m.splitInput.SetValue("0")
	m, _ = press(t, m, "enter")
	assert.Equal(t, stateSplit, m.state)
	assert.Equal(t, engine.ErrInvalidSplitSize.Error(), m.splitErr)
	assert.False(t, m.cutter.SplitEnabled())

	m.splitInput.SetValue("ten")
	m, _ = press(t, m, "enter")
	assert.Equal(t, stateSplit, m.state)
	assert.NotEmpty(t, m.splitErr)

	m.splitInput.SetValue("10")
	m, _ = press(t, m, "tab", "enter")
	require.Equal(t, statePreview, m.state)
	assert.True(t, m.cutter.SplitEnabled())
	assert.True(t, m.cutter.IncludeHeader())
	assert.Len(t, m.cutter.Split(), 3)
	assert.Contains(t, m.View(), "split: 3 files")

	m, _ = press(t, m, "X")
	assert.False(t, m.cutter.SplitEnabled())
}

func TestSplitFormEscape(t *testing.T) {
	m, _ := loaded(t, sheet("data.csv", 4, 2))

	m, _ = press(t, m, "x", "esc")
	assert.Equal(t, statePreview, m.state)
	assert.False(t, m.cutter.SplitEnabled())
}

func TestRevertAndReset(t *testing.T) {
	m, _ := loaded(t, sheet("data.csv", 4, 4))

	m, _ = press(t, m, " ", "enter")
	require.True(t, m.cutter.Transformed())

	m, _ = press(t, m, "u")
	assert.False(t, m.cutter.Transformed())
	assert.Equal(t, 4, m.cutter.Current().ColumnCount())

	m, _ = press(t, m, "r")
	assert.Equal(t, stateFilePicker, m.state)
	assert.False(t, m.cutter.Loaded())
}

func TestXLSXTitleRowsAreMarked(t *testing.T) {
	data := [][]string{
		{"Quarterly report", "", ""},
		{"", "", ""},
		{"Name", "Region", "Total"},
		{"a", "north", "1"},
		{"b", "south", "2"},
	}
	m, _ := loaded(t, &types.SourceFile{Name: "report.xlsx", Data: types.NewDataset(data)})

	idx, ok := m.cutter.Selection().RowCutIndex()
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, axisRows, m.axis)

	m, _ = press(t, m, "enter")
	assert.Equal(t, "Name", m.cutter.Current().Rows[0][0])
}

func TestCursorStaysInRange(t *testing.T) {
	m, _ := loaded(t, sheet("data.csv", 2, 3))

	m, _ = press(t, m, "right", "right", "right", "right")
	assert.Equal(t, 1, m.colCursor)

	m, _ = press(t, m, "left", "left", "left")
	assert.Equal(t, 0, m.colCursor)

	m, _ = press(t, m, "down", "down", "down", "down", "down")
	assert.Equal(t, 2, m.rowCursor)
}

func TestRowOffsetFollowsCursor(t *testing.T) {
	m, _ := loaded(t, sheet("data.csv", 20, 2))

	for range 7 {
		m, _ = press(t, m, "down")
	}
	assert.Equal(t, 7, m.rowCursor)
	assert.Equal(t, 3, m.rowOffset)

	m, _ = press(t, m, "]")
	assert.Equal(t, 8, m.rowOffset)
	assert.Contains(t, m.View(), "rows 9-13 of 21")
}

func TestThemeCycleAndFocus(t *testing.T) {
	m, _ := newTestModel(t)
	require.Equal(t, settings.ThemeSystem, m.prefs.Theme())
	assert.Equal(t, settings.ThemeDark, m.styles.Theme)

	m, _ = press(t, m, "t")
	assert.Equal(t, settings.ThemeLight, m.prefs.Theme())
	assert.Equal(t, settings.ThemeLight, m.styles.Theme)

	m, _ = press(t, m, "t", "t")
	require.Equal(t, settings.ThemeSystem, m.prefs.Theme())

	m.darkBackground = func() bool { return false }
	m, cmd := update(t, m, tea.FocusMsg{})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, settings.ThemeLight, m.styles.Theme)
}

func TestSoundErrorIsNotFatal(t *testing.T) {
	m, _ := loaded(t, sheet("data.csv", 2, 2))

	m, cmd := update(t, m, soundErrMsg{err: os.ErrClosed})
	assert.Nil(t, cmd)
	assert.Equal(t, statePreview, m.state)
}

func runExport(t *testing.T, m Model) Model {
	t.Helper()
	m, cmd := press(t, m, "d")
	require.Equal(t, stateProcessing, m.state)
	require.NotNil(t, cmd)

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	require.NotEmpty(t, batch)
	batch[0]()

	wait := waitForProgress(m.progressChan, m.resultChan)
	for m.state == stateProcessing {
		msg := wait()
		require.NotNil(t, msg)
		m, _ = update(t, m, msg)
	}
	return m
}

func TestExportSingleFile(t *testing.T) {
	m, _ := loaded(t, sheet("data.csv", 3, 3))
	m, _ = press(t, m, " ", "enter")

	m = runExport(t, m)
	require.Equal(t, stateComplete, m.state, "err: %v", m.err)
	assert.False(t, m.result.Archived)

	path := filepath.Join(m.cfg.Export.Dir, "data_cut.csv")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "h0\nr0c0\nr1c0\nr2c0\n", string(data))
	assert.Contains(t, m.View(), "Export Complete")

	m, _ = press(t, m, "enter")
	assert.Equal(t, statePreview, m.state)
}

func TestExportSplitArchive(t *testing.T) {
	m, _ := loaded(t, sheet("data.csv", 9, 2))
	m, _ = press(t, m, "x")
	m.splitInput.SetValue("5")
	m, _ = press(t, m, "enter")

	m = runExport(t, m)
	require.Equal(t, stateComplete, m.state, "err: %v", m.err)
	assert.True(t, m.result.Archived)
	assert.Equal(t, []string{"data_1.csv", "data_2.csv"}, m.result.Files)
	assert.FileExists(t, filepath.Join(m.cfg.Export.Dir, "saidan_20240309140507.zip"))
}

func TestViewsRender(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Contains(t, m.View(), "saidan")

	m, _ = loaded(t, sheet("data.csv", 2, 2), sheet("more.csv", 2, 2))
	assert.Contains(t, m.View(), "data.csv and 1 more")

	m, _ = press(t, m, "?")
	assert.True(t, m.help.ShowAll)

	m, _ = press(t, m, "down", "down", " ", "enter")
	assert.Contains(t, m.View(), "Everything has been cut")
}
