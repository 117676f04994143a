package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/nconklindev/saidan/internal/config"
	"github.com/nconklindev/saidan/internal/cutter"
	"github.com/nconklindev/saidan/internal/export"
	"github.com/nconklindev/saidan/internal/loader"
	"github.com/nconklindev/saidan/internal/settings"
	"github.com/nconklindev/saidan/internal/types"
)

type state int

const (
	stateFilePicker state = iota
	statePreview
	stateSplit
	stateProcessing
	stateComplete
	stateError
)

type axis int

const (
	axisColumns axis = iota
	axisRows
)

type Options struct {
	Config   *config.Config
	Settings *settings.Settings
	// Watcher, when set, reloads settings edited outside the program.
	Watcher *settings.Watcher
	Logger  *zap.Logger
	// Paths are loaded as one batch on start, skipping the file picker.
	Paths []string
	// Bell receives the cut sound. Defaults to stdout.
	Bell io.Writer
	// DarkBackground resolves the system theme. Defaults to asking the
	// terminal.
	DarkBackground func() bool
	Now            func() time.Time
}

type Model struct {
	state state
	cfg   *config.Config
	log   *zap.Logger

	prefs          *settings.Settings
	watcher        *settings.Watcher
	darkBackground func() bool
	dark           bool
	styles         Styles
	keys           keyMap
	help           help.Model

	filepicker filepicker.Model
	paths      []string

	cutter    *cutter.Controller
	axis      axis
	colCursor int
	rowCursor int
	rowOffset int
	colOffset int
	notice    string
	format    export.Format

	splitInput  textinput.Model
	splitHeader bool
	splitErr    string

	progress     progress.Model
	progressChan chan float64
	resultChan   chan exportResultMsg
	result       *types.ExportResult

	err    error
	width  int
	height int
	bell   io.Writer
	now    func() time.Time
}

type filesLoadedMsg struct {
	files []*types.SourceFile
	err   error
}

type exportResultMsg struct {
	result *types.ExportResult
	err    error
}

type exportCompleteMsg exportResultMsg

type progressMsg float64

type settingsChangedMsg struct{}

type backgroundMsg struct{ dark bool }

type soundErrMsg struct{ err error }

func New(opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Config{
			Export:  config.ExportConfig{Dir: ".", Format: string(export.FormatCSV)},
			Preview: config.PreviewConfig{Rows: 15, Columns: 12},
			Load:    config.LoadConfig{Timeout: 2 * time.Minute},
		}
	}
	prefs := opts.Settings
	if prefs == nil {
		prefs = settings.Load(settings.NewMemoryStore(), log)
	}
	dark := opts.DarkBackground
	if dark == nil {
		dark = lipgloss.HasDarkBackground
	}
	bell := opts.Bell
	if bell == nil {
		bell = os.Stdout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	format, err := export.ParseFormat(cfg.Export.Format)
	if err != nil {
		format = export.FormatCSV
	}

	fp := filepicker.New()
	fp.AllowedTypes = loader.AllowedExtensions
	fp.CurrentDirectory, _ = os.Getwd()

	input := textinput.New()
	input.Placeholder = "rows per file"
	input.CharLimit = 9
	input.Width = 12

	m := Model{
		state:          stateFilePicker,
		cfg:            cfg,
		log:            log.Named("ui"),
		prefs:          prefs,
		watcher:        opts.Watcher,
		darkBackground: dark,
		keys:           defaultKeyMap(),
		help:           help.New(),
		filepicker:     fp,
		paths:          opts.Paths,
		cutter:         cutter.New(log),
		format:         format,
		splitInput:     input,
		bell:           bell,
		now:            now,
	}
	if prefs.Theme() == settings.ThemeSystem {
		m.dark = dark()
	}
	m.restyle()
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.filepicker.Init(), waitForSettings(m.watcher)}
	if len(m.paths) > 0 {
		cmds = append(cmds, m.loadFiles(m.paths))
	}
	return tea.Batch(cmds...)
}

func (m *Model) restyle() {
	theme := m.prefs.Theme().Resolve(func() bool { return m.dark })
	m.styles = NewStyles(theme)
	m.styles.applyFilePicker(&m.filepicker)
	m.progress = progress.New(progress.WithGradient(string(m.styles.accent), string(m.styles.warm)))
	if m.width > 0 {
		m.progress.Width = min(m.width-8, 60)
	}
	m.help.Styles.ShortKey = lipgloss.NewStyle().Foreground(m.styles.accent)
	m.help.Styles.FullKey = lipgloss.NewStyle().Foreground(m.styles.accent)
	m.help.Styles.ShortDesc = lipgloss.NewStyle().Foreground(m.styles.muted)
	m.help.Styles.FullDesc = lipgloss.NewStyle().Foreground(m.styles.muted)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = min(msg.Width-8, 60)

		height := msg.Height - 14
		if height < 5 {
			height = 5
		}
		m.filepicker.SetHeight(height)

		return m, nil

	case tea.FocusMsg:
		if m.prefs.Theme() == settings.ThemeSystem {
			return m, m.detectBackground()
		}
		return m, nil

	case backgroundMsg:
		m.dark = msg.dark
		m.restyle()
		return m, nil

	case settingsChangedMsg:
		m.prefs.Reload()
		m.restyle()
		m.log.Debug("settings reloaded", zap.String("theme", string(m.prefs.Theme())))
		var detect tea.Cmd
		if m.prefs.Theme() == settings.ThemeSystem {
			detect = m.detectBackground()
		}
		return m, tea.Batch(detect, waitForSettings(m.watcher))

	case soundErrMsg:
		m.log.Warn("cut sound failed", zap.Error(msg.err))
		return m, nil

	case filesLoadedMsg:
		return m.handleLoaded(msg)

	case exportCompleteMsg:
		if msg.err != nil {
			m.log.Error("export failed", zap.Error(msg.err))
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.result = msg.result
		m.state = stateComplete
		m.log.Info("exported",
			zap.String("output", msg.result.OutputFile),
			zap.Int("files", len(msg.result.Files)),
			zap.Int("rows", msg.result.RowsWritten),
		)
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		if m.state == stateProcessing {
			cmd := m.progress.SetPercent(float64(msg))
			return m, tea.Batch(cmd, waitForProgress(m.progressChan, m.resultChan))
		}
		return m, nil

	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	}

	switch m.state {
	case stateFilePicker:
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			return m, m.loadFiles([]string{path})
		}
		if didSelect, path := m.filepicker.DidSelectDisabledFile(msg); didSelect {
			m.notice = fmt.Sprintf("%s is not a CSV or XLSX file", filepath.Base(path))
		}
		return m, cmd

	case stateSplit:
		var cmd tea.Cmd
		m.splitInput, cmd = m.splitInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKey reports handled=false when the key should fall through to the
// active bubble (file picker or text input).
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit, true
	}

	switch m.state {
	case stateFilePicker:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit, true
		case key.Matches(msg, m.keys.Sound), key.Matches(msg, m.keys.Theme):
			next, cmd := m.handleSettingsKey(msg)
			return next, cmd, true
		}
		return m, nil, false

	case statePreview:
		next, cmd := m.handlePreviewKey(msg)
		return next, cmd, true

	case stateSplit:
		return m.handleSplitKey(msg)

	case stateProcessing:
		return m, nil, true

	case stateComplete:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit, true
		case key.Matches(msg, m.keys.Reset):
			return m.reset(), nil, true
		case msg.String() == "enter", msg.String() == "esc":
			m.state = statePreview
			return m, nil, true
		}
		return m, nil, true

	case stateError:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit, true
		case msg.String() == "enter", msg.String() == "esc":
			m.err = nil
			if m.cutter.Loaded() {
				m.state = statePreview
			} else {
				m.state = stateFilePicker
			}
			return m, nil, true
		}
		return m, nil, true
	}

	return m, nil, false
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Sound):
		if m.prefs.ToggleSound() {
			m.notice = "sound on"
		} else {
			m.notice = "sound off"
		}
		return m, nil

	case key.Matches(msg, m.keys.Theme):
		theme := m.prefs.CycleTheme()
		m.restyle()
		m.notice = "theme: " + string(theme)
		if theme == settings.ThemeSystem {
			return m, m.detectBackground()
		}
	}
	return m, nil
}

func (m Model) handlePreviewKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	cur := m.cutter.Current()
	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Left):
		m.axis = axisColumns
		m.colCursor--
	case key.Matches(msg, m.keys.Right):
		m.axis = axisColumns
		m.colCursor++
	case key.Matches(msg, m.keys.Up):
		m.axis = axisRows
		m.rowCursor--
	case key.Matches(msg, m.keys.Down):
		m.axis = axisRows
		m.rowCursor++
	case key.Matches(msg, m.keys.PageUp):
		m.rowOffset -= m.cfg.Preview.Rows
		m.rowCursor = max(m.rowOffset, 0)
	case key.Matches(msg, m.keys.PageDown):
		m.rowOffset += m.cfg.Preview.Rows
		m.rowCursor = m.rowOffset
	case key.Matches(msg, m.keys.Axis):
		if m.axis == axisColumns {
			m.axis = axisRows
		} else {
			m.axis = axisColumns
		}

	case key.Matches(msg, m.keys.Toggle):
		var err error
		if m.axis == axisColumns {
			_, err = m.cutter.ToggleColumnLine(m.colCursor)
		} else {
			_, err = m.cutter.ToggleRowLine(m.rowCursor)
		}
		if err != nil {
			m.notice = "nothing to cut here"
		}

	case key.Matches(msg, m.keys.Invert):
		if m.cutter.ToggleInverted() {
			m.notice = "inverted: keeping the right side"
		} else {
			m.notice = "keeping the left side"
		}

	case key.Matches(msg, m.keys.Commit):
		if !m.cutter.Selection().HasPending() {
			m.notice = "mark a cut line first"
			return m, nil
		}
		if err := m.cutter.Commit(cutter.SplitRequest{}); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.notice = fmt.Sprintf("cut: %d rows × %d columns left", m.cutter.Current().RowCount(), m.cutter.Current().ColumnCount())
		m.clampCursors()
		return m, m.playCut()

	case key.Matches(msg, m.keys.Split):
		if cur.IsEmpty() {
			m.notice = "nothing left to split"
			return m, nil
		}
		rows := m.cutter.RowsPerFile()
		if rows <= 0 {
			rows = cur.RowCount()
		}
		m.splitInput.SetValue(strconv.Itoa(rows))
		m.splitInput.CursorEnd()
		m.splitHeader = m.cutter.IncludeHeader()
		m.splitErr = ""
		m.state = stateSplit
		return m, m.splitInput.Focus()

	case key.Matches(msg, m.keys.Unsplit):
		m.cutter.ClearSplit()
		m.notice = "split cleared"

	case key.Matches(msg, m.keys.Revert):
		m.cutter.Revert()
		m.colCursor, m.rowCursor, m.rowOffset, m.colOffset = 0, 0, 0, 0
		m.notice = "back to the original"

	case key.Matches(msg, m.keys.Reset):
		return m.reset(), nil

	case key.Matches(msg, m.keys.Export):
		return m.startExport()

	case key.Matches(msg, m.keys.Format):
		if m.format == export.FormatCSV {
			m.format = export.FormatXLSX
		} else {
			m.format = export.FormatCSV
		}
		m.notice = "download as " + string(m.format)

	case key.Matches(msg, m.keys.Sound), key.Matches(msg, m.keys.Theme):
		return m.handleSettingsKey(msg)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	m.clampCursors()
	return m, nil
}

func (m Model) handleSplitKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "esc":
		m.splitInput.Blur()
		m.state = statePreview
		return m, nil, true

	case "tab":
		m.splitHeader = !m.splitHeader
		return m, nil, true

	case "enter":
		n, err := strconv.Atoi(strings.TrimSpace(m.splitInput.Value()))
		if err != nil {
			m.splitErr = "enter a whole number of rows"
			return m, nil, true
		}
		if err := m.cutter.Commit(cutter.SplitRequest{RowsPerFile: &n, IncludeHeader: m.splitHeader}); err != nil {
			m.splitErr = err.Error()
			return m, nil, true
		}
		m.splitInput.Blur()
		m.state = statePreview
		m.notice = fmt.Sprintf("split into %d files of up to %d rows", len(m.cutter.Split()), n)
		m.clampCursors()
		return m, m.playCut(), true
	}
	return m, nil, false
}

func (m Model) handleLoaded(msg filesLoadedMsg) (tea.Model, tea.Cmd) {
	err := msg.err
	if err == nil {
		err = m.cutter.Load(msg.files)
	}
	if err != nil {
		m.log.Warn("load failed", zap.Error(err))
		m.err = err
		m.state = stateError
		return m, nil
	}

	m.state = statePreview
	m.axis = axisColumns
	m.colCursor, m.rowCursor, m.rowOffset, m.colOffset = 0, 0, 0, 0
	m.notice = ""

	first := msg.files[0]
	if strings.EqualFold(filepath.Ext(first.Name), ".xlsx") {
		if line, ok := loader.SuggestRowCut(first.Data); ok {
			if _, err := m.cutter.ToggleRowLine(line); err == nil {
				m.axis = axisRows
				m.rowCursor = line
				m.notice = "title rows above the header are marked, enter to cut them"
			}
		}
	}
	m.clampCursors()
	return m, nil
}

func (m Model) reset() Model {
	m.cutter.Reset()
	m.state = stateFilePicker
	m.result = nil
	m.notice = ""
	m.colCursor, m.rowCursor, m.rowOffset, m.colOffset = 0, 0, 0, 0
	return m
}

// clampCursors keeps both cursors on valid lines and inside the visible
// window.
func (m *Model) clampCursors() {
	cur := m.cutter.Current()
	rows, cols := cur.RowCount(), cur.ColumnCount()

	m.colCursor = clamp(m.colCursor, 0, max(cols-2, 0))
	m.rowCursor = clamp(m.rowCursor, 0, max(rows-1, 0))

	visibleRows := max(m.cfg.Preview.Rows, 1)
	m.rowOffset = clamp(m.rowOffset, 0, max(rows-1, 0))
	if m.rowCursor < m.rowOffset {
		m.rowOffset = m.rowCursor
	}
	if m.rowCursor >= m.rowOffset+visibleRows {
		m.rowOffset = m.rowCursor - visibleRows + 1
	}

	visibleCols := max(m.cfg.Preview.Columns, 2)
	if m.colCursor < m.colOffset {
		m.colOffset = m.colCursor
	}
	if m.colCursor+1 >= m.colOffset+visibleCols {
		m.colOffset = m.colCursor + 2 - visibleCols
	}
	m.colOffset = clamp(m.colOffset, 0, max(cols-1, 0))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func (m Model) loadFiles(paths []string) tea.Cmd {
	timeout := m.cfg.Load.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		files, err := loader.LoadAll(ctx, paths)
		return filesLoadedMsg{files: files, err: err}
	}
}

func (m Model) startExport() (Model, tea.Cmd) {
	m.progressChan = make(chan float64, 100)
	m.resultChan = make(chan exportResultMsg, 1)
	m.state = stateProcessing

	outputs := m.cutter.Outputs()
	dir := m.cfg.Export.Dir
	format := m.format
	stamp := m.now()
	progressChan := m.progressChan
	resultChan := m.resultChan

	cmd := tea.Batch(
		func() tea.Msg {
			go func() {
				result, err := export.Export(context.Background(), dir, outputs, format, stamp, progressChan)
				resultChan <- exportResultMsg{result: result, err: err}

				close(progressChan)
				close(resultChan)
			}()
			return nil
		},
		waitForProgress(m.progressChan, m.resultChan),
		m.progress.SetPercent(0),
	)

	return m, cmd
}

func waitForProgress(progressChan chan float64, resultChan chan exportResultMsg) tea.Cmd {
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}

		p, ok := <-progressChan
		if !ok {
			res, ok := <-resultChan
			if ok {
				return exportCompleteMsg(res)
			}
			return nil
		}

		return progressMsg(p)
	}
}

func waitForSettings(w *settings.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-w.Changes(); !ok {
			return nil
		}
		return settingsChangedMsg{}
	}
}

func (m Model) detectBackground() tea.Cmd {
	dark := m.darkBackground
	return func() tea.Msg {
		return backgroundMsg{dark: dark()}
	}
}

// playCut rings the terminal bell when sound is enabled.
func (m Model) playCut() tea.Cmd {
	if !m.prefs.SoundEnabled() || m.bell == nil {
		return nil
	}
	w := m.bell
	return func() tea.Msg {
		if _, err := io.WriteString(w, "\a"); err != nil {
			return soundErrMsg{err: err}
		}
		return nil
	}
}

// Err is the error shown on the error screen, if any.
func (m Model) Err() error { return m.err }
