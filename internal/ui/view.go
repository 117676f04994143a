package ui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nconklindev/saidan/internal/settings"
)

const maxCellWidth = 18

func (m Model) View() string {
	switch m.state {
	case stateFilePicker:
		return m.viewFilePicker()
	case statePreview:
		return m.viewPreview()
	case stateSplit:
		return m.viewSplit()
	case stateProcessing:
		return m.viewProcessing()
	case stateComplete:
		return m.viewComplete()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(m.styles.Title.Render("✂ saidan - cut and split tables"))
	s.WriteString("\n")
	s.WriteString(m.styles.Subtitle.Render("Select a CSV or XLSX file"))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n")
	if m.notice != "" {
		s.WriteString(m.styles.Error.Render(m.notice))
		s.WriteString("\n")
	}
	s.WriteString(m.styles.Help.Render(m.statusLine() + " • s: sound • t: theme • q: quit"))

	return s.String()
}

func (m Model) statusLine() string {
	theme := string(m.prefs.Theme())
	if m.prefs.Theme() == settings.ThemeSystem {
		theme += " (" + string(m.styles.Theme) + ")"
	}
	sound := "off"
	if m.prefs.SoundEnabled() {
		sound = "on"
	}
	return fmt.Sprintf("theme: %s • sound: %s • format: %s", theme, sound, m.format)
}

func (m Model) viewPreview() string {
	var s strings.Builder

	files := m.cutter.Files()
	name := filepath.Base(files[0].Name)
	if len(files) > 1 {
		name = fmt.Sprintf("%s and %d more", name, len(files)-1)
	}
	cur := m.cutter.Current()

	s.WriteString(m.styles.Title.Render("✂ " + name))
	s.WriteString("\n")
	s.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("%d rows × %d columns • %s", cur.RowCount(), cur.ColumnCount(), m.cutter.Stage())))
	s.WriteString("\n")

	if m.cutter.SplitEnabled() {
		header := "no header"
		if m.cutter.IncludeHeader() {
			header = "header on each file"
		}
		s.WriteString(m.styles.Checked.Render(fmt.Sprintf("split: %d files of up to %d rows, %s", len(m.cutter.Split()), m.cutter.RowsPerFile(), header)))
		s.WriteString("\n")
	}
	s.WriteString("\n")

	if cur.IsEmpty() {
		s.WriteString(m.styles.Unselected.Render("Everything has been cut. Press u to revert."))
	} else {
		s.WriteString(m.renderGrid())
	}
	s.WriteString("\n\n")

	marking := "columns"
	if m.axis == axisRows {
		marking = "rows"
	}
	keep := "keep left"
	if m.cutter.Selection().Inverted() {
		keep = "keep right (inverted)"
	}
	s.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("marking %s • %s • %s", marking, keep, m.statusLine())))
	if m.notice != "" {
		s.WriteString("\n")
		s.WriteString(m.styles.Success.Render(m.notice))
	}
	s.WriteString("\n")
	s.WriteString(m.help.View(m.keys))

	return s.String()
}

// renderGrid draws the visible window of the current dataset. Marked column
// lines show as ✂ above the grid, a marked row line as a cut rule, and cells
// the pending cut would remove are struck through.
func (m Model) renderGrid() string {
	cur := m.cutter.Current()
	sel := m.cutter.Selection()

	rowStart := m.rowOffset
	rowEnd := min(rowStart+m.cfg.Preview.Rows, cur.RowCount())
	colStart := m.colOffset
	colEnd := min(colStart+m.cfg.Preview.Columns, cur.ColumnCount())

	widths := make([]int, colEnd-colStart)
	for r := rowStart; r < rowEnd; r++ {
		for c := colStart; c < colEnd; c++ {
			widths[c-colStart] = max(widths[c-colStart], min(lipgloss.Width(cur.Rows[r][c]), maxCellWidth))
		}
	}

	line, hasLine := sel.EffectiveColumnLine()
	inverted := sel.Inverted()
	columnRemoved := func(c int) bool {
		if !hasLine {
			return false
		}
		if inverted {
			return c <= line
		}
		return c > line
	}
	rowLine, hasRowLine := sel.RowCutIndex()

	gutter := len(strconv.Itoa(cur.RowCount())) + 2

	var b strings.Builder

	// marker row
	b.WriteString(strings.Repeat(" ", gutter))
	for c := colStart; c < colEnd; c++ {
		b.WriteString(strings.Repeat(" ", widths[c-colStart]+2))
		if c == colEnd-1 {
			break
		}
		switch {
		case sel.IsColumnLineSelected(c):
			b.WriteString(m.styles.CutMark.Render("✂"))
		case m.axis == axisColumns && c == m.colCursor:
			b.WriteString(m.styles.Cursor.Render("▼"))
		default:
			b.WriteString(" ")
		}
	}
	b.WriteString("\n")

	for r := rowStart; r < rowEnd; r++ {
		num := strconv.Itoa(r + 1)
		prefix := " "
		if m.axis == axisRows && r == m.rowCursor {
			prefix = m.styles.Cursor.Render("›")
		}
		b.WriteString(prefix)
		b.WriteString(m.styles.Border.Render(strings.Repeat(" ", gutter-1-len(num)-1) + num + " "))

		rowRemoved := hasRowLine && r <= rowLine
		for c := colStart; c < colEnd; c++ {
			cell := truncate(cur.Rows[r][c], maxCellWidth)
			cell = " " + cell + strings.Repeat(" ", widths[c-colStart]-lipgloss.Width(cell)) + " "

			style := m.styles.Cell
			switch {
			case rowRemoved || columnRemoved(c):
				style = m.styles.Removed
			case r == 0:
				style = m.styles.Header
			}
			b.WriteString(style.Render(cell))

			if c == colEnd-1 {
				break
			}
			switch {
			case sel.IsColumnLineSelected(c):
				b.WriteString(m.styles.CutMark.Render("┃"))
			case m.axis == axisColumns && c == m.colCursor:
				b.WriteString(m.styles.Cursor.Render("│"))
			default:
				b.WriteString(m.styles.Border.Render("│"))
			}
		}
		b.WriteString("\n")

		width := gutter
		for _, w := range widths {
			width += w + 3
		}
		switch {
		case hasRowLine && r == rowLine:
			b.WriteString(m.styles.CutMark.Render("✂" + strings.Repeat("─", max(width-2, 1))))
			b.WriteString("\n")
		case m.axis == axisRows && r == m.rowCursor:
			b.WriteString(m.styles.Cursor.Render(" " + strings.Repeat("┄", max(width-2, 1))))
			b.WriteString("\n")
		}
	}

	if rowEnd < cur.RowCount() || colEnd < cur.ColumnCount() || rowStart > 0 || colStart > 0 {
		b.WriteString(m.styles.Border.Render(fmt.Sprintf("rows %d-%d of %d, columns %d-%d of %d",
			rowStart+1, rowEnd, cur.RowCount(), colStart+1, colEnd, cur.ColumnCount())))
	}

	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

func (m Model) viewSplit() string {
	var s strings.Builder

	s.WriteString(m.styles.Title.Render("✂ Split into files"))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%d rows to split\n\n", m.cutter.Current().RowCount()))
	s.WriteString("Rows per file: ")
	s.WriteString(m.splitInput.View())
	s.WriteString("\n")

	header := "[ ]"
	if m.splitHeader {
		header = "[x]"
	}
	s.WriteString(fmt.Sprintf("Repeat header row in each file: %s\n", header))

	if m.splitErr != "" {
		s.WriteString("\n")
		s.WriteString(m.styles.Error.Render(m.splitErr))
		s.WriteString("\n")
	}
	s.WriteString(m.styles.Help.Render("enter: apply • tab: toggle header • esc: back"))

	return m.styles.Box.Render(s.String())
}

func (m Model) viewProcessing() string {
	var s strings.Builder

	s.WriteString(m.styles.Title.Render("✂ Exporting..."))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("Writing %s files to %s", m.format, m.cfg.Export.Dir))
	s.WriteString("\n\n")
	s.WriteString(m.progress.View())

	return m.styles.Box.Render(s.String())
}

func (m Model) viewComplete() string {
	var s strings.Builder

	s.WriteString(m.styles.Title.Render("✓ Export Complete!"))
	s.WriteString("\n\n")

	maxPathLen := m.width - 20
	if maxPathLen < 30 {
		maxPathLen = 30
	}
	outputPath := m.result.OutputFile
	if len(outputPath) > maxPathLen {
		outputPath = "..." + outputPath[len(outputPath)-maxPathLen+3:]
	}

	kind := "file"
	if m.result.Archived {
		kind = "zip archive"
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(m.styles.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return m.styles.Subtitle.UnsetMarginBottom().PaddingRight(1)
			}
			return m.styles.Unselected.PaddingLeft(1)
		}).
		Rows(
			[]string{"Output", outputPath},
			[]string{"Kind", kind},
			[]string{"Sources", strconv.Itoa(m.result.SourcesCount)},
			[]string{"Files", strconv.Itoa(len(m.result.Files))},
			[]string{"Rows written", strconv.Itoa(m.result.RowsWritten)},
		)

	s.WriteString(t.Render())
	s.WriteString("\n")

	if m.result.Archived {
		shown := m.result.Files
		if len(shown) > 8 {
			shown = shown[:8]
		}
		for _, f := range shown {
			s.WriteString(m.styles.Success.Render("  " + f))
			s.WriteString("\n")
		}
		if extra := len(m.result.Files) - len(shown); extra > 0 {
			s.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("  and %d more", extra)))
			s.WriteString("\n")
		}
	}

	s.WriteString(m.styles.Help.Render("enter: back to preview • r: new file • q: quit"))

	return m.styles.Box.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(m.styles.Error.Render("✗ Error"))
	s.WriteString("\n\n")
	if m.err != nil {
		s.WriteString(m.err.Error())
	}
	s.WriteString("\n\n")
	s.WriteString(m.styles.Help.Render("enter: go back • q: quit"))

	return m.styles.Box.Render(s.String())
}
