// Package selection tracks cut lines picked in the preview before they are
// committed. Column lines allow several at once; at most one row line is
// active.
package selection

import (
	"maps"
	"slices"
)

type State struct {
	columnLines map[int]struct{}
	rowCut      int
	hasRowCut   bool
	inverted    bool
}

func New() *State {
	return &State{columnLines: make(map[int]struct{})}
}

// ToggleColumnLine selects the boundary right of column i, or deselects it if
// it was already selected. Reports whether the line is selected afterwards.
func (s *State) ToggleColumnLine(i int) bool {
	if _, ok := s.columnLines[i]; ok {
		delete(s.columnLines, i)
		return false
	}
	s.columnLines[i] = struct{}{}
	return true
}

// ToggleRowLine selects the boundary below row i. Selecting the active line
// again clears it; selecting another line replaces it.
func (s *State) ToggleRowLine(i int) bool {
	if s.hasRowCut && s.rowCut == i {
		s.hasRowCut = false
		s.rowCut = 0
		return false
	}
	s.rowCut = i
	s.hasRowCut = true
	return true
}

func (s *State) SetInverted(inverted bool) { s.inverted = inverted }

func (s *State) ToggleInverted() bool {
	s.inverted = !s.inverted
	return s.inverted
}

func (s *State) Inverted() bool { return s.inverted }

func (s *State) IsColumnLineSelected(i int) bool {
	_, ok := s.columnLines[i]
	return ok
}

// ColumnLines returns the selected column boundaries in ascending order.
func (s *State) ColumnLines() []int {
	return slices.Sorted(maps.Keys(s.columnLines))
}

// EffectiveColumnLine is the leftmost selected boundary, which is the one a
// commit cuts at.
func (s *State) EffectiveColumnLine() (int, bool) {
	if len(s.columnLines) == 0 {
		return 0, false
	}
	return slices.Min(s.ColumnLines()), true
}

func (s *State) RowCutIndex() (int, bool) {
	return s.rowCut, s.hasRowCut
}

// RowCutCount is the number of leading rows the active row line removes.
func (s *State) RowCutCount() int {
	if !s.hasRowCut {
		return 0
	}
	return s.rowCut + 1
}

func (s *State) HasPending() bool {
	return len(s.columnLines) > 0 || s.hasRowCut
}

// Clear drops pending lines. The inverted flag is a mode, not a selection,
// and survives.
func (s *State) Clear() {
	clear(s.columnLines)
	s.hasRowCut = false
	s.rowCut = 0
}

// Reset returns the state to its zero value, inverted mode included.
func (s *State) Reset() {
	s.Clear()
	s.inverted = false
}

// ClampTo drops column lines that are no longer interior boundaries of a
// dataset with columnCount columns.
func (s *State) ClampTo(columnCount int) {
	for i := range s.columnLines {
		if i < 0 || i >= columnCount-1 {
			delete(s.columnLines, i)
		}
	}
}
