package types

import (
	"path/filepath"
	"strings"
)

// Dataset is an ordered sequence of rows. A header, when present, is simply
// the first row.
type Dataset struct {
	Rows [][]string
}

// NewDataset copies rows into a new Dataset.
func NewDataset(rows [][]string) *Dataset {
	return &Dataset{Rows: copyRows(rows)}
}

func (d *Dataset) RowCount() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// ColumnCount is the width of the first row, or 0 for an empty dataset.
func (d *Dataset) ColumnCount() int {
	if d == nil || len(d.Rows) == 0 {
		return 0
	}
	return len(d.Rows[0])
}

func (d *Dataset) IsEmpty() bool {
	return d.RowCount() == 0
}

func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	return &Dataset{Rows: copyRows(d.Rows)}
}

// FirstRow returns a copy of row 0, or nil when there are no rows.
func (d *Dataset) FirstRow() []string {
	if d.IsEmpty() {
		return nil
	}
	return append([]string(nil), d.Rows[0]...)
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// SourceFile is a dataset together with the file it was loaded from.
type SourceFile struct {
	Name string
	Data *Dataset
}

// BaseName is the file name without directory or extension.
func (s *SourceFile) BaseName() string {
	base := filepath.Base(s.Name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type ExportResult struct {
	OutputFile   string
	Files        []string
	RowsWritten  int
	SourcesCount int
	Archived     bool
}

// Output is what one source file exports to: its split chunks, or a single
// dataset when no split is configured.
type Output struct {
	Source   *SourceFile
	Datasets []*Dataset
	Split    bool
}
