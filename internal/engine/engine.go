// Package engine holds the pure transforms applied to a dataset: cutting a
// prefix of rows, cutting columns at a boundary, and splitting rows into
// chunks. Every transform returns a new dataset and leaves its input alone.
package engine

import (
	"slices"

	"github.com/nconklindev/saidan/internal/types"
)

// ColumnCut is a single committed column cut. Line names the boundary to the
// right of column Line.
type ColumnCut struct {
	Line     int
	Inverted bool
}

// CutColumns removes columns at the leftmost selected boundary. In default
// mode columns [0, m] are kept; inverted keeps [m+1, end]. An empty
// selection returns d unchanged.
func CutColumns(d *types.Dataset, lines []int, inverted bool) *types.Dataset {
	if len(lines) == 0 || d.IsEmpty() {
		return d
	}
	return cutAt(d, slices.Min(lines), inverted)
}

// ApplyColumnCuts folds cuts over d in order.
func ApplyColumnCuts(d *types.Dataset, cuts []ColumnCut) *types.Dataset {
	for _, c := range cuts {
		d = cutAt(d, c.Line, c.Inverted)
	}
	return d
}

// CutRow applies the same column cuts to a single row, e.g. a header kept
// outside the dataset.
func CutRow(row []string, cuts []ColumnCut) []string {
	if row == nil {
		return nil
	}
	d := ApplyColumnCuts(&types.Dataset{Rows: [][]string{row}}, cuts)
	return d.Rows[0]
}

func cutAt(d *types.Dataset, m int, inverted bool) *types.Dataset {
	if d.IsEmpty() {
		return d
	}

	rows := make([][]string, len(d.Rows))
	for i, row := range d.Rows {
		lo, hi := keepRange(len(row), m, inverted)
		rows[i] = append(make([]string, 0, hi-lo), row[lo:hi]...)
	}
	return &types.Dataset{Rows: rows}
}

// keepRange returns the half-open column range that survives a cut at m,
// clamped to [0, width].
func keepRange(width, m int, inverted bool) (int, int) {
	split := min(max(m+1, 0), width)
	if inverted {
		return split, width
	}
	return 0, split
}

// CutRows removes the first count rows. Cutting more rows than exist yields
// an empty dataset.
func CutRows(d *types.Dataset, count int) (*types.Dataset, error) {
	if count < 0 {
		return nil, ErrInvalidRowCount
	}
	if count == 0 {
		return d, nil
	}
	if count >= d.RowCount() {
		return &types.Dataset{Rows: [][]string{}}, nil
	}
	return types.NewDataset(d.Rows[count:]), nil
}

// SplitRows partitions d into consecutive chunks of rowsPerFile rows. When
// header is non-nil it is prepended to every chunk.
func SplitRows(d *types.Dataset, rowsPerFile int, header []string) ([]*types.Dataset, error) {
	if rowsPerFile <= 0 {
		return nil, ErrInvalidSplitSize
	}
	if d.IsEmpty() {
		return []*types.Dataset{}, nil
	}

	n := d.RowCount()
	chunks := make([]*types.Dataset, 0, (n+rowsPerFile-1)/rowsPerFile)
	for start := 0; start < n; start += rowsPerFile {
		end := min(start+rowsPerFile, n)

		rows := make([][]string, 0, end-start+1)
		if header != nil {
			rows = append(rows, append([]string(nil), header...))
		}
		for _, row := range d.Rows[start:end] {
			rows = append(rows, append([]string(nil), row...))
		}
		chunks = append(chunks, &types.Dataset{Rows: rows})
	}
	return chunks, nil
}

// ChunkCount is the number of chunks SplitRows would produce.
func ChunkCount(rowCount, rowsPerFile int) int {
	if rowsPerFile <= 0 || rowCount <= 0 {
		return 0
	}
	return (rowCount + rowsPerFile - 1) / rowsPerFile
}

// CheckColumnCounts verifies every file agrees with the first file's column
// count, taken from each file's first row.
func CheckColumnCounts(files []*types.SourceFile) error {
	if len(files) < 2 {
		return nil
	}
	want := files[0].Data.ColumnCount()
	if want == 0 {
		return &ColumnCountError{File: files[0].Name, Want: 0, Got: 0}
	}
	for _, f := range files[1:] {
		if got := f.Data.ColumnCount(); got != want {
			return &ColumnCountError{File: f.Name, Want: want, Got: got}
		}
	}
	return nil
}
