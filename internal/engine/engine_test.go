package engine

import (
	"fmt"
	"testing"

	"github.com/nconklindev/saidan/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// grid builds rows x cols cells named "r<row>c<col>".
func grid(rows, cols int) *types.Dataset {
	out := make([][]string, rows)
	for r := range out {
		out[r] = make([]string, cols)
		for c := range out[r] {
			out[r][c] = fmt.Sprintf("r%dc%d", r, c)
		}
	}
	return &types.Dataset{Rows: out}
}

func TestCutColumns(t *testing.T) {
	tests := []struct {
		name     string
		lines    []int
		inverted bool
		wantCols int
		wantHead []string
	}{
		{"No selection", nil, false, 4, []string{"r0c0", "r0c1", "r0c2", "r0c3"}},
		{"Default keeps left", []int{1}, false, 2, []string{"r0c0", "r0c1"}},
		{"Inverted keeps right", []int{1}, true, 2, []string{"r0c2", "r0c3"}},
		{"Leftmost line governs", []int{2, 0, 1}, false, 1, []string{"r0c0"}},
		{"Leftmost line governs inverted", []int{2, 0}, true, 3, []string{"r0c1", "r0c2", "r0c3"}},
		{"Line past the end keeps all", []int{9}, false, 4, []string{"r0c0", "r0c1", "r0c2", "r0c3"}},
		{"Line past the end inverted drops all", []int{9}, true, 0, []string{}},
		{"Last interior line", []int{2}, true, 1, []string{"r0c3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := grid(3, 4)
			got := CutColumns(d, tt.lines, tt.inverted)

			require.Equal(t, 3, got.RowCount())
			for _, row := range got.Rows {
				assert.Len(t, row, tt.wantCols)
			}
			assert.Equal(t, tt.wantHead, got.Rows[0])
			assert.Equal(t, grid(3, 4), d, "input must not be modified")
		})
	}
}

func TestCutColumns_KeepCounts(t *testing.T) {
	const cols = 6
	d := grid(5, cols)

	for m := 0; m < cols-1; m++ {
		left := CutColumns(d, []int{m}, false)
		right := CutColumns(d, []int{m}, true)

		assert.Equal(t, m+1, left.ColumnCount(), "default m=%d", m)
		assert.Equal(t, cols-m-1, right.ColumnCount(), "inverted m=%d", m)
	}
}

func TestCutColumns_RepeatedWithClampedSelection(t *testing.T) {
	d := grid(4, 5)

	for _, inverted := range []bool{false, true} {
		for m := 0; m < 4; m++ {
			once := CutColumns(d, []int{m}, inverted)
			clamped := min(m, max(once.ColumnCount()-1, 0))

			assert.NotPanics(t, func() {
				twice := CutColumns(once, []int{clamped}, inverted)
				assert.LessOrEqual(t, twice.ColumnCount(), once.ColumnCount())
				assert.GreaterOrEqual(t, twice.ColumnCount(), 0)
			})
		}
	}
}

func TestCutColumns_EmptyDataset(t *testing.T) {
	d := &types.Dataset{Rows: [][]string{}}
	got := CutColumns(d, []int{0}, false)
	assert.Same(t, d, got)
}

func TestApplyColumnCuts(t *testing.T) {
	d := grid(2, 6)

	got := ApplyColumnCuts(d, []ColumnCut{{Line: 3}, {Line: 0, Inverted: true}})
	assert.Equal(t, []string{"r0c1", "r0c2", "r0c3"}, got.Rows[0])

	assert.Equal(t, []string{"r1c1", "r1c2", "r1c3"}, CutRow(d.Rows[1], []ColumnCut{{Line: 3}, {Line: 0, Inverted: true}}))
	assert.Nil(t, CutRow(nil, []ColumnCut{{Line: 1}}))
}

func TestCutRows(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		wantRows int
		wantErr  error
	}{
		{"Zero is a no-op", 0, 10, nil},
		{"Cut prefix", 3, 7, nil},
		{"Cut all but one", 9, 1, nil},
		{"Cut exactly all", 10, 0, nil},
		{"Cut more than all", 25, 0, nil},
		{"Negative", -1, 0, ErrInvalidRowCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CutRows(grid(10, 2), tt.count)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, got.RowCount())
			if tt.wantRows > 0 {
				assert.Equal(t, fmt.Sprintf("r%dc0", tt.count), got.Rows[0][0])
			}
		})
	}
}

func TestSplitRows(t *testing.T) {
	tests := []struct {
		name        string
		rows        int
		rowsPerFile int
		wantSizes   []int
	}{
		{"Even split", 20, 10, []int{10, 10}},
		{"Short final chunk", 25, 10, []int{10, 10, 5}},
		{"Single chunk", 5, 10, []int{5}},
		{"One row per file", 3, 1, []int{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := grid(tt.rows, 3)
			chunks, err := SplitRows(d, tt.rowsPerFile, nil)
			require.NoError(t, err)
			require.Len(t, chunks, len(tt.wantSizes))
			assert.Equal(t, ChunkCount(tt.rows, tt.rowsPerFile), len(chunks))

			var joined [][]string
			for i, c := range chunks {
				assert.Equal(t, tt.wantSizes[i], c.RowCount())
				joined = append(joined, c.Rows...)
			}
			assert.Equal(t, d.Rows, joined)
		})
	}
}

func TestSplitRows_Header(t *testing.T) {
	header := []string{"a", "b"}
	chunks, err := SplitRows(grid(5, 2), 2, header)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	for _, c := range chunks {
		assert.Equal(t, header, c.Rows[0])
	}
	assert.Equal(t, 3, chunks[0].RowCount())
	assert.Equal(t, 2, chunks[2].RowCount())

	chunks[0].Rows[0][0] = "changed"
	assert.Equal(t, "a", chunks[1].Rows[0][0], "header must be copied per chunk")
	assert.Equal(t, "a", header[0])
}

func TestSplitRows_Invalid(t *testing.T) {
	for _, n := range []int{0, -4} {
		_, err := SplitRows(grid(3, 2), n, nil)
		assert.ErrorIs(t, err, ErrInvalidSplitSize)
	}

	_, err := SplitRows(&types.Dataset{}, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidSplitSize)

	chunks, err := SplitRows(&types.Dataset{}, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestErrors(t *testing.T) {
	perr := &ParseError{File: "a.csv", Msg: `record on line 2: wrong number of fields`}
	assert.ErrorIs(t, perr, ErrParse)
	assert.Equal(t, "a.csv: record on line 2: wrong number of fields", perr.Error())
	assert.Equal(t, "bad", (&ParseError{Msg: "bad"}).Error())

	cerr := &ColumnCountError{File: "b.csv", Want: 3, Got: 4}
	assert.ErrorIs(t, cerr, ErrColumnCountMismatch)
	assert.Contains(t, cerr.Error(), "b.csv has 4 columns, expected 3")
}
