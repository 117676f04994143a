package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/saidan/internal/engine"
	"github.com/nconklindev/saidan/internal/types"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

const HeaderDetectionLimit = 20

var ErrUnsupportedFile = errors.New("unsupported file type")

// AllowedExtensions lists the file types the loader can parse.
var AllowedExtensions = []string{".csv", ".xlsx"}

// IsTabular reports whether path has a supported extension.
func IsTabular(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// FilterTabular splits paths into ones the loader accepts and ones it rejects
// by extension, without opening anything.
func FilterTabular(paths []string) (accepted, rejected []string) {
	for _, p := range paths {
		if IsTabular(p) {
			accepted = append(accepted, p)
		} else {
			rejected = append(rejected, p)
		}
	}
	return accepted, rejected
}

// ReadFile parses a CSV or XLSX file into a dataset. Blank rows are skipped.
func ReadFile(path string) (*types.SourceFile, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		rows [][]string
		err  error
	)
	switch ext {
	case ".csv":
		rows, err = readCSVFile(path)
	case ".xlsx":
		rows, err = readXLSXFile(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, ext)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", path, engine.ErrEmptyDataset)
	}

	return &types.SourceFile{Name: path, Data: &types.Dataset{Rows: rows}}, nil
}

func readCSVFile(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows, err := ReadCSV(file)
	if err != nil {
		var perr *engine.ParseError
		if errors.As(err, &perr) {
			perr.File = path
		}
		return nil, err
	}
	return rows, nil
}

// ReadCSV parses delimited text. Every record must have the same number of
// fields; a ragged record is reported as a parse error.
func ReadCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, &engine.ParseError{Msg: err.Error()}
	}

	rows := dropBlankRows(records)
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func readXLSXFile(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &engine.ParseError{File: path, Msg: err.Error()}
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, &engine.ParseError{File: path, Msg: err.Error()}
	}

	return padRows(dropBlankRows(rows)), nil
}

func dropBlankRows(rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if !isBlank(row) {
			out = append(out, row)
		}
	}
	return out
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// padRows widens every row to the widest one. Spreadsheet readers drop
// trailing empty cells, which would otherwise leave rows ragged.
func padRows(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	for i, row := range rows {
		if len(row) < width {
			rows[i] = append(row, make([]string, width-len(row))...)
		}
	}
	return rows
}

// LoadAll parses every path concurrently. Either every file loads and the
// column counts agree, or an error is returned and no files are.
func LoadAll(ctx context.Context, paths []string) ([]*types.SourceFile, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files given: %w", engine.ErrEmptyDataset)
	}

	files := make([]*types.SourceFile, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := ReadFile(p)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := engine.CheckColumnCounts(files); err != nil {
		return nil, err
	}
	return files, nil
}

// SuggestRowCut looks for title or banner rows above the real header, the
// way exported reports often carry them. It returns the row line to
// preselect, i.e. the line just above the detected header.
func SuggestRowCut(d *types.Dataset) (int, bool) {
	headerIdx := findHeaderRow(d.Rows)
	if headerIdx <= 0 {
		return 0, false
	}
	return headerIdx - 1, true
}

// findHeaderRow locates the first row that appears to be a header
// by finding the row with the most non-empty text cells
func findHeaderRow(rows [][]string) int {
	maxNonEmpty := 0
	headerIdx := -1

	searchLimit := min(len(rows), HeaderDetectionLimit)

	for i := 0; i < searchLimit; i++ {
		nonEmptyCount := 0
		hasText := false

		for _, cell := range rows[i] {
			trimmed := strings.TrimSpace(cell)
			if trimmed != "" {
				nonEmptyCount++
				if containsLetters(trimmed) {
					hasText = true
				}
			}
		}

		// Header should have multiple columns AND contain text
		if nonEmptyCount >= 2 && hasText && nonEmptyCount > maxNonEmpty {
			maxNonEmpty = nonEmptyCount
			headerIdx = i
		}
	}

	return headerIdx
}

func containsLetters(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}
