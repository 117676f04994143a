// Package export writes transformed datasets to disk, either as one file or
// as a zip archive with a folder per source file.
package export

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/nconklindev/saidan/internal/types"

	"github.com/xuri/excelize/v2"
)

const (
	ArchivePrefix    = "saidan"
	archiveTimestamp = "20060102150405"
	sheetName        = "Sheet1"
)

var ErrNothingToExport = errors.New("nothing to export")

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(s, "."))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

func (f Format) Ext() string { return "." + string(f) }

// ChunkName names chunk i (0-based) of a split as <base>_<i+1>.<ext>.
func ChunkName(base string, i int, f Format) string {
	return fmt.Sprintf("%s_%d%s", base, i+1, f.Ext())
}

// SingleName names the lone output of an unsplit single-file export.
func SingleName(base string, f Format) string {
	return base + "_cut" + f.Ext()
}

// ArchiveName is saidan_<YYYYMMDDHHmmss>.zip for the given time.
func ArchiveName(t time.Time) string {
	return fmt.Sprintf("%s_%s.zip", ArchivePrefix, t.Format(archiveTimestamp))
}

// Write serializes d in the given format.
func Write(w io.Writer, d *types.Dataset, f Format) error {
	switch f {
	case FormatXLSX:
		return WriteXLSX(w, d)
	default:
		return WriteCSV(w, d)
	}
}

func WriteCSV(w io.Writer, d *types.Dataset) error {
	writer := csv.NewWriter(w)
	return writer.WriteAll(d.Rows)
}

func WriteXLSX(w io.Writer, d *types.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}
	for i, row := range d.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := sw.SetRow(cell, values); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(w)
}

// Entry is one file of an export. Folder is empty for a flat layout.
type Entry struct {
	Folder string
	Name   string
	Data   *types.Dataset
}

func (e Entry) Path() string {
	if e.Folder == "" {
		return e.Name
	}
	return path.Join(e.Folder, e.Name)
}

// Plan names every dataset the outputs will produce. Several sources get a
// folder each, named after the source without its extension.
func Plan(outputs []types.Output, f Format) []Entry {
	total := 0
	for _, o := range outputs {
		total += len(o.Datasets)
	}

	var entries []Entry
	folders := make(map[string]int)
	for _, o := range outputs {
		base := o.Source.BaseName()

		folder := ""
		if len(outputs) > 1 {
			folder = uniqueName(folders, base)
		}

		for i, d := range o.Datasets {
			var name string
			switch {
			case o.Split:
				name = ChunkName(base, i, f)
			case total == 1:
				name = SingleName(base, f)
			default:
				name = base + f.Ext()
			}
			entries = append(entries, Entry{Folder: folder, Name: name, Data: d})
		}
	}
	return entries
}

func uniqueName(seen map[string]int, name string) string {
	seen[name]++
	if n := seen[name]; n > 1 {
		return fmt.Sprintf("%s_%d", name, n)
	}
	return name
}

// Export writes outputs into dir. A single dataset is written as a plain
// file; anything more goes into a timestamped zip archive. Progress, when
// non-nil, receives fractions in [0, 1] and is never blocked on. A failed
// export leaves no partial file behind.
func Export(ctx context.Context, dir string, outputs []types.Output, f Format, now time.Time, progress chan<- float64) (*types.ExportResult, error) {
	entries := Plan(outputs, f)
	if len(entries) == 0 {
		return nil, ErrNothingToExport
	}

	result := &types.ExportResult{SourcesCount: len(outputs)}
	for _, e := range entries {
		result.Files = append(result.Files, e.Path())
		result.RowsWritten += e.Data.RowCount()
	}

	if len(entries) == 1 {
		result.OutputFile = filepath.Join(dir, entries[0].Name)
		err := writeAtomic(result.OutputFile, func(w io.Writer) error {
			return Write(w, entries[0].Data, f)
		})
		if err != nil {
			return nil, err
		}
		report(progress, 1)
		return result, nil
	}

	result.Archived = true
	result.OutputFile = filepath.Join(dir, ArchiveName(now))
	err := writeAtomic(result.OutputFile, func(w io.Writer) error {
		return WriteArchive(ctx, w, entries, f, progress)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// WriteArchive zips entries into w.
func WriteArchive(ctx context.Context, w io.Writer, entries []Entry, f Format, progress chan<- float64) error {
	zw := zip.NewWriter(w)
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		fw, err := zw.Create(e.Path())
		if err != nil {
			return err
		}
		if err := Write(fw, e.Data, f); err != nil {
			return fmt.Errorf("%s: %w", e.Path(), err)
		}
		report(progress, float64(i+1)/float64(len(entries)))
	}
	return zw.Close()
}

func writeAtomic(dest string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".saidan-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

func report(progress chan<- float64, p float64) {
	if progress == nil {
		return
	}
	select {
	case progress <- p:
	default:
	}
}
