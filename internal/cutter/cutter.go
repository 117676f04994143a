// Package cutter owns the loaded datasets and the derived stages computed from
// them. Stages run in a fixed order, row cut then column cut then split, and
// every commit recomputes all of them from the originals so no stage is ever
// left referring to stale upstream data.
package cutter

import (
	"errors"
	"slices"

	"github.com/nconklindev/saidan/internal/engine"
	"github.com/nconklindev/saidan/internal/selection"
	"github.com/nconklindev/saidan/internal/types"

	"go.uber.org/zap"
)

var (
	ErrNotLoaded = errors.New("no dataset loaded")
	ErrNoFiles   = errors.New("no files to load")
)

type Stage int

const (
	StageEmpty Stage = iota
	StageLoaded
	StageRowCut
	StageColumnCut
	StageSplit
)

func (s Stage) String() string {
	switch s {
	case StageLoaded:
		return "loaded"
	case StageRowCut:
		return "row-cut"
	case StageColumnCut:
		return "column-cut"
	case StageSplit:
		return "split"
	}
	return "empty"
}

// SplitRequest carries the split settings for a commit. A nil RowsPerFile
// keeps whatever split was configured before, including none.
type SplitRequest struct {
	RowsPerFile   *int
	IncludeHeader bool
}

// RowsPerFile is a helper for building a SplitRequest literal.
func RowsPerFile(n int) *int { return &n }

type splitParams struct {
	enabled       bool
	rowsPerFile   int
	includeHeader bool
}

type pipeline struct {
	source    *types.SourceFile
	rowCut    *types.Dataset
	columnCut *types.Dataset
	split     []*types.Dataset
}

func (p *pipeline) current() *types.Dataset {
	if p.columnCut != nil {
		return p.columnCut
	}
	if p.rowCut != nil {
		return p.rowCut
	}
	return p.source.Data
}

// Controller is not safe for concurrent use; it belongs to the goroutine
// handling user input.
type Controller struct {
	log       *zap.Logger
	files     []*pipeline
	selection *selection.State

	rowCutCount int
	columnCuts  []engine.ColumnCut
	split       splitParams
}

func New(log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		log:       log.Named("cutter"),
		selection: selection.New(),
	}
}

// Load installs a batch of parsed files. Nothing changes unless the whole
// batch is acceptable.
func (c *Controller) Load(files []*types.SourceFile) error {
	if len(files) == 0 {
		return ErrNoFiles
	}
	for _, f := range files {
		if f == nil || f.Data.IsEmpty() {
			return engine.ErrEmptyDataset
		}
	}
	if err := engine.CheckColumnCounts(files); err != nil {
		c.log.Warn("rejected batch", zap.Int("files", len(files)), zap.Error(err))
		return err
	}

	c.files = make([]*pipeline, len(files))
	for i, f := range files {
		c.files[i] = &pipeline{source: f}
	}
	c.clearDerived()
	c.selection.Reset()

	c.log.Info("loaded",
		zap.Int("files", len(files)),
		zap.Int("rows", files[0].Data.RowCount()),
		zap.Int("columns", files[0].Data.ColumnCount()),
	)
	return nil
}

func (c *Controller) Loaded() bool { return len(c.files) > 0 }

// Selection is the pending cut selection shared with every view.
func (c *Controller) Selection() *selection.State { return c.selection }

// ToggleColumnLine toggles the boundary right of column i of the current
// data. Only interior boundaries can be selected.
func (c *Controller) ToggleColumnLine(i int) (bool, error) {
	cur := c.Current()
	if cur == nil {
		return false, ErrNotLoaded
	}
	if i < 0 || i >= cur.ColumnCount()-1 {
		return false, engine.ErrOutOfRange
	}
	return c.selection.ToggleColumnLine(i), nil
}

// ToggleRowLine toggles the boundary below row i of the current data.
func (c *Controller) ToggleRowLine(i int) (bool, error) {
	cur := c.Current()
	if cur == nil {
		return false, ErrNotLoaded
	}
	if i < 0 || i >= cur.RowCount() {
		return false, engine.ErrOutOfRange
	}
	return c.selection.ToggleRowLine(i), nil
}

func (c *Controller) ToggleInverted() bool { return c.selection.ToggleInverted() }

// Commit applies the pending selection and the split request, then clears
// the selection. An invalid split size is rejected before anything changes.
func (c *Controller) Commit(req SplitRequest) error {
	if !c.Loaded() {
		return ErrNotLoaded
	}
	if req.RowsPerFile != nil && *req.RowsPerFile <= 0 {
		return engine.ErrInvalidSplitSize
	}

	rowCutCount := c.rowCutCount + c.selection.RowCutCount()
	cuts := c.columnCuts
	if m, ok := c.selection.EffectiveColumnLine(); ok {
		cuts = append(slices.Clone(cuts), engine.ColumnCut{Line: m, Inverted: c.selection.Inverted()})
	}
	split := c.split
	if req.RowsPerFile != nil {
		split = splitParams{enabled: true, rowsPerFile: *req.RowsPerFile, includeHeader: req.IncludeHeader}
	}

	files, err := derive(c.files, rowCutCount, cuts, split)
	if err != nil {
		return err
	}

	c.files = files
	c.rowCutCount = rowCutCount
	c.columnCuts = cuts
	c.split = split
	c.selection.Clear()

	c.log.Info("committed",
		zap.Int("row_cut", rowCutCount),
		zap.Int("column_cuts", len(cuts)),
		zap.Bool("split", split.enabled),
		zap.Int("rows_per_file", split.rowsPerFile),
		zap.Stringer("stage", c.Stage()),
	)
	return nil
}

// ClearSplit drops the split stage and returns rows per file to its default.
func (c *Controller) ClearSplit() {
	if !c.Loaded() {
		return
	}
	c.split = c.defaultSplit()
	for _, p := range c.files {
		p.split = nil
	}
}

// Revert discards every derived stage and the pending selection, keeping the
// loaded originals.
func (c *Controller) Revert() {
	c.clearDerived()
	c.selection.Clear()
	c.log.Info("reverted")
}

// Reset returns the controller to its state before any load.
func (c *Controller) Reset() {
	c.files = nil
	c.rowCutCount = 0
	c.columnCuts = nil
	c.split = splitParams{}
	c.selection.Reset()
	c.log.Info("reset")
}

func (c *Controller) clearDerived() {
	for i, p := range c.files {
		c.files[i] = &pipeline{source: p.source}
	}
	c.rowCutCount = 0
	c.columnCuts = nil
	c.split = c.defaultSplit()
}

func (c *Controller) defaultSplit() splitParams {
	if !c.Loaded() {
		return splitParams{}
	}
	return splitParams{rowsPerFile: c.files[0].source.Data.RowCount()}
}

func derive(files []*pipeline, rowCutCount int, cuts []engine.ColumnCut, split splitParams) ([]*pipeline, error) {
	out := make([]*pipeline, len(files))
	for i, f := range files {
		p := &pipeline{source: f.source}
		base := f.source.Data

		if rowCutCount > 0 {
			rc, err := engine.CutRows(base, rowCutCount)
			if err != nil {
				return nil, err
			}
			p.rowCut = rc
			base = rc
		}
		if len(cuts) > 0 {
			p.columnCut = engine.ApplyColumnCuts(base, cuts)
			base = p.columnCut
		}
		if split.enabled {
			var header []string
			if split.includeHeader {
				header = engine.CutRow(f.source.Data.FirstRow(), cuts)
				if rowCutCount == 0 {
					// The header is still the body's first row; drop it so
					// chunk one does not carry it twice.
					base, _ = engine.CutRows(base, 1)
				}
			}
			chunks, err := engine.SplitRows(base, split.rowsPerFile, header)
			if err != nil {
				return nil, err
			}
			p.split = chunks
		}
		out[i] = p
	}
	return out, nil
}
