package cutter

import (
	"slices"

	"github.com/nconklindev/saidan/internal/engine"
	"github.com/nconklindev/saidan/internal/types"
)

// Current is the effective dataset of the first file: the column-cut result,
// else the row-cut result, else the original.
func (c *Controller) Current() *types.Dataset {
	return c.CurrentFor(0)
}

func (c *Controller) CurrentFor(i int) *types.Dataset {
	if i < 0 || i >= len(c.files) {
		return nil
	}
	return c.files[i].current()
}

func (c *Controller) Original() *types.Dataset {
	if !c.Loaded() {
		return nil
	}
	return c.files[0].source.Data
}

// Split returns the chunks of the first file, or nil when no split is set.
func (c *Controller) Split() []*types.Dataset {
	if !c.Loaded() {
		return nil
	}
	return c.files[0].split
}

func (c *Controller) Files() []*types.SourceFile {
	out := make([]*types.SourceFile, len(c.files))
	for i, p := range c.files {
		out[i] = p.source
	}
	return out
}

// Outputs lists, per source file, the split chunks or the current dataset
// when no split is configured.
func (c *Controller) Outputs() []types.Output {
	out := make([]types.Output, len(c.files))
	for i, p := range c.files {
		o := types.Output{Source: p.source, Split: c.split.enabled}
		if c.split.enabled {
			o.Datasets = p.split
		} else {
			o.Datasets = []*types.Dataset{p.current()}
		}
		out[i] = o
	}
	return out
}

func (c *Controller) Stage() Stage {
	if !c.Loaded() {
		return StageEmpty
	}
	p := c.files[0]
	switch {
	case c.split.enabled:
		return StageSplit
	case p.columnCut != nil:
		return StageColumnCut
	case p.rowCut != nil:
		return StageRowCut
	}
	return StageLoaded
}

func (c *Controller) RowsPerFile() int    { return c.split.rowsPerFile }
func (c *Controller) SplitEnabled() bool  { return c.split.enabled }
func (c *Controller) IncludeHeader() bool { return c.split.includeHeader }
func (c *Controller) RowCutCount() int    { return c.rowCutCount }

func (c *Controller) ColumnCuts() []engine.ColumnCut {
	return slices.Clone(c.columnCuts)
}

// Transformed reports whether any stage differs from the originals.
func (c *Controller) Transformed() bool {
	return c.Stage() > StageLoaded
}
