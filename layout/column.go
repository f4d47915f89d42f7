// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package layout

import (
	"math"

	"github.com/galvcast/omafplan/errs"
	"github.com/galvcast/omafplan/hevc"
	"github.com/galvcast/omafplan/media"
	"github.com/galvcast/omafplan/sweep"
)

// defaultCTBSize is the luma coding tree block size assumed when
// deriving CTB-granular tile column/row sizes for a non-uniform HEVC
// tile grid; 64 is the size every stream this planner targets encodes
// with.
const defaultCTBSize = 64

// maxLumaPictureSize6_2 is the HEVC Level 6.2 maximum luma picture
// size in samples (Table A.1), used as the default ceiling a packed
// picture must not exceed.
const maxLumaPictureSize6_2 = 35651584

// factorize finds the two factors of n closest to a square, the same
// reduction sweep.Regularise uses so a regularised selection always
// packs onto a grid this generator can lay out without remainder.
func factorize(n int) (cols, rows int) {
	if n <= 0 {
		return 0, 0
	}
	s := int(math.Sqrt(float64(n)))
	for s > 1 && n%s != 0 {
		s--
	}
	if s <= 0 {
		s = 1
	}
	return s, n / s
}

// columnGenerator packs a selection column-major: tiles fill a column
// top to bottom, columns are placed left to right
// (FillDstRegionWisePacking/FillTilesMergeDirection's column-stacking
// behavior).
type columnGenerator struct {
	streams      []media.SourceLayer
	mainLayer    int
	levelCeiling int
	width        int
	height       int
}

func (g *columnGenerator) Init(n, nMax int, streams []media.SourceLayer, layerOrder []int) error {
	if len(streams) == 0 {
		return errs.New(errs.NullInput, "layout generator requires at least one source layer")
	}
	g.streams = streams
	g.mainLayer = 0
	if len(layerOrder) > 0 {
		g.mainLayer = layerOrder[0]
	}
	if g.mainLayer < 0 || g.mainLayer >= len(streams) {
		return errs.New(errs.StreamNotFound, "layer order references stream %d, have %d streams", g.mainLayer, len(streams))
	}
	g.levelCeiling = maxLumaPictureSize6_2
	return nil
}

// grid computes, for a selection, the column-major tile placement:
// cols/rows, and per-column/row pixel extents sized to the largest
// tile assigned to that column/row.
func (g *columnGenerator) grid(sel sweep.TileSelection) (cols, rows int, colW, rowH []int, err error) {
	n := sel.Len()
	if n == 0 {
		return 0, 0, nil, nil, errs.New(errs.NullInput, "tile selection is empty")
	}
	cols, rows = factorize(n)
	colW = make([]int, cols)
	rowH = make([]int, rows)
	layer := g.streams[g.mainLayer]

	for i, t := range sel.Tiles {
		idx := int(t.Y)*layer.TilesPerRow + int(t.X)
		w, h, ok := layer.TileSize(idx)
		if !ok {
			return 0, 0, nil, nil, errs.New(errs.StreamNotFound, "tile (%d,%d) not present in main layer's tile grid", t.X, t.Y)
		}
		col, row := i/rows, i%rows
		if w > colW[col] {
			colW[col] = w
		}
		if h > rowH[row] {
			rowH[row] = h
		}
	}
	return cols, rows, colW, rowH, nil
}

func prefixSum(dims []int) []int {
	out := make([]int, len(dims)+1)
	for i, d := range dims {
		out[i+1] = out[i] + d
	}
	return out
}

func (g *columnGenerator) GenerateDstRWPK(sel sweep.TileSelection) (RWPK, error) {
	cols, rows, colW, rowH := 0, 0, []int(nil), []int(nil)
	var err error
	cols, rows, colW, rowH, err = g.grid(sel)
	if err != nil {
		return RWPK{}, err
	}

	colOff := prefixSum(colW)
	rowOff := prefixSum(rowH)
	width, height := colOff[cols], rowOff[rows]
	if width*height > g.levelCeiling {
		return RWPK{}, errs.New(errs.LayoutOverflow, "packed picture %dx%d (%d samples) exceeds level ceiling of %d samples", width, height, width*height, g.levelCeiling)
	}
	g.width, g.height = width, height

	layer := g.streams[g.mainLayer]
	regions := make([]PackedTile, 0, sel.Len())
	for i, t := range sel.Tiles {
		idx := int(t.Y)*layer.TilesPerRow + int(t.X)
		info := layer.Tiles[idx]
		col, row := i/rows, i%rows
		regions = append(regions, PackedTile{
			Src:         Rect{X: info.X, Y: info.Y, W: info.Width, H: info.Height},
			Dst:         Rect{X: colOff[col], Y: rowOff[row], W: info.Width, H: info.Height},
			SourceLayer: g.mainLayer,
		})
	}

	return RWPK{
		ProjPicWidth:    layer.SrcWidth,
		ProjPicHeight:   layer.SrcHeight,
		PackedPicWidth:  width,
		PackedPicHeight: height,
		Regions:         regions,
	}, nil
}

func (g *columnGenerator) GenerateMergedTilesArrange(sel sweep.TileSelection) (hevc.TileGrid, error) {
	cols, rows, colW, rowH, err := g.grid(sel)
	if err != nil {
		return hevc.TileGrid{}, err
	}

	uniform := true
	for i := 1; i < len(colW); i++ {
		if colW[i] != colW[0] {
			uniform = false
		}
	}
	for i := 1; i < len(rowH); i++ {
		if rowH[i] != rowH[0] {
			uniform = false
		}
	}

	grid := hevc.TileGrid{Cols: cols, Rows: rows, Uniform: uniform}
	if !uniform {
		// PPS syntax only carries explicit sizes for the first cols-1
		// columns / rows-1 rows; the last is implied by what remains.
		if cols > 1 {
			grid.ColWidths = make([]int, cols-1)
			for i := 0; i < cols-1; i++ {
				grid.ColWidths[i] = ctbUnits(colW[i])
			}
		}
		if rows > 1 {
			grid.RowHeights = make([]int, rows-1)
			for i := 0; i < rows-1; i++ {
				grid.RowHeights[i] = ctbUnits(rowH[i])
			}
		}
	}
	return grid, nil
}

func ctbUnits(pixels int) int {
	n := (pixels + defaultCTBSize - 1) / defaultCTBSize
	if n < 1 {
		return 1
	}
	return n
}

func (g *columnGenerator) GenerateTilesMergeDirection(sel sweep.TileSelection) (MergeDirection, error) {
	if sel.Len() == 0 {
		return ColDir, errs.New(errs.NullInput, "tile selection is empty")
	}
	return ColDir, nil
}

func (g *columnGenerator) PackedDims() (w, h int) { return g.width, g.height }
