// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package layout

import (
	"testing"

	"github.com/galvcast/omafplan/errs"
	"github.com/galvcast/omafplan/media"
	"github.com/galvcast/omafplan/sweep"
)

func mainLayer(cols, rows, tileW, tileH int) media.SourceLayer {
	tiles := make([]media.TileInfo, 0, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			tiles = append(tiles, media.TileInfo{X: c * tileW, Y: r * tileH, Width: tileW, Height: tileH})
		}
	}
	return media.SourceLayer{
		SrcWidth: cols * tileW, SrcHeight: rows * tileH,
		TilesPerRow: cols, TilesPerCol: rows,
		Tiles: tiles,
	}
}

func selectionOf(coords [][2]int) sweep.TileSelection {
	sel := sweep.TileSelection{}
	for _, c := range coords {
		sel.Tiles = append(sel.Tiles, sweep.TileDef{X: c[0], Y: c[1]})
	}
	return sel
}

func TestLoadUnknownGenerator(t *testing.T) {
	_, err := Load("nonexistent")
	if kind, ok := errs.Of(err); !ok || kind != errs.MissingPlugin {
		t.Fatalf("expected MissingPlugin, got %v", err)
	}
}

func TestLoadColumnGenerator(t *testing.T) {
	g, err := Load("column")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if g == nil {
		t.Fatal("expected non-nil generator")
	}
}

func TestColumnGeneratorPacksSixTilesAs2x3(t *testing.T) {
	layer := mainLayer(6, 4, 480, 480)
	g, _ := Load("column")
	if err := g.Init(6, 6, []media.SourceLayer{layer}, nil); err != nil {
		t.Fatalf("Init: %v", err)
	}
	sel := selectionOf([][2]int{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}, {5, 0}})
	rwpk, err := g.GenerateDstRWPK(sel)
	if err != nil {
		t.Fatalf("GenerateDstRWPK: %v", err)
	}
	if rwpk.PackedPicWidth != 2*480 || rwpk.PackedPicHeight != 3*480 {
		t.Fatalf("got %dx%d packed picture, want %dx%d", rwpk.PackedPicWidth, rwpk.PackedPicHeight, 2*480, 3*480)
	}
	if len(rwpk.Regions) != 6 {
		t.Fatalf("expected 6 packed regions, got %d", len(rwpk.Regions))
	}

	dir, err := g.GenerateTilesMergeDirection(sel)
	if err != nil || dir != ColDir {
		t.Fatalf("expected ColDir merge direction, got %v err %v", dir, err)
	}

	grid, err := g.GenerateMergedTilesArrange(sel)
	if err != nil {
		t.Fatalf("GenerateMergedTilesArrange: %v", err)
	}
	if grid.Cols != 2 || grid.Rows != 3 || !grid.Uniform {
		t.Fatalf("got grid %+v, want uniform 2 cols x 3 rows", grid)
	}
}

func TestColumnGeneratorRejectsEmptySelection(t *testing.T) {
	layer := mainLayer(6, 4, 480, 480)
	g, _ := Load("column")
	_ = g.Init(0, 6, []media.SourceLayer{layer}, nil)
	if _, err := g.GenerateDstRWPK(sweep.TileSelection{}); err == nil {
		t.Error("expected error for empty selection")
	}
}

func TestColumnGeneratorReportsLayoutOverflow(t *testing.T) {
	// Two enormous tiles whose packed area exceeds the level 6.2 ceiling.
	layer := media.SourceLayer{
		SrcWidth: 20000, SrcHeight: 20000, TilesPerRow: 2, TilesPerCol: 1,
		Tiles: []media.TileInfo{
			{X: 0, Y: 0, Width: 10000, Height: 10000},
			{X: 10000, Y: 0, Width: 10000, Height: 10000},
		},
	}
	g, _ := Load("column")
	_ = g.Init(2, 2, []media.SourceLayer{layer}, nil)
	sel := selectionOf([][2]int{{0, 0}, {1, 0}})
	if _, err := g.GenerateDstRWPK(sel); err == nil {
		t.Error("expected LayoutOverflow for an oversized packed picture")
	} else if kind, ok := errs.Of(err); !ok || kind != errs.LayoutOverflow {
		t.Errorf("expected LayoutOverflow, got %v", err)
	}
}
