// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package layout implements the Packing Layout Generator (C3): given
// a tile selection, it arranges the selection's tiles into a single
// packed picture, producing the region-wise packing descriptor, the
// HEVC tile grid the packed picture must be re-encoded with, and the
// merge direction used to build it.
package layout

import (
	"github.com/galvcast/omafplan/hevc"
	"github.com/galvcast/omafplan/media"
	"github.com/galvcast/omafplan/sweep"
)

// Rect is a pixel-space rectangle.
type Rect struct {
	X, Y, W, H int
}

// PackedTile places one source tile at a destination position within the packed picture.
type PackedTile struct {
	Src         Rect
	Dst         Rect
	RotationDeg int
	SourceLayer int
}

// PackedLayout is the full arrangement of a selection's tiles into one packed picture.
type PackedLayout struct {
	Width, Height int
	Tiles         []PackedTile
}

// MergeDirection names how a generator concatenates tiles within the packed picture.
type MergeDirection int

const (
	// ColDir stacks tiles vertically within a column, columns left-to-right.
	ColDir MergeDirection = iota
	// RowDir stacks tiles horizontally within a row, rows top-to-bottom.
	RowDir
)

// RWPK is the OMAF region-wise packing descriptor for one extractor track's packed picture.
type RWPK struct {
	ProjPicWidth, ProjPicHeight     int
	PackedPicWidth, PackedPicHeight int
	Regions                        []PackedTile
}

// Generator is the packing-layout plugin boundary (spec §4.2/§6): a
// named, swappable strategy for turning a tile selection into a
// packed picture. The default "column" generator is registered by
// this package; Load resolves by name rather than dlopen, since every
// generator in this module ships built in.
type Generator interface {
	Init(n, nMax int, streams []media.SourceLayer, layerOrder []int) error
	GenerateDstRWPK(sel sweep.TileSelection) (RWPK, error)
	GenerateMergedTilesArrange(sel sweep.TileSelection) (hevc.TileGrid, error)
	GenerateTilesMergeDirection(sel sweep.TileSelection) (MergeDirection, error)
	PackedDims() (w, h int)
}
