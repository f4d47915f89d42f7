// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package track implements the Extractor Track Assembler (C5): it
// turns a sweep.Registry of distinct tile selections into one
// ExtractorTrack per viewport, each carrying its packed layout,
// region-wise packing, and rewritten parameter sets.
package track

import (
	"github.com/galvcast/omafplan/errs"
	"github.com/galvcast/omafplan/hevc"
	"github.com/galvcast/omafplan/layout"
	"github.com/galvcast/omafplan/media"
	"github.com/galvcast/omafplan/sweep"
)

// ExtractorTrack is a single extractor track's full packing result for one viewport.
type ExtractorTrack struct {
	ViewportIndex     int
	Selection         sweep.TileSelection
	Layout            layout.PackedLayout
	RWPK              layout.RWPK
	Coverage          sweep.CoverageInfo
	MergeDir          layout.MergeDirection
	VPS, SPS, PPS     []byte
	PackedWidth       int
	PackedHeight      int
	SourceResolutions []media.Resolution
}

// rewriter is the capability this package needs from the borrowed
// viewport-math handle: regenerating parameter sets for the packed
// picture. Declaring it locally, rather than importing package
// geometry, keeps track decoupled from the concrete projection
// adapters; any type satisfying it (by structural typing) works.
type rewriter interface {
	GenerateSPS(orig []byte, packedW, packedH int) ([]byte, error)
	GeneratePPS(orig []byte, grid hevc.TileGrid) ([]byte, error)
}

// ChooseTracksPerSegThread auto-selects how many extractor tracks to
// pack into each segmentation thread when the caller leaves it
// unconfigured: the largest of 4, 3, 2, 1 that evenly divides the
// source tile count (CheckAndFillInitInfo's divisibility scan,
// preserved verbatim per the Open Question decision to keep this
// exact order rather than a cleaner formula).
func ChooseTracksPerSegThread(tileRows, tileCols int, configured int) int {
	if configured != 0 {
		return configured
	}
	total := tileRows * tileCols
	switch {
	case total%4 == 0:
		return 4
	case total%3 == 0:
		return 3
	case total%2 == 0:
		return 2
	default:
		return 1
	}
}

// Assemble builds one ExtractorTrack per recorded selection in
// registry, using gens[N] as the packing generator for every
// selection of cardinality N. Assembly is atomic: any failure at any
// point discards the map built so far and returns nil, matching
// GenerateExtractorTracks' "delete everything accumulated, return the
// error" behavior — Go's local map makes that a matter of never
// returning the map to the caller until the whole pass has succeeded,
// rather than an explicit free loop.
func Assemble(streams []media.SourceLayer, registry *sweep.Registry, gens map[int]layout.Generator, rw rewriter, projType media.ProjectionType) (map[int]*ExtractorTrack, error) {
	if registry == nil {
		return nil, errs.New(errs.NullInput, "registry is nil")
	}
	if len(streams) == 0 {
		return nil, errs.New(errs.NullInput, "no source layers provided")
	}
	if rw == nil {
		return nil, errs.New(errs.NullInput, "viewport math handle is nil")
	}

	main := streams[0]
	resolutions := make([]media.Resolution, len(streams))
	for i, s := range streams {
		resolutions[i] = s.Resolution()
	}

	result := make(map[int]*ExtractorTrack)
	for _, n := range registry.Sizes() {
		gen, ok := gens[n]
		if !ok {
			return nil, errs.New(errs.MissingPlugin, "no packing generator initialised for selection size %d", n)
		}
		for _, entry := range registry.BySize[n] {
			et, err := assembleOne(entry, gen, rw, main, resolutions)
			if err != nil {
				return nil, err
			}
			result[entry.ViewportID] = et
		}
	}
	return result, nil
}

func assembleOne(entry sweep.Entry, gen layout.Generator, rw rewriter, main media.SourceLayer, resolutions []media.Resolution) (*ExtractorTrack, error) {
	rwpk, err := gen.GenerateDstRWPK(entry.Selection)
	if err != nil {
		return nil, errs.Wrap(errs.LayoutFailure, err, "generating region-wise packing for viewport %d", entry.ViewportID)
	}
	grid, err := gen.GenerateMergedTilesArrange(entry.Selection)
	if err != nil {
		return nil, errs.Wrap(errs.LayoutFailure, err, "arranging merged tiles for viewport %d", entry.ViewportID)
	}
	dir, err := gen.GenerateTilesMergeDirection(entry.Selection)
	if err != nil {
		return nil, errs.Wrap(errs.LayoutFailure, err, "computing merge direction for viewport %d", entry.ViewportID)
	}
	packedW, packedH := gen.PackedDims()

	newSPS, err := rw.GenerateSPS(main.SPS, packedW, packedH)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidParameterSet, err, "rewriting SPS for viewport %d", entry.ViewportID)
	}
	newPPS, err := rw.GeneratePPS(main.PPS, grid)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidParameterSet, err, "rewriting PPS for viewport %d", entry.ViewportID)
	}

	packed := layout.PackedLayout{Width: packedW, Height: packedH, Tiles: rwpk.Regions}

	return &ExtractorTrack{
		ViewportIndex:     entry.ViewportID,
		Selection:         entry.Selection,
		Layout:            packed,
		RWPK:              rwpk,
		Coverage:          entry.Coverage,
		MergeDir:          dir,
		VPS:               main.VPS,
		SPS:               newSPS,
		PPS:               newPPS,
		PackedWidth:       packedW,
		PackedHeight:      packedH,
		SourceResolutions: resolutions,
	}, nil
}
