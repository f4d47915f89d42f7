// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package hevc

import (
	"bytes"

	"github.com/Eyevinn/mp4ff/bits"

	"github.com/galvcast/omafplan/errs"
)

// ppsHead holds every PPS field before tiles_enabled_flag: none of it
// is touched by RewritePPS, but exp-Golomb/signed-exp-Golomb coding is
// a bijection, so decoding then re-emitting each field reproduces the
// source bits exactly without needing a raw bit copy.
type ppsHead struct {
	dependentSliceSegmentsEnabled bool
	outputFlagPresent             bool
	numExtraSliceHeaderBits       byte
	signDataHidingEnabled         bool
	cabacInitPresent              bool
	numRefIdxL0DefaultMinus1      uint64
	numRefIdxL1DefaultMinus1      uint64
	initQPMinus26                 int64
	constrainedIntraPred          bool
	transformSkipEnabled          bool
	cuQPDeltaEnabled              bool
	diffCuQPDeltaDepth            uint64
	cbQPOffset                    int64
	crQPOffset                    int64
	sliceChromaQPOffsetsPresent   bool
	weightedPred                  bool
	weightedBipred                bool
	transquantBypassEnabled       bool
}

// ParsePPS parses an Annex B HEVC PPS NAL unit, surfacing the tile
// grid RewritePPS needs to replace and capturing everything around it
// for faithful round-tripping.
func ParsePPS(nal []byte) (*PPS, error) {
	if len(nal) == 0 {
		return nil, errs.New(errs.NullInput, "PPS NAL unit is empty")
	}
	body := stripStartCode(nal)
	r := bits.NewAccErrEBSPReader(bytes.NewReader(body))

	header := r.Read(16)
	if naluType(header) != NalPPS {
		return nil, errs.New(errs.InvalidPPS, "NAL unit type %d is not PPS", naluType(header))
	}

	pps := &PPS{}
	pps.PpsID = byte(r.ReadExpGolomb())
	pps.SpsID = byte(r.ReadExpGolomb())

	head := &ppsHead{}
	head.dependentSliceSegmentsEnabled = r.ReadFlag()
	head.outputFlagPresent = r.ReadFlag()
	head.numExtraSliceHeaderBits = byte(r.Read(3))
	head.signDataHidingEnabled = r.ReadFlag()
	head.cabacInitPresent = r.ReadFlag()
	head.numRefIdxL0DefaultMinus1 = r.ReadExpGolomb()
	head.numRefIdxL1DefaultMinus1 = r.ReadExpGolomb()
	head.initQPMinus26 = decodeSE(r.ReadExpGolomb())
	head.constrainedIntraPred = r.ReadFlag()
	head.transformSkipEnabled = r.ReadFlag()
	head.cuQPDeltaEnabled = r.ReadFlag()
	if head.cuQPDeltaEnabled {
		head.diffCuQPDeltaDepth = r.ReadExpGolomb()
	}
	head.cbQPOffset = decodeSE(r.ReadExpGolomb())
	head.crQPOffset = decodeSE(r.ReadExpGolomb())
	head.sliceChromaQPOffsetsPresent = r.ReadFlag()
	head.weightedPred = r.ReadFlag()
	head.weightedBipred = r.ReadFlag()
	head.transquantBypassEnabled = r.ReadFlag()
	pps.head = head

	pps.TilesEnabled = r.ReadFlag()
	pps.EntropySyncEnabled = r.ReadFlag()

	if pps.TilesEnabled {
		cols := int(r.ReadExpGolomb()) + 1
		rows := int(r.ReadExpGolomb()) + 1
		uniform := r.ReadFlag()
		grid := TileGrid{Cols: cols, Rows: rows, Uniform: uniform}
		if !uniform {
			grid.ColWidths = make([]int, cols-1)
			for i := range grid.ColWidths {
				grid.ColWidths[i] = int(r.ReadExpGolomb()) + 1
			}
			grid.RowHeights = make([]int, rows-1)
			for i := range grid.RowHeights {
				grid.RowHeights[i] = int(r.ReadExpGolomb()) + 1
			}
		}
		pps.Grid = grid
		pps.LoopFilterAcrossTile = r.ReadFlag()
	} else {
		pps.Grid = TileGrid{Cols: 1, Rows: 1, Uniform: true}
	}

	if err := r.AccError(); err != nil {
		return nil, errs.Wrap(errs.InvalidPPS, err, "reading PPS fields")
	}
	pps.tailBits = readTail(r)
	return pps, nil
}

// RewritePPS produces a new PPS NAL with the tile grid replaced by
// grid, tiles_enabled_flag forced to 1 and
// loop_filter_across_tiles_enabled_flag forced to 0 (spec §4.3), with
// every other field preserved exactly.
func RewritePPS(orig []byte, grid TileGrid) ([]byte, error) {
	if grid.Cols <= 0 || grid.Rows <= 0 {
		return nil, errs.New(errs.InvalidParameterSet, "tile grid must have positive cols/rows, got %dx%d", grid.Cols, grid.Rows)
	}
	pps, err := ParsePPS(orig)
	if err != nil {
		return nil, err
	}
	head := pps.head

	w := &bitWriter{}
	w.WriteBits(uint64(NalPPS)<<9, 16)
	w.WriteExpGolomb(uint64(pps.PpsID))
	w.WriteExpGolomb(uint64(pps.SpsID))

	w.WriteFlag(head.dependentSliceSegmentsEnabled)
	w.WriteFlag(head.outputFlagPresent)
	w.WriteBits(uint64(head.numExtraSliceHeaderBits), 3)
	w.WriteFlag(head.signDataHidingEnabled)
	w.WriteFlag(head.cabacInitPresent)
	w.WriteExpGolomb(head.numRefIdxL0DefaultMinus1)
	w.WriteExpGolomb(head.numRefIdxL1DefaultMinus1)
	w.WriteSignedExpGolomb(head.initQPMinus26)
	w.WriteFlag(head.constrainedIntraPred)
	w.WriteFlag(head.transformSkipEnabled)
	w.WriteFlag(head.cuQPDeltaEnabled)
	if head.cuQPDeltaEnabled {
		w.WriteExpGolomb(head.diffCuQPDeltaDepth)
	}
	w.WriteSignedExpGolomb(head.cbQPOffset)
	w.WriteSignedExpGolomb(head.crQPOffset)
	w.WriteFlag(head.sliceChromaQPOffsetsPresent)
	w.WriteFlag(head.weightedPred)
	w.WriteFlag(head.weightedBipred)
	w.WriteFlag(head.transquantBypassEnabled)

	w.WriteFlag(true) // tiles_enabled_flag forced on
	w.WriteFlag(pps.EntropySyncEnabled)

	w.WriteExpGolomb(uint64(grid.Cols - 1))
	w.WriteExpGolomb(uint64(grid.Rows - 1))
	w.WriteFlag(grid.Uniform)
	if !grid.Uniform {
		for _, cw := range grid.ColWidths {
			w.WriteExpGolomb(uint64(cw - 1))
		}
		for _, rh := range grid.RowHeights {
			w.WriteExpGolomb(uint64(rh - 1))
		}
	}
	w.WriteFlag(false) // loop_filter_across_tiles_enabled_flag forced off

	w.WriteTail(&bitCopy{bits: trimTrailingBits(pps.tailBits.bits)})

	return checkOutputSize(w.Finalize())
}
