// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package hevc parses and rewrites the HEVC SPS/PPS NAL units needed
// to repack a tiled source into an extractor track: picture size in
// the SPS, and tile grid geometry in the PPS. Reading follows the
// emulation-prevention-aware exp-Golomb reader from
// github.com/Eyevinn/mp4ff/bits the same way the reference hevc/sps.go
// parser in this project's pack does; re-emission uses a small
// package-local bit writer (bitwriter.go) since the corpus's mp4ff
// usage only demonstrates the read side.
package hevc

// MinOutputBufferSize is the minimum scratch buffer size every
// rewrite must fit within without returning OutputTooSmall. Kept as a
// public constant for callers that pre-size a buffer, even though the
// implementation itself builds each NAL in growable slices rather than
// writing into a fixed-size global array.
const MinOutputBufferSize = 1024

// NAL unit types relevant here (ISO/IEC 23008-2 Table 7-1).
const (
	NalSPS = 33
	NalPPS = 34
)

// startCode is the 4-byte Annex B prefix every rewritten NAL is emitted with.
var startCode = []byte{0x00, 0x00, 0x00, 0x01}

// SPS holds the subset of sequence parameter set fields the planner
// needs to read or mutate: picture dimensions and the raw bits needed
// to reproduce everything else unchanged.
type SPS struct {
	VpsID                  byte
	MaxSubLayersMinus1     byte
	TemporalIDNestingFlag  bool
	ProfileTierLevelRaw    []byte // raw copy of the 12-byte general profile/tier/level block
	SpsID                  byte
	ChromaFormatIDC        byte
	SeparateColourPlane    bool
	PicWidthInLumaSamples  uint32
	PicHeightInLumaSamples uint32

	// tailBits holds every SPS field after pic_height_in_luma_samples,
	// copied bit for bit from the source: conformance window, bit
	// depths, POC bits, and everything through rbsp_trailing_bits.
	// None of it depends on the picture size, so RewriteSPS can splice
	// the new width/height in front of it unmodified.
	tailBits *bitCopy
}

// PPS holds the subset of picture parameter set fields the planner
// needs: the tile grid, plus the decoded head fields and raw tail
// bits needed to reproduce everything else unchanged.
type PPS struct {
	PpsID                byte
	SpsID                byte
	head                 *ppsHead // every field before tiles_enabled_flag
	TilesEnabled         bool
	EntropySyncEnabled   bool
	Grid                 TileGrid
	LoopFilterAcrossTile bool
	tailBits             *bitCopy // everything after the tile fields (and loop_filter_across_tiles_enabled_flag)
}

// TileGrid describes a PPS's tile partitioning.
type TileGrid struct {
	Cols, Rows           int
	ColWidths, RowHeights []int // in CTBs; only meaningful when !Uniform
	Uniform              bool
}
