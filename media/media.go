// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package media holds the shared data model the rest of the planner
// is built on: source layers (one per encoded quality/resolution),
// projection type, and viewport geometry. It has no dependencies on
// any other planner package so every component (sweep, layout, hevc,
// track, mpd, config) can depend on it without creating import cycles.
package media

// ProjectionType names the spherical (or planar) projection a source was encoded in.
type ProjectionType int

const (
	// ERP is equirectangular projection: one face, full sphere.
	ERP ProjectionType = iota
	// Cubemap is a 6-face cube projection packed as a 3x2 mosaic.
	Cubemap
	// Planar is a conventional flat (non-spherical) tiled picture.
	Planar
)

// String names the projection the way configuration files spell it.
func (p ProjectionType) String() string {
	switch p {
	case ERP:
		return "ERP"
	case Cubemap:
		return "CUBEMAP"
	case Planar:
		return "PLANAR"
	default:
		return "UNKNOWN"
	}
}

// Resolution is a plain width/height pair, used wherever the spec
// calls for "the list of all source-layer resolutions".
type Resolution struct {
	Width, Height int
}

// TileInfo describes one tile's static geometry within a SourceLayer:
// its pixel size and its (x,y) position within the source picture (or,
// for cubemap, within its face).
type TileInfo struct {
	X, Y          int
	Width, Height int
}

// SourceLayer is one encoded representation of the source content.
// Layers are ordered by descending bitrate by the caller; layer 0 is
// the "main" high-resolution layer and is authoritative for tile
// geometry (spec §3).
type SourceLayer struct {
	Index int

	SrcWidth, SrcHeight int
	TilesPerRow         int // columns
	TilesPerCol         int // rows
	Tiles               []TileInfo

	BitRate uint64

	VPS []byte
	SPS []byte
	PPS []byte

	// QualityRanking is a small-is-better rank used by SRQR/2DQR, per OMAF.
	QualityRanking int
}

// TileSize returns the width/height of the tile at tileIdx, 0-based
// in row-major order; ok is false when tileIdx is outside the layer's
// Tiles list.
func (s SourceLayer) TileSize(tileIdx int) (w, h int, ok bool) {
	if tileIdx < 0 || tileIdx >= len(s.Tiles) {
		return 0, 0, false
	}
	t := s.Tiles[tileIdx]
	return t.Width, t.Height, true
}

// Resolution returns the layer's encoded picture size.
func (s SourceLayer) Resolution() Resolution {
	return Resolution{Width: s.SrcWidth, Height: s.SrcHeight}
}

// ViewportSpec is a sphere sample plus fixed FOV and target display size (spec §3).
type ViewportSpec struct {
	Yaw, Pitch             float64 // degrees; yaw in [-180,180], pitch in [-90,90]
	FOVHorizontal          float64 // degrees
	FOVVertical            float64 // degrees
	DisplayWidth           int
	DisplayHeight          int
}
