// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package sweep implements the Viewport Sweeper (C1) and the Aspect
// Regulariser (C2): walking the sphere on a fixed yaw/pitch grid,
// deduplicating the tile selections it collects, and padding each
// selection so its cardinality factorises into a near-square grid.
package sweep

import "fmt"

// TileDef identifies one tile reference. Two TileDefs are the same
// tile iff all four fields match (spec §3).
type TileDef struct {
	FaceID uint8 // 0 for ERP, 0..5 for cubemap
	Idx    uint16
	X, Y   int
}

// TileSelection is an ordered set of TileDefs. Cardinality and the
// set of member tuples (not order) determine identity within a group
// of same-size selections.
type TileSelection struct {
	Tiles []TileDef
}

// Len returns the number of tiles in the selection.
func (s TileSelection) Len() int { return len(s.Tiles) }

// tupleSet returns the selection's tiles as a membership set, used by
// the dedup predicate.
func (s TileSelection) tupleSet() map[TileDef]bool {
	set := make(map[TileDef]bool, len(s.Tiles))
	for _, t := range s.Tiles {
		set[t] = true
	}
	return set
}

// Key returns a stable, order-independent identity string for the
// selection, handy for logging/test assertions (not used for dedup,
// which compares tuple sets directly per spec's pairwise rule).
func (s TileSelection) Key() string {
	set := s.tupleSet()
	keys := make([]TileDef, 0, len(set))
	for t := range set {
		keys = append(keys, t)
	}
	// simple stable ordering without importing sort for 4 ints: insertion sort is fine, selections are small.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && less(keys[j], keys[j-1]); j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	out := ""
	for _, t := range keys {
		out += fmt.Sprintf("(%d,%d,%d,%d)", t.FaceID, t.Idx, t.X, t.Y)
	}
	return out
}

func less(a, b TileDef) bool {
	if a.FaceID != b.FaceID {
		return a.FaceID < b.FaceID
	}
	if a.Idx != b.Idx {
		return a.Idx < b.Idx
	}
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

// CoverageInfo is the centre azimuth/elevation and azimuth/elevation
// range of a viewport's content coverage, in OMAF 16.16 fixed-point
// units (spec §3).
type CoverageInfo struct {
	CentreAzimuth   int32
	CentreElevation int32
	AzimuthRange    int32
	ElevationRange  int32
}

// Fixed16_16 converts a degree value to OMAF's 16.16 fixed-point representation.
func Fixed16_16(degrees float64) int32 { return int32(degrees * 65536) }

// ViewportMath is the borrowed collaborator that performs
// sphere-to-tile intersection for one viewport sample. The planner
// never owns or closes this handle (spec §3/§9); concrete
// implementations live in package geometry.
type ViewportMath interface {
	SetViewport(yaw, pitch float64) error
	Process() error
	TilesInViewport() ([]TileDef, CoverageInfo, error)
}

// Entry is one distinct tile selection recorded during the sweep,
// along with the viewport that first produced it and its coverage.
type Entry struct {
	ViewportID int
	Selection  TileSelection
	Coverage   CoverageInfo
}

// Registry is the owning collection built by Sweep: every distinct
// selection, grouped by cardinality N, plus its coverage. It replaces
// the original's map<N, map<vpId, TileDef*>> + parallel map<vpId,
// CCDef*> pair of owning raw-pointer maps (spec §9) with one registry
// of value types; there is nothing to free explicitly.
type Registry struct {
	BySize     map[int][]Entry
	ViewportCt int // number of swept samples that returned at least one tile, counted before dedup
}

// Sizes returns the distinct selection cardinalities present, in no particular order.
func (r *Registry) Sizes() []int {
	out := make([]int, 0, len(r.BySize))
	for n := range r.BySize {
		out = append(out, n)
	}
	return out
}

// MaxSize returns the largest selection cardinality recorded, used by
// "fixed packed resolution" mode (spec §4.2) to initialise every
// layout generator with a shared N_max.
func (r *Registry) MaxSize() int {
	max := 0
	for n := range r.BySize {
		if n > max {
			max = n
		}
	}
	return max
}
