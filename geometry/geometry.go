// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package geometry is the concrete viewport-math collaborator: the
// borrowed handle sweep.Sweep and track.Assemble are coded against
// through small local interfaces. It ships two adapters, one per
// projection, and leaves HEVC bitstream rewriting to package hevc.
//
// The exact tile-sphere intersection test performed by a production
// 360-degree video toolkit is proprietary and not present anywhere in
// this exercise's reference corpus; what follows is a plain angular
// overlap test against the same tile-grid/face layout the original
// configures (ExtractorTrackGenerator.CalculateViewportNum), which is
// sufficient to drive every downstream component (selection,
// regularisation, packing, rewriting) with geometrically sensible
// input.
package geometry

import (
	"math"

	"github.com/galvcast/omafplan/errs"
	"github.com/galvcast/omafplan/hevc"
	"github.com/galvcast/omafplan/media"
	"github.com/galvcast/omafplan/sweep"
)

// wrappedOverlap reports whether angular interval [aLo,aHi) overlaps
// [bLo,bHi) on a circle of circumference 360, handling the ERP seam at
// +/-180 the same way a viewport crossing the back of the sphere does.
func wrappedOverlap(aLo, aHi, bLo, bHi float64) bool {
	norm := func(x float64) float64 {
		for x < -180 {
			x += 360
		}
		for x >= 180 {
			x -= 360
		}
		return x
	}
	aLo, aHi = norm(aLo), norm(aHi)
	bLo, bHi = norm(bLo), norm(bHi)
	// Expand each interval to its no-wrap span; if it wrapped (hi < lo
	// after normalising) split it conceptually into [lo,180) and
	// [-180,hi) and test both halves.
	spans := func(lo, hi float64) [][2]float64 {
		if hi >= lo {
			return [][2]float64{{lo, hi}}
		}
		return [][2]float64{{lo, 180}, {-180, hi}}
	}
	for _, a := range spans(aLo, aHi) {
		for _, b := range spans(bLo, bHi) {
			if a[0] < b[1] && b[0] < a[1] {
				return true
			}
		}
	}
	return false
}

// planeOverlap is the simpler non-wrapping interval overlap used for pitch.
func planeOverlap(aLo, aHi, bLo, bHi float64) bool {
	return aLo < bHi && bLo < aHi
}

func clampPitch(p float64) float64 {
	if p < -90 {
		return -90
	}
	if p > 90 {
		return 90
	}
	return p
}

// rewriteParams delegates parameter-set regeneration to package hevc,
// shared by both projection adapters (spec §4.2: the borrowed handle
// bundles projection geometry and bitstream rewriting behind one API).
type rewriteParams struct{}

func (rewriteParams) GenerateSPS(orig []byte, packedW, packedH int) ([]byte, error) {
	return hevc.RewriteSPS(orig, packedW, packedH)
}

func (rewriteParams) GeneratePPS(orig []byte, grid hevc.TileGrid) ([]byte, error) {
	return hevc.RewritePPS(orig, grid)
}

// New builds the viewport-math adapter appropriate for projType,
// covering the source layer's declared tile grid and the fixed
// viewport window vp describes.
func New(projType media.ProjectionType, layer media.SourceLayer, vp media.ViewportSpec) (*Adapter, error) {
	if layer.TilesPerRow <= 0 || layer.TilesPerCol <= 0 {
		return nil, errs.New(errs.NullInput, "source layer has no declared tile grid")
	}
	switch projType {
	case media.ERP:
		return &Adapter{impl: &erpMath{layer: layer, vp: vp}}, nil
	case media.Cubemap:
		return &Adapter{impl: &cubeMath{layer: layer, vp: vp}}, nil
	default:
		return nil, errs.New(errs.InvalidViewport, "unsupported projection type %v for viewport math", projType)
	}
}

// adapterImpl is the minimal per-projection behavior Adapter fans out to.
type adapterImpl interface {
	setViewport(yaw, pitch float64) error
	process() error
	tilesInViewport() ([]sweep.TileDef, sweep.CoverageInfo, error)
}

// Adapter is the concrete type handed to sweep.Sweep, track.Assemble
// and the planner; it satisfies sweep.ViewportMath plus the small
// coverage/rewrite capability interfaces those callers declare for
// themselves, by structural typing.
type Adapter struct {
	rewriteParams
	impl adapterImpl
	last sweep.CoverageInfo
}

func (a *Adapter) SetViewport(yaw, pitch float64) error { return a.impl.setViewport(yaw, pitch) }
func (a *Adapter) Process() error                       { return a.impl.process() }

func (a *Adapter) TilesInViewport() ([]sweep.TileDef, sweep.CoverageInfo, error) {
	tiles, cov, err := a.impl.tilesInViewport()
	if err == nil {
		a.last = cov
	}
	return tiles, cov, err
}

func (a *Adapter) ContentCoverage() (sweep.CoverageInfo, error) { return a.last, nil }

func coverageFor(yaw, pitch float64, vp media.ViewportSpec) sweep.CoverageInfo {
	return sweep.CoverageInfo{
		CentreAzimuth:   sweep.Fixed16_16(yaw),
		CentreElevation: sweep.Fixed16_16(pitch),
		AzimuthRange:    sweep.Fixed16_16(vp.FOVHorizontal),
		ElevationRange:  sweep.Fixed16_16(vp.FOVVertical),
	}
}

func validateViewport(yaw, pitch float64) error {
	if math.IsNaN(yaw) || math.IsNaN(pitch) {
		return errs.New(errs.InvalidViewport, "yaw/pitch must be finite, got %f/%f", yaw, pitch)
	}
	if yaw < -180 || yaw > 180 {
		return errs.New(errs.InvalidViewport, "yaw %f out of range [-180,180]", yaw)
	}
	if pitch < -90 || pitch > 90 {
		return errs.New(errs.InvalidViewport, "pitch %f out of range [-90,90]", pitch)
	}
	return nil
}
