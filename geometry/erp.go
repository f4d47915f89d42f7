// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package geometry

import (
	"github.com/galvcast/omafplan/media"
	"github.com/galvcast/omafplan/sweep"
)

// erpMath intersects a fixed-FOV viewport window against an
// equirectangular picture's tileInRow x tileInCol grid, one tile
// spanning 360/tileInRow degrees of yaw by 180/tileInCol degrees of
// pitch (ExtractorTrackGenerator.CalculateViewportNum's E_SVIDEO_EQUIRECT
// branch: tileNumRow = tileInCol, tileNumCol = tileInRow).
type erpMath struct {
	layer media.SourceLayer
	vp    media.ViewportSpec

	yaw, pitch float64
	tiles      []sweep.TileDef
}

func (e *erpMath) setViewport(yaw, pitch float64) error {
	if err := validateViewport(yaw, pitch); err != nil {
		return err
	}
	e.yaw, e.pitch = yaw, pitch
	return nil
}

func (e *erpMath) process() error {
	cols, rows := e.layer.TilesPerRow, e.layer.TilesPerCol
	colDeg := 360.0 / float64(cols)
	rowDeg := 180.0 / float64(rows)

	vLo, vHi := e.yaw-e.vp.FOVHorizontal/2, e.yaw+e.vp.FOVHorizontal/2
	pLo := clampPitch(e.pitch - e.vp.FOVVertical/2)
	pHi := clampPitch(e.pitch + e.vp.FOVVertical/2)

	var out []sweep.TileDef
	for r := 0; r < rows; r++ {
		tLo := -90 + float64(r)*rowDeg
		tHi := tLo + rowDeg
		if !planeOverlap(pLo, pHi, tLo, tHi) {
			continue
		}
		for c := 0; c < cols; c++ {
			cLo := -180 + float64(c)*colDeg
			cHi := cLo + colDeg
			if !wrappedOverlap(vLo, vHi, cLo, cHi) {
				continue
			}
			out = append(out, sweep.TileDef{FaceID: 0, Idx: uint16(r*cols + c), X: c, Y: r})
		}
	}
	e.tiles = out
	return nil
}

func (e *erpMath) tilesInViewport() ([]sweep.TileDef, sweep.CoverageInfo, error) {
	return e.tiles, coverageFor(e.yaw, e.pitch, e.vp), nil
}
