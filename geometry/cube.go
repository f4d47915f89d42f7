// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package geometry

import (
	"math"

	"github.com/galvcast/omafplan/media"
	"github.com/galvcast/omafplan/sweep"
)

// cubeMath intersects a fixed-FOV viewport against a 6-face cubemap
// mosaic, each face holding tileInRow/3 x tileInCol/2 tiles
// (ExtractorTrackGenerator.CalculateViewportNum's E_SVIDEO_CUBEMAP
// branch). It only ever reports tiles on the single face the
// viewport's centre direction lands on; tiles on neighbouring faces
// that a wide FOV also reaches are not reported.
type cubeMath struct {
	layer media.SourceLayer
	vp    media.ViewportSpec

	yaw, pitch float64
	tiles      []sweep.TileDef
}

func (c *cubeMath) setViewport(yaw, pitch float64) error {
	if err := validateViewport(yaw, pitch); err != nil {
		return err
	}
	c.yaw, c.pitch = yaw, pitch
	return nil
}

// direction converts yaw/pitch (degrees, yaw 0 = +Z, increasing
// toward +X; pitch 0 = horizon, positive up) to a unit vector.
func direction(yawDeg, pitchDeg float64) (x, y, z float64) {
	yaw := yawDeg * math.Pi / 180
	pitch := pitchDeg * math.Pi / 180
	x = math.Cos(pitch) * math.Sin(yaw)
	y = math.Sin(pitch)
	z = math.Cos(pitch) * math.Cos(yaw)
	return
}

// faceUV picks the dominant cube face for direction (x,y,z) and
// returns its index 0..5 plus local face coordinates u,v in [-1,1].
func faceUV(x, y, z float64) (face int, u, v float64) {
	ax, ay, az := math.Abs(x), math.Abs(y), math.Abs(z)
	switch {
	case ax >= ay && ax >= az:
		if x > 0 {
			return 0, -z / ax, -y / ax
		}
		return 1, z / ax, -y / ax
	case ay >= ax && ay >= az:
		if y > 0 {
			return 2, x / ay, z / ay
		}
		return 3, x / ay, -z / ay
	default:
		if z > 0 {
			return 4, x / az, -y / az
		}
		return 5, -x / az, -y / az
	}
}

func (c *cubeMath) process() error {
	faceCols := c.layer.TilesPerRow / 3
	faceRows := c.layer.TilesPerCol / 2
	if faceCols <= 0 || faceRows <= 0 {
		c.tiles = nil
		return nil
	}

	x, y, z := direction(c.yaw, c.pitch)
	face, u, v := faceUV(x, y, z)

	duHalf := math.Tan(c.vp.FOVHorizontal * math.Pi / 360)
	dvHalf := math.Tan(c.vp.FOVVertical * math.Pi / 360)
	uLo, uHi := clampUnit(u-duHalf), clampUnit(u+duHalf)
	vLo, vHi := clampUnit(v-dvHalf), clampUnit(v+dvHalf)

	var out []sweep.TileDef
	tilesPerFace := faceCols * faceRows
	for r := 0; r < faceRows; r++ {
		tLo := -1 + 2*float64(r)/float64(faceRows)
		tHi := tLo + 2.0/float64(faceRows)
		if !planeOverlap(vLo, vHi, tLo, tHi) {
			continue
		}
		for col := 0; col < faceCols; col++ {
			cLo := -1 + 2*float64(col)/float64(faceCols)
			cHi := cLo + 2.0/float64(faceCols)
			if !planeOverlap(uLo, uHi, cLo, cHi) {
				continue
			}
			out = append(out, sweep.TileDef{
				FaceID: uint8(face),
				Idx:    uint16(face*tilesPerFace + r*faceCols + col),
				X:      col,
				Y:      r,
			})
		}
	}
	c.tiles = out
	return nil
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

func (c *cubeMath) tilesInViewport() ([]sweep.TileDef, sweep.CoverageInfo, error) {
	return c.tiles, coverageFor(c.yaw, c.pitch, c.vp), nil
}
