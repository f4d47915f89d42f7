// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package geometry

import (
	"testing"

	"github.com/galvcast/omafplan/errs"
	"github.com/galvcast/omafplan/media"
)

func erpLayer() media.SourceLayer {
	return media.SourceLayer{SrcWidth: 3840, SrcHeight: 1920, TilesPerRow: 6, TilesPerCol: 4}
}

func cubeLayer() media.SourceLayer {
	return media.SourceLayer{SrcWidth: 3840, SrcHeight: 2560, TilesPerRow: 9, TilesPerCol: 6}
}

func fov() media.ViewportSpec {
	return media.ViewportSpec{FOVHorizontal: 90, FOVVertical: 90, DisplayWidth: 1920, DisplayHeight: 1080}
}

func TestNewRejectsUndeclaredTileGrid(t *testing.T) {
	_, err := New(media.ERP, media.SourceLayer{}, fov())
	if kind, ok := errs.Of(err); !ok || kind != errs.NullInput {
		t.Fatalf("expected NullInput, got %v", err)
	}
}

func TestNewRejectsUnknownProjection(t *testing.T) {
	_, err := New(media.ProjectionType(99), erpLayer(), fov())
	if kind, ok := errs.Of(err); !ok || kind != errs.InvalidViewport {
		t.Fatalf("expected InvalidViewport, got %v", err)
	}
}

func TestERPCentreYawReturnsTiles(t *testing.T) {
	a, err := New(media.ERP, erpLayer(), fov())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.SetViewport(0, 0); err != nil {
		t.Fatalf("SetViewport: %v", err)
	}
	if err := a.Process(); err != nil {
		t.Fatalf("Process: %v", err)
	}
	tiles, cov, err := a.TilesInViewport()
	if err != nil {
		t.Fatalf("TilesInViewport: %v", err)
	}
	if len(tiles) == 0 {
		t.Fatal("expected at least one tile for a centred 90deg viewport")
	}
	if cov.AzimuthRange == 0 {
		t.Error("expected nonzero azimuth range in coverage")
	}
}

func TestERPRejectsOutOfRangeViewport(t *testing.T) {
	a, _ := New(media.ERP, erpLayer(), fov())
	if err := a.SetViewport(200, 0); err == nil {
		t.Error("expected error for yaw out of range")
	}
	if err := a.SetViewport(0, -100); err == nil {
		t.Error("expected error for pitch out of range")
	}
}

func TestERPWrapsAtSeam(t *testing.T) {
	a, _ := New(media.ERP, erpLayer(), fov())
	if err := a.SetViewport(179, 0); err != nil {
		t.Fatalf("SetViewport: %v", err)
	}
	if err := a.Process(); err != nil {
		t.Fatalf("Process: %v", err)
	}
	tiles, _, _ := a.TilesInViewport()
	if len(tiles) == 0 {
		t.Fatal("expected tiles near the +/-180 seam")
	}
}

func TestCubemapCentreDirectionReturnsTiles(t *testing.T) {
	a, err := New(media.Cubemap, cubeLayer(), fov())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.SetViewport(0, 0); err != nil {
		t.Fatalf("SetViewport: %v", err)
	}
	if err := a.Process(); err != nil {
		t.Fatalf("Process: %v", err)
	}
	tiles, _, err := a.TilesInViewport()
	if err != nil {
		t.Fatalf("TilesInViewport: %v", err)
	}
	if len(tiles) == 0 {
		t.Fatal("expected at least one tile on the forward cube face")
	}
	for _, tile := range tiles {
		if tile.FaceID > 5 {
			t.Errorf("unexpected face id %d", tile.FaceID)
		}
	}
}

func TestFaceUVPicksDominantAxis(t *testing.T) {
	face, u, v := faceUV(1, 0, 0)
	if face != 0 {
		t.Errorf("expected face 0 for +X direction, got %d", face)
	}
	if u != 0 || v != 0 {
		t.Errorf("expected centred u/v for axis-aligned direction, got %f/%f", u, v)
	}
}
