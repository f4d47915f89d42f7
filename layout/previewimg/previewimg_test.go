// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package previewimg

import (
	"bytes"
	"testing"

	"github.com/galvcast/omafplan/layout"
)

func sampleLayout() layout.PackedLayout {
	return layout.PackedLayout{
		Width: 20, Height: 10,
		Tiles: []layout.PackedTile{
			{Dst: layout.Rect{X: 0, Y: 0, W: 10, H: 10}, SourceLayer: 0},
			{Dst: layout.Rect{X: 10, Y: 0, W: 10, H: 10}, SourceLayer: 1},
		},
	}
}

func TestRenderProducesCorrectlySizedImage(t *testing.T) {
	img := Render(sampleLayout())
	b := img.Bounds()
	if b.Dx() != 20 || b.Dy() != 10 {
		t.Fatalf("got %dx%d, want 20x10", b.Dx(), b.Dy())
	}
}

func TestWritePNGRejectsEmptyLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, layout.PackedLayout{}); err == nil {
		t.Error("expected error for empty layout")
	}
}

func TestWritePNGProducesOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, sampleLayout()); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected non-empty PNG output")
	}
}
