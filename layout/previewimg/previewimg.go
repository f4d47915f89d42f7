// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package previewimg renders a PackedLayout as a PNG for debugging:
// one flat-coloured rectangle per packed tile, coloured by its source
// layer index, the same "internal structure as a debug image" idiom
// the source repo's land/tile.go uses for its own tile previews. It
// is a pure supplement — no operation in this module depends on it.
package previewimg

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"github.com/galvcast/omafplan/errs"
	"github.com/galvcast/omafplan/layout"
)

// palette cycles a small set of distinct colours across source layer indices.
var palette = []color.NRGBA{
	{R: 0xd6, G: 0x4f, B: 0x4f, A: 0xff},
	{R: 0x4f, G: 0x8f, B: 0xd6, A: 0xff},
	{R: 0x4f, G: 0xd6, B: 0x7a, A: 0xff},
	{R: 0xd6, G: 0xc4, B: 0x4f, A: 0xff},
	{R: 0xa1, G: 0x4f, B: 0xd6, A: 0xff},
}

// Render draws l's packed tiles onto an NRGBA canvas sized to the
// layout, filling each tile's destination rectangle with its source
// layer's palette colour and outlining it with a dark border.
func Render(l layout.PackedLayout) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, l.Width, l.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}), image.Point{}, draw.Src)

	for _, t := range l.Tiles {
		c := palette[t.SourceLayer%len(palette)]
		rect := image.Rect(t.Dst.X, t.Dst.Y, t.Dst.X+t.Dst.W, t.Dst.Y+t.Dst.H)
		draw.Draw(img, rect, image.NewUniform(c), image.Point{}, draw.Src)
		outline(img, rect)
	}
	return img
}

// outline darkens a packed tile's border so adjoining same-colour
// tiles remain visually distinguishable.
func outline(img *image.NRGBA, r image.Rectangle) {
	border := color.NRGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetNRGBA(x, r.Min.Y, border)
		img.SetNRGBA(x, r.Max.Y-1, border)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetNRGBA(r.Min.X, y, border)
		img.SetNRGBA(r.Max.X-1, y, border)
	}
}

// WritePNG renders l and encodes it as a PNG to w.
func WritePNG(w io.Writer, l layout.PackedLayout) error {
	if l.Width <= 0 || l.Height <= 0 {
		return errs.New(errs.NullInput, "packed layout has no dimensions to render")
	}
	if err := png.Encode(w, Render(l)); err != nil {
		return errs.Wrap(errs.LayoutFailure, err, "encoding packed layout preview")
	}
	return nil
}
