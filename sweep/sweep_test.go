// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package sweep

import (
	"testing"

	"github.com/galvcast/omafplan/errs"
)

// fakeViewportMath returns the same fixed tile selection for every
// sample whose pitch is >= 0, and a different selection for pitch < 0,
// so a sweep over it produces exactly two distinct registry entries
// regardless of how many yaw/pitch samples land on each half.
type fakeViewportMath struct {
	pitch float64
	fail  bool
}

func (f *fakeViewportMath) SetViewport(yaw, pitch float64) error {
	if f.fail {
		return errs.New(errs.InvalidViewport, "boom")
	}
	f.pitch = pitch
	return nil
}

func (f *fakeViewportMath) Process() error { return nil }

func (f *fakeViewportMath) TilesInViewport() ([]TileDef, CoverageInfo, error) {
	if f.pitch >= 0 {
		return []TileDef{{Idx: 0}, {Idx: 1}, {Idx: 2}, {Idx: 3}}, CoverageInfo{}, nil
	}
	return []TileDef{{Idx: 4}, {Idx: 5}, {Idx: 6}, {Idx: 7}}, CoverageInfo{}, nil
}

func TestSweepDeduplicatesIdenticalSelections(t *testing.T) {
	vm := &fakeViewportMath{}
	reg, err := Sweep(vm, 90, 90, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries := reg.BySize[4]
	if len(entries) != 2 {
		t.Fatalf("expected exactly 2 distinct 4-tile selections, got %d", len(entries))
	}
	if reg.ViewportCt == 0 {
		t.Error("expected ViewportCt to count every sampled viewport, even duplicates")
	}
}

func TestSweepRejectsNilViewportMath(t *testing.T) {
	_, err := Sweep(nil, 30, 30, nil)
	kind, ok := errs.Of(err)
	if !ok || kind != errs.NullInput {
		t.Fatalf("expected NullInput error, got %v", err)
	}
}

func TestSweepRejectsNonPositiveStep(t *testing.T) {
	vm := &fakeViewportMath{}
	if _, err := Sweep(vm, 0, 30, nil); err == nil {
		t.Error("expected error for zero yaw step")
	}
	if _, err := Sweep(vm, 30, -1, nil); err == nil {
		t.Error("expected error for negative pitch step")
	}
}

func TestSweepPropagatesViewportMathFailure(t *testing.T) {
	vm := &fakeViewportMath{fail: true}
	_, err := Sweep(vm, 90, 90, nil)
	kind, ok := errs.Of(err)
	if !ok || kind != errs.ViewportMathFailure {
		t.Fatalf("expected ViewportMathFailure, got %v", err)
	}
}

func TestSweepOrdersViewportIDsByYawThenPitchAscending(t *testing.T) {
	vm := &fakeViewportMath{}
	reg, err := Sweep(vm, 180, 90, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ids := map[int]bool{}
	for _, entries := range reg.BySize {
		for _, e := range entries {
			ids[e.ViewportID] = true
		}
	}
	if len(ids) == 0 {
		t.Fatal("expected at least one recorded viewport")
	}

	// The first sample (yaw -180, pitch -90) yields the pitch<0
	// selection and the next one (yaw -180, pitch 0) the pitch>=0
	// selection, so they are recorded as IDs 0 and 1 in that order.
	entries := reg.BySize[4]
	if len(entries) != 2 {
		t.Fatalf("expected 2 recorded selections, got %d", len(entries))
	}
	if entries[0].ViewportID != 0 || entries[0].Selection.Tiles[0].Idx != 4 {
		t.Errorf("first entry: ID %d starting at tile %d, want ID 0 starting at tile 4", entries[0].ViewportID, entries[0].Selection.Tiles[0].Idx)
	}
	if entries[1].ViewportID != 1 || entries[1].Selection.Tiles[0].Idx != 0 {
		t.Errorf("second entry: ID %d starting at tile %d, want ID 1 starting at tile 0", entries[1].ViewportID, entries[1].Selection.Tiles[0].Idx)
	}
}
