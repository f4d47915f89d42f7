// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package sweep

import "testing"

func TestFactorize(t *testing.T) {
	tests := []struct {
		n        int
		sqrtSize int
		divided  int
	}{
		{1, 1, 1},
		{4, 2, 2},
		{6, 2, 3},
		{7, 1, 7},
		{12, 3, 4},
		{16, 4, 4},
	}
	for _, tt := range tests {
		s, d := factorize(tt.n)
		if s != tt.sqrtSize || d != tt.divided {
			t.Errorf("factorize(%d) = (%d,%d), want (%d,%d)", tt.n, s, d, tt.sqrtSize, tt.divided)
		}
	}
}

func mkTiles(n int) []TileDef {
	out := make([]TileDef, n)
	for i := range out {
		out[i] = TileDef{Idx: uint16(i)}
	}
	return out
}

func TestRegulariseNoPaddingNeeded(t *testing.T) {
	in := mkTiles(6) // factors to 2x3, diff 1 <= 3, no padding
	out := Regularise(in)
	if len(out) != 6 {
		t.Fatalf("expected no padding, got len %d", len(out))
	}
}

func TestRegularisePadsPrimeCount(t *testing.T) {
	in := mkTiles(7) // prime: 1x7 diff 6 > 3, pads to 8 (2x4, diff 2)
	out := Regularise(in)
	if len(out) != 8 {
		t.Fatalf("expected padding to 8 tiles, got %d", len(out))
	}
	sqrtSize, divided := factorize(len(out))
	if divided-sqrtSize > 3 {
		t.Errorf("expected factor pair within 3 of each other, got %d/%d", sqrtSize, divided)
	}
}

func TestRegulariseSingleTilePadsToTwo(t *testing.T) {
	in := mkTiles(1)
	out := Regularise(in)
	if len(out) != 2 {
		t.Fatalf("expected single tile to pad to 2, got %d", len(out))
	}
	if out[0] != out[1] {
		t.Errorf("expected padding to duplicate the sole tile, got %v and %v", out[0], out[1])
	}
}

func TestRegulariseDoesNotMutateInput(t *testing.T) {
	in := mkTiles(7)
	cp := append([]TileDef(nil), in...)
	_ = Regularise(in)
	for i := range in {
		if in[i] != cp[i] {
			t.Fatalf("Regularise mutated its input at index %d", i)
		}
	}
}

func TestRegulariseEmptyInput(t *testing.T) {
	if out := Regularise(nil); out != nil {
		t.Errorf("expected nil for empty input, got %v", out)
	}
}
