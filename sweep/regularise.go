// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package sweep

import "math"

// factorize finds the two factors of n closest to a square: the
// largest s <= sqrt(n) that divides n exactly, and n/s. For a prime n
// this degenerates to (1, n).
func factorize(n int) (sqrtSize, divided int) {
	if n <= 0 {
		return 0, 0
	}
	s := int(math.Sqrt(float64(n)))
	for s > 1 && n%s != 0 {
		s--
	}
	if s <= 0 {
		s = 1
	}
	return s, n / s
}

// Regularise pads a tile selection with duplicates of its own tiles
// until its cardinality factorises into two numbers no more than 3
// apart, so the packing layout generator can arrange it on a
// near-square grid (spec §4.1, "Aspect Regulariser").
//
// The duplicate tiles appended are repeats of tiles already present,
// taken from the front of the selection in order; this matches a
// projector that would rather show a tile twice than leave a hole in
// the packed picture. The input is never mutated; a new slice is
// always returned, even when no padding is needed.
func Regularise(tiles []TileDef) []TileDef {
	n := len(tiles)
	if n == 0 {
		return nil
	}

	out := make([]TileDef, n, n+4)
	copy(out, tiles)

	sqrtSize, divided := factorize(len(out))
	if sqrtSize == 1 {
		// A cardinality of 1, 2, 3 or any prime factorises to 1×N, which
		// the diff>3 loop below would otherwise accept outright for
		// N<=4; pad once unconditionally. For N of 1 or 2 the padded
		// count (2 or 3) still factorises to 1×(N+1), which the loop
		// then accepts.
		out = append(out, out[len(out)%n])
		sqrtSize, divided = factorize(len(out))
	}
	for divided-sqrtSize > 3 {
		out = append(out, out[len(out)%n])
		sqrtSize, divided = factorize(len(out))
	}
	return out
}
