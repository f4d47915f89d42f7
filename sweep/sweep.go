// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package sweep

import (
	"log/slog"

	"github.com/galvcast/omafplan/errs"
)

// Sweep walks the sphere on a fixed yaw/pitch grid -180..180 step
// yawStep, -90..90 step pitchStep (both inclusive of the upper bound
// when it lands exactly on the step), asking vm for the tile
// selection at each sample, regularising it, and recording only
// selections that are not already covered by an existing selection of
// the same cardinality (spec §4.1).
//
// Viewports are visited yaw-outer, pitch-inner, both ascending, so
// ViewportID order is deterministic and reproducible across runs.
func Sweep(vm ViewportMath, yawStep, pitchStep float64, log *slog.Logger) (*Registry, error) {
	if vm == nil {
		return nil, errs.New(errs.NullInput, "viewport math is nil")
	}
	if yawStep <= 0 || pitchStep <= 0 {
		return nil, errs.New(errs.InvalidViewport, "yaw/pitch step must be positive, got %f/%f", yawStep, pitchStep)
	}

	reg := &Registry{BySize: make(map[int][]Entry)}
	id := 0

	for yaw := -180.0; yaw <= 180.0+1e-9; yaw += yawStep {
		for pitch := -90.0; pitch <= 90.0+1e-9; pitch += pitchStep {
			if yaw < -180 || yaw > 180 || pitch < -90 || pitch > 90 {
				return nil, errs.New(errs.InvalidViewport, "viewport yaw=%f pitch=%f out of range", yaw, pitch)
			}
			if err := vm.SetViewport(yaw, pitch); err != nil {
				return nil, errs.Wrap(errs.ViewportMathFailure, err, "set viewport yaw=%f pitch=%f", yaw, pitch)
			}
			if err := vm.Process(); err != nil {
				return nil, errs.Wrap(errs.ViewportMathFailure, err, "process viewport yaw=%f pitch=%f", yaw, pitch)
			}
			tiles, cov, err := vm.TilesInViewport()
			if err != nil {
				return nil, errs.Wrap(errs.ViewportMathFailure, err, "tiles in viewport yaw=%f pitch=%f", yaw, pitch)
			}
			if len(tiles) == 0 {
				continue
			}

			reg.ViewportCt++
			sel := TileSelection{Tiles: Regularise(tiles)}

			if isDuplicate(reg, sel) {
				continue
			}

			reg.BySize[sel.Len()] = append(reg.BySize[sel.Len()], Entry{
				ViewportID: id,
				Selection:  sel,
				Coverage:   cov,
			})
			if log != nil {
				log.Debug("sweep recorded selection", "viewport", id, "yaw", yaw, "pitch", pitch, "tiles", sel.Len())
			}
			id++
		}
	}

	return reg, nil
}

// isDuplicate reports whether sel's tile set is already present among
// the registry's entries of the same cardinality: a new selection is
// accepted only if it differs from every existing selection of equal
// size (spec §4.1 dedup rule). Selections of differing cardinality
// never collide, even if one's tile set is a subset of the other's.
func isDuplicate(reg *Registry, sel TileSelection) bool {
	existing := reg.BySize[sel.Len()]
	if len(existing) == 0 {
		return false
	}
	want := sel.tupleSet()
	for _, e := range existing {
		have := e.Selection.tupleSet()
		if len(have) != len(want) {
			continue
		}
		same := true
		for t := range want {
			if !have[t] {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}
