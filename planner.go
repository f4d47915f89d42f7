// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package omafplan orchestrates the full extractor-track planning
// pipeline: sweep the sphere for distinct tile selections (C1+C2),
// initialise a packing generator per distinct selection size (C3),
// assemble extractor tracks (C5), and emit the MPD (C6). It never
// runs any stage concurrently with another (spec §5).
package omafplan

import (
	"log/slog"

	"github.com/galvcast/omafplan/config"
	"github.com/galvcast/omafplan/errs"
	"github.com/galvcast/omafplan/hevc"
	"github.com/galvcast/omafplan/layout"
	"github.com/galvcast/omafplan/media"
	"github.com/galvcast/omafplan/mpd"
	"github.com/galvcast/omafplan/sweep"
	"github.com/galvcast/omafplan/track"
)

// defaultYawStep and defaultPitchStep are the sweep grid resolution
// Initialize always uses; the configuration has no field for them (spec §4.1:
// "implementation-defined; typical values are 15 degrees").
const (
	defaultYawStep   = 15.0
	defaultPitchStep = 15.0

	// packingGeneratorName is the only packing-layout plugin this
	// module ships (spec §4.2/§6's "packing generator plugin" is
	// resolved by name, not dlopen; see layout.Load).
	packingGeneratorName = "column"
)

// ViewportHandle is the full capability set the planner needs from its
// borrowed geometry adapter: everything sweep, track and the layout
// generators individually require, accepted here as one local union
// since the planner is the one place that holds all three.
type ViewportHandle interface {
	sweep.ViewportMath
	ContentCoverage() (sweep.CoverageInfo, error)
	GenerateSPS(orig []byte, packedW, packedH int) ([]byte, error)
	GeneratePPS(orig []byte, grid hevc.TileGrid) ([]byte, error)
}

// Planner drives one planning job end to end from a loaded
// configuration, a borrowed viewport-math handle and the job's source
// layers. It holds no goroutines or channels; every method runs to
// completion on the caller's goroutine.
type Planner struct {
	cfg     config.Config
	streams []media.SourceLayer
	vm      ViewportHandle
	log     *slog.Logger

	registry *sweep.Registry
	gens     map[int]layout.Generator
	emitter  *mpd.Emitter
}

// New builds a Planner. It does not sweep, assemble, or write
// anything; call Initialize to run C1/C2/C3's setup.
func New(cfg config.Config, streams []media.SourceLayer, vm ViewportHandle, log *slog.Logger) *Planner {
	if log == nil {
		log = slog.Default()
	}
	return &Planner{
		cfg:     cfg,
		streams: streams,
		vm:      vm,
		log:     log.With("component", "planner"),
	}
}

// Initialize runs the Viewport Sweeper and Aspect Regulariser (C1+C2)
// to build the selection registry, then initialises one packing
// generator per distinct selection cardinality the sweep produced
// (C3's Init). It writes nothing to disk; a failure here leaves the
// Planner's in-memory state to be discarded by the caller (spec §7).
func (p *Planner) Initialize() error {
	if err := p.cfg.Validate(); err != nil {
		return err
	}
	if p.vm == nil {
		return errs.New(errs.NullInput, "viewport math handle is nil")
	}
	if len(p.streams) == 0 {
		return errs.New(errs.NullInput, "no source layers provided")
	}

	reg, err := sweep.Sweep(p.vm, defaultYawStep, defaultPitchStep, p.log)
	if err != nil {
		return err
	}

	main := p.streams[0]
	tileCount := main.TilesPerRow * main.TilesPerCol
	if reg.ViewportCt == 0 || (tileCount > 0 && reg.MaxSize() > tileCount) {
		return errs.New(errs.InvalidViewport, "unreasonable selection count: swept %d viewports, max selection size %d against %d source tiles", reg.ViewportCt, reg.MaxSize(), tileCount)
	}

	nMax := reg.MaxSize()
	layerOrder := make([]int, len(p.streams))
	for i := range p.streams {
		layerOrder[i] = i
	}

	gens := make(map[int]layout.Generator, len(reg.BySize))
	for _, n := range reg.Sizes() {
		gen, err := layout.Load(packingGeneratorName)
		if err != nil {
			return err
		}
		if p.cfg.FixedPackedPicRes {
			err = gen.Init(n, nMax, p.streams, layerOrder)
		} else {
			err = gen.Init(n, n, p.streams, layerOrder)
		}
		if err != nil {
			return errs.Wrap(errs.PluginFailure, err, "initialising packing generator for selection size %d", n)
		}
		gens[n] = gen
	}

	p.registry = reg
	p.gens = gens
	p.log.Info("initialised planner", "viewports", reg.ViewportCt, "distinct_selection_sizes", len(gens))
	return nil
}

// GenerateExtractorTracks runs the Extractor Track Assembler (C5),
// producing one ExtractorTrack per recorded selection. Assembly is
// atomic: a failure on any selection discards the whole result.
func (p *Planner) GenerateExtractorTracks() (map[int]*track.ExtractorTrack, error) {
	if p.registry == nil {
		return nil, errs.New(errs.NullInput, "planner has not been initialised")
	}
	return track.Assemble(p.streams, p.registry, p.gens, p.vm, p.cfg.ProjType)
}

// WriteMpd runs the MPD Emitter (C6) for a static or initial-live
// presentation of totalFrames frames.
func (p *Planner) WriteMpd(totalFrames int64) error {
	tracks, err := p.GenerateExtractorTracks()
	if err != nil {
		return err
	}
	em, err := mpd.NewEmitter(p.cfg, p.streams, tracks, p.log)
	if err != nil {
		return err
	}
	if err := em.WriteMpd(totalFrames); err != nil {
		return err
	}
	p.emitter = em
	return nil
}

// UpdateMpd refreshes a live presentation's MPD file; see
// mpd.Emitter.UpdateMpd for the refresh schedule. WriteMpd must have
// run at least once first.
func (p *Planner) UpdateMpd(segNumber, frameNumber int64) error {
	if p.emitter == nil {
		return errs.New(errs.NullInput, "WriteMpd must run before UpdateMpd")
	}
	return p.emitter.UpdateMpd(segNumber, frameNumber)
}
