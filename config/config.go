// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package config loads a planning job's configuration from a YAML
// document (spec §6) the way the source engine's load package reads
// shader descriptions: unmarshal into a plain struct, then translate
// any string enums against a lookup table so callers get a typed,
// validated Config rather than raw strings.
package config

import (
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/galvcast/omafplan/errs"
	"github.com/galvcast/omafplan/media"
)

// projTypes maps the case-folded configuration spelling to its
// media.ProjectionType, mirroring the string-keyed lookup tables
// load/shd.go builds for shader stages and attribute names.
var projTypes = map[string]media.ProjectionType{
	"erp":     media.ERP,
	"cubemap": media.Cubemap,
	"planar":  media.Planar,
}

var foldCase = cases.Fold()

// ViewportInfo is the fixed viewport template every swept sample derives from.
type ViewportInfo struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	Yaw           float64 `yaml:"yaw"`
	Pitch         float64 `yaml:"pitch"`
	FOVHorizontal float64 `yaml:"fovHorizontal"`
	FOVVertical   float64 `yaml:"fovVertical"`
}

// SegmentationInfo controls DASH segmentation and live-update timing.
type SegmentationInfo struct {
	SegDuration                 float64 `yaml:"segDuration"`
	ChunkDuration               float64 `yaml:"chunkDuration"`
	WindowSize                  int     `yaml:"windowSize"`
	IsLive                      bool    `yaml:"isLive"`
	HasMainAS                   bool    `yaml:"hasMainAS"`
	BaseUrl                     string  `yaml:"baseUrl"`
	DirName                     string  `yaml:"dirName"`
	OutName                     string  `yaml:"outName"`
	ExtractorTracksPerSegThread int     `yaml:"extractorTracksPerSegThread"`
	TargetLatency               float64 `yaml:"targetLatency"`
	MinLatency                  float64 `yaml:"minLatency"`
	MaxLatency                  float64 `yaml:"maxLatency"`
}

// Config is a fully loaded, typed planning job specification (spec §6).
type Config struct {
	ProjType          media.ProjectionType
	ViewportInfo      ViewportInfo
	SegmentationInfo  SegmentationInfo
	FixedPackedPicRes bool
	CMAFEnabled       bool
	// FrameRate is the source content's nominal frames-per-second,
	// needed by the MPD emitter to derive mediaPresentationDuration
	// and live-update frame boundaries; not named as its own field in
	// spec §6 but implied everywhere "fps" appears in §4.5.
	FrameRate float64
}

// rawConfig is the YAML-shaped document Config is decoded from before
// its string enums are translated and validated.
type rawConfig struct {
	ProjType          string           `yaml:"projType"`
	ViewportInfo      ViewportInfo     `yaml:"viewportInfo"`
	SegmentationInfo  SegmentationInfo `yaml:"segmentationInfo"`
	FixedPackedPicRes bool             `yaml:"fixedPackedPicRes"`
	CMAFEnabled       bool             `yaml:"cmafEnabled"`
	FrameRate         float64          `yaml:"frameRate"`
}

// Load parses a YAML configuration document into a Config, folding
// projType case-insensitively against the recognised enum (spec §6)
// before validating the result.
func Load(data []byte) (Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, errs.Wrap(errs.NullInput, err, "parsing configuration yaml")
	}

	projType, ok := projTypes[foldCase.String(strings.TrimSpace(raw.ProjType))]
	if !ok {
		return Config{}, errs.New(errs.NullInput, "unrecognised projType %q", raw.ProjType)
	}

	cfg := Config{
		ProjType:          projType,
		ViewportInfo:      raw.ViewportInfo,
		SegmentationInfo:  raw.SegmentationInfo,
		FixedPackedPicRes: raw.FixedPackedPicRes,
		CMAFEnabled:       raw.CMAFEnabled,
		FrameRate:         raw.FrameRate,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports whether cfg's fields are usable, returning an
// errs.Kind-classified error rather than panicking on the caller's
// behalf (spec §7: "no error is recovered internally").
func (cfg Config) Validate() error {
	if cfg.FrameRate <= 0 {
		return errs.New(errs.InvalidTime, "frameRate must be positive, got %f", cfg.FrameRate)
	}

	vp := cfg.ViewportInfo
	if vp.Width <= 0 || vp.Height <= 0 {
		return errs.New(errs.InvalidViewport, "viewport display size must be positive, got %dx%d", vp.Width, vp.Height)
	}
	if vp.Yaw < -180 || vp.Yaw > 180 {
		return errs.New(errs.InvalidViewport, "viewport yaw %f out of range [-180,180]", vp.Yaw)
	}
	if vp.Pitch < -90 || vp.Pitch > 90 {
		return errs.New(errs.InvalidViewport, "viewport pitch %f out of range [-90,90]", vp.Pitch)
	}
	if vp.FOVHorizontal <= 0 || vp.FOVHorizontal > 360 {
		return errs.New(errs.InvalidViewport, "viewport horizontal FOV %f out of range (0,360]", vp.FOVHorizontal)
	}
	if vp.FOVVertical <= 0 || vp.FOVVertical > 180 {
		return errs.New(errs.InvalidViewport, "viewport vertical FOV %f out of range (0,180]", vp.FOVVertical)
	}

	seg := cfg.SegmentationInfo
	if seg.SegDuration <= 0 {
		return errs.New(errs.InvalidTime, "segDuration must be positive, got %f", seg.SegDuration)
	}
	if seg.ChunkDuration < 0 || seg.ChunkDuration > seg.SegDuration {
		return errs.New(errs.InvalidTime, "chunkDuration %f must be in [0, segDuration %f]", seg.ChunkDuration, seg.SegDuration)
	}
	if seg.IsLive && seg.WindowSize <= 0 {
		return errs.New(errs.InvalidTime, "windowSize must be positive for a live presentation")
	}
	if seg.ExtractorTracksPerSegThread < 0 {
		return errs.New(errs.InvalidTime, "extractorTracksPerSegThread must be >= 0, got %d", seg.ExtractorTracksPerSegThread)
	}
	if seg.TargetLatency > 0 && (seg.MinLatency > seg.TargetLatency || seg.TargetLatency > seg.MaxLatency) {
		return errs.New(errs.InvalidTime, "latency bounds out of order: min %f <= target %f <= max %f required", seg.MinLatency, seg.TargetLatency, seg.MaxLatency)
	}
	if seg.DirName == "" {
		return errs.New(errs.NullInput, "segmentationInfo.dirName must not be empty")
	}
	if seg.OutName == "" {
		return errs.New(errs.NullInput, "segmentationInfo.outName must not be empty")
	}

	return nil
}
