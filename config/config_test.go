// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package config

import (
	"testing"

	"github.com/galvcast/omafplan/errs"
	"github.com/galvcast/omafplan/media"
)

const validYAML = `
projType: erp
viewportInfo:
  width: 1920
  height: 1080
  yaw: 0
  pitch: 0
  fovHorizontal: 90
  fovVertical: 90
segmentationInfo:
  segDuration: 4
  chunkDuration: 1
  windowSize: 5
  isLive: true
  hasMainAS: true
  baseUrl: http://example.test/
  dirName: /tmp/out/
  outName: stream
  extractorTracksPerSegThread: 0
  targetLatency: 3
  minLatency: 2
  maxLatency: 6
fixedPackedPicRes: true
cmafEnabled: true
frameRate: 29.97
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load([]byte(validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProjType != media.ERP {
		t.Errorf("ProjType = %v, want ERP", cfg.ProjType)
	}
	if cfg.ViewportInfo.Width != 1920 || cfg.ViewportInfo.Height != 1080 {
		t.Errorf("ViewportInfo = %+v, want 1920x1080", cfg.ViewportInfo)
	}
	if !cfg.SegmentationInfo.IsLive {
		t.Error("expected IsLive true")
	}
	if !cfg.FixedPackedPicRes || !cfg.CMAFEnabled {
		t.Error("expected FixedPackedPicRes and CMAFEnabled true")
	}
}

const minimalYAML = `
frameRate: 25
segmentationInfo:
  segDuration: 4
  dirName: /tmp/out/
  outName: stream
viewportInfo:
  width: 1920
  height: 1080
  fovHorizontal: 90
  fovVertical: 90
`

func TestLoadProjTypeIsCaseInsensitive(t *testing.T) {
	tests := []struct {
		spelling string
		want     media.ProjectionType
	}{
		{"erp", media.ERP},
		{"ERP", media.ERP},
		{"Cubemap", media.Cubemap},
		{"CUBEMAP", media.Cubemap},
		{"planar", media.Planar},
		{"PLANAR", media.Planar},
	}
	for _, tt := range tests {
		cfg, err := Load([]byte("projType: " + tt.spelling + "\n" + minimalYAML))
		if err != nil {
			t.Fatalf("Load(%q): %v", tt.spelling, err)
		}
		if cfg.ProjType != tt.want {
			t.Errorf("Load(%q).ProjType = %v, want %v", tt.spelling, cfg.ProjType, tt.want)
		}
	}
}

func TestLoadRejectsUnknownProjType(t *testing.T) {
	_, err := Load([]byte("projType: fisheye\n"))
	if kind, ok := errs.Of(err); !ok || kind != errs.NullInput {
		t.Fatalf("expected NullInput, got %v", err)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load([]byte("projType: [erp\n"))
	if err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestValidateRejectsBadViewport(t *testing.T) {
	cfg := Config{
		ProjType:  media.ERP,
		FrameRate: 30,
		ViewportInfo: ViewportInfo{
			Width: 0, Height: 1080, Yaw: 0, Pitch: 0, FOVHorizontal: 90, FOVVertical: 90,
		},
		SegmentationInfo: SegmentationInfo{SegDuration: 4, DirName: "/tmp", OutName: "out"},
	}
	if kind, ok := errs.Of(cfg.Validate()); !ok || kind != errs.InvalidViewport {
		t.Fatalf("expected InvalidViewport, got %v", cfg.Validate())
	}
}

func TestValidateRejectsYawOutOfRange(t *testing.T) {
	cfg := Config{
		FrameRate:        30,
		ViewportInfo:     ViewportInfo{Width: 1, Height: 1, Yaw: 200, FOVHorizontal: 90, FOVVertical: 90},
		SegmentationInfo: SegmentationInfo{SegDuration: 4, DirName: "/tmp", OutName: "out"},
	}
	if kind, ok := errs.Of(cfg.Validate()); !ok || kind != errs.InvalidViewport {
		t.Fatalf("expected InvalidViewport, got %v", cfg.Validate())
	}
}

func TestValidateRejectsNonPositiveSegDuration(t *testing.T) {
	cfg := Config{
		FrameRate:        30,
		ViewportInfo:     ViewportInfo{Width: 1, Height: 1, FOVHorizontal: 90, FOVVertical: 90},
		SegmentationInfo: SegmentationInfo{SegDuration: 0, DirName: "/tmp", OutName: "out"},
	}
	if kind, ok := errs.Of(cfg.Validate()); !ok || kind != errs.InvalidTime {
		t.Fatalf("expected InvalidTime, got %v", cfg.Validate())
	}
}

func TestValidateRejectsLiveWithoutWindowSize(t *testing.T) {
	cfg := Config{
		FrameRate:    30,
		ViewportInfo: ViewportInfo{Width: 1, Height: 1, FOVHorizontal: 90, FOVVertical: 90},
		SegmentationInfo: SegmentationInfo{
			SegDuration: 4, IsLive: true, WindowSize: 0, DirName: "/tmp", OutName: "out",
		},
	}
	if kind, ok := errs.Of(cfg.Validate()); !ok || kind != errs.InvalidTime {
		t.Fatalf("expected InvalidTime, got %v", cfg.Validate())
	}
}

func TestValidateRejectsLatencyBoundsOutOfOrder(t *testing.T) {
	cfg := Config{
		FrameRate:    30,
		ViewportInfo: ViewportInfo{Width: 1, Height: 1, FOVHorizontal: 90, FOVVertical: 90},
		SegmentationInfo: SegmentationInfo{
			SegDuration: 4, DirName: "/tmp", OutName: "out",
			TargetLatency: 5, MinLatency: 6, MaxLatency: 10,
		},
	}
	if kind, ok := errs.Of(cfg.Validate()); !ok || kind != errs.InvalidTime {
		t.Fatalf("expected InvalidTime, got %v", cfg.Validate())
	}
}

func TestValidateRejectsEmptyDirName(t *testing.T) {
	cfg := Config{
		FrameRate:        30,
		ViewportInfo:     ViewportInfo{Width: 1, Height: 1, FOVHorizontal: 90, FOVVertical: 90},
		SegmentationInfo: SegmentationInfo{SegDuration: 4, OutName: "out"},
	}
	if kind, ok := errs.Of(cfg.Validate()); !ok || kind != errs.NullInput {
		t.Fatalf("expected NullInput, got %v", cfg.Validate())
	}
}

func TestValidateAcceptsAutoExtractorTracksPerSegThread(t *testing.T) {
	cfg := Config{
		FrameRate:    30,
		ViewportInfo: ViewportInfo{Width: 1, Height: 1, FOVHorizontal: 90, FOVVertical: 90},
		SegmentationInfo: SegmentationInfo{
			SegDuration: 4, DirName: "/tmp", OutName: "out", ExtractorTracksPerSegThread: 0,
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsNonPositiveFrameRate(t *testing.T) {
	cfg := Config{
		ViewportInfo:     ViewportInfo{Width: 1, Height: 1, FOVHorizontal: 90, FOVVertical: 90},
		SegmentationInfo: SegmentationInfo{SegDuration: 4, DirName: "/tmp", OutName: "out"},
	}
	if kind, ok := errs.Of(cfg.Validate()); !ok || kind != errs.InvalidTime {
		t.Fatalf("expected InvalidTime, got %v", cfg.Validate())
	}
}
