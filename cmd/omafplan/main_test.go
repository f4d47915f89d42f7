// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadStreamsReadsManifestAndParameterSets(t *testing.T) {
	dir := t.TempDir()
	spsPath := filepath.Join(dir, "layer0.sps")
	ppsPath := filepath.Join(dir, "layer0.pps")
	if err := os.WriteFile(spsPath, []byte{0x01, 0x02}, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ppsPath, []byte{0x03, 0x04}, 0o644); err != nil {
		t.Fatal(err)
	}

	manifest := `
- srcWidth: 3840
  srcHeight: 1920
  tilesPerRow: 2
  tilesPerCol: 2
  bitRate: 8000000
  qualityRanking: 1
  spsPath: ` + spsPath + `
  ppsPath: ` + ppsPath + `
  tiles:
    - x: 0
      y: 0
      width: 1920
      height: 960
    - x: 1920
      y: 0
      width: 1920
      height: 960
`
	manifestPath := filepath.Join(dir, "streams.yaml")
	if err := os.WriteFile(manifestPath, []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	layers, err := loadStreams(manifestPath)
	if err != nil {
		t.Fatalf("loadStreams: %v", err)
	}
	if len(layers) != 1 {
		t.Fatalf("expected 1 layer, got %d", len(layers))
	}
	l := layers[0]
	if l.SrcWidth != 3840 || l.SrcHeight != 1920 {
		t.Errorf("unexpected resolution: %+v", l)
	}
	if len(l.Tiles) != 2 {
		t.Fatalf("expected 2 tiles, got %d", len(l.Tiles))
	}
	if len(l.SPS) != 2 || len(l.PPS) != 2 {
		t.Errorf("expected parameter sets to be read from disk, got sps=%v pps=%v", l.SPS, l.PPS)
	}
}

func TestLoadStreamsRejectsMissingFile(t *testing.T) {
	if _, err := loadStreams(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing manifest")
	}
}

func TestRunRejectsMissingFlags(t *testing.T) {
	if err := run("", "", 0, nil); err == nil {
		t.Fatal("expected error when config/streams paths are empty")
	}
}
