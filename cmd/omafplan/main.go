// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Command omafplan runs one planning job: load a job configuration
// and a source-layer manifest, sweep the sphere, assemble extractor
// tracks, and emit the MPD.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/galvcast/omafplan"
	"github.com/galvcast/omafplan/config"
	"github.com/galvcast/omafplan/errs"
	"github.com/galvcast/omafplan/geometry"
	"github.com/galvcast/omafplan/media"
)

func main() {
	configPath := flag.String("config", "", "path to the job YAML configuration")
	streamsPath := flag.String("streams", "", "path to the source-layer manifest YAML")
	totalFrames := flag.Int64("frames", 0, "total frame count for the initial MPD write")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(*configPath, *streamsPath, *totalFrames, log); err != nil {
		kind, _ := errs.Of(err)
		fmt.Fprintf(os.Stderr, "omafplan: %s: %v\n", kind, err)
		os.Exit(1)
	}
}

func run(configPath, streamsPath string, totalFrames int64, log *slog.Logger) error {
	if configPath == "" || streamsPath == "" {
		return errs.New(errs.NullInput, "both -config and -streams are required")
	}

	cfgData, err := os.ReadFile(configPath)
	if err != nil {
		return errs.Wrap(errs.NullInput, err, "reading config %s", configPath)
	}
	cfg, err := config.Load(cfgData)
	if err != nil {
		return err
	}

	streams, err := loadStreams(streamsPath)
	if err != nil {
		return err
	}
	if len(streams) == 0 {
		return errs.New(errs.NullInput, "streams manifest %s declares no layers", streamsPath)
	}

	vp := media.ViewportSpec{
		Yaw:           cfg.ViewportInfo.Yaw,
		Pitch:         cfg.ViewportInfo.Pitch,
		FOVHorizontal: cfg.ViewportInfo.FOVHorizontal,
		FOVVertical:   cfg.ViewportInfo.FOVVertical,
		DisplayWidth:  cfg.ViewportInfo.Width,
		DisplayHeight: cfg.ViewportInfo.Height,
	}
	vm, err := geometry.New(cfg.ProjType, streams[0], vp)
	if err != nil {
		return err
	}

	p := omafplan.New(cfg, streams, vm, log)
	if err := p.Initialize(); err != nil {
		return err
	}
	return p.WriteMpd(totalFrames)
}

// rawSourceLayer mirrors one entry of the streams manifest: everything
// media.SourceLayer needs, with the parameter-set payloads given as
// file paths rather than inline bytes so the manifest stays readable.
type rawSourceLayer struct {
	SrcWidth       int           `yaml:"srcWidth"`
	SrcHeight      int           `yaml:"srcHeight"`
	TilesPerRow    int           `yaml:"tilesPerRow"`
	TilesPerCol    int           `yaml:"tilesPerCol"`
	BitRate        uint64        `yaml:"bitRate"`
	QualityRanking int           `yaml:"qualityRanking"`
	VPSPath        string        `yaml:"vpsPath"`
	SPSPath        string        `yaml:"spsPath"`
	PPSPath        string        `yaml:"ppsPath"`
	Tiles          []rawTileInfo `yaml:"tiles"`
}

type rawTileInfo struct {
	X, Y          int
	Width, Height int
}

func loadStreams(path string) ([]media.SourceLayer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.NullInput, err, "reading streams manifest %s", path)
	}
	var raw []rawSourceLayer
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errs.Wrap(errs.NullInput, err, "parsing streams manifest %s", path)
	}

	layers := make([]media.SourceLayer, len(raw))
	for i, r := range raw {
		sps, err := readOptional(r.SPSPath)
		if err != nil {
			return nil, err
		}
		pps, err := readOptional(r.PPSPath)
		if err != nil {
			return nil, err
		}
		vps, err := readOptional(r.VPSPath)
		if err != nil {
			return nil, err
		}

		tiles := make([]media.TileInfo, len(r.Tiles))
		for j, t := range r.Tiles {
			tiles[j] = media.TileInfo{X: t.X, Y: t.Y, Width: t.Width, Height: t.Height}
		}

		layers[i] = media.SourceLayer{
			Index:          i,
			SrcWidth:       r.SrcWidth,
			SrcHeight:      r.SrcHeight,
			TilesPerRow:    r.TilesPerRow,
			TilesPerCol:    r.TilesPerCol,
			Tiles:          tiles,
			BitRate:        r.BitRate,
			VPS:            vps,
			SPS:            sps,
			PPS:            pps,
			QualityRanking: r.QualityRanking,
		}
	}
	return layers, nil
}

func readOptional(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.NullInput, err, "reading %s", path)
	}
	return data, nil
}
