// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package mpd

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/galvcast/omafplan/config"
	"github.com/galvcast/omafplan/errs"
	"github.com/galvcast/omafplan/media"
	"github.com/galvcast/omafplan/track"
)

const (
	dashProfile            = "urn:mpeg:dash:profile:isoff-live:2011,http://dashif.org/guidelines/dash-if-simple"
	timeShiftBufferDepth   = "PT5M"
	utcTimingSourceHTTPNTP = "https://time.akamai.com/?iso"
)

// Emitter is the C6 MPD Emitter: it owns the assembled extractor
// tracks and source layers long enough to render them into one MPD
// document, writing it to disk either once (static) or repeatedly as
// a live presentation advances.
type Emitter struct {
	cfg     config.Config
	streams []media.SourceLayer
	tracks  map[int]*track.ExtractorTrack
	log     *slog.Logger

	mpdPath          string
	availabilityFrom time.Time

	// now is overridable in tests; production callers get time.Now.
	now func() time.Time
}

// NewEmitter validates cfg and the assembled tracks and prepares an
// Emitter. It creates the output directory (spec §6's "${dirName}")
// but writes no MPD file; that happens on the first WriteMpd call.
func NewEmitter(cfg config.Config, streams []media.SourceLayer, tracks map[int]*track.ExtractorTrack, log *slog.Logger) (*Emitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(streams) == 0 {
		return nil, errs.New(errs.NullInput, "no source layers provided")
	}
	if tracks == nil {
		return nil, errs.New(errs.NullInput, "no extractor tracks provided")
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "mpd")

	dir := cfg.SegmentationInfo.DirName
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(errs.CreateFolderFailure, err, "creating output directory %q", dir)
	}

	return &Emitter{
		cfg:              cfg,
		streams:          streams,
		tracks:           tracks,
		log:              log,
		mpdPath:          filepath.Join(dir, cfg.SegmentationInfo.OutName+".mpd"),
		availabilityFrom: time.Now().UTC(),
		now:              func() time.Time { return time.Now().UTC() },
	}, nil
}

// WriteMpd builds and atomically publishes the initial MPD document
// for a presentation of totalFrames frames (spec §4.5). For a live
// presentation this is the first revision; UpdateMpd handles later ones.
func (e *Emitter) WriteMpd(totalFrames int64) error {
	doc := e.buildDocument(totalFrames, 0)
	return e.publish(doc)
}

// UpdateMpd refreshes the MPD file for a live presentation, either
// every windowSize segments or every segDuration×fps frames (spec
// §4.5). It is a no-op for a static presentation and a no-op tick when
// neither refresh condition is met, so the caller can call it after
// every flushed segment without checking the schedule itself.
func (e *Emitter) UpdateMpd(segNumber, frameNumber int64) error {
	if !e.cfg.SegmentationInfo.IsLive {
		return nil
	}
	window := int64(e.cfg.SegmentationInfo.WindowSize)
	if window < 1 {
		window = 1
	}
	onSegmentBoundary := segNumber%window == 0

	frameBoundary := int64(e.cfg.SegmentationInfo.SegDuration * e.cfg.FrameRate)
	onFrameBoundary := frameBoundary > 0 && frameNumber%frameBoundary == 0

	if !onSegmentBoundary && !onFrameBoundary {
		return nil
	}

	doc := e.buildDocument(0, segNumber)
	return e.publishLocked(doc)
}

// buildDocument assembles the full XML element tree (spec §4.5): base
// AS, per-tile AS, per-extractor AS, audio AS, CMAF extras, and the
// UTC timing element when live.
func (e *Emitter) buildDocument(totalFrames, segNumber int64) *document {
	seg := e.cfg.SegmentationInfo
	timescale := correctedTimescale(e.cfg.FrameRate)
	segDurationUnits := int(seg.SegDuration * float64(timescale))

	doc := &document{
		Xmlns:             "urn:mpeg:dash:schema:mpd:2011",
		XmlnsXsi:          "http://www.w3.org/2001/XMLSchema-instance",
		XsiSchemaLocation: "urn:mpeg:dash:schema:mpd:2011 DASH-MPD.xsd",
		Profiles:          dashProfile,
	}

	if seg.IsLive {
		doc.Type = "dynamic"
		doc.AvailabilityStartTime = e.availabilityFrom.Format(time.RFC3339)
		doc.PublishTime = e.now().Format(time.RFC3339)
		doc.MinimumUpdatePeriod = isoDuration(seg.SegDuration * float64(maxInt(1, seg.WindowSize)))
		doc.TimeShiftBufferDepth = timeShiftBufferDepth
		doc.UTCTiming = &descriptor{SchemeIdUri: schemeUTCTimingHTTPNTP, Value: utcTimingSourceHTTPNTP}
		if seg.TargetLatency > 0 && e.cfg.CMAFEnabled {
			doc.ServiceDescription = &serviceDescription{
				ID: "0",
				Latency: latency{
					Target: int64(seg.TargetLatency * 1000),
					Min:    int64(seg.MinLatency * 1000),
					Max:    int64(seg.MaxLatency * 1000),
				},
			}
		}
	} else {
		doc.Type = "static"
		doc.MediaPresentationDuration = isoDuration(float64(totalFrames) / e.cfg.FrameRate)
	}

	startNumber := int64(1)
	if seg.IsLive && e.cfg.CMAFEnabled {
		startNumber = segNumber
	}

	doc.Periods = []period{{
		ID:             "0",
		AdaptationSets: e.buildAdaptationSets(timescale, segDurationUnits, startNumber),
	}}
	return doc
}

func (e *Emitter) buildAdaptationSets(timescale, segDurationUnits int, startNumber int64) []adaptationSet {
	var sets []adaptationSet

	if e.cfg.SegmentationInfo.HasMainAS {
		sets = append(sets, e.buildBaseAS(timescale, segDurationUnits, startNumber))
	}

	main := e.streams[0]
	for i, t := range main.Tiles {
		sets = append(sets, e.buildTileAS(i, t, timescale, segDurationUnits, startNumber))
	}

	for _, et := range e.sortedTracks() {
		sets = append(sets, e.buildExtractorAS(et, timescale, segDurationUnits, startNumber))
	}

	sets = append(sets, e.buildAudioAS(timescale, segDurationUnits, startNumber))
	return sets
}

// sortedTracks orders extractor tracks by selection size ascending,
// then by viewport index (spec §5 "Ordering").
func (e *Emitter) sortedTracks() []*track.ExtractorTrack {
	out := make([]*track.ExtractorTrack, 0, len(e.tracks))
	for _, t := range e.tracks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Selection.Len() != out[j].Selection.Len() {
			return out[i].Selection.Len() < out[j].Selection.Len()
		}
		return out[i].ViewportIndex < out[j].ViewportIndex
	})
	return out
}

func (e *Emitter) buildBaseAS(timescale, segDurationUnits int, startNumber int64) adaptationSet {
	main := e.streams[0]
	as := adaptationSet{
		ID:               "base",
		ContentType:      "video",
		MimeType:         "video/mp4",
		SegmentAlignment: true,
		StartWithSAP:     1,
		EssentialProperty: []descriptor{
			{SchemeIdUri: schemeSRD, Value: "1,0,0,0,0"},
		},
		Representations: []representation{{ID: "base_rep", Bandwidth: main.BitRate, Width: main.SrcWidth, Height: main.SrcHeight}},
		SegmentTemplate: e.segmentTemplate("base", timescale, segDurationUnits, startNumber),
	}
	if e.cfg.ProjType == media.Planar {
		as.SupplementalProperty = append(as.SupplementalProperty, descriptor{
			SchemeIdUri: scheme2DQR,
			Quality:     e.planarQualityRanking(),
		})
	}
	e.applyCMAF(&as, segDurationUnits)
	return as
}

func (e *Emitter) planarQualityRanking() []qualityRankElem {
	out := make([]qualityRankElem, 0, len(e.streams))
	for _, s := range e.streams {
		w, h := s.SrcWidth, s.SrcHeight
		if len(s.Tiles) > 0 {
			w, h = s.Tiles[0].Width, s.Tiles[0].Height
		}
		out = append(out, qualityRankElem{QualityRanking: s.QualityRanking, Width: w, Height: h})
	}
	return out
}

func (e *Emitter) buildTileAS(idx int, t media.TileInfo, timescale, segDurationUnits int, startNumber int64) adaptationSet {
	as := adaptationSet{
		ID:               fmt.Sprintf("tile%d", idx),
		ContentType:      "video",
		MimeType:         "video/mp4",
		SegmentAlignment: true,
		StartWithSAP:     1,
		EssentialProperty: []descriptor{
			{SchemeIdUri: schemeSRD, Value: fmt.Sprintf("0,%d,%d,%d,%d", t.X, t.Y, t.Width, t.Height)},
			{SchemeIdUri: schemeRWPK, Value: "0"},
		},
		Representations: []representation{{ID: fmt.Sprintf("tile%d_rep", idx), Width: t.Width, Height: t.Height}},
		SegmentTemplate: e.segmentTemplate(fmt.Sprintf("tile%d", idx), timescale, segDurationUnits, startNumber),
	}
	e.applyCMAF(&as, segDurationUnits)
	return as
}

func (e *Emitter) buildExtractorAS(et *track.ExtractorTrack, timescale, segDurationUnits int, startNumber int64) adaptationSet {
	id := fmt.Sprintf("ext%d", et.ViewportIndex)

	tileIDs := make([]string, 0, et.Selection.Len())
	for _, tile := range et.Selection.Tiles {
		tileIDs = append(tileIDs, fmt.Sprintf("tile%d", tile.Idx))
	}

	quality := make([]qualityRankElem, 0, len(e.streams))
	for _, s := range e.streams {
		quality = append(quality, qualityRankElem{
			QualityRanking:  s.QualityRanking,
			CentreAzimuth:   int(et.Coverage.CentreAzimuth),
			CentreElevation: int(et.Coverage.CentreElevation),
			AzimuthRange:    int(et.Coverage.AzimuthRange),
			ElevationRange:  int(et.Coverage.ElevationRange),
		})
	}

	as := adaptationSet{
		ID:               id,
		ContentType:      "video",
		MimeType:         "video/mp4",
		Codecs:           "hvc2",
		SegmentAlignment: true,
		StartWithSAP:     1,
		EssentialProperty: []descriptor{
			{SchemeIdUri: schemeRWPK, Value: "0"},
		},
		SupplementalProperty: []descriptor{
			{SchemeIdUri: schemeSRQR, Quality: quality},
			{SchemeIdUri: schemePreselection, Value: fmt.Sprintf("%s,%d %s", id, et.ViewportIndex, strings.Join(tileIDs, " "))},
		},
		Representations: []representation{{ID: id + "_rep", Width: et.PackedWidth, Height: et.PackedHeight}},
		SegmentTemplate: e.segmentTemplate(id, timescale, segDurationUnits, startNumber),
	}
	e.applyCMAF(&as, segDurationUnits)
	return as
}

func (e *Emitter) buildAudioAS(timescale, segDurationUnits int, startNumber int64) adaptationSet {
	return adaptationSet{
		ID:               "audio",
		ContentType:      "audio",
		MimeType:         "audio/mp4",
		SegmentAlignment: true,
		StartWithSAP:     1,
		EssentialProperty: []descriptor{
			{SchemeIdUri: schemeAudioChannelCfg, Value: "2"},
		},
		Representations: []representation{{ID: "audio_rep"}},
		SegmentTemplate: e.segmentTemplate("audio", timescale, segDurationUnits, startNumber),
	}
}

func (e *Emitter) segmentTemplate(name string, timescale, segDurationUnits int, startNumber int64) *segmentTemplate {
	return &segmentTemplate{
		Media:          name + "_$Number$.m4s",
		Initialization: name + "_init.mp4",
		Duration:       segDurationUnits,
		Timescale:      timescale,
		StartNumber:    startNumber,
	}
}

// applyCMAF attaches the low-latency CMAF elements (spec §4.5) when
// the job is configured for it and is live.
func (e *Emitter) applyCMAF(as *adaptationSet, segDurationUnits int) {
	seg := e.cfg.SegmentationInfo
	if !e.cfg.CMAFEnabled || !seg.IsLive {
		return
	}
	as.ProducerReferenceTime = &producerReferenceTime{
		ID:            "prt0",
		Type:          "encoder",
		WallClockTime: e.now().Format(time.RFC3339),
	}
	as.Resync = &resync{DT: seg.ChunkDuration, Type: 0}
	if as.SegmentTemplate != nil {
		complete := false
		as.SegmentTemplate.AvailabilityTimeOffset = fmt.Sprintf("%.6f", seg.SegDuration/2)
		as.SegmentTemplate.AvailabilityTimeComplete = &complete
	}
}

// publish marshals doc and atomically writes it to e.mpdPath, unlinking
// any previous file only via the rename (spec §7/§9: never leave a
// partial MPD behind).
func (e *Emitter) publish(doc *document) error {
	return atomicWriteXML(e.mpdPath, doc)
}

// publishLocked additionally takes an advisory exclusive lock on the
// destination file (creating it if absent) for the duration of the
// write, so UpdateMpd never races a concurrent reader mid-refresh.
func (e *Emitter) publishLocked(doc *document) error {
	f, err := os.OpenFile(e.mpdPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return errs.Wrap(errs.CreateFolderFailure, err, "opening mpd file %q for update", e.mpdPath)
	}
	defer f.Close()

	unlock, err := lockForUpdate(f)
	if err != nil {
		return err
	}
	defer unlock()

	return atomicWriteXML(e.mpdPath, doc)
}

func atomicWriteXML(path string, doc *document) error {
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errs.Wrap(errs.XmlCreateFailure, err, "marshalling mpd document")
	}
	payload := append([]byte(xml.Header), out...)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errs.Wrap(errs.CreateFolderFailure, err, "writing temporary mpd file")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errs.Wrap(errs.CreateFolderFailure, err, "publishing mpd file %q", path)
	}
	return nil
}

// isoDuration formats a duration in seconds as an ISO-8601 duration
// string of the form PT#H#M#.###S, matching spec §4.5/§8's
// "PT01H00M00.000S" style exactly.
func isoDuration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int64(seconds*1000 + 0.5)
	hours := totalMillis / 3_600_000
	totalMillis -= hours * 3_600_000
	minutes := totalMillis / 60_000
	totalMillis -= minutes * 60_000
	secs := float64(totalMillis) / 1000.0
	return fmt.Sprintf("PT%02dH%02dM%06.3fS", hours, minutes, secs)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
