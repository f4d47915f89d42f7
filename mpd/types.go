// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package mpd implements the MPD Emitter (C6): it builds an OMAF/DASH
// Media Presentation Description document from a set of assembled
// extractor tracks and writes it to disk, either once (static) or
// repeatedly as a live presentation advances.
//
// The document tree is a plain encoding/xml struct tree, the idiomatic
// Go replacement for the DOM library the original packager used only
// because its implementation language has no reflection-based
// marshaller.
package mpd

import "encoding/xml"

// Scheme URIs for the OMAF/DASH descriptors this package emits;
// schemeProjectionFormat and schemeViewport are declared but no
// element of the current document uses them.
const (
	schemeProjectionFormat = "urn:mpeg:mpegI:omaf:2018:pf"
	schemeRWPK             = "urn:mpeg:mpegI:omaf:2018:rwpk"
	schemeSRD              = "urn:mpeg:dash:srd:2014"
	schemeSRQR             = "urn:mpeg:mpegI:omaf:2018:srqr"
	scheme2DQR             = "urn:mpeg:mpegI:omaf:2018:2dqr"
	schemeViewport         = "urn:mpeg:mpegI:omaf:2018:vwpt"
	schemePreselection     = "urn:mpeg:dash:preselection:2016"
	schemeAudioChannelCfg  = "urn:mpeg:mpegB:cicp:channelConfiguration"
	schemeUTCTimingHTTPNTP = "urn:mpeg:dash:utc:http-ntp:2014"
)

// document is the root MPD element (spec §4.5/§6).
type document struct {
	XMLName xml.Name `xml:"MPD"`

	Xmlns                     string `xml:"xmlns,attr"`
	XmlnsXsi                  string `xml:"xmlns:xsi,attr"`
	XsiSchemaLocation         string `xml:"xsi:schemaLocation,attr"`
	Profiles                  string `xml:"profiles,attr"`
	Type                      string `xml:"type,attr"`
	MediaPresentationDuration string `xml:"mediaPresentationDuration,attr,omitempty"`
	AvailabilityStartTime     string `xml:"availabilityStartTime,attr,omitempty"`
	PublishTime               string `xml:"publishTime,attr,omitempty"`
	MinimumUpdatePeriod       string `xml:"minimumUpdatePeriod,attr,omitempty"`
	TimeShiftBufferDepth      string `xml:"timeShiftBufferDepth,attr,omitempty"`
	MaxSegmentDuration        string `xml:"maxSegmentDuration,attr,omitempty"`

	ServiceDescription *serviceDescription `xml:"ServiceDescription,omitempty"`
	UTCTiming          *descriptor         `xml:"UTCTiming,omitempty"`
	Periods            []period            `xml:"Period"`
}

type period struct {
	ID             string          `xml:"id,attr"`
	Start          string          `xml:"start,attr,omitempty"`
	AdaptationSets []adaptationSet `xml:"AdaptationSet"`
}

// adaptationSet covers the base/tile/extractor/audio AS shapes of
// spec §4.5; unused fields are left zero and omitted from the output.
type adaptationSet struct {
	ID               string `xml:"id,attr"`
	ContentType      string `xml:"contentType,attr,omitempty"`
	MimeType         string `xml:"mimeType,attr,omitempty"`
	Codecs           string `xml:"codecs,attr,omitempty"`
	FrameRate        string `xml:"frameRate,attr,omitempty"`
	SegmentAlignment bool   `xml:"segmentAlignment,attr,omitempty"`
	StartWithSAP     int    `xml:"startWithSAP,attr,omitempty"`

	EssentialProperty    []descriptor `xml:"EssentialProperty,omitempty"`
	SupplementalProperty []descriptor `xml:"SupplementalProperty,omitempty"`

	ProducerReferenceTime *producerReferenceTime `xml:"ProducerReferenceTime,omitempty"`
	Resync                *resync                `xml:"Resync,omitempty"`

	Representations []representation `xml:"Representation"`
	SegmentTemplate *segmentTemplate `xml:"SegmentTemplate,omitempty"`
}

// descriptor is the generic EssentialProperty/SupplementalProperty
// shape, with an optional nested quality-ranking list for SRQR/2DQR.
type descriptor struct {
	SchemeIdUri string            `xml:"schemeIdUri,attr"`
	Value       string            `xml:"value,attr,omitempty"`
	Quality     []qualityRankElem `xml:"Quality,omitempty"`
}

// qualityRankElem is one entry of an SRQR/2DQR descriptor: a layer's
// quality rank plus either its sphere-region coverage or its packed
// tile rectangle, depending on which descriptor it is nested under.
type qualityRankElem struct {
	QualityRanking  int `xml:"qualityRanking,attr"`
	CentreAzimuth   int `xml:"centreAzimuth,attr,omitempty"`
	CentreElevation int `xml:"centreElevation,attr,omitempty"`
	AzimuthRange    int `xml:"azimuthRange,attr,omitempty"`
	ElevationRange  int `xml:"elevationRange,attr,omitempty"`
	X               int `xml:"x,attr,omitempty"`
	Y               int `xml:"y,attr,omitempty"`
	Width           int `xml:"width,attr,omitempty"`
	Height          int `xml:"height,attr,omitempty"`
}

type representation struct {
	ID        string `xml:"id,attr"`
	Bandwidth uint64 `xml:"bandwidth,attr"`
	Width     int    `xml:"width,attr,omitempty"`
	Height    int    `xml:"height,attr,omitempty"`
}

type segmentTemplate struct {
	Media                    string `xml:"media,attr"`
	Initialization           string `xml:"initialization,attr"`
	Duration                 int    `xml:"duration,attr,omitempty"`
	Timescale                int    `xml:"timescale,attr"`
	StartNumber              int64  `xml:"startNumber,attr"`
	AvailabilityTimeOffset   string `xml:"availabilityTimeOffset,attr,omitempty"`
	AvailabilityTimeComplete *bool  `xml:"availabilityTimeComplete,attr,omitempty"`
}

type producerReferenceTime struct {
	ID               string `xml:"id,attr"`
	Type             string `xml:"type,attr"`
	WallClockTime    string `xml:"wallClockTime,attr"`
	PresentationTime int64  `xml:"presentationTime,attr"`
}

type resync struct {
	DT   float64 `xml:"dT,attr"`
	Type int     `xml:"type,attr"`
}

type serviceDescription struct {
	ID      string  `xml:"id,attr"`
	Latency latency `xml:"Latency"`
}

type latency struct {
	Target int64 `xml:"target,attr,omitempty"`
	Min    int64 `xml:"min,attr,omitempty"`
	Max    int64 `xml:"max,attr,omitempty"`
}
