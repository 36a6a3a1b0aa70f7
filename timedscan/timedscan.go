// Package timedscan builds a track.Track skeleton from a controller's
// timed scan: a fast pass that reports each sector ID's header and
// bitstream position without reading (or fully verifying) its data,
// letting a reconciler decide what still needs a full raw-track read
// before committing to the slower decode path.
package timedscan

import (
	"github.com/sergev/floppycore/fdtype"
	"github.com/sergev/floppycore/sector"
	"github.com/sergev/floppycore/track"
)

// ScanEntry is one sector ID sighting from a timed scan.
type ScanEntry struct {
	Header   fdtype.Header
	Offset   int // halfbits from index
	TimeUs   int // microseconds from index
	BadIDCRC bool
}

// ScanResult is a controller's full timed-scan report for one
// cylinder/head: the sightings found plus the measured rotation time.
type ScanResult struct {
	CylHead     fdtype.CylHead
	DataRate    fdtype.DataRate
	Encoding    fdtype.Encoding
	Entries     []ScanEntry
	RevolutionTimeUs int
	TrackLenBits     int
}

// BuildTrack converts a ScanResult into a track.Track holding ID-only
// sectors (no data yet), ready for a reconciler to fill in via raw reads.
func BuildTrack(result ScanResult) *track.Track {
	t := track.New(len(result.Entries))
	t.TrackTimeUs = result.RevolutionTimeUs
	t.TrackLenBits = result.TrackLenBits

	for _, e := range result.Entries {
		s := sector.New(e.Header, result.DataRate, result.Encoding)
		s.Offset = e.Offset
		s.BadIDCRC = e.BadIDCRC
		t.Add(s)
	}
	return t
}

// ExpectedHeaders returns the set of headers a scan found, independent of
// whether their data has since been read, for use as the "want" list
// passed to track.Track.MissingIDs.
func ExpectedHeaders(result ScanResult) []fdtype.Header {
	headers := make([]fdtype.Header, 0, len(result.Entries))
	for _, e := range result.Entries {
		if !e.BadIDCRC {
			headers = append(headers, e.Header)
		}
	}
	return headers
}
