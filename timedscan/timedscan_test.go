package timedscan

import (
	"testing"

	"github.com/sergev/floppycore/fdtype"
)

func TestBuildTrackCreatesIDOnlySectors(t *testing.T) {
	result := ScanResult{
		CylHead:  fdtype.CylHead{Cyl: 2, Head: 0},
		DataRate: fdtype.Rate250K,
		Encoding: fdtype.EncodingMFM,
		Entries: []ScanEntry{
			{Header: fdtype.Header{Cyl: 2, Head: 0, Sector: 1, SizeCode: 2}, Offset: 100, TimeUs: 10},
			{Header: fdtype.Header{Cyl: 2, Head: 0, Sector: 2, SizeCode: 2}, Offset: 900, TimeUs: 90},
		},
		RevolutionTimeUs: 200_000,
		TrackLenBits:     100_000,
	}
	tr := BuildTrack(result)
	if tr.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tr.Len())
	}
	for _, s := range tr.Sectors() {
		if s.HasAnyData() {
			t.Error("timed-scan sectors must not carry data yet")
		}
	}
}

func TestExpectedHeadersExcludesBadIDCRC(t *testing.T) {
	result := ScanResult{
		Entries: []ScanEntry{
			{Header: fdtype.Header{Sector: 1}, BadIDCRC: false},
			{Header: fdtype.Header{Sector: 2}, BadIDCRC: true},
		},
	}
	headers := ExpectedHeaders(result)
	if len(headers) != 1 || headers[0].Sector != 1 {
		t.Errorf("ExpectedHeaders = %+v, want only sector 1", headers)
	}
}
