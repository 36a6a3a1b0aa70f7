package odct

import (
	"testing"

	"github.com/sergev/floppycore/fdtype"
	"github.com/sergev/floppycore/mfmdecode"
)

func TestMergeRawTrackPairsIDAndData(t *testing.T) {
	o := New(fdtype.CylHead{Cyl: 1, Head: 0})
	records := []mfmdecode.RawRecord{
		{Kind: mfmdecode.RecordID, Offset: 100, Header: fdtype.Header{Cyl: 1, Head: 0, Sector: 1, SizeCode: 2}},
		{Kind: mfmdecode.RecordData, Offset: 200, DAM: fdtype.AMData, Data: make([]byte, 512)},
	}
	o.MergeRawTrack(fdtype.Rate250K, fdtype.EncodingMFM, records)

	if o.Track.Len() != 1 {
		t.Fatalf("Track.Len() = %d, want 1", o.Track.Len())
	}
	if o.OrphanDataTrack.Len() != 0 {
		t.Fatalf("OrphanDataTrack.Len() = %d, want 0", o.OrphanDataTrack.Len())
	}
	s := o.Track.Sectors()[0]
	if !s.HasGoodData() {
		t.Error("expected good data on the paired sector")
	}
}

func TestMergeRawTrackStashesUnparentedData(t *testing.T) {
	o := New(fdtype.CylHead{Cyl: 0, Head: 0})
	records := []mfmdecode.RawRecord{
		{Kind: mfmdecode.RecordData, Offset: 50, DAM: fdtype.AMData, Data: make([]byte, 512)},
	}
	o.MergeRawTrack(fdtype.Rate250K, fdtype.EncodingMFM, records)

	if o.Track.Len() != 0 {
		t.Fatalf("Track.Len() = %d, want 0", o.Track.Len())
	}
	if o.OrphanDataTrack.Len() != 1 {
		t.Fatalf("OrphanDataTrack.Len() = %d, want 1", o.OrphanDataTrack.Len())
	}
	if o.OrphanDataTrack.Sectors()[0].Header.Sector != fdtype.ORPHAN_SECTOR_ID {
		t.Error("unparented data should carry the orphan sentinel header")
	}
}

func TestCylHeadMismatchRejectsWrongTrack(t *testing.T) {
	o := New(fdtype.CylHead{Cyl: 1, Head: 0})
	if !o.CylHeadMismatch(fdtype.Header{Cyl: 2, Head: 0}) {
		t.Error("expected mismatch for a different cylinder")
	}
	if o.CylHeadMismatch(fdtype.Header{Cyl: 1, Head: 0}) {
		t.Error("expected no mismatch for the same cylinder/head")
	}
}

func TestAcceptOrphanDataSectorSizeForMerging(t *testing.T) {
	header := fdtype.Header{SizeCode: 2} // 512 bytes
	if !AcceptOrphanDataSectorSizeForMerging(header, 512) {
		t.Error("exact-size orphan should be accepted")
	}
	if !AcceptOrphanDataSectorSizeForMerging(header, 256) {
		t.Error("shorter-than-declared orphan should still be accepted")
	}
	if AcceptOrphanDataSectorSizeForMerging(header, 1024) {
		t.Error("longer-than-declared orphan must not be accepted")
	}
}

func TestDetermineBestTrackLenPicksMode(t *testing.T) {
	lens := []int{100000, 100010, 100005, 50000}
	got := DetermineBestTrackLen(lens, 64)
	if got == 50000 {
		t.Error("outlier length should not be chosen as the best track length")
	}
}

func TestSyncAndDemultiToOffsetRebasesBothTracks(t *testing.T) {
	o := New(fdtype.CylHead{Cyl: 0, Head: 0})
	records := []mfmdecode.RawRecord{
		{Kind: mfmdecode.RecordID, Offset: 100, Header: fdtype.Header{Sector: 1, SizeCode: 2}},
		{Kind: mfmdecode.RecordData, Offset: 200, DAM: fdtype.AMData, Data: make([]byte, 512)},
	}
	o.MergeRawTrack(fdtype.Rate250K, fdtype.EncodingMFM, records)
	o.SyncAndDemultiToOffset(50, 10000)

	for _, s := range o.Track.Sectors() {
		if s.Offset < 0 || s.Offset >= 10000 {
			t.Errorf("sector offset %d not folded within track length", s.Offset)
		}
	}
}
