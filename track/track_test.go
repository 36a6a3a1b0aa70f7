package track

import (
	"testing"

	"github.com/sergev/floppycore/fdtype"
	"github.com/sergev/floppycore/sector"
)

func mkSector(sec int, offset int) *sector.Sector {
	h := fdtype.Header{Cyl: 0, Head: 0, Sector: sec, SizeCode: 2}
	s := sector.New(h, fdtype.Rate250K, fdtype.EncodingMFM)
	s.Offset = offset
	return s
}

func TestAddAppendsInOffsetOrder(t *testing.T) {
	tr := New(4)
	if got := tr.Add(mkSector(1, 100)); got != Append {
		t.Errorf("first add = %v, want Append", got)
	}
	if got := tr.Add(mkSector(2, 200)); got != Append {
		t.Errorf("second increasing add = %v, want Append", got)
	}
	if tr.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tr.Len())
	}
}

func TestAddInsertsOutOfOrder(t *testing.T) {
	tr := New(4)
	tr.Add(mkSector(1, 500))
	got := tr.Add(mkSector(2, 100))
	if got != Insert {
		t.Errorf("out-of-order add = %v, want Insert", got)
	}
	if tr.Sectors()[0].Header.Sector != 2 {
		t.Errorf("first sector after insert = %d, want 2", tr.Sectors()[0].Header.Sector)
	}
}

func TestAddMergesSameHeaderWithinTolerance(t *testing.T) {
	tr := New(4)
	tr.Add(mkSector(1, 1000))
	got := tr.Add(mkSector(1, 1000+CompareToleranceBits/2))
	if got != Merge {
		t.Errorf("near-duplicate add = %v, want Merge", got)
	}
	if tr.Len() != 1 {
		t.Errorf("Len() = %d after merge, want 1", tr.Len())
	}
}

func TestAddDoesNotMergeBeyondTolerance(t *testing.T) {
	tr := New(4)
	tr.Add(mkSector(1, 1000))
	got := tr.Add(mkSector(1, 1000+CompareToleranceBits*4))
	if got == Merge {
		t.Error("sectors far enough apart should not merge even with matching header")
	}
}

func TestSectorsByIDOrdersByCHRN(t *testing.T) {
	tr := New(4)
	tr.Add(mkSector(3, 100))
	tr.Add(mkSector(1, 500))
	tr.Add(mkSector(2, 900))
	byID := tr.SectorsByID()
	want := []int{1, 2, 3}
	for i, s := range byID {
		if s.Header.Sector != want[i] {
			t.Errorf("byID[%d].Sector = %d, want %d", i, s.Header.Sector, want[i])
		}
	}
}

func TestHasAllGoodDataRequiresEverySector(t *testing.T) {
	tr := New(2)
	s1 := mkSector(1, 100)
	s1.AddData(make([]byte, 512), false, sector.CombineCounter)
	tr.Add(s1)
	tr.Add(mkSector(2, 200)) // no data yet

	if tr.HasAllGoodData() {
		t.Error("HasAllGoodData should be false while one sector has no data")
	}

	s2 := tr.Find(fdtype.Header{Sector: 2, SizeCode: 2})
	s2.AddData(make([]byte, 512), false, sector.CombineCounter)
	if !tr.HasAllGoodData() {
		t.Error("HasAllGoodData should be true once every sector has good data")
	}
}

func TestMissingIDs(t *testing.T) {
	tr := New(2)
	s1 := mkSector(1, 100)
	s1.AddData(make([]byte, 512), false, sector.CombineCounter)
	tr.Add(s1)

	want := []fdtype.Header{
		{Sector: 1, SizeCode: 2},
		{Sector: 2, SizeCode: 2},
	}
	missing := tr.MissingIDs(want)
	if len(missing) != 1 || missing[0].Sector != 2 {
		t.Errorf("MissingIDs = %+v, want just sector 2", missing)
	}
}

func TestSyncAndDemultiToOffsetWrapsModulo(t *testing.T) {
	tr := New(2)
	tr.Add(mkSector(1, 100))
	tr.Add(mkSector(2, 12000))
	tr.SyncAndDemultiToOffset(50, 10000)
	for _, s := range tr.Sectors() {
		if s.Offset < 0 || s.Offset >= 10000 {
			t.Errorf("offset %d not folded into [0, 10000)", s.Offset)
		}
	}
}

func TestIsMixedEncoding(t *testing.T) {
	tr := New(2)
	s1 := mkSector(1, 100)
	s2 := mkSector(2, 200)
	s2.Encoding = fdtype.EncodingFM
	tr.Add(s1)
	tr.Add(s2)
	if !tr.IsMixedEncoding() {
		t.Error("expected IsMixedEncoding to detect FM/MFM disagreement")
	}
}
