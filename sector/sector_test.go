package sector

import (
	"testing"

	"github.com/sergev/floppycore/fdtype"
)

func header() fdtype.Header {
	return fdtype.Header{Cyl: 0, Head: 0, Sector: 1, SizeCode: 2} // 512 bytes
}

func TestAddDataFirstCopyIsNewData(t *testing.T) {
	s := New(header(), fdtype.Rate250K, fdtype.EncodingMFM)
	data := make([]byte, 512)
	if got := s.AddData(data, false, CombineCounter); got != NewData {
		t.Errorf("first AddData = %v, want NewData", got)
	}
	if !s.HasGoodData() {
		t.Error("HasGoodData should be true after a good read")
	}
}

func TestAddDataMatchingCopyIsMatched(t *testing.T) {
	s := New(header(), fdtype.Rate250K, fdtype.EncodingMFM)
	data := make([]byte, 512)
	s.AddData(data, false, CombineCounter)
	if got := s.AddData(data, false, CombineCounter); got != Matched {
		t.Errorf("repeated identical AddData = %v, want Matched", got)
	}
	if s.DataCopies()[0].Stats.ReadAttempts != 2 {
		t.Errorf("ReadAttempts = %d, want 2", s.DataCopies()[0].Stats.ReadAttempts)
	}
}

func TestAddDataGoodReadDisplacesBadOnly(t *testing.T) {
	s := New(header(), fdtype.Rate250K, fdtype.EncodingMFM)
	bad := make([]byte, 512)
	bad[0] = 0xff
	s.AddData(bad, true, CombineCounter)
	if !s.BadDataCRC {
		t.Fatal("expected BadDataCRC after first bad read")
	}

	good := make([]byte, 512)
	if got := s.AddData(good, false, CombineCounter); got != NewData {
		t.Errorf("good read after bad-only = %v, want NewData", got)
	}
	if s.BadDataCRC {
		t.Error("BadDataCRC should clear once a good copy is stored")
	}
}

func TestAddDataClipsOverLimit(t *testing.T) {
	s := New(header(), fdtype.Rate250K, fdtype.EncodingMFM)
	for i := 0; i < maxDataCopies; i++ {
		data := make([]byte, 512)
		data[0] = byte(i + 1)
		if got := s.AddData(data, false, CombineCounter); got != NewData {
			t.Fatalf("copy %d: AddData = %v, want NewData", i, got)
		}
	}
	over := make([]byte, 512)
	over[0] = 0xee
	if got := s.AddData(over, false, CombineCounter); got != NewDataOverLimit {
		t.Errorf("over-limit AddData = %v, want NewDataOverLimit", got)
	}
}

func TestPreferDAMOrdering(t *testing.T) {
	s := New(header(), fdtype.Rate250K, fdtype.EncodingMFM)
	s.DAM = fdtype.AMDeletedData
	s.PreferDAM(fdtype.AMData)
	if s.DAM != fdtype.AMData {
		t.Errorf("DAM = %v, want AMData preferred over AMDeletedData", s.DAM)
	}
	s.PreferDAM(fdtype.AMDeletedData)
	if s.DAM != fdtype.AMData {
		t.Error("DAM should not regress from AMData to AMDeletedData")
	}
}

func TestHasSameRecordPropertiesInterchangeableRate(t *testing.T) {
	a := New(header(), fdtype.Rate250K, fdtype.EncodingMFM)
	b := New(header(), fdtype.Rate300K, fdtype.EncodingMFM)
	if !a.HasSameRecordProperties(b) {
		t.Error("250K and 300K should be treated as the same record properties")
	}
}

func TestNormaliseDataRateConvertsOffset(t *testing.T) {
	s := New(header(), fdtype.Rate300K, fdtype.EncodingMFM)
	s.Offset = 1000
	s.NormaliseDataRate(fdtype.Rate250K)
	if s.DataRate != fdtype.Rate250K {
		t.Errorf("DataRate = %v, want Rate250K", s.DataRate)
	}
	if s.Offset == 1000 {
		t.Error("offset should be rescaled, not left unchanged, across a rate normalisation")
	}
}

func TestDataReadStatsCombineCounter(t *testing.T) {
	a := DataReadStats{ReadAttempts: 3, GoodReads: 2}
	b := DataReadStats{ReadAttempts: 2, GoodReads: 2}
	got := a.Combine(b, CombineCounter)
	if got.ReadAttempts != 5 || got.GoodReads != 4 {
		t.Errorf("Combine(counter) = %+v, want {5 4}", got)
	}
}

func TestDataReadStatsCombineRate(t *testing.T) {
	a := DataReadStats{ReadAttempts: 1, GoodReads: 1} // p=1
	b := DataReadStats{ReadAttempts: 1, GoodReads: 0} // p=0
	got := a.Combine(b, CombineRate)
	// 1 - (1-1)(1-0) = 1
	if got.GoodReads != got.ReadAttempts {
		t.Errorf("Combine(rate) = %+v, want fully successful combination", got)
	}
}

func TestIsStableRequiresBothVolumeAndAccuracy(t *testing.T) {
	weak := DataReadStats{ReadAttempts: 1, GoodReads: 1}
	strong := DataReadStats{ReadAttempts: 10, GoodReads: 10}
	if weak.IsStable(0.8) {
		t.Error("a single read should not yet be considered stable at a high threshold")
	}
	if !strong.IsStable(0.8) {
		t.Error("ten consistent good reads should be considered stable")
	}
}

func TestRecognizeCPCChecksum(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	var sum uint16
	for _, b := range payload {
		sum += uint16(b)
	}
	data := append(append([]byte{}, payload...), byte(sum>>8), byte(sum))
	if !RecognizeCPCChecksum(data) {
		t.Error("expected checksum-matching data to be recognised")
	}
	data[len(data)-1] ^= 0xff
	if RecognizeCPCChecksum(data) {
		t.Error("corrupted checksum should not be recognised")
	}
}

func TestCopyWithoutDataDropsPayload(t *testing.T) {
	s := New(header(), fdtype.Rate250K, fdtype.EncodingMFM)
	s.AddData(make([]byte, 512), false, CombineCounter)
	cp := s.CopyWithoutData(false)
	if cp.HasAnyData() {
		t.Error("CopyWithoutData must not carry data copies")
	}
	if cp.Header != s.Header {
		t.Error("CopyWithoutData must keep the header")
	}
}

func TestIsOrphan(t *testing.T) {
	s := New(fdtype.Header{Sector: fdtype.ORPHAN_SECTOR_ID}, fdtype.Rate250K, fdtype.EncodingMFM)
	if !s.IsOrphan() {
		t.Error("sector with ORPHAN_SECTOR_ID should report IsOrphan")
	}
}
