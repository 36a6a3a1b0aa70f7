package mfmdecode

import (
	"bytes"
	"testing"

	"github.com/sergev/floppycore/bitbuf"
	"github.com/sergev/floppycore/fdtype"
	"github.com/sergev/floppycore/trackbuilder"
)

func sectorData(seed byte, n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = seed + byte(i)
	}
	return data
}

func TestDecodeRoundTripsSingleSector(t *testing.T) {
	spec := trackbuilder.SectorSpec{
		Header: fdtype.Header{Cyl: 1, Head: 0, Sector: 1, SizeCode: 2},
		Data:   sectorData(0x10, 512),
	}
	raw := trackbuilder.EncodeTrackIBMPC(16*6250, []trackbuilder.SectorSpec{spec})
	buf := bitbuf.NewFromBytes(raw)

	dec := New(fdtype.Rate250K, fdtype.EncodingMFM)
	records := dec.Decode(buf)

	paired, orphan := PairRecords(records)
	if len(orphan) != 0 {
		t.Fatalf("unexpected orphan data records: %d", len(orphan))
	}
	if len(paired) != 1 {
		t.Fatalf("paired records = %d, want 1", len(paired))
	}
	got := paired[0]
	if got.BadIDCRC {
		t.Error("ID CRC should be good")
	}
	if got.BadDataCRC {
		t.Error("data CRC should be good")
	}
	if !got.Header.CompareCHRN(spec.Header) {
		t.Errorf("header = %+v, want %+v", got.Header, spec.Header)
	}
	if !bytes.Equal(got.Data, spec.Data) {
		t.Errorf("data mismatch: got %v want %v", got.Data[:8], spec.Data[:8])
	}
}

func TestDecodeDetectsBadIDCRC(t *testing.T) {
	spec := trackbuilder.SectorSpec{
		Header:   fdtype.Header{Cyl: 0, Head: 0, Sector: 1, SizeCode: 2},
		Data:     sectorData(0x20, 512),
		BadIDCRC: true,
	}
	raw := trackbuilder.EncodeTrackIBMPC(16*6250, []trackbuilder.SectorSpec{spec})
	dec := New(fdtype.Rate250K, fdtype.EncodingMFM)
	records := dec.Decode(bitbuf.NewFromBytes(raw))

	found := false
	for _, r := range records {
		if r.Kind == RecordID {
			found = true
			if !r.BadIDCRC {
				t.Error("expected BadIDCRC to be true")
			}
		}
	}
	if !found {
		t.Fatal("no ID record decoded")
	}
}

func TestDecodeDetectsBadDataCRC(t *testing.T) {
	spec := trackbuilder.SectorSpec{
		Header:     fdtype.Header{Cyl: 0, Head: 0, Sector: 1, SizeCode: 2},
		Data:       sectorData(0x30, 512),
		BadDataCRC: true,
	}
	raw := trackbuilder.EncodeTrackIBMPC(16*6250, []trackbuilder.SectorSpec{spec})
	dec := New(fdtype.Rate250K, fdtype.EncodingMFM)
	paired, _ := PairRecords(dec.Decode(bitbuf.NewFromBytes(raw)))
	if len(paired) != 1 {
		t.Fatalf("paired = %d, want 1", len(paired))
	}
	if !paired[0].BadDataCRC {
		t.Error("expected BadDataCRC to be true")
	}
}

func TestDecodeMultipleSectors(t *testing.T) {
	specs := []trackbuilder.SectorSpec{
		{Header: fdtype.Header{Cyl: 5, Head: 1, Sector: 1, SizeCode: 2}, Data: sectorData(1, 512)},
		{Header: fdtype.Header{Cyl: 5, Head: 1, Sector: 2, SizeCode: 2}, Data: sectorData(2, 512)},
		{Header: fdtype.Header{Cyl: 5, Head: 1, Sector: 3, SizeCode: 2}, Data: sectorData(3, 512)},
	}
	raw := trackbuilder.EncodeTrackIBMPC(16*12500, specs)
	dec := New(fdtype.Rate250K, fdtype.EncodingMFM)
	paired, orphan := PairRecords(dec.Decode(bitbuf.NewFromBytes(raw)))
	if len(orphan) != 0 {
		t.Fatalf("unexpected orphans: %d", len(orphan))
	}
	if len(paired) != 3 {
		t.Fatalf("paired = %d, want 3", len(paired))
	}
	for i, rec := range paired {
		if rec.Header.Sector != i+1 {
			t.Errorf("paired[%d].Header.Sector = %d, want %d", i, rec.Header.Sector, i+1)
		}
	}
}

func TestDecodeEmptyBufferReturnsNoRecords(t *testing.T) {
	dec := New(fdtype.Rate250K, fdtype.EncodingMFM)
	records := dec.Decode(bitbuf.NewFromBytes(make([]byte, 128)))
	if len(records) != 0 {
		t.Errorf("expected no records from all-zero bitstream, got %d", len(records))
	}
}
