package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/sergev/floppycore/fdtype"
	"github.com/sergev/floppycore/timedscan"
	"github.com/sergev/floppycore/trackbuilder"
)

type fakeController struct {
	scanResult timedscan.ScanResult
	scanErr    error
	tracks     [][]byte // one entry consumed per ReadTrack call, last one repeats
	readCalls  int
}

func (f *fakeController) TimedScan(ctx context.Context, cylhead fdtype.CylHead) (timedscan.ScanResult, error) {
	return f.scanResult, f.scanErr
}

func (f *fakeController) ReadTrack(ctx context.Context, cylhead fdtype.CylHead, rate fdtype.DataRate, encoding fdtype.Encoding) ([]byte, error) {
	idx := f.readCalls
	if idx >= len(f.tracks) {
		idx = len(f.tracks) - 1
	}
	f.readCalls++
	return f.tracks[idx], nil
}

func buildTrack(spec trackbuilder.SectorSpec) []byte {
	return trackbuilder.EncodeTrackIBMPC(16*6250, []trackbuilder.SectorSpec{spec})
}

func TestReconcileSucceedsOnFirstGoodRead(t *testing.T) {
	header := fdtype.Header{Cyl: 0, Head: 0, Sector: 1, SizeCode: 2}
	ctrl := &fakeController{
		scanResult: timedscan.ScanResult{
			Entries: []timedscan.ScanEntry{{Header: header}},
		},
		tracks: [][]byte{buildTrack(trackbuilder.SectorSpec{Header: header, Data: make([]byte, 512)})},
	}

	r := New(ctrl, DefaultPolicy(), fdtype.Rate250K, fdtype.EncodingMFM)
	result, err := r.Reconcile(context.Background(), fdtype.CylHead{}, fdtype.Rate250K, fdtype.EncodingMFM)
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}
	if !result.Track.HasAllGoodData() {
		t.Error("expected all sectors to have good data after one successful read")
	}
}

func TestReconcileRetriesUntilGoodData(t *testing.T) {
	header := fdtype.Header{Cyl: 0, Head: 0, Sector: 1, SizeCode: 2}
	ctrl := &fakeController{
		scanResult: timedscan.ScanResult{Entries: []timedscan.ScanEntry{{Header: header}}},
		tracks: [][]byte{
			buildTrack(trackbuilder.SectorSpec{Header: header, Data: make([]byte, 512), BadDataCRC: true}),
			buildTrack(trackbuilder.SectorSpec{Header: header, Data: make([]byte, 512), BadDataCRC: true}),
			buildTrack(trackbuilder.SectorSpec{Header: header, Data: make([]byte, 512)}),
		},
	}

	r := New(ctrl, DefaultPolicy(), fdtype.Rate250K, fdtype.EncodingMFM)
	result, err := r.Reconcile(context.Background(), fdtype.CylHead{}, fdtype.Rate250K, fdtype.EncodingMFM)
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}
	if !result.Track.HasAllGoodData() {
		t.Error("expected eventual good data after retries")
	}
	if ctrl.readCalls != 3 {
		t.Errorf("readCalls = %d, want 3", ctrl.readCalls)
	}
}

func TestReconcileReturnsExhaustedAfterBudget(t *testing.T) {
	header := fdtype.Header{Cyl: 0, Head: 0, Sector: 1, SizeCode: 2}
	ctrl := &fakeController{
		scanResult: timedscan.ScanResult{Entries: []timedscan.ScanEntry{{Header: header}}},
		tracks:     [][]byte{buildTrack(trackbuilder.SectorSpec{Header: header, Data: make([]byte, 512), BadDataCRC: true})},
	}

	policy := DefaultPolicy()
	policy.Retries = 2
	r := New(ctrl, policy, fdtype.Rate250K, fdtype.EncodingMFM)
	_, err := r.Reconcile(context.Background(), fdtype.CylHead{}, fdtype.Rate250K, fdtype.EncodingMFM)
	if !errors.Is(err, ErrDeviceExhausted) {
		t.Errorf("err = %v, want ErrDeviceExhausted", err)
	}
	if ctrl.readCalls != 2 {
		t.Errorf("readCalls = %d, want 2", ctrl.readCalls)
	}
}

func TestReconcileRespectsCancellation(t *testing.T) {
	header := fdtype.Header{Cyl: 0, Head: 0, Sector: 1, SizeCode: 2}
	ctrl := &fakeController{
		scanResult: timedscan.ScanResult{Entries: []timedscan.ScanEntry{{Header: header}}},
		tracks:     [][]byte{buildTrack(trackbuilder.SectorSpec{Header: header, Data: make([]byte, 512)})},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := New(ctrl, DefaultPolicy(), fdtype.Rate250K, fdtype.EncodingMFM)
	_, err := r.Reconcile(ctx, fdtype.CylHead{}, fdtype.Rate250K, fdtype.EncodingMFM)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
