// Package reconcile drives the read-reread-merge loop that turns a
// device's repeated, imperfect reads of one physical track into a single
// best-effort odct.OrphanDataCapableTrack: a timed scan locates sector
// IDs quickly, then raw-track decodes are merged in until every sector
// has good data, the rescan/retry budget is exhausted, or the caller's
// context is cancelled.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/sergev/floppycore/bitbuf"
	"github.com/sergev/floppycore/fdtype"
	"github.com/sergev/floppycore/mfmdecode"
	"github.com/sergev/floppycore/odct"
	"github.com/sergev/floppycore/timedscan"
)

// ErrDeviceExhausted reports that the rescan/retry budget was spent
// without the track reaching completion; it is not a fatal error, and
// DualTrackReconciler.Reconcile returns the partial track alongside it.
var ErrDeviceExhausted = errors.New("reconcile: rescan/retry budget exhausted")

// Controller is the boundary to the concrete disk-reading hardware: a
// Greaseweazle/KryoFlux/SuperCardPro client or any other flux-capturing
// driver satisfies this without the reconciler importing any transport
// package directly.
type Controller interface {
	TimedScan(ctx context.Context, cylhead fdtype.CylHead) (timedscan.ScanResult, error)
	ReadTrack(ctx context.Context, cylhead fdtype.CylHead, rate fdtype.DataRate, encoding fdtype.Encoding) ([]byte, error)
}

// DeviceReadingPolicy bounds how hard the reconciler tries before giving
// up on a track: how many timed rescans and how many raw-track rereads
// are allowed, and whether paranoia mode (keep rereading until the data
// looks stable rather than stopping at first good CRC) is enabled.
type DeviceReadingPolicy struct {
	Rescans        int
	Retries        int
	Paranoia       bool
	StabilityLevel float64
}

// DefaultPolicy matches the teacher's CLI defaults: a modest number of
// passes, no paranoia mode.
func DefaultPolicy() DeviceReadingPolicy {
	return DeviceReadingPolicy{Rescans: 2, Retries: 5, StabilityLevel: 0.9}
}

// Logger is the ambient logging seam: plain fmt-style formatting, matching
// the teacher's direct fmt.Printf use throughout its CLI and adapters,
// injectable so tests can silence it.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// DualTrackReconciler orchestrates the scan+decode+merge loop for one
// cylinder/head against a Controller.
type DualTrackReconciler struct {
	Controller Controller
	Policy     DeviceReadingPolicy
	Decoder    *mfmdecode.RawTrackDecoder
	Logger     Logger
}

// New returns a reconciler driving ctrl with policy, decoding raw tracks
// at rate/encoding.
func New(ctrl Controller, policy DeviceReadingPolicy, rate fdtype.DataRate, encoding fdtype.Encoding) *DualTrackReconciler {
	return &DualTrackReconciler{
		Controller: ctrl,
		Policy:     policy,
		Decoder:    mfmdecode.New(rate, encoding),
		Logger:     nopLogger{},
	}
}

// Reconcile runs the scan/read/merge loop for cylhead at rate/encoding
// until every expected sector has good data, the policy's budget runs
// out, or ctx is cancelled. It always returns the best track assembled so
// far; err is non-nil for a cancellation, a hard device error, or an
// exhausted budget (ErrDeviceExhausted is returned alongside a
// still-useful partial track, not in place of one).
func (r *DualTrackReconciler) Reconcile(ctx context.Context, cylhead fdtype.CylHead, rate fdtype.DataRate, encoding fdtype.Encoding) (*odct.OrphanDataCapableTrack, error) {
	result := odct.New(cylhead)

	var expected []fdtype.Header
	for rescan := 0; rescan < r.Policy.Rescans; rescan++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		scan, err := r.Controller.TimedScan(ctx, cylhead)
		if err != nil {
			return result, fmt.Errorf("timed scan of %v: %w", cylhead, err)
		}
		expected = timedscan.ExpectedHeaders(scan)
		if len(expected) > 0 {
			break
		}
		r.Logger.Printf("reconcile: empty timed scan of %v (attempt %d/%d)", cylhead, rescan+1, r.Policy.Rescans)
	}

	for retry := 0; retry < r.Policy.Retries; retry++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		raw, err := r.Controller.ReadTrack(ctx, cylhead, rate, encoding)
		if err != nil {
			return result, fmt.Errorf("raw track read of %v: %w", cylhead, err)
		}

		records := r.Decoder.Decode(bitbuf.NewFromBytes(raw))
		result.MergeRawTrack(rate, encoding, records)

		if r.isComplete(result, expected) {
			return result, nil
		}
		r.Logger.Printf("reconcile: %v still incomplete after retry %d/%d", cylhead, retry+1, r.Policy.Retries)
	}

	return result, ErrDeviceExhausted
}

// isComplete reports whether every expected header has data good enough
// to stop rereading: a good CRC ordinarily, or a stability-scored copy
// when paranoia mode is enabled.
func (r *DualTrackReconciler) isComplete(result *odct.OrphanDataCapableTrack, expected []fdtype.Header) bool {
	if len(expected) == 0 {
		return result.Track.HasAnyGoodData()
	}
	if r.Policy.Paranoia {
		stable := result.Track.StableSectors(r.Policy.StabilityLevel)
		return len(stable) >= len(expected) && len(result.Track.MissingIDs(expected)) == 0
	}
	return len(result.Track.MissingIDs(expected)) == 0
}
