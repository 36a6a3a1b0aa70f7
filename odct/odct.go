// Package odct implements the orphan-data-capable track: a pair of
// track.Track collections for one cylinder/head — one keyed by the
// sectors whose ID field was matched, one holding data records found with
// no matching ID (parked under the ORPHAN_SECTOR_ID sentinel) — plus the
// merge/sync/demultiplex operations that reconcile raw decodes across
// revolutions into a single coherent track.
package odct

import (
	"github.com/sergev/floppycore/fdtype"
	"github.com/sergev/floppycore/mfmdecode"
	"github.com/sergev/floppycore/sector"
	"github.com/sergev/floppycore/track"
)

// OrphanDataCapableTrack holds the parented sectors for a cylinder/head
// plus any data records that could not be matched to a preceding ID field.
type OrphanDataCapableTrack struct {
	CylHead fdtype.CylHead

	Track           *track.Track
	OrphanDataTrack *track.Track

	// trackIndexOffset is the bitstream offset of the index mark that
	// begins this track's canonical single revolution, used to rebase
	// sector offsets captured across a multi-revolution read.
	trackIndexOffset int
}

// New returns an empty OrphanDataCapableTrack for cylhead.
func New(cylhead fdtype.CylHead) *OrphanDataCapableTrack {
	return &OrphanDataCapableTrack{
		CylHead:         cylhead,
		Track:           track.New(0),
		OrphanDataTrack: track.New(0),
	}
}

// CylHeadMismatch reports whether a decoded ID field's cylinder/head
// disagrees with the track this ODCT represents, the signal used to
// reject sectors physically captured from the wrong track (a seek error
// or adjacent-track bleed).
func (o *OrphanDataCapableTrack) CylHeadMismatch(header fdtype.Header) bool {
	return header.Cyl != o.CylHead.Cyl || header.Head != o.CylHead.Head
}

// MergeRawTrack folds one raw decode pass's records into the track,
// pairing data with its preceding ID where possible and stashing
// unparented data under the orphan sentinel, then attempting to convert
// any stashed orphans into parented sectors in case a later ID arrives.
func (o *OrphanDataCapableTrack) MergeRawTrack(rate fdtype.DataRate, encoding fdtype.Encoding, records []mfmdecode.RawRecord) {
	paired, orphanData := mfmdecode.PairRecords(records)

	for _, rec := range paired {
		if o.CylHeadMismatch(rec.Header) {
			continue
		}
		s := sector.New(rec.Header, rate, encoding)
		s.Offset = rec.Offset
		s.BadIDCRC = rec.BadIDCRC
		s.DAM = rec.DAM
		s.AddData(rec.Data, rec.BadDataCRC, sector.CombineCounter)
		o.Track.Add(s)
	}

	for _, rec := range orphanData {
		s := sector.New(fdtype.Header{Sector: fdtype.ORPHAN_SECTOR_ID}, rate, encoding)
		s.Offset = rec.Offset
		s.DAM = rec.DAM
		s.AddData(rec.Data, rec.BadDataCRC, sector.CombineCounter)
		o.OrphanDataTrack.Add(s)
	}

	o.reconcileOrphans()
}

// AcceptOrphanDataSectorSizeForMerging reports whether an orphan's payload
// length is plausible for the parent header's declared size: either an
// exact match, or a shorter prefix (a read that was truncated but still
// useful), never longer than declared.
func AcceptOrphanDataSectorSizeForMerging(parent fdtype.Header, orphanLen int) bool {
	want := parent.SizeBytes()
	return orphanLen > 0 && orphanLen <= want
}

// ConvertOrphanDataSectorLikeParentSector rewrites an orphan sector's
// header to match parent, converting it from an anonymous data record into
// a fully addressed sector.
func ConvertOrphanDataSectorLikeParentSector(orphan *sector.Sector, parent fdtype.Header) {
	orphan.Header = parent
}

// reconcileOrphans looks for an ID-only sector (good ID CRC, no data yet)
// whose offset precedes a nearby orphan data record within the legal
// gap2 window, and if found, promotes that orphan into the parented
// sector's data.
func (o *OrphanDataCapableTrack) reconcileOrphans() {
	const gap2ToleranceBits = 64 * 16 // generous bound on gap2 + sync overhead, in halfbits

	var stillOrphan []*sector.Sector
	for _, orphan := range o.OrphanDataTrack.Sectors() {
		parent := o.findParentForOrphan(orphan, gap2ToleranceBits)
		if parent == nil {
			stillOrphan = append(stillOrphan, orphan)
			continue
		}
		if !AcceptOrphanDataSectorSizeForMerging(parent.Header, len(orphanData(orphan))) {
			stillOrphan = append(stillOrphan, orphan)
			continue
		}
		for _, d := range orphan.DataCopies() {
			parent.AddData(d.Bytes, false, sector.CombineCounter)
		}
	}
	o.OrphanDataTrack.Clear()
	for _, s := range stillOrphan {
		o.OrphanDataTrack.Add(s)
	}
}

func orphanData(s *sector.Sector) []byte {
	copies := s.DataCopies()
	if len(copies) == 0 {
		return nil
	}
	return copies[0].Bytes
}

// findParentForOrphan returns the nearest ID-only sector on the track
// preceding orphan within tolerance bits, or nil.
func (o *OrphanDataCapableTrack) findParentForOrphan(orphan *sector.Sector, tolerance int) *sector.Sector {
	var best *sector.Sector
	bestDist := tolerance + 1
	for _, s := range o.Track.Sectors() {
		if s.HasAnyData() {
			continue
		}
		if s.Offset > orphan.Offset {
			continue
		}
		dist := orphan.Offset - s.Offset
		if dist <= tolerance && dist < bestDist {
			best, bestDist = s, dist
		}
	}
	return best
}

// DetermineBestTrackLen estimates the canonical single-revolution track
// length in halfbits from a set of observed index-to-index offsets,
// picking the most frequent length within tolerance (the mode), which
// is robust to one or two misdetected revolutions in a multi-revolution
// capture.
func DetermineBestTrackLen(revolutionLens []int, tolerance int) int {
	if len(revolutionLens) == 0 {
		return 0
	}
	bestLen, bestCount := revolutionLens[0], 0
	for _, candidate := range revolutionLens {
		count := 0
		for _, other := range revolutionLens {
			diff := candidate - other
			if diff < 0 {
				diff = -diff
			}
			if diff <= tolerance {
				count++
			}
		}
		if count > bestCount {
			bestLen, bestCount = candidate, count
		}
	}
	return bestLen
}

// SyncAndDemultiToOffset rebases both the parented and orphan tracks to a
// single revolution starting at syncOffset, folding a multi-revolution
// capture down to one coherent track.
func (o *OrphanDataCapableTrack) SyncAndDemultiToOffset(syncOffset, trackLenSingle int) {
	o.trackIndexOffset = syncOffset
	o.Track.SyncAndDemultiToOffset(syncOffset, trackLenSingle)
	o.OrphanDataTrack.SyncAndDemultiToOffset(syncOffset, trackLenSingle)
}
