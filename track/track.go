// Package track collects the Sectors decoded from, or targeted for, one
// physical cylinder/head, keeping them ordered by bitstream offset while
// also exposing an id-ordered view for lookups by header.
package track

import (
	"sort"

	"github.com/sergev/floppycore/fdtype"
	"github.com/sergev/floppycore/sector"
)

// AddResult reports how a sector was folded into a Track.
type AddResult int

const (
	Unchanged AddResult = iota
	Append
	Insert
	Merge
)

func (r AddResult) String() string {
	switch r {
	case Unchanged:
		return "Unchanged"
	case Append:
		return "Append"
	case Insert:
		return "Insert"
	case Merge:
		return "Merge"
	default:
		return "Invalid"
	}
}

// CompareToleranceBytes is the max bitstream position difference, in
// bytes, for sectors to be considered the same sector repeated across
// revolutions.
const CompareToleranceBytes = 64

// CompareToleranceBits is CompareToleranceBytes expressed in MFM halfbits.
const CompareToleranceBits = CompareToleranceBytes * 16

// Track holds the sectors seen on one physical cylinder/head track, along
// with the bitstream length and rotation time it was decoded from.
type Track struct {
	TrackLenBits int // track length in MFM halfbits
	TrackTimeUs  int // track rotation time in microseconds

	sectors []*sector.Sector
}

// New returns an empty Track with capacity reserved for n sectors.
func New(n int) *Track {
	return &Track{sectors: make([]*sector.Sector, 0, n)}
}

// Empty reports whether the track holds no sectors.
func (t *Track) Empty() bool { return len(t.sectors) == 0 }

// Len returns the number of sectors on the track.
func (t *Track) Len() int { return len(t.sectors) }

// Sectors returns the sectors in their stored (offset) order.
func (t *Track) Sectors() []*sector.Sector { return t.sectors }

// SectorsByID returns the sectors ordered by (cyl, head, sector, size),
// for lookups and reporting independent of physical layout.
func (t *Track) SectorsByID() []*sector.Sector {
	ordered := append([]*sector.Sector(nil), t.sectors...)
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i].Header, ordered[j].Header
		if a.Cyl != b.Cyl {
			return a.Cyl < b.Cyl
		}
		if a.Head != b.Head {
			return a.Head < b.Head
		}
		if a.Sector != b.Sector {
			return a.Sector < b.Sector
		}
		return a.SizeCode < b.SizeCode
	})
	return ordered
}

// Find returns the first sector matching header, or nil.
func (t *Track) Find(header fdtype.Header) *sector.Sector {
	for _, s := range t.sectors {
		if s.Header.CompareCHRN(header) {
			return s
		}
	}
	return nil
}

// FindFromOffset returns the first sector at or after offset halfbits.
func (t *Track) FindFromOffset(offset int) *sector.Sector {
	for _, s := range t.sectors {
		if s.Offset >= offset {
			return s
		}
	}
	return nil
}

// Clear empties the track.
func (t *Track) Clear() {
	t.sectors = t.sectors[:0]
}

// Add folds s into the track: a matching existing sector (same CHRN within
// tolerance offset, or an orphan data record being reconciled against its
// parent ID) is merged, a new offset inserts in bitstream order, and an
// offset past the current end simply appends.
func (t *Track) Add(s *sector.Sector) AddResult {
	for i, existing := range t.sectors {
		if existing.Header.CompareCHRN(s.Header) &&
			existing.IsToleratedSameOffset(s, CompareToleranceBits) {
			mergeSectorData(existing, s)
			_ = i
			return Merge
		}
	}

	idx := sort.Search(len(t.sectors), func(i int) bool {
		return t.sectors[i].Offset >= s.Offset
	})
	if idx == len(t.sectors) {
		t.sectors = append(t.sectors, s)
		return Append
	}
	t.sectors = append(t.sectors, nil)
	copy(t.sectors[idx+1:], t.sectors[idx:])
	t.sectors[idx] = s
	return Insert
}

// mergeSectorData folds fresh's copies and CRC/DAM state into existing,
// the counterpart of the original's Sector::merge operating at track
// granularity rather than on a single pre-matched pair.
func mergeSectorData(existing, fresh *sector.Sector) {
	if fresh.BadIDCRC {
		existing.BadIDCRC = existing.BadIDCRC && fresh.BadIDCRC
	} else {
		existing.BadIDCRC = false
	}
	existing.PreferDAM(fresh.DAM)
	for _, d := range fresh.DataCopies() {
		existing.AddData(d.Bytes, fresh.BadDataCRC, sector.CombineCounter)
	}
	if fresh.BadDataCRC && !existing.HasGoodData() {
		existing.BadDataCRC = true
	}
}

// IsRepeated reports whether s's header already appears elsewhere on the
// track, i.e. the track contains a second sighting of the same sector
// number (a copy-protection or weak-sector signal).
func (t *Track) IsRepeated(s *sector.Sector) bool {
	count := 0
	for _, existing := range t.sectors {
		if existing.Header.CompareCHRN(s.Header) {
			count++
		}
	}
	return count > 1
}

// HasAllGoodData reports whether every sector on the track has at least
// one good-CRC data copy.
func (t *Track) HasAllGoodData() bool {
	if t.Empty() {
		return false
	}
	for _, s := range t.sectors {
		if !s.HasGoodData() {
			return false
		}
	}
	return true
}

// HasAnyGoodData reports whether at least one sector has good data.
func (t *Track) HasAnyGoodData() bool {
	for _, s := range t.sectors {
		if s.HasGoodData() {
			return true
		}
	}
	return false
}

// GoodSectors returns the sectors with at least one good-CRC data copy.
func (t *Track) GoodSectors() []*sector.Sector {
	var good []*sector.Sector
	for _, s := range t.sectors {
		if s.HasGoodData() {
			good = append(good, s)
		}
	}
	return good
}

// StableSectors returns the sectors whose data has been read consistently
// enough, at stabilityLevel, to stop paranoia-mode rereading.
func (t *Track) StableSectors(stabilityLevel float64) []*sector.Sector {
	var stable []*sector.Sector
	for _, s := range t.sectors {
		for _, d := range s.DataCopies() {
			if d.Stats.IsStable(stabilityLevel) {
				stable = append(stable, s)
				break
			}
		}
	}
	return stable
}

// MissingIDs returns the headers in want that are not yet present (with
// good data) on the track, the set a reconciliation loop should keep
// trying to read.
func (t *Track) MissingIDs(want []fdtype.Header) []fdtype.Header {
	var missing []fdtype.Header
	for _, h := range want {
		s := t.Find(h)
		if s == nil || !s.HasGoodData() {
			missing = append(missing, h)
		}
	}
	return missing
}

// IsMixedEncoding reports whether the track's sectors disagree on
// encoding, an anomaly worth flagging rather than silently picking one.
func (t *Track) IsMixedEncoding() bool {
	if len(t.sectors) == 0 {
		return false
	}
	enc := t.sectors[0].Encoding
	for _, s := range t.sectors[1:] {
		if s.Encoding != enc {
			return true
		}
	}
	return false
}

// Is8KSector reports whether the track looks like a single oversized
// (CPC/Speedlock-style) 8K sector rather than a conventional sector count.
func (t *Track) Is8KSector() bool {
	return len(t.sectors) == 1 && t.sectors[0].Header.SizeBytes() >= 8192
}

// NormalProbableSize returns the data size (bytes) shared by the largest
// group of same-sized sectors, the track's "normal" sector size with any
// outliers excluded.
func (t *Track) NormalProbableSize() int {
	counts := map[int]int{}
	for _, s := range t.sectors {
		counts[s.Header.SizeBytes()]++
	}
	best, bestCount := 0, 0
	for size, count := range counts {
		if count > bestCount {
			best, bestCount = size, count
		}
	}
	return best
}

// GetTimeOfOffset linearly interpolates a rotation time (microseconds) for
// a bitstream offset, given the track's total length/time.
func (t *Track) GetTimeOfOffset(offset int) int {
	if t.TrackLenBits == 0 {
		return 0
	}
	return offset * t.TrackTimeUs / t.TrackLenBits
}

// GetOffsetOfTime is the inverse of GetTimeOfOffset.
func (t *Track) GetOffsetOfTime(timeUs int) int {
	if t.TrackTimeUs == 0 {
		return 0
	}
	return timeUs * t.TrackLenBits / t.TrackTimeUs
}

// SyncAndDemultiToOffset rewrites every sector's Offset so that syncOffset
// becomes the new zero point and offsets are folded (demultiplexed) modulo
// trackLenSingle, collapsing a multi-revolution capture down to a single
// revolution's worth of positions.
func (t *Track) SyncAndDemultiToOffset(syncOffset, trackLenSingle int) {
	if trackLenSingle <= 0 {
		return
	}
	for _, s := range t.sectors {
		rel := s.Offset - syncOffset
		rel %= trackLenSingle
		if rel < 0 {
			rel += trackLenSingle
		}
		s.Offset = rel
	}
	sort.Slice(t.sectors, func(i, j int) bool {
		return t.sectors[i].Offset < t.sectors[j].Offset
	})
	t.TrackLenBits = trackLenSingle
}
