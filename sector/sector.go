// Package sector implements the Sector model and its merge semantics: how
// two reads of what is believed to be the same physical sector are
// reconciled into one copy, tracking CRC validity, multiple data copies,
// and per-bit read stability across repeated revolutions.
package sector

import "github.com/sergev/floppycore/fdtype"

// MergeResult reports the outcome of merging a freshly read sector into an
// existing one.
//
// The original source's header declares only Unchanged/Matched/Improved/
// NewData, but its merge implementation clearly produces a fifth, distinct
// outcome when an oversized run of conflicting copies is clipped rather
// than appended; NewDataOverLimit follows the implementation, not the
// narrower header.
type MergeResult int

const (
	Unchanged MergeResult = iota
	Matched
	Improved
	NewData
	NewDataOverLimit
)

func (r MergeResult) String() string {
	switch r {
	case Unchanged:
		return "Unchanged"
	case Matched:
		return "Matched"
	case Improved:
		return "Improved"
	case NewData:
		return "NewData"
	case NewDataOverLimit:
		return "NewDataOverLimit"
	default:
		return "Invalid"
	}
}

// CombineMode selects how two DataReadStats are combined when merging.
type CombineMode int

const (
	// CombineCounter sums read-attempt/good-read counters directly.
	CombineCounter CombineMode = iota
	// CombineRate probabilistically combines success rates:
	// 1 - (1-p1)(1-p2), rescaled back into counter form.
	CombineRate
)

// DataReadStats tracks how many times a data copy was read and how many of
// those reads produced a result matching the stored copy, used to score
// how stable (trustworthy) a copy is across repeated revolutions.
type DataReadStats struct {
	ReadAttempts int
	GoodReads    int
}

// Combine merges o into d using mode, returning the combined stats.
func (d DataReadStats) Combine(o DataReadStats, mode CombineMode) DataReadStats {
	if mode == CombineCounter {
		return DataReadStats{
			ReadAttempts: d.ReadAttempts + o.ReadAttempts,
			GoodReads:    d.GoodReads + o.GoodReads,
		}
	}
	p1 := d.successRate()
	p2 := o.successRate()
	combined := 1 - (1-p1)*(1-p2)
	attempts := d.ReadAttempts + o.ReadAttempts
	if attempts == 0 {
		attempts = 1
	}
	return DataReadStats{
		ReadAttempts: attempts,
		GoodReads:    int(combined * float64(attempts)),
	}
}

func (d DataReadStats) successRate() float64 {
	if d.ReadAttempts == 0 {
		return 0
	}
	return float64(d.GoodReads) / float64(d.ReadAttempts)
}

// StabilityScore returns a 0..1 score of how trustworthy the copy is,
// rising with both attempt count and success rate.
func (d DataReadStats) StabilityScore() float64 {
	if d.ReadAttempts == 0 {
		return 0
	}
	confidence := float64(d.ReadAttempts) / (float64(d.ReadAttempts) + 2) // asymptotic in attempt count
	return confidence * d.successRate()
}

// IsStable reports whether the copy has accumulated enough matching reads
// to be considered settled, ending further paranoia-mode rereads.
func (d DataReadStats) IsStable(level float64) bool {
	return d.StabilityScore() >= level
}

const maxDataCopies = 3 // clip to this many conflicting data copies per sector

// Sector is one decoded sector: its ID-field header plus zero or more data
// copies read for it across revolutions.
type Sector struct {
	Header   fdtype.Header
	DataRate fdtype.DataRate
	Encoding fdtype.Encoding
	Offset   int // halfbits from track start
	Revolution int
	Gap3     int
	DAM      fdtype.AddressMark

	BadIDCRC   bool
	BadDataCRC bool

	dataCopies []Data
	readAttempts int
	constantDisk bool

	// ChecksumRecognizer optionally recognises 8K-class checksummable
	// sectors (CPC/Speedlock style), where the trailing two bytes of an
	// oversized payload are a simple checksum rather than sector data
	// proper, affecting how "complete" a short read is judged to be.
	ChecksumRecognizer func([]byte) bool
}

// Data is one physical copy of a sector's payload bytes plus its
// read-quality stats.
type Data struct {
	Bytes []byte
	Stats DataReadStats
}

// New returns a Sector for header, defaulting constantDisk (the assumption
// that repeated reads of a non-weak sector should be identical) to true.
func New(header fdtype.Header, rate fdtype.DataRate, encoding fdtype.Encoding) *Sector {
	return &Sector{
		Header:       header,
		DataRate:     rate,
		Encoding:     encoding,
		constantDisk: true,
	}
}

// CopyWithoutData returns a header-only copy of s, optionally retaining the
// accumulated read-attempt count (used when converting an orphan data
// record into a fully addressed sector skeleton before merging its data
// back in).
func (s *Sector) CopyWithoutData(keepReadAttempts bool) Sector {
	cp := Sector{
		Header:   s.Header,
		DataRate: s.DataRate,
		Encoding: s.Encoding,
		Offset:   s.Offset,
		Revolution: s.Revolution,
		Gap3:     s.Gap3,
		DAM:      s.DAM,
		BadIDCRC: s.BadIDCRC,
		constantDisk: s.constantDisk,
		ChecksumRecognizer: s.ChecksumRecognizer,
	}
	if keepReadAttempts {
		cp.readAttempts = s.readAttempts
	}
	return cp
}

// HasGoodIDCRC reports whether the ID field's CRC matched.
func (s *Sector) HasGoodIDCRC() bool { return !s.BadIDCRC }

// HasGoodData reports whether at least one stored data copy has a good
// CRC.
func (s *Sector) HasGoodData() bool {
	return !s.BadDataCRC && len(s.dataCopies) > 0
}

// HasAnyData reports whether any copy, good or bad, has been stored.
func (s *Sector) HasAnyData() bool {
	return len(s.dataCopies) > 0
}

// DataCopies returns the stored data copies.
func (s *Sector) DataCopies() []Data {
	return s.dataCopies
}

// IsOrphan reports whether this sector has the orphan-data sentinel
// sector number, meaning a data record was found with no matching ID
// field.
func (s *Sector) IsOrphan() bool {
	return s.Header.Sector == fdtype.ORPHAN_SECTOR_ID
}

// completeSize returns the data length this sector's header promises,
// i.e. the length a "complete" read should have.
func (s *Sector) completeSize() int {
	return s.Header.SizeBytes()
}

// is8KChecksummable reports whether data looks like a CPC/Speedlock-style
// oversized sector whose trailing bytes are a checksum, not payload.
func (s *Sector) is8KChecksummable(data []byte) bool {
	if s.ChecksumRecognizer == nil {
		return false
	}
	return s.ChecksumRecognizer(data)
}

// RecognizeCPCChecksum is a ChecksumRecognizer (not installed by New): it
// treats a payload of three or more bytes whose final two bytes equal the
// 16-bit sum of the preceding bytes as a checksummed CPC-style sector.
func RecognizeCPCChecksum(data []byte) bool {
	if len(data) < 3 {
		return false
	}
	payload := data[:len(data)-2]
	var sum uint16
	for _, b := range payload {
		sum += uint16(b)
	}
	want := uint16(data[len(data)-2])<<8 | uint16(data[len(data)-1])
	return sum == want
}

// AddData stores a freshly read data copy, performing the full merge
// against any existing copies and returning the outcome.
func (s *Sector) AddData(data []byte, badCRC bool, mode CombineMode) MergeResult {
	s.readAttempts++
	badOnly := s.BadDataCRC && len(s.dataCopies) > 0
	if !badCRC {
		s.BadDataCRC = false
	} else if len(s.dataCopies) == 0 {
		s.BadDataCRC = true
	}

	for i := range s.dataCopies {
		if bytesEqual(s.dataCopies[i].Bytes, data) {
			s.dataCopies[i].Stats = s.dataCopies[i].Stats.Combine(DataReadStats{ReadAttempts: 1, GoodReads: boolToInt(!badCRC)}, mode)
			if !badCRC && s.BadDataCRC {
				s.BadDataCRC = false
			}
			return Matched
		}
	}

	// A good read always displaces any previously stored bad-CRC-only copy.
	if !badCRC && badOnly {
		s.dataCopies = []Data{{Bytes: append([]byte(nil), data...), Stats: DataReadStats{ReadAttempts: 1, GoodReads: 1}}}
		s.BadDataCRC = false
		return NewData
	}

	// Prefer the longest prefix match against the header's declared size:
	// a copy that is closer to "complete" replaces a strictly shorter one
	// sharing the same prefix, rather than being stored as a new conflict.
	complete := s.completeSize()
	for i := range s.dataCopies {
		existing := s.dataCopies[i].Bytes
		if sharesPrefix(existing, data) && len(data) > len(existing) && len(data) <= complete {
			s.dataCopies[i].Bytes = append([]byte(nil), data...)
			s.dataCopies[i].Stats = s.dataCopies[i].Stats.Combine(DataReadStats{ReadAttempts: 1, GoodReads: boolToInt(!badCRC)}, mode)
			return Improved
		}
	}

	if len(s.dataCopies) >= maxDataCopies {
		s.clipToShortest()
		return NewDataOverLimit
	}

	s.dataCopies = append(s.dataCopies, Data{
		Bytes: append([]byte(nil), data...),
		Stats: DataReadStats{ReadAttempts: 1, GoodReads: boolToInt(!badCRC)},
	})
	return NewData
}

// clipToShortest drops all but the shortest stored copies, the original's
// behavior when conflicting copies exceed the retention limit: ambiguous
// data is worse than no data, so the algorithm prefers not to grow
// unboundedly on a persistently weak sector.
func (s *Sector) clipToShortest() {
	if len(s.dataCopies) == 0 {
		return
	}
	shortest := len(s.dataCopies[0].Bytes)
	for _, d := range s.dataCopies[1:] {
		if len(d.Bytes) < shortest {
			shortest = len(d.Bytes)
		}
	}
	var kept []Data
	for _, d := range s.dataCopies {
		if len(d.Bytes) == shortest {
			kept = append(kept, d)
		}
	}
	s.dataCopies = kept
}

// PreferDAM updates s.DAM to other when other ranks higher in merge
// precedence (DATA > DELETED_DATA > any other recognised data mark).
func (s *Sector) PreferDAM(other fdtype.AddressMark) {
	if fdtype.PreferredDAM(other, s.DAM) {
		s.DAM = other
	}
}

// HasSameRecordProperties reports whether o refers to the same physical
// sector as s for merge purposes: matching CHRN, and data rates that are
// either identical or interchangeably equal once normalised.
func (s *Sector) HasSameRecordProperties(o *Sector) bool {
	if !s.Header.CompareCHRN(o.Header) {
		return false
	}
	return fdtype.AreInterchangeablyEqual(s.DataRate, o.DataRate) && s.Encoding == o.Encoding
}

// NormaliseDataRate rewrites s.DataRate to target when s.DataRate is only
// interchangeably (not exactly) equal to it, so that downstream offset
// comparisons all work in one canonical rate.
func (s *Sector) NormaliseDataRate(target fdtype.DataRate) {
	if s.DataRate != target && fdtype.AreInterchangeablyEqual(s.DataRate, target) {
		s.Offset = fdtype.ConvertOffsetByDataRate(s.Offset, s.DataRate, target)
		s.DataRate = target
	}
}

// IsToleratedSameOffset reports whether o's offset is within tolerance
// halfbits of s's offset once normalised to a common data rate, the test
// used to decide whether two sector sightings are the same physical sector
// repeated across revolutions versus a distinct sector instance.
func (s *Sector) IsToleratedSameOffset(o *Sector, tolerance int) bool {
	return fdtype.AreOffsetsToleratedSame(s.Offset, s.DataRate, o.Offset, o.DataRate, tolerance)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sharesPrefix(shorter, longer []byte) bool {
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	for i := range shorter {
		if shorter[i] != longer[i] {
			return false
		}
	}
	return true
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
