// Package mfmdecode implements the IBM-PC MFM/FM raw-track decoder: it
// scans a bit-positionable buffer for sync+address-mark patterns and
// yields the index/ID/data records found, each independently CRC-checked.
//
// This intentionally returns a flat slice of RawRecord rather than
// producing an odct.OrphanDataCapableTrack directly: the original source's
// RawTrackMFM and OrphanDataCapableTrack headers forward-declare each
// other, a cyclic dependency Go packages cannot express. RawRecord is the
// seam: mfmdecode depends only on bitbuf/fdtype/crc16, and package odct
// depends on mfmdecode's output types, never the reverse.
package mfmdecode

import (
	"github.com/sergev/floppycore/bitbuf"
	"github.com/sergev/floppycore/crc16"
	"github.com/sergev/floppycore/fdtype"
)

// RecordKind distinguishes the three kinds of record a raw track decode can
// produce.
type RecordKind int

const (
	RecordIndex RecordKind = iota
	RecordID
	RecordData
)

func (k RecordKind) String() string {
	switch k {
	case RecordIndex:
		return "Index"
	case RecordID:
		return "ID"
	case RecordData:
		return "Data"
	default:
		return "Invalid"
	}
}

// RawRecord is one decoded record from a raw track: an index mark, an ID
// field (CHRN header), or a data field.
type RawRecord struct {
	Kind   RecordKind
	Offset int // halfbits from the start of the decode

	Header   fdtype.Header
	BadIDCRC bool

	DAM        fdtype.AddressMark
	Data       []byte
	BadDataCRC bool
}

// history is the rolling 32-bit MFM clock+data window used to detect sync
// patterns; the magic seed and target values follow the teacher's scanner.
const (
	syncSeed   = 0x13713713
	syncAllOne = 0xffffffff
	syncMFM    = 0x00a1a1a1
	syncFM     = 0x00c2c2c2
)

// cursor walks a bitbuf.Buffer one MFM data bit (two halfbits) at a time,
// mirroring the teacher's Reader but operating on the shared bitbuf.Buffer
// type instead of owning a private byte slice.
type cursor struct {
	buf *bitbuf.Buffer
	pos bitbuf.Position
	end bitbuf.Position
}

func newCursor(buf *bitbuf.Buffer) *cursor {
	return &cursor{buf: buf, end: bitbuf.FromTotalBits(buf.BitLen())}
}

func (c *cursor) atEnd() bool {
	return !c.pos.Less(c.end)
}

func (c *cursor) readHalfBit() (int, bool) {
	if c.atEnd() {
		return 0, false
	}
	bit, next := c.buf.ReadBits(c.pos, 1)
	c.pos = next
	return int(bit), true
}

func (c *cursor) readBit() (int, bool) {
	if _, ok := c.readHalfBit(); !ok {
		return 0, false
	}
	return c.readHalfBit()
}

func (c *cursor) readByte() (byte, bool) {
	var result byte
	for i := 0; i < 8; i++ {
		bit, ok := c.readBit()
		if !ok {
			return 0, false
		}
		result = (result << 1) | byte(bit)
	}
	return result, true
}

// scan hunts for the next MFM (0xA1) or FM (0xC2) sync pattern, returning
// the address mark byte that follows it.
func (c *cursor) scan() (fdtype.AddressMark, bool) {
	history := uint32(syncSeed)
	for !c.atEnd() {
		bit, ok := c.readBit()
		if !ok {
			return 0, false
		}
		history = (history<<1 | uint32(bit)) & syncAllOne

		if history == syncAllOne {
			if _, ok := c.readHalfBit(); !ok {
				return 0, false
			}
			history = 0
			continue
		}

		if history == syncMFM || history == syncFM {
			tag, ok := c.readByte()
			if !ok {
				return 0, false
			}
			return fdtype.AddressMark(tag), true
		}
	}
	return 0, false
}

// RawTrackDecoder decodes a raw MFM/FM bitstream into RawRecords.
type RawTrackDecoder struct {
	DataRate fdtype.DataRate
	Encoding fdtype.Encoding
}

// New returns a decoder for the given nominal rate/encoding.
func New(rate fdtype.DataRate, encoding fdtype.Encoding) *RawTrackDecoder {
	return &RawTrackDecoder{DataRate: rate, Encoding: encoding}
}

// Decode scans buf end-to-end and returns every record it finds. A
// decode that finds nothing returns an empty, non-nil slice with no error:
// "no sync pattern anywhere in the capture" is data, not a failure.
func (d *RawTrackDecoder) Decode(buf *bitbuf.Buffer) []RawRecord {
	c := newCursor(buf)
	var records []RawRecord

	for {
		startPos := c.pos
		mark, ok := c.scan()
		if !ok {
			break
		}
		offset := startPos.TotalBits()

		switch {
		case mark == fdtype.AMIndex:
			records = append(records, RawRecord{Kind: RecordIndex, Offset: offset})

		case mark.IsID():
			rec, ok := d.decodeIDField(c, offset)
			if ok {
				records = append(records, rec)
			}

		case mark.IsData():
			rec, ok := d.decodeDataField(c, offset, mark)
			if ok {
				records = append(records, rec)
			}

		default:
			// Unrecognised address mark: the record is silently dropped,
			// matching the decoder-reject behaviour for undecodable data
			// rather than surfacing a Go error for ordinary noise.
		}
	}
	return records
}

// decodeIDField reads the CHRN header and its CRC following an ID mark.
func (d *RawTrackDecoder) decodeIDField(c *cursor, offset int) (RawRecord, bool) {
	markCursor := &cursor{buf: c.buf, pos: c.pos.Add(-16), end: c.end} // the mark byte's 16 halfbits precede the cursor
	mark, _ := markCursor.readByte()

	cyl, ok1 := c.readByte()
	head, ok2 := c.readByte()
	sec, ok3 := c.readByte()
	size, ok4 := c.readByte()
	crcHi, ok5 := c.readByte()
	crcLo, ok6 := c.readByte()
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
		return RawRecord{}, false
	}

	fieldBytes := []byte{mark, cyl, head, sec, size}
	// CRC accumulation starts from the well-known three-sync-byte seed
	// rather than re-reading the sync bytes themselves, which the cursor
	// has already consumed by the time a mark is recognised.
	crcSeed := crc16.A1A1A1
	if d.Encoding == fdtype.EncodingFM {
		crcSeed = crc16.Of([]byte{0xc2, 0xc2, 0xc2})
	}
	crc := crc16.NewSeeded(crcSeed)
	crc.AddBytes(fieldBytes)
	badCRC := crc.MSB() != crcHi || crc.LSB() != crcLo

	return RawRecord{
		Kind:   RecordID,
		Offset: offset,
		Header: fdtype.Header{Cyl: int(cyl), Head: int(head), Sector: int(sec), SizeCode: int(size)},
		BadIDCRC: badCRC,
	}, true
}

// decodeDataField reads a sector's data payload and trailing CRC. Because
// RawRecord carries no sector-size context of its own (that only becomes
// known once paired with a preceding ID field by the caller), the decoder
// reads the largest plausible payload size and lets the caller trim it
// once the matching ID's size code is known; here it assumes the common
// 512-byte case, matching the teacher's fixed-size sector reader.
func (d *RawTrackDecoder) decodeDataField(c *cursor, offset int, mark fdtype.AddressMark) (RawRecord, bool) {
	const assumedPayload = 512

	data := make([]byte, assumedPayload)
	for i := range data {
		b, ok := c.readByte()
		if !ok {
			return RawRecord{}, false
		}
		data[i] = b
	}
	crcHi, ok1 := c.readByte()
	crcLo, ok2 := c.readByte()
	if !(ok1 && ok2) {
		return RawRecord{}, false
	}

	crcSeed := crc16.A1A1A1
	if d.Encoding == fdtype.EncodingFM {
		crcSeed = crc16.Of([]byte{0xc2, 0xc2, 0xc2})
	}
	crc := crc16.NewSeeded(crcSeed)
	crc.Add(byte(mark))
	crc.AddBytes(data)
	badCRC := crc.MSB() != crcHi || crc.LSB() != crcLo

	return RawRecord{
		Kind:       RecordData,
		Offset:     offset,
		DAM:        mark,
		Data:       data,
		BadDataCRC: badCRC,
	}, true
}

// PairRecords re-sizes each Data record's payload to the size its nearest
// preceding ID record declares, and carries that ID's header onto the data
// record via index alignment, returning parallel (header, data) pairs for
// records that could be matched, plus any data records left unparented.
func PairRecords(records []RawRecord) (paired []RawRecord, orphanData []RawRecord) {
	var lastID *RawRecord
	for i := range records {
		rec := records[i]
		switch rec.Kind {
		case RecordID:
			lastID = &records[i]
		case RecordData:
			if lastID == nil {
				orphanData = append(orphanData, rec)
				continue
			}
			size := lastID.Header.SizeBytes()
			if size > 0 && size <= len(rec.Data) {
				rec.Data = rec.Data[:size]
			}
			rec.Header = lastID.Header
			rec.BadIDCRC = lastID.BadIDCRC
			paired = append(paired, rec)
			lastID = nil
		}
	}
	return paired, orphanData
}
