// Package trackbuilder synthesizes bit-exact IBM-PC MFM track
// bitstreams, the reverse of mfmdecode, for use as round-trip test
// fixtures.
package trackbuilder

import (
	"github.com/sergev/floppycore/bitbuf"
	"github.com/sergev/floppycore/crc16"
	"github.com/sergev/floppycore/fdtype"
)

// Builder accumulates MFM-encoded bits into a bitbuf.Buffer, tracking the
// last data bit written so zero bits can be clock-encoded correctly.
type Builder struct {
	buf         *bitbuf.Buffer
	pos         bitbuf.Position
	lastDataBit int
	maxHalfBits int
}

// New returns a Builder that will stop writing once maxHalfBits halfbits
// have been emitted, mirroring a fixed-length physical track.
func New(maxHalfBits int) *Builder {
	return &Builder{buf: bitbuf.New(), maxHalfBits: maxHalfBits}
}

func (b *Builder) writeHalfBit(bit int) {
	if b.pos.TotalBits() >= b.maxHalfBits {
		return
	}
	b.buf.WriteBits(b.pos, byte(bit), 1)
	b.pos = b.pos.Add(1)
}

func (b *Builder) writeDataBit(bit int) {
	if bit != 0 {
		b.writeHalfBit(0)
		b.writeHalfBit(1)
	} else {
		b.writeHalfBit(b.lastDataBit ^ 1)
		b.writeHalfBit(0)
	}
	b.lastDataBit = bit
}

func (b *Builder) writeByte(data byte) {
	for i := 7; i >= 0; i-- {
		b.writeDataBit(int((data >> uint(i)) & 1))
	}
}

func (b *Builder) writeBytes(data []byte) {
	for _, v := range data {
		b.writeByte(v)
	}
}

// WriteGap writes n bytes of the standard MFM gap fill byte.
func (b *Builder) WriteGap(n int) {
	for i := 0; i < n; i++ {
		b.writeByte(0x4e)
	}
}

// writeSyncMark writes twelve 0x00 sync bytes followed by three
// clock-violating sync bytes encoding either 0xA1 (MFM) or 0xC2 (FM/index).
func (b *Builder) writeSyncMark(violatedByte byte) {
	for i := 0; i < 12; i++ {
		b.writeByte(0)
	}
	// violatedByte's bit pattern is written as data bits, except bits 2
	// and 1 (from MSB, 0-indexed from 7 down to 0) which are forced to
	// zero half-bits, the clock violation a real MFM encoder can never
	// produce naturally and that a decoder's sync hunt keys on.
	for i := 0; i < 3; i++ {
		for bitIdx := 7; bitIdx >= 0; bitIdx-- {
			if bitIdx == 2 || bitIdx == 1 {
				b.writeHalfBit(0)
				b.writeHalfBit(0)
				continue
			}
			b.writeDataBit(int((violatedByte >> uint(bitIdx)) & 1))
		}
	}
}

// WriteMarker writes an A1-sync mark (the prefix preceding an ID or data
// address mark byte).
func (b *Builder) WriteMarker() {
	b.writeSyncMark(0xa1)
}

// WriteIndexMarker writes a C2-sync index mark followed by the 0xFC tag.
func (b *Builder) WriteIndexMarker() {
	b.writeSyncMark(0xc2)
	b.writeByte(byte(fdtype.AMIndex))
}

// WriteByte writes one MFM-encoded byte (exported for building custom
// fields in tests).
func (b *Builder) WriteByte(data byte) {
	b.writeByte(data)
}

// WriteBytes writes a run of MFM-encoded bytes.
func (b *Builder) WriteBytes(data []byte) {
	b.writeBytes(data)
}

// Data returns the accumulated bitstream, trimmed to the bytes actually
// written.
func (b *Builder) Data() []byte {
	n := bitbuf.ByteSizeHavingBits(b.pos.TotalBits())
	data := b.buf.Bytes()
	if n < len(data) {
		return data[:n]
	}
	return data
}

// SectorSpec describes one sector to encode onto a synthetic track.
type SectorSpec struct {
	Header     fdtype.Header
	Data       []byte
	DAM        fdtype.AddressMark
	BadIDCRC   bool // write a deliberately wrong ID CRC, for negative tests
	BadDataCRC bool
}

// EncodeTrackIBMPC writes a full IBM-PC MFM track: index mark, then each
// sector's ID field, gap2, data field and gap3, padding the remainder of
// the track with gap4 filler.
func EncodeTrackIBMPC(maxHalfBits int, sectors []SectorSpec) []byte {
	b := New(maxHalfBits)

	b.WriteGap(80)
	b.WriteIndexMarker()
	b.WriteGap(50)

	for _, s := range sectors {
		b.WriteMarker()
		b.WriteByte(byte(fdtype.AMID))
		idBytes := []byte{byte(s.Header.Cyl), byte(s.Header.Head), byte(s.Header.Sector), byte(s.Header.SizeCode)}
		b.WriteBytes(idBytes)

		idCRC := crc16.NewSeeded(crc16.A1A1A1)
		idCRC.Add(byte(fdtype.AMID))
		idCRC.AddBytes(idBytes)
		hi, lo := idCRC.MSB(), idCRC.LSB()
		if s.BadIDCRC {
			hi ^= 0xff
		}
		b.WriteByte(hi)
		b.WriteByte(lo)

		b.WriteGap(22)

		b.WriteMarker()
		dam := s.DAM
		if dam == 0 {
			dam = fdtype.AMData
		}
		b.WriteByte(byte(dam))
		b.WriteBytes(s.Data)

		dataCRC := crc16.NewSeeded(crc16.A1A1A1)
		dataCRC.Add(byte(dam))
		dataCRC.AddBytes(s.Data)
		dhi, dlo := dataCRC.MSB(), dataCRC.LSB()
		if s.BadDataCRC {
			dhi ^= 0xff
		}
		b.WriteByte(dhi)
		b.WriteByte(dlo)

		b.WriteGap(54)
	}

	remaining := maxHalfBits/16 - len(b.Data())
	if remaining > 0 {
		b.WriteGap(remaining)
	}
	return b.Data()
}
