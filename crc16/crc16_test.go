package crc16

import "testing"

func TestOfEmpty(t *testing.T) {
	if got := Of(nil); got != InitCRC {
		t.Errorf("Of(nil) = %#04x, want %#04x", got, InitCRC)
	}
}

func TestThreeA1SeedsMFMSync(t *testing.T) {
	got := Of([]byte{0xa1, 0xa1, 0xa1})
	if got != A1A1A1 {
		t.Errorf("CRC of three 0xa1 bytes = %#04x, want %#04x", got, A1A1A1)
	}
}

func TestAddBytesMatchesOf(t *testing.T) {
	data := []byte{0xa1, 0xa1, 0xa1, 0xfe, 0x00, 0x01, 0x02, 0x01}
	want := Of(data)

	c := New()
	for _, b := range data {
		c.Add(b)
	}
	if got := c.Value(); got != want {
		t.Errorf("incremental Add = %#04x, want %#04x", got, want)
	}
}

func TestSeededResumeMatchesSyncPrefix(t *testing.T) {
	full := Of([]byte{0xa1, 0xa1, 0xa1, 0xfe, 0x00, 0x01, 0x02, 0x01})

	c := NewSeeded(A1A1A1)
	c.AddBytes([]byte{0xfe, 0x00, 0x01, 0x02, 0x01})
	if got := c.Value(); got != full {
		t.Errorf("seeded resume = %#04x, want %#04x", got, full)
	}
}

func TestMSBLSB(t *testing.T) {
	c := New()
	c.AddBytes([]byte{0xa1, 0xa1, 0xa1})
	msb, lsb := c.MSB(), c.LSB()
	if uint16(msb)<<8|uint16(lsb) != A1A1A1 {
		t.Errorf("MSB/LSB = %02x%02x, want %#04x", msb, lsb, A1A1A1)
	}
}

func TestGoodFrameCRCIsZero(t *testing.T) {
	// A correctly CRC'd frame, when the trailing CRC bytes are folded
	// back in, always yields zero: this is the verification shortcut
	// ReadSectorIBMPC-style readers rely on.
	payload := []byte{0xa1, 0xa1, 0xa1, 0xfb, 0x11, 0x22, 0x33}
	crc := Of(payload)
	withCRC := append(append([]byte{}, payload...), byte(crc>>8), byte(crc))
	if got := Of(withCRC); got != 0 {
		t.Errorf("CRC of frame+trailer = %#04x, want 0", got)
	}
}
