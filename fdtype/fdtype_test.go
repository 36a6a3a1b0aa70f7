package fdtype

import "testing"

func TestAreInterchangeablyEqual(t *testing.T) {
	cases := []struct {
		a, b DataRate
		want bool
	}{
		{Rate250K, Rate300K, true},
		{Rate300K, Rate250K, true},
		{Rate250K, Rate250K, true},
		{Rate250K, Rate500K, false},
		{Rate500K, Rate1M, false},
	}
	for _, c := range cases {
		if got := AreInterchangeablyEqual(c.a, c.b); got != c.want {
			t.Errorf("AreInterchangeablyEqual(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestConvertOffsetByDataRateIdentity(t *testing.T) {
	if got := ConvertOffsetByDataRate(1234, Rate250K, Rate250K); got != 1234 {
		t.Errorf("identity conversion = %d, want 1234", got)
	}
}

func TestConvertOffsetByDataRateScalesProportionally(t *testing.T) {
	// Doubling the rate should roughly double the offset for the same
	// physical position, since more bits fit in the same time window.
	offset := 10000
	got := ConvertOffsetByDataRate(offset, Rate250K, Rate500K)
	want := offset * 2
	if diff := got - want; diff < -1 || diff > 1 {
		t.Errorf("ConvertOffsetByDataRate(%d, 250K, 500K) = %d, want ~%d", offset, got, want)
	}
}

func TestAreOffsetsToleratedSame(t *testing.T) {
	if !AreOffsetsToleratedSame(1000, Rate250K, 1000, Rate250K, 64) {
		t.Error("identical offsets at identical rate should tolerate same")
	}
	if AreOffsetsToleratedSame(1000, Rate250K, 5000, Rate250K, 64) {
		t.Error("offsets far apart should not tolerate same")
	}
}

func TestAddressMarkValid(t *testing.T) {
	valid := []AddressMark{AMIndex, AMID, AMDeletedData, AMDeletedAlt, AMDataAlt, AMData, AMDataRX02}
	for _, m := range valid {
		if !m.Valid() {
			t.Errorf("AddressMark(%#02x).Valid() = false, want true", byte(m))
		}
	}
	if AddressMark(0xff).Valid() {
		t.Error("0xff must not be a valid address mark")
	}
}

func TestPreferredDAM(t *testing.T) {
	if !PreferredDAM(AMData, AMDeletedData) {
		t.Error("DATA should be preferred over DELETED_DATA")
	}
	if PreferredDAM(AMDeletedData, AMData) {
		t.Error("DELETED_DATA should not be preferred over DATA")
	}
	if !PreferredDAM(AMData, AMData) {
		t.Error("equal marks should compare as preferred (>=)")
	}
}

func TestHeaderSizeBytes(t *testing.T) {
	cases := []struct {
		code int
		want int
	}{
		{0, 128},
		{1, 256},
		{2, 512},
		{3, 1024},
	}
	for _, c := range cases {
		h := Header{SizeCode: c.code}
		if got := h.SizeBytes(); got != c.want {
			t.Errorf("Header{SizeCode:%d}.SizeBytes() = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestHeaderEmpty(t *testing.T) {
	if !(Header{}).Empty() {
		t.Error("zero Header should be Empty")
	}
	if (Header{Cyl: 1}).Empty() {
		t.Error("non-zero Header should not be Empty")
	}
}

func TestORPHANSectorIDExceedsByteRange(t *testing.T) {
	if ORPHAN_SECTOR_ID <= 255 {
		t.Fatalf("ORPHAN_SECTOR_ID = %d, must exceed byte range", ORPHAN_SECTOR_ID)
	}
	h := Header{Sector: ORPHAN_SECTOR_ID}
	if h.Sector != 256 {
		t.Errorf("Header.Sector did not hold %d, got %d", ORPHAN_SECTOR_ID, h.Sector)
	}
}
