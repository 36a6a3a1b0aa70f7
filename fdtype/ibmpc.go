package fdtype

// IBM-PC MFM/FM framing constants: gap sizes and field overhead byte
// counts, in encoded bytes (not halfbits), per encoding.
const (
	Gap2MFMED   = 41 // gap2 for MFM at 1Mbps (ED)
	Gap2MFMDDHD = 22 // gap2 for MFM at any other rate
	Gap2FM      = 11

	SyncOverheadMFM = 12 // 0x00 sync bytes preceding a mark
	TrackOverheadMFM = 80 /*gap4a*/ + SyncOverheadMFM + 4 /*3xC2+FC iam*/ + 50 /*gap1*/
	IDAMOverheadMFM  = 4 // 3xA1 + 0xFE
	DAMOverheadMFM   = 4 // 3xA1 + data mark
	IDOverheadMFM    = IDAMOverheadMFM + 4 /*CHRN*/ + 2 /*crc*/
	DOverheadMFM     = DAMOverheadMFM + 2 /*crc, excludes data payload*/
	SectorOverheadMFM = SyncOverheadMFM + IDOverheadMFM + Gap2MFMDDHD +
		SyncOverheadMFM + DOverheadMFM
	SectorOverheadED = Gap2MFMED - Gap2MFMDDHD

	SyncOverheadFM  = 6
	TrackOverheadFM = 40 /*gap4a*/ + SyncOverheadFM + 1 /*iam*/ + 26 /*gap1*/
	IDAMOverheadFM  = 1
	DAMOverheadFM   = 1
	IDOverheadFM    = IDAMOverheadFM + 4 + 2
	DOverheadFM     = DAMOverheadFM + 2
	SectorOverheadFM = SyncOverheadFM + IDOverheadFM + Gap2FM +
		SyncOverheadFM + DOverheadFM

	MinGap3 = 1
	MaxGap3 = 82
)

// TrackOverhead returns the pre-sector track overhead in bytes for encoding.
func TrackOverhead(encoding Encoding) int {
	if encoding == EncodingFM {
		return TrackOverheadFM
	}
	return TrackOverheadMFM
}

// SectorOverhead returns the fixed per-sector overhead in bytes (excluding
// the data payload and gap3) for encoding.
func SectorOverhead(encoding Encoding) int {
	if encoding == EncodingFM {
		return SectorOverheadFM
	}
	return SectorOverheadMFM
}

// SyncOverhead returns the sync-byte run length preceding any address mark.
func SyncOverhead(encoding Encoding) int {
	if encoding == EncodingFM {
		return SyncOverheadFM
	}
	return SyncOverheadMFM
}

// DataOverhead returns the address-mark+CRC overhead of a data field
// (excluding the payload itself).
func DataOverhead(encoding Encoding) int {
	if encoding == EncodingFM {
		return DOverheadFM
	}
	return DOverheadMFM
}
