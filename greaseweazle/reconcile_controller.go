package greaseweazle

import (
	"context"
	"fmt"

	"github.com/sergev/floppycore/bitbuf"
	"github.com/sergev/floppycore/fdtype"
	"github.com/sergev/floppycore/mfmdecode"
	"github.com/sergev/floppycore/timedscan"
)

// readFluxTicksPerRevolution is the sample-tick limit ReadTrack passes to
// ReadFlux together with a limit of one index pulse. At 13.89 ns per tick
// it is about 2.8 seconds, far more than one revolution, so the index-pulse
// limit normally ends the capture. The whole-disk Read path passes no tick
// limit.
const readFluxTicksPerRevolution = 200_000_000

// ReadTrack seeks to cylhead, captures one revolution of flux, and decodes
// it to an MFM/FM bitstream, satisfying reconcile.Controller.
func (c *Client) ReadTrack(ctx context.Context, cylhead fdtype.CylHead, rate fdtype.DataRate, encoding fdtype.Encoding) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.Seek(byte(cylhead.Cyl)); err != nil {
		return nil, fmt.Errorf("seek to cylinder %d: %w", cylhead.Cyl, err)
	}
	if err := c.SetHead(byte(cylhead.Head)); err != nil {
		return nil, fmt.Errorf("select head %d: %w", cylhead.Head, err)
	}

	flux, err := c.ReadFlux(readFluxTicksPerRevolution, 1)
	if err != nil {
		return nil, fmt.Errorf("read flux at %v: %w", cylhead, err)
	}
	bits, err := c.decodeFluxToMFM(flux, uint16(rate.BitsPerSecond()/1000))
	if err != nil {
		return nil, fmt.Errorf("decode flux at %v: %w", cylhead, err)
	}
	return bits, nil
}

// TimedScan performs a quick raw-track decode and reports only the ID
// fields found, without validating or even keeping their data payloads,
// satisfying reconcile.Controller's fast discovery pass.
func (c *Client) TimedScan(ctx context.Context, cylhead fdtype.CylHead) (timedscan.ScanResult, error) {
	rate, encoding := fdtype.Rate250K, fdtype.EncodingMFM
	raw, err := c.ReadTrack(ctx, cylhead, rate, encoding)
	if err != nil {
		return timedscan.ScanResult{}, err
	}

	dec := mfmdecode.New(rate, encoding)
	records := dec.Decode(bitbuf.NewFromBytes(raw))

	result := timedscan.ScanResult{
		CylHead:      cylhead,
		DataRate:     rate,
		Encoding:     encoding,
		TrackLenBits: len(raw) * 8,
	}
	for _, rec := range records {
		if rec.Kind != mfmdecode.RecordID {
			continue
		}
		result.Entries = append(result.Entries, timedscan.ScanEntry{
			Header:   rec.Header,
			Offset:   rec.Offset,
			BadIDCRC: rec.BadIDCRC,
		})
	}
	return result, nil
}
