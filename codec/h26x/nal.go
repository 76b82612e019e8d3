/*
DESCRIPTION
  nal.go provides NAL unit type constants and Annex B start code scanning for
  locating the SPS NAL unit in a byte stream.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h26x

import "github.com/pkg/errors"

// H.264 NAL unit types, see table 7-1 of ITU-T H.264.
const (
	H264TypeNonIDR = 1
	H264TypeIDR    = 5
	H264TypeSPS    = 7
	H264TypePPS    = 8
	H264TypeAUD    = 9
)

// H.265 NAL unit types, see table 7-1 of ITU-T H.265.
const (
	H265TypeTrailR   = 1
	H265TypeIDRWRADL = 19
	H265TypeIDRNLP   = 20
	H265TypeVPS      = 32
	H265TypeSPS      = 33
	H265TypePPS      = 34
	H265TypeAUD      = 35
)

// startCode is the 4 byte Annex B start code searched for by FindNAL.
var startCode = [...]byte{0x00, 0x00, 0x00, 0x01}

// NALUnit locates a NAL unit within a buffer. Start is the offset of the NAL
// header byte and End the offset of the start code that follows the unit.
// Offsets are only valid for the buffer they were found in, and not after
// that buffer has been normalised.
type NALUnit struct {
	Type       int
	Start, End int
}

// Bytes returns the NAL unit's span of buf.
func (n NALUnit) Bytes(buf []byte) []byte {
	return buf[n.Start:n.End]
}

// Len returns the length of the NAL unit in bytes.
func (n NALUnit) Len() int {
	return n.End - n.Start
}

// NALType returns the NAL unit type held in the header byte b for codec c.
func NALType(b byte, c Codec) int {
	if c == H265 {
		return int(b&0x7e) >> 1
	}
	return int(b & 0x1f)
}

// SPSType returns the SPS NAL unit type for c.
func SPSType(c Codec) int {
	if c == H265 {
		return H265TypeSPS
	}
	return H264TypeSPS
}

// FindNAL finds the first SPS NAL unit for codec c in buf. The unit starts
// after the first 00 00 00 01 start code followed by an SPS header and ends at
// the next 00 00 00 01 start code. If there is no such following start code,
// i.e. the SPS may be cut short by the end of buf, ErrNotFound is returned.
func FindNAL(buf []byte, c Codec) (NALUnit, error) {
	if c != H264 && c != H265 {
		return NALUnit{}, errors.Wrapf(ErrUnknownCodec, "%v", c)
	}
	want := SPSType(c)
	start := -1
	for i := 0; i+len(startCode) <= len(buf); i++ {
		if !isStartCode(buf[i:]) {
			continue
		}
		if start != -1 {
			return NALUnit{Type: want, Start: start, End: i}, nil
		}
		h := i + len(startCode)
		if h < len(buf) && NALType(buf[h], c) == want {
			start = h
			i = h - 1
		}
	}
	if start != -1 {
		return NALUnit{}, errors.Wrapf(ErrNotFound, "no start code after SPS at %d", start)
	}
	return NALUnit{}, ErrNotFound
}

// isStartCode returns true if b begins with a 4 byte start code.
func isStartCode(b []byte) bool {
	if len(b) < len(startCode) {
		return false
	}
	for i := range startCode {
		if b[i] != startCode[i] {
			return false
		}
	}
	return true
}
