/*
DESCRIPTION
  golomb.go provides parsing processes for syntax elements of the u(n), ue(v)
  and se(v) descriptors specified in 7.2 of ITU-T H.264 and ITU-T H.265.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h26x

import (
	"github.com/pkg/errors"

	"github.com/ausocean/spsprobe/codec/h26x/bits"
)

// maxLeadingZeros is the longest Exp-Golomb prefix whose value fits a uint64.
const maxLeadingZeros = 63

// readUe parses a syntax element of ue(v) descriptor, i.e. an unsigned integer
// Exp-Golomb-coded element using method as specified in section 9.1 of ITU-T
// H.264.
func readUe(c *bits.Cursor) (uint64, error) {
	var nZeros int
	for {
		b, err := c.ReadBits(1)
		if err != nil {
			return 0, err
		}
		if b == 1 {
			break
		}
		nZeros++
		if nZeros > maxLeadingZeros {
			return 0, ErrGolombOverflow
		}
	}
	rem, err := c.ReadBits(nZeros)
	if err != nil {
		return 0, err
	}
	return (1 << uint(nZeros)) - 1 + rem, nil
}

// readSe parses a syntax element with descriptor se(v), i.e. a signed integer
// Exp-Golomb-coded syntax element, using the method described in sections
// 9.1 and 9.1.1 of ITU-T H.264.
func readSe(c *bits.Cursor) (int64, error) {
	codeNum, err := readUe(c)
	if err != nil {
		return 0, errors.Wrap(err, "error reading ue(v)")
	}

	// Odd codeNums are positive, even are negative; (k+1)/2 without overflow.
	v := int64(codeNum/2 + codeNum%2)
	if codeNum%2 == 0 {
		return -v, nil
	}
	return v, nil
}

// fieldReader provides methods for reading fields from a bits.Cursor with a
// sticky error that may be checked after a series of parsing read calls.
type fieldReader struct {
	e error
	c *bits.Cursor
}

// newFieldReader returns a new fieldReader.
func newFieldReader(c *bits.Cursor) *fieldReader {
	return &fieldReader{c: c}
}

// readBits reads a u(n) field. If we have an error already, we do not continue
// with the read.
func (r *fieldReader) readBits(n int) uint64 {
	if r.e != nil {
		return 0
	}
	var b uint64
	b, r.e = r.c.ReadBits(n)
	return b
}

// readFlag reads a u(1) field as a bool.
func (r *fieldReader) readFlag() bool {
	return r.readBits(1) == 1
}

// readUe reads a ue(v) field. The read does not happen if the fieldReader has
// a non-nil error.
func (r *fieldReader) readUe() uint64 {
	if r.e != nil {
		return 0
	}
	var i uint64
	i, r.e = readUe(r.c)
	return i
}

// readSe reads a se(v) field. The read does not happen if the fieldReader has
// a non-nil error.
func (r *fieldReader) readSe() int64 {
	if r.e != nil {
		return 0
	}
	var i int64
	i, r.e = readSe(r.c)
	return i
}

// err returns the fieldReader's error annotated with the bit position at
// which reading stopped.
func (r *fieldReader) err() error {
	if r.e == nil {
		return nil
	}
	return errors.Wrapf(r.e, "at bit %d of %d", r.c.Pos(), r.c.Len())
}
