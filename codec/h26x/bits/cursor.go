/*
DESCRIPTION
  cursor.go provides a bounds checked bit cursor for reading fields from an
  in-memory byte slice, most-significant bit first.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bits provides a forward only bit cursor over a byte slice.
package bits

import "github.com/pkg/errors"

// Errors returned by Cursor reads.
var (
	ErrOutOfBounds  = errors.New("read beyond end of buffer")
	ErrInvalidWidth = errors.New("invalid read width")
)

// maxWidth is the widest read that fits in the uint64 result.
const maxWidth = 64

// Cursor tracks an absolute bit position in buf. The position only moves
// forward and never passes the end of buf.
type Cursor struct {
	buf []byte
	pos uint64
}

// NewCursor returns a new Cursor positioned at the first bit of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// ReadBits reads n bits from the buffer and returns them in the
// least-significant part of a uint64.
// For example, with a buffer of []byte{0x8f,0xe3} (1000 1111, 1110 0011), we
// would get the following results for consecutive reads with n values:
// n = 4, res = 0x8 (1000)
// n = 2, res = 0x3 (0011)
// n = 4, res = 0xf (1111)
// n = 6, res = 0x23 (0010 0011)
//
// If the read would pass the end of the buffer ErrOutOfBounds is returned and
// the cursor is left where it was.
func (c *Cursor) ReadBits(n int) (uint64, error) {
	if n < 0 || n > maxWidth {
		return 0, errors.Wrapf(ErrInvalidWidth, "width %d", n)
	}
	if c.pos+uint64(n) > c.Len() {
		return 0, ErrOutOfBounds
	}

	var r uint64
	for n > 0 {
		off := int(c.pos % 8)
		avail := 8 - off

		// Take as many bits as are wanted from the current byte.
		take := avail
		if n < take {
			take = n
		}
		b := uint64(c.buf[c.pos/8])
		b = (b >> uint(avail-take)) & ((1 << uint(take)) - 1)

		r = r<<uint(take) | b
		c.pos += uint64(take)
		n -= take
	}
	return r, nil
}

// ReadBit is a convenience for ReadBits(1) that returns the bit as a bool.
func (c *Cursor) ReadBit() (bool, error) {
	b, err := c.ReadBits(1)
	return b == 1, err
}

// ByteAligned returns true if the cursor is at the start of a byte.
func (c *Cursor) ByteAligned() bool {
	return c.pos%8 == 0
}

// Pos returns the number of bits consumed so far.
func (c *Cursor) Pos() uint64 { return c.pos }

// Len returns the length of the underlying buffer in bits.
func (c *Cursor) Len() uint64 { return uint64(len(c.buf)) * 8 }

// Remaining returns the number of bits left to read.
func (c *Cursor) Remaining() uint64 { return c.Len() - c.pos }
