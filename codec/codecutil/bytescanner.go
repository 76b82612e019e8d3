/*
NAME
  bytescanner.go

DESCRIPTION
  bytescanner.go provides a buffered byte scanner used to find start code
  prefixes in a byte stream.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package codecutil

import "io"

// ByteScanner is a byte scanner.
type ByteScanner struct {
	buf []byte
	off int

	// n is the total number of bytes consumed from the scanner.
	n int64

	// r is the source of data for the scanner.
	r io.Reader
}

// NewByteScanner returns a scanner initialised with an io.Reader and a read buffer.
func NewByteScanner(r io.Reader, buf []byte) *ByteScanner {
	return &ByteScanner{r: r, buf: buf[:0]}
}

// ScanUntil scans the scanner's underlying io.Reader until a delim byte
// has been read, appending all read bytes to dst. It returns the resulting
// appended data, the last read byte and any error from the reader. At the
// end of the stream the error is io.EOF and res holds any remaining bytes.
func (c *ByteScanner) ScanUntil(dst []byte, delim byte) (res []byte, b byte, err error) {
outer:
	for {
		var i int
		for i, b = range c.buf[c.off:] {
			if b != delim {
				continue
			}
			dst = append(dst, c.buf[c.off:c.off+i+1]...)
			c.off += i + 1
			c.n += int64(i + 1)
			break outer
		}
		dst = append(dst, c.buf[c.off:]...)
		c.n += int64(len(c.buf) - c.off)
		c.off = len(c.buf)
		err = c.reload()
		if err != nil {
			break
		}
	}
	return dst, b, err
}

// ReadByte implements io.ByteReader.
func (c *ByteScanner) ReadByte() (byte, error) {
	if c.off >= len(c.buf) {
		err := c.reload()
		if err != nil {
			return 0, err
		}
	}
	b := c.buf[c.off]
	c.off++
	c.n++
	return b, nil
}

// Consumed returns the number of bytes consumed from the scanner so far.
func (c *ByteScanner) Consumed() int64 { return c.n }

// maxEmptyReads is the number of consecutive empty reads tolerated before
// the reader is considered broken.
const maxEmptyReads = 100

// reload re-fills the scanner's buffer.
func (c *ByteScanner) reload() error {
	for i := 0; i < maxEmptyReads; i++ {
		n, err := c.r.Read(c.buf[:cap(c.buf)])
		c.buf = c.buf[:n]
		c.off = 0
		if n != 0 {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return io.ErrNoProgress
}
