/*
NAME
  lex.go

DESCRIPTION
  lex.go provides a lexer to split an Annex B byte stream into NAL units.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package codecutil

import (
	"fmt"
	"io"
)

// DefaultMaxNALSize is the default bound on the NAL unit length handed on by a
// NALLexer.
const DefaultMaxNALSize = 64 << 10

// Unbounded may be given to NewNALLexer for a lexer that never truncates.
const Unbounded = 0

// NALLexer splits an Annex B byte stream into NAL units. Both three and four
// byte start code prefixes are recognised.
type NALLexer struct {
	max int
	sc  *ByteScanner
}

// NewNALLexer returns a NALLexer that truncates NAL units to maxSize bytes,
// or that hands on whole units if maxSize is Unbounded.
func NewNALLexer(maxSize int) (*NALLexer, error) {
	if maxSize < 0 {
		return nil, fmt.Errorf("invalid NAL size bound: %v", maxSize)
	}
	return &NALLexer{max: maxSize}, nil
}

// Lex reads an Annex B byte stream from src and calls fn with each NAL unit,
// starting at the NAL header with the start code and any trailing zero bytes
// removed. Bytes before the first start code are discarded and, for a bounded
// lexer, units longer than the bound are truncated. The slice given to fn is
// only valid until fn returns.
//
// Lex returns io.EOF at the end of src, after handing the final unit to fn,
// or the first error returned by src or fn.
func (l *NALLexer) Lex(src io.Reader, fn func(nal []byte) error) error {
	c := NewByteScanner(src, make([]byte, 4<<10)) // Standard file buffer size.
	l.sc = c

	size := 8 << 10
	if l.max != Unbounded {
		size = min(l.max, size)
	}
	buf := make([]byte, 0, size)
	var started bool
	emit := func(n int) error {
		if !started || n <= 0 {
			return nil
		}
		if l.max != Unbounded {
			n = min(n, l.max)
		}
		return fn(buf[:n])
	}

	for {
		var b byte
		var err error
		buf, b, err = c.ScanUntil(buf, 0x00)
		if err != nil {
			if err != io.EOF {
				return err
			}
			err = emit(len(buf))
			if err != nil {
				return err
			}
			return io.EOF
		}

		// Keep memory bounded; only the delimiting zero is needed to find the
		// next start code.
		if !started || (l.max != Unbounded && len(buf) > l.max) {
			keep := 0
			if started {
				keep = l.max
			}
			buf = append(buf[:keep], b)
		}

		zeros := 1
		for {
			b, err = c.ReadByte()
			if err != nil {
				break
			}
			buf = append(buf, b)
			if b != 0x00 {
				break
			}
			zeros++
		}
		if err != nil {
			if err != io.EOF {
				return err
			}
			err = emit(len(buf) - zeros)
			if err != nil {
				return err
			}
			return io.EOF
		}

		if b != 0x01 || zeros < 2 {
			continue
		}
		err = emit(len(buf) - zeros - 1)
		if err != nil {
			return err
		}
		buf = buf[:0]
		started = true
	}
}

// Consumed returns the number of bytes read from the source of the current or
// last call to Lex. When called from a Lex callback this is the offset just
// past the following start code.
func (l *NALLexer) Consumed() int64 {
	if l.sc == nil {
		return 0
	}
	return l.sc.Consumed()
}
