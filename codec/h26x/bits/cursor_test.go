/*
DESCRIPTION
  cursor_test.go provides testing for functionality in cursor.go.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bits

import (
	"testing"

	"github.com/pkg/errors"
)

func TestReadBits(t *testing.T) {
	tests := []struct {
		in   []byte // The buffer the cursor reads from.
		n    []int  // The number of bits we wish to read for each read.
		want []uint64
		pos  uint64 // The expected cursor position after all reads.
	}{
		{
			in:   []byte{0x8f, 0xe3},
			n:    []int{4, 2, 4, 6},
			want: []uint64{0x8, 0x3, 0xf, 0x23},
			pos:  16,
		},
		{
			in:   []byte{0x8f, 0xe3, 0x8f, 0xe3},
			n:    []int{32},
			want: []uint64{0x8fe38fe3},
			pos:  32,
		},
		{
			in:   []byte{0x8f, 0xe3, 0x8f, 0xe3},
			n:    []int{3, 5, 24},
			want: []uint64{0x4, 0x0f, 0xe38fe3},
			pos:  32,
		},
		{
			in:   []byte{0x8f, 0xe3, 0x8f, 0xe3, 0x8f, 0xe3, 0x8f, 0xe3},
			n:    []int{64},
			want: []uint64{0x8fe38fe38fe38fe3},
			pos:  64,
		},
		{
			in:   []byte{0x8f, 0xe3},
			n:    []int{1, 0, 1},
			want: []uint64{1, 0, 0},
			pos:  2,
		},
	}

	for i, test := range tests {
		c := NewCursor(test.in)
		for j, n := range test.n {
			got, err := c.ReadBits(n)
			if err != nil {
				t.Fatalf("unexpected error: %v for test: %d read: %d", err, i, j)
			}
			if got != test.want[j] {
				t.Errorf("unexpected result for test: %d read: %d\nGot: %#x\nWant: %#x\n", i, j, got, test.want[j])
			}
		}
		if c.Pos() != test.pos {
			t.Errorf("unexpected position for test: %d\nGot: %d\nWant: %d\n", i, c.Pos(), test.pos)
		}
	}
}

func TestReadZeroBits(t *testing.T) {
	c := NewCursor([]byte{0xff})
	if _, err := c.ReadBits(3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := c.ReadBits(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("did not get expected value, got: %d, want: 0", got)
	}
	if c.Pos() != 3 {
		t.Errorf("cursor moved on zero width read, got: %d, want: 3", c.Pos())
	}

	// A zero width read at the very end of the buffer is still fine.
	if _, err := c.ReadBits(5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.ReadBits(0); err != nil {
		t.Errorf("unexpected error for zero width read at end: %v", err)
	}
}

func TestReadBitsOutOfBounds(t *testing.T) {
	tests := []struct {
		in  []byte
		pre int // Bits read successfully before the failing read.
		n   int
	}{
		{in: nil, pre: 0, n: 1},
		{in: []byte{0xaa}, pre: 0, n: 9},
		{in: []byte{0xaa, 0xbb}, pre: 10, n: 7},
		{in: []byte{0xaa, 0xbb}, pre: 16, n: 1},
	}

	for i, test := range tests {
		c := NewCursor(test.in)
		if _, err := c.ReadBits(test.pre); err != nil {
			t.Fatalf("unexpected error on pre read for test %d: %v", i, err)
		}
		_, err := c.ReadBits(test.n)
		if errors.Cause(err) != ErrOutOfBounds {
			t.Errorf("did not get expected error for test %d, got: %v, want: %v", i, err, ErrOutOfBounds)
		}
		if c.Pos() != uint64(test.pre) {
			t.Errorf("cursor moved on failed read for test %d, got: %d, want: %d", i, c.Pos(), test.pre)
		}
		if c.Pos() > c.Len() {
			t.Errorf("cursor past end of buffer for test %d", i)
		}
	}
}

func TestReadBitsInvalidWidth(t *testing.T) {
	c := NewCursor(make([]byte, 16))
	for _, n := range []int{-1, 65} {
		_, err := c.ReadBits(n)
		if errors.Cause(err) != ErrInvalidWidth {
			t.Errorf("did not get expected error for width %d, got: %v", n, err)
		}
	}
}

func TestByteAligned(t *testing.T) {
	c := NewCursor([]byte{0x00, 0x00})
	if !c.ByteAligned() {
		t.Fatal("expected new cursor to be byte aligned")
	}
	c.ReadBits(3)
	if c.ByteAligned() {
		t.Error("did not expect cursor to be byte aligned after 3 bits")
	}
	c.ReadBits(5)
	if !c.ByteAligned() {
		t.Error("expected cursor to be byte aligned after 8 bits")
	}
	if c.Remaining() != 8 {
		t.Errorf("unexpected remaining bits, got: %d, want: 8", c.Remaining())
	}
}
