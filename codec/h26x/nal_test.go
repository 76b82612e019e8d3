/*
DESCRIPTION
  nal_test.go provides testing for start code scanning in nal.go.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h26x

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func TestNALType(t *testing.T) {
	tests := []struct {
		b     byte
		codec Codec
		want  int
	}{
		{b: 0x67, codec: H264, want: H264TypeSPS},
		{b: 0x27, codec: H264, want: H264TypeSPS},
		{b: 0x65, codec: H264, want: H264TypeIDR},
		{b: 0x41, codec: H264, want: H264TypeNonIDR},
		{b: 0x42, codec: H265, want: H265TypeSPS},
		{b: 0x40, codec: H265, want: H265TypeVPS},
		{b: 0x26, codec: H265, want: H265TypeIDRWRADL},
		{b: 0x67, codec: H265, want: 51},
	}

	for i, test := range tests {
		got := NALType(test.b, test.codec)
		if got != test.want {
			t.Errorf("unexpected type for test %d, got: %d, want: %d", i, got, test.want)
		}
	}
}

func TestSPSType(t *testing.T) {
	tests := []struct {
		codec Codec
		want  int
	}{
		{codec: H264, want: 7},
		{codec: H265, want: 33},
	}

	for _, test := range tests {
		got := SPSType(test.codec)
		if got != test.want {
			t.Errorf("unexpected SPS type for %v, got: %d, want: %d", test.codec, got, test.want)
		}
		if NALType(map[Codec]byte{H264: 0x67, H265: 0x42}[test.codec], test.codec) != got {
			t.Errorf("SPS header byte for %v does not give type %d", test.codec, got)
		}
	}
}

func TestFindNAL(t *testing.T) {
	tests := []struct {
		name  string
		in    []byte
		codec Codec
		want  NALUnit
		err   error
	}{
		{
			name: "h264 after access unit delimiter",
			in: []byte{
				0x00, 0x00, 0x00, 0x01, 0x09, 0xf0,
				0x00, 0x00, 0x00, 0x01, 0x67, 0x42, 0x00, 0x1e, 0xf4, 0x0a, 0x0f, 0xc8,
				0x00, 0x00, 0x00, 0x01, 0x68, 0xce, 0x38, 0x80,
			},
			codec: H264,
			want:  NALUnit{Type: H264TypeSPS, Start: 10, End: 18},
		},
		{
			name: "h264 leading garbage",
			in: []byte{
				0xde, 0xad, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x01, 0x67, 0x42,
				0x00, 0x00, 0x00, 0x01, 0x65,
			},
			codec: H264,
			want:  NALUnit{Type: H264TypeSPS, Start: 8, End: 10},
		},
		{
			name: "h265 after vps",
			in: []byte{
				0x00, 0x00, 0x00, 0x01, 0x40, 0x01, 0x0c, 0x01,
				0x00, 0x00, 0x00, 0x01, 0x42, 0x01, 0x01, 0x01, 0x60,
				0x00, 0x00, 0x00, 0x01, 0x44, 0x01,
			},
			codec: H265,
			want:  NALUnit{Type: H265TypeSPS, Start: 12, End: 17},
		},
		{
			name: "incomplete",
			in: []byte{
				0x00, 0x00, 0x00, 0x01, 0x67, 0x42, 0x00, 0x1e, 0xf4, 0x0a,
			},
			codec: H264,
			err:   ErrNotFound,
		},
		{
			name: "no sps",
			in: []byte{
				0x00, 0x00, 0x00, 0x01, 0x68, 0xce,
				0x00, 0x00, 0x00, 0x01, 0x65, 0x88,
			},
			codec: H264,
			err:   ErrNotFound,
		},
		{
			name: "three byte start codes",
			in: []byte{
				0x00, 0x00, 0x01, 0x67, 0x42, 0x00, 0x1e,
				0x00, 0x00, 0x01, 0x68, 0xce,
			},
			codec: H264,
			err:   ErrNotFound,
		},
		{
			name:  "start code at end",
			in:    []byte{0x00, 0x00, 0x00, 0x01},
			codec: H264,
			err:   ErrNotFound,
		},
		{
			name: "wrong codec",
			in: []byte{
				0x00, 0x00, 0x00, 0x01, 0x67, 0x42,
				0x00, 0x00, 0x00, 0x01, 0x68, 0xce,
			},
			codec: H265,
			err:   ErrNotFound,
		},
		{
			name:  "unknown codec",
			in:    []byte{0x00, 0x00, 0x00, 0x01, 0x67, 0x00, 0x00, 0x00, 0x01},
			codec: Codec(0),
			err:   ErrUnknownCodec,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := FindNAL(test.in, test.codec)
			if !errors.Is(err, test.err) {
				t.Fatalf("did not get expected error, got: %v, want: %v", err, test.err)
			}
			if !cmp.Equal(got, test.want) {
				t.Errorf("unexpected NAL unit (-got +want):\n%s", cmp.Diff(got, test.want))
			}
		})
	}
}

func TestNALUnitBytes(t *testing.T) {
	in := []byte{0x00, 0x00, 0x00, 0x01, 0x67, 0x42, 0x00, 0x00, 0x00, 0x01, 0x68}
	n, err := FindNAL(in, H264)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cmp.Equal(n.Bytes(in), []byte{0x67, 0x42}) {
		t.Errorf("unexpected bytes, got: %x, want: 6742", n.Bytes(in))
	}
	if n.Len() != 2 {
		t.Errorf("unexpected length, got: %d, want: 2", n.Len())
	}
}
