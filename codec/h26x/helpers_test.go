/*
DESCRIPTION
  helpers_test.go provides helpers for building SPS bitstreams in tests.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h26x

import (
	"errors"
	mbits "math/bits"
)

// binToSlice is a helper function to convert a string of binary into a
// corresponding byte slice, e.g. "0100 0001 1000 1100" => {0x41,0x8c}.
// Spaces in the string are ignored.
func binToSlice(s string) ([]byte, error) {
	var (
		a     byte = 0x80
		cur   byte
		bytes []byte
	)

	for i, c := range s {
		switch c {
		case ' ':
			continue
		case '1':
			cur |= a
		case '0':
		default:
			return nil, errors.New("invalid binary string")
		}

		a >>= 1
		if a == 0 || i == (len(s)-1) {
			bytes = append(bytes, cur)
			cur = 0
			a = 0x80
		}
	}
	return bytes, nil
}

// bitWriter writes fields most-significant bit first, the inverse of
// bits.Cursor.
type bitWriter struct {
	buf []byte
	n   int // Bits written.
}

func (w *bitWriter) writeBits(v uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		if w.n%8 == 0 {
			w.buf = append(w.buf, 0)
		}
		if (v>>uint(i))&1 == 1 {
			w.buf[len(w.buf)-1] |= 0x80 >> uint(w.n%8)
		}
		w.n++
	}
}

func (w *bitWriter) writeFlag(b bool) {
	if b {
		w.writeBits(1, 1)
		return
	}
	w.writeBits(0, 1)
}

// writeUe writes v as ue(v), the canonical Exp-Golomb code.
func (w *bitWriter) writeUe(v uint64) {
	l := mbits.Len64(v + 1)
	w.writeBits(0, l-1)
	w.writeBits(v+1, l)
}

// writeSe writes v as se(v).
func (w *bitWriter) writeSe(v int64) {
	if v > 0 {
		w.writeUe(uint64(2*v - 1))
		return
	}
	w.writeUe(uint64(-2 * v))
}

// nal writes the rbsp_stop_one_bit and returns the byte aligned result with
// emulation prevention bytes inserted.
func (w *bitWriter) nal() []byte {
	w.writeBits(1, 1)
	return escape(w.buf)
}

// escape inserts an emulation_prevention_three_byte wherever two zero bytes
// are followed by a byte no greater than 0x03.
func escape(rbsp []byte) []byte {
	var (
		out   []byte
		zeros int
	)
	for _, b := range rbsp {
		if zeros >= 2 && b <= 0x03 {
			out = append(out, 0x03)
			zeros = 0
		}
		out = append(out, b)
		if b == 0x00 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return out
}

// h264Params gives the SPS fields written by h264SPSBytes.
type h264Params struct {
	nalType         uint64 // Defaults to 7.
	profile         uint64
	chromaFormatIDC uint64 // Only written for high profiles.
	scalingMatrix   bool
	pocType         uint64
	pocCycle        []int64
	widthMBSMinus1  uint64
	heightMUSMinus1 uint64
	frameMBSOnly    bool
	crop            []uint64 // Left, right, top and bottom if not nil.
	vui             *vuiParams
}

// vuiParams gives the VUI fields written by h264SPSBytes.
type vuiParams struct {
	aspectRatioIDC uint64 // Not present if 0.
	overscan       bool
	videoSignal    bool
	colourDesc     bool
	chromaLoc      bool
	timing         bool
	numUnitsInTick uint64
	timeScale      uint64
	fixedFrameRate bool
}

// h264SPSBytes returns an H.264 SPS NAL unit, header included, for p.
func h264SPSBytes(p h264Params) []byte {
	var w bitWriter
	typ := p.nalType
	if typ == 0 {
		typ = H264TypeSPS
	}
	w.writeBits(0, 1)   // forbidden_zero_bit
	w.writeBits(3, 2)   // nal_ref_idc
	w.writeBits(typ, 5) // nal_unit_type
	w.writeBits(p.profile, 8)
	w.writeBits(0, 8)  // Constraint flags and reserved bits.
	w.writeBits(40, 8) // level_idc
	w.writeUe(0)       // seq_parameter_set_id

	if highProfiles[p.profile] {
		w.writeUe(p.chromaFormatIDC)
		if p.chromaFormatIDC == chroma444 {
			w.writeFlag(false)
		}
		w.writeUe(0)
		w.writeUe(0)
		w.writeFlag(false)
		w.writeFlag(p.scalingMatrix)
		if p.scalingMatrix {
			w.writeBits(0xa5, 8)
		}
	}

	w.writeUe(0) // log2_max_frame_num_minus4
	w.writeUe(p.pocType)
	switch p.pocType {
	case 0:
		w.writeUe(2)
	case 1:
		w.writeFlag(false)
		w.writeSe(-3)
		w.writeSe(7)
		w.writeUe(uint64(len(p.pocCycle)))
		for _, v := range p.pocCycle {
			w.writeSe(v)
		}
	}

	w.writeUe(4)       // max_num_ref_frames
	w.writeFlag(false) // gaps_in_frame_num_value_allowed_flag
	w.writeUe(p.widthMBSMinus1)
	w.writeUe(p.heightMUSMinus1)
	w.writeFlag(p.frameMBSOnly)
	if !p.frameMBSOnly {
		w.writeFlag(true)
	}
	w.writeFlag(true) // direct_8x8_inference_flag

	w.writeFlag(p.crop != nil)
	for _, v := range p.crop {
		w.writeUe(v)
	}

	w.writeFlag(p.vui != nil)
	if v := p.vui; v != nil {
		w.writeFlag(v.aspectRatioIDC != 0)
		if v.aspectRatioIDC != 0 {
			w.writeBits(v.aspectRatioIDC, 8)
			if v.aspectRatioIDC == extendedSAR {
				w.writeBits(4, 16)
				w.writeBits(3, 16)
			}
		}
		w.writeFlag(v.overscan)
		if v.overscan {
			w.writeFlag(true)
		}
		w.writeFlag(v.videoSignal)
		if v.videoSignal {
			w.writeBits(5, 3)
			w.writeFlag(false)
			w.writeFlag(v.colourDesc)
			if v.colourDesc {
				w.writeBits(1, 8)
				w.writeBits(1, 8)
				w.writeBits(1, 8)
			}
		}
		w.writeFlag(v.chromaLoc)
		if v.chromaLoc {
			w.writeUe(1)
			w.writeUe(2)
		}
		w.writeFlag(v.timing)
		if v.timing {
			w.writeBits(v.numUnitsInTick, 32)
			w.writeBits(v.timeScale, 32)
			w.writeFlag(v.fixedFrameRate)
		}
		w.writeFlag(false) // nal_hrd_parameters_present_flag
		w.writeFlag(false) // vcl_hrd_parameters_present_flag
		w.writeFlag(false) // pic_struct_present_flag
		w.writeFlag(false) // bitstream_restriction_flag
	}
	return w.nal()
}

// h265Params gives the SPS fields written by h265SPSBytes.
type h265Params struct {
	nalType            uint64 // Defaults to 33.
	maxSubLayersMinus1 uint64
	noNesting          bool
	profileIDC         uint64
	compat             uint64 // general_profile_compatibility_flags.
	chromaFormatIDC    uint64
	width, height      uint64
	confWin            []uint64 // Left, right, top and bottom if not nil.
}

// h265SPSBytes returns an H.265 SPS NAL unit, header included, for p.
func h265SPSBytes(p h265Params) []byte {
	var w bitWriter
	typ := p.nalType
	if typ == 0 {
		typ = H265TypeSPS
	}
	w.writeBits(0, 1)   // forbidden_zero_bit
	w.writeBits(typ, 6) // nal_unit_type
	w.writeBits(0, 6)   // nuh_layer_id
	w.writeBits(1, 3)   // nuh_temporal_id_plus1

	w.writeBits(0, 4) // sps_video_parameter_set_id
	w.writeBits(p.maxSubLayersMinus1, 3)
	w.writeFlag(!p.noNesting)

	if !p.noNesting {
		w.writeBits(0, 2) // general_profile_space
		w.writeFlag(false)
		w.writeBits(p.profileIDC, 5)
		w.writeBits(p.compat, 32)
		w.writeBits(0x9, 4) // Progressive and frame only.

		// Every constraint and reserved field shape is 43 bits long.
		w.writeBits(1<<43-1, 43)
		w.writeFlag(false)  // general_inbld_flag
		w.writeBits(120, 8) // general_level_idc
	}

	w.writeUe(0) // sps_seq_parameter_set_id
	w.writeUe(p.chromaFormatIDC)
	if p.chromaFormatIDC == chroma444 {
		w.writeFlag(false)
	}
	w.writeUe(p.width)
	w.writeUe(p.height)
	w.writeFlag(p.confWin != nil)
	for _, v := range p.confWin {
		w.writeUe(v)
	}
	return w.nal()
}
