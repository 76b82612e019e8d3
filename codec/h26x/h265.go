/*
DESCRIPTION
  h265.go provides a walk of the H.265 sequence parameter set syntax, section
  7.3.2.2 of ITU-T H.265, recovering the picture size for single layer
  streams.

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

// h265SPS holds the SPS fields needed for geometry.
type h265SPS struct {
	maxSubLayersMinus1        uint64
	chromaFormatIDC           uint64
	picWidthInLumaSamples     uint64
	picHeightInLumaSamples    uint64
	confWinLeft, confWinRight uint64
	confWinTop, confWinBottom uint64
}

// DecodeH265SPS decodes the H.265 SPS NAL unit in buf, returning the picture
// width and height less the conformance window offsets. FPS is always zero.
// buf must begin with the first NAL header byte. buf is normalised in place,
// so its contents are not meaningful after the call.
//
// The conformance window offsets are subtracted as is, without the chroma
// subsampling scale (SubWidthC, SubHeightC) of equation 7-6.
// TODO: scale the offsets by SubWidthC and SubHeightC once callers have
// confirmed they want the display size rather than the current figures.
func DecodeH265SPS(buf []byte) (Result, error) {
	n := Normalize(buf)
	sps, err := parseH265SPS(bits.NewCursor(buf[:n]))
	if err != nil {
		return Result{}, err
	}

	w, err := cropped(sps.picWidthInLumaSamples, 1, sps.confWinLeft, sps.confWinRight, "width")
	if err != nil {
		return Result{}, err
	}
	h, err := cropped(sps.picHeightInLumaSamples, 1, sps.confWinTop, sps.confWinBottom, "height")
	if err != nil {
		return Result{}, err
	}
	return Result{Width: w, Height: h, Codec: H265}, nil
}

// parseH265SPS reads the NAL header and SPS fields up to and including the
// conformance window from c.
func parseH265SPS(c *bits.Cursor) (*h265SPS, error) {
	r := newFieldReader(c)

	r.readBits(1) // forbidden_zero_bit
	typ := r.readBits(6)
	if r.e != nil {
		return nil, errors.Wrap(r.err(), "could not read NAL header")
	}
	if typ != H265TypeSPS {
		return nil, errors.Wrapf(ErrNotSPS, "nal_unit_type %d", typ)
	}
	r.readBits(6) // nuh_layer_id
	r.readBits(3) // nuh_temporal_id_plus1

	sps := &h265SPS{}
	r.readBits(4) // sps_video_parameter_set_id
	sps.maxSubLayersMinus1 = r.readBits(3)
	nesting := r.readFlag() // sps_temporal_id_nesting_flag

	if nesting {
		readProfileTierLevel(r)
	}
	if r.e != nil {
		return nil, errors.Wrap(r.err(), "could not parse profile_tier_level")
	}
	if sps.maxSubLayersMinus1 > 0 {
		return nil, errors.Wrapf(ErrUnsupportedMultiLayer, "sps_max_sub_layers_minus1 %d", sps.maxSubLayersMinus1)
	}

	r.readUe() // sps_seq_parameter_set_id
	sps.chromaFormatIDC = r.readUe()
	if sps.chromaFormatIDC == chroma444 {
		r.readFlag() // separate_colour_plane_flag
	}
	sps.picWidthInLumaSamples = r.readUe()
	sps.picHeightInLumaSamples = r.readUe()

	if r.readFlag() { // conformance_window_flag
		sps.confWinLeft = r.readUe()
		sps.confWinRight = r.readUe()
		sps.confWinTop = r.readUe()
		sps.confWinBottom = r.readUe()
	}

	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not parse SPS")
	}
	return sps, nil
}

// readProfileTierLevel reads the general part of the profile_tier_level()
// syntax structure of section 7.3.3. Sub-layer profile and level arrays are
// not supported.
func readProfileTierLevel(r *fieldReader) {
	r.readBits(2) // general_profile_space
	r.readFlag()  // general_tier_flag
	idc := r.readBits(5)
	compat := r.readBits(32) // general_profile_compatibility_flag[0..31]

	// profile reports whether general_profile_idc or the compatibility flag for
	// any of the profiles ps is set.
	profile := func(ps ...uint64) bool {
		for _, p := range ps {
			if idc == p || compat&(1<<(31-p)) != 0 {
				return true
			}
		}
		return false
	}

	r.readFlag() // general_progressive_source_flag
	r.readFlag() // general_interlaced_source_flag
	r.readFlag() // general_non_packed_constraint_flag
	r.readFlag() // general_frame_only_constraint_flag

	switch {
	case profile(4, 5, 6, 7, 8, 9, 10):
		// general_max_12bit_constraint_flag through to
		// general_lower_bit_rate_constraint_flag.
		r.readBits(9)
		if profile(5, 9, 10) {
			r.readFlag()   // general_max_14bit_constraint_flag
			r.readBits(33) // general_reserved_zero_33bits
		} else {
			r.readBits(34) // general_reserved_zero_34bits
		}
	case profile(2):
		r.readBits(7)  // general_reserved_zero_7bits
		r.readFlag()   // general_one_picture_only_constraint_flag
		r.readBits(35) // general_reserved_zero_35bits
	default:
		r.readBits(43) // general_reserved_zero_43bits
	}

	r.readFlag()  // general_inbld_flag or general_reserved_zero_bit
	r.readBits(8) // general_level_idc
}
