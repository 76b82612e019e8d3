/*
DESCRIPTION
  h264.go provides a walk of the H.264 sequence parameter set syntax, section
  7.3.2.1.1 and annex E.1.1 of ITU-T H.264, recovering the cropped picture
  size and frame rate.

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

// Chroma formats given by chroma_format_idc.
const (
	chromaMonochrome = 0
	chroma420        = 1
	chroma422        = 2
	chroma444        = 3
)

// extendedSAR is the aspect_ratio_idc that signals an explicit sar_width and
// sar_height.
const extendedSAR = 255

// Profiles for which chroma format, bit depth and scaling matrix fields are
// present in the SPS.
var highProfiles = map[uint64]bool{
	100: true, 110: true, 122: true, 244: true, 44: true, 83: true, 86: true,
	118: true, 128: true, 144: true, 138: true, 139: true, 134: true, 135: true,
}

// h264SPS holds the SPS fields needed for geometry and frame rate.
type h264SPS struct {
	profile                   uint64
	chromaFormatIDC           uint64
	picWidthInMBSMinus1       uint64
	picHeightInMapUnitsMinus1 uint64
	frameMBSOnly              bool
	cropLeft, cropRight       uint64
	cropTop, cropBottom       uint64
	fps                       uint64
}

// DecodeH264SPS decodes the H.264 SPS NAL unit in buf, returning the cropped
// picture width and height and, if the VUI carries timing info, the frame
// rate. buf must begin with the NAL header byte. buf is normalised in place,
// so its contents are not meaningful after the call.
func DecodeH264SPS(buf []byte) (Result, error) {
	n := Normalize(buf)
	sps, err := parseH264SPS(bits.NewCursor(buf[:n]))
	if err != nil {
		return Result{}, err
	}

	// Crop units from table 6-1 and equations 7-19 to 7-22.
	fieldFactor := uint64(2)
	if sps.frameMBSOnly {
		fieldFactor = 1
	}
	cropUnitX, cropUnitY := uint64(1), fieldFactor
	switch sps.chromaFormatIDC {
	case chroma420:
		cropUnitX, cropUnitY = 2, 2*fieldFactor
	case chroma422:
		cropUnitX, cropUnitY = 2, fieldFactor
	}

	const mbSize = 16
	if sps.picWidthInMBSMinus1 >= maxCodedSize/mbSize || sps.picHeightInMapUnitsMinus1 >= maxCodedSize/mbSize {
		return Result{}, errors.Wrapf(ErrInvalidGeometry, "picture of %dx%d macroblocks", sps.picWidthInMBSMinus1+1, sps.picHeightInMapUnitsMinus1+1)
	}
	codedWidth := (sps.picWidthInMBSMinus1 + 1) * mbSize
	codedHeight := fieldFactor * (sps.picHeightInMapUnitsMinus1 + 1) * mbSize

	w, err := cropped(codedWidth, cropUnitX, sps.cropLeft, sps.cropRight, "width")
	if err != nil {
		return Result{}, err
	}
	h, err := cropped(codedHeight, cropUnitY, sps.cropTop, sps.cropBottom, "height")
	if err != nil {
		return Result{}, err
	}
	return Result{Width: w, Height: h, FPS: uint(sps.fps), Codec: H264}, nil
}

// parseH264SPS reads the NAL header and SPS fields up to and including the
// VUI timing info from c.
func parseH264SPS(c *bits.Cursor) (*h264SPS, error) {
	r := newFieldReader(c)

	r.readBits(1) // forbidden_zero_bit
	r.readBits(2) // nal_ref_idc
	typ := r.readBits(5)
	if r.e != nil {
		return nil, errors.Wrap(r.err(), "could not read NAL header")
	}
	if typ != H264TypeSPS {
		return nil, errors.Wrapf(ErrNotSPS, "nal_unit_type %d", typ)
	}

	sps := &h264SPS{chromaFormatIDC: chroma420}
	sps.profile = r.readBits(8)
	r.readBits(4) // constraint_set0_flag to constraint_set3_flag.
	r.readBits(4) // constraint_set4_flag, constraint_set5_flag and reserved_zero_2bits.
	r.readBits(8) // level_idc
	r.readUe()    // seq_parameter_set_id

	if highProfiles[sps.profile] {
		sps.chromaFormatIDC = r.readUe()
		if sps.chromaFormatIDC == chroma444 {
			r.readFlag() // separate_colour_plane_flag
		}
		r.readUe()   // bit_depth_luma_minus8
		r.readUe()   // bit_depth_chroma_minus8
		r.readFlag() // qpprime_y_zero_transform_bypass_flag

		// Scaling list contents are not parsed, only the eight presence flags.
		if r.readFlag() { // seq_scaling_matrix_present_flag
			for i := 0; i < 8; i++ {
				r.readFlag() // seq_scaling_list_present_flag[i]
			}
		}
	}

	r.readUe() // log2_max_frame_num_minus4

	switch r.readUe() { // pic_order_cnt_type
	case 0:
		r.readUe() // log2_max_pic_order_cnt_lsb_minus4
	case 1:
		r.readFlag() // delta_pic_order_always_zero_flag
		r.readSe()   // offset_for_non_ref_pic
		r.readSe()   // offset_for_top_to_bottom_field
		n := r.readUe()
		for i := uint64(0); i < n && r.e == nil; i++ {
			r.readSe() // offset_for_ref_frame[i]
		}
	}

	r.readUe()   // max_num_ref_frames
	r.readFlag() // gaps_in_frame_num_value_allowed_flag
	sps.picWidthInMBSMinus1 = r.readUe()
	sps.picHeightInMapUnitsMinus1 = r.readUe()
	sps.frameMBSOnly = r.readFlag()
	if !sps.frameMBSOnly {
		r.readFlag() // mb_adaptive_frame_field_flag
	}
	r.readFlag() // direct_8x8_inference_flag

	if r.readFlag() { // frame_cropping_flag
		sps.cropLeft = r.readUe()
		sps.cropRight = r.readUe()
		sps.cropTop = r.readUe()
		sps.cropBottom = r.readUe()
	}

	if r.readFlag() { // vui_parameters_present_flag
		err := readVUITiming(r, sps)
		if err != nil {
			return nil, err
		}
	}

	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not parse SPS")
	}
	return sps, nil
}

// readVUITiming reads the vui_parameters() syntax structure of annex E.1.1 up
// to the timing info and sets the frame rate of sps. The HRD and bitstream
// restriction fields that follow are not read.
func readVUITiming(r *fieldReader, sps *h264SPS) error {
	if r.readFlag() { // aspect_ratio_info_present_flag
		if r.readBits(8) == extendedSAR { // aspect_ratio_idc
			r.readBits(16) // sar_width
			r.readBits(16) // sar_height
		}
	}

	if r.readFlag() { // overscan_info_present_flag
		r.readFlag() // overscan_appropriate_flag
	}

	if r.readFlag() { // video_signal_type_present_flag
		r.readBits(3)     // video_format
		r.readFlag()      // video_full_range_flag
		if r.readFlag() { // colour_description_present_flag
			r.readBits(8) // colour_primaries
			r.readBits(8) // transfer_characteristics
			r.readBits(8) // matrix_coefficients
		}
	}

	if r.readFlag() { // chroma_loc_info_present_flag
		r.readUe() // chroma_sample_loc_type_top_field
		r.readUe() // chroma_sample_loc_type_bottom_field
	}

	if !r.readFlag() { // timing_info_present_flag
		return nil
	}
	numUnitsInTick := r.readBits(32)
	timeScale := r.readBits(32)
	if r.e != nil {
		return errors.Wrap(r.err(), "could not read VUI timing info")
	}
	if numUnitsInTick == 0 {
		return ErrInvalidTiming
	}
	sps.fps = timeScale / numUnitsInTick
	if r.readFlag() { // fixed_frame_rate_flag
		sps.fps /= 2
	}
	return nil
}
