/*
DESCRIPTIONS
  helpers.go provides stream type and stream ID helpers for video carried in
  MPEG-TS.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pes

import (
	"errors"

	"github.com/ausocean/spsprobe/codec/codecutil"
)

// Stream types as per ITU-T Rec. H.222.0 / ISO/IEC 13818-1 [1], table 2-34.
const (
	H264StreamType = 0x1b
	H265StreamType = 0x24
)

// Stream IDs as per ITU-T Rec. H.222.0 table 2-22. Video streams use
// 0xe0 to 0xef.
const (
	VideoStreamID    = 0xe0
	MaxVideoStreamID = 0xef
)

// ErrUnknownStreamType is returned for stream types other than H.264 and
// H.265 video.
var ErrUnknownStreamType = errors.New("unknown stream type")

// StreamTypeToCodec will return the corresponding codecutil codec name for the
// passed stream type.
func StreamTypeToCodec(st int) (string, error) {
	switch st {
	case H264StreamType:
		return codecutil.H264, nil
	case H265StreamType:
		return codecutil.H265, nil
	default:
		return "", ErrUnknownStreamType
	}
}

// CodecToStreamType returns the stream type used to carry the named codec.
func CodecToStreamType(codec string) (byte, error) {
	switch codec {
	case codecutil.H264:
		return H264StreamType, nil
	case codecutil.H265:
		return H265StreamType, nil
	default:
		return 0, ErrUnknownStreamType
	}
}

// IsVideoStreamID reports whether id is a video stream_id.
func IsVideoStreamID(id uint8) bool {
	return id >= VideoStreamID && id <= MaxVideoStreamID
}
