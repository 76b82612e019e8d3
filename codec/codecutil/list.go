/*
NAME
  list.go

DESCRIPTION
  list.go lists the codec and container names understood by spsprobe.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package codecutil provides codec names and byte stream utilities shared by
// the codec packages.
package codecutil

import "strings"

// All available codecs for reference in any application.
// When adding or removing a codec from this list, the IsValid function below must be updated.
const (
	H264 = "h264" // h264 bytestream (requires lexing).
	H265 = "h265" // h265 bytestream (requires lexing).
)

// Containers an elementary stream may be carried in.
const (
	Raw  = "raw" // Annex B elementary stream, no container.
	MPEG = "ts"  // MPEG transport stream.
)

// IsValid checks if a string is a known and valid codec in the right format.
func IsValid(s string) bool {
	switch s {
	case H264, H265:
		return true
	default:
		return false
	}
}

// IsValidContainer checks if a string is a known container name.
func IsValidContainer(s string) bool {
	switch s {
	case Raw, MPEG:
		return true
	default:
		return false
	}
}

// FromExt returns the codec and container implied by a file extension such as
// ".h264" or ".ts". ok is false for unrecognised extensions. The codec for a
// transport stream is not implied and is returned empty.
func FromExt(ext string) (codec, container string, ok bool) {
	switch strings.ToLower(ext) {
	case ".h264", ".264", ".avc":
		return H264, Raw, true
	case ".h265", ".265", ".hevc":
		return H265, Raw, true
	case ".ts":
		return "", MPEG, true
	default:
		return "", "", false
	}
}
