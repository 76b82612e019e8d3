/*
NAME
  pes.go

DESCRIPTION
  pes.go provides encoding of packetized elementary stream (PES) packets.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pes provides encoding of PES packets and the stream identifiers
// used to carry H.264 and H.265 in MPEG-TS.
package pes

import "github.com/Comcast/gots/v2"

// HeaderLength is the fixed length of the PES header fields before the
// optional fields, i.e. up to and including PES_header_data_length.
const HeaderLength = 9

// Values for the PTS DTS indicator.
const (
	NoPTS  = 0x0
	HasPTS = 0x2
)

// Packet holds the fields of a PES packet. Only the PTS of the optional
// fields is supported.
type Packet struct {
	StreamID     byte   // Type of stream
	Length       uint16 // Pes packet length in bytes after this field
	SC           byte   // Scrambling control
	Priority     bool   // Priority Indicator
	DAI          bool   // Data alginment indicator
	Copyright    bool   // Copyright indicator
	Original     bool   // Original data indicator
	PDI          byte   // PTS DTS indicator
	HeaderLength byte   // Pes header length
	PTS          uint64 // Presentation time stamp
	Stuff        []byte // Stuffing bytes
	Data         []byte // Pes packet data
}

// Bytes appends the encoding of p to buf[:0] and returns the result.
func (p *Packet) Bytes(buf []byte) []byte {
	buf = append(buf[:0],
		0x00, 0x00, 0x01,
		p.StreamID,
		byte((p.Length&0xFF00)>>8),
		byte(p.Length&0x00FF),
		(0x2<<6 | p.SC<<4 | boolByte(p.Priority)<<3 | boolByte(p.DAI)<<2 |
			boolByte(p.Copyright)<<1 | boolByte(p.Original)),
		p.PDI<<6,
		p.HeaderLength,
	)
	if p.PDI == HasPTS {
		ptsIdx := len(buf)
		buf = append(buf, make([]byte, 5)...)
		gots.InsertPTS(buf[ptsIdx:], p.PTS)
	}
	buf = append(buf, p.Stuff...)
	buf = append(buf, p.Data...)
	return buf
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
