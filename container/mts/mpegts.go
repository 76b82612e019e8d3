/*
NAME
  mpegts.go

DESCRIPTION
  mpegts.go provides MPEG-TS packet encoding and functions for finding
  packets and program specific information in MPEG-TS clips.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mts provides MPEG-TS (mts) encoding and recovery of the H.264 or
// H.265 elementary stream carried in an MPEG-TS clip.
package mts

import (
	"fmt"

	"github.com/Comcast/gots/v2/packet"
	gotspsi "github.com/Comcast/gots/v2/psi"
	"github.com/pkg/errors"

	"github.com/ausocean/spsprobe/container/mts/pes"
)

const PacketSize = 188

// Standard program IDs for program specific information MPEG-TS packets.
const (
	PatPid = 0
	PmtPid = 4096
)

// HeadSize is the size of an MPEG-TS packet header.
const HeadSize = 4

// Adaptation field control values.
const (
	hasPayload         = 0x1
	hasAdaptationField = 0x2
)

/*
Packet encapsulates the fields of an MPEG-TS packet used by the Encoder.
Below is the formatting of the start of an MPEG-TS packet for reference.

============================================================================
| octet no | bit 0 | bit 1 | bit 2 | bit 3 | bit 4 | bit 5 | bit 6 | bit 7 |
============================================================================
| octet 0  | sync byte (0x47)                                              |
----------------------------------------------------------------------------
| octet 1  | TEI   | PUSI  | Prior | PID                                   |
----------------------------------------------------------------------------
| octet 2  | PID cont.                                                     |
----------------------------------------------------------------------------
| octet 3  | TSC           | AFC           | CC                            |
----------------------------------------------------------------------------
| octet 4  | AFL                                                           |
----------------------------------------------------------------------------
| octet 5  | DI    | RAI   | ESPI  | PCRF  | OPCRF | SPF   | TPDF  | AFEF  |
----------------------------------------------------------------------------
| optional | PCR (48 bits => 6 bytes)                                      |
----------------------------------------------------------------------------
| optional | Stuffing (variable length)                                    |
----------------------------------------------------------------------------
| optional | Payload (variable length)                                     |
----------------------------------------------------------------------------
*/
type Packet struct {
	PUSI    bool   // Payload Unit Start Indicator
	PID     uint16 // Packet identifier
	AFC     byte   // Adaption Field Control
	CC      byte   // Continuity Counter
	RAI     bool   // random access indicator
	PCRF    bool   // PCR flag
	PCR     uint64 // Program clock reference
	Payload []byte // Mpeg ts Payload
}

// FillPayload copies as much of data into the packet's Payload as will fit
// alongside the adaptation field, returning the number of bytes copied.
func (p *Packet) FillPayload(data []byte) int {
	currentPktLen := 6 + asInt(p.PCRF)*6
	if len(data) > PacketSize-currentPktLen {
		p.Payload = make([]byte, PacketSize-currentPktLen)
	} else {
		p.Payload = make([]byte, len(data))
	}
	return copy(p.Payload, data)
}

// Bytes interprets the fields of the ts packet instance and outputs a
// corresponding byte slice
func (p *Packet) Bytes(buf []byte) []byte {
	if buf == nil || cap(buf) < PacketSize {
		buf = make([]byte, PacketSize)
	}

	buf = buf[:6]
	buf[0] = 0x47
	buf[1] = asByte(p.PUSI)<<6 | byte((p.PID&0x1f00)>>8)
	buf[2] = byte(p.PID & 0x00FF)
	buf[3] = p.AFC<<4 | p.CC

	var maxPayloadSize int
	if p.AFC&hasAdaptationField != 0 {
		maxPayloadSize = PacketSize - 6 - asInt(p.PCRF)*6
	} else {
		maxPayloadSize = PacketSize - HeadSize
	}

	stuffingLen := maxPayloadSize - len(p.Payload)
	if p.AFC&hasAdaptationField != 0 {
		buf[4] = byte(1 + stuffingLen + asInt(p.PCRF)*6)
		buf[5] = asByte(p.RAI)<<6 | asByte(p.PCRF)<<4
	} else {
		buf = buf[:HeadSize]
	}

	for i := 40; p.PCRF && i >= 0; i -= 8 {
		buf = append(buf, byte((p.PCR<<15)>>uint(i)))
	}

	for i := 0; i < stuffingLen; i++ {
		buf = append(buf, 0xff)
	}
	curLen := len(buf)
	buf = buf[:PacketSize]
	copy(buf[curLen:], p.Payload)
	return buf
}

func asInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func asByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// Errors used by FindPid and VideoStream.
var (
	ErrInvalidLen       = errors.New("MPEG-TS data not of valid length")
	ErrNoPrograms       = errors.New("no programs in PAT")
	ErrMultiplePrograms = errors.New("more than one program not supported")
	ErrNoVideo          = errors.New("no H.264 or H.265 video stream")
)

// FindPid will take a clip of MPEG-TS and try to find a packet with given PID - if one
// is found, then it is returned along with its index, otherwise nil, -1 and an error is returned.
func FindPid(d []byte, pid uint16) (pkt []byte, i int, err error) {
	if len(d) < PacketSize {
		return nil, -1, ErrInvalidLen
	}
	for i = 0; i+PacketSize <= len(d); i += PacketSize {
		p := (uint16(d[i+1]&0x1f) << 8) | uint16(d[i+2])
		if p == pid {
			pkt = d[i : i+PacketSize]
			return
		}
	}
	return nil, -1, fmt.Errorf("could not find packet with PID %d", pid)
}

// PID returns the packet identifier for the given packet.
func PID(p []byte) (uint16, error) {
	if len(p) < PacketSize {
		return 0, errors.New("packet length less than 188")
	}
	return uint16(p[1]&0x1f)<<8 | uint16(p[2]), nil
}

// Programs returns a map of program numbers and corresponding PMT PIDs for a
// given MPEG-TS PAT packet.
func Programs(p []byte) (map[uint16]uint16, error) {
	pat, err := gotspsi.NewPAT(p)
	if err != nil {
		return nil, err
	}
	// Convert to map[uint16]uint16.
	m := make(map[uint16]uint16)
	for k, v := range pat.ProgramMap() {
		m[uint16(k)] = uint16(v)
	}
	return m, nil
}

// Streams returns elementary streams defined in a given MPEG-TS PMT packet.
func Streams(p []byte) ([]gotspsi.PmtElementaryStream, error) {
	var pkt packet.Packet
	copy(pkt[:], p)
	payload, err := packet.Payload(&pkt)
	if err != nil {
		return nil, errors.Wrap(err, "cannot get packet payload")
	}
	pmt, err := gotspsi.NewPMT(payload)
	if err != nil {
		return nil, err
	}
	return pmt.ElementaryStreams(), nil
}

// VideoStream uses the PAT and PMT of the MPEG-TS clip d to find the PID of
// its H.264 or H.265 video stream, returning the PID and the codecutil name
// of the codec. Only single program streams are supported.
func VideoStream(d []byte) (pid uint16, codec string, err error) {
	pkt, i, err := FindPid(d, PatPid)
	if err != nil {
		return 0, "", errors.Wrap(err, "error finding PAT")
	}

	progs, err := Programs(pkt)
	if err != nil {
		return 0, "", errors.Wrap(err, "cannot get programs from PAT")
	}
	if len(progs) == 0 {
		return 0, "", ErrNoPrograms
	}
	if len(progs) > 1 {
		return 0, "", ErrMultiplePrograms
	}

	var pmtPID uint16
	for _, v := range progs {
		pmtPID = v
	}
	pkt, _, err = FindPid(d[i+PacketSize:], pmtPID)
	if err != nil {
		return 0, "", errors.Wrap(err, "error finding PMT")
	}

	streams, err := Streams(pkt)
	if err != nil {
		return 0, "", errors.Wrap(err, "could not get streams from PMT")
	}
	for _, s := range streams {
		codec, err := pes.StreamTypeToCodec(int(s.StreamType()))
		if err != nil {
			continue
		}
		return uint16(s.ElementaryPid()), codec, nil
	}
	return 0, "", ErrNoVideo
}
