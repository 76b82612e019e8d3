/*
NAME
  payload.go

DESCRIPTION
  payload.go provides functionality for extracting the elementary stream
  carried by an MPEG-TS clip.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mts

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Comcast/gots/v2/packet"
	gotspes "github.com/Comcast/gots/v2/pes"

	"github.com/ausocean/spsprobe/container/mts/pes"
)

// nullPid is the PID of null packets.
const nullPid = 0x1fff

// Errors returned by ElementaryStream and FindVideoPID.
var (
	ErrClipSize = errors.New("MTS clip is not of valid size")
	ErrNoData   = errors.New("no PES data for PID")
	ErrNoPES    = errors.New("no video PES packets")
)

// pesPrefix is the packet_start_code_prefix that begins every PES packet.
var pesPrefix = []byte{0x00, 0x00, 0x01}

// ElementaryStream returns the concatenated PES packet data carried on pid in
// the MPEG-TS clip. The clip must contain only complete packets. Payloads on
// pid before the first payload unit start are skipped, as their PES header
// is not in the clip. The resultant data is a copy of the original.
func ElementaryStream(clip []byte, pid uint16) ([]byte, error) {
	l := len(clip)
	// Check that clip is divisible by 188, i.e. contains a series of full MPEG-TS packets.
	if l%PacketSize != 0 {
		return nil, ErrClipSize
	}

	var (
		es      = make([]byte, 0, l) // The data that will be returned.
		started bool                 // Indicates that we have received a PUSI.
		pkt     packet.Packet
	)
	for i := 0; i < l; i += PacketSize {
		// We will use comcast/gots Packet type, so copy in.
		copy(pkt[:], clip[i:i+PacketSize])
		if packet.Pid(&pkt) != int(pid) {
			continue
		}

		// Adaptation field only packets carry no payload.
		payload, err := packet.Payload(&pkt)
		if err != nil {
			continue
		}

		// If PUSI is true then we know it's the start of a new PES packet, and
		// we have a PES header in the MTS payload.
		if packet.PayloadUnitStartIndicator(&pkt) {
			h, err := gotspes.NewPESHeader(payload)
			if err != nil {
				return nil, fmt.Errorf("could not parse PES at packet %d: %w", i/PacketSize, err)
			}
			es = append(es, h.Data()...)
			started = true
			continue
		}

		// We're not at the start of the PES packet, so we don't have a PES
		// header. We can append the MPEG-TS data directly.
		if started {
			es = append(es, payload...)
		}
	}
	if len(es) == 0 {
		return nil, fmt.Errorf("%w %d", ErrNoData, pid)
	}
	return es, nil
}

// FindVideoPID returns the PID of the first payload unit start in clip whose
// PES stream_id is a video stream. It is used when a clip has no PSI.
func FindVideoPID(clip []byte) (uint16, error) {
	if len(clip) < PacketSize {
		return 0, ErrInvalidLen
	}

	var pkt packet.Packet
	for i := 0; i+PacketSize <= len(clip); i += PacketSize {
		copy(pkt[:], clip[i:i+PacketSize])
		pid := packet.Pid(&pkt)
		if pid == PatPid || pid == nullPid || !packet.PayloadUnitStartIndicator(&pkt) {
			continue
		}
		payload, err := packet.Payload(&pkt)
		if err != nil || !bytes.HasPrefix(payload, pesPrefix) {
			continue
		}
		h, err := gotspes.NewPESHeader(payload)
		if err != nil {
			continue
		}
		if pes.IsVideoStreamID(h.StreamId()) {
			return uint16(pid), nil
		}
	}
	return 0, ErrNoPES
}
