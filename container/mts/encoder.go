/*
NAME
  encoder.go

DESCRIPTION
  encoder.go provides an MPEG-TS encoder that packetises an H.264 or H.265
  byte stream into a single program transport stream.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mts

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/spsprobe/codec/h26x"
	"github.com/ausocean/spsprobe/container/mts/pes"
	"github.com/ausocean/spsprobe/container/mts/psi"
)

// These constants are used to select between the different methods of when
// the PSI is sent.
const (
	psiMethodPacket = iota // PSI is inserted after a certain number of packets.
	psiMethodNAL           // PSI is inserted before each parameter set.
)

// PIDVideo is the program ID we assign to video.
const PIDVideo = 256

// Time-related constants.
const (
	// ptsOffset is the offset added to the clock to determine
	// the current presentation timestamp.
	ptsOffset = 700 * time.Millisecond

	// PCRFrequency is the base Program Clock Reference frequency in Hz.
	PCRFrequency = 90000

	// PTSFrequency is the presentation timestamp frequency in Hz.
	PTSFrequency = 90000
)

// Default encoder configuration parameters.
const (
	defaultRate      = 25 // FPS
	defaultPSIMethod = psiMethodNAL
	defaultMediaPID  = PIDVideo
)

var errNoStartCode = errors.New("data does not begin with a start code")

// Encoder encapsulates properties of an MPEG-TS generator.
type Encoder struct {
	dst io.Writer

	clock       time.Duration
	writePeriod time.Duration
	ptsOffset   time.Duration
	tsSpace     [PacketSize]byte
	pesSpace    []byte

	continuity map[uint16]byte

	psiMethod    int
	psiWritten   bool
	pktCount     int
	psiSendCount int
	mediaPID     uint16
	codec        h26x.Codec
	streamType   byte

	patBytes, pmtBytes []byte

	// log is a function that will be used through the encoder code for logging.
	log logging.Logger
}

// NewEncoder returns an Encoder writing to dst. By default the encoder
// packetises H.264 at 25 access units per second and writes PSI before each
// SPS (or H.265 VPS).
func NewEncoder(dst io.Writer, log logging.Logger, options ...func(*Encoder) error) (*Encoder, error) {
	e := &Encoder{
		dst:         dst,
		writePeriod: time.Duration(float64(time.Second) / defaultRate),
		ptsOffset:   ptsOffset,
		psiMethod:   defaultPSIMethod,
		mediaPID:    defaultMediaPID,
		codec:       h26x.H264,
		streamType:  pes.H264StreamType,
		log:         log,
	}

	for _, option := range options {
		err := option(e)
		if err != nil {
			return nil, fmt.Errorf("option failed with error: %w", err)
		}
	}
	log.Debug("encoder options applied", "codec", e.codec, "PID", e.mediaPID)

	e.continuity = map[uint16]byte{PatPid: 0, PmtPid: 0, e.mediaPID: 0}
	e.patBytes = psi.NewPATPSI(PmtPid).Bytes()
	e.pmtBytes = psi.NewPMTPSI(e.streamType, e.mediaPID).Bytes()
	return e, nil
}

// Write implements io.Writer. Write takes a chunk of Annex B byte stream,
// normally an access unit, and writes it as a single PES packet to the
// encoder's destination.
func (e *Encoder) Write(data []byte) (int, error) {
	e.log.Debug("writing data", "len(data)", len(data))
	switch e.psiMethod {
	case psiMethodPacket:
		e.log.Debug("checking packet no. conditions for PSI write", "count", e.pktCount, "PSI count", e.psiSendCount)
		if e.pktCount >= e.psiSendCount || !e.psiWritten {
			e.pktCount = 0
			err := e.writePSI()
			if err != nil {
				return 0, fmt.Errorf("could not write psi (psiMethodPacket): %w", err)
			}
		}
	case psiMethodNAL:
		nalType, err := firstNALType(data, e.codec)
		if err != nil {
			return 0, fmt.Errorf("could not get type from NAL unit, failed with error: %w", err)
		}
		e.log.Debug("checking conditions for PSI write", "NAL type", nalType)
		if isParameterSet(nalType, e.codec) || !e.psiWritten {
			err := e.writePSI()
			if err != nil {
				return 0, fmt.Errorf("could not write psi (psiMethodNAL): %w", err)
			}
		}
	default:
		panic("undefined PSI method")
	}

	// Prepare PES data.
	pts := e.pts()
	pesPkt := pes.Packet{
		StreamID:     pes.VideoStreamID,
		PDI:          pes.HasPTS,
		PTS:          pts,
		Data:         data,
		HeaderLength: 5,
	}
	e.pesSpace = pesPkt.Bytes(e.pesSpace)
	buf := e.pesSpace

	pusi := true
	for len(buf) != 0 {
		pkt := Packet{
			PUSI: pusi,
			PID:  e.mediaPID,
			RAI:  pusi,
			CC:   e.ccFor(e.mediaPID),
			AFC:  hasAdaptationField | hasPayload,
			PCRF: pusi,
		}
		n := pkt.FillPayload(buf)
		buf = buf[n:]

		if pusi {
			// If the packet has a Payload Unit Start Indicator
			// flag set then we need to write a PCR.
			pkt.PCR = e.pcr()
			e.log.Debug("new access unit", "PCR", pkt.PCR, "PTS", pts)
			pusi = false
		}

		_, err := e.dst.Write(pkt.Bytes(e.tsSpace[:PacketSize]))
		if err != nil {
			return len(data), fmt.Errorf("could not write MTS packet to destination: %w", err)
		}
		e.pktCount++
	}

	e.tick()

	return len(data), nil
}

// writePSI writes the PAT and PMT to the destination.
func (e *Encoder) writePSI() error {
	// Write PAT.
	patPkt := Packet{
		PUSI:    true,
		PID:     PatPid,
		CC:      e.ccFor(PatPid),
		AFC:     hasPayload,
		Payload: psi.AddPadding(e.patBytes),
	}
	_, err := e.dst.Write(patPkt.Bytes(e.tsSpace[:PacketSize]))
	if err != nil {
		return fmt.Errorf("could not write pat packet: %w", err)
	}
	e.pktCount++

	// Create mts packet from pmt table.
	pmtPkt := Packet{
		PUSI:    true,
		PID:     PmtPid,
		CC:      e.ccFor(PmtPid),
		AFC:     hasPayload,
		Payload: psi.AddPadding(e.pmtBytes),
	}
	_, err = e.dst.Write(pmtPkt.Bytes(e.tsSpace[:PacketSize]))
	if err != nil {
		return fmt.Errorf("could not write pmt packet: %w", err)
	}
	e.pktCount++
	e.psiWritten = true

	e.log.Debug("PSI written", "PAT CC", patPkt.CC, "PMT CC", pmtPkt.CC)
	return nil
}

// tick advances the clock one frame interval.
func (e *Encoder) tick() {
	e.clock += e.writePeriod
}

// pts retuns the current presentation timestamp.
func (e *Encoder) pts() uint64 {
	return uint64((e.clock + e.ptsOffset).Seconds() * PTSFrequency)
}

// pcr returns the current program clock reference.
func (e *Encoder) pcr() uint64 {
	return uint64(e.clock.Seconds() * PCRFrequency)
}

// ccFor returns the next continuity counter for pid.
func (e *Encoder) ccFor(pid uint16) byte {
	cc := e.continuity[pid]
	const continuityCounterMask = 0xf
	e.continuity[pid] = (cc + 1) & continuityCounterMask
	return cc
}

// firstNALType returns the type of the NAL unit following the start code at
// the beginning of d.
func firstNALType(d []byte, c h26x.Codec) (int, error) {
	i := 0
	for i < len(d) && d[i] == 0x00 {
		i++
	}
	if i < 2 || i+1 >= len(d) || d[i] != 0x01 {
		return 0, errNoStartCode
	}
	return h26x.NALType(d[i+1], c), nil
}

// isParameterSet reports whether NAL units of type typ begin a coded video
// sequence in codec c.
func isParameterSet(typ int, c h26x.Codec) bool {
	if c == h26x.H265 {
		return typ == h26x.H265TypeVPS || typ == h26x.H265TypeSPS
	}
	return typ == h26x.H264TypeSPS
}
