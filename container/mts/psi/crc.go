/*
NAME
  crc.go

DESCRIPTION
  crc.go provides the CRC-32 used by MPEG-TS PSI tables.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved. 

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package psi

import (
	"encoding/binary"
	"hash/crc32"
	"math/bits"
)

// mpegTable is the table for the MSB first CRC-32 of ITU-T H.222.0 annex A.
var mpegTable = makeTable(bits.Reverse32(crc32.IEEE))

// AddCRC returns a copy of the table out with its CRC appended. The pointer
// field at out[0] is not covered by the CRC.
func AddCRC(out []byte) []byte {
	t := make([]byte, len(out)+crcSize)
	copy(t, out)
	UpdateCRC(t[1:])
	return t
}

// UpdateCRC computes the CRC of b, excluding its last four bytes, and writes
// it into those four bytes.
func UpdateCRC(b []byte) {
	crc := update(0xffffffff, mpegTable, b[:len(b)-crcSize])
	binary.BigEndian.PutUint32(b[len(b)-crcSize:], crc)
}

func makeTable(poly uint32) *crc32.Table {
	var t crc32.Table
	for i := range t {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return &t
}

func update(crc uint32, tab *crc32.Table, p []byte) uint32 {
	for _, v := range p {
		crc = tab[byte(crc>>24)^v] ^ (crc << 8)
	}
	return crc
}
