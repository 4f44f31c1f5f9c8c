// Package checksum implements the two integrity checks the device protocol
// layers over a response: an 8-bit CRC guarding the command header and a
// 128-bit content digest guarding the payload. Both must match bit-for-bit;
// verification is bytes-equal with no partial-match tolerance.
package checksum

import (
	"bytes"
	"crypto/md5"
)

// CRC-8 parameters fixed by the device protocol: MSB-first, no reflection,
// no final XOR.
const (
	crc8Poly = 0x07
	crc8Init = 0x00
)

// DigestSize is the length of the payload content digest in bytes.
const DigestSize = md5.Size

// CRC8 computes the device's 8-bit CRC over data.
func CRC8(data []byte) uint8 {
	crc := uint8(crc8Init)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ crc8Poly
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// Digest computes the 16-byte content digest of payload. MD5 is the device's
// choice for compatibility, not a security property.
func Digest(payload []byte) [DigestSize]byte {
	return md5.Sum(payload)
}

// VerifyDigest reports whether got matches the content digest of payload.
func VerifyDigest(payload, got []byte) bool {
	if len(got) != DigestSize {
		return false
	}
	want := md5.Sum(payload)
	return bytes.Equal(want[:], got)
}
