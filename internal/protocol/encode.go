package protocol

import (
	"encoding/binary"

	"github.com/pauloved/uploader/internal/protocol/checksum"
	"github.com/pauloved/uploader/internal/protocol/frame"
)

// BuildCommand assembles the full wire form of one command: the framed
// header followed by the data section (payload ++ digest). The header's
// PayloadLen and Checksum fields are computed here; any values the caller
// set in those slots are overwritten.
func BuildCommand(h Header, payload []byte) []byte {
	h.PayloadLen = uint32(len(payload) + DigestSize)
	body := encodeHeaderBody(h)
	h.Checksum = checksum.CRC8(body)

	out := make([]byte, 0, FramedHeaderSize+len(payload)+DigestSize)
	out = append(out, frame.Wrap(encodeHeader(h))...)
	out = append(out, payload...)
	digest := checksum.Digest(payload)
	out = append(out, digest[:]...)
	return out
}

// encodeHeader lays out all 8 header bytes including the checksum slot.
func encodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	buf[0] = h.Port
	buf[1] = h.Parameter
	buf[2] = h.Operation
	buf[3] = h.Checksum
	binary.LittleEndian.PutUint32(buf[4:8], h.PayloadLen)
	return buf
}

// encodeHeaderBody is the checksum input: the header bytes with the
// checksum slot excluded (not zeroed), bytes before the slot first.
func encodeHeaderBody(h Header) []byte {
	buf := make([]byte, 0, HeaderSize-1)
	buf = append(buf, h.Port, h.Parameter, h.Operation)
	var l [4]byte
	binary.LittleEndian.PutUint32(l[:], h.PayloadLen)
	buf = append(buf, l[:]...)
	return buf
}

// decodeHeader is the inverse of encodeHeader.
func decodeHeader(b []byte) Header {
	return Header{
		Port:       b[0],
		Parameter:  b[1],
		Operation:  b[2],
		Checksum:   b[3],
		PayloadLen: binary.LittleEndian.Uint32(b[4:8]),
	}
}
