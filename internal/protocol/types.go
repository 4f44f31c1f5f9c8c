package protocol

import (
	"github.com/pauloved/uploader/internal/protocol/checksum"
	"github.com/pauloved/uploader/internal/protocol/frame"
)

const (
	// HeaderSize is the fixed command header length in bytes.
	HeaderSize = 8

	// FramedHeaderSize is the header wrapped in its marker pair.
	FramedHeaderSize = HeaderSize + 2*frame.MarkerLen

	// DigestSize is the content digest appended to every data section.
	DigestSize = checksum.DigestSize
)

// Header is the fixed 8-byte command header. Port, Parameter and Operation
// form the addressing triplet; PayloadLen declares the data section length
// (payload plus digest) in bytes, little-endian on the wire.
type Header struct {
	Port       uint8
	Parameter  uint8
	Operation  uint8
	Checksum   uint8
	PayloadLen uint32
}

// Envelope is one decoded message: header, payload and its content digest.
type Envelope struct {
	Header  Header
	Payload []byte
	Digest  [DigestSize]byte
}
