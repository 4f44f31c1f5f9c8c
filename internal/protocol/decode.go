package protocol

import (
	"github.com/pauloved/uploader/internal/protocol/checksum"
	"github.com/pauloved/uploader/internal/protocol/frame"
)

// ResponseLength inspects an accumulating buffer and returns the total
// number of bytes one complete logical response occupies within it: the
// framed header's end offset plus the header-declared data length. It
// returns ErrFrameIncomplete while no complete framed header is present,
// which drives the transport reassembly loop. Integrity of the header is
// not verified here; DecodeResponse does that once the full response has
// arrived.
func ResponseLength(buf []byte) (int, error) {
	framed, span, ok := frame.Extract(buf)
	if !ok {
		return 0, ErrFrameIncomplete
	}
	if len(framed) < FramedHeaderSize {
		return 0, ErrHeaderTooShort
	}
	h := decodeHeader(framed[frame.MarkerLen : frame.MarkerLen+HeaderSize])
	return span.End + int(h.PayloadLen), nil
}

// DecodeResponse validates one fully reassembled response and splits it into
// header, payload and digest. Validation order is fixed: frame presence,
// header length, header checksum, declared data length, payload digest.
// Each check has its own error so callers can distinguish fatal corruption
// from the recoverable ErrFrameIncomplete.
func DecodeResponse(raw []byte) (*Envelope, error) {
	framed, span, ok := frame.Extract(raw)
	if !ok {
		return nil, ErrFrameIncomplete
	}
	if len(framed) < FramedHeaderSize {
		return nil, ErrHeaderTooShort
	}
	h := decodeHeader(framed[frame.MarkerLen : frame.MarkerLen+HeaderSize])
	if checksum.CRC8(headerBodyBytes(framed)) != h.Checksum {
		return nil, ErrChecksumMismatch
	}

	data := raw[span.End:]
	if h.PayloadLen < DigestSize || len(data) < int(h.PayloadLen) {
		return nil, ErrLengthMismatch
	}
	data = data[:h.PayloadLen]
	payload := data[:len(data)-DigestSize]
	digest := data[len(data)-DigestSize:]
	if !checksum.VerifyDigest(payload, digest) {
		return nil, ErrDigestMismatch
	}

	env := &Envelope{Header: h, Payload: append([]byte(nil), payload...)}
	copy(env.Digest[:], digest)
	return env, nil
}

// headerBodyBytes extracts the checksum input from a framed header: the
// 7 non-checksum header bytes in slot order.
func headerBodyBytes(framed []byte) []byte {
	hdr := framed[frame.MarkerLen : frame.MarkerLen+HeaderSize]
	buf := make([]byte, 0, HeaderSize-1)
	buf = append(buf, hdr[:3]...)
	buf = append(buf, hdr[4:]...)
	return buf
}
