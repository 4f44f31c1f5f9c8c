package protocol

import "errors"

var (
	// ErrFrameIncomplete means no complete marker pair is present yet. It is
	// the sole recoverable condition: the caller accumulates more transport
	// bytes and retries.
	ErrFrameIncomplete = errors.New("protocol: incomplete frame")

	ErrHeaderTooShort   = errors.New("protocol: framed header too short")
	ErrChecksumMismatch = errors.New("protocol: header checksum mismatch")
	ErrLengthMismatch   = errors.New("protocol: declared data length exceeds received bytes")
	ErrDigestMismatch   = errors.New("protocol: payload digest mismatch")
)
