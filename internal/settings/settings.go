// Package settings enumerates the device's fixed set of settings requests
// and decodes the responses into a named map.
package settings

import (
	"context"
	"encoding/binary"
	"fmt"
	"net/url"

	"github.com/pauloved/uploader/internal/observability"
	"github.com/pauloved/uploader/internal/protocol"
)

// Count is the number of entries in the device settings table.
const Count = len(requestTable)

// requestPayloadSize is the fixed settings request payload: the selector
// byte followed by zeros.
const requestPayloadSize = 4

// Requester issues one command and returns its decoded response. The
// enumerator never pipelines: it awaits each response before the next
// request.
type Requester interface {
	Request(ctx context.Context, h protocol.Header, payload []byte) (*protocol.Envelope, error)
}

// Value is one decoded setting: an ordered word sequence plus, for named
// entries, the user-assigned name.
type Value struct {
	Words []uint16
	Name  string
}

// Map holds all enumerated settings keyed by setting name.
type Map map[string]Value

// RetrievalError wraps the first request or decode failure; the enumeration
// aborts at that index.
type RetrievalError struct {
	Index int
	Err   error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("settings: request %d failed: %v", e.Index, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Fetch walks the request table in strict index order and returns the full
// settings map. The first failure aborts the sequence.
func Fetch(ctx context.Context, r Requester) (Map, error) {
	out := make(Map, Count)
	for i, e := range requestTable {
		payload := make([]byte, requestPayloadSize)
		payload[0] = e.Selector
		h := protocol.Header{Port: e.Port, Parameter: e.Parameter, Operation: e.Operation}

		env, err := r.Request(ctx, h, payload)
		if err != nil {
			observability.ObserveSettingsRequest("error")
			return nil, &RetrievalError{Index: i, Err: err}
		}

		var v Value
		if e.Named {
			v, err = decodeNamed(env.Payload)
		} else {
			v, err = decodeWords(env.Payload)
		}
		if err != nil {
			observability.ObserveSettingsRequest("error")
			return nil, &RetrievalError{Index: i, Err: err}
		}
		observability.ObserveSettingsRequest("ok")
		out[e.Name] = v
	}
	return out, nil
}

// decodeWords interprets the whole payload as little-endian words.
func decodeWords(p []byte) (Value, error) {
	if len(p)%2 != 0 {
		return Value{}, fmt.Errorf("settings: odd word payload length %d", len(p))
	}
	words := make([]uint16, 0, len(p)/2)
	for off := 0; off < len(p); off += 2 {
		words = append(words, binary.LittleEndian.Uint16(p[off:off+2]))
	}
	return Value{Words: words}, nil
}

// decodeNamed interprets the payload head as words and extracts the name
// string at NameOffset.
func decodeNamed(p []byte) (Value, error) {
	if len(p) <= NameOffset {
		return Value{}, fmt.Errorf("settings: named payload too short: %d", len(p))
	}
	v, err := decodeWords(p[:NameOffset])
	if err != nil {
		return Value{}, err
	}
	v.Name = decodeName(p[NameOffset:])
	return v, nil
}

// decodeName reads the NUL-terminated ASCII name and percent-decodes it;
// the device escapes non-ASCII name bytes as %XX. Undecodable escapes fall
// back to the raw string.
func decodeName(b []byte) string {
	end := len(b)
	for i, c := range b {
		if c == 0 {
			end = i
			break
		}
	}
	raw := string(b[:end])
	name, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return name
}
