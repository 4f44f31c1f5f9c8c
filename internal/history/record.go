// Package history decodes the device's bulk history payload into fixed-width
// records and classifies each record's embedded event.
package history

import (
	"encoding/binary"
	"errors"
	"time"
)

// RecordSize is the fixed width of one history record on the wire.
const RecordSize = 28

// ErrPayloadMisaligned means the history payload length is not a positive
// multiple of RecordSize. Alignment failures abort the operation; a payload
// that cannot be sliced cleanly is corrupt, not partially usable.
var ErrPayloadMisaligned = errors.New("history: payload not aligned to record size")

// Status is the delivery snapshot carried by every record.
type Status struct {
	Battery   uint8
	Reservoir uint8
	BasalRaw  uint16
	BolusRaw  uint16
}

// RawEvent is the undecoded event block of a record.
type RawEvent struct {
	Index   uint16
	Port    uint8
	Type    uint8
	Urgency uint8
	Value   uint8
}

// Record is one decoded 28-byte history slot.
type Record struct {
	ID     uint32
	Serial string
	Time   time.Time
	Status Status
	Event  RawEvent
}

// Parse decodes payload into records. Slots whose serial field is all zero
// are empty and skipped. Device timestamps are wall-clock local time; they
// are decoded into UTC and the timezone offset is applied downstream by the
// record builder.
func Parse(payload []byte) ([]Record, error) {
	if len(payload) == 0 || len(payload)%RecordSize != 0 {
		return nil, ErrPayloadMisaligned
	}
	records := make([]Record, 0, len(payload)/RecordSize)
	for off := 0; off < len(payload); off += RecordSize {
		slot := payload[off : off+RecordSize]
		if emptySlot(slot[4:10]) {
			continue
		}
		records = append(records, decodeRecord(slot))
	}
	return records, nil
}

func emptySlot(serial []byte) bool {
	for _, b := range serial {
		if b != 0 {
			return false
		}
	}
	return true
}

func decodeRecord(b []byte) Record {
	return Record{
		ID:     binary.LittleEndian.Uint32(b[0:4]),
		Serial: string(b[4:10]),
		Time: time.Date(
			2000+int(b[10]), time.Month(b[11]), int(b[12]),
			int(b[13]), int(b[14]), int(b[15]), 0, time.UTC,
		),
		Status: Status{
			Battery:   b[16],
			Reservoir: b[17],
			BasalRaw:  binary.LittleEndian.Uint16(b[18:20]),
			BolusRaw:  binary.LittleEndian.Uint16(b[20:22]),
		},
		Event: RawEvent{
			Index:   binary.LittleEndian.Uint16(b[22:24]),
			Port:    b[24],
			Type:    b[25],
			Urgency: b[26],
			Value:   b[27],
		},
	}
}
