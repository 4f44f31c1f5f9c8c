package driver

import (
	"github.com/pauloved/uploader/internal/history"
	"github.com/pauloved/uploader/internal/reconstruct"
	"github.com/pauloved/uploader/internal/settings"
)

// RecordBuilder is the excluded record-builder collaborator: it shapes each
// reconstructed entity into a platform record. The driver calls it once per
// entity and never inspects its output beyond collecting it into the batch.
// tzOffsetMinutes is the device-local UTC offset.
type RecordBuilder interface {
	Settings(m settings.Map, tzOffsetMinutes int) (any, error)
	BasalSegment(seg *reconstruct.Segment, tzOffsetMinutes int) (any, error)
	Bolus(ep reconstruct.Episode, tzOffsetMinutes int) (any, error)
	Event(ev history.Event, tzOffsetMinutes int) (any, error)
}

// Batch is the ordered record set produced by one Run: the settings
// snapshot first, then basal segments, bolus episodes, and device events.
type Batch struct {
	Records []any
}
