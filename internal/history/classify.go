package history

import "time"

// Category is the clinical grouping of a classified event.
type Category int

const (
	CategoryAlarm Category = iota
	CategoryStatus
	CategoryReservoirChange
	CategoryPrime
	CategoryGlucose
)

// Kind names the specific alarm or status condition.
type Kind int

const (
	KindNone Kind = iota
	KindLowInsulin
	KindNoInsulin
	KindSuspend
	KindAutoOff
	KindOcclusion
	KindLowPower
	KindNoPower
)

var kindNames = map[Kind]string{
	KindLowInsulin: "low_insulin",
	KindNoInsulin:  "no_insulin",
	KindSuspend:    "suspend",
	KindAutoOff:    "auto_off",
	KindOcclusion:  "occlusion",
	KindLowPower:   "low_power",
	KindNoPower:    "no_power",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Event is one classified device event at or after the upload boundary.
// Glucose readings carry their value in the record's 16-bit event index
// field, the only field wide enough for mg/dL.
type Event struct {
	Category Category
	Kind     Kind
	Index    uint16
	Time     time.Time
	RecordID uint32
	Glucose  uint16
}

// Sample is one basal or bolus rate observation in raw device units.
type Sample struct {
	Raw      uint16
	Time     time.Time
	RecordID uint32
}

// Batch is the classifier output for one decode pass, split by the upload
// boundary: Events/Basal/Bolus hold post-boundary data; Carry is the single
// most recent pre-boundary basal sample, retained only to seed segment
// continuity.
type Batch struct {
	Events []Event
	Basal  []Sample
	Bolus  []Sample
	Carry  *Sample
}

// classRule maps an event addressing triple to its category. A value of
// anyByte matches every urgency.
type classRule struct {
	port     uint8
	typ      uint8
	urgency  int16
	category Category
	kind     Kind
}

const anyByte int16 = -1

// classTable reproduces the device specification's event map verbatim.
var classTable = []classRule{
	{port: 4, typ: 1, urgency: 1, category: CategoryAlarm, kind: KindLowInsulin},
	{port: 4, typ: 1, urgency: 2, category: CategoryAlarm, kind: KindNoInsulin},
	{port: 4, typ: 5, urgency: 0, category: CategoryStatus, kind: KindSuspend},
	{port: 4, typ: 6, urgency: 2, category: CategoryAlarm, kind: KindAutoOff},
	{port: 4, typ: 2, urgency: anyByte, category: CategoryAlarm, kind: KindOcclusion},
	{port: 4, typ: 3, urgency: anyByte, category: CategoryAlarm, kind: KindOcclusion},
	{port: 4, typ: 7, urgency: anyByte, category: CategoryPrime},
	{port: 4, typ: 8, urgency: anyByte, category: CategoryReservoirChange},
	{port: 5, typ: 0, urgency: 1, category: CategoryAlarm, kind: KindLowPower},
	{port: 5, typ: 1, urgency: 2, category: CategoryAlarm, kind: KindNoPower},
	{port: 3, typ: 0, urgency: anyByte, category: CategoryGlucose},
}

const glucosePort = 3

func lookupRule(ev RawEvent) (classRule, bool) {
	for _, r := range classTable {
		if r.port != ev.Port || r.typ != ev.Type {
			continue
		}
		if r.urgency != anyByte && uint8(r.urgency) != ev.Urgency {
			continue
		}
		return r, true
	}
	return classRule{}, false
}

// Classify walks records in payload order (device chronological order) and
// splits them around the upload boundary. Records strictly before boundary
// contribute only to basal carry-forward state; records at or after it emit
// full classified output. Carbohydrate entries (port 3, type 1) are ignored.
func Classify(records []Record, boundary time.Time) Batch {
	var b Batch
	for _, rec := range records {
		before := rec.Time.Before(boundary)
		rule, ok := lookupRule(rec.Event)

		switch {
		case ok && rule.category == CategoryGlucose:
			if !before {
				b.Events = append(b.Events, Event{
					Category: CategoryGlucose,
					Index:    rec.Event.Index,
					Time:     rec.Time,
					RecordID: rec.ID,
					Glucose:  rec.Event.Index,
				})
			}
		case ok:
			if !before {
				b.Events = append(b.Events, Event{
					Category: rule.category,
					Kind:     rule.kind,
					Index:    rec.Event.Index,
					Time:     rec.Time,
					RecordID: rec.ID,
				})
			}
		case rec.Event.Port == glucosePort:
			// carbohydrate and other meter-port entries are not uploaded
		default:
			basal := Sample{Raw: rec.Status.BasalRaw, Time: rec.Time, RecordID: rec.ID}
			if before {
				if b.Carry == nil || basal.Time.After(b.Carry.Time) {
					carry := basal
					b.Carry = &carry
				}
				continue
			}
			b.Basal = append(b.Basal, basal)
			b.Bolus = append(b.Bolus, Sample{
				Raw: rec.Status.BolusRaw, Time: rec.Time, RecordID: rec.ID,
			})
		}
	}
	return b
}
