package scheduler

import "github.com/cuemby/scpfw/pkg/fwkid"

// ParamsSize is the size of an event's opaque payload. It must be large
// enough for the biggest event/notification payload a product defines;
// 64 bytes comfortably covers the small fixed-size structs typical of
// firmware event payloads (a handful of ids, counters, or register
// values).
const ParamsSize = 64

// Event is the framework's single event-record shape. A "light" event —
// identification fields only, no payload — is not a separate type here:
// light and full events collapse into one record with an always-present
// params array, and SubmitLight is the entry point that widens a light
// submission with a cleared params area.
type Event struct {
	SourceID          fwkid.Id
	TargetID          fwkid.Id
	ID                fwkid.Id // the event or notification identifier
	IsNotification    bool
	IsResponse        bool
	ResponseRequested bool
	IsDelayedResponse bool
	Cookie            uint64
	Params            [ParamsSize]byte
}

// reset clears e back to its zero value in place, used when a pool record
// is handed out by alloc so stale fields from a previous occupant never
// leak into a new one.
func (e *Event) reset() {
	*e = Event{}
}
