package module

import (
	"github.com/cuemby/scpfw/pkg/fwkerr"
	"github.com/cuemby/scpfw/pkg/fwkid"
	"github.com/cuemby/scpfw/pkg/scheduler"
)

// Submit forwards e to the Scheduler, auto-stamping e.SourceID with
// callerID when the caller leaves it as the zero value: a module raising
// an event or notification about itself does not need to repeat its own
// id at every call site. On success the assigned cookie is stamped back
// into e.Cookie, so the caller can match the eventual response.
func (r *Registry) Submit(callerID fwkid.Id, e *scheduler.Event) error {
	if e == nil {
		return fwkerr.New("module.Registry.Submit", fwkerr.ParamError, nil)
	}
	if e.SourceID.IsNone() {
		e.SourceID = callerID
	}
	return r.Scheduler.Submit(e)
}

// SubmitAndWait is the Submit counterpart for the deprecated blocking
// primitive; see (*scheduler.Scheduler).SubmitAndWait for its caveats.
func (r *Registry) SubmitAndWait(callerID fwkid.Id, e scheduler.Event) (scheduler.Event, error) {
	if e.SourceID.IsNone() {
		e.SourceID = callerID
	}
	return r.Scheduler.SubmitAndWait(r, e)
}
