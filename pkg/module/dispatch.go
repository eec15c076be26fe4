package module

import (
	"github.com/cuemby/scpfw/pkg/fwkerr"
	"github.com/cuemby/scpfw/pkg/fwkid"
	"github.com/cuemby/scpfw/pkg/scheduler"
)

const opPublish = "module.Registry.Publish"

// Registry satisfies scheduler.Targets, so a Registry can be handed
// directly to (*scheduler.Scheduler).Drain — this is the adapter
// mentioned in scheduler's doc comment that lets scheduler, notify, and
// module stay free of import cycles while module composes both.

// Deliver routes e to the target module's ProcessEvent callback, or its
// ProcessNotification callback when e.IsNotification is set. A
// notification reaches Deliver exactly like any other event: as an
// already-targeted record popped off the task or ISR FIFO, not via any
// separate fan-out path inside the scheduler. resp is the prepared
// response record the handler answers through when e asked for one.
func (r *Registry) Deliver(e *scheduler.Event, resp *scheduler.Event) error {
	if e.TargetID.IsNone() || !fwkid.Valid(e.TargetID, r) {
		return fwkerr.New("module.Registry.Deliver", fwkerr.ParamError, nil)
	}
	mc := r.ctx(e.TargetID)
	if e.IsNotification {
		if mc.desc.ProcessNotification == nil {
			return fwkerr.New("module.Registry.Deliver", fwkerr.ParamError, nil)
		}
		return mc.desc.ProcessNotification(e, resp)
	}
	if mc.desc.ProcessEvent == nil {
		return fwkerr.New("module.Registry.Deliver", fwkerr.ParamError, nil)
	}
	return mc.desc.ProcessEvent(e, resp)
}

// Publish fans a notification out: for every subscriber currently
// registered against (e.SourceID, e.ID), it submits its own
// copy of e — TargetID set to the subscriber, IsNotification forced true
// — through the scheduler exactly like any other event. The returned
// count is how many subscribers were fanned out to, i.e. how many
// responses to expect when e.ResponseRequested is set; it is not a count
// of how many have actually answered, since each copy is only delivered
// later, in its turn, by the ordinary dispatch loop.
func (r *Registry) Publish(callerID fwkid.Id, e scheduler.Event) (int, error) {
	if e.SourceID.IsNone() {
		e.SourceID = callerID
	}
	if e.ID.Kind() != fwkid.KindNotification || !fwkid.Valid(e.ID, r) {
		return 0, fwkerr.New(opPublish, fwkerr.ParamError, nil)
	}
	if !fwkid.Valid(e.SourceID, r) {
		return 0, fwkerr.New(opPublish, fwkerr.ParamError, nil)
	}
	e.IsNotification = true
	e.IsResponse = false
	e.IsDelayedResponse = false

	subs := r.Notify.Subscribers(e.ID, e.SourceID)
	for _, sub := range subs {
		cp := e
		cp.TargetID = sub
		if err := r.Scheduler.Submit(&cp); err != nil {
			return 0, err
		}
	}
	return len(subs), nil
}

// Subscribe registers subscriberID to be told whenever sourceID raises
// notificationID, delivered via the subscriber module's
// ProcessNotification callback the next time Publish fans out. The
// source must be a module or an element; the subscriber must be a
// module, element, or sub-element; all three ids must resolve within the
// registered counts.
func (r *Registry) Subscribe(notificationID, sourceID, subscriberID fwkid.Id) error {
	switch sourceID.Kind() {
	case fwkid.KindModule, fwkid.KindElement:
	default:
		return fwkerr.New("module.Registry.Subscribe", fwkerr.ParamError, nil)
	}
	switch subscriberID.Kind() {
	case fwkid.KindModule, fwkid.KindElement, fwkid.KindSubElement:
	default:
		return fwkerr.New("module.Registry.Subscribe", fwkerr.ParamError, nil)
	}
	if !fwkid.Valid(notificationID, r) || !fwkid.Valid(sourceID, r) || !fwkid.Valid(subscriberID, r) {
		return fwkerr.New("module.Registry.Subscribe", fwkerr.ParamError, nil)
	}
	return r.Notify.Subscribe(notificationID, sourceID, subscriberID)
}

// Unsubscribe undoes a prior Subscribe call with the same arguments.
func (r *Registry) Unsubscribe(notificationID, sourceID, subscriberID fwkid.Id) {
	r.Notify.Unsubscribe(notificationID, sourceID, subscriberID)
}
