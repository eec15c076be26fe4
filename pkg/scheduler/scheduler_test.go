package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/scpfw/pkg/fwkerr"
	"github.com/cuemby/scpfw/pkg/fwkid"
	"github.com/cuemby/scpfw/pkg/platform"
)

// fakeTargets is a minimal Targets implementation for exercising the
// dispatch loop without a real module registry.
type fakeTargets struct {
	deliver func(e *Event, resp *Event) error
}

func (f *fakeTargets) Deliver(e *Event, resp *Event) error {
	if f.deliver != nil {
		return f.deliver(e, resp)
	}
	return nil
}

func TestNewSchedulerDefaults(t *testing.T) {
	s := NewScheduler(Config{})
	assert.Equal(t, DefaultConfig().PoolSize, s.PoolSize())
	assert.Equal(t, s.PoolSize(), s.FreeCount())
}

func TestSubmitAssignsFreshCookiePerRequest(t *testing.T) {
	s := NewScheduler(Config{PoolSize: 4})

	mod := fwkid.NewModule(1)
	require.NoError(t, s.Submit(&Event{SourceID: mod, TargetID: mod, ID: fwkid.NewEvent(1, 0)}))
	require.NoError(t, s.Submit(&Event{SourceID: mod, TargetID: mod, ID: fwkid.NewEvent(1, 0)}))

	var seen []uint64
	target := &fakeTargets{deliver: func(e *Event, resp *Event) error {
		seen = append(seen, e.Cookie)
		return nil
	}}
	n := s.Drain(target)
	assert.Equal(t, 2, n)
	require.Len(t, seen, 2)
	assert.NotEqual(t, seen[0], seen[1])
	assert.NotZero(t, seen[0])
}

func TestSubmitStampsAssignedCookieBackIntoCallersEvent(t *testing.T) {
	s := NewScheduler(Config{PoolSize: 4})
	mod := fwkid.NewModule(1)

	first := Event{SourceID: mod, TargetID: mod, ID: fwkid.NewEvent(1, 0), Cookie: 777}
	require.NoError(t, s.Submit(&first))
	assert.NotZero(t, first.Cookie)
	assert.NotEqual(t, uint64(777), first.Cookie, "a request's caller-set cookie is replaced, not honored")

	second := Event{SourceID: mod, TargetID: mod, ID: fwkid.NewEvent(1, 0)}
	require.NoError(t, s.SubmitLight(&second))
	assert.Equal(t, first.Cookie+1, second.Cookie)

	var dispatched []uint64
	s.Drain(&fakeTargets{deliver: func(e *Event, resp *Event) error {
		dispatched = append(dispatched, e.Cookie)
		return nil
	}})
	assert.Equal(t, []uint64{first.Cookie, second.Cookie}, dispatched,
		"the stamped-back cookie is the one the target observes")
}

func TestDrainReleasesRecordsBackToPool(t *testing.T) {
	s := NewScheduler(Config{PoolSize: 2})
	mod := fwkid.NewModule(1)

	require.NoError(t, s.Submit(&Event{SourceID: mod, TargetID: mod, ID: fwkid.NewEvent(1, 0)}))
	assert.Equal(t, 1, s.FreeCount())

	s.Drain(&fakeTargets{})
	assert.Equal(t, 2, s.FreeCount(), "dispatched record must return to the free list")
}

func TestSubmitReturnsNoMemErrorWhenPoolExhausted(t *testing.T) {
	s := NewScheduler(Config{PoolSize: 1})
	mod := fwkid.NewModule(1)
	evID := fwkid.NewEvent(1, 0)

	require.NoError(t, s.Submit(&Event{SourceID: mod, TargetID: mod, ID: evID}))
	err := s.Submit(&Event{SourceID: mod, TargetID: mod, ID: evID})
	require.Error(t, err)
	assert.ErrorIs(t, err, fwkerr.ErrNoMem)
	assert.Equal(t, 1, s.TaskQueueLen(), "failed submit must leave the queue unchanged")
}

func TestSubmitLightClearsParams(t *testing.T) {
	s := NewScheduler(Config{PoolSize: 2})
	mod := fwkid.NewModule(1)

	dirty := Event{SourceID: mod, TargetID: mod, ID: fwkid.NewEvent(1, 0)}
	dirty.Params[0] = 0xFF
	require.NoError(t, s.SubmitLight(&dirty))

	var got Event
	s.Drain(&fakeTargets{deliver: func(e *Event, resp *Event) error {
		got = *e
		return nil
	}})
	assert.Zero(t, got.Params[0], "light submission must widen with a cleared params area")
}

func TestSubmitFromISRIsFoldedIntoTaskQueueOneAtATime(t *testing.T) {
	s := NewScheduler(Config{PoolSize: 4})
	mod := fwkid.NewModule(1)
	evID := fwkid.NewEvent(1, 0)

	require.NoError(t, s.SubmitFromISR(Event{SourceID: mod, TargetID: mod, ID: evID}))
	require.NoError(t, s.SubmitFromISR(Event{SourceID: mod, TargetID: mod, ID: evID}))
	assert.Equal(t, 2, s.ISRQueueLen())

	s.drainISR()
	assert.Equal(t, 1, s.ISRQueueLen())
	assert.Equal(t, 1, s.TaskQueueLen())
}

func TestSubmitRoutesToISRQueueFromInterruptContext(t *testing.T) {
	intc := platform.NewInterruptController()
	s := NewScheduler(Config{PoolSize: 4, Interrupts: intc})
	mod := fwkid.NewModule(1)

	require.NoError(t, intc.Register(3, func() {
		_ = s.Submit(&Event{SourceID: mod, TargetID: mod, ID: fwkid.NewEvent(1, 0)})
	}))
	require.NoError(t, intc.Trigger(3))

	assert.Equal(t, 1, s.ISRQueueLen(), "Submit in interrupt context must land on the ISR FIFO")
	assert.Equal(t, 0, s.TaskQueueLen())
}

func TestHandlerErrorDoesNotAbortDrain(t *testing.T) {
	s := NewScheduler(Config{PoolSize: 4})
	mod := fwkid.NewModule(1)

	require.NoError(t, s.Submit(&Event{SourceID: mod, TargetID: mod, ID: fwkid.NewEvent(1, 0)}))
	require.NoError(t, s.Submit(&Event{SourceID: mod, TargetID: mod, ID: fwkid.NewEvent(1, 1)}))

	var delivered []uint16
	n := s.Drain(&fakeTargets{deliver: func(e *Event, resp *Event) error {
		delivered = append(delivered, e.ID.EventIndex())
		if e.ID.EventIndex() == 0 {
			return fwkerr.New("handler", fwkerr.HandlerError, nil)
		}
		return nil
	}})
	assert.Equal(t, 2, n, "a failing handler is logged, not allowed to stall the queue behind it")
	assert.Equal(t, []uint16{0, 1}, delivered)
	assert.Equal(t, 4, s.FreeCount(), "the failed event's record still returns to the pool")
}

func TestSynchronousResponseIsRoutedBackToRequester(t *testing.T) {
	s := NewScheduler(Config{PoolSize: 4})
	requester := fwkid.NewModule(1)
	responder := fwkid.NewModule(2)
	evID := fwkid.NewEvent(2, 0)

	require.NoError(t, s.Submit(&Event{
		SourceID:          requester,
		TargetID:          responder,
		ID:                evID,
		ResponseRequested: true,
	}))

	var responses []Event
	n := s.Drain(&fakeTargets{deliver: func(e *Event, resp *Event) error {
		if e.IsResponse {
			responses = append(responses, *e)
			return nil
		}
		resp.Params[0] = 0xAA
		resp.Params[1] = 0xBB
		return nil
	}})
	assert.Equal(t, 2, n, "the request dispatch, then the loop-submitted response dispatch")
	require.Len(t, responses, 1)
	r := responses[0]
	assert.True(t, r.IsResponse)
	assert.Equal(t, requester, r.TargetID)
	assert.Equal(t, responder, r.SourceID)
	assert.Equal(t, evID, r.ID)
	assert.NotZero(t, r.Cookie)
	assert.Equal(t, []byte{0xAA, 0xBB}, r.Params[:2])
}

func TestNoResponseIsProducedWhenNoneRequested(t *testing.T) {
	s := NewScheduler(Config{PoolSize: 4})
	mod := fwkid.NewModule(1)

	require.NoError(t, s.Submit(&Event{SourceID: mod, TargetID: mod, ID: fwkid.NewEvent(1, 0)}))
	n := s.Drain(&fakeTargets{deliver: func(e *Event, resp *Event) error {
		resp.Params[0] = 0xEE // scratch; must be thrown away
		return nil
	}})
	assert.Equal(t, 1, n)
}

func TestDelayedResponseParksPoolRecordUntilProduced(t *testing.T) {
	s := NewScheduler(Config{PoolSize: 4})
	requester := fwkid.NewModule(1)
	responder := fwkid.NewModule(2)
	evID := fwkid.NewEvent(2, 0)

	require.NoError(t, s.Submit(&Event{
		SourceID:          requester,
		TargetID:          responder,
		ID:                evID,
		ResponseRequested: true,
	}))

	var gotCookie uint64
	n := s.Drain(&fakeTargets{deliver: func(e *Event, resp *Event) error {
		gotCookie = e.Cookie
		resp.IsDelayedResponse = true
		return nil
	}})
	assert.Equal(t, 1, n, "the deferred request dispatches once; no response is queued yet")
	require.Equal(t, 1, s.ParkedCount())
	assert.Equal(t, 3, s.FreeCount(), "a parked response occupies a pool slot while it waits")

	produced := Event{SourceID: responder, Cookie: gotCookie, IsDelayedResponse: true}
	produced.Params[0] = 0x42
	require.NoError(t, s.Submit(&produced))
	assert.Equal(t, 0, s.ParkedCount())

	var responses []Event
	n = s.Drain(&fakeTargets{deliver: func(e *Event, resp *Event) error {
		responses = append(responses, *e)
		return nil
	}})
	assert.Equal(t, 1, n)
	require.Len(t, responses, 1)
	assert.True(t, responses[0].IsResponse)
	assert.Equal(t, requester, responses[0].TargetID)
	assert.Equal(t, gotCookie, responses[0].Cookie, "a parked response preserves the original cookie across the deferral")
	assert.Equal(t, byte(0x42), responses[0].Params[0])
	assert.Equal(t, 4, s.FreeCount())

	err := s.Submit(&Event{SourceID: responder, Cookie: gotCookie, IsDelayedResponse: true})
	assert.ErrorIs(t, err, fwkerr.ErrParam, "a delayed response can be produced exactly once")
}

func TestDelayedResponseRejectsWrongProducer(t *testing.T) {
	s := NewScheduler(Config{PoolSize: 4})
	requester := fwkid.NewModule(1)
	responder := fwkid.NewModule(2)

	require.NoError(t, s.Submit(&Event{
		SourceID:          requester,
		TargetID:          responder,
		ID:                fwkid.NewEvent(2, 0),
		ResponseRequested: true,
	}))
	var cookie uint64
	s.Drain(&fakeTargets{deliver: func(e *Event, resp *Event) error {
		cookie = e.Cookie
		resp.IsDelayedResponse = true
		return nil
	}})

	err := s.Submit(&Event{SourceID: fwkid.NewModule(9), Cookie: cookie, IsDelayedResponse: true})
	assert.ErrorIs(t, err, fwkerr.ErrParam)
	assert.Equal(t, 1, s.ParkedCount(), "a rejected production must leave the parked response in place")
}

func TestUnknownDelayedResponseCookieIsParamError(t *testing.T) {
	s := NewScheduler(Config{PoolSize: 2})
	err := s.Submit(&Event{IsDelayedResponse: true, Cookie: 999})
	assert.ErrorIs(t, err, fwkerr.ErrParam)
}

func TestSourceIDIsStampedFromCurrentEventTarget(t *testing.T) {
	s := NewScheduler(Config{PoolSize: 4})
	alpha := fwkid.NewModule(1)
	beta := fwkid.NewModule(2)

	require.NoError(t, s.Submit(&Event{SourceID: alpha, TargetID: beta, ID: fwkid.NewEvent(2, 0)}))

	var stamped fwkid.Id
	s.Drain(&fakeTargets{deliver: func(e *Event, resp *Event) error {
		if e.ID.EventIndex() == 0 {
			// Handler submits a follow-up without naming itself.
			return s.Submit(&Event{TargetID: alpha, ID: fwkid.NewEvent(1, 1)})
		}
		stamped = e.SourceID
		return nil
	}})
	assert.Equal(t, beta, stamped, "an unset SourceID defaults to the entity handling the current event")
}

func TestNotificationResponseKeepsNotificationRouting(t *testing.T) {
	s := NewScheduler(Config{PoolSize: 4})
	publisher := fwkid.NewModule(1)
	subscriber := fwkid.NewModule(2)
	notifID := fwkid.NewNotification(1, 0)

	require.NoError(t, s.Submit(&Event{
		SourceID:          publisher,
		TargetID:          subscriber,
		ID:                notifID,
		IsNotification:    true,
		ResponseRequested: true,
	}))

	var acks []Event
	s.Drain(&fakeTargets{deliver: func(e *Event, resp *Event) error {
		if e.IsResponse {
			acks = append(acks, *e)
		}
		return nil
	}})
	require.Len(t, acks, 1)
	assert.True(t, acks[0].IsNotification, "a notification acknowledgement must route back as a notification")
	assert.Equal(t, publisher, acks[0].TargetID)
	assert.Equal(t, notifID, acks[0].ID)
}

func TestSubmitAndWaitReturnsMatchingResponse(t *testing.T) {
	s := NewScheduler(Config{PoolSize: 4})
	requester := fwkid.NewModule(1)
	responder := fwkid.NewModule(2)
	evID := fwkid.NewEvent(2, 0)

	target := &fakeTargets{deliver: func(e *Event, resp *Event) error {
		resp.Params[0] = 0x5A
		return nil
	}}

	resp, err := s.SubmitAndWait(target, Event{
		SourceID: requester,
		TargetID: responder,
		ID:       evID,
	})
	require.NoError(t, err)
	assert.True(t, resp.IsResponse)
	assert.Equal(t, requester, resp.TargetID)
	assert.Equal(t, byte(0x5A), resp.Params[0])
	assert.Equal(t, s.PoolSize(), s.FreeCount())
}

func TestSubmitAndWaitRefusesNestedWait(t *testing.T) {
	s := NewScheduler(Config{PoolSize: 4})
	requester := fwkid.NewModule(1)
	responder := fwkid.NewModule(2)
	evID := fwkid.NewEvent(2, 0)

	var nestedErr error
	target := &fakeTargets{deliver: func(e *Event, resp *Event) error {
		if !e.IsResponse {
			_, nestedErr = s.SubmitAndWait(nil, Event{SourceID: requester, TargetID: responder, ID: evID})
		}
		return nil
	}}

	_, err := s.SubmitAndWait(target, Event{SourceID: requester, TargetID: responder, ID: evID})
	require.NoError(t, err)
	require.Error(t, nestedErr)
	assert.ErrorIs(t, nestedErr, fwkerr.ErrBusy)
}

func TestSubmitAndWaitRefusedFromInterruptContext(t *testing.T) {
	intc := platform.NewInterruptController()
	s := NewScheduler(Config{PoolSize: 4, Interrupts: intc})
	mod := fwkid.NewModule(1)

	var isrErr error
	require.NoError(t, intc.Register(4, func() {
		_, isrErr = s.SubmitAndWait(&fakeTargets{}, Event{SourceID: mod, TargetID: mod, ID: fwkid.NewEvent(1, 0)})
	}))
	require.NoError(t, intc.Trigger(4))
	assert.ErrorIs(t, isrErr, fwkerr.ErrBusy)
}

func TestSubmitAndWaitGivesUpWhenQueueDrainsWithoutResponse(t *testing.T) {
	s := NewScheduler(Config{PoolSize: 4})
	requester := fwkid.NewModule(1)
	responder := fwkid.NewModule(2)
	evID := fwkid.NewEvent(2, 0)

	// The handler defers its answer and nothing ever produces it.
	target := &fakeTargets{deliver: func(e *Event, resp *Event) error {
		resp.IsDelayedResponse = true
		return nil
	}}

	_, err := s.SubmitAndWait(target, Event{SourceID: requester, TargetID: responder, ID: evID})
	require.Error(t, err)
	assert.ErrorIs(t, err, fwkerr.ErrState)
}

func TestPoolConservationAcrossSubmitAndDrain(t *testing.T) {
	s := NewScheduler(Config{PoolSize: 8})
	mod := fwkid.NewModule(1)

	for i := 0; i < 8; i++ {
		require.NoError(t, s.Submit(&Event{SourceID: mod, TargetID: mod, ID: fwkid.NewEvent(1, 0)}))
	}
	assert.Equal(t, 0, s.FreeCount())

	n := s.Drain(&fakeTargets{})
	assert.Equal(t, 8, n)
	assert.Equal(t, 8, s.FreeCount())
}
