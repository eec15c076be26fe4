package scheduler

import "github.com/cuemby/scpfw/pkg/fwkerr"

const opSubmitAndWait = "scheduler.SubmitAndWait"

// SubmitAndWait submits e as a request and pumps the dispatch loop in
// place until the matching response arrives, returning it. It exists for
// parity with the deprecated blocking primitive some older modules still
// call; new code should prefer Submit with an asynchronous response
// handler instead, since SubmitAndWait re-enters the dispatch loop from
// inside whatever called it and so is only ever safe at the outermost
// level of task context — never from inside a handler, and never from an
// ISR.
//
// Nested calls and calls from interrupt context are refused with a
// BusyError: only one SubmitAndWait may be in flight at a time. If the
// dispatch loop drains to empty — both FIFOs exhausted — without the
// matching response ever having arrived, SubmitAndWait gives up with a
// StateError rather than spinning forever: with nothing queued anywhere,
// nothing is left that could ever produce the response. A real firmware
// build would spin here and let the watchdog reset the part; a process
// has no watchdog, and a target that never answers is a product bug
// either way.
func (s *Scheduler) SubmitAndWait(t Targets, e Event) (Event, error) {
	if s.waiting != nil || s.inISR() {
		return Event{}, fwkerr.New(opSubmitAndWait, fwkerr.BusyError, nil)
	}

	// The current-event pointer is saved across the nested dispatch loop
	// and restored on the way out, so a response the caller submits after
	// this returns is still stamped against the right source.
	saved := s.current

	e.ResponseRequested = true
	cookie, err := s.submit(opSubmitAndWait, e)
	if err != nil {
		return Event{}, err
	}

	s.waiting = &waitState{cookie: cookie}
	defer func() {
		s.waiting = nil
		s.current = saved
	}()

	for !s.waiting.done {
		s.drainISR()

		ev, ok := s.taskFIFO.pop()
		if !ok {
			return Event{}, fwkerr.New(opSubmitAndWait, fwkerr.StateError, nil)
		}
		s.dispatch(t, ev)
	}

	return s.waiting.result, nil
}
