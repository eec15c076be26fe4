/*
Package scheduler implements the event and notification scheduler: the
sole mechanism by which any two hosted components communicate at run
time. It owns a pre-allocated pool of event records, a task-context FIFO,
an interrupt-context FIFO, a cookie generator, and the single dispatch
loop that delivers events to their targets one at a time.

# Architecture

	┌────────────────────── SCHEDULER ───────────────────────────┐
	│                                                               │
	│   ISR context            Task context                       │
	│   SubmitFromISR()         Submit() / SubmitLight()           │
	│        │                        │                            │
	│        ▼                        ▼                            │
	│   ┌─────────┐   drained    ┌─────────────┐                  │
	│   │ ISR FIFO│ ───1/tick──▶ │ task FIFO    │                 │
	│   └─────────┘              └──────┬──────┘                  │
	│        ▲                          │                          │
	│        │ pool (shared, critical   ▼                          │
	│        │ section guarded)   ┌──────────────┐                 │
	│   ┌─────────┐               │ dispatch loop │                │
	│   │  free   │◀──────────────│ one at a time │                │
	│   │  list   │   release     └──────┬───────┘                 │
	│   └─────────┘                      │                         │
	│                                     ▼                         │
	│                    process_event / process_notification      │
	│                    response: enqueue now, or park as a        │
	│                    delayed response keyed by cookie            │
	└───────────────────────────────────────────────────────────────┘

Event records are never heap-allocated at dispatch time: Submit,
SubmitFromISR, and park all draw from one fixed-size pool sized at
construction, and every record returns to the free list exactly once it
is fully handled — the pool-size conservation invariant (free + queued +
parked + current == pool size) holds at every observable point.
*/
package scheduler
