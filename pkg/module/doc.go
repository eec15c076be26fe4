/*
Package module implements the module registry, the multi-phase lifecycle
driver, and the bind broker: the engine that brings a static graph of
hosted components up through Initialize, Bind (N rounds), and Start, and
lets them resolve each other's APIs along the way.

# Architecture

	┌──────────────────────── REGISTRY ─────────────────────────┐
	│                                                             │
	│  Descriptors + Configs (static, supplied at construction)  │
	│         │                                                  │
	│         ▼                                                  │
	│  ┌───────────────┐   Initialize    ┌───────────────────┐  │
	│  │ module context │ ─────────────▶ │ init/element_init  │  │
	│  │   per module    │                │ /post_init called  │  │
	│  └───────┬────────┘                └───────────────────┘  │
	│          │ Bind (configurable round count, default 2)      │
	│          ▼                                                  │
	│  ┌────────────────────────────────────────────────────┐   │
	│  │ bind(id, round) on every module then every element; │   │
	│  │ process_bind_request dispatched via the bind broker │   │
	│  └───────────────────────┬────────────────────────────┘   │
	│                          │ Start                           │
	│                          ▼                                 │
	│  ┌────────────────────────────────────────────────────┐   │
	│  │ start(id) called; scheduler is live from here on;   │   │
	│  │ states become Started — the runtime is now live     │   │
	│  └────────────────────────────────────────────────────┘   │
	└─────────────────────────────────────────────────────────────┘

A single Registry is meant to be constructed exactly once per process (it
owns the one scheduler and one notification bus for the run); constructing
a second one is not forbidden by the type system but StartAll refuses to
run twice on the same instance.

Once started, Registry also satisfies scheduler.Targets (see Deliver in
dispatch.go), routing each dispatched event to the target module's
process_event or process_notification callback, and exposes the bind
broker (Bind) and the notification fan-out (Subscribe/Unsubscribe/Publish)
that modules call into from those same callbacks at run time.
*/
package module
