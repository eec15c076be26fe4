/*
Package fwkid implements the framework's identifier model.

Every module, element, sub-element, API, event, and notification hosted by
the framework is named by a single fixed-width, tagged value: an Id. An Id
is a plain value — it is freely copyable, never allocates, and owns
nothing. Construction is infallible so that identifiers can be built in
package-level variable initializers; validity against a registered module's
actual element/API/event/notification counts is a separate, explicit check
performed by the module registry (see pkg/module), not by Id itself.

# Architecture

	┌─────────────────────────── Id ───────────────────────────┐
	│                                                            │
	│  kind: None | Module | Element | SubElement |             │
	│        Api | Event | Notification                         │
	│                                                            │
	│  moduleIdx   — present for every kind except None         │
	│  secondIdx   — element / api / event / notification index │
	│  thirdIdx    — sub-element index (SubElement only)        │
	│                                                            │
	└────────────────────────────────────────────────────────────┘

Accessors that read an index not defined for the Id's kind panic rather
than return a zero value — reading kind.Index(id) is a programming error,
not a runtime condition a caller can recover from, and it must surface
loudly rather than silently return garbage.
*/
package fwkid
