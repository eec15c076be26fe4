/*
Package log provides structured logging for the framework core using
zerolog.

The log package wraps rs/zerolog to provide JSON-structured logging with
component-specific child loggers and a configurable level/format. The
module registry, the scheduler, and the notification bus each get their
own child logger via WithComponent so log lines can be filtered by
subsystem in production; the bind broker logs nothing of its own.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - zerolog instance                         │          │
	│  │  - initialized via log.Init()               │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Component Loggers                 │          │
	│  │  - WithComponent("module")                  │          │
	│  │  - WithComponent("scheduler")                │          │
	│  │  - WithComponent("notify")                   │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────────┘
*/
package log
