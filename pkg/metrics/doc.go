/*
Package metrics registers the Prometheus gauges and counters the scheduler
and lifecycle driver are instrumented with, plus a periodic Collector that
samples a running scheduler's queue/pool depths on a tick — the same
registration-at-init and ticker-driven sampling idiom as the rest of this
repository's ambient stack.

Core packages (pkg/scheduler, pkg/module) only ever increment the counters
inline on their hot path; nothing in those packages starts a goroutine.
The Collector's periodic gauge sampling is ambient demo-process behavior
wired up by cmd/scpfw, not a core concern.

Metrics:

  - scpfw_event_pool_free: event records currently on the free list
  - scpfw_task_queue_depth / scpfw_isr_queue_depth: queue depths
  - scpfw_parked_responses: delayed responses currently parked
  - scpfw_dispatch_total{kind}: events dispatched, by event/notification
  - scpfw_dispatch_duration_seconds: time spent per Drain() call
  - scpfw_bind_failures_total: non-success bind() calls during bring-up
  - scpfw_module_stage_transitions_total{state}: lifecycle transitions
*/
package metrics
