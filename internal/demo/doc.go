/*
Package demo builds a small, static product registry out of three fixture
modules — a clock driver, a sensor HAL, and a timer service — thinned
down to exactly enough behavior to exercise every framework contract end
to end:

  - clock: a Driver module exposing one API (GetRateHz) via bind, no
    events or elements.
  - sensor: a Hal module with one element, binding to clock's API during
    the Bind stage, handling a "Read" event answered inline and a
    "ReadDelayed" event whose answer is deferred and produced out of
    band, and subscribing itself to timer's "Tick" notification at Start.
  - timer: a Service module with no elements, declaring one notification
    ("Tick") it publishes from task context, plus a tick ISR registered
    on the platform interrupt controller whose deferred event publishes
    the same notification — the usual ISR-defers-to-task split of a
    hardware timer driver.

None of these modules speak a real device protocol. They exist only so
cmd/scpfw and the e2e test suite have a real static module graph to bring
up, bind, and drive events through.
*/
package demo
