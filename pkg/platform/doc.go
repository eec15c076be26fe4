/*
Package platform defines the small seam between the framework core and the
hardware/OS it runs on: a critical-section guard standing in for the
`global_interrupts_disable`/`_enable` pair, an interrupt controller
carrying the per-interrupt-id ISR table and the is-in-interrupt-context
query, and a Trap invoked when lifecycle bring-up fails fatally.

The framework assumes a single core and a single cooperative thread of
control; the only concurrent agent is a hardware interrupt. This package's
CriticalSection models "mask interrupts for the smallest feasible window"
as a mutex acquisition — correct for the single-core model this framework
targets, and RAII-scoped via defer rather than a bare lock/unlock pair so a
panicking handler can never leave the section held.
*/
package platform
