package platform

import (
	"sync/atomic"

	"github.com/cuemby/scpfw/pkg/fwkerr"
)

// ISR is an interrupt service routine registered against one platform
// interrupt id. It runs in interrupt context: the only framework call it
// may make is an event submission, which the scheduler routes onto the
// interrupt FIFO (see pkg/scheduler).
type ISR func()

// InterruptController is the platform's interrupt vector table plus the
// is-in-interrupt-context query the scheduler keys its submission routing
// on. On real hardware the equivalent state lives in the interrupt
// controller registers; here Trigger stands in for the hardware raising a
// line, so tests and the demo binary can drive the ISR ingress path
// deterministically.
type InterruptController struct {
	cs       CriticalSection
	handlers map[uint32]ISR
	inISR    atomic.Bool
}

// NewInterruptController builds an empty vector table.
func NewInterruptController() *InterruptController {
	return &InterruptController{handlers: make(map[uint32]ISR)}
}

// Register installs isr as the handler for irq. Installing over an
// already-registered line is refused; Unregister first.
func (c *InterruptController) Register(irq uint32, isr ISR) error {
	if isr == nil {
		return fwkerr.New("platform.InterruptController.Register", fwkerr.ParamError, nil)
	}
	g := c.cs.Enter()
	defer g.Exit()
	if _, taken := c.handlers[irq]; taken {
		return fwkerr.New("platform.InterruptController.Register", fwkerr.StateError, nil)
	}
	c.handlers[irq] = isr
	return nil
}

// Unregister removes the handler for irq, if any.
func (c *InterruptController) Unregister(irq uint32) {
	g := c.cs.Enter()
	defer g.Exit()
	delete(c.handlers, irq)
}

// Trigger raises irq: the registered ISR runs to completion with the
// controller marked in interrupt context for its duration. An unhandled
// irq is a ParamError.
func (c *InterruptController) Trigger(irq uint32) error {
	g := c.cs.Enter()
	isr, ok := c.handlers[irq]
	g.Exit()
	if !ok {
		return fwkerr.New("platform.InterruptController.Trigger", fwkerr.ParamError, nil)
	}
	c.inISR.Store(true)
	defer c.inISR.Store(false)
	isr()
	return nil
}

// InInterrupt reports whether the caller is running inside an ISR. The
// scheduler consults this to route submissions onto the interrupt FIFO
// and to refuse a blocking wait from interrupt context.
func (c *InterruptController) InInterrupt() bool {
	return c.inISR.Load()
}
