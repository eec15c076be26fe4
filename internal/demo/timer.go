package demo

import (
	"github.com/cuemby/scpfw/pkg/fwkid"
	"github.com/cuemby/scpfw/pkg/module"
	"github.com/cuemby/scpfw/pkg/platform"
	"github.com/cuemby/scpfw/pkg/scheduler"
)

// TickNotificationIndex is the only notification timer declares.
const TickNotificationIndex = 0

// TimerEventFired is timer's only event: the deferred half of an
// interrupt, submitted from the tick ISR and handled in task context.
const TimerEventFired = 0

// TimerIRQ is the platform interrupt line the timer's tick ISR is
// registered against.
const TimerIRQ uint32 = 7

type timerModule struct {
	id   fwkid.Id
	reg  *module.Registry
	intc *platform.InterruptController
	acks int
}

// NewTimerDescriptor builds the timer module's descriptor and config. It
// is a Service with no elements or APIs, declaring one notification
// ("Tick") that other modules subscribe to. When an interrupt controller
// is wired in, Start registers a tick ISR on TimerIRQ whose submission is
// handled in task context by publishing Tick — the usual ISR-defers-to-
// task split of a hardware timer driver.
func NewTimerDescriptor(intc *platform.InterruptController) (*timerModule, module.Descriptor, module.Config) {
	t := &timerModule{intc: intc}

	desc := module.Descriptor{
		Name:              "timer",
		Category:          module.CategoryService,
		EventCount:        1,
		NotificationCount: 1,
		Init: func(id fwkid.Id, elementCount uint16, data interface{}) error {
			t.id = id
			return nil
		},
		Start: func(id fwkid.Id) error {
			if t.intc == nil {
				return nil
			}
			return t.intc.Register(TimerIRQ, t.tickISR)
		},
		Stop: func(id fwkid.Id) error {
			if t.intc != nil {
				t.intc.Unregister(TimerIRQ)
			}
			return nil
		},
		ProcessEvent: func(e *scheduler.Event, resp *scheduler.Event) error {
			_, err := t.publishTick(false)
			return err
		},
		ProcessNotification: func(e *scheduler.Event, resp *scheduler.Event) error {
			if e.IsResponse {
				t.acks++
			}
			return nil
		},
	}
	cfg := module.Config{Elements: module.StaticElements(nil)}
	return t, desc, cfg
}

// tickISR runs in interrupt context: the only thing it may do is submit
// an event, which the scheduler routes onto the interrupt FIFO. The
// actual Tick publish happens when TimerEventFired is dispatched in task
// context.
func (t *timerModule) tickISR() {
	_ = t.reg.Scheduler.Submit(&scheduler.Event{
		SourceID: t.id,
		TargetID: t.id,
		ID:       fwkid.NewEvent(t.id.ModuleIndex(), TimerEventFired),
	})
}

// Tick raises the Tick notification directly from task context, for
// callers driving the demo without an interrupt controller.
func (t *timerModule) Tick() error {
	_, err := t.publishTick(false)
	return err
}

// TickWithAck is Tick with acknowledgements requested; the returned count
// is how many subscriber responses to expect.
func (t *timerModule) TickWithAck() (int, error) {
	return t.publishTick(true)
}

func (t *timerModule) publishTick(ack bool) (int, error) {
	return t.reg.Publish(t.id, scheduler.Event{
		ID:                fwkid.NewNotification(t.id.ModuleIndex(), TickNotificationIndex),
		ResponseRequested: ack,
	})
}

// Acks reports how many subscriber acknowledgements this timer has
// received across every TickWithAck publish.
func (t *timerModule) Acks() int {
	return t.acks
}

func (t *timerModule) bindRegistry(reg *module.Registry) {
	t.reg = reg
}
