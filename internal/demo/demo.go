package demo

import (
	"github.com/cuemby/scpfw/pkg/fwkid"
	"github.com/cuemby/scpfw/pkg/module"
	"github.com/cuemby/scpfw/pkg/platform"
)

// Module indices, fixed by the order Build hands descriptors to
// module.NewRegistry.
const (
	ModuleIndexClock  = 0
	ModuleIndexSensor = 1
	ModuleIndexTimer  = 2
)

// Product is the assembled demo module graph: the live Registry plus
// typed handles to the fixture modules that need them, for product code
// or tests that want to drive events directly instead of only through
// the registry's generic Submit/Bind/Subscribe surface.
type Product struct {
	Registry   *module.Registry
	Interrupts *platform.InterruptController
	Sensor     *sensorModule
	Timer      *timerModule
}

// Build assembles the clock/sensor/timer fixture modules into a Registry
// and runs StartAll, leaving the product ready to exchange events. The
// product's interrupt controller carries the timer's tick ISR; raising
// TimerIRQ on it stands in for the hardware timer firing. Callers own
// calling Registry.StopAll when done.
func Build(cfg module.RegistryConfig) (*Product, error) {
	clockID := fwkid.NewModule(ModuleIndexClock)
	timerID := fwkid.NewModule(ModuleIndexTimer)
	tickID := fwkid.NewNotification(ModuleIndexTimer, TickNotificationIndex)

	intc := platform.NewInterruptController()
	cfg.Scheduler.Interrupts = intc

	clockDesc, clockCfg := NewClockDescriptor()
	sensor, sensorDesc, sensorCfg := NewSensorDescriptor(clockID, timerID, tickID)
	timer, timerDesc, timerCfg := NewTimerDescriptor(intc)

	reg, err := module.NewRegistry(
		cfg,
		[]module.Descriptor{clockDesc, sensorDesc, timerDesc},
		[]module.Config{clockCfg, sensorCfg, timerCfg},
	)
	if err != nil {
		return nil, err
	}

	sensor.bindRegistry(reg)
	timer.bindRegistry(reg)

	if err := reg.StartAll(); err != nil {
		return nil, err
	}

	return &Product{Registry: reg, Interrupts: intc, Sensor: sensor, Timer: timer}, nil
}
