package demo

import (
	"encoding/binary"

	"github.com/cuemby/scpfw/pkg/fwkerr"
	"github.com/cuemby/scpfw/pkg/fwkid"
	"github.com/cuemby/scpfw/pkg/module"
	"github.com/cuemby/scpfw/pkg/scheduler"
)

// Sensor event indices.
const (
	SensorEventRead        = 0
	SensorEventReadDelayed = 1
)

type sensorModule struct {
	id    fwkid.Id
	reg   *module.Registry
	clock ClockAPI
	ticks int

	// deferred holds the cookie of every ReadDelayed request whose answer
	// is still owed, in arrival order. The scheduler tracks the requester
	// and the parked response; the module only has to remember which
	// cookies it promised to answer.
	deferred []uint64
}

// NewSensorDescriptor builds the sensor module's descriptor and config. It
// has one element ("probe0"), binds clock's API on round 0, handles
// "Read" (answered inline) and "ReadDelayed" (answer deferred, produced
// later by a ProduceDelayed call) events, and subscribes itself to
// timer's Tick notification once started.
func NewSensorDescriptor(clockModuleID, timerModuleID, tickNotificationID fwkid.Id) (*sensorModule, module.Descriptor, module.Config) {
	s := &sensorModule{}

	desc := module.Descriptor{
		Name:       "sensor",
		Category:   module.CategoryHal,
		EventCount: 2,
		Init: func(id fwkid.Id, elementCount uint16, data interface{}) error {
			s.id = id
			return nil
		},
		ElementInit: func(id fwkid.Id, subElementCount uint16, data interface{}) error {
			return nil
		},
		Bind: func(id fwkid.Id, round int) error {
			if round != 0 || id.Kind() != fwkid.KindModule {
				return nil
			}
			api, err := s.reg.Bind(clockModuleID, fwkid.NewAPI(clockModuleID.ModuleIndex(), ClockAPIIndex))
			if err != nil {
				return err
			}
			clockAPI, ok := api.(ClockAPI)
			if !ok {
				return fwkerr.New("demo.sensor.Bind", fwkerr.HandlerError, nil)
			}
			s.clock = clockAPI
			return nil
		},
		Start: func(id fwkid.Id) error {
			if id.Kind() != fwkid.KindModule {
				return nil
			}
			return s.reg.Subscribe(tickNotificationID, timerModuleID, s.id)
		},
		ProcessEvent: func(e *scheduler.Event, resp *scheduler.Event) error {
			switch e.ID.EventIndex() {
			case SensorEventRead:
				binary.LittleEndian.PutUint32(resp.Params[:4], s.clock.GetRateHz())
				return nil
			case SensorEventReadDelayed:
				// Real data is not ready yet; the scheduler parks resp
				// until ProduceDelayed submits the answer under the same
				// cookie.
				s.deferred = append(s.deferred, e.Cookie)
				resp.IsDelayedResponse = true
				return nil
			default:
				return fwkerr.New("demo.sensor.ProcessEvent", fwkerr.ParamError, nil)
			}
		},
		ProcessNotification: func(e *scheduler.Event, resp *scheduler.Event) error {
			s.ticks++
			return nil
		},
	}
	cfg := module.Config{
		Elements: module.StaticElements([]module.ElementDescriptor{
			{Name: "probe0", Data: struct{}{}},
		}),
	}
	return s, desc, cfg
}

// ProduceDelayed submits the response to a previously-deferred
// ReadDelayed request, simulating a driver that answers out of band once
// real data is ready. The scheduler resolves the original requester from
// cookie; producing against a cookie with nothing parked is a ParamError.
func (s *sensorModule) ProduceDelayed(cookie uint64, value uint32) error {
	var params [scheduler.ParamsSize]byte
	binary.LittleEndian.PutUint32(params[:4], value)
	err := s.reg.Scheduler.Submit(&scheduler.Event{
		SourceID:          s.id,
		Cookie:            cookie,
		IsDelayedResponse: true,
		Params:            params,
	})
	if err != nil {
		return err
	}
	for i, c := range s.deferred {
		if c == cookie {
			s.deferred = append(s.deferred[:i], s.deferred[i+1:]...)
			break
		}
	}
	return nil
}

// Deferred returns the cookies of every ReadDelayed request still
// awaiting a ProduceDelayed call, in arrival order.
func (s *sensorModule) Deferred() []uint64 {
	out := make([]uint64, len(s.deferred))
	copy(out, s.deferred)
	return out
}

// Ticks reports how many Tick notifications this sensor has observed.
func (s *sensorModule) Ticks() int {
	return s.ticks
}

// bindRegistry injects the registry pointer once it exists; called by
// Build immediately after module.NewRegistry returns, before StartAll.
func (s *sensorModule) bindRegistry(reg *module.Registry) {
	s.reg = reg
}
