package demo

import (
	"github.com/cuemby/scpfw/pkg/fwkerr"
	"github.com/cuemby/scpfw/pkg/fwkid"
	"github.com/cuemby/scpfw/pkg/module"
)

// ClockAPI is the capability clock hands out through bind. It is the
// typed API handle other modules acquire via Registry.Bind — never a
// shared pointer into clock's own state.
type ClockAPI interface {
	GetRateHz() uint32
}

// ClockAPIIndex is the only API index clock declares.
const ClockAPIIndex = 0

type clockModule struct {
	id    fwkid.Id
	rates map[string]uint32
}

type clockAPI struct {
	m *clockModule
}

func (a *clockAPI) GetRateHz() uint32 {
	return a.m.rates["probe0"]
}

// NewClockDescriptor builds the clock module's descriptor and config. It
// is a Driver with one API and no elements or events of its own.
func NewClockDescriptor() (module.Descriptor, module.Config) {
	m := &clockModule{rates: map[string]uint32{"probe0": 1_000_000}}

	desc := module.Descriptor{
		Name:     "clock",
		Category: module.CategoryDriver,
		APICount: 1,
		Init: func(id fwkid.Id, elementCount uint16, data interface{}) error {
			m.id = id
			return nil
		},
		ProcessBindRequest: func(requesterID, targetID, apiID fwkid.Id) (interface{}, error) {
			if apiID.ApiIndex() != ClockAPIIndex {
				return nil, fwkerr.New("demo.clock.ProcessBindRequest", fwkerr.ParamError, nil)
			}
			return &clockAPI{m: m}, nil
		},
	}
	cfg := module.Config{Elements: module.StaticElements(nil)}
	return desc, cfg
}
