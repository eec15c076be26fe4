package module

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	log "github.com/cuemby/scpfw/internal/log"
	"github.com/cuemby/scpfw/pkg/fwkerr"
	"github.com/cuemby/scpfw/pkg/fwkid"
	"github.com/cuemby/scpfw/pkg/notify"
	"github.com/cuemby/scpfw/pkg/platform"
	"github.com/cuemby/scpfw/pkg/scheduler"
)

// elementContext tracks the runtime state of one element.
type elementContext struct {
	desc  ElementDescriptor
	state State
}

// moduleContext tracks the runtime state of one module, including its
// resolved element table.
type moduleContext struct {
	id       fwkid.Id
	desc     Descriptor
	config   Config
	state    State
	elements []elementContext
}

// RegistryConfig controls the registry's pre-runtime behavior.
type RegistryConfig struct {
	// BindRounds is the number of bind rounds every module and element
	// goes through before Start. Two rounds resolve any mutual-dependency
	// pair; products whose dependency chains need more can raise it.
	// NewRegistry replaces a value below 1 with the default of 2.
	BindRounds int

	Scheduler scheduler.Config

	// Trap is invoked when bring-up fails fatally: any non-success from
	// init, element_init, post_init, bind, or start aborts StartAll
	// immediately, with no partial teardown, and the trap fires before
	// the error is returned. Products supply a halt/reset; tests supply a
	// recorder.
	Trap platform.Trap
}

// DefaultRegistryConfig is the two-round bind sequence most products
// need. The default trap panics, which is the right behavior for a
// process with no recovery path of its own.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		BindRounds: 2,
		Scheduler:  scheduler.DefaultConfig(),
		Trap:       platform.PanicTrap,
	}
}

// Registry owns the module table, the one Scheduler, and the one
// notify.Bus for a process. Construct exactly one per process; StartAll
// refuses to run a second time on the same instance.
type Registry struct {
	cfg RegistryConfig
	log zerolog.Logger

	modules []*moduleContext
	byName  map[string]fwkid.Id

	stage       Stage
	bindID      fwkid.Id
	initialized bool

	// RunID is this process's own diagnostic identifier — not an
	// fwkid.Id, since it identifies a run of the registry, not a
	// framework entity — stamped into every log line emitted by this
	// Registry so that two concurrent demo processes (or two e2e test
	// runs) are distinguishable in shared log output.
	RunID string

	Scheduler *scheduler.Scheduler
	Notify    *notify.Bus
}

// NewRegistry constructs a Registry for the given modules, in module-index
// order — descriptors[i]/configs[i] become module index i. len(descriptors)
// must equal len(configs).
func NewRegistry(cfg RegistryConfig, descriptors []Descriptor, configs []Config) (*Registry, error) {
	if cfg.BindRounds < 1 {
		cfg.BindRounds = DefaultRegistryConfig().BindRounds
	}
	if len(descriptors) != len(configs) {
		return nil, fwkerr.New("module.NewRegistry", fwkerr.ParamError, nil)
	}

	// The pool must hold at least one record per declared notification
	// (a full fan-out must never exhaust it), with a floor of 64.
	notifCapacity := 0
	for i := range descriptors {
		notifCapacity += int(descriptors[i].NotificationCount)
	}
	if cfg.Scheduler.PoolSize < notifCapacity {
		cfg.Scheduler.PoolSize = notifCapacity
	}
	if cfg.Scheduler.PoolSize < scheduler.DefaultConfig().PoolSize {
		cfg.Scheduler.PoolSize = scheduler.DefaultConfig().PoolSize
	}

	runID := uuid.NewString()
	r := &Registry{
		cfg:       cfg,
		log:       log.WithRunID(log.WithComponent("module"), runID),
		byName:    make(map[string]fwkid.Id),
		RunID:     runID,
		Scheduler: scheduler.NewScheduler(cfg.Scheduler),
		Notify:    notify.New(),
	}

	for i := range descriptors {
		id := fwkid.NewModule(uint16(i))
		mc := &moduleContext{id: id, desc: descriptors[i], config: configs[i]}
		r.modules = append(r.modules, mc)
		if descriptors[i].Name != "" {
			r.byName[descriptors[i].Name] = id
		}
	}

	return r, nil
}

// ModuleID resolves a module by the Name its Descriptor was registered
// with, for product wiring code that would rather not hardcode indices.
func (r *Registry) ModuleID(name string) (fwkid.Id, bool) {
	id, ok := r.byName[name]
	return id, ok
}

func (r *Registry) ctx(id fwkid.Id) *moduleContext {
	return r.modules[id.ModuleIndex()]
}

// State reports the current lifecycle state of id, module or element.
func (r *Registry) State(id fwkid.Id) (State, error) {
	switch id.Kind() {
	case fwkid.KindModule:
		if int(id.ModuleIndex()) >= len(r.modules) {
			return 0, fwkerr.New("module.State", fwkerr.ParamError, nil)
		}
		return r.ctx(id).state, nil
	case fwkid.KindElement, fwkid.KindSubElement:
		if int(id.ModuleIndex()) >= len(r.modules) {
			return 0, fwkerr.New("module.State", fwkerr.ParamError, nil)
		}
		mc := r.ctx(id)
		idx := int(id.ElementIndex())
		if idx >= len(mc.elements) {
			return 0, fwkerr.New("module.State", fwkerr.ParamError, nil)
		}
		return mc.elements[idx].state, nil
	default:
		return 0, fwkerr.New("module.State", fwkerr.ParamError, nil)
	}
}

// ElementName returns the name of the element id names. Returns an error
// if id is not an Element or SubElement identifier, or does not resolve
// to a registered element.
func (r *Registry) ElementName(id fwkid.Id) (string, error) {
	switch id.Kind() {
	case fwkid.KindElement, fwkid.KindSubElement:
	default:
		return "", fwkerr.New("module.ElementName", fwkerr.ParamError, nil)
	}
	if int(id.ModuleIndex()) >= len(r.modules) {
		return "", fwkerr.New("module.ElementName", fwkerr.ParamError, nil)
	}
	mc := r.ctx(id)
	idx := int(id.ElementIndex())
	if idx >= len(mc.elements) {
		return "", fwkerr.New("module.ElementName", fwkerr.ParamError, nil)
	}
	return mc.elements[idx].desc.Name, nil
}

// ElementCountOf reports how many elements the module id names has.
func (r *Registry) ElementCountOf(id fwkid.Id) (int, error) {
	if id.Kind() != fwkid.KindModule || int(id.ModuleIndex()) >= len(r.modules) {
		return 0, fwkerr.New("module.ElementCountOf", fwkerr.ParamError, nil)
	}
	return len(r.ctx(id).elements), nil
}

// SubElementCountOf reports how many sub-elements the element id names
// has.
func (r *Registry) SubElementCountOf(id fwkid.Id) (int, error) {
	if id.Kind() != fwkid.KindElement || !fwkid.Valid(id, r) {
		return 0, fwkerr.New("module.SubElementCountOf", fwkerr.ParamError, nil)
	}
	return int(r.ctx(id).elements[id.ElementIndex()].desc.SubElementCount), nil
}

// Data returns the opaque per-entity data pointer for a module or element
// id: the module's Config.Data, or the owning element's
// ElementDescriptor.Data. Unlike the other accessors, an invalid id
// returns the nil sentinel rather than an error.
func (r *Registry) Data(id fwkid.Id) interface{} {
	if !fwkid.Valid(id, r) {
		return nil
	}
	switch id.Kind() {
	case fwkid.KindModule:
		return r.ctx(id).config.Data
	case fwkid.KindElement, fwkid.KindSubElement:
		mc := r.ctx(id)
		idx := int(id.ElementIndex())
		if idx >= len(mc.elements) {
			return nil
		}
		return mc.elements[idx].desc.Data
	default:
		return nil
	}
}

// fwkid.Counts implementation, so fwkid.Valid can check ids against the
// live table without fwkid importing this package.

func (r *Registry) ModuleCount() int {
	return len(r.modules)
}

func (r *Registry) ElementCount(moduleIdx uint16) int {
	if int(moduleIdx) >= len(r.modules) {
		return 0
	}
	return len(r.modules[moduleIdx].elements)
}

func (r *Registry) SubElementCount(moduleIdx, elementIdx uint16) int {
	if int(moduleIdx) >= len(r.modules) {
		return 0
	}
	mc := r.modules[moduleIdx]
	if int(elementIdx) >= len(mc.elements) {
		return 0
	}
	return int(mc.elements[elementIdx].desc.SubElementCount)
}

func (r *Registry) ApiCount(moduleIdx uint16) int {
	if int(moduleIdx) >= len(r.modules) {
		return 0
	}
	return int(r.modules[moduleIdx].desc.APICount)
}

func (r *Registry) EventCount(moduleIdx uint16) int {
	if int(moduleIdx) >= len(r.modules) {
		return 0
	}
	return int(r.modules[moduleIdx].desc.EventCount)
}

func (r *Registry) NotificationCount(moduleIdx uint16) int {
	if int(moduleIdx) >= len(r.modules) {
		return 0
	}
	return int(r.modules[moduleIdx].desc.NotificationCount)
}
