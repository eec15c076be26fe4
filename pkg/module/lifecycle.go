package module

import (
	"github.com/cuemby/scpfw/pkg/fwkerr"
	"github.com/cuemby/scpfw/pkg/metrics"
)

const (
	opStartAll = "module.Registry.StartAll"
	opStopAll  = "module.Registry.StopAll"
)

// StartAll drives every registered module through Initialize, then
// cfg.BindRounds rounds of Bind, then Start, walking the module table in
// index order at each stage. It refuses to run twice on the same
// Registry.
//
// Any non-success from a module callback is fatal: bring-up stops where
// it is, no partial teardown is attempted, and the configured Trap fires
// before the error is returned.
func (r *Registry) StartAll() error {
	if r.initialized {
		return fwkerr.New(opStartAll, fwkerr.StateError, nil)
	}

	r.stage = StageInitialize
	if err := r.initializeAll(); err != nil {
		return r.fatal(err)
	}

	r.stage = StageBind
	for round := 0; round < r.cfg.BindRounds; round++ {
		if err := r.bindAll(round); err != nil {
			return r.fatal(err)
		}
	}

	r.stage = StageStart
	if err := r.startAll(); err != nil {
		return r.fatal(err)
	}

	r.initialized = true
	r.log.Info().Msg("module initialization complete")
	return nil
}

// fatal records a failed bring-up and fires the platform trap. The trap
// does not return on real hardware; when a test's recorder trap does,
// the error still propagates out of StartAll.
func (r *Registry) fatal(err error) error {
	r.log.Error().Err(err).Stringer("stage", r.stage).Msg("bring-up failed")
	if r.cfg.Trap != nil {
		r.cfg.Trap(err)
	}
	return err
}

// StopAll drives every registered module through Stop, walking the
// module table in the same index order as bring-up. It is only valid
// after a successful StartAll.
func (r *Registry) StopAll() error {
	if !r.initialized {
		return fwkerr.New(opStopAll, fwkerr.StateError, nil)
	}

	r.stage = StageStop
	for _, mc := range r.modules {
		if err := r.stopModule(mc); err != nil {
			return err
		}
	}
	return nil
}

// validateDescriptor enforces the descriptor consistency rules: category
// must be one of the known kinds; a module's API count and its presence
// of ProcessBindRequest must agree (neither without the other); and a
// module that declares notifications must be able to receive their
// acknowledgements through ProcessNotification.
func validateDescriptor(desc Descriptor) error {
	if !desc.Category.valid() {
		return fwkerr.New(opStartAll, fwkerr.ParamError, nil)
	}
	hasAPIs := desc.APICount > 0
	hasBindHandler := desc.ProcessBindRequest != nil
	if hasAPIs != hasBindHandler {
		return fwkerr.New(opStartAll, fwkerr.ParamError, nil)
	}
	if desc.NotificationCount > 0 && desc.ProcessNotification == nil {
		return fwkerr.New(opStartAll, fwkerr.ParamError, nil)
	}
	return nil
}

func (r *Registry) initializeAll() error {
	for _, mc := range r.modules {
		if err := r.initializeModule(mc); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) initializeModule(mc *moduleContext) error {
	if err := validateDescriptor(mc.desc); err != nil {
		return err
	}

	// Static element tables are known before Init runs, so Init receives
	// the real element count. Dynamic tables are deferred until Init's
	// generator callback can run with the module's own state in place:
	// Init sees elementCount == 0 and the table is resolved only once
	// Init has returned.
	dynamic := mc.config.Elements.isDynamicSource()
	var elements []ElementDescriptor
	if !dynamic {
		elements = mc.config.Elements.resolve(mc.id)
	}

	if mc.desc.Init == nil {
		return fwkerr.New(opStartAll, fwkerr.ParamError, nil)
	}
	// A module may call Bind from within its own Init against a target
	// that has already finished Initialize (the "early bind" allowance in
	// bind.go); r.bindID must name this module as the requester for that
	// call the same way it does during the Bind stage proper.
	r.bindID = mc.id
	if err := mc.desc.Init(mc.id, uint16(len(elements)), mc.config.Data); err != nil {
		return err
	}

	if dynamic {
		elements = mc.config.Elements.resolve(mc.id)
	}
	mc.elements = make([]elementContext, len(elements))
	for i, ed := range elements {
		mc.elements[i] = elementContext{desc: ed}
	}

	if len(elements) > 0 && mc.desc.ElementInit == nil {
		return fwkerr.New(opStartAll, fwkerr.ParamError, nil)
	}
	for i := range mc.elements {
		if mc.elements[i].desc.Data == nil {
			return fwkerr.New(opStartAll, fwkerr.ParamError, nil)
		}
		r.bindID = elementID(mc.id, i)
		if err := mc.desc.ElementInit(r.bindID, mc.elements[i].desc.SubElementCount, mc.elements[i].desc.Data); err != nil {
			return err
		}
	}

	if mc.desc.PostInit != nil {
		if err := mc.desc.PostInit(mc.id); err != nil {
			return err
		}
	}

	// The module's state advances before its elements' so that no element
	// is ever observably ahead of its owning module.
	mc.state = StateInitialized
	metrics.ModuleStageTransitions.WithLabelValues(StateInitialized.String()).Inc()
	for i := range mc.elements {
		mc.elements[i].state = StateInitialized
	}
	return nil
}

func (r *Registry) bindAll(round int) error {
	for _, mc := range r.modules {
		if err := r.bindModule(mc, round); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) bindModule(mc *moduleContext, round int) error {
	if mc.desc.Bind != nil {
		r.bindID = mc.id
		if err := mc.desc.Bind(mc.id, round); err != nil {
			metrics.BindFailuresTotal.Inc()
			return err
		}
	}
	if round == r.cfg.BindRounds-1 {
		mc.state = StateBound
		metrics.ModuleStageTransitions.WithLabelValues(StateBound.String()).Inc()
	}

	return r.bindElements(mc, round)
}

func (r *Registry) bindElements(mc *moduleContext, round int) error {
	for i := range mc.elements {
		if mc.desc.Bind != nil {
			id := elementID(mc.id, i)
			r.bindID = id
			if err := mc.desc.Bind(id, round); err != nil {
				metrics.BindFailuresTotal.Inc()
				return err
			}
		}
		if round == r.cfg.BindRounds-1 {
			mc.elements[i].state = StateBound
			metrics.ModuleStageTransitions.WithLabelValues(StateBound.String()).Inc()
		}
	}
	return nil
}

func (r *Registry) startAll() error {
	for _, mc := range r.modules {
		if err := r.startModule(mc); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) startModule(mc *moduleContext) error {
	if mc.desc.Start != nil {
		if err := mc.desc.Start(mc.id); err != nil {
			return err
		}
	}
	mc.state = StateStarted
	metrics.ModuleStageTransitions.WithLabelValues(StateStarted.String()).Inc()

	for i := range mc.elements {
		id := elementID(mc.id, i)
		if mc.desc.Start != nil {
			if err := mc.desc.Start(id); err != nil {
				return err
			}
		}
		mc.elements[i].state = StateStarted
		metrics.ModuleStageTransitions.WithLabelValues(StateStarted.String()).Inc()
	}
	return nil
}

func (r *Registry) stopModule(mc *moduleContext) error {
	if mc.desc.Stop != nil {
		if err := mc.desc.Stop(mc.id); err != nil {
			return err
		}
	}
	mc.state = StateSuspended
	metrics.ModuleStageTransitions.WithLabelValues(StateSuspended.String()).Inc()

	for i := range mc.elements {
		id := elementID(mc.id, i)
		if mc.desc.Stop != nil {
			if err := mc.desc.Stop(id); err != nil {
				return err
			}
		}
		mc.elements[i].state = StateSuspended
		metrics.ModuleStageTransitions.WithLabelValues(StateSuspended.String()).Inc()
	}
	return nil
}
