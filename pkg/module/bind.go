package module

import (
	"github.com/cuemby/scpfw/pkg/fwkerr"
	"github.com/cuemby/scpfw/pkg/fwkid"
)

const opBind = "module.Registry.Bind"

// elementID builds the Element identifier for the i-th element of
// moduleID.
func elementID(moduleID fwkid.Id, i int) fwkid.Id {
	return fwkid.Element(moduleID, uint16(i))
}

// Bind is the bind broker: it is how one module's Bind callback resolves
// another module's API during the bind stage. r.bindID — the id currently
// running its Bind callback — is passed to the target's
// ProcessBindRequest as the requester, so the target can decide per
// caller whether to hand out its API.
//
// Binding is only accepted while the registry is in the Bind stage, or
// during Initialize against a module that has already finished its own
// Initialize — the early-bind allowance for modules that must resolve a
// dependency from within their own init path.
func (r *Registry) Bind(targetID, apiID fwkid.Id) (interface{}, error) {
	switch targetID.Kind() {
	case fwkid.KindModule, fwkid.KindElement, fwkid.KindSubElement:
	default:
		return nil, fwkerr.New(opBind, fwkerr.ParamError, nil)
	}
	if apiID.Kind() != fwkid.KindApi {
		return nil, fwkerr.New(opBind, fwkerr.ParamError, nil)
	}
	if !fwkid.Valid(targetID, r) || !fwkid.Valid(apiID, r) {
		return nil, fwkerr.New(opBind, fwkerr.ParamError, nil)
	}
	if targetID.ModuleIndex() != apiID.ModuleIndex() {
		return nil, fwkerr.New(opBind, fwkerr.ParamError, nil)
	}

	mc := r.ctx(targetID)

	stageOK := r.stage == StageBind ||
		(r.stage == StageInitialize && mc.state == StateInitialized)
	if !stageOK {
		return nil, fwkerr.New(opBind, fwkerr.StateError, nil)
	}

	if mc.desc.ProcessBindRequest == nil {
		return nil, fwkerr.New(opBind, fwkerr.ParamError, nil)
	}

	api, err := mc.desc.ProcessBindRequest(r.bindID, targetID, apiID)
	if err != nil {
		return nil, err
	}
	if api == nil {
		return nil, fwkerr.New(opBind, fwkerr.HandlerError, nil)
	}

	return api, nil
}
