package platform

// Trap is invoked when lifecycle bring-up fails fatally: any non-success
// from init/element_init/post_init/bind/start aborts bring-up immediately
// with no partial teardown. Products supply their own Trap — halting,
// resetting, or in this repo's demo CLI, logging and exiting.
type Trap func(err error)

// PanicTrap is the default Trap used by tests and anywhere a product has
// not supplied its own: it panics with err, which is appropriate for a
// process that has no recovery path of its own.
func PanicTrap(err error) {
	panic(err)
}
