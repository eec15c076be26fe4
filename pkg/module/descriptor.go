package module

import (
	"github.com/cuemby/scpfw/pkg/fwkid"
	"github.com/cuemby/scpfw/pkg/scheduler"
)

// ElementDescriptor describes one element of a module: its name, the
// product-supplied data its init callback receives, and how many
// sub-elements it exposes.
type ElementDescriptor struct {
	Name            string
	Data            interface{}
	SubElementCount uint16
}

// ElementsSource is the sum type behind a module's element table: either
// a fixed table known at construction time, or a generator that builds
// one once the module's own Init callback has run (used by modules whose
// element count depends on runtime-discovered hardware).
type ElementsSource struct {
	static    []ElementDescriptor
	dynamic   func(id fwkid.Id) []ElementDescriptor
	isDynamic bool
}

// StaticElements builds an ElementsSource from a fixed table, known before
// the registry starts.
func StaticElements(elements []ElementDescriptor) ElementsSource {
	return ElementsSource{static: elements}
}

// DynamicElements builds an ElementsSource whose element table is produced
// by gen, called once during the module's Initialize stage, after Init.
func DynamicElements(gen func(id fwkid.Id) []ElementDescriptor) ElementsSource {
	return ElementsSource{dynamic: gen, isDynamic: true}
}

func (e ElementsSource) resolve(id fwkid.Id) []ElementDescriptor {
	if e.isDynamic {
		return e.dynamic(id)
	}
	return e.static
}

// isDynamicSource reports whether e's element table must be deferred
// until after the owning module's Init callback has run.
func (e ElementsSource) isDynamicSource() bool {
	return e.isDynamic
}

// Config is the product-supplied configuration for one module: its
// opaque data blob (passed to Init) and its element table.
type Config struct {
	Data     interface{}
	Elements ElementsSource
}

// Category classifies a module's role in the product. It is not
// interpreted by the lifecycle driver beyond the validity check in
// initializeModule; it exists so product code and logs can distinguish a
// driver from the protocol layer sitting on top of it.
type Category int

const (
	CategoryDriver Category = iota
	CategoryHal
	CategoryProtocol
	CategoryService
)

func (c Category) String() string {
	switch c {
	case CategoryDriver:
		return "driver"
	case CategoryHal:
		return "hal"
	case CategoryProtocol:
		return "protocol"
	case CategoryService:
		return "service"
	default:
		return "unknown"
	}
}

func (c Category) valid() bool {
	return c >= CategoryDriver && c <= CategoryService
}

// Descriptor is a module's behavior: the set of callbacks the lifecycle
// driver and bind broker invoke at each stage. Init is always required;
// ElementInit, ProcessBindRequest, and ProcessNotification are required
// under the conditions noted on each field; every other callback is
// optional and skipped when nil.
type Descriptor struct {
	Name     string
	Category Category

	APICount          uint16
	EventCount        uint16
	NotificationCount uint16

	// Init is called once per module during Initialize. For a module with
	// a static element table, elementCount is already known and the table
	// is built before Init runs. For a module with a dynamic element
	// table, elementCount is 0 here and the table is resolved from the
	// generator only after Init returns — Init may not yet assume its
	// elements exist.
	Init func(id fwkid.Id, elementCount uint16, data interface{}) error

	// ElementInit is called once per element, after Init, during
	// Initialize. Required whenever the module has any elements.
	ElementInit func(id fwkid.Id, subElementCount uint16, data interface{}) error

	// PostInit runs once per module after every one of its elements has
	// been initialized.
	PostInit func(id fwkid.Id) error

	// Bind is called once per bind round for the module itself and, if
	// present, once per round for each of its elements.
	Bind func(id fwkid.Id, round int) error

	// ProcessBindRequest answers another module's request to bind to one
	// of this module's APIs. Required whenever APICount > 0.
	ProcessBindRequest func(requesterID, targetID, apiID fwkid.Id) (api interface{}, err error)

	// Start is called once per module, and once per element, when the
	// registry transitions into the Start stage.
	Start func(id fwkid.Id) error

	// Stop is the mirror of Start, called when the registry is torn down.
	Stop func(id fwkid.Id) error

	// ProcessEvent handles an event or request addressed to this module
	// or one of its elements. resp is the response record the dispatch
	// loop prepared (source/target swapped, same id and cookie): when
	// e.ResponseRequested is set, populate resp.Params and return nil to
	// answer immediately, or set resp.IsDelayedResponse to promise the
	// answer later through a Submit carrying the same cookie.
	ProcessEvent func(e *scheduler.Event, resp *scheduler.Event) error

	// ProcessNotification handles a notification delivered to this module
	// — one it subscribed to, or a subscriber's acknowledgement of one it
	// published with ResponseRequested set (IsResponse distinguishes the
	// two). Same response contract as ProcessEvent. Required whenever
	// NotificationCount > 0.
	ProcessNotification func(e *scheduler.Event, resp *scheduler.Event) error
}
