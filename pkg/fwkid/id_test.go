package fwkid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		id   Id
		kind Kind
	}{
		{"module", NewModule(3), KindModule},
		{"element", NewElement(3, 7), KindElement},
		{"sub_element", NewSubElement(3, 7, 1), KindSubElement},
		{"api", NewAPI(3, 0), KindApi},
		{"event", NewEvent(3, 2), KindEvent},
		{"notification", NewNotification(3, 5), KindNotification},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.id.Kind())
			assert.True(t, tt.id.Is(tt.kind))
			assert.Equal(t, uint16(3), tt.id.ModuleIndex())
		})
	}
}

func TestIndexRoundTrip(t *testing.T) {
	elem := NewElement(4, 9)
	assert.Equal(t, uint16(9), elem.ElementIndex())

	sub := NewSubElement(4, 9, 2)
	assert.Equal(t, uint16(9), sub.ElementIndex())
	assert.Equal(t, uint16(2), sub.SubElementIndex())

	api := NewAPI(4, 1)
	assert.Equal(t, uint16(1), api.ApiIndex())

	ev := NewEvent(4, 6)
	assert.Equal(t, uint16(6), ev.EventIndex())

	notif := NewNotification(4, 0)
	assert.Equal(t, uint16(0), notif.NotificationIndex())
}

func TestNoneSentinel(t *testing.T) {
	var id Id
	assert.True(t, id.IsNone())
	assert.Equal(t, KindNone, id.Kind())
	assert.Equal(t, None, id)
}

func TestEquality(t *testing.T) {
	a := NewElement(1, 2)
	b := NewElement(1, 2)
	c := NewElement(1, 3)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestParentModule(t *testing.T) {
	tests := []struct {
		name string
		id   Id
	}{
		{"from module", NewModule(5)},
		{"from element", NewElement(5, 1)},
		{"from sub_element", NewSubElement(5, 1, 0)},
		{"from api", NewAPI(5, 0)},
		{"from event", NewEvent(5, 0)},
		{"from notification", NewNotification(5, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent := ParentModule(tt.id)
			assert.Equal(t, KindModule, parent.Kind())
			assert.Equal(t, uint16(5), parent.ModuleIndex())
		})
	}
}

func TestParentModulePanicsOnNone(t *testing.T) {
	assert.Panics(t, func() { ParentModule(None) })
}

func TestElementExtension(t *testing.T) {
	mod := NewModule(2)
	elem := Element(mod, 3)
	require.Equal(t, KindElement, elem.Kind())
	assert.Equal(t, uint16(2), elem.ModuleIndex())
	assert.Equal(t, uint16(3), elem.ElementIndex())

	sub := SubElement(elem, 3, 1)
	assert.Equal(t, uint16(2), sub.ModuleIndex())
	assert.Equal(t, uint16(3), sub.ElementIndex())
	assert.Equal(t, uint16(1), sub.SubElementIndex())

	api := API(mod, 0)
	assert.Equal(t, KindApi, api.Kind())
}

func TestWrongKindAccessorPanics(t *testing.T) {
	mod := NewModule(1)
	assert.Panics(t, func() { mod.ElementIndex() })
	assert.Panics(t, func() { mod.ApiIndex() })

	elem := NewElement(1, 0)
	assert.Panics(t, func() { elem.SubElementIndex() })
	assert.Panics(t, func() { elem.EventIndex() })

	assert.Panics(t, func() { None.ModuleIndex() })
}

// fakeCounts is a minimal Counts implementation for validity tests.
type fakeCounts struct {
	modules       int
	elements      map[uint16]int
	subElements   map[[2]uint16]int
	apis          map[uint16]int
	events        map[uint16]int
	notifications map[uint16]int
}

func (f fakeCounts) ModuleCount() int { return f.modules }
func (f fakeCounts) ElementCount(moduleIdx uint16) int {
	return f.elements[moduleIdx]
}
func (f fakeCounts) SubElementCount(moduleIdx, elementIdx uint16) int {
	return f.subElements[[2]uint16{moduleIdx, elementIdx}]
}
func (f fakeCounts) ApiCount(moduleIdx uint16) int          { return f.apis[moduleIdx] }
func (f fakeCounts) EventCount(moduleIdx uint16) int        { return f.events[moduleIdx] }
func (f fakeCounts) NotificationCount(moduleIdx uint16) int { return f.notifications[moduleIdx] }

func TestValid(t *testing.T) {
	reg := fakeCounts{
		modules:       2,
		elements:      map[uint16]int{0: 3},
		subElements:   map[[2]uint16]int{{0, 0}: 2},
		apis:          map[uint16]int{0: 1},
		events:        map[uint16]int{0: 4},
		notifications: map[uint16]int{0: 1},
	}

	assert.True(t, Valid(None, reg))
	assert.True(t, Valid(NewModule(0), reg))
	assert.False(t, Valid(NewModule(5), reg))
	assert.True(t, Valid(NewElement(0, 2), reg))
	assert.False(t, Valid(NewElement(0, 3), reg))
	assert.True(t, Valid(NewSubElement(0, 0, 1), reg))
	assert.False(t, Valid(NewSubElement(0, 0, 2), reg))
	assert.True(t, Valid(NewAPI(0, 0), reg))
	assert.False(t, Valid(NewAPI(0, 1), reg))
	assert.True(t, Valid(NewEvent(0, 3), reg))
	assert.False(t, Valid(NewEvent(0, 4), reg))
	assert.True(t, Valid(NewNotification(0, 0), reg))
	assert.False(t, Valid(NewNotification(0, 1), reg))
	assert.True(t, Valid(NewModule(1), reg))
	assert.False(t, Valid(NewElement(1, 0), reg), "module 1 declares no elements")
}
