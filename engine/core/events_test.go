package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRegisterFireUnregister(t *testing.T) {
	require.True(t, EventInitialize())

	type listener struct{ calls int }
	l := &listener{}
	handler := func(code SystemEventCode, sender interface{}, inst interface{}, data EventContext) bool {
		inst.(*listener).calls++
		return false
	}

	require.True(t, EventRegister(EventCodeSceneUpdated, l, handler))
	assert.False(t, EventRegister(EventCodeSceneUpdated, l, handler), "duplicate registration")

	EventFire(EventCodeSceneUpdated, nil, EventContext{})
	EventFire(EventCodeSceneUpdated, nil, EventContext{})
	assert.Equal(t, 2, l.calls)

	require.True(t, EventUnregister(EventCodeSceneUpdated, l))
	EventFire(EventCodeSceneUpdated, nil, EventContext{})
	assert.Equal(t, 2, l.calls)
	assert.False(t, EventUnregister(EventCodeSceneUpdated, l))
}

func TestEventHandledStopsPropagation(t *testing.T) {
	require.True(t, EventInitialize())

	var order []string
	a, b := "a", "b"
	EventRegister(EventCodeFrameRendered, &a, func(SystemEventCode, interface{}, interface{}, EventContext) bool {
		order = append(order, "a")
		return true
	})
	EventRegister(EventCodeFrameRendered, &b, func(SystemEventCode, interface{}, interface{}, EventContext) bool {
		order = append(order, "b")
		return false
	})
	defer EventUnregister(EventCodeFrameRendered, &a)
	defer EventUnregister(EventCodeFrameRendered, &b)

	assert.True(t, EventFire(EventCodeFrameRendered, nil, EventContext{}))
	assert.Equal(t, []string{"a"}, order)
}
