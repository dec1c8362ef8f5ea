package core

import "sync"

type EventContext struct {
	Data struct {
		I64 [2]int64
		U64 [2]uint64
		F64 [2]float64

		I32 [4]int32
		U32 [4]uint32
		F32 [4]float32
	}
}

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EventCodeApplicationQuit SystemEventCode = 0x01

	// Resized/resolution changed from the OS.
	/* Context usage:
	 * u32 width = data.Data.U32[0];
	 * u32 height = data.Data.U32[1];
	 */
	EventCodeResized SystemEventCode = 0x02

	// A scene changed during its update and views showing it should redraw.
	EventCodeSceneUpdated SystemEventCode = 0x03

	// A view finished drawing a frame.
	/* Context usage:
	 * f64 frame_ms = data.Data.F64[0];
	 */
	EventCodeFrameRendered SystemEventCode = 0x04

	// Keyboard key pressed or released.
	/* Context usage:
	 * u32 key_code = data.Data.U32[0];
	 */
	EventCodeKeyPressed  SystemEventCode = 0x05
	EventCodeKeyReleased SystemEventCode = 0x06

	MaxEventCode SystemEventCode = 0xFF
)

// This should be more than enough codes...
const MaxMessageCodes = 4096

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

type eventCodeEntry struct {
	events []*registeredEvent
}

type eventSystemState struct {
	// Lookup table for event codes.
	registered [MaxMessageCodes]eventCodeEntry
}

var onceEvent sync.Once
var eventState *eventSystemState = nil

// Should return true if handled.
type FnOnEvent func(code SystemEventCode, sender interface{}, listenerInst interface{}, data EventContext) bool

func EventInitialize() bool {
	onceEvent.Do(func() {
		eventState = &eventSystemState{}
	})
	return eventState != nil
}

func EventShutdown() error {
	if eventState == nil {
		return nil
	}
	// Free the events arrays. And objects pointed to should be destroyed on their own.
	for i := 0; i < MaxMessageCodes; i++ {
		eventState.registered[i].events = nil
	}
	return nil
}

/**
 * Register to listen for when events are sent with the provided code. Events with duplicate
 * listener/callback combos will not be registered again and will cause this to return false.
 */
func EventRegister(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if !EventInitialize() || code < 0 || code >= MaxMessageCodes {
		return false
	}
	entry := &eventState.registered[code]
	for _, e := range entry.events {
		if e.listener == listener {
			LogDebug("EventRegister: listener already registered for code %d", code)
			return false
		}
	}
	entry.events = append(entry.events, &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

/**
 * Unregister from listening for when events are sent with the provided code. If no matching
 * registration is found, this function returns false.
 */
func EventUnregister(code SystemEventCode, listener interface{}) bool {
	if eventState == nil || code < 0 || code >= MaxMessageCodes {
		return false
	}
	entry := &eventState.registered[code]
	for i, e := range entry.events {
		if e.listener == listener {
			entry.events = append(entry.events[:i], entry.events[i+1:]...)
			return true
		}
	}
	// Not found.
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 */
func EventFire(code SystemEventCode, sender interface{}, context EventContext) bool {
	if eventState == nil || code < 0 || code >= MaxMessageCodes {
		return false
	}
	// Listeners may unregister while handling, iterate over a snapshot.
	events := append([]*registeredEvent(nil), eventState.registered[code].events...)
	for _, e := range events {
		if e.callback(code, sender, e.listener, context) {
			// Message has been handled, do not send to other listeners.
			return true
		}
	}
	return false
}
