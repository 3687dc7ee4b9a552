package core

import "sync"

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// Keyboard key pressed.
	// u32[0] = key code
	EVENT_CODE_KEY_PRESSED SystemEventCode = 0x02

	// Keyboard key released.
	// u32[0] = key code
	EVENT_CODE_KEY_RELEASED SystemEventCode = 0x03

	// Resized/resolution changed from the OS.
	// u32[0] = width, u32[1] = height
	EVENT_CODE_RESIZED SystemEventCode = 0x08

	// An asset on disk changed and should be reloaded.
	// Str = asset path
	EVENT_CODE_ASSET_CHANGED SystemEventCode = 0x09

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

type EventContext struct {
	U32 [4]uint32
	F32 [4]float32
	Str string
}

type FnOnEvent func(code SystemEventCode, sender interface{}, context EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

type eventSystemState struct {
	mu         sync.RWMutex
	registered map[SystemEventCode][]*registeredEvent
}

var eventState = &eventSystemState{
	registered: make(map[SystemEventCode][]*registeredEvent),
}

func EventRegister(code SystemEventCode, listener interface{}, callback FnOnEvent) {
	eventState.mu.Lock()
	defer eventState.mu.Unlock()

	eventState.registered[code] = append(eventState.registered[code], &registeredEvent{
		listener: listener,
		callback: callback,
	})
}

func EventUnregister(code SystemEventCode, listener interface{}) {
	eventState.mu.Lock()
	defer eventState.mu.Unlock()

	entries := eventState.registered[code]
	for i, entry := range entries {
		if entry.listener == listener {
			eventState.registered[code] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// EventFire dispatches to listeners in registration order. A listener
// returning true consumes the event and stops propagation.
func EventFire(code SystemEventCode, sender interface{}, context EventContext) bool {
	eventState.mu.RLock()
	entries := make([]*registeredEvent, len(eventState.registered[code]))
	copy(entries, eventState.registered[code])
	eventState.mu.RUnlock()

	for _, entry := range entries {
		if entry.callback(code, sender, context) {
			return true
		}
	}
	return false
}
