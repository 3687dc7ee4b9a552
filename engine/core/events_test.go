package core

import "testing"

func TestEventFireReachesListeners(t *testing.T) {
	listener := struct{ name string }{"a"}
	var got []uint32
	EventRegister(EVENT_CODE_RESIZED, &listener, func(code SystemEventCode, sender interface{}, context EventContext) bool {
		got = append(got, context.U32[0], context.U32[1])
		return false
	})
	defer EventUnregister(EVENT_CODE_RESIZED, &listener)

	context := EventContext{}
	context.U32[0] = 800
	context.U32[1] = 600
	EventFire(EVENT_CODE_RESIZED, nil, context)

	if len(got) != 2 || got[0] != 800 || got[1] != 600 {
		t.Errorf("listener saw %v, want [800 600]", got)
	}
}

func TestEventConsumptionStopsPropagation(t *testing.T) {
	first := struct{ name string }{"first"}
	second := struct{ name string }{"second"}
	secondCalled := false

	EventRegister(EVENT_CODE_APPLICATION_QUIT, &first, func(SystemEventCode, interface{}, EventContext) bool {
		return true
	})
	EventRegister(EVENT_CODE_APPLICATION_QUIT, &second, func(SystemEventCode, interface{}, EventContext) bool {
		secondCalled = true
		return false
	})
	defer EventUnregister(EVENT_CODE_APPLICATION_QUIT, &first)
	defer EventUnregister(EVENT_CODE_APPLICATION_QUIT, &second)

	if !EventFire(EVENT_CODE_APPLICATION_QUIT, nil, EventContext{}) {
		t.Error("consumed event reported as unhandled")
	}
	if secondCalled {
		t.Error("listener after the consumer was still invoked")
	}
}

func TestEventUnregisterRemovesListener(t *testing.T) {
	listener := struct{ name string }{"gone"}
	called := false
	EventRegister(EVENT_CODE_KEY_RELEASED, &listener, func(SystemEventCode, interface{}, EventContext) bool {
		called = true
		return false
	})
	EventUnregister(EVENT_CODE_KEY_RELEASED, &listener)

	EventFire(EVENT_CODE_KEY_RELEASED, nil, EventContext{})
	if called {
		t.Error("unregistered listener was invoked")
	}
}
