package modelchecker

import (
	"testing"
)

func TestAbortControllerNew(t *testing.T) {
	controller := NewAbortController()
	signal := controller.Signal()
	if signal.Aborted() {
		t.Error("new signal should not be aborted")
	}
	if signal.Reason() != nil {
		t.Error("new signal should have a nil reason")
	}
}

func TestAbortControllerAbort(t *testing.T) {
	controller := NewAbortController()
	signal := controller.Signal()

	controller.Abort("pool closed")

	if !signal.Aborted() {
		t.Error("signal should be aborted after Abort")
	}
	if reason, ok := signal.Reason().(string); !ok || reason != "pool closed" {
		t.Errorf("reason = %v, want %q", signal.Reason(), "pool closed")
	}
}

func TestAbortControllerAbortIsLatched(t *testing.T) {
	controller := NewAbortController()
	signal := controller.Signal()

	controller.Abort("first")
	controller.Abort("second")

	if reason := signal.Reason(); reason != "first" {
		t.Errorf("reason = %v, want %q (first abort wins)", reason, "first")
	}
}

func TestAbortControllerSignalReturnsTheSameSignal(t *testing.T) {
	controller := NewAbortController()
	if controller.Signal() != controller.Signal() {
		t.Error("Signal() should return the same *AbortSignal on every call")
	}
}
