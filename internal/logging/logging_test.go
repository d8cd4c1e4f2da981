package logging

import "testing"

func TestSetDebugTogglesDebugMode(t *testing.T) {
	SetDebug(false)
	if DebugMode() {
		t.Fatal("expected debug mode off")
	}
	SetDebug(true)
	if !DebugMode() {
		t.Fatal("expected debug mode on")
	}
	SetDebug(false)
}

func TestCategoryLoggersAreSingletons(t *testing.T) {
	a := Elevate()
	b := Elevate()
	if a != b {
		t.Fatal("expected the same *Logger instance for repeated calls to the same category")
	}
}

func TestTimerStop(t *testing.T) {
	timer := StartTimer(Search(), "unit-test")
	d := timer.Stop()
	if d < 0 {
		t.Fatal("elapsed duration should not be negative")
	}
}
