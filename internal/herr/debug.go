//go:build debug

package herr

// maybePanic makes Internal errors fatal in debug builds, the idiomatic
// stand-in for faulterr()'s cfg!(debug_assertions) panic.
func maybePanic(e *Err) {
	panic(e)
}
