//go:build !debug

package herr

func maybePanic(e *Err) {}
