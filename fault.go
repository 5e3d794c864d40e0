// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iocheck

import "fmt"

// fault is an intercepted abnormal termination of a probe: the recovered
// panic value, retained so that the drivers can compare and re-raise it.
type fault struct {
	value any
}

// message extracts a human-readable message from the fault payload when the
// payload carries one. Mirrors what the runtime's panic printer understands:
// plain strings, errors, and Stringers. Anything else is opaque.
func (f *fault) message() (string, bool) {
	switch v := f.value.(type) {
	case string:
		return v, true
	case error:
		return v.Error(), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}

// trap invokes fn, intercepting a panic instead of letting it tear down the
// test run. A nil return means fn completed normally.
//
// Precondition (stated to the caller, not enforceable here): fn and anything
// it closes over must be safe to invoke again after an interception. fn must
// fail by panicking; runtime.Goexit is not trappable.
func trap(fn func()) (f *fault) {
	defer func() {
		if v := recover(); v != nil {
			f = &fault{value: v}
		}
	}()
	fn()
	return nil
}
