//go:build iocheck_callsite && !iocheck_notrace

// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package trace

import (
	"fmt"
	"runtime"
)

// Storage is a slot for at most one snapshot. In this build a snapshot is a
// single call-site location: cheaper than a full stack, and it can only point
// at the line that invoked Read/Write, not the deeper call chain.
type Storage struct {
	function string
	file     string
	line     int
	captured bool
}

// Supported reports whether this build can capture snapshots at all.
func Supported() bool { return true }

// Capture records the location that called the harness entry point invoking
// Capture. Capture must be called directly from (*Reader).Read or
// (*Writer).Write; skip counts additional frames to drop beyond that.
func (s *Storage) Capture(skip int) {
	// skip+2: runtime.Caller itself, Capture, the harness entry point.
	pc, file, line, ok := runtime.Caller(skip + 2)
	if !ok {
		s.captured = false
		return
	}
	s.function = ""
	if fn := runtime.FuncForPC(pc); fn != nil {
		s.function = fn.Name()
	}
	s.file, s.line, s.captured = file, line, true
}

// Clear discards any snapshot held by s.
func (s *Storage) Clear() { s.captured = false }

// Captured reports whether s currently holds a snapshot.
func (s *Storage) Captured() bool { return s.captured }

// Resolve is a no-op: call-site snapshots are captured pre-symbolized.
func (s *Storage) Resolve() {}

// Render produces the human-readable evidence report for op.
func (s *Storage) Render(op Op, verbose bool) string {
	if !s.captured {
		return "no error location found - the problem is most likely unrelated to split I/O handling"
	}
	loc := fmt.Sprintf("%s:%d", s.file, s.line)
	if s.function != "" {
		loc = s.function + "\n    at " + loc
	}
	return fmt.Sprintf("*******\nmost likely culprit in %s\n*******\n"+
		"build without the iocheck_callsite tag to get a full backtrace", loc)
}
