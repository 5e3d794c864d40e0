//go:build !iocheck_callsite && !iocheck_notrace

// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package trace

import (
	"fmt"
	"runtime"
	"strings"
)

// maxDepth bounds captured stacks. Probe call chains are short; anything
// deeper than this is runtime and testing scaffolding.
const maxDepth = 64

type frame struct {
	function string
	file     string
	line     int
}

// Storage is a slot for at most one snapshot. The zero value is empty and
// ready to use. Storage is single-goroutine, like the drivers that own it.
type Storage struct {
	pcs      []uintptr
	frames   []frame
	captured bool
	resolved bool
}

// Supported reports whether this build can capture snapshots at all.
func Supported() bool { return true }

// Capture records the current call stack, starting at Capture's caller,
// without symbolizing it. A previous snapshot in s is replaced.
func (s *Storage) Capture(skip int) {
	var pcs [maxDepth]uintptr
	n := runtime.Callers(skip+2, pcs[:])
	s.pcs = append(s.pcs[:0], pcs[:n]...)
	s.frames = nil
	s.captured = true
	s.resolved = false
}

// Clear discards any snapshot held by s.
func (s *Storage) Clear() {
	s.captured = false
	s.resolved = false
	s.pcs = s.pcs[:0]
	s.frames = nil
}

// Captured reports whether s currently holds a snapshot.
func (s *Storage) Captured() bool { return s.captured }

// Resolve symbolizes the snapshot in place. Resolving an empty or already
// resolved snapshot is a no-op, so display paths may call it defensively.
func (s *Storage) Resolve() {
	if !s.captured || s.resolved {
		return
	}
	frames := runtime.CallersFrames(s.pcs)
	for {
		fr, more := frames.Next()
		if fr.Function != "" || fr.File != "" {
			s.frames = append(s.frames, frame{function: fr.Function, file: fr.File, line: fr.Line})
		}
		if !more {
			break
		}
	}
	s.resolved = true
}

// Render produces the human-readable evidence report for op. The snapshot is
// resolved first if it has not been already.
func (s *Storage) Render(op Op, verbose bool) string {
	if !s.captured {
		return "no backtrace found - the problem is most likely unrelated to split I/O handling"
	}
	s.Resolve()

	var b strings.Builder
	if culprit := s.culpritFrame(op); culprit != nil {
		fmt.Fprintf(&b, "*******\nmost likely culprit in %s\n", culprit.function)
		if culprit.file != "" {
			fmt.Fprintf(&b, "    at %s:%d\n", culprit.file, culprit.line)
		}
		b.WriteString("*******\n")
		if verbose {
			s.writeFrames(&b)
		} else {
			b.WriteString("set IOCHECK_BACKTRACE=1 to see the full backtrace")
		}
		return b.String()
	}

	// Entry symbol not found (tail calls, inlining, unexpected shapes):
	// fall back to the whole stack rather than guessing.
	s.writeFrames(&b)
	return b.String()
}

// culpritFrame scans innermost first for the harness entry symbol matching op
// and returns the next outer frame, or nil when the scan fails.
func (s *Storage) culpritFrame(op Op) *frame {
	sym := op.entrySymbol()
	for i := range s.frames {
		if s.frames[i].function == sym && i+1 < len(s.frames) {
			return &s.frames[i+1]
		}
	}
	return nil
}

func (s *Storage) writeFrames(b *strings.Builder) {
	b.WriteString("backtrace:\n")
	for i := range s.frames {
		fmt.Fprintf(b, "%3d: %s\n", i, s.frames[i].function)
		if s.frames[i].file != "" {
			fmt.Fprintf(b, "       %s:%d\n", s.frames[i].file, s.frames[i].line)
		}
	}
}
