// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package trace provides lazily captured, lazily resolved call-stack
// snapshots used to point at the call frame that mishandled a split I/O
// operation.
//
// Snapshot lifecycle: empty → captured (raw program counters) → resolved
// (symbolized frames). Capture is deliberately cheap because most snapshots
// are never displayed; Resolve runs at most once, immediately before
// rendering.
//
// Backend selection is a build-time decision, one file per variant, so the
// disabled path costs nothing at runtime:
//   - default: multi-frame capture via runtime.Callers plus a culprit scan;
//   - iocheck_callsite: single-frame capture via runtime.Caller, reporting
//     only the line that invoked Read/Write;
//   - iocheck_notrace: capture compiled out entirely.
//
// The culprit scan walks the resolved frames innermost first, finds the
// harness's own Read/Write entry symbol, and blames the next outer frame.
// This is a heuristic: inlining or unusual call shapes can shift the reported
// frame. Treat the output as evidence, not proof.
package trace

// Op identifies which adversarial entry point a snapshot belongs to.
type Op uint8

const (
	OpRead Op = iota
	OpWrite
)

func (op Op) String() string {
	switch op {
	case OpRead:
		return "Read"
	case OpWrite:
		return "Write"
	default:
		return "Op(unknown)"
	}
}

// Fully qualified symbols of the harness entry points the culprit scan keys
// on. The frame after one of these, walking outward, is the probable culprit.
const (
	symReaderRead  = "code.hybscloud.com/iocheck.(*Reader).Read"
	symWriterWrite = "code.hybscloud.com/iocheck.(*Writer).Write"
)

func (op Op) entrySymbol() string {
	if op == OpWrite {
		return symWriterWrite
	}
	return symReaderRead
}
