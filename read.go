// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iocheck

import (
	"fmt"
	"io"

	"code.hybscloud.com/iocheck/internal/trace"
	"code.hybscloud.com/iox"
)

// Reader is the adversarial stream handed to TestRead probes. It returns the
// same bytes that were passed to TestRead but splits them into multiple
// chunks as needed to surface mishandled short reads.
//
// Reader implements iox.Reader (io.Reader), io.ByteReader, and io.WriterTo.
// Elemental Read calls are the stressed operations; ReadByte and WriteTo
// carry full-consumption contracts and pass through unstressed, and
// composites built on Read (io.ReadFull, bufio) compose correctly because
// they account for the returned counts.
type Reader struct {
	mode readMode

	// breaking mode: remaining input.
	data []byte

	// searching mode: segments before and from the split position.
	left  []byte
	right []byte

	st *trace.Storage
}

type readMode uint8

const (
	readBreaking readMode = iota
	readSearching
)

func newBreakingReader(input []byte) *Reader {
	return &Reader{mode: readBreaking, data: input}
}

func newSearchingReader(input []byte, pos int, st *trace.Storage) *Reader {
	return &Reader{
		mode:  readSearching,
		left:  input[:pos],
		right: input[pos:],
		st:    st,
	}
}

// Read implements io.Reader with deliberately hostile progress.
//
// Breaking mode serves exactly one byte per call no matter how much room p
// has, and poisons p[1] with the complement of the byte that would have been
// read there, so code that trusts len(p) instead of the returned count sees
// corrupted data instead of silently passing. A zero-length p is a usage
// fault (ErrEmptyReadBuffer).
//
// Searching mode replays the input split at a fixed position: a call whose
// buffer straddles the split captures an evidence snapshot (this call site is
// the candidate culprit), poisons the first byte past the split, and returns
// an intentional short read.
func (r *Reader) Read(p []byte) (int, error) {
	switch r.mode {
	case readBreaking:
		if len(p) == 0 {
			panic(ErrEmptyReadBuffer)
		}
		if len(r.data) == 0 {
			return 0, iox.EOF
		}
		if len(p) > 1 && len(r.data) > 1 {
			p[1] = ^r.data[1]
		}
		p[0] = r.data[0]
		r.data = r.data[1:]
		return 1, nil

	default: // readSearching
		if len(p) == 0 {
			return 0, nil
		}
		if len(r.left) == 0 {
			if len(r.right) == 0 {
				return 0, iox.EOF
			}
			n := copy(p, r.right)
			r.right = r.right[n:]
			return n, nil
		}
		if len(p) > len(r.left) {
			// If there is a problem it is caused by whoever called Read at
			// the moment it split - now. Whether this split actually
			// reproduces the failure is unknown yet, so capture unresolved
			// and let the driver decide later.
			r.st.Capture(0)
			p[len(r.left)] = ^r.right[0]
			n := copy(p, r.left)
			r.left = nil
			return n, nil
		}
		n := copy(p, r.left)
		r.left = r.left[n:]
		return n, nil
	}
}

// ReadByte implements io.ByteReader. One byte of progress is already the
// harshest elemental granularity, so byte reads are served directly.
func (r *Reader) ReadByte() (byte, error) {
	var b [1]byte
	n, err := r.Read(b[:])
	if n == 0 {
		if err == nil {
			err = iox.EOF
		}
		return 0, err
	}
	return b[0], nil
}

// WriteTo implements io.WriterTo. Its contract already guarantees full
// consumption, so it bypasses the splitting behavior and drains the
// remaining input verbatim.
func (r *Reader) WriteTo(dst io.Writer) (int64, error) {
	var total int64
	for _, seg := range []*[]byte{&r.data, &r.left, &r.right} {
		for len(*seg) > 0 {
			n, err := dst.Write(*seg)
			if n > 0 {
				total += int64(n)
				*seg = (*seg)[n:]
			}
			if err != nil {
				return total, err
			}
			if n == 0 {
				return total, io.ErrShortWrite
			}
		}
	}
	return total, nil
}

// failureInfo is produced when the searching sweep reproduces a fault:
// the re-triggered fault, the lowest split position that triggered it, and
// the evidence snapshot captured at the suspicious Read.
type failureInfo struct {
	fault *fault
	pos   int
	st    *trace.Storage
}

// readError is the outcome of a failed read test: the original breaking-mode
// fault plus, when the sweep could correlate it, the failure info.
type readError struct {
	fault   *fault
	failure *failureInfo
}

// testReadNoPanic runs the two-phase read localization.
//
// Detecting: one breaking-mode run. If it survives one-byte reads with a
// poisoned tail, the probe handles short reads and the test passes.
//
// Searching: for each split position in ascending order, replay the probe
// against a stream split exactly there until one reproduces a fault. The
// sweep is sequential and deterministic, so the reported position is the
// lowest split that reproduces the failure.
func testReadNoPanic(input []byte, probe func(*Reader)) *readError {
	if len(input) < 2 {
		panic(ErrShortInput)
	}
	f := trap(func() { probe(newBreakingReader(input)) })
	if f == nil {
		return nil
	}
	// Splits at 0 and len(input) are non-informative boundaries; skip them.
	for pos := 1; pos < len(input); pos++ {
		st := new(trace.Storage)
		f2 := trap(func() { probe(newSearchingReader(input, pos, st)) })
		if f2 != nil {
			st.Resolve()
			return &readError{fault: f, failure: &failureInfo{fault: f2, pos: pos, st: st}}
		}
	}
	return &readError{fault: f}
}

// raise re-raises the test failure with the localization result folded into
// the message. The four phrasings distinguish whether the original and the
// re-triggered fault carried equal, different, or unknown messages.
func (e *readError) raise(o *Options) {
	msg1, ok1 := e.fault.message()
	if e.failure == nil {
		if !ok1 {
			// Nothing useful to add; re-propagate the original payload.
			panic(e.fault.value)
		}
		panic(fmt.Sprintf("iocheck: test failed at unknown position: %s", msg1))
	}

	pos := e.failure.pos
	evidence := e.failure.st.Render(trace.OpRead, o.verbose())
	msg2, ok2 := e.failure.fault.message()
	switch {
	case ok1 && ok2 && msg1 == msg2:
		panic(fmt.Sprintf("iocheck: test failed at position %d: %s\n%s", pos, msg1, evidence))
	case ok1 && ok2:
		panic(fmt.Sprintf("iocheck: test failed with message %q but a different message was encountered when breaking at position %d: %s\n%s", msg1, pos, msg2, evidence))
	case ok1:
		panic(fmt.Sprintf("iocheck: test failed with message %q but a different panic with unknown message was encountered at position %d\n%s", msg1, pos, evidence))
	case ok2:
		panic(fmt.Sprintf("iocheck: test failed with unknown message but a different panic was encountered at position %d: %s\n%s", pos, msg2, evidence))
	default:
		panic(fmt.Sprintf("iocheck: test failed at position %d with unknown messages\n%s", pos, evidence))
	}
}

// TestRead checks that probe correctly handles split reads.
//
// input is the byte sequence the probe will see through the Reader; probe
// should decode it and panic (for example via a plain assertion panic) when
// the decoded values are wrong. len(input) must be at least 2, otherwise
// TestRead panics with ErrShortInput.
//
// The probe must be pure over its explicit inputs: it is invoked once and, if
// it panics, invoked again multiple times with differently behaving readers.
// On failure TestRead panics with a composed diagnostic naming the lowest
// split position that reproduces the fault and the captured evidence.
func TestRead(input []byte, probe func(*Reader), opts ...Option) {
	o := applyOptions(opts)
	if err := testReadNoPanic(input, probe); err != nil {
		err.raise(&o)
	}
}
