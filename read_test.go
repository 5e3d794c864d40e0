// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iocheck_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"code.hybscloud.com/iocheck"
)

// panicMessage runs fn, which must panic, and returns the panic payload
// rendered as a string.
func panicMessage(t *testing.T, fn func()) string {
	t.Helper()
	var msg string
	ok := func() (panicked bool) {
		defer func() {
			if v := recover(); v != nil {
				panicked = true
				switch m := v.(type) {
				case string:
					msg = m
				case error:
					msg = m.Error()
				default:
					msg = fmt.Sprint(v)
				}
			}
		}()
		fn()
		return false
	}()
	if !ok {
		t.Fatalf("expected a panic, got none")
	}
	return msg
}

func TestRead_CorrectProbe_Passes(t *testing.T) {
	iocheck.TestRead([]byte{1, 0}, func(r *iocheck.Reader) {
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			panic(err)
		}
		if num := binary.LittleEndian.Uint16(buf[:]); num != 1 {
			panic(fmt.Sprintf("decoded %d, want 1", num))
		}
	})
}

func TestRead_UncheckedCount_ReportsLowestPosition(t *testing.T) {
	msg := panicMessage(t, func() {
		iocheck.TestRead([]byte{1, 0}, func(r *iocheck.Reader) {
			var buf [2]byte
			if _, err := r.Read(buf[:]); err != nil { // count ignored: bug
				panic(err)
			}
			if num := binary.LittleEndian.Uint16(buf[:]); num != 1 {
				panic(fmt.Sprintf("decoded %d, want 1", num))
			}
		}, iocheck.WithVerboseTrace(false))
	})
	if !strings.Contains(msg, "test failed at position 1") {
		t.Fatalf("message does not name position 1: %q", msg)
	}
	if !strings.Contains(msg, "decoded 65281, want 1") {
		t.Fatalf("message does not carry the probe assertion: %q", msg)
	}
}

func TestRead_ReadFullThenUncheckedRead(t *testing.T) {
	msg := panicMessage(t, func() {
		iocheck.TestRead([]byte{1, 0, 1, 0}, func(r *iocheck.Reader) {
			var buf [2]byte
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				panic(err)
			}
			if num := binary.LittleEndian.Uint16(buf[:]); num != 1 {
				panic(fmt.Sprintf("decoded %d, want 1", num))
			}
			if _, err := r.Read(buf[:]); err != nil { // count ignored: bug
				panic(err)
			}
			if num := binary.LittleEndian.Uint16(buf[:]); num != 1 {
				panic(fmt.Sprintf("decoded %d, want 1", num))
			}
		}, iocheck.WithVerboseTrace(false))
	})
	// The lowest split reproducing the fault is after the first correct
	// read, inside the second one.
	if !strings.Contains(msg, "test failed at position 3") {
		t.Fatalf("message does not name position 3: %q", msg)
	}
}

func TestRead_ShortInput_Panics(t *testing.T) {
	defer func() {
		v := recover()
		if v == nil {
			t.Fatalf("expected a panic, got none")
		}
		err, ok := v.(error)
		if !ok || !errors.Is(err, iocheck.ErrShortInput) {
			t.Fatalf("panic value = %v, want ErrShortInput", v)
		}
	}()
	iocheck.TestRead([]byte{1}, func(r *iocheck.Reader) {})
}

func TestRead_ByteReader_Passes(t *testing.T) {
	input := []byte{1, 0, 42, 0}
	iocheck.TestRead(input, func(r *iocheck.Reader) {
		got := make([]byte, 0, len(input))
		for {
			b, err := r.ReadByte()
			if err == io.EOF {
				break
			}
			if err != nil {
				panic(err)
			}
			got = append(got, b)
		}
		if !bytes.Equal(got, input) {
			panic(fmt.Sprintf("decoded %v, want %v", got, input))
		}
	})
}

func TestRead_WriteTo_Bypass(t *testing.T) {
	input := []byte{1, 0, 42, 0}
	iocheck.TestRead(input, func(r *iocheck.Reader) {
		var sb bytes.Buffer
		// io.Copy takes the WriterTo fast path: a full-consumption contract,
		// deliberately unstressed.
		if _, err := io.Copy(&sb, r); err != nil {
			panic(err)
		}
		if !bytes.Equal(sb.Bytes(), input) {
			panic(fmt.Sprintf("decoded %v, want %v", sb.Bytes(), input))
		}
	})
}

func TestRead_Evidence_NamesCulprit(t *testing.T) {
	msg := panicMessage(t, func() {
		iocheck.TestRead([]byte{1, 0}, func(r *iocheck.Reader) {
			var buf [2]byte
			r.Read(buf[:]) // count ignored: bug
			if num := binary.LittleEndian.Uint16(buf[:]); num != 1 {
				panic("wrong value")
			}
		}, iocheck.WithVerboseTrace(false))
	})
	if !strings.Contains(msg, "most likely culprit in") {
		t.Fatalf("message does not name a culprit: %q", msg)
	}
	if !strings.Contains(msg, "IOCHECK_BACKTRACE") {
		t.Fatalf("message does not prompt for verbosity: %q", msg)
	}
}

func TestRead_Evidence_VerboseIncludesBacktrace(t *testing.T) {
	msg := panicMessage(t, func() {
		iocheck.TestRead([]byte{1, 0}, func(r *iocheck.Reader) {
			var buf [2]byte
			r.Read(buf[:]) // count ignored: bug
			if num := binary.LittleEndian.Uint16(buf[:]); num != 1 {
				panic("wrong value")
			}
		}, iocheck.WithVerboseTrace(true))
	})
	if !strings.Contains(msg, "backtrace:") {
		t.Fatalf("verbose message does not include the backtrace: %q", msg)
	}
	if !strings.Contains(msg, "(*Reader).Read") {
		t.Fatalf("backtrace does not list the harness entry frame: %q", msg)
	}
}
