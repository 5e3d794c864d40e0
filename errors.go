// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iocheck

import (
	"errors"

	"code.hybscloud.com/iox"
)

// Usage faults: misuse of the harness itself, signaled immediately by
// panicking with one of these sentinels. They are never bisected and never
// suppressed.
var (
	// ErrShortInput reports a TestRead input of fewer than 2 bytes; there is
	// no split position to search below that length.
	ErrShortInput = errors.New("iocheck: testing inputs shorter than 2 bytes doesn't make sense")

	// ErrEmptyReadBuffer reports a Read call with a zero-length destination
	// during breaking mode. Such calls can make no progress and usually mean
	// the caller sized a buffer from unvalidated data.
	ErrEmptyReadBuffer = errors.New("iocheck: attempt to read into an empty buffer")

	// ErrWriteTooLong reports a write extending past the end of the expected
	// output sequence.
	ErrWriteTooLong = errors.New("iocheck: attempt to write more data than expected")

	// ErrEmptyWrite reports a zero-length write; probably unrelated to
	// splitting but a bug all the same.
	ErrEmptyWrite = errors.New("iocheck: attempt to write 0 bytes to the writer; probably unrelated to splitting")
)

// errInconsistent guards internal bookkeeping; reaching it is a bug in
// iocheck, not in the tested code.
var errInconsistent = errors.New("iocheck: internal consistency check failed, this is a bug in iocheck, not in the tested code")

// ErrWouldBlock is the semantic signal emitted by the adversarial Writer when
// it accepts fewer bytes than requested: partial progress happened, the
// remainder must be retried. Re-exposed from iox so that probes written
// against this package alone can classify it.
//
// ErrWouldBlock is iox.ErrWouldBlock; iox.IsWouldBlock and friends apply.
var ErrWouldBlock = iox.ErrWouldBlock
