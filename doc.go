// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package iocheck is a test harness that detects mishandled partial I/O.
//
// Most io.Reader and io.Writer implementations are allowed to make less
// progress than requested per call. Code that forgets this usually works in
// tests, because test inputs arrive as one contiguous block, and then fails
// in production the first time a transport splits the data. iocheck feeds the
// code under test a deliberately misbehaving stream and, when that surfaces a
// bug, narrows the failure down to the exact split position and the call site
// that mishandled it.
//
// Semantics and design:
//   - Probe model: the caller supplies a probe function that consumes the
//     stream and panics if the decoded/encoded result is wrong. Probes must be
//     pure over their inputs: TestRead may invoke a probe many times, including
//     after an earlier invocation panicked. Probes must fail by panicking;
//     runtime.Goexit (and therefore testing.T.FailNow/Fatalf inside the probe)
//     cannot be intercepted.
//   - Read side: TestRead first serves the input one byte per Read call while
//     poisoning the unread tail of the destination buffer. If the probe
//     panics, it sweeps all split positions in ascending order to find the
//     lowest one that reproduces the failure, capturing a call-stack snapshot
//     at the suspicious Read.
//   - Write side: TestWrite verifies written bytes against the expected
//     sequence call by call, granting one byte of progress per elemental
//     Write. A Write that accepts less than requested reports the iox
//     partial-progress semantic: (1, iocheck.ErrWouldBlock). Correct consumers
//     track counts and retry the remainder ("counts first, semantics second");
//     see WithSilentPartialWrites for stressing count-only detection.
//   - Evidence: snapshots are captured unresolved and symbolized at most once,
//     right before display. Set IOCHECK_BACKTRACE=1 (or WithVerboseTrace) to
//     render the full stack instead of the one-line prompt. Build tags
//     iocheck_callsite and iocheck_notrace select the cheaper snapshot
//     backends; see internal/trace.
//
// Localization is evidence, not proof: inlining and unusual call shapes can
// shift the reported culprit frame, and write-side attribution may point one
// call after the true offender.
package iocheck
