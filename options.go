// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iocheck

import "os"

// TraceVerbosity controls whether rendered evidence includes the full
// symbolized stack or only a prompt explaining how to enable it.
type TraceVerbosity uint8

const (
	// TraceEnv defers to the IOCHECK_BACKTRACE environment variable:
	// "1" renders the full stack, anything else renders the prompt.
	TraceEnv TraceVerbosity = iota
	// TraceVerbose always renders the full stack.
	TraceVerbose
	// TraceQuiet always renders only the prompt.
	TraceQuiet
)

// Options configures harness behavior.
type Options struct {
	// SilentPartialWrites makes the adversarial Writer report a short write
	// as (1, nil) instead of (1, ErrWouldBlock). This stresses consumers that
	// must detect partial acceptance from the returned count alone, the way
	// io.Copy and bufio do.
	SilentPartialWrites bool

	// Verbosity overrides the environment toggle for evidence rendering.
	Verbosity TraceVerbosity
}

var defaultOptions = Options{
	SilentPartialWrites: false,
	Verbosity:           TraceEnv,
}

type Option func(*Options)

// WithSilentPartialWrites disables the ErrWouldBlock signal on short writes.
func WithSilentPartialWrites() Option {
	return func(o *Options) { o.SilentPartialWrites = true }
}

// WithVerboseTrace forces full-stack evidence rendering on or off,
// independent of the IOCHECK_BACKTRACE environment variable.
func WithVerboseTrace(on bool) Option {
	return func(o *Options) {
		if on {
			o.Verbosity = TraceVerbose
		} else {
			o.Verbosity = TraceQuiet
		}
	}
}

func applyOptions(opts []Option) Options {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func (o *Options) verbose() bool {
	switch o.Verbosity {
	case TraceVerbose:
		return true
	case TraceQuiet:
		return false
	default:
		return os.Getenv("IOCHECK_BACKTRACE") == "1"
	}
}
