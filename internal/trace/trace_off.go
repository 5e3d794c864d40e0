//go:build iocheck_notrace

// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package trace

// Storage is a slot for at most one snapshot. In this build capture is
// compiled out; every operation is a no-op and rendering says so.
type Storage struct{}

// Supported reports whether this build can capture snapshots at all.
func Supported() bool { return false }

// Capture is a no-op in this build.
func (s *Storage) Capture(skip int) {}

// Clear is a no-op in this build.
func (s *Storage) Clear() {}

// Captured always reports false in this build.
func (s *Storage) Captured() bool { return false }

// Resolve is a no-op in this build.
func (s *Storage) Resolve() {}

// Render explains that snapshot support was compiled out.
func (s *Storage) Render(op Op, verbose bool) string {
	return "backtrace unavailable - rebuild without the iocheck_notrace tag " +
		"to get the location of incorrect I/O handling"
}
