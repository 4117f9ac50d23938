// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package clock

// Scheduler runs work on an absolute millisecond schedule.
//
// Tick i is due at start + i*interval, where start is the clock reading when
// Run begins. Each tick busy-waits on the clock instead of sleeping, so a
// slow tick is absorbed by the following ones rather than pushing the whole
// schedule back.
type Scheduler struct {
	Clock Clock
}

// Run calls fn(i) for i in [0, n), each call no earlier than its due time.
// It cannot be interrupted.
func (s Scheduler) Run(n int, interval uint32, fn func(i int)) {
	next := s.Clock.NowMillis()
	for i := 0; i < n; i++ {
		for before(s.Clock.NowMillis(), next) {
		}
		fn(i)
		next += interval
	}
}

// before reports whether a is earlier than b on a wrapping 32 bit counter.
func before(a, b uint32) bool {
	return int32(a-b) < 0
}
