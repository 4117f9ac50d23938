// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package clock provides the millisecond time base the firmware runs on.
package clock

import (
	"sync"
	"time"
)

// Clock is a monotonic millisecond counter with a blocking delay.
type Clock interface {
	NowMillis() uint32
	DelayMillis(ms uint32)
}

// System is a Clock backed by the host's monotonic clock.
type System struct {
	start time.Time
}

// NewSystem returns a System clock counting from now.
func NewSystem() *System {
	return &System{start: time.Now()}
}

// NowMillis returns the milliseconds elapsed since the clock was created.
// The counter wraps after ~49 days, like a 32 bit tick counter.
func (s *System) NowMillis() uint32 {
	return uint32(time.Since(s.start).Milliseconds())
}

// DelayMillis sleeps for ms milliseconds.
func (s *System) DelayMillis(ms uint32) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

// Manual is a virtual Clock. Time only moves when DelayMillis or Advance is
// called, or by Step on every NowMillis read so busy waits can make progress.
type Manual struct {
	mu   sync.Mutex
	now  uint32
	Step uint32

	delays []uint32
}

// NewManual returns a Manual clock starting at start.
func NewManual(start uint32) *Manual {
	return &Manual{now: start}
}

// NowMillis returns the current virtual time and then advances it by Step.
func (m *Manual) NowMillis() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now
	m.now += m.Step
	return now
}

// DelayMillis advances virtual time by ms and records the delay.
func (m *Manual) DelayMillis(ms uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += ms
	m.delays = append(m.delays, ms)
}

// Advance moves virtual time forward without recording a delay.
func (m *Manual) Advance(ms uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += ms
}

// Peek returns the current virtual time without stepping it.
func (m *Manual) Peek() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Delays returns a copy of every delay requested so far.
func (m *Manual) Delays() []uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]uint32, len(m.delays))
	copy(out, m.delays)
	return out
}
