// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sensors talks to the MPU-6050 accelerometer that measures the punch.
package sensors

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/conn/v3/i2c"

	"github.com/relabs-tech/punch_meter/internal/clock"
)

const (
	// Addr is the 7 bit I²C address of the accelerometer (AD0 low).
	Addr = 0x68

	wakeAttempts    = 3
	wakeRetryMillis = 50
)

// MotionSensor reads the X axis of an MPU-6050.
//
// Only waking the device is retried. Range configuration and axis reads
// ignore transport errors: a failed read still yields a value decoded from
// whatever is in the read buffer.
type MotionSensor struct {
	dev i2c.Dev
	clk clock.Clock
	rng Range

	reg [1]byte
	buf [2]byte
}

// New returns a MotionSensor for the device at Addr on bus. Readings are
// scaled for Range16G until ConfigureRange selects another range.
func New(bus i2c.Bus, clk clock.Clock) *MotionSensor {
	return &MotionSensor{
		dev: i2c.Dev{Bus: bus, Addr: Addr},
		clk: clk,
		rng: Range16G,
	}
}

// Wake takes the device out of sleep mode. It tries up to three times, 50 ms
// apart, and returns the last error if every attempt failed. The caller is
// expected to carry on regardless.
func (s *MotionSensor) Wake() error {
	var err error
	for attempt := 0; attempt < wakeAttempts; attempt++ {
		if err = s.dev.Tx([]byte{regPwrMgmt1, 0x00}, nil); err == nil {
			return nil
		}
		s.clk.DelayMillis(wakeRetryMillis)
	}
	return fmt.Errorf("sensors: wake after %d attempts: %w", wakeAttempts, err)
}

// ConfigureRange selects the accelerometer full scale range in a single
// attempt. The returned error is informational.
func (s *MotionSensor) ConfigureRange(r Range) error {
	s.rng = r
	if err := s.dev.Tx([]byte{regAccelConfig, r.configValue()}, nil); err != nil {
		return fmt.Errorf("sensors: set range %s: %w", r, err)
	}
	return nil
}

// Range returns the range readings are scaled for.
func (s *MotionSensor) Range() Range {
	return s.rng
}

// ReadAxis returns the X acceleration in g, sign flipped so a punch away from
// the user reads positive.
func (s *MotionSensor) ReadAxis() float32 {
	s.reg[0] = regAccelXOutH
	_ = s.dev.Tx(s.reg[:], nil)
	_ = s.dev.Tx(nil, s.buf[:])
	return Decode(s.buf, s.rng)
}

// Decode converts a big endian ACCEL_XOUT register pair to g.
func Decode(raw [2]byte, r Range) float32 {
	counts := int16(binary.BigEndian.Uint16(raw[:]))
	return -(float32(counts) / r.LSBPerG())
}
