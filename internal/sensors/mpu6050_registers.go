// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

// MPU-6050 registers used by the punch meter.
const (
	regAccelConfig = 0x1C // ACCEL_CONFIG: bits 4:3 select the full scale range
	regAccelXOutH  = 0x3B // ACCEL_XOUT_H, followed by ACCEL_XOUT_L at 0x3C
	regPwrMgmt1    = 0x6B // PWR_MGMT_1: 0x00 clears SLEEP
)

// Range is the accelerometer full scale range (ACCEL_FS_SEL).
type Range byte

const (
	Range2G  Range = 0
	Range4G  Range = 1
	Range8G  Range = 2
	Range16G Range = 3
)

// configValue is the ACCEL_CONFIG byte selecting r.
func (r Range) configValue() byte {
	return byte(r&0x03) << 3
}

// LSBPerG is the raw count for 1 g at this range.
func (r Range) LSBPerG() float32 {
	return []float32{16384, 8192, 4096, 2048}[r&0x03]
}

func (r Range) String() string {
	return []string{"±2g", "±4g", "±8g", "±16g"}[r&0x03]
}
