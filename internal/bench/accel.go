// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bench

import (
	"fmt"
	"math"
	"sync"

	"github.com/chewxy/math32"
	"periph.io/x/conn/v3/physic"
)

const (
	regAccelConfig = 0x1C
	regAccelXOutH  = 0x3B
	regPwrMgmt1    = 0x6B

	sleepBit = 0x40
)

// Accelerometer is an MPU-6050 with a scripted X axis. It powers up asleep
// and reads zero until PWR_MGMT_1 clears the sleep bit.
type Accelerometer struct {
	mu sync.Mutex

	// Source returns the physical X acceleration in g. The device reports it
	// with inverted polarity.
	Source func() float32

	reg    byte
	regs   [128]byte
	reads  int
	writes int
}

// NewAccelerometer returns a sleeping device that reads source.
func NewAccelerometer(source func() float32) *Accelerometer {
	a := &Accelerometer{Source: source}
	a.regs[regPwrMgmt1] = sleepBit
	return a
}

func (a *Accelerometer) String() string {
	return "mpu6050-emulator"
}

func (a *Accelerometer) SetSpeed(f physic.Frequency) error {
	return nil
}

// Tx handles a register pointer write, register writes and burst reads.
func (a *Accelerometer) Tx(addr uint16, w, r []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(w) > 0 {
		a.reg = w[0] & 0x7F
		for _, v := range w[1:] {
			a.regs[a.reg] = v
			a.reg = (a.reg + 1) & 0x7F
			a.writes++
		}
	}
	if len(r) == 0 {
		return nil
	}
	if len(r) > 2 {
		return fmt.Errorf("bench: burst of %d bytes not supported", len(r))
	}

	a.reads++
	if a.reg == regAccelXOutH {
		raw := a.sample()
		a.regs[regAccelXOutH] = byte(uint16(raw) >> 8)
		a.regs[regAccelXOutH+1] = byte(raw)
	}
	for i := range r {
		r[i] = a.regs[(int(a.reg)+i)&0x7F]
	}
	return nil
}

func (a *Accelerometer) sample() int16 {
	if a.regs[regPwrMgmt1]&sleepBit != 0 || a.Source == nil {
		return 0
	}
	counts := -a.Source() * a.lsbPerG()
	switch {
	case counts >= math.MaxInt16:
		return math.MaxInt16
	case counts <= math.MinInt16:
		return math.MinInt16
	}
	return int16(math32.Floor(counts + 0.5))
}

func (a *Accelerometer) lsbPerG() float32 {
	return []float32{16384, 8192, 4096, 2048}[(a.regs[regAccelConfig]>>3)&0x03]
}

// Asleep reports whether the sleep bit is set.
func (a *Accelerometer) Asleep() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.regs[regPwrMgmt1]&sleepBit != 0
}

// Register returns the content of register reg.
func (a *Accelerometer) Register(reg byte) byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.regs[reg&0x7F]
}

// Reads returns the number of read transactions served.
func (a *Accelerometer) Reads() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reads
}

// Punch returns a synthetic punch profile in g over time in ms, starting at
// start: a half sine of the given peak lasting 80 ms, then a decaying
// recoil.
func Punch(start uint32, peak float32) func(now uint32) float32 {
	const (
		strikeMillis = 80
		recoilTau    = 40
	)
	return func(now uint32) float32 {
		t := float32(int32(now - start))
		switch {
		case t < 0:
			return 0
		case t < strikeMillis:
			return peak * math32.Sin(math32.Pi*t/strikeMillis)
		default:
			return -0.5 * peak * math32.Exp(-(t-strikeMillis)/recoilTau)
		}
	}
}
