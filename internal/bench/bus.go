// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package bench emulates the punch meter's I²C peripherals so the firmware
// can run without hardware.
package bench

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Bus routes transactions to emulated devices by address.
type Bus struct {
	mu      sync.Mutex
	devices map[uint16]i2c.Bus
	speed   physic.Frequency
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{devices: map[uint16]i2c.Bus{}}
}

// Attach places dev at addr, replacing whatever was there.
func (b *Bus) Attach(addr uint16, dev i2c.Bus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.devices[addr] = dev
}

func (b *Bus) String() string {
	return "bench"
}

// SetSpeed records f.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.speed = f
	return nil
}

// Speed returns the last speed set.
func (b *Bus) Speed() physic.Frequency {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.speed
}

// Tx forwards to the device at addr. An empty address is not acknowledged.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	dev, ok := b.devices[addr]
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("bench: no ack from %#02x", addr)
	}
	return dev.Tx(addr, w, r)
}
