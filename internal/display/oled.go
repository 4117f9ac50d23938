// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package display drives a 128x64 SSD1306 OLED over I²C as a grid of
// character cells.
//
// The controller is addressed directly with command and data frames: every
// command travels in its own frame behind a 0x00 control byte, pixel data
// behind a 0x40 control byte in chunks of at most 16 bytes. Transport errors
// are ignored; the panel has no way to report them and the firmware has no
// way to surface them.
package display

import (
	"periph.io/x/conn/v3/i2c"

	"github.com/relabs-tech/punch_meter/internal/clock"
)

const (
	// Addr is the 7 bit I²C address of the controller.
	Addr = 0x3C

	// Width is the number of pixel columns.
	Width = 128
	// Pages is the number of 8 pixel tall rows.
	Pages = 8

	controlCommand = 0x00
	controlData    = 0x40

	// maxChunk is the largest data payload sent in one frame.
	maxChunk = 16

	settleMillis = 100
)

// initSequence configures the controller for a 128x64 panel with the
// internal charge pump. Multi-byte commands are still sent one byte per
// frame.
var initSequence = []byte{
	0xAE,       // display off
	0x20, 0x00, // horizontal addressing
	0xB0,       // page 0
	0xC8,       // COM scan direction remapped
	0x00, 0x10, // column 0
	0x40,       // start line 0
	0x81, 0xFF, // contrast
	0xA1,       // segment remap
	0xA6,       // normal polarity
	0xA8, 0x3F, // multiplex 64
	0xA4,       // follow RAM
	0xD3, 0x00, // no offset
	0xD5, 0x80, // clock divide
	0xD9, 0xF1, // pre-charge
	0xDA, 0x12, // COM pins
	0xDB, 0x40, // VCOMH
	0x8D, 0x14, // charge pump on
	0xAF,       // display on
}

// Driver renders text on the panel. It is not safe for concurrent use.
type Driver struct {
	dev i2c.Dev
	clk clock.Clock

	frame [1 + maxChunk]byte
	zeros [Width]byte
}

// New returns a Driver for the controller at Addr on bus.
func New(bus i2c.Bus, clk clock.Clock) *Driver {
	return &Driver{
		dev: i2c.Dev{Bus: bus, Addr: Addr},
		clk: clk,
	}
}

// SendCommand sends one control byte.
func (d *Driver) SendCommand(cmd byte) {
	d.frame[0] = controlCommand
	d.frame[1] = cmd
	_ = d.dev.Tx(d.frame[:2], nil)
}

// SendData sends pixel data, split in frames of at most 16 bytes. The
// controller advances its column pointer across frames.
func (d *Driver) SendData(data []byte) {
	d.frame[0] = controlData
	for len(data) > 0 {
		n := min(len(data), maxChunk)
		copy(d.frame[1:], data[:n])
		_ = d.dev.Tx(d.frame[:n+1], nil)
		data = data[n:]
	}
}

// Init waits for the panel to power up and sends the setup sequence. It must
// be called once before anything else.
func (d *Driver) Init() {
	d.clk.DelayMillis(settleMillis)
	for _, cmd := range initSequence {
		d.SendCommand(cmd)
	}
}

// Clear blanks all pages.
func (d *Driver) Clear() {
	for page := byte(0); page < Pages; page++ {
		d.SetCursor(0, page)
		d.SendData(d.zeros[:])
	}
}

// SetCursor moves the write position to column col of page.
func (d *Driver) SetCursor(col, page byte) {
	d.SendCommand(0xB0 | (page & 0x07))
	d.SendCommand(0x00 | (col & 0x0F))
	d.SendCommand(0x10 | ((col >> 4) & 0x0F))
}
