// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package panel emulates the display RAM of an SSD1306 controller.
//
// Panel implements i2c.Bus and decodes the frames the display driver sends
// into a 128x64 one bit image. It models the addressing the driver relies on
// (page and column selection, horizontal auto-increment) and tracks a few
// settings for inspection. Pixels are kept in RAM order; segment remap and
// COM scan direction do not flip the image.
package panel

import (
	"fmt"
	"image"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

const (
	Width  = 128
	Height = 64
	Pages  = Height / 8
)

// argCount is the number of argument bytes that follow each multi-byte
// command.
var argCount = map[byte]int{
	0x20: 1, // addressing mode
	0x81: 1, // contrast
	0x8D: 1, // charge pump
	0xA8: 1, // multiplex ratio
	0xD3: 1, // display offset
	0xD5: 1, // clock divide
	0xD9: 1, // pre-charge
	0xDA: 1, // COM pins
	0xDB: 1, // VCOMH
}

// Panel is an emulated controller listening on one address.
type Panel struct {
	mu   sync.Mutex
	addr uint16

	img  *image1bit.VerticalLSB
	page int
	col  int

	// pending is the command still waiting for argument bytes.
	pending byte
	missing int

	on       bool
	contrast byte
	addrMode byte
	charge   bool

	frames int
}

// New returns a blank, switched off panel answering at addr.
func New(addr uint16) *Panel {
	return &Panel{
		addr:     addr,
		img:      image1bit.NewVerticalLSB(image.Rect(0, 0, Width, Height)),
		contrast: 0x7F,
		addrMode: 0x02,
	}
}

func (p *Panel) String() string {
	return fmt.Sprintf("ssd1306-emulator@%#02x", p.addr)
}

// SetSpeed accepts any speed.
func (p *Panel) SetSpeed(f physic.Frequency) error {
	return nil
}

// Tx decodes one frame. Reads are not supported.
func (p *Panel) Tx(addr uint16, w, r []byte) error {
	if addr != p.addr {
		return fmt.Errorf("panel: no device at %#02x", addr)
	}
	if len(r) != 0 {
		return fmt.Errorf("panel: read not supported")
	}
	if len(w) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.frames++
	switch w[0] {
	case 0x00:
		for _, b := range w[1:] {
			p.command(b)
		}
	case 0x40:
		for _, b := range w[1:] {
			p.data(b)
		}
	default:
		return fmt.Errorf("panel: unknown control byte %#02x", w[0])
	}
	return nil
}

func (p *Panel) command(b byte) {
	if p.missing > 0 {
		p.argument(p.pending, b)
		p.missing--
		return
	}
	if n, ok := argCount[b]; ok {
		p.pending = b
		p.missing = n
		return
	}

	switch {
	case b <= 0x0F:
		p.col = p.col&0xF0 | int(b&0x0F)
	case b <= 0x1F:
		p.col = p.col&0x0F | int(b&0x0F)<<4
	case b >= 0xB0 && b <= 0xB7:
		p.page = int(b & 0x07)
	case b == 0xAE:
		p.on = false
	case b == 0xAF:
		p.on = true
	}
}

func (p *Panel) argument(cmd, arg byte) {
	switch cmd {
	case 0x20:
		p.addrMode = arg & 0x03
	case 0x81:
		p.contrast = arg
	case 0x8D:
		p.charge = arg&0x04 != 0
	}
}

func (p *Panel) data(b byte) {
	if p.col < Width {
		for bit := 0; bit < 8; bit++ {
			p.img.SetBit(p.col, p.page*8+bit, image1bit.Bit(b&(1<<bit) != 0))
		}
	}
	p.col++
	if p.col >= Width {
		p.col = 0
		if p.addrMode == 0x00 {
			p.page = (p.page + 1) % Pages
		}
	}
}

// Image returns a copy of the display RAM.
func (p *Panel) Image() *image1bit.VerticalLSB {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := image1bit.NewVerticalLSB(p.img.Bounds())
	copy(out.Pix, p.img.Pix)
	return out
}

// Pixel reports whether the pixel at x, y is lit.
func (p *Panel) Pixel(x, y int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return bool(p.img.BitAt(x, y))
}

// Column returns the 8 pixel column at col of page, bit 0 on top.
func (p *Panel) Column(page, col int) byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	var b byte
	for bit := 0; bit < 8; bit++ {
		if p.img.BitAt(col, page*8+bit) {
			b |= 1 << bit
		}
	}
	return b
}

// Lit returns the number of lit pixels.
func (p *Panel) Lit() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if p.img.BitAt(x, y) {
				n++
			}
		}
	}
	return n
}

// IsOn reports whether the display has been switched on.
func (p *Panel) IsOn() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.on
}

// Contrast returns the last contrast setting.
func (p *Panel) Contrast() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.contrast
}

// ChargePump reports whether the internal charge pump is enabled.
func (p *Panel) ChargePump() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.charge
}

// Frames returns the number of frames received.
func (p *Panel) Frames() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}
