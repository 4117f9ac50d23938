// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"github.com/relabs-tech/punch_meter/internal/glyph"
)

// Scale is the pixel magnification of a character cell.
type Scale int

const (
	// Scale1x draws 6x8 cells on one page.
	Scale1x Scale = 1
	// Scale2x draws 12x16 cells across two pages.
	Scale2x Scale = 2
)

// CellWidth is the horizontal advance of one character, spacing included.
func (s Scale) CellWidth() int {
	if s == Scale2x {
		return 2 * (glyph.Width + 1)
	}
	return glyph.Width + 1
}

// lastColumn is the highest start column a following character may use.
func (s Scale) lastColumn() byte {
	return byte(Width - s.CellWidth())
}

func (s Scale) String() string {
	if s == Scale2x {
		return "2x"
	}
	return "1x"
}

// WriteChar draws c with its top left corner at col, page.
//
// At 1x an unknown character is drawn as a blank cell. At 2x an unknown
// character is not drawn at all and whatever was on the panel stays.
func (d *Driver) WriteChar(col, page, c byte, scale Scale) {
	if scale == Scale2x {
		d.writeChar2x(col, page, c)
		return
	}
	d.writeChar1x(col, page, c)
}

func (d *Driver) writeChar1x(col, page, c byte) {
	var buf [glyph.Width + 1]byte
	if cols, ok := glyph.Lookup(c); ok {
		copy(buf[:], cols[:])
	}
	d.SetCursor(col, page)
	d.SendData(buf[:])
}

func (d *Driver) writeChar2x(col, page, c byte) {
	cols, ok := glyph.Lookup(c)
	if !ok {
		return
	}

	var top, bottom [2 * (glyph.Width + 1)]byte
	for i, b := range cols {
		scaled := ScaleColumn(b)
		top[2*i], top[2*i+1] = byte(scaled), byte(scaled)
		bottom[2*i], bottom[2*i+1] = byte(scaled>>8), byte(scaled>>8)
	}

	d.SetCursor(col, page)
	d.SendData(top[:])
	d.SetCursor(col, page+1)
	d.SendData(bottom[:])
}

// ScaleColumn doubles an 8 pixel column to 16 pixels: bit b of the input
// sets bits 2b and 2b+1 of the result. The low byte is the upper page.
func ScaleColumn(b byte) uint16 {
	var scaled uint16
	for bit := 0; bit < 8; bit++ {
		if b&(1<<bit) != 0 {
			scaled |= 3 << (2 * bit)
		}
	}
	return scaled
}

// PrintString writes text from col to the right. It stops, without
// wrapping, once the next cell would start past the last full cell of the
// line. Column arithmetic is 8 bit.
func (d *Driver) PrintString(col, page byte, text string, scale Scale) {
	advance := byte(scale.CellWidth())
	last := scale.lastColumn()
	for i := 0; i < len(text); i++ {
		d.WriteChar(col, page, text[i], scale)
		col += advance
		if col > last {
			break
		}
	}
}

// PrintCentered writes text horizontally centred on page.
func (d *Driver) PrintCentered(page byte, text string, scale Scale) {
	d.PrintString(CenterColumn(len(text), scale), page, text, scale)
}

// CenterColumn returns the start column that centres n cells. Text wider
// than the panel yields a wrapped 8 bit column; it is not clamped.
func CenterColumn(n int, scale Scale) byte {
	return byte((Width - n*scale.CellWidth()) / 2)
}
