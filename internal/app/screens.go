// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/relabs-tech/punch_meter/internal/display"
)

func (m *Machine) showIdle() {
	m.disp.Clear()
	m.disp.PrintCentered(0, "PRESS", display.Scale2x)
	m.disp.PrintCentered(2, "START", display.Scale2x)
	m.disp.PrintCentered(5, "Punch on 3rd buzz!", display.Scale1x)
}

func (m *Machine) showResultScreen() {
	m.disp.Clear()
	m.disp.PrintCentered(0, "Punch Speed", display.Scale1x)
	m.disp.PrintCentered(2, m.text, display.Scale2x)
	m.disp.PrintCentered(5, "km/h", display.Scale2x)
}

// FormatSpeed renders v with one decimal, truncating toward zero. The
// tenths digit is always non-negative, so values in (-1, 0) lose their sign.
func FormatSpeed(v float32) string {
	whole := int32(v)
	tenths := int32(math32.Abs((v - float32(whole)) * 10))
	return fmt.Sprintf("%d.%d", whole, tenths)
}
