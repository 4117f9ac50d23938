// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// ./cmd/punchsim/main.go
//
// Runs one full punch cycle of the firmware against emulated peripherals on a
// virtual clock and writes a PNG of the panel at every state change.
//
// Run:
//
//	go run ./cmd/punchsim -out ./snapshots -peak 25
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/punch_meter/internal/app"
	"github.com/relabs-tech/punch_meter/internal/bench"
	"github.com/relabs-tech/punch_meter/internal/clock"
	"github.com/relabs-tech/punch_meter/internal/display"
	"github.com/relabs-tech/punch_meter/internal/display/panel"
	"github.com/relabs-tech/punch_meter/internal/sensors"
)

const captionHeight = 18

// pressOnce holds the trigger down for the debounce check, then releases it.
type pressOnce struct {
	reads int
}

func (p *pressOnce) Read() gpio.Level {
	p.reads++
	if p.reads <= 2 {
		return gpio.Low
	}
	return gpio.High
}

type buzzer struct {
	clk *clock.Manual
}

func (b buzzer) Out(l gpio.Level) error {
	log.Printf("buzzer: %s at %d ms", l, b.clk.Peek())
	return nil
}

func main() {
	outDir := flag.String("out", "snapshots", "directory for PNG snapshots")
	scale := flag.Int("scale", 4, "pixel upscale factor")
	peak := flag.Float64("peak", 20, "peak punch acceleration in g")
	flag.Parse()

	if *scale < 1 {
		log.Fatalf("scale must be at least 1, got %d", *scale)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("failed to create %s: %v", *outDir, err)
	}

	clk := clock.NewManual(0)
	clk.Step = 1

	screen := panel.New(display.Addr)
	var punch func(uint32) float32
	acc := bench.NewAccelerometer(func() float32 {
		if punch == nil {
			return 0
		}
		return punch(clk.Peek())
	})
	bus := bench.NewBus()
	bus.Attach(display.Addr, screen)
	bus.Attach(sensors.Addr, acc)

	m := app.New(display.New(bus, clk), sensors.New(bus, clk), clk, &pressOnce{}, buzzer{clk: clk})

	shot := 0
	snapshot := func(label string) {
		shot++
		name := filepath.Join(*outDir, fmt.Sprintf("%02d_%s.png", shot, label))
		if err := writePNG(name, screen.Image(), *scale, label); err != nil {
			log.Printf("snapshot: %v", err)
			return
		}
		log.Printf("snapshot: wrote %s", name)
	}

	m.OnTransition(func(from, to app.State) {
		// The screen still shows what the previous state drew.
		snapshot(from.String())
		if to == app.StateCapturing {
			// The punch lands 150 ms into the capture window.
			punch = bench.Punch(clk.Peek()+150, float32(*peak))
		}
	})

	m.Boot()
	snapshot("boot")
	for m.Cycles() == 0 {
		if err := m.Step(); err != nil {
			log.Fatalf("fatal: %v", err)
		}
	}
	if err := m.Step(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
	snapshot("idle")

	v, text := m.LastSpeed()
	log.Printf("punchsim: %s km/h (%.3f) after %d ms of virtual time", text, v, clk.Peek())
}

// writePNG renders img upscaled with a caption strip underneath.
func writePNG(name string, img *image1bit.VerticalLSB, scale int, caption string) error {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale+captionHeight))
	draw.NearestNeighbor.Scale(out, image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale), img, b, draw.Src, nil)

	drawer := &font.Drawer{
		Dst:  out,
		Src:  &image.Uniform{color.Gray{Y: 0xFF}},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(2, b.Dy()*scale+captionHeight-4),
	}
	drawer.DrawString(caption)

	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := png.Encode(f, out); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return f.Close()
}
