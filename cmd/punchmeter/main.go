// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/punch_meter/internal/app"
	"github.com/relabs-tech/punch_meter/internal/clock"
	"github.com/relabs-tech/punch_meter/internal/config"
	"github.com/relabs-tech/punch_meter/internal/display"
	"github.com/relabs-tech/punch_meter/internal/sensors"
)

func main() {
	configPath := flag.String("config", "./punch_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting punch meter")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	m, closeBus, err := bringUp(config.Get())
	if err != nil {
		app.Halt(err)
	}
	defer closeBus()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m.Boot()
	if err := m.Run(ctx); err != nil {
		if errors.Is(err, app.ErrHalted) {
			app.Halt(err)
		}
		log.Printf("stopping: %v", err)
	}
}

// bringUp opens the bus and pins named in cfg and wires the machine.
func bringUp(cfg *config.Config) (*app.Machine, func(), error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open I2C bus %q: %w", cfg.I2CBus, err)
	}
	if err := bus.SetSpeed(physic.Frequency(cfg.I2CSpeedKHz) * physic.KiloHertz); err != nil {
		log.Printf("i2c: cannot set speed to %d kHz, keeping default: %v", cfg.I2CSpeedKHz, err)
	}
	log.Printf("i2c: opened %s", bus)

	trigger := gpioreg.ByName(cfg.TriggerPin)
	if trigger == nil {
		bus.Close()
		return nil, nil, fmt.Errorf("trigger pin %q not found", cfg.TriggerPin)
	}
	if err := trigger.In(gpio.PullUp, gpio.NoEdge); err != nil {
		bus.Close()
		return nil, nil, fmt.Errorf("trigger pin %s: %w", trigger, err)
	}

	buzzer := gpioreg.ByName(cfg.BuzzerPin)
	if buzzer == nil {
		bus.Close()
		return nil, nil, fmt.Errorf("buzzer pin %q not found", cfg.BuzzerPin)
	}
	if err := buzzer.Out(gpio.Low); err != nil {
		bus.Close()
		return nil, nil, fmt.Errorf("buzzer pin %s: %w", buzzer, err)
	}
	log.Printf("gpio: trigger on %s, buzzer on %s", trigger, buzzer)

	clk := clock.NewSystem()
	m := app.New(
		display.New(bus, clk),
		sensors.New(bus, clk),
		clk,
		trigger,
		buzzer,
	)
	return m, func() { bus.Close() }, nil
}
