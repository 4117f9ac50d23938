// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package app runs the punch meter: wait for the trigger, count down, capture
// one second of acceleration and show the punch speed.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"periph.io/x/conn/v3/gpio"

	"github.com/relabs-tech/punch_meter/internal/clock"
	"github.com/relabs-tech/punch_meter/internal/display"
	"github.com/relabs-tech/punch_meter/internal/sensors"
	"github.com/relabs-tech/punch_meter/internal/speed"
)

// Timings, in milliseconds.
const (
	powerUpMillis     = 100
	wakeSettleMillis  = 50
	rangeSettleMillis = 10
	debounceMillis    = 50
	idlePollMillis    = 20
	releasePollMillis = 10
	buzzMillis        = 250
	countdownGap      = 500
	resultHoldMillis  = 5000

	countdownFrom = 3
)

// ErrHalted is returned once the machine has entered StateHalted.
var ErrHalted = errors.New("app: halted")

// Display is the text surface the machine draws on.
type Display interface {
	Init()
	Clear()
	PrintCentered(page byte, text string, scale display.Scale)
}

// Sensor is the accelerometer.
type Sensor interface {
	Wake() error
	ConfigureRange(r sensors.Range) error
	ReadAxis() float32
}

// Input is the trigger button, active low.
type Input interface {
	Read() gpio.Level
}

// Output is the buzzer, active high.
type Output interface {
	Out(l gpio.Level) error
}

// Machine sequences one punch measurement after another. All of its methods
// must be called from a single goroutine.
type Machine struct {
	disp    Display
	sensor  Sensor
	clk     clock.Clock
	trigger Input
	buzzer  Output

	state State
	tick  int
	// rearm is set when returning to idle after a result: the idle screen
	// must be redrawn and the trigger released before the next press counts.
	rearm bool
	fault error

	samples speed.Window
	speed   float32
	text    string
	cycles  int

	onTransition func(from, to State)
}

// New returns a machine in StateIdle. Call Boot before stepping it.
func New(disp Display, sensor Sensor, clk clock.Clock, trigger Input, buzzer Output) *Machine {
	return &Machine{
		disp:    disp,
		sensor:  sensor,
		clk:     clk,
		trigger: trigger,
		buzzer:  buzzer,
	}
}

// OnTransition registers fn to be called on every state change, before the
// new state does any work.
func (m *Machine) OnTransition(fn func(from, to State)) {
	m.onTransition = fn
}

// Boot brings up the accelerometer and the display and shows the idle
// screen. Peripheral failures are logged and otherwise ignored.
func (m *Machine) Boot() {
	m.clk.DelayMillis(powerUpMillis)

	if err := m.sensor.Wake(); err != nil {
		log.Printf("app: WARNING: accelerometer did not wake, continuing: %v", err)
	}
	m.clk.DelayMillis(wakeSettleMillis)

	if err := m.sensor.ConfigureRange(sensors.Range16G); err != nil {
		log.Printf("app: WARNING: %v", err)
	}
	m.clk.DelayMillis(rangeSettleMillis)

	m.disp.Init()
	m.showIdle()
	log.Println("app: ready")
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Countdown returns the digit on screen while counting down.
func (m *Machine) Countdown() int {
	return m.tick
}

// Samples returns the window captured by the last cycle.
func (m *Machine) Samples() *speed.Window {
	return &m.samples
}

// LastSpeed returns the last computed speed in km/h and its display text.
func (m *Machine) LastSpeed() (float32, string) {
	return m.speed, m.text
}

// Cycles returns the number of completed measurements.
func (m *Machine) Cycles() int {
	return m.cycles
}

// Err returns the fault that halted the machine, if any.
func (m *Machine) Err() error {
	return m.fault
}

// Fault moves the machine to StateHalted.
func (m *Machine) Fault(err error) {
	if m.state == StateHalted {
		return
	}
	m.fault = err
	log.Printf("app: fault: %v", err)
	m.transition(StateHalted)
}

// Step runs the work of the current state once and performs at most one
// transition. A step can block: capturing takes a full second and the
// result stays on screen for five.
func (m *Machine) Step() error {
	switch m.state {
	case StateIdle:
		m.idle()
	case StateCountdown:
		m.countdown()
	case StateCapturing:
		m.capture()
	case StateComputing:
		m.compute()
	case StateShowingResult:
		m.showResult()
	case StateHalted:
		return fmt.Errorf("%w: %v", ErrHalted, m.fault)
	default:
		m.Fault(fmt.Errorf("unknown state %d", m.state))
		return ErrHalted
	}
	return nil
}

// Run steps the machine until ctx is done or it halts. ctx is only checked
// while waiting for the trigger; a measurement that has started always
// finishes. A panic in a step halts the machine.
func (m *Machine) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.Fault(fmt.Errorf("panic in %s: %v", m.state, r))
			err = fmt.Errorf("%w: %v", ErrHalted, m.fault)
		}
	}()

	for {
		if m.state == StateIdle && !m.rearm {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := m.Step(); err != nil {
			return err
		}
	}
}

func (m *Machine) transition(to State) {
	from := m.state
	m.state = to
	log.Printf("app: %s -> %s", from, to)
	if m.onTransition != nil {
		m.onTransition(from, to)
	}
}

func (m *Machine) idle() {
	if m.rearm {
		m.showIdle()
		m.waitRelease()
		m.rearm = false
		m.clk.DelayMillis(idlePollMillis)
		return
	}

	if m.trigger.Read() != gpio.Low {
		m.clk.DelayMillis(idlePollMillis)
		return
	}
	m.clk.DelayMillis(debounceMillis)
	if m.trigger.Read() != gpio.Low {
		return
	}
	m.tick = countdownFrom
	m.transition(StateCountdown)
}

func (m *Machine) countdown() {
	m.disp.Clear()
	m.disp.PrintCentered(2, strconv.Itoa(m.tick), display.Scale2x)
	m.buzz()

	if m.tick > 1 {
		m.clk.DelayMillis(countdownGap)
		m.tick--
		return
	}
	m.tick = 0
	m.transition(StateCapturing)
}

func (m *Machine) buzz() {
	_ = m.buzzer.Out(gpio.High)
	m.clk.DelayMillis(buzzMillis)
	_ = m.buzzer.Out(gpio.Low)
}

func (m *Machine) capture() {
	m.disp.Clear()
	m.disp.PrintCentered(2, "GO!", display.Scale2x)

	clock.Scheduler{Clock: m.clk}.Run(speed.WindowSize, speed.IntervalMillis, func(i int) {
		m.samples[i] = m.sensor.ReadAxis()
	})
	m.transition(StateComputing)
}

func (m *Machine) compute() {
	m.speed = speed.Estimate(&m.samples)
	m.text = FormatSpeed(m.speed)
	log.Printf("app: punch speed %s km/h", m.text)
	m.transition(StateShowingResult)
}

func (m *Machine) showResult() {
	m.showResultScreen()
	m.clk.DelayMillis(resultHoldMillis)
	m.cycles++
	m.rearm = true
	m.transition(StateIdle)
}

func (m *Machine) waitRelease() {
	for m.trigger.Read() == gpio.Low {
		m.clk.DelayMillis(releasePollMillis)
	}
}
