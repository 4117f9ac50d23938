package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"

	"github.com/relabs-tech/punch_meter/internal/clock"
	"github.com/relabs-tech/punch_meter/internal/display"
	"github.com/relabs-tech/punch_meter/internal/sensors"
)

type fakeDisplay struct {
	inits int
	log   []string
}

func (d *fakeDisplay) Init() { d.inits++; d.log = append(d.log, "init") }

func (d *fakeDisplay) Clear() { d.log = append(d.log, "clear") }

func (d *fakeDisplay) PrintCentered(page byte, text string, scale display.Scale) {
	d.log = append(d.log, fmt.Sprintf("%d:%s:%s", page, text, scale))
}

type fakeSensor struct {
	wakeErr  error
	rangeErr error
	ranges   []sensors.Range
	values   []float32
	reads    int
	panicAt  int
}

func (s *fakeSensor) Wake() error { return s.wakeErr }

func (s *fakeSensor) ConfigureRange(r sensors.Range) error {
	s.ranges = append(s.ranges, r)
	return s.rangeErr
}

func (s *fakeSensor) ReadAxis() float32 {
	s.reads++
	if s.panicAt > 0 && s.reads == s.panicAt {
		panic("bus wedged")
	}
	if len(s.values) == 0 {
		return 0
	}
	return s.values[(s.reads-1)%len(s.values)]
}

// scriptPin returns levels in order, then repeats the last one.
type scriptPin struct {
	levels []gpio.Level
	reads  int
}

func (p *scriptPin) Read() gpio.Level {
	i := min(p.reads, len(p.levels)-1)
	p.reads++
	return p.levels[i]
}

type edge struct {
	at    uint32
	level gpio.Level
}

type recordPin struct {
	clk   *clock.Manual
	edges []edge
}

func (p *recordPin) Out(l gpio.Level) error {
	p.edges = append(p.edges, edge{at: p.clk.Peek(), level: l})
	return errors.New("ignored")
}

type rig struct {
	m       *Machine
	disp    *fakeDisplay
	sensor  *fakeSensor
	clk     *clock.Manual
	trigger *scriptPin
	buzzer  *recordPin
	moves   []string
}

func newRig(levels ...gpio.Level) *rig {
	r := &rig{
		disp:    &fakeDisplay{},
		sensor:  &fakeSensor{values: []float32{1}},
		clk:     clock.NewManual(0),
		trigger: &scriptPin{levels: levels},
	}
	r.clk.Step = 1
	r.buzzer = &recordPin{clk: r.clk}
	r.m = New(r.disp, r.sensor, r.clk, r.trigger, r.buzzer)
	r.m.OnTransition(func(from, to State) {
		r.moves = append(r.moves, from.String()+">"+to.String())
	})
	return r
}

func idleScreen() []string {
	return []string{"clear", "0:PRESS:2x", "2:START:2x", "5:Punch on 3rd buzz!:1x"}
}

func TestBoot(t *testing.T) {
	r := newRig(gpio.High)

	r.m.Boot()

	assert.Equal(t, []uint32{100, 50, 10}, r.clk.Delays())
	assert.Equal(t, []sensors.Range{sensors.Range16G}, r.sensor.ranges)
	assert.Equal(t, append([]string{"init"}, idleScreen()...), r.disp.log)
	assert.Equal(t, 1, count(r.disp.log, "clear"))
	assert.Equal(t, StateIdle, r.m.State())
}

func count(entries []string, entry string) int {
	n := 0
	for _, e := range entries {
		if e == entry {
			n++
		}
	}
	return n
}

func TestBootIgnoresSensorErrors(t *testing.T) {
	r := newRig(gpio.High)
	r.sensor.wakeErr = errors.New("nack")
	r.sensor.rangeErr = errors.New("nack")

	r.m.Boot()

	assert.Equal(t, []uint32{100, 50, 10}, r.clk.Delays())
	assert.Equal(t, 1, r.disp.inits)
	assert.Equal(t, StateIdle, r.m.State())
}

func TestIdlePolls(t *testing.T) {
	r := newRig(gpio.High)

	require.NoError(t, r.m.Step())
	require.NoError(t, r.m.Step())

	assert.Equal(t, StateIdle, r.m.State())
	assert.Equal(t, []uint32{20, 20}, r.clk.Delays())
	assert.Empty(t, r.disp.log)
}

func TestShortPressIgnored(t *testing.T) {
	r := newRig(gpio.Low, gpio.High)

	require.NoError(t, r.m.Step())

	assert.Equal(t, StateIdle, r.m.State())
	assert.Equal(t, []uint32{50}, r.clk.Delays())
	assert.Equal(t, 2, r.trigger.reads)
	assert.Empty(t, r.buzzer.edges)
	assert.Empty(t, r.moves)
}

func TestFullCycle(t *testing.T) {
	r := newRig(gpio.Low, gpio.Low, gpio.High)

	var captureStart, captureEnd uint32
	r.m.OnTransition(func(from, to State) {
		r.moves = append(r.moves, from.String()+">"+to.String())
		switch to {
		case StateCapturing:
			captureStart = r.clk.Peek()
		case StateComputing:
			captureEnd = r.clk.Peek()
		}
	})

	steps := []struct {
		state State
		tick  int
	}{
		{StateCountdown, 3},
		{StateCountdown, 2},
		{StateCountdown, 1},
		{StateCapturing, 0},
		{StateComputing, 0},
		{StateShowingResult, 0},
		{StateIdle, 0},
		{StateIdle, 0},
	}
	for i, want := range steps {
		require.NoError(t, r.m.Step(), "step %d", i)
		assert.Equal(t, want.state, r.m.State(), "step %d", i)
		assert.Equal(t, want.tick, r.m.Countdown(), "step %d", i)
	}

	assert.Equal(t, []string{
		"idle>countdown",
		"countdown>capturing",
		"capturing>computing",
		"computing>showing-result",
		"showing-result>idle",
	}, r.moves)

	assert.Equal(t, []uint32{50, 250, 500, 250, 500, 250, 5000, 20}, r.clk.Delays())
	assert.Equal(t, []edge{
		{50, gpio.High}, {300, gpio.Low},
		{800, gpio.High}, {1050, gpio.Low},
		{1550, gpio.High}, {1800, gpio.Low},
	}, r.buzzer.edges)

	assert.Equal(t, 1000, r.sensor.reads)
	assert.InDelta(t, 1000, int(captureEnd-captureStart), 2)
	for i, v := range r.m.Samples() {
		require.Equal(t, float32(1), v, "sample %d", i)
	}

	v, text := r.m.LastSpeed()
	assert.InDelta(t, 35.316, v, 1e-3)
	assert.Equal(t, "35.3", text)
	assert.Equal(t, 1, r.m.Cycles())

	want := []string{
		"clear", "2:3:2x",
		"clear", "2:2:2x",
		"clear", "2:1:2x",
		"clear", "2:GO!:2x",
		"clear", "0:Punch Speed:1x", "2:35.3:2x", "5:km/h:2x",
	}
	want = append(want, idleScreen()...)
	assert.Equal(t, want, r.disp.log)
}

func TestRearmWaitsForRelease(t *testing.T) {
	// Pressed for the debounce, still held through the result and for three
	// release polls afterwards.
	r := newRig(gpio.Low, gpio.Low, gpio.Low, gpio.Low, gpio.Low, gpio.High)

	for r.m.Cycles() == 0 {
		require.NoError(t, r.m.Step())
	}
	require.NoError(t, r.m.Step())

	delays := r.clk.Delays()
	assert.Equal(t, []uint32{5000, 10, 10, 10, 20}, delays[len(delays)-5:])
	assert.Equal(t, 6, r.trigger.reads)

	// Released: the next step is an ordinary idle poll, not a new press.
	require.NoError(t, r.m.Step())
	assert.Equal(t, StateIdle, r.m.State())
	assert.Equal(t, uint32(20), r.clk.Delays()[len(r.clk.Delays())-1])
}

func TestNegativeResultFormatting(t *testing.T) {
	r := newRig(gpio.Low, gpio.Low, gpio.High)
	r.sensor.values = []float32{-2, -1, 0}

	for r.m.Cycles() == 0 {
		require.NoError(t, r.m.Step())
	}

	v, text := r.m.LastSpeed()
	assert.Zero(t, v)
	assert.Equal(t, "0.0", text)
}

func TestRunStopsWhenIdle(t *testing.T) {
	r := newRig(gpio.High)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.m.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.clk.Delays())
}

func TestRunFinishesMeasurement(t *testing.T) {
	r := newRig(gpio.Low, gpio.Low, gpio.High)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.m.OnTransition(func(from, to State) {
		if to == StateCapturing {
			cancel()
		}
	})

	err := r.m.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1000, r.sensor.reads)
	assert.Equal(t, 1, r.m.Cycles())
	assert.Equal(t, StateIdle, r.m.State())
}

func TestPanicHalts(t *testing.T) {
	r := newRig(gpio.Low, gpio.Low, gpio.High)
	r.sensor.panicAt = 10

	err := r.m.Run(context.Background())

	assert.ErrorIs(t, err, ErrHalted)
	assert.Equal(t, StateHalted, r.m.State())
	require.Error(t, r.m.Err())
	assert.Contains(t, r.m.Err().Error(), "bus wedged")

	// Terminal: stepping again does nothing.
	reads := r.sensor.reads
	assert.ErrorIs(t, r.m.Step(), ErrHalted)
	assert.Equal(t, reads, r.sensor.reads)
	assert.Equal(t, StateHalted, r.m.State())
}

func TestFaultOnce(t *testing.T) {
	r := newRig(gpio.High)

	r.m.Fault(errors.New("first"))
	r.m.Fault(errors.New("second"))

	assert.Equal(t, "first", r.m.Err().Error())
	assert.Equal(t, []string{"idle>halted"}, r.moves)
}

func TestFormatSpeed(t *testing.T) {
	tests := []struct {
		in   float32
		want string
	}{
		{in: 35.316, want: "35.3"},
		{in: 0, want: "0.0"},
		{in: 9.99, want: "9.9"},
		{in: 123.456, want: "123.4"},
		{in: 100.05, want: "100.0"},
		{in: -2.75, want: "-2.7"},
		{in: -0.5, want: "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSpeed(tt.in))
		})
	}
}
