package sched

import (
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kjordahl/chippy8/internal/chip8"
)

const (
	// InstructionFrequency is the rate, in Hz, the interpreter tick runs at.
	InstructionFrequency = 700
	// TimerFrequency is the rate, in Hz, the delay and sound timers count
	// down at, independent of InstructionFrequency.
	TimerFrequency = 60
)

// Keyboard is the input poller's contract with Machine: at most one key
// transition is reported per call, matching the interpreter's
// single-consumer just-pressed/just-released semantics. Terminal event
// reading lives outside this package; Machine only needs this snapshot.
type Keyboard interface {
	Update() (key byte, isPress bool, changed bool)
}

// Display is a dirty-flag wrapper around the raw pixel buffer so the render
// tick only redraws frames the interpreter actually changed, and so render
// and step ticks never race on the buffer itself.
type Display struct {
	mu    sync.Mutex
	frame chip8.DisplayBuffer
	dirty bool
}

// Update replaces the buffered frame and marks it dirty.
func (d *Display) Update(frame chip8.DisplayBuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frame = frame
	d.dirty = true
}

// ExtractFrame returns the latest frame and clears the dirty flag. ok is
// false if nothing changed since the last extraction.
func (d *Display) ExtractFrame() (frame chip8.DisplayBuffer, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.dirty {
		return chip8.DisplayBuffer{}, false
	}
	d.dirty = false
	return d.frame, true
}

// Refresh forces the next ExtractFrame to report dirty even though the
// pixel buffer itself hasn't changed, e.g. after a terminal resize.
func (d *Display) Refresh() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dirty = true
}

// Machine couples a VM with the timers, display and keyboard the three
// scheduling loops share. Every exported method (Active, Stop, Tick) takes
// the machine's lock, and Display has a lock of its own, so the instruction
// and render loops can run concurrently without racing on shared state.
type Machine struct {
	mu sync.Mutex

	VM       *chip8.VM
	Display  *Display
	Keyboard Keyboard

	delayTimer float64
	soundTimer float64
	active     bool

	onSoundTimerZero func()

	logger *logrus.Logger
}

// NewMachine wires a VM to a keyboard collaborator and starts it active.
// onSoundTimerZero, if non-nil, fires once each time the sound timer
// transitions from 1 to 0 — the one edge a CHIP-8 program expects to make a
// noise on.
func NewMachine(vm *chip8.VM, keyboard Keyboard, onSoundTimerZero func(), logger *logrus.Logger) *Machine {
	return &Machine{
		VM:               vm,
		Display:          &Display{},
		Keyboard:         keyboard,
		active:           true,
		onSoundTimerZero: onSoundTimerZero,
		logger:           logger,
	}
}

// Active reports whether the machine should keep running.
func (m *Machine) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Stop marks the machine inactive; the three scheduling loops notice on
// their next tick and wind down.
func (m *Machine) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = false
}

// Tick runs exactly one instruction. elapsed is the wall-clock time since
// the previous tick, used to count the timers down at TimerFrequency
// independent of how fast the instruction loop itself is actually running.
func (m *Machine) Tick(elapsed time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.active {
		return nil
	}

	decay := elapsed.Seconds() * TimerFrequency
	m.delayTimer = math.Max(m.delayTimer-decay, 0)

	wasSounding := m.soundTimer >= 1
	m.soundTimer = math.Max(m.soundTimer-decay, 0)
	if wasSounding && m.soundTimer < 1 && m.onSoundTimerZero != nil {
		m.onSoundTimerZero()
	}

	if key, isPress, changed := m.Keyboard.Update(); changed {
		if isPress {
			m.VM.QueueKeyEvent(chip8.KeyDown, key)
		} else {
			m.VM.QueueKeyEvent(chip8.KeyUp, key)
		}
	}
	m.VM.Interp.Input.DelayTimer = byte(math.Ceil(m.delayTimer))

	output, err := m.VM.Step()
	if err != nil {
		return err
	}

	switch output.Request.Kind {
	case chip8.RequestDisplay:
		m.Display.Update(output.Display)
	case chip8.RequestSetDelayTimer:
		m.delayTimer = float64(output.Request.Value)
	case chip8.RequestSetSoundTimer:
		m.soundTimer = float64(output.Request.Value)
	}

	if m.logger != nil {
		m.logger.Tracef("tick: pc=%#04x awaiting_input=%v", m.VM.Interp.PC, output.AwaitingInput)
	}

	return nil
}
