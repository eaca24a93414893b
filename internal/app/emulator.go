package app

import (
	"fmt"
	"time"

	"gochip8/internal/cpu"
)

// rateWindow is the period over which cycles per second are measured
const rateWindow = time.Second

// Emulator manages the emulation loop and timing. Each Update runs as many
// cycles as the elapsed time allows at one cycle per cycle delay, capped at
// maxCyclesPerUpdate so a stalled host does not trigger a long catch-up.
type Emulator struct {
	cpu    *cpu.CPU
	config *Config

	// Timing control
	now                func() time.Time
	lastUpdateTime     time.Time
	accumulatedTime    time.Duration
	cycleDelay         time.Duration
	maxCyclesPerUpdate int

	// Performance monitoring
	updateCount      uint64
	lastCycles       int
	droppedCycles    uint64
	rateWindowStart  time.Time
	rateWindowCycles uint64
	cyclesPerSecond  float64

	isRunning bool
}

// NewEmulator creates an emulator driving c with the timing from config
func NewEmulator(c *cpu.CPU, config *Config) *Emulator {
	e := &Emulator{
		cpu:                c,
		config:             config,
		now:                time.Now,
		cycleDelay:         time.Duration(config.Emulation.CycleDelayMs) * time.Millisecond,
		maxCyclesPerUpdate: config.Emulation.MaxCyclesPerUpdate,
	}
	if e.maxCyclesPerUpdate <= 0 {
		e.maxCyclesPerUpdate = DefaultMaxCyclesPerUpdate
	}

	e.Reset()
	return e
}

// Reset clears timing and performance state. Machine state is reset
// separately through the CPU.
func (e *Emulator) Reset() {
	now := e.now()
	e.lastUpdateTime = now
	e.accumulatedTime = 0
	e.updateCount = 0
	e.lastCycles = 0
	e.droppedCycles = 0
	e.rateWindowStart = now
	e.rateWindowCycles = 0
	e.cyclesPerSecond = 0
}

// Start starts the emulator. Time spent stopped is not caught up.
func (e *Emulator) Start() {
	e.isRunning = true
	e.lastUpdateTime = e.now()
	e.accumulatedTime = 0
}

// Stop stops the emulator
func (e *Emulator) Stop() {
	e.isRunning = false
}

// Update runs the cycles due since the previous update
func (e *Emulator) Update() error {
	if !e.isRunning {
		return nil
	}
	if e.cpu == nil {
		return fmt.Errorf("cpu not initialized")
	}

	now := e.now()
	elapsed := now.Sub(e.lastUpdateTime)
	e.lastUpdateTime = now
	if elapsed < 0 {
		elapsed = 0
	}

	due := e.maxCyclesPerUpdate
	if e.cycleDelay > 0 {
		e.accumulatedTime += elapsed
		due = int(e.accumulatedTime / e.cycleDelay)
		if due > e.maxCyclesPerUpdate {
			e.droppedCycles += uint64(due - e.maxCyclesPerUpdate)
			due = e.maxCyclesPerUpdate
			e.accumulatedTime = 0
		} else {
			e.accumulatedTime -= time.Duration(due) * e.cycleDelay
		}
	}

	e.RunCycles(due)
	e.lastCycles = due
	e.updateCount++
	e.updateRate(now)

	return nil
}

// RunCycles executes exactly n cycles
func (e *Emulator) RunCycles(n int) {
	for i := 0; i < n; i++ {
		e.cpu.Cycle()
	}
	e.rateWindowCycles += uint64(n)
}

// StepInstruction executes a single cycle, whether or not the emulator is
// running
func (e *Emulator) StepInstruction() error {
	if e.cpu == nil {
		return fmt.Errorf("cpu not initialized")
	}
	e.RunCycles(1)
	return nil
}

func (e *Emulator) updateRate(now time.Time) {
	window := now.Sub(e.rateWindowStart)
	if window < rateWindow {
		return
	}
	e.cyclesPerSecond = float64(e.rateWindowCycles) / window.Seconds()
	e.rateWindowStart = now
	e.rateWindowCycles = 0
}

// SetCycleDelay sets the minimum time between cycles. Zero runs
// maxCyclesPerUpdate cycles on every update.
func (e *Emulator) SetCycleDelay(delay time.Duration) {
	if delay >= 0 {
		e.cycleDelay = delay
	}
}

// GetCycleDelay returns the minimum time between cycles
func (e *Emulator) GetCycleDelay() time.Duration {
	return e.cycleDelay
}

// SetMaxCyclesPerUpdate sets the catch-up cap
func (e *Emulator) SetMaxCyclesPerUpdate(n int) {
	if n > 0 {
		e.maxCyclesPerUpdate = n
	}
}

// GetCycleCount returns the number of cycles the CPU has executed
func (e *Emulator) GetCycleCount() uint64 {
	return e.cpu.Cycles()
}

// GetLastCycles returns the number of cycles run by the last update
func (e *Emulator) GetLastCycles() int {
	return e.lastCycles
}

// GetDroppedCycles returns the cycles skipped because of the catch-up cap
func (e *Emulator) GetDroppedCycles() uint64 {
	return e.droppedCycles
}

// GetUpdateCount returns the number of updates processed while running
func (e *Emulator) GetUpdateCount() uint64 {
	return e.updateCount
}

// GetCyclesPerSecond returns the measured execution rate
func (e *Emulator) GetCyclesPerSecond() float64 {
	return e.cyclesPerSecond
}

// IsRunning returns whether the emulator is running
func (e *Emulator) IsRunning() bool {
	return e.isRunning
}
