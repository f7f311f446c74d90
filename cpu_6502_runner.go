package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

const default6502LoadAddr = 0x0600

// CPU6502Config selects where a raw program image lands and where
// execution begins. Zero values mean "load at 0x0600, enter at the load
// address".
type CPU6502Config struct {
	LoadAddr uint16
	Entry    uint16
}

// CPU6502Runner owns the lifecycle around a CPU core: loading raw images
// into the bus, seeding the hardware vectors, and driving execution either
// synchronously (Run, Step) or on a background goroutine
// (StartExecution/Stop).
//
// Ownership protocol: between StartExecution and Stop the run goroutine
// owns the core and no other goroutine may touch CPU or bus state. Stop
// returns only after the goroutine has exited; the channel close
// publishes all core state written by the goroutine. StartExecution and
// Stop are paired calls from one controlling goroutine.
type CPU6502Runner struct {
	cpu      *CPU
	bus      *MachineBus
	loadAddr uint16
	entry    uint16

	PerfEnabled bool

	running atomic.Bool
	done    chan struct{}
	runErr  error

	perfStartTime  time.Time
	lastPerfReport time.Time
}

func NewCPU6502Runner(bus *MachineBus, config CPU6502Config) *CPU6502Runner {
	loadAddr := config.LoadAddr
	if loadAddr == 0 {
		loadAddr = default6502LoadAddr
	}

	return &CPU6502Runner{
		cpu:      NewCPU(bus),
		bus:      bus,
		loadAddr: loadAddr,
		entry:    config.Entry,
	}
}

// LoadProgram reads a raw binary image from disk and installs it via
// LoadBytes.
func (r *CPU6502Runner) LoadProgram(filename string) error {
	program, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return r.LoadBytes(program)
}

// LoadBytes clears the bus, copies the image to the configured load
// address, points the reset/NMI/IRQ vectors at the entry address and
// resets the core so the next Step fetches the first instruction. The
// image must fit below the top of the address space; the loader refuses
// to wrap rather than silently corrupt page zero.
func (r *CPU6502Runner) LoadBytes(program []byte) error {
	end := int(r.loadAddr) + len(program)
	if end > MEMORY_SIZE {
		return fmt.Errorf("6502 program too large: end=0x%X, limit=0x%X", end, MEMORY_SIZE)
	}

	r.bus.Reset()
	r.bus.LoadBytes(r.loadAddr, program)

	entry := r.entry
	if entry == 0 {
		entry = r.loadAddr
	}

	// Reset/NMI/IRQ vectors point at entry by default.
	r.bus.Write(RESET_VECTOR, byte(entry&0x00FF))
	r.bus.Write(RESET_VECTOR+1, byte(entry>>8))
	r.bus.Write(NMI_VECTOR, byte(entry&0x00FF))
	r.bus.Write(NMI_VECTOR+1, byte(entry>>8))
	r.bus.Write(IRQ_VECTOR, byte(entry&0x00FF))
	r.bus.Write(IRQ_VECTOR+1, byte(entry>>8))

	r.cpu.Reset()
	return nil
}

func (r *CPU6502Runner) Reset() {
	r.cpu.Reset()
}

// Step forwards a single instruction cycle to the core. Only valid while
// no background run is active.
func (r *CPU6502Runner) Step() error {
	return r.cpu.Step()
}

// Run drives the core synchronously until maxInstructions have retired
// or the core errors. maxInstructions = 0 removes the budget; the call
// then returns only when the core faults, so unbounded interactive runs
// belong on StartExecution instead.
func (r *CPU6502Runner) Run(maxInstructions uint64) error {
	r.perfStartTime = time.Now()

	var err error
	for executed := uint64(0); maxInstructions == 0 || executed < maxInstructions; executed++ {
		if err = r.cpu.Step(); err != nil {
			break
		}
	}
	if r.PerfEnabled {
		r.reportPerf(time.Now())
	}
	return err
}

// StartExecution launches the background run goroutine. No-op when one
// is already active.
func (r *CPU6502Runner) StartExecution() {
	if r.running.Load() {
		return
	}
	r.done = make(chan struct{})
	r.runErr = nil
	r.running.Store(true)
	go r.run()
}

// Stop halts the background run at the next instruction boundary and
// waits for the goroutine to exit. Returns the error that ended the run,
// if any. Safe to call when nothing is running.
func (r *CPU6502Runner) Stop() error {
	if r.done == nil {
		return r.runErr
	}
	r.running.Store(false)
	<-r.done
	return r.runErr
}

// Running reports whether the background run goroutine is active.
func (r *CPU6502Runner) Running() bool {
	return r.running.Load()
}

func (r *CPU6502Runner) run() {
	defer close(r.done)

	r.perfStartTime = time.Now()
	r.lastPerfReport = r.perfStartTime

	// The stop flag is checked once per batch, not per instruction, and
	// only after a batch has run: a Stop that lands before this goroutine
	// is scheduled still observes forward progress.
	for {
		for i := 0; i < 4096; i++ {
			if err := r.cpu.Step(); err != nil {
				r.runErr = err
				r.running.Store(false)
				return
			}
		}

		if r.PerfEnabled {
			now := time.Now()
			if now.Sub(r.lastPerfReport) >= time.Second {
				r.reportPerf(now)
				r.lastPerfReport = now
			}
		}

		if !r.running.Load() {
			return
		}
	}
}

func (r *CPU6502Runner) reportPerf(now time.Time) {
	elapsed := now.Sub(r.perfStartTime).Seconds()
	if elapsed <= 0 {
		return
	}
	ips := float64(r.cpu.InstructionCount) / elapsed
	mips := ips / 1_000_000
	fmt.Printf("6502: %.2f MIPS (%.0f instructions in %.1fs)\n", mips, float64(r.cpu.InstructionCount), elapsed)
}

func (r *CPU6502Runner) CPU() *CPU {
	return r.cpu
}

func (r *CPU6502Runner) Bus() *MachineBus {
	return r.bus
}
