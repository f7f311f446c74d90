package main

import (
	"os"
	"testing"
)

type cpu6502TestRig struct {
	bus *MachineBus
	cpu *CPU
}

func newCPU6502TestRig() *cpu6502TestRig {
	bus := NewMachineBus()
	cpu := NewCPU(bus)
	return &cpu6502TestRig{
		bus: bus,
		cpu: cpu,
	}
}

func (r *cpu6502TestRig) resetAndLoad(start uint16, program []byte) {
	r.bus.Reset()
	r.bus.LoadBytes(start, program)
	r.cpu.Reset()
	r.cpu.PC = start
}

func (r *cpu6502TestRig) setVectors(entry uint16) {
	r.bus.Write(RESET_VECTOR, byte(entry&0x00FF))
	r.bus.Write(RESET_VECTOR+1, byte(entry>>8))
	r.bus.Write(NMI_VECTOR, byte(entry&0x00FF))
	r.bus.Write(NMI_VECTOR+1, byte(entry>>8))
	r.bus.Write(IRQ_VECTOR, byte(entry&0x00FF))
	r.bus.Write(IRQ_VECTOR+1, byte(entry>>8))
}

func (r *cpu6502TestRig) step(t *testing.T, count int) {
	t.Helper()

	for i := 0; i < count; i++ {
		if err := r.cpu.Step(); err != nil {
			t.Fatalf("step %d: %v (PC=0x%04X)", i+1, err, r.cpu.PC)
		}
	}
}

func (r *cpu6502TestRig) runUntilPC(t *testing.T, target uint16, maxSteps int) {
	t.Helper()

	for i := 0; i < maxSteps; i++ {
		if r.cpu.PC == target {
			return
		}
		if err := r.cpu.Step(); err != nil {
			t.Fatalf("CPU faulted before reaching PC=0x%04X: %v (current PC=0x%04X)", target, err, r.cpu.PC)
		}
	}
	t.Fatalf("gave up waiting for PC=0x%04X after %d steps (current PC=0x%04X)", target, maxSteps, r.cpu.PC)
}

func requireTestFile(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Skipf("missing test artifact %s (run xa to build the .bin)", path)
	}
	return data
}
