// script_host.go - Lua scripting host for driving the machine

package main

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

func init() {
	compiledFeatures = append(compiledFeatures, "script:gopher-lua")
}

// ScriptHost embeds a Lua interpreter with a "six5" global exposing the
// machine: memory peek/poke, program loading, execution control, register
// and flag access, and the interrupt lines. Scripts drive the core
// synchronously and own it for the duration of a run; machine faults
// surface as Lua errors so scripts can trap them with pcall.
type ScriptHost struct {
	runner *CPU6502Runner
}

func NewScriptHost(runner *CPU6502Runner) *ScriptHost {
	return &ScriptHost{runner: runner}
}

// RunFile executes a Lua script from disk against the machine.
func (s *ScriptHost) RunFile(path string) error {
	L := lua.NewState()
	defer L.Close()
	s.registerAPI(L)
	return L.DoFile(path)
}

// RunString executes Lua source against the machine.
func (s *ScriptHost) RunString(src string) error {
	L := lua.NewState()
	defer L.Close()
	s.registerAPI(L)
	return L.DoString(src)
}

// flagMasks6502 maps the conventional flag letters to status bits. The
// transient B bit and the fixed bit 5 are not scriptable.
var flagMasks6502 = map[string]byte{
	"C": CARRY_FLAG,
	"Z": ZERO_FLAG,
	"I": INTERRUPT_FLAG,
	"D": DECIMAL_FLAG,
	"V": OVERFLOW_FLAG,
	"N": NEGATIVE_FLAG,
}

func (s *ScriptHost) registerAPI(L *lua.LState) {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"peek":         s.luaPeek,
		"peek16":       s.luaPeek16,
		"poke":         s.luaPoke,
		"write":        s.luaWrite,
		"load":         s.luaLoad,
		"reset":        s.luaReset,
		"step":         s.luaStep,
		"run":          s.luaRun,
		"reg":          s.luaGetReg,
		"setreg":       s.luaSetReg,
		"flag":         s.luaGetFlag,
		"setflag":      s.luaSetFlag,
		"irq":          s.luaIRQ,
		"nmi":          s.luaNMI,
		"instructions": s.luaInstructions,
	})
	L.SetGlobal("six5", mod)
}

func (s *ScriptHost) luaPeek(L *lua.LState) int {
	addr := L.CheckInt(1)
	L.Push(lua.LNumber(s.runner.CPU().Read(uint16(addr))))
	return 1
}

func (s *ScriptHost) luaPeek16(L *lua.LState) int {
	addr := L.CheckInt(1)
	L.Push(lua.LNumber(s.runner.CPU().read16(uint16(addr))))
	return 1
}

func (s *ScriptHost) luaPoke(L *lua.LState) int {
	addr := L.CheckInt(1)
	value := L.CheckInt(2)
	s.runner.CPU().Write(uint16(addr), byte(value))
	return 0
}

// luaWrite stores a table of bytes starting at addr and returns the
// number written. six5.write(0x0600, {0xA9, 0x03, 0x60})
func (s *ScriptHost) luaWrite(L *lua.LState) int {
	addr := L.CheckInt(1)
	tbl := L.CheckTable(2)

	cpu := s.runner.CPU()
	n := tbl.Len()
	for i := 1; i <= n; i++ {
		value := lua.LVAsNumber(tbl.RawGetInt(i))
		cpu.Write(uint16(addr)+uint16(i-1), byte(value))
	}
	L.Push(lua.LNumber(n))
	return 1
}

func (s *ScriptHost) luaLoad(L *lua.LState) int {
	path := L.CheckString(1)
	if err := s.runner.LoadProgram(path); err != nil {
		L.RaiseError("load: %s", err.Error())
	}
	return 0
}

func (s *ScriptHost) luaReset(L *lua.LState) int {
	s.runner.Reset()
	return 0
}

// luaStep executes n instructions (default 1) and returns how many
// retired. A machine fault raises a Lua error.
func (s *ScriptHost) luaStep(L *lua.LState) int {
	count := L.OptInt(1, 1)

	executed := 0
	for i := 0; i < count; i++ {
		if err := s.runner.Step(); err != nil {
			L.RaiseError("step %d: %s", executed+1, err.Error())
		}
		executed++
	}
	L.Push(lua.LNumber(executed))
	return 1
}

func (s *ScriptHost) luaRun(L *lua.LState) int {
	count := L.CheckInt(1)
	if err := s.runner.Run(uint64(count)); err != nil {
		L.RaiseError("run: %s", err.Error())
	}
	return 0
}

func (s *ScriptHost) luaGetReg(L *lua.LState) int {
	cpu := s.runner.CPU()
	switch strings.ToUpper(L.CheckString(1)) {
	case "A":
		L.Push(lua.LNumber(cpu.A))
	case "X":
		L.Push(lua.LNumber(cpu.X))
	case "Y":
		L.Push(lua.LNumber(cpu.Y))
	case "SP":
		L.Push(lua.LNumber(cpu.SP))
	case "PC":
		L.Push(lua.LNumber(cpu.PC))
	case "SR":
		L.Push(lua.LNumber(cpu.SR))
	default:
		L.ArgError(1, "unknown register")
	}
	return 1
}

func (s *ScriptHost) luaSetReg(L *lua.LState) int {
	cpu := s.runner.CPU()
	value := L.CheckInt(2)
	switch strings.ToUpper(L.CheckString(1)) {
	case "A":
		cpu.A = byte(value)
	case "X":
		cpu.X = byte(value)
	case "Y":
		cpu.Y = byte(value)
	case "SP":
		cpu.SP = byte(value)
	case "PC":
		cpu.PC = uint16(value)
	case "SR":
		cpu.SR = byte(value)
	default:
		L.ArgError(1, "unknown register")
	}
	return 0
}

func (s *ScriptHost) luaGetFlag(L *lua.LState) int {
	mask, ok := flagMasks6502[strings.ToUpper(L.CheckString(1))]
	if !ok {
		L.ArgError(1, "unknown flag")
	}
	L.Push(lua.LBool(s.runner.CPU().GetFlag(mask)))
	return 1
}

func (s *ScriptHost) luaSetFlag(L *lua.LState) int {
	mask, ok := flagMasks6502[strings.ToUpper(L.CheckString(1))]
	if !ok {
		L.ArgError(1, "unknown flag")
	}
	s.runner.CPU().SetFlag(mask, L.CheckBool(2))
	return 0
}

func (s *ScriptHost) luaIRQ(L *lua.LState) int {
	s.runner.CPU().SetIRQLine(L.CheckBool(1))
	return 0
}

func (s *ScriptHost) luaNMI(L *lua.LState) int {
	s.runner.CPU().SetNMILine(L.CheckBool(1))
	return 0
}

func (s *ScriptHost) luaInstructions(L *lua.LState) int {
	L.Push(lua.LNumber(s.runner.CPU().InstructionCount))
	return 1
}
