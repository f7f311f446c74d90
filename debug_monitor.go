// debug_monitor.go - Machine Monitor: command parser, handlers and terminal front end

/*
███████╗██╗██╗  ██╗███████╗ ██████╗  ██████╗ ██████╗
██╔════╝██║╚██╗██╔╝██╔════╝██╔════╝ ██╔═══██╗╚════██╗
███████╗██║ ╚███╔╝ ███████╗██║  ███╗██║   ██║ █████╔╝
╚════██║██║ ██╔██╗ ╚════██║██║   ██║██║   ██║██╔═══╝
███████║██║██╔╝ ██╗███████║╚██████╔╝╚██████╔╝███████╗
╚══════╝╚═╝╚═╝  ╚═╝╚══════╝ ╚═════╝  ╚═════╝ ╚══════╝

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/six5go2
Buy me a coffee: https://ko-fi.com/intuition/tip

License: GPLv3 or later
*/

/*
debug_monitor.go - Machine Monitor

A classic machine-language monitor over the DebuggableCPU seam: register
and flag inspection, memory dump/edit/fill/hunt/copy, disassembly,
breakpoints, single-step and run control. Output accumulates in a styled
scrollback buffer, so every command is exercisable from tests without a
terminal; the interactive front end drains that buffer onto a raw-mode
terminal driven by golang.org/x/term.

Command input is line-oriented. While the CPU runs in the background the
prompt stays live, and a breakpoint hit reports asynchronously into the
session.
*/

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/term"
)

func init() {
	compiledFeatures = append(compiledFeatures, "monitor:term")
}

// MonitorState represents whether the monitor owns the machine.
type MonitorState int

const (
	MonitorInactive MonitorState = iota
	MonitorActive
)

// OutputLine holds styled text for the monitor scrollback buffer.
type OutputLine struct {
	Text  string
	Color uint32 // RGBA packed
}

// Color constants (RGBA packed as 0xRRGGBBAA)
const (
	colorWhite  = 0xFFFFFFFF
	colorCyan   = 0x64C8FFFF
	colorYellow = 0xFFFF55FF
	colorRed    = 0xFF5555FF
	colorGreen  = 0x55FF55FF
	colorDim    = 0x5555FFFF
)

// MonitorCommand is a parsed command with name and arguments.
type MonitorCommand struct {
	Name string
	Args []string
}

// ParseCommand splits a raw input line into a command name and arguments.
func ParseCommand(input string) MonitorCommand {
	input = strings.TrimSpace(input)
	if input == "" {
		return MonitorCommand{}
	}
	parts := strings.Fields(input)
	return MonitorCommand{
		Name: strings.ToLower(parts[0]),
		Args: parts[1:],
	}
}

// ParseAddress parses a monitor address in various formats:
// $hex, 0xhex, bare hex, #decimal
func ParseAddress(s string) (uint64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// #decimal
	if strings.HasPrefix(s, "#") {
		v, err := strconv.ParseUint(s[1:], 10, 64)
		return v, err == nil
	}

	// $hex
	if strings.HasPrefix(s, "$") {
		v, err := strconv.ParseUint(s[1:], 16, 64)
		return v, err == nil
	}

	// 0x or 0X hex
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 64)
		return v, err == nil
	}

	// bare hex
	v, err := strconv.ParseUint(s, 16, 64)
	return v, err == nil
}

// EvalAddress evaluates a simple expression: <term> [+|- <term>]*
// Each term is either a register name or a numeric address.
func EvalAddress(expr string, cpu DebuggableCPU) (uint64, bool) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, false
	}

	type token struct {
		text string
		op   byte // 0 for first term, '+' or '-'
	}

	var tokens []token
	current := strings.Builder{}
	currentOp := byte(0)

	for i := 0; i < len(expr); i++ {
		ch := expr[i]
		if (ch == '+' || ch == '-') && i > 0 {
			t := strings.TrimSpace(current.String())
			if t != "" {
				tokens = append(tokens, token{text: t, op: currentOp})
			}
			currentOp = ch
			current.Reset()
		} else {
			current.WriteByte(ch)
		}
	}
	t := strings.TrimSpace(current.String())
	if t != "" {
		tokens = append(tokens, token{text: t, op: currentOp})
	}

	if len(tokens) == 0 {
		return 0, false
	}

	var result uint64
	for _, tok := range tokens {
		var val uint64
		var ok bool

		// Register names win over bare hex, so "PC+2" means what it says.
		if cpu != nil {
			val, ok = cpu.GetRegister(strings.ToUpper(tok.text))
		}
		if !ok {
			val, ok = ParseAddress(tok.text)
		}
		if !ok {
			return 0, false
		}

		switch tok.op {
		case 0, '+':
			result += val
		case '-':
			result -= val
		}
	}

	return result, true
}

// MachineMonitor is the debugger state machine around one DebuggableCPU.
type MachineMonitor struct {
	mu    sync.Mutex
	state MonitorState

	cpu DebuggableCPU

	breakpointChan chan BreakpointEvent
	tempBreaks     map[uint64]bool

	outputLines []OutputLine
	flushed     int
	maxOutput   int

	history  []string
	prevRegs map[string]uint64 // for change highlighting

	terminal *term.Terminal // interactive sink, nil under test
}

// NewMachineMonitor creates a monitor bound to one debuggable CPU.
func NewMachineMonitor(cpu DebuggableCPU) *MachineMonitor {
	m := &MachineMonitor{
		state:          MonitorInactive,
		cpu:            cpu,
		breakpointChan: make(chan BreakpointEvent, 1),
		tempBreaks:     make(map[uint64]bool),
		maxOutput:      500,
		prevRegs:       make(map[string]uint64),
	}
	cpu.SetBreakpointChannel(m.breakpointChan)
	return m
}

// IsActive returns whether the monitor currently owns the machine.
func (m *MachineMonitor) IsActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == MonitorActive
}

// Activate freezes the CPU and enters the monitor.
func (m *MachineMonitor) Activate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == MonitorActive {
		return
	}
	m.state = MonitorActive

	if m.cpu.IsRunning() {
		if err := m.cpu.Freeze(); err != nil {
			m.appendOutput(fmt.Sprintf("Halted: %v", err), colorRed)
		}
	}

	m.saveCurrentRegs()

	m.appendOutput(fmt.Sprintf("MACHINE MONITOR - %s - Type ? for help", m.cpu.CPUName()), colorCyan)
	m.showRegisters()
	m.showDisassembly(0, 8)
}

// Deactivate leaves the monitor. The CPU stays frozen; restarting it is
// the caller's decision.
func (m *MachineMonitor) Deactivate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = MonitorInactive
}

// StartBreakpointListener runs a background goroutine that watches for
// breakpoint events and reports them into the session.
func (m *MachineMonitor) StartBreakpointListener() {
	go func() {
		for ev := range m.breakpointChan {
			m.handleBreakpointHit(ev)
		}
	}()
}

func (m *MachineMonitor) handleBreakpointHit(ev BreakpointEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tempBreaks[ev.Address] {
		m.cpu.ClearBreakpoint(ev.Address)
		delete(m.tempBreaks, ev.Address)
	}

	m.appendOutput(fmt.Sprintf("BREAK at $%X on %s", ev.Address, m.cpu.CPUName()), colorRed)
	m.saveCurrentRegs()
	m.showRegisters()
	m.showDisassembly(0, 8)
	m.flushLocked()
}

// appendOutput adds a line to the scrollback buffer. Callers hold m.mu.
func (m *MachineMonitor) appendOutput(text string, color uint32) {
	m.outputLines = append(m.outputLines, OutputLine{Text: text, Color: color})
	if len(m.outputLines) > m.maxOutput {
		trim := len(m.outputLines) - m.maxOutput
		m.outputLines = m.outputLines[trim:]
		m.flushed = max(0, m.flushed-trim)
	}
}

// Output returns a copy of the scrollback buffer.
func (m *MachineMonitor) Output() []OutputLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := make([]OutputLine, len(m.outputLines))
	copy(lines, m.outputLines)
	return lines
}

// saveCurrentRegs snapshots the registers for change detection.
func (m *MachineMonitor) saveCurrentRegs() {
	m.prevRegs = make(map[string]uint64)
	for _, r := range m.cpu.GetRegisters() {
		m.prevRegs[r.Name] = r.Value
	}
}

func (m *MachineMonitor) addrFormat() string {
	switch {
	case m.cpu.AddressWidth() <= 16:
		return "%04X"
	case m.cpu.AddressWidth() <= 32:
		return "%06X"
	default:
		return "%08X"
	}
}

// checkRange bounds a start/end address pair to the attached core's bus.
// size is end-start+1 in bytes; ok is false for an inverted pair, for
// addresses past the top of the address space, or for a span wider than
// the bus.
func (m *MachineMonitor) checkRange(start, end uint64) (size int, ok bool) {
	mask := ^uint64(0)
	if width := m.cpu.AddressWidth(); width < 64 {
		mask = (uint64(1) << width) - 1
	}
	if end < start || start > mask || end > mask || end-start >= uint64(MEMORY_SIZE) {
		return 0, false
	}
	return int(end-start) + 1, true
}

// ExecuteCommand dispatches one input line to the appropriate handler.
// Returns true when the monitor session should end.
func (m *MachineMonitor) ExecuteCommand(input string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := ParseCommand(input)
	if cmd.Name == "" {
		return false
	}

	if len(m.history) == 0 || m.history[len(m.history)-1] != input {
		m.history = append(m.history, input)
	}

	switch cmd.Name {
	case "r":
		return m.cmdRegisters(cmd)
	case "d":
		return m.cmdDisassemble(cmd)
	case "m":
		return m.cmdMemoryDump(cmd)
	case "s":
		return m.cmdStep(cmd)
	case "g":
		return m.cmdGo(cmd)
	case "z":
		return m.cmdStop(cmd)
	case "u":
		return m.cmdRunUntil(cmd)
	case "x", "q":
		return m.cmdExit(cmd)
	case "b":
		return m.cmdBreakpointSet(cmd)
	case "bc":
		return m.cmdBreakpointClear(cmd)
	case "bl":
		return m.cmdBreakpointList(cmd)
	case "f":
		return m.cmdFill(cmd)
	case "h":
		return m.cmdHunt(cmd)
	case "c":
		return m.cmdCompare(cmd)
	case "t":
		return m.cmdTransfer(cmd)
	case "w", ">":
		return m.cmdWrite(cmd)
	case "save":
		return m.cmdSaveMemory(cmd)
	case "load":
		return m.cmdLoadMemory(cmd)
	case "?", "help":
		return m.cmdHelp(cmd)
	default:
		m.appendOutput(fmt.Sprintf("Unknown command: %s", cmd.Name), colorRed)
		return false
	}
}

func (m *MachineMonitor) cmdRegisters(cmd MonitorCommand) bool {
	if len(cmd.Args) >= 1 {
		// Accept both "r NAME VALUE" and "r NAME=VALUE".
		name, valStr := "", ""
		if eq := strings.IndexByte(cmd.Args[0], '='); eq >= 0 {
			name, valStr = cmd.Args[0][:eq], cmd.Args[0][eq+1:]
		} else if len(cmd.Args) >= 2 {
			name, valStr = cmd.Args[0], cmd.Args[1]
		}

		if name != "" {
			val, ok := ParseAddress(valStr)
			if !ok {
				m.appendOutput(fmt.Sprintf("Invalid value: %s", valStr), colorRed)
				return false
			}
			if m.cpu.SetRegister(name, val) {
				m.appendOutput(fmt.Sprintf("%s = $%X", strings.ToUpper(name), val), colorGreen)
			} else {
				m.appendOutput(fmt.Sprintf("Unknown register: %s", name), colorRed)
			}
			return false
		}
	}

	m.showRegisters()
	return false
}

func (m *MachineMonitor) showRegisters() {
	for _, r := range m.cpu.GetRegisters() {
		color := uint32(colorWhite)
		if prev, ok := m.prevRegs[r.Name]; ok && prev != r.Value {
			color = colorGreen
		}

		var line string
		if r.BitWidth <= 8 {
			line = fmt.Sprintf("%-4s $%02X", r.Name, r.Value)
		} else {
			line = fmt.Sprintf("%-4s $%04X", r.Name, r.Value)
		}
		m.appendOutput(line, color)
	}
}

func (m *MachineMonitor) cmdDisassemble(cmd MonitorCommand) bool {
	addr := m.cpu.GetPC()
	count := 16

	if len(cmd.Args) >= 1 {
		if v, ok := EvalAddress(cmd.Args[0], m.cpu); ok {
			addr = v
		}
	}
	if len(cmd.Args) >= 2 {
		if v, ok := ParseAddress(cmd.Args[1]); ok {
			count = int(v)
		}
	}

	m.showDisassemblyAt(addr, count)
	return false
}

func (m *MachineMonitor) showDisassembly(addr uint64, count int) {
	if addr == 0 {
		addr = m.cpu.GetPC()
	}
	m.showDisassemblyAt(addr, count)
}

func (m *MachineMonitor) showDisassemblyAt(addr uint64, count int) {
	addrFmt := m.addrFormat()

	for _, line := range m.cpu.Disassemble(addr, count) {
		color := uint32(colorWhite)
		prefix := "  "
		if line.IsPC {
			color = colorYellow
			prefix = "> "
		}
		if m.cpu.HasBreakpoint(line.Address) {
			prefix = "* "
			if !line.IsPC {
				color = colorRed
			}
		}

		text := fmt.Sprintf("%s"+addrFmt+": %-9s %s", prefix, line.Address, line.HexBytes, line.Mnemonic)
		m.appendOutput(text, color)
	}
}

func (m *MachineMonitor) cmdMemoryDump(cmd MonitorCommand) bool {
	addr := m.cpu.GetPC()
	lines := 8

	if len(cmd.Args) >= 1 {
		if v, ok := EvalAddress(cmd.Args[0], m.cpu); ok {
			addr = v
		}
	}
	if len(cmd.Args) >= 2 {
		if v, ok := ParseAddress(cmd.Args[1]); ok {
			lines = int(v)
		}
	}

	addrFmt := m.addrFormat()

	for i := 0; i < lines; i++ {
		data := m.cpu.ReadMemory(addr, 16)
		if len(data) == 0 {
			break
		}

		var hexParts []string
		ascii := make([]byte, 0, 16)
		for j := 0; j < 16; j++ {
			if j < len(data) {
				hexParts = append(hexParts, fmt.Sprintf("%02X", data[j]))
				if data[j] >= 0x20 && data[j] < 0x7F {
					ascii = append(ascii, data[j])
				} else {
					ascii = append(ascii, '.')
				}
			} else {
				hexParts = append(hexParts, "  ")
				ascii = append(ascii, ' ')
			}
		}

		hexStr := strings.Join(hexParts[:8], " ") + "  " + strings.Join(hexParts[8:], " ")
		m.appendOutput(fmt.Sprintf(addrFmt+": %s  %s", addr, hexStr, string(ascii)), colorWhite)
		addr += 16
	}
	return false
}

func (m *MachineMonitor) cmdStep(cmd MonitorCommand) bool {
	if m.cpu.IsRunning() {
		m.appendOutput("CPU is running; z to stop first", colorRed)
		return false
	}

	count := 1
	if len(cmd.Args) >= 1 {
		if v, ok := ParseAddress(cmd.Args[0]); ok {
			count = int(v)
		}
	}

	stepped := 0
	for i := 0; i < count; i++ {
		if err := m.cpu.Step(); err != nil {
			m.appendOutput(fmt.Sprintf("Halted: %v", err), colorRed)
			break
		}
		stepped++
	}

	m.appendOutput(fmt.Sprintf("Step: %d instruction(s)", stepped), colorCyan)

	for _, r := range m.cpu.GetRegisters() {
		if prev, ok := m.prevRegs[r.Name]; ok && prev != r.Value {
			m.appendOutput(fmt.Sprintf("  %s: $%X -> $%X", r.Name, prev, r.Value), colorGreen)
		}
	}
	m.saveCurrentRegs()

	m.showDisassembly(0, 1)
	return false
}

func (m *MachineMonitor) cmdGo(cmd MonitorCommand) bool {
	if m.cpu.IsRunning() {
		m.appendOutput("Already running", colorDim)
		return false
	}

	if len(cmd.Args) >= 1 {
		if v, ok := EvalAddress(cmd.Args[0], m.cpu); ok {
			m.cpu.SetPC(v)
		} else {
			m.appendOutput(fmt.Sprintf("Invalid address: %s", cmd.Args[0]), colorRed)
			return false
		}
	}

	m.cpu.Resume()
	m.appendOutput("Running (z to stop)", colorDim)
	return false
}

func (m *MachineMonitor) cmdStop(_ MonitorCommand) bool {
	if !m.cpu.IsRunning() {
		m.appendOutput("Not running", colorDim)
		return false
	}

	if err := m.cpu.Freeze(); err != nil {
		m.appendOutput(fmt.Sprintf("Halted: %v", err), colorRed)
	} else {
		m.appendOutput("Stopped", colorCyan)
	}
	m.saveCurrentRegs()
	m.showRegisters()
	m.showDisassembly(0, 4)
	return false
}

func (m *MachineMonitor) cmdRunUntil(cmd MonitorCommand) bool {
	if m.cpu.IsRunning() {
		m.appendOutput("CPU is running; z to stop first", colorRed)
		return false
	}

	if len(cmd.Args) < 1 {
		m.appendOutput("Usage: u <addr>", colorRed)
		return false
	}

	addr, ok := EvalAddress(cmd.Args[0], m.cpu)
	if !ok {
		m.appendOutput(fmt.Sprintf("Invalid address: %s", cmd.Args[0]), colorRed)
		return false
	}

	// One-shot breakpoint, cleared again when it fires.
	if !m.cpu.HasBreakpoint(addr) {
		m.cpu.SetBreakpoint(addr)
		m.tempBreaks[addr] = true
	}

	m.cpu.Resume()
	m.appendOutput(fmt.Sprintf("Running until $%X", addr), colorDim)
	return false
}

func (m *MachineMonitor) cmdExit(_ MonitorCommand) bool {
	if m.cpu.IsRunning() {
		if err := m.cpu.Freeze(); err != nil {
			m.appendOutput(fmt.Sprintf("Halted: %v", err), colorRed)
		}
	}
	return true
}

func (m *MachineMonitor) cmdBreakpointSet(cmd MonitorCommand) bool {
	if len(cmd.Args) < 1 {
		m.appendOutput("Usage: b <addr>", colorRed)
		return false
	}

	addr, ok := EvalAddress(cmd.Args[0], m.cpu)
	if !ok {
		m.appendOutput(fmt.Sprintf("Invalid address: %s", cmd.Args[0]), colorRed)
		return false
	}

	m.cpu.SetBreakpoint(addr)
	m.appendOutput(fmt.Sprintf("Breakpoint set at $%X", addr), colorCyan)
	return false
}

func (m *MachineMonitor) cmdBreakpointClear(cmd MonitorCommand) bool {
	if len(cmd.Args) < 1 {
		m.appendOutput("Usage: bc <addr> | bc *", colorRed)
		return false
	}

	if cmd.Args[0] == "*" {
		m.cpu.ClearAllBreakpoints()
		m.tempBreaks = make(map[uint64]bool)
		m.appendOutput("All breakpoints cleared", colorCyan)
		return false
	}

	addr, ok := ParseAddress(cmd.Args[0])
	if !ok {
		m.appendOutput(fmt.Sprintf("Invalid address: %s", cmd.Args[0]), colorRed)
		return false
	}

	if m.cpu.ClearBreakpoint(addr) {
		delete(m.tempBreaks, addr)
		m.appendOutput(fmt.Sprintf("Breakpoint cleared at $%X", addr), colorCyan)
	} else {
		m.appendOutput(fmt.Sprintf("No breakpoint at $%X", addr), colorRed)
	}
	return false
}

func (m *MachineMonitor) cmdBreakpointList(_ MonitorCommand) bool {
	bps := m.cpu.ListBreakpoints()
	if len(bps) == 0 {
		m.appendOutput("No breakpoints", colorDim)
		return false
	}
	slices.Sort(bps)
	for _, addr := range bps {
		m.appendOutput(fmt.Sprintf("$%X", addr), colorCyan)
	}
	return false
}

func (m *MachineMonitor) cmdFill(cmd MonitorCommand) bool {
	if len(cmd.Args) < 3 {
		m.appendOutput("Usage: f <start> <end> <byte>", colorRed)
		return false
	}

	start, ok1 := ParseAddress(cmd.Args[0])
	end, ok2 := ParseAddress(cmd.Args[1])
	val, ok3 := ParseAddress(cmd.Args[2])
	if !ok1 || !ok2 || !ok3 {
		m.appendOutput("Invalid argument", colorRed)
		return false
	}

	size, ok := m.checkRange(start, end)
	if !ok {
		m.appendOutput("Invalid range", colorRed)
		return false
	}

	data := make([]byte, size)
	for i := range data {
		data[i] = byte(val)
	}
	m.cpu.WriteMemory(start, data)
	m.appendOutput(fmt.Sprintf("Filled $%X-$%X with $%02X", start, end, byte(val)), colorCyan)
	return false
}

func (m *MachineMonitor) cmdHunt(cmd MonitorCommand) bool {
	if len(cmd.Args) < 3 {
		m.appendOutput("Usage: h <start> <end> <bytes..>", colorRed)
		return false
	}

	start, ok1 := ParseAddress(cmd.Args[0])
	end, ok2 := ParseAddress(cmd.Args[1])
	_, okRange := m.checkRange(start, end)
	if !ok1 || !ok2 || !okRange {
		m.appendOutput("Invalid range", colorRed)
		return false
	}

	var pattern []byte
	for _, arg := range cmd.Args[2:] {
		v, ok := ParseAddress(arg)
		if !ok {
			m.appendOutput(fmt.Sprintf("Invalid byte: %s", arg), colorRed)
			return false
		}
		pattern = append(pattern, byte(v))
	}

	addrFmt := m.addrFormat()
	found := 0
	for addr := start; addr+uint64(len(pattern))-1 <= end; addr++ {
		data := m.cpu.ReadMemory(addr, len(pattern))
		if slices.Equal(data, pattern) {
			m.appendOutput(fmt.Sprintf(addrFmt, addr), colorCyan)
			found++
			if found >= 32 {
				m.appendOutput("... (stopped after 32 matches)", colorDim)
				break
			}
		}
	}
	if found == 0 {
		m.appendOutput("Not found", colorDim)
	}
	return false
}

func (m *MachineMonitor) cmdCompare(cmd MonitorCommand) bool {
	if len(cmd.Args) < 3 {
		m.appendOutput("Usage: c <start> <end> <dest>", colorRed)
		return false
	}

	start, ok1 := ParseAddress(cmd.Args[0])
	end, ok2 := ParseAddress(cmd.Args[1])
	dest, ok3 := ParseAddress(cmd.Args[2])
	_, okRange := m.checkRange(start, end)
	if !ok1 || !ok2 || !ok3 || !okRange {
		m.appendOutput("Invalid argument", colorRed)
		return false
	}

	addrFmt := m.addrFormat()
	diffs := 0
	for offset := uint64(0); offset <= end-start; offset++ {
		a := m.cpu.ReadMemory(start+offset, 1)
		b := m.cpu.ReadMemory(dest+offset, 1)
		if len(a) == 1 && len(b) == 1 && a[0] != b[0] {
			m.appendOutput(fmt.Sprintf(addrFmt+": $%02X != $%02X", start+offset, a[0], b[0]), colorYellow)
			diffs++
			if diffs >= 32 {
				m.appendOutput("... (stopped after 32 differences)", colorDim)
				break
			}
		}
	}
	if diffs == 0 {
		m.appendOutput("Ranges match", colorGreen)
	}
	return false
}

func (m *MachineMonitor) cmdTransfer(cmd MonitorCommand) bool {
	if len(cmd.Args) < 3 {
		m.appendOutput("Usage: t <start> <end> <dest>", colorRed)
		return false
	}

	start, ok1 := ParseAddress(cmd.Args[0])
	end, ok2 := ParseAddress(cmd.Args[1])
	dest, ok3 := ParseAddress(cmd.Args[2])
	size, okRange := m.checkRange(start, end)
	if !ok1 || !ok2 || !ok3 || !okRange {
		m.appendOutput("Invalid argument", colorRed)
		return false
	}

	data := m.cpu.ReadMemory(start, size)
	m.cpu.WriteMemory(dest, data)
	m.appendOutput(fmt.Sprintf("Copied $%X-$%X to $%X", start, end, dest), colorCyan)
	return false
}

func (m *MachineMonitor) cmdWrite(cmd MonitorCommand) bool {
	if len(cmd.Args) < 2 {
		m.appendOutput("Usage: w <addr> <bytes..>", colorRed)
		return false
	}

	addr, ok := EvalAddress(cmd.Args[0], m.cpu)
	if !ok {
		m.appendOutput(fmt.Sprintf("Invalid address: %s", cmd.Args[0]), colorRed)
		return false
	}

	var data []byte
	for _, arg := range cmd.Args[1:] {
		v, ok := ParseAddress(arg)
		if !ok {
			m.appendOutput(fmt.Sprintf("Invalid byte: %s", arg), colorRed)
			return false
		}
		data = append(data, byte(v))
	}

	m.cpu.WriteMemory(addr, data)
	m.appendOutput(fmt.Sprintf("Wrote %d byte(s) at $%X", len(data), addr), colorCyan)
	return false
}

func (m *MachineMonitor) cmdSaveMemory(cmd MonitorCommand) bool {
	if len(cmd.Args) < 3 {
		m.appendOutput("Usage: save <start> <end> <file>", colorRed)
		return false
	}

	start, ok1 := ParseAddress(cmd.Args[0])
	end, ok2 := ParseAddress(cmd.Args[1])
	size, okRange := m.checkRange(start, end)
	if !ok1 || !ok2 || !okRange {
		m.appendOutput("Invalid range", colorRed)
		return false
	}

	data := m.cpu.ReadMemory(start, size)
	if err := os.WriteFile(cmd.Args[2], data, 0644); err != nil {
		m.appendOutput(fmt.Sprintf("Save failed: %v", err), colorRed)
		return false
	}
	m.appendOutput(fmt.Sprintf("Saved $%X-$%X to %s", start, end, cmd.Args[2]), colorCyan)
	return false
}

func (m *MachineMonitor) cmdLoadMemory(cmd MonitorCommand) bool {
	if len(cmd.Args) < 2 {
		m.appendOutput("Usage: load <file> <addr>", colorRed)
		return false
	}

	addr, ok := ParseAddress(cmd.Args[1])
	if !ok {
		m.appendOutput(fmt.Sprintf("Invalid address: %s", cmd.Args[1]), colorRed)
		return false
	}

	data, err := os.ReadFile(cmd.Args[0])
	if err != nil {
		m.appendOutput(fmt.Sprintf("Load failed: %v", err), colorRed)
		return false
	}

	m.cpu.WriteMemory(addr, data)
	m.appendOutput(fmt.Sprintf("Loaded %d byte(s) at $%X", len(data), addr), colorCyan)
	return false
}

func (m *MachineMonitor) cmdHelp(_ MonitorCommand) bool {
	helpLines := []string{
		"Machine Monitor Commands:",
		"  r                  Show registers",
		"  r <name> <value>   Set register (also r NAME=VALUE)",
		"  d [addr] [count]   Disassemble",
		"  m [addr] [count]   Memory dump (hex+ASCII)",
		"  s [count]          Single-step",
		"  g [addr]           Run in background",
		"  z                  Stop a background run",
		"  u <addr>           Run until address",
		"  x                  Exit monitor",
		"  b <addr>           Set breakpoint",
		"  bc <addr|*>        Clear breakpoint(s)",
		"  bl                 List breakpoints",
		"  f <start> <end> <byte>    Fill memory",
		"  w <addr> <bytes..>        Write bytes (also >)",
		"  h <start> <end> <bytes..> Hunt/search",
		"  c <start> <end> <dest>    Compare memory",
		"  t <start> <end> <dest>    Transfer/copy memory",
		"  save <s> <e> <file>  Save memory to file",
		"  load <file> <addr>   Load file into memory",
		"",
		"Addresses: $hex, 0xhex, bare hex, #decimal, expr+expr",
	}
	for _, line := range helpLines {
		m.appendOutput(line, colorCyan)
	}
	return false
}

// --- Interactive terminal front end ---

// ansiFor maps a scrollback color to the terminal's escape sequence.
// Plain text gets no escape so it renders in the terminal's own colors.
func ansiFor(esc *term.EscapeCodes, color uint32) []byte {
	switch color {
	case colorCyan:
		return esc.Cyan
	case colorYellow:
		return esc.Yellow
	case colorRed:
		return esc.Red
	case colorGreen:
		return esc.Green
	case colorDim:
		return esc.Blue
	default:
		return nil
	}
}

// flushLocked writes unflushed scrollback to the interactive terminal.
// Callers hold m.mu. No-op under test, where no terminal is attached.
func (m *MachineMonitor) flushLocked() {
	if m.terminal == nil {
		m.flushed = len(m.outputLines)
		return
	}

	esc := m.terminal.Escape
	for _, line := range m.outputLines[m.flushed:] {
		if code := ansiFor(esc, line.Color); code != nil {
			m.terminal.Write(code)
			m.terminal.Write([]byte(line.Text))
			m.terminal.Write(esc.Reset)
		} else {
			m.terminal.Write([]byte(line.Text))
		}
		m.terminal.Write([]byte("\r\n"))
	}
	m.flushed = len(m.outputLines)
}

// RunInteractive owns stdin/stdout for the duration of the monitor
// session: raw mode via x/term, line editing and history through
// term.Terminal. Returns when the user exits the monitor.
func (m *MachineMonitor) RunInteractive() error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("monitor: failed to set raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	screen := struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}
	t := term.NewTerminal(screen, "mon> ")

	m.mu.Lock()
	m.terminal = t
	m.mu.Unlock()

	m.StartBreakpointListener()
	m.Activate()

	m.mu.Lock()
	m.flushLocked()
	m.mu.Unlock()

	for {
		line, err := t.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}

		exit := m.ExecuteCommand(line)

		m.mu.Lock()
		m.flushLocked()
		m.mu.Unlock()

		if exit {
			break
		}
	}

	m.Deactivate()

	m.mu.Lock()
	m.terminal = nil
	m.mu.Unlock()
	return nil
}
