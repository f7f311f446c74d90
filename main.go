// main.go - Main entry point for the six5go2 machine emulator

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

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
)

func boilerPlate() {
	fmt.Println("\n\033[38;2;255;20;147m███████╗██╗██╗  ██╗███████╗ ██████╗  ██████╗ ██████╗\033[0m\n\033[38;2;255;67;147m██╔════╝██║╚██╗██╔╝██╔════╝██╔════╝ ██╔═══██╗╚════██╗\033[0m\n\033[38;2;255;114;147m███████╗██║ ╚███╔╝ ███████╗██║  ███╗██║   ██║ █████╔╝\033[0m\n\033[38;2;255;161;147m╚════██║██║ ██╔██╗ ╚════██║██║   ██║██║   ██║██╔═══╝\033[0m\n\033[38;2;255;208;147m███████║██║██╔╝ ██╗███████║╚██████╔╝╚██████╔╝███████╗\033[0m\n\033[38;2;255;255;147m╚══════╝╚═╝╚═╝  ╚═╝╚══════╝ ╚═════╝  ╚═════╝ ╚══════╝\033[0m")
	fmt.Println("\nA 6502 emulator, disassembler and machine monitor written in Go.")
	fmt.Println("(c) 2024 - 2026 Zayn Otley")
	fmt.Println("https://github.com/IntuitionAmiga/six5go2")
	fmt.Println("Buy me a coffee: https://ko-fi.com/intuition/tip")
	fmt.Println("License: GPLv3 or later")
}

func main() {
	boilerPlate()

	var (
		loadAddr    string
		entryAddr   string
		steps       uint64
		traceMode   bool
		monitorMode bool
		scriptFile  string
		perfMode    bool
		showVersion bool
	)

	flagSet := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&loadAddr, "load-addr", "0x0600", "load address (hex or decimal)")
	flagSet.StringVar(&entryAddr, "entry", "", "entry address (hex or decimal, defaults to the load address)")
	flagSet.Uint64Var(&steps, "steps", 0, "stop after this many instructions (0 = run until halt)")
	flagSet.BoolVar(&traceMode, "trace", false, "disassemble each instruction as it executes")
	flagSet.BoolVar(&monitorMode, "monitor", false, "drop into the machine monitor")
	flagSet.StringVar(&scriptFile, "script", "", "run a Lua script against the machine")
	flagSet.BoolVar(&perfMode, "perf", false, "report execution speed")
	flagSet.BoolVar(&showVersion, "version", false, "print version and compiled features")

	flagSet.Usage = func() {
		flagSet.SetOutput(os.Stdout)
		fmt.Println("Usage: ./six5go2 [-monitor|-script script.lua|-trace] [--load-addr 0x0600] [--entry 0x0600] [--steps N] filename")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if showVersion {
		printFeatures()
		os.Exit(0)
	}

	filename := flagSet.Arg(0)

	modeCount := 0
	if monitorMode {
		modeCount++
	}
	if scriptFile != "" {
		modeCount++
	}
	if traceMode {
		modeCount++
	}
	if modeCount > 1 {
		fmt.Println("Error: select at most one of -monitor, -script or -trace")
		os.Exit(1)
	}
	if filename == "" && !monitorMode && scriptFile == "" {
		flagSet.Usage()
		os.Exit(1)
	}

	parsedLoadAddr, err := parseUint16Flag(loadAddr)
	if err != nil {
		fmt.Printf("Invalid --load-addr: %v\n", err)
		os.Exit(1)
	}
	var parsedEntry uint16
	if entryAddr != "" {
		parsedEntry, err = parseUint16Flag(entryAddr)
		if err != nil {
			fmt.Printf("Invalid --entry: %v\n", err)
			os.Exit(1)
		}
	}

	bus := NewMachineBus()
	runner := NewCPU6502Runner(bus, CPU6502Config{
		LoadAddr: parsedLoadAddr,
		Entry:    parsedEntry,
	})
	runner.PerfEnabled = perfMode

	if filename != "" {
		if err := runner.LoadProgram(filename); err != nil {
			fmt.Printf("Error loading 6502 program: %v\n", err)
			os.Exit(1)
		}
	}

	switch {
	case scriptFile != "":
		host := NewScriptHost(runner)
		if err := host.RunFile(scriptFile); err != nil {
			fmt.Printf("Script error: %v\n", err)
			os.Exit(1)
		}

	case monitorMode:
		monitor := NewMachineMonitor(NewDebug6502(runner.CPU(), runner))
		if err := monitor.RunInteractive(); err != nil {
			fmt.Printf("Monitor error: %v\n", err)
			os.Exit(1)
		}

	case traceMode:
		fmt.Printf("Tracing 6502 CPU with program: %s\n\n", filename)
		if err := traceRun(runner, steps); err != nil {
			fmt.Printf("Halted: %v\n", err)
			os.Exit(1)
		}

	default:
		fmt.Printf("Starting 6502 CPU with program: %s\n\n", filename)
		if err := runner.Run(steps); err != nil {
			fmt.Printf("Halted: %v\n", err)
			os.Exit(1)
		}
	}
}

// traceRun single-steps the core, printing each instruction before it
// executes together with the register state it executes from.
func traceRun(runner *CPU6502Runner, maxInstructions uint64) error {
	cpu := runner.CPU()
	readMem := func(addr uint64, size int) []byte {
		buf := make([]byte, size)
		for i := range buf {
			buf[i] = cpu.Read(uint16(addr) + uint16(i))
		}
		return buf
	}

	for executed := uint64(0); maxInstructions == 0 || executed < maxInstructions; executed++ {
		if lines := disassemble6502(readMem, uint64(cpu.PC), 1); len(lines) > 0 {
			line := lines[0]
			fmt.Printf("%04X: %-9s %-14s A=%02X X=%02X Y=%02X SP=%02X SR=%02X\n",
				uint16(line.Address), line.HexBytes, line.Mnemonic,
				cpu.A, cpu.X, cpu.Y, cpu.SP, cpu.SR)
		}
		if err := cpu.Step(); err != nil {
			return err
		}
	}
	return nil
}

func parseUint16Flag(value string) (uint16, error) {
	parsed, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		return 0, err
	}
	return uint16(parsed), nil
}
