package main

import (
	"fmt"
	"runtime"
	"sort"
)

// Version is replaced at release time via -ldflags "-X main.Version=...".
var Version = "dev"

// compiledFeatures tracks optional subsystems via init() registration.
var compiledFeatures []string

func printFeatures() {
	fmt.Printf("six5go2 %s\n", Version)
	fmt.Printf("  Go version: %s\n", runtime.Version())
	fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Println()
	fmt.Println("Compiled features:")

	sort.Strings(compiledFeatures)
	for _, f := range compiledFeatures {
		fmt.Printf("  %s\n", f)
	}
	if len(compiledFeatures) == 0 {
		fmt.Println("  (none)")
	}
}
