// Package main prints an overview of the armpipe tools.
//
// armpipe is a cycle-level simulator of a classic 5-stage pipeline running
// a subset of AArch64.
//
// For the simulator, use: go run ./cmd/armpipe
// For the cache simulator, use: go run ./cmd/cachesim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("armpipe - 5-stage AArch64 pipeline simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: armpipe [options] <program>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config      Path to machine configuration file (JSON or YAML)")
	fmt.Println("  -trace       Print the pipeline state after every cycle")
	fmt.Println("  -max-cycles  Stop after this many cycles")
	fmt.Println("  -base        Load address of raw word images")
	fmt.Println("  -monitor     Serve the akita monitoring page during the run")
	fmt.Println("  -regs        Print the register file after the run")
	fmt.Println("  -verify      Compare the result with the functional emulator")
	fmt.Println("  -v           Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/armpipe' for the simulator and")
	fmt.Println("'go run ./cmd/cachesim' for the trace-driven cache simulator.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/armpipe' instead.")
	}
}
