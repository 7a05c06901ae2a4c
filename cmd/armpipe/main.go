// Package main provides the command-line driver of the pipeline simulator.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"
	"golang.org/x/term"

	"github.com/sarchlab/armpipe/config"
	"github.com/sarchlab/armpipe/emu"
	"github.com/sarchlab/armpipe/loader"
	"github.com/sarchlab/armpipe/timing/core"
	"github.com/sarchlab/armpipe/timing/pipeline"
)

var (
	configPath = flag.String("config", "", "Path to machine configuration file (JSON or YAML)")
	verbose    = flag.Bool("v", false, "Verbose output")
	trace      = flag.Bool("trace", false, "Print the pipeline state after every cycle")
	maxCycles  = flag.Uint64("max-cycles", 0, "Stop after this many cycles (0 keeps the configured bound)")
	base       = flag.Uint64("base", 0x400000, "Load address of raw word images")
	monitor    = flag.Bool("monitor", false, "Run on the akita engine and serve the monitoring page")
	showRegs   = flag.Bool("regs", false, "Print the register file after the run")
	verify     = flag.Bool("verify", false, "Rerun the program on the functional emulator and compare the committed state")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: armpipe [options] <program>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		atexit.Exit(1)
	}

	setupLogging(*verbose, *trace)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		atexit.Exit(1)
	}

	programPath := flag.Arg(0)
	prog, err := loader.LoadFile(programPath, *base)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		atexit.Exit(1)
	}

	machine := cfg.NewMachine()
	if err := prog.LoadInto(machine); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		atexit.Exit(1)
	}

	slog.Debug("program loaded", "path", programPath,
		"entry", fmt.Sprintf("0x%x", prog.EntryPoint), "segments", len(prog.Segments))

	style := outputStyle()

	var opts []pipeline.PipelineOption
	if cfg.Trace {
		opts = append(opts, pipeline.WithTrace(os.Stdout, style))
	}

	var pipe *pipeline.Pipeline
	if *monitor {
		pipe, err = runMonitored(cfg, prog.EntryPoint, machine, opts)
	} else {
		pipe, err = runDirect(cfg, prog.EntryPoint, machine, opts)
	}

	atexit.Register(func() {
		printReport(os.Stdout, style, programPath, pipe)
		if *showRegs {
			pipe.DumpRegisters(os.Stdout, style)
		}
	})

	if err != nil {
		fmt.Fprintf(os.Stderr, "Simulation stopped: %v\n", err)
		atexit.Exit(1)
	}

	if *verify {
		diffs, err := runReference(cfg, prog, pipe)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Emulator stopped: %v\n", err)
			atexit.Exit(1)
		}

		printVerify(os.Stdout, style, diffs)
		if len(diffs) > 0 {
			atexit.Exit(1)
		}
	}

	atexit.Exit(0)
}

// runReference runs the program again on the functional emulator and
// compares the result with the halted pipeline.
func runReference(
	cfg *config.MachineConfig,
	prog *loader.Program,
	pipe *pipeline.Pipeline,
) ([]mismatch, error) {
	machine := cfg.NewMachine()
	if err := prog.LoadInto(machine); err != nil {
		return nil, err
	}

	ref := emu.NewEmulator(machine, emu.WithMaxInstructions(cfg.MaxCycles))
	ref.SetPC(prog.EntryPoint)
	if err := ref.Run(); err != nil {
		return nil, err
	}

	return compareRuns(pipe, ref), nil
}

func loadConfig() (*config.MachineConfig, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return nil, err
		}
	}

	cfg = cfg.Clone()
	if *maxCycles > 0 {
		cfg.MaxCycles = *maxCycles
	}
	if *trace {
		cfg.Trace = true
	}

	return cfg, cfg.Validate()
}

func runDirect(
	cfg *config.MachineConfig,
	entry uint64,
	machine *emu.Machine,
	opts []pipeline.PipelineOption,
) (*pipeline.Pipeline, error) {
	opts = append(opts, pipeline.WithMaxCycles(cfg.MaxCycles))
	pipe := pipeline.NewPipeline(machine, opts...)
	pipe.SetPC(entry)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return pipe, pipe.Run(ctx)
}

func runMonitored(
	cfg *config.MachineConfig,
	entry uint64,
	machine *emu.Machine,
	opts []pipeline.PipelineOption,
) (*pipeline.Pipeline, error) {
	mon := monitoring.NewMonitor()

	engine := sim.NewSerialEngine()
	mon.RegisterEngine(engine)

	c := core.MakeBuilder().
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		WithMaxCycles(cfg.MaxCycles).
		WithPipelineOptions(opts...).
		Build("Core", machine)
	mon.RegisterComponent(c)

	mon.StartServer()

	c.SetPC(entry)

	return c.Pipeline(), c.Run()
}

func setupLogging(verbose, trace bool) {
	level := slog.LevelInfo
	switch {
	case trace:
		level = pipeline.LevelTrace
	case verbose:
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func outputStyle() table.Style {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return table.StyleColoredDark
	}
	return table.StyleDefault
}
