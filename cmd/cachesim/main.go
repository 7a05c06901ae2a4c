// Package main replays a Valgrind lackey memory trace through a
// set-associative cache and prints hit, miss and eviction counts.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/tebeka/atexit"
	"golang.org/x/term"

	"github.com/sarchlab/armpipe/cache"
)

var (
	setBits   = flag.Int("s", 4, "Number of set index bits (sets = 2^s)")
	ways      = flag.Int("E", 4, "Number of lines per set")
	blockBits = flag.Int("b", 6, "Number of block offset bits (block size = 2^b)")
	tracePath = flag.String("t", "", "Path to the lackey trace to replay")
	verbose   = flag.Bool("v", false, "Print the outcome of every access")
	showSet   = flag.Int("set", -1, "Print the contents of this set after the replay")
)

func main() {
	flag.Parse()

	if *tracePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: cachesim [-v] -s <s> -E <E> -b <b> -t <trace>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		atexit.Exit(1)
	}

	c, err := cache.New(cache.Config{SetBits: *setBits, Ways: *ways, BlockBits: *blockBits})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	f, err := os.Open(*tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening trace: %v\n", err)
		atexit.Exit(1)
	}
	atexit.Register(func() { _ = f.Close() })

	records, err := cache.ReadTrace(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	slog.Debug("trace loaded", "path", *tracePath, "records", len(records))

	var visit func(cache.Record, cache.AccessResult)
	if *verbose {
		visit = func(r cache.Record, result cache.AccessResult) {
			fmt.Println(cache.Describe(r, result))
		}
	}
	c.Replay(records, visit)

	if *showSet >= 0 {
		if err := c.DisplaySet(os.Stdout, *showSet); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}

	printSummary(os.Stdout, c.Config(), c.Stats())

	atexit.Exit(0)
}

func printSummary(w io.Writer, config cache.Config, stats cache.Statistics) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	if term.IsTerminal(int(os.Stdout.Fd())) {
		t.SetStyle(table.StyleColoredDark)
	}
	t.SetTitle(fmt.Sprintf("%d sets x %d ways x %d B", config.NumSets(), config.Ways, config.BlockSize()))
	t.AppendHeader(table.Row{"Hits", "Misses", "Dirty evictions", "Clean evictions"})
	t.AppendRow(table.Row{stats.Hits, stats.Misses, stats.DirtyEvictions, stats.CleanEvictions})
	t.Render()
}
