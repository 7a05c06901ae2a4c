package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/armpipe/timing/pipeline"
)

func printReport(w io.Writer, style table.Style, programPath string, pipe *pipeline.Pipeline) {
	printStats(w, style, programPath, pipe.Halted(), pipe.Stats())

	if faults := pipe.Faults(); len(faults) > 0 {
		printFaults(w, style, faults)
	}
}

func printStats(
	w io.Writer,
	style table.Style,
	programPath string,
	halted bool,
	stats pipeline.Statistics,
) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(style)
	t.SetTitle(programPath)

	t.AppendRows([]table.Row{
		{"Halted", halted},
		{"Cycles", stats.Cycles},
		{"Instructions", stats.Instructions},
		{"CPI", fmt.Sprintf("%.2f", stats.CPI())},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Load-use stalls", stats.Stalls},
		{"Flushed instructions", stats.Flushes},
		{"Branch mispredictions", stats.BranchMispredictions},
		{"Returns", stats.Returns},
		{"Faults", stats.Faults},
	})

	t.Render()
}

func printFaults(w io.Writer, style table.Style, faults []pipeline.Fault) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(style)
	t.SetTitle("Faults")
	t.AppendHeader(table.Row{"#", "PC", "Op", "Status", "Cycle"})

	for i, f := range faults {
		t.AppendRow(table.Row{i, fmt.Sprintf("0x%x", f.PC), f.Op, f.Status, f.Cycle})
	}

	t.Render()
}
