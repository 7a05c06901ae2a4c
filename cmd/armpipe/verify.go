package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/armpipe/emu"
	"github.com/sarchlab/armpipe/insts"
	"github.com/sarchlab/armpipe/timing/pipeline"
)

type mismatch struct {
	what     string
	pipeline string
	emulator string
}

// compareRuns lists every architectural difference between a halted
// pipeline and the emulator run of the same program.
func compareRuns(pipe *pipeline.Pipeline, ref *emu.Emulator) []mismatch {
	var diffs []mismatch

	got, want := pipe.Machine(), ref.Machine()
	for r := uint8(0); r <= insts.RegSP; r++ {
		a, b := got.Regs.ReadReg(r), want.Regs.ReadReg(r)
		if a != b {
			diffs = append(diffs, mismatch{
				what:     regName(r),
				pipeline: fmt.Sprintf("0x%x", a),
				emulator: fmt.Sprintf("0x%x", b),
			})
		}
	}

	if got.Flags != want.Flags {
		diffs = append(diffs, mismatch{"NZCV", got.Flags.String(), want.Flags.String()})
	}

	if n, m := pipe.Stats().Instructions, ref.InstructionCount(); n != m {
		diffs = append(diffs, mismatch{"Instructions", fmt.Sprint(n), fmt.Sprint(m)})
	}

	if n, m := len(pipe.Faults()), len(ref.Traps()); n != m {
		diffs = append(diffs, mismatch{"Faults", fmt.Sprint(n), fmt.Sprint(m)})
	}

	return diffs
}

func regName(r uint8) string {
	if r == insts.RegSP {
		return "SP"
	}
	return fmt.Sprintf("X%d", r)
}

func printVerify(w io.Writer, style table.Style, diffs []mismatch) {
	if len(diffs) == 0 {
		fmt.Fprintln(w, "Verify: pipeline matches the emulator")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(style)
	t.SetTitle("Verify mismatches")
	t.AppendHeader(table.Row{"State", "Pipeline", "Emulator"})

	for _, d := range diffs {
		t.AppendRow(table.Row{d.what, d.pipeline, d.emulator})
	}

	t.Render()
}
