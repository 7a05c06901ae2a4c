package pipeline

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/armpipe/insts"
)

// TraceStyle is the table style of pipeline dumps.
type TraceStyle = table.Style

// Dump writes the state of every pipeline register as a table.
func (p *Pipeline) Dump(w io.Writer, style TraceStyle) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(style)
	t.SetTitle(fmt.Sprintf("Cycle %d (hazard: %s)", p.stats.Cycles, p.lastHazard))
	t.AppendHeader(table.Row{"Stage", "PC", "Op", "Status", "Ctl", "Detail"})

	d := p.Directives()

	t.AppendRow(table.Row{
		StageFetch, hex(p.f.Out.PredPC), "", p.f.Out.Status, d[StageFetch], "",
	})

	ifid := p.ifid.Out
	t.AppendRow(table.Row{
		StageDecode, hex(ifid.PC), ifid.Op, ifid.Status, d[StageDecode],
		fmt.Sprintf("word=%08x", ifid.InstructionWord),
	})

	idex := p.idex.Out
	t.AppendRow(table.Row{
		StageExecute, hex(idex.PC), idex.Op, idex.Status, d[StageExecute],
		fmt.Sprintf("a=%#x b=%#x imm=%#x dst=%s", idex.ValA, idex.ValB, idex.Imm, regName(idex.Dst)),
	})

	exmem := p.exmem.Out
	t.AppendRow(table.Row{
		StageMemory, hex(exmem.PC), exmem.Op, exmem.Status, d[StageMemory],
		fmt.Sprintf("e=%#x cond=%t dst=%s", exmem.ValEx, exmem.CondHolds, regName(exmem.Dst)),
	})

	memwb := p.memwb.Out
	t.AppendRow(table.Row{
		StageWriteback, hex(memwb.PC), memwb.Op, memwb.Status, d[StageWriteback],
		fmt.Sprintf("e=%#x m=%#x dst=%s", memwb.ValEx, memwb.ValMem, regName(memwb.DestReg())),
	})

	t.AppendFooter(table.Row{"", "", "", "", "NZCV", p.machine.Flags.String()})
	t.Render()
}

// DumpRegisters writes the register file as a table.
func (p *Pipeline) DumpRegisters(w io.Writer, style TraceStyle) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(style)
	t.SetTitle("Registers")
	t.AppendHeader(table.Row{"Reg", "Value", "Reg", "Value", "Reg", "Value", "Reg", "Value"})

	regs := &p.machine.Regs
	for row := uint8(0); row < 8; row++ {
		var r table.Row
		for col := uint8(0); col < 4; col++ {
			reg := col*8 + row
			r = append(r, regName(reg), hex(regs.ReadReg(reg)))
		}
		t.AppendRow(r)
	}

	t.Render()
}

func hex(v uint64) string {
	return fmt.Sprintf("0x%x", v)
}

func regName(reg uint8) string {
	switch {
	case reg == insts.RegSP:
		return "SP"
	case reg >= insts.RegNone:
		return "-"
	default:
		return fmt.Sprintf("X%d", reg)
	}
}
