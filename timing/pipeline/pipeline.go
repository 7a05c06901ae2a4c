package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/sarchlab/armpipe/emu"
	"github.com/sarchlab/armpipe/insts"
)

// ErrHazardController is returned once a pipeline register has been asked
// to bubble and stall in the same cycle. The pipeline cannot recover.
var ErrHazardController = errors.New("hazard controller error")

// ErrCycleLimit is returned by Run when the cycle bound is reached before
// the program halts.
var ErrCycleLimit = errors.New("cycle limit reached")

// Statistics holds pipeline performance statistics.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of OK instructions that reached writeback.
	Instructions uint64
	// Stalls is the number of load-use stall cycles.
	Stalls uint64
	// Flushes is the number of instructions discarded by bubbles.
	Flushes uint64
	// BranchMispredictions is the number of B.cond resolved not taken.
	BranchMispredictions uint64
	// Returns is the number of RET redirects.
	Returns uint64
	// Faults is the number of faulted instructions that reached writeback.
	Faults uint64
}

// CPI returns the cycles per instruction.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Fault records an instruction that reached writeback with a fault status.
type Fault struct {
	PC     uint64
	Op     insts.Op
	Status Status
	Cycle  uint64
}

func (f Fault) String() string {
	return fmt.Sprintf("%s at 0x%x (%s, cycle %d)", f.Status, f.PC, f.Op, f.Cycle)
}

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithInstructionPort replaces the instruction port backed by the machine
// memory.
func WithInstructionPort(port emu.InstructionPort) PipelineOption {
	return func(p *Pipeline) {
		p.imem = port
	}
}

// WithMemoryPort replaces the data port backed by the machine memory.
func WithMemoryPort(port emu.MemoryPort) PipelineOption {
	return func(p *Pipeline) {
		p.dmem = port
	}
}

// WithMaxCycles bounds Run. Zero means unbounded.
func WithMaxCycles(n uint64) PipelineOption {
	return func(p *Pipeline) {
		p.maxCycles = n
	}
}

// WithTrace prints the pipeline state table to w after every cycle.
func WithTrace(w io.Writer, style TraceStyle) PipelineOption {
	return func(p *Pipeline) {
		p.trace = w
		p.traceStyle = style
	}
}

// Pipeline implements a 5-stage pipelined CPU model.
// Stages: Fetch (IF) -> Decode (ID) -> Execute (EX) -> Memory (MEM) -> Writeback (WB)
type Pipeline struct {
	machine *emu.Machine
	imem    emu.InstructionPort
	dmem    emu.MemoryPort

	// Pipeline registers
	f     *Latch[FetchRegister]
	ifid  *Latch[IFIDRegister]
	idex  *Latch[IDEXRegister]
	exmem *Latch[EXMEMRegister]
	memwb *Latch[MEMWBRegister]

	fetchUnit     *FetchUnit
	decodeUnit    *DecodeUnit
	executeUnit   *ExecuteUnit
	memoryUnit    *MemoryUnit
	writebackUnit *WritebackUnit
	hazard        *HazardController

	entry      uint64
	maxCycles  uint64
	trace      io.Writer
	traceStyle TraceStyle

	lastHazard Hazard
	stats      Statistics
	faults     []Fault
	halted     bool
	err        error
}

// NewPipeline creates a 5-stage pipeline operating on machine.
func NewPipeline(machine *emu.Machine, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		machine: machine,
		imem:    machine.Memory.InstructionPort(),
		dmem:    machine.Memory.DataPort(),
		f:       NewLatch(FetchRegister{}),
		ifid:    NewLatch(bubbleIFID()),
		idex:    NewLatch(bubbleIDEX()),
		exmem:   NewLatch(bubbleEXMEM()),
		memwb:   NewLatch(bubbleMEMWB()),
		hazard:  NewHazardController(),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.fetchUnit = NewFetchUnit(p.imem, machine.ReturnFromMain)
	p.decodeUnit = NewDecodeUnit(&machine.Regs)
	p.executeUnit = NewExecuteUnit(&machine.Flags)
	p.memoryUnit = NewMemoryUnit(p.dmem)
	p.writebackUnit = NewWritebackUnit(&machine.Regs)

	return p
}

// Machine returns the architectural state the pipeline operates on.
func (p *Pipeline) Machine() *emu.Machine {
	return p.machine
}

// PC returns the predicted PC of the next fetch.
func (p *Pipeline) PC() uint64 {
	return p.f.Out.PredPC
}

// SetPC sets the program counter and remembers it as the entry point used
// by Reset.
func (p *Pipeline) SetPC(pc uint64) {
	p.entry = pc
	p.f.In.PredPC = pc
	p.f.Out.PredPC = pc
}

// GetFetch returns the fetch register.
func (p *Pipeline) GetFetch() *Latch[FetchRegister] {
	return p.f
}

// GetIFID returns the IF/ID pipeline register.
func (p *Pipeline) GetIFID() *Latch[IFIDRegister] {
	return p.ifid
}

// GetIDEX returns the ID/EX pipeline register.
func (p *Pipeline) GetIDEX() *Latch[IDEXRegister] {
	return p.idex
}

// GetEXMEM returns the EX/MEM pipeline register.
func (p *Pipeline) GetEXMEM() *Latch[EXMEMRegister] {
	return p.exmem
}

// GetMEMWB returns the MEM/WB pipeline register.
func (p *Pipeline) GetMEMWB() *Latch[MEMWBRegister] {
	return p.memwb
}

// Stats returns pipeline statistics.
func (p *Pipeline) Stats() Statistics {
	return p.stats
}

// Faults returns the faulted instructions observed at writeback, oldest
// first.
func (p *Pipeline) Faults() []Fault {
	return p.faults
}

// LastHazard returns the hazard acted on in the most recent cycle.
func (p *Pipeline) LastHazard() Hazard {
	return p.lastHazard
}

// Halted returns true if the pipeline has halted.
func (p *Pipeline) Halted() bool {
	return p.halted
}

// Err returns the fatal error that stopped the pipeline, if any.
func (p *Pipeline) Err() error {
	return p.err
}

// Reset empties every pipeline register, clears statistics, restores the
// initial register state and restarts at the entry point. Memory is kept.
func (p *Pipeline) Reset() {
	p.f.Reset()
	p.ifid.Reset()
	p.idex.Reset()
	p.exmem.Reset()
	p.memwb.Reset()
	p.machine.Reset()

	p.stats = Statistics{}
	p.faults = nil
	p.lastHazard = HazardNone
	p.halted = false
	p.err = nil

	p.SetPC(p.entry)
}

// Run executes the pipeline until it halts, the context is done or the
// cycle bound is reached.
func (p *Pipeline) Run(ctx context.Context) error {
	for !p.halted {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if p.maxCycles > 0 && p.stats.Cycles >= p.maxCycles {
			return fmt.Errorf("after %d cycles: %w", p.stats.Cycles, ErrCycleLimit)
		}

		if err := p.Tick(); err != nil {
			return err
		}
	}

	return nil
}

// RunCycles executes the pipeline for the specified number of cycles.
// Returns true if still running, false if halted.
func (p *Pipeline) RunCycles(cycles uint64) (bool, error) {
	for i := uint64(0); i < cycles && !p.halted; i++ {
		if err := p.Tick(); err != nil {
			return false, err
		}
	}

	return !p.halted, nil
}

// Tick executes one pipeline cycle.
//
// Stages are evaluated from writeback back to fetch. Writeback commits
// first, so decode's register read in the same cycle sees the committed
// value. Every other stage reads only the outputs latched last cycle and
// writes the inputs latched at the end of this cycle.
func (p *Pipeline) Tick() error {
	if p.err != nil {
		return p.err
	}
	if p.halted {
		return nil
	}

	p.stats.Cycles++

	p.retire(&p.memwb.Out)

	p.memwb.In = p.memoryUnit.Access(&p.exmem.Out)
	p.exmem.In = p.executeUnit.Execute(&p.idex.Out)
	p.idex.In = p.decodeUnit.Decode(&p.ifid.Out, ForwardingSources{
		Execute:   &p.exmem.In,
		Memory:    &p.memwb.In,
		Writeback: &p.memwb.Out,
	})

	pc, redirect := p.fetchUnit.SelectPC(p.f.Out.PredPC, &p.idex.Out, &p.exmem.Out)
	if redirect != RedirectNone {
		Trace("fetch redirect", "cycle", p.stats.Cycles, "reason", redirect, "pc", pc)
	}
	p.ifid.In, p.f.In = p.fetchUnit.Fetch(pc)

	hazard, requests := p.hazard.Resolve(p.snapshot())
	p.applyHazard(hazard, requests)

	if err := p.checkLatches(); err != nil {
		p.err = err
		slog.Error("pipeline stopped", "cycle", p.stats.Cycles, "err", err)
		return err
	}

	p.f.Clock()
	p.ifid.Clock()
	p.idex.Clock()
	p.exmem.Clock()
	p.memwb.Clock()

	if p.memwb.Out.Status == StatusHalted {
		p.halted = true
		slog.Debug("pipeline halted", "cycle", p.stats.Cycles, "pc", p.memwb.Out.PC)
	}

	if p.trace != nil {
		p.Dump(p.trace, p.traceStyle)
	}

	return nil
}

func (p *Pipeline) retire(memwb *MEMWBRegister) {
	p.writebackUnit.Writeback(memwb)

	switch {
	case memwb.Status == StatusOK:
		p.stats.Instructions++
	case memwb.Status.Faulted():
		p.stats.Faults++
		fault := Fault{
			PC:     memwb.PC,
			Op:     memwb.Op,
			Status: memwb.Status,
			Cycle:  p.stats.Cycles,
		}
		p.faults = append(p.faults, fault)
		slog.Debug("instruction faulted", "pc", fault.PC, "op", fault.Op,
			"status", fault.Status)
	}
}

func (p *Pipeline) snapshot() HazardSnapshot {
	return HazardSnapshot{
		DecodeOp:       p.ifid.Out.Op,
		DecodeStatus:   p.ifid.Out.Status,
		DecodeSrc1:     p.idex.In.Src1,
		DecodeSrc2:     p.idex.In.Src2,
		ExecuteOp:      p.idex.Out.Op,
		ExecuteStatus:  p.idex.Out.Status,
		ExecuteDst:     p.idex.Out.Dst,
		BranchNotTaken: p.exmem.In.Status == StatusOK && p.exmem.In.Op == insts.OpBCond && !p.exmem.In.CondHolds,
	}
}

func (p *Pipeline) applyHazard(hazard Hazard, r Requests) {
	p.lastHazard = hazard

	switch hazard {
	case HazardMispredict:
		p.stats.BranchMispredictions++
		p.stats.Flushes += 2
	case HazardLoadUse:
		p.stats.Stalls++
	case HazardReturn:
		p.stats.Returns++
		p.stats.Flushes++
	}

	if hazard != HazardNone {
		Trace("hazard", "cycle", p.stats.Cycles, "hazard", hazard)
	}

	p.f.Control(r[StageFetch].Bubble, r[StageFetch].Stall)
	p.ifid.Control(r[StageDecode].Bubble, r[StageDecode].Stall)
	p.idex.Control(r[StageExecute].Bubble, r[StageExecute].Stall)
	p.exmem.Control(r[StageMemory].Bubble, r[StageMemory].Stall)
	p.memwb.Control(r[StageWriteback].Bubble, r[StageWriteback].Stall)
}

// Directives returns the directive of every pipeline register for the
// current cycle.
func (p *Pipeline) Directives() [NumStages]Directive {
	return [NumStages]Directive{
		p.f.Directive(),
		p.ifid.Directive(),
		p.idex.Directive(),
		p.exmem.Directive(),
		p.memwb.Directive(),
	}
}

func (p *Pipeline) checkLatches() error {
	for stage, d := range p.Directives() {
		if d == DirectiveError {
			return fmt.Errorf("stage %s at cycle %d: %w",
				Stage(stage), p.stats.Cycles, ErrHazardController)
		}
	}

	return nil
}
