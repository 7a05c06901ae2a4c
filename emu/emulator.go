package emu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/armpipe/insts"
)

// ErrInstructionLimit is returned by Run when the instruction bound is
// reached before the program halts.
var ErrInstructionLimit = errors.New("instruction limit reached")

// ErrUnknownInstruction marks a fetched word that does not decode.
var ErrUnknownInstruction = errors.New("unknown instruction")

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Halted is true if the instruction was a halt.
	Halted bool

	// Fault is set if the instruction faulted. Execution continues after a
	// fault.
	Fault error
}

// Trap records a faulted instruction.
type Trap struct {
	PC  uint64
	Op  insts.Op
	Err error
}

func (t Trap) String() string {
	return fmt.Sprintf("%s at 0x%x: %v", t.Op, t.PC, t.Err)
}

// Emulator executes instructions one at a time on a Machine, without any
// notion of timing. It commits exactly what the pipeline commits and is
// used to check pipeline results.
type Emulator struct {
	machine *Machine
	decoder *insts.Decoder
	alu     *ALU
	inst    InstructionPort
	data    MemoryPort

	pc     uint64
	halted bool
	traps  []Trap

	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// WithPorts replaces the machine's own memory ports.
func WithPorts(inst InstructionPort, data MemoryPort) EmulatorOption {
	return func(e *Emulator) {
		e.inst = inst
		e.data = data
	}
}

// NewEmulator creates an emulator running on machine.
func NewEmulator(machine *Machine, opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		machine: machine,
		decoder: insts.NewDecoder(),
		alu:     NewALU(&machine.Flags),
		inst:    machine.Memory.InstructionPort(),
		data:    machine.Memory.DataPort(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Machine returns the architectural state the emulator runs on.
func (e *Emulator) Machine() *Machine {
	return e.machine
}

// PC returns the address of the next instruction.
func (e *Emulator) PC() uint64 {
	return e.pc
}

// SetPC sets the address of the next instruction.
func (e *Emulator) SetPC(pc uint64) {
	e.pc = pc
}

// Halted returns true once a halt has executed.
func (e *Emulator) Halted() bool {
	return e.halted
}

// InstructionCount returns the number of instructions that completed
// without a fault. Halts are not counted.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Traps returns the faulted instructions, oldest first.
func (e *Emulator) Traps() []Trap {
	return e.traps
}

// Step executes a single instruction.
func (e *Emulator) Step() StepResult {
	if e.halted {
		return StepResult{Halted: true}
	}

	// PC 0 is where a return from main lands.
	if e.pc == 0 {
		e.halted = true
		return StepResult{Halted: true}
	}

	pc := e.pc
	word, err := e.inst.Read(pc)
	if err != nil {
		return e.trap(pc, insts.OpUnknown, err, pc+4)
	}

	inst := e.decoder.Decode(word)
	switch inst.Op {
	case insts.OpUnknown:
		return e.trap(pc, inst.Op,
			fmt.Errorf("word 0x%08x: %w", word, ErrUnknownInstruction), pc+4)
	case insts.OpHLT:
		e.halted = true
		return StepResult{Halted: true}
	}

	next, err := e.execute(pc, inst)
	if err != nil {
		return e.trap(pc, inst.Op, err, next)
	}

	e.pc = next
	e.instructionCount++

	return StepResult{}
}

func (e *Emulator) trap(pc uint64, op insts.Op, err error, next uint64) StepResult {
	e.traps = append(e.traps, Trap{PC: pc, Op: op, Err: err})
	e.pc = next
	return StepResult{Fault: err}
}

// execute runs a decoded instruction and returns the address of the next
// one.
func (e *Emulator) execute(pc uint64, inst *insts.Instruction) (uint64, error) {
	regs := &e.machine.Regs

	switch inst.Op {
	case insts.OpNOP:
		return pc + 4, nil

	case insts.OpB:
		return BranchTarget(pc, inst.BranchOffset), nil

	case insts.OpBL:
		regs.WriteReg(insts.RegLink, pc+4)
		return BranchTarget(pc, inst.BranchOffset), nil

	case insts.OpBCond:
		if e.machine.Flags.CheckCondition(inst.Cond) {
			return BranchTarget(pc, inst.BranchOffset), nil
		}
		return pc + 4, nil

	case insts.OpRET:
		target := regs.ReadReg(inst.Src1)
		if target == e.machine.ReturnFromMain {
			return 0, nil
		}
		if target%4 != 0 {
			return target, fmt.Errorf("return to 0x%x: %w", target, ErrMisaligned)
		}
		return target, nil

	case insts.OpLDUR:
		addr := regs.ReadReg(inst.Src1) + inst.Imm
		value, err := e.data.Read(addr)
		if err != nil {
			return pc + 4, err
		}
		regs.WriteReg(inst.Dst, value)
		return pc + 4, nil

	case insts.OpSTUR:
		addr := regs.ReadReg(inst.Src1) + inst.Imm
		return pc + 4, e.data.Write(addr, regs.ReadReg(inst.Src2))
	}

	a := regs.ReadReg(inst.Src1)
	b := inst.Imm
	if insts.Layout(inst.Op).Src2 != insts.FieldNone {
		b = regs.ReadReg(inst.Src2)
	}

	switch inst.Op {
	case insts.OpMOVK:
		a &^= uint64(0xFFFF) << inst.HW
	case insts.OpADRP:
		a = pc &^ 0xFFF
	}

	result, _ := e.alu.Execute(ALUOpFor(inst.Op), a, b, inst.HW,
		SetsFlags(inst.Op), insts.CondAL)
	regs.WriteReg(inst.Dst, result)

	return pc + 4, nil
}

// Run executes instructions until the program halts or the instruction
// bound is reached. Faults do not stop the run.
func (e *Emulator) Run() error {
	var steps uint64
	for !e.halted {
		if e.maxInstructions > 0 && steps >= e.maxInstructions {
			return fmt.Errorf("after %d instructions: %w", steps, ErrInstructionLimit)
		}

		e.Step()
		steps++
	}

	return nil
}
