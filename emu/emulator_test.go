package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/armpipe/emu"
	"github.com/sarchlab/armpipe/insts"
)

const (
	encRET  uint32 = 0xD65F03C0
	encSelf uint32 = 0x14000000 // B .
)

func encMOVZ(rd uint8, imm uint32) uint32 {
	return 0xD2800000 | imm<<5 | uint32(rd)
}

func encMOVK16(rd uint8, imm uint32) uint32 {
	return 0xF2A00000 | imm<<5 | uint32(rd)
}

func encADDImm(rd, rn uint8, imm uint32) uint32 {
	return 0x91000000 | imm<<10 | uint32(rn)<<5 | uint32(rd)
}

func encSUBImm(rd, rn uint8, imm uint32) uint32 {
	return 0xD1000000 | imm<<10 | uint32(rn)<<5 | uint32(rd)
}

func encCMP(rn, rm uint8) uint32 {
	return 0xEB00001F | uint32(rm)<<16 | uint32(rn)<<5
}

func encBCond(cond insts.Cond, offset int32) uint32 {
	return 0x54000000 | (uint32(offset/4)&0x7FFFF)<<5 | uint32(cond)
}

func encBL(offset int32) uint32 {
	return 0x94000000 | uint32(offset/4)&0x3FFFFFF
}

func encLDUR(rt, rn uint8, offset int32) uint32 {
	return 0xF8400000 | (uint32(offset)&0x1FF)<<12 | uint32(rn)<<5 | uint32(rt)
}

func encSTUR(rt, rn uint8, offset int32) uint32 {
	return 0xF8000000 | (uint32(offset)&0x1FF)<<12 | uint32(rn)<<5 | uint32(rt)
}

var _ = Describe("Emulator", func() {
	var (
		machine *emu.Machine
		e       *emu.Emulator
	)

	BeforeEach(func() {
		machine = emu.NewMachine(emu.Layout{
			Instruction: emu.Region{Base: 0x1000, Size: 0x1000},
			Data:        emu.Region{Base: 0x1000, Size: 0x4000},
		})
		e = emu.NewEmulator(machine, emu.WithMaxInstructions(1000))
		e.SetPC(0x1000)
	})

	load := func(words ...uint32) {
		Expect(machine.LoadWords(0x1000, words...)).To(Succeed())
	}

	It("should run until the return from main", func() {
		load(encMOVZ(1, 42), encADDImm(2, 1, 8), encRET)

		Expect(e.Run()).To(Succeed())

		Expect(e.Halted()).To(BeTrue())
		Expect(machine.Regs.ReadReg(1)).To(Equal(uint64(42)))
		Expect(machine.Regs.ReadReg(2)).To(Equal(uint64(50)))
		Expect(e.InstructionCount()).To(Equal(uint64(3)))
		Expect(e.Traps()).To(BeEmpty())
	})

	It("should halt on HLT without counting it", func() {
		load(insts.WordNOP, insts.WordHLT, encMOVZ(1, 1))

		Expect(e.Run()).To(Succeed())

		Expect(e.InstructionCount()).To(Equal(uint64(1)))
		Expect(machine.Regs.ReadReg(1)).To(BeZero())
		Expect(e.Step().Halted).To(BeTrue())
	})

	It("should run a counted loop", func() {
		load(
			encMOVZ(0, 3),
			encSUBImm(0, 0, 1),
			encCMP(0, 31),
			encBCond(insts.CondNE, -8),
			encRET,
		)

		Expect(e.Run()).To(Succeed())

		Expect(machine.Regs.ReadReg(0)).To(BeZero())
		Expect(machine.Flags.Z).To(BeTrue())
		Expect(e.InstructionCount()).To(Equal(uint64(11)))
	})

	It("should store and load through the data port", func() {
		load(encMOVZ(1, 0x2000), encSTUR(1, 1, 8), encLDUR(2, 1, 8), encRET)

		Expect(e.Run()).To(Succeed())

		Expect(machine.Regs.ReadReg(2)).To(Equal(uint64(0x2000)))
		Expect(machine.Memory.Read64(0x2008)).To(Equal(uint64(0x2000)))
	})

	It("should call and return", func() {
		load(encBL(12), insts.WordHLT, insts.WordNOP, encMOVZ(5, 7), encRET)

		Expect(e.Run()).To(Succeed())

		Expect(machine.Regs.ReadReg(5)).To(Equal(uint64(7)))
		Expect(machine.Regs.ReadReg(insts.RegLink)).To(Equal(uint64(0x1004)))
	})

	It("should build constants with MOVK", func() {
		load(encMOVZ(0, 0x1234), encMOVK16(0, 0xBEEF), encRET)

		Expect(e.Run()).To(Succeed())

		Expect(machine.Regs.ReadReg(0)).To(Equal(uint64(0xBEEF1234)))
	})

	It("should record a misaligned load and continue", func() {
		load(encMOVZ(1, 0x2001), encLDUR(2, 1, 0), encMOVZ(3, 1), encRET)

		Expect(e.Run()).To(Succeed())

		Expect(e.Traps()).To(HaveLen(1))
		Expect(e.Traps()[0].PC).To(Equal(uint64(0x1004)))
		Expect(e.Traps()[0].Err).To(MatchError(emu.ErrMisaligned))
		Expect(machine.Regs.ReadReg(2)).To(BeZero())
		Expect(machine.Regs.ReadReg(3)).To(Equal(uint64(1)))
		Expect(e.InstructionCount()).To(Equal(uint64(3)))
	})

	It("should record an unknown instruction and continue", func() {
		load(0x00000000, encRET)

		result := e.Step()

		Expect(result.Fault).To(MatchError(emu.ErrUnknownInstruction))
		Expect(e.PC()).To(Equal(uint64(0x1004)))
		Expect(e.Run()).To(Succeed())
	})

	It("should stop at the instruction limit", func() {
		load(encSelf)
		e = emu.NewEmulator(machine, emu.WithMaxInstructions(10))
		e.SetPC(0x1000)

		err := e.Run()

		Expect(err).To(MatchError(emu.ErrInstructionLimit))
		Expect(e.InstructionCount()).To(Equal(uint64(10)))
	})
})
