package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/armpipe/emu"
	"github.com/sarchlab/armpipe/insts"
)

func neg(v int64) uint64 {
	return uint64(v)
}

var _ = Describe("ALU", func() {
	var (
		flags emu.PSTATE
		alu   *emu.ALU
	)

	BeforeEach(func() {
		flags = emu.PSTATE{}
		alu = emu.NewALU(&flags)
	})

	DescribeTable("Operate",
		func(op emu.ALUOp, a, b uint64, shift uint8, expected uint64) {
			Expect(emu.Operate(op, a, b, shift)).To(Equal(expected))
		},
		Entry("add", emu.ALUAdd, uint64(40), uint64(2), uint8(0), uint64(42)),
		Entry("add with shifted operand", emu.ALUAdd, uint64(1), uint64(1), uint8(12), uint64(0x1001)),
		Entry("sub", emu.ALUSub, uint64(3), uint64(5), uint8(0), neg(-2)),
		Entry("or", emu.ALUOr, uint64(0xF0), uint64(0x0F), uint8(0), uint64(0xFF)),
		Entry("eor", emu.ALUEor, uint64(0xFF), uint64(0x0F), uint8(0), uint64(0xF0)),
		Entry("and", emu.ALUAnd, uint64(0xFF), uint64(0x0F), uint8(0), uint64(0x0F)),
		Entry("negate-or", emu.ALUNegOr, uint64(0), uint64(0xFF), uint8(0), ^uint64(0xFF)),
		Entry("move into halfword", emu.ALUMov, uint64(0x1), uint64(0xBEEF), uint8(16), uint64(0xBEEF0001)),
		Entry("lsl", emu.ALULsl, uint64(1), uint64(4), uint8(0), uint64(16)),
		Entry("lsl masks the amount", emu.ALULsl, uint64(1), uint64(65), uint8(0), uint64(2)),
		Entry("lsr", emu.ALULsr, neg(-1), uint64(60), uint8(0), uint64(0xF)),
		Entry("asr", emu.ALUAsr, neg(-16), uint64(2), uint8(0), neg(-4)),
		Entry("pass A", emu.ALUPassA, uint64(7), uint64(9), uint8(0), uint64(7)),
		Entry("pass B", emu.ALUPassB, uint64(7), uint64(9), uint8(0), uint64(9)),
	)

	Describe("flags", func() {
		It("should set Z and C for add(5, -5)", func() {
			result, _ := alu.Execute(emu.ALUAdd, 5, neg(-5), 0, true, insts.CondAL)

			Expect(result).To(BeZero())
			Expect(flags).To(Equal(emu.PSTATE{N: false, Z: true, C: true, V: false}))
		})

		It("should set N for subtract(3, 5)", func() {
			result, _ := alu.Execute(emu.ALUSub, 3, 5, 0, true, insts.CondAL)

			Expect(result).To(Equal(neg(-2)))
			Expect(flags).To(Equal(emu.PSTATE{N: true, Z: false, C: false, V: false}))
		})

		It("should detect signed overflow on add", func() {
			alu.Execute(emu.ALUAdd, 0x7FFFFFFFFFFFFFFF, 1, 0, true, insts.CondAL)

			Expect(flags.V).To(BeTrue())
			Expect(flags.N).To(BeTrue())
			Expect(flags.C).To(BeFalse())
		})

		It("should detect signed overflow on subtract", func() {
			alu.Execute(emu.ALUSub, 0x8000000000000000, 1, 0, true, insts.CondAL)

			Expect(flags.V).To(BeTrue())
			Expect(flags.N).To(BeFalse())
		})

		It("should clear C and V for logic operations", func() {
			flags = emu.PSTATE{C: true, V: true}

			alu.Execute(emu.ALUAnd, 0x8000000000000001, 0x8000000000000000, 0, true, insts.CondAL)

			Expect(flags).To(Equal(emu.PSTATE{N: true}))
		})

		It("should leave flags alone without setFlags", func() {
			flags = emu.PSTATE{Z: true}

			alu.Execute(emu.ALUSub, 3, 5, 0, false, insts.CondAL)

			Expect(flags).To(Equal(emu.PSTATE{Z: true}))
		})
	})

	Describe("condition evaluation", func() {
		It("should evaluate against flags before the update", func() {
			flags = emu.PSTATE{Z: true}

			_, holds := alu.Execute(emu.ALUSub, 3, 5, 0, true, insts.CondEQ)

			Expect(holds).To(BeTrue())
			Expect(alu.Flags().Z).To(BeFalse())
		})

		It("should report a false condition", func() {
			_, holds := alu.Execute(emu.ALUPassA, 0, 0, 0, false, insts.CondEQ)

			Expect(holds).To(BeFalse())
		})
	})

	It("should name operations", func() {
		Expect(emu.ALUNegOr.String()).To(Equal("NEGOR"))
		Expect(emu.ALUOp(99).String()).To(Equal("INVALID"))
	})
})
