package main

import (
	"bytes"
	"context"

	"github.com/jedib0t/go-pretty/v6/table"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/armpipe/emu"
	"github.com/sarchlab/armpipe/timing/pipeline"
)

var _ = Describe("Report", func() {
	var (
		machine *emu.Machine
		pipe    *pipeline.Pipeline
		buf     *bytes.Buffer
	)

	BeforeEach(func() {
		machine = emu.NewMachine(emu.DefaultLayout())
		pipe = pipeline.NewPipeline(machine)
		buf = &bytes.Buffer{}
	})

	It("should print statistics", func() {
		Expect(machine.LoadWords(0x400000,
			0xD2800541, // MOVZ X1, #42
			0xD65F03C0, // RET
		)).To(Succeed())
		pipe.SetPC(0x400000)
		Expect(pipe.Run(context.Background())).To(Succeed())

		printReport(buf, table.StyleDefault, "prog.bin", pipe)

		Expect(buf.String()).To(ContainSubstring("prog.bin"))
		Expect(buf.String()).To(ContainSubstring("CPI"))
		Expect(buf.String()).To(ContainSubstring("3.50"))
		Expect(buf.String()).NotTo(ContainSubstring("STATUS"))
	})

	It("should list faults", func() {
		Expect(machine.LoadWords(0x400000,
			0x00000000, // invalid
			0xD65F03C0, // RET
		)).To(Succeed())
		pipe.SetPC(0x400000)
		Expect(pipe.Run(context.Background())).To(Succeed())

		printReport(buf, table.StyleDefault, "prog.bin", pipe)

		Expect(buf.String()).To(ContainSubstring("STATUS"))
		Expect(buf.String()).To(ContainSubstring("INS"))
		Expect(buf.String()).To(ContainSubstring("0x400000"))
	})
})
