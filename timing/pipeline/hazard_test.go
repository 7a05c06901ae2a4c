package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/armpipe/insts"
	"github.com/sarchlab/armpipe/timing/pipeline"
)

var _ = Describe("HazardController", func() {
	var (
		controller *pipeline.HazardController
		snapshot   pipeline.HazardSnapshot
	)

	BeforeEach(func() {
		controller = pipeline.NewHazardController()
		snapshot = pipeline.HazardSnapshot{
			DecodeOp:      insts.OpADDS,
			DecodeStatus:  pipeline.StatusOK,
			DecodeSrc1:    1,
			DecodeSrc2:    2,
			ExecuteOp:     insts.OpADDImm,
			ExecuteStatus: pipeline.StatusOK,
			ExecuteDst:    1,
		}
	})

	Context("when no hazard is present", func() {
		It("should load every stage", func() {
			hazard, requests := controller.Resolve(snapshot)

			Expect(hazard).To(Equal(pipeline.HazardNone))
			Expect(requests).To(Equal(pipeline.Requests{}))
		})
	})

	Context("when RET is in decode", func() {
		It("should bubble decode only", func() {
			snapshot.DecodeOp = insts.OpRET

			hazard, requests := controller.Resolve(snapshot)

			Expect(hazard).To(Equal(pipeline.HazardReturn))
			Expect(requests[pipeline.StageDecode]).To(Equal(pipeline.Request{Bubble: true}))
			Expect(requests[pipeline.StageFetch]).To(Equal(pipeline.Request{}))
			Expect(requests[pipeline.StageExecute]).To(Equal(pipeline.Request{}))
		})

		It("should ignore a RET that is not OK", func() {
			snapshot.DecodeOp = insts.OpRET
			snapshot.DecodeStatus = pipeline.StatusBubble

			Expect(controller.Detect(snapshot)).To(Equal(pipeline.HazardNone))
		})
	})

	Context("when a load in execute feeds decode", func() {
		BeforeEach(func() {
			snapshot.ExecuteOp = insts.OpLDUR
		})

		It("should stall fetch and decode and bubble execute", func() {
			hazard, requests := controller.Resolve(snapshot)

			Expect(hazard).To(Equal(pipeline.HazardLoadUse))
			Expect(requests[pipeline.StageFetch]).To(Equal(pipeline.Request{Stall: true}))
			Expect(requests[pipeline.StageDecode]).To(Equal(pipeline.Request{Stall: true}))
			Expect(requests[pipeline.StageExecute]).To(Equal(pipeline.Request{Bubble: true}))
			Expect(requests[pipeline.StageMemory]).To(Equal(pipeline.Request{}))
			Expect(requests[pipeline.StageWriteback]).To(Equal(pipeline.Request{}))
		})

		It("should detect a dependency on the second source", func() {
			snapshot.ExecuteDst = 2

			Expect(controller.Detect(snapshot)).To(Equal(pipeline.HazardLoadUse))
		})

		It("should not stall on independent registers", func() {
			snapshot.ExecuteDst = 5

			Expect(controller.Detect(snapshot)).To(Equal(pipeline.HazardNone))
		})

		It("should not stall on a load into the zero register", func() {
			snapshot.ExecuteDst = insts.RegNone
			snapshot.DecodeSrc1 = insts.RegNone

			Expect(controller.Detect(snapshot)).To(Equal(pipeline.HazardNone))
		})

		It("should not stall on a faulted load", func() {
			snapshot.ExecuteStatus = pipeline.StatusInvalidInstruction

			Expect(controller.Detect(snapshot)).To(Equal(pipeline.HazardNone))
		})

		It("should stall a RET waiting on the loaded link register", func() {
			snapshot.DecodeOp = insts.OpRET
			snapshot.DecodeSrc1 = insts.RegLink
			snapshot.ExecuteDst = insts.RegLink

			Expect(controller.Detect(snapshot)).To(Equal(pipeline.HazardLoadUse))
		})
	})

	Context("when a conditional branch is resolved not taken", func() {
		BeforeEach(func() {
			snapshot.BranchNotTaken = true
		})

		It("should bubble decode and execute", func() {
			hazard, requests := controller.Resolve(snapshot)

			Expect(hazard).To(Equal(pipeline.HazardMispredict))
			Expect(requests[pipeline.StageFetch]).To(Equal(pipeline.Request{}))
			Expect(requests[pipeline.StageDecode]).To(Equal(pipeline.Request{Bubble: true}))
			Expect(requests[pipeline.StageExecute]).To(Equal(pipeline.Request{Bubble: true}))
			Expect(requests[pipeline.StageMemory]).To(Equal(pipeline.Request{}))
		})

		It("should take precedence over a wrong-path RET", func() {
			snapshot.DecodeOp = insts.OpRET

			Expect(controller.Detect(snapshot)).To(Equal(pipeline.HazardMispredict))
		})

		It("should take precedence over a load-use on the wrong path", func() {
			snapshot.ExecuteOp = insts.OpLDUR

			hazard, requests := controller.Resolve(snapshot)

			Expect(hazard).To(Equal(pipeline.HazardMispredict))
			Expect(requests[pipeline.StageFetch]).To(Equal(pipeline.Request{}))
		})
	})

	It("should never request bubble and stall for the same stage", func() {
		for _, h := range []pipeline.Hazard{
			pipeline.HazardNone, pipeline.HazardMispredict,
			pipeline.HazardLoadUse, pipeline.HazardReturn,
		} {
			for _, r := range controller.Requests(h) {
				Expect(r.Bubble && r.Stall).To(BeFalse())
			}
		}
	})

	It("should name hazards and stages", func() {
		Expect(pipeline.HazardLoadUse.String()).To(Equal("load-use"))
		Expect(pipeline.StageMemory.String()).To(Equal("M"))
	})
})

var _ = Describe("ForwardingSources", func() {
	var (
		execute   *pipeline.EXMEMRegister
		memory    *pipeline.MEMWBRegister
		writeback *pipeline.MEMWBRegister
		sources   pipeline.ForwardingSources
	)

	writer := pipeline.WritebackSignals{WriteEnable: true}

	BeforeEach(func() {
		execute = &pipeline.EXMEMRegister{Status: pipeline.StatusBubble, Dst: insts.RegNone}
		memory = &pipeline.MEMWBRegister{Status: pipeline.StatusBubble, Dst: insts.RegNone}
		writeback = &pipeline.MEMWBRegister{Status: pipeline.StatusBubble, Dst: insts.RegNone}
		sources = pipeline.ForwardingSources{
			Execute:   execute,
			Memory:    memory,
			Writeback: writeback,
		}
	})

	It("should keep the register file value with no producer", func() {
		Expect(sources.Forward(1, 7)).To(Equal(uint64(7)))
	})

	It("should prefer the execute output", func() {
		*execute = pipeline.EXMEMRegister{Status: pipeline.StatusOK, Dst: 1, ValEx: 10, Writeback: writer}
		*memory = pipeline.MEMWBRegister{Status: pipeline.StatusOK, Dst: 1, ValEx: 20, Writeback: writer}
		*writeback = pipeline.MEMWBRegister{Status: pipeline.StatusOK, Dst: 1, ValEx: 30, Writeback: writer}

		Expect(sources.Forward(1, 7)).To(Equal(uint64(10)))
	})

	It("should use the memory output before the writeback output", func() {
		*memory = pipeline.MEMWBRegister{Status: pipeline.StatusOK, Dst: 1, ValEx: 20, Writeback: writer}
		*writeback = pipeline.MEMWBRegister{Status: pipeline.StatusOK, Dst: 1, ValEx: 30, Writeback: writer}

		Expect(sources.Forward(1, 7)).To(Equal(uint64(20)))
	})

	It("should select the loaded value of a load", func() {
		*memory = pipeline.MEMWBRegister{
			Status: pipeline.StatusOK, Dst: 1, ValEx: 0x4000, ValMem: 99,
			Writeback: pipeline.WritebackSignals{WriteEnable: true, Value: pipeline.ValueMemory},
		}

		Expect(sources.Forward(1, 7)).To(Equal(uint64(99)))
	})

	It("should leave a load still in execute to the load-use stall", func() {
		*execute = pipeline.EXMEMRegister{
			Status: pipeline.StatusOK, Op: insts.OpLDUR, Dst: 1, ValEx: 0x4000,
			Writeback: pipeline.WritebackSignals{WriteEnable: true, Value: pipeline.ValueMemory},
		}
		*memory = pipeline.MEMWBRegister{Status: pipeline.StatusOK, Dst: 1, ValEx: 20, Writeback: writer}

		Expect(sources.Forward(1, 7)).To(BeZero())
		Expect(pipeline.NewHazardController().Detect(pipeline.HazardSnapshot{
			DecodeOp:      insts.OpADDImm,
			DecodeStatus:  pipeline.StatusOK,
			DecodeSrc1:    1,
			DecodeSrc2:    insts.RegNone,
			ExecuteOp:     insts.OpLDUR,
			ExecuteStatus: pipeline.StatusOK,
			ExecuteDst:    1,
		})).To(Equal(pipeline.HazardLoadUse))
	})

	It("should forward from writeback", func() {
		*writeback = pipeline.MEMWBRegister{Status: pipeline.StatusOK, Dst: 4, ValEx: 30, Writeback: writer}

		Expect(sources.Forward(4, 7)).To(Equal(uint64(30)))
	})

	It("should skip producers without write enable", func() {
		*execute = pipeline.EXMEMRegister{Status: pipeline.StatusOK, Dst: 1, ValEx: 10}

		Expect(sources.Forward(1, 7)).To(Equal(uint64(7)))
	})

	It("should skip producers that are not OK", func() {
		*memory = pipeline.MEMWBRegister{Status: pipeline.StatusMisalignedAccess, Dst: 1, ValEx: 20, Writeback: writer}

		Expect(sources.Forward(1, 7)).To(Equal(uint64(7)))
	})

	It("should never forward to the sentinel register", func() {
		*execute = pipeline.EXMEMRegister{Status: pipeline.StatusOK, Dst: insts.RegNone, ValEx: 10, Writeback: writer}

		Expect(sources.Forward(insts.RegNone, 0)).To(BeZero())
	})
})

var _ = Describe("Latch", func() {
	var latch *pipeline.Latch[int]

	BeforeEach(func() {
		latch = pipeline.NewLatch(-1)
		latch.In = 5
	})

	It("should start with the bubble value", func() {
		Expect(pipeline.NewLatch(-1).Out).To(Equal(-1))
	})

	It("should load by default", func() {
		latch.Clock()

		Expect(latch.Out).To(Equal(5))
		Expect(latch.Directive()).To(Equal(pipeline.DirectiveLoad))
	})

	It("should hold its output on stall", func() {
		latch.Clock()
		latch.In = 6
		latch.Control(false, true)
		latch.Clock()

		Expect(latch.Out).To(Equal(5))
	})

	It("should inject the bubble value on bubble", func() {
		latch.Control(true, false)
		latch.Clock()

		Expect(latch.Out).To(Equal(-1))
	})

	It("should enter the error state on bubble and stall", func() {
		latch.Control(true, true)

		Expect(latch.Directive()).To(Equal(pipeline.DirectiveError))
	})

	It("should stay in the error state", func() {
		latch.Control(true, true)
		latch.Control(false, false)
		latch.Clock()

		Expect(latch.Directive()).To(Equal(pipeline.DirectiveError))
		Expect(latch.Out).To(Equal(-1))
	})

	It("should leave the error state on Reset", func() {
		latch.Control(true, true)
		latch.Reset()

		Expect(latch.Directive()).To(Equal(pipeline.DirectiveLoad))
		Expect(latch.Out).To(Equal(-1))
	})
})
