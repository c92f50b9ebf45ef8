package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/DWBH21/riscv-simulator-pipelined/insts"
	"github.com/DWBH21/riscv-simulator-pipelined/timing/pipeline"
)

var _ = Describe("ForwardingUnit", func() {
	var fwd *pipeline.ForwardingUnit

	BeforeEach(func() {
		fwd = pipeline.NewForwardingUnit()
	})

	It("prefers EX/MEM over MEM/WB when both hold the same destination", func() {
		idex := &pipeline.IDEXRegister{Rs1Idx: 1}
		exmem := &pipeline.EXMEMRegister{Valid: true, Control: insts.ControlSignals{RegWrite: true, WBSrc: insts.WBAlu}, RdIdx: 1, ALUResult: 11}
		memwb := &pipeline.MEMWBRegister{Valid: true, Control: insts.ControlSignals{RegWrite: true, WBSrc: insts.WBAlu}, RdIdx: 1, ALUResult: 22}

		decision := fwd.Decide(idex, exmem, memwb)
		Expect(decision.Rs1).To(Equal(pipeline.ForwardFromEXMEM))
		Expect(fwd.Resolve(decision.Rs1, 0, exmem, memwb)).To(BeEquivalentTo(11))
	})

	It("forwards from MEM/WB when EX/MEM does not hold the register", func() {
		idex := &pipeline.IDEXRegister{Rs1Idx: 1}
		exmem := &pipeline.EXMEMRegister{}
		memwb := &pipeline.MEMWBRegister{Valid: true, Control: insts.ControlSignals{RegWrite: true, WBSrc: insts.WBAlu}, RdIdx: 1, ALUResult: 22}

		decision := fwd.Decide(idex, exmem, memwb)
		Expect(decision.Rs1).To(Equal(pipeline.ForwardFromMEMWB))
		Expect(fwd.Resolve(decision.Rs1, 0, exmem, memwb)).To(BeEquivalentTo(22))
	})

	It("does not forward from EX/MEM when the producer there is a load", func() {
		idex := &pipeline.IDEXRegister{Rs1Idx: 1}
		exmem := &pipeline.EXMEMRegister{Valid: true, Control: insts.ControlSignals{RegWrite: true, MemRead: true}, RdIdx: 1}
		memwb := &pipeline.MEMWBRegister{}

		decision := fwd.Decide(idex, exmem, memwb)
		Expect(decision.Rs1).To(Equal(pipeline.ForwardNone))
	})

	It("never forwards to x0", func() {
		idex := &pipeline.IDEXRegister{Rs1Idx: 0}
		exmem := &pipeline.EXMEMRegister{Valid: true, Control: insts.ControlSignals{RegWrite: true}, RdIdx: 0}
		memwb := &pipeline.MEMWBRegister{}

		decision := fwd.Decide(idex, exmem, memwb)
		Expect(decision.Rs1).To(Equal(pipeline.ForwardNone))
	})

	It("falls back to the register-file value when nothing forwards", func() {
		exmem := &pipeline.EXMEMRegister{}
		memwb := &pipeline.MEMWBRegister{}
		Expect(fwd.Resolve(pipeline.ForwardNone, 99, exmem, memwb)).To(BeEquivalentTo(99))
	})

	It("resolves a JAL/JALR producer in EX/MEM to PC+4, not its ALU result", func() {
		exmem := &pipeline.EXMEMRegister{Valid: true, Control: insts.ControlSignals{WBSrc: insts.WBPCInc}, ALUResult: 0x9999, PCPlus4: 0x104}
		Expect(exmem.ForwardableValue()).To(BeEquivalentTo(0x104))
	})

	It("resolves a memory-sourced producer in MEM/WB to the loaded data", func() {
		memwb := &pipeline.MEMWBRegister{Control: insts.ControlSignals{WBSrc: insts.WBMem}, MemoryData: 0x55, ALUResult: 0x99}
		Expect(memwb.WritebackValue()).To(BeEquivalentTo(0x55))
	})
})
