package report_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/DWBH21/riscv-simulator-pipelined/emu"
	"github.com/DWBH21/riscv-simulator-pipelined/report"
	"github.com/DWBH21/riscv-simulator-pipelined/timing/core"
	"github.com/DWBH21/riscv-simulator-pipelined/timing/pipeline"
)

var _ = Describe("FromPipeline", func() {
	var (
		regFile *emu.RegFile
		memory  *emu.Memory
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		memory = emu.NewMemory()
	})

	It("reports VM_RUNNING with zeroed counters before any tick", func() {
		memory.LoadProgram(0, []byte{0x93, 0x00, 0x10, 0x00})
		p := pipeline.NewPipeline(regFile, memory, *pipeline.NewConfig())
		snap := report.FromPipeline(p, regFile)

		Expect(snap.Status).To(Equal(report.StatusRunning))
		Expect(snap.CPI).To(BeZero())
		Expect(snap.IPC).To(BeZero())
		Expect(snap.IFID.Valid).To(BeFalse())
	})

	It("reports VM_PROGRAM_END, final registers, and derived rates after a run completes", func() {
		memory.LoadProgram(0, []byte{
			0x93, 0x00, 0x10, 0x00, // addi x1, x0, 1
			0x13, 0x01, 0x20, 0x00, // addi x2, x0, 2
		})
		p := pipeline.NewPipeline(regFile, memory, *pipeline.NewConfig())
		p.Run(8)

		snap := report.FromPipeline(p, regFile)
		Expect(snap.Status).To(Equal(report.StatusProgramEnd))
		Expect(snap.Registers[1]).To(BeEquivalentTo(1))
		Expect(snap.Registers[2]).To(BeEquivalentTo(2))
		Expect(snap.Retired).To(BeEquivalentTo(2))
		Expect(snap.CPI).To(BeNumerically(">", 0))
		Expect(snap.IPC).To(BeNumerically(">", 0))
		Expect(snap.PredictorAccuracy).To(BeNumerically(">=", 0))
	})

	It("surfaces pipeline diagnostics tagged with the current PC", func() {
		memory.LoadProgram(0, []byte{0x0b, 0x00, 0x00, 0x00, 0x93, 0x00, 0x10, 0x00})
		p := pipeline.NewPipeline(regFile, memory, *pipeline.NewConfig())
		p.Run(8)

		snap := report.FromPipeline(p, regFile)
		Expect(snap.Diagnostics).NotTo(BeEmpty())
		Expect(snap.Diagnostics[0].PC).To(Equal(snap.PC))
	})
})

var _ = Describe("FromSingleStage", func() {
	var (
		regFile *emu.RegFile
		memory  *emu.Memory
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		memory = emu.NewMemory()
	})

	It("reports VM_RUNNING with a zero CPI/IPC before any tick", func() {
		memory.LoadProgram(0, []byte{0x93, 0x00, 0x10, 0x00})
		s := core.NewSingleStage(regFile, memory, 0)
		snap := report.FromSingleStage(s, regFile)

		Expect(snap.Status).To(Equal(report.StatusRunning))
		Expect(snap.CPI).To(BeZero())
		Expect(snap.IPC).To(BeZero())
	})

	It("reports a CPI of exactly 1 after retiring independent instructions", func() {
		memory.LoadProgram(0, []byte{
			0x93, 0x00, 0x10, 0x00, // addi x1, x0, 1
			0x13, 0x01, 0x20, 0x00, // addi x2, x0, 2
		})
		s := core.NewSingleStage(regFile, memory, 0)
		s.Run(2)

		snap := report.FromSingleStage(s, regFile)
		Expect(snap.CPI).To(BeNumerically("==", 1))
		Expect(snap.IPC).To(BeNumerically("==", 1))
		Expect(snap.Registers[1]).To(BeEquivalentTo(1))
		Expect(snap.Registers[2]).To(BeEquivalentTo(2))
	})

	It("aggregates both faults and diagnostics into the same Diagnostics list", func() {
		bounded := emu.NewBoundedMemory(0x1000, 0x1010)
		bounded.LoadProgram(0x100C, []byte{0x0b, 0x00, 0x00, 0x00})
		s := core.NewSingleStage(regFile, bounded, 0x100C)
		s.Tick() // decode diagnostic at 0x100C
		s.Tick() // fetch fault at 0x1010, past the bound

		snap := report.FromSingleStage(s, regFile)
		Expect(snap.Diagnostics).To(HaveLen(2))
	})

	It("reports VM_PROGRAM_END and the exit code after an exit syscall", func() {
		regFile.WriteReg(17, emu.SyscallExit)
		regFile.WriteReg(10, 9)
		memory.LoadProgram(0, []byte{0x73, 0x00, 0x00, 0x00})
		s := core.NewSingleStage(regFile, memory, 0)
		s.Run(0)

		snap := report.FromSingleStage(s, regFile)
		Expect(snap.Status).To(Equal(report.StatusProgramEnd))
		Expect(snap.ExitCode).To(BeEquivalentTo(9))
	})
})
