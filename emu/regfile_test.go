package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/DWBH21/riscv-simulator-pipelined/emu"
)

var _ = Describe("RegFile", func() {
	var rf *emu.RegFile

	BeforeEach(func() {
		rf = &emu.RegFile{}
	})

	It("round-trips a write through a read", func() {
		rf.WriteReg(5, 0x1234)
		Expect(rf.ReadReg(5)).To(BeEquivalentTo(0x1234))
	})

	It("always reads x0 as zero", func() {
		Expect(rf.ReadReg(0)).To(BeEquivalentTo(0))
	})

	It("silently discards writes to x0", func() {
		rf.WriteReg(0, 0xDEAD)
		Expect(rf.ReadReg(0)).To(BeEquivalentTo(0))
	})

	It("masks out-of-range register indices to the 5-bit field", func() {
		rf.WriteReg(1, 7)
		Expect(rf.ReadReg(1 + 32)).To(BeEquivalentTo(7))
	})

	It("clears every register on Reset", func() {
		rf.WriteReg(10, 99)
		rf.Reset()
		Expect(rf.ReadReg(10)).To(BeEquivalentTo(0))
	})

	It("snapshots the register contents independently of further writes", func() {
		rf.WriteReg(3, 42)
		snap := rf.Snapshot()
		rf.WriteReg(3, 43)
		Expect(snap[3]).To(BeEquivalentTo(42))
		Expect(rf.ReadReg(3)).To(BeEquivalentTo(43))
	})
})
