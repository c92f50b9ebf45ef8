package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/DWBH21/riscv-simulator-pipelined/emu"
	"github.com/DWBH21/riscv-simulator-pipelined/insts"
)

var _ = Describe("Execute (ALU)", func() {
	Describe("base integer operations", func() {
		It("adds", func() {
			Expect(emu.Execute(insts.AluAdd, 2, 3).Value).To(BeEquivalentTo(5))
		})

		It("subtracts", func() {
			Expect(emu.Execute(insts.AluSub, 5, 3).Value).To(BeEquivalentTo(2))
		})

		It("flags signed-overflow on addition of two same-signed operands", func() {
			result := emu.Execute(insts.AluAdd, uint64(1)<<63, uint64(1)<<63)
			Expect(result.Overflow).To(BeTrue())
		})

		It("flags signed-overflow on subtraction that crosses the sign boundary", func() {
			result := emu.Execute(insts.AluSub, uint64(0x7FFFFFFFFFFFFFFF), ^uint64(0))
			Expect(result.Overflow).To(BeTrue())
		})

		It("does not flag overflow for an ordinary add", func() {
			Expect(emu.Execute(insts.AluAdd, 2, 3).Overflow).To(BeFalse())
		})

		It("computes bitwise and/or/xor", func() {
			Expect(emu.Execute(insts.AluAnd, 0b1100, 0b1010).Value).To(BeEquivalentTo(0b1000))
			Expect(emu.Execute(insts.AluOr, 0b1100, 0b1010).Value).To(BeEquivalentTo(0b1110))
			Expect(emu.Execute(insts.AluXor, 0b1100, 0b1010).Value).To(BeEquivalentTo(0b0110))
		})

		It("shifts logically and arithmetically", func() {
			Expect(emu.Execute(insts.AluSll, 1, 4).Value).To(BeEquivalentTo(16))
			Expect(emu.Execute(insts.AluSrl, 16, 4).Value).To(BeEquivalentTo(1))
			negSixteen := int64(-16)
			negFour := int64(-4)
			Expect(emu.Execute(insts.AluSra, uint64(negSixteen), 2).Value).To(BeEquivalentTo(uint64(negFour)))
		})

		It("sets-less-than signed and unsigned", func() {
			Expect(emu.Execute(insts.AluSlt, ^uint64(0), 1).Value).To(BeEquivalentTo(1))
			Expect(emu.Execute(insts.AluSltu, ^uint64(0), 1).Value).To(BeEquivalentTo(0))
		})
	})

	Describe("M-extension multiply/divide/remainder", func() {
		It("computes the low 64 bits of a product", func() {
			Expect(emu.Execute(insts.AluMul, 5, 6).Value).To(BeEquivalentTo(30))
		})

		It("computes the high 64 bits of an unsigned 128-bit product", func() {
			result := emu.Execute(insts.AluMulhu, ^uint64(0), 2)
			Expect(result.Value).To(BeEquivalentTo(1))
		})

		It("divides, with x/0 defined as all-ones per RV64M", func() {
			Expect(emu.Execute(insts.AluDiv, 10, 0).Value).To(BeEquivalentTo(^uint64(0)))
			Expect(emu.Execute(insts.AluDivu, 10, 0).Value).To(BeEquivalentTo(^uint64(0)))
		})

		It("does not trap on the MinInt64/-1 overflow case", func() {
			minInt64 := uint64(1) << 63
			result := emu.Execute(insts.AluDiv, minInt64, ^uint64(0))
			Expect(result.Value).To(BeEquivalentTo(minInt64))
		})

		It("defines x%0 as x per RV64M", func() {
			Expect(emu.Execute(insts.AluRem, 5, 0).Value).To(BeEquivalentTo(5))
			Expect(emu.Execute(insts.AluRemu, 5, 0).Value).To(BeEquivalentTo(5))
		})

		It("computes ordinary signed remainder", func() {
			Expect(emu.Execute(insts.AluRem, 7, 3).Value).To(BeEquivalentTo(1))
		})
	})

	Describe("32-bit word operations", func() {
		It("sign-extends a 32-bit add that overflows into the sign bit", func() {
			result := emu.Execute(insts.AluAddw, 0x7FFFFFFF, 1)
			Expect(result.Value).To(BeEquivalentTo(uint64(0xFFFFFFFF80000000)))
		})

		It("computes addw for values that fit in 32 bits without sign change", func() {
			Expect(emu.Execute(insts.AluAddw, 2, 3).Value).To(BeEquivalentTo(5))
		})

		It("divides with the word-width div-by-zero convention", func() {
			Expect(emu.Execute(insts.AluDivw, 10, 0).Value).To(BeEquivalentTo(^uint64(0)))
		})
	})
})
