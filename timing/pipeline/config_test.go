package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/DWBH21/riscv-simulator-pipelined/timing/pipeline"
)

var _ = Describe("Config", func() {
	It("defaults to single-stage, ideal hazard handling, and EX-resolved static-not-taken branches", func() {
		c := pipeline.NewConfig()
		Expect(c.VMType).To(Equal(pipeline.VMSingleStage))
		Expect(c.DataHazardMode).To(Equal(pipeline.HazardIdeal))
		Expect(c.BranchPredictor).To(Equal(pipeline.PredictorStaticNotTaken))
		Expect(c.BranchStage).To(Equal(pipeline.BranchInEX))
		Expect(c.MExtensionEnabled).To(BeTrue())
	})

	It("accepts a fully specified multi-stage configuration", func() {
		c := pipeline.NewConfig(
			pipeline.WithVMType(pipeline.VMMultiStage),
			pipeline.WithDataHazardMode(pipeline.HazardForwarding),
			pipeline.WithBranchPredictor(pipeline.PredictorDynamic2Bit),
			pipeline.WithBranchStage(pipeline.BranchInID),
		)
		Expect(c.Validate()).NotTo(HaveOccurred())
	})

	It("rejects a data-hazard mode on the single-stage datapath", func() {
		c := pipeline.NewConfig(
			pipeline.WithVMType(pipeline.VMSingleStage),
			pipeline.WithDataHazardMode(pipeline.HazardStallOnly),
		)
		Expect(c.Validate()).To(HaveOccurred())
	})

	It("rejects a non-default branch predictor when hazard handling is ideal", func() {
		c := pipeline.NewConfig(
			pipeline.WithVMType(pipeline.VMMultiStage),
			pipeline.WithDataHazardMode(pipeline.HazardIdeal),
			pipeline.WithBranchPredictor(pipeline.PredictorDynamic1Bit),
		)
		Expect(c.Validate()).To(HaveOccurred())
	})

	It("rejects an ID-resolved branch stage when hazard handling is ideal", func() {
		c := pipeline.NewConfig(
			pipeline.WithVMType(pipeline.VMMultiStage),
			pipeline.WithDataHazardMode(pipeline.HazardIdeal),
			pipeline.WithBranchStage(pipeline.BranchInID),
		)
		Expect(c.Validate()).To(HaveOccurred())
	})

	It("rejects an ID-resolved branch stage on the single-stage datapath", func() {
		c := pipeline.NewConfig(
			pipeline.WithVMType(pipeline.VMSingleStage),
			pipeline.WithBranchStage(pipeline.BranchInID),
		)
		Expect(c.Validate()).To(HaveOccurred())
	})

	It("accepts the M extension disabled", func() {
		c := pipeline.NewConfig(pipeline.WithExtensions(false, false, false))
		Expect(c.MExtensionEnabled).To(BeFalse())
		Expect(c.Validate()).NotTo(HaveOccurred())
	})

	It("stores the data/text/bss section bases", func() {
		c := pipeline.NewConfig(pipeline.WithSections(0x1000, 0x2000, 0x3000))
		Expect(c.DataSectionStart).To(BeEquivalentTo(0x1000))
		Expect(c.TextSectionStart).To(BeEquivalentTo(0x2000))
		Expect(c.BSSSectionStart).To(BeEquivalentTo(0x3000))
	})
})
