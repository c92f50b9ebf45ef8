package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/DWBH21/riscv-simulator-pipelined/timing/pipeline"
)

var _ = Describe("BTB", func() {
	var btb *pipeline.BTB

	BeforeEach(func() {
		btb = pipeline.NewBTB()
	})

	It("misses on an address it has never seen", func() {
		_, ok := btb.Lookup(0x100)
		Expect(ok).To(BeFalse())
	})

	It("hits after an update records a target", func() {
		btb.Update(0x100, 0x200)
		target, ok := btb.Lookup(0x100)
		Expect(ok).To(BeTrue())
		Expect(target).To(BeEquivalentTo(0x200))
	})

	It("never aliases two different PCs onto the same entry", func() {
		btb.Update(0x100, 0x200)
		btb.Update(0x104, 0x300)
		t1, _ := btb.Lookup(0x100)
		t2, _ := btb.Lookup(0x104)
		Expect(t1).To(BeEquivalentTo(0x200))
		Expect(t2).To(BeEquivalentTo(0x300))
	})

	It("tracks a hit rate across hits and misses", func() {
		btb.Update(0x100, 0x200)
		btb.Lookup(0x100) // hit
		btb.Lookup(0x104) // miss
		Expect(btb.HitRate()).To(BeNumerically("~", 50.0, 0.001))
	})

	It("reports a zero hit rate with no lookups", func() {
		Expect(btb.HitRate()).To(BeZero())
	})

	It("clears all entries and counters on Reset", func() {
		btb.Update(0x100, 0x200)
		btb.Lookup(0x100)
		btb.Reset()
		_, ok := btb.Lookup(0x100)
		Expect(ok).To(BeFalse())
		Expect(btb.HitRate()).To(BeNumerically("~", 0.0, 0.001))
	})
})
