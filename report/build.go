package report

import (
	"github.com/DWBH21/riscv-simulator-pipelined/emu"
	"github.com/DWBH21/riscv-simulator-pipelined/timing/core"
	"github.com/DWBH21/riscv-simulator-pipelined/timing/pipeline"
)

// FromPipeline builds a Snapshot from a running or halted 5-stage Pipeline.
func FromPipeline(p *pipeline.Pipeline, regFile *emu.RegFile) Snapshot {
	stats := p.Stats()

	status := StatusRunning
	if p.Halted() {
		status = StatusProgramEnd
	}

	snap := Snapshot{
		PC:                   p.PC(),
		Status:               status,
		Registers:            regFile.Snapshot(),
		Cycles:               stats.Cycles,
		Retired:              stats.Instructions,
		CPI:                  stats.CPI(),
		IPC:                  stats.IPC(),
		StallCycles:          stats.Stalls,
		Flushes:              stats.Flushes,
		BranchPredictions:    stats.BranchPredictions,
		BranchCorrect:        stats.BranchCorrect,
		BranchMispredictions: stats.BranchMispredictions,
		ExitCode:             p.ExitCode(),
	}

	if predictor := p.Predictor(); predictor != nil {
		snap.PredictorAccuracy = predictor.Stats().Accuracy()
	}
	if btb := p.BTB(); btb != nil {
		snap.BTBHitRate = btb.HitRate()
	}

	snap.IFID = latchFromValid(p.GetIFID().Valid, p.GetIFID().PC)
	snap.IDEX = latchFromValid(p.GetIDEX().Valid, p.GetIDEX().PC)
	snap.EXMEM = latchFromValid(p.GetEXMEM().Valid, p.GetEXMEM().PCPlus4)
	snap.MEMWB = latchFromValid(p.GetMEMWB().Valid, p.GetMEMWB().PCPlus4)

	for _, d := range p.Diagnostics() {
		snap.Diagnostics = append(snap.Diagnostics, Diagnostic{PC: p.PC(), Message: d})
	}

	return snap
}

// FromSingleStage builds a Snapshot from the single-stage reference
// datapath, which has no pipeline latches to report.
func FromSingleStage(s *core.SingleStage, regFile *emu.RegFile) Snapshot {
	stats := s.Stats()

	status := StatusRunning
	if s.Halted() {
		status = StatusProgramEnd
	}

	var cpi, ipc float64
	if stats.Retired > 0 {
		cpi = float64(stats.Cycles) / float64(stats.Retired)
		ipc = float64(stats.Retired) / float64(stats.Cycles)
	}

	snap := Snapshot{
		PC:        s.PC(),
		Status:    status,
		Registers: regFile.Snapshot(),
		Cycles:    stats.Cycles,
		Retired:   stats.Retired,
		CPI:       cpi,
		IPC:       ipc,
		ExitCode:  s.ExitCode(),
	}
	for _, f := range s.Faults() {
		snap.Diagnostics = append(snap.Diagnostics, Diagnostic{Cycle: f.Cycle, PC: f.PC, Message: f.Message})
	}
	for _, d := range s.Diagnostics() {
		snap.Diagnostics = append(snap.Diagnostics, Diagnostic{PC: s.PC(), Message: d})
	}
	return snap
}

func latchFromValid(valid bool, pc uint64) LatchRecord {
	if !valid {
		return LatchRecord{Valid: false}
	}
	return LatchRecord{Valid: true, PC: pc}
}
