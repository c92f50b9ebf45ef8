// Package report builds the deterministic, JSON-serializable state dump
// the host CLI prints after a run: architectural state, pipeline-latch
// contents, and the cycle/retired/CPI/IPC/stall/misprediction counters.
package report

// Status names the lifecycle state of a run, mirrored into every snapshot.
type Status string

const (
	StatusRunning        Status = "VM_RUNNING"
	StatusStepCompleted   Status = "VM_STEP_COMPLETED"
	StatusStopped         Status = "VM_STOPPED"
	StatusBreakpointHit   Status = "VM_BREAKPOINT_HIT"
	StatusProgramEnd      Status = "VM_PROGRAM_END"
)

// LatchRecord is the JSON shape of one pipeline latch's contents, used for
// all four of IF/ID, ID/EX, EX/MEM, and MEM/WB.
type LatchRecord struct {
	Valid bool   `json:"valid"`
	PC    uint64 `json:"pc,omitempty"`
	Note  string `json:"note,omitempty"`
}

// Snapshot is the full state dump emitted at the end of a run (or at each
// debug-run step), per the State Snapshot external interface.
type Snapshot struct {
	PC     uint64 `json:"pc"`
	Status Status `json:"status"`

	Registers [32]uint64 `json:"registers"`

	Cycles       uint64 `json:"cycles"`
	Retired      uint64 `json:"retired"`
	CPI          float64 `json:"cpi"`
	IPC          float64 `json:"ipc"`
	StallCycles  uint64 `json:"stall_cycles"`
	Flushes      uint64 `json:"flushes"`

	BranchPredictions    uint64  `json:"branch_predictions"`
	BranchCorrect        uint64  `json:"branch_correct"`
	BranchMispredictions uint64  `json:"branch_mispredictions"`
	PredictorAccuracy    float64 `json:"predictor_accuracy"`
	BTBHitRate           float64 `json:"btb_hit_rate"`

	IFID  LatchRecord `json:"if_id"`
	IDEX  LatchRecord `json:"id_ex"`
	EXMEM LatchRecord `json:"ex_mem"`
	MEMWB LatchRecord `json:"mem_wb"`

	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`

	ExitCode int64 `json:"exit_code"`
}

// Diagnostic records a tier-2 decode anomaly or a tier-3 recoverable
// memory fault, surfaced alongside the snapshot rather than aborting the
// run.
type Diagnostic struct {
	Cycle   uint64 `json:"cycle"`
	PC      uint64 `json:"pc"`
	Message string `json:"message"`
}
