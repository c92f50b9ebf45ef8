package pipeline

import (
	"github.com/DWBH21/riscv-simulator-pipelined/emu"
	"github.com/DWBH21/riscv-simulator-pipelined/insts"
)

// Statistics holds pipeline performance counters.
type Statistics struct {
	Cycles               uint64
	Instructions         uint64
	Stalls               uint64
	Flushes              uint64
	BranchPredictions    uint64
	BranchCorrect        uint64
	BranchMispredictions uint64
}

// CPI returns cycles per instruction.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// IPC returns instructions per cycle, the reciprocal of CPI.
func (s Statistics) IPC() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.Instructions) / float64(s.Cycles)
}

// PipelineOption configures a Pipeline at construction time.
type PipelineOption func(*Pipeline)

// WithSyscallHandler sets a custom syscall handler.
func WithSyscallHandler(handler emu.SyscallHandler) PipelineOption {
	return func(p *Pipeline) { p.syscallHandler = handler }
}

// WithPredictor overrides the default predictor, which NewPipeline builds
// from config.BranchPredictor.
func WithPredictor(predictor Predictor) PipelineOption {
	return func(p *Pipeline) { p.predictor = predictor }
}

// WithBTB overrides the default branch target buffer.
func WithBTB(btb *BTB) PipelineOption {
	return func(p *Pipeline) { p.btb = btb }
}

// Pipeline implements the 5-stage (IF/ID/EX/MEM/WB) RV64I/M datapath with
// a configurable data-hazard policy and branch-resolution stage.
type Pipeline struct {
	ifid  IFIDRegister
	idex  IDEXRegister
	exmem EXMEMRegister
	memwb MEMWBRegister

	fetchStage     *FetchStage
	decodeStage    *DecodeStage
	executeStage   *ExecuteStage
	memoryStage    *MemoryStage
	writebackStage *WritebackStage

	hazardUnit     *HazardUnit
	forwardingUnit *ForwardingUnit
	predictor      Predictor
	btb            *BTB

	config Config

	regFile *emu.RegFile
	memory  *emu.Memory

	syscallHandler emu.SyscallHandler

	pc          uint64
	programSize uint64

	stats Statistics

	halted   bool
	exitCode int64

	diagnostics []string
}

// NewPipeline creates a 5-stage pipeline over regFile/memory, configured
// by config (already validated by the caller via config.Validate).
func NewPipeline(regFile *emu.RegFile, memory *emu.Memory, config Config, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		fetchStage:     NewFetchStage(memory),
		decodeStage:    NewDecodeStage(regFile),
		executeStage:   NewExecuteStage(),
		memoryStage:    NewMemoryStage(memory),
		writebackStage: NewWritebackStage(regFile),
		hazardUnit:     NewHazardUnit(),
		forwardingUnit: NewForwardingUnit(),
		predictor:      NewPredictor(config.BranchPredictor),
		btb:            NewBTB(),
		config:         config,
		regFile:        regFile,
		memory:         memory,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.syscallHandler == nil {
		p.syscallHandler = emu.NewDefaultSyscallHandler(regFile, memory, nil, nil)
	}
	return p
}

// PC returns the current program counter.
func (p *Pipeline) PC() uint64 { return p.pc }

// SetPC sets the program counter (used to set the initial entry point).
func (p *Pipeline) SetPC(pc uint64) { p.pc = pc }

// SetProgramSize records the fetch upper bound: IF emits a bubble instead
// of fetching once the PC reaches it, per the general termination rule.
func (p *Pipeline) SetProgramSize(size uint64) { p.programSize = size }

// GetIFID returns the IF/ID latch.
func (p *Pipeline) GetIFID() *IFIDRegister { return &p.ifid }

// GetIDEX returns the ID/EX latch.
func (p *Pipeline) GetIDEX() *IDEXRegister { return &p.idex }

// GetEXMEM returns the EX/MEM latch.
func (p *Pipeline) GetEXMEM() *EXMEMRegister { return &p.exmem }

// GetMEMWB returns the MEM/WB latch.
func (p *Pipeline) GetMEMWB() *MEMWBRegister { return &p.memwb }

// Stats returns the accumulated pipeline statistics.
func (p *Pipeline) Stats() Statistics { return p.stats }

// Halted reports whether the pipeline has stopped issuing new cycles.
func (p *Pipeline) Halted() bool { return p.halted }

// ExitCode returns the exit code once Halted is true.
func (p *Pipeline) ExitCode() int64 { return p.exitCode }

// Diagnostics returns the tier-2 decode-anomaly and tier-3 memory-fault log.
func (p *Pipeline) Diagnostics() []string { return p.diagnostics }

// Predictor returns the configured branch predictor, for reporting.
func (p *Pipeline) Predictor() Predictor { return p.predictor }

// BTB returns the branch target buffer, for reporting.
func (p *Pipeline) BTB() *BTB { return p.btb }

// allBubbles reports whether every latch currently holds a bubble.
func (p *Pipeline) allBubbles() bool {
	return !p.ifid.Valid && !p.idex.Valid && !p.exmem.Valid && !p.memwb.Valid
}

// Run ticks until the pipeline halts, or, lacking an explicit exit
// syscall, the PC has advanced past programSize and every latch has
// drained (the general termination rule applied uniformly across all
// three data-hazard modes).
func (p *Pipeline) Run(programSize uint64) int64 {
	p.programSize = programSize
	for !p.halted {
		p.Tick()
		if p.pc >= programSize && p.allBubbles() {
			p.halted = true
		}
	}
	return p.exitCode
}

// RunCycles ticks the pipeline up to cycles times, stopping early if it
// halts. Returns true if still running.
func (p *Pipeline) RunCycles(cycles uint64) bool {
	for i := uint64(0); i < cycles && !p.halted; i++ {
		p.Tick()
	}
	return !p.halted
}

// Tick advances the pipeline by one clock cycle. Stages are evaluated in
// reverse order (WB -> MEM -> EX -> ID -> IF) so that each stage reads the
// latch values its predecessor produced on the *previous* cycle, matching
// the way real hardware latches interact.
func (p *Pipeline) Tick() {
	if p.halted {
		return
	}
	p.stats.Cycles++

	savedEXMEM := p.exmem
	savedMEMWB := p.memwb

	// WB
	p.writebackStage.Writeback(&p.memwb)
	if p.memwb.Valid {
		p.stats.Instructions++
	}

	// MEM
	var nextMEMWB MEMWBRegister
	if p.exmem.Valid {
		if p.exmem.Control.IsSyscall {
			result := p.syscallHandler.Handle()
			if result.Exited {
				p.halted = true
				p.exitCode = result.ExitCode
			}
		}
		memResult := p.memoryStage.Access(&p.exmem)
		if memResult.Fault != nil {
			// Out-of-range access at MEM: emit a WB bubble and preserve
			// counters rather than retiring a faulting instruction.
			p.diagnostics = append(p.diagnostics, memResult.Fault.Error())
		} else {
			nextMEMWB = MEMWBRegister{
				Valid:      true,
				PCPlus4:    p.exmem.PCPlus4,
				Control:    p.exmem.Control,
				MemoryData: memResult.MemData,
				ALUResult:  p.exmem.ALUResult,
				RdIdx:      p.exmem.RdIdx,
			}
		}
	}

	// EX
	var nextEXMEM EXMEMRegister
	branchMispredicted := false
	var branchTarget uint64

	if p.idex.Valid {
		decision := p.forwardingUnit.Decide(&p.idex, &savedEXMEM, &savedMEMWB)
		rs1 := p.forwardingUnit.Resolve(decision.Rs1, p.idex.Rs1Data, &savedEXMEM, &savedMEMWB)
		rs2 := p.forwardingUnit.Resolve(decision.Rs2, p.idex.Rs2Data, &savedEXMEM, &savedMEMWB)

		execResult := p.executeStage.Execute(&p.idex, rs1, rs2)

		if p.idex.Control.Branch && p.config.BranchStage == BranchInEX {
			p.stats.BranchPredictions++
			p.predictor.Update(p.idex.PC, p.idex.PredictedTaken, execResult.BranchTaken)
			p.btb.Update(p.idex.PC, execResult.BranchTarget)

			mispredicted := execResult.BranchTaken != p.idex.PredictedTaken ||
				(execResult.BranchTaken && execResult.BranchTarget != p.idex.PredictedTarget)
			if mispredicted {
				p.stats.BranchMispredictions++
				branchMispredicted = true
				if execResult.BranchTaken {
					branchTarget = execResult.BranchTarget
				} else {
					branchTarget = p.idex.PCPlus4
				}
			} else {
				p.stats.BranchCorrect++
			}
		}

		nextEXMEM = EXMEMRegister{
			Valid:       true,
			PCPlus4:     p.idex.PCPlus4,
			Control:     p.idex.Control,
			ALUResult:   execResult.ALUResult,
			StoreData:   rs2,
			BranchTaken: execResult.BranchTaken,
			RdIdx:       p.idex.RdIdx,
		}
	}

	// ID
	var nextIDEX IDEXRegister
	stallID := false
	insertBubbleEX := false

	if p.ifid.Valid {
		dec := p.decodeStage.Decode(p.ifid.InstructionWord)
		inst := dec.Inst
		if inst.Control.IsNop && inst.Diagnostic != "" {
			p.diagnostics = append(p.diagnostics, inst.Diagnostic)
		}

		switch p.config.DataHazardMode {
		case HazardStallOnly:
			if p.hazardUnit.DetectDataHazard(inst.Rs1, inst.Rs2, inst.Control.UsesRs1, inst.Control.UsesRs2, &p.idex, &savedEXMEM, &savedMEMWB) {
				stallID = true
				insertBubbleEX = true
			}
		case HazardForwarding:
			if p.hazardUnit.DetectLoadUseHazard(&p.idex, inst.Rs1, inst.Rs2, inst.Control.UsesRs1, inst.Control.UsesRs2) {
				stallID = true
				insertBubbleEX = true
			}
			if p.config.BranchStage == BranchInID && inst.Control.Branch {
				if p.hazardUnit.DetectALUUseHazard(&p.idex, inst.Rs1, inst.Rs2, inst.Control.UsesRs1, inst.Control.UsesRs2) {
					stallID = true
					insertBubbleEX = true
				}
			}
		}

		predictedTaken := p.ifid.PredictedTaken
		predictedTarget := p.ifid.PredictedTarget

		if !stallID {
			nextIDEX = IDEXRegister{
				Valid:           true,
				PC:              p.ifid.PC,
				PCPlus4:         p.ifid.PCPlus4,
				Control:         inst.Control,
				Rs1Data:         p.regFile.ReadReg(inst.Rs1),
				Rs2Data:         p.regFile.ReadReg(inst.Rs2),
				Imm:             inst.Imm,
				Rs1Idx:          inst.Rs1,
				Rs2Idx:          inst.Rs2,
				RdIdx:           inst.Rd,
				PredictedTaken:  predictedTaken,
				PredictedTarget: predictedTarget,
			}

			if inst.Control.Branch && p.config.BranchStage == BranchInID {
				decision := p.forwardingUnit.Decide(&nextIDEX, &savedEXMEM, &savedMEMWB)
				rs1 := p.forwardingUnit.Resolve(decision.Rs1, nextIDEX.Rs1Data, &savedEXMEM, &savedMEMWB)
				rs2 := p.forwardingUnit.Resolve(decision.Rs2, nextIDEX.Rs2Data, &savedEXMEM, &savedMEMWB)

				var actualTaken bool
				var actualTarget uint64
				switch inst.Control.BranchOp {
				case insts.BranchOpJAL:
					actualTaken = true
					actualTarget = uint64(int64(p.ifid.PC) + inst.Imm)
				case insts.BranchOpJALR:
					actualTaken = true
					actualTarget = (rs1 + uint64(inst.Imm)) &^ 1
				default:
					actualTaken = emu.EvaluateBranch(inst.Control.BranchOp, rs1, rs2)
					actualTarget = uint64(int64(p.ifid.PC) + inst.Imm)
				}

				p.stats.BranchPredictions++
				p.predictor.Update(p.ifid.PC, predictedTaken, actualTaken)
				p.btb.Update(p.ifid.PC, actualTarget)

				mispredicted := actualTaken != predictedTaken ||
					(actualTaken && actualTarget != predictedTarget)
				if mispredicted {
					p.stats.BranchMispredictions++
					branchMispredicted = true
					if actualTaken {
						branchTarget = actualTarget
					} else {
						branchTarget = p.ifid.PCPlus4
					}
				} else {
					p.stats.BranchCorrect++
				}
			}
		}
	}

	// IF
	var nextIFID IFIDRegister
	pastProgramEnd := p.programSize > 0 && p.pc >= p.programSize
	if !stallID && !pastProgramEnd {
		word, fault := p.fetchStage.Fetch(p.pc)
		if fault != nil {
			// Out-of-range fetch: emit a bubble and advance PC by 4 so the
			// pipeline keeps draining rather than re-fetching the same
			// faulting address forever.
			p.diagnostics = append(p.diagnostics, fault.Error())
			p.pc += 4
		} else {
			predictedTaken := p.predictor.Predict(p.pc)
			predictedTarget := p.pc + 4
			if predictedTaken {
				if target, ok := p.btb.Lookup(p.pc); ok {
					predictedTarget = target
				}
			}

			nextIFID = IFIDRegister{
				Valid:           true,
				PC:              p.pc,
				PCPlus4:         p.pc + 4,
				InstructionWord: word,
				PredictedTaken:  predictedTaken,
				PredictedTarget: predictedTarget,
			}

			if predictedTaken {
				p.pc = predictedTarget
			} else {
				p.pc += 4
			}
		}
	} else if stallID {
		nextIFID = p.ifid
		p.stats.Stalls++
	}
	// else: past the program end, IF emits a bubble and PC holds.

	if branchMispredicted {
		p.pc = branchTarget
		nextIFID.Clear()
		// BranchInEX resolves the branch one stage downstream of where it
		// was fetched, so nextIDEX holds the wrongly-fetched successor and
		// must bubble too. BranchInID resolves the branch in the same
		// latch being built as nextIDEX here, so clearing it would drop
		// the branch's own writeback (e.g. JAL's link register); only the
		// freshly fetched nextIFID was fetched on the bad prediction.
		if p.config.BranchStage == BranchInEX {
			nextIDEX.Clear()
		}
		p.stats.Flushes++
	}

	p.memwb = nextMEMWB
	p.exmem = nextEXMEM
	if insertBubbleEX {
		p.idex.Clear()
	} else {
		p.idex = nextIDEX
	}
	p.ifid = nextIFID
}

// Reset clears all pipeline state, as if freshly constructed.
func (p *Pipeline) Reset() {
	p.ifid.Clear()
	p.idex.Clear()
	p.exmem.Clear()
	p.memwb.Clear()
	p.pc = 0
	p.stats = Statistics{}
	p.halted = false
	p.exitCode = 0
	p.diagnostics = nil
	p.predictor.Reset()
	p.btb.Reset()
}
