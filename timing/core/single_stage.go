// Package core provides the single-stage reference datapath: one
// instruction fully fetched, decoded, executed, memory-accessed, and
// written back every Tick. It exists as the ground-truth oracle the
// pipeline's architectural state is checked against — same decoder, same
// ALU, same memory, no latches.
package core

import (
	"fmt"
	"io"
	"os"

	"github.com/DWBH21/riscv-simulator-pipelined/emu"
	"github.com/DWBH21/riscv-simulator-pipelined/insts"
)

// Fault describes a runtime fault recovered from during a tick (spec.md
// §7 tier 3): an out-of-range fetch or memory access.
type Fault struct {
	Cycle   uint64
	PC      uint64
	Message string
}

// Stats holds performance counters for the single-stage core.
type Stats struct {
	Cycles   uint64
	Retired  uint64
}

// SingleStage executes RV64I/M programs one instruction per Tick, sharing
// insts.Decoder, emu.RegFile, and emu.Memory with the pipeline so the two
// engines can be run side by side over the same program.
type SingleStage struct {
	regFile        *emu.RegFile
	memory         *emu.Memory
	decoder        *insts.Decoder
	syscallHandler emu.SyscallHandler

	pc       uint64
	cycles   uint64
	retired  uint64
	halted   bool
	exitCode int64

	stdout io.Writer
	stderr io.Writer

	faults      []Fault
	diagnostics []string
}

// Option configures a SingleStage at construction time.
type Option func(*SingleStage)

// WithStdout overrides the syscall handler's stdout writer.
func WithStdout(w io.Writer) Option {
	return func(s *SingleStage) { s.stdout = w }
}

// WithStderr overrides the syscall handler's stderr writer.
func WithStderr(w io.Writer) Option {
	return func(s *SingleStage) { s.stderr = w }
}

// WithSyscallHandler overrides the default syscall handler.
func WithSyscallHandler(h emu.SyscallHandler) Option {
	return func(s *SingleStage) { s.syscallHandler = h }
}

// NewSingleStage creates a single-stage datapath over the given register
// file and memory, starting fetch at pc.
func NewSingleStage(regFile *emu.RegFile, memory *emu.Memory, pc uint64, opts ...Option) *SingleStage {
	s := &SingleStage{
		regFile: regFile,
		memory:  memory,
		decoder: insts.NewDecoder(),
		pc:      pc,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.syscallHandler == nil {
		s.syscallHandler = emu.NewDefaultSyscallHandler(regFile, memory, s.stdout, s.stderr)
	}
	return s
}

// PC returns the current program counter.
func (s *SingleStage) PC() uint64 { return s.pc }

// Halted reports whether the core has stopped (exit syscall executed).
func (s *SingleStage) Halted() bool { return s.halted }

// ExitCode returns the exit status recorded when Halted is true.
func (s *SingleStage) ExitCode() int64 { return s.exitCode }

// Stats returns the core's cycle and retirement counters.
func (s *SingleStage) Stats() Stats {
	return Stats{Cycles: s.cycles, Retired: s.retired}
}

// Faults returns every recovered runtime fault seen so far.
func (s *SingleStage) Faults() []Fault { return s.faults }

// Diagnostics returns every decode-anomaly message seen so far.
func (s *SingleStage) Diagnostics() []string { return s.diagnostics }

// Tick executes exactly one instruction. It is a no-op once Halted.
func (s *SingleStage) Tick() {
	if s.halted {
		return
	}
	s.cycles++

	word, err := s.memory.ReadChecked(s.pc, 4)
	if err != nil {
		s.faults = append(s.faults, Fault{Cycle: s.cycles, PC: s.pc, Message: err.Error()})
		s.pc += 4
		return
	}

	inst := s.decoder.Decode(uint32(word))
	if inst.Diagnostic != "" {
		s.diagnostics = append(s.diagnostics, fmt.Sprintf("cycle %d pc=0x%x: %s", s.cycles, s.pc, inst.Diagnostic))
	}

	s.execute(inst)
	s.retired++
}

// Run ticks until the program halts or a maximum instruction budget is
// reached (0 means unbounded).
func (s *SingleStage) Run(maxInstructions uint64) int64 {
	for !s.halted {
		if maxInstructions > 0 && s.retired >= maxInstructions {
			break
		}
		s.Tick()
	}
	return s.exitCode
}

func (s *SingleStage) execute(inst *insts.Instruction) {
	ctrl := inst.Control

	if ctrl.IsSyscall {
		result := s.syscallHandler.Handle()
		if result.Exited {
			s.halted = true
			s.exitCode = result.ExitCode
		}
		s.pc += 4
		return
	}

	if ctrl.IsNop || ctrl.IsCSR {
		s.pc += 4
		return
	}

	rs1Data := s.regFile.ReadReg(inst.Rs1)
	rs2Data := s.regFile.ReadReg(inst.Rs2)

	var aluA uint64
	switch ctrl.AluSrcA {
	case insts.AluSrcAZero:
		aluA = 0
	case insts.AluSrcAPC:
		aluA = s.pc
	default:
		aluA = rs1Data
	}

	aluB := rs2Data
	if ctrl.AluSrcBImm {
		aluB = uint64(inst.Imm)
	}

	aluResult := emu.Execute(ctrl.AluOp, aluA, aluB)

	nextPC := s.pc + 4

	if ctrl.Branch {
		var taken bool
		var target uint64
		switch ctrl.BranchOp {
		case insts.BranchOpJAL:
			taken = true
			target = s.pc + uint64(inst.Imm)
		case insts.BranchOpJALR:
			taken = true
			target = (rs1Data + uint64(inst.Imm)) &^ 1
		default:
			taken = emu.EvaluateBranch(ctrl.BranchOp, rs1Data, rs2Data)
			target = s.pc + uint64(inst.Imm)
		}
		if taken {
			nextPC = target
		}
	}

	if ctrl.MemWrite {
		addr := aluResult.Value
		if err := emu.StoreValue(s.memory, ctrl.MemWriteOp, addr, rs2Data); err != nil {
			s.faults = append(s.faults, Fault{Cycle: s.cycles, PC: s.pc, Message: err.Error()})
		}
	}

	var memData uint64
	if ctrl.MemRead {
		addr := aluResult.Value
		v, err := emu.LoadValue(s.memory, ctrl.MemReadOp, addr)
		if err != nil {
			s.faults = append(s.faults, Fault{Cycle: s.cycles, PC: s.pc, Message: err.Error()})
		}
		memData = v
	}

	if ctrl.RegWrite {
		var wbValue uint64
		switch ctrl.WBSrc {
		case insts.WBMem:
			wbValue = memData
		case insts.WBPCInc:
			wbValue = s.pc + 4
		default:
			wbValue = aluResult.Value
		}
		s.regFile.WriteReg(inst.Rd, wbValue)
	}

	s.pc = nextPC
}
