package pipeline

import (
	"github.com/DWBH21/riscv-simulator-pipelined/emu"
	"github.com/DWBH21/riscv-simulator-pipelined/insts"
)

// FetchStage handles instruction fetch from memory.
type FetchStage struct {
	memory *emu.Memory
}

// NewFetchStage creates a new fetch stage.
func NewFetchStage(memory *emu.Memory) *FetchStage {
	return &FetchStage{memory: memory}
}

// Fetch reads the instruction word at pc. An out-of-range pc returns a
// fault instead of a word; the driver turns that into an IF/ID bubble.
func (s *FetchStage) Fetch(pc uint64) (uint32, error) {
	word, err := s.memory.ReadChecked(pc, 4)
	return uint32(word), err
}

// DecodeStage handles instruction decode and register read.
type DecodeStage struct {
	regFile *emu.RegFile
	decoder *insts.Decoder
}

// NewDecodeStage creates a new decode stage.
func NewDecodeStage(regFile *emu.RegFile) *DecodeStage {
	return &DecodeStage{
		regFile: regFile,
		decoder: insts.NewDecoder(),
	}
}

// DecodeResult holds the result of the decode stage.
type DecodeResult struct {
	Inst     *insts.Instruction
	Rs1Data  uint64
	Rs2Data  uint64
}

// Decode decodes word and reads the source register values.
func (s *DecodeStage) Decode(word uint32) DecodeResult {
	inst := s.decoder.Decode(word)
	return DecodeResult{
		Inst:    inst,
		Rs1Data: s.regFile.ReadReg(inst.Rs1),
		Rs2Data: s.regFile.ReadReg(inst.Rs2),
	}
}

// ExecuteStage performs the ALU operation or address calculation and
// resolves BRANCH_IN_EX outcomes.
type ExecuteStage struct{}

// NewExecuteStage creates a new execute stage.
func NewExecuteStage() *ExecuteStage {
	return &ExecuteStage{}
}

// ExecuteResult holds the result of the execute stage.
type ExecuteResult struct {
	ALUResult    uint64
	BranchTaken  bool
	BranchTarget uint64
}

// Execute runs the ALU for idex using the (possibly forwarded) operand
// values rs1Value/rs2Value, and for a branch/jump resolves the taken
// decision and target.
func (s *ExecuteStage) Execute(idex *IDEXRegister, rs1Value, rs2Value uint64) ExecuteResult {
	result := ExecuteResult{}
	ctrl := idex.Control

	aluA := rs1Value
	if ctrl.AluSrcA == insts.AluSrcAPC {
		aluA = idex.PC
	} else if ctrl.AluSrcA == insts.AluSrcAZero {
		aluA = 0
	}

	aluB := rs2Value
	if ctrl.AluSrcBImm {
		aluB = uint64(idex.Imm)
	}

	result.ALUResult = emu.Execute(ctrl.AluOp, aluA, aluB).Value

	if ctrl.Branch {
		switch ctrl.BranchOp {
		case insts.BranchOpJAL:
			result.BranchTaken = true
			result.BranchTarget = uint64(int64(idex.PC) + idex.Imm)
		case insts.BranchOpJALR:
			result.BranchTaken = true
			result.BranchTarget = (rs1Value + uint64(idex.Imm)) &^ 1
		default:
			result.BranchTaken = emu.EvaluateBranch(ctrl.BranchOp, rs1Value, rs2Value)
			result.BranchTarget = uint64(int64(idex.PC) + idex.Imm)
		}
	}

	return result
}

// MemoryStage handles memory load/store operations.
type MemoryStage struct {
	memory *emu.Memory
}

// NewMemoryStage creates a new memory stage.
func NewMemoryStage(memory *emu.Memory) *MemoryStage {
	return &MemoryStage{memory: memory}
}

// MemoryResult holds the result of the memory stage.
type MemoryResult struct {
	MemData uint64
	Fault   error
}

// Access performs the load or store the EX/MEM latch requests.
func (s *MemoryStage) Access(exmem *EXMEMRegister) MemoryResult {
	result := MemoryResult{}
	if !exmem.Valid {
		return result
	}
	ctrl := exmem.Control

	if ctrl.MemRead {
		value, err := emu.LoadValue(s.memory, ctrl.MemReadOp, exmem.ALUResult)
		result.MemData = value
		result.Fault = err
	} else if ctrl.MemWrite {
		result.Fault = emu.StoreValue(s.memory, ctrl.MemWriteOp, exmem.ALUResult, exmem.StoreData)
	}

	return result
}

// WritebackStage handles register file writeback.
type WritebackStage struct {
	regFile *emu.RegFile
}

// NewWritebackStage creates a new writeback stage.
func NewWritebackStage(regFile *emu.RegFile) *WritebackStage {
	return &WritebackStage{regFile: regFile}
}

// Writeback commits the MEM/WB latch's result to the register file.
func (s *WritebackStage) Writeback(memwb *MEMWBRegister) {
	if !memwb.Valid || !memwb.Control.RegWrite || memwb.RdIdx == 0 {
		return
	}
	s.regFile.WriteReg(memwb.RdIdx, memwb.WritebackValue())
}
