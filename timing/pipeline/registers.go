// Package pipeline implements the 5-stage (IF/ID/EX/MEM/WB) RV64I/M
// pipeline driver: the four inter-stage latches, the hazard and
// forwarding units, the branch predictor/BTB variants, and the Tick loop
// that ties them together.
package pipeline

import "github.com/DWBH21/riscv-simulator-pipelined/insts"

// IFIDRegister holds the state carried from Fetch into Decode.
type IFIDRegister struct {
	Valid bool

	PC              uint64
	PCPlus4         uint64
	InstructionWord uint32

	PredictedTaken  bool
	PredictedTarget uint64
}

// Clear resets the IF/ID register to a bubble.
func (r *IFIDRegister) Clear() {
	*r = IFIDRegister{}
}

// IDEXRegister holds the state carried from Decode into Execute.
type IDEXRegister struct {
	Valid bool

	PC      uint64
	PCPlus4 uint64

	Control insts.ControlSignals

	Rs1Data uint64
	Rs2Data uint64
	Imm     int64

	Rs1Idx uint8
	Rs2Idx uint8
	RdIdx  uint8

	PredictedTaken  bool
	PredictedTarget uint64
}

// Clear resets the ID/EX register to a bubble.
func (r *IDEXRegister) Clear() {
	*r = IDEXRegister{}
}

// EXMEMRegister holds the state carried from Execute into Memory.
type EXMEMRegister struct {
	Valid bool

	PCPlus4 uint64

	Control insts.ControlSignals

	ALUResult  uint64
	StoreData  uint64
	BranchTaken bool
	RdIdx      uint8
}

// Clear resets the EX/MEM register to a bubble.
func (r *EXMEMRegister) Clear() {
	*r = EXMEMRegister{}
}

// ForwardableValue returns the value the forwarding unit should hand to a
// dependent instruction in EX: the ALU result for every wb_src except
// PC_INC (JAL/JALR), where the architectural writeback is PC+4, not the
// ALU's own JAL/JALR target computation.
func (r *EXMEMRegister) ForwardableValue() uint64 {
	if r.Control.WBSrc == insts.WBPCInc {
		return r.PCPlus4
	}
	return r.ALUResult
}

// MEMWBRegister holds the state carried from Memory into Writeback.
type MEMWBRegister struct {
	Valid bool

	PCPlus4 uint64

	Control insts.ControlSignals

	MemoryData uint64
	ALUResult  uint64
	RdIdx      uint8
}

// Clear resets the MEM/WB register to a bubble.
func (r *MEMWBRegister) Clear() {
	*r = MEMWBRegister{}
}

// WritebackValue returns the value this latch will commit to the register
// file, resolving WBSrc the same way the WB stage does. Used both by the
// WB stage itself and by the forwarding unit, which must forward the
// final committed value rather than a raw latch field.
func (r *MEMWBRegister) WritebackValue() uint64 {
	switch r.Control.WBSrc {
	case insts.WBMem:
		return r.MemoryData
	case insts.WBPCInc:
		return r.PCPlus4
	default:
		return r.ALUResult
	}
}
