package emu

import "github.com/DWBH21/riscv-simulator-pipelined/insts"

// EvaluateBranch is the pure RV64I branch-condition evaluator: a direct
// register comparison, not a flag-register lookup, since RV64I branches
// (BEQ/BNE/BLT/BGE/BLTU/BGEU) compare their two operands outright. JAL and
// JALR are unconditional and always resolve taken.
func EvaluateBranch(op insts.BranchOp, rs1, rs2 uint64) bool {
	switch op {
	case insts.BranchOpBEQ:
		return rs1 == rs2
	case insts.BranchOpBNE:
		return rs1 != rs2
	case insts.BranchOpBLT:
		return int64(rs1) < int64(rs2)
	case insts.BranchOpBGE:
		return int64(rs1) >= int64(rs2)
	case insts.BranchOpBLTU:
		return rs1 < rs2
	case insts.BranchOpBGEU:
		return rs1 >= rs2
	case insts.BranchOpJAL, insts.BranchOpJALR:
		return true
	default:
		return false
	}
}
