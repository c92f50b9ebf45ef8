package pipeline

// StallResult carries the stall/flush control signals a hazard check
// produces for the current cycle.
type StallResult struct {
	StallIF       bool
	StallID       bool
	InsertBubbleEX bool
	FlushIF       bool
	FlushID       bool
}

// HazardUnit detects data and control hazards and decides how the
// pipeline driver should respond: stall, forward, or flush.
type HazardUnit struct{}

// NewHazardUnit creates a hazard detection unit.
func NewHazardUnit() *HazardUnit {
	return &HazardUnit{}
}

// DetectDataHazard is the STALL_ONLY policy's RAW check: any register the
// decoded instruction reads that is still in flight in ID/EX or EX/MEM
// forces a stall, since no forwarding network exists to supply the value
// early. A producer sitting in MEM/WB is not a hazard: Tick runs writeback
// before decode every cycle, so its result is already in the register file
// by the time this check runs.
func (h *HazardUnit) DetectDataHazard(rs1, rs2 uint8, usesRs1, usesRs2 bool, idex *IDEXRegister, exmem *EXMEMRegister, memwb *MEMWBRegister) bool {
	inFlightWrites := func(reg uint8) bool {
		if reg == 0 {
			return false
		}
		if idex.Valid && idex.Control.RegWrite && idex.RdIdx == reg {
			return true
		}
		if exmem.Valid && exmem.Control.RegWrite && exmem.RdIdx == reg {
			return true
		}
		return false
	}
	if usesRs1 && inFlightWrites(rs1) {
		return true
	}
	if usesRs2 && inFlightWrites(rs2) {
		return true
	}
	return false
}

// DetectLoadUseHazard is the FORWARDING policy's narrower check: only a
// load sitting in ID/EX whose destination is read by the instruction now
// in ID needs a stall — every other RAW dependency is resolved by
// forwarding instead.
func (h *HazardUnit) DetectLoadUseHazard(idex *IDEXRegister, nextRs1, nextRs2 uint8, usesRs1, usesRs2 bool) bool {
	if !idex.Valid || !idex.Control.MemRead {
		return false
	}
	if idex.RdIdx == 0 {
		return false
	}
	if usesRs1 && idex.RdIdx == nextRs1 {
		return true
	}
	if usesRs2 && idex.RdIdx == nextRs2 {
		return true
	}
	return false
}

// DetectALUUseHazard extends the load-use check for BRANCH_IN_ID: a
// branch resolved in ID also needs its operands ready before decode
// completes, so an ALU result still sitting in ID/EX (not just a load)
// forces a stall too.
func (h *HazardUnit) DetectALUUseHazard(idex *IDEXRegister, nextRs1, nextRs2 uint8, usesRs1, usesRs2 bool) bool {
	if !idex.Valid || !idex.Control.RegWrite || idex.Control.MemRead {
		return false
	}
	if idex.RdIdx == 0 {
		return false
	}
	if usesRs1 && idex.RdIdx == nextRs1 {
		return true
	}
	if usesRs2 && idex.RdIdx == nextRs2 {
		return true
	}
	return false
}

// ComputeStalls turns hazard booleans into stage-level control signals.
// Pipeline.Tick does not call it; Tick makes the same stall and flush
// decisions inline.
func (h *HazardUnit) ComputeStalls(dataHazard, branchMispredicted bool) StallResult {
	result := StallResult{}
	if dataHazard {
		result.StallIF = true
		result.StallID = true
		result.InsertBubbleEX = true
	}
	if branchMispredicted {
		result.FlushIF = true
		result.FlushID = true
	}
	return result
}
