package pipeline

// ForwardSource identifies where a forwarded operand value comes from.
type ForwardSource int

const (
	// ForwardNone means no forwarding applies; use the register file value.
	ForwardNone ForwardSource = iota
	// ForwardFromEXMEM forwards from the EX/MEM latch (one cycle ahead).
	ForwardFromEXMEM
	// ForwardFromMEMWB forwards from the MEM/WB latch (two cycles ahead).
	ForwardFromMEMWB
)

// ForwardingDecision carries the forwarding source for each ID/EX operand.
type ForwardingDecision struct {
	Rs1 ForwardSource
	Rs2 ForwardSource
}

// ForwardingUnit resolves RAW hazards by routing EX/MEM or MEM/WB results
// back into the EX stage instead of stalling for them.
type ForwardingUnit struct{}

// NewForwardingUnit creates a forwarding unit.
func NewForwardingUnit() *ForwardingUnit {
	return &ForwardingUnit{}
}

// Decide computes the forwarding source for both ID/EX source operands.
// EX/MEM takes priority over MEM/WB because it holds the more recently
// produced value; a load still sitting in EX/MEM cannot be forwarded from
// there because MEM hasn't executed yet — that case is a load-use hazard
// the hazard unit stalls for instead.
func (f *ForwardingUnit) Decide(idex *IDEXRegister, exmem *EXMEMRegister, memwb *MEMWBRegister) ForwardingDecision {
	return ForwardingDecision{
		Rs1: f.sourceFor(idex.Rs1Idx, exmem, memwb),
		Rs2: f.sourceFor(idex.Rs2Idx, exmem, memwb),
	}
}

func (f *ForwardingUnit) sourceFor(reg uint8, exmem *EXMEMRegister, memwb *MEMWBRegister) ForwardSource {
	if reg == 0 {
		return ForwardNone
	}
	if exmem.Valid && exmem.Control.RegWrite && exmem.RdIdx == reg && !exmem.Control.MemRead {
		return ForwardFromEXMEM
	}
	if memwb.Valid && memwb.Control.RegWrite && memwb.RdIdx == reg {
		return ForwardFromMEMWB
	}
	return ForwardNone
}

// Resolve returns the operand value to use for reg, given a forwarding
// decision and the raw register-file value read in ID.
func (f *ForwardingUnit) Resolve(src ForwardSource, registerValue uint64, exmem *EXMEMRegister, memwb *MEMWBRegister) uint64 {
	switch src {
	case ForwardFromEXMEM:
		return exmem.ForwardableValue()
	case ForwardFromMEMWB:
		return memwb.WritebackValue()
	default:
		return registerValue
	}
}
