package insts

// AluOp identifies the operation the ALU performs.
type AluOp uint8

// ALU operations, including the RV64M multiply/divide/remainder family
// and the 32-bit "word" variants that operate on the low 32 bits of their
// operands and sign-extend the result to 64 bits.
const (
	AluNone AluOp = iota
	AluAdd
	AluSub
	AluAnd
	AluOr
	AluXor
	AluSll
	AluSrl
	AluSra
	AluSlt
	AluSltu
	AluMul
	AluMulh
	AluMulhsu
	AluMulhu
	AluDiv
	AluDivu
	AluRem
	AluRemu
	AluAddw
	AluSubw
	AluSllw
	AluSrlw
	AluSraw
	AluMulw
	AluDivw
	AluDivuw
	AluRemw
	AluRemuw
)

// AluSrcA selects the first ALU operand.
type AluSrcA uint8

const (
	// AluSrcARs1 feeds rs1_data into the ALU.
	AluSrcARs1 AluSrcA = iota
	// AluSrcAZero feeds the constant zero (used by LUI).
	AluSrcAZero
	// AluSrcAPC feeds the instruction's PC (used by AUIPC and JAL).
	AluSrcAPC
)

// MemAccessOp identifies the width and signedness of a memory access.
type MemAccessOp uint8

// Memory access widths, distinguishing signed and zero-extending loads.
const (
	MemNone MemAccessOp = iota
	MemByte
	MemHalf
	MemWord
	MemDouble
	MemByteU
	MemHalfU
	MemWordU
)

// BranchOp identifies the control-flow instruction family.
type BranchOp uint8

// Branch/jump kinds.
const (
	BranchOpNone BranchOp = iota
	BranchOpBEQ
	BranchOpBNE
	BranchOpBLT
	BranchOpBGE
	BranchOpBLTU
	BranchOpBGEU
	BranchOpJAL
	BranchOpJALR
)

// WBSrc selects the value written back to the register file.
type WBSrc uint8

const (
	WBNone WBSrc = iota
	WBAlu
	WBMem
	WBPCInc
)

// ControlSignals is produced by the decoder and copied unchanged through
// every latch until the stage that consumes it. Kept as one flat struct
// (rather than a tagged union) because every pipeline stage reads distinct
// fields from it.
type ControlSignals struct {
	AluOp      AluOp
	AluSrcA    AluSrcA
	AluSrcBImm bool // true selects the immediate, false selects rs2
	MemRead    bool
	MemWrite   bool
	MemReadOp  MemAccessOp
	MemWriteOp MemAccessOp
	Branch     bool
	BranchOp   BranchOp
	RegWrite   bool
	WBSrc      WBSrc
	IsNop      bool
	IsSyscall  bool
	IsCSR      bool

	// UsesRs1/UsesRs2 tell the hazard unit whether this instruction reads
	// the corresponding source register at all, since Rs1/Rs2 are always
	// populated with raw bitfield values even for formats (LUI, JAL) that
	// never read them.
	UsesRs1 bool
	UsesRs2 bool
}

// Instruction is the decoder's output: control signals plus the raw
// operand indices and the sign-extended immediate.
type Instruction struct {
	Word    uint32
	Control ControlSignals

	Rd  uint8
	Rs1 uint8
	Rs2 uint8

	// Imm is the sign-extended immediate, already shifted where the format
	// requires it (U-type is left-shifted by 12; J/B-type are the byte
	// offset, not the encoded multiple-of-2 field).
	Imm int64

	// Diagnostic is set when decoding fell back to a NOP because the word
	// was unrecognized or names a disabled extension.
	Diagnostic string
}

// opcode field values (bits [6:0]).
const (
	opLoad       = 0b0000011
	opFpLoad     = 0b0000111
	opOpImm      = 0b0010011
	opAuipc      = 0b0010111
	opOpImm32    = 0b0011011
	opStore      = 0b0100011
	opFpStore    = 0b0100111
	opAmo        = 0b0101111
	opOp         = 0b0110011
	opLui        = 0b0110111
	opOp32       = 0b0111011
	opMAdd       = 0b1000011
	opMSub       = 0b1000111
	opNMSub      = 0b1001011
	opNMAdd      = 0b1001111
	opOpFP       = 0b1010011
	opBranch     = 0b1100011
	opJalr       = 0b1100111
	opJal        = 0b1101111
	opSystem     = 0b1110011
)

// Decoder decodes RV64I/M instruction words. It carries no state and could
// be a package-level function; kept as a type to mirror the shape used by
// the rest of the codebase (fetch/decode stages hold one instance).
type Decoder struct{}

// NewDecoder creates a new instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// nopInstruction returns the canonical decoded-NOP bubble, optionally
// carrying a decode-anomaly diagnostic (spec.md §7 tier 2).
func nopInstruction(word uint32, diag string) *Instruction {
	return &Instruction{
		Word:       word,
		Control:    ControlSignals{IsNop: true},
		Diagnostic: diag,
	}
}

// isFPOpcode reports whether opcode belongs to the F/D floating-point
// extension family, which this core rejects unconditionally.
func isFPOpcode(opcode uint32) bool {
	switch opcode {
	case opFpLoad, opFpStore, opOpFP, opMAdd, opMSub, opNMSub, opNMAdd:
		return true
	default:
		return false
	}
}

// Decode decodes a 32-bit RV64I/M instruction word.
func (d *Decoder) Decode(word uint32) *Instruction {
	if word == 0x00000000 || word == 0x00000013 || word == 0x00000033 {
		return nopInstruction(word, "")
	}

	opcode := word & 0x7F
	rd := uint8((word >> 7) & 0x1F)
	funct3 := (word >> 12) & 0x7
	rs1 := uint8((word >> 15) & 0x1F)
	rs2 := uint8((word >> 20) & 0x1F)
	funct7 := (word >> 25) & 0x7F

	if isFPOpcode(opcode) {
		return nopInstruction(word, "rejected floating-point opcode")
	}

	switch opcode {
	case opOp:
		return decodeRType(word, rd, funct3, uint32(rs1), uint32(rs2), funct7, false)
	case opOp32:
		return decodeRType(word, rd, funct3, uint32(rs1), uint32(rs2), funct7, true)
	case opOpImm:
		return decodeOpImm(word, rd, funct3, uint32(rs1), false)
	case opOpImm32:
		return decodeOpImm(word, rd, funct3, uint32(rs1), true)
	case opLoad:
		return decodeLoad(word, rd, funct3, uint32(rs1))
	case opStore:
		return decodeStore(word, funct3, uint32(rs1), uint32(rs2))
	case opBranch:
		return decodeBranch(word, funct3, uint32(rs1), uint32(rs2))
	case opLui:
		return decodeLui(word, rd)
	case opAuipc:
		return decodeAuipc(word, rd)
	case opJal:
		return decodeJal(word, rd)
	case opJalr:
		return decodeJalr(word, rd, uint32(rs1))
	case opSystem:
		return decodeSystem(word, rd, funct3, uint32(rs1))
	case opAmo:
		return nopInstruction(word, "atomics extension not supported")
	default:
		return nopInstruction(word, "unknown opcode")
	}
}

func decodeRType(word uint32, rd uint8, funct3, rs1, rs2, funct7 uint32, is32 bool) *Instruction {
	op, ok := rTypeAluOp(funct3, funct7, is32)
	if !ok {
		return nopInstruction(word, "unrecognized R-type funct3/funct7 combination")
	}
	return &Instruction{
		Word: word,
		Control: ControlSignals{
			AluOp:    op,
			AluSrcA:  AluSrcARs1,
			RegWrite: rd != 0,
			WBSrc:    WBAlu,
			UsesRs1:  true,
			UsesRs2:  true,
		},
		Rd:  rd,
		Rs1: uint8(rs1),
		Rs2: uint8(rs2),
	}
}

// rTypeAluOp resolves the (funct3, funct7) pair for register-register
// arithmetic, including the RV64M multiply/divide/remainder family
// (funct7 == 0b0000001) and the "*w" 32-bit word variants (opOp32).
func rTypeAluOp(funct3, funct7 uint32, is32 bool) (AluOp, bool) {
	isMExt := funct7 == 0b0000001
	if isMExt {
		return mExtOp(funct3, is32)
	}
	if is32 {
		switch {
		case funct3 == 0x0 && funct7 == 0x00:
			return AluAddw, true
		case funct3 == 0x0 && funct7 == 0x20:
			return AluSubw, true
		case funct3 == 0x1 && funct7 == 0x00:
			return AluSllw, true
		case funct3 == 0x5 && funct7 == 0x00:
			return AluSrlw, true
		case funct3 == 0x5 && funct7 == 0x20:
			return AluSraw, true
		}
		return AluNone, false
	}
	switch {
	case funct3 == 0x0 && funct7 == 0x00:
		return AluAdd, true
	case funct3 == 0x0 && funct7 == 0x20:
		return AluSub, true
	case funct3 == 0x1 && funct7 == 0x00:
		return AluSll, true
	case funct3 == 0x2 && funct7 == 0x00:
		return AluSlt, true
	case funct3 == 0x3 && funct7 == 0x00:
		return AluSltu, true
	case funct3 == 0x4 && funct7 == 0x00:
		return AluXor, true
	case funct3 == 0x5 && funct7 == 0x00:
		return AluSrl, true
	case funct3 == 0x5 && funct7 == 0x20:
		return AluSra, true
	case funct3 == 0x6 && funct7 == 0x00:
		return AluOr, true
	case funct3 == 0x7 && funct7 == 0x00:
		return AluAnd, true
	}
	return AluNone, false
}

func mExtOp(funct3 uint32, is32 bool) (AluOp, bool) {
	if is32 {
		switch funct3 {
		case 0x0:
			return AluMulw, true
		case 0x4:
			return AluDivw, true
		case 0x5:
			return AluDivuw, true
		case 0x6:
			return AluRemw, true
		case 0x7:
			return AluRemuw, true
		}
		return AluNone, false
	}
	switch funct3 {
	case 0x0:
		return AluMul, true
	case 0x1:
		return AluMulh, true
	case 0x2:
		return AluMulhsu, true
	case 0x3:
		return AluMulhu, true
	case 0x4:
		return AluDiv, true
	case 0x5:
		return AluDivu, true
	case 0x6:
		return AluRem, true
	case 0x7:
		return AluRemu, true
	}
	return AluNone, false
}

func decodeOpImm(word uint32, rd uint8, funct3, rs1 uint32, is32 bool) *Instruction {
	imm := signExtendIType(word)
	shamtWidth := uint32(6)
	if is32 {
		shamtWidth = 5
	}
	funct7 := (word >> 25) & 0x7F

	var op AluOp
	switch {
	case is32 && funct3 == 0x0:
		op = AluAddw
	case is32 && funct3 == 0x1:
		op = AluSllw
	case is32 && funct3 == 0x5 && (funct7>>1) == 0x00:
		op = AluSrlw
	case is32 && funct3 == 0x5 && (funct7>>1) == 0x10:
		op = AluSraw
	case !is32 && funct3 == 0x0:
		op = AluAdd
	case !is32 && funct3 == 0x1:
		op = AluSll
	case !is32 && funct3 == 0x2:
		op = AluSlt
	case !is32 && funct3 == 0x3:
		op = AluSltu
	case !is32 && funct3 == 0x4:
		op = AluXor
	case !is32 && funct3 == 0x5 && (funct7>>1) == 0x00:
		op = AluSrl
	case !is32 && funct3 == 0x5 && (funct7>>1) == 0x10:
		op = AluSra
	case !is32 && funct3 == 0x6:
		op = AluOr
	case !is32 && funct3 == 0x7:
		op = AluAnd
	default:
		return nopInstruction(word, "unrecognized immediate-ALU funct3")
	}

	// Shift amount immediates are encoded in the low bits of the I-immediate.
	if op == AluSll || op == AluSrl || op == AluSra || op == AluSllw || op == AluSrlw || op == AluSraw {
		mask := int64((1 << shamtWidth) - 1)
		imm = imm & mask
	}

	return &Instruction{
		Word: word,
		Control: ControlSignals{
			AluOp:      op,
			AluSrcA:    AluSrcARs1,
			AluSrcBImm: true,
			RegWrite:   rd != 0,
			WBSrc:      WBAlu,
			UsesRs1:    true,
		},
		Rd:  rd,
		Rs1: uint8(rs1),
		Imm: imm,
	}
}

func decodeLoad(word uint32, rd uint8, funct3, rs1 uint32) *Instruction {
	var op MemAccessOp
	switch funct3 {
	case 0x0:
		op = MemByte
	case 0x1:
		op = MemHalf
	case 0x2:
		op = MemWord
	case 0x3:
		op = MemDouble
	case 0x4:
		op = MemByteU
	case 0x5:
		op = MemHalfU
	case 0x6:
		op = MemWordU
	default:
		return nopInstruction(word, "unrecognized load funct3")
	}
	return &Instruction{
		Word: word,
		Control: ControlSignals{
			AluOp:      AluAdd,
			AluSrcA:    AluSrcARs1,
			AluSrcBImm: true,
			MemRead:    true,
			MemReadOp:  op,
			RegWrite:   rd != 0,
			WBSrc:      WBMem,
			UsesRs1:    true,
		},
		Rd:  rd,
		Rs1: uint8(rs1),
		Imm: signExtendIType(word),
	}
}

func decodeStore(word uint32, funct3, rs1, rs2 uint32) *Instruction {
	var op MemAccessOp
	switch funct3 {
	case 0x0:
		op = MemByte
	case 0x1:
		op = MemHalf
	case 0x2:
		op = MemWord
	case 0x3:
		op = MemDouble
	default:
		return nopInstruction(word, "unrecognized store funct3")
	}
	return &Instruction{
		Word: word,
		Control: ControlSignals{
			AluOp:      AluAdd,
			AluSrcA:    AluSrcARs1,
			AluSrcBImm: true,
			MemWrite:   true,
			MemWriteOp: op,
			UsesRs1:    true,
			UsesRs2:    true,
		},
		Rs1: uint8(rs1),
		Rs2: uint8(rs2),
		Imm: signExtendSType(word),
	}
}

func decodeBranch(word uint32, funct3, rs1, rs2 uint32) *Instruction {
	var bop BranchOp
	var aluOp AluOp
	switch funct3 {
	case 0x0:
		bop, aluOp = BranchOpBEQ, AluSub
	case 0x1:
		bop, aluOp = BranchOpBNE, AluSub
	case 0x4:
		bop, aluOp = BranchOpBLT, AluSlt
	case 0x5:
		bop, aluOp = BranchOpBGE, AluSlt
	case 0x6:
		bop, aluOp = BranchOpBLTU, AluSltu
	case 0x7:
		bop, aluOp = BranchOpBGEU, AluSltu
	default:
		return nopInstruction(word, "unrecognized branch funct3")
	}
	return &Instruction{
		Word: word,
		Control: ControlSignals{
			AluOp:    aluOp,
			AluSrcA:  AluSrcARs1,
			Branch:   true,
			BranchOp: bop,
			UsesRs1:  true,
			UsesRs2:  true,
		},
		Rs1: uint8(rs1),
		Rs2: uint8(rs2),
		Imm: signExtendBType(word),
	}
}

func decodeLui(word uint32, rd uint8) *Instruction {
	return &Instruction{
		Word: word,
		Control: ControlSignals{
			AluOp:      AluAdd,
			AluSrcA:    AluSrcAZero,
			AluSrcBImm: true,
			RegWrite:   rd != 0,
			WBSrc:      WBAlu,
		},
		Rd:  rd,
		Imm: signExtendUType(word),
	}
}

func decodeAuipc(word uint32, rd uint8) *Instruction {
	return &Instruction{
		Word: word,
		Control: ControlSignals{
			AluOp:      AluAdd,
			AluSrcA:    AluSrcAPC,
			AluSrcBImm: true,
			RegWrite:   rd != 0,
			WBSrc:      WBAlu,
		},
		Rd:  rd,
		Imm: signExtendUType(word),
	}
}

func decodeJal(word uint32, rd uint8) *Instruction {
	return &Instruction{
		Word: word,
		Control: ControlSignals{
			AluOp:      AluAdd,
			AluSrcA:    AluSrcAPC,
			AluSrcBImm: true,
			Branch:     true,
			BranchOp:   BranchOpJAL,
			RegWrite:   rd != 0,
			WBSrc:      WBPCInc,
		},
		Rd:  rd,
		Imm: signExtendJType(word),
	}
}

func decodeJalr(word uint32, rd uint8, rs1 uint32) *Instruction {
	return &Instruction{
		Word: word,
		Control: ControlSignals{
			AluOp:      AluAdd,
			AluSrcA:    AluSrcARs1,
			AluSrcBImm: true,
			Branch:     true,
			BranchOp:   BranchOpJALR,
			RegWrite:   rd != 0,
			WBSrc:      WBPCInc,
			UsesRs1:    true,
		},
		Rd:  rd,
		Rs1: uint8(rs1),
		Imm: signExtendIType(word),
	}
}

func decodeSystem(word uint32, rd uint8, funct3, rs1 uint32) *Instruction {
	if funct3 == 0 {
		// ECALL/EBREAK (imm12 distinguishes them; both are treated as a
		// syscall sentinel the core does not execute, per spec.md §4.1).
		return &Instruction{
			Word:    word,
			Control: ControlSignals{IsSyscall: true},
		}
	}
	// CSR instructions (funct3 != 0): propagated but not executed.
	return &Instruction{
		Word:    word,
		Control: ControlSignals{IsCSR: true},
		Rd:      rd,
		Rs1:     uint8(rs1),
	}
}

func signExtendIType(word uint32) int64 {
	return int64(int32(word)) >> 20
}

func signExtendSType(word uint32) int64 {
	imm115 := (word >> 25) & 0x7F
	imm40 := (word >> 7) & 0x1F
	imm := (imm115 << 5) | imm40
	return int64(int32(imm<<20)) >> 20
}

func signExtendBType(word uint32) int64 {
	imm12 := (word >> 31) & 0x1
	imm105 := (word >> 25) & 0x3F
	imm41 := (word >> 8) & 0xF
	imm11 := (word >> 7) & 0x1
	imm := (imm12 << 12) | (imm11 << 11) | (imm105 << 5) | (imm41 << 1)
	return int64(int32(imm<<19)) >> 19
}

func signExtendUType(word uint32) int64 {
	return int64(int32(word & 0xFFFFF000))
}

func signExtendJType(word uint32) int64 {
	imm20 := (word >> 31) & 0x1
	imm101 := (word >> 21) & 0x3FF
	imm11 := (word >> 20) & 0x1
	imm1912 := (word >> 12) & 0xFF
	imm := (imm20 << 20) | (imm1912 << 12) | (imm11 << 11) | (imm101 << 1)
	return int64(int32(imm<<11)) >> 11
}
