package emu

import "github.com/DWBH21/riscv-simulator-pipelined/insts"

// ALUResult is the pure output of an ALU evaluation: the 64-bit result
// plus whether a signed-overflow occurred on an add/sub. RV64I has no
// condition-flag register, so Overflow is carried only for diagnostics,
// never for control flow.
type ALUResult struct {
	Value    uint64
	Overflow bool
}

// Execute evaluates op against a and b and returns the result. It is a
// pure function: it reads no register file and sets no flags, so the EX
// stage, the single-stage datapath, and the hazard-free forwarding tests
// can all call it identically.
func Execute(op insts.AluOp, a, b uint64) ALUResult {
	switch op {
	case insts.AluAdd:
		result := a + b
		return ALUResult{Value: result, Overflow: addOverflows64(a, b, result)}
	case insts.AluSub:
		result := a - b
		return ALUResult{Value: result, Overflow: subOverflows64(a, b, result)}
	case insts.AluAnd:
		return ALUResult{Value: a & b}
	case insts.AluOr:
		return ALUResult{Value: a | b}
	case insts.AluXor:
		return ALUResult{Value: a ^ b}
	case insts.AluSll:
		return ALUResult{Value: a << (b & 0x3F)}
	case insts.AluSrl:
		return ALUResult{Value: a >> (b & 0x3F)}
	case insts.AluSra:
		return ALUResult{Value: uint64(int64(a) >> (b & 0x3F))}
	case insts.AluSlt:
		return ALUResult{Value: boolToWord(int64(a) < int64(b))}
	case insts.AluSltu:
		return ALUResult{Value: boolToWord(a < b)}
	case insts.AluMul:
		return ALUResult{Value: a * b}
	case insts.AluMulh:
		return ALUResult{Value: mulHighSigned(int64(a), int64(b))}
	case insts.AluMulhsu:
		return ALUResult{Value: mulHighSignedUnsigned(int64(a), b)}
	case insts.AluMulhu:
		return ALUResult{Value: mulHighUnsigned(a, b)}
	case insts.AluDiv:
		return ALUResult{Value: divSigned64(a, b)}
	case insts.AluDivu:
		return ALUResult{Value: divUnsigned64(a, b)}
	case insts.AluRem:
		return ALUResult{Value: remSigned64(a, b)}
	case insts.AluRemu:
		return ALUResult{Value: remUnsigned64(a, b)}

	case insts.AluAddw:
		return ALUResult{Value: signExtend32(uint32(a) + uint32(b))}
	case insts.AluSubw:
		return ALUResult{Value: signExtend32(uint32(a) - uint32(b))}
	case insts.AluSllw:
		return ALUResult{Value: signExtend32(uint32(a) << (uint32(b) & 0x1F))}
	case insts.AluSrlw:
		return ALUResult{Value: signExtend32(uint32(a) >> (uint32(b) & 0x1F))}
	case insts.AluSraw:
		return ALUResult{Value: uint64(int64(int32(a)) >> (uint32(b) & 0x1F))}
	case insts.AluMulw:
		return ALUResult{Value: signExtend32(uint32(a) * uint32(b))}
	case insts.AluDivw:
		return ALUResult{Value: divSignedW(a, b)}
	case insts.AluDivuw:
		return ALUResult{Value: divUnsignedW(a, b)}
	case insts.AluRemw:
		return ALUResult{Value: remSignedW(a, b)}
	case insts.AluRemuw:
		return ALUResult{Value: remUnsignedW(a, b)}

	default:
		return ALUResult{}
	}
}

func boolToWord(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func signExtend32(v uint32) uint64 {
	return uint64(int64(int32(v)))
}

// addOverflows64 reports signed overflow the way the teacher's
// setAddFlags64 did: overflow occurs when both operands share a sign and
// the result's sign differs from theirs.
func addOverflows64(a, b, result uint64) bool {
	aSign := a >> 63
	bSign := b >> 63
	rSign := result >> 63
	return aSign == bSign && aSign != rSign
}

// subOverflows64 mirrors the teacher's setSubFlags64 signed-overflow rule.
func subOverflows64(a, b, result uint64) bool {
	aSign := a >> 63
	bSign := b >> 63
	rSign := result >> 63
	return aSign != bSign && bSign == rSign
}

func mulHighSigned(a, b int64) uint64 {
	hi, _ := bits64Mul(uint64(a), uint64(b))
	// Correct for sign: subtract b if a<0, subtract a if b<0 (standard
	// signed*signed high-word correction over an unsigned 128-bit product).
	if a < 0 {
		hi -= uint64(b)
	}
	if b < 0 {
		hi -= uint64(a)
	}
	return hi
}

func mulHighSignedUnsigned(a int64, b uint64) uint64 {
	hi, _ := bits64Mul(uint64(a), b)
	if a < 0 {
		hi -= b
	}
	return hi
}

func mulHighUnsigned(a, b uint64) uint64 {
	hi, _ := bits64Mul(a, b)
	return hi
}

// bits64Mul returns the high and low 64 bits of the full 128-bit unsigned
// product of a and b.
func bits64Mul(a, b uint64) (hi, lo uint64) {
	const mask32 = 0xFFFFFFFF
	aLo, aHi := a&mask32, a>>32
	bLo, bHi := b&mask32, b>>32

	lo = aLo * bLo
	mid1 := aHi * bLo
	mid2 := aLo * bHi
	hi = aHi * bHi

	carry := (lo >> 32) + (mid1 & mask32) + (mid2 & mask32)
	lo = (lo & mask32) | (carry & mask32) << 32
	hi += (mid1 >> 32) + (mid2 >> 32) + (carry >> 32)
	return hi, lo
}

// divSigned64 implements RV64M's defined div-by-zero and overflow
// behavior: x/0 = -1, MinInt64/-1 = MinInt64 (no trap).
func divSigned64(a, b uint64) uint64 {
	if b == 0 {
		return ^uint64(0)
	}
	sa, sb := int64(a), int64(b)
	if sa == minInt64 && sb == -1 {
		return uint64(1) << 63
	}
	return uint64(sa / sb)
}

func divUnsigned64(a, b uint64) uint64 {
	if b == 0 {
		return ^uint64(0)
	}
	return a / b
}

func remSigned64(a, b uint64) uint64 {
	if b == 0 {
		return a
	}
	sa, sb := int64(a), int64(b)
	if sa == minInt64 && sb == -1 {
		return 0
	}
	return uint64(sa % sb)
}

func remUnsigned64(a, b uint64) uint64 {
	if b == 0 {
		return a
	}
	return a % b
}

const minInt64 = int64(-1) << 63
const minInt32 = int32(-1) << 31

func divSignedW(a, b uint64) uint64 {
	sb := int32(b)
	if sb == 0 {
		return ^uint64(0)
	}
	sa := int32(a)
	if sa == minInt32 && sb == -1 {
		return signExtend32(uint32(1) << 31)
	}
	return signExtend32(uint32(sa / sb))
}

func divUnsignedW(a, b uint64) uint64 {
	ub := uint32(b)
	if ub == 0 {
		return ^uint64(0)
	}
	return signExtend32(uint32(a) / ub)
}

func remSignedW(a, b uint64) uint64 {
	sb := int32(b)
	if sb == 0 {
		return signExtend32(uint32(int32(a)))
	}
	sa := int32(a)
	if sa == minInt32 && sb == -1 {
		return 0
	}
	return signExtend32(uint32(sa % sb))
}

func remUnsignedW(a, b uint64) uint64 {
	ub := uint32(b)
	if ub == 0 {
		return signExtend32(uint32(a))
	}
	return signExtend32(uint32(a) % ub)
}
