package emu

import "github.com/DWBH21/riscv-simulator-pipelined/insts"

// LoadValue reads the width/sign specified by op from addr and returns the
// 64-bit value the register file would hold — sign-extended for BYTE/
// HALF/WORD, zero-extended for the *_U variants, and returned verbatim for
// DOUBLE. Out-of-range accesses are reported rather than silently zeroed,
// matching the MEM-stage fault path the pipeline driver substitutes a
// bubble for.
func LoadValue(mem *Memory, op insts.MemAccessOp, addr uint64) (uint64, error) {
	switch op {
	case insts.MemByte:
		v, err := mem.ReadChecked(addr, 1)
		return uint64(int64(int8(uint8(v)))), err
	case insts.MemByteU:
		v, err := mem.ReadChecked(addr, 1)
		return v, err
	case insts.MemHalf:
		v, err := mem.ReadChecked(addr, 2)
		return uint64(int64(int16(uint16(v)))), err
	case insts.MemHalfU:
		v, err := mem.ReadChecked(addr, 2)
		return v, err
	case insts.MemWord:
		v, err := mem.ReadChecked(addr, 4)
		return uint64(int64(int32(uint32(v)))), err
	case insts.MemWordU:
		v, err := mem.ReadChecked(addr, 4)
		return v, err
	case insts.MemDouble:
		return mem.ReadChecked(addr, 8)
	default:
		return 0, nil
	}
}

// StoreValue writes the low width bytes of value to addr per op.
func StoreValue(mem *Memory, op insts.MemAccessOp, addr uint64, value uint64) error {
	switch op {
	case insts.MemByte:
		return mem.WriteChecked(addr, 1, value)
	case insts.MemHalf:
		return mem.WriteChecked(addr, 2, value)
	case insts.MemWord:
		return mem.WriteChecked(addr, 4, value)
	case insts.MemDouble:
		return mem.WriteChecked(addr, 8, value)
	default:
		return nil
	}
}
