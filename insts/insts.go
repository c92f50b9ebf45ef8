// Package insts provides RV64I/M instruction definitions and decoding.
//
// This package decodes RV64I integer instructions plus the M-extension
// arithmetic (multiply/divide/remainder, including the 32-bit "word"
// variants) into a structured Instruction carrying the ControlSignals the
// pipeline and the single-stage reference both consume. Floating-point
// opcodes are recognized only well enough to be rejected as unsupported.
//
// Usage:
//
//	dec := insts.NewDecoder()
//	inst := dec.Decode(0x00A00093) // addi x1, x0, 10
//	fmt.Printf("op=%v rd=%d imm=%d\n", inst.Control.AluOp, inst.Rd, inst.Imm)
package insts
