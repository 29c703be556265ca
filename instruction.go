// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jvm

import "fmt"

// Opcode is a JVM instruction opcode byte.
type Opcode uint8

// The supported opcode subset.
const (
	OpNop           Opcode = 0
	OpAConstNull    Opcode = 1
	OpIConstM1      Opcode = 2
	OpIConst0       Opcode = 3
	OpIConst1       Opcode = 4
	OpIConst2       Opcode = 5
	OpIConst3       Opcode = 6
	OpIConst4       Opcode = 7
	OpIConst5       Opcode = 8
	OpLConst0       Opcode = 9
	OpLConst1       Opcode = 10
	OpFConst0       Opcode = 11
	OpFConst1       Opcode = 12
	OpFConst2       Opcode = 13
	OpBipush        Opcode = 16
	OpSipush        Opcode = 17
	OpLdc           Opcode = 18
	OpLdc2W         Opcode = 20
	OpILoad         Opcode = 21
	OpILoad0        Opcode = 26
	OpILoad1        Opcode = 27
	OpILoad2        Opcode = 28
	OpILoad3        Opcode = 29
	OpLLoad0        Opcode = 30
	OpLLoad1        Opcode = 31
	OpLLoad2        Opcode = 32
	OpLLoad3        Opcode = 33
	OpALoad0        Opcode = 42
	OpALoad1        Opcode = 43
	OpALoad2        Opcode = 44
	OpALoad3        Opcode = 45
	OpIStore        Opcode = 54
	OpIStore0       Opcode = 59
	OpIStore1       Opcode = 60
	OpIStore2       Opcode = 61
	OpIStore3       Opcode = 62
	OpPop           Opcode = 87
	OpDup           Opcode = 89
	OpIAdd          Opcode = 96
	OpLAdd          Opcode = 97
	OpIfACmpNe      Opcode = 166
	OpGoto          Opcode = 167
	OpIReturn       Opcode = 172
	OpLReturn       Opcode = 173
	OpFReturn       Opcode = 174
	OpDReturn       Opcode = 175
	OpAReturn       Opcode = 176
	OpReturn        Opcode = 177
	OpInvokeSpecial Opcode = 183
	OpInvokeStatic  Opcode = 184
)

var opcodeNameMap = map[Opcode]string{
	OpNop:           "nop",
	OpAConstNull:    "aconst_null",
	OpIConstM1:      "iconst_m1",
	OpIConst0:       "iconst_0",
	OpIConst1:       "iconst_1",
	OpIConst2:       "iconst_2",
	OpIConst3:       "iconst_3",
	OpIConst4:       "iconst_4",
	OpIConst5:       "iconst_5",
	OpLConst0:       "lconst_0",
	OpLConst1:       "lconst_1",
	OpFConst0:       "fconst_0",
	OpFConst1:       "fconst_1",
	OpFConst2:       "fconst_2",
	OpBipush:        "bipush",
	OpSipush:        "sipush",
	OpLdc:           "ldc",
	OpLdc2W:         "ldc2_w",
	OpILoad:         "iload",
	OpILoad0:        "iload_0",
	OpILoad1:        "iload_1",
	OpILoad2:        "iload_2",
	OpILoad3:        "iload_3",
	OpLLoad0:        "lload_0",
	OpLLoad1:        "lload_1",
	OpLLoad2:        "lload_2",
	OpLLoad3:        "lload_3",
	OpALoad0:        "aload_0",
	OpALoad1:        "aload_1",
	OpALoad2:        "aload_2",
	OpALoad3:        "aload_3",
	OpIStore:        "istore",
	OpIStore0:       "istore_0",
	OpIStore1:       "istore_1",
	OpIStore2:       "istore_2",
	OpIStore3:       "istore_3",
	OpPop:           "pop",
	OpDup:           "dup",
	OpIAdd:          "iadd",
	OpLAdd:          "ladd",
	OpIfACmpNe:      "if_acmpne",
	OpGoto:          "goto",
	OpIReturn:       "ireturn",
	OpLReturn:       "lreturn",
	OpFReturn:       "freturn",
	OpDReturn:       "dreturn",
	OpAReturn:       "areturn",
	OpReturn:        "return",
	OpInvokeSpecial: "invokespecial",
	OpInvokeStatic:  "invokestatic",
}

// String returns the JVM mnemonic for the opcode.
func (op Opcode) String() string {
	if name, ok := opcodeNameMap[op]; ok {
		return name
	}
	return fmt.Sprintf("op_0x%02x", uint8(op))
}

// Known reports whether the opcode is in the supported set.
func (op Opcode) Known() bool {
	_, ok := opcodeNameMap[op]
	return ok
}

// Width returns the total byte footprint of the instruction, the opcode
// byte plus its inline operands.
func (op Opcode) Width() int {
	switch op {
	case OpBipush, OpLdc, OpILoad, OpIStore:
		// One operand byte.
		return 2
	case OpSipush, OpLdc2W, OpIfACmpNe, OpGoto, OpInvokeSpecial, OpInvokeStatic:
		// Two operand bytes.
		return 3
	default:
		return 1
	}
}

// Instruction is one decoded opcode together with its operand bytes and the
// byte offset where it starts inside its code block. Branch offsets are
// relative to that offset.
type Instruction struct {
	Op       Opcode `json:"op"`
	Operands []byte `json:"operands,omitempty"`
	Offset   int    `json:"offset"`
}

// String stringifies the instruction for traces and disassembly.
func (in Instruction) String() string {
	switch len(in.Operands) {
	case 1:
		return fmt.Sprintf("%s %d", in.Op, in.Operands[0])
	case 2:
		return fmt.Sprintf("%s %d", in.Op,
			uint16(in.Operands[0])<<8|uint16(in.Operands[1]))
	default:
		return in.Op.String()
	}
}

// U1 returns the single-byte operand.
func (in Instruction) U1() uint8 {
	return in.Operands[0]
}

// U2 returns the two-byte big-endian operand.
func (in Instruction) U2() uint16 {
	return uint16(in.Operands[0])<<8 | uint16(in.Operands[1])
}

// S2 returns the two-byte operand as a signed branch offset.
func (in Instruction) S2() int16 {
	return int16(in.U2())
}

// decodeInstructions decodes a code block into its instruction sequence.
// The sum of instruction widths always equals the block length; an opcode
// whose operands would overrun the block is a decode error, as is any opcode
// outside the supported set.
func decodeInstructions(code []byte) ([]Instruction, error) {
	var instrs []Instruction
	for offset := 0; offset < len(code); {
		op := Opcode(code[offset])
		if !op.Known() {
			return nil, fmt.Errorf("%w: 0x%02x at offset %d",
				ErrUnknownOpcode, uint8(op), offset)
		}

		width := op.Width()
		if offset+width > len(code) {
			return nil, fmt.Errorf("%w: %s at offset %d",
				ErrTruncatedCode, op, offset)
		}

		instrs = append(instrs, Instruction{
			Op:       op,
			Operands: code[offset+1 : offset+width],
			Offset:   offset,
		})
		offset += width
	}
	return instrs, nil
}
