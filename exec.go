// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jvm

import (
	"errors"
	"fmt"
)

// ErrBadJumpTarget is returned when a branch lands between instruction
// starts.
var ErrBadJumpTarget = errors.New("branch target is not an instruction start")

// Classpath resolves a class name to a loaded class. The engine depends on
// this rather than on a class registry so a multi-class classpath can slot
// in later; today the only implementation holds the executing class alone.
type Classpath interface {
	Lookup(name string) (*File, error)
}

type singleClasspath struct {
	cf *File
}

func (s singleClasspath) Lookup(name string) (*File, error) {
	if name == s.cf.ThisName {
		return s.cf, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrClassNotFound, name)
}

// NewFrame builds a frame for the first method of the given name that
// carries code. The argument values become locals 0 onward; the operand
// stack starts empty and the instruction pointer at offset 0.
func (cf *File) NewFrame(methodName string, args []Value) (*Frame, error) {
	_, code, err := cf.FindMethod(methodName)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", cf.ThisName, methodName, err)
	}

	locals := make([]Value, len(args))
	copy(locals, args)

	return &Frame{
		Locals:     locals,
		Stack:      []Value{},
		IP:         0,
		code:       code,
		class:      cf,
		methodName: methodName,
	}, nil
}

// Run executes the class: the <clinit> initializer first when the class has
// one, its result discarded, then main with no arguments. It returns main's
// result.
func (cf *File) Run() (Value, error) {
	if cf.HasMethod(MethodClassInit) {
		frame, err := cf.NewFrame(MethodClassInit, nil)
		if err != nil {
			return Value{}, err
		}
		if _, err := frame.Exec(); err != nil {
			return Value{}, err
		}
	}

	frame, err := cf.NewFrame(MethodMain, nil)
	if err != nil {
		return Value{}, err
	}
	return frame.Exec()
}

// Exec interprets the frame's code until a return instruction, a fault, or
// the end of the code block. Running off the end without a return yields
// Void; real programs end in a return and the tolerance costs nothing.
func (f *Frame) Exec() (Value, error) {
	f.class.logger.Debugf("executing method %s", f.methodName)

	codeLength := int(f.code.CodeLength)
	for f.IP < codeLength {
		in, ok := f.code.InstructionAt(f.IP)
		if !ok {
			return Value{}, fmt.Errorf("%w: offset %d in %s",
				ErrBadJumpTarget, f.IP, f.methodName)
		}

		done, result, jumped, err := f.step(in)
		if err != nil {
			f.class.logger.Errorf("aborting %s at offset %d: %v",
				f.methodName, f.IP, err)
			return Value{}, err
		}
		if f.class.opts.Trace {
			f.class.logger.Debugf("%s", f.trace(in))
		}
		if done {
			return result, nil
		}
		if !jumped {
			f.IP += in.Op.Width()
		}
	}
	return VoidValue(), nil
}

// step executes one instruction. It reports whether the frame returned,
// the returned value, and whether the handler assigned the instruction
// pointer itself.
func (f *Frame) step(in *Instruction) (bool, Value, bool, error) {
	switch in.Op {
	case OpNop:

	case OpAConstNull:
		f.push(NullValue())

	case OpIConstM1, OpIConst0, OpIConst1, OpIConst2, OpIConst3, OpIConst4,
		OpIConst5:
		f.push(IntegerValue(int32(in.Op) - int32(OpIConst0)))

	case OpLConst0, OpLConst1:
		f.push(LongValue(int64(in.Op - OpLConst0)))

	case OpFConst0, OpFConst1, OpFConst2:
		f.push(FloatValue(float32(in.Op - OpFConst0)))

	case OpBipush:
		f.push(IntegerValue(int32(int8(in.U1()))))

	case OpSipush:
		f.push(IntegerValue(int32(in.S2())))

	case OpLdc:
		v, err := f.class.ConstantPool.ConstantValue(uint16(in.U1()))
		if err != nil {
			return false, Value{}, false, err
		}
		f.push(v)

	case OpLdc2W:
		v, err := f.class.ConstantPool.ConstantValue(in.U2())
		if err != nil {
			return false, Value{}, false, err
		}
		if v.Kind != KindLong && v.Kind != KindDouble {
			return false, Value{}, false, fmt.Errorf(
				"%w: ldc2_w wants a wide constant, got %s",
				ErrNotLoadable, v.Kind)
		}
		f.push(v)

	case OpILoad:
		if err := f.loadLocal(int(in.U1())); err != nil {
			return false, Value{}, false, err
		}

	case OpILoad0, OpILoad1, OpILoad2, OpILoad3:
		if err := f.loadLocal(int(in.Op - OpILoad0)); err != nil {
			return false, Value{}, false, err
		}

	case OpLLoad0, OpLLoad1, OpLLoad2, OpLLoad3:
		if err := f.loadLocal(int(in.Op - OpLLoad0)); err != nil {
			return false, Value{}, false, err
		}

	case OpALoad0, OpALoad1, OpALoad2, OpALoad3:
		if err := f.loadLocal(int(in.Op - OpALoad0)); err != nil {
			return false, Value{}, false, err
		}

	case OpIStore:
		v, err := f.pop()
		if err != nil {
			return false, Value{}, false, err
		}
		f.storeLocal(int(in.U1()), v)

	case OpIStore0, OpIStore1, OpIStore2, OpIStore3:
		v, err := f.pop()
		if err != nil {
			return false, Value{}, false, err
		}
		f.storeLocal(int(in.Op-OpIStore0), v)

	case OpPop:
		if _, err := f.pop(); err != nil {
			return false, Value{}, false, err
		}

	case OpDup:
		v, err := f.top()
		if err != nil {
			return false, Value{}, false, err
		}
		f.push(v)

	case OpIAdd:
		a, b, err := f.popPair(KindInteger)
		if err != nil {
			return false, Value{}, false, err
		}
		// Two's-complement sum, wrapping on overflow.
		f.push(IntegerValue(a.Int + b.Int))

	case OpLAdd:
		a, b, err := f.popPair(KindLong)
		if err != nil {
			return false, Value{}, false, err
		}
		f.push(LongValue(a.Long + b.Long))

	case OpIfACmpNe:
		a, err := f.pop()
		if err != nil {
			return false, Value{}, false, err
		}
		b, err := f.pop()
		if err != nil {
			return false, Value{}, false, err
		}
		if a != b {
			// The offset is signed and relative to the start of this
			// instruction, not the one after it.
			f.IP = in.Offset + int(in.S2())
			return false, Value{}, true, nil
		}

	case OpGoto:
		f.IP = in.Offset + int(in.S2())
		return false, Value{}, true, nil

	case OpIReturn, OpLReturn, OpFReturn, OpDReturn, OpAReturn:
		v, err := f.pop()
		if err != nil {
			return false, Value{}, false, err
		}
		return true, v, false, nil

	case OpReturn:
		return true, VoidValue(), false, nil

	case OpInvokeSpecial:
		// Enough to let <init> call Object.<init> and nothing more. A real
		// object model replaces this.

	case OpInvokeStatic:
		if err := f.invokeStatic(in.U2()); err != nil {
			return false, Value{}, false, err
		}

	default:
		return false, Value{}, false, fmt.Errorf("%w: %s", ErrUnknownOpcode, in.Op)
	}

	return false, Value{}, false, nil
}

// popPair pops the two operands of a binary arithmetic instruction and
// checks they both carry the expected kind.
func (f *Frame) popPair(kind Kind) (Value, Value, error) {
	a, err := f.pop()
	if err != nil {
		return Value{}, Value{}, err
	}
	b, err := f.pop()
	if err != nil {
		return Value{}, Value{}, err
	}
	if a.Kind != kind || b.Kind != kind {
		return Value{}, Value{}, fmt.Errorf("%w: %s needs two %s, got %s and %s",
			ErrTypeMismatch, f.methodName, kind, a.Kind, b.Kind)
	}
	return a, b, nil
}

// invokeStatic resolves a method ref, pops its arguments, executes the
// callee in a fresh frame and pushes any non-void result. The caller's
// instruction pointer advances only after the callee returns.
func (f *Frame) invokeStatic(index uint16) error {
	className, nameAndType, err := f.class.ConstantPool.MethodRef(index)
	if err != nil {
		return err
	}

	target, err := f.class.classpath().Lookup(className)
	if err != nil {
		return err
	}

	methodName, err := target.ConstantPool.ResolveUtf8(nameAndType.NameIndex)
	if err != nil {
		return err
	}
	method, _, err := target.FindMethod(methodName)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", className, methodName, err)
	}

	// First pop is the rightmost argument.
	args := make([]Value, method.NumArgs())
	for i := len(args) - 1; i >= 0; i-- {
		if args[i], err = f.pop(); err != nil {
			return err
		}
	}

	callee, err := target.NewFrame(methodName, args)
	if err != nil {
		return err
	}
	callee.depth = f.depth + 1
	if callee.depth >= f.class.opts.MaxFrameDepth {
		return fmt.Errorf("%w: %d frames", ErrFrameOverflow, callee.depth)
	}

	result, err := callee.Exec()
	if err != nil {
		return err
	}
	if result.Kind != KindVoid {
		f.push(result)
	}
	return nil
}

func (cf *File) classpath() Classpath {
	return singleClasspath{cf: cf}
}
