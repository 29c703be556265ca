// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jvm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadLocalIndex is returned when a load targets a local variable slot
// past the end of the local variable table.
var ErrBadLocalIndex = errors.New("local variable index out of range")

// Frame is the execution state of one method invocation: a growable local
// variable table, the operand stack and the instruction pointer, which is a
// byte offset into the method's code. The frame borrows the decoded code and
// the owning class; it owns nothing that outlives the invocation.
type Frame struct {
	Locals []Value
	Stack  []Value

	// IP is the byte offset of the next instruction to execute.
	IP int

	code       *CodeAttribute
	class      *File
	methodName string
	depth      int
}

func (f *Frame) push(v Value) {
	f.Stack = append(f.Stack, v)
}

func (f *Frame) pop() (Value, error) {
	if len(f.Stack) == 0 {
		return Value{}, fmt.Errorf("%w: in %s at offset %d",
			ErrStackUnderflow, f.methodName, f.IP)
	}
	v := f.Stack[len(f.Stack)-1]
	f.Stack = f.Stack[:len(f.Stack)-1]
	return v, nil
}

func (f *Frame) top() (Value, error) {
	if len(f.Stack) == 0 {
		return Value{}, fmt.Errorf("%w: in %s at offset %d",
			ErrStackUnderflow, f.methodName, f.IP)
	}
	return f.Stack[len(f.Stack)-1], nil
}

// loadLocal pushes local n onto the operand stack. Loads are untyped; the
// arithmetic handlers are where kind mismatches surface.
func (f *Frame) loadLocal(n int) error {
	if n >= len(f.Locals) {
		return fmt.Errorf("%w: %d of %d in %s",
			ErrBadLocalIndex, n, len(f.Locals), f.methodName)
	}
	f.push(f.Locals[n])
	return nil
}

// storeLocal writes slot n, growing the table with placeholder padding when
// the slot is past the current end.
func (f *Frame) storeLocal(n int, v Value) {
	for n >= len(f.Locals) {
		f.Locals = append(f.Locals, PlaceholderValue())
	}
	f.Locals[n] = v
}

// trace renders the frame state for the per-step execution trace.
func (f *Frame) trace(in *Instruction) string {
	var sb strings.Builder
	sb.WriteString("OP ")
	sb.WriteString(in.String())
	sb.WriteString(" STACK [")
	for i, v := range f.Stack {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(v.String())
	}
	sb.WriteString("] LOCALS [")
	for i, v := range f.Locals {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
