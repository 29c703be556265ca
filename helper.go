// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jvm

import (
	"encoding/binary"
	"errors"
)

const (
	// TinyClassSize is the size of the smallest loadable class file: magic,
	// version, an empty constant pool and the fixed-size tables that follow.
	TinyClassSize = 24

	// MaxDefaultFrameDepth bounds invokestatic recursion unless overridden
	// through Options.
	MaxDefaultFrameDepth = 1024
)

// IO errors.
var (
	// ErrUnexpectedEOF is returned when a read runs past the end of the
	// class image.
	ErrUnexpectedEOF = errors.New("unexpected end of class file")
)

// Format errors.
var (
	// ErrInvalidClassSize is returned when the image is smaller than the
	// smallest possible class file.
	ErrInvalidClassSize = errors.New("not a class file, smaller than tiny class")

	// ErrBadMagic is returned when the file does not start with 0xCAFEBABE.
	// Nothing past the magic is read in that case.
	ErrBadMagic = errors.New("bad magic, not a class file")

	// ErrTruncatedPool is returned when the constant pool ends before its
	// declared entry count.
	ErrTruncatedPool = errors.New("truncated constant pool")

	// ErrUnknownConstantTag is returned for a constant pool tag outside
	// Table 4.4-A.
	ErrUnknownConstantTag = errors.New("unknown constant pool tag")

	// ErrBadConstantIndex is returned for a constant pool reference of 0 or
	// beyond the pool count, except where 0 is legal.
	ErrBadConstantIndex = errors.New("constant pool index out of range")

	// ErrBadConstantKind is returned when a constant pool entry is not of
	// the kind the reference requires.
	ErrBadConstantKind = errors.New("unexpected constant pool entry kind")

	// ErrBadUtf8 is returned for a Utf8 entry whose bytes are not valid.
	ErrBadUtf8 = errors.New("malformed Utf8 constant")

	// ErrBadDescriptor is returned when a field or method descriptor does
	// not match the descriptor grammar.
	ErrBadDescriptor = errors.New("malformed descriptor")

	// ErrUnknownOpcode is returned when the instruction decoder meets an
	// opcode byte outside the supported set.
	ErrUnknownOpcode = errors.New("unknown opcode")

	// ErrTruncatedCode is returned when the last instruction of a Code
	// attribute overruns the declared code length.
	ErrTruncatedCode = errors.New("instruction overruns code length")
)

// Semantic errors raised by the execution engine.
var (
	// ErrStackUnderflow is returned when a handler pops an empty operand
	// stack.
	ErrStackUnderflow = errors.New("operand stack underflow")

	// ErrTypeMismatch is returned when an arithmetic handler pops a value
	// of the wrong kind.
	ErrTypeMismatch = errors.New("operand type mismatch")

	// ErrNotLoadable is returned for an ldc whose target constant is not a
	// loadable value.
	ErrNotLoadable = errors.New("constant is not loadable")

	// ErrClassNotFound is returned when a method ref names a class outside
	// the classpath, which holds only the executing class.
	ErrClassNotFound = errors.New("class not found")

	// ErrMethodNotFound is returned when method resolution finds no method
	// of the referenced name.
	ErrMethodNotFound = errors.New("method not found")

	// ErrMissingCode is returned when a method selected for execution has
	// no Code attribute.
	ErrMissingCode = errors.New("method has no Code attribute")

	// ErrFrameOverflow is returned when invokestatic nesting exceeds the
	// configured frame depth.
	ErrFrameOverflow = errors.New("frame depth limit exceeded")
)

// ReadUint8 reads the next byte of the class image.
func (cf *File) ReadUint8() (uint8, error) {
	if cf.pos+1 > cf.size {
		return 0, ErrUnexpectedEOF
	}

	v := cf.data[cf.pos]
	cf.pos++
	return v, nil
}

// ReadUint16 reads the next big-endian uint16 of the class image.
func (cf *File) ReadUint16() (uint16, error) {
	if cf.pos+2 > cf.size {
		return 0, ErrUnexpectedEOF
	}

	v := binary.BigEndian.Uint16(cf.data[cf.pos:])
	cf.pos += 2
	return v, nil
}

// ReadUint32 reads the next big-endian uint32 of the class image.
func (cf *File) ReadUint32() (uint32, error) {
	if cf.pos+4 > cf.size {
		return 0, ErrUnexpectedEOF
	}

	v := binary.BigEndian.Uint32(cf.data[cf.pos:])
	cf.pos += 4
	return v, nil
}

// ReadUint64 reads the next big-endian uint64 of the class image.
func (cf *File) ReadUint64() (uint64, error) {
	if cf.pos+8 > cf.size {
		return 0, ErrUnexpectedEOF
	}

	v := binary.BigEndian.Uint64(cf.data[cf.pos:])
	cf.pos += 8
	return v, nil
}

// ReadBytes reads the next n bytes of the class image. The returned slice
// aliases the mapped file and stays valid until Close.
func (cf *File) ReadBytes(n uint32) ([]byte, error) {
	if cf.pos+n > cf.size || cf.pos+n < cf.pos {
		return nil, ErrUnexpectedEOF
	}

	b := cf.data[cf.pos : cf.pos+n]
	cf.pos += n
	return b, nil
}

// Offset returns the number of bytes consumed so far.
func (cf *File) Offset() uint32 {
	return cf.pos
}
