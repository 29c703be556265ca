// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jvm

import (
	"errors"
	"fmt"
)

// ErrAttributeLength is returned when an attribute body does not span
// exactly its declared length.
var ErrAttributeLength = errors.New("attribute length mismatch")

// Attribute is one entry of an attribute table, tagged by its resolved name.
// Recognized attributes carry structure; everything else keeps its raw bytes.
type Attribute struct {
	Name   string `json:"name"`
	Length uint32 `json:"length"`

	// ConstantValue attributes.
	ConstantValue *Value `json:"constant_value,omitempty"`

	// Code attributes.
	Code *CodeAttribute `json:"code,omitempty"`

	// Known-but-opaque and unknown attributes keep their undecoded body.
	Raw []byte `json:"-"`
}

// CodeAttribute is the decoded body of a Code attribute.
type CodeAttribute struct {
	MaxStack   uint16             `json:"max_stack"`
	MaxLocals  uint16             `json:"max_locals"`
	CodeLength uint32             `json:"code_length"`
	Code       []Instruction      `json:"code"`
	Exceptions []ExceptionHandler `json:"exception_table,omitempty"`
	Attributes []Attribute        `json:"attributes,omitempty"`

	// offsets maps a byte offset to its index in Code. Branch handlers use
	// it to land on instruction starts.
	offsets map[int]int
}

// InstructionAt returns the instruction starting at the given byte offset.
func (ca *CodeAttribute) InstructionAt(offset int) (*Instruction, bool) {
	i, ok := ca.offsets[offset]
	if !ok {
		return nil, false
	}
	return &ca.Code[i], true
}

// ExceptionHandler is one entry of a Code attribute's exception table.
// Entries are parsed and carried but never drive control flow.
type ExceptionHandler struct {
	StartPC   uint16 `json:"start_pc"`
	EndPC     uint16 `json:"end_pc"`
	HandlerPC uint16 `json:"handler_pc"`

	// CatchType is the resolved class name of the caught type; empty means
	// the handler catches anything.
	CatchType string `json:"catch_type,omitempty"`
}

// parseAttributes reads one attribute table: a u2 count followed by count
// entries of {name_index u2, length u4, body}.
func (cf *File) parseAttributes() ([]Attribute, error) {
	count, err := cf.ReadUint16()
	if err != nil {
		return nil, err
	}

	attributes := make([]Attribute, 0, count)
	for i := uint16(0); i < count; i++ {
		attr, err := cf.parseAttribute()
		if err != nil {
			return nil, err
		}
		attributes = append(attributes, attr)
	}
	return attributes, nil
}

func (cf *File) parseAttribute() (Attribute, error) {
	nameIndex, err := cf.ReadUint16()
	if err != nil {
		return Attribute{}, err
	}
	name, err := cf.ConstantPool.ResolveUtf8(nameIndex)
	if err != nil {
		return Attribute{}, err
	}

	length, err := cf.ReadUint32()
	if err != nil {
		return Attribute{}, err
	}

	attr := Attribute{Name: name, Length: length}
	start := cf.pos

	switch name {
	case AttrConstantValue:
		index, err := cf.ReadUint16()
		if err != nil {
			return Attribute{}, err
		}
		value, err := cf.ConstantPool.ConstantValue(index)
		if err != nil {
			return Attribute{}, err
		}
		attr.ConstantValue = &value
	case AttrCode:
		code, err := cf.parseCodeAttribute()
		if err != nil {
			return Attribute{}, err
		}
		attr.Code = code
	default:
		// StackMapTable, BootstrapMethods, NestHost, NestMembers and any
		// unknown attribute: consume the declared length, keep the bytes.
		if attr.Raw, err = cf.ReadBytes(length); err != nil {
			return Attribute{}, err
		}
	}

	// Every attribute body spans exactly its declared length.
	if cf.pos != start+length {
		return Attribute{}, fmt.Errorf("%w: %s declared %d, consumed %d",
			ErrAttributeLength, name, length, cf.pos-start)
	}
	return attr, nil
}

func (cf *File) parseCodeAttribute() (*CodeAttribute, error) {
	ca := CodeAttribute{}

	var err error
	if ca.MaxStack, err = cf.ReadUint16(); err != nil {
		return nil, err
	}
	if ca.MaxLocals, err = cf.ReadUint16(); err != nil {
		return nil, err
	}
	if ca.CodeLength, err = cf.ReadUint32(); err != nil {
		return nil, err
	}

	raw, err := cf.ReadBytes(ca.CodeLength)
	if err != nil {
		return nil, err
	}
	if ca.Code, err = decodeInstructions(raw); err != nil {
		return nil, err
	}
	ca.offsets = make(map[int]int, len(ca.Code))
	for i := range ca.Code {
		ca.offsets[ca.Code[i].Offset] = i
	}

	exceptionCount, err := cf.ReadUint16()
	if err != nil {
		return nil, err
	}
	for i := uint16(0); i < exceptionCount; i++ {
		handler, err := cf.parseExceptionHandler()
		if err != nil {
			return nil, err
		}
		ca.Exceptions = append(ca.Exceptions, handler)
	}

	if ca.Attributes, err = cf.parseAttributes(); err != nil {
		return nil, err
	}
	return &ca, nil
}

func (cf *File) parseExceptionHandler() (ExceptionHandler, error) {
	var handler ExceptionHandler

	var err error
	if handler.StartPC, err = cf.ReadUint16(); err != nil {
		return handler, err
	}
	if handler.EndPC, err = cf.ReadUint16(); err != nil {
		return handler, err
	}
	if handler.HandlerPC, err = cf.ReadUint16(); err != nil {
		return handler, err
	}

	catchIndex, err := cf.ReadUint16()
	if err != nil {
		return handler, err
	}
	if catchIndex != 0 {
		// catch_type 0 catches anything and has no name to resolve.
		if handler.CatchType, err = cf.ConstantPool.ResolveUtf8(catchIndex); err != nil {
			return handler, err
		}
	}
	return handler, nil
}
