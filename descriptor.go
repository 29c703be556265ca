// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jvm

import (
	"fmt"
	"strings"
)

// FieldType is the parsed form of one field descriptor.
type FieldType uint8

const (
	TypeByte FieldType = iota
	TypeChar
	TypeDouble
	TypeFloat
	TypeInt
	TypeLong
	TypeShort
	TypeBool
	TypeObject
	TypeArray
)

// String stringifies the field type.
func (t FieldType) String() string {
	switch t {
	case TypeByte:
		return "byte"
	case TypeChar:
		return "char"
	case TypeDouble:
		return "double"
	case TypeFloat:
		return "float"
	case TypeInt:
		return "int"
	case TypeLong:
		return "long"
	case TypeShort:
		return "short"
	case TypeBool:
		return "boolean"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	}
	return "?"
}

// FieldDescriptor is one parameter or return type of a descriptor string.
// ClassName is set for object types. Array types record the fully consumed
// element descriptor.
type FieldDescriptor struct {
	Type      FieldType        `json:"type"`
	ClassName string           `json:"class_name,omitempty"`
	Element   *FieldDescriptor `json:"element,omitempty"`
}

// MethodDescriptor is the parsed form of a method descriptor such as (IJ)V.
type MethodDescriptor struct {
	Args   []FieldDescriptor `json:"args"`
	Void   bool              `json:"void"`
	Return FieldDescriptor   `json:"return,omitempty"`
}

// ParseMethodDescriptor parses a method descriptor string.
//
//	method = "(" field* ")" result
//	result = "V" | field
//	field  = base | "L" classname ";" | "[" field
func ParseMethodDescriptor(desc string) (MethodDescriptor, error) {
	s := descScanner{src: desc}
	var md MethodDescriptor

	if !s.consume('(') {
		return md, fmt.Errorf("%w: %q misses '('", ErrBadDescriptor, desc)
	}
	for !s.peek(')') {
		ft, err := s.field()
		if err != nil {
			return md, fmt.Errorf("%w: %q: %v", ErrBadDescriptor, desc, err)
		}
		md.Args = append(md.Args, ft)
	}
	s.consume(')')

	if s.peek('V') {
		md.Void = true
		s.consume('V')
	} else {
		ret, err := s.field()
		if err != nil {
			return md, fmt.Errorf("%w: %q: %v", ErrBadDescriptor, desc, err)
		}
		md.Return = ret
	}

	if s.pos != len(s.src) {
		return md, fmt.Errorf("%w: %q has trailing characters", ErrBadDescriptor, desc)
	}
	return md, nil
}

type descScanner struct {
	src string
	pos int
}

func (s *descScanner) peek(c byte) bool {
	return s.pos < len(s.src) && s.src[s.pos] == c
}

func (s *descScanner) consume(c byte) bool {
	if s.peek(c) {
		s.pos++
		return true
	}
	return false
}

func (s *descScanner) field() (FieldDescriptor, error) {
	if s.pos >= len(s.src) {
		return FieldDescriptor{}, fmt.Errorf("truncated at %d", s.pos)
	}

	c := s.src[s.pos]
	s.pos++
	switch c {
	case 'B':
		return FieldDescriptor{Type: TypeByte}, nil
	case 'C':
		return FieldDescriptor{Type: TypeChar}, nil
	case 'D':
		return FieldDescriptor{Type: TypeDouble}, nil
	case 'F':
		return FieldDescriptor{Type: TypeFloat}, nil
	case 'I':
		return FieldDescriptor{Type: TypeInt}, nil
	case 'J':
		return FieldDescriptor{Type: TypeLong}, nil
	case 'S':
		return FieldDescriptor{Type: TypeShort}, nil
	case 'Z':
		return FieldDescriptor{Type: TypeBool}, nil
	case 'L':
		end := strings.IndexByte(s.src[s.pos:], ';')
		if end < 0 {
			return FieldDescriptor{}, fmt.Errorf("unterminated class name at %d", s.pos)
		}
		name := s.src[s.pos : s.pos+end]
		s.pos += end + 1
		return FieldDescriptor{Type: TypeObject, ClassName: name}, nil
	case '[':
		elem, err := s.field()
		if err != nil {
			return FieldDescriptor{}, err
		}
		return FieldDescriptor{Type: TypeArray, Element: &elem}, nil
	default:
		return FieldDescriptor{}, fmt.Errorf("unexpected character %q at %d", c, s.pos-1)
	}
}
