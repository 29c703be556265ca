// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jvm

import "fmt"

// Kind discriminates the runtime values carried on the operand stack and in
// the local variable table.
type Kind uint8

const (
	KindVoid Kind = iota
	KindByte
	KindInteger
	KindFloat
	KindLong
	KindDouble
	KindChar
	KindBool
	KindReturnAddress
	KindReference

	// KindPlaceholder fills local slots that a store skips over when it
	// grows the local variable table. Wide values occupy a single slot.
	KindPlaceholder
)

// String stringifies the value kind.
func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindByte:
		return "byte"
	case KindInteger:
		return "int"
	case KindFloat:
		return "float"
	case KindLong:
		return "long"
	case KindDouble:
		return "double"
	case KindChar:
		return "char"
	case KindBool:
		return "boolean"
	case KindReturnAddress:
		return "returnAddress"
	case KindReference:
		return "reference"
	case KindPlaceholder:
		return "placeholder"
	}
	return "?"
}

// Value is a tagged runtime value. Only the field selected by Kind is
// meaningful. Values are comparable, which is what reference equality means
// in this core: aconst_null pushes the zero reference and two references are
// equal when their carried data is.
type Value struct {
	Kind   Kind
	Int    int32
	Long   int64
	Float  float32
	Double float64
	Byte   uint8
	Char   rune
	Bool   bool

	// Ref carries the resolved text of a loaded String constant. Null
	// references leave it empty. Anything richer waits on a heap.
	Ref string
}

// VoidValue is returned by methods declared void and by running off the end
// of a code block.
func VoidValue() Value { return Value{Kind: KindVoid} }

// NullValue returns the null reference.
func NullValue() Value { return Value{Kind: KindReference} }

// IntegerValue wraps an int32.
func IntegerValue(v int32) Value { return Value{Kind: KindInteger, Int: v} }

// LongValue wraps an int64.
func LongValue(v int64) Value { return Value{Kind: KindLong, Long: v} }

// FloatValue wraps a float32.
func FloatValue(v float32) Value { return Value{Kind: KindFloat, Float: v} }

// DoubleValue wraps a float64.
func DoubleValue(v float64) Value { return Value{Kind: KindDouble, Double: v} }

// StringValue wraps a loaded String constant as an opaque reference.
func StringValue(s string) Value { return Value{Kind: KindReference, Ref: s} }

// PlaceholderValue fills a local slot skipped over by a store.
func PlaceholderValue() Value { return Value{Kind: KindPlaceholder} }

// String stringifies the value for stack traces.
func (v Value) String() string {
	switch v.Kind {
	case KindInteger:
		return fmt.Sprintf("int(%d)", v.Int)
	case KindLong:
		return fmt.Sprintf("long(%d)", v.Long)
	case KindFloat:
		return fmt.Sprintf("float(%g)", v.Float)
	case KindDouble:
		return fmt.Sprintf("double(%g)", v.Double)
	case KindByte:
		return fmt.Sprintf("byte(%d)", v.Byte)
	case KindChar:
		return fmt.Sprintf("char(%q)", v.Char)
	case KindBool:
		return fmt.Sprintf("boolean(%t)", v.Bool)
	case KindReference:
		if v.Ref == "" {
			return "null"
		}
		return fmt.Sprintf("ref(%q)", v.Ref)
	default:
		return v.Kind.String()
	}
}
