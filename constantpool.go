// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jvm

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// Constant represents one constant pool entry. The Tag selects which of the
// remaining fields are meaningful, mirroring the cp_info union of the format.
type Constant struct {
	Tag ConstantTag `json:"tag"`

	// Class, Module, Package and NameAndType entries.
	NameIndex uint16 `json:"name_index,omitempty"`

	// FieldRef, MethodRef and InterfaceMethodRef entries.
	ClassIndex       uint16 `json:"class_index,omitempty"`
	NameAndTypeIndex uint16 `json:"name_and_type_index,omitempty"`

	// String entries.
	StringIndex uint16 `json:"string_index,omitempty"`

	// NameAndType and MethodType entries.
	DescriptorIndex uint16 `json:"descriptor_index,omitempty"`

	// MethodHandle entries.
	ReferenceKind  uint8  `json:"reference_kind,omitempty"`
	ReferenceIndex uint16 `json:"reference_index,omitempty"`

	// Dynamic and InvokeDynamic entries.
	BootstrapIndex uint16 `json:"bootstrap_method_attr_index,omitempty"`

	// Value carriers.
	Integer int32   `json:"integer,omitempty"`
	Long    int64   `json:"long,omitempty"`
	Float   float32 `json:"float,omitempty"`
	Double  float64 `json:"double,omitempty"`
	Utf8    string  `json:"utf8,omitempty"`
}

// ConstantPool holds the class constants with their on-disk 1-based
// numbering: index 0 is a padding placeholder and the slot after every Long
// or Double is a placeholder too, so entry i of the file is ConstantPool[i].
type ConstantPool []Constant

// parseConstantPool reads the constant_pool_count and the count-1 entries
// that follow it.
func (cf *File) parseConstantPool() error {
	count, err := cf.ReadUint16()
	if err != nil {
		return ErrTruncatedPool
	}

	pool := make(ConstantPool, count)
	if count > 0 {
		pool[0] = Constant{Tag: TagPlaceholder}
	}

	for i := uint16(1); i < count; i++ {
		c, wide, err := cf.parseConstant()
		if err != nil {
			return fmt.Errorf("constant pool entry %d: %w", i, err)
		}
		pool[i] = c
		if wide {
			// A Long or Double takes two slots. The second one is never
			// the target of a valid index.
			i++
			if i < count {
				pool[i] = Constant{Tag: TagPlaceholder}
			}
		}
	}

	cf.ConstantPool = pool
	return nil
}

func (cf *File) parseConstant() (Constant, bool, error) {
	tag, err := cf.ReadUint8()
	if err != nil {
		return Constant{}, false, ErrTruncatedPool
	}

	c := Constant{Tag: ConstantTag(tag)}
	switch c.Tag {
	case TagClass, TagModule, TagPackage:
		c.NameIndex, err = cf.ReadUint16()
	case TagFieldRef, TagMethodRef, TagInterfaceMethodRef:
		if c.ClassIndex, err = cf.ReadUint16(); err == nil {
			c.NameAndTypeIndex, err = cf.ReadUint16()
		}
	case TagString:
		c.StringIndex, err = cf.ReadUint16()
	case TagInteger:
		var v uint32
		v, err = cf.ReadUint32()
		c.Integer = int32(v)
	case TagFloat:
		var v uint32
		v, err = cf.ReadUint32()
		c.Float = math.Float32frombits(v)
	case TagLong:
		var v uint64
		v, err = cf.ReadUint64()
		c.Long = int64(v)
	case TagDouble:
		var v uint64
		v, err = cf.ReadUint64()
		c.Double = math.Float64frombits(v)
	case TagNameAndType:
		if c.NameIndex, err = cf.ReadUint16(); err == nil {
			c.DescriptorIndex, err = cf.ReadUint16()
		}
	case TagUtf8:
		var length uint16
		var raw []byte
		if length, err = cf.ReadUint16(); err == nil {
			if raw, err = cf.ReadBytes(uint32(length)); err == nil {
				if !utf8.Valid(raw) {
					return Constant{}, false, ErrBadUtf8
				}
				c.Utf8 = string(raw)
			}
		}
	case TagMethodHandle:
		if c.ReferenceKind, err = cf.ReadUint8(); err == nil {
			c.ReferenceIndex, err = cf.ReadUint16()
		}
	case TagMethodType:
		c.DescriptorIndex, err = cf.ReadUint16()
	case TagDynamic, TagInvokeDynamic:
		if c.BootstrapIndex, err = cf.ReadUint16(); err == nil {
			c.NameAndTypeIndex, err = cf.ReadUint16()
		}
	default:
		return Constant{}, false, fmt.Errorf("%w: %d", ErrUnknownConstantTag, tag)
	}

	if err != nil {
		return Constant{}, false, ErrTruncatedPool
	}
	return c, c.Tag == TagLong || c.Tag == TagDouble, nil
}

// At returns the constant at the given 1-based index.
func (cp ConstantPool) At(index uint16) (*Constant, error) {
	if index == 0 || int(index) >= len(cp) {
		return nil, fmt.Errorf("%w: %d", ErrBadConstantIndex, index)
	}
	return &cp[index], nil
}

// ResolveUtf8 resolves an index to its underlying modified UTF-8 string. A
// Utf8 entry resolves to itself and a Class entry resolves through its name
// index; any other kind is ErrBadConstantKind. Resolution terminates after at
// most one hop by construction of the format.
func (cp ConstantPool) ResolveUtf8(index uint16) (string, error) {
	c, err := cp.At(index)
	if err != nil {
		return "", err
	}

	switch c.Tag {
	case TagUtf8:
		return c.Utf8, nil
	case TagClass:
		return cp.ResolveUtf8(c.NameIndex)
	default:
		return "", fmt.Errorf("%w: resolving Utf8 through %s at %d",
			ErrBadConstantKind, c.Tag, index)
	}
}

// MethodRef expects a FieldRef, MethodRef or InterfaceMethodRef at the given
// index and returns the referenced class name together with the NameAndType
// constant it points at.
func (cp ConstantPool) MethodRef(index uint16) (string, *Constant, error) {
	c, err := cp.At(index)
	if err != nil {
		return "", nil, err
	}

	switch c.Tag {
	case TagFieldRef, TagMethodRef, TagInterfaceMethodRef:
	default:
		return "", nil, fmt.Errorf("%w: want a method ref, got %s at %d",
			ErrBadConstantKind, c.Tag, index)
	}

	className, err := cp.ResolveUtf8(c.ClassIndex)
	if err != nil {
		return "", nil, err
	}

	nameAndType, err := cp.At(c.NameAndTypeIndex)
	if err != nil {
		return "", nil, err
	}
	if nameAndType.Tag != TagNameAndType {
		return "", nil, fmt.Errorf("%w: want NameAndType, got %s at %d",
			ErrBadConstantKind, nameAndType.Tag, c.NameAndTypeIndex)
	}

	return className, nameAndType, nil
}

// ConstantValue maps a loadable constant to the runtime value ldc pushes.
// Integer, Float, Long, Double and String entries are loadable; anything
// else is ErrNotLoadable.
func (cp ConstantPool) ConstantValue(index uint16) (Value, error) {
	c, err := cp.At(index)
	if err != nil {
		return Value{}, err
	}

	switch c.Tag {
	case TagInteger:
		return IntegerValue(c.Integer), nil
	case TagFloat:
		return FloatValue(c.Float), nil
	case TagLong:
		return LongValue(c.Long), nil
	case TagDouble:
		return DoubleValue(c.Double), nil
	case TagString:
		s, err := cp.ResolveUtf8(c.StringIndex)
		if err != nil {
			return Value{}, err
		}
		return StringValue(s), nil
	default:
		return Value{}, fmt.Errorf("%w: %s at %d", ErrNotLoadable, c.Tag, index)
	}
}
