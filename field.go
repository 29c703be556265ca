// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jvm

// Visibility is the access level encoded in the low bits of an access flag
// mask. A member with none of the three bits set behaves as public.
type Visibility uint8

const (
	VisibilityPublic Visibility = iota
	VisibilityProtected
	VisibilityPrivate
)

// String stringifies the visibility.
func (v Visibility) String() string {
	switch v {
	case VisibilityProtected:
		return "protected"
	case VisibilityPrivate:
		return "private"
	default:
		return "public"
	}
}

func visibilityOf(mask uint16) Visibility {
	switch {
	case mask&AccPrivate != 0:
		return VisibilityPrivate
	case mask&AccProtected != 0:
		return VisibilityProtected
	default:
		return VisibilityPublic
	}
}

// FieldAccessFlags is the bit-decoded access mask of a field.
type FieldAccessFlags struct {
	Visibility Visibility `json:"visibility"`
	Static     bool       `json:"static,omitempty"`
	Final      bool       `json:"final,omitempty"`
	Volatile   bool       `json:"volatile,omitempty"`
	Transient  bool       `json:"transient,omitempty"`
	Synthetic  bool       `json:"synthetic,omitempty"`
	Enum       bool       `json:"enum,omitempty"`
}

// ParseFieldAccessFlags decodes a field access mask.
func ParseFieldAccessFlags(mask uint16) FieldAccessFlags {
	return FieldAccessFlags{
		Visibility: visibilityOf(mask),
		Static:     mask&AccStatic != 0,
		Final:      mask&AccFinal != 0,
		Volatile:   mask&AccVolatile != 0,
		Transient:  mask&AccTransient != 0,
		Synthetic:  mask&AccSynthetic != 0,
		Enum:       mask&AccEnum != 0,
	}
}

// Names returns the set flags as strings, visibility first.
func (f FieldAccessFlags) Names() []string {
	names := []string{f.Visibility.String()}
	if f.Static {
		names = append(names, "static")
	}
	if f.Final {
		names = append(names, "final")
	}
	if f.Volatile {
		names = append(names, "volatile")
	}
	if f.Transient {
		names = append(names, "transient")
	}
	if f.Synthetic {
		names = append(names, "synthetic")
	}
	if f.Enum {
		names = append(names, "enum")
	}
	return names
}

// Field is one entry of the class field table.
type Field struct {
	RawFlags   uint16           `json:"raw_flags"`
	Flags      FieldAccessFlags `json:"flags"`
	Name       string           `json:"name"`
	Descriptor string           `json:"descriptor"`
	Attributes []Attribute      `json:"attributes,omitempty"`
}

// ConstantValue returns the field's ConstantValue attribute value, if any.
func (f *Field) ConstantValue() *Value {
	for i := range f.Attributes {
		if f.Attributes[i].Name == AttrConstantValue {
			return f.Attributes[i].ConstantValue
		}
	}
	return nil
}

// parseFields reads the field table.
func (cf *File) parseFields() error {
	count, err := cf.ReadUint16()
	if err != nil {
		return err
	}

	cf.Fields = make([]Field, 0, count)
	for i := uint16(0); i < count; i++ {
		field := Field{}

		if field.RawFlags, err = cf.ReadUint16(); err != nil {
			return err
		}
		field.Flags = ParseFieldAccessFlags(field.RawFlags)

		nameIndex, err := cf.ReadUint16()
		if err != nil {
			return err
		}
		if field.Name, err = cf.ConstantPool.ResolveUtf8(nameIndex); err != nil {
			return err
		}

		descIndex, err := cf.ReadUint16()
		if err != nil {
			return err
		}
		if field.Descriptor, err = cf.ConstantPool.ResolveUtf8(descIndex); err != nil {
			return err
		}

		if field.Attributes, err = cf.parseAttributes(); err != nil {
			return err
		}
		cf.Fields = append(cf.Fields, field)
	}
	return nil
}
