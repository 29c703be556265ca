// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jvm

// MethodAccessFlags is the bit-decoded access mask of a method.
type MethodAccessFlags struct {
	Visibility   Visibility `json:"visibility"`
	Static       bool       `json:"static,omitempty"`
	Final        bool       `json:"final,omitempty"`
	Synchronized bool       `json:"synchronized,omitempty"`
	Bridge       bool       `json:"bridge,omitempty"`
	Varargs      bool       `json:"varargs,omitempty"`
	Native       bool       `json:"native,omitempty"`
	Abstract     bool       `json:"abstract,omitempty"`
	Strict       bool       `json:"strict,omitempty"`
	Synthetic    bool       `json:"synthetic,omitempty"`
}

// ParseMethodAccessFlags decodes a method access mask.
func ParseMethodAccessFlags(mask uint16) MethodAccessFlags {
	return MethodAccessFlags{
		Visibility:   visibilityOf(mask),
		Static:       mask&AccStatic != 0,
		Final:        mask&AccFinal != 0,
		Synchronized: mask&AccSynchronized != 0,
		Bridge:       mask&AccBridge != 0,
		Varargs:      mask&AccVarargs != 0,
		Native:       mask&AccNative != 0,
		Abstract:     mask&AccAbstract != 0,
		Strict:       mask&AccStrict != 0,
		Synthetic:    mask&AccSynthetic != 0,
	}
}

// Names returns the set flags as strings, visibility first.
func (m MethodAccessFlags) Names() []string {
	names := []string{m.Visibility.String()}
	if m.Static {
		names = append(names, "static")
	}
	if m.Final {
		names = append(names, "final")
	}
	if m.Synchronized {
		names = append(names, "synchronized")
	}
	if m.Bridge {
		names = append(names, "bridge")
	}
	if m.Varargs {
		names = append(names, "varargs")
	}
	if m.Native {
		names = append(names, "native")
	}
	if m.Abstract {
		names = append(names, "abstract")
	}
	if m.Strict {
		names = append(names, "strictfp")
	}
	if m.Synthetic {
		names = append(names, "synthetic")
	}
	return names
}

// Method is one entry of the class method table.
type Method struct {
	RawFlags   uint16            `json:"raw_flags"`
	Flags      MethodAccessFlags `json:"flags"`
	Name       string            `json:"name"`
	Descriptor string            `json:"descriptor"`
	Signature  MethodDescriptor  `json:"signature"`
	Attributes []Attribute       `json:"attributes,omitempty"`
}

// NumArgs returns the number of declared parameters. Wide types count once;
// the slot-aware count belongs to frame construction when long and double
// arguments grow a test surface.
func (m *Method) NumArgs() int {
	return len(m.Signature.Args)
}

// Code returns the method's Code attribute, or nil for methods without one.
func (m *Method) Code() *CodeAttribute {
	for i := range m.Attributes {
		if m.Attributes[i].Name == AttrCode {
			return m.Attributes[i].Code
		}
	}
	return nil
}

// parseMethods reads the method table.
func (cf *File) parseMethods() error {
	count, err := cf.ReadUint16()
	if err != nil {
		return err
	}

	cf.Methods = make([]Method, 0, count)
	for i := uint16(0); i < count; i++ {
		method := Method{}

		if method.RawFlags, err = cf.ReadUint16(); err != nil {
			return err
		}
		method.Flags = ParseMethodAccessFlags(method.RawFlags)

		nameIndex, err := cf.ReadUint16()
		if err != nil {
			return err
		}
		if method.Name, err = cf.ConstantPool.ResolveUtf8(nameIndex); err != nil {
			return err
		}

		descIndex, err := cf.ReadUint16()
		if err != nil {
			return err
		}
		if method.Descriptor, err = cf.ConstantPool.ResolveUtf8(descIndex); err != nil {
			return err
		}
		if method.Signature, err = ParseMethodDescriptor(method.Descriptor); err != nil {
			return err
		}

		if method.Attributes, err = cf.parseAttributes(); err != nil {
			return err
		}
		cf.Methods = append(cf.Methods, method)
	}
	return nil
}

// FindMethod returns the first method of the given name that carries a Code
// attribute, the way frame construction selects its target.
func (cf *File) FindMethod(name string) (*Method, *CodeAttribute, error) {
	var found bool
	for i := range cf.Methods {
		if cf.Methods[i].Name != name {
			continue
		}
		found = true
		if code := cf.Methods[i].Code(); code != nil {
			return &cf.Methods[i], code, nil
		}
	}
	if found {
		return nil, nil, ErrMissingCode
	}
	return nil, nil, ErrMethodNotFound
}

// HasMethod reports whether the class declares a method of the given name.
func (cf *File) HasMethod(name string) bool {
	for i := range cf.Methods {
		if cf.Methods[i].Name == name {
			return true
		}
	}
	return false
}
