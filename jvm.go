// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jvm

import "strconv"

// The class file format magic number. Every class file starts with these
// four bytes, big-endian.
const ClassMagic = 0xCAFEBABE

// Class file major versions. The loader records but does not enforce them.
const (
	MajorVersionJava5  = 49
	MajorVersionJava6  = 50
	MajorVersionJava7  = 51
	MajorVersionJava8  = 52
	MajorVersionJava9  = 53
	MajorVersionJava10 = 54
	MajorVersionJava11 = 55
	MajorVersionJava17 = 61
	MajorVersionJava21 = 65
)

// JavaVersion maps a class file major version to the Java release that
// produces it. Versions below 45 come back as "unknown"; from 49 on the
// release number is derived from the major version with no upper bound.
func JavaVersion(major uint16) string {
	if major < 45 {
		return "unknown"
	}
	switch major {
	case 45:
		return "Java 1.1"
	case 46:
		return "Java 1.2"
	case 47:
		return "Java 1.3"
	case 48:
		return "Java 1.4"
	default:
		// 49 => Java 5, one major per release from there on.
		return "Java " + strconv.Itoa(int(major)-44)
	}
}

// ConstantTag identifies the kind of a constant pool entry.
// Values are from Table 4.4-A of the JVM specification.
type ConstantTag uint8

const (
	TagUtf8               ConstantTag = 1
	TagInteger            ConstantTag = 3
	TagFloat              ConstantTag = 4
	TagLong               ConstantTag = 5
	TagDouble             ConstantTag = 6
	TagClass              ConstantTag = 7
	TagString             ConstantTag = 8
	TagFieldRef           ConstantTag = 9
	TagMethodRef          ConstantTag = 10
	TagInterfaceMethodRef ConstantTag = 11
	TagNameAndType        ConstantTag = 12
	TagMethodHandle       ConstantTag = 15
	TagMethodType         ConstantTag = 16
	TagDynamic            ConstantTag = 17
	TagInvokeDynamic      ConstantTag = 18
	TagModule             ConstantTag = 19
	TagPackage            ConstantTag = 20

	// TagPlaceholder marks the synthetic entry occupying the slot after a
	// Long or Double constant. It never appears on disk and no valid
	// cross-reference targets it.
	TagPlaceholder ConstantTag = 0
)

// String stringifies the constant tag.
func (tag ConstantTag) String() string {
	tagNameMap := map[ConstantTag]string{
		TagUtf8:               "Utf8",
		TagInteger:            "Integer",
		TagFloat:              "Float",
		TagLong:               "Long",
		TagDouble:             "Double",
		TagClass:              "Class",
		TagString:             "String",
		TagFieldRef:           "FieldRef",
		TagMethodRef:          "MethodRef",
		TagInterfaceMethodRef: "InterfaceMethodRef",
		TagNameAndType:        "NameAndType",
		TagMethodHandle:       "MethodHandle",
		TagMethodType:         "MethodType",
		TagDynamic:            "Dynamic",
		TagInvokeDynamic:      "InvokeDynamic",
		TagModule:             "Module",
		TagPackage:            "Package",
		TagPlaceholder:        "Placeholder",
	}

	if name, ok := tagNameMap[tag]; ok {
		return name
	}
	return "?"
}

// Access flag bit values shared by classes, fields and methods.
const (
	AccPublic    = 0x0001
	AccPrivate   = 0x0002
	AccProtected = 0x0004
	AccStatic    = 0x0008
	AccFinal     = 0x0010
	AccSynthetic = 0x1000
)

// Field-only access flag bit values.
const (
	AccVolatile  = 0x0040
	AccTransient = 0x0080
	AccEnum      = 0x4000
)

// Method-only access flag bit values.
const (
	AccSynchronized = 0x0020
	AccBridge       = 0x0040
	AccVarargs      = 0x0080
	AccNative       = 0x0100
	AccAbstract     = 0x0400
	AccStrict       = 0x0800
)

// Predefined attribute names the parser recognizes. Anything else is
// consumed by its declared length and kept opaque.
const (
	AttrConstantValue    = "ConstantValue"
	AttrCode             = "Code"
	AttrStackMapTable    = "StackMapTable"
	AttrBootstrapMethods = "BootstrapMethods"
	AttrNestHost         = "NestHost"
	AttrNestMembers      = "NestMembers"
)

// Well known method names. The entry dispatcher runs <clinit> and main.
const (
	MethodClassInit = "<clinit>"
	MethodInit      = "<init>"
	MethodMain      = "main"
)
