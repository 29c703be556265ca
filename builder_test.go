// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jvm

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

// The tests build class images in memory rather than shipping compiled
// fixtures. The builders below write the big-endian structures the loader
// consumes, with constant pool indices handed back as they are assigned.

type poolBuilder struct {
	buf  bytes.Buffer
	next uint16
}

func newPoolBuilder() *poolBuilder {
	return &poolBuilder{next: 1}
}

func (b *poolBuilder) u1(v uint8)  { b.buf.WriteByte(v) }
func (b *poolBuilder) u2(v uint16) { _ = binary.Write(&b.buf, binary.BigEndian, v) }
func (b *poolBuilder) u4(v uint32) { _ = binary.Write(&b.buf, binary.BigEndian, v) }
func (b *poolBuilder) u8(v uint64) { _ = binary.Write(&b.buf, binary.BigEndian, v) }

func (b *poolBuilder) take() uint16 {
	i := b.next
	b.next++
	return i
}

func (b *poolBuilder) utf8(s string) uint16 {
	b.u1(uint8(TagUtf8))
	b.u2(uint16(len(s)))
	b.buf.WriteString(s)
	return b.take()
}

func (b *poolBuilder) class(name string) uint16 {
	nameIndex := b.utf8(name)
	b.u1(uint8(TagClass))
	b.u2(nameIndex)
	return b.take()
}

func (b *poolBuilder) str(s string) uint16 {
	utf8Index := b.utf8(s)
	b.u1(uint8(TagString))
	b.u2(utf8Index)
	return b.take()
}

func (b *poolBuilder) integer(v int32) uint16 {
	b.u1(uint8(TagInteger))
	b.u4(uint32(v))
	return b.take()
}

func (b *poolBuilder) long(v int64) uint16 {
	b.u1(uint8(TagLong))
	b.u8(uint64(v))
	i := b.take()
	b.take() // the placeholder slot
	return i
}

func (b *poolBuilder) double(v float64) uint16 {
	b.u1(uint8(TagDouble))
	b.u8(math.Float64bits(v))
	i := b.take()
	b.take()
	return i
}

func (b *poolBuilder) nameAndType(name, descriptor string) uint16 {
	nameIndex := b.utf8(name)
	descIndex := b.utf8(descriptor)
	b.u1(uint8(TagNameAndType))
	b.u2(nameIndex)
	b.u2(descIndex)
	return b.take()
}

func (b *poolBuilder) methodRef(classIndex, nameAndTypeIndex uint16) uint16 {
	b.u1(uint8(TagMethodRef))
	b.u2(classIndex)
	b.u2(nameAndTypeIndex)
	return b.take()
}

func (b *poolBuilder) rawEntry(tag ConstantTag, body ...byte) uint16 {
	b.u1(uint8(tag))
	b.buf.Write(body)
	return b.take()
}

// classBuilder assembles a whole class image around a constant pool.
type classBuilder struct {
	pool    *poolBuilder
	methods []byte
	fields  []byte
	nfield  uint16
	nmethod uint16
}

func newClassBuilder() *classBuilder {
	return &classBuilder{pool: newPoolBuilder()}
}

// codeAttr renders a Code attribute holding the given bytecode.
func (cb *classBuilder) codeAttr(maxStack, maxLocals uint16, code []byte) []byte {
	nameIndex := cb.pool.utf8(AttrCode)

	var body bytes.Buffer
	_ = binary.Write(&body, binary.BigEndian, maxStack)
	_ = binary.Write(&body, binary.BigEndian, maxLocals)
	_ = binary.Write(&body, binary.BigEndian, uint32(len(code)))
	body.Write(code)
	_ = binary.Write(&body, binary.BigEndian, uint16(0)) // exception table
	_ = binary.Write(&body, binary.BigEndian, uint16(0)) // nested attributes

	var attr bytes.Buffer
	_ = binary.Write(&attr, binary.BigEndian, nameIndex)
	_ = binary.Write(&attr, binary.BigEndian, uint32(body.Len()))
	attr.Write(body.Bytes())
	return attr.Bytes()
}

// method adds a method with the given pre-rendered attributes.
func (cb *classBuilder) method(flags uint16, name, descriptor string, attrs ...[]byte) {
	nameIndex := cb.pool.utf8(name)
	descIndex := cb.pool.utf8(descriptor)

	var m bytes.Buffer
	_ = binary.Write(&m, binary.BigEndian, flags)
	_ = binary.Write(&m, binary.BigEndian, nameIndex)
	_ = binary.Write(&m, binary.BigEndian, descIndex)
	_ = binary.Write(&m, binary.BigEndian, uint16(len(attrs)))
	for _, a := range attrs {
		m.Write(a)
	}
	cb.methods = append(cb.methods, m.Bytes()...)
	cb.nmethod++
}

// codeMethod adds a static method whose single attribute is a Code attribute.
func (cb *classBuilder) codeMethod(name, descriptor string, code []byte) {
	cb.method(AccPublic|AccStatic, name, descriptor,
		cb.codeAttr(8, 8, code))
}

// field adds a field with no attributes.
func (cb *classBuilder) field(flags uint16, name, descriptor string) {
	nameIndex := cb.pool.utf8(name)
	descIndex := cb.pool.utf8(descriptor)

	var f bytes.Buffer
	_ = binary.Write(&f, binary.BigEndian, flags)
	_ = binary.Write(&f, binary.BigEndian, nameIndex)
	_ = binary.Write(&f, binary.BigEndian, descIndex)
	_ = binary.Write(&f, binary.BigEndian, uint16(0))
	cb.fields = append(cb.fields, f.Bytes()...)
	cb.nfield++
}

// build renders the class image for the named class.
func (cb *classBuilder) build(thisName string) []byte {
	thisIndex := cb.pool.class(thisName)
	superIndex := cb.pool.class("java/lang/Object")

	var img bytes.Buffer
	_ = binary.Write(&img, binary.BigEndian, uint32(ClassMagic))
	_ = binary.Write(&img, binary.BigEndian, uint16(0))                 // minor
	_ = binary.Write(&img, binary.BigEndian, uint16(MajorVersionJava8)) // major
	_ = binary.Write(&img, binary.BigEndian, cb.pool.next)              // pool count
	img.Write(cb.pool.buf.Bytes())
	_ = binary.Write(&img, binary.BigEndian, uint16(AccPublic))
	_ = binary.Write(&img, binary.BigEndian, thisIndex)
	_ = binary.Write(&img, binary.BigEndian, superIndex)
	_ = binary.Write(&img, binary.BigEndian, uint16(0)) // interfaces
	_ = binary.Write(&img, binary.BigEndian, cb.nfield)
	img.Write(cb.fields)
	_ = binary.Write(&img, binary.BigEndian, cb.nmethod)
	img.Write(cb.methods)
	_ = binary.Write(&img, binary.BigEndian, uint16(0)) // class attributes
	return img.Bytes()
}

// parseImage loads and parses a built image, failing the test on error.
func parseImage(t *testing.T, img []byte) *File {
	t.Helper()
	cf, err := NewBytes(img, &Options{})
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}
	if err := cf.Parse(); err != nil {
		t.Fatalf("Parse failed, reason: %v", err)
	}
	return cf
}
