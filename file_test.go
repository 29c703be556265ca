// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jvm

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseClass(t *testing.T) {
	cb := newClassBuilder()
	cb.field(AccPrivate|AccStatic|AccFinal, "counter", "I")
	cb.codeMethod("main", "()I", []byte{4, 172}) // iconst_1, ireturn
	img := cb.build("Main")

	cf := parseImage(t, img)

	if cf.ThisName != "Main" {
		t.Errorf("this class got %q, want %q", cf.ThisName, "Main")
	}
	if cf.SuperName != "java/lang/Object" {
		t.Errorf("super class got %q, want %q", cf.SuperName, "java/lang/Object")
	}
	if cf.MajorVersion != MajorVersionJava8 {
		t.Errorf("major version got %d, want %d", cf.MajorVersion, MajorVersionJava8)
	}

	if len(cf.Fields) != 1 {
		t.Fatalf("parsed %d fields, want 1", len(cf.Fields))
	}
	field := cf.Fields[0]
	wantFlags := FieldAccessFlags{
		Visibility: VisibilityPrivate,
		Static:     true,
		Final:      true,
	}
	if field.Name != "counter" || field.Descriptor != "I" || field.Flags != wantFlags {
		t.Errorf("field got %+v", field)
	}

	if len(cf.Methods) != 1 {
		t.Fatalf("parsed %d methods, want 1", len(cf.Methods))
	}
	method := cf.Methods[0]
	if method.Name != "main" || method.Descriptor != "()I" {
		t.Errorf("method got %q %q", method.Name, method.Descriptor)
	}
	if !method.Flags.Static || method.Flags.Visibility != VisibilityPublic {
		t.Errorf("method flags got %+v", method.Flags)
	}
	if method.Code() == nil {
		t.Errorf("method has no Code attribute")
	}
}

// Parsing consumes the image exactly, front to back.
func TestParseRoundTrip(t *testing.T) {
	cb := newClassBuilder()
	cb.pool.long(1 << 33)
	cb.pool.str("data")
	cb.field(AccPublic, "name", "Ljava/lang/String;")
	cb.codeMethod("main", "()V", []byte{177})
	cb.codeMethod("helper", "(II)I", []byte{26, 27, 96, 172})
	img := cb.build("RoundTrip")

	cf := parseImage(t, img)
	if cf.Offset() != uint32(len(img)) {
		t.Errorf("consumed %d bytes of %d", cf.Offset(), len(img))
	}
}

func TestParseBadMagic(t *testing.T) {
	img := newClassBuilder().build("Main")
	img[0] = 0xDE

	cf, err := NewBytes(img, &Options{})
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}
	if err := cf.Parse(); !errors.Is(err, ErrBadMagic) {
		t.Fatalf("Parse got %v, want ErrBadMagic", err)
	}

	// Nothing past the magic was read.
	if cf.Offset() != 4 {
		t.Errorf("consumed %d bytes after bad magic, want 4", cf.Offset())
	}
}

func TestParseTinyFile(t *testing.T) {
	cf, err := NewBytes([]byte{0xCA, 0xFE}, &Options{})
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}
	if err := cf.Parse(); !errors.Is(err, ErrInvalidClassSize) {
		t.Errorf("Parse got %v, want ErrInvalidClassSize", err)
	}
}

func TestParseFromDisk(t *testing.T) {
	cb := newClassBuilder()
	cb.codeMethod("main", "()I", []byte{8, 172}) // iconst_5, ireturn
	img := cb.build("Disk")

	path := filepath.Join(t.TempDir(), "Disk.class")
	if err := os.WriteFile(path, img, 0o644); err != nil {
		t.Fatalf("WriteFile failed, reason: %v", err)
	}

	cf, err := New(path, nil)
	if err != nil {
		t.Fatalf("New(%s) failed, reason: %v", path, err)
	}
	defer cf.Close()

	if err := cf.Parse(); err != nil {
		t.Fatalf("Parse(%s) failed, reason: %v", path, err)
	}
	result, err := cf.Run()
	if err != nil {
		t.Fatalf("Run failed, reason: %v", err)
	}
	if result != IntegerValue(5) {
		t.Errorf("Run got %v, want Integer(5)", result)
	}
}

func TestSuperClassZeroIndex(t *testing.T) {
	cb := newClassBuilder()
	img := cb.build("java/lang/Object")

	// Rewrite super_class to 0: only Object may do this. The field sits
	// right after the u2 this_class that follows the pool and access flags.
	superOffset := findSuperOffset(t, img)
	img[superOffset] = 0
	img[superOffset+1] = 0

	cf := parseImage(t, img)
	if cf.SuperName != "" {
		t.Errorf("super class got %q, want empty", cf.SuperName)
	}
}

// findSuperOffset locates the byte offset of the super_class field.
func findSuperOffset(t *testing.T, img []byte) int {
	t.Helper()
	cf, err := NewBytes(img, &Options{})
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}
	if _, err := cf.ReadUint32(); err != nil { // magic
		t.Fatalf("read failed, reason: %v", err)
	}
	if _, err := cf.ReadUint32(); err != nil { // version
		t.Fatalf("read failed, reason: %v", err)
	}
	if err := cf.parseConstantPool(); err != nil {
		t.Fatalf("parseConstantPool failed, reason: %v", err)
	}
	if _, err := cf.ReadUint16(); err != nil { // access flags
		t.Fatalf("read failed, reason: %v", err)
	}
	if _, err := cf.ReadUint16(); err != nil { // this_class
		t.Fatalf("read failed, reason: %v", err)
	}
	return int(cf.Offset())
}

func TestJavaVersion(t *testing.T) {
	tests := []struct {
		major uint16
		want  string
	}{
		{44, "unknown"},
		{45, "Java 1.1"},
		{48, "Java 1.4"},
		{MajorVersionJava8, "Java 8"},
		{MajorVersionJava17, "Java 17"},
		{MajorVersionJava21, "Java 21"},
	}
	for _, tt := range tests {
		if got := JavaVersion(tt.major); got != tt.want {
			t.Errorf("JavaVersion(%d) got %q, want %q", tt.major, got, tt.want)
		}
	}
}

func TestAccessFlagNames(t *testing.T) {
	m := ParseMethodAccessFlags(AccPrivate | AccStatic | AccSynchronized | AccVarargs)
	want := []string{"private", "static", "synchronized", "varargs"}
	if !reflect.DeepEqual(m.Names(), want) {
		t.Errorf("method flag names got %v, want %v", m.Names(), want)
	}

	f := ParseFieldAccessFlags(AccVolatile | AccEnum)
	wantF := []string{"public", "volatile", "enum"}
	if !reflect.DeepEqual(f.Names(), wantF) {
		t.Errorf("field flag names got %v, want %v", f.Names(), wantF)
	}
}
