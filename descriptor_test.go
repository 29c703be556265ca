// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jvm

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseMethodDescriptor(t *testing.T) {

	tests := []struct {
		in  string
		out MethodDescriptor
	}{
		{
			"()V",
			MethodDescriptor{Void: true},
		},
		{
			"(IJ)V",
			MethodDescriptor{
				Args: []FieldDescriptor{{Type: TypeInt}, {Type: TypeLong}},
				Void: true,
			},
		},
		{
			"(II)I",
			MethodDescriptor{
				Args:   []FieldDescriptor{{Type: TypeInt}, {Type: TypeInt}},
				Return: FieldDescriptor{Type: TypeInt},
			},
		},
		{
			"(Ljava/lang/String;Z)D",
			MethodDescriptor{
				Args: []FieldDescriptor{
					{Type: TypeObject, ClassName: "java/lang/String"},
					{Type: TypeBool},
				},
				Return: FieldDescriptor{Type: TypeDouble},
			},
		},
		{
			"([[I)[Ljava/lang/Object;",
			MethodDescriptor{
				Args: []FieldDescriptor{
					{Type: TypeArray, Element: &FieldDescriptor{
						Type: TypeArray, Element: &FieldDescriptor{Type: TypeInt}}},
				},
				Return: FieldDescriptor{Type: TypeArray, Element: &FieldDescriptor{
					Type: TypeObject, ClassName: "java/lang/Object"}},
			},
		},
		{
			"(BCDFIJSZ)S",
			MethodDescriptor{
				Args: []FieldDescriptor{
					{Type: TypeByte}, {Type: TypeChar}, {Type: TypeDouble},
					{Type: TypeFloat}, {Type: TypeInt}, {Type: TypeLong},
					{Type: TypeShort}, {Type: TypeBool},
				},
				Return: FieldDescriptor{Type: TypeShort},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMethodDescriptor(tt.in)
			if err != nil {
				t.Fatalf("ParseMethodDescriptor(%s) failed, reason: %v", tt.in, err)
			}
			if !reflect.DeepEqual(got, tt.out) {
				t.Errorf("ParseMethodDescriptor(%s) got %+v, want %+v", tt.in, got, tt.out)
			}
		})
	}
}

func TestParseMethodDescriptorMalformed(t *testing.T) {
	malformed := []string{
		"",
		"IJ)V",
		"(IJ",
		"(IJ)",
		"(X)V",
		"(Ljava/lang/String)V",
		"([)V",
		"()VV",
		"()II",
	}

	for _, in := range malformed {
		if _, err := ParseMethodDescriptor(in); !errors.Is(err, ErrBadDescriptor) {
			t.Errorf("ParseMethodDescriptor(%q) got %v, want ErrBadDescriptor", in, err)
		}
	}
}

func TestNumArgsCountsDescriptors(t *testing.T) {
	// Wide types count once each; slot counting is out of scope.
	md, err := ParseMethodDescriptor("(IJD)V")
	if err != nil {
		t.Fatalf("ParseMethodDescriptor failed, reason: %v", err)
	}
	m := Method{Signature: md}
	if m.NumArgs() != 3 {
		t.Errorf("NumArgs got %d, want 3", m.NumArgs())
	}
}
