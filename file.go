// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jvm

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/mgtlake/jvm/log"
)

// A File represents an open class file.
type File struct {
	MinorVersion uint16       `json:"minor_version"`
	MajorVersion uint16       `json:"major_version"`
	ConstantPool ConstantPool `json:"constant_pool,omitempty"`
	Flags        uint16       `json:"access_flags"`
	ThisName     string       `json:"this_class"`
	SuperName    string       `json:"super_class"`
	Interfaces   []string     `json:"interfaces,omitempty"`
	Fields       []Field      `json:"fields,omitempty"`
	Methods      []Method     `json:"methods,omitempty"`
	Attributes   []Attribute  `json:"attributes,omitempty"`

	data   mmap.MMap
	pos    uint32
	size   uint32
	f      *os.File
	opts   *Options
	logger *log.Helper
}

// Options for loading and executing a class file.
type Options struct {

	// Trace the operand stack and locals after every interpreted
	// instruction, by default (false).
	Trace bool

	// Maximum invokestatic nesting depth, by default (MaxDefaultFrameDepth).
	MaxFrameDepth int

	// A custom logger.
	Logger log.Logger
}

// New instantiates a file instance with options given a file name.
func New(name string, opts *Options) (*File, error) {

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	// Memory map the file instead of using read/write.
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	file := File{}
	if opts != nil {
		file.opts = opts
	} else {
		file.opts = &Options{}
	}

	file.initOptions()
	file.data = data
	file.size = uint32(len(file.data))
	file.f = f
	return &file, nil
}

// NewBytes instantiates a file instance with options given a memory buffer.
func NewBytes(data []byte, opts *Options) (*File, error) {

	file := File{}
	if opts != nil {
		file.opts = opts
	} else {
		file.opts = &Options{}
	}

	file.initOptions()
	file.data = data
	file.size = uint32(len(file.data))
	return &file, nil
}

func (cf *File) initOptions() {
	if cf.opts.MaxFrameDepth == 0 {
		cf.opts.MaxFrameDepth = MaxDefaultFrameDepth
	}

	var logger log.Logger
	if cf.opts.Logger == nil {
		logger = log.NewStdLogger(os.Stdout)
		cf.logger = log.NewHelper(log.NewFilter(logger,
			log.FilterLevel(log.LevelError)))
	} else {
		cf.logger = log.NewHelper(cf.opts.Logger)
	}
}

// Close closes the File.
func (cf *File) Close() error {
	if cf.f != nil {
		_ = cf.data.Unmap()
		return cf.f.Close()
	}
	return nil
}

// Parse performs the file parsing for a class file. The layout is strictly
// sequential: magic, version, constant pool, access flags, this/super class,
// interfaces, fields, methods and finally the class attributes.
func (cf *File) Parse() error {

	// check for the smallest class file size.
	if len(cf.data) < TinyClassSize {
		return ErrInvalidClassSize
	}

	magic, err := cf.ReadUint32()
	if err != nil {
		return err
	}
	if magic != ClassMagic {
		// Per the format contract nothing else is read after a bad magic.
		return ErrBadMagic
	}

	if cf.MinorVersion, err = cf.ReadUint16(); err != nil {
		return err
	}
	if cf.MajorVersion, err = cf.ReadUint16(); err != nil {
		return err
	}
	cf.logger.Debugf("class file version %d.%d (%s)", cf.MajorVersion,
		cf.MinorVersion, JavaVersion(cf.MajorVersion))

	if err := cf.parseConstantPool(); err != nil {
		return err
	}

	if cf.Flags, err = cf.ReadUint16(); err != nil {
		return err
	}

	thisClass, err := cf.ReadUint16()
	if err != nil {
		return err
	}
	if cf.ThisName, err = cf.ConstantPool.ResolveUtf8(thisClass); err != nil {
		return err
	}

	superClass, err := cf.ReadUint16()
	if err != nil {
		return err
	}
	if superClass == 0 {
		// Only java/lang/Object has no superclass.
		cf.SuperName = ""
	} else {
		if cf.SuperName, err = cf.ConstantPool.ResolveUtf8(superClass); err != nil {
			return err
		}
	}

	if err := cf.parseInterfaces(); err != nil {
		return err
	}

	if err := cf.parseFields(); err != nil {
		return err
	}

	if err := cf.parseMethods(); err != nil {
		return err
	}

	if cf.Attributes, err = cf.parseAttributes(); err != nil {
		return err
	}

	return nil
}

func (cf *File) parseInterfaces() error {
	count, err := cf.ReadUint16()
	if err != nil {
		return err
	}

	cf.Interfaces = make([]string, 0, count)
	for i := uint16(0); i < count; i++ {
		index, err := cf.ReadUint16()
		if err != nil {
			return err
		}
		name, err := cf.ConstantPool.ResolveUtf8(index)
		if err != nil {
			return err
		}
		cf.Interfaces = append(cf.Interfaces, name)
	}
	return nil
}
