// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package log provides a leveled, pluggable logger for parse diagnostics and
// execution traces.
package log

import (
	"fmt"
	"io"
	"sync"
)

// Logger is the sink every log record goes through.
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

type stdLogger struct {
	w   io.Writer
	mu  sync.Mutex
	buf []byte
}

// NewStdLogger returns a logger writing one record per line to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{w: w}
}

// Log prints the keyvals to the writer, prefixed with the level.
func (l *stdLogger) Log(level Level, keyvals ...interface{}) error {
	if len(keyvals) == 0 {
		return nil
	}
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "KEYVALS UNPAIRED")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf = l.buf[:0]
	l.buf = append(l.buf, level.String()...)
	for i := 0; i < len(keyvals); i += 2 {
		l.buf = append(l.buf, ' ')
		l.buf = append(l.buf, fmt.Sprintf("%v=%v", keyvals[i], keyvals[i+1])...)
	}
	l.buf = append(l.buf, '\n')
	_, err := l.w.Write(l.buf)
	return err
}
