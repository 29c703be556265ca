// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package log

import (
	"fmt"
	"os"
)

// MessageKey is the default message key.
const MessageKey = "msg"

// Helper is a sprintf-style front over a Logger.
type Helper struct {
	logger Logger
}

// NewHelper returns a helper bound to the given logger.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

func (h *Helper) log(level Level, format string, a ...interface{}) {
	_ = h.logger.Log(level, MessageKey, fmt.Sprintf(format, a...))
}

// Debugf logs a message at debug level.
func (h *Helper) Debugf(format string, a ...interface{}) {
	h.log(LevelDebug, format, a...)
}

// Infof logs a message at info level.
func (h *Helper) Infof(format string, a ...interface{}) {
	h.log(LevelInfo, format, a...)
}

// Warnf logs a message at warn level.
func (h *Helper) Warnf(format string, a ...interface{}) {
	h.log(LevelWarn, format, a...)
}

// Errorf logs a message at error level.
func (h *Helper) Errorf(format string, a ...interface{}) {
	h.log(LevelError, format, a...)
}

// Fatalf logs a message at fatal level and exits.
func (h *Helper) Fatalf(format string, a ...interface{}) {
	h.log(LevelFatal, format, a...)
	os.Exit(1)
}
