/*
 * Copyright 2025 SREDiag Authors
 * Copyright 2023 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package plugin

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/valyala/bytebufferpool"
)

type logger struct {
	name      string
	out       io.Writer
	callDepth int
}

var (
	internalLogger = &logger{"", os.Stdout, 3}
	level          atomic.Int32

	colors = []*color.Color{
		color.New(color.FgHiMagenta), // Trace
		color.New(color.FgHiGreen),   // Debug
		color.New(color.FgHiBlue),    // Info
		color.New(color.FgHiYellow),  // Warn
		color.New(color.FgHiRed),     // Error
	}

	levelName = []string{
		"Trace",
		"Debug",
		"Info",
		"Warn",
		"Error",
	}
)

const (
	levelTrace = iota
	levelDebug
	levelInfo
	levelWarn
	levelError
	levelNoPrint
)

func init() {
	level.Store(levelWarn)
	if os.Getenv("SHMEM_LOG_LEVEL") != "" {
		if n, err := strconv.Atoi(os.Getenv("SHMEM_LOG_LEVEL")); err == nil {
			if n <= levelNoPrint {
				level.Store(int32(n))
			}
		}
	}
}

// SetLogLevel used to change the internal logger's level and the default level is Warning.
// The process env `SHMEM_LOG_LEVEL` also could set log level
func SetLogLevel(l int) {
	if l <= levelNoPrint {
		level.Store(int32(l))
	}
}

// SetLogOutput redirects the internal logger, nil restores os.Stdout.
func SetLogOutput(out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	internalLogger.out = out
}

func newLogger(name string, out io.Writer) *logger {
	if out == nil {
		out = os.Stdout
	}
	return &logger{
		name:      name,
		out:       out,
		callDepth: 3,
	}
}

func (l *logger) enabled(lv int) bool {
	return int(level.Load()) <= lv
}

func (l *logger) write(lv int, msg string) {
	if _, err := fmt.Fprintln(l.out, colors[lv].Sprint(l.prefix(lv)+msg)); err != nil {
		fmt.Fprintf(os.Stderr, "logger %s failed: %v\n", levelName[lv], err)
	}
}

func (l *logger) errorf(format string, a ...interface{}) {
	if !l.enabled(levelError) {
		return
	}
	l.write(levelError, fmt.Sprintf(format, a...))
}

func (l *logger) error(v interface{}) {
	if !l.enabled(levelError) {
		return
	}
	l.write(levelError, fmt.Sprint(v))
}

func (l *logger) warnf(format string, a ...interface{}) {
	if !l.enabled(levelWarn) {
		return
	}
	l.write(levelWarn, fmt.Sprintf(format, a...))
}

func (l *logger) infof(format string, a ...interface{}) {
	if !l.enabled(levelInfo) {
		return
	}
	l.write(levelInfo, fmt.Sprintf(format, a...))
}

func (l *logger) info(v interface{}) {
	if !l.enabled(levelInfo) {
		return
	}
	l.write(levelInfo, fmt.Sprint(v))
}

func (l *logger) debugf(format string, a ...interface{}) {
	if !l.enabled(levelDebug) {
		return
	}
	l.write(levelDebug, fmt.Sprintf(format, a...))
}

func (l *logger) tracef(format string, a ...interface{}) {
	if !l.enabled(levelTrace) {
		return
	}
	l.write(levelTrace, fmt.Sprintf(format, a...))
}

func (l *logger) prefix(level int) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.WriteString(levelName[level])
	_ = buf.WriteByte(' ')
	_, _ = buf.WriteString(time.Now().Format("2006-01-02 15:04:05.999999"))
	_ = buf.WriteByte(' ')
	_, _ = buf.WriteString(l.location())
	_ = buf.WriteByte(' ')
	if l.name != "" {
		_, _ = buf.WriteString(l.name)
		_ = buf.WriteByte(' ')
	}
	return buf.String()
}

func (l *logger) location() string {
	_, file, line, ok := runtime.Caller(l.callDepth + 1)
	if !ok {
		file = "???"
		line = 0
	}
	file = filepath.Base(file)
	return file + ":" + strconv.Itoa(line)
}
