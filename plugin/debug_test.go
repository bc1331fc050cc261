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
	"bytes"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DebugTestSuite struct {
	suite.Suite
	saved int32
}

func (s *DebugTestSuite) SetupTest() {
	s.saved = level.Load()
}

func (s *DebugTestSuite) TearDownTest() {
	level.Store(s.saved)
}

func (s *DebugTestSuite) TestLogColor() {
	SetLogLevel(levelTrace)

	internalLogger.tracef("this is tracef %s", "hello world")
	internalLogger.tracef("trace message")

	internalLogger.infof("this is infof %s", "hello world")
	internalLogger.info("this is info")

	internalLogger.debugf("this is debugf %s", "hello world")
	internalLogger.debugf("debug message")

	internalLogger.warnf("this is warnf %s", "hello world")
	internalLogger.warnf("warn message")

	internalLogger.errorf("this is errorf %s", "hello world")
	internalLogger.error("this is error")
}

func (s *DebugTestSuite) TestLevelFilter() {
	var buf bytes.Buffer
	l := newLogger("shmem1", &buf)

	SetLogLevel(levelWarn)
	l.debugf("hidden %d", 1)
	l.infof("hidden %d", 2)
	s.Empty(buf.String())

	l.warnf("shown %d", 3)
	s.Contains(buf.String(), "shown 3")
	s.Contains(buf.String(), "Warn")
	s.Contains(buf.String(), "shmem1")
	s.Contains(buf.String(), "debug_test.go:")
}

func (s *DebugTestSuite) TestNoPrint() {
	var buf bytes.Buffer
	l := newLogger("", &buf)

	SetLogLevel(levelNoPrint)
	l.errorf("nothing")
	s.Empty(buf.String())

	// out of range levels are ignored
	SetLogLevel(levelNoPrint + 1)
	s.Equal(int32(levelNoPrint), level.Load())
}

func TestDebugTestSuite(t *testing.T) {
	suite.Run(t, new(DebugTestSuite))
}
