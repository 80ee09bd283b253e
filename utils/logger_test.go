/*
 * Copyright 2025 tomoncle.
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

package utils

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLogLevel(" DEBUG "))
	assert.Equal(t, logrus.WarnLevel, ParseLogLevel("warning"))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel("bogus"))
}

func TestNewLoggerIsRegisteredOnce(t *testing.T) {
	a := NewLogger("TEST_ONCE")
	b := NewLogger("TEST_ONCE")
	assert.Same(t, a, b)
	assert.True(t, SetLoggerLevel("TEST_ONCE", "error"))
	assert.Equal(t, logrus.ErrorLevel, a.GetLevel())
	assert.False(t, SetLoggerLevel("TEST_MISSING", "error"))
}

func TestTextFormatterIncludesFields(t *testing.T) {
	f := &Log4jColorFormatter{LoggerName: "REPO", NameWidth: 10, CallerWidth: 25}
	entry := &logrus.Entry{
		Time:    time.Now(),
		Level:   logrus.InfoLevel,
		Message: "flushed",
		Data:    logrus.Fields{"rows": 3, "entity": "Member"},
	}
	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Contains(t, string(out), "flushed entity=Member rows=3")
}

func TestJSONFormatter(t *testing.T) {
	f := &JSONLogFormatter{LoggerName: "REPO"}
	entry := &logrus.Entry{
		Time:    time.Now(),
		Level:   logrus.WarnLevel,
		Message: "slow",
		Data:    logrus.Fields{"err": assert.AnError},
	}
	out, err := f.Format(entry)
	require.NoError(t, err)

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out), &rec))
	assert.Equal(t, "warning", rec["level"])
	assert.Equal(t, "REPO", rec["logger"])
	assert.Equal(t, assert.AnError.Error(), rec["fields"].(map[string]interface{})["err"])
}

func TestDotPathCompact(t *testing.T) {
	assert.Equal(t, "datarepo.repository/base.go", dotPathCompact("/src/datarepo/repository/base.go", 0))
	assert.Equal(t, "ory/base.go", dotPathCompact("/src/datarepo/repository/base.go", 11))
}

func TestEnvDefaultString(t *testing.T) {
	t.Setenv("DATAREPO_TEST_SET", "y")
	assert.Equal(t, "y", EnvDefaultString("DATAREPO_TEST_SET", "x"))
	assert.Equal(t, "x", EnvDefaultString("DATAREPO_TEST_UNSET", "x"))
}
