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
	"fmt"

	"github.com/sirupsen/logrus"
)

// FieldLogger logs a message followed by alternating key/value pairs.
type FieldLogger interface {
	Debug(msg string, kv ...interface{})
	Info(msg string, kv ...interface{})
	Warn(msg string, kv ...interface{})
	Error(msg string, kv ...interface{})
}

type namedLogger struct {
	logger *logrus.Logger
}

// NewFieldLogger returns a FieldLogger backed by the named logrus logger.
func NewFieldLogger(name string) FieldLogger {
	return &namedLogger{logger: NewLogger(name)}
}

func (l *namedLogger) Debug(msg string, kv ...interface{}) {
	l.logger.WithFields(toFields(kv)).Debug(msg)
}

func (l *namedLogger) Info(msg string, kv ...interface{}) {
	l.logger.WithFields(toFields(kv)).Info(msg)
}

func (l *namedLogger) Warn(msg string, kv ...interface{}) {
	l.logger.WithFields(toFields(kv)).Warn(msg)
}

func (l *namedLogger) Error(msg string, kv ...interface{}) {
	l.logger.WithFields(toFields(kv)).Error(msg)
}

// A trailing key without a value is kept under "EXTRA".
func toFields(kv []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if i+1 < len(kv) {
			fields[key] = kv[i+1]
		} else {
			fields["EXTRA"] = kv[i]
		}
	}
	return fields
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
