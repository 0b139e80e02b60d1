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

package datasource

import (
	"sync"

	"github.com/tomoncle/datasource/utils"
)

var (
	globalLogger   utils.FieldLogger
	globalLoggerMu sync.RWMutex
)

// SetLogger replaces the logger used by data sources and drivers.
func SetLogger(l utils.FieldLogger) {
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	globalLogger = l
}

// GetLogger returns the logger shared by data sources and drivers,
// defaulting to the "DATASOURCE" logrus logger.
func GetLogger() utils.FieldLogger {
	globalLoggerMu.RLock()
	l := globalLogger
	globalLoggerMu.RUnlock()
	if l != nil {
		return l
	}
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	if globalLogger == nil {
		globalLogger = utils.NewFieldLogger("DATASOURCE")
	}
	return globalLogger
}
