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

package database

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

// SlowQueryHook logs queries running longer than a threshold. The
// BUNSLOW environment variable overrides it: "0" disables the hook.
type SlowQueryHook struct {
	fromEnv  string
	slowTime time.Duration
	logger   Logger
}

var _ bun.QueryHook = (*SlowQueryHook)(nil)

// NewSlowQueryHook returns a hook reporting queries slower than slowTime.
func NewSlowQueryHook(slowTime time.Duration, logger Logger) *SlowQueryHook {
	if logger == nil {
		logger = GetLogger()
	}
	return &SlowQueryHook{fromEnv: "BUNSLOW", slowTime: slowTime, logger: logger}
}

func (h *SlowQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *SlowQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if event.Err != nil || !h.enabled() {
		return
	}
	duration := time.Since(event.StartTime)
	if duration <= h.slowTime {
		return
	}
	h.logger.Warn("Slow query",
		"duration", duration.Round(time.Microsecond),
		"operation", event.Operation(),
		"query", colorizeQuery(event.Operation(), event.Query),
	)
}

func (h *SlowQueryHook) enabled() bool {
	env, ok := os.LookupEnv(h.fromEnv)
	if !ok {
		return true
	}
	return strings.TrimSpace(env) != "0"
}

func colorizeQuery(operation, query string) string {
	var c *color.Color
	switch operation {
	case "SELECT":
		c = color.New(color.FgGreen)
	case "INSERT":
		c = color.New(color.FgBlue)
	case "UPDATE":
		c = color.New(color.FgYellow)
	case "DELETE":
		c = color.New(color.FgMagenta)
	default:
		c = color.New(color.FgRed)
	}
	return c.Sprint(query)
}
