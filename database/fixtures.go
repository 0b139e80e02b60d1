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
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/uptrace/bun"
)

// CommonEnvironment is the fixture directory loaded for every environment.
const CommonEnvironment = "common"

var fixtureOrder = regexp.MustCompile(`^(\d+)_`)

// FixtureLoader seeds a database from SQL files laid out as
//
//	<root>/common/NN_name.sql
//	<root>/environments/<env>/NN_name.sql
//
// Common files run first, each group by its numeric prefix. Every file
// runs in its own transaction and is rendered with text/template, so
// {{.ENVIRONMENT}} and environment variables can be referenced.
type FixtureLoader struct {
	db          *bun.DB
	root        string
	environment string
	logger      Logger
}

// FixtureFile describes a SQL file found by the loader.
type FixtureFile struct {
	Path        string
	Name        string
	Order       int
	Environment string
}

// ExecutionResult contains the outcome of executing a single SQL file.
type ExecutionResult struct {
	File         string
	Duration     time.Duration
	RowsAffected int64
	Statements   int
}

// NewFixtureLoader returns a loader reading root for environment.
func NewFixtureLoader(db *bun.DB, root, environment string) *FixtureLoader {
	return &FixtureLoader{
		db:          db,
		root:        root,
		environment: environment,
		logger:      GetLogger(),
	}
}

// Load executes every fixture file and stops at the first failure.
func (l *FixtureLoader) Load(ctx context.Context) ([]ExecutionResult, error) {
	files, err := l.Files()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		l.logger.Info("No fixture files found", "root", l.root, "environment", l.environment)
		return nil, nil
	}

	results := make([]ExecutionResult, 0, len(files))
	for _, file := range files {
		result, err := l.execute(ctx, file)
		if err != nil {
			l.logger.Error("Fixture file failed", "file", file.Path, "error", err)
			return results, fmt.Errorf("fixture %s: %w", file.Path, err)
		}
		l.logger.Info("Fixture file loaded",
			"file", result.File,
			"duration", result.Duration.String(),
			"rows_affected", result.RowsAffected,
		)
		results = append(results, result)
	}
	return results, nil
}

// Files lists the fixture files in execution order.
func (l *FixtureLoader) Files() ([]FixtureFile, error) {
	files, err := l.filesIn(filepath.Join(l.root, CommonEnvironment), CommonEnvironment)
	if err != nil {
		return nil, fmt.Errorf("failed to list common fixtures: %w", err)
	}
	if l.environment != "" {
		envFiles, err := l.filesIn(filepath.Join(l.root, "environments", l.environment), l.environment)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s fixtures: %w", l.environment, err)
		}
		files = append(files, envFiles...)
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Environment != files[j].Environment {
			return files[i].Environment == CommonEnvironment
		}
		if files[i].Order != files[j].Order {
			return files[i].Order < files[j].Order
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

func (l *FixtureLoader) filesIn(dir, environment string) ([]FixtureFile, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	var files []FixtureFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			return nil
		}
		files = append(files, FixtureFile{
			Path:        path,
			Name:        d.Name(),
			Order:       fileOrder(d.Name()),
			Environment: environment,
		})
		return nil
	})
	return files, err
}

func fileOrder(name string) int {
	if m := fixtureOrder.FindStringSubmatch(name); len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 999
}

func (l *FixtureLoader) execute(ctx context.Context, file FixtureFile) (ExecutionResult, error) {
	start := time.Now()
	result := ExecutionResult{File: file.Path}

	content, err := os.ReadFile(file.Path)
	if err != nil {
		return result, fmt.Errorf("failed to read file: %w", err)
	}
	rendered, err := l.render(string(content))
	if err != nil {
		return result, err
	}
	statements := SplitStatements(rendered)
	result.Statements = len(statements)

	err = l.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, stmt := range statements {
			res, err := tx.ExecContext(ctx, stmt)
			if err != nil {
				return fmt.Errorf("failed to execute %q: %w", stmt, err)
			}
			n, _ := res.RowsAffected()
			result.RowsAffected += n
		}
		return nil
	})
	result.Duration = time.Since(start)
	return result, err
}

func (l *FixtureLoader) render(content string) (string, error) {
	if !strings.Contains(content, "{{") {
		return content, nil
	}
	tmpl, err := template.New("fixture").Option("missingkey=zero").Parse(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	vars := make(map[string]string)
	for _, env := range os.Environ() {
		if k, v, ok := strings.Cut(env, "="); ok {
			vars[k] = v
		}
	}
	vars["ENVIRONMENT"] = l.environment

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// SplitStatements splits a SQL script into statements ending with ";".
// Blank lines and "--" comment lines are dropped.
func SplitStatements(content string) []string {
	var statements []string
	var current strings.Builder

	flush := func() {
		stmt := strings.TrimSpace(current.String())
		if stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString(" ")
		if strings.HasSuffix(line, ";") {
			flush()
		}
	}
	flush()
	return statements
}
