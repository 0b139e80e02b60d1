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

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	demoDir, err := filepath.Abs(filepath.Join("..", "..", "demo"))
	require.NoError(t, err)
	content := fmt.Sprintf(`
log:
  level: error
database:
  type: sqlite
  dbname: %s
datasources:
  dir: %s
fixtures:
  dir: %s
  environment: dev
`, filepath.Join(dir, "cli.db"), filepath.Join(demoDir, "datasources"), filepath.Join(demoDir, "fixtures"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestQueryValues(t *testing.T) {
	values, err := queryValues([]string{"fields[title]=go&page=2"}, []string{"sort=-views", "fields[tag][]=a"})
	require.NoError(t, err)
	assert.Equal(t, "go", values.Get("fields[title]"))
	assert.Equal(t, "2", values.Get("page"))
	assert.Equal(t, "-views", values.Get("sort"))
	assert.Equal(t, []string{"a"}, values["fields[tag][]"])

	_, err = queryValues(nil, []string{"novalue"})
	assert.Error(t, err)
}

func TestRoot_InvalidFormat(t *testing.T) {
	_, err := run(t, "--config", writeConfig(t), "--format", "xml", "list")
	assert.ErrorContains(t, err, "invalid format")
}

func TestList(t *testing.T) {
	out, err := run(t, "--config", writeConfig(t), "--format", "json", "list")
	require.NoError(t, err)

	var defs []definitionSummary
	require.NoError(t, json.Unmarshal([]byte(out), &defs))
	require.Len(t, defs, 4)
	assert.Equal(t, "articles", defs[0].Name)
	assert.Equal(t, "orm", defs[0].Driver)
	assert.Equal(t, "number", defs[0].Fields["views"])

	out, err = run(t, "--config", writeConfig(t), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "languages")
}

func TestSeedAndQuery(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "01_products.sql: 3 statements")
	assert.Contains(t, out, "01_products.sql: 1 statements")

	out, err = run(t, "--config", cfg, "--format", "json", "query", "articles", "fields[status]=draft")
	require.NoError(t, err)
	var doc struct {
		Count int              `json:"count"`
		Items []map[string]any `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 1, doc.Count)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "Retry budgets", doc.Items[0]["title"])

	out, err = run(t, "--config", cfg, "query", "products", "-p", "fields[in_stock]=true", "-p", "sort=-price")
	require.NoError(t, err)
	assert.Contains(t, out, "Tea kettle")
	assert.Contains(t, out, "page 1/1, 4 of 4")
	assert.NotContains(t, out, "Black tea")

	_, err = run(t, "--config", cfg, "query", "missing")
	assert.ErrorContains(t, err, "unknown data source")
}
