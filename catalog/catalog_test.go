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

package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ds "github.com/tomoncle/datasource"
	"github.com/tomoncle/datasource/config"
	"github.com/tomoncle/datasource/database"
	"github.com/tomoncle/datasource/extension/pagination"
)

const fruits = `
driver: collection
max_results: 2
options:
  collection:
    - {name: apple, color: red, price: 3}
    - {name: banana, color: yellow, price: 1}
    - {name: cherry, color: red, price: 5}
    - {name: plum, color: red, price: 4}
fields:
  color:
    type: text
    comparison: eq
  price:
    type: number
    comparison: between
    options:
      default_sort: desc
`

const products = `
driver: dbal
options:
  table: products
  alias: p
fields:
  name:
    type: text
    comparison: contains
  stock:
    type: number
    comparison: gt
`

func newCatalog(t *testing.T, manager database.AbstractDatabaseManager, files map[string]string) *Catalog {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return New(config.DataSourcesConfig{Dir: dir, DefaultMaxResults: 10}, Drivers(manager)...)
}

func TestCatalog_QueryCollection(t *testing.T) {
	c := newCatalog(t, nil, map[string]string{"fruits.yml": fruits})

	view, res, err := c.Query(context.Background(), "fruits", ds.Parameters{
		"fruits": map[string]any{"fields": map[string]any{"color": "red"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count())
	require.Equal(t, 2, res.Len())
	assert.Equal(t, "cherry", res.Items()[0].(map[string]any)["name"])
	assert.Equal(t, "plum", res.Items()[1].(map[string]any)["name"])

	assert.Equal(t, 2, view.Attribute(pagination.AttributePageCount))
	assert.Len(t, view.Fields(), 2)
}

func TestCatalog_Definitions(t *testing.T) {
	c := newCatalog(t, nil, map[string]string{"fruits.yml": fruits, "products.yml": products})
	defs, err := c.Definitions()
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "fruits", defs[0].Name)

	_, _, err = c.Query(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, ds.ErrUnknownDataSource)

	for _, name := range []string{"../fruits", "fruits.yml", ""} {
		_, err = c.Definition(name)
		assert.ErrorIs(t, err, ds.ErrUnknownDataSource, name)
	}

	_, _, err = c.Query(context.Background(), "products", nil)
	assert.ErrorIs(t, err, ds.ErrUnknownDriver)
}

func TestCatalog_OpenDefaultMaxResults(t *testing.T) {
	c := newCatalog(t, nil, map[string]string{"plain.yml": "driver: collection\noptions:\n  collection: [1, 2]\n"})
	source, err := c.Open(c.NewFactory(), "plain")
	require.NoError(t, err)
	assert.Equal(t, 10, source.MaxResults())
}

func TestCatalog_QueryDBAL(t *testing.T) {
	cfg := database.DefaultConnectionConfig()
	cfg.Type = "sqlite"
	cfg.DBName = filepath.Join(t.TempDir(), "catalog.db")
	manager := database.NewDatabaseManager(cfg)
	require.NoError(t, manager.Connect(context.Background()))
	t.Cleanup(func() { _ = manager.Disconnect() })

	db := manager.GetSQLX()
	db.MustExec("CREATE TABLE products (id INTEGER PRIMARY KEY, name TEXT, stock INTEGER)")
	db.MustExec("INSERT INTO products (name, stock) VALUES ('Green tea', 4), ('Black tea', 0), ('Coffee', 9)")

	c := newCatalog(t, manager, map[string]string{"products.yml": products})
	_, res, err := c.Query(context.Background(), "products", ds.Parameters{
		"products": map[string]any{"fields": map[string]any{"name": "TEA", "stock": "1"}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Count())
	assert.Equal(t, "Green tea", res.Items()[0].(map[string]any)["name"])
}
