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

package demo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ds "github.com/tomoncle/datasource"
	"github.com/tomoncle/datasource/catalog"
	"github.com/tomoncle/datasource/config"
	"github.com/tomoncle/datasource/database"
)

func setup(t *testing.T) *catalog.Catalog {
	t.Helper()
	ctx := context.Background()
	cfg := database.DefaultConnectionConfig()
	cfg.Type = "sqlite"
	cfg.DBName = filepath.Join(t.TempDir(), "demo.db")
	manager := database.NewDatabaseManager(cfg)
	require.NoError(t, manager.Connect(ctx))
	t.Cleanup(func() { _ = manager.Disconnect() })
	require.NoError(t, manager.CreateTables(ctx))

	require.NoError(t, Seed(ctx, manager.GetDB()))
	require.NoError(t, Seed(ctx, manager.GetDB()))

	results, err := database.NewFixtureLoader(manager.GetDB(), "fixtures", "dev").Load(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)

	c := catalog.New(config.DataSourcesConfig{Dir: "datasources", DefaultMaxResults: 10}, catalog.Drivers(manager)...)
	c.Use(NewStatusExtension)
	return c
}

func titles(res ds.Result) []string {
	var out []string
	for _, a := range ds.Items[*Article](res) {
		out = append(out, a.Title)
	}
	return out
}

func TestArticleStatus(t *testing.T) {
	st, ok := ParseArticleStatus("Published")
	require.True(t, ok)
	assert.Equal(t, StatusPublished, st)
	st, ok = ParseArticleStatus("2")
	require.True(t, ok)
	assert.Equal(t, StatusArchived, st)
	_, ok = ParseArticleStatus("7")
	assert.False(t, ok)

	assert.Equal(t, "unknown", ArticleStatus(9).Name())
	assert.Equal(t, -1, ArticleStatus(9).Number())
}

func TestStatusNumbers(t *testing.T) {
	assert.Equal(t, 1, statusNumbers("published"))
	assert.Equal(t, []any{1, 0}, statusNumbers("published, draft"))
	assert.Equal(t, []any{2, "x"}, statusNumbers([]any{"archived", "x"}))
	assert.Equal(t, 5, statusNumbers(5))
}

func TestArticles(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	_, res, err := c.Query(ctx, "articles", nil)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Count())
	assert.Equal(t, []string{"Profiling with pprof", "Indexing strategies", "Connection pooling"}, titles(res))

	view, res, err := c.Query(ctx, "articles", ds.Parameters{"articles": map[string]any{
		"fields": map[string]any{"status": "published"},
		"page":   2,
	}})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Count())
	assert.Equal(t, []string{"HTTP keep-alive"}, titles(res))
	status, ok := view.Field("status")
	require.True(t, ok)
	assert.Equal(t, []string{"draft", "published", "archived"}, status.Attribute(AttributeChoices))

	_, res, err = c.Query(ctx, "articles", ds.Parameters{"articles": map[string]any{
		"fields": map[string]any{"status": "draft,archived", "title": "RE"},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Makefiles revisited", "Retry budgets"}, titles(res))

	_, res, err = c.Query(ctx, "articles", ds.Parameters{"articles": map[string]any{
		"fields": map[string]any{"category": "2"},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"HTTP keep-alive", "Retry budgets"}, titles(res))

	articles := ds.Items[*Article](res)
	assert.Equal(t, []string{"http"}, []string(articles[0].Tags))
	assert.EqualValues(t, 4, articles[0].Meta["reading_minutes"])
}

func TestProducts(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	_, res, err := c.Query(ctx, "products", nil)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Count())

	_, res, err = c.Query(ctx, "products", ds.Parameters{"products": map[string]any{
		"fields": map[string]any{"name": "TEA"},
	}})
	require.NoError(t, err)
	require.Equal(t, 3, res.Count())
	var names []string
	for _, item := range res.Items() {
		names = append(names, item.(map[string]any)["name"].(string))
	}
	assert.Equal(t, []string{"Black tea", "Green tea", "Tea kettle"}, names)
}

func TestLanguages(t *testing.T) {
	c := setup(t)
	_, res, err := c.Query(context.Background(), "languages", ds.Parameters{"languages": map[string]any{
		"fields": map[string]any{"year": "2000"},
	}})
	require.NoError(t, err)
	require.Equal(t, 2, res.Len())
	assert.Equal(t, "Python", res.Items()[0].(map[string]any)["name"])
}
