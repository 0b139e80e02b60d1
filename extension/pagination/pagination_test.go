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

package pagination

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ds "github.com/tomoncle/datasource"
	"github.com/tomoncle/datasource/driver/collection"
)

func numbers(n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{"n": i + 1}
	}
	return out
}

func newSource(t *testing.T, maxResults int) *ds.DataSource {
	t.Helper()
	factory := ds.NewFactory(ds.NewDriverFactoryManager(collection.NewFactory()), New())
	source, err := factory.CreateDataSource(collection.DriverType, map[string]any{collection.OptionCollection: numbers(7)}, "nums")
	require.NoError(t, err)
	_, err = source.AddField("n", "number", ds.Gte, nil)
	require.NoError(t, err)
	source.SetMaxResults(maxResults)
	return source
}

func bind(t *testing.T, source *ds.DataSource, params map[string]any) []int {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, source.BindParameters(ctx, ds.Parameters{"nums": params}))
	res, err := source.Result(ctx)
	require.NoError(t, err)
	var out []int
	for _, item := range ds.Items[map[string]any](res) {
		out = append(out, item["n"].(int))
	}
	return out
}

func TestExtension_Page(t *testing.T) {
	source := newSource(t, 3)
	assert.Equal(t, []int{1, 2, 3}, bind(t, source, nil))
	assert.Equal(t, []int{4, 5, 6}, bind(t, source, map[string]any{"page": "2"}))
	assert.Equal(t, 3, source.FirstResult())
	assert.Equal(t, []int{7}, bind(t, source, map[string]any{"page": 3}))
	assert.Equal(t, []int{1, 2, 3}, bind(t, source, map[string]any{"page": "-1"}))
}

func TestExtension_MaxResultsOverride(t *testing.T) {
	source := newSource(t, 3)
	assert.Equal(t, []int{5, 6, 7}, bind(t, source, map[string]any{"page": 2, "max_results": "4"}))

	params, err := source.Parameters(context.Background())
	require.NoError(t, err)
	page, _ := params.Get("nums", ParameterPage)
	assert.Equal(t, 2, page)
	maxParam, _ := params.Get("nums", ParameterMaxResults)
	assert.Equal(t, 4, maxParam)

	// the configured size comes back once the override is gone
	assert.Equal(t, []int{1, 2, 3}, bind(t, source, nil))
	params, err = source.Parameters(context.Background())
	require.NoError(t, err)
	_, ok := params.Get("nums", ParameterMaxResults)
	assert.False(t, ok)
}

func TestExtension_Unlimited(t *testing.T) {
	source := newSource(t, 0)
	assert.Len(t, bind(t, source, map[string]any{"page": 3}), 7)
	assert.Equal(t, 0, source.FirstResult())
}

func TestExtension_View(t *testing.T) {
	source := newSource(t, 2)
	bind(t, source, map[string]any{"page": 2, "fields": map[string]any{"n": "2"}})

	view, err := source.CreateView(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, view.Attribute(AttributeMaxResults))
	assert.Equal(t, 2, view.Attribute(AttributePage))
	assert.Equal(t, 3, view.Attribute(AttributePageCount))
	assert.Equal(t, 6, view.Attribute(AttributeTotal))

	pages := view.Attribute(AttributeParametersPages).(map[int]ds.Parameters)
	require.Len(t, pages, 3)
	_, ok := pages[1].Get("nums", ParameterPage)
	assert.False(t, ok)
	page, _ := pages[3].Get("nums", ParameterPage)
	assert.Equal(t, 3, page)
	n, _ := pages[3].Get("nums", "fields", "n")
	assert.Equal(t, "2", n)
}
