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

package datasource_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ds "github.com/tomoncle/datasource"
)

func TestParseQuery(t *testing.T) {
	values, err := url.ParseQuery("news[fields][title]=go&news[fields][id][]=1&news[fields][id][]=2&news[page]=3&q=x")
	require.NoError(t, err)

	params := ds.ParseQuery(values)
	title, ok := params.Get("news", "fields", "title")
	assert.True(t, ok)
	assert.Equal(t, "go", title)

	ids, _ := params.Get("news", "fields", "id")
	assert.Equal(t, []any{"1", "2"}, ids)

	page, _ := params.Get("news", "page")
	assert.Equal(t, "3", page)
	assert.Equal(t, "x", params["q"])

	_, ok = params.Get("news", "fields", "missing")
	assert.False(t, ok)
}

func TestParameters_EncodeRoundTrip(t *testing.T) {
	params := ds.Parameters{"news": map[string]any{
		"fields": map[string]any{"title": "go lang", "id": []any{"1", "2"}},
		"page":   2,
	}}
	encoded := params.Encode()
	assert.Equal(t, "news%5Bfields%5D%5Bid%5D%5B%5D=1&news%5Bfields%5D%5Bid%5D%5B%5D=2&news%5Bfields%5D%5Btitle%5D=go+lang&news%5Bpage%5D=2", encoded)

	values, err := url.ParseQuery(encoded)
	require.NoError(t, err)
	back := ds.ParseQuery(values)
	title, _ := back.Get("news", "fields", "title")
	assert.Equal(t, "go lang", title)
	page, _ := back.Get("news", "page")
	assert.Equal(t, "2", page)
}

func TestParameters_SetDeleteMerge(t *testing.T) {
	params := ds.Parameters{}
	params.Set([]string{"news", "fields", "title"}, "go")
	params.Set([]string{"news", "page"}, 2)

	params.Delete("news", "fields", "title")
	_, ok := params.Get("news", "fields")
	assert.False(t, ok, "empty maps are pruned")

	clone := params.Clone()
	clone.Set([]string{"news", "page"}, 5)
	page, _ := params.Get("news", "page")
	assert.Equal(t, 2, page)

	params.Merge(ds.Parameters{"news": map[string]any{"sort": "-title"}, "other": map[string]any{"page": 1}})
	assert.Equal(t, "-title", params.Sub("news")["sort"])
	assert.Equal(t, 2, params.Sub("news")["page"])
	assert.NotNil(t, params.Sub("other"))
	assert.Nil(t, params.Sub("missing"))
}

func TestIntParameter(t *testing.T) {
	n, ok := ds.IntParameter(" 4 ")
	assert.True(t, ok)
	assert.Equal(t, 4, n)
	n, ok = ds.IntParameter(float64(3))
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	_, ok = ds.IntParameter("x")
	assert.False(t, ok)

	n, ok = ds.IntParameter(uint8(7))
	assert.True(t, ok)
	assert.Equal(t, 7, n)
	n, ok = ds.IntParameter("-1")
	assert.True(t, ok)
	assert.Equal(t, -1, n)
	for _, v := range []any{nil, true, 2.5, "2.5", ""} {
		_, ok = ds.IntParameter(v)
		assert.False(t, ok, "%v", v)
	}
}
