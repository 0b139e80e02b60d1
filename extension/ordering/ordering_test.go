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

package ordering

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ds "github.com/tomoncle/datasource"
	"github.com/tomoncle/datasource/driver/collection"
	"github.com/tomoncle/datasource/extension/pagination"
)

type city struct {
	Name       string
	Country    string
	Population int
}

func cities() []city {
	return []city{
		{"Lyon", "FR", 513},
		{"Berlin", "DE", 3645},
		{"Paris", "FR", 2161},
		{"Munich", "DE", 1472},
		{"Nice", "FR", 342},
	}
}

func newCities(t *testing.T) (*ds.DataSource, *Extension) {
	t.Helper()
	ext := New()
	factory := ds.NewFactory(ds.NewDriverFactoryManager(collection.NewFactory()), ext, pagination.New())
	source, err := factory.CreateDataSource(collection.DriverType, map[string]any{collection.OptionCollection: cities()}, "cities")
	require.NoError(t, err)
	_, err = source.AddField("name", "text", ds.Contains, map[string]any{OptionDefaultSort: Asc})
	require.NoError(t, err)
	_, err = source.AddField("country", "text", ds.Eq, map[string]any{OptionDefaultSort: Desc, OptionDefaultSortPriority: 5})
	require.NoError(t, err)
	_, err = source.AddField("population", "number", ds.Gte, nil)
	require.NoError(t, err)
	_, err = source.AddField("secret", "text", ds.Eq, map[string]any{OptionSortable: false})
	require.NoError(t, err)
	return source, ext
}

func names(t *testing.T, source *ds.DataSource, params map[string]any) []string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, source.BindParameters(ctx, ds.Parameters{"cities": params}))
	res, err := source.Result(ctx)
	require.NoError(t, err)
	var out []string
	for _, c := range ds.Items[city](res) {
		out = append(out, c.Name)
	}
	return out
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, []Sort{{"a", false}, {"b", true}, {"c", false}}, ParseSort(" a ,-b,+c,"))
	assert.Equal(t, []Sort{{"x", true}}, ParseSort([]any{"-x"}))
	assert.Equal(t, []Sort{{"a", true}, {"b", false}}, ParseSort(ds.Parameters{"b": "asc", "a": "DESC"}))
	assert.Nil(t, ParseSort(nil))
	assert.Equal(t, "a,-b", FormatSort([]Sort{{"a", false}, {"b", true}}))
}

func TestExtension_DefaultSorts(t *testing.T) {
	source, _ := newCities(t)
	// country desc (priority 5) first, then name asc
	assert.Equal(t, []string{"Lyon", "Nice", "Paris", "Berlin", "Munich"}, names(t, source, nil))
}

func TestExtension_BoundSorts(t *testing.T) {
	source, ext := newCities(t)
	got := names(t, source, map[string]any{"sort": "-population,unknown,secret,-population"})
	assert.Equal(t, []Sort{{Field: "population", Desc: true}}, ext.Sorts("cities"))
	assert.Equal(t, []string{"Berlin", "Paris", "Munich", "Lyon", "Nice"}, got)

	params, err := source.Parameters(context.Background())
	require.NoError(t, err)
	sortParam, _ := params.Get("cities", ParameterSort)
	assert.Equal(t, "-population", sortParam)
}

func TestExtension_FieldViewAttributes(t *testing.T) {
	source, _ := newCities(t)
	source.SetMaxResults(2)
	assert.Equal(t, []string{"Munich", "Nice"}, names(t, source, map[string]any{"sort": "name", "page": 2}))

	view, err := source.CreateView(context.Background())
	require.NoError(t, err)

	name, ok := view.Field("name")
	require.True(t, ok)
	assert.Equal(t, true, name.Attribute(AttributeSortable))
	assert.Equal(t, true, name.Attribute(AttributeSortedAscending))
	assert.Equal(t, false, name.Attribute(AttributeSortedDescending))

	desc := name.Attribute(AttributeParametersSortDescending).(ds.Parameters)
	sortParam, _ := desc.Get("cities", ParameterSort)
	assert.Equal(t, "-name", sortParam)

	pop, _ := view.Field("population")
	asc := pop.Attribute(AttributeParametersSortAscending).(ds.Parameters)
	sortParam, _ = asc.Get("cities", ParameterSort)
	assert.Equal(t, "population,name", sortParam)
	_, hasPage := asc.Get("cities", pagination.ParameterPage)
	assert.False(t, hasPage)

	secret, _ := view.Field("secret")
	assert.Equal(t, false, secret.Attribute(AttributeSortable))
	assert.False(t, secret.HasAttribute(AttributeSortedAscending))
}
