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

package options

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Defaults(t *testing.T) {
	r := NewResolver().
		SetDefault("field", "title").
		SetDefault("auto_alias", true).
		SetDefined("default_sort")

	got, err := r.Resolve(map[string]any{"auto_alias": false})
	require.NoError(t, err)
	assert.Equal(t, "title", got["field"])
	assert.Equal(t, false, got["auto_alias"])
	_, ok := got["default_sort"]
	assert.False(t, ok)
}

func TestResolve_Undefined(t *testing.T) {
	r := NewResolver().SetDefault("field", "")
	_, err := r.Resolve(map[string]any{"nope": 1})
	assert.ErrorIs(t, err, ErrUndefinedOption)
	assert.Contains(t, err.Error(), "nope")
}

func TestResolve_Required(t *testing.T) {
	r := NewResolver().SetRequired("model")
	_, err := r.Resolve(nil)
	assert.ErrorIs(t, err, ErrMissingOption)

	got, err := r.Resolve(map[string]any{"model": "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", got["model"])
}

func TestResolve_AllowedValuesAndTypes(t *testing.T) {
	r := NewResolver().
		SetDefault("clause", "where").
		SetAllowedValues("clause", "where", "having").
		SetDefault("priority", 0).
		SetAllowedTypes("priority", "int")

	_, err := r.Resolve(map[string]any{"clause": "group"})
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = r.Resolve(map[string]any{"priority": "high"})
	assert.ErrorIs(t, err, ErrInvalidOption)

	got, err := r.Resolve(map[string]any{"clause": "having", "priority": 3})
	require.NoError(t, err)
	assert.Equal(t, "having", got["clause"])
}

func TestResolve_TypedNilPointer(t *testing.T) {
	type model struct{ ID int }
	r := NewResolver().
		SetRequired("model").
		SetAllowedTypes("model", "ptr", "struct", "string").
		SetDefault("query", nil).
		SetAllowedTypes("query", "nil", "func")

	got, err := r.Resolve(map[string]any{"model": (*model)(nil)})
	require.NoError(t, err)
	assert.Equal(t, (*model)(nil), got["model"])
	assert.Nil(t, got["query"])

	_, err = r.Resolve(map[string]any{"model": nil})
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestResolve_Normalizer(t *testing.T) {
	r := NewResolver().
		SetDefault("default_sort", nil).
		SetNormalizer("default_sort", func(resolved map[string]any, v any) (any, error) {
			if s, ok := v.(string); ok {
				return strings.ToLower(s), nil
			}
			return v, nil
		})

	got, err := r.Resolve(map[string]any{"default_sort": "DESC"})
	require.NoError(t, err)
	assert.Equal(t, "desc", got["default_sort"])
}

func TestDecode(t *testing.T) {
	var out struct {
		Field     string `mapstructure:"field"`
		AutoAlias bool   `mapstructure:"auto_alias"`
		Priority  int    `mapstructure:"priority"`
	}
	require.NoError(t, Decode(map[string]any{"field": "a.title", "auto_alias": "true", "priority": "2"}, &out))
	assert.Equal(t, "a.title", out.Field)
	assert.True(t, out.AutoAlias)
	assert.Equal(t, 2, out.Priority)
}
