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

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRequest(t *testing.T) {
	pr := NewDefaultPageRequest(0, 0)
	assert.Equal(t, 1, pr.GetPage())
	assert.Equal(t, DefaultPageSize, pr.GetPageSize())
	assert.Equal(t, 0, pr.GetOffset())

	pr = NewPageRequest(3, 4, []string{"title ASC"})
	assert.Equal(t, 8, pr.GetOffset())
	assert.Equal(t, 1, pr.GetPageCount(0))
	assert.Equal(t, 3, pr.GetPageCount(9))
	assert.Equal(t, []string{"title ASC"}, pr.GetOrders())
}

func TestPagination_PageCount(t *testing.T) {
	p := NewDefaultPagination[int](1, 5)
	assert.Empty(t, p.Items)
	p.Total = 11
	assert.Equal(t, 3, p.PageCount())
}

func TestJSONMap(t *testing.T) {
	v, err := JSONMap{"a": 1}.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, v)

	var m JSONMap
	require.NoError(t, m.Scan(`{"b":"x"}`))
	assert.Equal(t, JSONMap{"b": "x"}, m)
	require.NoError(t, m.Scan([]byte(`{"c":true}`)))
	assert.Equal(t, JSONMap{"c": true}, m)
	require.NoError(t, m.Scan(nil))
	assert.Empty(t, m)
	assert.Error(t, m.Scan(42))

	v, err = JSONMap(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestJSONList(t *testing.T) {
	var l JSONList
	require.NoError(t, l.Scan(`["go","sql"]`))
	assert.True(t, l.Contains("sql"))
	assert.False(t, l.Contains("http"))

	v, err := l.Value()
	require.NoError(t, err)
	assert.Equal(t, `["go","sql"]`, v)

	require.NoError(t, l.Scan(`["http"]`))
	assert.Equal(t, JSONList{"http"}, l)
}

type color int

func (c color) IsValid() bool  { return c >= 0 && c < 2 }
func (c color) Number() int    { return int(c) }
func (c color) String() string { return c.Name() }
func (c color) Desc() string   { return c.Name() }
func (c color) Name() string   { return [...]string{"red", "blue"}[c] }

func TestEnum(t *testing.T) {
	colors := []color{0, 1}
	c, ok := EnumByName(colors, "BLUE")
	require.True(t, ok)
	assert.Equal(t, color(1), c)
	_, ok = EnumByName(colors, "green")
	assert.False(t, ok)
	assert.Equal(t, []string{"red", "blue"}, EnumNames(colors))
}
