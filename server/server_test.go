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

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ds "github.com/tomoncle/datasource"
	"github.com/tomoncle/datasource/catalog"
	"github.com/tomoncle/datasource/config"
	"github.com/tomoncle/datasource/database"
	"github.com/tomoncle/datasource/utils"
)

const planets = `
driver: collection
max_results: 2
options:
  collection:
    - {name: Mercury, moons: 0}
    - {name: Venus, moons: 0}
    - {name: Earth, moons: 1}
    - {name: Mars, moons: 2}
fields:
  moons:
    type: number
    comparison: gte
`

func newServer(t *testing.T, health HealthFunc) http.Handler {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.yml"), []byte("driver: ["), 0o644))
	dir := filepath.Join(root, "definitions")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "planets.yml"), []byte(planets), 0o644))
	cat := catalog.New(config.DataSourcesConfig{Dir: dir, DefaultMaxResults: 10}, catalog.Drivers(nil)...)
	s := New(config.ServerConfig{Addr: ":0"}, cat, health)
	s.SetLogger(utils.NopLogger{})
	return s.Handler()
}

func get(t *testing.T, h http.Handler, target string, out any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec
}

func TestServer_List(t *testing.T) {
	var defs []definitionSummary
	rec := get(t, newServer(t, nil), "/datasources", &defs)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, defs, 1)
	assert.Equal(t, "planets", defs[0].Name)
	assert.Equal(t, "collection", defs[0].Driver)
	assert.Equal(t, 2, defs[0].MaxResults)
	assert.Equal(t, []string{"moons"}, defs[0].Fields)
}

type document struct {
	View struct {
		Name       string         `json:"name"`
		Attributes map[string]any `json:"attributes"`
	} `json:"view"`
	Count int              `json:"count"`
	Items []map[string]any `json:"items"`
}

func TestServer_Query(t *testing.T) {
	h := newServer(t, nil)

	var doc document
	rec := get(t, h, "/datasources/planets?fields[moons]=1&page=2", &doc)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "planets", doc.View.Name)
	assert.Equal(t, 2, doc.Count)
	assert.Empty(t, doc.Items)

	doc = document{}
	get(t, h, "/datasources/planets?planets[fields][moons]=0&planets[page]=2", &doc)
	assert.Equal(t, 4, doc.Count)
	require.Len(t, doc.Items, 2)
	assert.Equal(t, "Earth", doc.Items[0]["name"])
	assert.Equal(t, "Mars", doc.Items[1]["name"])
	assert.Equal(t, float64(2), doc.View.Attributes["page"])
}

func TestServer_Errors(t *testing.T) {
	h := newServer(t, nil)

	var body errorBody
	rec := get(t, h, "/datasources/moons", &body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, body.Error, "unknown data source")
	assert.Equal(t, rec.Header().Get(RequestIDHeader), body.RequestID)
	assert.NotEmpty(t, body.RequestID)

	rec = get(t, h, "/datasources/planets?fields[moons]=many", &body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_NamesOutsideDefinitions(t *testing.T) {
	h := newServer(t, nil)
	for _, target := range []string{"/datasources/..%2Fsecret", "/datasources/..%2Fmissing", "/datasources/planets.yml"} {
		var body errorBody
		rec := get(t, h, target, &body)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.NotContains(t, body.Error, "secret.yml", target)
		assert.NotContains(t, body.Error, "parse", target)
	}
}

func TestServer_RequestID(t *testing.T) {
	h := newServer(t, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/datasources", nil)
	req.Header.Set(RequestIDHeader, "abc")
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))
}

func TestServer_Health(t *testing.T) {
	var status database.HealthStatus
	rec := get(t, newServer(t, func(context.Context) *database.HealthStatus {
		return &database.HealthStatus{Healthy: false, LastError: "down"}
	}), "/health", &status)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "down", status.LastError)

	rec = get(t, newServer(t, nil), "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusCode(fmt.Errorf("x: %w", ds.ErrUnknownDataSource)))
	assert.Equal(t, http.StatusBadRequest, StatusCode(fmt.Errorf("x: %w", ds.ErrInvalidComparison)))
	assert.Equal(t, http.StatusBadRequest, StatusCode(errors.New("SQL logic error: no such column: foo (1)")))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("boom")))
}

func TestQueryParameters(t *testing.T) {
	values := url.Values{"fields[title]": {"go"}, "page": {"2"}}
	assert.Equal(t, ds.Parameters{"news": map[string]any{
		"fields": ds.Parameters{"title": "go"},
		"page":   "2",
	}}, QueryParameters("news", values))

	scoped := url.Values{"news[page]": {"3"}}
	assert.Equal(t, ds.Parameters{"news": ds.Parameters{"page": "3"}}, QueryParameters("news", scoped))
	assert.Empty(t, QueryParameters("news", url.Values{}))
}
