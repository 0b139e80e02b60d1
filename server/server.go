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
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	ds "github.com/tomoncle/datasource"
	"github.com/tomoncle/datasource/catalog"
	"github.com/tomoncle/datasource/config"
	"github.com/tomoncle/datasource/database"
	"github.com/tomoncle/datasource/render"
	"github.com/tomoncle/datasource/utils"
)

const shutdownTimeout = 10 * time.Second

// HealthFunc reports the health of the database behind the catalog.
type HealthFunc func(ctx context.Context) *database.HealthStatus

// Server exposes a catalog over HTTP:
//
//	GET /datasources          definitions of the catalog
//	GET /datasources/{name}   view and items of one data source
//	GET /health               database health
type Server struct {
	cfg     config.ServerConfig
	catalog *catalog.Catalog
	health  HealthFunc
	logger  utils.FieldLogger
	mux     *http.ServeMux
}

// New returns a server for cat. health may be nil when no database is
// configured.
func New(cfg config.ServerConfig, cat *catalog.Catalog, health HealthFunc) *Server {
	s := &Server{
		cfg:     cfg,
		catalog: cat,
		health:  health,
		logger:  utils.NewFieldLogger("SERVER"),
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /datasources", s.handleList)
	s.mux.HandleFunc("GET /datasources/{name}", s.handleQuery)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	return s
}

func (s *Server) SetLogger(logger utils.FieldLogger) { s.logger = logger }

// Handler returns the routes wrapped in the request id and access log
// middleware.
func (s *Server) Handler() http.Handler {
	return requestID(accessLog(s.logger, s.mux))
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("HTTP server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("HTTP server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type definitionSummary struct {
	Name       string   `json:"name"`
	Driver     string   `json:"driver"`
	MaxResults int      `json:"max_results"`
	Fields     []string `json:"fields"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	defs, err := s.catalog.Definitions()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]definitionSummary, 0, len(defs))
	for _, def := range defs {
		fields := make([]string, 0, len(def.Fields))
		for _, f := range def.Fields {
			fields = append(fields, f.Name)
		}
		out = append(out, definitionSummary{
			Name:       def.Name,
			Driver:     def.Driver,
			MaxResults: def.MaxResults,
			Fields:     fields,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleQuery binds the query string to the named data source. Keys may
// omit the data source prefix: ?fields[title]=go&page=2 reads as
// ?news[fields][title]=go&news[page]=2 for /datasources/news.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	params := QueryParameters(name, r.URL.Query())
	view, res, err := s.catalog.Query(r.Context(), name, params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, render.NewDocument(view, res))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]bool{"healthy": true})
		return
	}
	status := s.health(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusCode(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "path", r.URL.Path, "error", err, "request_id", RequestIDFromContext(r.Context()))
	}
	writeJSON(w, code, errorBody{Error: err.Error(), RequestID: RequestIDFromContext(r.Context())})
}

// StatusCode maps data source and database errors to HTTP statuses.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ds.ErrUnknownDataSource):
		return http.StatusNotFound
	case errors.Is(err, ds.ErrInvalidParameter),
		errors.Is(err, ds.ErrInvalidComparison),
		errors.Is(err, ds.ErrUnknownField):
		return http.StatusBadRequest
	}
	if ok, kind := database.ClassifyError(err); ok && kind.IsQueryError() {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
