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
	"sync"

	ds "github.com/tomoncle/datasource"
	"github.com/tomoncle/datasource/event"
	"github.com/tomoncle/datasource/types"
)

// Parameters read from the data source's own parameters.
const (
	ParameterPage       = "page"
	ParameterMaxResults = "max_results"
)

// View attributes set on PostBuildView.
const (
	AttributeMaxResults      = "max_results"
	AttributePage            = "page"
	AttributePageCount       = "page_count"
	AttributeTotal           = "total"
	AttributeParametersPages = "parameters_pages"
)

type state struct {
	page       int
	maxResults int
	configured int
}

// Extension turns the "page" parameter into the first result of the data
// source and describes the pages on its view. It keeps state per data
// source name, so use one instance per factory.
type Extension struct {
	mu     sync.Mutex
	states map[string]state
}

func New() *Extension {
	return &Extension{states: make(map[string]state)}
}

func (e *Extension) DriverExtensions() []ds.DriverExtension { return nil }

func (e *Extension) Subscriptions() []event.Subscription {
	return []event.Subscription{
		{Event: ds.PreBindParameters, Priority: 0, Listener: e.preBind},
		{Event: ds.PostGetParameters, Priority: 0, Listener: e.postGetParameters},
		{Event: ds.PostBuildView, Priority: 0, Listener: e.postBuildView},
	}
}

func (e *Extension) state(name string) state {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.states[name]; ok {
		return s
	}
	return state{page: 1}
}

func (e *Extension) preBind(_ context.Context, evt any) error {
	pe := evt.(*ds.ParametersEvent)
	source := pe.DataSource
	own := pe.Parameters.Sub(source.Name())

	e.mu.Lock()
	prev, seen := e.states[source.Name()]
	e.mu.Unlock()
	s := state{page: 1, configured: source.MaxResults()}
	if seen {
		s.configured = prev.configured
	}
	if n, ok := ds.IntParameter(own[ParameterMaxResults]); ok && n > 0 {
		s.maxResults = n
		source.SetMaxResults(n)
	} else {
		source.SetMaxResults(s.configured)
	}
	if n, ok := ds.IntParameter(own[ParameterPage]); ok && n > 1 && source.MaxResults() > 0 {
		s.page = n
	}
	if source.MaxResults() > 0 {
		source.SetFirstResult(types.NewDefaultPageRequest(s.page, source.MaxResults()).GetOffset())
	} else {
		source.SetFirstResult(0)
	}

	e.mu.Lock()
	e.states[source.Name()] = s
	e.mu.Unlock()
	return nil
}

func (e *Extension) postGetParameters(_ context.Context, evt any) error {
	pe := evt.(*ds.ParametersEvent)
	name := pe.DataSource.Name()
	s := e.state(name)
	if s.page > 1 {
		pe.Parameters.Set([]string{name, ParameterPage}, s.page)
	}
	if s.maxResults > 0 {
		pe.Parameters.Set([]string{name, ParameterMaxResults}, s.maxResults)
	}
	return nil
}

func (e *Extension) postBuildView(ctx context.Context, evt any) error {
	ve := evt.(*ds.ViewEvent)
	source := ve.DataSource
	res, err := source.Result(ctx)
	if err != nil {
		return err
	}

	maxResults := source.MaxResults()
	page, pageCount := 1, 1
	if maxResults > 0 {
		pr := types.NewDefaultPageRequest(e.state(source.Name()).page, maxResults)
		page, pageCount = pr.GetPage(), pr.GetPageCount(res.Count())
	}

	all, err := source.AllParameters(ctx)
	if err != nil {
		return err
	}
	pages := make(map[int]ds.Parameters, pageCount)
	for p := 1; p <= pageCount; p++ {
		params := all.Clone()
		if p == 1 {
			params.Delete(source.Name(), ParameterPage)
		} else {
			params.Set([]string{source.Name(), ParameterPage}, p)
		}
		pages[p] = params
	}

	ve.View.SetAttribute(AttributeMaxResults, maxResults)
	ve.View.SetAttribute(AttributePage, page)
	ve.View.SetAttribute(AttributePageCount, pageCount)
	ve.View.SetAttribute(AttributeTotal, res.Count())
	ve.View.SetAttribute(AttributeParametersPages, pages)
	return nil
}
