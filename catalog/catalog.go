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
	"fmt"

	ds "github.com/tomoncle/datasource"
	"github.com/tomoncle/datasource/config"
	"github.com/tomoncle/datasource/database"
	"github.com/tomoncle/datasource/driver/collection"
	"github.com/tomoncle/datasource/driver/dbal"
	"github.com/tomoncle/datasource/driver/orm"
	"github.com/tomoncle/datasource/extension/configuration"
	"github.com/tomoncle/datasource/extension/ordering"
	"github.com/tomoncle/datasource/extension/pagination"
	"github.com/tomoncle/datasource/utils"
)

// Catalog opens the data sources declared in a definitions directory.
type Catalog struct {
	dir        string
	maxResults int
	drivers    *ds.DriverFactoryManager
	extensions []func() ds.Extension
	logger     utils.FieldLogger
}

// Drivers returns the driver factories available on manager's connection.
// The collection driver is always available; orm and dbal need a
// connected manager.
func Drivers(manager database.AbstractDatabaseManager) []ds.DriverFactory {
	factories := []ds.DriverFactory{collection.NewFactory()}
	if manager == nil || manager.GetDB() == nil {
		return factories
	}
	return append(factories, orm.NewFactory(manager.GetDB()), dbal.NewFactory(manager.GetSQLX()))
}

// New returns a catalog over cfg.Dir. Data sources without max_results
// get cfg.DefaultMaxResults.
func New(cfg config.DataSourcesConfig, drivers ...ds.DriverFactory) *Catalog {
	return &Catalog{
		dir:        cfg.Dir,
		maxResults: cfg.DefaultMaxResults,
		drivers:    ds.NewDriverFactoryManager(drivers...),
		logger:     ds.GetLogger(),
	}
}

// Definitions lists the definitions of the catalog, sorted by name.
func (c *Catalog) Definitions() ([]*config.Definition, error) {
	return config.Definitions(c.dir)
}

// Definition returns the named definition or ds.ErrUnknownDataSource.
func (c *Catalog) Definition(name string) (*config.Definition, error) {
	if !ds.ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ds.ErrUnknownDataSource, name)
	}
	path, ok := config.FindDefinition(c.dir, name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ds.ErrUnknownDataSource, name)
	}
	return config.LoadDefinition(path)
}

// NewFactory returns a factory carrying the configuration, ordering and
// pagination extensions. Extensions keep per data source state, so every
// request gets its own factory.
func (c *Catalog) NewFactory() *ds.Factory {
	f := ds.NewFactory(c.drivers,
		configuration.New(c.dir),
		ordering.New(),
		pagination.New(),
	)
	for _, newExt := range c.extensions {
		f.AddExtension(newExt())
	}
	return f
}

// Use adds an extension to every factory the catalog creates. newExt is
// called once per factory.
func (c *Catalog) Use(newExt func() ds.Extension) {
	c.extensions = append(c.extensions, newExt)
}

// Open creates the named data source in factory. Its fields are added
// when parameters are first bound.
func (c *Catalog) Open(factory *ds.Factory, name string) (*ds.DataSource, error) {
	def, err := c.Definition(name)
	if err != nil {
		return nil, err
	}
	if !c.drivers.HasFactory(def.Driver) {
		return nil, fmt.Errorf("data source %q: %w %q (available: %v)", name, ds.ErrUnknownDriver, def.Driver, c.drivers.Types())
	}
	source, err := factory.CreateDataSource(def.Driver, def.Options, name)
	if err != nil {
		return nil, err
	}
	maxResults := def.MaxResults
	if maxResults == 0 {
		maxResults = c.maxResults
	}
	source.SetMaxResults(maxResults)
	return source, nil
}

// Query binds params to the named data source of a fresh factory and
// returns its view and result.
func (c *Catalog) Query(ctx context.Context, name string, params ds.Parameters) (*ds.View, ds.Result, error) {
	source, err := c.Open(c.NewFactory(), name)
	if err != nil {
		return nil, nil, err
	}
	if err := source.BindParameters(ctx, params); err != nil {
		return nil, nil, err
	}
	res, err := source.Result(ctx)
	if err != nil {
		return nil, nil, err
	}
	view, err := source.CreateView(ctx)
	if err != nil {
		return nil, nil, err
	}
	c.logger.Info("Data source queried", "datasource", name, "count", res.Count(), "items", res.Len())
	return view, res, nil
}
