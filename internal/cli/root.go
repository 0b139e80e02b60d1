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

package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/tomoncle/datasource/catalog"
	"github.com/tomoncle/datasource/config"
	"github.com/tomoncle/datasource/database"
	"github.com/tomoncle/datasource/demo"
	"github.com/tomoncle/datasource/utils"
)

// RootOptions holds the global flags and the configuration they load.
type RootOptions struct {
	ConfigPath string
	Format     string // "table" | "json"

	Config *config.Config
}

var ValidFormats = []string{"table", "json"}

// NewRootCommand creates the dsquery command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dsquery",
		Short: "Query declarative data sources",
		Long: `dsquery binds request parameters to data sources declared in YAML
and prints their filtered, sorted and paginated results.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			opts.Config = cfg
			utils.ConfigureLogOutput(cmd.ErrOrStderr())
			utils.ConfigureConsoleLogFormat(cfg.Log.Format)
			utils.ConfigureLogLevel(cfg.Log.Level)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "configuration file (default ./config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "table", "output format (table|json)")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	return cmd
}

// openCatalog connects the configured database and returns a catalog
// over it. The returned func closes the connection.
func openCatalog(ctx context.Context, cfg *config.Config, createTables bool) (*catalog.Catalog, database.AbstractDatabaseManager, func(), error) {
	manager, err := database.Open(ctx, &cfg.Database, createTables)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	closeFn := func() {
		if err := database.Close(); err != nil {
			database.GetLogger().Error("Failed to close database", "error", err)
		}
	}
	c := catalog.New(cfg.DataSources, catalog.Drivers(manager)...)
	c.Use(demo.NewStatusExtension)
	return c, manager, closeFn, nil
}
