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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomoncle/datasource/database"
	"github.com/tomoncle/datasource/demo"
)

type SeedOptions struct {
	*RootOptions
	SkipDemo bool
}

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the model tables and load fixtures",
		Long: `Create the tables of the registered models, upsert the demo articles
and run the SQL fixtures of the configured environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, manager, closeFn, err := openCatalog(cmd.Context(), opts.Config, true)
			if err != nil {
				return err
			}
			defer closeFn()

			if !opts.SkipDemo {
				if err := demo.Seed(cmd.Context(), manager.GetDB()); err != nil {
					return err
				}
			}
			fixtures := opts.Config.Fixtures
			results, err := database.NewFixtureLoader(manager.GetDB(), fixtures.Dir, fixtures.Environment).Load(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d statements\n", r.File, r.Statements)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.SkipDemo, "skip-demo", false, "only run the SQL fixtures")
	return cmd
}
