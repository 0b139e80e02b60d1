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
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomoncle/datasource/render"
	"github.com/tomoncle/datasource/server"
)

type QueryOptions struct {
	*RootOptions
	Params []string
}

func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <name> [query-string]",
		Short: "Query one data source",
		Long: `Bind parameters to a data source and print its result.

Parameters use bracket notation and may omit the data source prefix:
  dsquery query articles 'fields[status]=published&page=2'
  dsquery query articles -p fields[title]=pool -p sort=-views --format json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := queryValues(args[1:], opts.Params)
			if err != nil {
				return err
			}
			c, _, closeFn, err := openCatalog(cmd.Context(), opts.Config, false)
			if err != nil {
				return err
			}
			defer closeFn()

			name := args[0]
			view, res, err := c.Query(cmd.Context(), name, server.QueryParameters(name, values))
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return render.JSON(cmd.OutOrStdout(), view, res)
			}
			return render.Table(cmd.OutOrStdout(), view, res)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "parameter as key=value, repeatable")
	return cmd
}

func queryValues(raw []string, params []string) (url.Values, error) {
	values := url.Values{}
	if len(raw) > 0 {
		parsed, err := url.ParseQuery(raw[0])
		if err != nil {
			return nil, fmt.Errorf("invalid query string: %w", err)
		}
		values = parsed
	}
	for _, p := range params {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected key=value", p)
		}
		values.Add(key, value)
	}
	return values, nil
}
