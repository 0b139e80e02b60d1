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
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/tomoncle/datasource/catalog"
	"github.com/tomoncle/datasource/render"
)

type definitionSummary struct {
	Name       string            `json:"name"`
	Driver     string            `json:"driver"`
	MaxResults int               `json:"max_results,omitempty"`
	Fields     map[string]string `json:"fields"`
}

func NewListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the declared data sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defs, err := catalog.New(opts.Config.DataSources).Definitions()
			if err != nil {
				return err
			}
			if opts.Format == "table" {
				return render.Definitions(cmd.OutOrStdout(), defs)
			}
			out := make([]definitionSummary, len(defs))
			for i, def := range defs {
				fields := make(map[string]string, len(def.Fields))
				for _, f := range def.Fields {
					fields[f.Name] = f.Type
				}
				out[i] = definitionSummary{Name: def.Name, Driver: def.Driver, MaxResults: def.MaxResults, Fields: fields}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
