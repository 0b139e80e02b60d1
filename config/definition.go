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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Extensions of data source definition files, in lookup order.
var definitionExtensions = []string{".yml", ".yaml"}

// Definition names are data source names and never contain separators.
var definitionName = regexp.MustCompile(`^\w+$`)

// FieldDefinition declares one field of a data source.
type FieldDefinition struct {
	Name       string         `yaml:"-"`
	Type       string         `yaml:"type"`
	Comparison string         `yaml:"comparison"`
	Options    map[string]any `yaml:"options"`
}

// Definition is a data source declared in YAML:
//
//	driver: orm
//	options:
//	  model: article
//	max_results: 10
//	fields:
//	  title:
//	    type: text
//	    comparison: contains
//
// Fields keep the order of the file.
type Definition struct {
	Name       string            `yaml:"name"`
	Driver     string            `yaml:"driver"`
	Options    map[string]any    `yaml:"options"`
	MaxResults int               `yaml:"max_results"`
	Fields     []FieldDefinition `yaml:"-"`
}

func (d *Definition) UnmarshalYAML(node *yaml.Node) error {
	type plain Definition
	var raw struct {
		plain  `yaml:",inline"`
		Fields yaml.Node `yaml:"fields"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*d = Definition(raw.plain)

	if raw.Fields.Kind == 0 {
		return nil
	}
	if raw.Fields.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: fields must be a mapping", raw.Fields.Line)
	}
	for i := 0; i+1 < len(raw.Fields.Content); i += 2 {
		var fd FieldDefinition
		if err := raw.Fields.Content[i+1].Decode(&fd); err != nil {
			return fmt.Errorf("field %q: %w", raw.Fields.Content[i].Value, err)
		}
		fd.Name = raw.Fields.Content[i].Value
		d.Fields = append(d.Fields, fd)
	}
	return nil
}

// LoadDefinition parses the definition file at path. The name defaults
// to the file name without extension.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file: %w", err)
	}
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse definition file %s: %w", path, err)
	}
	if def.Name == "" {
		def.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &def, nil
}

// FindDefinition returns the path of <dir>/<name>.yml or .yaml. Names
// that are not data source names are never found.
func FindDefinition(dir, name string) (string, bool) {
	if !definitionName.MatchString(name) {
		return "", false
	}
	for _, ext := range definitionExtensions {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// Definitions loads every definition file of dir, sorted by name. A
// missing directory yields no definitions.
func Definitions(dir string) ([]*Definition, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var defs []*Definition
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yml" && ext != ".yaml") {
			continue
		}
		def, err := LoadDefinition(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs, nil
}
