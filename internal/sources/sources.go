// Package sources emits the dbt-style manifest files for a conversion
// run: sources.yml for external tables and model_refs.yml for
// model-to-model dependencies, plus the ref/source macro injection into
// converted SQL.
package sources

import (
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/lawrenceadams/sam-converter/pkg/extract"
)

// SourceTable is one table under a source group.
type SourceTable struct {
	Name       string `yaml:"name"`
	Identifier string `yaml:"identifier,omitempty"`
}

// SourceGroup is one (database, schema) group in sources.yml.
type SourceGroup struct {
	Name     string        `yaml:"name"`
	Database string        `yaml:"database,omitempty"`
	Schema   string        `yaml:"schema,omitempty"`
	Tables   []SourceTable `yaml:"tables"`
}

// sourcesFile is the document shape of sources.yml.
type sourcesFile struct {
	Version int           `yaml:"version"`
	Sources []SourceGroup `yaml:"sources"`
}

// GroupName derives the dbt source name for a qualification pair:
// database and schema joined with an underscore and lowercased, or
// unknown_source when both are blank.
func GroupName(database, schema string) string {
	parts := make([]string, 0, 2)
	if database != "" {
		parts = append(parts, database)
	}
	if schema != "" {
		parts = append(parts, schema)
	}
	if len(parts) == 0 {
		return "unknown_source"
	}
	return strings.ToLower(strings.Join(parts, "_"))
}

// BuildSources groups external references by (database, schema) and
// renders sources.yml. Tables sort within each group and groups sort by
// name. A mixed-case table gets a lowercased name with its original
// spelling as identifier; all-lowercase and all-uppercase spellings
// are kept as-is with no identifier.
func BuildSources(refs []extract.QualifiedName) ([]byte, error) {
	type groupKey struct{ db, schema string }

	groups := make(map[groupKey]map[string]struct{})
	for _, ref := range refs {
		key := groupKey{db: strings.ToLower(ref.Database), schema: strings.ToLower(ref.Schema)}
		if groups[key] == nil {
			groups[key] = make(map[string]struct{})
		}
		groups[key][ref.Table] = struct{}{}
	}

	doc := sourcesFile{Version: 2}
	for key, tables := range groups {
		group := SourceGroup{
			Name:     GroupName(key.db, key.schema),
			Database: key.db,
			Schema:   key.schema,
		}
		for name := range tables {
			table := SourceTable{Name: name}
			if mixedCase(name) {
				table.Name = strings.ToLower(name)
				table.Identifier = name
			}
			group.Tables = append(group.Tables, table)
		}
		sort.Slice(group.Tables, func(i, j int) bool {
			return strings.ToLower(group.Tables[i].Name) < strings.ToLower(group.Tables[j].Name)
		})
		doc.Sources = append(doc.Sources, group)
	}

	sort.Slice(doc.Sources, func(i, j int) bool {
		a, b := doc.Sources[i], doc.Sources[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Database != b.Database {
			return a.Database < b.Database
		}
		return a.Schema < b.Schema
	})

	return yaml.Marshal(doc)
}

// mixedCase reports whether name mixes upper and lower case letters.
func mixedCase(name string) bool {
	var upper, lower bool
	for _, r := range name {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		}
	}
	return upper && lower
}
