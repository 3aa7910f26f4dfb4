package engine

import (
	"sort"
	"strings"

	"github.com/lawrenceadams/sam-converter/internal/sources"
	"github.com/lawrenceadams/sam-converter/pkg/extract"
)

// categorized holds the outcome of splitting a run's references into
// model refs and external sources.
type categorized struct {
	// deps maps model name to the models it refs, deduplicated.
	deps map[string][]string
	// external lists distinct source tables across the run.
	external []extract.QualifiedName
	// repls maps model name to the macro substitutions for its SQL.
	repls map[string][]sources.Replacement

	modelRefs  int
	sourceRefs int
}

// categorize decides for every reference whether it points at another
// converted model or at an external source. A bare name matching a
// model is always a ref. A qualified name matching a model is a ref
// unless the run saw that model name under differing (database, schema)
// pairs, which makes the qualification ambiguous. A model referencing
// its own name is reading the table it replaces, so it stays a source.
func categorize(results []*fileResult) *categorized {
	models := make(map[string]string) // folded name -> model name
	for _, res := range results {
		if res.failed() {
			continue
		}
		models[strings.ToLower(res.Model)] = res.Model
	}

	// Distinct (database, schema) pairs seen per folded table name.
	type pair struct{ db, schema string }
	quals := make(map[string]map[pair]struct{})
	for _, res := range results {
		for _, ref := range res.Refs {
			if ref.Name.Database == "" && ref.Name.Schema == "" {
				continue
			}
			folded := strings.ToLower(ref.Name.Table)
			if quals[folded] == nil {
				quals[folded] = make(map[pair]struct{})
			}
			quals[folded][pair{
				db:     strings.ToLower(ref.Name.Database),
				schema: strings.ToLower(ref.Name.Schema),
			}] = struct{}{}
		}
	}

	out := &categorized{
		deps:  make(map[string][]string),
		repls: make(map[string][]sources.Replacement),
	}
	externalSeen := make(map[extract.QualifiedName]struct{})

	for _, res := range results {
		if res.failed() {
			continue
		}
		depSeen := make(map[string]struct{})

		for _, ref := range res.Refs {
			folded := strings.ToLower(ref.Name.Table)
			target, isModel := models[folded]

			selfRef := isModel && strings.EqualFold(target, res.Model)
			qualified := ref.Name.Database != "" || ref.Name.Schema != ""
			ambiguous := qualified && len(quals[folded]) > 1

			if isModel && !selfRef && !ambiguous {
				out.modelRefs++
				if _, ok := depSeen[target]; !ok {
					depSeen[target] = struct{}{}
					out.deps[res.Model] = append(out.deps[res.Model], target)
				}
				out.repls[res.Model] = append(out.repls[res.Model], sources.Replacement{
					Match: spelled(ref.Name),
					Macro: sources.RefMacro(target),
				})
				continue
			}

			out.sourceRefs++
			if _, ok := externalSeen[ref.Name]; !ok {
				externalSeen[ref.Name] = struct{}{}
				out.external = append(out.external, ref.Name)
			}
			out.repls[res.Model] = append(out.repls[res.Model], sources.Replacement{
				Match: spelled(ref.Name),
				Macro: sources.SourceMacro(
					sources.GroupName(ref.Name.Database, ref.Name.Schema),
					strings.ToLower(ref.Name.Table),
				),
			})
		}
	}

	sort.Slice(out.external, func(i, j int) bool {
		a, b := out.external[i], out.external[j]
		if a.Database != b.Database {
			return a.Database < b.Database
		}
		if a.Schema != b.Schema {
			return a.Schema < b.Schema
		}
		return a.Table < b.Table
	})
	return out
}

// spelled renders a qualified name as the printer writes it, including
// the double dot when a database is present without a schema.
func spelled(q extract.QualifiedName) string {
	switch {
	case q.Database != "" && q.Schema != "":
		return q.Database + "." + q.Schema + "." + q.Table
	case q.Database != "":
		return q.Database + ".." + q.Table
	case q.Schema != "":
		return q.Schema + "." + q.Table
	default:
		return q.Table
	}
}
