package sources

import (
	"sort"

	"gopkg.in/yaml.v3"
)

// ModelRefs lists the models one converted model depends on.
type ModelRefs struct {
	Model     string   `yaml:"model"`
	DependsOn []string `yaml:"depends_on"`
}

// refsFile is the document shape of model_refs.yml.
type refsFile struct {
	Version   int         `yaml:"version"`
	ModelRefs []ModelRefs `yaml:"model_refs"`
}

// BuildModelRefs renders model_refs.yml from the per-model dependency
// sets. Models with no refs are omitted; nil is returned when nothing
// remains, signaling the caller to skip the file entirely.
func BuildModelRefs(deps map[string][]string) ([]byte, error) {
	doc := refsFile{Version: 2}
	for name, refs := range deps {
		if len(refs) == 0 {
			continue
		}
		sorted := make([]string, len(refs))
		copy(sorted, refs)
		sort.Strings(sorted)
		doc.ModelRefs = append(doc.ModelRefs, ModelRefs{Model: name, DependsOn: sorted})
	}
	if len(doc.ModelRefs) == 0 {
		return nil, nil
	}
	sort.Slice(doc.ModelRefs, func(i, j int) bool {
		return doc.ModelRefs[i].Model < doc.ModelRefs[j].Model
	})
	return yaml.Marshal(doc)
}
