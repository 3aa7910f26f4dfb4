package extract

import (
	"sort"
	"sync"
)

// Entry is one distinct table in the registry after deduplication. Name
// holds the most complete qualification seen across all occurrences.
// Variants and Refs survive the merge so incomplete qualifications can
// be reviewed and corrected against the text that produced them.
type Entry struct {
	Name     QualifiedName
	Variants []string // distinct raw spellings, sorted
	Refs     []Ref    // every merged occurrence, in arrival order
	Files    []string // sorted, distinct
	Count    int      // total occurrences merged in
}

// Completeness classifies the entry's merged qualification.
func (e *Entry) Completeness() Completeness { return e.Name.Completeness() }

// Registry deduplicates references across files. Differently qualified
// spellings of the same table merge when one qualification extends the
// other, so adding db.schema.t and a bare t yields one entry either way
// they arrive. Safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	entries map[QualifiedName]*Entry
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[QualifiedName]*Entry)}
}

// Add merges one reference occurrence into the registry.
func (r *Registry) Add(ref Ref) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := ref.Name.fold()

	if e, ok := r.entries[key]; ok {
		e.merge(ref)
		return
	}

	// No exact match. A reference can still describe a table already
	// present under a different qualification level: bare t against
	// db.schema.t, or schema.t against db.schema.t. Merge only when
	// exactly one entry matches, since two candidates mean the bare
	// name is ambiguous and must stand alone.
	var candidate QualifiedName
	matches := 0
	for k := range r.entries {
		if extends(k, key) || extends(key, k) {
			candidate = k
			matches++
		}
	}

	if matches == 1 {
		e := r.entries[candidate]
		// Keep the more complete qualification and rekey.
		merged := candidate
		if key.Completeness() > candidate.Completeness() {
			merged = key
			e.Name = ref.Name
		}
		if merged != candidate {
			delete(r.entries, candidate)
			r.entries[merged] = e
		}
		e.merge(ref)
		return
	}

	r.entries[key] = &Entry{
		Name:     ref.Name,
		Variants: []string{ref.Raw},
		Refs:     []Ref{ref},
		Files:    []string{ref.File},
		Count:    1,
	}
}

// AddAll merges a batch of references.
func (r *Registry) AddAll(refs []Ref) {
	for _, ref := range refs {
		r.Add(ref)
	}
}

// extends reports whether a's qualification extends b's: same table,
// and every segment b specifies matches a. Both names are case-folded
// by the caller.
func extends(a, b QualifiedName) bool {
	if a.Table != b.Table {
		return false
	}
	if b.Database != "" && b.Database != a.Database {
		return false
	}
	if b.Schema != "" && b.Schema != a.Schema {
		return false
	}
	return true
}

// Entries returns the merged entries sorted by database, schema, and
// table, with blank segments ordering first.
func (r *Registry) Entries() []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Name.fold(), out[j].Name.fold()
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

func (e *Entry) merge(ref Ref) {
	e.Refs = append(e.Refs, ref)
	e.Count++
	insertSorted(&e.Files, ref.File)
	insertSorted(&e.Variants, ref.Raw)
}

func insertSorted(list *[]string, s string) {
	l := *list
	i := sort.SearchStrings(l, s)
	if i < len(l) && l[i] == s {
		return
	}
	l = append(l, "")
	copy(l[i+1:], l[i:])
	l[i] = s
	*list = l
}

// Warning flags one file's use of a table that never appeared fully
// qualified anywhere in the run.
type Warning struct {
	Name         QualifiedName
	Completeness Completeness
	File         string
	Raw          string // spelling as it first appeared in File
}

func (w Warning) String() string {
	return w.Name.String() + " (" + w.Completeness.String() + ") referenced in " + w.File + " as " + w.Raw
}

// QualificationWarnings lists the entries that never appeared fully
// qualified, one warning per (entry, file) pair.
func (r *Registry) QualificationWarnings() []Warning {
	var out []Warning
	for _, e := range r.Entries() {
		if e.Completeness() == Full {
			continue
		}
		for _, file := range e.Files {
			w := Warning{
				Name:         e.Name,
				Completeness: e.Completeness(),
				File:         file,
			}
			for _, ref := range e.Refs {
				if ref.File == file {
					w.Raw = ref.Raw
					break
				}
			}
			out = append(out, w)
		}
	}
	return out
}
