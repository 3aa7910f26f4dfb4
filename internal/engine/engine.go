// Package engine orchestrates a conversion run: discover input files,
// translate each one in parallel, categorize the table references the
// translations read from, and write the converted models plus their
// dbt manifest files.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/lawrenceadams/sam-converter/internal/config"
	"github.com/lawrenceadams/sam-converter/internal/sources"
	"github.com/lawrenceadams/sam-converter/pkg/dialect"
	"github.com/lawrenceadams/sam-converter/pkg/extract"
	"github.com/lawrenceadams/sam-converter/pkg/format"
	"github.com/lawrenceadams/sam-converter/pkg/parser"
	"github.com/lawrenceadams/sam-converter/pkg/transform"
)

// Engine runs conversions.
type Engine struct {
	cfg      *config.Config
	logger   *slog.Logger
	source   *dialect.Dialect
	target   *dialect.Dialect
	rules    *dialect.Ruleset
	registry *extract.Registry
}

// New creates an Engine for the configured dialect pair.
func New(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	src, ok := dialect.Get(cfg.Source)
	if !ok {
		return nil, fmt.Errorf("unknown source dialect %q", cfg.Source)
	}
	tgt, ok := dialect.Get(cfg.Target)
	if !ok {
		return nil, fmt.Errorf("unknown target dialect %q", cfg.Target)
	}

	rules := dialect.TSQLToSnowflake
	if rules.Source != src || rules.Target != tgt {
		return nil, fmt.Errorf("no translation rules for %s to %s", src.Name, tgt.Name)
	}

	return &Engine{
		cfg:      cfg,
		logger:   logger,
		source:   src,
		target:   tgt,
		rules:    rules,
		registry: extract.NewRegistry(),
	}, nil
}

// Result summarizes a completed run.
type Result struct {
	Converted []string // model names, sorted
	Failed    []string // input paths whose SQL did not parse, sorted

	ModelRefs  int
	SourceRefs int

	// Entries is the deduplicated reference registry.
	Entries []*extract.Entry
	// IncompleteRefs lists each file's use of a table that never
	// appeared fully qualified.
	IncompleteRefs []extract.Warning
}

// fileResult carries one input file through the pipeline.
type fileResult struct {
	Path  string
	Model string

	SQL      string // printed target SQL, all statements
	Refs     []extract.Ref
	ParseErr error
}

func (r *fileResult) failed() bool { return r.ParseErr != nil }

// Run converts every .sql file under the input directory and writes
// the models and manifests to the output directory. Files that fail to
// parse are reported and skipped; a translation gap that would emit
// wrong SQL aborts the whole run.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	files, err := e.discover()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .sql files under %s", e.cfg.InputDir)
	}
	e.logger.Info("starting conversion",
		"files", len(files),
		"source", e.source.Name,
		"target", e.target.Name,
		"jobs", e.cfg.EffectiveJobs())

	results := make([]*fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.EffectiveJobs())

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.convertFile(path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cat := categorize(results)

	if err := e.writeOutputs(results, cat); err != nil {
		return nil, err
	}

	result := &Result{
		ModelRefs:  cat.modelRefs,
		SourceRefs: cat.sourceRefs,
	}
	for _, res := range results {
		if res.failed() {
			result.Failed = append(result.Failed, res.Path)
			continue
		}
		result.Converted = append(result.Converted, res.Model)
	}
	sort.Strings(result.Converted)
	sort.Strings(result.Failed)

	result.Entries = e.registry.Entries()
	result.IncompleteRefs = e.registry.QualificationWarnings()
	for _, w := range result.IncompleteRefs {
		e.logger.Warn("incomplete qualification",
			"table", w.Name.String(),
			"completeness", w.Completeness.String(),
			"file", w.File,
			"raw", w.Raw)
	}

	e.logger.Info("conversion finished",
		"converted", len(result.Converted),
		"failed", len(result.Failed),
		"model_refs", result.ModelRefs,
		"source_refs", result.SourceRefs)
	return result, nil
}

// discover lists the .sql files under the input directory, sorted.
func (e *Engine) discover() ([]string, error) {
	var files []string
	seen := make(map[string]string)

	err := filepath.WalkDir(e.cfg.InputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".sql") {
			return nil
		}
		model := modelName(path)
		if prev, ok := seen[strings.ToLower(model)]; ok {
			return fmt.Errorf("duplicate model name %q: %s and %s", model, prev, path)
		}
		seen[strings.ToLower(model)] = path
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", e.cfg.InputDir, err)
	}
	sort.Strings(files)
	return files, nil
}

// modelName derives the model name from an input path.
func modelName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// convertFile translates one input file. A parse error marks the file
// failed without stopping the run; a printer coverage gap is returned
// as a hard error.
func (e *Engine) convertFile(path string) (*fileResult, error) {
	res := &fileResult{Path: path, Model: modelName(path)}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	raws := parser.SplitStatements(string(data))
	var out strings.Builder

	for i, raw := range raws {
		stmt, err := parser.Parse(raw.Text, e.source)
		if err != nil {
			var perr *parser.ParseError
			if errors.As(err, &perr) {
				perr.Statement = raw.Text
				e.logger.Error("skipping file",
					"file", path,
					"statement", i+1,
					"line", raw.Line+perr.Pos.Line-1,
					"error", perr.Message)
				res.ParseErr = perr
				return res, nil
			}
			return nil, err
		}

		translated, warnings := transform.Apply(stmt, e.rules)
		for _, w := range warnings {
			e.logger.Warn("unsupported construct",
				"file", path,
				"statement", i+1,
				"construct", w.Construct,
				"line", raw.Line+w.Pos.Line-1)
		}

		for _, ref := range extract.Statements(path, []parser.Statement{translated}) {
			ref.Stmt = i
			ref.Line = raw.Line + ref.Line - 1
			res.Refs = append(res.Refs, ref)
		}

		text, err := format.Format(translated, e.target)
		if err != nil {
			return nil, fmt.Errorf("%s statement %d: %w", path, i+1, err)
		}
		if out.Len() > 0 {
			out.WriteString("\n")
		}
		out.WriteString(text)
	}

	res.SQL = out.String()
	e.registry.AddAll(res.Refs)
	e.logger.Debug("converted file", "file", path, "statements", len(raws), "refs", len(res.Refs))
	return res, nil
}

// writeOutputs writes each converted model to its own directory and
// the manifest files to the output root.
func (e *Engine) writeOutputs(results []*fileResult, cat *categorized) error {
	outDir := e.cfg.OutputDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", outDir, err)
	}

	for _, res := range results {
		if res == nil || res.failed() {
			continue
		}
		sql := sources.Inject(res.SQL, cat.repls[res.Model])

		modelDir := filepath.Join(outDir, res.Model)
		if err := os.MkdirAll(modelDir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", modelDir, err)
		}
		target := filepath.Join(modelDir, res.Model+".sql")
		if err := os.WriteFile(target, []byte(sql), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
	}

	if len(cat.external) > 0 {
		data, err := sources.BuildSources(cat.external)
		if err != nil {
			return fmt.Errorf("rendering sources.yml: %w", err)
		}
		if err := os.WriteFile(filepath.Join(outDir, "sources.yml"), data, 0o644); err != nil {
			return fmt.Errorf("writing sources.yml: %w", err)
		}
	}

	data, err := sources.BuildModelRefs(cat.deps)
	if err != nil {
		return fmt.Errorf("rendering model_refs.yml: %w", err)
	}
	if data != nil {
		if err := os.WriteFile(filepath.Join(outDir, "model_refs.yml"), data, 0o644); err != nil {
			return fmt.Errorf("writing model_refs.yml: %w", err)
		}
	}
	return nil
}
