package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/refmine/refmine/internal/adapter"
)

// Manifest lists the export files of one ingestion batch. Files are
// processed strictly in manifest order; within a file, entries are processed
// in source order, so duplicate-vs-inserted attribution is deterministic.
type Manifest struct {
	Sources []ManifestSource `yaml:"sources"`
}

// ManifestSource groups files sharing one export format.
type ManifestSource struct {
	Format string   `yaml:"format"`
	Files  []string `yaml:"files"`
}

// LoadManifest reads and validates a batch manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	if len(m.Sources) == 0 {
		return nil, fmt.Errorf("manifest has no sources")
	}
	for _, src := range m.Sources {
		if _, err := adapter.ParseFormat(src.Format); err != nil {
			return nil, err
		}
	}

	return &m, nil
}

// FileResult is the outcome report for one export file.
type FileResult struct {
	File   string   `json:"file"`
	Format string   `json:"format"`
	Stats  Stats    `json:"stats"`
	Errors []string `json:"errors,omitempty"`
}

// ProcessFile ingests one export file. File- and row-level errors are
// reported in the result, not returned: they must not stop the batch. The
// returned error is reserved for store failures, after which no further
// progress can be recorded safely.
func (g *Gate) ProcessFile(ctx context.Context, format adapter.Format, path string) (FileResult, error) {
	res := FileResult{File: path, Format: string(format)}

	a, err := adapter.For(format)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res, nil
	}

	f, err := os.Open(path)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("opening %s: %v", path, err))
		return res, nil
	}
	defer f.Close()

	entries, rowErrs := a.Parse(f)
	for _, e := range rowErrs {
		res.Errors = append(res.Errors, e.Error())
	}
	res.Stats.RowErrors = len(rowErrs)

	sourceFile := filepath.Base(path)
	for _, e := range entries {
		outcome, err := g.Insert(ctx, e, sourceFile)
		if err != nil {
			return res, err
		}

		switch outcome {
		case OutcomeInserted:
			res.Stats.Inserted++
		case OutcomeDuplicate:
			res.Stats.Duplicate++
		case OutcomeNoIdentifier:
			res.Stats.NoIdentifier++
		}
	}

	return res, nil
}

// ProcessBatch ingests every file of a manifest in order. A missing or
// unparseable file is reported in its result and the batch continues; a
// store failure aborts the batch immediately.
func (g *Gate) ProcessBatch(ctx context.Context, m *Manifest) ([]FileResult, error) {
	var results []FileResult

	for _, src := range m.Sources {
		format, err := adapter.ParseFormat(src.Format)
		if err != nil {
			results = append(results, FileResult{
				Format: src.Format,
				Errors: []string{err.Error()},
			})
			continue
		}

		for _, path := range src.Files {
			res, err := g.ProcessFile(ctx, format, path)
			results = append(results, res)
			if err != nil {
				slog.Error("store failure, aborting batch", "file", path, "error", err)
				return results, err
			}
		}
	}

	return results, nil
}
