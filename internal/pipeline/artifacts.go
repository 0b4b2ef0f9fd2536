package pipeline

import (
	"bytes"
	"fmt"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/cortexai-cli/internal/analysis"
	"github.com/KaramelBytes/cortexai-cli/internal/loader"
	"github.com/KaramelBytes/cortexai-cli/internal/utils"
)

// Artifact file names written by WriteArtifacts.
const (
	CleanedCSV     = "cleaned.csv"
	SchemaYAML     = "schema.yaml"
	CleaningReport = "cleaning_report.json"
	EDAMarkdown    = "eda.md"
	MetadataJSON   = "metadata.json"
)

// Manifest is the run summary stored in metadata.json.
type Manifest struct {
	RunID      string            `json:"run_id"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Source     *loader.Metadata  `json:"source"`
	RowsOut    int               `json:"rows_cleaned"`
	ColumnsOut int               `json:"columns_cleaned"`
	Target     string            `json:"target,omitempty"`
	Quality    *analysis.Quality `json:"quality,omitempty"`
	Artifacts  []string          `json:"artifacts"`
}

// Manifest summarises the run.
func (r *Result) Manifest() Manifest {
	m := Manifest{
		RunID:      r.RunID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Source:     r.Metadata,
		Quality:    r.Quality,
		Artifacts:  []string{CleanedCSV, SchemaYAML, CleaningReport, EDAMarkdown, MetadataJSON},
	}
	if r.Cleaned != nil {
		m.RowsOut, m.ColumnsOut = r.Cleaned.NumRows(), r.Cleaned.NumCols()
	}
	if r.Schema != nil {
		m.Target = r.Schema.Target
	}
	return m
}

// WriteArtifacts writes every artifact into dir, creating it if needed, and
// returns the written paths. Each file is replaced atomically.
func (r *Result) WriteArtifacts(dir string) ([]string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, err
	}

	var csvBuf bytes.Buffer
	if err := r.Cleaned.WriteCSV(&csvBuf, ','); err != nil {
		return nil, fmt.Errorf("encode cleaned csv: %w", err)
	}
	schemaYAML, err := utils.YAML(r.Schema)
	if err != nil {
		return nil, err
	}
	cleaning, err := utils.PrettyJSON(r.Cleaning)
	if err != nil {
		return nil, err
	}
	manifest, err := utils.PrettyJSON(r.Manifest())
	if err != nil {
		return nil, err
	}

	files := []struct {
		name string
		data []byte
	}{
		{CleanedCSV, csvBuf.Bytes()},
		{SchemaYAML, schemaYAML},
		{CleaningReport, cleaning},
		{EDAMarkdown, []byte(r.EDA.Markdown())},
		{MetadataJSON, manifest},
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		p := filepath.Join(dir, f.name)
		if err := utils.SafeWriteFile(p, f.data); err != nil {
			return paths, fmt.Errorf("write %s: %w", f.name, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
