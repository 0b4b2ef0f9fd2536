// Package analysis produces the exploratory summary of a cleaned table and
// scores how promising it looks for supervised learning.
package analysis

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/cortexai-cli/internal/logging"
	"github.com/KaramelBytes/cortexai-cli/internal/schema"
	"github.com/KaramelBytes/cortexai-cli/internal/stats"
	"github.com/KaramelBytes/cortexai-cli/internal/table"
)

// Options controls analysis behavior for tabular data.
type Options struct {
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// TopValues limits the categories listed per categorical column.
	TopValues int
	// HighCorrThreshold is the |r| at or above which a pair is reported.
	HighCorrThreshold float64
	// SkewThreshold is the |skewness| above which a column gets an insight.
	SkewThreshold float64
	// ClassificationMaxClasses treats a numeric target with at most this many
	// distinct values as a class label.
	ClassificationMaxClasses int
}

// DefaultOptions returns reasonable defaults for dataset analysis.
func DefaultOptions() Options {
	return Options{
		SampleRows:               5,
		TopValues:                5,
		HighCorrThreshold:        0.8,
		SkewThreshold:            1,
		ClassificationMaxClasses: 20,
	}
}

// Problem types reported by target analysis.
const (
	Classification = "classification"
	Regression     = "regression"
)

const skewInsight = "Highly skewed distribution, consider a transformation"

// Report is a markdown-friendly analysis of a tabular dataset.
type Report struct {
	Name     string          `json:"name,omitempty" yaml:"name,omitempty"`
	Rows     int             `json:"rows" yaml:"rows"`
	Cols     []ColumnSummary `json:"columns" yaml:"columns"`
	Target   *TargetAnalysis `json:"target_analysis,omitempty" yaml:"target_analysis,omitempty"`
	Corr     *CorrMatrix     `json:"correlation_matrix,omitempty" yaml:"correlation_matrix,omitempty"`
	HighCorr []PairCorr      `json:"high_correlation_pairs,omitempty" yaml:"high_correlation_pairs,omitempty"`
	// BinaryOutcomes lists columns with exactly two distinct values.
	BinaryOutcomes []string       `json:"binary_outcomes,omitempty" yaml:"binary_outcomes,omitempty"`
	OutcomeRates   []OutcomeRates `json:"outcome_analysis,omitempty" yaml:"outcome_analysis,omitempty"`
	Samples        [][]string     `json:"samples,omitempty" yaml:"samples,omitempty"`
	Warnings       []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Quality        *Quality       `json:"quality,omitempty" yaml:"quality,omitempty"`
}

// ColumnSummary captures the schema category and statistics per column.
type ColumnSummary struct {
	Name    string          `json:"name" yaml:"name"`
	Kind    schema.Category `json:"kind" yaml:"kind"`
	NonNull int             `json:"non_null" yaml:"non_null"`
	Missing int             `json:"missing" yaml:"missing"`
	Unique  int             `json:"unique" yaml:"unique"`
	// Numeric stats
	Numeric *stats.Summary `json:"numeric,omitempty" yaml:"numeric,omitempty"`
	Plots   []string       `json:"suggest_plots,omitempty" yaml:"suggest_plots,omitempty"`
	Insight string         `json:"insight,omitempty" yaml:"insight,omitempty"`
	// Categorical top values
	TopValues []CategoryCount `json:"top_values,omitempty" yaml:"top_values,omitempty"`
}

type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// TargetAnalysis describes the detected target column.
type TargetAnalysis struct {
	Column  string          `json:"target_column" yaml:"target_column"`
	Type    string          `json:"type" yaml:"type"`
	Classes []CategoryCount `json:"class_distribution,omitempty" yaml:"class_distribution,omitempty"`
	Summary *stats.Summary  `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string    `json:"columns" yaml:"columns"`
	Values  [][]float64 `json:"values" yaml:"values"` // row-major, Values[i][j]
}

// At returns r for the named pair and whether both columns are present.
func (m *CorrMatrix) At(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, c := range m.Columns {
		if c == a {
			i = k
		}
		if c == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A string  `json:"a" yaml:"a"`
	B string  `json:"b" yaml:"b"`
	R float64 `json:"r" yaml:"r"`
}

// OutcomeRates holds the mean of a binary outcome per category of a feature.
type OutcomeRates struct {
	Outcome string         `json:"outcome" yaml:"outcome"`
	Feature string         `json:"feature" yaml:"feature"`
	Rates   []CategoryRate `json:"rates" yaml:"rates"`
}

type CategoryRate struct {
	Value string  `json:"value" yaml:"value"`
	Count int     `json:"count" yaml:"count"`
	Rate  float64 `json:"rate" yaml:"rate"`
}

// Analyzer builds a Report from a cleaned table and its schema.
type Analyzer struct {
	opt Options
	log *slog.Logger
}

// New returns an Analyzer. Zero-valued options take their defaults.
func New(opt Options, logger *slog.Logger) *Analyzer {
	def := DefaultOptions()
	if opt.SampleRows < 0 {
		opt.SampleRows = 0
	}
	if opt.TopValues <= 0 {
		opt.TopValues = def.TopValues
	}
	if opt.HighCorrThreshold <= 0 {
		opt.HighCorrThreshold = def.HighCorrThreshold
	}
	if opt.SkewThreshold <= 0 {
		opt.SkewThreshold = def.SkewThreshold
	}
	if opt.ClassificationMaxClasses <= 0 {
		opt.ClassificationMaxClasses = def.ClassificationMaxClasses
	}
	return &Analyzer{opt: opt, log: logging.Component(logger, "analysis")}
}

// Analyze summarises t. Columns of the schema missing from t (dropped
// identifiers) are skipped.
func (a *Analyzer) Analyze(name string, t *table.Table, s *schema.Schema) *Report {
	if s == nil {
		s = schema.Empty()
	}
	rep := &Report{Name: name, Rows: t.NumRows()}
	if t.NumCols() == 0 {
		rep.Warnings = append(rep.Warnings, "Table has no columns.")
		a.log.Warn("empty table, nothing to analyze")
		return rep
	}

	for _, c := range t.Columns {
		rep.Cols = append(rep.Cols, a.summarize(c, s))
	}
	a.log.Info("column summaries generated", "columns", len(rep.Cols))

	rep.Target = a.analyzeTarget(t, s)
	if rep.Target == nil {
		rep.Warnings = append(rep.Warnings, "No target column found; supervised learning needs one.")
		a.log.Warn("no target column found in table")
	} else {
		a.log.Info("target analysis complete", "target", rep.Target.Column, "type", rep.Target.Type)
	}

	a.correlations(t, s, rep)
	a.binaryOutcomes(t, s, rep)
	a.refinePlots(rep)
	rep.Samples = sampleRows(t, a.opt.SampleRows)

	a.log.Info("eda report generated")
	return rep
}

func (a *Analyzer) summarize(c *table.Column, s *schema.Schema) ColumnSummary {
	kind, ok := s.Category(c.Name)
	if !ok {
		kind = schema.Categorical
	}
	cs := ColumnSummary{
		Name:    c.Name,
		Kind:    kind,
		NonNull: c.NonMissing(),
		Missing: len(c.Values) - c.NonMissing(),
		Unique:  c.Distinct(),
	}
	switch kind {
	case schema.Numeric:
		sum := stats.Describe(numbers(c))
		cs.Numeric = &sum
		cs.Plots = []string{"hist", "box"}
	case schema.Categorical:
		cs.TopValues = topCounts(c, a.opt.TopValues)
	}
	return cs
}

// analyzeTarget classifies the problem as classification when the target is
// not numeric or has few distinct values.
func (a *Analyzer) analyzeTarget(t *table.Table, s *schema.Schema) *TargetAnalysis {
	if !s.HasTarget() {
		return nil
	}
	c, ok := t.Column(s.Target)
	if !ok {
		return nil
	}
	ta := &TargetAnalysis{Column: c.Name}
	kind, _ := s.Category(c.Name)
	if kind != schema.Numeric || c.Distinct() <= a.opt.ClassificationMaxClasses {
		ta.Type = Classification
		ta.Classes = topCounts(c, 0)
		return ta
	}
	ta.Type = Regression
	sum := stats.Describe(numbers(c))
	ta.Summary = &sum
	return ta
}

// correlations computes pairwise Pearson r over rows where both columns are
// present, rounded to three decimals.
func (a *Analyzer) correlations(t *table.Table, s *schema.Schema, rep *Report) {
	var cols []*table.Column
	for _, name := range s.Numeric() {
		if c, ok := t.Column(name); ok {
			cols = append(cols, c)
		}
	}
	if len(cols) < 2 {
		a.log.Info("not enough numeric columns for correlation analysis", "numeric", len(cols))
		return
	}
	n := len(cols)
	m := &CorrMatrix{Columns: make([]string, n), Values: make([][]float64, n)}
	for i, c := range cols {
		m.Columns[i] = c.Name
		m.Values[i] = make([]float64, n)
		m.Values[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			x, y := pairwise(cols[i], cols[j])
			r := round3(stats.Pearson(x, y))
			m.Values[i][j], m.Values[j][i] = r, r
			if math.Abs(r) >= a.opt.HighCorrThreshold {
				rep.HighCorr = append(rep.HighCorr, PairCorr{A: cols[i].Name, B: cols[j].Name, R: r})
			}
		}
	}
	rep.Corr = m
	a.log.Info("correlation analysis completed", "high_pairs", len(rep.HighCorr))
}

// binaryOutcomes finds two-valued numeric columns and reports their mean per
// category of every other categorical column.
func (a *Analyzer) binaryOutcomes(t *table.Table, s *schema.Schema, rep *Report) {
	for _, out := range t.Columns {
		if out.Distinct() != 2 {
			continue
		}
		rep.BinaryOutcomes = append(rep.BinaryOutcomes, out.Name)
		if !allNumeric(out) {
			continue
		}
		for _, name := range s.Categorical() {
			if name == out.Name {
				continue
			}
			feat, ok := t.Column(name)
			if !ok {
				continue
			}
			if rates := groupMeans(feat, out); len(rates) > 1 {
				rep.OutcomeRates = append(rep.OutcomeRates, OutcomeRates{Outcome: out.Name, Feature: name, Rates: rates})
			}
		}
	}
	a.log.Info("binary outcome analysis completed", "outcomes", rep.BinaryOutcomes)
}

func (a *Analyzer) refinePlots(rep *Report) {
	idx := make(map[string]int, len(rep.Cols))
	for i, c := range rep.Cols {
		idx[c.Name] = i
		if c.Numeric != nil && math.Abs(c.Numeric.Skew) > a.opt.SkewThreshold {
			rep.Cols[i].Insight = skewInsight
		}
	}
	for _, p := range rep.HighCorr {
		if i, ok := idx[p.A]; ok && rep.Cols[i].Numeric != nil {
			rep.Cols[i].Plots = append(rep.Cols[i].Plots, "scatter_with:"+p.B)
		}
		if j, ok := idx[p.B]; ok && rep.Cols[j].Numeric != nil {
			rep.Cols[j].Plots = append(rep.Cols[j].Plots, "scatter_with:"+p.A)
		}
	}
}

func numbers(c *table.Column) []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if v.IsMissing() {
			continue
		}
		if f, ok := v.AsNumber(); ok {
			out = append(out, f)
		}
	}
	return out
}

func allNumeric(c *table.Column) bool {
	for _, v := range c.Values {
		if v.IsMissing() {
			continue
		}
		if _, ok := v.AsNumber(); !ok {
			return false
		}
	}
	return true
}

func pairwise(a, b *table.Column) (x, y []float64) {
	for i := range a.Values {
		fa, okA := a.Values[i].AsNumber()
		fb, okB := b.Values[i].AsNumber()
		if okA && okB && !a.Values[i].IsMissing() && !b.Values[i].IsMissing() {
			x = append(x, fa)
			y = append(y, fb)
		}
	}
	return x, y
}

// topCounts returns value counts by descending frequency, ties by value.
// limit <= 0 returns every value.
func topCounts(c *table.Column, limit int) []CategoryCount {
	counts := map[string]int{}
	for _, v := range c.Values {
		if !v.IsMissing() {
			counts[v.String()]++
		}
	}
	out := make([]CategoryCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, CategoryCount{Value: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// groupMeans averages outcome per category of feature, categories sorted.
func groupMeans(feature, outcome *table.Column) []CategoryRate {
	type acc struct {
		n   int
		sum float64
	}
	groups := map[string]*acc{}
	for i, v := range feature.Values {
		if v.IsMissing() || outcome.Values[i].IsMissing() {
			continue
		}
		f, ok := outcome.Values[i].AsNumber()
		if !ok {
			continue
		}
		g, ok := groups[v.String()]
		if !ok {
			g = &acc{}
			groups[v.String()] = g
		}
		g.n++
		g.sum += f
	}
	out := make([]CategoryRate, 0, len(groups))
	for k, g := range groups {
		out = append(out, CategoryRate{Value: k, Count: g.n, Rate: round3(g.sum / float64(g.n))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

func sampleRows(t *table.Table, n int) [][]string {
	if n > t.NumRows() {
		n = t.NumRows()
	}
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		row := make([]string, t.NumCols())
		for j, c := range t.Columns {
			row[j] = c.Values[i].String()
		}
		rows = append(rows, row)
	}
	return rows
}

func round3(x float64) float64 { return math.Round(x*1000) / 1000 }

// Markdown renders a compact report suitable for standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		switch {
		case c.Numeric != nil:
			n := c.Numeric
			b.WriteString(fmt.Sprintf(": min %.4g, max %.4g, mean %.4g, median %.4g, std %.4g, skew %.3g", n.Min, n.Max, n.Mean, n.Median, n.Std, n.Skew))
			if len(c.Plots) > 0 {
				b.WriteString("; plots: " + strings.Join(c.Plots, ", "))
			}
			if c.Insight != "" {
				b.WriteString("; " + c.Insight)
			}
		case len(c.TopValues) > 0:
			b.WriteString(": top: ")
			for i, kv := range c.TopValues {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
			}
			if c.Unique > len(c.TopValues) {
				b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
			}
		}
		b.WriteString("\n")
	}

	if r.Target != nil {
		b.WriteString("\n[TARGET]\n")
		b.WriteString(fmt.Sprintf("Column: %s (%s)\n", r.Target.Column, r.Target.Type))
		for _, kv := range r.Target.Classes {
			b.WriteString(fmt.Sprintf("- %s: %d\n", safeVal(kv.Value), kv.Count))
		}
		if s := r.Target.Summary; s != nil {
			b.WriteString(fmt.Sprintf("min %.4g, max %.4g, mean %.4g, std %.4g\n", s.Min, s.Max, s.Mean, s.Std))
		}
	}

	if r.Corr != nil && len(r.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		var pairs []PairCorr
		n := len(r.Corr.Columns)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				pairs = append(pairs, PairCorr{A: r.Corr.Columns[i], B: r.Corr.Columns[j], R: r.Corr.Values[i][j]})
			}
		}
		sort.SliceStable(pairs, func(i, j int) bool {
			return math.Abs(pairs[i].R) > math.Abs(pairs[j].R)
		})
		maxp := 10
		if len(pairs) < maxp {
			maxp = len(pairs)
		}
		for i := 0; i < maxp; i++ {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", pairs[i].A, pairs[i].B, pairs[i].R))
		}
		if len(r.HighCorr) > 0 {
			b.WriteString(fmt.Sprintf("High correlation pairs: %d\n", len(r.HighCorr)))
		}
	}

	if len(r.OutcomeRates) > 0 {
		b.WriteString("\n[BINARY OUTCOMES]\n")
		for _, o := range r.OutcomeRates {
			b.WriteString(fmt.Sprintf("- %s by %s:", o.Outcome, o.Feature))
			for i, rt := range o.Rates {
				if i > 0 {
					b.WriteString(",")
				}
				b.WriteString(fmt.Sprintf(" %s=%.3f (n=%d)", safeVal(rt.Value), rt.Rate, rt.Count))
			}
			b.WriteString("\n")
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n| ")
		for i := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Cols {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}

	if r.Quality != nil {
		b.WriteString("\n[QUALITY]\n")
		b.WriteString(r.Quality.Markdown())
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
