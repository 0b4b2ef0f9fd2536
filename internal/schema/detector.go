package schema

import (
	"log/slog"

	"github.com/KaramelBytes/cortexai-cli/internal/logging"
	"github.com/KaramelBytes/cortexai-cli/internal/table"
)

// Options holds the named thresholds behind every heuristic.
type Options struct {
	// NumericMinRatio is the share of non-missing values that must parse as
	// numbers for a column to be numeric.
	NumericMinRatio float64
	// DatetimeMinRatio is the share of non-missing values that must parse as
	// timestamps; the share must be strictly greater.
	DatetimeMinRatio float64
	// IDUniqueRatio is the distinct/rows ratio an identifier must exceed.
	IDUniqueRatio float64
	// TargetMinClasses and TargetMaxClasses bound the distinct-value count of
	// the low-cardinality target fallback.
	TargetMinClasses int
	TargetMaxClasses int
	IDPatterns       []string
	TargetPatterns   []string
}

// DefaultOptions returns the thresholds used by the CLI.
func DefaultOptions() Options {
	return Options{
		NumericMinRatio:  0.95,
		DatetimeMinRatio: 0.5,
		IDUniqueRatio:    0.98,
		TargetMinClasses: 2,
		TargetMaxClasses: 20,
		IDPatterns:       DefaultIDPatterns(),
		TargetPatterns:   DefaultTargetPatterns(),
	}
}

// Detector builds a Schema from a table. Detection has no failure modes.
type Detector struct {
	opt Options
	log *slog.Logger
}

// NewDetector returns a Detector. Empty pattern lists fall back to defaults.
func NewDetector(opt Options, logger *slog.Logger) *Detector {
	if opt.IDPatterns == nil {
		opt.IDPatterns = DefaultIDPatterns()
	}
	if opt.TargetPatterns == nil {
		opt.TargetPatterns = DefaultTargetPatterns()
	}
	return &Detector{opt: opt, log: logging.Component(logger, "schema")}
}

// Detect classifies every column of t. The same table always yields the same
// schema.
func (d *Detector) Detect(t *table.Table) *Schema {
	s := Empty()
	if t == nil || t.NumCols() == 0 {
		d.log.Warn("empty table, nothing to detect")
		return s
	}
	d.log.Info("starting schema detection", "columns", t.NumCols(), "rows", t.NumRows())

	for _, c := range t.Columns {
		s.Columns = append(s.Columns, c.Name)
		switch {
		case d.isNumeric(c):
			s.Categories[c.Name] = Numeric
		case d.isDatetime(c):
			s.Categories[c.Name] = Datetime
		default:
			s.Categories[c.Name] = Categorical
		}
	}
	d.log.Info("numeric columns detected", "columns", s.Numeric())
	d.log.Info("categorical columns detected", "columns", s.Categorical())
	d.log.Info("datetime columns detected", "columns", s.Datetime())

	for _, c := range t.Columns {
		if d.isIdentifier(c, t.NumRows()) {
			s.Identifiers = append(s.Identifiers, c.Name)
		}
	}
	d.log.Info("id columns detected", "columns", s.Identifiers)

	s.Target = d.detectTarget(t, s)
	if s.Target == "" {
		d.log.Warn("no clear target column detected")
	}
	d.log.Info("schema detection complete", "target", s.Target)
	return s
}

// isNumeric: all-missing columns count as numeric.
func (d *Detector) isNumeric(c *table.Column) bool {
	var nonMissing, numeric int
	for _, v := range c.Values {
		if v.IsMissing() {
			continue
		}
		nonMissing++
		if v.Kind == table.Bool {
			continue
		}
		if _, ok := v.AsNumber(); ok {
			numeric++
		}
	}
	if nonMissing == 0 {
		return true
	}
	return float64(numeric)/float64(nonMissing) >= d.opt.NumericMinRatio
}

// isDatetime is only consulted for columns already ruled out as numeric.
func (d *Detector) isDatetime(c *table.Column) bool {
	var nonMissing, parsed int
	for _, v := range c.Values {
		if v.IsMissing() {
			continue
		}
		nonMissing++
		if _, ok := v.AsTime(); ok {
			parsed++
		}
	}
	if nonMissing == 0 {
		return false
	}
	return float64(parsed)/float64(nonMissing) > d.opt.DatetimeMinRatio
}

// isIdentifier requires both an identifier-like name and near-unique values.
func (d *Detector) isIdentifier(c *table.Column, rows int) bool {
	if rows == 0 || !matchName(c.Name, d.opt.IDPatterns) {
		return false
	}
	ratio := float64(c.Distinct()) / float64(rows)
	return ratio > d.opt.IDUniqueRatio
}

// detectTarget applies, in order: label-name match, last column, then the
// first low-cardinality categorical column. Identifier columns are never
// returned.
func (d *Detector) detectTarget(t *table.Table, s *Schema) string {
	for _, c := range t.Columns {
		if s.IsIdentifier(c.Name) {
			continue
		}
		if matchName(c.Name, d.opt.TargetPatterns) {
			d.log.Info("target column detected via name match", "column", c.Name)
			return c.Name
		}
	}

	last := t.Columns[len(t.Columns)-1]
	if !s.IsIdentifier(last.Name) && !matchName(last.Name, d.opt.IDPatterns) {
		d.log.Info("target column detected as last column", "column", last.Name)
		return last.Name
	}

	for _, c := range t.Columns {
		if s.IsIdentifier(c.Name) || s.Categories[c.Name] != Categorical {
			continue
		}
		n := c.Distinct()
		if n >= d.opt.TargetMinClasses && n <= d.opt.TargetMaxClasses {
			d.log.Info("target column detected via unique-value heuristic", "column", c.Name, "classes", n)
			return c.Name
		}
	}
	return ""
}
