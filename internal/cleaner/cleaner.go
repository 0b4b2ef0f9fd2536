// Package cleaner turns a loaded table into a model-ready one: identifier
// columns are dropped, cells are coerced to their schema type, gaps are filled
// and numeric outliers are pulled back to the median.
package cleaner

import (
	"log/slog"

	"github.com/KaramelBytes/cortexai-cli/internal/logging"
	"github.com/KaramelBytes/cortexai-cli/internal/schema"
	"github.com/KaramelBytes/cortexai-cli/internal/stats"
	"github.com/KaramelBytes/cortexai-cli/internal/table"
)

// Options controls the cleaning thresholds.
type Options struct {
	// IQRMultiplier scales the interquartile range for the outlier fences.
	IQRMultiplier float64
	// HighCardinalityLimit is the distinct count a categorical column must
	// exceed to be flagged.
	HighCardinalityLimit int
	// DropDuplicateRows removes exact duplicate rows after identifiers are
	// dropped.
	DropDuplicateRows bool
}

// DefaultOptions returns the thresholds used by the CLI.
func DefaultOptions() Options {
	return Options{
		IQRMultiplier:        1.5,
		HighCardinalityLimit: 20,
	}
}

// Cleaner applies a fixed sequence of transformations. It never fails; every
// per-cell problem becomes a missing value or a substitution.
type Cleaner struct {
	opt Options
	log *slog.Logger
}

// New returns a Cleaner. A non-positive IQRMultiplier falls back to 1.5.
func New(opt Options, logger *slog.Logger) *Cleaner {
	if opt.IQRMultiplier <= 0 {
		opt.IQRMultiplier = 1.5
	}
	return &Cleaner{opt: opt, log: logging.Component(logger, "cleaner")}
}

// Clean returns a cleaned copy of t and the report of what changed. The input
// table is left untouched.
func (c *Cleaner) Clean(t *table.Table, s *schema.Schema) (*table.Table, *Report) {
	if s == nil {
		s = schema.Empty()
	}
	out := t.Clone()
	if out == nil {
		out = &table.Table{}
	}
	rep := &Report{RowsBefore: out.NumRows(), ColumnsBefore: out.NumCols()}
	c.log.Info("starting data cleaning", "rows", rep.RowsBefore, "columns", rep.ColumnsBefore)

	c.dropIdentifiers(out, s, rep)
	if c.opt.DropDuplicateRows {
		c.dropDuplicates(out, rep)
	}
	c.coerce(out, s, rep)
	c.impute(out, s, rep)
	c.capOutliers(out, s, rep)
	c.flagHighCardinality(out, s, rep)
	out.ResetIndex()

	rep.RowsAfter = out.NumRows()
	rep.ColumnsAfter = out.NumCols()
	c.log.Info("data cleaning complete", "rows", rep.RowsAfter, "columns", rep.ColumnsAfter, "actions", len(rep.Actions))
	return out, rep
}

func (c *Cleaner) dropIdentifiers(t *table.Table, s *schema.Schema, rep *Report) {
	for _, name := range s.Identifiers {
		col, ok := t.Column(name)
		if !ok {
			continue
		}
		n := len(col.Values)
		t.DropColumn(name)
		rep.add(Action{Column: name, Type: ActionDrop, Count: n})
		c.log.Info("dropped id column", "column", name)
	}
}

func (c *Cleaner) dropDuplicates(t *table.Table, rep *Report) {
	seen := make(map[string]bool, t.NumRows())
	dups := map[int]bool{}
	for i := 0; i < t.NumRows(); i++ {
		k := t.RowKey(i)
		if seen[k] {
			dups[i] = true
			continue
		}
		seen[k] = true
	}
	if len(dups) == 0 {
		return
	}
	t.DropRows(dups)
	rep.add(Action{Type: ActionDropDuplicates, Count: len(dups)})
	c.log.Info("dropped duplicate rows", "count", len(dups))
}

// coerce casts each column to its schema category. Cells that cannot be
// converted become missing.
func (c *Cleaner) coerce(t *table.Table, s *schema.Schema, rep *Report) {
	for _, col := range t.Columns {
		cat, ok := s.Category(col.Name)
		if !ok {
			continue
		}
		failed := 0
		for i, v := range col.Values {
			if v.IsMissing() {
				col.Values[i] = table.Null()
				continue
			}
			switch cat {
			case schema.Numeric:
				if f, ok := v.AsNumber(); ok {
					col.Values[i] = table.Num(f)
				} else {
					col.Values[i] = table.Null()
					failed++
				}
			case schema.Datetime:
				if ts, ok := v.AsTime(); ok {
					col.Values[i] = table.Timestamp(ts)
				} else {
					col.Values[i] = table.Null()
					failed++
				}
			default:
				if v.Kind != table.Text {
					col.Values[i] = table.Str(v.String())
				}
			}
		}
		if failed > 0 {
			rep.add(Action{Column: col.Name, Type: ActionCast, Count: failed})
			c.log.Warn("coercion failures set to missing", "column", col.Name, "category", string(cat), "count", failed)
		}
	}
}

// impute fills numeric gaps with the median and categorical gaps with the
// mode. Datetime columns keep their gaps.
func (c *Cleaner) impute(t *table.Table, s *schema.Schema, rep *Report) {
	for _, col := range t.Columns {
		missing := len(col.Values) - col.NonMissing()
		if missing == 0 {
			continue
		}
		cat, _ := s.Category(col.Name)
		var fill table.Value
		var recorded any
		switch cat {
		case schema.Numeric:
			vals := col.Numbers()
			if len(vals) == 0 {
				c.log.Warn("column has no values to impute from", "column", col.Name)
				continue
			}
			m := stats.Median(vals)
			fill, recorded = table.Num(m), m
		case schema.Categorical:
			keys := make([]string, 0, len(col.Values))
			for _, v := range col.Values {
				if !v.IsMissing() {
					keys = append(keys, v.Str)
				}
			}
			if len(keys) == 0 {
				c.log.Warn("column has no values to impute from", "column", col.Name)
				continue
			}
			mode, _ := stats.Mode(keys)
			fill, recorded = table.Str(mode), mode
		default:
			continue
		}
		for i, v := range col.Values {
			if v.IsMissing() {
				col.Values[i] = fill
			}
		}
		rep.add(Action{Column: col.Name, Type: ActionImpute, Count: missing, Value: recorded})
		c.log.Info("imputed missing values", "column", col.Name, "count", missing, "value", recorded)
	}
}

// capOutliers replaces values outside the IQR fences with the column median.
// The pass repeats on the updated column until nothing falls outside, so a
// second Clean over the result caps nothing. Each pass that changes a value
// is recorded as its own action with the fences it used.
func (c *Cleaner) capOutliers(t *table.Table, s *schema.Schema, rep *Report) {
	for _, col := range t.Columns {
		if cat, _ := s.Category(col.Name); cat != schema.Numeric {
			continue
		}
		for pass := 0; pass <= len(col.Values); pass++ {
			vals := col.Numbers()
			if len(vals) == 0 {
				break
			}
			lo, hi := stats.IQRBounds(vals, c.opt.IQRMultiplier)
			med := stats.Median(vals)
			n := 0
			for i, v := range col.Values {
				if v.IsMissing() {
					continue
				}
				if v.Num < lo || v.Num > hi {
					col.Values[i] = table.Num(med)
					n++
				}
			}
			if n == 0 {
				break
			}
			rep.add(Action{Column: col.Name, Type: ActionOutlierCap, Count: n, Value: Bounds{Lower: lo, Upper: hi}})
			c.log.Info("capped outliers", "column", col.Name, "pass", pass+1, "count", n, "lower", lo, "upper", hi)
		}
	}
}

func (c *Cleaner) flagHighCardinality(t *table.Table, s *schema.Schema, rep *Report) {
	for _, col := range t.Columns {
		if cat, _ := s.Category(col.Name); cat != schema.Categorical {
			continue
		}
		if n := col.Distinct(); n > c.opt.HighCardinalityLimit {
			rep.add(Action{Column: col.Name, Type: ActionHighCardinality, Count: n})
			c.log.Warn("high cardinality column", "column", col.Name, "unique", n)
		}
	}
}
