// Package table holds the in-memory tabular dataset passed between pipeline
// stages. Columns are stored by position; every column has the same length.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the scalar type stored in a Value.
type Kind uint8

const (
	Missing Kind = iota
	Number
	Text
	Bool
	Time
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Text:
		return "text"
	case Bool:
		return "bool"
	case Time:
		return "time"
	default:
		return "missing"
	}
}

// Value is a single cell. Only the field matching Kind is meaningful.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	Bool bool
	Time time.Time
}

// Constructors for the common cell kinds.
func Null() Value                 { return Value{Kind: Missing} }
func Num(f float64) Value         { return Value{Kind: Number, Num: f} }
func Str(s string) Value          { return Value{Kind: Text, Str: s} }
func Boolean(b bool) Value        { return Value{Kind: Bool, Bool: b} }
func Timestamp(t time.Time) Value { return Value{Kind: Time, Time: t} }

// IsMissing reports whether the cell holds the missing marker. A NaN number
// counts as missing.
func (v Value) IsMissing() bool {
	return v.Kind == Missing || (v.Kind == Number && math.IsNaN(v.Num))
}

// String renders the cell the way it is written back to CSV.
func (v Value) String() string {
	switch v.Kind {
	case Number:
		if math.IsNaN(v.Num) {
			return ""
		}
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case Text:
		return v.Str
	case Bool:
		if v.Bool {
			return "True"
		}
		return "False"
	case Time:
		return v.Time.Format(time.RFC3339)
	default:
		return ""
	}
}

// Key returns a kind-qualified string used for distinct counting and
// duplicate detection.
func (v Value) Key() string {
	if v.IsMissing() {
		return "\x00"
	}
	return v.Kind.String() + ":" + v.String()
}

// Column is a named, ordered sequence of cells.
type Column struct {
	Name   string
	Values []Value
}

// NonMissing returns the number of cells that are not missing.
func (c *Column) NonMissing() int {
	n := 0
	for _, v := range c.Values {
		if !v.IsMissing() {
			n++
		}
	}
	return n
}

// Distinct returns the number of distinct non-missing values.
func (c *Column) Distinct() int {
	seen := make(map[string]struct{}, len(c.Values))
	for _, v := range c.Values {
		if v.IsMissing() {
			continue
		}
		seen[v.Key()] = struct{}{}
	}
	return len(seen)
}

// Numbers returns the non-missing numeric cells in column order.
func (c *Column) Numbers() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if v.Kind == Number && !math.IsNaN(v.Num) {
			out = append(out, v.Num)
		}
	}
	return out
}

// Table is an ordered set of equal-length columns plus a row index.
type Table struct {
	Columns []*Column
	Index   []int
}

// New builds a table from columns and assigns a contiguous index. It returns
// an error if column lengths differ.
func New(cols ...*Column) (*Table, error) {
	t := &Table{Columns: cols}
	n := -1
	for _, c := range cols {
		if n >= 0 && len(c.Values) != n {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, len(c.Values), n)
		}
		n = len(c.Values)
	}
	t.ResetIndex()
	return t, nil
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// NumCols returns the column count.
func (t *Table) NumCols() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by exact name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Clone returns a deep copy. Stages hand tables to each other by copy.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{
		Columns: make([]*Column, len(t.Columns)),
		Index:   append([]int(nil), t.Index...),
	}
	for i, c := range t.Columns {
		vals := make([]Value, len(c.Values))
		copy(vals, c.Values)
		out.Columns[i] = &Column{Name: c.Name, Values: vals}
	}
	return out
}

// DropColumn removes the named column. It reports whether a column was removed.
func (t *Table) DropColumn(name string) bool {
	for i, c := range t.Columns {
		if c.Name == name {
			t.Columns = append(t.Columns[:i], t.Columns[i+1:]...)
			return true
		}
	}
	return false
}

// DropRows removes the rows at the given positions (not index labels).
func (t *Table) DropRows(positions map[int]bool) {
	if len(positions) == 0 {
		return
	}
	for _, c := range t.Columns {
		kept := c.Values[:0]
		for i, v := range c.Values {
			if !positions[i] {
				kept = append(kept, v)
			}
		}
		c.Values = kept
	}
	idx := t.Index[:0]
	for i, label := range t.Index {
		if !positions[i] {
			idx = append(idx, label)
		}
	}
	t.Index = idx
}

// RowKey joins the cell keys of one row; equal keys mean equal rows.
func (t *Table) RowKey(i int) string {
	var b strings.Builder
	for j, c := range t.Columns {
		if j > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(c.Values[i].Key())
	}
	return b.String()
}

// ResetIndex renumbers rows 0..n-1.
func (t *Table) ResetIndex() {
	n := t.NumRows()
	t.Index = make([]int, n)
	for i := range t.Index {
		t.Index[i] = i
	}
}

// WriteCSV writes a header row followed by every row using the delimiter.
func (t *Table) WriteCSV(w io.Writer, delim rune) error {
	cw := csv.NewWriter(w)
	if delim != 0 {
		cw.Comma = delim
	}
	if err := cw.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(t.Columns))
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range t.Columns {
			rec[j] = c.Values[i].String()
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
