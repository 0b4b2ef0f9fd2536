package cleaner

import (
	"fmt"
	"strings"
)

// ActionType names one kind of cleaning step.
type ActionType string

const (
	ActionDrop            ActionType = "drop"
	ActionCast            ActionType = "cast"
	ActionImpute          ActionType = "impute"
	ActionOutlierCap      ActionType = "outlier-cap"
	ActionHighCardinality ActionType = "high-cardinality"
	ActionDropDuplicates  ActionType = "drop-duplicates"
)

// Bounds are the IQR fences used by an outlier-cap action.
type Bounds struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// Action records one transformation applied to one column.
//
// Count is the number of cells touched (rows for drop-duplicates, distinct
// values for high-cardinality). Value holds the fill value for impute and the
// Bounds for outlier-cap.
type Action struct {
	Column string     `json:"column,omitempty" yaml:"column,omitempty"`
	Type   ActionType `json:"type" yaml:"type"`
	Count  int        `json:"count" yaml:"count"`
	Value  any        `json:"value,omitempty" yaml:"value,omitempty"`
}

func (a Action) String() string {
	switch a.Type {
	case ActionDrop:
		return fmt.Sprintf("dropped identifier column %s", a.Column)
	case ActionCast:
		return fmt.Sprintf("%s: %d unparseable values set to missing", a.Column, a.Count)
	case ActionImpute:
		return fmt.Sprintf("%s: imputed %d missing values with %v", a.Column, a.Count, a.Value)
	case ActionOutlierCap:
		if b, ok := a.Value.(Bounds); ok {
			return fmt.Sprintf("%s: replaced %d outliers outside [%.4g, %.4g] with the median", a.Column, a.Count, b.Lower, b.Upper)
		}
		return fmt.Sprintf("%s: replaced %d outliers with the median", a.Column, a.Count)
	case ActionHighCardinality:
		return fmt.Sprintf("%s: high cardinality (%d distinct values)", a.Column, a.Count)
	case ActionDropDuplicates:
		return fmt.Sprintf("removed %d duplicate rows", a.Count)
	}
	return fmt.Sprintf("%s %s (%d)", a.Type, a.Column, a.Count)
}

// Report is the ordered log of everything Clean did.
type Report struct {
	Actions       []Action `json:"actions" yaml:"actions"`
	RowsBefore    int      `json:"rows_before" yaml:"rows_before"`
	RowsAfter     int      `json:"rows_after" yaml:"rows_after"`
	ColumnsBefore int      `json:"columns_before" yaml:"columns_before"`
	ColumnsAfter  int      `json:"columns_after" yaml:"columns_after"`
}

func (r *Report) add(a Action) { r.Actions = append(r.Actions, a) }

// Count returns the number of actions of type t.
func (r *Report) Count(t ActionType) int {
	n := 0
	for _, a := range r.Actions {
		if a.Type == t {
			n++
		}
	}
	return n
}

// Filter returns the actions of type t in the order they were applied.
func (r *Report) Filter(t ActionType) []Action {
	var out []Action
	for _, a := range r.Actions {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

// Cells returns the total count recorded for actions of type t.
func (r *Report) Cells(t ActionType) int {
	n := 0
	for _, a := range r.Actions {
		if a.Type == t {
			n += a.Count
		}
	}
	return n
}

// Markdown renders the report as a short sectioned document.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[CLEANING SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Rows: %d -> %d\n", r.RowsBefore, r.RowsAfter))
	b.WriteString(fmt.Sprintf("Columns: %d -> %d\n", r.ColumnsBefore, r.ColumnsAfter))
	b.WriteString(fmt.Sprintf("Actions: %d\n", len(r.Actions)))
	if len(r.Actions) == 0 {
		b.WriteString("\nNo cleaning was needed.\n")
		return b.String()
	}
	b.WriteString("\n[ACTIONS]\n")
	for i, a := range r.Actions {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, a))
	}
	return b.String()
}
