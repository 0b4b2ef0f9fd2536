package analysis

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/cortexai-cli/internal/logging"
	"github.com/KaramelBytes/cortexai-cli/internal/schema"
	"github.com/KaramelBytes/cortexai-cli/internal/table"
)

func nums(fs ...float64) []table.Value {
	out := make([]table.Value, len(fs))
	for i, f := range fs {
		out[i] = table.Num(f)
	}
	return out
}

func strs(ss ...string) []table.Value {
	out := make([]table.Value, len(ss))
	for i, s := range ss {
		out[i] = table.Str(s)
	}
	return out
}

func mustTable(t *testing.T, cols ...*table.Column) *table.Table {
	t.Helper()
	tb, err := table.New(cols...)
	require.NoError(t, err)
	return tb
}

func detect(tb *table.Table) *schema.Schema {
	return schema.NewDetector(schema.DefaultOptions(), logging.Discard()).Detect(tb)
}

func newTestAnalyzer() *Analyzer {
	return New(DefaultOptions(), logging.Discard())
}

func TestAnalyzeClassificationTarget(t *testing.T) {
	tb := mustTable(t,
		&table.Column{Name: "Width", Values: nums(3, 4, 5)},
		&table.Column{Name: "Species", Values: strs("a", "b", "a")},
	)
	s := detect(tb)

	rep := newTestAnalyzer().Analyze("iris.csv", tb, s)

	assert.Equal(t, 3, rep.Rows)
	require.Len(t, rep.Cols, 2)
	width := rep.Cols[0]
	assert.Equal(t, schema.Numeric, width.Kind)
	require.NotNil(t, width.Numeric)
	assert.Equal(t, 4.0, width.Numeric.Mean)
	assert.Equal(t, 4.0, width.Numeric.Median)
	assert.Equal(t, []string{"hist", "box"}, width.Plots)

	species := rep.Cols[1]
	assert.Equal(t, []CategoryCount{{"a", 2}, {"b", 1}}, species.TopValues)

	require.NotNil(t, rep.Target)
	assert.Equal(t, "Species", rep.Target.Column)
	assert.Equal(t, Classification, rep.Target.Type)
	assert.Equal(t, []CategoryCount{{"a", 2}, {"b", 1}}, rep.Target.Classes)
	assert.Len(t, rep.Samples, 3)
	assert.Equal(t, []string{"3", "a"}, rep.Samples[0])
	assert.Nil(t, rep.Corr)
}

func TestAnalyzeRegressionTarget(t *testing.T) {
	vals := make([]float64, 30)
	for i := range vals {
		vals[i] = float64(i) * 1.5
	}
	tb := mustTable(t,
		&table.Column{Name: "x", Values: nums(vals...)},
		&table.Column{Name: "target", Values: nums(vals...)},
	)
	rep := newTestAnalyzer().Analyze("", tb, detect(tb))

	require.NotNil(t, rep.Target)
	assert.Equal(t, Regression, rep.Target.Type)
	require.NotNil(t, rep.Target.Summary)
	assert.Equal(t, 0.0, rep.Target.Summary.Min)
	assert.Equal(t, 43.5, rep.Target.Summary.Max)
	assert.Empty(t, rep.Target.Classes)
}

func TestAnalyzeNumericTargetWithFewValuesIsClassification(t *testing.T) {
	tb := mustTable(t,
		&table.Column{Name: "x", Values: nums(1, 2, 3, 4)},
		&table.Column{Name: "label", Values: nums(0, 1, 0, 1)},
	)
	rep := newTestAnalyzer().Analyze("", tb, detect(tb))
	require.NotNil(t, rep.Target)
	assert.Equal(t, Classification, rep.Target.Type)
	assert.Equal(t, []CategoryCount{{"0", 2}, {"1", 2}}, rep.Target.Classes)
}

func TestAnalyzeCorrelationsAndPlots(t *testing.T) {
	tb := mustTable(t,
		&table.Column{Name: "x", Values: nums(1, 2, 3, 4, 5, 6)},
		&table.Column{Name: "y", Values: nums(2, 4, 6, 8, 10, 12)},
		&table.Column{Name: "z", Values: nums(5, 1, 4, 2, 6, 3)},
		&table.Column{Name: "city", Values: strs("p", "q", "p", "q", "p", "q")},
	)
	s := detect(tb)
	rep := newTestAnalyzer().Analyze("", tb, s)

	require.NotNil(t, rep.Corr)
	assert.Equal(t, []string{"x", "y", "z"}, rep.Corr.Columns)
	r, ok := rep.Corr.At("x", "y")
	require.True(t, ok)
	assert.Equal(t, 1.0, r)
	r, _ = rep.Corr.At("y", "x")
	assert.Equal(t, 1.0, r)
	_, ok = rep.Corr.At("x", "city")
	assert.False(t, ok)

	assert.Equal(t, []PairCorr{{A: "x", B: "y", R: 1}}, rep.HighCorr)
	assert.Equal(t, []string{"hist", "box", "scatter_with:y"}, rep.Cols[0].Plots)
	assert.Equal(t, []string{"hist", "box", "scatter_with:x"}, rep.Cols[1].Plots)
	assert.Equal(t, []string{"hist", "box"}, rep.Cols[2].Plots)
}

func TestAnalyzeCorrelationSkipsMissingPairs(t *testing.T) {
	tb := mustTable(t,
		&table.Column{Name: "a", Values: []table.Value{table.Num(1), table.Num(2), table.Null(), table.Num(4)}},
		&table.Column{Name: "b", Values: []table.Value{table.Num(2), table.Num(4), table.Num(100), table.Num(8)}},
	)
	s := schema.Empty()
	s.Columns = []string{"a", "b"}
	s.Categories["a"] = schema.Numeric
	s.Categories["b"] = schema.Numeric

	rep := newTestAnalyzer().Analyze("", tb, s)
	r, _ := rep.Corr.At("a", "b")
	assert.Equal(t, 1.0, r)
}

func TestAnalyzeBinaryOutcomes(t *testing.T) {
	tb := mustTable(t,
		&table.Column{Name: "sex", Values: strs("m", "f", "m", "f", "f", "m")},
		&table.Column{Name: "age", Values: nums(20, 30, 40, 50, 60, 70)},
		&table.Column{Name: "survived", Values: nums(1, 0, 1, 0, 1, 1)},
	)
	rep := newTestAnalyzer().Analyze("", tb, detect(tb))

	assert.Equal(t, []string{"sex", "survived"}, rep.BinaryOutcomes)
	require.Len(t, rep.OutcomeRates, 1)
	o := rep.OutcomeRates[0]
	assert.Equal(t, "survived", o.Outcome)
	assert.Equal(t, "sex", o.Feature)
	assert.Equal(t, []CategoryRate{
		{Value: "f", Count: 3, Rate: 0.333},
		{Value: "m", Count: 3, Rate: 1},
	}, o.Rates)
}

func TestAnalyzeSkewInsight(t *testing.T) {
	tb := mustTable(t,
		&table.Column{Name: "income", Values: nums(1, 1, 1, 1, 1, 1, 1, 1, 1, 50)},
		&table.Column{Name: "flat", Values: nums(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)},
	)
	rep := newTestAnalyzer().Analyze("", tb, detect(tb))
	assert.Equal(t, skewInsight, rep.Cols[0].Insight)
	assert.Empty(t, rep.Cols[1].Insight)
}

func TestAnalyzeSkipsDroppedSchemaColumns(t *testing.T) {
	orig := mustTable(t,
		&table.Column{Name: "Id", Values: nums(1, 2, 3)},
		&table.Column{Name: "v", Values: nums(1, 5, 9)},
	)
	s := detect(orig)
	cleaned := mustTable(t, &table.Column{Name: "v", Values: nums(1, 5, 9)})

	rep := newTestAnalyzer().Analyze("", cleaned, s)
	require.Len(t, rep.Cols, 1)
	assert.Equal(t, "v", rep.Cols[0].Name)
	assert.Nil(t, rep.Corr)
}

func TestAnalyzeEmptyTable(t *testing.T) {
	rep := newTestAnalyzer().Analyze("empty.csv", &table.Table{}, nil)
	assert.Zero(t, rep.Rows)
	assert.Empty(t, rep.Cols)
	assert.NotEmpty(t, rep.Warnings)
}

func TestAnalyzeNoTargetWarns(t *testing.T) {
	tb := mustTable(t,
		&table.Column{Name: "n", Values: nums(1, 2, 3)},
		&table.Column{Name: "id", Values: nums(1, 2, 3)},
	)
	var buf bytes.Buffer
	rep := New(DefaultOptions(), logging.New(&buf, "info", "text")).Analyze("", tb, detect(tb))
	assert.Nil(t, rep.Target)
	assert.Contains(t, rep.Warnings, "No target column found; supervised learning needs one.")
	assert.Contains(t, buf.String(), "component=analysis")
}

func TestTopValuesLimit(t *testing.T) {
	vals := make([]table.Value, 0, 30)
	for i := 0; i < 10; i++ {
		for j := 0; j <= i; j++ {
			vals = append(vals, table.Str(fmt.Sprintf("c%d", i)))
		}
	}
	tb := mustTable(t, &table.Column{Name: "cat", Values: vals})
	s := schema.Empty()
	s.Columns = []string{"cat"}
	s.Categories["cat"] = schema.Categorical

	opt := DefaultOptions()
	opt.TopValues = 3
	rep := New(opt, nil).Analyze("", tb, s)
	assert.Equal(t, []CategoryCount{{"c9", 10}, {"c8", 9}, {"c7", 8}}, rep.Cols[0].TopValues)
	assert.Equal(t, 10, rep.Cols[0].Unique)
}

func TestReportMarkdown(t *testing.T) {
	tb := mustTable(t,
		&table.Column{Name: "x", Values: nums(1, 2, 3, 4)},
		&table.Column{Name: "z", Values: nums(2, 4, 6, 8)},
		&table.Column{Name: "grp", Values: strs("a", "b", "a", "b")},
		&table.Column{Name: "churn", Values: nums(1, 0, 1, 1)},
	)
	s := detect(tb)
	rep := newTestAnalyzer().Analyze("data.csv", tb, s)
	rep.Quality = Assess(s, rep)

	md := rep.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: data.csv",
		"Rows: 4",
		"[SCHEMA]",
		"- x: numeric (non-null 4, missing 0.0%)",
		"scatter_with:z",
		"- grp: categorical",
		"[TARGET]",
		"Column: churn (classification)",
		"[CORRELATIONS]",
		"- x ~ z: r=1.000",
		"[BINARY OUTCOMES]",
		"- churn by grp: a=1.000 (n=2), b=0.500 (n=2)",
		"[HEAD AND SAMPLE ROWS]",
		"| x | z | grp | churn |",
		"[QUALITY]",
		"Learnability score:",
	} {
		assert.Contains(t, md, want)
	}
}
