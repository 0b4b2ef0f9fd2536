package analysis

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/cortexai-cli/internal/schema"
)

// Verdicts returned by Assess.
const (
	VerdictHigh     = "High ML potential"
	VerdictModerate = "Moderate ML potential"
	VerdictLow      = "Low ML potential"
)

const noIssues = "No major data quality issues detected."

// Quality is the learnability assessment of a dataset.
type Quality struct {
	Score           int      `json:"learnability_score" yaml:"learnability_score"`
	Verdict         string   `json:"verdict" yaml:"verdict"`
	Reasons         []string `json:"reasons" yaml:"reasons"`
	Recommendations []string `json:"recommendations" yaml:"recommendations"`
}

// Assess scores the dataset from its schema and EDA report. The score starts
// at 100 and never drops below 0.
func Assess(s *schema.Schema, r *Report) *Quality {
	q := &Quality{Score: 100}
	if s == nil {
		s = schema.Empty()
	}
	q.checkIdentifiers(s)
	if r != nil {
		q.checkImbalance(r.Target)
	}
	if len(q.Reasons) == 0 {
		q.Reasons = append(q.Reasons, noIssues)
	}
	if q.Score < 0 {
		q.Score = 0
	}
	q.Verdict = verdict(q.Score)
	return q
}

func verdict(score int) string {
	switch {
	case score >= 70:
		return VerdictHigh
	case score >= 40:
		return VerdictModerate
	default:
		return VerdictLow
	}
}

func (q *Quality) penalize(points int, reason, recommendation string) {
	q.Score -= points
	q.Reasons = append(q.Reasons, reason)
	q.Recommendations = append(q.Recommendations, recommendation)
}

func (q *Quality) checkIdentifiers(s *schema.Schema) {
	numeric := len(s.Numeric())
	if numeric == 0 {
		q.penalize(30,
			"No meaningful numeric features detected.",
			"Add real-valued features relevant to the prediction task.")
		return
	}
	if float64(len(s.Identifiers))/float64(numeric) > 0.5 {
		q.penalize(25,
			"A large portion of features appear to be identifiers.",
			"Remove ID-like columns or replace them with domain features.")
	}
}

func (q *Quality) checkImbalance(t *TargetAnalysis) {
	if t == nil || t.Type != Classification || len(t.Classes) == 0 {
		return
	}
	most, least := t.Classes[0].Count, t.Classes[0].Count
	for _, c := range t.Classes[1:] {
		if c.Count > most {
			most = c.Count
		}
		if c.Count < least {
			least = c.Count
		}
	}
	if least < 1 {
		least = 1
	}
	ratio := float64(most) / float64(least)
	if ratio > 10 {
		q.penalize(20,
			fmt.Sprintf("Severe target class imbalance detected (ratio ≈ %.1f:1).", ratio),
			"Consider resampling, class weighting, or reframing the problem.")
	}
}

// Markdown renders the assessment.
func (q *Quality) Markdown() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Learnability score: %d/100 (%s)\n", q.Score, q.Verdict))
	for _, r := range q.Reasons {
		b.WriteString("- " + r + "\n")
	}
	if len(q.Recommendations) > 0 {
		b.WriteString("Recommendations:\n")
		for _, r := range q.Recommendations {
			b.WriteString("- " + r + "\n")
		}
	}
	return b.String()
}
