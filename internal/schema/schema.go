// Package schema classifies the columns of a table and guesses which ones are
// record identifiers and which one is the prediction target.
package schema

// Category is the semantic type assigned to a column.
type Category string

const (
	Numeric     Category = "numeric"
	Categorical Category = "categorical"
	Datetime    Category = "datetime"
)

// Schema is produced once per table and read by every later stage.
type Schema struct {
	// Columns lists every classified column in table order.
	Columns     []string            `json:"columns" yaml:"columns"`
	Categories  map[string]Category `json:"categories" yaml:"categories"`
	Identifiers []string            `json:"id_columns" yaml:"id_columns"`
	// Target is empty when no target column was found.
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
}

// Empty returns a schema with no columns.
func Empty() *Schema {
	return &Schema{Categories: map[string]Category{}}
}

// Category returns the category of name and whether it is known.
func (s *Schema) Category(name string) (Category, bool) {
	c, ok := s.Categories[name]
	return c, ok
}

// Numeric returns the numeric columns in table order.
func (s *Schema) Numeric() []string { return s.byCategory(Numeric) }

// Categorical returns the categorical columns in table order.
func (s *Schema) Categorical() []string { return s.byCategory(Categorical) }

// Datetime returns the datetime columns in table order.
func (s *Schema) Datetime() []string { return s.byCategory(Datetime) }

func (s *Schema) byCategory(c Category) []string {
	var out []string
	for _, name := range s.Columns {
		if s.Categories[name] == c {
			out = append(out, name)
		}
	}
	return out
}

// IsIdentifier reports whether name was flagged as an identifier column.
func (s *Schema) IsIdentifier(name string) bool {
	for _, id := range s.Identifiers {
		if id == name {
			return true
		}
	}
	return false
}

// HasTarget reports whether a target column was detected.
func (s *Schema) HasTarget() bool { return s.Target != "" }
