package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/KaramelBytes/cortexai-cli/internal/utils"
)

// newTable returns a box table writing to w. Headers keep their case since
// they are often CSV column names.
func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	t.SetStyle(style)
	return t
}

// renderData writes v as JSON or YAML. It reports false for other formats.
func renderData(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		b, err := utils.YAML(v)
		if err != nil {
			return true, err
		}
		_, err = w.Write(b)
		return true, err
	}
	return false, nil
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%.4g", x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// renderTable renders t as Markdown when asked, otherwise as a box table.
func renderTable(t table.Writer, format string) {
	if format == "markdown" {
		t.RenderMarkdown()
		return
	}
	t.Render()
}
