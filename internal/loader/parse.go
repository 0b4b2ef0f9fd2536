package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KaramelBytes/cortexai-cli/internal/table"
)

var errNoColumns = errors.New("no columns to parse from file")

// parseTable reads decoded CSV text into a typed table.
func parseTable(text string, delim rune, missing map[string]bool) (*table.Table, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errNoColumns
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	names := headerNames(header)
	ncol := len(names)

	cells := make([][]string, ncol)
	line := 1
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++
		if len(rec) > ncol {
			return nil, fmt.Errorf("row %d: expected %d fields, saw %d", line, ncol, len(rec))
		}
		for j := 0; j < ncol; j++ {
			v := ""
			if j < len(rec) {
				v = rec[j]
			}
			cells[j] = append(cells[j], v)
		}
	}

	cols := make([]*table.Column, ncol)
	for j, name := range names {
		cols[j] = &table.Column{Name: name, Values: typeColumn(cells[j], missing)}
	}
	return table.New(cols...)
}

// headerNames trims names, fills blanks with "Unnamed: <i>" and suffixes
// duplicates with ".1", ".2", ...
func headerNames(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	dups := make(map[string]int)
	for i, h := range header {
		name := strings.TrimSpace(h)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		base := name
		for used[name] {
			dups[base]++
			name = base + "." + strconv.Itoa(dups[base])
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// typeColumn picks one type per column: all numbers, all booleans, or text.
func typeColumn(cells []string, missing map[string]bool) []table.Value {
	vals := make([]table.Value, len(cells))
	allNum, allBool := true, true
	for _, c := range cells {
		s := strings.TrimSpace(c)
		if missing[s] {
			continue
		}
		if _, ok := table.ParseNumber(s); !ok {
			allNum = false
		}
		if _, ok := table.ParseBool(s); !ok {
			allBool = false
		}
	}
	for i, c := range cells {
		s := strings.TrimSpace(c)
		switch {
		case missing[s]:
			vals[i] = table.Null()
		case allNum:
			f, _ := table.ParseNumber(s)
			vals[i] = table.Num(f)
		case allBool:
			b, _ := table.ParseBool(s)
			vals[i] = table.Boolean(b)
		default:
			vals[i] = table.Str(c)
		}
	}
	return vals
}
