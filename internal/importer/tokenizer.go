package importer

import (
	"path/filepath"
	"strings"
)

// Row is one tokenized data line keyed by header name. Ordinal is the
// 1-based position among the non-blank data lines.
type Row struct {
	Ordinal int
	Fields  map[string]string
}

// Has reports whether the row's header declared the column.
func (r Row) Has(column string) bool {
	_, ok := r.Fields[column]
	return ok
}

// Get returns the token for column, or "" when absent.
func (r Row) Get(column string) string {
	return r.Fields[column]
}

// Table is a tokenized delimited file.
type Table struct {
	Headers []string
	Rows    []Row
}

// CheckFormat rejects anything that is not a .csv file.
func CheckFormat(filename string) error {
	if !strings.EqualFold(filepath.Ext(strings.TrimSpace(filename)), ".csv") {
		return ErrUnsupportedFormat
	}
	return nil
}

// Tokenize splits content into a header and data rows. Blank lines are
// skipped; cells missing from short rows read as "".
func Tokenize(content string) (*Table, error) {
	content = strings.TrimPrefix(content, "\uFEFF")
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return nil, ErrNoDataRows
	}

	rawHeaders := strings.Split(strings.TrimRight(lines[0], "\r"), ",")
	headers := make([]string, len(rawHeaders))
	for i, h := range rawHeaders {
		headers[i] = strings.ReplaceAll(strings.TrimSpace(h), `"`, "")
	}

	table := &Table{Headers: headers}
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		values := SplitLine(line)
		fields := make(map[string]string, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(values) {
				fields[h] = values[i]
			} else {
				fields[h] = ""
			}
		}
		table.Rows = append(table.Rows, Row{Ordinal: len(table.Rows) + 1, Fields: fields})
	}

	if len(table.Rows) == 0 {
		return nil, ErrNoDataRows
	}
	return table, nil
}

// SplitLine tokenizes one line on commas. Double quotes toggle quoting and
// are not part of the token; inside a quoted run a doubled quote is a
// literal quote. Tokens are trimmed.
func SplitLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}

	return append(fields, strings.TrimSpace(current.String()))
}
