package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/go-overlay/go-overlay"
)

// table is a parsed comma-separated file: its header, indexed by lowercase
// column name, and its rows with the line each starts on.
type table struct {
	name    string
	header  []string
	columns map[string]int
	rows    [][]string
	lines   []int
}

func (t *table) errorf(line int, format string, args ...any) error {
	return &SyntaxError{File: t.name, Line: line, Err: fmt.Errorf(format, args...)}
}

// cell returns the trimmed value of the named column, or "" if the file has no
// such column.
func (t *table) cell(row []string, column string) string {
	i, ok := t.columns[column]
	if !ok {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// readTable parses comma-separated data whose first line (lineOffset lines into
// the file) is the header row.
func readTable(name string, data []byte, lineOffset int) (*table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true

	t := &table{name: name, columns: make(map[string]int)}
	header, err := r.Read()
	if err == io.EOF {
		return nil, &SyntaxError{File: name, Line: lineOffset + 1, Err: errors.New("missing header row")}
	}
	if err != nil {
		return nil, csvError(name, lineOffset, err)
	}
	for i, h := range header {
		h = strings.TrimSpace(h)
		key := strings.ToLower(h)
		if h == "" {
			return nil, t.errorf(lineOffset+1, "empty column name at position %d", i+1)
		}
		if _, dup := t.columns[key]; dup {
			return nil, t.errorf(lineOffset+1, "duplicate column %q", h)
		}
		t.header = append(t.header, h)
		t.columns[key] = i
	}
	if _, ok := t.columns["tank"]; !ok {
		return nil, t.errorf(lineOffset+1, "header has no tank column")
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return nil, csvError(name, lineOffset, err)
		}
		line, _ := r.FieldPos(0)
		t.rows = append(t.rows, row)
		t.lines = append(t.lines, lineOffset+line)
	}
}

func csvError(name string, lineOffset int, err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &SyntaxError{File: name, Line: lineOffset + perr.Line, Err: perr.Err}
	}
	return &SyntaxError{File: name, Err: err}
}

// rowHeader holds the columns every override row may carry.
type rowHeader struct {
	tank      string
	version   overlay.Version
	tombstone bool
}

func (t *table) rowHeader(row []string, line int) (rowHeader, error) {
	h := rowHeader{tank: t.cell(row, "tank")}
	if h.tank == "" {
		return h, t.errorf(line, "empty tank")
	}
	v, err := overlay.ParseVersion(t.cell(row, "version"))
	if err != nil {
		return h, t.errorf(line, "%v", err)
	}
	h.version = v
	if s := t.cell(row, "tombstone"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return h, t.errorf(line, "tombstone %q is not a boolean", s)
		}
		h.tombstone = b
	}
	return h, nil
}

var classificationColumns = []string{"tank", "version", "tombstone", "country", "tier", "class", "category", "image"}

// parseClassification parses a classification override file.
func parseClassification(f file, data []byte) (overlay.ClassificationBatch, error) {
	b := overlay.ClassificationBatch{Source: f.name, FileVersion: f.fileVersion}
	t, err := readTable(f.name, data, 0)
	if err != nil {
		return b, err
	}
	for _, h := range t.header {
		if !slices.Contains(classificationColumns, strings.ToLower(h)) {
			return b, t.errorf(1, "unknown column %q", h)
		}
	}

	for i, row := range t.rows {
		line := t.lines[i]
		h, err := t.rowHeader(row, line)
		if err != nil {
			return b, err
		}
		e := overlay.ClassificationEdit{Tank: h.tank, Version: h.version, Tombstone: h.tombstone}
		if s := t.cell(row, "country"); s != "" {
			e.Country = overlay.Ptr(s)
		}
		if s := t.cell(row, "tier"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return b, t.errorf(line, "tier %q is not a number", s)
			}
			e.Tier = overlay.Ptr(n)
		}
		if s := t.cell(row, "class"); s != "" {
			c, err := overlay.ParseTankClass(s)
			if err != nil {
				return b, t.errorf(line, "%v", err)
			}
			e.Class = &c
		}
		if s := t.cell(row, "category"); s != "" {
			c, err := overlay.ParseCategory(s)
			if err != nil {
				return b, t.errorf(line, "%v", err)
			}
			e.Category = &c
		}
		if s := t.cell(row, "image"); s != "" {
			e.ImageName = overlay.Ptr(s)
		}
		b.Edits = append(b.Edits, e)
	}
	return b, nil
}

// directives collects the leading '#' lines of a property file. Keys are
// lowercase column names; the empty key applies to every column.
type directives struct {
	inherits     map[string]inheritsDirective
	descriptions map[string]map[string]string
}

// inheritsDirective is the unparsed property key of an inherits directive and
// the line it was found on.
type inheritsDirective struct {
	key  string
	line int
}

// splitDirectives separates the leading '#' lines of data from the table that
// follows them. Lines that start with '#' but are not directives are comments.
func splitDirectives(name string, data []byte) (directives, []byte, int, error) {
	d := directives{
		inherits:     make(map[string]inheritsDirective),
		descriptions: make(map[string]map[string]string),
	}
	lines := 0
	for len(data) > 0 && data[0] == '#' {
		line, rest, _ := bytes.Cut(data, []byte("\n"))
		data = rest
		lines++
		if err := d.parse(strings.TrimSpace(string(line[1:])), lines); err != nil {
			return d, nil, 0, &SyntaxError{File: name, Line: lines, Err: err}
		}
	}
	return d, data, lines, nil
}

func (d *directives) parse(line string, n int) error {
	left, value, found := strings.Cut(line, ":")
	words := strings.Fields(left)
	if !found || len(words) == 0 {
		return nil
	}
	value = strings.TrimSpace(value)
	switch strings.ToLower(words[0]) {
	case "inherits":
		if len(words) > 2 {
			return fmt.Errorf("directive %q: want '# inherits [column]: <property>'", line)
		}
		column := ""
		if len(words) == 2 {
			column = strings.ToLower(words[1])
		}
		if value == "" {
			return fmt.Errorf("directive %q: missing property", line)
		}
		d.inherits[column] = inheritsDirective{key: value, line: n}
	case "description":
		var column, lang string
		switch len(words) {
		case 2:
			lang = words[1]
		case 3:
			column, lang = strings.ToLower(words[1]), words[2]
		default:
			return fmt.Errorf("directive %q: want '# description [column] <lang>: <text>'", line)
		}
		if d.descriptions[column] == nil {
			d.descriptions[column] = make(map[string]string)
		}
		d.descriptions[column][lang] = value
	}
	return nil
}

// parseProperties parses a property override file into one batch per value
// column.
func parseProperties(f file, data []byte) ([]overlay.PropertyBatch, error) {
	d, data, offset, err := splitDirectives(f.name, data)
	if err != nil {
		return nil, err
	}
	t, err := readTable(f.name, data, offset)
	if err != nil {
		return nil, err
	}
	headerLine := offset + 1

	var valueColumns []int
	for i, h := range t.header {
		switch strings.ToLower(h) {
		case "tank", "version", "tombstone":
		default:
			valueColumns = append(valueColumns, i)
		}
	}
	if len(valueColumns) == 0 {
		return nil, t.errorf(headerLine, "header has no value column")
	}
	for column := range d.inherits {
		if _, ok := t.columns[column]; column != "" && !ok {
			return nil, t.errorf(headerLine, "inherits directive names unknown column %q", column)
		}
	}
	for column := range d.descriptions {
		if _, ok := t.columns[column]; column != "" && !ok {
			return nil, t.errorf(headerLine, "description directive names unknown column %q", column)
		}
	}

	batches := make([]overlay.PropertyBatch, len(valueColumns))
	for j, i := range valueColumns {
		column := strings.ToLower(t.header[i])
		b := overlay.PropertyBatch{
			Source:       f.name,
			FileVersion:  f.fileVersion,
			Key:          overlay.PropertyKey{FileID: f.fileID, Author: f.author},
			Descriptions: make(map[string]string),
		}
		if len(valueColumns) > 1 {
			b.Key.ColumnID = t.header[i]
		}

		inherits, ok := d.inherits[column]
		if !ok {
			inherits, ok = d.inherits[""]
		}
		if ok {
			parent, err := overlay.ParsePropertyKey(inherits.key, f.author)
			if err != nil {
				return nil, t.errorf(inherits.line, "inherits %q: %v", inherits.key, err)
			}
			b.InheritsFrom = &parent
		}
		for lang, text := range d.descriptions[""] {
			b.Descriptions[lang] = text
		}
		for lang, text := range d.descriptions[column] {
			b.Descriptions[lang] = text
		}
		batches[j] = b
	}

	for r, row := range t.rows {
		line := t.lines[r]
		h, err := t.rowHeader(row, line)
		if err != nil {
			return nil, err
		}
		for j, i := range valueColumns {
			value := strings.TrimSpace(row[i])
			switch {
			case h.tombstone && value != "":
				return nil, t.errorf(line, "tombstone row sets column %q", t.header[i])
			case h.tombstone:
				batches[j].Edits = append(batches[j].Edits, overlay.PropertyEdit{Tank: h.tank, Version: h.version, Tombstone: true})
			case value != "":
				batches[j].Edits = append(batches[j].Edits, overlay.PropertyEdit{Tank: h.tank, Version: h.version, Value: value})
			}
		}
	}
	return batches, nil
}
