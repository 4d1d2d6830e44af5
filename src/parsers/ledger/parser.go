// Package ledger reads the semicolon-delimited ledger export:
//
//	;ID;DESCRIÇÃO;jan/25;fev/25;...
//	;001;Moradia;1.500,00;(200,50);...
//
// Column 0 is ignored, column 1 holds the record id, column 2 the description
// and every following column a month of values.
package ledger

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/username/painelfinanceiro/backend/src/models"
	"golang.org/x/text/encoding/charmap"
)

const (
	idColumn          = 1
	descriptionColumn = 2
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RawRecord holds the fields of one data row after numeric normalization.
type RawRecord struct {
	ID          string
	Description string
	Values      models.MonthlyValues
}

// TextParser reads ";"-delimited text exports.
type TextParser struct{}

// NewParser creates a new instance of the TextParser.
func NewParser() *TextParser {
	return &TextParser{}
}

// Rows reads the whole export and returns its rows split into fields.
func (p *TextParser) Rows(r io.Reader) ([][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ledger parser: failed to read file: %w", err)
	}
	return SplitRows(DecodeText(raw))
}

// DecodeText turns the file bytes into text. Exports saved by spreadsheet tools are often
// Windows-1252 rather than UTF-8, so invalid UTF-8 is decoded with that charset.
func DecodeText(raw []byte) string {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "�")
	}
	return string(decoded)
}

// SplitRows splits text into rows of ";"-separated fields. Blank lines are dropped.
func SplitRows(text string) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1 // Allow variable number of fields per record
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ledger parser: failed to split rows: %w", err)
	}
	return rows, nil
}

// ParseRow extracts a record from a data row. Rows without id or description are
// reported as not ok and must be skipped.
func ParseRow(fields []string, months []MonthColumn) (RawRecord, bool) {
	id := field(fields, idColumn)
	description := field(fields, descriptionColumn)
	if id == "" || description == "" {
		return RawRecord{}, false
	}

	values := make(models.MonthlyValues, 0, len(months))
	for _, m := range months {
		values = append(values, models.MonthValue{Month: m.Label, Value: NormalizeValue(field(fields, m.Index))})
	}
	return RawRecord{ID: id, Description: description, Values: values}, true
}

func field(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}
