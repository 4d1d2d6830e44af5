package parsers

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/username/painelfinanceiro/backend/src/parsers/ledger"
	"github.com/username/painelfinanceiro/backend/src/parsers/spreadsheet"
)

// Parser turns an uploaded ledger export into rows of raw fields.
type Parser interface {
	Rows(r io.Reader) ([][]string, error)
}

// GetParser picks the parser for a file by its extension.
func GetParser(fileName string) (Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".csv", ".txt", "":
		return ledger.NewParser(), nil
	case ".xlsx":
		return spreadsheet.NewXLSXParser(), nil
	case ".xls":
		return spreadsheet.NewXLSParser(), nil
	default:
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}
}
