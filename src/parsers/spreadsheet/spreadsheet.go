// Package spreadsheet reads ledger exports saved as Excel workbooks. Only the first sheet
// is read and the result has the same layout as the ";"-delimited text export.
package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// firstValueColumn is where month values start; earlier columns are kept verbatim so ids
// like "001.01" are not read as numbers.
const firstValueColumn = 3

// XLSXParser reads .xlsx workbooks.
type XLSXParser struct{}

// XLSParser reads legacy .xls workbooks.
type XLSParser struct{}

func NewXLSXParser() *XLSXParser { return &XLSXParser{} }

func NewXLSParser() *XLSParser { return &XLSParser{} }

// Rows returns the cells of the first sheet. Only cells stored as numbers are rewritten
// to the "," decimal convention; text cells reach the normalizer as typed. Header cells
// holding dates (Excel turns a typed "jan/25" into one) become month labels.
func (p *XLSXParser) Rows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx parser: failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("xlsx parser: workbook has no sheets")
	}
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("xlsx parser: failed to get rows: %w", err)
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	for i, row := range rows {
		for j := firstValueColumn; j < len(row); j++ {
			if strings.TrimSpace(row[j]) == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, fmt.Errorf("xlsx parser: %w", err)
			}
			cellType, err := f.GetCellType(sheetName, cell)
			if err != nil {
				return nil, fmt.Errorf("xlsx parser: failed to read type of %s: %w", cell, err)
			}
			// Numbers carry no type attribute or "n"; anything else is kept verbatim.
			if cellType != excelize.CellTypeUnset && cellType != excelize.CellTypeNumber {
				continue
			}
			if i == 0 {
				if isDateCell(f, sheetName, cell) {
					row[j] = serialMonthLabel(row[j], date1904)
				}
				continue
			}
			row[j] = localizeNumber(row[j])
		}
	}
	return rows, nil
}

func isDateCell(f *excelize.File, sheet, cell string) bool {
	styleIdx, err := f.GetCellStyle(sheet, cell)
	if err != nil || styleIdx == 0 {
		return false
	}
	style, err := f.GetStyle(styleIdx)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		code := strings.ToLower(*style.CustomNumFmt)
		return strings.Contains(code, "yy") || strings.Contains(code, "mmm")
	}
	return isDateNumFmt(style.NumFmt)
}

// isDateNumFmt reports the built-in number formats that render dates.
func isDateNumFmt(id int) bool {
	return (id >= 14 && id <= 17) || id == 22 || (id >= 27 && id <= 36) || (id >= 50 && id <= 58)
}

var monthAbbreviations = [12]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// monthLabel renders t the way ledger headers name months, e.g. "jan/25".
func monthLabel(t time.Time) string {
	return fmt.Sprintf("%s/%02d", monthAbbreviations[t.Month()-1], t.Year()%100)
}

// serialMonthLabel turns an Excel date serial into a month label. Values that are not
// serials are returned unchanged.
func serialMonthLabel(raw string, date1904 bool) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || serial <= 0 {
		return raw
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return raw
	}
	return monthLabel(t)
}

// Rows returns the cells of the first sheet.
func (p *XLSParser) Rows(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("xls parser: failed to read file: %w", err)
	}
	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("xls parser: failed to open workbook: %w", err)
	}
	if book == nil {
		return nil, errors.New("xls parser: file has no workbook stream")
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("xls parser: workbook has no sheets")
	}

	var rows [][]string
	// Cells come back as strings without their type, so every value cell is read as a number.
	// Date-formatted header cells are rendered by the reader as "2006.01" or RFC 3339.
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	if len(rows) > 0 {
		for j := firstValueColumn; j < len(rows[0]); j++ {
			rows[0][j] = xlsDateLabel(rows[0][j])
		}
	}
	return localizeRows(rows), nil
}

// xlsDateLabel maps the date renderings of the xls reader to month labels.
func xlsDateLabel(cell string) string {
	s := strings.TrimSpace(cell)
	if t, err := time.Parse("2006.01", s); err == nil {
		return monthLabel(t)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return monthLabel(t)
	}
	return cell
}

// localizeRows rewrites numeric value cells below the header ("-200.5") in the ","
// decimal convention ("-200,5") expected by the ledger normalizer.
func localizeRows(rows [][]string) [][]string {
	for i := 1; i < len(rows); i++ {
		for j := firstValueColumn; j < len(rows[i]); j++ {
			rows[i][j] = localizeNumber(rows[i][j])
		}
	}
	return rows
}

func localizeNumber(cell string) string {
	s := strings.TrimSpace(cell)
	if s == "" || strings.Contains(s, ",") {
		return cell
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return cell
	}
	return strings.Replace(strconv.FormatFloat(v, 'f', -1, 64), ".", ",", 1)
}
