package ledger

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	idLabel          = "ID"
	descriptionLabel = "DESCRICAO" // accent-folded DESCRIÇÃO
	firstMonthColumn = 3
	minHeaderFields  = 3
)

var monthLabelRegex = regexp.MustCompile(`(?i)^(jan|fev|mar|abr|mai|jun|jul|ago|set|out|nov|dez)/\d{2}$`)

// MonthColumn is a month label of the header and the column it was found in.
type MonthColumn struct {
	Label string
	Index int
}

// IsMonthLabel reports whether s looks like "jan/25" (Portuguese abbreviations).
func IsMonthLabel(s string) bool {
	return monthLabelRegex.MatchString(strings.TrimSpace(s))
}

// ValidateHeader reports whether the header row follows the ledger export layout:
// an ID column, a DESCRIÇÃO column and at least one month column from index 3 on.
func ValidateHeader(fields []string) bool {
	if len(fields) < minHeaderFields {
		return false
	}

	var hasID, hasDescription, hasMonth bool
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if strings.EqualFold(f, idLabel) {
			hasID = true
		}
		if isDescriptionLabel(f) {
			hasDescription = true
		}
		if i >= firstMonthColumn && IsMonthLabel(f) {
			hasMonth = true
		}
	}
	return hasID && hasDescription && hasMonth
}

// MonthColumns returns the month columns of a header in order.
// Repeated labels keep their first column only.
func MonthColumns(fields []string) []MonthColumn {
	var months []MonthColumn
	seen := make(map[string]bool)
	for i := firstMonthColumn; i < len(fields); i++ {
		label := strings.TrimSpace(fields[i])
		if !IsMonthLabel(label) {
			continue
		}
		key := strings.ToLower(label)
		if seen[key] {
			continue
		}
		seen[key] = true
		months = append(months, MonthColumn{Label: label, Index: i})
	}
	return months
}

func isDescriptionLabel(s string) bool {
	return strings.ToUpper(foldAccents(s)) == descriptionLabel
}

// foldAccents strips combining marks, turning "DESCRIÇÃO" into "DESCRICAO".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
