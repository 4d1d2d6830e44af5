// backend/src/security/validation/field_validator.go
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var ErrValidationFailed = fmt.Errorf("validation failed")

const (
	DefaultMaxStringLength = 255
	MaxRecordIDLength      = 32
	MaxMonthLabelLength    = 6
	MaxDescriptionLength   = 255
	MaxTopExpensesLimit    = 100
)

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidateStringRegex checks if a string matches a given regex pattern.
func ValidateStringRegex(s string, pattern *regexp.Regexp, fieldName, formatDescription string) error {
	if !pattern.MatchString(s) {
		return fmt.Errorf("%w: %s ('%s') is not in the expected format (%s)", ErrValidationFailed, fieldName, s, formatDescription)
	}
	return nil
}

var (
	recordIDRegex   = regexp.MustCompile(`^[0-9A-Za-z]+(\.[0-9A-Za-z]+)*$`)
	monthLabelRegex = regexp.MustCompile(`(?i)^(jan|fev|mar|abr|mai|jun|jul|ago|set|out|nov|dez)/\d{2}$`)
)

// ValidateRecordID checks a category or subcategory identifier such as "001" or "001.01".
func ValidateRecordID(s string) error {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, "ID"); err != nil {
		return err
	}
	if err := ValidateStringMaxLength(trimmed, MaxRecordIDLength, "ID"); err != nil {
		return err
	}
	return ValidateStringRegex(trimmed, recordIDRegex, "ID", "dot-separated alphanumeric segments")
}

// ValidateMonthLabel checks a month column label such as "jan/25".
func ValidateMonthLabel(s string) error {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, "month"); err != nil {
		return err
	}
	if err := ValidateStringMaxLength(trimmed, MaxMonthLabelLength, "month"); err != nil {
		return err
	}
	return ValidateStringRegex(trimmed, monthLabelRegex, "month", "mmm/yy with a Portuguese month abbreviation")
}
