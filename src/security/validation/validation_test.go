package validation

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateClientContentType(t *testing.T) {
	assert.NoError(t, ValidateClientContentType(""))
	assert.NoError(t, ValidateClientContentType("text/csv; charset=utf-8"))
	assert.NoError(t, ValidateClientContentType(KindXLSX))
	assert.NoError(t, ValidateClientContentType("application/vnd.ms-excel"))

	err := ValidateClientContentType("application/pdf")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestValidateFileContentByMagicBytes(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		content  []byte
		want     string
		wantErr  bool
	}{
		{"utf8 csv", "export.csv", []byte(";ID;DESCRIÇÃO;jan/25\n;001;Aluguel;10\n"), KindText, false},
		{"windows-1252 csv", "export.csv", []byte(";ID;DESCRI\xc7\xc3O;jan/25\n"), KindText, false},
		{"xlsx", "planilha.xlsx", append([]byte{'P', 'K', 3, 4}, make([]byte, 20)...), KindXLSX, false},
		{"xls", "planilha.xls", append(append([]byte{}, oleMagic...), 1, 2, 3), KindXLS, false},
		{"zip named csv", "export.csv", []byte{'P', 'K', 3, 4, 1}, KindXLSX, true},
		{"text named xlsx", "planilha.xlsx", []byte("a;b;c"), "", true},
		{"null bytes", "export.csv", []byte("a;b\x00;c"), "application/octet-stream", true},
		{"html", "export.csv", []byte("<html><body>x</body></html>"), "text/html", true},
		{"empty", "export.csv", nil, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bytes.NewReader(tt.content)
			got, err := ValidateFileContentByMagicBytes(r, tt.fileName)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)

			rest, readErr := io.ReadAll(r)
			require.NoError(t, readErr)
			assert.Equal(t, len(tt.content), len(rest), "read position must be reset")
		})
	}
}

func TestSanitizeDescription(t *testing.T) {
	assert.Equal(t, "Água & Luz", SanitizeDescription("  Água & Luz "))
	assert.Equal(t, "Aluguel", SanitizeDescription("<b>Aluguel</b><script>alert(1)</script>"))
	assert.Equal(t, "Conta d'água", SanitizeDescription("Conta d'água\x07"))
	assert.Equal(t, MaxDescriptionLength, len([]rune(SanitizeDescription(strings.Repeat("ç", MaxDescriptionLength+10)))))
}

func TestValidateRecordID(t *testing.T) {
	for _, ok := range []string{"001", "001.01", "3", "A1.B2"} {
		assert.NoError(t, ValidateRecordID(ok), ok)
	}
	for _, bad := range []string{"", " ", "001.", ".01", "001;DROP", strings.Repeat("1", MaxRecordIDLength+1)} {
		assert.ErrorIs(t, ValidateRecordID(bad), ErrValidationFailed, bad)
	}
}

func TestValidateMonthLabel(t *testing.T) {
	assert.NoError(t, ValidateMonthLabel("jan/25"))
	assert.NoError(t, ValidateMonthLabel("DEZ/24"))
	assert.Error(t, ValidateMonthLabel("jan/2025"))
	assert.Error(t, ValidateMonthLabel("feb/25"))
	assert.Error(t, ValidateMonthLabel(""))
}
