package validation

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/username/painelfinanceiro/backend/src/logger"
)

// Detected file kinds returned by ValidateFileContentByMagicBytes.
const (
	KindText = "text/plain"
	KindXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	KindXLS  = "application/vnd.ms-excel"
)

var (
	zipMagic = []byte{'P', 'K', 0x03, 0x04}
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// AllowedClientContentTypes is a map for quick lookup of allowed client-declared MIME types.
var AllowedClientContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"text/plain":               true,
	"application/octet-stream": true, // some browsers send this for .csv without a registered handler
	KindXLS:                    true,
	KindXLSX:                   true,
}

// ValidateClientContentType checks the Content-Type header provided by the client.
// An empty header is accepted; the content itself is checked by ValidateFileContentByMagicBytes.
func ValidateClientContentType(contentType string) error {
	if contentType == "" {
		return nil
	}
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if !AllowedClientContentTypes[mediaType] {
		logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType)
		return fmt.Errorf("%w: client-declared file type '%s' is not allowed for ledger import", ErrValidationFailed, contentType)
	}
	return nil
}

// isBinaryContent reports null bytes, which a delimited text export never contains.
// Invalid UTF-8 is allowed because exports are frequently Windows-1252.
func isBinaryContent(buf []byte) bool {
	return bytes.IndexByte(buf, 0) != -1
}

// ValidateFileContentByMagicBytes inspects the first bytes of file and returns its detected kind.
// The kind must agree with the extension of fileName. The read position is reset afterwards.
func ValidateFileContentByMagicBytes(file io.ReadSeeker, fileName string) (string, error) {
	if file == nil {
		return "", fmt.Errorf("%w: file is nil", ErrValidationFailed)
	}

	buffer := make([]byte, 1024)
	n, err := io.ReadFull(file, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("failed to read file for content type checking: %w", err)
	}
	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
		return "", fmt.Errorf("failed to reset file read pointer: %w", seekErr)
	}
	if n == 0 {
		return "", fmt.Errorf("%w: file is empty", ErrValidationFailed)
	}
	head := buffer[:n]

	ext := strings.ToLower(filepath.Ext(fileName))
	switch {
	case bytes.HasPrefix(head, zipMagic):
		if ext != ".xlsx" {
			logger.L.Warn("Zip content uploaded without .xlsx extension", "fileName", fileName)
			return KindXLSX, fmt.Errorf("%w: workbook content does not match extension '%s'", ErrValidationFailed, ext)
		}
		return KindXLSX, nil
	case bytes.HasPrefix(head, oleMagic):
		if ext != ".xls" {
			logger.L.Warn("OLE2 content uploaded without .xls extension", "fileName", fileName)
			return KindXLS, fmt.Errorf("%w: workbook content does not match extension '%s'", ErrValidationFailed, ext)
		}
		return KindXLS, nil
	}

	if ext == ".xlsx" || ext == ".xls" {
		return "", fmt.Errorf("%w: file is not a valid %s workbook", ErrValidationFailed, ext)
	}
	if isBinaryContent(head) {
		logger.L.Warn("File rejected: Binary content detected in text upload", "fileName", fileName)
		return "application/octet-stream", fmt.Errorf("%w: file appears to be binary, not a delimited text export", ErrValidationFailed)
	}

	detected := strings.ToLower(strings.Split(http.DetectContentType(head), ";")[0])
	switch detected {
	case "text/plain", "text/csv", "application/octet-stream":
		// DetectContentType reports octet-stream for Windows-1252 text; null bytes were ruled out above.
	default:
		logger.L.Warn("Disallowed detected file content type", "detectedContentType", detected)
		return detected, fmt.Errorf("%w: detected file content type '%s' is not allowed", ErrValidationFailed, detected)
	}

	logger.L.Debug("File content type validated", "fileName", fileName, "detectedContentType", detected)
	return KindText, nil
}
