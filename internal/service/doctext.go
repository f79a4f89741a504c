package service

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// maxDocumentTextBytes caps how much extracted text is fed to the
// extraction stages. Job descriptions are short; anything past this is
// boilerplate.
const maxDocumentTextBytes = 64 * 1024

// ExtractText reads the staged document file and returns its plain text.
// PDF files are parsed page by page; everything else is treated as UTF-8
// text. An unreadable or empty document is a hard error that fails the
// whole job, unlike stage failures which are tolerated.
func ExtractText(path, mimeType string) (string, error) {
	var (
		text string
		err  error
	)
	if isPDF(path, mimeType) {
		text, err = extractPDFText(path)
	} else {
		text, err = extractPlainText(path)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("document contains no extractable text")
	}
	if len(text) > maxDocumentTextBytes {
		text = truncateUTF8(text, maxDocumentTextBytes)
	}
	return text, nil
}

func isPDF(path, mimeType string) bool {
	if strings.Contains(strings.ToLower(mimeType), "pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(path), ".pdf")
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	return buf.String(), nil
}

func extractPlainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("document is not valid UTF-8 text")
	}
	return string(data), nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
