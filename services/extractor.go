package services

import (
	"bytes"
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// SetupPDFLicense registers the UniPDF metered license key. PDF extraction
// fails without it, so the caller should treat an error here as fatal when
// PDFs are expected.
func SetupPDFLicense(key string) error {
	if key == "" {
		return fmt.Errorf("no UniPDF license key configured")
	}
	return license.SetMeteredKey(key)
}

// ExtractText returns the text content of a document, dispatching on the
// file extension of its name.
func ExtractText(name string, data []byte) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".txt", ".md":
		return string(data), nil
	case ".pdf":
		return extractTextFromPDF(data)
	default:
		return "", fmt.Errorf("%w: unsupported file type %q", ErrValidation, ext)
	}
}

// extractTextFromPDF concatenates the text of every page.
func extractTextFromPDF(data []byte) (string, error) {
	pdfReader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("failed to read page count: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return "", fmt.Errorf("failed to load page %d: %w", i, err)
		}

		ex, err := extractor.New(page)
		if err != nil {
			return "", fmt.Errorf("failed to create extractor for page %d: %w", i, err)
		}

		text, err := ex.ExtractText()
		if err != nil {
			return "", fmt.Errorf("failed to extract text from page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n\n") // page break
	}

	log.Printf("EXTRACTOR: Extracted %d pages (%d chars)", numPages, sb.Len())
	return sb.String(), nil
}

var (
	blankLineRe = regexp.MustCompile(`\n\s*\n`)
	spaceRunRe  = regexp.MustCompile(`[ \t]+`)
)

// CleanText normalizes extracted text: NUL bytes are dropped, runs of
// spaces collapse to one space, runs of blank lines collapse to a single
// blank line, and surrounding whitespace is trimmed.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = blankLineRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
