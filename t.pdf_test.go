package docfill

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestPDFConverterWithoutTools(t *testing.T) {
	// empty PATH, detection must come up with nothing
	t.Setenv("PATH", t.TempDir())

	conv := NewPDFConverter(false)
	if conv.Method() != ConverterNone {
		t.Fatalf("expected %q, got %q", ConverterNone, conv.Method())
	}

	docx := writeDocxFile(t, filepath.Join(t.TempDir(), "a.docx"), docxParts(para("x")))
	_, err := conv.Convert(context.Background(), docx, "")
	if err == nil || !strings.Contains(err.Error(), "no pdf conversion method available") {
		t.Fatalf("expected no method error, got: %v", err)
	}
}

func TestPDFConverterPreferPandocWithoutTools(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	if conv := NewPDFConverter(true); conv.Method() != ConverterNone {
		t.Fatalf("expected %q, got %q", ConverterNone, conv.Method())
	}
}

func TestPDFConvertMissingFile(t *testing.T) {
	conv := &PDFConverter{method: ConverterLibreOffice, binary: "libreoffice"}

	_, err := conv.Convert(context.Background(), filepath.Join(t.TempDir(), "nope.docx"), "")
	if err == nil || !strings.Contains(err.Error(), "docx file not found") {
		t.Fatalf("expected docx file not found, got: %v", err)
	}
}
