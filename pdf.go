package docfill

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Converter method names
const (
	ConverterLibreOffice = "libreoffice"
	ConverterPandoc      = "pandoc"
	ConverterNone        = "none"
)

const (
	toolCheckTimeout   = 10 * time.Second
	libreOfficeTimeout = 60 * time.Second
	pandocTimeout      = 120 * time.Second
)

// Engines in order of output quality, pandoc picks its own when none work
var pandocEngines = []string{"xelatex", "pdflatex", "wkhtmltopdf"}

// PDFConverter - docx to pdf through whatever tool the host has
type PDFConverter struct {
	method string
	binary string // resolved binary name, soffice on some distros
}

// NewPDFConverter detects available conversion tools once.
// LibreOffice wins by default for layout fidelity, preferPandoc flips
// the order
func NewPDFConverter(preferPandoc bool) *PDFConverter {
	c := &PDFConverter{}
	c.method, c.binary = detectConverter(preferPandoc)
	return c
}

// Method - name of converter in use, "none" when host has no tools
func (c *PDFConverter) Method() string {
	return c.method
}

func detectConverter(preferPandoc bool) (method, binary string) {
	findLibre := func() (string, bool) {
		for _, name := range []string{"libreoffice", "soffice"} {
			if checkTool(name) {
				return name, true
			}
		}
		return "", false
	}

	if preferPandoc {
		if checkTool("pandoc") {
			return ConverterPandoc, "pandoc"
		}
		if name, ok := findLibre(); ok {
			return ConverterLibreOffice, name
		}
		return ConverterNone, ""
	}

	if name, ok := findLibre(); ok {
		return ConverterLibreOffice, name
	}
	if checkTool("pandoc") {
		return ConverterPandoc, "pandoc"
	}
	return ConverterNone, ""
}

// Tool is on PATH and answers --version in time
func checkTool(name string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), toolCheckTimeout)
	defer cancel()

	return exec.CommandContext(ctx, name, "--version").Run() == nil // #nosec  G204 - fixed tool names only
}

// Convert docx at given path to pdf. Empty pdfPath converts next to
// the docx with extension swapped. Returns the written pdf path
func (c *PDFConverter) Convert(ctx context.Context, docxPath, pdfPath string) (string, error) {
	if _, err := os.Stat(docxPath); err != nil {
		return "", fmt.Errorf("docx file not found: %s", docxPath)
	}

	if pdfPath == "" {
		pdfPath = strings.TrimSuffix(docxPath, filepath.Ext(docxPath)) + ".pdf"
	}

	switch c.method {
	case ConverterLibreOffice:
		return c.convertWithLibreOffice(ctx, docxPath, pdfPath)
	case ConverterPandoc:
		return c.convertWithPandoc(ctx, docxPath, pdfPath)
	}
	return "", fmt.Errorf("no pdf conversion method available, install LibreOffice or Pandoc")
}

func (c *PDFConverter) convertWithLibreOffice(ctx context.Context, docxPath, pdfPath string) (string, error) {
	outDir := filepath.Dir(pdfPath)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, libreOfficeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary, "--headless", "--convert-to", "pdf", "--outdir", outDir, docxPath) // #nosec  G204 - allowed path variables here
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("LibreOffice conversion timed out")
		}
		return "", fmt.Errorf("LibreOffice conversion failed: %s", strings.TrimSpace(stderr.String()))
	}

	// LibreOffice names the pdf after the docx stem
	stem := strings.TrimSuffix(filepath.Base(docxPath), filepath.Ext(docxPath))
	generated := filepath.Join(outDir, stem+".pdf")
	if generated != pdfPath {
		if err := os.Rename(generated, pdfPath); err != nil {
			return "", err
		}
	}
	return pdfPath, nil
}

func (c *PDFConverter) convertWithPandoc(ctx context.Context, docxPath, pdfPath string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(pdfPath), 0o755); err != nil {
		return "", err
	}

	for _, engine := range pandocEngines {
		err := runPandoc(ctx, docxPath, "-o", pdfPath, "--pdf-engine="+engine, "--quiet")
		if err == nil {
			return pdfPath, nil
		}
	}

	if err := runPandoc(ctx, docxPath, "-o", pdfPath, "--quiet"); err != nil {
		return "", fmt.Errorf("pandoc conversion failed, no suitable pdf engine found, install LaTeX or wkhtmltopdf: %w", err)
	}
	return pdfPath, nil
}

func runPandoc(ctx context.Context, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, pandocTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "pandoc", args...) // #nosec  G204 - allowed path variables here
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("pandoc conversion timed out")
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s", msg)
		}
		return err
	}
	return nil
}
