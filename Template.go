package docfill

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/natefinch/atomic"
)

// Template ..
type Template struct {
	path string
	zipr *zip.ReadCloser // zip reader

	// save all zip files here so we can build it again
	files map[string]*zip.File

	// only rendered files (converted to []byte) save here
	modified map[string][]byte
}

// MainDocument ..
func (t *Template) MainDocument() *zip.File {
	return t.files["word/document.xml"]
}

// Close the underlying archive
func (t *Template) Close() error {
	if t.zipr == nil {
		return nil
	}
	return t.zipr.Close()
}

// Parts that hold visible document text
func (t *Template) renderableParts() []*zip.File {
	var parts []*zip.File
	for name, f := range t.files {
		if isRenderablePart(name) {
			parts = append(parts, f)
		}
	}

	sort.Slice(parts, func(i, j int) bool {
		return parts[i].Name < parts[j].Name
	})
	return parts
}

func isRenderablePart(name string) bool {
	switch name {
	case "word/document.xml", "word/footnotes.xml", "word/endnotes.xml":
		return true
	}
	if !strings.HasSuffix(name, ".xml") {
		return false
	}
	return strings.HasPrefix(name, "word/header") || strings.HasPrefix(name, "word/footer")
}

// Render - evaluate placeholders and tags against given values.
// Every part is patched into one valid template string first, engine
// output replaces the part contents on export.
// "Hello {{ name }}!" --> "Hello World!"
func (t *Template) Render(values Values) error {
	ctx := values.escaped()

	for _, f := range t.renderableParts() {
		raw := t.fileBytes(f.Name)
		if raw == nil {
			return fmt.Errorf("read [ %s ] from archive", f.Name)
		}

		patched, err := t.patchPart(string(raw))
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}

		rendered, err := renderPart(patched, ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}

		// must still be a document Word can open
		if _, err := t.bytesToXMLStruct([]byte(rendered)); err != nil {
			return fmt.Errorf("%s: rendered part is not well-formed xml: %w", f.Name, err)
		}

		t.modified[f.Name] = []byte(rendered)
	}
	return nil
}

// ExportDocx - save rendered docx based on template.
// Archive is built whole and moved into place so a crash mid write
// never leaves a half document behind
func (t *Template) ExportDocx(path string) error {
	var buf bytes.Buffer
	zipw := zip.NewWriter(&buf)

	names := make([]string, 0, len(t.files))
	for name := range t.files {
		names = append(names, name)
	}
	sort.Strings(names)

	// Loop existing files to build docx archive again
	for _, name := range names {
		fw, err := zipw.Create(name)
		if err != nil {
			return fmt.Errorf("write [ %s ] to archive: %w", name, err)
		}

		if mbuf, isModified := t.modified[name]; isModified {
			if _, err := fw.Write(mbuf); err != nil {
				return fmt.Errorf("write [ %s ] to archive: %w", name, err)
			}
			continue
		}

		fbuf := t.fileBytes(name)
		if fbuf == nil {
			return fmt.Errorf("read [ %s ] from archive", name)
		}
		if _, err := fw.Write(fbuf); err != nil {
			return fmt.Errorf("write [ %s ] to archive: %w", name, err)
		}
	}

	if err := zipw.Close(); err != nil {
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(buf.Bytes()))
}

// Plaintext - main document text as paragraph per line.
// Rendered text once rendered, raw template text before that
func (t *Template) Plaintext() string {
	xnode, err := t.bytesToXMLStruct(t.currentBytes("word/document.xml"))
	if err != nil {
		return ""
	}

	var lines []string
	xnode.Walk(func(n *xmlNode) {
		if n.Tag() == "w-p" {
			lines = append(lines, n.paragraphText())
		}
	})
	return strings.Join(lines, "\n")
}
