package docfill

import (
	"archive/zip"
	"bytes"
	"os"
	"sort"
	"strings"
	"testing"
)

// Tests build their docx archives in memory, the repo carries no
// binary fixtures

const xmlDecl = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`

const contentTypesXML = xmlDecl +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`</Types>`

func wrapDocument(body string) string {
	return xmlDecl +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + body + `</w:body></w:document>`
}

func para(text string) string {
	return `<w:p><w:r><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`
}

func row(cells ...string) string {
	var sb strings.Builder
	sb.WriteString("<w:tr>")
	for _, c := range cells {
		sb.WriteString("<w:tc>" + para(c) + "</w:tc>")
	}
	sb.WriteString("</w:tr>")
	return sb.String()
}

func table(rows ...string) string {
	return "<w:tbl><w:tblPr/>" + strings.Join(rows, "") + "</w:tbl>"
}

func docxParts(body string) map[string]string {
	return map[string]string{
		"[Content_Types].xml": contentTypesXML,
		"word/document.xml":   wrapDocument(body),
	}
}

func buildDocxBytes(t *testing.T, parts map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zipw := zip.NewWriter(&buf)

	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fw, err := zipw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %s", name, err)
		}
		if _, err := fw.Write([]byte(parts[name])); err != nil {
			t.Fatalf("write %s: %s", name, err)
		}
	}
	if err := zipw.Close(); err != nil {
		t.Fatalf("close archive: %s", err)
	}
	return buf.Bytes()
}

func openDocxBytes(t *testing.T, parts map[string]string) *Template {
	t.Helper()

	buf := buildDocxBytes(t, parts)
	tpl, err := ReadTemplate(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		t.Fatalf("read template: %s", err)
	}
	return tpl
}

func writeDocxFile(t *testing.T, path string, parts map[string]string) string {
	t.Helper()

	if err := os.WriteFile(path, buildDocxBytes(t, parts), 0o644); err != nil {
		t.Fatalf("write %s: %s", path, err)
	}
	return path
}
