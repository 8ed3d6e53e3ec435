// Package docfill fills Word document templates with config values.
//
// A docx file is a zip of xml parts. Word fractures the tag
// delimiters the author typed across multiple runs, so each part is
// patched back into one valid template string, handed to the engine
// and the rendered xml replaces the part contents on export.
package docfill

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
)

// OpenTemplate ..
func OpenTemplate(docpath string) (*Template, error) {
	var err error

	t := &Template{
		path:     docpath,
		modified: map[string][]byte{},
	}

	// Unzip
	if t.zipr, err = zip.OpenReader(t.path); err != nil {
		return nil, err
	}

	// Get main document
	t.files = map[string]*zip.File{}
	for _, f := range t.zipr.File {
		t.files[f.Name] = f
	}
	if t.MainDocument() == nil {
		return nil, fmt.Errorf("mandatory [ word/document.xml ] not found")
	}

	return t, nil
}

// OpenTemplateWithURL - template is downloaded to temp file first
func OpenTemplateWithURL(docurl string) (*Template, error) {
	tmpFile, err := DefaultDownloader.DownloadFile(context.Background(), docurl)
	if err != nil {
		return nil, err
	}
	return OpenTemplate(tmpFile)
}

// ReadTemplate - template from a seekable reader, bytes already in
// memory or a http upload
func ReadTemplate(r io.ReaderAt, size int64) (*Template, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}

	t := &Template{
		files:    map[string]*zip.File{},
		modified: map[string][]byte{},
	}
	for _, f := range zr.File {
		t.files[f.Name] = f
	}
	if t.MainDocument() == nil {
		return nil, fmt.Errorf("mandatory [ word/document.xml ] not found")
	}

	return t, nil
}
