package docfill

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// Convert given bytes to struct of xml nodes.
// Decoder can't hold "w:" namespace prefixes so those parse as "w-",
// any string without the prefix stays same
func (t *Template) bytesToXMLStruct(buf []byte) (*xmlNode, error) {
	if buf == nil {
		return nil, fmt.Errorf("no contents to parse")
	}

	buf = bytes.ReplaceAll(buf, []byte("<w:"), []byte("<w-"))
	buf = bytes.ReplaceAll(buf, []byte("</w:"), []byte("</w-"))
	buf = bytes.ReplaceAll(buf, []byte("<v:"), []byte("<v-"))
	buf = bytes.ReplaceAll(buf, []byte("</v:"), []byte("</v-"))

	xdocNode := &xmlNode{}
	if err := xml.Unmarshal(buf, xdocNode); err != nil {
		return nil, err
	}
	return xdocNode, nil
}

// Raw part contents as stored in the archive
func (t *Template) fileBytes(fname string) []byte {
	f, ok := t.files[fname]
	if !ok {
		return nil
	}

	fr, err := f.Open()
	if err != nil {
		return nil
	}
	return readerBytes(fr)
}

// Part contents with render result preferred over raw
func (t *Template) currentBytes(fname string) []byte {
	if buf, ok := t.modified[fname]; ok {
		return buf
	}
	return t.fileBytes(fname)
}
