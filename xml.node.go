package docfill

import (
	"encoding/xml"
	"strings"
)

// Generic node to hold any docx part markup.
// Placeholder work happens on raw part bytes, this tree is only built
// to sanity-check rendered parts and to extract plaintext.
type xmlNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Content []byte     `xml:",chardata"`
	Nodes   []*xmlNode `xml:",any"`
}

// UnmarshalXML ..
func (xnode *xmlNode) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	type x xmlNode
	return d.DecodeElement((*x)(xnode), &start)
}

// Walk down all nodes and do custom stuff with given function
func (xnode *xmlNode) Walk(fn func(*xmlNode)) {
	for _, n := range xnode.Nodes {
		if n == nil {
			continue
		}

		fn(n)

		if len(n.Nodes) > 0 {
			// continue only if have deeper nodes
			n.Walk(fn)
		}
	}
}

// Tag - node tag name as held while parsed (w-p, w-t ..)
func (xnode *xmlNode) Tag() string {
	return xnode.XMLName.Local
}

// Paragraph text with text runs merged and breaks back as plain chars
func (xnode *xmlNode) paragraphText() string {
	var sb strings.Builder
	xnode.Walk(func(n *xmlNode) {
		switch n.Tag() {
		case "w-t":
			sb.Write(n.Content)
		case "w-br", "w-cr":
			sb.WriteByte('\n')
		case "w-tab":
			sb.WriteByte('\t')
		}
	})
	return sb.String()
}
