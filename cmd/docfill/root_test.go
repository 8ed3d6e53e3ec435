package main

import (
	"strings"
	"testing"
)

func TestDefaultOutput(t *testing.T) {
	cases := []struct{ in, want string }{
		{"report.docx", "report_filled.docx"},
		{"dir/report.docx", "dir/report_filled.docx"},
		{"https://example.com/files/contract.docx", "contract_filled.docx"},
		{"https://example.com/download?id=1", "template_filled.docx"},
	}

	for _, c := range cases {
		if got := defaultOutput(c.in); got != c.want {
			t.Errorf("defaultOutput(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsURL(t *testing.T) {
	if !isURL("https://example.com/a.docx") || !isURL("http://example.com/a.docx") {
		t.Fatalf("http(s) urls must be detected")
	}
	if isURL("report.docx") || isURL("ftp://example.com/a.docx") {
		t.Fatalf("local paths and other schemes are not urls here")
	}
}

func TestPreview(t *testing.T) {
	if got := preview("short"); got != "short" {
		t.Fatalf("short value must stay as is, got: %q", got)
	}

	long := strings.Repeat("ā", 60)
	got := preview(long)
	if got != strings.Repeat("ā", 50)+"..." {
		t.Fatalf("long value must truncate at runes, got: %q", got)
	}
}
