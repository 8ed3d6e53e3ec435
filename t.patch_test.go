package docfill

import (
	"strings"
	"testing"
)

func TestPatchPartJoinsSplitDelimiters(t *testing.T) {
	tpl := &Template{}

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			"expression split by runs and spellcheck",
			`<w:p><w:r><w:t>{</w:t></w:r><w:proofErr w:type="spellStart"/><w:r><w:t>{ name }</w:t></w:r><w:proofErr w:type="spellEnd"/><w:r><w:t>}</w:t></w:r></w:p>`,
			`<w:p><w:r><w:t>{{ name }}</w:t></w:r></w:p>`,
		},
		{
			"statement split by runs",
			`<w:p><w:r><w:t>{</w:t></w:r><w:r><w:t>% if ok %}yes{% endif %</w:t></w:r><w:r><w:t>}</w:t></w:r></w:p>`,
			`<w:p><w:r><w:t>{% if ok %}yes{% endif %}</w:t></w:r></w:p>`,
		},
		{
			"markup inside tag body",
			`<w:p><w:r><w:t>{{ user</w:t></w:r><w:r><w:t>.name }}</w:t></w:r></w:p>`,
			`<w:p><w:r><w:t>{{ user.name }}</w:t></w:r></w:p>`,
		},
		{
			"untouched when already clean",
			para("Hello {{ name }}!"),
			para("Hello {{ name }}!"),
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, err := tpl.patchPart(c.in)
			if err != nil {
				t.Fatalf("patch: %s", err)
			}
			if out != c.want {
				t.Fatalf("patched part mismatch:\n got: %s\nwant: %s", out, c.want)
			}
		})
	}
}

func TestPatchPartUnescapesTagBodies(t *testing.T) {
	tpl := &Template{}

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			"entities inside tag only",
			`<w:t>Fish &amp; Chips {% if status == &quot;active&quot; and level &gt; 2 %}on{% endif %}</w:t>`,
			`<w:t>Fish &amp; Chips {% if status == "active" and level > 2 %}on{% endif %}</w:t>`,
		},
		{
			"word smart quotes",
			`<w:t>{{ name | default(&#8220;none&#8221;) }} {{ title | default(’-’) }}</w:t>`,
			`<w:t>{{ name | default("none") }} {{ title | default('-') }}</w:t>`,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, err := tpl.patchPart(c.in)
			if err != nil {
				t.Fatalf("patch: %s", err)
			}
			if out != c.want {
				t.Fatalf("patched part mismatch:\n got: %s\nwant: %s", out, c.want)
			}
		})
	}
}

func TestPatchPartRelocatesRowTags(t *testing.T) {
	tpl := &Template{}

	headerRow := row("Name", "Qty")
	dataRow := row("{{ item.name }}", "{{ item.qty }}")
	in := table(
		headerRow,
		row("{%tr for item in items %}"),
		dataRow,
		row("{%tr endfor %}"),
	)

	out, err := tpl.patchPart(in)
	if err != nil {
		t.Fatalf("patch: %s", err)
	}

	if strings.Contains(out, "{%tr") {
		t.Fatalf("row tags must be gone after patching: %s", out)
	}
	if !strings.Contains(out, headerRow) {
		t.Fatalf("header row must stay untouched: %s", out)
	}
	if !strings.Contains(out, dataRow) {
		t.Fatalf("data row must stay untouched: %s", out)
	}
	if n := strings.Count(out, "<w:tr>"); n != 2 {
		t.Fatalf("expected 2 rows left, got %d: %s", n, out)
	}

	iFor := strings.Index(out, "{% for item in items %}")
	iData := strings.Index(out, dataRow)
	iEnd := strings.Index(out, "{% endfor %}")
	if iFor == -1 || iEnd == -1 {
		t.Fatalf("loop statements missing: %s", out)
	}
	if !(iFor < iData && iData < iEnd) {
		t.Fatalf("loop must wrap the data row: %s", out)
	}
}

func TestPatchPartRelocatesInnerTableRows(t *testing.T) {
	tpl := &Template{}

	inner := table(
		row("{%tr for x in xs %}"),
		row("{{ x }}"),
		row("{%tr endfor %}"),
	)
	in := "<w:tbl><w:tr><w:tc>" + inner + "</w:tc></w:tr></w:tbl>"

	out, err := tpl.patchPart(in)
	if err != nil {
		t.Fatalf("patch: %s", err)
	}

	// outer row and the inner data row survive, tag rows are replaced
	if n := strings.Count(out, "<w:tr>"); n != 2 {
		t.Fatalf("expected 2 rows left, got %d: %s", n, out)
	}
	if !strings.HasPrefix(out, "<w:tbl><w:tr><w:tc><w:tbl>") {
		t.Fatalf("outer table must stay intact: %s", out)
	}
	if !strings.Contains(out, "{% for x in xs %}") || !strings.Contains(out, "{% endfor %}") {
		t.Fatalf("loop statements missing: %s", out)
	}
}

func TestPatchPartRelocatesParagraphTags(t *testing.T) {
	tpl := &Template{}

	in := para("{%p if show %}") + para("Visible line") + para("{%p endif %}")
	want := "{% if show %}" + para("Visible line") + "{% endif %}"

	out, err := tpl.patchPart(in)
	if err != nil {
		t.Fatalf("patch: %s", err)
	}
	if out != want {
		t.Fatalf("patched part mismatch:\n got: %s\nwant: %s", out, want)
	}
}

func TestPatchPartErrors(t *testing.T) {
	tpl := &Template{}

	t.Run("unterminated tag", func(t *testing.T) {
		_, err := tpl.patchPart(`<w:tr><w:tc><w:p><w:r><w:t>{%tr for x in y</w:t></w:r></w:p></w:tc></w:tr>`)
		if err == nil || !strings.Contains(err.Error(), "unterminated") {
			t.Fatalf("expected unterminated tag error, got: %v", err)
		}
	})

	t.Run("no enclosing element", func(t *testing.T) {
		_, err := tpl.patchPart(`<w:tbl>{%tr endfor %}</w:tbl>`)
		if err == nil || !strings.Contains(err.Error(), "no enclosing") {
			t.Fatalf("expected no enclosing element error, got: %v", err)
		}
	})
}

func TestElemTokens(t *testing.T) {
	t.Run("name boundary", func(t *testing.T) {
		// <w:trPr> must not count as a <w:tr>
		tokens := elemTokens(`<w:tr><w:trPr/><w:tc/></w:tr>`, "w:tr")
		if len(tokens) != 2 {
			t.Fatalf("expected 2 tokens, got %d: %v", len(tokens), tokens)
		}
		if tokens[0].kind != 'o' || tokens[1].kind != 'c' {
			t.Fatalf("expected open and close, got: %v", tokens)
		}
	})

	t.Run("self closing", func(t *testing.T) {
		tokens := elemTokens(`<w:tr/>`, "w:tr")
		if len(tokens) != 1 || tokens[0].kind != 's' {
			t.Fatalf("expected one self closing token, got: %v", tokens)
		}
	})
}
