package docfill

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nikolalohinski/gonja"
)

var (
	// Spellcheck markers, they split runs right through tag bodies
	rxProofErr = regexp.MustCompile(`<w:proofErr[^>]*/>`)

	// Tag delimiter chars with only markup between them.
	// Word fractures "{{" into two runs when author pauses mid typing
	rxBrokenOpen  = regexp.MustCompile(`\{(?:<[^>]*>)+([{%#])`)
	rxBrokenClose = regexp.MustCompile(`([}%#])(?:<[^>]*>)+\}`)

	// Whole tag bodies, shortest match so neighbour tags dont merge
	rxTagBody = regexp.MustCompile(`(?s)\{\{.*?\}\}|\{%.*?%\}|\{#.*?#\}`)

	// Any markup inside a tag body
	rxMarkup = regexp.MustCompile(`<[^>]*>`)
)

// Entities and Word autocorrect quotes as the author typed them.
// Only applied inside tag bodies, document text stays escaped
var tagEntities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&#8216;", "'",
	"&#8217;", "'",
	"&#8220;", `"`,
	"&#8221;", `"`,
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
	" ", " ",
	"&amp;", "&",
)

// Statement tags that swallow their enclosing element when rendered
var scopedTags = []struct {
	prefix string // {%tr ... %}
	elem   string // <w:tr>
}{
	{"tr", "w:tr"},
	{"tc", "w:tc"},
	{"p", "w:p"},
	{"r", "w:r"},
}

// Patch one docx part so the whole part is a single valid template:
// rejoin delimiters Word split apart, strip markup out of tag bodies,
// move row scoped tags over their enclosing elements
func (t *Template) patchPart(part string) (string, error) {
	part = rxProofErr.ReplaceAllString(part, "")
	part = rxBrokenOpen.ReplaceAllString(part, "{$1")
	part = rxBrokenClose.ReplaceAllString(part, "$1}")
	part = cleanTagBodies(part)
	return relocateScopedTags(part)
}

// Make every tag one contiguous plain text piece
func cleanTagBodies(part string) string {
	return rxTagBody.ReplaceAllStringFunc(part, func(tag string) string {
		tag = rxMarkup.ReplaceAllString(tag, "")
		return tagEntities.Replace(tag)
	})
}

// Tags like {%tr for ... %} stand for their whole table row, replace
// the row markup around them so the loop emits <w:tr> blocks only
func relocateScopedTags(part string) (string, error) {
	var err error
	for _, st := range scopedTags {
		if part, err = relocateTagKind(part, st.prefix, st.elem); err != nil {
			return "", err
		}
	}
	return part, nil
}

func relocateTagKind(part, prefix, elem string) (string, error) {
	marker := "{%" + prefix + " "

	for {
		i := strings.Index(part, marker)
		if i == -1 {
			return part, nil
		}

		end := strings.Index(part[i:], "%}")
		if end == -1 {
			return "", fmt.Errorf("unterminated {%%%s tag", prefix)
		}
		end += i + 2
		body := strings.TrimSpace(part[i+len(marker) : end-2])

		openStart, closeEnd, ok := enclosingSpan(elemTokens(part, elem), i, end)
		if !ok {
			return "", fmt.Errorf("tag {%%%s %s%%} has no enclosing <%s> element", prefix, body, elem)
		}

		part = part[:openStart] + "{% " + body + " %}" + part[closeEnd:]
	}
}

type elemToken struct {
	start, end int
	kind       byte // 'o' open, 'c' close, 's' self closing
}

// Markup spans of one element type in document order
func elemTokens(part, elem string) []elemToken {
	var tokens []elemToken
	openPrefix := "<" + elem
	closePrefix := "</" + elem

	i := 0
	for i < len(part) {
		lt := strings.IndexByte(part[i:], '<')
		if lt == -1 {
			break
		}
		i += lt

		if strings.HasPrefix(part[i:], closePrefix) && strings.HasPrefix(part[i+len(closePrefix):], ">") {
			tokens = append(tokens, elemToken{i, i + len(closePrefix) + 1, 'c'})
			i += len(closePrefix) + 1
			continue
		}

		if strings.HasPrefix(part[i:], openPrefix) {
			// next char must terminate element name, <w:tr> not <w:trPr>
			after := i + len(openPrefix)
			if after < len(part) && (part[after] == ' ' || part[after] == '>' || part[after] == '/') {
				gt := strings.IndexByte(part[i:], '>')
				if gt == -1 {
					break
				}
				end := i + gt + 1
				kind := byte('o')
				if part[end-2] == '/' {
					kind = 's'
				}
				tokens = append(tokens, elemToken{i, end, kind})
				i = end
				continue
			}
		}

		i++
	}
	return tokens
}

// Element span around [tagStart, tagEnd), nesting aware so tables
// inside tables dont truncate the match
func enclosingSpan(tokens []elemToken, tagStart, tagEnd int) (openStart, closeEnd int, ok bool) {
	openStart = -1

	// nearest still-open element before the tag
	depth := 0
	for i := len(tokens) - 1; i >= 0; i-- {
		tk := tokens[i]
		if tk.end > tagStart || tk.kind == 's' {
			continue
		}
		if tk.kind == 'c' {
			depth++
			continue
		}
		if depth == 0 {
			openStart = tk.start
			break
		}
		depth--
	}
	if openStart == -1 {
		return 0, 0, false
	}

	// its matching close after the tag
	depth = 0
	for _, tk := range tokens {
		if tk.start < tagEnd || tk.kind == 's' {
			continue
		}
		if tk.kind == 'o' {
			depth++
			continue
		}
		if depth == 0 {
			return openStart, tk.end, true
		}
		depth--
	}
	return 0, 0, false
}

// Run the engine over one patched part
func renderPart(part string, ctx map[string]any) (string, error) {
	tpl, err := gonja.FromString(part)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	out, err := tpl.Execute(gonja.Context(ctx))
	if err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return out, nil
}
