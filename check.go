package docfill

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Identifier paths as written in tag bodies: name, company.name
var rxIdentPath = regexp.MustCompile(`[A-Za-z_]\w*(?:\.[A-Za-z_]\w*)*`)

// String literals and filter names carry no data references
var (
	rxStringLit  = regexp.MustCompile(`"[^"]*"|'[^']*'`)
	rxFilterName = regexp.MustCompile(`\|\s*[A-Za-z_]\w*`)
)

// Engine language words that would read as identifiers
var tagKeywords = []string{
	"for", "endfor", "in", "if", "elif", "else", "endif", "set",
	"and", "or", "not", "is", "true", "false", "none",
	"defined", "undefined",
}

// CheckResult - what the template references vs what config provides
type CheckResult struct {
	Placeholders []string          // referenced paths, sorted
	Keys         map[string]string // flattened config values
	Missing      []string          // referenced but not provided
	Unused       []string          // provided but never referenced
}

// Placeholders - variable paths referenced anywhere in the template,
// sorted. Loop variables and loop metadata are template locals and
// not listed
func (t *Template) Placeholders() ([]string, error) {
	found := map[string]bool{}

	for _, f := range t.renderableParts() {
		raw := t.fileBytes(f.Name)
		if raw == nil {
			return nil, fmt.Errorf("read [ %s ] from archive", f.Name)
		}

		patched, err := t.patchPart(string(raw))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		collectTagPaths(patched, found)
	}

	paths := make([]string, 0, len(found))
	for p := range found {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// Check - match template references against loaded values
func (t *Template) Check(values Values) (*CheckResult, error) {
	paths, err := t.Placeholders()
	if err != nil {
		return nil, err
	}

	res := &CheckResult{
		Placeholders: paths,
		Keys:         values.Flatten(),
	}

	for _, path := range paths {
		if !pathCovered(path, res.Keys) {
			res.Missing = append(res.Missing, path)
		}
	}
	for key := range res.Keys {
		if !keyUsed(key, paths) {
			res.Unused = append(res.Unused, key)
		}
	}
	sort.Strings(res.Missing)
	sort.Strings(res.Unused)
	return res, nil
}

func collectTagPaths(part string, found map[string]bool) {
	tags := rxTagBody.FindAllString(part, -1)

	// names the template binds itself
	bound := map[string]bool{"loop": true}
	for _, tag := range tags {
		if strings.HasPrefix(tag, "{%") {
			bindStatementVars(tag, bound)
		}
	}

	for _, tag := range tags {
		if strings.HasPrefix(tag, "{#") {
			continue
		}

		body := tag[2 : len(tag)-2]
		body = rxStringLit.ReplaceAllString(body, " ")
		body = rxFilterName.ReplaceAllString(body, " ")

		for _, path := range rxIdentPath.FindAllString(body, -1) {
			root := path
			if i := strings.IndexByte(root, '.'); i != -1 {
				root = root[:i]
			}
			if bound[root] || inSlice(strings.ToLower(root), tagKeywords) {
				continue
			}
			found[path] = true
		}
	}
}

// Loop targets and set targets don't come from config
func bindStatementVars(tag string, bound map[string]bool) {
	body := strings.TrimSuffix(strings.TrimPrefix(tag, "{%"), "%}")
	body = strings.TrimSpace(strings.Trim(strings.TrimSpace(body), "-"))

	fields := strings.Fields(body)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "for":
		// {% for a, b in seq %}
		for _, f := range fields[1:] {
			if f == "in" {
				break
			}
			if name := strings.Trim(f, ","); name != "" {
				bound[name] = true
			}
		}
	case "set":
		// {% set x = ... %}
		if len(fields) > 1 {
			name := fields[1]
			if i := strings.IndexByte(name, '='); i != -1 {
				name = name[:i]
			}
			if name != "" {
				bound[name] = true
			}
		}
	}
}

// Path has data when it names a key exactly or names a map the keys
// live under
func pathCovered(path string, keys map[string]string) bool {
	if _, ok := keys[path]; ok {
		return true
	}

	prefix := path + "."
	for key := range keys {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

func keyUsed(key string, paths []string) bool {
	for _, path := range paths {
		if key == path || strings.HasPrefix(key, path+".") {
			return true
		}
	}
	return false
}
