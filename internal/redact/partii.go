package redact

import (
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// PartIIFields is the set of field names to strip from the partII
// substructure of a BSM, loaded once at startup from a newline-separated
// file named by an environment variable (spec §4.6).
type PartIIFields struct {
	names map[string]struct{}
}

// DefaultEnvVar is the environment variable name spec §4.6 reads the
// field-list file path from when the caller doesn't override it.
const DefaultEnvVar = "REDACTION_PROPERTIES_PATH"

// LoadPartIIFields reads envVar from the environment (via getenv) and,
// if set, parses the file it names into one field name per non-empty
// line. An unset variable or an unreadable file is not an error — spec
// §4.6 is explicit that the list is simply empty in that case.
func LoadPartIIFields(envVar string, getenv func(string) string) *PartIIFields {
	f := &PartIIFields{names: map[string]struct{}{}}
	path := getenv(envVar)
	if path == "" {
		return f
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return f
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			f.names[line] = struct{}{}
		}
	}
	return f
}

// NewPartIIFields builds a PartIIFields directly from a name list, for
// tests and callers that already have the field names in hand.
func NewPartIIFields(names ...string) *PartIIFields {
	f := &PartIIFields{names: map[string]struct{}{}}
	for _, n := range names {
		f.names[n] = struct{}{}
	}
	return f
}

// Len returns the number of configured field names.
func (f *PartIIFields) Len() int { return len(f.names) }

// Strip removes every occurrence of a configured field name found under
// rootPath in doc, using the pre-order traversal spec §4.3 describes:
// at each object, matching direct members are removed first, then the
// remaining object/array-valued members are descended into. Matching is
// exact and case-sensitive. If rootPath doesn't exist in doc, doc is
// returned unchanged.
func (f *PartIIFields) Strip(doc, rootPath string) (string, error) {
	if f.Len() == 0 {
		return doc, nil
	}
	root := gjson.Get(doc, rootPath)
	if !root.Exists() {
		return doc, nil
	}

	paths := collectMatchingPaths(root, rootPath, f.names)
	var err error
	for _, p := range paths {
		doc, err = sjson.Delete(doc, p)
		if err != nil {
			return doc, fmt.Errorf("redact: deleting %q: %w", p, err)
		}
	}
	return doc, nil
}

// collectMatchingPaths walks value pre-order, collecting the full gjson
// paths of every direct object member whose name is in names. Matched
// members are not descended into (they're being deleted wholesale); all
// other object- or array-valued members are.
func collectMatchingPaths(value gjson.Result, path string, names map[string]struct{}) []string {
	var out []string
	switch {
	case value.IsObject():
		value.ForEach(func(key, val gjson.Result) bool {
			childPath := path + "." + escapePathSegment(key.String())
			if _, match := names[key.String()]; match {
				out = append(out, childPath)
				return true
			}
			if val.IsObject() || val.IsArray() {
				out = append(out, collectMatchingPaths(val, childPath, names)...)
			}
			return true
		})
	case value.IsArray():
		i := 0
		value.ForEach(func(_, val gjson.Result) bool {
			childPath := fmt.Sprintf("%s.%d", path, i)
			i++
			if val.IsObject() || val.IsArray() {
				out = append(out, collectMatchingPaths(val, childPath, names)...)
			}
			return true
		})
	}
	return out
}

// escapePathSegment escapes the gjson/sjson path metacharacters (\ and .)
// in a literal object key so it can be embedded in a dotted path.
func escapePathSegment(key string) string {
	key = strings.ReplaceAll(key, `\`, `\\`)
	key = strings.ReplaceAll(key, `.`, `\.`)
	return key
}

// ZeroSize zeroes coreData.size's length and width sub-fields when
// present, per spec §4.3 step 5. If sizePath doesn't exist, doc is
// returned unchanged.
func ZeroSize(doc, sizePath string) (string, error) {
	if !gjson.Get(doc, sizePath).Exists() {
		return doc, nil
	}
	var err error
	for _, field := range []string{"length", "width"} {
		p := sizePath + "." + field
		if gjson.Get(doc, p).Exists() {
			doc, err = sjson.Set(doc, p, 0)
			if err != nil {
				return doc, fmt.Errorf("redact: zeroing %q: %w", p, err)
			}
		}
	}
	return doc, nil
}
