// Package jsonpath reads values out of JSON response bodies with a small
// JSONPath subset ($.a.b, $.list[0].name, $['key']) backed by gjson.
package jsonpath

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	quotedKeyPattern = regexp.MustCompile(`\[\s*['"]([^'"]*)['"]\s*\]`)
	indexPattern     = regexp.MustCompile(`\[\s*(\d+|\*|#)\s*\]`)
)

// Extract returns the value at path in body as a string. Objects and arrays
// are returned as raw JSON and null as "null".
func Extract(body string, path string) (string, error) {
	if body == "" {
		return "", fmt.Errorf("empty JSON string")
	}
	if path == "" {
		return "", fmt.Errorf("empty JSONPath expression")
	}
	if !gjson.Valid(body) {
		return "", fmt.Errorf("invalid JSON body")
	}

	result := gjson.Get(body, ToGJSON(path))
	if !result.Exists() {
		return "", fmt.Errorf("path not found: %s", path)
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// ExtractAll evaluates every named path. Values that resolve are returned
// even when others fail; failures are reported together, sorted by name.
func ExtractAll(body string, paths map[string]string) (map[string]string, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no JSONPath expressions provided")
	}

	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(paths))
	var failures []string
	for _, name := range names {
		value, err := Extract(body, paths[name])
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		results[name] = value
	}

	if len(failures) > 0 {
		return results, fmt.Errorf("extraction errors: %s", strings.Join(failures, "; "))
	}
	return results, nil
}

// ToGJSON converts a JSONPath expression into gjson path syntax:
// $.users[0].name becomes users.0.name and $ becomes @this.
func ToGJSON(path string) string {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "$")
	if path == "" {
		return "@this"
	}

	path = quotedKeyPattern.ReplaceAllStringFunc(path, func(m string) string {
		key := quotedKeyPattern.FindStringSubmatch(m)[1]
		return "." + escapeKey(key)
	})
	path = indexPattern.ReplaceAllStringFunc(path, func(m string) string {
		index := strings.TrimSpace(m[1 : len(m)-1])
		if index == "*" {
			index = "#"
		}
		return "." + index
	})

	return strings.TrimPrefix(path, ".")
}

// escapeKey escapes gjson path metacharacters inside a quoted key.
func escapeKey(key string) string {
	var sb strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
