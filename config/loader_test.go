package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/wesleyorama2/mapsmith/mapper"
	"github.com/wesleyorama2/mapsmith/pkg/jsonschema"
)

const yamlManifest = `
host: https://{{region}}.example.com
resources:
  User:
    all:
      path: /users
      params:
        sort: name
    byId:
      path: "/users/{id}"
    create:
      path: /users
      method: POST
      headers:
        X-Api-Key: "{{apiKey}}"
  Blog:
    post:
      host: http://blog.example.com/
      path: "/blogs/{slug}.json"
`

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Error creating test manifest file: %v", err)
	}
	return path
}

func TestLoadManifest_YAML(t *testing.T) {
	path := writeManifest(t, "api.yaml", yamlManifest)

	manifest, err := LoadManifest(path, map[string]string{"region": "eu", "apiKey": "secret"})
	if err != nil {
		t.Fatalf("Error loading manifest: %v", err)
	}

	if manifest.Host != "https://eu.example.com" {
		t.Errorf("Expected substituted host, got %s", manifest.Host)
	}

	var resources []string
	for _, r := range manifest.Resources {
		resources = append(resources, r.Name)
	}
	if !reflect.DeepEqual(resources, []string{"User", "Blog"}) {
		t.Errorf("Expected resources in document order, got %v", resources)
	}

	var methods []string
	for _, m := range manifest.Resources[0].Methods {
		methods = append(methods, m.Name)
	}
	if !reflect.DeepEqual(methods, []string{"all", "byId", "create"}) {
		t.Errorf("Expected methods in document order, got %v", methods)
	}

	create, ok := manifest.Lookup("User", "create")
	if !ok {
		t.Fatal("Expected User.create to be defined")
	}
	if create.Headers["X-Api-Key"] != "secret" {
		t.Errorf("Expected substituted header, got %q", create.Headers["X-Api-Key"])
	}

	all, _ := manifest.Lookup("User", "all")
	if sort, _ := all.Params.Get("sort"); sort != "name" {
		t.Errorf("Expected default param sort=name, got %v", sort)
	}
}

func TestLoadManifest_JSON(t *testing.T) {
	content := `{
    "host": "http://example.org",
    "resources": {
      "Zeta": {"list": {"path": "/zeta"}},
      "Alpha": {
        "show": {"path": "/alpha/{id}", "method": "get"},
        "add": {"path": "/alpha", "method": "post", "bodyAttr": "payload"}
      }
    }
  }`
	path := writeManifest(t, "api.json", content)

	manifest, err := LoadManifest(path, nil)
	if err != nil {
		t.Fatalf("Error loading manifest: %v", err)
	}

	if manifest.Resources[0].Name != "Zeta" || manifest.Resources[1].Name != "Alpha" {
		t.Errorf("Expected JSON key order to be kept, got %+v", manifest.Resources)
	}
	if manifest.Resources[1].Methods[0].Name != "show" {
		t.Errorf("Expected show to be the first Alpha method, got %s", manifest.Resources[1].Methods[0].Name)
	}

	add, _ := manifest.Lookup("Alpha", "add")
	if add.BodyAttr != "payload" {
		t.Errorf("Expected bodyAttr payload, got %s", add.BodyAttr)
	}
}

func TestLoadManifest_FileErrors(t *testing.T) {
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Error("Expected error for missing file")
	} else if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected not found error, got %v", err)
	}

	path := writeManifest(t, "api.toml", "resources = {}")
	if _, err := LoadManifest(path, nil); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestParseManifest_Errors(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		vars          map[string]string
		errorContains string
	}{
		{
			name:          "Malformed YAML",
			content:       "resources: [unclosed",
			errorContains: "error parsing manifest",
		},
		{
			name:          "Undefined variable",
			content:       "resources:\n  User:\n    all:\n      path: \"/{{version}}/users\"\n",
			errorContains: "undefined variable(s): version",
		},
		{
			name:          "Unknown method key",
			content:       "resources:\n  User:\n    all:\n      pathh: /users\n",
			errorContains: "does not match schema",
		},
		{
			name:          "Missing resources",
			content:       "host: http://example.org\n",
			errorContains: "does not match schema",
		},
		{
			name:          "Method is a list",
			content:       "resources:\n  User:\n    all: [a, b]\n",
			errorContains: "does not match schema",
		},
		{
			name:          "Unknown verb",
			content:       "resources:\n  User:\n    all:\n      path: /users\n      method: fetch\n",
			errorContains: "resources.User.all.method",
		},
		{
			name:          "Same reserved attributes",
			content:       "resources:\n  User:\n    all:\n      path: /users\n      bodyAttr: data\n      headersAttr: data\n",
			errorContains: "resources.User.all.headersAttr",
		},
		{
			name:          "Invalid host",
			content:       "host: not a url\nresources:\n  User:\n    all:\n      path: /users\n",
			errorContains: "host: must be a valid URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.content), "api.yaml", tt.vars)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errorContains) {
				t.Errorf("Expected error to contain %q, got %q", tt.errorContains, err.Error())
			}
		})
	}
}

func TestParseManifest_ErrorTypes(t *testing.T) {
	_, err := ParseManifest([]byte(""), "", nil)
	if !errors.Is(err, mapper.ErrInvalidManifest) {
		t.Errorf("Expected ErrInvalidManifest for empty input, got %v", err)
	}

	_, err = ParseManifest([]byte("resources:\n  User:\n    all:\n      verb: get\n"), "api.yaml", nil)
	var schemaErrs jsonschema.ValidationErrors
	if !errors.As(err, &schemaErrs) {
		t.Errorf("Expected jsonschema.ValidationErrors, got %T: %v", err, err)
	}

	_, err = ParseManifest([]byte("resources:\n  User:\n    all:\n      path: /u\n      method: fetch\n"), "api.yaml", nil)
	var fieldErrs ValidationErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("Expected ValidationErrors, got %T: %v", err, err)
	}
	if len(fieldErrs) != 1 || fieldErrs[0].Path != "resources.User.all.method" {
		t.Errorf("Unexpected validation errors: %v", fieldErrs)
	}
}

func TestParseManifest_MissingPathIsBuildError(t *testing.T) {
	manifest, err := ParseManifest([]byte("resources:\n  User:\n    all:\n      method: get\n"), "api.yaml", nil)
	if err != nil {
		t.Fatalf("Expected missing path to load, got %v", err)
	}

	builder, err := mapper.NewClientBuilder(manifest, func() mapper.GatewayConstructor[string] {
		return func(*mapper.Request) mapper.Gateway[string] { return nil }
	})
	if err != nil {
		t.Fatalf("Unexpected builder error: %v", err)
	}

	_, err = builder.Build()
	var missing *mapper.MissingPathError
	if !errors.As(err, &missing) {
		t.Fatalf("Expected MissingPathError, got %v", err)
	}
	if missing.Resource != "User" || missing.Method != "all" {
		t.Errorf("Unexpected MissingPathError: %+v", missing)
	}
}

func TestParseManifest_NullEntries(t *testing.T) {
	manifest, err := ParseManifest([]byte("resources:\n  Empty:\n  User:\n    all:\n"), "api.yml", nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(manifest.Resources) != 2 {
		t.Fatalf("Expected 2 resources, got %d", len(manifest.Resources))
	}
	if len(manifest.Resources[1].Methods) != 1 {
		t.Errorf("Expected User.all to be kept, got %+v", manifest.Resources[1])
	}
}

func TestParseManifest_KeysAreNotSubstituted(t *testing.T) {
	content := "resources:\n  User:\n    all:\n      path: /users\n      params:\n        \"{{literal}}\": \"{{value}}\"\n"
	manifest, err := ParseManifest([]byte(content), "api.yaml", map[string]string{"value": "v", "literal": "changed"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	all, _ := manifest.Lookup("User", "all")
	if value, _ := all.Params.Get("{{literal}}"); value != "v" {
		t.Errorf("Expected key to stay literal and value to be substituted, got %v", all.Params.Map())
	}
}

func TestProcessEnvironment(t *testing.T) {
	vars := map[string]string{"host": "api.example.com", "id": "42", "apikey": "secret"}

	tests := map[string]string{
		"https://{{host}}/users/{{id}}": "https://api.example.com/users/42",
		"{{apiKey}}":                    "secret",
		"{{ id }}":                      "42",
		"/users/{id}":                   "/users/{id}",
		"{{unknown}}":                   "{{unknown}}",
		"no variables":                  "no variables",
	}

	for input, expected := range tests {
		if got := ProcessEnvironment(input, vars); got != expected {
			t.Errorf("ProcessEnvironment(%q) = %q, want %q", input, got, expected)
		}
	}
}

func TestUnresolvedVariables(t *testing.T) {
	got := UnresolvedVariables("{{b}}/{{a}}/{{b}}/{{known}}", map[string]string{"known": "x"})
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Expected [a b], got %v", got)
	}
	if got := UnresolvedVariables("{{known}}", map[string]string{"known": "x"}); len(got) != 0 {
		t.Errorf("Expected no unresolved variables, got %v", got)
	}
}

func TestMergeVariables(t *testing.T) {
	merged := MergeVariables(
		map[string]string{"a": "1", "b": "2"},
		map[string]string{"b": "3", "c": "4"},
	)
	expected := map[string]string{"a": "1", "b": "3", "c": "4"}
	if !reflect.DeepEqual(merged, expected) {
		t.Errorf("Expected %v, got %v", expected, merged)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"api.yaml": FormatYAML,
		"api.YML":  FormatYAML,
		"api":      FormatYAML,
		"api.json": FormatJSON,
	}
	for path, expected := range tests {
		got, err := DetectFormat(path)
		if err != nil {
			t.Errorf("DetectFormat(%q) returned error: %v", path, err)
			continue
		}
		if got != expected {
			t.Errorf("DetectFormat(%q) = %s, want %s", path, got, expected)
		}
	}

	if _, err := DetectFormat("api.xml"); err == nil {
		t.Error("Expected error for .xml")
	}
}
