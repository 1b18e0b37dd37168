package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/mapsmith/mapper"
	"github.com/wesleyorama2/mapsmith/pkg/jsonschema"
)

//go:embed manifest.schema.json
var manifestSchemaSource string

var (
	manifestSchema  = jsonschema.MustCompile("manifest.schema.json", manifestSchemaSource)
	variablePattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.\-]+)\s*\}\}`)
)

// Format identifies the encoding of a manifest file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// DetectFormat selects the manifest format from the file extension. Paths
// without an extension are read as YAML.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", "":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported manifest format: %s", filepath.Ext(path))
	}
}

// LoadManifest reads, substitutes and validates the manifest at path.
func LoadManifest(path string, vars map[string]string) (*mapper.Manifest, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("manifest file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading manifest file: %w", err)
	}

	return ParseManifest(data, path, vars)
}

// ParseManifest decodes a manifest document. path is only used to select the
// format and to label errors. Every {{name}} in a value is replaced from
// vars before the document is validated.
func ParseManifest(data []byte, path string, vars map[string]string) (*mapper.Manifest, error) {
	if _, err := DetectFormat(path); err != nil {
		return nil, err
	}

	// JSON is decoded by the YAML parser too; mapping order survives.
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("error parsing manifest file %s: %w", displayName(path), err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, &mapper.InvalidManifestError{Reason: fmt.Sprintf("%s is empty", displayName(path))}
	}

	if err := substituteNode(&root, vars); err != nil {
		return nil, fmt.Errorf("error processing manifest file %s: %w", displayName(path), err)
	}

	var doc interface{}
	if err := root.Decode(&doc); err != nil {
		return nil, fmt.Errorf("error parsing manifest file %s: %w", displayName(path), err)
	}
	if err := manifestSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("manifest %s does not match schema: %w", displayName(path), err)
	}

	var manifest mapper.Manifest
	if err := root.Decode(&manifest); err != nil {
		return nil, fmt.Errorf("error parsing manifest file %s: %w", displayName(path), err)
	}

	if errs := ValidateManifest(&manifest); len(errs) > 0 {
		return nil, fmt.Errorf("manifest %s validation failed: %w", displayName(path), errs)
	}

	return &manifest, nil
}

// ProcessEnvironment replaces every {{name}} in input with vars[name].
// A name with no exact match falls back to a case-insensitive match.
// Unknown names are left in place.
//
// Example:
//
//	host := config.ProcessEnvironment("https://{{region}}.example.com", map[string]string{
//	    "region": "eu",
//	})
//	// Result: "https://eu.example.com"
func ProcessEnvironment(input string, vars map[string]string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		name := variablePattern.FindStringSubmatch(match)[1]
		if value, ok := lookupVariable(vars, name); ok {
			return value
		}
		return match
	})
}

// UnresolvedVariables lists the {{name}} references in input that vars does
// not define, sorted and without duplicates.
func UnresolvedVariables(input string, vars map[string]string) []string {
	seen := make(map[string]bool)
	var missing []string
	for _, match := range variablePattern.FindAllStringSubmatch(input, -1) {
		name := match[1]
		if _, ok := lookupVariable(vars, name); ok || seen[name] {
			continue
		}
		seen[name] = true
		missing = append(missing, name)
	}
	sort.Strings(missing)
	return missing
}

// MergeVariables merges two variable sets, with override taking precedence.
func MergeVariables(base, override map[string]string) map[string]string {
	result := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		result[key] = value
	}
	for key, value := range override {
		result[key] = value
	}
	return result
}

// lookupVariable prefers an exact key. Settings files read through viper
// arrive with lower-cased keys.
func lookupVariable(vars map[string]string, name string) (string, bool) {
	if value, ok := vars[name]; ok {
		return value, true
	}
	for key, value := range vars {
		if strings.EqualFold(key, name) {
			return value, true
		}
	}
	return "", false
}

// substituteNode rewrites scalar values in place. Mapping keys are never
// substituted so resource and method names stay literal.
func substituteNode(node *yaml.Node, vars map[string]string) error {
	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, child := range node.Content {
			if err := substituteNode(child, vars); err != nil {
				return err
			}
		}
	case yaml.MappingNode:
		for i := 1; i < len(node.Content); i += 2 {
			if err := substituteNode(node.Content[i], vars); err != nil {
				return err
			}
		}
	case yaml.ScalarNode:
		if !strings.Contains(node.Value, "{{") {
			return nil
		}
		if missing := UnresolvedVariables(node.Value, vars); len(missing) > 0 {
			return fmt.Errorf("line %d: undefined variable(s): %s", node.Line, strings.Join(missing, ", "))
		}
		node.Value = ProcessEnvironment(node.Value, vars)
		node.Tag = "!!str"
		node.Style = 0
	}
	return nil
}

func displayName(path string) string {
	if path == "" {
		return "<input>"
	}
	return path
}
