package mapper

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Manifest declares a remote API: an optional default host and an ordered
// list of resources, each with an ordered list of methods.
//
// A Manifest is read-only once handed to a ClientBuilder; the built Client
// keeps a reference to it rather than a copy.
type Manifest struct {
	Host      string
	Resources []ResourceDefinition
}

// ResourceDefinition is a named group of methods.
type ResourceDefinition struct {
	Name    string
	Methods []MethodDefinition
}

// MethodDefinition is a named method configuration.
type MethodDefinition struct {
	Name   string
	Config MethodConfig
}

// NewManifest creates an empty manifest with a default host.
func NewManifest(host string) *Manifest {
	return &Manifest{Host: host}
}

// Add appends method to resource, creating the resource on first use. It
// returns the manifest so definitions can be chained in Go literals.
//
//	manifest := mapper.NewManifest("https://api.example.com").
//	    Add("User", "all", mapper.MethodConfig{Path: "/users"}).
//	    Add("User", "byId", mapper.MethodConfig{Path: "/users/{id}"})
func (m *Manifest) Add(resource, method string, cfg MethodConfig) *Manifest {
	for i := range m.Resources {
		if m.Resources[i].Name == resource {
			m.Resources[i].Methods = append(m.Resources[i].Methods, MethodDefinition{Name: method, Config: cfg})
			return m
		}
	}
	m.Resources = append(m.Resources, ResourceDefinition{
		Name:    resource,
		Methods: []MethodDefinition{{Name: method, Config: cfg}},
	})
	return m
}

// Lookup returns the configuration of resource.method.
func (m *Manifest) Lookup(resource, method string) (MethodConfig, bool) {
	for _, r := range m.Resources {
		if r.Name != resource {
			continue
		}
		for _, def := range r.Methods {
			if def.Name == method {
				return def.Config, true
			}
		}
	}
	return MethodConfig{}, false
}

// UnmarshalYAML decodes a manifest document of the form
//
//	host: https://api.example.com
//	resources:
//	  User:
//	    all: { path: /users }
//
// keeping resources and methods in document order.
func (m *Manifest) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Host      string    `yaml:"host"`
		Resources yaml.Node `yaml:"resources"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	m.Host = raw.Host
	m.Resources = nil

	resources := &raw.Resources
	if resources.Kind == 0 || resources.Tag == "!!null" {
		return nil
	}
	if resources.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: resources must be a mapping", resources.Line)
	}

	for i := 0; i+1 < len(resources.Content); i += 2 {
		name := resources.Content[i].Value
		methods := resources.Content[i+1]

		def := ResourceDefinition{Name: name}
		if methods.Kind != yaml.MappingNode && methods.Tag != "!!null" {
			return fmt.Errorf("line %d: resource %q must be a mapping of methods", methods.Line, name)
		}
		for j := 0; j+1 < len(methods.Content); j += 2 {
			var cfg MethodConfig
			if err := methods.Content[j+1].Decode(&cfg); err != nil {
				return fmt.Errorf("resource %q method %q: %w", name, methods.Content[j].Value, err)
			}
			def.Methods = append(def.Methods, MethodDefinition{Name: methods.Content[j].Value, Config: cfg})
		}
		m.Resources = append(m.Resources, def)
	}

	return nil
}
