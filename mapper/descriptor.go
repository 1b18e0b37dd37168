package mapper

import "strings"

// Defaults applied by NewMethodDescriptor.
const (
	DefaultMethod      = "get"
	DefaultBodyAttr    = "body"
	DefaultHeadersAttr = "headers"
)

// MethodConfig is the static configuration of one manifest method as it is
// written in a manifest. Every field is optional here; the ClientBuilder
// rejects an empty Path at build time.
type MethodConfig struct {
	Host        string            `json:"host,omitempty" yaml:"host,omitempty"`
	Path        string            `json:"path" yaml:"path"`
	Method      string            `json:"method,omitempty" yaml:"method,omitempty"`
	Params      Params            `json:"params,omitempty" yaml:"params,omitempty"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	BodyAttr    string            `json:"bodyAttr,omitempty" yaml:"bodyAttr,omitempty"`
	HeadersAttr string            `json:"headersAttr,omitempty" yaml:"headersAttr,omitempty"`
}

// MethodDescriptor is the normalized, immutable form of a MethodConfig.
// A descriptor is shared by every Request built for its method.
type MethodDescriptor struct {
	host        string
	path        string
	method      string
	params      Params
	headers     map[string]string
	bodyAttr    string
	headersAttr string
}

// NewMethodDescriptor normalizes cfg, filling every absent field with its
// default. It does not require a path.
func NewMethodDescriptor(cfg MethodConfig) *MethodDescriptor {
	d := &MethodDescriptor{
		host:        cfg.Host,
		path:        cfg.Path,
		method:      cfg.Method,
		params:      cfg.Params.Merge(Params{}),
		headers:     make(map[string]string, len(cfg.Headers)),
		bodyAttr:    cfg.BodyAttr,
		headersAttr: cfg.HeadersAttr,
	}
	for key, value := range cfg.Headers {
		d.headers[key] = value
	}

	if strings.TrimSpace(d.method) == "" {
		d.method = DefaultMethod
	}
	if d.bodyAttr == "" {
		d.bodyAttr = DefaultBodyAttr
	}
	if d.headersAttr == "" {
		d.headersAttr = DefaultHeadersAttr
	}

	return d
}

// Host returns the configured host, "" if none.
func (d *MethodDescriptor) Host() string { return d.host }

// Path returns the raw path template.
func (d *MethodDescriptor) Path() string { return d.path }

// Method returns the HTTP verb as configured.
func (d *MethodDescriptor) Method() string { return d.method }

// Params returns the default params.
func (d *MethodDescriptor) Params() Params { return d.params }

// BodyAttr returns the param key reserved for the request body.
func (d *MethodDescriptor) BodyAttr() string { return d.bodyAttr }

// HeadersAttr returns the param key reserved for extra headers.
func (d *MethodDescriptor) HeadersAttr() string { return d.headersAttr }

// Headers returns a copy of the default headers with their original casing.
func (d *MethodDescriptor) Headers() map[string]string {
	headers := make(map[string]string, len(d.headers))
	for key, value := range d.headers {
		headers[key] = value
	}
	return headers
}

// Config returns the descriptor as a MethodConfig with defaults filled in.
func (d *MethodDescriptor) Config() MethodConfig {
	return MethodConfig{
		Host:        d.host,
		Path:        d.path,
		Method:      d.method,
		Params:      d.params,
		Headers:     d.Headers(),
		BodyAttr:    d.bodyAttr,
		HeadersAttr: d.headersAttr,
	}
}

func (d *MethodDescriptor) hasPath() bool {
	return strings.TrimSpace(d.path) != ""
}
