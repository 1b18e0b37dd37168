package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	http "github.com/wesleyorama2/mapsmith/http"
	"github.com/wesleyorama2/mapsmith/mapper"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat validates a format name given on the command line.
func ParseFormat(name string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(name)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q, use text, json or yaml", name)
	}
}

// FormatProvider is an interface for different output formatters
type FormatProvider interface {
	FormatRequest(req *mapper.Request) (string, error)
	FormatResponse(resp *http.Response) (string, error)
	FormatMethods(methods []MethodSummary) (string, error)
	FormatValues(values map[string]string) (string, error)
	FormatValue(v interface{}) (string, error)
}

// RequestData represents the structured data of a resolved request
type RequestData struct {
	Method  string            `json:"method" yaml:"method"`
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    interface{}       `json:"body,omitempty" yaml:"body,omitempty"`
}

// NewRequestData resolves req. A request whose path cannot be interpolated
// returns the interpolation error.
func NewRequestData(req *mapper.Request) (RequestData, error) {
	url, err := req.URL()
	if err != nil {
		return RequestData{}, err
	}

	body := req.Body()
	if raw, ok := body.([]byte); ok {
		body = string(raw)
	}

	return RequestData{
		Method:  strings.ToUpper(req.Method()),
		URL:     url,
		Headers: req.Headers(),
		Body:    body,
	}, nil
}

// TimingData represents detailed timing information for an HTTP request
type TimingData struct {
	DNSLookup       int64 `json:"dnsLookupMs,omitempty" yaml:"dnsLookupMs,omitempty"`
	TCPConnection   int64 `json:"tcpConnectionMs,omitempty" yaml:"tcpConnectionMs,omitempty"`
	TLSHandshake    int64 `json:"tlsHandshakeMs,omitempty" yaml:"tlsHandshakeMs,omitempty"`
	TimeToFirstByte int64 `json:"timeToFirstByteMs,omitempty" yaml:"timeToFirstByteMs,omitempty"`
	ContentTransfer int64 `json:"contentTransferMs,omitempty" yaml:"contentTransferMs,omitempty"`
	Total           int64 `json:"totalMs" yaml:"totalMs"`
}

// ResponseData represents the structured data of an HTTP response
type ResponseData struct {
	StatusCode   int               `json:"statusCode" yaml:"statusCode"`
	Status       string            `json:"status" yaml:"status"`
	Headers      map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body         interface{}       `json:"body,omitempty" yaml:"body,omitempty"`
	ResponseTime int64             `json:"responseTimeMs" yaml:"responseTimeMs"`
	Timing       *TimingData       `json:"timing,omitempty" yaml:"timing,omitempty"`
}

// NewResponseData reads the body of resp. JSON bodies are decoded so they
// nest in structured output; anything else is kept as text.
func NewResponseData(resp *http.Response, verbose bool) (ResponseData, error) {
	headers := make(map[string]string, len(resp.Headers))
	for key, values := range resp.Headers {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}

	var body interface{}
	bodyStr, err := resp.GetBodyAsString()
	if err != nil {
		return ResponseData{}, fmt.Errorf("error reading response body: %w", err)
	}
	if bodyStr != "" {
		if err := json.Unmarshal([]byte(bodyStr), &body); err != nil {
			body = bodyStr
		}
	}

	data := ResponseData{
		StatusCode:   resp.StatusCode,
		Status:       resp.Status,
		Headers:      headers,
		Body:         body,
		ResponseTime: resp.GetResponseTimeMillis(),
	}
	if verbose {
		data.Timing = &TimingData{
			DNSLookup:       resp.GetDNSLookupTimeMillis(),
			TCPConnection:   resp.GetTCPConnectTimeMillis(),
			TLSHandshake:    resp.GetTLSHandshakeTimeMillis(),
			TimeToFirstByte: resp.GetTimeToFirstByteMillis(),
			ContentTransfer: resp.GetContentTransferTimeMillis(),
			Total:           resp.GetTotalTimeMillis(),
		}
	}
	return data, nil
}

// CallResult is the structured output of one executed call.
type CallResult struct {
	Request   RequestData       `json:"request" yaml:"request"`
	Response  ResponseData      `json:"response" yaml:"response"`
	Extracted map[string]string `json:"extracted,omitempty" yaml:"extracted,omitempty"`
}

// MethodSummary describes one manifest method for listings.
type MethodSummary struct {
	Resource string `json:"resource" yaml:"resource"`
	Method   string `json:"method" yaml:"method"`
	Verb     string `json:"verb" yaml:"verb"`
	URL      string `json:"url" yaml:"url"`
}

// Summarize lists every method of client in manifest order.
func Summarize[R any](client *mapper.Client[R]) []MethodSummary {
	var summaries []MethodSummary
	for _, name := range client.Resources() {
		resource, _ := client.Resource(name)
		for _, method := range resource.Methods() {
			descriptor, _ := resource.Descriptor(method)
			summaries = append(summaries, MethodSummary{
				Resource: name,
				Method:   method,
				Verb:     strings.ToUpper(descriptor.Method()),
				URL:      strings.TrimSuffix(descriptor.Host(), "/") + "/" + strings.TrimLeft(descriptor.Path(), "/"),
			})
		}
	}
	return summaries
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Verbose bool
	Pretty  bool
}

// FormatRequest formats a request as JSON
func (f *JSONFormatter) FormatRequest(req *mapper.Request) (string, error) {
	data, err := NewRequestData(req)
	if err != nil {
		return "", err
	}
	return f.FormatValue(data)
}

// FormatResponse formats a response as JSON
func (f *JSONFormatter) FormatResponse(resp *http.Response) (string, error) {
	data, err := NewResponseData(resp, f.Verbose)
	if err != nil {
		return "", err
	}
	return f.FormatValue(data)
}

// FormatMethods formats a method listing as JSON
func (f *JSONFormatter) FormatMethods(methods []MethodSummary) (string, error) {
	if methods == nil {
		methods = []MethodSummary{}
	}
	return f.FormatValue(methods)
}

// FormatValues formats extracted values as JSON
func (f *JSONFormatter) FormatValues(values map[string]string) (string, error) {
	return f.FormatValue(values)
}

// FormatValue marshals any value as JSON
func (f *JSONFormatter) FormatValue(v interface{}) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(v); err != nil {
		return "", fmt.Errorf("failed to marshal JSON output: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	Verbose bool
}

// FormatRequest formats a request as YAML
func (f *YAMLFormatter) FormatRequest(req *mapper.Request) (string, error) {
	data, err := NewRequestData(req)
	if err != nil {
		return "", err
	}
	return f.FormatValue(data)
}

// FormatResponse formats a response as YAML
func (f *YAMLFormatter) FormatResponse(resp *http.Response) (string, error) {
	data, err := NewResponseData(resp, f.Verbose)
	if err != nil {
		return "", err
	}
	return f.FormatValue(data)
}

// FormatMethods formats a method listing as YAML
func (f *YAMLFormatter) FormatMethods(methods []MethodSummary) (string, error) {
	return f.FormatValue(methods)
}

// FormatValues formats extracted values as YAML
func (f *YAMLFormatter) FormatValues(values map[string]string) (string, error) {
	return f.FormatValue(values)
}

// FormatValue marshals any value as YAML
func (f *YAMLFormatter) FormatValue(v interface{}) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return "", fmt.Errorf("failed to marshal YAML output: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("failed to marshal YAML output: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// GetFormatter returns the appropriate formatter for the given format
func GetFormatter(format OutputFormat, verbose bool, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Verbose: verbose, Pretty: true}
	case FormatYAML:
		return &YAMLFormatter{Verbose: verbose}
	default:
		return NewFormatter(verbose, noColor)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
