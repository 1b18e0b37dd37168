package output

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	nethttp "net/http"

	"gopkg.in/yaml.v3"

	http "github.com/wesleyorama2/mapsmith/http"
	"github.com/wesleyorama2/mapsmith/mapper"
)

// setupTestRequest creates a request with headers, query params and a body
func setupTestRequest() *mapper.Request {
	descriptor := mapper.NewMethodDescriptor(mapper.MethodConfig{
		Host:    "https://api.example.com/",
		Path:    "/users/{id}",
		Method:  "post",
		Headers: map[string]string{"Content-Type": "application/json"},
	})
	return mapper.NewRequest(descriptor, mapper.Args{
		Params: mapper.NewParams(
			mapper.P("id", 7),
			mapper.P("page", 1),
			mapper.P("body", map[string]interface{}{"name": "John Doe"}),
		),
		Headers: map[string]string{"Authorization": "Bearer token123"},
	})
}

// setupTestResponse creates a response with headers and a JSON body
func setupTestResponse() *http.Response {
	headers := make(nethttp.Header)
	headers.Set("Content-Type", "application/json")
	headers.Set("X-Rate-Limit", "100")

	return &http.Response{
		StatusCode:   200,
		Status:       "200 OK",
		Headers:      headers,
		Body:         io.NopCloser(strings.NewReader(`{"id":7,"name":"John Doe"}`)),
		ResponseTime: 123 * time.Millisecond,
		Timing:       http.TimingInfo{TotalTime: 120 * time.Millisecond},
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]OutputFormat{
		"":     FormatText,
		"text": FormatText,
		"JSON": FormatJSON,
		"yaml": FormatYAML,
		"yml":  FormatYAML,
	}
	for input, expected := range tests {
		got, err := ParseFormat(input)
		if err != nil {
			t.Errorf("ParseFormat(%q) returned error: %v", input, err)
			continue
		}
		if got != expected {
			t.Errorf("ParseFormat(%q) = %s, want %s", input, got, expected)
		}
	}

	if _, err := ParseFormat("junit"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestNewRequestData(t *testing.T) {
	data, err := NewRequestData(setupTestRequest())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if data.Method != "POST" {
		t.Errorf("Expected POST, got %s", data.Method)
	}
	if data.URL != "https://api.example.com/users/7?page=1" {
		t.Errorf("Unexpected URL: %s", data.URL)
	}
	if data.Headers["content-type"] != "application/json" || data.Headers["authorization"] != "Bearer token123" {
		t.Errorf("Unexpected headers: %v", data.Headers)
	}

	missing := mapper.NewRequest(mapper.NewMethodDescriptor(mapper.MethodConfig{Path: "/users/{id}"}), mapper.Args{})
	_, err = NewRequestData(missing)
	var missingErr *mapper.MissingParameterError
	if !errors.As(err, &missingErr) {
		t.Errorf("Expected MissingParameterError, got %v", err)
	}
}

func TestJSONFormatter_FormatRequest(t *testing.T) {
	formatter := &JSONFormatter{Pretty: true}

	output, err := formatter.FormatRequest(setupTestRequest())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(output), &data); err != nil {
		t.Fatalf("Output is not valid JSON: %v\n%s", err, output)
	}
	if data["url"] != "https://api.example.com/users/7?page=1" {
		t.Errorf("Unexpected url: %v", data["url"])
	}
	body, ok := data["body"].(map[string]interface{})
	if !ok || body["name"] != "John Doe" {
		t.Errorf("Unexpected body: %v", data["body"])
	}
}

func TestJSONFormatter_FormatResponse(t *testing.T) {
	formatter := &JSONFormatter{Verbose: true}

	output, err := formatter.FormatResponse(setupTestResponse())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var data ResponseData
	if err := json.Unmarshal([]byte(output), &data); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if data.StatusCode != 200 || data.ResponseTime != 123 {
		t.Errorf("Unexpected response data: %+v", data)
	}
	if data.Timing == nil || data.Timing.Total != 120 {
		t.Errorf("Expected timing in verbose output, got %+v", data.Timing)
	}
	if data.Headers["X-Rate-Limit"] != "100" {
		t.Errorf("Unexpected headers: %v", data.Headers)
	}
	body, ok := data.Body.(map[string]interface{})
	if !ok || body["name"] != "John Doe" {
		t.Errorf("Expected decoded JSON body, got %v", data.Body)
	}
}

func TestJSONFormatter_NonJSONBody(t *testing.T) {
	resp := setupTestResponse()
	resp.Body = io.NopCloser(strings.NewReader("plain <text>"))

	output, err := (&JSONFormatter{}).FormatResponse(resp)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(output, `"body":"plain <text>"`) {
		t.Errorf("Expected body kept as unescaped text, got %s", output)
	}
	if strings.Contains(output, "timing") {
		t.Errorf("Expected no timing without verbose, got %s", output)
	}
}

func TestYAMLFormatter(t *testing.T) {
	formatter := &YAMLFormatter{}

	output, err := formatter.FormatRequest(setupTestRequest())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var data RequestData
	if err := yaml.Unmarshal([]byte(output), &data); err != nil {
		t.Fatalf("Output is not valid YAML: %v\n%s", err, output)
	}
	if data.Method != "POST" || data.URL != "https://api.example.com/users/7?page=1" {
		t.Errorf("Unexpected request data: %+v", data)
	}

	output, err = formatter.FormatValues(map[string]string{"id": "7"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output != `id: "7"` {
		t.Errorf("Unexpected values output: %q", output)
	}
}

func TestSummarize(t *testing.T) {
	manifest := mapper.NewManifest("http://example.org/").
		Add("User", "all", mapper.MethodConfig{Path: "/users"}).
		Add("User", "create", mapper.MethodConfig{Path: "users", Method: "post"}).
		Add("Blog", "post", mapper.MethodConfig{Host: "http://blog.example.com", Path: "/blogs/{slug}.json"})

	builder, err := mapper.NewClientBuilder(manifest, func() mapper.GatewayConstructor[string] {
		return func(*mapper.Request) mapper.Gateway[string] { return nil }
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	client, err := builder.Build()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	summaries := Summarize(client)
	expected := []MethodSummary{
		{Resource: "User", Method: "all", Verb: "GET", URL: "http://example.org/users"},
		{Resource: "User", Method: "create", Verb: "POST", URL: "http://example.org/users"},
		{Resource: "Blog", Method: "post", Verb: "GET", URL: "http://blog.example.com/blogs/{slug}.json"},
	}
	if len(summaries) != len(expected) {
		t.Fatalf("Expected %d summaries, got %d", len(expected), len(summaries))
	}
	for i := range expected {
		if summaries[i] != expected[i] {
			t.Errorf("Summary %d: expected %+v, got %+v", i, expected[i], summaries[i])
		}
	}
}

func TestGetFormatter(t *testing.T) {
	if _, ok := GetFormatter(FormatJSON, false, true).(*JSONFormatter); !ok {
		t.Error("Expected JSONFormatter")
	}
	if _, ok := GetFormatter(FormatYAML, false, true).(*YAMLFormatter); !ok {
		t.Error("Expected YAMLFormatter")
	}
	if _, ok := GetFormatter(FormatText, false, true).(*Formatter); !ok {
		t.Error("Expected text Formatter")
	}
}
