package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	http "github.com/wesleyorama2/mapsmith/http"
	"github.com/wesleyorama2/mapsmith/mapper"
)

// Formatter is responsible for formatting requests and responses in text format
type Formatter struct {
	Verbose bool
	NoColor bool

	colors *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		colors:  NewColorScheme(noColor),
	}
}

// FormatRequest formats a resolved request for display
func (f *Formatter) FormatRequest(req *mapper.Request) (string, error) {
	data, err := NewRequestData(req)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("▶ REQUEST: %s %s\n",
		f.colors.Method.Sprint(data.Method), f.colors.URL.Sprint(data.URL)))

	if f.Verbose || len(data.Headers) > 0 {
		buf.WriteString("  Headers:\n")
		for _, key := range sortedKeys(data.Headers) {
			buf.WriteString(fmt.Sprintf("    %s: %s\n", f.colors.HeaderKey.Sprint(key), data.Headers[key]))
		}
	}

	if data.Body != nil {
		buf.WriteString("  Body: ")
		buf.WriteString(formatBody(data.Body))
		buf.WriteString("\n")
	}

	return buf.String(), nil
}

// FormatResponse formats an HTTP response for display
func (f *Formatter) FormatResponse(resp *http.Response) (string, error) {
	var buf strings.Builder

	status := resp.Status
	if status == "" {
		status = fmt.Sprintf("%d", resp.StatusCode)
	}
	buf.WriteString(fmt.Sprintf("◀ RESPONSE: %s (%dms)\n",
		f.colors.Status(resp.StatusCode).Sprint(status),
		resp.GetResponseTimeMillis()))

	if f.Verbose {
		buf.WriteString("  Timing:\n")
		buf.WriteString(fmt.Sprintf("    DNS Lookup:         %dms\n", resp.GetDNSLookupTimeMillis()))
		buf.WriteString(fmt.Sprintf("    TCP Connection:     %dms\n", resp.GetTCPConnectTimeMillis()))
		buf.WriteString(fmt.Sprintf("    TLS Handshake:      %dms\n", resp.GetTLSHandshakeTimeMillis()))
		buf.WriteString(fmt.Sprintf("    Time to First Byte: %dms\n", resp.GetTimeToFirstByteMillis()))
		buf.WriteString(fmt.Sprintf("    Content Transfer:   %dms\n", resp.GetContentTransferTimeMillis()))
		buf.WriteString(fmt.Sprintf("    Total:              %dms\n", resp.GetTotalTimeMillis()))

		buf.WriteString("  Headers:\n")
		headers := make(map[string]string, len(resp.Headers))
		for key, values := range resp.Headers {
			headers[key] = strings.Join(values, ", ")
		}
		for _, key := range sortedKeys(headers) {
			buf.WriteString(fmt.Sprintf("    %s: %s\n", f.colors.HeaderKey.Sprint(key), headers[key]))
		}
	}

	body, err := resp.GetBodyAsString()
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}
	if body != "" {
		buf.WriteString("  Body:\n")
		buf.WriteString(formatJSONString(body))
		buf.WriteString("\n")
	}

	return buf.String(), nil
}

// FormatMethods lists methods grouped by resource with their verb and URL template
func (f *Formatter) FormatMethods(methods []MethodSummary) (string, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	current := ""
	for _, m := range methods {
		if m.Resource != current {
			if err := w.Flush(); err != nil {
				return "", err
			}
			buf.WriteString(f.colors.Resource.Sprint(m.Resource) + "\n")
			current = m.Resource
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", m.Method, m.Verb, m.URL)
	}
	if err := w.Flush(); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// FormatValues lists extracted values sorted by name
func (f *Formatter) FormatValues(values map[string]string) (string, error) {
	var buf strings.Builder
	for _, name := range sortedKeys(values) {
		buf.WriteString(fmt.Sprintf("%s %s = %s\n", SuccessIcon(f.NoColor), f.colors.Highlight.Sprint(name), values[name]))
	}
	return buf.String(), nil
}

// FormatValue prints v with its String method when it has one
func (f *Formatter) FormatValue(v interface{}) (string, error) {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String(), nil
	}
	return fmt.Sprintf("%+v", v), nil
}

func formatBody(body interface{}) string {
	switch b := body.(type) {
	case string:
		return formatJSONString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return fmt.Sprintf("%v", b)
		}
		return formatJSONString(string(raw))
	}
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "  ", "  ")
	if err != nil {
		return s
	}
	return prettyJSON.String()
}
