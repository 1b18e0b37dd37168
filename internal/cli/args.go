package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/mapsmith/mapper"
)

// requestFlags are the call arguments shared by render, call and bench.
type requestFlags struct {
	params  []string
	headers []string
	data    string
	json    bool
	host    string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.params, "param", "p", nil,
		"call parameter as key=value, or key:=json for typed values (can be used multiple times)")
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil,
		"header as 'Name: value' (can be used multiple times)")
	cmd.Flags().StringVarP(&f.data, "data", "d", "", "request body, @file reads it from a file")
	cmd.Flags().BoolVar(&f.json, "json", false, "decode the body as JSON so it is sent as JSON")
	cmd.Flags().StringVar(&f.host, "host", "", "override the method host for this call")
}

// args converts the flags into call arguments.
func (f *requestFlags) args() (mapper.Args, error) {
	params, err := parseParams(f.params)
	if err != nil {
		return mapper.Args{}, err
	}

	headers, err := parseHeaders(f.headers)
	if err != nil {
		return mapper.Args{}, err
	}

	body, err := parseBody(f.data, f.json)
	if err != nil {
		return mapper.Args{}, err
	}

	return mapper.Args{Host: f.host, Params: params, Headers: headers, Body: body}, nil
}

// parseTarget splits "Resource.method".
func parseTarget(target string) (string, string, error) {
	i := strings.LastIndex(target, ".")
	if i <= 0 || i == len(target)-1 {
		return "", "", fmt.Errorf("target %q must be Resource.method", target)
	}
	return target[:i], target[i+1:], nil
}

// parseParams keeps the command line order. key:=value decodes value as JSON.
func parseParams(values []string) (mapper.Params, error) {
	params := mapper.NewParams()
	for _, raw := range values {
		i := strings.Index(raw, "=")
		if i <= 0 {
			return mapper.Params{}, fmt.Errorf("invalid parameter %q, expected key=value", raw)
		}

		key, value := raw[:i], raw[i+1:]
		if strings.HasSuffix(key, ":") {
			key = strings.TrimSuffix(key, ":")
			if key == "" {
				return mapper.Params{}, fmt.Errorf("invalid parameter %q, expected key:=json", raw)
			}
			var decoded interface{}
			if err := json.Unmarshal([]byte(value), &decoded); err != nil {
				return mapper.Params{}, fmt.Errorf("invalid JSON for parameter %s: %w", key, err)
			}
			params = params.With(key, decoded)
			continue
		}
		params = params.With(key, value)
	}
	return params, nil
}

func parseHeaders(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(values))
	for _, raw := range values {
		parts := strings.SplitN(raw, ":", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("invalid header %q, expected 'Name: value'", raw)
		}
		headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return headers, nil
}

func parseBody(data string, asJSON bool) (interface{}, error) {
	if data == "" {
		return nil, nil
	}

	if strings.HasPrefix(data, "@") {
		content, err := os.ReadFile(data[1:])
		if err != nil {
			return nil, fmt.Errorf("error reading body file: %w", err)
		}
		data = string(content)
	}

	if !asJSON {
		return data, nil
	}

	var body interface{}
	if err := json.Unmarshal([]byte(data), &body); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	return body, nil
}

// parseVariables reads key=value pairs given with --var or --extract.
func parseVariables(values []string) (map[string]string, error) {
	vars := make(map[string]string, len(values))
	for _, raw := range values {
		key, value, ok := strings.Cut(raw, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid value %q, expected key=value", raw)
		}
		vars[key] = value
	}
	return vars, nil
}
