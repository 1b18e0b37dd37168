package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/wesleyorama2/mapsmith/mapper"
)

// buildRequest converts a mapper Request into an *http.Request.
//
// baseURL is used when the request resolves no host. Default headers are
// applied first and the request's own headers override them.
func buildRequest(ctx context.Context, req *mapper.Request, baseURL string, defaults map[string]string) (*http.Request, error) {
	target, err := req.URL()
	if err != nil {
		return nil, err
	}
	if req.Host() == "" {
		target = baseURL + target
	}

	headers := req.Headers()

	bodyReader, contentType, err := encodeBody(req.Body())
	if err != nil {
		return nil, fmt.Errorf("error encoding body for %s: %w", req, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, strings.ToUpper(req.Method()), target, bodyReader)
	if err != nil {
		return nil, err
	}

	for key, value := range defaults {
		httpReq.Header.Set(key, value)
	}
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	return httpReq, nil
}

// encodeBody returns a reader for body and the content type to use when the
// request sets none. Strings and byte slices are sent as-is, readers are
// streamed, url.Values are form-encoded and anything else is sent as JSON.
func encodeBody(body interface{}) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case string:
		return strings.NewReader(b), "", nil
	case []byte:
		return bytes.NewReader(b), "", nil
	case io.Reader:
		return b, "", nil
	case url.Values:
		return strings.NewReader(b.Encode()), "application/x-www-form-urlencoded", nil
	default:
		jsonBody, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(jsonBody), "application/json", nil
	}
}
