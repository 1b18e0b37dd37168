package mapper

import (
	"fmt"
	"strings"
)

// Args are the call-time arguments of a method call.
//
// Params may also carry the body and extra headers under the descriptor's
// BodyAttr and HeadersAttr keys. Explicit Body and Headers fields take
// precedence over those keys. A nil Body or a nil Headers map means "not
// given".
type Args struct {
	Host    string
	Params  Params
	Headers map[string]string
	Body    interface{}
}

// Request is an immutable description of one call: a descriptor plus the
// call-time arguments. Every accessor is a pure projection of that state.
type Request struct {
	descriptor *MethodDescriptor
	host       string
	params     Params
	headers    map[string]string
	body       interface{}
}

// NewRequest combines a descriptor with call-time arguments. The reserved
// body and headers keys are resolved here, once, into the same fields the
// explicit Args carry.
func NewRequest(descriptor *MethodDescriptor, args Args) *Request {
	if descriptor == nil {
		descriptor = NewMethodDescriptor(MethodConfig{})
	}

	merged := descriptor.params.Merge(args.Params)

	var headers map[string]string
	if args.Headers != nil {
		headers = copyHeaders(args.Headers)
	} else if value, ok := merged.Get(descriptor.headersAttr); ok {
		headers = headersFromValue(value)
	}

	body := args.Body
	if body == nil {
		body, _ = merged.Get(descriptor.bodyAttr)
	}

	return &Request{
		descriptor: descriptor,
		host:       args.Host,
		params:     args.Params,
		headers:    headers,
		body:       body,
	}
}

// Descriptor returns the method descriptor the request was built from.
func (r *Request) Descriptor() *MethodDescriptor {
	return r.descriptor
}

// Method returns the lower-cased HTTP verb.
func (r *Request) Method() string {
	return strings.ToLower(r.descriptor.method)
}

// Host returns the call-time host, or the descriptor host, without a
// trailing slash.
func (r *Request) Host() string {
	host := r.host
	if host == "" {
		host = r.descriptor.host
	}
	return strings.TrimSuffix(host, "/")
}

// Params returns the descriptor params overlaid with the call-time params,
// without the reserved body and headers keys.
func (r *Request) Params() Params {
	return r.descriptor.params.
		Merge(r.params).
		Without(r.descriptor.bodyAttr, r.descriptor.headersAttr)
}

// Headers returns the descriptor headers overlaid with the call-time
// headers. All keys are lower-cased.
func (r *Request) Headers() map[string]string {
	headers := make(map[string]string, len(r.descriptor.headers)+len(r.headers))
	for key, value := range r.descriptor.headers {
		headers[strings.ToLower(key)] = value
	}
	for key, value := range r.headers {
		headers[strings.ToLower(key)] = value
	}
	return headers
}

// Body returns the request body, nil when there is none.
func (r *Request) Body() interface{} {
	return r.body
}

// Path interpolates the path template and appends the unused params as a
// query string. It fails with *MissingParameterError when a placeholder has
// no value.
func (r *Request) Path() (string, error) {
	return interpolatePath(r.descriptor.path, r.Params())
}

// URL returns Host() followed by Path().
func (r *Request) URL() (string, error) {
	path, err := r.Path()
	if err != nil {
		return "", err
	}
	return r.Host() + path, nil
}

// Enhance returns a new Request with overrides applied: params and headers
// are shallow-merged over the original call-time values and a non-nil body
// replaces the original one. The receiver is not modified.
func (r *Request) Enhance(overrides Args) *Request {
	d := r.descriptor

	headers := overrides.Headers
	if headers == nil {
		if value, ok := overrides.Params.Get(d.headersAttr); ok {
			headers = headersFromValue(value)
		}
	}
	merged := copyHeaders(r.headers)
	for key, value := range headers {
		merged[strings.ToLower(key)] = value
	}

	body := overrides.Body
	if body == nil && !overrides.Params.Has(d.bodyAttr) {
		body = r.body
	}

	host := overrides.Host
	if host == "" {
		host = r.host
	}

	return NewRequest(d, Args{
		Host:    host,
		Params:  r.params.Merge(overrides.Params),
		Headers: merged,
		Body:    body,
	})
}

// String renders the request as "METHOD URL" for logs and error messages.
func (r *Request) String() string {
	url, err := r.URL()
	if err != nil {
		url = r.Host() + r.descriptor.path
	}
	return fmt.Sprintf("%s %s", strings.ToUpper(r.Method()), url)
}

// copyHeaders returns in with lower-cased keys.
func copyHeaders(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[strings.ToLower(key)] = value
	}
	return out
}

// headersFromValue converts a headers value smuggled through params.
func headersFromValue(value interface{}) map[string]string {
	switch v := value.(type) {
	case map[string]string:
		return copyHeaders(v)
	case map[string]interface{}:
		headers := make(map[string]string, len(v))
		for key, item := range v {
			headers[strings.ToLower(key)] = stringify(item)
		}
		return headers
	case Params:
		headers := make(map[string]string, v.Len())
		v.Each(func(key string, item interface{}) {
			headers[strings.ToLower(key)] = stringify(item)
		})
		return headers
	default:
		return nil
	}
}
