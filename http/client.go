package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptrace"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wesleyorama2/mapsmith/mapper"
)

// Client executes mapper Requests over HTTP.
// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
	logger     logrus.FieldLogger
	metrics    *MetricsCollector
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// NewClient creates a new HTTP client with the given options.
//
// Example:
//
//	client := http.NewClient(
//	    http.WithTimeout(30*time.Second),
//	    http.WithHeader("User-Agent", "mapsmith"),
//	)
func NewClient(options ...ClientOption) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: make(map[string]string),
		logger:  logrus.StandardLogger(),
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// WithBaseURL sets the host used for requests whose descriptor and call
// arguments carry none.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithTimeout sets the timeout for all requests made by this client.
// The default timeout is 30 seconds.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHeader adds a default header to all requests made by this client.
// Headers resolved by the Request override these defaults.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithHTTPClient sets a custom *http.Client for this client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithInsecureSkipVerify disables TLS certificate verification. It works on
// a copy of the installed *http.Client and its transport, so a client passed
// to WithHTTPClient is left untouched.
// WARNING: This should only be used for testing purposes.
func WithInsecureSkipVerify() ClientOption {
	return func(c *Client) {
		var transport *http.Transport
		if t, ok := c.httpClient.Transport.(*http.Transport); ok {
			transport = t.Clone()
		} else {
			transport = http.DefaultTransport.(*http.Transport).Clone()
		}
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{}
		}
		transport.TLSClientConfig.InsecureSkipVerify = true

		httpClient := *c.httpClient
		httpClient.Transport = transport
		c.httpClient = &httpClient
	}
}

// WithLogger sets the logger calls are reported to at debug level.
func WithLogger(logger logrus.FieldLogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records every call in the given collector.
func WithMetrics(metrics *MetricsCollector) ClientOption {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// Factory returns a gateway factory for mapper.NewClientBuilder. Every built
// method call gets its own Gateway bound to this client.
func (c *Client) Factory() mapper.GatewayFactory[*Response] {
	construct := func(req *mapper.Request) mapper.Gateway[*Response] {
		return &Gateway{client: c, request: req}
	}
	return func() mapper.GatewayConstructor[*Response] {
		return construct
	}
}

// Do executes a Request and returns the response with detailed timing
// information.
func (c *Client) Do(ctx context.Context, req *mapper.Request) (*Response, error) {
	httpReq, err := buildRequest(ctx, req, c.baseURL, c.headers)
	if err != nil {
		c.metrics.recordError(req, "build")
		return nil, err
	}

	timing := TimingInfo{
		StartTime: time.Now(),
	}

	var dnsStart, connectStart, tlsHandshakeStart time.Time
	var dnsDone, connectDone bool
	lastPhaseEnd := timing.StartTime

	trace := &httptrace.ClientTrace{
		DNSStart: func(info httptrace.DNSStartInfo) {
			dnsStart = time.Now()
		},
		DNSDone: func(info httptrace.DNSDoneInfo) {
			now := time.Now()
			timing.DNSLookupTime = now.Sub(dnsStart)
			dnsDone = true
			lastPhaseEnd = now
		},
		ConnectStart: func(network, addr string) {
			if dnsDone || dnsStart.IsZero() {
				connectStart = time.Now()
			}
		},
		ConnectDone: func(network, addr string, err error) {
			if err == nil && !connectStart.IsZero() {
				now := time.Now()
				timing.TCPConnectTime = now.Sub(connectStart)
				connectDone = true
				lastPhaseEnd = now
			}
		},
		TLSHandshakeStart: func() {
			if connectDone {
				tlsHandshakeStart = time.Now()
			}
		},
		TLSHandshakeDone: func(state tls.ConnectionState, err error) {
			if err == nil && !tlsHandshakeStart.IsZero() {
				now := time.Now()
				timing.TLSHandshakeTime = now.Sub(tlsHandshakeStart)
				lastPhaseEnd = now
			}
		},
		GotFirstResponseByte: func() {
			timing.TimeToFirstByte = time.Since(lastPhaseEnd)
		},
	}

	httpReq = httpReq.WithContext(httptrace.WithClientTrace(httpReq.Context(), trace))

	done := c.metrics.inFlight(req)
	httpResp, err := c.httpClient.Do(httpReq)
	done()
	if err != nil {
		c.metrics.recordError(req, "transport")
		c.logger.WithFields(logrus.Fields{
			"method": httpReq.Method,
			"url":    httpReq.URL.String(),
		}).WithError(err).Debug("request failed")
		return nil, err
	}

	timing.TotalTime = time.Since(timing.StartTime)

	contentTransferStart := time.Now()
	bodyBytes, err := io.ReadAll(httpResp.Body)
	httpResp.Body.Close()
	if err != nil {
		c.metrics.recordError(req, "read")
		return nil, err
	}
	timing.ContentTransferTime = time.Since(contentTransferStart)

	resp := &Response{
		StatusCode:   httpResp.StatusCode,
		Status:       httpResp.Status,
		Headers:      httpResp.Header,
		Body:         io.NopCloser(bytes.NewReader(bodyBytes)),
		ResponseTime: time.Since(timing.StartTime),
		Timing:       timing,
		Request:      req,
		rawBody:      bodyBytes,
		parsed:       true,
	}

	c.metrics.recordResponse(req, resp)
	c.logger.WithFields(logrus.Fields{
		"method":   httpReq.Method,
		"url":      httpReq.URL.String(),
		"status":   resp.StatusCode,
		"duration": resp.ResponseTime,
	}).Debug("request completed")

	return resp, nil
}
