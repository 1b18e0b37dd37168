// Package http is the HTTP gateway for mapper clients: it executes a
// mapper.Request with net/http and returns a Response with detailed timing.
//
// This package provides:
//   - A configurable Client with functional options
//   - A gateway factory for mapper.NewClientBuilder
//   - Detailed timing information (DNS, TCP, TLS, TTFB)
//   - Optional Prometheus metrics and logrus debug logging
//
// Basic Usage:
//
//	client := http.NewClient(
//	    http.WithTimeout(30*time.Second),
//	    http.WithHeader("User-Agent", "mapsmith"),
//	)
//
//	builder, err := mapper.NewClientBuilder(manifest, client.Factory())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	api, err := builder.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := api.Call(ctx, "User", "byId", mapper.Args{
//	    Params: mapper.NewParams(mapper.P("id", 1)),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Status: %d, TTFB: %v\n", resp.StatusCode, resp.Timing.TimeToFirstByte)
//
// Request Bodies:
//
// Strings and byte slices are sent as-is, io.Readers are streamed,
// url.Values are form-encoded and every other value is encoded as JSON with
// a Content-Type of application/json unless the request sets one.
//
// Thread Safety:
//
// Client is safe for concurrent use. A Gateway is bound to one Request and
// is created per call.
package http
