package http

import (
	"context"

	"github.com/wesleyorama2/mapsmith/mapper"
)

// Gateway runs a single mapper Request through a Client. It implements
// mapper.Gateway[*Response].
type Gateway struct {
	client  *Client
	request *mapper.Request
}

// NewGateway binds req to client.
func NewGateway(client *Client, req *mapper.Request) *Gateway {
	return &Gateway{client: client, request: req}
}

// Request returns the request the gateway is bound to.
func (g *Gateway) Request() *mapper.Request {
	return g.request
}

// Call executes the request. Errors from resolving the request URL, such as
// *mapper.MissingParameterError, are returned unchanged.
func (g *Gateway) Call(ctx context.Context) (*Response, error) {
	return g.client.Do(ctx, g.request)
}
