package mapper

import (
	"context"
	"errors"
)

// Gateway executes one Request. R is whatever the transport produces, for
// example a response value.
type Gateway[R any] interface {
	Call(ctx context.Context) (R, error)
}

// GatewayConstructor creates a gateway bound to a single Request.
type GatewayConstructor[R any] func(*Request) Gateway[R]

// GatewayFactory returns the constructor to use for a call. It is invoked on
// every call, so the constructor may be swapped between calls.
type GatewayFactory[R any] func() GatewayConstructor[R]

// GatewayFunc adapts a function to the Gateway interface.
type GatewayFunc[R any] func(ctx context.Context) (R, error)

// Call calls f(ctx).
func (f GatewayFunc[R]) Call(ctx context.Context) (R, error) {
	return f(ctx)
}

// Method is a built, callable manifest method.
type Method[R any] func(ctx context.Context, args Args) (R, error)

// ClientBuilder wires a Manifest and a gateway factory into a Client.
type ClientBuilder[R any] struct {
	manifest *Manifest
	factory  GatewayFactory[R]
}

// NewClientBuilder validates its inputs. A nil manifest yields
// *InvalidManifestError and a nil factory *GatewayNotConfiguredError.
func NewClientBuilder[R any](manifest *Manifest, factory GatewayFactory[R]) (*ClientBuilder[R], error) {
	if manifest == nil {
		return nil, &InvalidManifestError{Reason: "manifest is required"}
	}
	if factory == nil {
		return nil, &GatewayNotConfiguredError{Reason: "gateway factory is required"}
	}
	return &ClientBuilder[R]{manifest: manifest, factory: factory}, nil
}

// Build creates a descriptor for every method of the manifest and returns
// the assembled client. Every method is checked before anything is returned:
// one method without a path fails the whole build with *MissingPathError.
// Build performs no I/O.
func (b *ClientBuilder[R]) Build() (*Client[R], error) {
	client := &Client[R]{
		manifest:  b.manifest,
		resources: make([]*Resource[R], 0, len(b.manifest.Resources)),
		index:     make(map[string]*Resource[R], len(b.manifest.Resources)),
	}

	for _, def := range b.manifest.Resources {
		resource, ok := client.index[def.Name]
		if !ok {
			resource = &Resource[R]{
				name:        def.Name,
				calls:       make(map[string]Method[R], len(def.Methods)),
				descriptors: make(map[string]*MethodDescriptor, len(def.Methods)),
			}
			client.index[def.Name] = resource
			client.resources = append(client.resources, resource)
		}

		for _, method := range def.Methods {
			cfg := method.Config
			if cfg.Host == "" {
				cfg.Host = b.manifest.Host
			}
			descriptor := NewMethodDescriptor(cfg)
			if !descriptor.hasPath() {
				return nil, &MissingPathError{Resource: def.Name, Method: method.Name}
			}

			if _, exists := resource.calls[method.Name]; !exists {
				resource.methods = append(resource.methods, method.Name)
			}
			resource.descriptors[method.Name] = descriptor
			resource.calls[method.Name] = b.method(descriptor)
		}
	}

	return client, nil
}

func (b *ClientBuilder[R]) method(descriptor *MethodDescriptor) Method[R] {
	return func(ctx context.Context, args Args) (R, error) {
		var zero R

		request := NewRequest(descriptor, args)

		construct := b.factory()
		if construct == nil {
			return zero, &GatewayNotConfiguredError{Reason: "factory returned no gateway constructor"}
		}
		gateway := construct(request)
		if gateway == nil {
			return zero, &GatewayNotConfiguredError{Reason: "gateway constructor returned nil"}
		}

		return gateway.Call(ctx)
	}
}

// Client is a built manifest: resources by name, each holding callable
// methods by name, in manifest order. A Client is safe for concurrent use.
type Client[R any] struct {
	manifest  *Manifest
	resources []*Resource[R]
	index     map[string]*Resource[R]
}

// Manifest returns the manifest the client was built from.
func (c *Client[R]) Manifest() *Manifest {
	return c.manifest
}

// Resources returns the resource names in manifest order.
func (c *Client[R]) Resources() []string {
	names := make([]string, 0, len(c.resources))
	for _, r := range c.resources {
		names = append(names, r.name)
	}
	return names
}

// Resource returns the named resource.
func (c *Client[R]) Resource(name string) (*Resource[R], bool) {
	r, ok := c.index[name]
	return r, ok
}

// Call invokes resource.method with args.
func (c *Client[R]) Call(ctx context.Context, resource, method string, args Args) (R, error) {
	r, ok := c.index[resource]
	if !ok {
		var zero R
		return zero, &UnknownResourceError{Resource: resource}
	}
	return r.Call(ctx, method, args)
}

// Resource is one namespace of callable methods.
type Resource[R any] struct {
	name        string
	methods     []string
	calls       map[string]Method[R]
	descriptors map[string]*MethodDescriptor
}

// Name returns the resource name.
func (r *Resource[R]) Name() string {
	return r.name
}

// Methods returns the method names in manifest order.
func (r *Resource[R]) Methods() []string {
	methods := make([]string, len(r.methods))
	copy(methods, r.methods)
	return methods
}

// Method returns the named callable.
func (r *Resource[R]) Method(name string) (Method[R], bool) {
	m, ok := r.calls[name]
	return m, ok
}

// Descriptor returns the descriptor behind the named method.
func (r *Resource[R]) Descriptor(name string) (*MethodDescriptor, bool) {
	d, ok := r.descriptors[name]
	return d, ok
}

// Call invokes the named method with args.
func (r *Resource[R]) Call(ctx context.Context, method string, args Args) (R, error) {
	m, ok := r.calls[method]
	if !ok {
		var zero R
		return zero, &UnknownMethodError{Resource: r.name, Method: method}
	}
	return m(ctx, args)
}

// IsBuildError reports whether err is one of the errors NewClientBuilder or
// Build return.
func IsBuildError(err error) bool {
	var missingPath *MissingPathError
	return errors.Is(err, ErrInvalidManifest) ||
		errors.Is(err, ErrGatewayNotConfigured) ||
		errors.As(err, &missingPath)
}
