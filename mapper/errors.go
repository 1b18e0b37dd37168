package mapper

import (
	"errors"
	"fmt"
)

// Sentinel errors for construction failures.
var (
	// ErrInvalidManifest is matched by InvalidManifestError.
	ErrInvalidManifest = errors.New("mapper: invalid manifest")

	// ErrGatewayNotConfigured is matched by GatewayNotConfiguredError.
	ErrGatewayNotConfigured = errors.New("mapper: gateway not configured")
)

// InvalidManifestError is returned when a ClientBuilder is created without a
// manifest.
type InvalidManifestError struct {
	Reason string
}

func (e *InvalidManifestError) Error() string {
	if e.Reason == "" {
		return ErrInvalidManifest.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidManifest, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidManifest) hold.
func (e *InvalidManifestError) Is(target error) bool {
	return target == ErrInvalidManifest
}

// GatewayNotConfiguredError is returned when no gateway factory is supplied,
// or when the factory yields no gateway at call time.
type GatewayNotConfiguredError struct {
	Reason string
}

func (e *GatewayNotConfiguredError) Error() string {
	if e.Reason == "" {
		return ErrGatewayNotConfigured.Error()
	}
	return fmt.Sprintf("%s: %s", ErrGatewayNotConfigured, e.Reason)
}

// Is makes errors.Is(err, ErrGatewayNotConfigured) hold.
func (e *GatewayNotConfiguredError) Is(target error) bool {
	return target == ErrGatewayNotConfigured
}

// MissingPathError is returned by Build when a manifest method has no path.
type MissingPathError struct {
	Resource string
	Method   string
}

func (e *MissingPathError) Error() string {
	return fmt.Sprintf("mapper: resource %q method %q must define a path", e.Resource, e.Method)
}

// MissingParameterError is returned when a path placeholder has no value.
type MissingParameterError struct {
	Key      string
	Template string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("mapper: param %q required by path %q is missing", e.Key, e.Template)
}

// UnknownResourceError is returned when a client is asked for a resource the
// manifest does not define.
type UnknownResourceError struct {
	Resource string
}

func (e *UnknownResourceError) Error() string {
	return fmt.Sprintf("mapper: unknown resource %q", e.Resource)
}

// UnknownMethodError is returned when a resource is asked for a method the
// manifest does not define.
type UnknownMethodError struct {
	Resource string
	Method   string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("mapper: resource %q has no method %q", e.Resource, e.Method)
}
