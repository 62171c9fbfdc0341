package contentd

import (
	"fmt"
	"net/url"
)

const (
	DefaultParam = "param"
	DefaultValue = "default"
)

// ResolverConfig controls how a query parameter becomes a name under the root.
type ResolverConfig struct {
	// Param is the query parameter holding the identifier.
	Param string
	// Default is used when Param is absent from the query.
	Default string
	// Extension is appended verbatim to every identifier (e.g. ".txt").
	Extension string
}

// PathResolver turns request query parameters into root-relative names.
// It holds no mutable state and is safe for concurrent use.
type PathResolver struct {
	cfg ResolverConfig
}

// NewPathResolver creates a PathResolver. An empty Param falls back to
// DefaultParam; Default and Extension are used as given.
func NewPathResolver(cfg ResolverConfig) *PathResolver {
	if cfg.Param == "" {
		cfg.Param = DefaultParam
	}
	return &PathResolver{cfg: cfg}
}

// Param returns the name of the query parameter the resolver reads.
func (r *PathResolver) Param() string {
	return r.cfg.Param
}

// ParseQuery parses a raw query string strictly. Unlike url.URL.Query,
// which drops malformed pairs, any malformed pair fails the whole query
// with ErrInvalidInput so a mangled identifier never falls back to the
// default.
func ParseQuery(raw string) (url.Values, error) {
	q, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("parse query: %w: %w", ErrInvalidInput, err)
	}
	return q, nil
}

// Value returns the identifier carried by q. When the parameter appears more
// than once the last occurrence wins; when it is absent the configured
// default is returned.
func (r *PathResolver) Value(q url.Values) string {
	values, ok := q[r.cfg.Param]
	if !ok || len(values) == 0 {
		return r.cfg.Default
	}
	return values[len(values)-1]
}

// Resolve returns the root-relative name for q. It returns ErrOutsideRoot
// when the identifier would resolve outside the root.
func (r *PathResolver) Resolve(q url.Values) (string, error) {
	return r.ResolveValue(r.Value(q))
}

// ResolveValue applies the extension to value and contains it under the root.
func (r *PathResolver) ResolveValue(value string) (string, error) {
	name, ok := ContainedName(value + r.cfg.Extension)
	if !ok {
		return "", fmt.Errorf("resolve %q: %w", value, ErrOutsideRoot)
	}
	return name, nil
}
