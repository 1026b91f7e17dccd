package core

import (
	"fmt"
	"net/http"
	"strings"
)

// Method is an HTTP verb an operation is bound to.
type Method string

const (
	MethodGet     Method = http.MethodGet
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodPatch   Method = http.MethodPatch
	MethodDelete  Method = http.MethodDelete
	MethodHead    Method = http.MethodHead
	MethodOptions Method = http.MethodOptions
)

// methodPrefixes maps lower-case operation name prefixes to verbs.
// "update" is a logical verb and is sent as PATCH.
var methodPrefixes = map[string]Method{
	"get":     MethodGet,
	"post":    MethodPost,
	"put":     MethodPut,
	"patch":   MethodPatch,
	"delete":  MethodDelete,
	"head":    MethodHead,
	"options": MethodOptions,
	"update":  MethodPatch,
}

// ParseMethod converts a case-insensitive verb or operation prefix into a Method.
func ParseMethod(s string) (Method, bool) {
	m, ok := methodPrefixes[strings.ToLower(strings.TrimSpace(s))]
	return m, ok
}

// Lower returns the verb in the form used by operation names.
func (m Method) Lower() string {
	return strings.ToLower(string(m))
}

// hasBody reports whether remaining params travel in the request body
// rather than in the query string.
func (m Method) hasBody() bool {
	switch m {
	case MethodPost, MethodPut, MethodPatch:
		return true
	}
	return false
}

// UnmarshalText lets methods be used as YAML/JSON map keys.
func (m *Method) UnmarshalText(text []byte) error {
	parsed, ok := ParseMethod(string(text))
	if !ok {
		return fmt.Errorf("unknown http method %q", string(text))
	}
	*m = parsed
	return nil
}

// OperationKey identifies an operation: an HTTP method paired with an endpoint name.
type OperationKey struct {
	Method   Method
	Endpoint string
}

// Name returns the conventional operation name, e.g. "get_posts".
func (k OperationKey) Name() string {
	return k.Method.Lower() + "_" + k.Endpoint
}

func (k OperationKey) String() string {
	return fmt.Sprintf("%s %s", k.Method, k.Endpoint)
}

// splitOperationName decomposes "get_fake_missing" into (GET, "fake_missing").
// The prefix is everything up to the first underscore.
func splitOperationName(name string) (Method, string, bool) {
	prefix, endpoint, found := strings.Cut(name, "_")
	if !found || endpoint == "" {
		return "", "", false
	}
	method, ok := ParseMethod(prefix)
	if !ok {
		return "", "", false
	}
	return method, endpoint, true
}
