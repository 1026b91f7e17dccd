package openapi_schema

import (
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

var nonWord = regexp.MustCompile(`\W+`)

// IsStringOrInteger returns true if the given OpenAPI schema represents string or integer
func IsStringOrInteger(prop *openapi3.Schema) bool {
	if prop == nil || prop.Type == nil || len(*prop.Type) == 0 {
		return false
	}
	switch (*prop.Type)[0] {
	case openapi3.TypeString, openapi3.TypeInteger:
		return true
	default:
		return false
	}
}

// GetSchemaType returns the type string of the given OpenAPI schema
func GetSchemaType(s *openapi3.Schema) string {
	if s == nil || s.Type == nil || len(*s.Type) == 0 {
		return ""
	}
	return (*s.Type)[0]
}

// sanitizeName turns a path segment or parameter name into an identifier
// usable in operation names and template placeholders.
func sanitizeName(s string) string {
	return strings.Trim(nonWord.ReplaceAllString(s, "_"), "_")
}

// splitPath breaks an OpenAPI path into its non-empty segments.
func splitPath(path string) []string {
	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

// pathParam returns the parameter name of a "{name}" segment.
func pathParam(segment string) (string, bool) {
	if len(segment) > 2 && strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
		return segment[1 : len(segment)-1], true
	}
	return "", false
}
