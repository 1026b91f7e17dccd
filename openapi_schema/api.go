package openapi_schema

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ServerInfo is the connection part of the first server entry of a document.
type ServerInfo struct {
	Host     string
	SSL      bool
	Port     uint16
	BasePath string
}

// Server resolves the first server URL of the document, substituting the
// default value of every server variable. Relative server URLs only carry a
// base path.
func (d *Document) Server() (ServerInfo, error) {
	var info ServerInfo
	if len(d.doc.Servers) == 0 || d.doc.Servers[0] == nil {
		return info, nil
	}
	server := d.doc.Servers[0]
	raw := server.URL
	for name, variable := range server.Variables {
		if variable != nil {
			raw = strings.ReplaceAll(raw, "{"+name+"}", variable.Default)
		}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return info, fmt.Errorf("invalid server url %q: %w", server.URL, err)
	}
	info.Host = u.Hostname()
	info.SSL = u.Scheme == "https"
	if p := u.Port(); p != "" {
		port, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return info, fmt.Errorf("invalid server port %q: %w", p, err)
		}
		info.Port = uint16(port)
	}
	info.BasePath = strings.TrimRight(u.Path, "/")
	return info, nil
}

// Resource returns the path item for resourcePath. Both forms, with and
// without trailing slash, are accepted.
//
// Example:
//
//	item, err := doc.Resource("posts")
func (d *Document) Resource(resourcePath string) (*openapi3.PathItem, error) {
	base := "/" + strings.Trim(resourcePath, "/")
	withSlash := base + "/"

	paths := d.doc.Paths.Map()
	if item := paths[base]; item != nil {
		return item, nil
	}
	if item := paths[withSlash]; item != nil {
		return item, nil
	}

	var available []string
	for path := range paths {
		available = append(available, path)
	}
	sort.Strings(available)
	return nil, fmt.Errorf(
		"path %q not found in OpenAPI schema. Available paths:\n  - %s",
		resourcePath,
		strings.Join(available, "\n  - "),
	)
}

// QueryParameters returns the query parameters accepted by the given method
// on resourcePath, path-level parameters included. A method the path does not
// define yields no parameters.
func (d *Document) QueryParameters(method, resourcePath string) ([]*openapi3.Parameter, error) {
	resource, err := d.Resource(resourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get OpenAPI resource %q: %w", resourcePath, err)
	}

	op := resource.GetOperation(strings.ToUpper(method))
	if op == nil {
		return []*openapi3.Parameter{}, nil
	}

	queryParams := make([]*openapi3.Parameter, 0)
	seen := map[string]bool{}
	for _, refs := range []openapi3.Parameters{op.Parameters, resource.Parameters} {
		for _, paramRef := range refs {
			if paramRef == nil || paramRef.Value == nil {
				continue
			}
			param := paramRef.Value
			if !strings.EqualFold(param.In, openapi3.ParameterInQuery) || seen[param.Name] {
				continue
			}
			seen[param.Name] = true
			queryParams = append(queryParams, param)
		}
	}
	return queryParams, nil
}

// SearchableQueryParams returns the names of GET query parameters on
// resourcePath whose schema is a string or an integer, sorted.
func (d *Document) SearchableQueryParams(resourcePath string) ([]string, error) {
	params, err := d.QueryParameters("GET", resourcePath)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, param := range params {
		if param.Schema == nil || !IsStringOrInteger(param.Schema.Value) {
			continue
		}
		names = append(names, param.Name)
	}
	sort.Strings(names)
	return names, nil
}
