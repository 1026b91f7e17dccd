package openapi_schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/vast-data/go-takeout-client/core"
)

// MinVersionExtension is the operation extension carrying the first server
// version that supports an operation.
const MinVersionExtension = "x-min-version"

// Route is one operation derived from a document path.
type Route struct {
	Key        core.OperationKey
	Path       string
	Template   string // Empty when the default path already matches Path.
	MinVersion string // From the x-min-version extension.
	Summary    string
	Query      map[string]string // Query parameter name to schema type.
}

// Catalog is the client description derived from a document.
type Catalog struct {
	Server      ServerInfo
	Routes      []Route
	Endpoints   core.Endpoints
	Schemas     core.SchemaTable
	MinVersions map[string]string
	// Conflicts lists paths that mapped onto an operation already taken by
	// an earlier path, in sorted path order.
	Conflicts []string
}

// Catalog maps every path and method of the document onto operations.
//
// The endpoint name is the path's literal segments joined by "_", so
// "/posts/{postId}/comments" becomes "posts_comments". Paths the client can
// build on its own ("/posts" and "/posts/{id}") get no template. Every other
// path gets one rooted at the server base path, with "{id}" mapped to
// {{objectId}} and other parameters to {{name}}.
func (d *Document) Catalog() (*Catalog, error) {
	server, err := d.Server()
	if err != nil {
		return nil, err
	}
	catalog := &Catalog{
		Server:      server,
		Endpoints:   core.Endpoints{},
		Schemas:     core.SchemaTable{},
		MinVersions: map[string]string{},
	}

	paths := d.doc.Paths.Map()
	sorted := make([]string, 0, len(paths))
	for path := range paths {
		sorted = append(sorted, path)
	}
	sort.Strings(sorted)

	var routes []Route
	plain := map[core.OperationKey]bool{}
	for _, path := range sorted {
		endpoint, direct := endpointFor(path)
		if endpoint == "" {
			catalog.Conflicts = append(catalog.Conflicts, fmt.Sprintf("%s: no literal segment", path))
			continue
		}
		for methodName, op := range paths[path].Operations() {
			method, ok := core.ParseMethod(methodName)
			if !ok {
				continue
			}
			route := Route{
				Key:        core.OperationKey{Method: method, Endpoint: endpoint},
				Path:       path,
				MinVersion: minVersionOf(op),
				Summary:    op.Summary,
				Query:      queryTypes(op, paths[path]),
			}
			if !direct {
				route.Template = server.BasePath + templateFor(path)
			} else {
				plain[route.Key] = true
			}
			routes = append(routes, route)
		}
	}
	sort.SliceStable(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Key.Method < routes[j].Key.Method
	})

	seen := map[core.OperationKey]bool{}
	for _, route := range routes {
		if route.Template != "" {
			if _, taken := catalog.Schemas[route.Key]; taken || plain[route.Key] {
				catalog.Conflicts = append(catalog.Conflicts, fmt.Sprintf("%s %s: %s ignored", route.Key.Method, route.Key.Endpoint, route.Path))
				continue
			}
			catalog.Schemas[route.Key] = route.Template
		}
		if route.MinVersion != "" {
			if _, ok := catalog.MinVersions[route.Key.Name()]; !ok {
				catalog.MinVersions[route.Key.Name()] = route.MinVersion
			}
		}
		if !seen[route.Key] {
			seen[route.Key] = true
			catalog.Endpoints[route.Key.Method] = append(catalog.Endpoints[route.Key.Method], route.Key.Endpoint)
		}
		catalog.Routes = append(catalog.Routes, route)
	}
	for method := range catalog.Endpoints {
		sort.Strings(catalog.Endpoints[method])
	}
	return catalog, nil
}

// Apply merges the catalog into config. Values already present in config
// win: the server only fills an empty Host, the base path an empty
// PathPrefix, and declared templates and minimum versions are kept.
func (c *Catalog) Apply(config *core.Config) {
	if config.Host == "" {
		config.Host = c.Server.Host
		config.SSL = c.Server.SSL
		config.Port = c.Server.Port
	}
	if config.PathPrefix == "" {
		config.PathPrefix = c.Server.BasePath
	}

	if config.Endpoints == nil {
		config.Endpoints = core.Endpoints{}
	}
	for method, names := range c.Endpoints {
		declared := map[string]bool{}
		for _, name := range config.Endpoints[method] {
			declared[name] = true
		}
		for _, name := range names {
			if !declared[name] {
				config.Endpoints[method] = append(config.Endpoints[method], name)
			}
		}
	}

	if config.Schemas == nil {
		config.Schemas = core.SchemaTable{}
	}
	for key, tmpl := range c.Schemas {
		if _, ok := config.Schemas[key]; !ok {
			config.Schemas[key] = tmpl
		}
	}

	if config.MinVersions == nil {
		config.MinVersions = map[string]string{}
	}
	for name, v := range c.MinVersions {
		if _, ok := config.MinVersions[name]; !ok {
			config.MinVersions[name] = v
		}
	}
}

// endpointFor names the endpoint of path and reports whether the client's
// default "/{endpoint}[/{objectId}]" path already reaches it.
func endpointFor(path string) (string, bool) {
	var literals []string
	segments := splitPath(path)
	for _, seg := range segments {
		if _, isParam := pathParam(seg); !isParam {
			if name := strings.ToLower(sanitizeName(seg)); name != "" {
				literals = append(literals, name)
			}
		}
	}
	endpoint := strings.Join(literals, "_")
	if endpoint == "" || strings.HasSuffix(path, "/") {
		return endpoint, false
	}

	switch len(segments) {
	case 1:
		return endpoint, segments[0] == endpoint
	case 2:
		_, isParam := pathParam(segments[1])
		return endpoint, segments[0] == endpoint && isParam
	}
	return endpoint, false
}

func templateFor(path string) string {
	var b strings.Builder
	for _, seg := range splitPath(path) {
		b.WriteByte('/')
		name, isParam := pathParam(seg)
		switch {
		case !isParam:
			b.WriteString(seg)
		case name == "id":
			b.WriteString("{{objectId}}")
		default:
			b.WriteString("{{" + sanitizeName(name) + "}}")
		}
	}
	if strings.HasSuffix(path, "/") {
		b.WriteByte('/')
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

func minVersionOf(op *openapi3.Operation) string {
	raw, ok := op.Extensions[MinVersionExtension]
	if !ok || raw == nil {
		return ""
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprint(raw)
}

func queryTypes(op *openapi3.Operation, item *openapi3.PathItem) map[string]string {
	types := map[string]string{}
	for _, refs := range []openapi3.Parameters{item.Parameters, op.Parameters} {
		for _, ref := range refs {
			if ref == nil || ref.Value == nil || ref.Value.In != openapi3.ParameterInQuery {
				continue
			}
			var schema *openapi3.Schema
			if ref.Value.Schema != nil {
				schema = ref.Value.Schema.Value
			}
			types[ref.Value.Name] = GetSchemaType(schema)
		}
	}
	return types
}
