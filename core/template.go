package core

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// validateTemplate rejects templates with braces that do not form a {{name}} placeholder.
func validateTemplate(tmpl string) error {
	stripped := placeholderPattern.ReplaceAllString(tmpl, "")
	if strings.Contains(stripped, "{{") || strings.Contains(stripped, "}}") {
		return fmt.Errorf("malformed placeholder in template %q", tmpl)
	}
	return nil
}

// placeholderNames returns the distinct placeholder names of tmpl in order of appearance.
func placeholderNames(tmpl string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(tmpl, -1)
	seen := make(map[string]struct{}, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	return names
}

// encodeComponent percent-encodes everything except RFC 3986 unreserved characters.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// TemplateResolver renders the path of an operation from the schema table,
// falling back to {prefix}/{endpoint}[/{objectId}].
type TemplateResolver struct {
	schemas    SchemaTable
	pathPrefix string
	strict     bool
}

func NewTemplateResolver(schemas SchemaTable, pathPrefix string, strict bool) *TemplateResolver {
	return &TemplateResolver{schemas: schemas, pathPrefix: pathPrefix, strict: strict}
}

// Resolve returns the path for key and the params left after template
// variables were consumed. state is not modified.
func (t *TemplateResolver) Resolve(key OperationKey, state *callState) (string, Params, error) {
	remaining := state.params.Copy()
	var path string

	if tmpl, ok := t.schemas.Lookup(key); ok {
		rendered, err := t.render(key, tmpl, state.objectID, remaining)
		if err != nil {
			return "", nil, err
		}
		path = rendered
	}
	if path == "" {
		path = t.fallbackPath(key.Endpoint, state.objectID)
	}
	if ext := strings.TrimPrefix(state.extension, "."); ext != "" {
		path = path + "." + ext
	}
	return path, remaining, nil
}

// render substitutes placeholders in tmpl. Referenced variables found in
// params are removed from it.
func (t *TemplateResolver) render(key OperationKey, tmpl string, objectID any, params Params) (string, error) {
	vars := map[string]string{
		TemplateVarEndpoint: encodeComponent(key.Endpoint),
	}
	if objectID != nil {
		vars[OptionObjectID] = encodeComponent(fmt.Sprint(objectID))
		vars[OptionObjectID2] = vars[OptionObjectID]
	}
	var missing []string
	for _, name := range placeholderNames(tmpl) {
		if _, implicit := vars[name]; implicit {
			params.pop(name)
			continue
		}
		value, ok := params.pop(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		if value == nil {
			vars[name] = ""
		} else {
			vars[name] = encodeComponent(fmt.Sprint(value))
		}
	}
	if len(missing) > 0 && t.strict {
		return "", &TemplateRenderError{Operation: key.Name(), Template: tmpl, Missing: missing}
	}
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(token string) string {
		return vars[token[2:len(token)-2]]
	}), nil
}

func (t *TemplateResolver) fallbackPath(endpoint string, objectID any) string {
	path := t.pathPrefix + "/" + strings.Trim(endpoint, "/")
	if objectID != nil {
		path += "/" + encodeComponent(fmt.Sprint(objectID))
	}
	return path
}
