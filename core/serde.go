package core

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/bndr/gotabulate"
	"github.com/jmespath/go-jmespath"
)

//  ######################################################
//              FUNCTION PARAMS
//  ######################################################

// Params represents a generic set of key-value parameters,
// used for constructing query strings or request bodies.
type Params map[string]any

// Copy returns a shallow copy of the Params. A nil receiver yields an empty map.
func (pr Params) Copy() Params {
	out := make(Params, len(pr))
	for k, v := range pr {
		out[k] = v
	}
	return out
}

// ToQuery serializes the Params into a URL-encoded query string.
// Slices and arrays are joined with commas.
func (pr Params) ToQuery() string {
	values := url.Values{}
	for k, v := range pr {
		values.Set(k, formatQueryValue(v))
	}
	return values.Encode()
}

// Update merges another Params map into the original Params.
// Existing keys are replaced only when override is true.
func (pr Params) Update(other Params, override bool) {
	for key, value := range other {
		if _, exists := pr[key]; exists && !override {
			continue
		}
		pr[key] = value
	}
}

// Without removes the specified keys from the Params map.
func (pr Params) Without(keys ...string) {
	for _, key := range keys {
		delete(pr, key)
	}
}

// pop removes key and returns its value.
func (pr Params) pop(key string) (any, bool) {
	v, ok := pr[key]
	if ok {
		delete(pr, key)
	}
	return v, ok
}

// Keys returns the sorted keys of the Params.
func (pr Params) Keys() []string {
	keys := make([]string, 0, len(pr))
	for k := range pr {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatQueryValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts[i] = fmt.Sprint(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}

//  ######################################################
//              RETURN TYPES
//  ######################################################

// Renderable is implemented by values that can render themselves
// for CLI display or logging.
type Renderable interface {
	PrettyTable() string
	PrettyJson(indent ...string) string
}

// Response is the result of a successful call. It is never mutated after
// construction and belongs to the caller once returned.
type Response struct {
	// Headers holds the response headers parsed from the raw header block.
	Headers map[string]string
	// Body is the decoded payload: map[string]any, []any, a scalar, or nil for empty bodies.
	Body       any
	StatusCode int
	// Raw is the transport response. Its body has already been consumed.
	Raw *http.Response
}

// Record returns the body as an object, or nil if the body is not an object.
func (r *Response) Record() map[string]any {
	m, _ := r.Body.(map[string]any)
	return m
}

// List returns the body as an array, or nil if the body is not an array.
func (r *Response) List() []any {
	l, _ := r.Body.([]any)
	return l
}

func (r *Response) Empty() bool {
	switch b := r.Body.(type) {
	case nil:
		return true
	case map[string]any:
		return len(b) == 0
	case []any:
		return len(b) == 0
	}
	return false
}

// Fill decodes the body into container. Numbers and booleans are accepted
// for string fields. The container must be a pointer to a struct (object
// bodies) or a pointer to a slice of structs (array bodies).
func (r *Response) Fill(container any) error {
	data, err := json.Marshal(r.Body)
	if err != nil {
		return err
	}
	return FlexibleUnmarshal(data, container)
}

// Search evaluates a JMESPath expression against the body.
func (r *Response) Search(expression string) (any, error) {
	jp, err := jmespath.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid JMESPath expression %q: %w", expression, err)
	}
	return jp.Search(normalizeForSearch(r.Body))
}

// PrettyTable renders the body as a grid: one row per attribute for objects,
// one block per element for arrays.
func (r *Response) PrettyTable() string {
	switch body := r.Body.(type) {
	case nil:
		return "<>"
	case map[string]any:
		return renderRecordTable(body)
	case []any:
		if len(body) == 0 {
			return "[]"
		}
		var out strings.Builder
		out.WriteString("[\n")
		for i, item := range body {
			if m, ok := item.(map[string]any); ok {
				out.WriteString(renderRecordTable(m))
			} else {
				out.WriteString(fmt.Sprintf("%v", item))
			}
			if i < len(body)-1 {
				out.WriteString("\n\n")
			}
		}
		out.WriteString("\n]")
		return out.String()
	default:
		return fmt.Sprintf("%v", body)
	}
}

// PrettyJson renders the body as JSON, optionally indented.
func (r *Response) PrettyJson(indent ...string) string {
	var b []byte
	var err error
	if len(indent) > 0 {
		b, err = json.MarshalIndent(r.Body, "", indent[0])
	} else {
		b, err = json.Marshal(r.Body)
	}
	if err != nil {
		return fmt.Sprintf("failed to marshal JSON: %v", err)
	}
	return string(b)
}

func (r *Response) String() string {
	return r.PrettyTable()
}

func renderRecordTable(record map[string]any) string {
	if len(record) == 0 {
		return "<>"
	}
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][]any, 0, len(keys))
	for _, key := range keys {
		val := record[key]
		if val == nil {
			continue
		}
		switch val.(type) {
		case map[string]any, []any:
			compact, _ := json.Marshal(val)
			rows = append(rows, []any{key, string(compact)})
		default:
			rows = append(rows, []any{key, fmt.Sprintf("%v", val)})
		}
	}
	if len(rows) == 0 {
		return "<>"
	}
	t := gotabulate.Create(rows)
	t.SetHeaders([]string{"attr", "value"})
	t.SetAlign("left")
	t.SetWrapStrings(true)
	t.SetMaxCellSize(85)
	return t.Render("grid")
}

// normalizeForSearch converts msgpack-decoded maps (map[string]interface{}
// nested inside []interface{} with integer types) into the shapes jmespath expects.
func normalizeForSearch(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeForSearch(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeForSearch(val)
		}
		return out
	case int:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	}
	return v
}
