package core

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// FlexibleUnmarshal decodes JSON into target, converting numbers and booleans
// to strings wherever the target field is a string. Remote APIs described only
// by URL templates often disagree with callers about id types ("1" vs 1).
//
// target must be a pointer to a struct or a pointer to a slice.
func FlexibleUnmarshal(data []byte, target any) error {
	targetValue := reflect.ValueOf(target)
	if targetValue.Kind() != reflect.Ptr || targetValue.IsNil() {
		return fmt.Errorf("target must be a non-nil pointer")
	}
	targetType := targetValue.Elem().Type()
	switch targetType.Kind() {
	case reflect.Struct, reflect.Slice:
	default:
		return fmt.Errorf("target must point to a struct or a slice, got %s", targetType.Kind())
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	converted, err := json.Marshal(coerceValue(raw, targetType))
	if err != nil {
		return err
	}
	return json.Unmarshal(converted, target)
}

// coerceValue walks value alongside targetType and stringifies scalars
// that land in string-typed slots.
func coerceValue(value any, targetType reflect.Type) any {
	if value == nil {
		return nil
	}
	for targetType.Kind() == reflect.Ptr {
		targetType = targetType.Elem()
	}
	switch targetType.Kind() {
	case reflect.String:
		return scalarToString(value)
	case reflect.Slice, reflect.Array:
		arr, ok := value.([]any)
		if !ok {
			return value
		}
		out := make([]any, len(arr))
		for i, item := range arr {
			out[i] = coerceValue(item, targetType.Elem())
		}
		return out
	case reflect.Struct:
		m, ok := value.(map[string]any)
		if !ok {
			return value
		}
		out := make(map[string]any, len(m))
		for key, v := range m {
			if field, found := fieldByJSONName(targetType, key); found {
				out[key] = coerceValue(v, field.Type)
			} else {
				out[key] = v
			}
		}
		return out
	}
	return value
}

func scalarToString(value any) any {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case map[string]any, []any:
		// leave composite values for json to reject
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func fieldByJSONName(structType reflect.Type, name string) (reflect.StructField, bool) {
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		tag := field.Tag.Get("json")
		tagName, _, _ := strings.Cut(tag, ",")
		if tagName == "" {
			tagName = field.Name
		}
		if tagName == name || (tag == "" && strings.EqualFold(field.Name, name)) {
			return field, true
		}
	}
	return reflect.StructField{}, false
}
