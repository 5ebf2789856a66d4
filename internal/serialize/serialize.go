// Package serialize converts typed resource properties into the plain maps a
// CloudFormation template is made of.
package serialize

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Properties turns a spec struct into a property map keyed by json tag.
// Fields tagged omitempty are dropped when empty. Intrinsics and other
// json.Marshaler values are embedded in their JSON form.
func Properties(v any) (map[string]any, error) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, nil
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil, nil
	}

	result := make(map[string]any)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		fieldVal := val.Field(i)

		if !field.IsExported() {
			continue
		}

		name, omitEmpty := fieldName(field)
		if name == "-" {
			continue
		}
		if omitEmpty && isEmpty(fieldVal) {
			continue
		}

		serialized, err := Value(fieldVal.Interface())
		if err != nil {
			return nil, err
		}
		if serialized != nil {
			result[name] = serialized
		}
	}

	return result, nil
}

// Value converts any value to its JSON-compatible form.
func Value(v any) (any, error) {
	return serializeValue(reflect.ValueOf(v))
}

// fieldName returns the property name for a struct field and whether the
// field is tagged omitempty.
func fieldName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name, false
	}

	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	return name, strings.Contains(opts, "omitempty")
}

// isEmpty treats empty slices and maps like nil ones.
func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	}
	return v.IsZero()
}

func serializeValue(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}

	if v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, nil
		}
		if m, ok := v.Interface().(json.Marshaler); ok {
			return fromMarshaler(m)
		}
		return serializeValue(v.Elem())
	}

	if v.CanInterface() {
		if m, ok := v.Interface().(json.Marshaler); ok {
			return fromMarshaler(m)
		}
	}

	switch v.Kind() {
	case reflect.Struct:
		return Properties(v.Interface())

	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil, nil
		}
		result := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			elem, err := serializeValue(v.Index(i))
			if err != nil {
				return nil, err
			}
			result[i] = elem
		}
		return result, nil

	case reflect.Map:
		if v.IsNil() {
			return nil, nil
		}
		result := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			val, err := serializeValue(iter.Value())
			if err != nil {
				return nil, err
			}
			result[iter.Key().String()] = val
		}
		return result, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(v.Convert(reflect.TypeOf(int64(0))).Int()), nil

	default:
		// Strings, bools and floats survive a round trip unchanged, and any
		// named scalar type gets its JSON form.
		return roundTrip(v.Interface())
	}
}

func fromMarshaler(m json.Marshaler) (any, error) {
	return roundTrip(m)
}

func roundTrip(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
