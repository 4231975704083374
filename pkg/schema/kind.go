/*
Copyright 2024 The Kubeflow authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Kind is the declared type of a schema node.
type Kind string

// Recognized kinds.
const (
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindString  Kind = "string"
	KindInteger Kind = "integer"
)

// ParseKind returns the Kind named by s.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindObject, KindArray, KindString, KindInteger:
		return k, true
	}
	return "", false
}

// kindOf names the runtime kind of a decoded document value.
func kindOf(v interface{}) string {
	if v == nil {
		return "null"
	}
	if _, ok := toInt64(v); ok {
		return string(KindInteger)
	}
	switch v.(type) {
	case string:
		return string(KindString)
	case bool:
		return "boolean"
	case float32, float64, json.Number:
		return "number"
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map:
		return string(KindObject)
	case reflect.Slice, reflect.Array:
		return string(KindArray)
	}
	return fmt.Sprintf("%T", v)
}

// toInt64 accepts any integral number, including integral floats produced by
// JSON decoders, and returns it as int64.
func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return uintToInt64(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return uintToInt64(n)
	case float32:
		return floatToInt64(float64(n))
	case float64:
		return floatToInt64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return floatToInt64(f)
		}
	}
	return 0, false
}

func uintToInt64(n uint64) (int64, bool) {
	if n > math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}

func floatToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// asObject returns v as a string-keyed map.
func asObject(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = val
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]interface{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// asArray returns v as a slice of values.
func asArray(v interface{}) ([]interface{}, bool) {
	if s, ok := v.([]interface{}); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	// Byte slices are opaque payloads, not arrays.
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// normalize converts a decoded literal into the JSON-compatible value space
// used by instances: map[string]interface{}, []interface{}, string, int64,
// float64, bool and nil.
func normalize(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	if i, ok := toInt64(v); ok {
		return i, nil
	}
	switch t := v.(type) {
	case string, bool:
		return t, nil
	case float32:
		return float64(t), nil
	case float64:
		return t, nil
	}
	if m, ok := asObject(v); ok {
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			n, err := normalize(val)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	}
	if s, ok := asArray(v); ok {
		out := make([]interface{}, len(s))
		for i, val := range s {
			n, err := normalize(val)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported literal of type %T", v)
}

// coerceDefault checks that a normalized default literal fits kind. Integer
// defaults may be written as numeric strings.
func coerceDefault(v interface{}, kind Kind) (interface{}, bool) {
	switch kind {
	case KindString:
		s, ok := v.(string)
		return s, ok
	case KindInteger:
		if s, ok := v.(string); ok {
			i, err := strconv.ParseInt(s, 10, 64)
			return i, err == nil
		}
		i, ok := v.(int64)
		return i, ok
	case KindObject:
		m, ok := v.(map[string]interface{})
		return m, ok
	case KindArray:
		s, ok := v.([]interface{})
		return s, ok
	}
	return nil, false
}
