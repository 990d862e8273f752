// Package jsonpath projects arbitrary decoded JSON into widget fields.
//
// Values are the shapes produced by encoding/json when decoding into `any`:
// map[string]any, []any, string, float64, bool and nil.
package jsonpath

import (
	"sort"
	"strconv"
	"strings"
)

// Separator joins nested keys in flattened field names and dotted paths.
const Separator = "."

// Flatten descends into nested objects and joins keys with ".". Arrays and
// primitives are leaves; array elements are never descended into.
func Flatten(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	flattenInto(out, obj, "")
	return out
}

func flattenInto(out, obj map[string]any, prefix string) {
	for k, v := range obj {
		key := k
		if prefix != "" {
			key = prefix + Separator + k
		}
		if child, ok := v.(map[string]any); ok {
			flattenInto(out, child, key)
			continue
		}
		out[key] = v
	}
}

// Fields returns the sorted flattened field names of v, or nil when v is not
// an object.
func Fields(v any) []string {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	flat := Flatten(obj)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolve returns the value addressed by a dotted path.
//
// Keys may contain literal dots ("52. change"), so a plain split is
// ambiguous. A full-path literal key wins outright. Otherwise the path is
// walked left to right: at each cursor the longest run of remaining segments
// is tried first as a literal key, shortening one segment at a time, and the
// cursor advances past whatever was consumed. Arrays accept a decimal index
// segment. Worst case is O(n²) key lookups for n segments.
func Resolve(v any, path string) (any, bool) {
	if v == nil || path == "" {
		return nil, false
	}
	if obj, ok := v.(map[string]any); ok {
		if direct, ok := obj[path]; ok {
			return direct, true
		}
	}

	segments := strings.Split(path, Separator)
	cur := v
	for i := 0; i < len(segments); {
		next, consumed, ok := step(cur, segments[i:])
		if !ok {
			return nil, false
		}
		cur = next
		i += consumed
	}
	return cur, true
}

// step consumes the longest prefix of rest that addresses a child of cur.
func step(cur any, rest []string) (any, int, bool) {
	switch node := cur.(type) {
	case map[string]any:
		for n := len(rest); n > 0; n-- {
			key := strings.Join(rest[:n], Separator)
			if child, ok := node[key]; ok {
				return child, n, true
			}
		}
	case []any:
		idx, err := strconv.Atoi(rest[0])
		if err != nil || idx < 0 || idx >= len(node) {
			return nil, 0, false
		}
		return node[idx], 1, true
	}
	return nil, 0, false
}
