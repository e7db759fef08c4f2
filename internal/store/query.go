package store

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// OrKey holds a list of filter groups; a record matches if any group does.
const OrKey = "$or"

// Filter maps field names to expected values. A plain value is an exact
// match; Contains and In select the other operators.
type Filter map[string]any

// Contains matches a case-insensitive substring ({"$contains": s}).
type Contains string

// In matches membership in a list ({"$in": [...]}).
type In []any

// ListOptions controls List. Sort is "field" (ascending) or "-field"
// (descending); records with a null or missing sort field always come last.
// Limit applies after filtering and sorting; zero means no limit.
type ListOptions struct {
	Filters Filter
	Sort    string
	Limit   int
}

// SortOnly is the shorthand form of ListOptions.
func SortOnly(sort string) ListOptions {
	return ListOptions{Sort: sort}
}

// ByID selects a single record.
func ByID(id string) ListOptions {
	return ListOptions{Filters: Filter{"id": id}, Limit: 1}
}

// ParseFilter converts a decoded JSON object using the $contains, $in and
// $or operators into a Filter.
func ParseFilter(raw map[string]any) (Filter, error) {
	f := make(Filter, len(raw))
	for key, val := range raw {
		if key == OrKey {
			groups, ok := val.([]any)
			if !ok {
				return nil, fmt.Errorf("%s must be an array of filter objects", OrKey)
			}
			parsed := make([]Filter, 0, len(groups))
			for _, g := range groups {
				obj, ok := g.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("%s entries must be objects", OrKey)
				}
				sub, err := ParseFilter(obj)
				if err != nil {
					return nil, err
				}
				parsed = append(parsed, sub)
			}
			f[OrKey] = parsed
			continue
		}

		if obj, ok := val.(map[string]any); ok {
			switch {
			case obj["$contains"] != nil:
				s, ok := obj["$contains"].(string)
				if !ok {
					return nil, fmt.Errorf("$contains on %q must be a string", key)
				}
				f[key] = Contains(s)
			case obj["$in"] != nil:
				list, ok := obj["$in"].([]any)
				if !ok {
					return nil, fmt.Errorf("$in on %q must be an array", key)
				}
				f[key] = In(list)
			default:
				return nil, fmt.Errorf("unsupported operator on %q", key)
			}
			continue
		}
		f[key] = val
	}
	return f, nil
}

// ParseFilterJSON decodes a filter from its JSON text.
func ParseFilterJSON(s string) (Filter, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	return ParseFilter(raw)
}

// Match reports whether a record's fields satisfy the filter: AND across
// keys, OR across the groups of an $or key.
func (f Filter) Match(fields map[string]any) bool {
	for key, want := range f {
		if key == OrKey {
			groups, _ := want.([]Filter)
			if len(groups) == 0 {
				continue
			}
			matched := false
			for _, g := range groups {
				if g.Match(fields) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
			continue
		}

		got, present := fields[key]
		switch w := want.(type) {
		case Contains:
			if !present || got == nil {
				return false
			}
			if !strings.Contains(strings.ToLower(stringify(got)), strings.ToLower(string(w))) {
				return false
			}
		case In:
			found := false
			for _, candidate := range w {
				if equalValues(got, candidate) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			if !equalValues(got, want) {
				return false
			}
		}
	}
	return true
}

// normalize reduces a value to float64, string, bool or nil where possible
// so that e.g. int 3, float64 3 and a typed string compare as expected.
func normalize(v any) any {
	if v == nil {
		return nil
	}
	if n, ok := v.(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return v
}

func equalValues(a, b any) bool {
	na, nb := normalize(a), normalize(b)
	if na == nil || nb == nil {
		return na == nil && nb == nil
	}
	return reflect.DeepEqual(na, nb)
}

func stringify(v any) string {
	switch n := normalize(v).(type) {
	case string:
		return n
	case nil:
		return ""
	default:
		return fmt.Sprint(n)
	}
}

// compareValues orders two non-nil values: numbers numerically, strings
// lexically, false before true. Mixed types fall back to their text form.
func compareValues(a, b any) int {
	na, nb := normalize(a), normalize(b)
	switch x := na.(type) {
	case float64:
		if y, ok := nb.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case string:
		if y, ok := nb.(string); ok {
			return strings.Compare(x, y)
		}
	case bool:
		if y, ok := nb.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	}
	return strings.Compare(stringify(na), stringify(nb))
}

// parseSort splits "-field" into ("field", true).
func parseSort(s string) (field string, desc bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		return s[1:], true
	}
	return strings.TrimPrefix(s, "+"), false
}

type row[T any] struct {
	item   T
	fields map[string]any
}

// apply runs filter, sort and limit over records in memory. Both backends
// use it, which keeps their results identical.
func apply[T any](items []T, opts ListOptions) ([]T, error) {
	rows := make([]row[T], 0, len(items))
	for _, it := range items {
		fields, err := toFields(it)
		if err != nil {
			return nil, err
		}
		if opts.Filters == nil || opts.Filters.Match(fields) {
			rows = append(rows, row[T]{item: it, fields: fields})
		}
	}

	if field, desc := parseSort(opts.Sort); field != "" {
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := normalize(rows[i].fields[field]), normalize(rows[j].fields[field])
			switch {
			case a == nil && b == nil:
				return false
			case a == nil:
				return false
			case b == nil:
				return true
			}
			c := compareValues(a, b)
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[:opts.Limit]
	}

	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = r.item
	}
	return out, nil
}

// toFields flattens a record to its JSON field map.
func toFields(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode record fields: %w", err)
	}
	return fields, nil
}

// fromFields rebuilds a record from a field map.
func fromFields[T any](fields map[string]any) (T, error) {
	var out T
	data, err := json.Marshal(fields)
	if err != nil {
		return out, fmt.Errorf("encode fields: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode record: %w", err)
	}
	return out, nil
}

// mergePatch overlays patch onto item's fields. The id is never changed.
func mergePatch[T any](item T, patch map[string]any) (T, error) {
	fields, err := toFields(item)
	if err != nil {
		return item, err
	}
	id := fields["id"]
	for k, v := range patch {
		fields[k] = v
	}
	if id != nil {
		fields["id"] = id
	}
	return fromFields[T](fields)
}
