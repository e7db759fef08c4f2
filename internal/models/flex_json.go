package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// playerFieldMap caches JSON tag -> struct field index mappings
var (
	playerFieldMap     map[string]int
	playerFieldMapOnce sync.Once
)

func getPlayerFieldMap() map[string]int {
	playerFieldMapOnce.Do(func() {
		t := reflect.TypeOf(Player{})
		playerFieldMap = make(map[string]int, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			tag := t.Field(i).Tag.Get("json")
			if tag == "" || tag == "-" {
				continue
			}
			name := strings.Split(tag, ",")[0]
			playerFieldMap[name] = i
		}
	})
	return playerFieldMap
}

// UnmarshalJSON accepts both native JSON types and string-encoded values.
// Rankings and percentages scraped from tennis sites or read from CSV
// exports arrive as quoted strings ("62.5", "12"); they are coerced to the
// field's type. Empty strings and "-" leave the field unset.
func (p *Player) UnmarshalJSON(data []byte) error {
	// Alias prevents infinite recursion
	type Alias Player
	a := (*Alias)(p)

	// Fast path: try standard unmarshal (works when all types match natively)
	if err := json.Unmarshal(data, a); err == nil {
		return nil
	}

	// Slow path: field-by-field with string-to-native coercion
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("flex unmarshal: %w", err)
	}

	fieldMap := getPlayerFieldMap()
	v := reflect.ValueOf(a).Elem()

	for key, rawVal := range raw {
		idx, ok := fieldMap[key]
		if !ok {
			continue
		}

		fv := v.Field(idx)
		if !fv.CanSet() {
			continue
		}

		ptr := reflect.New(fv.Type())
		if err := json.Unmarshal(rawVal, ptr.Interface()); err == nil {
			fv.Set(ptr.Elem())
			continue
		}

		// Value is a JSON string but target is numeric - coerce
		if len(rawVal) > 1 && rawVal[0] == '"' {
			var s string
			if err := json.Unmarshal(rawVal, &s); err != nil {
				continue
			}
			s = strings.TrimSuffix(strings.TrimSpace(s), "%")
			if s == "" || s == "-" {
				continue
			}
			coerceStringToField(fv, s)
		}
	}

	return nil
}

// coerceStringToField converts a string value to the field's native type,
// allocating pointer targets as needed. It reports whether a value was set.
func coerceStringToField(fv reflect.Value, s string) bool {
	if fv.Kind() == reflect.Pointer {
		elem := reflect.New(fv.Type().Elem())
		if !coerceStringToField(elem.Elem(), s) {
			return false
		}
		fv.Set(elem)
		return true
	}

	switch fv.Kind() {
	case reflect.Float32, reflect.Float64:
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			fv.SetFloat(n)
			return true
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// ParseFloat handles "12.0" -> truncate to int
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			fv.SetInt(int64(n))
			return true
		}
	case reflect.String:
		fv.SetString(s)
		return true
	}
	return false
}
