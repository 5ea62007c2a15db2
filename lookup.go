package mbedtargets

import (
	"fmt"
	"strconv"
	"strings"
)

// attribute paths inside a raw database record
var (
	boardTypePath     = []string{"attributes", "board_type"}
	platformNamePath  = []string{"attributes", "name"}
	productCodePath   = []string{"attributes", "product_code"}
	mbedOSSupportPath = []string{"attributes", "features", "mbed_os_support"}
	mbedEnabledPath   = []string{"attributes", "features", "mbed_enabled"}
)

// lookupPath walks a raw record along path.
//
// A nil value with a nil error means the path is absent: a key is missing or
// an object on the way is JSON null. An error means something on the way is
// present but is not an object.
func lookupPath(record map[string]any, path []string) (any, error) {
	var current any = record

	for i, key := range path {
		if current == nil {
			return nil, nil
		}
		obj, ok := asObject(current)
		if !ok {
			return nil, malformed(path[:i], current)
		}
		current, ok = obj[key]
		if !ok {
			return nil, nil
		}
	}

	return current, nil
}

// asObject accepts both decoded JSON objects and nested RawRecord values.
func asObject(v any) (map[string]any, bool) {
	switch obj := v.(type) {
	case map[string]any:
		return obj, true
	case RawRecord:
		return obj, true
	default:
		return nil, false
	}
}

// stringAt returns the string at path, or "" when the path is absent.
func stringAt(record map[string]any, path []string) (string, error) {
	v, err := lookupPath(record, path)
	if err != nil || v == nil {
		return "", err
	}

	s, ok := v.(string)
	if !ok {
		return "", malformed(path, v)
	}
	return s, nil
}

// stringsAt returns a copy of the string list at path, or an empty list when
// the path is absent. The result is never nil.
func stringsAt(record map[string]any, path []string) ([]string, error) {
	v, err := lookupPath(record, path)
	if err != nil || v == nil {
		return []string{}, err
	}

	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out, nil
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return []string{}, malformed(append(path[:len(path):len(path)], strconv.Itoa(i)), item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return []string{}, malformed(path, v)
	}
}

func malformed(path []string, v any) error {
	where := strings.Join(path, ".")
	if where == "" {
		where = "<record>"
	}
	return fmt.Errorf("%w: %s has type %T", ErrMalformedRecord, where, v)
}
