package util

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringArrayAsJSON is stored as a JSON array but used as a []string.
type StringArrayAsJSON []string

// NewStringArrayAsJSON trims the given strings and drops empty and
// duplicated values, keeping the original order.
func NewStringArrayAsJSON(values []string) StringArrayAsJSON {
	seen := make(map[string]struct{}, len(values))
	ret := make(StringArrayAsJSON, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}

		seen[v] = struct{}{}
		ret = append(ret, v)
	}

	return ret
}

func (a StringArrayAsJSON) Value() (driver.Value, error) {
	if a == nil {
		return driver.Value("[]"), nil
	}

	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}

	return driver.Value(string(b)), nil
}

func (a StringArrayAsJSON) Slice() []string {
	return []string(a)
}

func (a *StringArrayAsJSON) Scan(src interface{}) error {
	var raw []byte
	switch src := src.(type) {
	case nil:
		*a = StringArrayAsJSON{}
		return nil
	case []byte:
		raw = src
	case string:
		raw = []byte(src)
	default:
		return fmt.Errorf("expected []byte or string, got %T", src)
	}

	var tmp []string
	if err := json.Unmarshal(raw, &tmp); err != nil {
		return err
	}

	*a = StringArrayAsJSON(tmp)
	return nil
}
