package arch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Bool is a boolean that also accepts the quoted forms "true" and "false".
// Completion models often quote booleans even when asked not to.
type Bool bool

// UnmarshalJSON accepts true, false, null, or a string parseable by
// strconv.ParseBool. An empty string decodes as false.
func (b *Bool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = false
		return nil
	}

	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = Bool(v)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("boolean: unexpected value %s", data)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*b = false
		return nil
	}
	v, err := strconv.ParseBool(strings.ToLower(s))
	if err != nil {
		return fmt.Errorf("boolean: unexpected string %q", s)
	}
	*b = Bool(v)
	return nil
}

func (b Bool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(b))
}
