package diagram

import (
	"encoding/json"
	"strings"
)

// Style is an ordered set of draw.io style properties. Keys keep the order in
// which they were first set so that String is deterministic.
//
// Style values are immutable; With returns a modified copy.
type Style struct {
	entries []styleEntry
}

type styleEntry struct {
	key, value string
}

// NewStyle builds a style from alternating key/value pairs. A trailing key
// without a value is ignored.
func NewStyle(kv ...string) Style {
	var s Style
	for i := 0; i+1 < len(kv); i += 2 {
		s = s.With(kv[i], kv[i+1])
	}
	return s
}

// With returns a copy of s with key set to value. An existing key keeps its
// position.
func (s Style) With(key, value string) Style {
	entries := make([]styleEntry, len(s.entries), len(s.entries)+1)
	copy(entries, s.entries)
	for i := range entries {
		if entries[i].key == key {
			entries[i].value = value
			return Style{entries: entries}
		}
	}
	return Style{entries: append(entries, styleEntry{key, value})}
}

// Merge returns s with every property of o applied on top.
func (s Style) Merge(o Style) Style {
	for _, e := range o.entries {
		s = s.With(e.key, e.value)
	}
	return s
}

// Get returns the value for key.
func (s Style) Get(key string) (string, bool) {
	for _, e := range s.entries {
		if e.key == key {
			return e.value, true
		}
	}
	return "", false
}

// Len returns the number of properties.
func (s Style) Len() int { return len(s.entries) }

// String renders the style as "key=value;key=value;".
func (s Style) String() string {
	var b strings.Builder
	for _, e := range s.entries {
		b.WriteString(e.key)
		b.WriteByte('=')
		b.WriteString(e.value)
		b.WriteByte(';')
	}
	return b.String()
}

// ParseStyle parses the "key=value;" form produced by String. Entries
// without '=' are dropped.
func ParseStyle(raw string) Style {
	var s Style
	for _, part := range strings.Split(raw, ";") {
		k, v, ok := strings.Cut(part, "=")
		if !ok || k == "" {
			continue
		}
		s = s.With(k, v)
	}
	return s
}

func (s Style) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Style) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseStyle(raw)
	return nil
}
