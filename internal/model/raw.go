package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Raw is a field value exactly as a client submitted it. JSON strings and
// numbers are both accepted. A JSON null or a missing key leaves Set false.
type Raw struct {
	Value string
	Set   bool
}

// NewRaw returns a Raw holding v.
func NewRaw(v string) Raw {
	return Raw{Value: v, Set: true}
}

// Present reports whether the field carries a non-blank value.
func (r Raw) Present() bool {
	return r.Set && strings.TrimSpace(r.Value) != ""
}

// Blank reports whether the field was submitted with an empty value.
func (r Raw) Blank() bool {
	return r.Set && !r.Present()
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Raw) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Raw{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = NewRaw(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*r = NewRaw(n.String())
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r Raw) MarshalJSON() ([]byte, error) {
	if !r.Set {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}
