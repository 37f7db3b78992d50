package httputil

import (
	"bytes"

	"github.com/goccy/go-json"
)

// OptionalString tracks presence and value for JSON PATCH semantics (RFC 7396):
//   - Present=false: field absent (don't change)
//   - Present=true, Value=nil: field is JSON null
//   - Present=true, Value=&s: field has a value, possibly ""
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON implements json.Unmarshaler. It is only called for fields
// present in the input.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// Ptr returns the value when present and non-null.
func (o OptionalString) Ptr() *string {
	if !o.Present {
		return nil
	}
	return o.Value
}
