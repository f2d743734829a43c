// Package task defines the typed result envelope produced by one unit of
// agent work, together with the self-reflection record used by the
// critique pass.
package task

import (
	"encoding/json"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Format tags which representation of a model response an Output carries
// beyond the raw text.
type Format string

const (
	FormatRaw        Format = "RAW"
	FormatJSON       Format = "JSON"
	FormatStructured Format = "STRUCTURED"
)

// Output is the result of one agent task. Raw is always populated;
// JSONDict only when Format is FormatJSON, Structured only when Format is
// FormatStructured. It is constructed once after a model call completes
// and read-only afterwards.
type Output struct {
	Description string         `json:"description"`
	Summary     string         `json:"summary,omitempty"`
	Raw         string         `json:"raw"`
	Structured  any            `json:"structured,omitempty"`
	JSONDict    map[string]any `json:"json_dict,omitempty"`
	Agent       string         `json:"agent"`
	Format      Format         `json:"output_format"`
}

// JSON returns the serialized key/value payload. The second return is
// false unless the output is tagged FormatJSON and carries a payload.
func (o *Output) JSON() (string, bool) {
	if o.Format != FormatJSON || len(o.JSONDict) == 0 {
		return "", false
	}

	encoded, err := json.Marshal(o.JSONDict)
	if err != nil {
		return "", false
	}

	return string(encoded), true
}

// Map merges the key/value payload with the structured payload's fields.
// Structured fields are merged second and win on key collisions.
func (o *Output) Map() map[string]any {
	merged := make(map[string]any, len(o.JSONDict))
	for k, v := range o.JSONDict {
		merged[k] = v
	}

	if o.Structured != nil {
		var fields map[string]any
		if err := mapstructure.Decode(o.Structured, &fields); err == nil {
			for k, v := range fields {
				merged[k] = v
			}
		}
	}

	return merged
}

// String prefers the structured payload, then the serialized key/value
// payload, then the raw text.
func (o *Output) String() string {
	if o.Structured != nil {
		return fmt.Sprintf("%+v", o.Structured)
	}

	if len(o.JSONDict) > 0 {
		if encoded, err := json.Marshal(o.JSONDict); err == nil {
			return string(encoded)
		}
	}

	return o.Raw
}
