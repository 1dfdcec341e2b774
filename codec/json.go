package codec

import (
	"encoding/json"
	"io"
)

// JSON is the standard-library JSON codec.
//
// Use it when reports must be byte-for-byte reproducible by tools built on
// encoding/json.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// MarshalIndent encodes the value to indented JSON.
func (JSON) MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(v, prefix, indent)
}

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// NewDecoder returns a streaming decoder reading from r.
func (JSON) NewDecoder(r io.Reader) Decoder { return json.NewDecoder(r) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }
