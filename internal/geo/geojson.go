// Package geo holds the marker collection document persisted by the service.
package geo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const featuresKey = "features"

// ErrNoFeatures is returned when a document has no "features" array.
var ErrNoFeatures = errors.New(`document has no "features" array`)

// FeatureCollection is the top-level document holding all markers.
// Markers are opaque JSON values. Any other top-level members (usually
// "type": "FeatureCollection") are kept verbatim and in their original order.
type FeatureCollection struct {
	Features []json.RawMessage

	members map[string]json.RawMessage
	order   []string
}

// NewFeatureCollection returns an empty GeoJSON feature collection.
func NewFeatureCollection() FeatureCollection {
	return FeatureCollection{
		Features: []json.RawMessage{},
		members:  map[string]json.RawMessage{"type": json.RawMessage(`"FeatureCollection"`)},
		order:    []string{"type", featuresKey},
	}
}

// Append adds a marker to the end of the collection.
func (fc *FeatureCollection) Append(marker json.RawMessage) {
	fc.Features = append(fc.Features, marker)
}

// Len returns the number of markers.
func (fc FeatureCollection) Len() int {
	return len(fc.Features)
}

// Member returns a raw top-level member other than "features".
func (fc FeatureCollection) Member(key string) (json.RawMessage, bool) {
	v, ok := fc.members[key]
	return v, ok
}

// MarshalJSON writes the document members in their original order.
// Marker text is copied as is; callers that must keep HTML characters
// unescaped should use Encode.
func (fc FeatureCollection) MarshalJSON() ([]byte, error) {
	order := fc.order
	if !contains(order, featuresKey) {
		order = append(order[:len(order):len(order)], featuresKey)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := encode(key, "")
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')

		if key != featuresKey {
			buf.Write(fc.members[key])
			continue
		}

		buf.WriteByte('[')
		for j, f := range fc.Features {
			if j > 0 {
				buf.WriteByte(',')
			}
			if len(f) == 0 {
				buf.WriteString("null")
				continue
			}
			buf.Write(f)
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Encode renders the document without escaping '<', '>' and '&'.
// A non-empty indent pretty-prints it. No trailing newline is added.
func Encode(fc FeatureCollection, indent string) ([]byte, error) {
	return encode(fc, indent)
}

func encode(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON parses a document. The top level must be an object with a
// "features" array.
func (fc *FeatureCollection) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("document must be a JSON object, got %v", tok)
	}

	members := make(map[string]json.RawMessage)
	order := make([]string, 0, 2)
	var features []json.RawMessage

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}

		if !contains(order, key) {
			order = append(order, key)
		}

		if key == featuresKey {
			features = nil
			if err := json.Unmarshal(raw, &features); err != nil {
				return fmt.Errorf("decode features: %w", err)
			}
			for i, f := range features {
				var buf bytes.Buffer
				if err := json.Compact(&buf, f); err != nil {
					return fmt.Errorf("decode feature %d: %w", i, err)
				}
				features[i] = buf.Bytes()
			}
			continue
		}
		members[key] = raw
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after document")
	}

	// a missing member and an explicit null both leave features nil
	if features == nil {
		return ErrNoFeatures
	}

	fc.Features = features
	fc.members = members
	fc.order = order
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
