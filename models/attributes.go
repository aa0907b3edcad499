package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// AttributesFromJSON decodes a JSON object into an attribute map.
// encoding/json would hand numbers back as float64, so whole numbers are
// turned into int64 here, anything else stays a json.Number.
// The object must be the only thing in data.
func AttributesFromJSON(data []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var attrs map[string]interface{}
	if err := dec.Decode(&attrs); err != nil {
		return nil, fmt.Errorf("decoding attributes: %v", err)
	}
	if attrs == nil {
		return nil, fmt.Errorf("decoding attributes: expected an object, got %s", data)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decoding attributes: unexpected data after the object")
	}

	for k, v := range attrs {
		if n, ok := v.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				attrs[k] = i
			}
		}
	}
	return attrs, nil
}
