package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PodcastEnclosure represents the media file attached to an episode, taken from
// the <enclosure url="..." length="..." type="..."/> element of an RSS item.
// Every field is optional, nil means the attribute was not present.
type PodcastEnclosure struct {
	// URL - where the audio artifact lives
	URL *string
	// Length - size of the audio in bytes e.g 11584000
	Length *int64
	// Type - what mime type the audio is e.g "audio/mpeg"
	Type *string
}

// NewPodcastEnclosure returns an enclosure with no attributes set
func NewPodcastEnclosure() PodcastEnclosure {
	return PodcastEnclosure{}
}

// PodcastEnclosureFromMap builds an enclosure from the raw attributes of an
// <enclosure> tag. Older feeds were stored with the url under "enclosure", so
// that key is used when "url" is missing.
// If neither key holds a string there is no enclosure and ok is false.
// length must already be an int64, other types are ignored.
func PodcastEnclosureFromMap(attrs map[string]interface{}) (enc *PodcastEnclosure, ok bool) {
	var url string
	if v, isString := attrs["url"].(string); isString {
		url = v
	} else if v, isString := attrs["enclosure"].(string); isString {
		url = v
	} else {
		return nil, false
	}

	enc = &PodcastEnclosure{URL: &url}

	if length, isInt := attrs["length"].(int64); isInt {
		enc.Length = &length
	}

	if mimeType, isString := attrs["type"].(string); isString {
		enc.Type = &mimeType
	}

	return enc, true
}

// Map returns the attributes that are set, always keyed by "url", "length" and "type"
func (e PodcastEnclosure) Map() map[string]interface{} {
	m := make(map[string]interface{})
	if e.URL != nil {
		m["url"] = *e.URL
	}
	if e.Length != nil {
		m["length"] = *e.Length
	}
	if e.Type != nil {
		m["type"] = *e.Type
	}
	return m
}

// Equal reports whether both enclosures carry the same attributes
func (e PodcastEnclosure) Equal(other PodcastEnclosure) bool {
	return equalString(e.URL, other.URL) &&
		equalInt64(e.Length, other.Length) &&
		equalString(e.Type, other.Type)
}

// WithURL returns a copy of the enclosure with the url set
func (e PodcastEnclosure) WithURL(url string) PodcastEnclosure {
	e.URL = &url
	return e
}

// WithLength returns a copy of the enclosure with the length set
func (e PodcastEnclosure) WithLength(length int64) PodcastEnclosure {
	e.Length = &length
	return e
}

// WithType returns a copy of the enclosure with the mime type set
func (e PodcastEnclosure) WithType(mimeType string) PodcastEnclosure {
	e.Type = &mimeType
	return e
}

func (e PodcastEnclosure) String() string {
	url, mimeType, length := "-", "-", "-"
	if e.URL != nil {
		url = *e.URL
	}
	if e.Type != nil {
		mimeType = *e.Type
	}
	if e.Length != nil {
		length = fmt.Sprintf("%d", *e.Length)
	}
	return fmt.Sprintf("enclosure(url=%s length=%s type=%s)", url, length, mimeType)
}

// MarshalJSON writes the same shape as Map
func (e PodcastEnclosure) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Map())
}

// UnmarshalJSON reads an attribute object, a missing url is an error here
// because a stored enclosure always had one. null leaves e untouched.
func (e *PodcastEnclosure) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	attrs, err := AttributesFromJSON(data)
	if err != nil {
		return err
	}
	enc, ok := PodcastEnclosureFromMap(attrs)
	if !ok {
		return fmt.Errorf("enclosure has no url: %s", data)
	}
	*e = *enc
	return nil
}

// Value stores the enclosure as jsonb, as a string since pq would send
// []byte as bytea
func (e PodcastEnclosure) Value() (driver.Value, error) {
	data, err := e.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan reads a jsonb enclosure column
func (e *PodcastEnclosure) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return e.UnmarshalJSON(v)
	case string:
		return e.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("cannot scan %T into PodcastEnclosure", src)
	}
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalInt64(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
