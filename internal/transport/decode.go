package transport

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Paged is the list-endpoint response shape.
type Paged[T any] struct {
	Data       []T `json:"data" mapstructure:"data"`
	Total      int `json:"total" mapstructure:"total"`
	Page       int `json:"page" mapstructure:"page"`
	Limit      int `json:"limit" mapstructure:"limit"`
	TotalPages int `json:"totalPages" mapstructure:"totalPages"`
}

// Pagination carries the standard list query parameters.
type Pagination struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Decode maps a raw JSON response onto out. Single-resource endpoints may
// return either the resource directly or an envelope {data, message,
// status}; the envelope is unwrapped unless out itself declares a data
// field (the paginated shape).
func Decode(raw []byte, out any) error {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}

	if m, ok := generic.(map[string]any); ok && !hasDataField(out) {
		if data, present := m["data"]; present {
			generic = data
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(generic)
}

// hasDataField reports whether out's struct type maps a "data" key itself,
// in which case the envelope must not be unwrapped.
func hasDataField(out any) bool {
	t := reflect.TypeOf(out)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("mapstructure")
		if tag == "data" {
			return true
		}
	}
	return false
}
