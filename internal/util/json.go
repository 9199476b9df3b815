package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrErrorPayload is returned by NormalizeRecordPayload when the extraction
// model reports its own failure as a JSON object with an "error" key instead
// of structured data. Callers treat it like any other per-candidate failure.
var ErrErrorPayload = errors.New("extraction payload reported an error")

// NormalizeRecordPayload reduces an extraction payload, which may be a JSON
// object or a list of objects, to the bytes of a single object. A list's
// first element is taken as the record. Payloads carrying an "error" key are
// rejected with ErrErrorPayload.
func NormalizeRecordPayload(raw []byte) ([]byte, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, errors.New("empty extraction payload")
	}
	raw = []byte(trimmed)

	if trimmed[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("failed to parse extraction payload list: %w", err)
		}
		if len(list) == 0 {
			return nil, errors.New("extraction payload list is empty")
		}
		raw = list[0]
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse extraction payload: %w", err)
	}

	if errField, ok := probe["error"]; ok {
		var msg string
		if json.Unmarshal(errField, &msg) == nil && msg != "" {
			return nil, fmt.Errorf("%w: %s", ErrErrorPayload, msg)
		}
		// Any non-null error value disqualifies the payload.
		if string(errField) != "null" && string(errField) != "false" {
			return nil, ErrErrorPayload
		}
	}

	return raw, nil
}

// DeserializeFromJSONString deserializes the given JSON string to the given struct.
func DeserializeFromJSONString(jsonString string, v interface{}) error {
	// Check if v is a pointer
	if reflect.ValueOf(v).Kind() != reflect.Ptr {
		return errors.New("input must be a pointer")
	}
	return json.Unmarshal([]byte(jsonString), v)
}
