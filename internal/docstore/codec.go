package docstore

import (
	ierr "github.com/fleetledger/fleetledger/internal/errors"
	jsoniter "github.com/json-iterator/go"
)

// documents are stored in their JSON form so every backend sees the same field names
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Encode serialises a document
func Encode(doc any) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to encode document").
			Mark(ierr.ErrSystem)
	}
	return data, nil
}

// Decode deserialises a document into dst
func Decode(data []byte, dst any) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to decode document").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// Fields decodes the top level of a document for filtering and ordering
func Fields(data []byte) (map[string]any, error) {
	fields := make(map[string]any)
	if err := Decode(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
