package metadata

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

// ErrNotObject is returned when a document's JSON root is not an object.
var ErrNotObject = errors.New("metadata: document root is not a JSON object")

// Decode parses a JSON object into a Document, keeping field order.
func Decode(data []byte) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Document{}, ErrNotObject
	}
	root, err := decodeObject(trimmed)
	if err != nil {
		return Document{}, fmt.Errorf("metadata: decode: %w", err)
	}
	return NewDocument(root), nil
}

func decodeObject(data []byte) (*Object, error) {
	obj := newObject(8)
	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		decoded, err := decodeValue(value, dataType)
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		obj.set(string(key), decoded)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(data []byte) ([]any, error) {
	out := make([]any, 0)
	var firstErr error
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, cbErr error) {
		if firstErr != nil {
			return
		}
		if cbErr != nil {
			firstErr = cbErr
			return
		}
		decoded, err := decodeValue(value, dataType)
		if err != nil {
			firstErr = err
			return
		}
		out = append(out, decoded)
	})
	if err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func decodeValue(raw []byte, dataType jsonparser.ValueType) (any, error) {
	switch dataType {
	case jsonparser.String:
		return jsonparser.ParseString(raw)
	case jsonparser.Number:
		return jsonparser.ParseFloat(raw)
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(raw)
	case jsonparser.Null:
		return nil, nil
	case jsonparser.Object:
		return decodeObject(raw)
	case jsonparser.Array:
		return decodeArray(raw)
	default:
		return nil, fmt.Errorf("unsupported value type %s", dataType)
	}
}
