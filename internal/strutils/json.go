package strutils

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// JSONDocumentsEqual reports whether two JSON documents hold the same data,
// ignoring key order and whitespace
func JSONDocumentsEqual(a, b []byte) (bool, error) {
	var dataA, dataB any
	if err := json.Unmarshal(a, &dataA); err != nil {
		return false, fmt.Errorf("failed to parse first document: %w", err)
	}

	if err := json.Unmarshal(b, &dataB); err != nil {
		return false, fmt.Errorf("failed to parse second document: %w", err)
	}

	return reflect.DeepEqual(dataA, dataB), nil
}
