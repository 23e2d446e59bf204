package store

import (
	"encoding/json"
	"fmt"

	"github.com/bionetgo/rxnet/internal/ir"
)

// marshalIndices serializes species index lists to canonical JSON TEXT so
// stored reactions byte-compare across runs.
func marshalIndices(indices []int) (string, error) {
	vals := make([]any, len(indices))
	for i, idx := range indices {
		vals[i] = idx
	}
	data, err := ir.MarshalCanonical(vals)
	if err != nil {
		return "", fmt.Errorf("marshal indices: %w", err)
	}
	return string(data), nil
}

// unmarshalIndices parses a stored index list. Empty lists round-trip to
// nil so degradation reactions compare equal before and after storage.
func unmarshalIndices(data string) ([]int, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var indices []int
	if err := json.Unmarshal([]byte(data), &indices); err != nil {
		return nil, fmt.Errorf("unmarshal indices: %w", err)
	}
	return indices, nil
}
