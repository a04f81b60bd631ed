// loader.go reads batch input files. Unlike per-record insert failures,
// problems here are fatal: a file we cannot read or parse means nothing
// has been imported yet and the operator should fix the input.
package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadRecords reads and parses a JSON array of raw restaurant records
func LoadRecords(path string) ([]RawRestaurant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	var records []RawRestaurant
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse input file: %w", err)
	}

	return records, nil
}
