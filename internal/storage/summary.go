package storage

import "github.com/pable/uniqorn/internal/index"

// WriteSummary writes the summary file next to the index.
func WriteSummary(path string, s index.Summary) error {
	return WriteJSON(path, s)
}

// ReadSummary reads a previously written summary file.
func ReadSummary(path string) (index.Summary, error) {
	var s index.Summary
	if err := ReadJSON(path, &s); err != nil {
		return index.Summary{}, err
	}
	return s, nil
}
