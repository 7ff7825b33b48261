package room

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tomokisaito/roompower/internal/gamejson"
)

// Load reads a room snapshot from a JSON file on disk.
func Load(path string) (*Room, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read room file: %w", err)
	}

	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse room file %s: %w", path, err)
	}
	return r, nil
}

// Parse decodes a room snapshot from raw JSON. Real exports sometimes start
// with // comment lines and wrap the payload in a "data" envelope; both are
// tolerated before decoding.
func Parse(data []byte) (*Room, error) {
	data = gamejson.StripLineComments(data)

	payload, err := gamejson.UnwrapData(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON document: %w", err)
	}

	var r Room
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("invalid room JSON: %w", err)
	}
	return &r, nil
}

// Save writes the room to path as indented JSON. The write goes through a
// temporary file and a rename so readers never observe a partial document.
func Save(r *Room, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary room file: %w", err)
	}
	if err := os.Rename(tempFile, path); err != nil {
		return fmt.Errorf("failed to rename temp room file: %w", err)
	}
	return nil
}
