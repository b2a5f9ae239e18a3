package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ExportJSON writes v as indented JSON, the layout of inverted_index.json and
// positional_index.json. The file is replaced atomically.
func ExportJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming export file: %w", err)
	}
	return nil
}
