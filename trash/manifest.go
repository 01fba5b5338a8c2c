package trash

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// manifest is the persisted record set, one manifest.json per trash area.
type manifest struct {
	Records []Record `json:"records"`
}

// readManifest returns an empty manifest when the file does not exist yet.
func readManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read trash manifest: %w", err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode trash manifest: %w", err)
	}
	return &m, nil
}

// write persists the manifest atomically using a temporary file and rename,
// which is safe against concurrent writers.
func (m *manifest) write(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".manifest-*.json")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, path)
}
