package source

import (
	"os"
	"path/filepath"
)

// ScanDir walks root and discovers all JSONL files under it. A
// missing root is not an error; it just yields no files.
func ScanDir(root, platform string) ([]DiscoveredFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".jsonl" {
			return nil
		}
		files = append(files, DiscoveredFile{Path: path, Platform: platform})
		return nil
	})

	return files, err
}
