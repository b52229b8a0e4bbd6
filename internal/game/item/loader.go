package item

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadCatalog reads all *.yaml and *.yml files from dir, parses each as a
// list of Items, and returns the combined Catalog. Files are read in
// directory order; later duplicates of an ID are an error, not an override.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns a validated Catalog or the first encountered error.
func LoadCatalog(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadCatalog: cannot read directory %q: %w", dir, err)
	}

	var defs []Item
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadCatalog: cannot read file %q: %w", path, err)
		}
		var batch []Item
		if err := yaml.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("LoadCatalog: cannot parse file %q: %w", path, err)
		}
		defs = append(defs, batch...)
	}
	c, err := NewCatalog(defs)
	if err != nil {
		return nil, fmt.Errorf("LoadCatalog: %w", err)
	}
	return c, nil
}
