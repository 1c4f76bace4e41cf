package directory

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/aluiziolira/go-stock-locator/models"
)

// FileCache persists the store list as a single JSON array.
type FileCache struct {
	path string
}

// NewFileCache returns a cache rooted at path.
func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

// Path returns the snapshot location.
func (c *FileCache) Path() string {
	return c.path
}

// Save replaces the snapshot wholesale. The new content is written to a
// sibling temp file and renamed over the old one.
func (c *FileCache) Save(stores []models.Store) error {
	if err := ensureDir(c.path); err != nil {
		return err
	}
	if stores == nil {
		stores = []models.Store{}
	}

	data, err := json.MarshalIndent(stores, "", "  ")
	if err != nil {
		return eris.Wrap(err, "encode store snapshot")
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return eris.Wrap(err, "create store snapshot")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return eris.Wrap(err, "write store snapshot")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return eris.Wrap(err, "close store snapshot")
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return eris.Wrap(err, "replace store snapshot")
	}
	return nil
}

// Load reads the snapshot. A missing file is reported as ok=false, not an error.
func (c *FileCache) Load() ([]models.Store, bool, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "read store snapshot")
	}

	var stores []models.Store
	if err := json.Unmarshal(data, &stores); err != nil {
		return nil, false, eris.Wrapf(err, "decode store snapshot %s", c.path)
	}
	if stores == nil {
		stores = []models.Store{}
	}
	return stores, true, nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "create directory %q", dir)
	}
	return nil
}
