package pkgdb

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed catalog.toml
var builtinCatalog []byte

// Family selects which package naming applies.
type Family string

const (
	FamilyRPM Family = "rpm"
	FamilyDeb Family = "deb"
)

type catalogFile struct {
	Packages []catalogPackage `toml:"package"`
}

type catalogPackage struct {
	Name        string   `toml:"name"`
	Deb         string   `toml:"deb"`
	Executables []string `toml:"executables"`
}

// Catalog is a static executable to package table.
type Catalog struct {
	entries map[string]catalogPackage
}

// BuiltinCatalog returns the catalog compiled into the binary.
func BuiltinCatalog() (*Catalog, error) {
	return parseCatalog(builtinCatalog)
}

// LoadCatalog reads a user catalog. A missing file yields an empty catalog.
func LoadCatalog(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return &Catalog{entries: map[string]catalogPackage{}}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Catalog{entries: map[string]catalogPackage{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	catalog, err := parseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return catalog, nil
}

func parseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	catalog := &Catalog{entries: make(map[string]catalogPackage)}
	for i, pkg := range file.Packages {
		if strings.TrimSpace(pkg.Name) == "" {
			return nil, fmt.Errorf("package entry %d has no name", i+1)
		}
		for _, exe := range pkg.Executables {
			exe = strings.TrimSpace(exe)
			if exe == "" {
				continue
			}
			if _, dup := catalog.entries[exe]; !dup {
				catalog.entries[exe] = pkg
			}
		}
	}
	return catalog, nil
}

// Len returns the number of executables known to the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Lookup returns the package providing exe, matching the full name first and
// then the base name.
func (c *Catalog) Lookup(exe string, family Family) (string, bool) {
	if c == nil {
		return "", false
	}
	pkg, ok := c.entries[exe]
	if !ok {
		pkg, ok = c.entries[filepath.Base(exe)]
	}
	if !ok {
		return "", false
	}
	if family == FamilyDeb && pkg.Deb != "" {
		return pkg.Deb, true
	}
	return pkg.Name, true
}
