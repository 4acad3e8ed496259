package jurisdiction

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

type catalogFile struct {
	Meta    Meta   `yaml:"meta"`
	Regions []Rule `yaml:"regions"`
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return Parse(embeddedCatalog)
})

// Default returns the embedded catalog, parsed once per process.
func Default() (*Catalog, error) {
	return defaultCatalog()
}

// MustDefault is Default for program start-up, where a broken embedded file is a build defect.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(fmt.Sprintf("embedded jurisdiction catalog: %v", err))
	}
	return c
}

// Load reads a catalog from a YAML file. An empty path yields the embedded catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML. Unknown fields are rejected so typos fail loudly.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	if err := Validate(file.Regions); err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	return newCatalog(file.Meta, file.Regions, hex.EncodeToString(sum[:8])), nil
}
