package dur

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
)

// Manifest lists the safety files an ingest run reads.
//
//	sources:
//	  - path: 병용금기.csv
//	    category: contraindication
//	    limit: 5000
//	  - path: 노인주의_해열진통소염제.csv
//	    category: elderly
//	    encoding: utf-8
type Manifest struct {
	Sources []ManifestEntry `yaml:"sources"`

	dir string
}

// ManifestEntry is one file in a manifest. Relative paths resolve against
// the manifest's directory.
type ManifestEntry struct {
	Path     string `yaml:"path"`
	Category string `yaml:"category"`
	Encoding string `yaml:"encoding,omitempty"`
	Limit    int    `yaml:"limit,omitempty"`
}

// LoadManifest reads and validates a YAML manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read manifest: %w", domain.ErrDataUnavailable, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// ParseManifest decodes manifest YAML. Relative paths resolve against the
// working directory.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: parse manifest: %w", domain.ErrMalformedInput, err)
	}
	if len(m.Sources) == 0 {
		return nil, fmt.Errorf("%w: manifest lists no sources", domain.ErrInvalidInput)
	}
	for i, e := range m.Sources {
		if e.Path == "" {
			return nil, fmt.Errorf("%w: source %d has no path", domain.ErrInvalidInput, i)
		}
		if _, ok := domain.ParseSafetyCategory(e.Category); !ok {
			return nil, fmt.Errorf("%w: source %d has unknown category %q", domain.ErrInvalidInput, i, e.Category)
		}
		if _, err := normalizeEncoding(e.Encoding); err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
	}
	return &m, nil
}

// Files builds a source per manifest entry, in manifest order.
func (m *Manifest) Files() ([]driven.SafetySource, error) {
	out := make([]driven.SafetySource, 0, len(m.Sources))
	for _, e := range m.Sources {
		category, _ := domain.ParseSafetyCategory(e.Category)
		path := e.Path
		if !filepath.IsAbs(path) && m.dir != "" {
			path = filepath.Join(m.dir, path)
		}
		f, err := NewFile(path, category, e.Encoding, e.Limit)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
