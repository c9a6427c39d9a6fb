package initorch

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type manifestEntry struct {
	ID   string `yaml:"id"`
	Kind string `yaml:"kind"`
}

type manifestFile struct {
	Components []manifestEntry `yaml:"components"`
}

// ParseManifest decodes a YAML component manifest into ordered entries.
//
// Format:
//
//	components:
//	  - id: database
//	  - id: cache
//	    kind: sync
//	  - id: warmup
//	    kind: async
//
// An omitted kind means sync.
func ParseManifest(data []byte) ([]Entry, error) {
	var file manifestFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode component manifest: %w", err)
	}

	entries := make([]Entry, 0, len(file.Components))
	for i, c := range file.Components {
		if c.ID == "" {
			return nil, fmt.Errorf("component manifest entry %d: id is empty", i)
		}
		var kind Kind
		switch c.Kind {
		case "", "sync":
			kind = KindSync
		case "async":
			kind = KindAsync
		default:
			return nil, fmt.Errorf("component manifest entry %q: unknown kind %q", c.ID, c.Kind)
		}
		entries = append(entries, Entry{ID: ID(c.ID), Kind: kind})
	}
	return entries, nil
}

// Manifest is a Discoverer that reads a YAML component manifest from disk on
// every Discover call.
type Manifest string

func (m Manifest) Discover(_ context.Context) ([]Entry, error) {
	data, err := os.ReadFile(string(m))
	if err != nil {
		return nil, fmt.Errorf("read component manifest: %w", err)
	}
	return ParseManifest(data)
}
