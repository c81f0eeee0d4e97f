package templates

import (
	"fmt"
	"strings"

	"github.com/ironsheep/sheet-omr/internal/music"
)

// CatalogEntry names one template asset and the length it denotes.
type CatalogEntry struct {
	Name   string       `json:"name"`
	Length music.Length `json:"length"`
}

// DefaultCatalog is the bundled template set: a filled head for crotchets
// and a hollow head for minims.
func DefaultCatalog() []CatalogEntry {
	return []CatalogEntry{
		{Name: "template1.png", Length: music.Crotchet},
		{Name: "template2.png", Length: music.Minim},
	}
}

// ParseCatalog parses a comma-separated list of name:length pairs, e.g.
// "template1.png:crotchet,template2.png:minim". Names must be unique.
func ParseCatalog(s string) ([]CatalogEntry, error) {
	var entries []CatalogEntry
	seen := make(map[string]bool)

	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		i := strings.LastIndex(item, ":")
		if i <= 0 || i == len(item)-1 {
			return nil, fmt.Errorf("invalid catalog entry %q: want name:length", item)
		}
		name := strings.TrimSpace(item[:i])
		length, err := music.ParseLength(item[i+1:])
		if err != nil {
			return nil, fmt.Errorf("invalid catalog entry %q: %w", item, err)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate catalog entry %q", name)
		}
		seen[name] = true
		entries = append(entries, CatalogEntry{Name: name, Length: length})
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	return entries, nil
}
