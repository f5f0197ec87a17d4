package transfervalue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
)

// Cache maps a player name to its market value in millions of euros, nil
// means the player was looked up and not found.
type Cache map[string]*float64

// LoadCache reads the cache at `path`, a missing file is an empty cache.
func LoadCache(path string) (Cache, error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Cache{}, nil
	}
	if err != nil {
		return nil, err
	}
	cache := Cache{}
	err = json.Unmarshal(contents, &cache)
	if err != nil {
		return nil, err
	}
	// a file holding null decodes to a nil map
	if cache == nil {
		cache = Cache{}
	}
	return cache, nil
}

func SaveCache(path string, cache Cache) error {
	contents, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	err = os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return err
	}
	return os.WriteFile(path, contents, 0644)
}

// Missing returns the players of `players` that have no entry, sorted.
func (c Cache) Missing(players []string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, p := range players {
		if _, ok := c[p]; ok {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
