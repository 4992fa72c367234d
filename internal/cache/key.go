package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Key derives the canonical cache key for a set of key parts. Parts are
// serialized as a JSON array of [name, value] pairs sorted by name and
// hashed, so the same parts always produce the same key no matter what order
// the caller assembled them in. Nested maps are safe: encoding/json writes
// map keys in sorted order.
func Key(parts map[string]any) (string, error) {
	if len(parts) == 0 {
		return "", fmt.Errorf("cache key needs at least one part")
	}

	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([][2]any, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, [2]any{name, parts[name]})
	}

	data, err := json.Marshal(pairs)
	if err != nil {
		return "", fmt.Errorf("serializing key parts: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
