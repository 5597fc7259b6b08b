package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Query kinds used as fingerprint prefixes. DeletePrefix on a kind evicts
// every cached result of that kind.
const (
	KindListItems   = "lost_items"
	KindItemByID    = "lost_item"
	KindNearbyItems = "nearby_items"
)

// Fingerprint derives a deterministic cache key from a query kind and its
// parameter set. Equivalent parameter sets yield identical keys regardless of
// enumeration order, so semantically identical queries always collide.
func Fingerprint(kind string, params map[string]any) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(canonical(params[name]))
		b.WriteByte(';')
	}

	sum := sha256.Sum256([]byte(b.String()))
	return kind + ":" + hex.EncodeToString(sum[:])
}

func canonical(v any) string {
	// json.Marshal sorts map keys and renders numbers consistently, which is
	// enough for the flat parameter values used in fingerprints.
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
