package badger

import (
	"fmt"

	"github.com/poiesic/wordbook/core"
)

// Key prefixes for different data types
const (
	lookupResultPrefix = "lkres"
)

// makeResultKey generates the key for a cache key. Keys are hashed so
// arbitrary words and source names map to fixed-size keys.
func makeResultKey(key string) []byte {
	return []byte(fmt.Sprintf("%s:%d", lookupResultPrefix, core.IDFromContent(key)))
}
