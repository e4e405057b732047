package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// TokenCache memoizes token sets by text value. Every article is rescored
// against the whole accumulated history, so the same text gets tokenized
// repeatedly within one batch.
type TokenCache struct {
	mu    sync.RWMutex
	items map[string]map[string]struct{}
}

func New() *TokenCache {
	return &TokenCache{
		items: make(map[string]map[string]struct{}),
	}
}

func (c *TokenCache) Set(key string, tokens map[string]struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = tokens
}

func (c *TokenCache) Get(key string) (map[string]struct{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tokens, exists := c.items[key]
	return tokens, exists
}

func (c *TokenCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Key hashes the text value so arbitrarily long bodies stay cheap map keys.
func Key(text string) string {
	h := sha256.New()
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
