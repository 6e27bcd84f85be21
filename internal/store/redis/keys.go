package redis

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// KeyPrefixWeather is the prefix for weather snapshot keys
	KeyPrefixWeather = "newtab:weather:"
	// KeyPrefixDocument is the prefix for proxied document keys
	KeyPrefixDocument = "newtab:doc:"
)

// WeatherKey returns the Redis key for the snapshot of a temperature unit
func WeatherKey(unit string) string {
	return KeyPrefixWeather + strings.ToUpper(unit)
}

// DocumentKey returns the Redis key for a proxied document, hashed from its URL
func DocumentKey(rawURL string) string {
	return KeyPrefixDocument + DocumentID(rawURL)
}

// DocumentID creates a stable short ID from a URL using a SHA-256 hash.
// The same URL always produces the same ID.
func DocumentID(rawURL string) string {
	hash := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(hash[:])[:16]
}

// ExtractDocumentID extracts the document ID from a Redis key
func ExtractDocumentID(key string) (string, error) {
	if len(key) <= len(KeyPrefixDocument) || !strings.HasPrefix(key, KeyPrefixDocument) {
		return "", fmt.Errorf("invalid document key: %s", key)
	}
	return key[len(KeyPrefixDocument):], nil
}
