package session

import (
	"errors"
	"fmt"
	"strings"
)

// Key is one HMAC secret in the signing key ring.
type Key struct {
	ID     string
	Secret []byte
}

// ParseKeys parses "kid:secret,kid2:secret2". The first key is the
// active signing key; the rest only verify, which allows rotation.
func ParseKeys(ring string) ([]Key, error) {
	var keys []Key
	seen := map[string]bool{}
	for _, entry := range strings.Split(ring, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, secret, ok := strings.Cut(entry, ":")
		id = strings.TrimSpace(id)
		if !ok || id == "" || secret == "" {
			return nil, fmt.Errorf("session key %q: want kid:secret", redact(entry))
		}
		if seen[id] {
			return nil, fmt.Errorf("session key id %q is duplicated", id)
		}
		seen[id] = true
		keys = append(keys, Key{ID: id, Secret: []byte(secret)})
	}
	if len(keys) == 0 {
		return nil, errors.New("no session keys configured")
	}
	return keys, nil
}

func redact(entry string) string {
	id, _, _ := strings.Cut(entry, ":")
	return id + ":***"
}
