// Package crypto hashes and verifies account passwords.
//
// New hashes are argon2id in the PHC string format
// ($argon2id$v=19$m=65536,t=3,p=4$salt$key). Legacy bcrypt hashes are
// still accepted by VerifyPassword and reported by NeedsRehash.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Verdict is the outcome of a password check.
type Verdict int

const (
	Invalid Verdict = iota
	Valid
	MalformedHash
)

func (v Verdict) String() string {
	switch v {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	case MalformedHash:
		return "malformed_hash"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Params are the argon2id cost parameters.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultParams match the argon2-cffi defaults.
var DefaultParams = Params{
	Time:    3,
	Memory:  64 * 1024,
	Threads: 4,
	SaltLen: 16,
	KeyLen:  32,
}

var b64 = base64.RawStdEncoding

var errMalformed = errors.New("malformed password hash")

// HashPassword hashes plaintext with DefaultParams.
func HashPassword(plaintext string) (string, error) {
	return HashPasswordWith(plaintext, DefaultParams)
}

func HashPasswordWith(plaintext string, p Params) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(plaintext), salt, p.Time, p.Memory, p.Threads, p.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// VerifyPassword checks plaintext against an encoded hash. It never
// returns an error: a hash that cannot be parsed yields MalformedHash.
func VerifyPassword(plaintext, encoded string) Verdict {
	if isBcrypt(encoded) {
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plaintext))
		switch {
		case err == nil:
			return Valid
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return Invalid
		default:
			return MalformedHash
		}
	}

	p, salt, key, err := decodeArgon2id(encoded)
	if err != nil {
		return MalformedHash
	}
	other := argon2.IDKey([]byte(plaintext), salt, p.Time, p.Memory, p.Threads, uint32(len(key)))
	if subtle.ConstantTimeCompare(key, other) == 1 {
		return Valid
	}
	return Invalid
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// DummyHash returns a fixed argon2id hash with DefaultParams. Verifying
// against it costs the same as verifying a real account's password, so
// callers use it when the account does not exist.
func DummyHash() string {
	dummyOnce.Do(func() {
		h, err := HashPassword("not-a-real-password")
		if err != nil {
			panic(fmt.Sprintf("crypto: dummy hash: %v", err))
		}
		dummyHash = h
	})
	return dummyHash
}

// NeedsRehash reports whether encoded should be replaced by a fresh
// HashPassword result after a successful login.
func NeedsRehash(encoded string) bool {
	if isBcrypt(encoded) {
		return true
	}
	p, _, _, err := decodeArgon2id(encoded)
	if err != nil {
		return true
	}
	return p.Time < DefaultParams.Time || p.Memory < DefaultParams.Memory
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

func decodeArgon2id(encoded string) (Params, []byte, []byte, error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, errMalformed
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Params{}, nil, nil, errMalformed
	}

	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return Params{}, nil, nil, errMalformed
	}
	if p.Time == 0 || p.Memory == 0 || p.Threads == 0 {
		return Params{}, nil, nil, errMalformed
	}

	salt, err := b64.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return Params{}, nil, nil, errMalformed
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return Params{}, nil, nil, errMalformed
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}
