package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/lastros/pos-backend/pkg/config"
)

// ErrInvalidHash signals a malformed stored password hash.
var ErrInvalidHash = errors.New("invalid password hash")

const argonPrefix = "$argon2id$"

var b64 = base64.RawStdEncoding

// argonParams are encoded into every hash so old hashes keep verifying after
// the configured cost changes.
type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	saltLen int
	keyLen  uint32
}

func paramsFromConfig(cfg config.PasswordConfig) argonParams {
	return argonParams{
		memory:  uint32(clamp(cfg.ArgonMemoryKB, 8, 512*1024)),
		time:    uint32(clamp(cfg.ArgonTime, 1, 10)),
		threads: uint8(clamp(cfg.ArgonParallelism, 1, 255)),
		saltLen: clamp(cfg.ArgonSaltLen, 8, 64),
		keyLen:  uint32(clamp(cfg.ArgonKeyLen, 16, 64)),
	}
}

func (p argonParams) key(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
}

// HashPassword returns a PHC-formatted argon2id hash:
// $argon2id$v=19$m=<kb>,t=<iterations>,p=<threads>$<salt>$<key>
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	p := paramsFromConfig(cfg)
	salt := make([]byte, p.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argonPrefix, argon2.Version, p.memory, p.time, p.threads,
		b64.EncodeToString(salt), b64.EncodeToString(p.key(password, salt))), nil
}

// VerifyPassword checks password against an argon2id or legacy bcrypt hash.
// A mismatch is (false, nil); only an unreadable hash returns an error.
func VerifyPassword(password, encoded string) (bool, error) {
	if isBcrypt(encoded) {
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, ErrInvalidHash
		}
		return true, nil
	}

	p, salt, want, err := decodeArgon(encoded)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(want, p.key(password, salt)) == 1, nil
}

// NeedsRehash reports whether a stored hash should be upgraded to argon2id
// after the next successful login.
func NeedsRehash(encoded string) bool {
	return isBcrypt(encoded)
}

func isBcrypt(encoded string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(encoded, prefix) {
			return true
		}
	}
	return false
}

func decodeArgon(encoded string) (argonParams, []byte, []byte, error) {
	rest, ok := strings.CutPrefix(encoded, argonPrefix)
	if !ok {
		return argonParams{}, nil, nil, ErrInvalidHash
	}
	fields := strings.Split(rest, "$")
	if len(fields) != 4 {
		return argonParams{}, nil, nil, ErrInvalidHash
	}

	var version int
	var p argonParams
	if _, err := fmt.Sscanf(fields[0], "v=%d", &version); err != nil || version != argon2.Version {
		return argonParams{}, nil, nil, ErrInvalidHash
	}
	if _, err := fmt.Sscanf(fields[1], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return argonParams{}, nil, nil, ErrInvalidHash
	}
	salt, err := b64.DecodeString(fields[2])
	if err != nil {
		return argonParams{}, nil, nil, ErrInvalidHash
	}
	key, err := b64.DecodeString(fields[3])
	if err != nil || len(key) == 0 {
		return argonParams{}, nil, nil, ErrInvalidHash
	}
	p.saltLen = len(salt)
	p.keyLen = uint32(len(key))
	return p, salt, key, nil
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
