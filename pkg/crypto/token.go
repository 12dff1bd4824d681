package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

var ErrEmptyToken = errors.New("token and hash cannot be empty")

const (
	DefaultTokenLength = 32 // 256 bits
)

// TokenPair holds a bearer token and the only form of it that gets stored.
type TokenPair struct {
	Token string // value returned to client
	Hash  string // value in storage
}

// GenerateHashedToken creates a random URL-safe token of byteLength bytes
// (DefaultTokenLength when <= 0) together with its SHA-256 hash.
func GenerateHashedToken(byteLength int) (*TokenPair, error) {
	if byteLength <= 0 {
		byteLength = DefaultTokenLength
	}

	raw := make([]byte, byteLength)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	return &TokenPair{Token: token, Hash: HashToken(token)}, nil
}

// VerifyToken compares token against a stored hash in constant time.
func VerifyToken(token, storedHash string) (bool, error) {
	if token == "" || storedHash == "" {
		return false, ErrEmptyToken
	}
	return subtle.ConstantTimeCompare([]byte(HashToken(token)), []byte(storedHash)) == 1, nil
}

func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// TokenHasher hashes tokens with HMAC-SHA256 under a server secret, so a
// leaked session table cannot be matched against guessed tokens without it.
// An empty secret falls back to plain SHA-256.
type TokenHasher struct {
	secret []byte
}

func NewTokenHasher(secret string) *TokenHasher {
	return &TokenHasher{secret: []byte(secret)}
}

func (h *TokenHasher) Hash(token string) string {
	if len(h.secret) == 0 {
		return HashToken(token)
	}
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// Generate is GenerateHashedToken with the keyed hash.
func (h *TokenHasher) Generate(byteLength int) (*TokenPair, error) {
	pair, err := GenerateHashedToken(byteLength)
	if err != nil {
		return nil, err
	}
	pair.Hash = h.Hash(pair.Token)
	return pair, nil
}

func (h *TokenHasher) Verify(token, storedHash string) (bool, error) {
	if token == "" || storedHash == "" {
		return false, ErrEmptyToken
	}
	return hmac.Equal([]byte(h.Hash(token)), []byte(storedHash)), nil
}
