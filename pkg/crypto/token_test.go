package crypto

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestGenerateHashedToken(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		wantBytes int
	}{
		{name: "default length", length: 0, wantBytes: DefaultTokenLength},
		{name: "negative falls back to default", length: -5, wantBytes: DefaultTokenLength},
		{name: "custom length", length: 16, wantBytes: 16},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			pair, err := GenerateHashedToken(test.length)
			if err != nil {
				t.Fatalf("GenerateHashedToken() error = %v", err)
			}

			raw, err := base64.RawURLEncoding.DecodeString(pair.Token)
			if err != nil {
				t.Fatalf("token is not raw URL base64: %v", err)
			}
			if len(raw) != test.wantBytes {
				t.Errorf("token holds %d bytes, want %d", len(raw), test.wantBytes)
			}
			if pair.Hash != HashToken(pair.Token) {
				t.Error("Hash should be HashToken(Token)")
			}
			if len(pair.Hash) != 64 {
				t.Errorf("hash length = %d, want 64 hex chars", len(pair.Hash))
			}
		})
	}
}

func TestVerifyToken(t *testing.T) {
	pair, _ := GenerateHashedToken(0)
	other, _ := GenerateHashedToken(0)

	tests := []struct {
		name    string
		token   string
		hash    string
		want    bool
		wantErr error
	}{
		{name: "matching", token: pair.Token, hash: pair.Hash, want: true},
		{name: "different token", token: other.Token, hash: pair.Hash, want: false},
		{name: "empty token", token: "", hash: pair.Hash, wantErr: ErrEmptyToken},
		{name: "empty hash", token: pair.Token, hash: "", wantErr: ErrEmptyToken},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := VerifyToken(test.token, test.hash)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("VerifyToken() error = %v, want %v", err, test.wantErr)
			}
			if got != test.want {
				t.Errorf("VerifyToken() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestTokenHasher(t *testing.T) {
	pair, _ := GenerateHashedToken(0)
	keyed := NewTokenHasher("a-server-secret-of-thirty-two-chars")
	otherKey := NewTokenHasher("another-server-secret-of-32-chars!")

	tests := []struct {
		name   string
		hasher *TokenHasher
		want   func(string) bool
	}{
		{name: "empty secret is plain sha256", hasher: NewTokenHasher(""), want: func(h string) bool { return h == HashToken(pair.Token) }},
		{name: "secret changes the hash", hasher: keyed, want: func(h string) bool { return h != HashToken(pair.Token) && len(h) == 64 }},
		{name: "different secrets disagree", hasher: otherKey, want: func(h string) bool { return h != keyed.Hash(pair.Token) }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.hasher.Hash(pair.Token); !test.want(got) {
				t.Errorf("Hash() = %s", got)
			}
		})
	}
}

func TestTokenHasher_GenerateAndVerify(t *testing.T) {
	h := NewTokenHasher("a-server-secret-of-thirty-two-chars")

	pair, err := h.Generate(0)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if ok, err := h.Verify(pair.Token, pair.Hash); err != nil || !ok {
		t.Errorf("Verify() = %v, %v; want true, nil", ok, err)
	}
	if ok, _ := NewTokenHasher("").Verify(pair.Token, pair.Hash); ok {
		t.Error("Verify() without the secret should not match")
	}
	if _, err := h.Verify("", pair.Hash); !errors.Is(err, ErrEmptyToken) {
		t.Errorf("Verify() error = %v, want ErrEmptyToken", err)
	}
}
