package crypto

import (
	"crypto/rand"
	"errors"
	"math"
)

const (
	defaultAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	defaultIDSize   = 22 // 22 * 6 = 132 bits (uuid is 128 bits) of entropy
	minAlphabetSize = 8
	maxAlphabetSize = 255
)

var ErrInvalidAlphabet = errors.New("alphabet must hold 8 to 255 ASCII characters")

// NanoIDGenerator produces URL-safe random identifiers. Session ids use it so
// they never reveal creation order.
type NanoIDGenerator struct {
	alphabet string
	mask     byte
}

// NewNanoID builds a generator for alphabet, or the URL-safe default when
// alphabet is empty.
func NewNanoID(alphabet string) (*NanoIDGenerator, error) {
	if alphabet == "" {
		alphabet = defaultAlphabet
	}
	if len(alphabet) < minAlphabetSize || len(alphabet) > maxAlphabetSize {
		return nil, ErrInvalidAlphabet
	}
	// Generate indexes by byte, so multi-byte runes would break it.
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] > 127 {
			return nil, ErrInvalidAlphabet
		}
	}

	mask := 1
	for mask < len(alphabet)-1 {
		mask = mask<<1 | 1
	}

	return &NanoIDGenerator{alphabet: alphabet, mask: byte(mask)}, nil
}

// Generate returns an id of size characters (defaultIDSize when <= 0).
func (n *NanoIDGenerator) Generate(size int) (string, error) {
	if size <= 0 {
		size = defaultIDSize
	}

	// Oversample so most ids need a single read despite mask rejections.
	step := int(math.Ceil(1.6 * float64(int(n.mask)*size) / float64(len(n.alphabet))))
	id := make([]byte, 0, size)
	buf := make([]byte, step)

	for len(id) < size {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			idx := int(b & n.mask)
			if idx < len(n.alphabet) {
				id = append(id, n.alphabet[idx])
				if len(id) == size {
					break
				}
			}
		}
	}

	return string(id), nil
}
