package session

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const sealedPrefix = "x1:"

var hkdfSalt = []byte("coachsync-session")

// sealer encrypts stored values with XChaCha20-Poly1305.
type sealer struct {
	aead cipher.AEAD
}

// newSealer derives the AEAD key from secret. An empty secret disables
// encryption and returns nil.
func newSealer(secret string) (*sealer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, nil
	}
	reader := hkdf.New(sha256.New, []byte(secret), hkdfSalt, []byte("session-entries"))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create session cipher: %w", err)
	}
	return &sealer{aead: aead}, nil
}

func (s *sealer) seal(key, plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(plaintext), []byte(key))
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(out), nil
}

// open reverses seal. Values written before encryption was enabled are
// returned unchanged.
func (s *sealer) open(key, stored string) (string, error) {
	encoded, ok := strings.CutPrefix(stored, sealedPrefix)
	if !ok {
		return stored, nil
	}
	raw, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode sealed value: %w", err)
	}
	if len(raw) < s.aead.NonceSize() {
		return "", errors.New("sealed value too short")
	}
	nonce, ciphertext := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return "", fmt.Errorf("open sealed value: %w", err)
	}
	return string(plain), nil
}
