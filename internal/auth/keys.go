// Package auth provides password hashing and access tokens.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bookblog/bookblog-server/internal/store"
)

const (
	// PASETO v4 requires a 256-bit symmetric key.
	keyLength    = 32
	keyHexLength = 64

	// KeyFile is the token key file name inside the data directory.
	// It is never included in backup archives.
	KeyFile = "auth.key"
)

// LoadOrGenerateKey loads the PASETO v4 symmetric key from <dataPath>/auth.key,
// generating and persisting a new one on first run. The file holds hex.
func LoadOrGenerateKey(dataPath string) ([]byte, error) {
	keyPath := filepath.Join(dataPath, KeyFile)

	//#nosec G304 -- Auth key path is derived from the configured data path
	raw, err := os.ReadFile(keyPath)
	switch {
	case err == nil:
		return decodeKey(raw)
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("read auth key: %w", err)
	}

	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate auth key: %w", err)
	}

	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := store.WriteFileAtomic(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("failed to save auth key: %w", err)
	}

	return key, nil
}

func decodeKey(raw []byte) ([]byte, error) {
	keyHex := strings.TrimSpace(string(raw))
	if len(keyHex) != keyHexLength {
		return nil, fmt.Errorf("invalid auth key length: expected %d hex chars, got %d", keyHexLength, len(keyHex))
	}

	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid auth key format: not valid hex: %w", err)
	}
	return key, nil
}
