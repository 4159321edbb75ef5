package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Argon2id parameters for new hashes. Verification reads them back from the
// encoded hash so these can be raised without invalidating stored passwords.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

var (
	pepperMu sync.RWMutex
	pepper   string
)

// SetPepper installs the server-side secret mixed into every password hash.
func SetPepper(p string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepper = p
}

func currentPepper() string {
	pepperMu.RLock()
	defer pepperMu.RUnlock()
	return pepper
}

// LoadPepper reads the pepper from path, creating it with fresh random
// content on first run, and installs it.
func LoadPepper(path string) error {
	if path == "" {
		return errors.New("cryptox: pepper path is empty")
	}
	path = filepath.Clean(path)

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		p := strings.TrimSpace(string(b))
		if p == "" {
			return fmt.Errorf("cryptox: pepper file %s is empty", path)
		}
		SetPepper(p)
		return nil

	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("cryptox: create pepper dir: %w", err)
		}
		buf := make([]byte, keyLength)
		if _, err := rand.Read(buf); err != nil {
			return err
		}
		p := base64.RawURLEncoding.EncodeToString(buf)
		if err := os.WriteFile(path, []byte(p), 0o600); err != nil {
			return fmt.Errorf("cryptox: write pepper: %w", err)
		}
		SetPepper(p)
		return nil

	default:
		return fmt.Errorf("cryptox: read pepper: %w", err)
	}
}
