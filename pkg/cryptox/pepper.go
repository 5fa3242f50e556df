package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Configuration for Argon2id hashing.
const (
	memory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	iterations  = 2         // Iteration count
	parallelism = 1         // Number of threads
	keyLength   = 32        // Length of the generated hash
	saltLength  = 16        // Length of the salt
)

// ErrPepperPathUnset is returned when a hash is requested before the pepper
// location has been configured.
var ErrPepperPathUnset = errors.New("cryptox: pepper path not set")

var (
	pepperMu   sync.RWMutex
	pepper     string
	pepperFile string
)

// SetPepperPath configures where the pepper lives. The file is created with a
// fresh random pepper on first use. Changing the path drops any cached pepper.
func SetPepperPath(file string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()

	pepperFile = file
	pepper = ""
}

// GetPepper returns the process pepper, loading or generating it on first call.
func GetPepper() (string, error) {
	pepperMu.RLock()
	p := pepper
	pepperMu.RUnlock()
	if p != "" {
		return p, nil
	}

	pepperMu.Lock()
	defer pepperMu.Unlock()

	if pepper != "" {
		return pepper, nil
	}

	loaded, err := loadOrGeneratePepper(pepperFile)
	if err != nil {
		return "", err
	}
	pepper = loaded
	return pepper, nil
}

// ReloadPepper re-reads the pepper file, e.g. after it has been restored from
// a backup.
func ReloadPepper() error {
	pepperMu.Lock()
	defer pepperMu.Unlock()

	loaded, err := loadOrGeneratePepper(pepperFile)
	if err != nil {
		return err
	}
	pepper = loaded
	return nil
}

func loadOrGeneratePepper(file string) (string, error) {
	if file == "" {
		return "", ErrPepperPathUnset
	}

	file = filepath.Clean(file)
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return "", fmt.Errorf("cryptox: create pepper dir: %w", err)
	}

	raw, err := os.ReadFile(file)
	switch {
	case err == nil:
		if p := strings.TrimSpace(string(raw)); p != "" {
			return p, nil
		}
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("cryptox: read pepper: %w", err)
	}

	buf := make([]byte, keyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	p := base64.RawURLEncoding.EncodeToString(buf)

	if err := os.WriteFile(file, []byte(p), 0600); err != nil {
		return "", fmt.Errorf("cryptox: write pepper: %w", err)
	}
	return p, nil
}
