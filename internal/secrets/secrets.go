// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files and
// from a dotenv file. In the directory each file is one secret: the filename
// is the key and the trimmed contents the value. Dotenv keys are normalized
// to the same form, so OPENALEX_EMAIL in .env and a file named openalex-email
// name the same secret.
//
// Supported keys: openalex-email, openalex-api-key.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/pdiddy/collab-finder/internal/logging"
)

// Known secret keys.
const (
	OpenAlexEmail  = "openalex-email"
	OpenAlexAPIKey = "openalex-api-key"
)

// Secrets maps normalized key names to values.
type Secrets map[string]string

// Get returns explicit when it is set, else the loaded secret for key, else "".
// Explicit values come from flags or config and always win.
func (s Secrets) Get(key, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return s[key]
}

// Keys returns the loaded key names in sorted order.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Load reads all files in dir. A missing directory or missing files are not
// errors; Load returns an empty set. Unreadable files are logged and skipped.
func Load(dir string, log *zap.Logger) (Secrets, error) {
	log = logging.OrNop(log)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", zap.String("key", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadEnvFile reads a dotenv file. A missing file yields an empty set.
func LoadEnvFile(path string) (Secrets, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	out := make(Secrets, len(vars))
	for k, v := range vars {
		if v = strings.TrimSpace(v); v != "" {
			out[NormalizeKey(k)] = v
		}
	}
	return out, nil
}

// LoadAll merges the dotenv file under the secrets directory. Directory
// files take precedence.
func LoadAll(dir, envFile string, log *zap.Logger) (Secrets, error) {
	env, err := LoadEnvFile(envFile)
	if err != nil {
		return nil, err
	}
	files, err := Load(dir, log)
	if err != nil {
		return nil, err
	}
	for k, v := range files {
		env[k] = v
	}
	return env, nil
}

// NormalizeKey maps OPENALEX_EMAIL (and COLLAB_FINDER_OPENALEX_EMAIL) to
// openalex-email.
func NormalizeKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	k = strings.TrimPrefix(k, "collab_finder_")
	return strings.ReplaceAll(k, "_", "-")
}
