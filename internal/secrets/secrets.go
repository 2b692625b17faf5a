// Package secrets reads credentials from a directory of plain-text files.
// Each file holds one secret: the filename is the key and the trimmed file
// contents are the value. The CLI keeps its API token in
// .secrets/labelzoom-token.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// TokenKey is the file name holding the LabelZoom API token.
const TokenKey = "labelzoom-token"

// Lookup returns the secret stored under key in dir. A missing directory or
// file is not an error; Lookup returns "" in that case.
func Lookup(dir, key string) (string, error) {
	if dir == "" || key == "" || strings.HasPrefix(key, ".") || strings.ContainsAny(key, `/\`) {
		return "", nil
	}

	data, err := os.ReadFile(filepath.Join(dir, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading secret %s: %w", key, err)
	}

	return strings.TrimSpace(string(data)), nil
}
