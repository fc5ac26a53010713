package storage

import (
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
)

var errInvalidFileName = errors.New("invalid file name")

// sanitizeFileName strips directories and rejects names that could escape the
// key space.
func sanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	if s == "" || strings.Contains(s, "..") {
		return "", errInvalidFileName
	}
	s = strings.ReplaceAll(s, "\\", "/")
	s = path.Base(s)
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	if s == "" || s == "." || s == "/" {
		return "", errInvalidFileName
	}
	return s, nil
}

// newStorageKey combines a random token with the caller's file name so two
// uploads of report.pdf never collide.
func newStorageKey(token, fileName string) (string, error) {
	name, err := sanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	return token + "-" + name, nil
}

func randomToken() string {
	return uuid.NewString()
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}
