package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/charlesng35/filecache/pkg/errors"
)

// UniqueName returns name when exists reports it free. Otherwise it probes
// "base (2).ext", "base (3).ext", ... and returns the first free candidate.
// An error from exists stops the search.
func UniqueName(exists func(string) (bool, error), name string) (string, error) {
	taken, err := exists(name)
	if err != nil || !taken {
		return name, err
	}

	base, ext := splitExt(name)
	for counter := 2; ; counter++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, counter, ext)
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

// splitExt splits off the last extension. Leading dots belong to the base, so
// ".bashrc" has no extension.
func splitExt(name string) (string, string) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if strings.TrimLeft(base, ".") == "" {
		return name, ""
	}
	return base, ext
}

// ValidateName checks that name is a single path element usable inside the
// cache folder.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return apperrors.NewInvalidArgument("file name is required")
	case name == "." || name == "..":
		return apperrors.NewInvalidArgument(fmt.Sprintf("file name %q is not allowed", name))
	case strings.ContainsRune(name, '/'), strings.ContainsRune(name, os.PathSeparator):
		return apperrors.NewInvalidArgument(fmt.Sprintf("file name %q must not contain path separators", name))
	case strings.ContainsRune(name, 0):
		return apperrors.NewInvalidArgument("file name must not contain NUL bytes")
	}
	return nil
}
