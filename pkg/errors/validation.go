package errors

import (
	"strings"
	"unicode"
)

// ValidatePackageName validates a package name for safety and correctness.
// It rejects names that could be used for path traversal or injection attacks.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
//
// Ecosystem-specific validation (e.g., PEP 503 name grammar) is done
// separately by the manifest parser.
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateManifestPath validates a user-supplied manifest path.
// It rejects empty paths and paths containing null bytes; everything else is
// left to the filesystem to reject.
func ValidateManifestPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "manifest path cannot be empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidPath, "manifest path contains null byte")
	}
	return nil
}
