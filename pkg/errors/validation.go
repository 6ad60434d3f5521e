package errors

import (
	"strings"
)

// maxIDLength bounds groupId, artifactId, version, classifier and type values.
const maxIDLength = 256

// ValidateID checks that a single coordinate component is safe to use as a
// path segment in the local repository and in a remote URL.
//
// Valid ids consist of ASCII letters, digits, '_', '-' and '.', and are not
// "." or "..". The field name is only used in the error message.
func ValidateID(field, id string) error {
	if id == "" {
		return New(ErrCodeInvalidCoordinate, "%s cannot be empty", field)
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidCoordinate, "%s too long (max %d characters)", field, maxIDLength)
	}
	if id == "." || id == ".." {
		return New(ErrCodeInvalidCoordinate, "invalid %s: %q", field, id)
	}
	for _, r := range id {
		if !isIDRune(r) {
			return New(ErrCodeInvalidCoordinate, "invalid %s: %q contains %q", field, id, r)
		}
	}
	return nil
}

func isIDRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '-', r == '.':
		return true
	}
	return false
}

// ValidateCoordinate validates the groupId and artifactId of a coordinate.
func ValidateCoordinate(groupID, artifactID string) error {
	if err := ValidateID("groupId", groupID); err != nil {
		return err
	}
	return ValidateID("artifactId", artifactID)
}

// ValidateArtifact validates every component that ends up in an artifact
// path. Empty classifier and type are allowed.
func ValidateArtifact(groupID, artifactID, version, classifier, typ string) error {
	if err := ValidateCoordinate(groupID, artifactID); err != nil {
		return err
	}
	if err := ValidateID("version", version); err != nil {
		return err
	}
	if classifier != "" {
		if err := ValidateID("classifier", classifier); err != nil {
			return err
		}
	}
	if typ != "" {
		if err := ValidateID("type", typ); err != nil {
			return err
		}
	}
	return nil
}

// ValidateURL validates a repository URL string.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
