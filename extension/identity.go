package extension

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Identity is the normalized, case-insensitive identifier of an extension.
// Two identities that differ only in case denote the same extension; the
// normalized (lower-cased) form is the one used as a map key everywhere.
type Identity struct {
	value string
}

// NewIdentity creates an Identity with strict validation.
// A valid identity must:
// - Be non-empty after trimming
// - Be at most 128 characters long
// - Contain only alphanumeric characters, dots, underscores, and hyphens
func NewIdentity(id string) (Identity, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Identity{}, fmt.Errorf("extension identity cannot be empty")
	}

	if len(id) > 128 {
		return Identity{}, fmt.Errorf("extension identity too long (max 128 chars)")
	}

	if strings.ContainsAny(id, `/\`) {
		return Identity{}, fmt.Errorf("extension identity cannot contain path separators")
	}

	if strings.Contains(id, "..") {
		return Identity{}, fmt.Errorf("extension identity cannot contain parent directory references")
	}

	for _, ch := range id {
		if !isValidIdentityChar(ch) {
			return Identity{}, fmt.Errorf("invalid extension identity %q: must contain only alphanumeric characters, dots, underscores, and hyphens", id)
		}
	}

	return Identity{value: strings.ToLower(id)}, nil
}

func isValidIdentityChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '.' ||
		r == '_' ||
		r == '-'
}

// MustNewIdentity creates an Identity or panics
func MustNewIdentity(id string) Identity {
	i, err := NewIdentity(id)
	if err != nil {
		panic(err)
	}
	return i
}

// String returns the normalized string representation
func (i Identity) String() string {
	return i.value
}

// IsEmpty returns true if this is the zero value
func (i Identity) IsEmpty() bool {
	return i.value == ""
}

// Equals checks if two identities denote the same extension
func (i Identity) Equals(other Identity) bool {
	return i.value == other.value
}

// MarshalJSON implements json.Marshaler.
func (i Identity) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (i *Identity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid extension identity JSON: %w", err)
	}

	id, err := NewIdentity(s)
	if err != nil {
		return err
	}
	*i = id
	return nil
}
