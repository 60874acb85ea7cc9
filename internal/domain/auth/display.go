package auth

import "strings"

// FallbackDisplayName is shown when neither a full name nor an email is available.
const FallbackDisplayName = "User"

// DisplayName derives the name shown for an identity. The first non-empty value wins:
// the provider-supplied full name, the local part of the email, then FallbackDisplayName.
func DisplayName(id Identity) string {
	if id.FullName != nil && *id.FullName != "" {
		return *id.FullName
	}
	if id.Email != nil {
		local, _, _ := strings.Cut(*id.Email, "@")
		if local != "" {
			return local
		}
	}
	return FallbackDisplayName
}

// EmailOrEmpty returns the identity email, or "" when absent.
func EmailOrEmpty(id Identity) string { return deref(id.Email) }

// AvatarOrEmpty returns the identity avatar URL, or "" when absent.
func AvatarOrEmpty(id Identity) string { return deref(id.AvatarURL) }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
