package auth

// Package auth contains domain-level types for identities and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Identity represents the authenticated principal returned by a session provider.
// Adapters map provider-specific claims into this shape. Optional fields are nil
// when the provider did not supply them; a non-nil empty string means "present but empty".
type Identity struct {
	UserID    string // stable per account (e.g., OIDC sub or Supabase user id)
	FullName  *string
	Email     *string
	AvatarURL *string
	ExpiresAt time.Time // absolute expiry from the provider, zero when unknown
}

// Session is the server-side record we persist for a user who logged in through
// the OIDC or dev flow. ID is an opaque session identifier stored in the session cookie.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FullName  *string   `json:"full_name,omitempty"`
	Email     *string   `json:"email,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Identity returns the principal carried by the session.
func (s Session) Identity() Identity {
	return Identity{
		UserID:    s.UserID,
		FullName:  s.FullName,
		Email:     s.Email,
		AvatarURL: s.AvatarURL,
		ExpiresAt: s.ExpiresAt,
	}
}

// Expired reports whether the session is past its expiry at the given instant.
func (s Session) Expired(now time.Time) bool { return now.After(s.ExpiresAt) }

// StringPtr returns a pointer to v, or nil when v is empty.
// Adapters use it to map "claim missing" and "claim empty" to absent.
func StringPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
