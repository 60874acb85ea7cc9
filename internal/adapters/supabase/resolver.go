// Package supabase resolves Supabase access tokens to identities, either by
// asking the Supabase Auth API or by verifying the token locally.
package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/piragi/knowledge-shell/internal/domain/auth"
	"github.com/piragi/knowledge-shell/internal/ports"
	"golang.org/x/sync/singleflight"
)

const maxUserResponseBytes = 1 << 20

// StatusError is returned when the Auth API answers with an unexpected status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("supabase auth: unexpected status %d", e.Code)
}

// ResolverConfig configures the remote resolver.
type ResolverConfig struct {
	URL     string // project URL, e.g. https://xyz.supabase.co
	AnonKey string
	Timeout time.Duration // default 5s
	Client  *http.Client
	Logger  *slog.Logger
}

var _ ports.SessionResolver = (*Resolver)(nil)

// Resolver calls GET /auth/v1/user. Concurrent calls for the same token share one request.
type Resolver struct {
	userURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
	group   singleflight.Group
}

// NewResolver builds a remote resolver. Callers should pass a validated config.
func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, errors.New("supabase url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("supabase url: %w", err)
	}
	if cfg.AnonKey == "" {
		return nil, errors.New("supabase anon key is required")
	}

	hc := cfg.Client
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		userURL: base + "/auth/v1/user",
		apiKey:  cfg.AnonKey,
		client:  hc,
		logger:  logger.With("component", "supabase_resolver"),
	}, nil
}

// Resolve returns the identity for an access token, nil for a missing or rejected
// token, and an error when the Auth API cannot give an answer.
func (r *Resolver) Resolve(ctx context.Context, accessToken string) (*domainauth.Identity, error) {
	if accessToken == "" {
		return nil, nil
	}

	// The shared call must not die with whichever caller started it.
	ch := r.group.DoChan(accessToken, func() (any, error) {
		return r.fetchUser(context.WithoutCancel(ctx), accessToken)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		id, _ := res.Val.(*domainauth.Identity)
		if id == nil {
			return nil, nil
		}
		out := *id
		return &out, nil
	}
}

func (r *Resolver) fetchUser(ctx context.Context, accessToken string) (*domainauth.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.userURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase request: %w", err)
	}
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase get user: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		r.logger.DebugContext(ctx, "supabase rejected access token", "status", resp.StatusCode)
		return nil, nil
	default:
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var u userResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxUserResponseBytes)).Decode(&u); err != nil {
		return nil, fmt.Errorf("decode supabase user: %w", err)
	}
	if u.ID == "" {
		return nil, errors.New("decode supabase user: missing id")
	}
	id := u.identity()
	return &id, nil
}

// userMetadata is the free-form metadata Supabase fills from the OAuth provider.
// Only full_name and avatar_url are read; other keys such as name or picture are ignored.
type userMetadata struct {
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

type userResponse struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	UserMetadata userMetadata `json:"user_metadata"`
}

func (u userResponse) identity() domainauth.Identity {
	return domainauth.Identity{
		UserID:    u.ID,
		FullName:  domainauth.StringPtr(u.UserMetadata.FullName),
		Email:     domainauth.StringPtr(u.Email),
		AvatarURL: domainauth.StringPtr(u.UserMetadata.AvatarURL),
	}
}
