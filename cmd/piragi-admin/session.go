package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisadapter "github.com/piragi/knowledge-shell/internal/adapters/redis"
	"github.com/piragi/knowledge-shell/internal/bootstrap"
	domainauth "github.com/piragi/knowledge-shell/internal/domain/auth"
	"github.com/piragi/knowledge-shell/internal/ports"
)

// sessionAdmin is the part of the session store the admin commands use.
type sessionAdmin interface {
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Revoke(ctx context.Context, id string) (bool, error)
}

func openRedisSessions(ctx *commandContext) (sessionAdmin, func() error, error) {
	client, err := bootstrap.ConnectRedis(ctx.Ctx, bootstrap.RedisOptions{
		Config: ctx.Config.Redis,
		Logger: ctx.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	store := redisadapter.NewSessionStore(client, redisadapter.SessionStoreOptions{Prefix: ctx.Config.Redis.KeyPrefix})
	return store, client.Close, nil
}

func runSession(ctx *commandContext, args []string) error {
	if len(args) != 2 || args[1] == "" {
		return fmt.Errorf("%w: session revoke|show <id>", errUsage)
	}
	sub, id := args[0], args[1]
	if sub != "revoke" && sub != "show" {
		return fmt.Errorf("%w: unknown session subcommand %q", errUsage, sub)
	}

	store, closeFn, err := ctx.openSessions(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil {
			ctx.Logger.WarnContext(ctx.Ctx, "close session store", "error", cerr)
		}
	}()

	if sub == "show" {
		return showSession(ctx, store, id)
	}

	existed, err := store.Revoke(ctx.Ctx, id)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if !existed {
		return writef(ctx.Out, "session %s not found\n", id)
	}
	ctx.Logger.InfoContext(ctx.Ctx, "session revoked", "session_id", id)
	return writef(ctx.Out, "revoked session %s\n", id)
}

type sessionView struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	ExpiresAt   string `json:"expires_at"`
}

func showSession(ctx *commandContext, store sessionAdmin, id string) error {
	sess, err := store.Get(ctx.Ctx, id)
	if errors.Is(err, ports.ErrSessionNotFound) {
		return writef(ctx.Out, "session %s not found\n", id)
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	identity := sess.Identity()
	enc := json.NewEncoder(ctx.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(sessionView{
		ID:          sess.ID,
		UserID:      sess.UserID,
		DisplayName: domainauth.DisplayName(identity),
		Email:       domainauth.EmailOrEmpty(identity),
		ExpiresAt:   sess.ExpiresAt.UTC().Format(time.RFC3339),
	})
}
