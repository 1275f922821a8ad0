package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/DoyleJ11/gamesync/internal/store"
)

const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
)

var ErrNoToken = errors.New("no access token")
var ErrNoUserID = errors.New("access token carries no user id")

// Tokens reads and writes the session tokens kept in the local store.
// Refreshing them is the login flow's business, not ours.
type Tokens struct {
	store store.Store
}

func NewTokens(s store.Store) *Tokens {
	return &Tokens{store: s}
}

func (t *Tokens) AccessToken(ctx context.Context) (string, error) {
	raw, err := t.store.Get(ctx, AccessTokenKey)
	if errors.Is(err, store.ErrNotFound) || (err == nil && len(raw) == 0) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (t *Tokens) Set(ctx context.Context, access, refresh string) error {
	if err := t.store.Set(ctx, AccessTokenKey, []byte(access)); err != nil {
		return err
	}
	if refresh == "" {
		return nil
	}
	return t.store.Set(ctx, RefreshTokenKey, []byte(refresh))
}

func (t *Tokens) Clear(ctx context.Context) error {
	if err := t.store.Delete(ctx, AccessTokenKey); err != nil {
		return err
	}
	return t.store.Delete(ctx, RefreshTokenKey)
}

// LocalUserID resolves the caller's identity from the stored access token.
func (t *Tokens) LocalUserID(ctx context.Context) (int, error) {
	tok, err := t.AccessToken(ctx)
	if err != nil {
		return 0, err
	}
	return UserID(tok)
}

// claim names the backend has used for the user id, in lookup order
var userIDClaims = []string{"userId", "user_id", "id", "sub"}

// UserID reads the user id claim of a JWT. The signature is NOT verified:
// the backend is the one that trusts the token.
func UserID(token string) (int, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return 0, fmt.Errorf("parse access token: %w", err)
	}
	for _, name := range userIDClaims {
		switch v := claims[name].(type) {
		case float64:
			return int(v), nil
		case string:
			id, err := strconv.Atoi(v)
			if err != nil {
				return 0, fmt.Errorf("claim %s: %w", name, err)
			}
			return id, nil
		}
	}
	return 0, ErrNoUserID
}
