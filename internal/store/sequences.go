package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

type CacheKind string

const (
	KindMySequence       CacheKind = "my"
	KindOpponentSequence CacheKind = "opponent"
	KindDrawnCards       CacheKind = "drawn"
)

// CacheKey identifies one cached sequence. GameType namespaces the key so two
// games never share a cache even if the backend reuses ids.
type CacheKey struct {
	GameType string
	GameID   string
	Kind     CacheKind
}

// String is the persisted key, e.g. simonsay_42_my_sequence.
func (k CacheKey) String() string {
	return fmt.Sprintf("%s_%s_%s_sequence", k.GameType, k.GameID, k.Kind)
}

// Sequences is the keyed sequence cache on top of a Store.
type Sequences struct {
	store Store
}

func NewSequences(s Store) *Sequences {
	return &Sequences{store: s}
}

// Load returns the cached tokens, or an empty slice if nothing is cached.
// A value that does not decode is reported so the caller can resync.
func (s *Sequences) Load(ctx context.Context, key CacheKey) ([]string, error) {
	raw, err := s.store.Get(ctx, key.String())
	if errors.Is(err, ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	var tokens []string
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if tokens == nil {
		tokens = []string{}
	}
	return tokens, nil
}

func (s *Sequences) Save(ctx context.Context, key CacheKey, tokens []string) error {
	if tokens == nil {
		tokens = []string{}
	}
	raw, err := json.Marshal(tokens)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, key.String(), raw)
}

func (s *Sequences) Drop(ctx context.Context, key CacheKey) error {
	return s.store.Delete(ctx, key.String())
}

// DropAll removes every listed kind for one game and reports all failures.
func (s *Sequences) DropAll(ctx context.Context, gameType, gameID string, kinds ...CacheKind) error {
	var errs error
	for _, kind := range kinds {
		key := CacheKey{GameType: gameType, GameID: gameID, Kind: kind}
		errs = multierr.Append(errs, s.Drop(ctx, key))
	}
	return errs
}
