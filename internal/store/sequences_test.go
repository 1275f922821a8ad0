package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey_String(t *testing.T) {
	cases := []struct {
		key  CacheKey
		want string
	}{
		{CacheKey{GameType: "simonsay", GameID: "42", Kind: KindMySequence}, "simonsay_42_my_sequence"},
		{CacheKey{GameType: "simonsay", GameID: "42", Kind: KindOpponentSequence}, "simonsay_42_opponent_sequence"},
		{CacheKey{GameType: "loteria", GameID: "9", Kind: KindDrawnCards}, "loteria_9_drawn_sequence"},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.key.String())
		})
	}
}

func TestSequences_LoadSaveDrop(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	seqs := NewSequences(mem)
	key := CacheKey{GameType: "simonsay", GameID: "1", Kind: KindMySequence}

	got, err := seqs.Load(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)

	require.NoError(t, seqs.Save(ctx, key, []string{"red", "blue"}))
	got, err = seqs.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []string{"red", "blue"}, got)

	require.NoError(t, seqs.Drop(ctx, key))
	got, err = seqs.Load(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSequences_LoadCorrupt(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	key := CacheKey{GameType: "simonsay", GameID: "1", Kind: KindMySequence}
	require.NoError(t, mem.Set(ctx, key.String(), []byte("nope")))

	_, err := NewSequences(mem).Load(ctx, key)
	require.Error(t, err)
}

func TestSequences_DropAll(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	seqs := NewSequences(mem)
	for _, kind := range []CacheKind{KindMySequence, KindOpponentSequence} {
		require.NoError(t, seqs.Save(ctx, CacheKey{GameType: "simonsay", GameID: "3", Kind: kind}, []string{"green"}))
	}
	require.NoError(t, seqs.Save(ctx, CacheKey{GameType: "simonsay", GameID: "4", Kind: KindMySequence}, []string{"red"}))

	require.NoError(t, seqs.DropAll(ctx, "simonsay", "3", KindMySequence, KindOpponentSequence))
	assert.ElementsMatch(t, []string{"simonsay_4_my_sequence"}, mem.Keys())
}
