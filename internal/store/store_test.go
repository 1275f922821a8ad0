package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackends_GetSetDelete(t *testing.T) {
	ctx := context.Background()

	backends := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemory() },
		"file": func(t *testing.T) Store {
			f, err := OpenFile(filepath.Join(t.TempDir(), "local.json"))
			require.NoError(t, err)
			return f
		},
	}
	if dsn := os.Getenv("GAMESYNC_TEST_POSTGRES_DSN"); dsn != "" {
		backends["postgres"] = func(t *testing.T) Store {
			g, err := OpenGorm(dsn)
			require.NoError(t, err)
			return g
		}
	}
	if url := os.Getenv("GAMESYNC_TEST_REDIS_URL"); url != "" {
		backends["redis"] = func(t *testing.T) Store {
			r, err := OpenRedis(ctx, url)
			require.NoError(t, err)
			return r
		}
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()

			_, err := s.Get(ctx, "accessToken")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, "accessToken", []byte("abc")))
			v, err := s.Get(ctx, "accessToken")
			require.NoError(t, err)
			assert.Equal(t, "abc", string(v))

			require.NoError(t, s.Set(ctx, "accessToken", []byte("def")))
			v, err = s.Get(ctx, "accessToken")
			require.NoError(t, err)
			assert.Equal(t, "def", string(v))

			require.NoError(t, s.Delete(ctx, "accessToken"))
			_, err = s.Get(ctx, "accessToken")
			require.ErrorIs(t, err, ErrNotFound)

			// deleting twice is fine
			require.NoError(t, s.Delete(ctx, "accessToken"))
		})
	}
}

func TestFile_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "local.json")

	f, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, "simonsay_7_my_sequence", []byte(`["red"]`)))

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	v, err := reopened.Get(ctx, "simonsay_7_my_sequence")
	require.NoError(t, err)
	assert.JSONEq(t, `["red"]`, string(v))
}

func TestFile_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := OpenFile(path)
	require.Error(t, err)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "cassandra"})
	require.Error(t, err)
}
