package secrets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingFetcher struct {
	values map[string]string
	calls  int
}

func (f *countingFetcher) Fetch(_ context.Context, name string) (string, error) {
	f.calls++
	if v, ok := f.values[name]; ok {
		return v, nil
	}
	return "", ErrSecretNotFound
}

func TestResolveSource(t *testing.T) {
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, "development"))
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, ""))
	assert.Equal(t, SourceVault, ResolveSource(SourceAuto, "production"))
	assert.Equal(t, SourceVault, ResolveSource(SourceVault, "development"))
}

func TestProvider_GetSecretOrEnv(t *testing.T) {
	fetcher := &countingFetcher{values: map[string]string{"jwt-secret": "from-vault"}}
	p := NewProviderWithFetcher(SourceVault, fetcher, zap.NewNop())

	t.Run("vault value when env is unset", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		v, err := p.GetSecretOrEnv(context.Background(), "jwt-secret", "JWT_SECRET")
		require.NoError(t, err)
		assert.Equal(t, "from-vault", v)
	})

	t.Run("env override wins", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "from-env")
		v, err := p.GetSecretOrEnv(context.Background(), "jwt-secret", "JWT_SECRET")
		require.NoError(t, err)
		assert.Equal(t, "from-env", v)
	})

	t.Run("missing secret falls back to default", func(t *testing.T) {
		t.Setenv("MISSING_ENV", "")
		v := p.GetSecretOrEnvWithDefault(context.Background(), "missing", "MISSING_ENV", "fallback")
		assert.Equal(t, "fallback", v)
	})

	assert.True(t, p.IsVaultEnabled())
}

func TestCachingFetcher(t *testing.T) {
	inner := &countingFetcher{values: map[string]string{"admin-api-key": "k"}}
	cache := NewCachingFetcher(inner, time.Minute)
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		v, err := cache.Fetch(context.Background(), "admin-api-key")
		require.NoError(t, err)
		assert.Equal(t, "k", v)
	}
	assert.Equal(t, 1, inner.calls)

	now = now.Add(2 * time.Minute)
	_, err := cache.Fetch(context.Background(), "admin-api-key")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)

	_, err = cache.Fetch(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}
