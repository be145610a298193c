package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/internship-api/pkg/errors"
)

func TestCacheRepositoryNilClient(t *testing.T) {
	repo := NewCacheRepository(nil, "internship:")
	ctx := context.Background()

	var dest []string
	err := repo.Get(ctx, "roles:all", &dest)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "roles:all", []string{"Admin"}, time.Minute))
	assert.NoError(t, repo.Delete(ctx, "roles:all"))
	assert.NoError(t, repo.Ping(ctx))
}

func TestCacheRepositoryUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })
	repo := NewCacheRepository(client, "internship:")
	ctx := context.Background()

	var dest []string
	err := repo.Get(ctx, "roles:all", &dest)
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.Error(t, repo.Set(ctx, "roles:all", []string{"Admin"}, time.Minute))
	assert.Error(t, repo.Ping(ctx))
	assert.NoError(t, repo.Delete(ctx))
}
