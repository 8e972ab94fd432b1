package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis implements only the commands the repository uses.
type fakeRedis struct {
	redis.Cmdable
	values map[string]string
	setErr error
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	if f.values == nil {
		f.values = make(map[string]string)
	}
	f.values[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func TestRedisStateRepositoryMissingKey(t *testing.T) {
	repo := NewRedisStateRepository(&fakeRedis{}, "")

	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestRedisStateRepositorySaveLoad(t *testing.T) {
	client := &fakeRedis{}
	repo := NewRedisStateRepository(client, "test:state")

	require.NoError(t, repo.Save(context.Background(), sampleDocument()))
	assert.Contains(t, client.values, "test:state")

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleDocument(), loaded)
}

func TestRedisStateRepositoryErrors(t *testing.T) {
	client := &fakeRedis{values: map[string]string{"registrar:state": "not json"}, setErr: errors.New("readonly")}
	repo := NewRedisStateRepository(client, "")

	_, err := repo.Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStateNotFound)

	err = repo.Save(context.Background(), sampleDocument())
	assert.ErrorContains(t, err, "readonly")
}
