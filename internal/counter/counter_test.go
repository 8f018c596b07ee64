package counter

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/storage/kv"
)

func newMiniredisService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewService(kv.FromRedis(rdb), "coffeecounter"), mr
}

func TestIncrementAndRead(t *testing.T) {
	svc, _ := newMiniredisService(t)
	ctx := context.Background()

	val, ok := svc.Increment(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(1), val)

	val, ok = svc.Increment(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(2), val)

	read, err := svc.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), read)
}

func TestReadMissingKeyIsZero(t *testing.T) {
	svc, _ := newMiniredisService(t)

	val, err := svc.Read(context.Background())
	require.NoError(t, err)
	assert.Zero(t, val)
}

func TestIncrementSwallowsStoreErrors(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectIncr("coffeecounter").SetErr(assert.AnError)

	svc := NewService(kv.FromRedis(rdb), "coffeecounter")
	val, ok := svc.Increment(context.Background())

	assert.False(t, ok)
	assert.Zero(t, val)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementWithoutStoreConfigured(t *testing.T) {
	svc := NewService(nil, "")

	val, ok := svc.Increment(context.Background())
	assert.False(t, ok)
	assert.Zero(t, val)

	_, err := svc.Read(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDefaultKey(t *testing.T) {
	svc, mr := newMiniredisService(t)
	// NewService applies the default key when none is given.
	assert.Equal(t, "coffeecounter", NewService(nil, "").Key)

	svc.Increment(context.Background())
	assert.True(t, mr.Exists("coffeecounter"))
}

func TestReadUnavailableStore(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("coffeecounter").SetErr(assert.AnError)

	svc := NewService(kv.FromRedis(rdb), "coffeecounter")
	_, err := svc.Read(context.Background())

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
