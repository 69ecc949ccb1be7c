package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/desync-labs/tx-manager/boc-submitter/internal/domain"
	"github.com/go-redis/redis"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestRedisStore_NextID(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Hour)
	ctx := context.Background()

	id, err := s.NextID(ctx, "wallet")
	require.NoError(t, err)
	require.Equal(t, "wallet-1", id)

	id, err = s.NextID(ctx, "bridge")
	require.NoError(t, err)
	require.Equal(t, "bridge-2", id)

	counter, err := mr.Get(counterKey)
	require.NoError(t, err)
	require.Equal(t, "2", counter)
}

func TestRedisStore_SaveAndGet(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Hour)
	ctx := context.Background()

	sub, err := domain.NewSubmission("wallet", 2, domain.NewPayload([]byte{0xb5, 0xee}))
	require.NoError(t, err)
	sub.Id = "wallet-7"
	sub.Status = domain.StatusRejected
	sub.ErrorCode = 33
	sub.RawResponse = `{"ok":false,"error":"exitcode","code":33}`

	require.NoError(t, s.Save(ctx, sub))

	require.True(t, mr.Exists("boc_submission:wallet-7"))
	require.Equal(t, time.Hour, mr.TTL("boc_submission:wallet-7"))

	raw, err := mr.Get("boc_submission:wallet-7")
	require.NoError(t, err)
	var stored map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	require.Equal(t, "b5ee", stored["payload"])
	require.Equal(t, "REJECTED", stored["status"])

	got, err := s.Get(ctx, "wallet-7")
	require.NoError(t, err)
	require.Equal(t, sub.Id, got.Id)
	require.Equal(t, domain.StatusRejected, got.Status)
	require.Equal(t, int64(33), got.ErrorCode)
	require.Equal(t, sub.RawResponse, got.RawResponse)
	require.Equal(t, []byte{0xb5, 0xee}, got.Payload.Bytes())
}

func TestRedisStore_GetNotFound(t *testing.T) {
	s, _ := newTestRedisStore(t, time.Hour)

	_, err := s.Get(context.Background(), "wallet-42")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_RecordExpires(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	sub, err := domain.NewSubmission("wallet", 1, domain.NewPayload([]byte{0x01}))
	require.NoError(t, err)
	sub.Id = "wallet-1"
	require.NoError(t, s.Save(ctx, sub))

	mr.FastForward(2 * time.Minute)

	_, err = s.Get(ctx, "wallet-1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Unavailable(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Hour)
	mr.Close()

	_, err := s.NextID(context.Background(), "wallet")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}
