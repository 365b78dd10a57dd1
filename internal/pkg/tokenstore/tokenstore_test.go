package tokenstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	revoked, err := s.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, "abc", time.Minute))
	require.NoError(t, s.Revoke(ctx, "expired", -time.Second))

	tests := []struct {
		jti  string
		want bool
	}{
		{jti: "abc", want: true},
		{jti: "expired", want: false},
		{jti: "other", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.jti, func(t *testing.T) {
			revoked, err := s.IsRevoked(ctx, tt.jti)
			require.NoError(t, err)
			assert.Equal(t, tt.want, revoked)
		})
	}
}

func TestMemoryStore_Expires(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Revoke(ctx, "short", 20*time.Millisecond))
	assert.Eventually(t, func() bool {
		revoked, _ := s.IsRevoked(ctx, "short")
		return !revoked
	}, time.Second, 10*time.Millisecond)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()
	s := NewRedisStore(rdb)

	mock.ExpectSet(revokedKeyPrefix+"abc", 1, time.Hour).SetVal("OK")
	require.NoError(t, s.Revoke(ctx, "abc", time.Hour))

	// expired tokens never reach redis
	require.NoError(t, s.Revoke(ctx, "old", 0))

	mock.ExpectExists(revokedKeyPrefix + "abc").SetVal(1)
	revoked, err := s.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	mock.ExpectExists(revokedKeyPrefix + "nope").SetVal(0)
	revoked, err = s.IsRevoked(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, revoked)

	mock.ExpectExists(revokedKeyPrefix + "down").SetErr(errors.New("connection refused"))
	_, err = s.IsRevoked(ctx, "down")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
