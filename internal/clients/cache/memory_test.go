package cache

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MemoryCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	_, err := c.Get(ctx, "latest_rates")
	assert.True(t, errors.Is(err, ErrMiss))

	require.NoError(t, c.Set(ctx, "latest_rates", []byte("[]"), time.Minute))
	val, err := c.Get(ctx, "latest_rates")
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), val)

	require.NoError(t, c.Delete(ctx, "latest_rates"))
	require.NoError(t, c.Delete(ctx, "latest_rates"))
	_, err = c.Get(ctx, "latest_rates")
	assert.True(t, errors.Is(err, ErrMiss))
}

func Test_MemoryCache_ShouldExpireEntries(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemory()
	c.now = func() time.Time { return current }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 300*time.Second))

	current = current.Add(299 * time.Second)
	_, err := c.Get(ctx, "k")
	assert.NoError(t, err)

	current = current.Add(time.Second)
	_, err = c.Get(ctx, "k")
	assert.True(t, errors.Is(err, ErrMiss))
}

type backendConfig string

func (b backendConfig) Backend() string        { return string(b) }
func (b backendConfig) Timeout() time.Duration { return time.Second }

func Test_Open_ShouldDegradeToNil(t *testing.T) {
	assert.Nil(t, Open(backendConfig("none"), nil, nil))
	assert.Nil(t, Open(backendConfig("carrier-pigeon"), nil, nil))
	assert.IsType(t, &MemoryCache{}, Open(backendConfig("memory"), nil, nil))
}
