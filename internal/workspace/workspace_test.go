package workspace

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	testCases := []struct {
		name      string
		inputName string
		wantErr   bool
		errMsg    string
	}{
		{
			name:      "valid simple name",
			inputName: "studio",
			wantErr:   false,
		},
		{
			name:      "valid name with hyphens",
			inputName: "studio-1",
			wantErr:   false,
		},
		{
			name:      "valid name with numbers",
			inputName: "default-123",
			wantErr:   false,
		},
		{
			name:      "single character name",
			inputName: "a",
			wantErr:   false,
		},
		{
			name:      "empty name",
			inputName: "",
			wantErr:   true,
			errMsg:    "cannot be empty",
		},
		{
			name:      "name with uppercase",
			inputName: "Studio",
			wantErr:   true,
			errMsg:    "must be lowercase",
		},
		{
			name:      "name starting with hyphen",
			inputName: "-studio",
			wantErr:   true,
			errMsg:    "not at start/end",
		},
		{
			name:      "name ending with hyphen",
			inputName: "studio-",
			wantErr:   true,
			errMsg:    "not at start/end",
		},
		{
			name:      "name with underscore",
			inputName: "studio_a",
			wantErr:   true,
			errMsg:    "must be lowercase alphanumeric",
		},
		{
			name:      "name too long",
			inputName: "this-is-a-very-long-workspace-name-that-exceeds-the-maximum-length-allowed",
			wantErr:   true,
			errMsg:    "too long",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateName(tc.inputName)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestDiscover(t *testing.T) {
	ctx := context.Background()
	rdb := testRedis(t)

	t.Run("empty server has no workspaces", func(t *testing.T) {
		names, err := Discover(ctx, rdb)
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("workspaces come back sorted and deduplicated", func(t *testing.T) {
		require.NoError(t, rdb.Set(ctx, "racksmith:studio:thread:demo/osc", "x", 0).Err())
		require.NoError(t, rdb.Set(ctx, "racksmith:studio:entry:demo/osc:abc", "x", 0).Err())
		require.NoError(t, rdb.Set(ctx, "racksmith:bench:thread:demo/mixer", "x", 0).Err())
		require.NoError(t, rdb.Set(ctx, "unrelated:key", "x", 0).Err())

		names, err := Discover(ctx, rdb)
		require.NoError(t, err)
		assert.Equal(t, []string{"bench", "studio"}, names)
	})
}

func TestGenerateDefaultName(t *testing.T) {
	ctx := context.Background()
	rdb := testRedis(t)

	name, err := GenerateDefaultName(ctx, rdb)
	require.NoError(t, err)
	assert.Equal(t, "default-1", name)

	require.NoError(t, rdb.Set(ctx, "racksmith:default-1:thread:a/b", "x", 0).Err())
	require.NoError(t, rdb.Set(ctx, "racksmith:default-7:thread:a/b", "x", 0).Err())
	require.NoError(t, rdb.Set(ctx, "racksmith:studio:thread:a/b", "x", 0).Err())

	name, err = GenerateDefaultName(ctx, rdb)
	require.NoError(t, err)
	assert.Equal(t, "default-8", name)
}
