package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxablog/internal/config"
	"voxablog/internal/models"
)

func samplePosts() []models.Post {
	return []models.Post{
		{
			PostID:     "post-1",
			Title:      "Hi",
			Content:    models.Content(`{"root":{"children":[]}}`),
			Email:      "jane@x.com",
			CreatedAt:  time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			UpdatedAt:  time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			LikedUsers: []string{},
			Comments:   []models.Comment{},
		},
	}
}

func TestNewPostListCache_Defaults(t *testing.T) {
	c := NewPostListCache(nil, 0, "")

	assert.Equal(t, time.Minute, c.ttl)
	assert.Equal(t, "blogs:list:0:all", c.key(0, ""))
	assert.Equal(t, "blogs:list:7:author:jane@x.com", c.key(7, "jane@x.com"))
}

func TestPostListCache_NilClientIsAlwaysMiss(t *testing.T) {
	c := NewPostListCache(nil, time.Minute, "blogs")
	ctx := context.Background()

	c.Set(ctx, 0, "", samplePosts())
	posts, gen, ok := c.Get(ctx, "")
	assert.False(t, ok)
	assert.Nil(t, posts)
	assert.Equal(t, NoGeneration, gen)
	c.Invalidate(ctx)

	var nilCache *PostListCache
	_, _, ok = nilCache.Get(ctx, "")
	assert.False(t, ok)
}

func TestPostListCache_GetHit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := NewPostListCache(rdb, time.Minute, "blogs")

	b, err := json.Marshal(samplePosts())
	require.NoError(t, err)
	mock.ExpectGet("blogs:list:gen").SetVal("3")
	mock.ExpectGet("blogs:list:3:all").SetVal(string(b))

	posts, gen, ok := c.Get(context.Background(), "")

	require.True(t, ok)
	assert.Equal(t, int64(3), gen)
	require.Len(t, posts, 1)
	assert.Equal(t, "post-1", posts[0].PostID)
	assert.JSONEq(t, `{"root":{"children":[]}}`, string(posts[0].Content))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostListCache_GetMiss(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := NewPostListCache(rdb, time.Minute, "blogs")

	mock.ExpectGet("blogs:list:gen").RedisNil()
	mock.ExpectGet("blogs:list:0:author:jane@x.com").RedisNil()

	_, gen, ok := c.Get(context.Background(), "jane@x.com")

	assert.False(t, ok)
	assert.Equal(t, int64(0), gen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostListCache_GetGenerationError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := NewPostListCache(rdb, time.Minute, "blogs")

	mock.ExpectGet("blogs:list:gen").SetErr(errors.New("connection refused"))

	_, gen, ok := c.Get(context.Background(), "")
	assert.False(t, ok)
	assert.Equal(t, NoGeneration, gen)

	// nothing is written without a known generation
	c.Set(context.Background(), gen, "", samplePosts())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostListCache_GetCorruptedEntryIsDropped(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := NewPostListCache(rdb, time.Minute, "blogs")

	mock.ExpectGet("blogs:list:gen").SetVal("1")
	mock.ExpectGet("blogs:list:1:all").SetVal("not-json")
	mock.ExpectDel("blogs:list:1:all").SetVal(1)

	_, _, ok := c.Get(context.Background(), "")

	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostListCache_Set(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := NewPostListCache(rdb, time.Minute, "blogs")
	posts := samplePosts()

	b, err := json.Marshal(posts)
	require.NoError(t, err)

	mock.ExpectSet("blogs:list:2:all", b, time.Minute).SetVal("OK")

	c.Set(context.Background(), 2, "", posts)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostListCache_Invalidate(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := NewPostListCache(rdb, time.Minute, "blogs")

	mock.ExpectIncr("blogs:list:gen").SetVal(4)

	c.Invalidate(context.Background())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostListCache_InvalidateError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := NewPostListCache(rdb, time.Minute, "blogs")

	mock.ExpectIncr("blogs:list:gen").SetErr(errors.New("connection refused"))

	c.Invalidate(context.Background())

	assert.NoError(t, mock.ExpectationsWereMet())
}

// A listing read from the database before a concurrent mutation must not be
// served after that mutation's invalidation.
func TestPostListCache_LateSetAfterInvalidateIsNotServed(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := NewPostListCache(rdb, time.Minute, "blogs")
	ctx := context.Background()

	stale := samplePosts()
	b, err := json.Marshal(stale)
	require.NoError(t, err)

	// reader misses under generation 0 and goes to the database
	mock.ExpectGet("blogs:list:gen").RedisNil()
	mock.ExpectGet("blogs:list:0:all").RedisNil()
	// a writer invalidates while the reader is still querying
	mock.ExpectIncr("blogs:list:gen").SetVal(1)
	// the reader's late write lands under the retired generation
	mock.ExpectSet("blogs:list:0:all", b, time.Minute).SetVal("OK")
	// the next reader looks under generation 1 and misses
	mock.ExpectGet("blogs:list:gen").SetVal("1")
	mock.ExpectGet("blogs:list:1:all").RedisNil()

	_, gen, ok := c.Get(ctx, "")
	require.False(t, ok)

	c.Invalidate(ctx)
	c.Set(ctx, gen, "", stale)

	_, _, ok = c.Get(ctx, "")
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRedisClient_NoAddress(t *testing.T) {
	rdb, err := NewRedisClient(context.Background(), config.Redis{})

	assert.NoError(t, err)
	assert.Nil(t, rdb)
}
