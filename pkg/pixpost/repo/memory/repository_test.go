package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixpost/pixpost/pkg/pixpost"
)

func TestCreateAndGetPost(t *testing.T) {
	repo := New()
	ctx := context.Background()

	post := &pixpost.Post{Owner: "u1", ID: "p1", Title: "T", Body: "B"}
	require.NoError(t, repo.CreatePost(ctx, post))

	got, err := repo.GetPost(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, "B", got.Body)

	// Stored record is insulated from caller mutation
	post.Title = "changed"
	got, err = repo.GetPost(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "T", got.Title)
}

func TestGetPostNotFound(t *testing.T) {
	repo := New()

	_, err := repo.GetPost(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, pixpost.ErrPostNotFound)
}

func TestListPosts(t *testing.T) {
	repo := New()
	ctx := context.Background()

	require.NoError(t, repo.CreatePost(ctx, &pixpost.Post{Owner: "u1", ID: "p1"}))
	require.NoError(t, repo.CreatePost(ctx, &pixpost.Post{Owner: "u1", ID: "p2"}))
	require.NoError(t, repo.CreatePost(ctx, &pixpost.Post{Owner: "u2", ID: "p3"}))

	owned, err := repo.ListPosts(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	all, err := repo.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := repo.ListPosts(ctx, "u3")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSetPostImage(t *testing.T) {
	repo := New()
	ctx := context.Background()

	t.Run("touches only image and labels", func(t *testing.T) {
		require.NoError(t, repo.CreatePost(ctx, &pixpost.Post{Owner: "u1", ID: "p1", Title: "T", Body: "B"}))
		require.NoError(t, repo.SetPostImage(ctx, "u1", "p1", "s3://b/u1/p1/a.jpg", []string{"Cat"}))

		got, err := repo.GetPost(ctx, "u1", "p1")
		require.NoError(t, err)
		assert.Equal(t, "T", got.Title)
		assert.Equal(t, "B", got.Body)
		assert.Equal(t, "s3://b/u1/p1/a.jpg", got.ImageRef)
		assert.Equal(t, []string{"Cat"}, got.Labels)
	})

	t.Run("re-applying the same values is a no-op", func(t *testing.T) {
		require.NoError(t, repo.SetPostImage(ctx, "u1", "p1", "s3://b/u1/p1/a.jpg", []string{"Cat"}))
		first, err := repo.GetPost(ctx, "u1", "p1")
		require.NoError(t, err)

		require.NoError(t, repo.SetPostImage(ctx, "u1", "p1", "s3://b/u1/p1/a.jpg", []string{"Cat"}))
		second, err := repo.GetPost(ctx, "u1", "p1")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("upserts a missing record", func(t *testing.T) {
		require.NoError(t, repo.SetPostImage(ctx, "u9", "p9", "s3://b/u9/p9/a.jpg", nil))

		got, err := repo.GetPost(ctx, "u9", "p9")
		require.NoError(t, err)
		assert.Equal(t, "s3://b/u9/p9/a.jpg", got.ImageRef)
	})
}

func TestDeletePost(t *testing.T) {
	repo := New()
	ctx := context.Background()

	require.NoError(t, repo.CreatePost(ctx, &pixpost.Post{Owner: "u1", ID: "p1"}))
	require.NoError(t, repo.DeletePost(ctx, "u1", "p1"))

	_, err := repo.GetPost(ctx, "u1", "p1")
	assert.ErrorIs(t, err, pixpost.ErrPostNotFound)

	// Deleting again still succeeds
	assert.NoError(t, repo.DeletePost(ctx, "u1", "p1"))
}
