package pixpost

import "context"

// Service defines the synchronous post lifecycle API.
type Service interface {
	// CreatePost writes a new post with a fresh ID and no image
	CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error)

	// ListPosts returns views of one owner's posts, or of every post when
	// owner is empty, with image URLs resolved
	ListPosts(ctx context.Context, owner string) ([]PostView, error)

	// DeletePost removes the record and, best-effort, its stored objects
	DeletePost(ctx context.Context, owner, postID string) error

	// UploadURL issues a signed URL for a direct client upload
	UploadURL(ctx context.Context, req SignRequest) (string, error)
}
