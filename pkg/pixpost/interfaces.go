package pixpost

import (
	"context"
	"io"
)

// ObjectStore defines the blob-storage operations the service and the
// upload pipeline need. Keys follow the owner/postID/filename convention.
type ObjectStore interface {
	// SetObjectTags attaches tags to a stored object. Best-effort callers
	// may ignore failures.
	SetObjectTags(ctx context.Context, key string, tags map[string]string) error

	// Upload stores content directly under the given key
	Upload(ctx context.Context, key, contentType string, reader io.Reader) error

	// ListPrefix returns the keys of all objects under the given prefix
	ListPrefix(ctx context.Context, prefix string) ([]string, error)

	// DeletePrefix removes all objects under the given prefix
	DeletePrefix(ctx context.Context, prefix string) error
}

// Repository defines post-record persistence over a (owner, postID)
// composite key.
type Repository interface {
	CreatePost(ctx context.Context, post *Post) error

	// GetPost returns ErrPostNotFound when no record exists
	GetPost(ctx context.Context, owner, postID string) (*Post, error)

	// ListPosts returns one owner's posts, or every post when owner is
	// empty (full scan). No ordering is defined.
	ListPosts(ctx context.Context, owner string) ([]*Post, error)

	// SetPostImage writes the image reference and detected labels onto the
	// record, creating it if absent. Only those two attributes are touched;
	// re-applying the same values is a no-op (last-write-wins).
	SetPostImage(ctx context.Context, owner, postID, imageRef string, labels []string) error

	// DeletePost removes the record. Deleting an absent record succeeds.
	DeletePost(ctx context.Context, owner, postID string) error
}

// LabelDetector classifies a stored image into a bounded list of labels.
type LabelDetector interface {
	DetectLabels(ctx context.Context, ref ImageRef, params DetectParams) ([]Label, error)
}

// URLSigner issues short-lived upload/download URLs for objects addressed
// by their owning post and filename.
type URLSigner interface {
	UploadURL(ctx context.Context, req SignRequest) (string, error)
	DownloadURL(ctx context.Context, req SignRequest) (string, error)
}
