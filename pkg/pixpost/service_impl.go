package pixpost

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repository Repository
	objects    ObjectStore
	signer     URLSigner
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the post repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithObjectStore sets the blob store used for cascade deletes
func WithObjectStore(store ObjectStore) Option {
	return func(s *service) {
		s.objects = store
	}
}

// WithURLSigner sets the signed-URL issuer used for uploads and for
// resolving image URLs on list
func WithURLSigner(signer URLSigner) Option {
	return func(s *service) {
		s.signer = signer
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.objects == nil {
		return nil, fmt.Errorf("object store is required")
	}
	if s.signer == nil {
		return nil, fmt.Errorf("url signer is required")
	}

	return s, nil
}

func (s *service) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	if req.Owner == "" {
		return nil, ErrMissingOwner
	}

	post := &Post{
		Owner:     req.Owner,
		ID:        uuid.NewString(),
		Title:     req.Title,
		Body:      req.Body,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repository.CreatePost(ctx, post); err != nil {
		return nil, &PostError{
			Owner:  post.Owner,
			PostID: post.ID,
			Op:     "create",
			Err:    fmt.Errorf("%w: %w", ErrStoreWriteFailed, err),
		}
	}

	return post, nil
}

func (s *service) ListPosts(ctx context.Context, owner string) ([]PostView, error) {
	posts, err := s.repository.ListPosts(ctx, owner)
	if err != nil {
		return nil, &PostError{Owner: owner, Op: "list", Err: err}
	}

	views := make([]PostView, 0, len(posts))
	for _, post := range posts {
		view, err := s.viewOf(ctx, post)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	return views, nil
}

// viewOf resolves a post record into its list representation, turning the
// stored image reference into a signed download URL.
func (s *service) viewOf(ctx context.Context, post *Post) (PostView, error) {
	view := PostView{
		Owner:  post.Owner,
		ID:     post.ID,
		Title:  post.Title,
		Body:   post.Body,
		Labels: post.Labels,
	}
	if view.Labels == nil {
		view.Labels = []string{}
	}

	if post.ImageRef == "" {
		return view, nil
	}

	key, err := ParseImageRef(post.ImageRef)
	if err != nil {
		// A record with an undecomposable image ref should not poison the
		// whole listing; the view simply carries no image.
		slog.Warn("Skipping unresolvable image ref", "owner", post.Owner, "post_id", post.ID, "ref", post.ImageRef)
		return view, nil
	}

	url, err := s.signer.DownloadURL(ctx, SignRequest{
		Owner:       key.Owner,
		PostID:      key.PostID,
		Filename:    key.Filename,
		ContentType: ContentTypeForFilename(key.Filename),
	})
	if err != nil {
		return PostView{}, &PostError{Owner: post.Owner, PostID: post.ID, Op: "sign download", Err: err}
	}
	view.Image = url

	return view, nil
}

func (s *service) DeletePost(ctx context.Context, owner, postID string) error {
	if owner == "" {
		return ErrMissingOwner
	}

	post, err := s.repository.GetPost(ctx, owner, postID)
	if err != nil && !errors.Is(err, ErrPostNotFound) {
		return &PostError{Owner: owner, PostID: postID, Op: "get", Err: err}
	}

	// Blobs are removed first so a failed record delete leaves the record
	// visible and the whole operation retriable. The record is the source
	// of truth; orphaned blobs are tolerated.
	if post != nil && post.ImageRef != "" {
		prefix := ObjectKey{Owner: owner, PostID: postID}.Prefix()
		if err := s.objects.DeletePrefix(ctx, prefix); err != nil {
			slog.Warn("Failed to delete post objects", "prefix", prefix, "err", err)
		}
	}

	if err := s.repository.DeletePost(ctx, owner, postID); err != nil {
		return &PostError{
			Owner:  owner,
			PostID: postID,
			Op:     "delete",
			Err:    fmt.Errorf("%w: %w", ErrStoreDeleteFailed, err),
		}
	}

	return nil
}

func (s *service) UploadURL(ctx context.Context, req SignRequest) (string, error) {
	if req.Owner == "" {
		return "", ErrMissingOwner
	}

	url, err := s.signer.UploadURL(ctx, req)
	if err != nil {
		return "", &PostError{Owner: req.Owner, PostID: req.PostID, Op: "sign upload", Err: err}
	}

	return url, nil
}
