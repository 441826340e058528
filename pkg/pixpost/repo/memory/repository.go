package memory

import (
	"context"
	"sync"

	"github.com/pixpost/pixpost/pkg/pixpost"
)

// Repository implements pixpost.Repository using in-memory storage
type Repository struct {
	mu    sync.RWMutex
	posts map[string]map[string]*pixpost.Post // owner -> post ID -> post
}

// New creates a new in-memory repository
func New() pixpost.Repository {
	return &Repository{
		posts: make(map[string]map[string]*pixpost.Post),
	}
}

func (r *Repository) CreatePost(ctx context.Context, post *pixpost.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	owned := r.posts[post.Owner]
	if owned == nil {
		owned = make(map[string]*pixpost.Post)
		r.posts[post.Owner] = owned
	}

	// Store a copy to avoid external modifications
	postCopy := clonePost(post)
	owned[post.ID] = postCopy

	return nil
}

func (r *Repository) GetPost(ctx context.Context, owner, postID string) (*pixpost.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, exists := r.posts[owner][postID]
	if !exists {
		return nil, pixpost.ErrPostNotFound
	}

	return clonePost(post), nil
}

func (r *Repository) ListPosts(ctx context.Context, owner string) ([]*pixpost.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*pixpost.Post
	if owner != "" {
		for _, post := range r.posts[owner] {
			result = append(result, clonePost(post))
		}
		return result, nil
	}

	for _, owned := range r.posts {
		for _, post := range owned {
			result = append(result, clonePost(post))
		}
	}
	return result, nil
}

// SetPostImage mirrors a conditional-free attribute update: the record is
// created when absent and only image/labels are touched when present.
func (r *Repository) SetPostImage(ctx context.Context, owner, postID, imageRef string, labels []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	owned := r.posts[owner]
	if owned == nil {
		owned = make(map[string]*pixpost.Post)
		r.posts[owner] = owned
	}

	post, exists := owned[postID]
	if !exists {
		post = &pixpost.Post{Owner: owner, ID: postID}
		owned[postID] = post
	}

	post.ImageRef = imageRef
	post.Labels = append([]string(nil), labels...)

	return nil
}

func (r *Repository) DeletePost(ctx context.Context, owner, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.posts[owner], postID)
	return nil
}

func clonePost(post *pixpost.Post) *pixpost.Post {
	postCopy := *post
	postCopy.Labels = append([]string(nil), post.Labels...)
	return &postCopy
}
