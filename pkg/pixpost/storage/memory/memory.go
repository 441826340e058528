package memory

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/pixpost/pixpost/pkg/pixpost"
)

// Backend is an in-memory implementation of pixpost.ObjectStore and
// pixpost.URLSigner. Signed URLs are synthetic memory:// URLs so the list
// enrichment path can be exercised without a real blob store.
type Backend struct {
	mu      sync.RWMutex
	objects map[string][]byte
	types   map[string]string
	tags    map[string]map[string]string
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
		tags:    make(map[string]map[string]string),
	}
}

func (b *Backend) SetObjectTags(ctx context.Context, key string, tags map[string]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[key]; !exists {
		return &pixpost.StorageError{Key: key, Op: "tag", Err: errObjectNotFound}
	}

	tagsCopy := make(map[string]string, len(tags))
	for k, v := range tags {
		tagsCopy[k] = v
	}
	b.tags[key] = tagsCopy
	return nil
}

func (b *Backend) Upload(ctx context.Context, key, contentType string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[key] = data
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	b.types[key] = contentType
	return nil
}

func (b *Backend) ListPrefix(ctx context.Context, prefix string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var keys []string
	for key := range b.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (b *Backend) DeletePrefix(ctx context.Context, prefix string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for key := range b.objects {
		if strings.HasPrefix(key, prefix) {
			delete(b.objects, key)
			delete(b.types, key)
			delete(b.tags, key)
		}
	}
	return nil
}

// UploadURL returns a synthetic upload URL
func (b *Backend) UploadURL(ctx context.Context, req pixpost.SignRequest) (string, error) {
	return b.signedURL("put", req), nil
}

// DownloadURL returns a synthetic download URL
func (b *Backend) DownloadURL(ctx context.Context, req pixpost.SignRequest) (string, error) {
	return b.signedURL("get", req), nil
}

func (b *Backend) signedURL(method string, req pixpost.SignRequest) string {
	key := pixpost.ObjectKey{Owner: req.Owner, PostID: req.PostID, Filename: req.Filename}
	q := url.Values{}
	q.Set("method", method)
	if req.ContentType != "" {
		q.Set("content-type", req.ContentType)
	}
	return "memory://" + key.String() + "?" + q.Encode()
}

// ObjectTags returns the tags recorded for a key; used by tests.
func (b *Backend) ObjectTags(key string) map[string]string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	tags := make(map[string]string, len(b.tags[key]))
	for k, v := range b.tags[key] {
		tags[k] = v
	}
	return tags
}

var errObjectNotFound = errors.New("object not found")
