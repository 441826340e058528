package pixpost

import (
	"fmt"
	"mime"
	"path"
	"strings"
)

// ObjectKey is the decomposed form of a storage key following the
// owner/postID/filename convention.
type ObjectKey struct {
	Owner    string
	PostID   string
	Filename string
}

// String rebuilds the storage key.
func (k ObjectKey) String() string {
	return k.Owner + "/" + k.PostID + "/" + k.Filename
}

// Prefix returns the storage prefix holding every object of the post.
func (k ObjectKey) Prefix() string {
	return k.Owner + "/" + k.PostID + "/"
}

// ParseObjectKey decomposes a storage key into owner, post ID and
// filename. A key with fewer than two path segments does not identify a
// post and yields ErrMalformedEvent. The filename may be empty and may
// itself contain slashes.
func ParseObjectKey(key string) (ObjectKey, error) {
	parts := strings.SplitN(key, "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return ObjectKey{}, fmt.Errorf("%w: key %q", ErrMalformedEvent, key)
	}

	k := ObjectKey{Owner: parts[0], PostID: parts[1]}
	if len(parts) == 3 {
		k.Filename = parts[2]
	}
	return k, nil
}

// ParseImageRef decomposes a stored image URI (s3://bucket/owner/postID/filename)
// back into its object key. Returns ErrMalformedEvent when the URI does
// not carry at least owner/postID/filename segments.
func ParseImageRef(ref string) (ObjectKey, error) {
	trimmed := ref
	if i := strings.Index(trimmed, "://"); i >= 0 {
		trimmed = trimmed[i+3:]
		// Drop the bucket segment
		if j := strings.Index(trimmed, "/"); j >= 0 {
			trimmed = trimmed[j+1:]
		}
	}

	parts := strings.Split(trimmed, "/")
	if len(parts) < 3 {
		return ObjectKey{}, fmt.Errorf("%w: image ref %q", ErrMalformedEvent, ref)
	}

	// The last three segments are owner/postID/filename
	return ObjectKey{
		Owner:    parts[len(parts)-3],
		PostID:   parts[len(parts)-2],
		Filename: parts[len(parts)-1],
	}, nil
}

// ImageURI builds the stored image URI for a key in the given bucket.
func ImageURI(bucket, key string) string {
	return "s3://" + bucket + "/" + key
}

// ContentTypeForFilename derives a content type from the filename
// extension, falling back to a generic binary type.
func ContentTypeForFilename(filename string) string {
	if ct := mime.TypeByExtension(path.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
