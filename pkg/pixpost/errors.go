package pixpost

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrPostNotFound indicates a post was not found
	ErrPostNotFound = errors.New("post not found")

	// ErrMissingOwner indicates no caller identity was supplied
	ErrMissingOwner = errors.New("owner identity is required")

	// ErrMalformedEvent indicates an upload notification whose key does not
	// decompose into owner/postID. Permanent; not worth retrying.
	ErrMalformedEvent = errors.New("malformed upload event")

	// ErrDetectionFailed indicates the label detection call failed
	ErrDetectionFailed = errors.New("label detection failed")

	// ErrReconcileFailed indicates the annotated result could not be written
	// back to the post record
	ErrReconcileFailed = errors.New("annotation reconcile failed")

	// ErrStoreWriteFailed indicates a metadata record write failed
	ErrStoreWriteFailed = errors.New("metadata store write failed")

	// ErrStoreDeleteFailed indicates a metadata record delete failed
	ErrStoreDeleteFailed = errors.New("metadata store delete failed")
)

// PostError represents an error related to post operations
type PostError struct {
	Owner  string
	PostID string
	Op     string
	Err    error
}

func (e *PostError) Error() string {
	return fmt.Sprintf("post operation %s failed for %s/%s: %v", e.Op, e.Owner, e.PostID, e.Err)
}

func (e *PostError) Unwrap() error {
	return e.Err
}

// PipelineError represents an error in the upload annotation pipeline
type PipelineError struct {
	Bucket string
	Key    string
	Step   string
	Err    error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline step %s failed for s3://%s/%s: %v", e.Step, e.Bucket, e.Key, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to blob storage operations
type StorageError struct {
	Key string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
