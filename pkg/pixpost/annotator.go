package pixpost

import (
	"context"
	"fmt"
	"log/slog"
)

// Annotator turns raw object-created notifications into annotated post
// records: it tags the stored object, runs label detection and reconciles
// the result into the post's metadata.
//
// Handle is safe under at-least-once delivery: every step is either
// idempotent or best-effort, so duplicate notifications converge on the
// same record state.
type Annotator struct {
	objects  ObjectStore
	repo     Repository
	detector LabelDetector
}

// NewAnnotator creates an Annotator over the given collaborators.
func NewAnnotator(objects ObjectStore, repo Repository, detector LabelDetector) (*Annotator, error) {
	if objects == nil {
		return nil, fmt.Errorf("object store is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if detector == nil {
		return nil, fmt.Errorf("label detector is required")
	}

	return &Annotator{objects: objects, repo: repo, detector: detector}, nil
}

// Handle processes one upload notification. The notification key must be
// URL-decoded. Errors other than tagging failures are returned so the
// triggering transport can redeliver; malformed keys are permanent and
// should be dead-lettered instead.
func (a *Annotator) Handle(ctx context.Context, n UploadNotification) error {
	key, err := ParseObjectKey(n.Key)
	if err != nil {
		return err
	}

	slog.Info("Processing upload", "bucket", n.Bucket, "key", n.Key, "owner", key.Owner, "post_id", key.PostID)

	// Tagging makes the owning post recoverable from storage metadata
	// alone; the record update below does not depend on it.
	tags := map[string]string{
		TagKeyOwner: OwnerKeyPrefix + key.Owner,
		TagKeyPost:  PostKeyPrefix + key.PostID,
	}
	if err := a.objects.SetObjectTags(ctx, n.Key, tags); err != nil {
		slog.Warn("Failed to tag object", "key", n.Key, "err", err)
	}

	labels, err := a.detector.DetectLabels(ctx, ImageRef{Bucket: n.Bucket, Key: n.Key}, DetectParams{
		MaxLabels:     MaxUploadLabels,
		MinConfidence: MinUploadLabelConfidence,
	})
	if err != nil {
		return &PipelineError{
			Bucket: n.Bucket,
			Key:    n.Key,
			Step:   "detect",
			Err:    fmt.Errorf("%w: %w", ErrDetectionFailed, err),
		}
	}

	names := make([]string, 0, len(labels))
	for _, label := range labels {
		names = append(names, label.Name)
	}
	slog.Info("Labels detected", "key", n.Key, "labels", names)

	if err := a.repo.SetPostImage(ctx, key.Owner, key.PostID, ImageURI(n.Bucket, n.Key), names); err != nil {
		return &PipelineError{
			Bucket: n.Bucket,
			Key:    n.Key,
			Step:   "reconcile",
			Err:    fmt.Errorf("%w: %w", ErrReconcileFailed, err),
		}
	}

	return nil
}
