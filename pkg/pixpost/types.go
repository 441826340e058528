package pixpost

import "time"

// Tag keys written onto uploaded objects so the owning post can be
// recovered from storage metadata alone.
const (
	TagKeyOwner = "PK"
	TagKeyPost  = "SK"
)

// Key prefixes used both for object tags and for metadata-store keys.
const (
	OwnerKeyPrefix = "USER#"
	PostKeyPrefix  = "POST#"
)

// Label detection parameters. Every upload is annotated with the same
// bounds regardless of image size or content.
const (
	MaxUploadLabels          = 5
	MinUploadLabelConfidence = 0.75
)

// Post is the central record: a title/body pair keyed by (owner, id).
// ImageRef and Labels stay empty until the upload pipeline has processed
// an image for the post; callers must treat their absence as normal.
type Post struct {
	Owner     string    `json:"owner"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	ImageRef  string    `json:"image_ref,omitempty"`
	Labels    []string  `json:"labels,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PostView is the list representation of a post. Image is a resolved,
// short-lived download URL (empty when no image is attached) and Labels
// is never nil.
type PostView struct {
	Owner  string   `json:"user"`
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Image  string   `json:"image"`
	Labels []string `json:"labels"`
}

// UploadNotification is one storage object-created event. Key must
// already be URL-decoded.
type UploadNotification struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// ImageRef addresses a stored image for label detection.
type ImageRef struct {
	Bucket string
	Key    string
}

// Label is one detected label with its confidence score. Only the name
// is persisted on the post.
type Label struct {
	Name       string
	Confidence float32
}

// DetectParams bounds a label detection call.
type DetectParams struct {
	MaxLabels     int32
	MinConfidence float32
}
