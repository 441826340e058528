package pixpost

// CreatePostRequest contains parameters for creating a post. Owner is the
// caller-supplied identity and is used verbatim as the partition key.
type CreatePostRequest struct {
	Owner string
	Title string
	Body  string
}

// SignRequest contains parameters for issuing a signed upload or download
// URL. The object key is derived as owner/postID/filename.
type SignRequest struct {
	Owner       string
	PostID      string
	Filename    string
	ContentType string
}
