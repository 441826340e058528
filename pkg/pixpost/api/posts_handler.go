package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/pixpost/pixpost/pkg/pixpost"
)

// PostsHandler exposes the post lifecycle API over HTTP. The caller
// identity comes from the Authorization header and is used verbatim as
// the owner key; no verification happens here.
type PostsHandler struct {
	service pixpost.Service
}

func NewPostsHandler(service pixpost.Service) *PostsHandler {
	return &PostsHandler{service: service}
}

// Routes returns the router for the post endpoints
func (h *PostsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/posts", h.CreatePost)
	r.Get("/posts", h.ListPosts)
	r.Delete("/posts/{id}", h.DeletePost)
	r.Get("/signedUrlPut", h.SignedUploadURL)
	return r
}

// CreatePostRequest represents the request to create a post. Title and
// body are pointers so a missing field is distinguishable from an empty
// one: empty is accepted, absent is rejected.
type CreatePostRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

// ErrorResponse is the JSON body of every error reply
type ErrorResponse struct {
	Message string `json:"message"`
}

// SignedURLResponse carries an issued signed URL
type SignedURLResponse struct {
	URL string `json:"url"`
}

// DeleteResponse acknowledges a delete
type DeleteResponse struct {
	Status string `json:"status"`
}

func renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Message: message})
}

// identity extracts the caller identity header, replying 401 when absent
func identity(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner := r.Header.Get("Authorization")
	if owner == "" {
		renderError(w, r, http.StatusUnauthorized, "Authorization header is missing")
		return "", false
	}
	return owner, true
}

// CreatePost creates a new post for the calling identity
func (h *PostsHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	owner, ok := identity(w, r)
	if !ok {
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request", "error", err)
		renderError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == nil || req.Body == nil {
		renderError(w, r, http.StatusUnprocessableEntity, "title and body are required")
		return
	}

	post, err := h.service.CreatePost(r.Context(), pixpost.CreatePostRequest{
		Owner: owner,
		Title: *req.Title,
		Body:  *req.Body,
	})
	if err != nil {
		slog.Error("Failed to create post", "owner", owner, "error", err)
		renderError(w, r, http.StatusInternalServerError, "server error while saving the post")
		return
	}

	slog.Info("Post created", "owner", owner, "post_id", post.ID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, post)
}

// ListPosts lists every post, or only one user's posts when the user
// query parameter is present
func (h *PostsHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("user")

	views, err := h.service.ListPosts(r.Context(), owner)
	if err != nil {
		slog.Error("Failed to list posts", "owner", owner, "error", err)
		renderError(w, r, http.StatusInternalServerError, "server error while listing posts")
		return
	}

	render.JSON(w, r, views)
}

// DeletePost deletes the calling identity's post and its stored objects
func (h *PostsHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	owner, ok := identity(w, r)
	if !ok {
		return
	}
	postID := chi.URLParam(r, "id")

	if err := h.service.DeletePost(r.Context(), owner, postID); err != nil {
		slog.Error("Failed to delete post", "owner", owner, "post_id", postID, "error", err)
		renderError(w, r, http.StatusInternalServerError, "server error while deleting the post")
		return
	}

	slog.Info("Post deleted", "owner", owner, "post_id", postID)
	render.JSON(w, r, DeleteResponse{Status: "deleted"})
}

// SignedUploadURL issues a signed URL for a direct upload tied to a post
func (h *PostsHandler) SignedUploadURL(w http.ResponseWriter, r *http.Request) {
	owner, ok := identity(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	req := pixpost.SignRequest{
		Owner:       owner,
		PostID:      q.Get("postId"),
		Filename:    q.Get("filename"),
		ContentType: q.Get("filetype"),
	}
	if req.PostID == "" || req.Filename == "" {
		renderError(w, r, http.StatusUnprocessableEntity, "filename and postId are required")
		return
	}

	url, err := h.service.UploadURL(r.Context(), req)
	if err != nil {
		if errors.Is(err, pixpost.ErrMissingOwner) {
			renderError(w, r, http.StatusUnauthorized, "Authorization header is missing")
			return
		}
		slog.Error("Failed to sign upload URL", "owner", owner, "post_id", req.PostID, "error", err)
		renderError(w, r, http.StatusInternalServerError, "server error while signing upload URL")
		return
	}

	render.JSON(w, r, SignedURLResponse{URL: url})
}
