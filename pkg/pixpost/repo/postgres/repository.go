package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pixpost/pixpost/pkg/pixpost"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements pixpost.Repository using PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE posts (
//	    owner      text        NOT NULL,
//	    id         text        NOT NULL,
//	    title      text        NOT NULL DEFAULT '',
//	    body       text        NOT NULL DEFAULT '',
//	    image      text        NOT NULL DEFAULT '',
//	    labels     text[]      NOT NULL DEFAULT '{}',
//	    created_at timestamptz NOT NULL DEFAULT now(),
//	    PRIMARY KEY (owner, id)
//	);
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) pixpost.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) pixpost.Repository {
	return &Repository{db: pool}
}

func handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("post already exists")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (r *Repository) CreatePost(ctx context.Context, post *pixpost.Post) error {
	query := `
		INSERT INTO posts (owner, id, title, body, image, labels, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	labels := post.Labels
	if labels == nil {
		labels = []string{}
	}

	_, err := r.db.Exec(ctx, query,
		post.Owner, post.ID, post.Title, post.Body, post.ImageRef, labels, post.CreatedAt)
	if err != nil {
		return handlePostgresError("create post", err)
	}

	return nil
}

func (r *Repository) GetPost(ctx context.Context, owner, postID string) (*pixpost.Post, error) {
	query := `
		SELECT owner, id, title, body, image, labels, created_at
		FROM posts
		WHERE owner = $1 AND id = $2`

	post, err := scanPost(r.db.QueryRow(ctx, query, owner, postID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pixpost.ErrPostNotFound
		}
		return nil, handlePostgresError("get post", err)
	}

	return post, nil
}

func (r *Repository) ListPosts(ctx context.Context, owner string) ([]*pixpost.Post, error) {
	query := `
		SELECT owner, id, title, body, image, labels, created_at
		FROM posts`
	args := []interface{}{}
	if owner != "" {
		query += ` WHERE owner = $1`
		args = append(args, owner)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, handlePostgresError("list posts", err)
	}
	defer rows.Close()

	var posts []*pixpost.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, handlePostgresError("list posts", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError("list posts", err)
	}

	return posts, nil
}

// SetPostImage upserts the record touching only image and labels, which
// keeps the write idempotent and disjoint from title/body.
func (r *Repository) SetPostImage(ctx context.Context, owner, postID, imageRef string, labels []string) error {
	query := `
		INSERT INTO posts (owner, id, image, labels)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner, id)
		DO UPDATE SET image = EXCLUDED.image, labels = EXCLUDED.labels`

	if labels == nil {
		labels = []string{}
	}

	_, err := r.db.Exec(ctx, query, owner, postID, imageRef, labels)
	if err != nil {
		return handlePostgresError("set post image", err)
	}

	return nil
}

func (r *Repository) DeletePost(ctx context.Context, owner, postID string) error {
	// Deleting an absent record is a success; idempotence over strictness.
	_, err := r.db.Exec(ctx, `DELETE FROM posts WHERE owner = $1 AND id = $2`, owner, postID)
	if err != nil {
		return handlePostgresError("delete post", err)
	}

	return nil
}

func scanPost(row pgx.Row) (*pixpost.Post, error) {
	var post pixpost.Post
	var image string
	err := row.Scan(&post.Owner, &post.ID, &post.Title, &post.Body, &image, &post.Labels, &post.CreatedAt)
	if err != nil {
		return nil, err
	}
	post.ImageRef = image
	return &post, nil
}
