package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/pixpost/pixpost/pkg/pixpost"
)

// Client is the subset of the DynamoDB API the repository uses. It allows
// substituting a stub client in tests.
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Repository implements pixpost.Repository over a single DynamoDB table
// keyed by PK=USER#<owner>, SK=POST#<postID>.
type Repository struct {
	client Client
	table  string
}

// New creates a new DynamoDB repository for the given table
func New(client Client, table string) (pixpost.Repository, error) {
	if table == "" {
		return nil, errors.New("table name is required")
	}
	return &Repository{client: client, table: table}, nil
}

// item is the wire shape of a post record.
type item struct {
	PK        string   `dynamodbav:"PK"`
	SK        string   `dynamodbav:"SK"`
	Title     string   `dynamodbav:"title"`
	Body      string   `dynamodbav:"body"`
	Image     string   `dynamodbav:"image,omitempty"`
	Labels    []string `dynamodbav:"labels,omitempty"`
	CreatedAt string   `dynamodbav:"created_at,omitempty"`
}

func itemOf(post *pixpost.Post) item {
	it := item{
		PK:     pixpost.OwnerKeyPrefix + post.Owner,
		SK:     pixpost.PostKeyPrefix + post.ID,
		Title:  post.Title,
		Body:   post.Body,
		Image:  post.ImageRef,
		Labels: post.Labels,
	}
	if !post.CreatedAt.IsZero() {
		it.CreatedAt = post.CreatedAt.UTC().Format(time.RFC3339)
	}
	return it
}

func (it item) post() *pixpost.Post {
	post := &pixpost.Post{
		Owner:    strings.TrimPrefix(it.PK, pixpost.OwnerKeyPrefix),
		ID:       strings.TrimPrefix(it.SK, pixpost.PostKeyPrefix),
		Title:    it.Title,
		Body:     it.Body,
		ImageRef: it.Image,
		Labels:   it.Labels,
	}
	if it.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, it.CreatedAt); err == nil {
			post.CreatedAt = t
		}
	}
	return post
}

func (r *Repository) key(owner, postID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pixpost.OwnerKeyPrefix + owner},
		"SK": &types.AttributeValueMemberS{Value: pixpost.PostKeyPrefix + postID},
	}
}

func (r *Repository) CreatePost(ctx context.Context, post *pixpost.Post) error {
	av, err := attributevalue.MarshalMap(itemOf(post))
	if err != nil {
		return fmt.Errorf("marshal post: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      av,
	})
	if err != nil {
		return wrapDynamoError("put item", err)
	}

	return nil
}

func (r *Repository) GetPost(ctx context.Context, owner, postID string) (*pixpost.Post, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       r.key(owner, postID),
	})
	if err != nil {
		return nil, wrapDynamoError("get item", err)
	}
	if len(out.Item) == 0 {
		return nil, pixpost.ErrPostNotFound
	}

	var it item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal post: %w", err)
	}

	return it.post(), nil
}

func (r *Repository) ListPosts(ctx context.Context, owner string) ([]*pixpost.Post, error) {
	if owner != "" {
		return r.queryOwner(ctx, owner)
	}
	return r.scanAll(ctx)
}

func (r *Repository) queryOwner(ctx context.Context, owner string) ([]*pixpost.Post, error) {
	var posts []*pixpost.Post

	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pixpost.OwnerKeyPrefix + owner},
		},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, wrapDynamoError("query", err)
		}
		items, err := unmarshalPosts(page.Items)
		if err != nil {
			return nil, err
		}
		posts = append(posts, items...)
	}

	return posts, nil
}

// scanAll reads the whole table. Unbounded by design; acceptable at demo
// scale only.
func (r *Repository) scanAll(ctx context.Context) ([]*pixpost.Post, error) {
	var posts []*pixpost.Post

	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.table),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, wrapDynamoError("scan", err)
		}
		items, err := unmarshalPosts(page.Items)
		if err != nil {
			return nil, err
		}
		posts = append(posts, items...)
	}

	return posts, nil
}

// SetPostImage is an upsert limited to the image and labels attributes,
// matching UpdateItem semantics: re-applying the same values leaves the
// record unchanged.
func (r *Repository) SetPostImage(ctx context.Context, owner, postID, imageRef string, labels []string) error {
	if labels == nil {
		labels = []string{}
	}
	labelsAV, err := attributevalue.Marshal(labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.table),
		Key:              r.key(owner, postID),
		UpdateExpression: aws.String("SET image = :image, labels = :labels"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":image":  &types.AttributeValueMemberS{Value: imageRef},
			":labels": labelsAV,
		},
	})
	if err != nil {
		return wrapDynamoError("update item", err)
	}

	return nil
}

func (r *Repository) DeletePost(ctx context.Context, owner, postID string) error {
	// DeleteItem succeeds for absent keys, which gives delete idempotence
	// for free.
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       r.key(owner, postID),
	})
	if err != nil {
		return wrapDynamoError("delete item", err)
	}

	return nil
}

func unmarshalPosts(items []map[string]types.AttributeValue) ([]*pixpost.Post, error) {
	posts := make([]*pixpost.Post, 0, len(items))
	for _, raw := range items {
		var it item
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, fmt.Errorf("unmarshal post: %w", err)
		}
		posts = append(posts, it.post())
	}
	return posts, nil
}

func wrapDynamoError(op string, err error) error {
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%s: table does not exist: %w", op, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s: %w", op, apiErr.ErrorCode(), err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
