package dynamo

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixpost/pixpost/pkg/pixpost"
)

// stubClient records the last input of each call and returns canned
// outputs.
type stubClient struct {
	putInput    *dynamodb.PutItemInput
	getInput    *dynamodb.GetItemInput
	getOutput   *dynamodb.GetItemOutput
	queryInput  *dynamodb.QueryInput
	queryOutput *dynamodb.QueryOutput
	scanInput   *dynamodb.ScanInput
	scanOutput  *dynamodb.ScanOutput
	updateInput *dynamodb.UpdateItemInput
	deleteInput *dynamodb.DeleteItemInput
}

func (c *stubClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	c.putInput = params
	return &dynamodb.PutItemOutput{}, nil
}

func (c *stubClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	c.getInput = params
	if c.getOutput != nil {
		return c.getOutput, nil
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (c *stubClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	c.queryInput = params
	if c.queryOutput != nil {
		return c.queryOutput, nil
	}
	return &dynamodb.QueryOutput{}, nil
}

func (c *stubClient) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	c.scanInput = params
	if c.scanOutput != nil {
		return c.scanOutput, nil
	}
	return &dynamodb.ScanOutput{}, nil
}

func (c *stubClient) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	c.updateInput = params
	return &dynamodb.UpdateItemOutput{}, nil
}

func (c *stubClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	c.deleteInput = params
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestNewRequiresTable(t *testing.T) {
	_, err := New(&stubClient{}, "")
	assert.Error(t, err)
}

func TestCreatePostItemShape(t *testing.T) {
	client := &stubClient{}
	repo, err := New(client, "posts")
	require.NoError(t, err)

	err = repo.CreatePost(context.Background(), &pixpost.Post{
		Owner: "u1",
		ID:    "p1",
		Title: "T",
		Body:  "B",
	})
	require.NoError(t, err)

	require.NotNil(t, client.putInput)
	assert.Equal(t, "posts", aws.ToString(client.putInput.TableName))

	item := client.putInput.Item
	assert.Equal(t, &types.AttributeValueMemberS{Value: "USER#u1"}, item["PK"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "POST#p1"}, item["SK"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "T"}, item["title"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "B"}, item["body"])
}

func TestGetPostNotFound(t *testing.T) {
	repo, err := New(&stubClient{}, "posts")
	require.NoError(t, err)

	_, err = repo.GetPost(context.Background(), "u1", "p1")
	assert.ErrorIs(t, err, pixpost.ErrPostNotFound)
}

func TestGetPostUnmarshalsItem(t *testing.T) {
	client := &stubClient{
		getOutput: &dynamodb.GetItemOutput{
			Item: map[string]types.AttributeValue{
				"PK":    &types.AttributeValueMemberS{Value: "USER#u1"},
				"SK":    &types.AttributeValueMemberS{Value: "POST#p1"},
				"title": &types.AttributeValueMemberS{Value: "T"},
				"body":  &types.AttributeValueMemberS{Value: "B"},
				"image": &types.AttributeValueMemberS{Value: "s3://b/u1/p1/a.jpg"},
				"labels": &types.AttributeValueMemberL{Value: []types.AttributeValue{
					&types.AttributeValueMemberS{Value: "Cat"},
					&types.AttributeValueMemberS{Value: "Dog"},
				}},
			},
		},
	}
	repo, err := New(client, "posts")
	require.NoError(t, err)

	post, err := repo.GetPost(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "u1", post.Owner)
	assert.Equal(t, "p1", post.ID)
	assert.Equal(t, "T", post.Title)
	assert.Equal(t, "s3://b/u1/p1/a.jpg", post.ImageRef)
	assert.Equal(t, []string{"Cat", "Dog"}, post.Labels)
}

func TestListPostsQueriesByOwner(t *testing.T) {
	client := &stubClient{}
	repo, err := New(client, "posts")
	require.NoError(t, err)

	_, err = repo.ListPosts(context.Background(), "u1")
	require.NoError(t, err)

	require.NotNil(t, client.queryInput)
	assert.Nil(t, client.scanInput)
	assert.Equal(t, "PK = :pk", aws.ToString(client.queryInput.KeyConditionExpression))
	assert.Equal(t,
		&types.AttributeValueMemberS{Value: "USER#u1"},
		client.queryInput.ExpressionAttributeValues[":pk"])
}

func TestListPostsScansWithoutOwner(t *testing.T) {
	client := &stubClient{}
	repo, err := New(client, "posts")
	require.NoError(t, err)

	_, err = repo.ListPosts(context.Background(), "")
	require.NoError(t, err)

	assert.NotNil(t, client.scanInput)
	assert.Nil(t, client.queryInput)
}

func TestSetPostImageUpdateExpression(t *testing.T) {
	client := &stubClient{}
	repo, err := New(client, "posts")
	require.NoError(t, err)

	err = repo.SetPostImage(context.Background(), "u1", "p1", "s3://b/u1/p1/a.jpg", []string{"Cat"})
	require.NoError(t, err)

	require.NotNil(t, client.updateInput)
	assert.Equal(t, "SET image = :image, labels = :labels", aws.ToString(client.updateInput.UpdateExpression))
	assert.Equal(t,
		&types.AttributeValueMemberS{Value: "USER#u1"},
		client.updateInput.Key["PK"])
	assert.Equal(t,
		&types.AttributeValueMemberS{Value: "s3://b/u1/p1/a.jpg"},
		client.updateInput.ExpressionAttributeValues[":image"])
}

func TestDeletePostKey(t *testing.T) {
	client := &stubClient{}
	repo, err := New(client, "posts")
	require.NoError(t, err)

	require.NoError(t, repo.DeletePost(context.Background(), "u1", "p1"))

	require.NotNil(t, client.deleteInput)
	assert.Equal(t,
		&types.AttributeValueMemberS{Value: "POST#p1"},
		client.deleteInput.Key["SK"])
}
