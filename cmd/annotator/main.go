// Command annotator is the Lambda entrypoint of the upload pipeline. It
// receives S3 object-created events, URL-decodes the object keys and
// drives the pixpost Annotator with real DynamoDB, S3 and Rekognition
// clients.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsrekognition "github.com/aws/aws-sdk-go-v2/service/rekognition"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pixpost/pixpost/pkg/pixpost"
	"github.com/pixpost/pixpost/pkg/pixpost/detect/rekognition"
	"github.com/pixpost/pixpost/pkg/pixpost/repo/dynamo"
	"github.com/pixpost/pixpost/pkg/pixpost/storage/s3"
)

func main() {
	annotator, err := buildAnnotator(context.Background())
	if err != nil {
		slog.Error("Failed to build annotator", "err", err)
		os.Exit(1)
	}

	lambda.Start(func(ctx context.Context, event events.S3Event) error {
		return handle(ctx, annotator, event)
	})
}

func buildAnnotator(ctx context.Context) (*pixpost.Annotator, error) {
	table := os.Getenv("TABLE")
	if table == "" {
		return nil, fmt.Errorf("TABLE environment variable is required")
	}
	bucket := os.Getenv("BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("BUCKET environment variable is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	repo, err := dynamo.New(dynamodb.NewFromConfig(awsCfg), table)
	if err != nil {
		return nil, err
	}

	// Single-bucket deployment: notifications come from the same bucket
	// the store is configured with.
	store := s3.NewWithClient(awss3.NewFromConfig(awsCfg), bucket, 0)
	detector := rekognition.New(awsrekognition.NewFromConfig(awsCfg))

	return pixpost.NewAnnotator(store, repo, detector)
}

// handle processes every record of the event. The original notification
// key is URL-encoded with + for spaces.
func handle(ctx context.Context, annotator *pixpost.Annotator, event events.S3Event) error {
	for _, record := range event.Records {
		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			return fmt.Errorf("%w: undecodable key %q", pixpost.ErrMalformedEvent, record.S3.Object.Key)
		}

		err = annotator.Handle(ctx, pixpost.UploadNotification{
			Bucket: record.S3.Bucket.Name,
			Key:    key,
		})
		if err != nil {
			return err
		}
	}

	return nil
}
