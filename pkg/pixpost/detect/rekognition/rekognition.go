package rekognition

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/pixpost/pixpost/pkg/pixpost"
)

// Client is the subset of the Rekognition API the detector uses.
type Client interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// Detector implements pixpost.LabelDetector using Amazon Rekognition.
type Detector struct {
	client Client
}

// New creates a new Rekognition-backed label detector
func New(client Client) *Detector {
	return &Detector{client: client}
}

// DetectLabels classifies the referenced S3 object. Labels come back in
// the service's order, which is descending confidence.
func (d *Detector) DetectLabels(ctx context.Context, ref pixpost.ImageRef, params pixpost.DetectParams) ([]pixpost.Label, error) {
	out, err := d.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image: &types.Image{
			S3Object: &types.S3Object{
				Bucket: aws.String(ref.Bucket),
				Name:   aws.String(ref.Key),
			},
		},
		MaxLabels:     aws.Int32(params.MaxLabels),
		MinConfidence: aws.Float32(params.MinConfidence),
	})
	if err != nil {
		return nil, fmt.Errorf("detect labels for s3://%s/%s: %w", ref.Bucket, ref.Key, err)
	}

	labels := make([]pixpost.Label, 0, len(out.Labels))
	for _, label := range out.Labels {
		labels = append(labels, pixpost.Label{
			Name:       aws.ToString(label.Name),
			Confidence: aws.ToFloat32(label.Confidence),
		})
	}

	return labels, nil
}
