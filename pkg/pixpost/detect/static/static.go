package static

import (
	"context"

	"github.com/pixpost/pixpost/pkg/pixpost"
)

// Detector implements pixpost.LabelDetector with a fixed label set. It
// backs local development and the memory deployment mode, where no real
// detection service is available.
type Detector struct {
	labels []pixpost.Label
}

// New creates a detector that always returns the given labels
func New(labels ...pixpost.Label) *Detector {
	return &Detector{labels: labels}
}

// DetectLabels returns the configured labels filtered by the requested
// bounds
func (d *Detector) DetectLabels(ctx context.Context, ref pixpost.ImageRef, params pixpost.DetectParams) ([]pixpost.Label, error) {
	labels := make([]pixpost.Label, 0, len(d.labels))
	for _, label := range d.labels {
		if label.Confidence < params.MinConfidence {
			continue
		}
		if params.MaxLabels > 0 && int32(len(labels)) >= params.MaxLabels {
			break
		}
		labels = append(labels, label)
	}
	return labels, nil
}
