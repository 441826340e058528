package static

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixpost/pixpost/pkg/pixpost"
)

func TestDetectLabels(t *testing.T) {
	detector := New(
		pixpost.Label{Name: "Cat", Confidence: 0.95},
		pixpost.Label{Name: "Dog", Confidence: 0.80},
		pixpost.Label{Name: "Blur", Confidence: 0.40},
	)
	ref := pixpost.ImageRef{Bucket: "photos", Key: "u1/p1/a.jpg"}

	t.Run("filters by confidence", func(t *testing.T) {
		labels, err := detector.DetectLabels(context.Background(), ref, pixpost.DetectParams{
			MaxLabels:     5,
			MinConfidence: 0.75,
		})
		require.NoError(t, err)
		assert.Equal(t, []pixpost.Label{
			{Name: "Cat", Confidence: 0.95},
			{Name: "Dog", Confidence: 0.80},
		}, labels)
	})

	t.Run("caps the label count", func(t *testing.T) {
		labels, err := detector.DetectLabels(context.Background(), ref, pixpost.DetectParams{
			MaxLabels:     1,
			MinConfidence: 0,
		})
		require.NoError(t, err)
		require.Len(t, labels, 1)
		assert.Equal(t, "Cat", labels[0].Name)
	})

	t.Run("empty detector yields empty result", func(t *testing.T) {
		labels, err := New().DetectLabels(context.Background(), ref, pixpost.DetectParams{MaxLabels: 5})
		require.NoError(t, err)
		assert.Empty(t, labels)
	})
}
