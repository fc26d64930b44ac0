package vector_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareos/pkg/utils/vector"
)

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical vectors", func(t *testing.T) {
		s := vector.CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3})
		gt.B(t, s > 0.9999).True()
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		gt.Value(t, vector.CosineSimilarity([]float32{1, 0}, []float32{0, 1})).Equal(0.0)
	})

	t.Run("length mismatch", func(t *testing.T) {
		gt.Value(t, vector.CosineSimilarity([]float32{1, 0}, []float32{1})).Equal(0.0)
	})

	t.Run("zero vector", func(t *testing.T) {
		gt.Value(t, vector.CosineSimilarity([]float32{0, 0}, []float32{1, 1})).Equal(0.0)
	})
}

func TestCosineDistance(t *testing.T) {
	gt.Value(t, vector.CosineDistance([]float32{1, 0}, []float32{0, 1})).Equal(1.0)
}

func TestToFloat32(t *testing.T) {
	gt.Value(t, vector.ToFloat32([]float64{0.5, 1})).Equal([]float32{0.5, 1})
}
