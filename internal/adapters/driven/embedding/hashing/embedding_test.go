package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestNewEmbeddingService(t *testing.T) {
	svc := NewEmbeddingService(0)
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, ModelName, svc.ModelName())
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())

	small := NewEmbeddingService(64)
	assert.Equal(t, 64, small.Dimensions())
	assert.NotEqual(t, ModelName, small.ModelName())
}

func TestEmbed_Deterministic(t *testing.T) {
	svc := NewEmbeddingService(0)
	ctx := context.Background()

	a, err := svc.Embed(ctx, "병용금기 이부프로펜 와파린")
	require.NoError(t, err)
	b, err := svc.Embed(ctx, "병용금기 이부프로펜 와파린")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.InDelta(t, 1.0, cosine(a, a), 1e-6)
}

func TestEmbed_UnitLength(t *testing.T) {
	v, err := NewEmbeddingService(0).Embed(context.Background(), "Acetaminophen 500mg")
	require.NoError(t, err)

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
}

func TestEmbed_EmptyTextIsZero(t *testing.T) {
	v, err := NewEmbeddingService(0).Embed(context.Background(), " !? ")
	require.NoError(t, err)
	assert.Len(t, v, DefaultDimensions)
	for _, x := range v {
		assert.Zero(t, x)
	}
}

func TestEmbed_SharedSubstringsAreCloser(t *testing.T) {
	svc := NewEmbeddingService(0)
	ctx := context.Background()

	query, _ := svc.Embed(ctx, "병용금기 이부프로펜 와파린")
	related, _ := svc.Embed(ctx, "[병용금기]\n약물 A: 이부프로펜정\n약물 B: 와파린나트륨")
	unrelated, _ := svc.Embed(ctx, "[노인주의]\n성분명: 디아제팜")

	assert.Greater(t, cosine(query, related), cosine(query, unrelated))
}

func TestEmbed_NormalisesUnicodeForms(t *testing.T) {
	svc := NewEmbeddingService(0)
	ctx := context.Background()

	composed, _ := svc.Embed(ctx, "와파린")
	decomposed, _ := svc.Embed(ctx, norm.NFD.String("와파린"))
	assert.Equal(t, composed, decomposed)
}

func TestEmbedBatch(t *testing.T) {
	svc := NewEmbeddingService(32)
	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for _, v := range vecs {
		assert.Len(t, v, 32)
	}
}

func TestEmbed_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEmbeddingService(0).Embed(ctx, "x")
	assert.Error(t, err)
}
