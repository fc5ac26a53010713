package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	batches []int
	err     error
}

func (c *countingEmbedder) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.batches = append(c.batches, len(inputs))
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{float32(len(inputs[i]))}
	}
	return out, nil
}

func TestEmbedBatches(t *testing.T) {
	e := &countingEmbedder{}
	svc := NewService(e)

	texts := make([]string, 250)
	for i := range texts {
		texts[i] = string(make([]byte, i))
	}

	vecs, err := svc.Embed(context.Background(), texts)
	require.NoError(t, err)
	assert.Equal(t, []int{100, 100, 50}, e.batches)
	require.Len(t, vecs, 250)
	assert.Equal(t, float32(249), vecs[249][0])
}

func TestEmbedEmpty(t *testing.T) {
	vecs, err := NewService(&countingEmbedder{}).Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestEmbedSingleError(t *testing.T) {
	_, err := NewService(&countingEmbedder{err: errors.New("quota")}).EmbedSingle(context.Background(), "x")
	assert.ErrorContains(t, err, "embed batch 0")
}
