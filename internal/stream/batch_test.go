package stream

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch_GroupsWithPartialTail(t *testing.T) {
	// Given: a stream of 1..12
	values := make([]int, 0, 12)
	for i := 1; i <= 12; i++ {
		values = append(values, i)
	}

	// When: batching by 5
	batches, err := Collect(Batch(context.Background(), Of(values...), 5))

	// Then: two full groups plus the remainder
	require.NoError(t, err)
	assert.Equal(t, [][]int{
		{1, 2, 3, 4, 5},
		{6, 7, 8, 9, 10},
		{11, 12},
	}, batches)
}

func TestBatch_ExactMultipleHasNoEmptyTail(t *testing.T) {
	batches, err := Collect(Batch(context.Background(), Of(1, 2, 3, 4), 2))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2}, {3, 4}}, batches)
}

func TestBatch_EmptyInputYieldsZeroGroups(t *testing.T) {
	batches, err := Collect(Batch(context.Background(), Of[int](), 3))
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestBatch_ConcatenationReproducesInput(t *testing.T) {
	// Property from the contract: concatenating the groups in order must
	// reproduce the input sequence exactly, for any batch size.
	input := []int{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5}

	for _, size := range []int{1, 2, 3, 7, 11, 50} {
		batches, err := Collect(Batch(context.Background(), Of(input...), size))
		require.NoError(t, err)

		var flattened []int
		for i, b := range batches {
			require.NotEmpty(t, b)
			if i < len(batches)-1 {
				assert.Len(t, b, size)
			} else {
				assert.LessOrEqual(t, len(b), size)
			}
			flattened = append(flattened, b...)
		}
		assert.Equal(t, input, flattened, "batch size %d", size)
	}
}

func TestBatch_UpstreamErrorDropsPartialBatch(t *testing.T) {
	// Given: a source that emits 3 values and then fails
	boom := errors.New("source failed")
	src := Generate(1, func(tx Sender[int]) error {
		for i := 1; i <= 3; i++ {
			if err := tx.Send(context.Background(), i); err != nil {
				return err
			}
		}
		return boom
	})

	// When: batching by 2
	batches, err := Collect(Batch(context.Background(), src, 2))

	// Then: only the completed group is delivered; the partial batch that
	// was accumulating when the error arrived is not flushed
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, [][]int{{1, 2}}, batches)
}
