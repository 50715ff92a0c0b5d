package enrich

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelMap_OrderPreservation(t *testing.T) {
	items := make([]int, 200)
	for i := range items {
		items[i] = i
	}

	out, err := parallelMap(context.Background(), items, 8, func(v int) (int, error) {
		return v * 2, nil
	})
	require.NoError(t, err)

	require.Len(t, out, 200)
	for i, v := range out {
		assert.Equal(t, i*2, v, "result %d out of order", i)
	}
}

func TestParallelMap_SingleWorker(t *testing.T) {
	items := []string{"a", "b", "c"}
	out, err := parallelMap(context.Background(), items, 1, func(s string) (string, error) {
		return s + s, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"aa", "bb", "cc"}, out)
}

func TestParallelMap_MoreWorkersThanItems(t *testing.T) {
	out, err := parallelMap(context.Background(), []int{1, 2, 3}, 64, func(v int) (int, error) {
		return v, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)
}

func TestParallelMap_EmptyInput(t *testing.T) {
	out, err := parallelMap(context.Background(), nil, 4, func(v int) (int, error) {
		return v, nil
	})
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestParallelMap_ErrorPropagation(t *testing.T) {
	errBoom := errors.New("boom")
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}

	_, err := parallelMap(context.Background(), items, 4, func(v int) (int, error) {
		if v == 42 {
			return 0, fmt.Errorf("item %d: %w", v, errBoom)
		}
		return v, nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
}

func TestParallelMap_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := parallelMap(ctx, []int{1, 2, 3}, 2, func(v int) (int, error) {
		calls++
		return v, nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}
