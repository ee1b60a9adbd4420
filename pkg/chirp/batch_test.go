package chirp_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chirpd-io/chirp/pkg/chirp"
)

// batchRequester records concurrency while serving scripted outcomes per
// path.
type batchRequester struct {
	mu       sync.Mutex
	calls    int
	inFlight int
	maxSeen  int
	delay    time.Duration
	fail     map[string]error
}

func (b *batchRequester) Request(ctx context.Context, _, path string, _ chirp.Args) (any, *chirp.RequestContext, error) {
	b.mu.Lock()
	b.calls++
	b.inFlight++

	if b.inFlight > b.maxSeen {
		b.maxSeen = b.inFlight
	}
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.inFlight--
		b.mu.Unlock()
	}()

	if b.delay > 0 {
		select {
		case <-time.After(b.delay):
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}

	if err, ok := b.fail[path]; ok {
		return nil, nil, err
	}

	return map[string]any{"path": path}, &chirp.RequestContext{ID: path}, nil
}

func TestBatchExecutor_Execute(t *testing.T) {
	t.Parallel()

	requester := &batchRequester{}
	executor := chirp.NewBatchExecutor(requester, 2)

	calls := []chirp.BatchCall{
		{ID: "first", Method: "GET", Path: "users/show", Args: chirp.Args{"screen_name": "semifor"}},
		{ID: "second", Method: "GET", Path: "account/verify_credentials"},
		{ID: "third", Method: "POST", Path: "statuses/update", Args: chirp.Args{"status": "hello"}},
	}

	results := executor.Execute(context.Background(), calls)

	require.Len(t, results, 3)

	// Results line up with the submitted calls regardless of completion
	// order.
	for index, call := range calls {
		result := results[index]
		assert.Equal(t, call.ID, result.ID)
		assert.True(t, result.Success)
		require.NoError(t, result.Error)
		require.NotNil(t, result.Result)
		assert.Equal(t, call.Path, result.Context.ID)
	}

	assert.Equal(t, 3, requester.calls)
}

func TestBatchExecutor_PartialFailure(t *testing.T) {
	t.Parallel()

	requester := &batchRequester{fail: map[string]error{
		"users/show": apiError(404, map[string]any{
			"errors": []any{map[string]any{"code": float64(34), "message": "Sorry, that page does not exist"}},
		}),
	}}
	executor := chirp.NewBatchExecutor(requester, 2)

	results := executor.Execute(context.Background(), []chirp.BatchCall{
		{ID: "missing", Method: "GET", Path: "users/show"},
		{ID: "fine", Method: "GET", Path: "account/verify_credentials"},
	})

	require.Len(t, results, 2)

	assert.False(t, results[0].Success)
	require.Error(t, results[0].Error)
	assert.False(t, chirp.IsTemporary(results[0].Error))
	assert.Nil(t, results[0].Result)

	assert.True(t, results[1].Success)
	require.NoError(t, results[1].Error)
}

func TestBatchExecutor_ConcurrencyBound(t *testing.T) {
	t.Parallel()

	requester := &batchRequester{delay: 20 * time.Millisecond}
	executor := chirp.NewBatchExecutor(requester, 2)

	calls := make([]chirp.BatchCall, 6)
	for index := range calls {
		calls[index] = chirp.BatchCall{ID: "call", Method: "GET", Path: "users/show"}
	}

	executor.Execute(context.Background(), calls)

	assert.Equal(t, 6, requester.calls)
	assert.LessOrEqual(t, requester.maxSeen, 2)
}

func TestBatchExecutor_DefaultConcurrency(t *testing.T) {
	t.Parallel()

	requester := &batchRequester{}
	executor := chirp.NewBatchExecutor(requester, 0)

	results := executor.Execute(context.Background(), []chirp.BatchCall{
		{ID: "only", Method: "GET", Path: "users/show"},
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
}

func TestBatchExecutor_Timeout(t *testing.T) {
	t.Parallel()

	requester := &batchRequester{delay: time.Second}
	executor := chirp.NewBatchExecutor(requester, 2)
	executor.SetTimeout(10 * time.Millisecond)

	results := executor.Execute(context.Background(), []chirp.BatchCall{
		{ID: "slow", Method: "GET", Path: "users/show"},
	})

	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	require.ErrorIs(t, results[0].Error, context.DeadlineExceeded)
}

func TestBatchExecutor_Callbacks(t *testing.T) {
	t.Parallel()

	requester := &batchRequester{}
	executor := chirp.NewBatchExecutor(requester, 2)

	var (
		mu        sync.Mutex
		completed []string
	)

	record := func(result *chirp.BatchCallResult) {
		mu.Lock()
		defer mu.Unlock()

		completed = append(completed, result.ID)
	}

	executor.Execute(context.Background(), []chirp.BatchCall{
		{ID: "first", Method: "GET", Path: "users/show", Callback: record},
		{ID: "second", Method: "GET", Path: "account/settings", Callback: record},
	})

	assert.ElementsMatch(t, []string{"first", "second"}, completed)
}

func TestBatchBuilder(t *testing.T) {
	t.Parallel()

	calls := chirp.NewBatchBuilder().
		AddGet("lookup", "users/show", chirp.Args{"screen_name": "semifor"}).
		AddPost("tweet", "statuses/update", chirp.Args{"status": "hello"}).
		AddDelete("cleanup", "saved_searches/destroy/:id", chirp.Args{"id": 42}).
		AddCall(chirp.BatchCall{ID: "custom", Method: "PUT", Path: "account/settings"}).
		Build()

	require.Len(t, calls, 4)

	assert.Equal(t, "GET", calls[0].Method)
	assert.Equal(t, "lookup", calls[0].ID)
	assert.Equal(t, "POST", calls[1].Method)
	assert.Equal(t, chirp.Args{"status": "hello"}, calls[1].Args)
	assert.Equal(t, "DELETE", calls[2].Method)
	assert.Equal(t, "PUT", calls[3].Method)
	assert.Equal(t, "custom", calls[3].ID)
}
