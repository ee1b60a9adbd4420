package chirp

import (
	"context"
	"sync"
	"time"
)

// BatchCall is one logical call in a batch.
type BatchCall struct {
	// ID labels the call in results; it is caller-chosen and not
	// transmitted.
	ID     string
	Method string
	Path   string
	Args   Args
	// Callback, when set, runs as soon as this call completes.
	Callback func(result *BatchCallResult)
}

// BatchCallResult is the outcome of one batch call.
type BatchCallResult struct {
	ID       string
	Success  bool
	Result   any
	Context  *RequestContext
	Error    error
	Duration time.Duration
}

// BatchExecutor runs independent logical calls concurrently through a
// Requester with a bounded worker pool. Calls in one batch must not depend
// on each other's results.
type BatchExecutor struct {
	requester   Requester
	concurrency int
	timeout     time.Duration
}

// NewBatchExecutor creates a new batch executor.
func NewBatchExecutor(requester Requester, concurrency int) *BatchExecutor {
	if concurrency <= 0 {
		concurrency = 5
	}

	return &BatchExecutor{
		requester:   requester,
		concurrency: concurrency,
		timeout:     30 * time.Second,
	}
}

// SetTimeout sets the per-call timeout for batch operations.
func (b *BatchExecutor) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// Execute runs a batch of calls, returning results in call order.
func (b *BatchExecutor) Execute(ctx context.Context, calls []BatchCall) []BatchCallResult {
	results := make([]BatchCallResult, len(calls))

	var waitGroup sync.WaitGroup

	semaphore := make(chan struct{}, b.concurrency)

	for index, call := range calls {
		waitGroup.Add(1)

		go func(index int, call BatchCall) {
			defer waitGroup.Done()

			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			callCtx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()

			start := time.Now()
			result := b.executeCall(callCtx, call)
			result.Duration = time.Since(start)
			results[index] = *result

			if call.Callback != nil {
				call.Callback(result)
			}
		}(index, call)
	}

	waitGroup.Wait()

	return results
}

// executeCall runs a single call.
func (b *BatchExecutor) executeCall(ctx context.Context, call BatchCall) *BatchCallResult {
	result := &BatchCallResult{ID: call.ID}

	result.Result, result.Context, result.Error = b.requester.Request(ctx, call.Method, call.Path, call.Args)
	result.Success = result.Error == nil

	return result
}

// BatchBuilder helps build batches of calls.
type BatchBuilder struct {
	calls []BatchCall
}

// NewBatchBuilder creates a new batch builder.
func NewBatchBuilder() *BatchBuilder {
	return &BatchBuilder{calls: make([]BatchCall, 0)}
}

// AddGet adds a GET call.
func (b *BatchBuilder) AddGet(id, path string, args Args) *BatchBuilder {
	return b.AddCall(BatchCall{ID: id, Method: "GET", Path: path, Args: args})
}

// AddPost adds a POST call.
func (b *BatchBuilder) AddPost(id, path string, args Args) *BatchBuilder {
	return b.AddCall(BatchCall{ID: id, Method: "POST", Path: path, Args: args})
}

// AddDelete adds a DELETE call.
func (b *BatchBuilder) AddDelete(id, path string, args Args) *BatchBuilder {
	return b.AddCall(BatchCall{ID: id, Method: "DELETE", Path: path, Args: args})
}

// AddCall adds a custom call.
func (b *BatchBuilder) AddCall(call BatchCall) *BatchBuilder {
	b.calls = append(b.calls, call)

	return b
}

// Build returns the built calls.
func (b *BatchBuilder) Build() []BatchCall {
	return b.calls
}
