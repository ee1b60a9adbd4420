package chirp

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"sync"
	"time"
)

// Hook is the pipeline's middleware seam. Hooks run in registration order
// at three points: BeforeBuild sees the context with its raw argument bag,
// AfterAuth sees the built and signed wire request, AfterInflate sees the
// decoded result. Any error aborts the call.
type Hook interface {
	BeforeBuild(ctx context.Context, rc *RequestContext) error
	AfterAuth(ctx context.Context, rc *RequestContext) error
	AfterInflate(ctx context.Context, rc *RequestContext) error
}

// NopHook implements Hook with no-ops. Embed it to implement only the seams
// a behavior needs.
type NopHook struct{}

// BeforeBuild implements Hook.
func (NopHook) BeforeBuild(_ context.Context, _ *RequestContext) error { return nil }

// AfterAuth implements Hook.
func (NopHook) AfterAuth(_ context.Context, _ *RequestContext) error { return nil }

// AfterInflate implements Hook.
func (NopHook) AfterInflate(_ context.Context, _ *RequestContext) error { return nil }

// HookChain manages the ordered hook list for a client.
type HookChain struct {
	mu    sync.RWMutex
	hooks []Hook
}

// NewHookChain creates an empty chain.
func NewHookChain(hooks ...Hook) *HookChain {
	return &HookChain{hooks: append([]Hook(nil), hooks...)}
}

// Use appends a hook to the chain.
func (c *HookChain) Use(h Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hooks = append(c.hooks, h)
}

func (c *HookChain) snapshot() []Hook {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]Hook(nil), c.hooks...)
}

// RunBeforeBuild runs every hook's BeforeBuild in order.
func (c *HookChain) RunBeforeBuild(ctx context.Context, rc *RequestContext) error {
	for _, h := range c.snapshot() {
		err := h.BeforeBuild(ctx, rc)
		if err != nil {
			return fmt.Errorf("before-build hook failed: %w", err)
		}
	}

	return nil
}

// RunAfterAuth runs every hook's AfterAuth in order.
func (c *HookChain) RunAfterAuth(ctx context.Context, rc *RequestContext) error {
	for _, h := range c.snapshot() {
		err := h.AfterAuth(ctx, rc)
		if err != nil {
			return fmt.Errorf("after-auth hook failed: %w", err)
		}
	}

	return nil
}

// RunAfterInflate runs every hook's AfterInflate in order.
func (c *HookChain) RunAfterInflate(ctx context.Context, rc *RequestContext) error {
	for _, h := range c.snapshot() {
		err := h.AfterInflate(ctx, rc)
		if err != nil {
			return fmt.Errorf("after-inflate hook failed: %w", err)
		}
	}

	return nil
}

// Common Hooks

// LoggingHook logs each call before dispatch and after inflation.
type LoggingHook struct {
	NopHook

	logger Logger
}

// NewLoggingHook creates a LoggingHook.
func NewLoggingHook(logger Logger) *LoggingHook {
	return &LoggingHook{logger: logger}
}

// AfterAuth implements Hook.
func (h *LoggingHook) AfterAuth(_ context.Context, rc *RequestContext) error {
	h.logger.Debug("API Request", map[string]interface{}{
		"request_id": rc.ID,
		"method":     rc.Method,
		"url":        rc.URL,
	})

	return nil
}

// AfterInflate implements Hook.
func (h *LoggingHook) AfterInflate(_ context.Context, rc *RequestContext) error {
	fields := map[string]interface{}{
		"request_id": rc.ID,
		"method":     rc.Method,
		"url":        rc.URL,
	}

	if rc.HTTPResponse != nil {
		fields["status_code"] = rc.HTTPResponse.StatusCode
	}

	h.logger.Debug("API Response", fields)

	return nil
}

// RateLimitHook implements client-side rate limiting with a token bucket.
// It blocks in BeforeBuild until a token is available or the context is
// canceled.
type RateLimitHook struct {
	NopHook

	bucket chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewRateLimitHook creates a hook allowing requestsPerSecond sustained
// calls with the same burst capacity.
func NewRateLimitHook(requestsPerSecond int) *RateLimitHook {
	hook := &RateLimitHook{
		bucket: make(chan struct{}, requestsPerSecond),
		done:   make(chan struct{}),
	}

	for range requestsPerSecond {
		hook.bucket <- struct{}{}
	}

	go func() {
		ticker := time.NewTicker(time.Second / time.Duration(requestsPerSecond))
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				select {
				case hook.bucket <- struct{}{}:
				default:
					// Bucket is full
				}
			case <-hook.done:
				return
			}
		}
	}()

	return hook
}

// BeforeBuild implements Hook.
func (h *RateLimitHook) BeforeBuild(ctx context.Context, _ *RequestContext) error {
	select {
	case <-h.bucket:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop terminates the refill goroutine. The hook admits no further calls
// once the bucket drains.
func (h *RateLimitHook) Stop() {
	h.once.Do(func() { close(h.done) })
}

// BooleanNormalizerHook rewrites bool argument values into the wire strings
// "true" and "false" before the builder encodes them.
type BooleanNormalizerHook struct {
	NopHook
}

// NewBooleanNormalizerHook creates a BooleanNormalizerHook.
func NewBooleanNormalizerHook() *BooleanNormalizerHook {
	return &BooleanNormalizerHook{}
}

// BeforeBuild implements Hook.
func (h *BooleanNormalizerHook) BeforeBuild(_ context.Context, rc *RequestContext) error {
	for key, value := range rc.Args {
		if b, ok := value.(bool); ok {
			rc.Args[key] = strconv.FormatBool(b)
		}
	}

	return nil
}

// EntityDecodeHook decodes HTML entities in every string of the inflated
// result tree. Some providers entity-encode status text server-side.
type EntityDecodeHook struct {
	NopHook
}

// NewEntityDecodeHook creates an EntityDecodeHook.
func NewEntityDecodeHook() *EntityDecodeHook {
	return &EntityDecodeHook{}
}

// AfterInflate implements Hook.
func (h *EntityDecodeHook) AfterInflate(_ context.Context, rc *RequestContext) error {
	if !rc.HasResult {
		return nil
	}

	rc.Result = decodeEntities(rc.Result)

	return nil
}

func decodeEntities(v any) any {
	switch value := v.(type) {
	case string:
		return html.UnescapeString(value)
	case []any:
		for i, item := range value {
			value[i] = decodeEntities(item)
		}

		return value
	case map[string]any:
		for key, item := range value {
			value[key] = decodeEntities(item)
		}

		return value
	default:
		return v
	}
}

// HeaderHook sets fixed headers on every call before the builder runs.
type HeaderHook struct {
	NopHook

	headers map[string]string
}

// NewHeaderHook creates a HeaderHook.
func NewHeaderHook(headers map[string]string) *HeaderHook {
	return &HeaderHook{headers: headers}
}

// BeforeBuild implements Hook.
func (h *HeaderHook) BeforeBuild(_ context.Context, rc *RequestContext) error {
	for key, value := range h.headers {
		rc.Header.Set(key, value)
	}

	return nil
}
