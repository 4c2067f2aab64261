package agent

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/ShayCichocki/panel/pkg/models"
)

// CachingTaskRunner memoizes successful runs of an inner Runner.
//
// The key covers the full request identity (task, tier, instructions,
// temperature and message), so two tasks sent the same shared payload are
// still distinct calls. Identical concurrent requests collapse onto one
// in-flight call; a caller that joins one still honors its own context.
// Failures are never stored. The cache lives as long as
// the CachingTaskRunner.
type CachingTaskRunner struct {
	inner Runner

	mu    sync.RWMutex
	cache map[string]Output
	group singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachingTaskRunner wraps inner.
func NewCachingTaskRunner(inner Runner) *CachingTaskRunner {
	return &CachingTaskRunner{
		inner: inner,
		cache: make(map[string]Output),
	}
}

// Run returns the stored output for an identical earlier request, or runs
// the inner Runner at most once per key at a time.
func (c *CachingTaskRunner) Run(ctx context.Context, task Task, message string) (Output, error) {
	if strings.TrimSpace(message) == "" {
		return c.inner.Run(ctx, task, message)
	}

	key := CacheKey(task, message)
	if out, ok := c.lookup(key); ok {
		c.hits.Add(1)
		return out, nil
	}

	for {
		led := false
		ch := c.group.DoChan(key, func() (any, error) {
			led = true
			if out, ok := c.lookup(key); ok {
				c.hits.Add(1)
				return out, nil
			}
			c.misses.Add(1)
			out, err := c.inner.Run(ctx, task, message)
			if err != nil {
				return Output{}, err
			}
			c.mu.Lock()
			c.cache[key] = out
			c.mu.Unlock()
			return out, nil
		})

		select {
		case <-ctx.Done():
			return Output{}, &TaskError{Kind: models.FailureExhaustedRetries, TaskID: task.ID, Err: ctx.Err()}
		case res := <-ch:
			if res.Err == nil {
				return res.Val.(Output), nil
			}
			// A joined call that died on the leader's context says nothing
			// about this caller. Failures are not stored, so run again.
			if !led && ctx.Err() == nil && isContextError(res.Err) {
				continue
			}
			return Output{}, res.Err
		}
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (c *CachingTaskRunner) lookup(key string) (Output, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out, ok := c.cache[key]
	if ok {
		out.Cached = true
	}
	return out, ok
}

// Stats returns cache hits and underlying calls made.
func (c *CachingTaskRunner) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of stored outputs.
func (c *CachingTaskRunner) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// CacheKey derives the memoization key for a request.
func CacheKey(task Task, message string) string {
	h := sha256.New()
	for _, part := range []string{
		string(task.ID),
		string(task.Tier),
		task.Instructions,
		strconv.FormatFloat(task.Temperature, 'g', -1, 64),
		message,
	} {
		h.Write([]byte(strconv.Itoa(len(part))))
		h.Write([]byte{0})
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}
