package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Concurrent callers sharing a key must collapse into exactly one execution
// of fn, with every caller receiving the same result.
func TestCoalescer_ExactlyOneExecution(t *testing.T) {
	c := NewCoalescer()
	var calls int32

	release := make(chan struct{})
	start := make(chan struct{})

	const callers = 8
	var wg sync.WaitGroup
	results := make([]int, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			v, err, _ := c.Do(context.Background(), "shared-key", func(ctx context.Context) (any, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return 7, nil
			})
			if err != nil {
				t.Errorf("Do: %v", err)
				return
			}
			results[i] = v.(int)
		}(i)
	}

	close(start)
	time.Sleep(20 * time.Millisecond) // let every caller join before releasing
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("fn executed %d times, want exactly 1", got)
	}
	for i, r := range results {
		if r != 7 {
			t.Errorf("caller %d got %d, want 7", i, r)
		}
	}
}

// Distinct keys must never be coalesced into one execution.
func TestCoalescer_DistinctKeysRunIndependently(t *testing.T) {
	c := NewCoalescer()
	var calls int32

	var wg sync.WaitGroup
	for _, key := range []string{"a", "b"} {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			_, _, _ = c.Do(context.Background(), key, func(ctx context.Context) (any, error) {
				atomic.AddInt32(&calls, 1)
				return nil, nil
			})
		}(key)
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("fn executed %d times across distinct keys, want 2", got)
	}
}

// A caller that departs while not the last waiter must not cancel the
// in-flight call; only the departure of the last waiter does.
func TestCoalescer_CancelOnlyOnLastWaiterDeparture(t *testing.T) {
	c := NewCoalescer()
	started := make(chan struct{})
	fnCtxCh := make(chan context.Context, 1)

	leaderCtx, leaderCancel := context.WithCancel(context.Background())
	followerCtx, followerCancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		_, _, _ = c.Do(leaderCtx, "key", func(ctx context.Context) (any, error) {
			close(started)
			fnCtxCh <- ctx
			<-ctx.Done()
			return nil, ctx.Err()
		})
	}()

	<-started
	go func() {
		defer wg.Done()
		_, _, _ = c.Do(followerCtx, "key", func(ctx context.Context) (any, error) {
			return nil, nil
		})
	}()

	time.Sleep(10 * time.Millisecond)
	fnCtx := <-fnCtxCh

	// The follower departs first; the leader's work must still be running.
	followerCancel()
	time.Sleep(10 * time.Millisecond)
	select {
	case <-fnCtx.Done():
		t.Fatal("work was cancelled after only the follower departed")
	default:
	}

	// Now the leader (the last remaining waiter) departs; the work must
	// be cancelled.
	leaderCancel()
	wg.Wait()

	select {
	case <-fnCtx.Done():
	default:
		t.Fatal("work was not cancelled after the last waiter departed")
	}
}
