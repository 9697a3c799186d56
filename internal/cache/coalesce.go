package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Coalescer collapses concurrent callers sharing the same key into one
// piece of work. The shared-execution mechanics (install-or-wait,
// resolve-all-waiters, erase-on-finalize) are golang.org/x/sync/singleflight
// verbatim — that package's contract is exactly spec §4.5/§9's description
// of a coalescer. What singleflight does not provide is spec §5's
// cancellation rule: a departing HTTP caller should cancel the underlying
// work only once it was the *last* waiter still attached to that key, not
// merely the first to disconnect. Coalescer layers a small refcounted
// context over singleflight.Group to add that rule without reimplementing
// the coalescing itself.
type Coalescer struct {
	group singleflight.Group

	mu   sync.Mutex
	refs map[string]*waiterSet
}

type waiterSet struct {
	waiters int
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewCoalescer returns a ready-to-use Coalescer.
func NewCoalescer() *Coalescer {
	return &Coalescer{refs: make(map[string]*waiterSet)}
}

// Do executes fn for key, or waits for an in-flight execution of fn under
// the same key to finish. shared reports whether this caller joined
// someone else's in-flight call rather than starting its own.
func (c *Coalescer) Do(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (value any, err error, shared bool) {
	c.mu.Lock()
	ws, existed := c.refs[key]
	isLeader := !existed
	if isLeader {
		ws = &waiterSet{}
		ws.ctx, ws.cancel = context.WithCancel(context.Background())
		c.refs[key] = ws
	}
	ws.waiters++
	c.mu.Unlock()

	resultCh := c.group.DoChan(key, func() (any, error) {
		// Whichever caller's closure singleflight ends up running, fn gets
		// the key's shared context, created under mu before any waiter
		// could see ws; only the last departing waiter cancels it.
		return fn(ws.ctx)
	})

	select {
	case res := <-resultCh:
		c.departWaiter(key, ws)
		return res.Val, res.Err, res.Shared
	case <-ctx.Done():
		last := c.departWaiter(key, ws)
		if last && ws.cancel != nil {
			ws.cancel()
		}
		return nil, ctx.Err(), !isLeader
	}
}

// departWaiter decrements the key's waiter count and reports whether it
// reached zero, meaning this caller was the last one still attached.
func (c *Coalescer) departWaiter(key string, ws *waiterSet) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	ws.waiters--
	if ws.waiters <= 0 {
		delete(c.refs, key)
		return true
	}
	return false
}
