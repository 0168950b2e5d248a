package reports

import (
	"context"
	"sync"

	appctx "github.com/FAb114/factusystem-reports/internal/core/context"
)

// sessionGuard serializes report generations of one kind for one client:
// starting a new generation cancels the previous in-flight one, and a
// generation that finished after being superseded is detected so its
// result can be discarded instead of overwriting a newer one.
type sessionGuard struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// begin cancels any in-flight generation and registers a new one.
// The returned context is canceled when a later generation begins.
func (g *sessionGuard) begin(ctx context.Context) (context.Context, uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel != nil {
		g.cancel()
	}

	ctx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	g.seq++
	return ctx, g.seq
}

// active reports whether the given generation is still the latest.
func (g *sessionGuard) active(seq uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq == seq
}

type sessionKey struct {
	client string
	kind   Kind
}

// sessionRegistry hands out one guard per authenticated client and report
// kind, so a client's newer request supersedes only that client's own
// in-flight generation and concurrent clients never cancel each other.
type sessionRegistry struct {
	mu     sync.Mutex
	guards map[sessionKey]*sessionGuard
}

// begin registers a new generation for the calling client. Calls without
// an authenticated user get a throwaway guard and can never be superseded.
func (r *sessionRegistry) begin(ctx context.Context, kind Kind) (context.Context, *sessionGuard, uint64) {
	client := appctx.GetUserID(ctx)
	if client == "" {
		g := &sessionGuard{}
		gctx, seq := g.begin(ctx)
		return gctx, g, seq
	}

	r.mu.Lock()
	if r.guards == nil {
		r.guards = make(map[sessionKey]*sessionGuard)
	}
	key := sessionKey{client: client, kind: kind}
	g, ok := r.guards[key]
	if !ok {
		g = &sessionGuard{}
		r.guards[key] = g
	}
	r.mu.Unlock()

	gctx, seq := g.begin(ctx)
	return gctx, g, seq
}
