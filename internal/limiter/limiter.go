// Package limiter implements per-peer request rate limiting for the transport edge.
package limiter

import (
	"crypto/sha256"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/and161185/fortune-gate/internal/crypto"
)

// Limiter admits or rejects requests from a peer.
type Limiter interface {
	// Allow reports whether a request from addr may proceed and, if not, how
	// long the peer should wait before retrying.
	Allow(addr string) (bool, time.Duration)
}

type peer struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	lastSeen time.Time
}

// PeerLimiter keeps a token bucket per hashed peer address.
// Raw addresses are never retained.
type PeerLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	peers sync.Map // [sha256.Size]byte -> *peer
}

// New returns a limiter allowing rps sustained requests with the given burst.
// Peers unseen for idle are dropped by Sweep.
func New(rps float64, burst int, idle time.Duration) *PeerLimiter {
	if burst < 1 {
		burst = 1
	}
	if idle <= 0 {
		idle = 10 * time.Minute
	}
	return &PeerLimiter{limit: rate.Limit(rps), burst: burst, idle: idle, now: time.Now}
}

// Allow consumes a token for addr if one is available now.
func (l *PeerLimiter) Allow(addr string) (bool, time.Duration) {
	now := l.now()
	p := l.get(crypto.HashPeer(addr), now)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastSeen = now

	r := p.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d
	}
	return true, 0
}

func (l *PeerLimiter) get(key [sha256.Size]byte, now time.Time) *peer {
	if v, ok := l.peers.Load(key); ok {
		return v.(*peer)
	}
	v, _ := l.peers.LoadOrStore(key, &peer{limiter: rate.NewLimiter(l.limit, l.burst), lastSeen: now})
	return v.(*peer)
}

// Sweep drops peers idle for longer than the configured period and returns
// how many were removed.
func (l *PeerLimiter) Sweep() int {
	now := l.now()
	n := 0
	l.peers.Range(func(key, value any) bool {
		p := value.(*peer)
		p.mu.Lock()
		stale := now.Sub(p.lastSeen) > l.idle
		p.mu.Unlock()
		if stale {
			l.peers.Delete(key)
			n++
		}
		return true
	})
	return n
}

// Len returns the number of tracked peers.
func (l *PeerLimiter) Len() int {
	n := 0
	l.peers.Range(func(_, _ any) bool { n++; return true })
	return n
}
