package forms

import (
	"sync"
	"time"
)

// NoticeTTL is how long a transient notification stays visible.
const NoticeTTL = 5 * time.Second

// Notice is a transient, auto-dismissing notification surfaced after
// submission or fetch failures and successes.
type Notice struct {
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	Expires time.Time `json:"expires"`
}

// Notifier collects transient notices for one form surface. Expired notices
// are dropped on read.
type Notifier struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	notices []Notice
}

// NewNotifier builds a Notifier with the default TTL.
func NewNotifier() *Notifier {
	return &Notifier{ttl: NoticeTTL, now: time.Now}
}

// Push records a notice expiring after the TTL.
func (n *Notifier) Push(kind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, Notice{
		Kind:    kind,
		Message: message,
		Expires: n.now().Add(n.ttl),
	})
}

// Active returns the notices that have not expired yet and prunes the rest.
func (n *Notifier) Active() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := n.now()
	kept := n.notices[:0]
	for _, notice := range n.notices {
		if notice.Expires.After(now) {
			kept = append(kept, notice)
		}
	}
	n.notices = kept
	out := make([]Notice, len(kept))
	copy(out, kept)
	return out
}
