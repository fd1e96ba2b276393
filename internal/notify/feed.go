package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// NoticeTTL is how long an undelivered notice stays visible.
	NoticeTTL = 10 * time.Second

	CleanupInterval = 2 * time.Second
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a short-lived message for the shopper, shown once.
type Notice struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type Notifier interface {
	Notify(level Level, message string)
}

// Feed buffers notices until they are drained or expire.
type Feed struct {
	mu      sync.Mutex
	notices []Notice
	ttl     time.Duration
	now     func() time.Time

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewFeed(ttl time.Duration) *Feed {
	if ttl <= 0 {
		ttl = NoticeTTL
	}
	f := &Feed{
		ttl:         ttl,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	f.wg.Add(1)
	go f.cleanupLoop()

	return f
}

func (f *Feed) Notify(level Level, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.notices = append(f.notices, Notice{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: f.now(),
	})
}

// Drain returns every live notice, oldest first, and empties the feed.
func (f *Feed) Drain() []Notice {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.expireLocked()
	out := f.notices
	f.notices = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}

func (f *Feed) cleanupLoop() {
	defer f.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.mu.Lock()
			f.expireLocked()
			f.mu.Unlock()
		case <-f.stopCleanup:
			return
		}
	}
}

func (f *Feed) expireLocked() {
	cutoff := f.now().Add(-f.ttl)
	live := f.notices[:0]
	for _, n := range f.notices {
		if n.CreatedAt.After(cutoff) {
			live = append(live, n)
		}
	}
	f.notices = live
}

// Close stops the background cleanup and waits for it to finish.
func (f *Feed) Close() error {
	close(f.stopCleanup)
	f.wg.Wait()
	return nil
}

// Discard drops every notice.
type Discard struct{}

func (Discard) Notify(Level, string) {}
