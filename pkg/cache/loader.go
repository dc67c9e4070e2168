package cache

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"liyu1981.xyz/fleet-dashboard-service/pkg/common"
	"liyu1981.xyz/fleet-dashboard-service/pkg/models"
)

// Store is the backing record source the loader refreshes from.
type Store interface {
	Load() ([]models.MetricRecord, error)
}

const DefaultWindow = 30 * time.Second

// Loader memoizes the loaded table per wall-clock time bucket, bounding
// reload frequency to at most once per window regardless of call rate.
// Callers within the same bucket receive the identical snapshot slice and
// must treat it as read-only.
//
// Concurrency policy: all of Load runs under one mutex. On a bucket
// transition exactly one caller performs the reload; the rest block
// briefly and then observe the fresh snapshot.
type Loader struct {
	store  Store
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	bucket   int64
	snapshot []models.MetricRecord
	loaded   bool
}

type Option func(*Loader)

func WithWindow(window time.Duration) Option {
	return func(l *Loader) { l.window = window }
}

func WithClock(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

func NewLoader(store Store, opts ...Option) *Loader {
	l := &Loader{
		store:  store,
		window: DefaultWindow,
		now:    time.Now,
		bucket: -1,
	}
	for _, opt := range opts {
		opt(l)
	}
	// bucket arithmetic is in whole seconds
	if l.window < time.Second {
		l.window = time.Second
	}
	return l
}

func (l *Loader) currentBucket() int64 {
	return l.now().Unix() / int64(l.window/time.Second)
}

// Load returns the cached snapshot for the current time bucket, reloading
// from the store on the first call of each bucket. A failed reload falls
// back to the last known-good snapshot for the rest of the bucket; only a
// failure before any snapshot exists is returned to the caller.
func (l *Loader) Load() ([]models.MetricRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket := l.currentBucket()
	if bucket == l.bucket && l.loaded {
		return l.snapshot, nil
	}

	records, err := l.store.Load()
	if err != nil {
		if !l.loaded {
			return nil, err
		}
		logger := common.GetLoggerWith(common.LoggerNameCacheLoader)
		logger.Warn("Reload failed, keeping last known-good snapshot",
			zap.Error(err), zap.Int("records", len(l.snapshot)))
		// advance the bucket so the broken file is not re-read until the
		// next window
		l.bucket = bucket
		return l.snapshot, nil
	}

	l.snapshot = records
	l.bucket = bucket
	l.loaded = true
	return l.snapshot, nil
}

// Invalidate drops the cached bucket so the next Load hits the store.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bucket = -1
}
