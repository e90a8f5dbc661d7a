package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// EntrySource lists and removes stale outbox entries.
type EntrySource interface {
	ListOlderThan(ctx context.Context, maxAge time.Duration) ([]Entry, error)
	Clear(ctx context.Context, id string) error
}

// ObjectDeleter removes an orphaned object from storage.
type ObjectDeleter interface {
	Delete(ctx context.Context, bucket, key string) error
}

// Sweeper reclaims storage objects whose metadata insert never landed. It is
// the compensating half of the non-transactional write-object-then-insert-row
// sequence used by the upload and generation handlers.
type Sweeper struct {
	entries EntrySource
	objects ObjectDeleter
	maxAge  time.Duration
	log     *zap.Logger
}

func NewSweeper(entries EntrySource, objects ObjectDeleter, maxAge time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{
		entries: entries,
		objects: objects,
		maxAge:  maxAge,
		log:     log,
	}
}

// Sweep deletes orphaned objects and their outbox rows. Returns the number of
// entries reclaimed. An object delete failure keeps the row so the next sweep
// retries it.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	stale, err := s.entries.ListOlderThan(ctx, s.maxAge)
	if err != nil {
		return 0, err
	}

	reclaimed := 0
	for _, e := range stale {
		if err := s.objects.Delete(ctx, e.Bucket, e.ObjectKey); err != nil {
			s.log.Warn("delete orphaned object",
				zap.String("bucket", e.Bucket),
				zap.String("key", e.ObjectKey),
				zap.Error(err),
			)
			continue
		}
		if err := s.entries.Clear(ctx, e.ID); err != nil {
			s.log.Warn("clear outbox entry", zap.String("id", e.ID), zap.Error(err))
			continue
		}
		reclaimed++
	}

	if reclaimed > 0 {
		s.log.Info("reclaimed orphaned storage objects", zap.Int("count", reclaimed))
	}
	return reclaimed, nil
}
