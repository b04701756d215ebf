package insights

import (
	"context"
	"errors"
	"time"

	"jobpay-engine/internal/events"
	"jobpay-engine/internal/logger"
	"jobpay-engine/internal/store"
)

var ErrNoStore = errors.New("postings import needs the sqlite store")

// Importer adds documents to the local store and drops the cached dataset.
type Importer struct {
	db  *store.DB
	svc *Service
	hub *events.Hub
	now func() time.Time
}

func NewImporter(db *store.DB, svc *Service, hub *events.Hub) *Importer {
	return &Importer{db: db, svc: svc, hub: hub, now: time.Now}
}

func (im *Importer) Import(ctx context.Context, docs []map[string]any, reqID string) (added int, err error) {
	if im == nil || im.db == nil {
		return 0, ErrNoStore
	}
	added, err = store.InsertPostings(ctx, im.db.Pool, docs, im.now())
	if err != nil {
		return 0, err
	}

	log := logger.For("import")
	log.Info().Int("received", len(docs)).Int("added", added).Msg("postings imported")

	if added > 0 && im.svc != nil {
		im.svc.Invalidate(ctx)
	}
	if im.hub != nil {
		im.hub.Publish(events.MakeEvent(reqID, events.TypePostingsImported, 1, map[string]any{
			"received": len(docs),
			"added":    added,
		}))
	}
	return added, nil
}

// Cleanup deletes postings imported more than retention ago.
func (im *Importer) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	if im == nil || im.db == nil {
		return 0, ErrNoStore
	}
	n, err := store.CleanupOldPostings(ctx, im.db.Pool, im.now().Add(-retention))
	if err != nil {
		return 0, err
	}
	if n > 0 && im.svc != nil {
		im.svc.Invalidate(ctx)
	}
	return n, nil
}
