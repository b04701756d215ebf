package insights

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"jobpay-engine/internal/events"
	"jobpay-engine/internal/logger"
	"jobpay-engine/internal/scheduler"
)

var ErrRefreshRunning = errors.New("refresh already running")

type RefreshStatus struct {
	LastRunAt   string `json:"last_run_at"`
	LastOkAt    string `json:"last_ok_at"`
	LastError   string `json:"last_error"`
	LastCount   int    `json:"last_count"`
	LastDropped int    `json:"last_dropped"`
	Running     bool   `json:"running"`
}

// Refresher reloads the dataset from the source and reports how it went.
type Refresher struct {
	svc *Service
	hub *events.Hub
	now func() time.Time

	running atomic.Bool
	status  atomic.Value // stores RefreshStatus
}

func NewRefresher(svc *Service, hub *events.Hub) *Refresher {
	r := &Refresher{svc: svc, hub: hub, now: time.Now}
	r.status.Store(RefreshStatus{})
	return r
}

func (r *Refresher) Status() RefreshStatus {
	return r.status.Load().(RefreshStatus)
}

// RunOnce invalidates the cache and reloads. Only one run is in flight at a
// time; a concurrent call gets ErrRefreshRunning.
func (r *Refresher) RunOnce(ctx context.Context, reqID string) (Dataset, error) {
	if !r.running.CompareAndSwap(false, true) {
		return Dataset{}, ErrRefreshRunning
	}
	defer r.running.Store(false)

	st := r.Status()
	st.Running = true
	st.LastRunAt = r.now().Format(time.RFC3339)
	r.status.Store(st)

	ds, err := r.svc.Refresh(ctx)

	log := logger.For("refresh")
	st = r.Status()
	st.Running = false
	st.LastCount = len(ds.Records)
	st.LastDropped = ds.Dropped()
	if err != nil {
		st.LastError = err.Error()
		log.Error().Err(err).Str("source", ds.Source).Msg("refresh failed")
		r.publish(reqID, events.TypeRefreshFailed, map[string]any{
			"source": ds.Source,
			"error":  err.Error(),
		})
	} else {
		st.LastError = ""
		st.LastOkAt = r.now().Format(time.RFC3339)
		log.Info().Str("source", ds.Source).Int("count", len(ds.Records)).Int("dropped", ds.Dropped()).Msg("refresh ok")
		r.publish(reqID, events.TypeDatasetRefreshed, map[string]any{
			"source":     ds.Source,
			"count":      len(ds.Records),
			"dropped":    ds.Dropped(),
			"fetched_at": ds.FetchedAt,
		})
	}
	r.status.Store(st)
	return ds, err
}

func (r *Refresher) publish(reqID, typ string, data any) {
	if r.hub == nil {
		return
	}
	r.hub.Publish(events.MakeEvent(reqID, typ, 1, data))
}

// StartRefresher reloads the dataset every interval until ctx is done.
func StartRefresher(ctx context.Context, r *Refresher, interval time.Duration) {
	go scheduler.Every(ctx, interval, "refresh", func(ctx context.Context) error {
		_, err := r.RunOnce(ctx, "")
		if errors.Is(err, ErrRefreshRunning) {
			return nil
		}
		return err
	})
}
