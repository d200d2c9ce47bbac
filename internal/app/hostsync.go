package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"property_listing/internal/domain"
)

// HostSyncService refreshes the host fields copied onto properties.
// Copies older than the configured max age are treated as stale.
type HostSyncService struct {
	hosts domain.HostDirectory
	store domain.Store
	now   func() time.Time
}

func NewHostSyncService(h domain.HostDirectory, s domain.Store) *HostSyncService {
	return &HostSyncService{hosts: h, store: s, now: func() time.Time { return time.Now().UTC() }}
}

// SyncResult summarises one sync run.
type SyncResult struct {
	Hosts      int
	Updated    int64
	Missing    int
	Failed     int
	Properties int64
}

// SyncHost copies the host's current profile onto every property it owns.
// A host unknown to the auth service is logged and skipped; it returns (0, nil).
func (s *HostSyncService) SyncHost(ctx context.Context, hostID uuid.UUID) (int64, error) {
	h, err := s.hosts.Host(ctx, hostID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn().Str("host_id", hostID.String()).Msg("host profile not found; skipping")
			return 0, nil
		}
		return 0, err
	}
	h.ID = hostID
	if h.Name == "" {
		h.Name = domain.DisplayName("", "")
	}
	return s.store.Properties().UpdateHostFields(ctx, h, s.now())
}

// SyncStale syncs every host whose copy is older than maxAge, running at most workers lookups at once.
// Per-host failures are logged and counted; only a cancelled context aborts the run.
func (s *HostSyncService) SyncStale(ctx context.Context, maxAge time.Duration, workers, limit int) (SyncResult, error) {
	if workers < 1 {
		workers = 1
	}
	ids, err := s.store.Properties().StaleHosts(ctx, s.now().Add(-maxAge), limit)
	if err != nil {
		return SyncResult{}, err
	}

	var (
		res      = SyncResult{Hosts: len(ids)}
		updated  atomic.Int64
		props    atomic.Int64
		missing  atomic.Int64
		failed   atomic.Int64
		sem      = semaphore.NewWeighted(int64(workers))
		wg       sync.WaitGroup
		abortErr error
	)
	for _, id := range ids {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			abortErr = err
			break
		}
		wg.Add(1)
		go func(hostID uuid.UUID) {
			defer wg.Done()
			defer sem.Release(1)

			n, err := s.SyncHost(ctx, hostID)
			switch {
			case err != nil:
				failed.Add(1)
				log.Warn().Str("host_id", hostID.String()).Err(err).Msg("host sync failed")
			case n == 0:
				missing.Add(1)
			default:
				updated.Add(1)
				props.Add(n)
			}
		}(id)
	}
	wg.Wait()

	res.Updated = updated.Load()
	res.Properties = props.Load()
	res.Missing = int(missing.Load())
	res.Failed = int(failed.Load())
	return res, abortErr
}
