package ledgers

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"

	"github.com/angelmondragon/splitwallet-backend/pkg/metrics"
	"github.com/angelmondragon/splitwallet-backend/pkg/redis"
)

// cached serves out from the result cache when possible and otherwise computes it from a fresh
// snapshot. Keys embed the event's updated_at, so any write to the event retires old entries
// without explicit invalidation.
func (s *service) cached(ctx context.Context, op string, ownerID, eventID uuid.UUID, opts ViewOptions, out any, compute func(*snapshot) error) error {
	if s.cache == nil {
		snap, err := s.readSnapshot(ctx, ownerID, eventID, opts)
		if err != nil {
			return err
		}
		return compute(snap)
	}

	event, err := s.ownedEvent(ctx, s.repo, ownerID, eventID)
	if err != nil {
		return err
	}
	key := s.cache.ResultKey(op,
		eventID.String(),
		strconv.FormatInt(event.UpdatedAt.UnixNano(), 10),
		viewKey(opts),
		string(s.engine.Allocator.Policy),
		s.engine.Planner.Tolerance.String(),
	)
	logCtx := s.logg.WithFields(ctx, map[string]any{"operation": op, "cache_key": key})

	raw, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal([]byte(raw), out); jsonErr == nil {
			s.metrics.CacheResult(op, metrics.CacheHit)
			return nil
		}
		s.logg.Warn(logCtx, "discarding undecodable cached result")
		s.metrics.CacheResult(op, metrics.CacheError)
	case redis.IsMiss(err):
		s.metrics.CacheResult(op, metrics.CacheMiss)
	default:
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "result cache lookup failed")
		s.metrics.CacheResult(op, metrics.CacheError)
	}

	snap, err := s.readSnapshot(ctx, ownerID, eventID, opts)
	if err != nil {
		return err
	}
	if err := compute(snap); err != nil {
		return err
	}

	// a write landed between the two reads; the key no longer describes this result
	if !snap.event.UpdatedAt.Equal(event.UpdatedAt) {
		return nil
	}
	payload, err := json.Marshal(out)
	if err != nil {
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "result cache encode failed")
		return nil
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "result cache store failed")
	}
	return nil
}

func viewKey(opts ViewOptions) string {
	if opts.ApprovedOnly {
		return "approved"
	}
	return "all"
}
