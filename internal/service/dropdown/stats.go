package dropdown

import (
	"context"
	"log/slog"
)

// Stats returns cache usage and drop counters.
func (s *Service) Stats() Stats {
	cs := s.cache.Stats()
	return Stats{
		Entries:      cs.Entries,
		Keys:         s.cache.Keys(s.opts.StatsKeyLimit),
		Hits:         cs.Hits,
		Misses:       cs.Misses,
		HitRate:      cs.HitRate(),
		TTL:          s.cache.TTL(),
		DroppedRows:  s.droppedRows.Load(),
		RejectedRows: s.rejectedRows.Load(),
	}
}

// ClearCache drops every cached set and returns how many were removed.
func (s *Service) ClearCache(ctx context.Context) int {
	n := s.cache.Clear()
	s.log.InfoContext(ctx, "dropdown cache cleared", slog.Int("keys_cleared", n))
	return n
}
