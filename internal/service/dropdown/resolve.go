package dropdown

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/calc-content-backend/internal/domain"
)

// Resolve returns the dropdowns of a screen in a language. Cached sets are
// returned with CacheHit=true; otherwise the set is built from the store,
// cached and returned with CacheHit=false. Store failures are returned as
// errors and leave the cache untouched.
func (s *Service) Resolve(ctx context.Context, screen, language string) (*Result, error) {
	start := time.Now()

	in := ResolveInput{Screen: screen, Language: language}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in = in.normalized()
	key := CacheKey(in.Screen, in.Language)

	if set, ok := s.cache.Get(key); ok {
		return newResult(set.Clone(), true, time.Since(start)), nil
	}

	// Concurrent misses for one key share a single store round trip. The shared
	// load is detached from any one caller's cancellation; each caller stops
	// waiting on its own context.
	loadCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		set, err := s.load(loadCtx, in)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, set)
		return set, nil
	})

	var r singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("resolve dropdowns %s/%s: %w", in.Screen, in.Language, ctx.Err())
	case r = <-ch:
	}
	if r.Err != nil {
		return nil, fmt.Errorf("resolve dropdowns %s/%s: %w", in.Screen, in.Language, r.Err)
	}
	shared := r.Shared

	set := r.Val.(domain.DropdownSet).Clone()
	res := newResult(set, false, time.Since(start))

	s.log.DebugContext(ctx, "dropdowns resolved",
		slog.String("screen", in.Screen),
		slog.String("language", in.Language),
		slog.String("source", set.Source.String()),
		slog.Int("dropdowns", len(set.Dropdowns)),
		slog.Bool("shared", shared),
		slog.Duration("took", res.ProcessingTime),
	)

	return res, nil
}

func newResult(set domain.DropdownSet, hit bool, took time.Duration) *Result {
	return &Result{
		Screen:         set.Screen,
		Language:       set.Language,
		Dropdowns:      set.Dropdowns,
		Source:         set.Source,
		CacheHit:       hit,
		ProcessingTime: took,
	}
}

// load reads both sources inside one read-only snapshot.
func (s *Service) load(ctx context.Context, in ResolveInput) (domain.DropdownSet, error) {
	var set domain.DropdownSet

	err := s.runInTx(ctx, func(ctx context.Context) error {
		if s.opts.UsePrecomputed {
			ok, err := s.loadPrecomputed(ctx, in, &set)
			if err != nil {
				return err
			}
			if ok {
				return nil
			}
		}
		return s.loadContent(ctx, in, &set)
	})

	return set, err
}

func (s *Service) runInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.RunInTx(ctx, fn)
}

// loadPrecomputed fills set from dropdown_configs. It reports false when the
// screen has no usable config, so the caller assembles from content rows.
func (s *Service) loadPrecomputed(ctx context.Context, in ResolveInput, set *domain.DropdownSet) (bool, error) {
	configs, err := s.configs.ListActiveByScreen(ctx, in.Screen)
	if err != nil {
		return false, err
	}
	s.reportRejected(ctx, configs.Rejected)

	if len(configs.Configs) == 0 {
		return false, nil
	}

	dropdowns := make([]domain.AssembledDropdown, 0, len(configs.Configs))
	seen := make(map[string]struct{}, len(configs.Configs))
	for _, cfg := range configs.Configs {
		d := cfg.Localize(in.Screen, in.Language, s.opts.FallbackLanguage)
		if _, dup := seen[d.Key]; dup {
			continue
		}
		seen[d.Key] = struct{}{}
		dropdowns = append(dropdowns, d)
	}
	sort.Slice(dropdowns, func(i, j int) bool { return dropdowns[i].Key < dropdowns[j].Key })

	*set = domain.DropdownSet{
		Screen:    in.Screen,
		Language:  in.Language,
		Source:    domain.DropdownSourcePrecomputed,
		Dropdowns: dropdowns,
	}
	return true, nil
}

func (s *Service) loadContent(ctx context.Context, in ResolveInput, set *domain.DropdownSet) error {
	rows, err := s.contents.ListDropdownRows(ctx, domain.DropdownRowsFilter{
		Screen:   in.Screen,
		Language: in.Language,
		Types:    s.opts.AllowedTypes,
	})
	if err != nil {
		return err
	}
	s.reportRejected(ctx, rows.Rejected)

	assembled := s.assembler.Assemble(in.Screen, rows.Rows)
	if n := len(assembled.Dropped); n > 0 {
		s.droppedRows.Add(uint64(n))
		for _, key := range assembled.Dropped {
			s.log.DebugContext(ctx, "content key not resolved",
				slog.String("screen", in.Screen),
				slog.String("language", in.Language),
				slog.String("content_key", key),
			)
		}
	}

	*set = domain.DropdownSet{
		Screen:    in.Screen,
		Language:  in.Language,
		Source:    domain.DropdownSourceContent,
		Dropdowns: assembled.Dropdowns,
	}
	return nil
}

func (s *Service) reportRejected(ctx context.Context, rejected []domain.RejectedRow) {
	if len(rejected) == 0 {
		return
	}
	s.rejectedRows.Add(uint64(len(rejected)))
	for _, r := range rejected {
		s.log.WarnContext(ctx, "content row rejected",
			slog.String("screen", r.Screen),
			slog.String("content_key", r.Key),
			slog.String("reason", r.Reason),
		)
	}
}
