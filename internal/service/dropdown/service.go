// Package dropdown is the entry point for dropdown resolution: it serves
// cached dropdown sets and rebuilds them from the content store on a miss.
package dropdown

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/calc-content-backend/internal/domain"
	"github.com/heartmarshall/calc-content-backend/internal/dropdown/assembler"
	"github.com/heartmarshall/calc-content-backend/pkg/ttlcache"
)

type contentRepo interface {
	ListDropdownRows(ctx context.Context, filter domain.DropdownRowsFilter) (domain.ContentRowSet, error)
}

type configRepo interface {
	ListActiveByScreen(ctx context.Context, screen string) (domain.DropdownConfigSet, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

const (
	DefaultFallbackLanguage = "en"
	DefaultStatsKeyLimit    = 20
)

// Options tunes resolution behaviour.
type Options struct {
	// UsePrecomputed consults dropdown_configs before assembling from content rows.
	UsePrecomputed bool
	// FallbackLanguage is used when a precomputed text has no entry for the
	// requested language. Content rows never fall back.
	FallbackLanguage string
	// AllowedTypes limits the component types read from the store.
	// Empty means domain.DropdownComponentTypes().
	AllowedTypes []domain.ComponentType
	// StatsKeyLimit caps the keys returned by Stats.
	StatsKeyLimit int
}

// Service resolves dropdowns for a (screen, language) pair.
type Service struct {
	contents  contentRepo
	configs   configRepo
	tx        txManager
	cache     *ttlcache.Cache[domain.DropdownSet]
	assembler *assembler.Assembler
	opts      Options
	log       *slog.Logger

	group singleflight.Group

	droppedRows  atomic.Uint64
	rejectedRows atomic.Uint64
}

// NewService creates a new dropdown service. The cache is owned by the caller so
// tests can control its clock and TTL.
func NewService(
	log *slog.Logger,
	contents contentRepo,
	configs configRepo,
	tx txManager,
	cache *ttlcache.Cache[domain.DropdownSet],
	asm *assembler.Assembler,
	opts Options,
) *Service {
	if opts.FallbackLanguage == "" {
		opts.FallbackLanguage = DefaultFallbackLanguage
	}
	if len(opts.AllowedTypes) == 0 {
		opts.AllowedTypes = domain.DropdownComponentTypes()
	}
	if opts.StatsKeyLimit <= 0 {
		opts.StatsKeyLimit = DefaultStatsKeyLimit
	}
	if asm == nil {
		asm = assembler.New(nil)
	}

	return &Service{
		contents:  contents,
		configs:   configs,
		tx:        tx,
		cache:     cache,
		assembler: asm,
		opts:      opts,
		log:       log.With("service", "dropdown"),
	}
}

// CacheKey builds the cache key for a screen and language.
func CacheKey(screen, language string) string {
	return "dropdowns:" + screen + ":" + language
}
