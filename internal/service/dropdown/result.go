package dropdown

import (
	"time"

	"github.com/heartmarshall/calc-content-backend/internal/domain"
)

// Result is one resolved screen. Dropdowns are a private copy.
type Result struct {
	Screen         string
	Language       string
	Dropdowns      []domain.AssembledDropdown
	Source         domain.DropdownSource
	CacheHit       bool
	ProcessingTime time.Duration
}

// Options maps dropdown key to its options.
func (r *Result) Options() map[string][]domain.DropdownOption {
	out := make(map[string][]domain.DropdownOption, len(r.Dropdowns))
	for _, d := range r.Dropdowns {
		out[d.Key] = d.Options
	}
	return out
}

// Placeholders maps dropdown key to placeholder. Keys without one are omitted.
func (r *Result) Placeholders() map[string]string {
	out := make(map[string]string, len(r.Dropdowns))
	for _, d := range r.Dropdowns {
		if d.Placeholder != nil {
			out[d.Key] = *d.Placeholder
		}
	}
	return out
}

// Labels maps dropdown key to label.
func (r *Result) Labels() map[string]string {
	out := make(map[string]string, len(r.Dropdowns))
	for _, d := range r.Dropdowns {
		out[d.Key] = d.Label
	}
	return out
}

// ProcessingTimeMs is ProcessingTime in fractional milliseconds.
func (r *Result) ProcessingTimeMs() float64 {
	return float64(r.ProcessingTime) / float64(time.Millisecond)
}

// Stats is a diagnostic snapshot of the resolution cache and drop counters.
type Stats struct {
	Entries      int
	Keys         []string
	Hits         uint64
	Misses       uint64
	HitRate      float64
	TTL          time.Duration
	DroppedRows  uint64
	RejectedRows uint64
}
