package dropdown

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/heartmarshall/calc-content-backend/internal/domain"
	"github.com/heartmarshall/calc-content-backend/pkg/ttlcache"
)

//go:generate moq -out content_repo_mock_test.go -pkg dropdown . contentRepo
//go:generate moq -out config_repo_mock_test.go -pkg dropdown . configRepo
//go:generate moq -out tx_manager_mock_test.go -pkg dropdown . txManager

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// defaultTxMock returns a txManagerMock that simply calls the function with the same context.
func defaultTxMock() *txManagerMock {
	return &txManagerMock{
		RunInTxFunc: func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	}
}

func contentRow(key string, role domain.ComponentRole, value string) domain.ContentRow {
	return domain.ContentRow{
		Key:      key,
		Screen:   "mortgage_step1",
		Role:     role,
		Language: "he",
		Value:    value,
		Active:   true,
		Status:   domain.TranslationStatusApproved,
	}
}

// propertyTypeRows is the property-type dropdown of mortgage_step1.
func propertyTypeRows() []domain.ContentRow {
	return []domain.ContentRow{
		contentRow("mortgage_step1.field.type", domain.RoleContainer, "Property type"),
		contentRow("mortgage_step1.field.type_apartment", domain.RoleOption, "Apartment"),
		contentRow("mortgage_step1.field.type_house", domain.RoleOption, "House"),
	}
}

func staticContent(rows []domain.ContentRow) *contentRepoMock {
	return &contentRepoMock{
		ListDropdownRowsFunc: func(ctx context.Context, filter domain.DropdownRowsFilter) (domain.ContentRowSet, error) {
			return domain.ContentRowSet{Rows: rows}, nil
		},
	}
}

func emptyConfigs() *configRepoMock {
	return &configRepoMock{
		ListActiveByScreenFunc: func(ctx context.Context, screen string) (domain.DropdownConfigSet, error) {
			return domain.DropdownConfigSet{}, nil
		},
	}
}

func newTestService(
	t *testing.T,
	contents *contentRepoMock,
	configs *configRepoMock,
	cache *ttlcache.Cache[domain.DropdownSet],
	opts Options,
) *Service {
	t.Helper()
	if cache == nil {
		cache = ttlcache.New[domain.DropdownSet](5 * time.Minute)
	}
	if configs == nil {
		configs = emptyConfigs()
	}
	return NewService(slog.Default(), contents, configs, defaultTxMock(), cache, nil, opts)
}

// ---------------------------------------------------------------------------
// Resolve
// ---------------------------------------------------------------------------

func TestResolve_PropertyTypeScenario(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, staticContent(propertyTypeRows()), nil, nil, Options{})

	res, err := svc.Resolve(context.Background(), "mortgage_step1", "he")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.AssembledDropdown{{
		Key:       "mortgage_step1_type",
		FieldName: "type",
		Label:     "Property type",
		Options: []domain.DropdownOption{
			{Value: "apartment", Label: "Apartment"},
			{Value: "house", Label: "House"},
		},
	}}
	if !reflect.DeepEqual(res.Dropdowns, want) {
		t.Errorf("dropdowns:\n got %+v\nwant %+v", res.Dropdowns, want)
	}
	if res.Source != domain.DropdownSourceContent {
		t.Errorf("source: got %q, want %q", res.Source, domain.DropdownSourceContent)
	}
	if got := res.Labels()["mortgage_step1_type"]; got != "Property type" {
		t.Errorf("labels: got %q", got)
	}
	if len(res.Placeholders()) != 0 {
		t.Errorf("placeholders: got %v, want none", res.Placeholders())
	}
	if len(res.Options()["mortgage_step1_type"]) != 2 {
		t.Errorf("options: got %v", res.Options())
	}
}

func TestResolve_MissThenHit(t *testing.T) {
	t.Parallel()

	contents := staticContent(propertyTypeRows())
	tx := defaultTxMock()
	cache := ttlcache.New[domain.DropdownSet](5 * time.Minute)
	svc := NewService(slog.Default(), contents, emptyConfigs(), tx, cache, nil, Options{})
	ctx := context.Background()

	first, err := svc.Resolve(ctx, "mortgage_step1", "he")
	if err != nil {
		t.Fatalf("first call: unexpected error: %v", err)
	}
	second, err := svc.Resolve(ctx, "mortgage_step1", "he")
	if err != nil {
		t.Fatalf("second call: unexpected error: %v", err)
	}

	if first.CacheHit {
		t.Error("first call should be a cache miss")
	}
	if first.ProcessingTime <= 0 {
		t.Errorf("miss processing time: got %v, want > 0", first.ProcessingTime)
	}
	if !second.CacheHit {
		t.Error("second call should be a cache hit")
	}
	if !reflect.DeepEqual(first.Options(), second.Options()) ||
		!reflect.DeepEqual(first.Labels(), second.Labels()) ||
		!reflect.DeepEqual(first.Placeholders(), second.Placeholders()) {
		t.Error("hit payload differs from miss payload")
	}
	if n := len(contents.ListDropdownRowsCalls()); n != 1 {
		t.Errorf("ListDropdownRows calls: got %d, want 1", n)
	}
	if n := len(tx.RunInTxCalls()); n != 1 {
		t.Errorf("RunInTx calls: got %d, want 1", n)
	}
	if cache.Len() != 1 {
		t.Errorf("cache len: got %d, want 1", cache.Len())
	}
	if _, ok := cache.Get(CacheKey("mortgage_step1", "he")); !ok {
		t.Error("expected entry under dropdowns:mortgage_step1:he")
	}
}

func TestResolve_ExpiryReloads(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	cache := ttlcache.New[domain.DropdownSet](time.Minute, ttlcache.WithClock(clock.Now))
	contents := staticContent(propertyTypeRows())
	svc := newTestService(t, contents, nil, cache, Options{})
	ctx := context.Background()

	if _, err := svc.Resolve(ctx, "mortgage_step1", "he"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clock.Advance(time.Minute + time.Second)

	res, err := svc.Resolve(ctx, "mortgage_step1", "he")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CacheHit {
		t.Error("expected a miss after TTL")
	}
	if n := len(contents.ListDropdownRowsCalls()); n != 2 {
		t.Errorf("ListDropdownRows calls: got %d, want 2", n)
	}
}

func TestResolve_PassesFilter(t *testing.T) {
	t.Parallel()

	contents := staticContent(nil)
	types := []domain.ComponentType{domain.ComponentTypeOption, domain.ComponentTypeLabel}
	svc := newTestService(t, contents, nil, nil, Options{AllowedTypes: types})

	res, err := svc.Resolve(context.Background(), " refinance_step1 ", "RU")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := contents.ListDropdownRowsCalls()
	if len(calls) != 1 {
		t.Fatalf("ListDropdownRows calls: got %d, want 1", len(calls))
	}
	f := calls[0].Filter
	if f.Screen != "refinance_step1" || f.Language != "ru" {
		t.Errorf("filter: got %+v, want normalized screen/language", f)
	}
	if !reflect.DeepEqual(f.Types, types) {
		t.Errorf("filter types: got %v, want %v", f.Types, types)
	}
	if res.Dropdowns == nil || len(res.Dropdowns) != 0 {
		t.Errorf("empty store must yield an empty dropdown list, got %#v", res.Dropdowns)
	}
}

func TestResolve_LanguagesAreCachedSeparately(t *testing.T) {
	t.Parallel()

	contents := staticContent(propertyTypeRows())
	svc := newTestService(t, contents, nil, nil, Options{})
	ctx := context.Background()

	for _, lang := range []string{"he", "en", "he", "en"} {
		if _, err := svc.Resolve(ctx, "mortgage_step1", lang); err != nil {
			t.Fatalf("Resolve(%s): unexpected error: %v", lang, err)
		}
	}

	if n := len(contents.ListDropdownRowsCalls()); n != 2 {
		t.Errorf("ListDropdownRows calls: got %d, want 2 (one per language)", n)
	}
}

func TestResolve_ReturnsPrivateCopies(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, staticContent(propertyTypeRows()), nil, nil, Options{})
	ctx := context.Background()

	first, err := svc.Resolve(ctx, "mortgage_step1", "he")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first.Dropdowns[0].Label = "mutated"
	first.Dropdowns[0].Options[0].Label = "mutated"

	second, err := svc.Resolve(ctx, "mortgage_step1", "he")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Dropdowns[0].Label != "Property type" || second.Dropdowns[0].Options[0].Label != "Apartment" {
		t.Errorf("cached data was mutated through a returned result: %+v", second.Dropdowns[0])
	}
}

func TestResolve_ValidationError(t *testing.T) {
	t.Parallel()

	contents := staticContent(nil)
	svc := newTestService(t, contents, nil, nil, Options{})

	tests := []struct {
		name     string
		screen   string
		language string
		field    string
	}{
		{"empty screen", "", "he", "screen_location"},
		{"bad screen", "mortgage step1", "he", "screen_location"},
		{"empty language", "mortgage_step1", " ", "language_code"},
		{"bad language", "mortgage_step1", "he/../en", "language_code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Resolve(context.Background(), tt.screen, tt.language)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Errors[0].Field != tt.field {
				t.Errorf("expected field error on %q, got %v", tt.field, err)
			}
		})
	}

	if n := len(contents.ListDropdownRowsCalls()); n != 0 {
		t.Errorf("store must not be queried for invalid input, got %d calls", n)
	}
}

func TestResolve_StoreFailureIsNotCached(t *testing.T) {
	t.Parallel()

	var fail atomic.Bool
	fail.Store(true)
	contents := &contentRepoMock{
		ListDropdownRowsFunc: func(ctx context.Context, filter domain.DropdownRowsFilter) (domain.ContentRowSet, error) {
			if fail.Load() {
				return domain.ContentRowSet{}, fmt.Errorf("content_items s/he: %w", domain.ErrStoreUnavailable)
			}
			return domain.ContentRowSet{Rows: propertyTypeRows()}, nil
		},
	}
	cache := ttlcache.New[domain.DropdownSet](5 * time.Minute)
	svc := newTestService(t, contents, nil, cache, Options{})
	ctx := context.Background()

	_, err := svc.Resolve(ctx, "mortgage_step1", "he")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if cache.Len() != 0 {
		t.Fatalf("cache len after failure: got %d, want 0", cache.Len())
	}

	fail.Store(false)
	res, err := svc.Resolve(ctx, "mortgage_step1", "he")
	if err != nil {
		t.Fatalf("unexpected error after recovery: %v", err)
	}
	if res.CacheHit {
		t.Error("recovery call must be a miss")
	}
}

func TestResolve_TxFailure(t *testing.T) {
	t.Parallel()

	contents := staticContent(propertyTypeRows())
	tx := &txManagerMock{
		RunInTxFunc: func(ctx context.Context, fn func(context.Context) error) error {
			return fmt.Errorf("tx begin: %w", domain.ErrStoreUnavailable)
		},
	}
	cache := ttlcache.New[domain.DropdownSet](5 * time.Minute)
	svc := NewService(slog.Default(), contents, emptyConfigs(), tx, cache, nil, Options{})

	if _, err := svc.Resolve(context.Background(), "mortgage_step1", "he"); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if cache.Len() != 0 {
		t.Errorf("cache len: got %d, want 0", cache.Len())
	}
}

func TestResolve_ConcurrentMissesShareOneLoad(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	contents := &contentRepoMock{
		ListDropdownRowsFunc: func(ctx context.Context, filter domain.DropdownRowsFilter) (domain.ContentRowSet, error) {
			<-release
			return domain.ContentRowSet{Rows: propertyTypeRows()}, nil
		},
	}
	svc := newTestService(t, contents, nil, nil, Options{})

	const workers = 20
	results := make([]*Result, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = svc.Resolve(context.Background(), "mortgage_step1", "he")
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := range workers {
		if errs[i] != nil {
			t.Fatalf("worker %d: unexpected error: %v", i, errs[i])
		}
		if !reflect.DeepEqual(results[i].Dropdowns, results[0].Dropdowns) {
			t.Fatalf("worker %d: result differs", i)
		}
	}
	if n := len(contents.ListDropdownRowsCalls()); n != 1 {
		t.Errorf("ListDropdownRows calls: got %d, want 1", n)
	}

	results[0].Dropdowns[0].Label = "mutated"
	if results[1].Dropdowns[0].Label == "mutated" {
		t.Error("concurrent callers must not share dropdown slices")
	}
}

func TestResolve_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	release := make(chan struct{})
	var loadCtxErr atomic.Value
	contents := &contentRepoMock{
		ListDropdownRowsFunc: func(ctx context.Context, filter domain.DropdownRowsFilter) (domain.ContentRowSet, error) {
			close(entered)
			select {
			case <-release:
			case <-ctx.Done():
			}
			loadCtxErr.Store(fmt.Sprint(ctx.Err()))
			if err := ctx.Err(); err != nil {
				return domain.ContentRowSet{}, err
			}
			return domain.ContentRowSet{Rows: propertyTypeRows()}, nil
		},
	}
	svc := newTestService(t, contents, nil, nil, Options{})

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Resolve(firstCtx, "mortgage_step1", "he")
		firstErr <- err
	}()
	<-entered

	type outcome struct {
		res *Result
		err error
	}
	second := make(chan outcome, 1)
	go func() {
		res, err := svc.Resolve(context.Background(), "mortgage_step1", "he")
		second <- outcome{res, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller: got %v, want context.Canceled", err)
	}

	close(release)
	got := <-second
	if got.err != nil {
		t.Fatalf("waiting caller: unexpected error: %v", got.err)
	}
	if len(got.res.Dropdowns) != 1 || got.res.Dropdowns[0].Key != "mortgage_step1_type" {
		t.Errorf("waiting caller: got %+v", got.res.Dropdowns)
	}
	if v := loadCtxErr.Load(); v != "<nil>" {
		t.Errorf("shared load saw context error %v", v)
	}
	if n := len(contents.ListDropdownRowsCalls()); n != 1 {
		t.Errorf("ListDropdownRows calls: got %d, want 1", n)
	}
	if _, ok := svc.cache.Get(CacheKey("mortgage_step1", "he")); !ok {
		t.Error("shared load result should be cached")
	}
}

// ---------------------------------------------------------------------------
// Precomputed source
// ---------------------------------------------------------------------------

func TestResolve_PrecomputedBypassesAssembly(t *testing.T) {
	t.Parallel()

	placeholder := "בחר"
	configs := &configRepoMock{
		ListActiveByScreenFunc: func(ctx context.Context, screen string) (domain.DropdownConfigSet, error) {
			return domain.DropdownConfigSet{Configs: []domain.DropdownConfig{
				{
					ScreenLocation: screen,
					FieldName:      "when",
					IsActive:       true,
					Data: domain.DropdownData{
						Label:       domain.Translations(map[string]string{"en": "When", "he": "מתי"}),
						Placeholder: domain.Translations(map[string]string{"he": placeholder}),
						Options: []domain.PrecomputedOption{
							{Value: "1", Text: domain.Translations(map[string]string{"en": "Soon"})},
						},
					},
				},
				{
					ScreenLocation: screen,
					FieldName:      "bank",
					IsActive:       true,
					Data: domain.DropdownData{
						Key:     "mortgage_step1_bank",
						Label:   domain.PlainText("Bank"),
						Options: []domain.PrecomputedOption{{Value: "leumi", Label: domain.PlainText("Leumi")}},
					},
				},
			}}, nil
		},
	}
	contents := staticContent(propertyTypeRows())
	svc := newTestService(t, contents, configs, nil, Options{UsePrecomputed: true})

	res, err := svc.Resolve(context.Background(), "mortgage_step1", "he")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := len(contents.ListDropdownRowsCalls()); n != 0 {
		t.Errorf("content rows must not be read when configs exist, got %d calls", n)
	}
	if res.Source != domain.DropdownSourcePrecomputed {
		t.Errorf("source: got %q, want precomputed", res.Source)
	}

	want := []domain.AssembledDropdown{
		{
			Key:       "mortgage_step1_bank",
			FieldName: "bank",
			Label:     "Bank",
			Options:   []domain.DropdownOption{{Value: "leumi", Label: "Leumi"}},
		},
		{
			Key:         "mortgage_step1_when",
			FieldName:   "when",
			Label:       "מתי",
			Placeholder: &placeholder,
			Options:     []domain.DropdownOption{{Value: "1", Label: "Soon"}},
		},
	}
	if !reflect.DeepEqual(res.Dropdowns, want) {
		t.Errorf("dropdowns:\n got %+v\nwant %+v", res.Dropdowns, want)
	}
}

func TestResolve_PrecomputedEmptyFallsBackToContent(t *testing.T) {
	t.Parallel()

	configs := emptyConfigs()
	contents := staticContent(propertyTypeRows())
	svc := newTestService(t, contents, configs, nil, Options{UsePrecomputed: true})

	res, err := svc.Resolve(context.Background(), "mortgage_step1", "he")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Source != domain.DropdownSourceContent {
		t.Errorf("source: got %q, want content", res.Source)
	}
	if len(configs.ListActiveByScreenCalls()) != 1 || len(contents.ListDropdownRowsCalls()) != 1 {
		t.Error("expected one config lookup followed by one content read")
	}
}

func TestResolve_PrecomputedDisabledSkipsConfigs(t *testing.T) {
	t.Parallel()

	configs := emptyConfigs()
	svc := newTestService(t, staticContent(propertyTypeRows()), configs, nil, Options{})

	if _, err := svc.Resolve(context.Background(), "mortgage_step1", "he"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(configs.ListActiveByScreenCalls()); n != 0 {
		t.Errorf("ListActiveByScreen calls: got %d, want 0", n)
	}
}

func TestResolve_PrecomputedFailurePropagates(t *testing.T) {
	t.Parallel()

	configs := &configRepoMock{
		ListActiveByScreenFunc: func(ctx context.Context, screen string) (domain.DropdownConfigSet, error) {
			return domain.DropdownConfigSet{}, domain.ErrStoreUnavailable
		},
	}
	contents := staticContent(propertyTypeRows())
	svc := newTestService(t, contents, configs, nil, Options{UsePrecomputed: true})

	if _, err := svc.Resolve(context.Background(), "mortgage_step1", "he"); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if n := len(contents.ListDropdownRowsCalls()); n != 0 {
		t.Errorf("ListDropdownRows calls: got %d, want 0", n)
	}
}

// ---------------------------------------------------------------------------
// Stats / ClearCache
// ---------------------------------------------------------------------------

func TestStats_CountsDroppedAndRejected(t *testing.T) {
	t.Parallel()

	contents := &contentRepoMock{
		ListDropdownRowsFunc: func(ctx context.Context, filter domain.DropdownRowsFilter) (domain.ContentRowSet, error) {
			rows := append(propertyTypeRows(), contentRow("other_screen_field", domain.RoleContainer, "x"))
			return domain.ContentRowSet{
				Rows:     rows,
				Rejected: []domain.RejectedRow{{Key: "bad", Screen: "mortgage_step1", Reason: "inactive"}},
			}, nil
		},
	}
	svc := newTestService(t, contents, nil, nil, Options{StatsKeyLimit: 1})
	ctx := context.Background()

	for _, lang := range []string{"he", "en"} {
		if _, err := svc.Resolve(ctx, "mortgage_step1", lang); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := svc.Resolve(ctx, "mortgage_step1", "he"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st := svc.Stats()
	if st.Entries != 2 {
		t.Errorf("entries: got %d, want 2", st.Entries)
	}
	if len(st.Keys) != 1 || st.Keys[0] != "dropdowns:mortgage_step1:en" {
		t.Errorf("keys: got %v, want first key only", st.Keys)
	}
	if st.Hits != 1 || st.Misses != 2 {
		t.Errorf("hits/misses: got %d/%d, want 1/2", st.Hits, st.Misses)
	}
	if st.DroppedRows != 2 || st.RejectedRows != 2 {
		t.Errorf("dropped/rejected: got %d/%d, want 2/2", st.DroppedRows, st.RejectedRows)
	}
	if st.TTL != 5*time.Minute {
		t.Errorf("ttl: got %v", st.TTL)
	}
}

func TestClearCache(t *testing.T) {
	t.Parallel()

	contents := staticContent(propertyTypeRows())
	svc := newTestService(t, contents, nil, nil, Options{})
	ctx := context.Background()

	if _, err := svc.Resolve(ctx, "mortgage_step1", "he"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := svc.ClearCache(ctx); n != 1 {
		t.Errorf("ClearCache: got %d, want 1", n)
	}

	res, err := svc.Resolve(ctx, "mortgage_step1", "he")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CacheHit {
		t.Error("expected a miss after ClearCache")
	}
}
