package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/calc-content-backend/internal/domain"
)

// UniqueScreen returns a screen location no other test uses, so tests sharing
// the container never see each other's rows.
func UniqueScreen(prefix string) string {
	return prefix + "_" + uuid.New().String()[:8]
}

// SeedContent inserts one content item. Translations are given as
// language -> value and are stored with the given status.
// Returns the item id.
func SeedContent(
	t *testing.T,
	pool *pgxpool.Pool,
	item domain.ContentItem,
	status domain.TranslationStatus,
	translations map[string]string,
) int64 {
	t.Helper()
	ctx := context.Background()

	var id int64
	err := pool.QueryRow(ctx,
		`INSERT INTO content_items (content_key, screen_location, component_type, is_active)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		item.ContentKey, item.ScreenLocation, item.ComponentType.String(), item.IsActive,
	).Scan(&id)
	if err != nil {
		t.Fatalf("testhelper: SeedContent insert item %q: %v", item.ContentKey, err)
	}

	for lang, value := range translations {
		_, err := pool.Exec(ctx,
			`INSERT INTO content_translations (content_item_id, language_code, content_value, status)
			 VALUES ($1, $2, $3, $4)`,
			id, lang, value, status.String(),
		)
		if err != nil {
			t.Fatalf("testhelper: SeedContent insert translation %q/%s: %v", item.ContentKey, lang, err)
		}
	}

	return id
}

// SeedDropdownConfig inserts a precomputed dropdown row with raw JSON data.
func SeedDropdownConfig(t *testing.T, pool *pgxpool.Pool, screen, field string, data string, active bool) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO dropdown_configs (dropdown_key, screen_location, field_name, dropdown_data, is_active)
		 VALUES ($1, $2, $3, $4::jsonb, $5)`,
		domain.DropdownKey(screen, field), screen, field, data, active,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedDropdownConfig %s/%s: %v", screen, field, err)
	}
}
